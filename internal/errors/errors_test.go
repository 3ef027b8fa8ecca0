package errors

import (
	"strings"
	"testing"
)

func TestErrorRendersLocationAndCaret(t *testing.T) {
	e := New(TypeErr, Location{File: "foo.ag", Line: 3, Column: 5}, "expected %s, got %s", "Int", "Str")
	e = e.WithSource("  x := \"hi\"")

	got := e.Error()
	for _, want := range []string{
		"TypeError: expected Int, got Str\n",
		"at foo.ag:3:5\n",
		"3 |   x := \"hi\"\n",
		"^\n",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("Error() = %q, want it to contain %q", got, want)
		}
	}
}

func TestErrorWithoutLocationOmitsAtLine(t *testing.T) {
	e := New(InternalError, Location{}, "unreachable")
	got := e.Error()
	if got != "InternalError: unreachable\n" {
		t.Fatalf("Error() = %q, want no location/caret lines", got)
	}
}

func TestAddFrameAppendsCallStackInOrder(t *testing.T) {
	e := New(NameErr, Location{File: "a.ag", Line: 1, Column: 1}, "unknown name")
	e.AddFrame("outer", Location{File: "a.ag", Line: 10, Column: 1})
	e.AddFrame("", Location{File: "a.ag", Line: 20, Column: 1})

	if len(e.CallStack) != 2 {
		t.Fatalf("len(CallStack) = %d, want 2", len(e.CallStack))
	}
	if e.CallStack[0].Function != "outer" {
		t.Fatalf("first frame function = %q, want outer", e.CallStack[0].Function)
	}
}

func TestBagCollectsEveryErrorAndReportsExitCode(t *testing.T) {
	var b Bag
	if !b.Empty() || b.ExitCode() != 0 {
		t.Fatalf("a fresh Bag should be empty with exit code 0")
	}

	b.Addf(NameErr, Location{File: "a.ag", Line: 1, Column: 1}, "unknown name %q", "foo")
	b.Addf(TypeErr, Location{File: "a.ag", Line: 2, Column: 1}, "bad type")

	if b.Empty() {
		t.Fatalf("Bag should not be empty after Addf")
	}
	if len(b.Errors()) != 2 {
		t.Fatalf("len(Errors()) = %d, want 2", len(b.Errors()))
	}
	if b.ExitCode() != 1 {
		t.Fatalf("ExitCode() = %d, want 1 once any error was recorded", b.ExitCode())
	}
}
