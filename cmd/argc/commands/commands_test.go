package commands

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"argentum/internal/ast"
	"argentum/internal/resolver"
)

// fakeParse stands in for the (external, unimplemented) textual parser: it
// ignores the fetched text entirely and hands back a fixed module keyed by
// path, which is all Options.Parse's contract requires of a real one.
func fakeParse(modules map[string]*ast.Module) resolver.Parser {
	return func(path, _ string) (*ast.Module, error) {
		if mod, ok := modules[path]; ok {
			return mod, nil
		}
		return nil, &missingModuleError{path}
	}
}

type missingModuleError struct{ path string }

func (e *missingModuleError) Error() string { return "no such module: " + e.path }

func fakeFetch(modules map[string]*ast.Module) func(string) (string, error) {
	return func(path string) (string, error) {
		if _, ok := modules[path]; ok {
			return path, nil
		}
		return "", &missingModuleError{path}
	}
}

func TestBuildReportsSuccessForACleanProgram(t *testing.T) {
	mod := ast.NewModule("main")
	fn := ast.NewFunction(ast.Pos{}, ast.Name{Module: "main", Short: "answer"})
	fn.Body = []ast.Action{ast.NewConstInt32(ast.Pos{}, 42)}
	mod.Functions = append(mod.Functions, fn)

	var stdout, stderr bytes.Buffer
	code := Build(context.Background(), "main", Options{Parse: fakeParse(map[string]*ast.Module{"main": mod}), Fetch: fakeFetch(map[string]*ast.Module{"main": mod})}, &stdout, &stderr)

	if code != 0 {
		t.Fatalf("Build exit code = %d, want 0; stderr: %s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "1 module(s)") {
		t.Fatalf("stdout = %q, want a module-count summary", stdout.String())
	}
}

func TestBuildReportsDiagnosticsAndNonZeroExit(t *testing.T) {
	mod := ast.NewModule("main")
	fn := ast.NewFunction(ast.Pos{}, ast.Name{Module: "main", Short: "bad"})
	fn.Body = []ast.Action{ast.NewGet(ast.Pos{}, ast.Name{Short: "nope"})}
	mod.Functions = append(mod.Functions, fn)

	var stdout, stderr bytes.Buffer
	code := Build(context.Background(), "main", Options{Parse: fakeParse(map[string]*ast.Module{"main": mod}), Fetch: fakeFetch(map[string]*ast.Module{"main": mod})}, &stdout, &stderr)

	if code != 1 {
		t.Fatalf("Build exit code = %d, want 1", code)
	}
	if !strings.Contains(stderr.String(), "unknown name") {
		t.Fatalf("stderr = %q, want an unknown-name diagnostic", stderr.String())
	}
}

func TestBuildWithoutAParserFailsWithTheSeamMessage(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := Build(context.Background(), "main", Options{}, &stdout, &stderr)

	if code != 1 {
		t.Fatalf("Build exit code = %d, want 1", code)
	}
	if !strings.Contains(stderr.String(), "no textual parser is linked") {
		t.Fatalf("stderr = %q, want the no-parser seam message", stderr.String())
	}
}

func TestCheckReportsNoSemanticErrorsOnACleanProgram(t *testing.T) {
	mod := ast.NewModule("main")

	var stdout, stderr bytes.Buffer
	code := Check(context.Background(), "main", Options{Parse: fakeParse(map[string]*ast.Module{"main": mod}), Fetch: fakeFetch(map[string]*ast.Module{"main": mod})}, &stdout, &stderr)

	if code != 0 {
		t.Fatalf("Check exit code = %d, want 0; stderr: %s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "no semantic errors") {
		t.Fatalf("stdout = %q, want a no-semantic-errors report", stdout.String())
	}
}
