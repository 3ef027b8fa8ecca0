package typecheck

import (
	"testing"

	"argentum/internal/ast"
)

func TestCheckSetsResultTypeFromTheInferredBody(t *testing.T) {
	prog := ast.NewProgram()
	mod := ast.NewModule("main")
	fn := ast.NewFunction(ast.Pos{}, ast.Name{Module: "main", Short: "answer"})
	fn.Body = []ast.Action{ast.NewConstInt32(ast.Pos{}, 42)}
	mod.Functions = append(mod.Functions, fn)
	prog.Modules[mod.Name] = mod

	errs := Check(prog)
	if !errs.Empty() {
		t.Fatalf("unexpected errors: %v", errs.Errors())
	}
	if _, ok := fn.ResultType.(ast.Int32Type); !ok {
		t.Fatalf("fn.ResultType = %v, want Int32Type", fn.ResultType)
	}
	if _, ok := fn.ResultDeclared.(ast.Int32Type); !ok {
		t.Fatalf("fn.ResultDeclared = %v, want Int32Type", fn.ResultDeclared)
	}
}

func TestCheckSkipsPlatformFunctionsEntirely(t *testing.T) {
	prog := ast.NewProgram()
	mod := ast.NewModule("main")
	fn := ast.NewFunction(ast.Pos{}, ast.Name{Module: "main", Short: "nativeThing"})
	fn.IsPlatform = true
	// A platform function declares no body; leaving fn.Body nil mirrors
	// what a loader hands the checker for one.
	mod.Functions = append(mod.Functions, fn)
	prog.Modules[mod.Name] = mod

	errs := Check(prog)
	if !errs.Empty() {
		t.Fatalf("a platform function's missing body should never be reported as an error: %v", errs.Errors())
	}
	if fn.ResultDeclared != nil {
		t.Fatalf("a platform function's declared result should be left untouched, got %v", fn.ResultDeclared)
	}
}

func TestCheckFlagsABodyResultThatDisagreesWithTheDeclaredResult(t *testing.T) {
	prog := ast.NewProgram()
	mod := ast.NewModule("main")
	fn := ast.NewFunction(ast.Pos{}, ast.Name{Module: "main", Short: "mismatch"})
	fn.ResultDeclared = ast.Int64Type{}
	fn.Body = []ast.Action{ast.NewConstFloat(ast.Pos{}, 1.5)}
	mod.Functions = append(mod.Functions, fn)
	prog.Modules[mod.Name] = mod

	errs := Check(prog)
	if errs.Empty() {
		t.Fatalf("expected a type error for a Float body against a declared Int64 result")
	}
}

func TestCheckSetsMethodResultTypeFromTheInferredBody(t *testing.T) {
	prog := ast.NewProgram()
	cls := ast.NewClass(ast.Name{Short: "Thing"})
	m := ast.NewMethod(ast.Pos{}, ast.Name{Module: "main", Short: "value"}, cls)
	m.Body = []ast.Action{ast.NewConstDouble(ast.Pos{}, 3.14)}
	cls.NewMethods = append(cls.NewMethods, m)
	mod := ast.NewModule("main")
	mod.Classes = append(mod.Classes, cls)
	prog.Modules[mod.Name] = mod

	errs := Check(prog)
	if !errs.Empty() {
		t.Fatalf("unexpected errors: %v", errs.Errors())
	}
	if _, ok := m.ResultType.(ast.DoubleType); !ok {
		t.Fatalf("m.ResultType = %v, want DoubleType", m.ResultType)
	}
}
