package resolver

import (
	"testing"

	"argentum/internal/ast"
	agerrors "argentum/internal/errors"
)

func TestOrderClassesBaseBeforeDerived(t *testing.T) {
	prog := ast.NewProgram()
	prog.Object = ast.NewClass(ast.Name{Short: "Object"})
	prog.Classes[prog.Object.Name] = prog.Object

	base := ast.NewClass(ast.Name{Short: "Base"})
	derived := ast.NewClass(ast.Name{Short: "Derived"})
	derived.Base = base
	prog.Classes[base.Name] = base
	prog.Classes[derived.Name] = derived

	r := &Resolver{errs: &agerrors.Bag{}}
	r.orderClasses(prog)
	if !r.errs.Empty() {
		t.Fatalf("unexpected errors: %v", r.errs.Errors())
	}

	pos := map[*ast.Class]int{}
	for i, c := range prog.ClassOrder {
		pos[c] = i
	}
	if pos[base] >= pos[derived] {
		t.Fatalf("expected Base before Derived, got order %v", prog.ClassOrder)
	}
	if derived.Base != base {
		t.Fatalf("derived.Base should remain explicit Base")
	}
}

func TestOrderClassesInjectsImplicitObjectBase(t *testing.T) {
	prog := ast.NewProgram()
	prog.Object = ast.NewClass(ast.Name{Short: "Object"})
	prog.Classes[prog.Object.Name] = prog.Object

	lonely := ast.NewClass(ast.Name{Short: "Lonely"})
	prog.Classes[lonely.Name] = lonely

	r := &Resolver{errs: &agerrors.Bag{}}
	r.orderClasses(prog)
	if lonely.Base != prog.Object {
		t.Fatalf("expected Lonely to implicitly extend Object, got %v", lonely.Base)
	}
}

func TestOrderClassesDetectsCycle(t *testing.T) {
	prog := ast.NewProgram()
	a := ast.NewClass(ast.Name{Short: "A"})
	b := ast.NewClass(ast.Name{Short: "B"})
	a.Base = b
	b.Base = a
	prog.Classes[a.Name] = a
	prog.Classes[b.Name] = b

	r := &Resolver{errs: &agerrors.Bag{}}
	r.orderClasses(prog)
	if r.errs.Empty() {
		t.Fatalf("expected a cyclic-base error")
	}
}

func TestBuildThisNamesInheritsBaseMethods(t *testing.T) {
	prog := ast.NewProgram()
	prog.Object = ast.NewClass(ast.Name{Short: "Object"})
	base := ast.NewClass(ast.Name{Short: "Base"})
	base.Base = prog.Object
	m := ast.NewMethod(ast.Pos{}, ast.Name{Module: "m", Short: "greet"}, base)
	base.NewMethods = append(base.NewMethods, m)
	prog.Classes[base.Name] = base
	prog.Classes[prog.Object.Name] = prog.Object

	derived := ast.NewClass(ast.Name{Short: "Derived"})
	derived.Base = base
	prog.Classes[derived.Name] = derived

	r := &Resolver{errs: &agerrors.Bag{}}
	r.orderClasses(prog)
	r.fixGlobals(prog)

	if got := derived.ThisNames[ast.Name{Short: "greet"}]; got != m {
		t.Fatalf("expected Derived to inherit Base.greet, got %v", got)
	}
}

func TestResolveBreakFindsEnclosingBlock(t *testing.T) {
	prog := ast.NewProgram()
	mod := ast.NewModule("main")
	fn := ast.NewFunction(ast.Pos{}, ast.Name{Module: "main", Short: "run"})

	brk := ast.NewBreak(ast.Pos{}, nil, ast.NewConstInt32(ast.Pos{}, 1))
	fn.Body = []ast.Action{brk}
	mod.Functions = append(mod.Functions, fn)
	prog.Modules[mod.Name] = mod

	r := &Resolver{errs: &agerrors.Bag{}}
	r.resolveBreaks(prog)
	if !r.errs.Empty() {
		t.Fatalf("unexpected errors: %v", r.errs.Errors())
	}
	if brk.Target != &fn.Block {
		t.Fatalf("expected break to target the function's own block")
	}
}

func TestResolveBreakCrossesNestedLambda(t *testing.T) {
	prog := ast.NewProgram()
	mod := ast.NewModule("main")
	fn := ast.NewFunction(ast.Pos{}, ast.Name{Module: "main", Short: "run"})
	fn.BreakName = ast.Name{Short: "outer"}

	inner := ast.NewMkLambda(ast.Pos{})
	brk := ast.NewBreak(ast.Pos{}, &fn.Block, ast.NewConstInt32(ast.Pos{}, 2))
	brk.Target = &ast.Block{BreakName: ast.Name{Short: "outer"}}
	inner.Body = []ast.Action{brk}
	fn.Body = []ast.Action{inner}
	mod.Functions = append(mod.Functions, fn)
	prog.Modules[mod.Name] = mod

	r := &Resolver{errs: &agerrors.Bag{}}
	r.resolveBreaks(prog)
	if !r.errs.Empty() {
		t.Fatalf("unexpected errors: %v", r.errs.Errors())
	}
	if !inner.CanCrossBreak {
		t.Fatalf("expected inner lambda to be marked CanCrossBreak")
	}
	if brk.Target != &fn.Block {
		t.Fatalf("expected break to re-target the named outer block")
	}
}
