package resolver

import (
	"argentum/internal/ast"
	agerrors "argentum/internal/errors"
)

// Resolver carries the state one resolution pass over a Program needs:
// accumulated diagnostics plus the "this" context tracked while walking
// into a method body.
type Resolver struct {
	errs *agerrors.Bag

	thisVar   *ast.Var
	thisClass *ast.Class
	locals    []scope
}

type scope struct {
	vars map[string]*ast.Var
}

// Resolve runs every resolution sub-pass over prog in the order a derived
// class's lookups depend on: class ordering must finish before member
// tables are built, member tables before generic-context propagation,
// and all three before expression-level name and break resolution (which
// consult ThisNames/BaseContext while walking function bodies).
func Resolve(prog *ast.Program) *agerrors.Bag {
	r := &Resolver{errs: &agerrors.Bag{}}

	r.orderClasses(prog)
	if !r.errs.Empty() {
		return r.errs
	}

	r.fixGlobals(prog)
	r.propagateGenericContexts(prog)
	r.resolveExpressions(prog)
	r.resolveBreaks(prog)

	return r.errs
}

func (r *Resolver) pushScope() { r.locals = append(r.locals, scope{vars: map[string]*ast.Var{}}) }
func (r *Resolver) popScope()  { r.locals = r.locals[:len(r.locals)-1] }

func (r *Resolver) declare(v *ast.Var) {
	if len(r.locals) == 0 {
		return
	}
	r.locals[len(r.locals)-1].vars[v.Name.Short] = v
}

func (r *Resolver) lookupLocal(short string) *ast.Var {
	for i := len(r.locals) - 1; i >= 0; i-- {
		if v, ok := r.locals[i].vars[short]; ok {
			return v
		}
	}
	return nil
}
