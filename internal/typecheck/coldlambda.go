package typecheck

import (
	"argentum/internal/ast"
	agerrors "argentum/internal/errors"
)

// resolveColdAtCallSite implements the rule that a lambda literal whose
// parameter/result types could not be inferred at its own definition site
// (a "cold" lambda) picks them up from the first concrete call site it
// reaches: parameter types come straight from the call's argument types,
// and the result type is whatever checking the body under those bindings
// produces. Every MkLambda sharing ct collapses into the one resulting
// LambdaType, since they are the same placeholder by construction.
func (c *Checker) resolveColdAtCallSite(ct *ast.ColdLambdaType, call *ast.Call) {
	if ct.Resolved != nil {
		if lt, ok := ct.Resolved.(ast.LambdaType); ok {
			call.Typ = resultOf(lt.Params)
			c.checkArity(call, lt.Params)
			return
		}
	}

	argTypes := make([]ast.Type, len(call.Params))
	for i, p := range call.Params {
		argTypes[i] = p.Type()
	}

	var resultType ast.Type
	for _, l := range ct.Callees {
		if len(l.Vars) != len(argTypes) {
			c.errAt(agerrors.TypeErr, call.Position(), "arity mismatch binding cold lambda: expected %d arguments, got %d", len(l.Vars), len(argTypes))
			continue
		}
		for i, v := range l.Vars {
			if v.Declared == nil {
				v.Declared = argTypes[i]
			}
		}
		c.checkLambda(l)
		delete(c.coldLambdas, l)
		if resultType == nil {
			resultType = l.ResultDeclared
		} else if !assignable(l.ResultDeclared, resultType) && !assignable(resultType, l.ResultDeclared) {
			c.errAt(agerrors.TypeErr, l.Position(), "cold lambda result %s disagrees with %s already bound at this call site", typeName(l.ResultDeclared), typeName(resultType))
		}
	}
	if resultType == nil {
		resultType = ast.VoidType{}
	}

	params := append(append([]ast.Type{}, argTypes...), resultType)
	lt := c.prog.Lambda(params)
	ct.Resolved = lt
	call.Typ = resultOf(lt.Params)
	c.checkArity(call, lt.Params)
}
