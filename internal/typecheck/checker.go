// Package typecheck assigns a type to every Action, resolves cold lambdas,
// inserts implicit conversions, and rewrites ToStr/GetAtIndex/SetAtIndex
// into ordinary method calls.
package typecheck

import (
	"argentum/internal/ast"
	agerrors "argentum/internal/errors"
)

// Checker carries the state a single pass over a Program needs: the
// program being checked, accumulated diagnostics, and the receiver
// ("this") context active while descending into a method body.
type Checker struct {
	prog *ast.Program
	errs *agerrors.Bag

	thisClass  *ast.Class
	thisFlavor ast.PtrFlavor
	mut        ast.Mutability

	// coldLambdas tracks every ColdLambdaType seen this pass so a second
	// sighting collapses into the first instead of allocating a distinct
	// placeholder (spec: "all lambdas sharing the same cold node collapse
	// into one").
	coldLambdas map[*ast.MkLambda]*ast.ColdLambdaType
}

// Check runs the full type-checking pass over prog and returns every
// diagnostic raised. Name resolution (internal/resolver) must already have
// run: Check assumes Get/Set/GetField/SetField/method calls already carry
// resolved *Var/*Field/*Method references where resolvable.
func Check(prog *ast.Program) *agerrors.Bag {
	c := &Checker{prog: prog, errs: &agerrors.Bag{}, coldLambdas: map[*ast.MkLambda]*ast.ColdLambdaType{}}
	for _, mod := range prog.Modules {
		for _, fn := range mod.Functions {
			c.thisClass = nil
			c.mut = ast.MethodAny
			if fn.IsPlatform {
				continue
			}
			c.checkLambda(&fn.MkLambda)
			fn.ResultType = fn.ResultDeclared
		}
		for _, cls := range mod.Classes {
			for _, m := range cls.NewMethods {
				c.thisClass = cls
				c.mut = m.Mut
				if m.IsPlatform {
					continue
				}
				c.checkLambda(&m.MkLambda)
				m.ResultType = m.ResultDeclared
			}
		}
	}
	return c.errs
}

func (c *Checker) errAt(kind agerrors.Kind, pos ast.Pos, format string, args ...interface{}) {
	c.errs.Addf(kind, agerrors.Location{File: pos.Module, Line: pos.Line, Column: pos.Col}, format, args...)
}

// checkLambda type-checks every statement in l's body in order, and sets
// l's ResultDeclared to the type of the final expression (or Void for an
// empty body), per the "Block's value is its last expression" rule.
func (c *Checker) checkLambda(l *ast.MkLambda) {
	var last ast.Type = ast.VoidType{}
	for i, a := range l.Body {
		l.Body[i] = c.checkAction(a)
		last = l.Body[i].Type()
	}
	if l.ResultDeclared == nil {
		l.ResultDeclared = last
	} else if !assignable(last, l.ResultDeclared) {
		c.errAt(agerrors.TypeErr, l.Position(), "body result %s is not assignable to declared result %s", typeName(last), typeName(l.ResultDeclared))
	}
}

func typeName(t ast.Type) string {
	if t == nil {
		return "<unresolved>"
	}
	return t.String()
}
