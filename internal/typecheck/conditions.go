package typecheck

import (
	"argentum/internal/ast"
	agerrors "argentum/internal/errors"
)

// checkCondition enforces: "Any expression used as a condition (If, LAnd,
// Else, LOr, Not) must evaluate to an optional or a weak reference; a weak
// in condition position is rewritten into a DerefWeakOp that yields an
// optional strong reference; any other type is an error." Returns the
// (possibly rewritten) condition action.
func (c *Checker) checkCondition(cond ast.Action) ast.Action {
	t := cond.Type()
	switch tt := t.(type) {
	case ast.OptionalType:
		return cond
	case ast.PtrType:
		if tt.Flavor == ast.Weak || tt.Flavor == ast.FrozenWeak || tt.Flavor == ast.ConformWeak {
			deref := ast.NewDerefWeakOp(cond.Position(), cond)
			deref.SetType(c.prog.Optional(ast.PtrType{Flavor: ast.Ref, Target: tt.Target, Args: tt.Args}))
			return deref
		}
	}
	c.errAt(agerrors.TypeErr, cond.Position(), "condition must be an optional or a weak reference, got %s", typeName(t))
	return cond
}

// checkIf/checkElse/checkLAnd/checkLOr all share the binOp shape but each
// has its own condition-position operand and result-type rule.
func (c *Checker) checkIf(n *ast.If) ast.Action {
	n.Lhs = c.checkAction(n.Lhs)
	n.Lhs = c.checkCondition(n.Lhs)
	n.Rhs = c.checkAction(n.Rhs)
	n.Typ = c.prog.Optional(n.Rhs.Type())
	return n
}

func (c *Checker) checkElse(n *ast.Else) ast.Action {
	n.Lhs = c.checkAction(n.Lhs) // the preceding If
	n.Lhs = c.checkCondition(n.Lhs)
	n.Rhs = c.checkAction(n.Rhs)
	ifOpt, ok := n.Lhs.Type().(ast.OptionalType)
	if !ok {
		c.errAt(agerrors.TypeErr, n.Position(), "Else must follow an optional-typed If")
		n.Typ = n.Rhs.Type()
		return n
	}
	if !assignable(n.Rhs.Type(), ifOpt.Wrapped) && !assignable(ifOpt.Wrapped, n.Rhs.Type()) {
		c.errAt(agerrors.TypeErr, n.Position(), "If/Else branches disagree: %s vs %s", typeName(ifOpt.Wrapped), typeName(n.Rhs.Type()))
	}
	n.Typ = ifOpt.Wrapped
	return n
}

func (c *Checker) checkLAnd(n *ast.LAnd) ast.Action {
	n.Lhs = c.checkAction(n.Lhs)
	n.Lhs = c.checkCondition(n.Lhs)
	n.Rhs = c.checkAction(n.Rhs)
	n.Rhs = c.checkCondition(n.Rhs)
	n.Typ = n.Rhs.Type()
	return n
}

func (c *Checker) checkLOr(n *ast.LOr) ast.Action {
	n.Lhs = c.checkAction(n.Lhs)
	n.Lhs = c.checkCondition(n.Lhs)
	n.Rhs = c.checkAction(n.Rhs)
	n.Rhs = c.checkCondition(n.Rhs)
	n.Typ = n.Lhs.Type()
	return n
}
