package typecheck

import (
	"argentum/internal/ast"
	agerrors "argentum/internal/errors"
)

// binHolder/unHolder mirror the resolver's generic-walk interfaces, plus a
// setter so a rewriting pass can write back a checked operand.
type binHolder interface {
	Operands() (ast.Action, ast.Action)
	SetOperands(ast.Action, ast.Action)
}

type unHolder interface {
	Operand() ast.Action
	SetOperand(ast.Action)
}

func isNumeric(t ast.Type) bool {
	switch t.(type) {
	case ast.Int32Type, ast.Int64Type, ast.FloatType, ast.DoubleType:
		return true
	}
	return false
}

func isIntegral(t ast.Type) bool {
	switch t.(type) {
	case ast.Int32Type, ast.Int64Type:
		return true
	}
	return false
}

// checkBinOp handles every Add/Sub/Mul/Div/Mod/And/Or/Xor/Shl/Shr/Eq/Lt/
// Neg/Inv node uniformly through the binOp/unOp accessor interfaces, since
// none of them needs anything beyond "check both operands, require a
// numeric/integral type, assign a result type."
func (c *Checker) checkBinOp(a ast.Action) {
	switch h := a.(type) {
	case binHolder:
		l, r := h.Operands()
		l = c.checkAction(l)
		r = c.checkAction(r)
		h.SetOperands(l, r)
		c.assignBinType(a, l, r)
	case unHolder:
		p := c.checkAction(h.Operand())
		h.SetOperand(p)
		if !isNumeric(p.Type()) {
			c.errAt(agerrors.TypeErr, a.Position(), "non-numeric operand for %s: %s", a.Kind(), typeName(p.Type()))
		}
		a.SetType(p.Type())
	default:
		c.errAt(agerrors.TypeErr, a.Position(), "unrecognized expression kind %s", a.Kind())
	}
}

func (c *Checker) assignBinType(a ast.Action, l, r ast.Action) {
	switch a.Kind() {
	case ast.KEq, ast.KLt:
		if !ast.SameType(l.Type(), r.Type()) && !isNumeric(l.Type()) {
			c.errAt(agerrors.TypeErr, a.Position(), "cannot compare %s with %s", typeName(l.Type()), typeName(r.Type()))
		}
		a.SetType(c.prog.Optional(ast.VoidType{}))
	case ast.KAnd, ast.KOr, ast.KXor, ast.KShl, ast.KShr:
		if !isIntegral(l.Type()) || !isIntegral(r.Type()) {
			c.errAt(agerrors.TypeErr, a.Position(), "non-integral operand for %s: %s, %s", a.Kind(), typeName(l.Type()), typeName(r.Type()))
			a.SetType(l.Type())
			return
		}
		a.SetType(l.Type())
	default: // Add, Sub, Mul, Div, Mod
		if !isNumeric(l.Type()) || !isNumeric(r.Type()) {
			c.errAt(agerrors.TypeErr, a.Position(), "non-numeric operand for %s: %s, %s", a.Kind(), typeName(l.Type()), typeName(r.Type()))
			a.SetType(l.Type())
			return
		}
		if !ast.SameType(l.Type(), r.Type()) {
			c.errAt(agerrors.TypeErr, a.Position(), "mismatched operand types for %s: %s vs %s", a.Kind(), typeName(l.Type()), typeName(r.Type()))
		}
		a.SetType(l.Type())
	}
}
