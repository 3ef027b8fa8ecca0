package typecheck

import (
	"argentum/internal/ast"
	agerrors "argentum/internal/errors"
)

// checkDispatch enforces spec.md's method dispatch typing rule: "A method
// called on a ConformRef receiver must be tagged ANY (otherwise reject);
// on a Shared receiver, it must not be MUTATING; on an owned/ref receiver,
// it must not be FROZEN." Factory methods return the caller's receiver
// type, preserving Own vs Ref and derived-class refinement.
func (c *Checker) checkDispatch(pos ast.Pos, recv ast.Type, m *ast.Method) ast.Type {
	if m == nil {
		return nil
	}
	pt, ok := recv.(ast.PtrType)
	if !ok {
		c.errAt(agerrors.TypeErr, pos, "cannot dispatch %s on non-pointer receiver", m.Name.Short)
		return m.ResultType
	}

	switch pt.Flavor {
	case ast.ConformRef, ast.ConformWeak:
		if m.Mut != ast.MethodAny {
			c.errAt(agerrors.TypeErr, pos, "%s must be tagged ANY to be callable on a conforming reference", m.Name.Short)
		}
	case ast.Shared, ast.FrozenWeak:
		if m.Mut == ast.MethodMutating {
			c.errAt(agerrors.TypeErr, pos, "cannot call MUTATING method %s on a shared receiver", m.Name.Short)
		}
	case ast.Own, ast.Ref, ast.Weak:
		if m.Mut == ast.MethodFrozen {
			c.errAt(agerrors.TypeErr, pos, "cannot call FROZEN method %s on a non-shared receiver", m.Name.Short)
		}
	}

	if m.IsFactory {
		return recv
	}
	return m.ResultType
}
