package typecheck

import (
	"argentum/internal/ast"
	agerrors "argentum/internal/errors"
)

// typeTag derives the ToStr method suffix for a value's static type: the
// fixed mapping from primitive/pointer/enum kind to a `put<TypeTag>` name.
func typeTag(prog *ast.Program, t ast.Type) string {
	switch tt := t.(type) {
	case ast.Int32Type:
		return "Int32"
	case ast.Int64Type:
		return "Int"
	case ast.FloatType:
		return "Float"
	case ast.DoubleType:
		return "Double"
	case ast.VoidType:
		return "Void"
	case ast.EnumType:
		return tt.Name.Module + tt.Name.Short
	case ast.PtrType:
		if isDesignatedString(prog, tt) {
			return "Str"
		}
		return "Obj"
	default:
		return "Obj"
	}
}

// rewriteToStr turns ToStr(stream, value) into stream.put<TypeTag>(value),
// the method the stream's class must declare for value's static type.
func (c *Checker) rewriteToStr(n *ast.ToStr) ast.Action {
	stream := c.checkAction(n.Stream)
	value := c.checkAction(n.Value)

	pt, ok := stream.Type().(ast.PtrType)
	if !ok {
		c.errAt(agerrors.TypeErr, n.Position(), "ToStr stream must be an object pointer, got %s", typeName(stream.Type()))
		return n
	}
	methodName := "put" + typeTag(c.prog, value.Type())
	m, ok := pt.Target.ThisNames[ast.Name{Short: methodName}]
	if !ok || m == nil {
		c.errAt(agerrors.NameErr, n.Position(), "%s has no %s method for ToStr", pt.Target.Name, methodName)
		return n
	}
	call := ast.NewCall(n.Position(), ast.NewMakeDelegate(n.Position(), m, stream), value)
	return c.checkCall(call)
}

// lowerIndexOp rewrites an indexing op into a method call on recv named
// methodName, falling back to a module-level function named
// fallbackPrefix+ClassName taking recv as its first argument when the
// class declares no such method.
func (c *Checker) lowerIndexOp(pos ast.Pos, recv ast.Action, methodName, fallbackPrefix string, args []ast.Action) ast.Action {
	pt, ok := recv.Type().(ast.PtrType)
	if !ok {
		c.errAt(agerrors.TypeErr, pos, "cannot index non-object type %s", typeName(recv.Type()))
		return recv
	}
	if m, ok := pt.Target.ThisNames[ast.Name{Short: methodName}]; ok && m != nil {
		call := ast.NewCall(pos, ast.NewMakeDelegate(pos, m, recv), args...)
		return c.checkCall(call)
	}

	wantName := fallbackPrefix + pt.Target.Name.Short
	var fn *ast.Function
	for nm, f := range c.prog.Functions {
		if nm.Short == wantName {
			fn = f
			break
		}
	}
	if fn == nil {
		c.errAt(agerrors.NameErr, pos, "%s has no %s method and no module-level %s function", pt.Target.Name, methodName, wantName)
		return recv
	}
	params := append([]ast.Action{recv}, args...)
	call := ast.NewCall(pos, ast.NewMakeFnPtr(pos, fn), params...)
	return c.checkCall(call)
}

func (c *Checker) rewriteGetAtIndex(n *ast.GetAtIndex) ast.Action {
	indexed := c.checkAction(n.Indexed)
	idxs := make([]ast.Action, len(n.Indexes))
	for i, idx := range n.Indexes {
		idxs[i] = c.checkAction(idx)
	}
	return c.lowerIndexOp(n.Position(), indexed, "getAt", "getAt", idxs)
}

// rewriteSetAtIndex lowers to .setAt/setAt<ClassName>; when that method is
// declared to return Void, the rewritten call's value is replaced with the
// assigned value so SetAtIndex keeps behaving like an assignment
// expression rather than collapsing to Void.
func (c *Checker) rewriteSetAtIndex(n *ast.SetAtIndex) ast.Action {
	indexed := c.checkAction(n.Indexed)
	idxs := make([]ast.Action, len(n.Indexes))
	for i, idx := range n.Indexes {
		idxs[i] = c.checkAction(idx)
	}
	value := c.checkAction(n.Value)
	args := append(idxs, value)

	result := c.lowerIndexOp(n.Position(), indexed, "setAt", "setAt", args)
	if call, ok := result.(*ast.Call); ok {
		if _, isVoid := call.Type().(ast.VoidType); isVoid {
			call.Typ = value.Type()
		}
	}
	return result
}
