package typecheck

import (
	"argentum/internal/ast"
	agerrors "argentum/internal/errors"
)

// checkAction assigns a type to a (possibly returning a rewritten) node and
// recurses into its children, writing any rewritten child back into the
// parent's own field so later passes never see a ToStr/GetAtIndex/
// SetAtIndex node that survived past this checker.
func (c *Checker) checkAction(a ast.Action) ast.Action {
	if a == nil {
		return nil
	}
	switch n := a.(type) {
	case *ast.ConstInt32:
		n.Typ = ast.Int32Type{}
	case *ast.ConstInt64:
		n.Typ = ast.Int64Type{}
	case *ast.ConstFloat:
		n.Typ = ast.FloatType{}
	case *ast.ConstDouble:
		n.Typ = ast.DoubleType{}
	case *ast.ConstBool:
		n.Typ = c.prog.Optional(ast.VoidType{}) // booleans are sugar over an optional Void in this checker's model
	case *ast.ConstVoid:
		n.Typ = ast.VoidType{}
	case *ast.ConstString:
		n.Typ = c.stringType()
	case *ast.ConstEnumTag:
		n.Typ = ast.EnumType{Name: n.Enum}

	case *ast.Get:
		c.checkGet(n)

	case *ast.Set:
		n.Val = c.checkAction(n.Val)
		c.checkSet(n)

	case *ast.Block:
		c.checkBlock(n)

	case *ast.MkLambda:
		c.checkLambda(n)
		n.Typ = c.lambdaTypeOf(n)

	case *ast.MkInstance:
		n.Typ = ast.PtrType{Flavor: ast.Own, Target: n.Class, Args: n.Args}

	case *ast.GetField:
		n.Base = c.checkAction(n.Base)
		c.checkGetField(n)

	case *ast.SetField:
		n.Base = c.checkAction(n.Base)
		n.Val = c.checkAction(n.Val)
		c.checkSetField(n)

	case *ast.SpliceField:
		n.Base = c.checkAction(n.Base)
		n.Val = c.checkAction(n.Val)
		c.checkSetField(&n.SetField)

	case *ast.Call:
		return c.checkCall(n)

	case *ast.AsyncCall:
		c.checkCall(&n.Call)

	case *ast.MakeDelegate:
		n.Base = c.checkAction(n.Base)
		if n.Method != nil {
			n.Typ = c.prog.Delegate(paramTypesOf(n.Method))
		}

	case *ast.MakeFnPtr:
		if n.Fn != nil {
			n.Typ = c.prog.FunctionType(paramTypesOfFn(n.Fn))
		}

	case *ast.ToStr:
		return c.rewriteToStr(n)

	case *ast.GetAtIndex:
		return c.rewriteGetAtIndex(n)

	case *ast.SetAtIndex:
		return c.rewriteSetAtIndex(n)

	case *ast.Break:
		n.Value = c.checkAction(n.Value)
		if n.Value != nil {
			n.Typ = n.Value.Type()
		} else {
			n.Typ = ast.VoidType{}
		}

	case *ast.If:
		return c.checkIf(n)
	case *ast.Else:
		return c.checkElse(n)
	case *ast.LAnd:
		return c.checkLAnd(n)
	case *ast.LOr:
		return c.checkLOr(n)
	case *ast.Not:
		n.P = c.checkAction(n.P)
		n.P = c.checkCondition(n.P)
		n.Typ = n.P.Type()

	case *ast.CopyOp:
		n.P = c.checkAction(n.P)
		n.Typ = n.P.Type()
	case *ast.FreezeOp:
		n.P = c.checkAction(n.P)
		n.Typ = sharedOf(n.P.Type())
	case *ast.RefOp:
		n.P = c.checkAction(n.P)
		n.Typ = refOf(n.P.Type())
	case *ast.ConformOp:
		n.P = c.checkAction(n.P)
		n.Typ = conformOf(n.P.Type())
	case *ast.MkWeakOp:
		n.P = c.checkAction(n.P)
		n.Typ = weakOf(n.P.Type())
	case *ast.DerefWeakOp:
		n.P = c.checkAction(n.P)
		n.Typ = c.prog.Optional(refOf(n.P.Type()))
	case *ast.Loop:
		n.P = c.checkAction(n.P)
		n.Typ = unwrapOptional(n.P.Type())

	case *ast.CastOp:
		n.P = c.checkAction(n.P)
		n.Typ = n.Target
	case *ast.ToInt32:
		n.P = c.checkAction(n.P)
		n.Typ = ast.Int32Type{}
	case *ast.ToInt:
		n.P = c.checkAction(n.P)
		n.Typ = ast.Int64Type{}
	case *ast.ToFloat:
		n.P = c.checkAction(n.P)
		n.Typ = ast.FloatType{}
	case *ast.ToDouble:
		n.P = c.checkAction(n.P)
		n.Typ = ast.DoubleType{}

	default:
		c.checkBinOp(a)
	}
	return a
}

func (c *Checker) checkBlock(b *ast.Block) {
	for _, v := range b.Vars {
		if v.Initializer != nil {
			v.Initializer = c.checkAction(v.Initializer)
			if v.Declared == nil {
				v.Declared = v.Initializer.Type()
			} else if !assignable(v.Initializer.Type(), v.Declared) {
				c.errAt(agerrors.TypeErr, v.Pos, "cannot assign %s to %s", typeName(v.Initializer.Type()), typeName(v.Declared))
			}
		}
	}
	for i, stmt := range b.Body {
		b.Body[i] = c.checkAction(stmt)
	}
	if len(b.Body) > 0 {
		b.Typ = b.Body[len(b.Body)-1].Type()
	} else {
		b.Typ = ast.VoidType{}
	}
}

func (c *Checker) checkGet(g *ast.Get) {
	if g.Var != nil {
		g.Typ = g.Var.Declared
		return
	}
	if c.thisClass != nil {
		if f, ok := c.thisClass.ThisFields[ast.Name{Short: g.Name.Short}]; ok && f != nil {
			g.Typ = f.Declared
			return
		}
	}
	c.errAt(agerrors.NameErr, g.Position(), "unknown name %q", g.Name.Short)
}

func (c *Checker) checkSet(s *ast.Set) {
	if s.Var == nil {
		c.errAt(agerrors.NameErr, s.Position(), "unknown name %q", s.Name.Short)
		return
	}
	if !assignable(s.Val.Type(), s.Var.Declared) {
		if ownAutoWrapsToLambda(s.Val.Type(), s.Var.Declared) {
			// sugar accepted as-is; lowering treats the bare Own as the
			// 1-ary factory lambda body
		} else {
			c.errAt(agerrors.TypeErr, s.Position(), "cannot assign %s to %s", typeName(s.Val.Type()), typeName(s.Var.Declared))
		}
	} else {
		s.Val = insertConversion(s.Val, s.Val.Type(), s.Var.Declared)
	}
	s.Typ = s.Var.Declared
}

func (c *Checker) checkGetField(g *ast.GetField) {
	if g.Field != nil {
		g.Typ = g.Field.Declared
		return
	}
	if g.Base == nil {
		return
	}
	pt, ok := g.Base.Type().(ast.PtrType)
	if !ok {
		c.errAt(agerrors.TypeErr, g.Position(), "cannot access field %q on non-object type %s", g.FieldName.Short, typeName(g.Base.Type()))
		return
	}
	if f, ok := pt.Target.ThisFields[g.FieldName]; ok && f != nil {
		g.Field = f
		g.Typ = f.Declared
		return
	}
	c.errAt(agerrors.NameErr, g.Position(), "%s has no field %q", pt.Target.Name, g.FieldName.Short)
}

func (c *Checker) checkSetField(s *ast.SetField) {
	if s.Field == nil && s.Base != nil {
		if pt, ok := s.Base.Type().(ast.PtrType); ok {
			if f, ok := pt.Target.ThisFields[s.FieldName]; ok && f != nil {
				s.Field = f
			}
		}
	}
	if s.Field == nil {
		c.errAt(agerrors.NameErr, s.Position(), "%s has no field %q", baseTypeName(s.Base), s.FieldName.Short)
		return
	}
	declared := s.Field.Declared
	if !assignable(s.Val.Type(), declared) {
		c.errAt(agerrors.TypeErr, s.Position(), "cannot assign %s to field %s of type %s", typeName(s.Val.Type()), s.FieldName.Short, typeName(declared))
	} else {
		s.Val = insertConversion(s.Val, s.Val.Type(), declared)
	}
	s.Typ = declared
}

func baseTypeName(base ast.Action) string {
	if base == nil {
		return "this"
	}
	return typeName(base.Type())
}

func (c *Checker) checkCall(call *ast.Call) ast.Action {
	call.Callee = c.checkAction(call.Callee)
	for i, p := range call.Params {
		call.Params[i] = c.checkAction(p)
	}

	if md, ok := call.Callee.(*ast.MakeDelegate); ok {
		recv := ast.Type(nil)
		if md.Base != nil {
			recv = md.Base.Type()
		}
		call.Typ = c.checkDispatch(call.Position(), recv, md.Method)
		c.checkArity(call, paramTypesOf(md.Method))
		return call
	}

	switch ct := call.Callee.Type().(type) {
	case ast.LambdaType:
		call.Typ = resultOf(ct.Params)
		c.checkArity(call, ct.Params)
	case ast.FunctionType:
		call.Typ = resultOf(ct.Params)
		c.checkArity(call, ct.Params)
	case ast.DelegateType:
		call.Typ = resultOf(ct.Params)
		c.checkArity(call, ct.Params)
	case *ast.ColdLambdaType:
		c.resolveColdAtCallSite(ct, call)
	default:
		c.errAt(agerrors.TypeErr, call.Position(), "callee is not callable")
	}
	return call
}

func (c *Checker) checkArity(call *ast.Call, declared []ast.Type) {
	want := len(declared) - 1 // last element is the result type
	if want < 0 {
		want = 0
	}
	if len(call.Params) != want {
		c.errAt(agerrors.TypeErr, call.Position(), "arity mismatch: expected %d arguments, got %d", want, len(call.Params))
		return
	}
	for i, p := range call.Params {
		if !assignable(p.Type(), declared[i]) {
			c.errAt(agerrors.TypeErr, p.Position(), "argument %d: cannot pass %s where %s expected", i, typeName(p.Type()), typeName(declared[i]))
		} else {
			call.Params[i] = insertConversion(p, p.Type(), declared[i])
		}
	}
}

func resultOf(params []ast.Type) ast.Type {
	if len(params) == 0 {
		return ast.VoidType{}
	}
	return params[len(params)-1]
}

func paramTypesOf(m *ast.Method) []ast.Type {
	if m == nil {
		return nil
	}
	out := make([]ast.Type, 0, len(m.Params)+1)
	for _, p := range m.Params {
		out = append(out, p.Declared)
	}
	out = append(out, m.ResultType)
	return out
}

func paramTypesOfFn(fn *ast.Function) []ast.Type {
	out := make([]ast.Type, 0, len(fn.Params)+1)
	for _, p := range fn.Params {
		out = append(out, p.Declared)
	}
	out = append(out, fn.ResultType)
	return out
}

func (c *Checker) lambdaTypeOf(l *ast.MkLambda) ast.Type {
	params := make([]ast.Type, 0, len(l.Vars)+1)
	allKnown := true
	for _, v := range l.Vars {
		if v.Declared == nil {
			allKnown = false
		}
		params = append(params, v.Declared)
	}
	params = append(params, l.ResultDeclared)
	if !allKnown || l.ResultDeclared == nil {
		cold, ok := c.coldLambdas[l]
		if !ok {
			cold = &ast.ColdLambdaType{Callees: []*ast.MkLambda{l}}
			c.coldLambdas[l] = cold
		}
		return cold
	}
	return c.prog.Lambda(params)
}

func sharedOf(t ast.Type) ast.Type {
	if p, ok := t.(ast.PtrType); ok {
		return ast.PtrType{Flavor: ast.Shared, Target: p.Target, Args: p.Args}
	}
	return t
}

func refOf(t ast.Type) ast.Type {
	if p, ok := t.(ast.PtrType); ok {
		return ast.PtrType{Flavor: ast.Ref, Target: p.Target, Args: p.Args}
	}
	return t
}

func conformOf(t ast.Type) ast.Type {
	if p, ok := t.(ast.PtrType); ok {
		return ast.PtrType{Flavor: ast.ConformRef, Target: p.Target, Args: p.Args}
	}
	return t
}

func weakOf(t ast.Type) ast.Type {
	if p, ok := t.(ast.PtrType); ok {
		return ast.PtrType{Flavor: ast.Weak, Target: p.Target, Args: p.Args}
	}
	return t
}

func unwrapOptional(t ast.Type) ast.Type {
	if o, ok := t.(ast.OptionalType); ok {
		if o.Depth == 0 {
			return o.Wrapped
		}
		return ast.OptionalType{Wrapped: o.Wrapped, Depth: o.Depth - 1}
	}
	return ast.NoRetType{}
}
