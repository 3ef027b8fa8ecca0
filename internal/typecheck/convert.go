package typecheck

import "argentum/internal/ast"

// assignable reports whether a value of type from may be stored into a
// slot declared as type to, accounting for every implicit conversion this
// checker inserts: Own<C> -> Ref<C>, {Shared<C>,Own<C>} -> ConformRef<C>,
// and optional auto-wrap up to the declared depth.
func assignable(from, to ast.Type) bool {
	if ast.SameType(from, to) {
		return true
	}
	if to == nil || from == nil {
		return false
	}

	if tOpt, ok := to.(ast.OptionalType); ok {
		if fOpt, ok := from.(ast.OptionalType); ok {
			return fOpt.Depth <= tOpt.Depth && assignable(fOpt.Wrapped, tOpt.Wrapped)
		}
		return assignable(from, tOpt.Wrapped) // auto-wrap: If(true, e) synthesized by insertConversion
	}

	fp, fOK := from.(ast.PtrType)
	tp, tOK := to.(ast.PtrType)
	if !fOK || !tOK || fp.Target != tp.Target {
		return false
	}
	switch tp.Flavor {
	case ast.Ref:
		return fp.Flavor == ast.Own || fp.Flavor == ast.Ref
	case ast.ConformRef:
		return fp.Flavor == ast.Own || fp.Flavor == ast.Shared || fp.Flavor == ast.ConformRef
	case ast.Weak, ast.FrozenWeak, ast.ConformWeak:
		return fp.Flavor == tp.Flavor
	default:
		return fp.Flavor == tp.Flavor
	}
}

// insertConversion wraps e in the AST rewrite assignable() licensed, so
// lowering sees an explicit conversion node rather than an implicit one.
// Optional auto-wrap synthesizes If(true, e): the spec's literal
// description of how a bare value becomes "present" at a deeper optional
// depth.
func insertConversion(e ast.Action, from, to ast.Type) ast.Action {
	if ast.SameType(from, to) {
		return e
	}
	if tOpt, ok := to.(ast.OptionalType); ok {
		if fOpt, ok := from.(ast.OptionalType); !ok || fOpt.Depth < tOpt.Depth {
			wrapped := e
			depth := -1
			if ok {
				depth = fOpt.Depth
			}
			for d := depth; d < tOpt.Depth; d++ {
				wrapped = ast.NewIf(e.Position(), ast.NewConstBool(e.Position(), true), wrapped)
				wrapped.SetType(to)
			}
			return wrapped
		}
	}
	if tp, ok := to.(ast.PtrType); ok {
		switch tp.Flavor {
		case ast.Ref:
			r := ast.NewRefOp(e.Position(), e)
			r.SetType(to)
			return r
		case ast.ConformRef:
			conf := ast.NewConformOp(e.Position(), e)
			conf.SetType(to)
			return conf
		}
	}
	return e
}

// ownAutoWrapsToLambda reports the sugar in spec.md §4.2: "An Own<C>
// auto-wraps into a 1-ary lambda returning that Own, enabling
// method-reference-as-factory sugar" — used when a bare Own expression
// appears where a LambdaType/FunctionType is expected.
func ownAutoWrapsToLambda(from ast.Type, to ast.Type) bool {
	p, ok := from.(ast.PtrType)
	if !ok || p.Flavor != ast.Own {
		return false
	}
	switch to.(type) {
	case ast.LambdaType, ast.FunctionType, ast.DelegateType:
		return true
	}
	return false
}
