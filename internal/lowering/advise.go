package lowering

import "argentum/internal/ast"

// binHolder and unHolder mirror the ad hoc interfaces the type checker
// uses: they let one default case in the switch below descend into any
// binary/unary-operator-shaped node without a branch per concrete kind.
type binHolder interface {
	Operands() (ast.Action, ast.Action)
}

type unHolder interface {
	Operand() ast.Action
}

func (a *Advisor) pushLambda(l *ast.MkLambda) { a.lambdaStack = append(a.lambdaStack, l) }
func (a *Advisor) popLambda()                 { a.lambdaStack = a.lambdaStack[:len(a.lambdaStack)-1] }
func (a *Advisor) currentLambda() *ast.MkLambda {
	if len(a.lambdaStack) == 0 {
		return nil
	}
	return a.lambdaStack[len(a.lambdaStack)-1]
}

// resultLife collapses a child's computed lifetime down to Static whenever
// the node's own type can't carry a pointer, matching how the runtime
// never tracks ownership for non-pointer values.
func resultLife(t ast.Type, life Lifetime) Lifetime {
	if !isPointerKind(t) {
		return Static
	}
	return life
}

func (a *Advisor) advise(act ast.Action) *Advice {
	if act == nil {
		return nil
	}
	if adv, ok := a.advice[act]; ok {
		return adv
	}

	switch n := act.(type) {
	case *ast.Get:
		return a.adviseGet(n)
	case *ast.Set:
		return a.adviseSet(n)
	case *ast.MkInstance:
		return a.record(n, &Advice{Life: Retained, Notes: []string{
			"allocate a fresh instance; the returned reference is owned by the caller",
		}})
	case *ast.GetField:
		return a.adviseGetField(n)
	case *ast.SpliceField:
		return a.adviseSpliceField(n)
	case *ast.SetField:
		return a.adviseSetField(n)
	case *ast.AsyncCall:
		return a.adviseAsyncCall(n)
	case *ast.Call:
		return a.adviseCall(n)
	case *ast.CopyOp:
		return a.adviseCopyOp(n)
	case *ast.FreezeOp:
		return a.adviseFreezeOp(n)
	case *ast.MkWeakOp:
		return a.adviseMkWeakOp(n)
	case *ast.Loop:
		return a.adviseLoop(n)
	case *ast.Break:
		return a.adviseBreak(n)
	case *ast.MkLambda:
		return a.adviseLambda(n)
	case *ast.Block:
		return a.adviseBlockBody(n)
	case *ast.ToStr:
		// Resolved to a Call by the type checker before lowering ever sees
		// a real program; kept here only so the traversal stays total.
		a.advise(n.Stream)
		a.advise(n.Value)
		return a.record(n, &Advice{Life: Static})
	case *ast.GetAtIndex:
		a.advise(n.Indexed)
		for _, idx := range n.Indexes {
			a.advise(idx)
		}
		return a.record(n, &Advice{Life: resultLife(n.Type(), Retained)})
	case *ast.SetAtIndex:
		a.advise(n.Indexed)
		for _, idx := range n.Indexes {
			a.advise(idx)
		}
		a.advise(n.Value)
		return a.record(n, &Advice{Life: resultLife(n.Type(), Retained)})
	case binHolder:
		l, r := n.Operands()
		a.advise(l)
		a.advise(r)
		return a.record(act, &Advice{Life: Static})
	case unHolder:
		a.advise(n.Operand())
		return a.record(act, &Advice{Life: Static})
	default:
		return a.record(act, &Advice{Life: Static})
	}
}

func (a *Advisor) adviseGet(n *ast.Get) *Advice {
	if n.Var == nil || !isPointerKind(n.Type()) {
		return a.record(n, &Advice{Life: Static})
	}
	if n.Var.IsMutable {
		return a.record(n, &Advice{Life: Temp, Var: n.Var, Notes: []string{
			"borrowed from a mutable local; retain before the value outlives " + n.Var.Name.Short,
		}})
	}
	return a.record(n, &Advice{Life: Static, Notes: []string{
		"read-only binding; the load itself needs no retain",
	}})
}

func (a *Advisor) adviseSet(n *ast.Set) *Advice {
	a.advise(n.Val)
	return a.record(n, &Advice{Life: Temp, Var: n.Var, Notes: []string{
		"persist the value expression to a stable slot before storing",
		"release the previous contents of " + n.Name.Short,
		"store the new value",
	}})
}

func (a *Advisor) adviseGetField(n *ast.GetField) *Advice {
	baseAdv := a.advise(n.Base)
	if !isPointerKind(n.Type()) {
		return a.record(n, &Advice{Life: Static})
	}
	if baseAdv != nil && baseAdv.Life == Retained {
		return a.record(n, &Advice{Life: RField, Owner: n.Base, Notes: []string{
			"field borrowed from a temporary owner; promote to Retained (retain field, release owner) before it escapes, or ensure it dies with the owner first",
		}})
	}
	return a.record(n, &Advice{Life: Temp, Notes: []string{
		"field borrowed from a stable receiver; no owner release pending",
	}})
}

func (a *Advisor) adviseSetField(n *ast.SetField) *Advice {
	baseAdv := a.advise(n.Base)
	a.advise(n.Val)
	notes := []string{
		"persist the value expression to a stable slot before storing",
		"release the field's previous contents",
		"store the new value",
	}
	if baseAdv != nil && baseAdv.Life == Retained {
		notes = append(notes, "release the temporary base once the store completes")
	}
	return a.record(n, &Advice{Life: Temp, Notes: notes})
}

func (a *Advisor) adviseSpliceField(n *ast.SpliceField) *Advice {
	adv := a.adviseSetField(&n.SetField)
	adv.Notes = append([]string{
		"walk the new value's parent chain and refuse the store if base already appears in it",
	}, adv.Notes...)
	return a.record(n, adv)
}

func (a *Advisor) adviseCall(n *ast.Call) *Advice {
	a.advise(n.Callee)
	for _, p := range n.Params {
		a.advise(p)
	}
	notes := []string{"persist each argument to a stable slot before the call"}
	if _, ok := n.Callee.(*ast.MakeDelegate); ok {
		notes = append(notes, "dereference the delegate's weak receiver; abort the call if it has been collected")
	}
	return a.record(n, &Advice{Life: resultLife(n.Type(), Retained), Notes: notes})
}

func (a *Advisor) adviseAsyncCall(n *ast.AsyncCall) *Advice {
	a.advise(n.Callee)
	for _, p := range n.Params {
		a.advise(p)
	}
	return a.record(n, &Advice{Life: Static, Notes: []string{
		"persist each argument and transfer ownership into the target thread's message queue",
		"dispatch is queued and returns immediately; no result is retained on this thread",
	}})
}

func (a *Advisor) adviseCopyOp(n *ast.CopyOp) *Advice {
	a.advise(n.Operand())
	return a.record(n, &Advice{Life: resultLife(n.Type(), Retained), Notes: []string{
		"deep-copy via the topology-preserving worklist; result is a fresh owned tree sharing no identity with the source",
	}})
}

func (a *Advisor) adviseFreezeOp(n *ast.FreezeOp) *Advice {
	a.advise(n.Operand())
	return a.record(n, &Advice{Life: resultLife(n.Type(), Retained), Notes: []string{
		"if the operand is already Shared, retain and return it directly",
		"otherwise copy_freeze: deep-copy the tree while converting every owning link to Shared",
	}})
}

func (a *Advisor) adviseMkWeakOp(n *ast.MkWeakOp) *Advice {
	if _, ok := n.Operand().(*ast.MkInstance); ok {
		return a.record(n, &Advice{Life: Static, Notes: []string{
			"operand is a fresh instantiation with no prior identity; the weak reference is null",
		}})
	}
	a.advise(n.Operand())
	return a.record(n, &Advice{Life: resultLife(n.Type(), Retained), Notes: []string{
		"allocate a weak block pointing at the operand and return a weak reference to it",
	}})
}

func (a *Advisor) adviseLoop(n *ast.Loop) *Advice {
	a.advise(n.Operand())
	return a.record(n, &Advice{Life: resultLife(n.Type(), Retained), Notes: []string{
		"re-evaluate the body until a Break supplies the loop's result",
		"discard intermediate empty iterations without retaining them",
	}})
}

func (a *Advisor) adviseBreak(n *ast.Break) *Advice {
	var valAdv *Advice
	if n.Value != nil {
		valAdv = a.advise(n.Value)
	}
	owner := a.blockOwner[n.Target]
	var notes []string
	if owner == a.currentLambda() {
		notes = []string{"normal return: unwind directly to the target block within the current function"}
	} else {
		notes = []string{
			"cross-break: store the value into the target block's hidden result slot",
			"propagate no value to the immediate caller; the enclosing call dispatches the unwind",
		}
	}
	life := Static
	if valAdv != nil {
		life = resultLife(n.Value.Type(), valAdv.Life)
	}
	return a.record(n, &Advice{Life: life, Notes: notes})
}

func (a *Advisor) adviseLambda(n *ast.MkLambda) *Advice {
	a.pushLambda(n)
	a.adviseBlockBody(&n.Block)
	a.popLambda()
	return a.record(n, &Advice{Life: Retained, Notes: []string{
		"allocate a closure capturing its mutable locals by reference and everything else by value",
	}})
}

func (a *Advisor) adviseBlockBody(b *ast.Block) *Advice {
	if _, ok := a.blockOwner[b]; !ok {
		a.blockOwner[b] = a.currentLambda()
	}
	var last *Advice
	for _, stmt := range b.Body {
		last = a.advise(stmt)
	}
	if last == nil {
		return a.record(b, &Advice{Life: Static})
	}
	return a.record(b, last)
}
