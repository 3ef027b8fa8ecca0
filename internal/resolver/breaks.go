package resolver

import (
	"argentum/internal/ast"
	agerrors "argentum/internal/errors"
)

// breakWalker resolves every Break.Target against the enclosing Block it
// names (or the innermost enclosing Block if Break carries no explicit
// target name yet) and marks every MkLambda the break's path crosses with
// CanCrossBreak, so the lowering advisor knows that lambda's activation
// frame must stay reachable until the break unwinds through it.
type breakWalker struct {
	errs           *agerrors.Bag
	blocks         []*ast.Block    // enclosing blocks, innermost last
	lambdas        []*ast.MkLambda // enclosing lambdas, innermost last
	lambdaBlockIdx []int           // parallel to lambdas: index of lambdas[i]'s own Block within blocks at push time
}

func (r *Resolver) resolveBreaks(prog *ast.Program) {
	w := &breakWalker{errs: r.errs}
	for _, mod := range prog.Modules {
		for _, fn := range mod.Functions {
			w.walkLambda(&fn.MkLambda)
		}
		for _, c := range mod.Classes {
			for _, m := range c.NewMethods {
				w.walkLambda(&m.MkLambda)
			}
		}
	}
}

func (w *breakWalker) walkLambda(l *ast.MkLambda) {
	w.lambdas = append(w.lambdas, l)
	w.lambdaBlockIdx = append(w.lambdaBlockIdx, len(w.blocks))
	w.walkBlock(&l.Block)
	w.lambdas = w.lambdas[:len(w.lambdas)-1]
	w.lambdaBlockIdx = w.lambdaBlockIdx[:len(w.lambdaBlockIdx)-1]
}

func (w *breakWalker) walkBlock(b *ast.Block) {
	w.blocks = append(w.blocks, b)
	for _, a := range b.Body {
		w.walkAction(a)
	}
	w.blocks = w.blocks[:len(w.blocks)-1]
}

func (w *breakWalker) walkAction(a ast.Action) {
	if a == nil {
		return
	}
	switch n := a.(type) {
	case *ast.MkLambda:
		w.walkLambda(n)
	case *ast.Block:
		w.walkBlock(n)
	case *ast.Break:
		w.resolveBreak(n)
		w.walkAction(n.Value)
	case *ast.Call:
		w.walkAction(n.Callee)
		for _, p := range n.Params {
			w.walkAction(p)
		}
	case *ast.AsyncCall:
		w.walkAction(&n.Call)
	case *ast.GetField:
		w.walkAction(n.Base)
	case *ast.SetField:
		w.walkAction(n.Base)
		w.walkAction(n.Val)
	case *ast.SpliceField:
		w.walkAction(n.Base)
		w.walkAction(n.Val)
	case *ast.GetAtIndex:
		w.walkAction(n.Indexed)
		for _, idx := range n.Indexes {
			w.walkAction(idx)
		}
	case *ast.SetAtIndex:
		w.walkAction(n.Indexed)
		for _, idx := range n.Indexes {
			w.walkAction(idx)
		}
		w.walkAction(n.Value)
	case *ast.Set:
		w.walkAction(n.Val)

	default:
		w.walkBinUn(a)
	}
}

// walkBinUn descends into the Lhs/Rhs/P operand of every binOp/unOp shaped
// node (If/Else/LAnd/LOr, the arithmetic/comparison ops, Loop, Not/Neg/Inv,
// …) without needing one case per concrete type — mirrors
// expr_resolve.go's walkBinUn.
func (w *breakWalker) walkBinUn(a ast.Action) {
	type binHolder interface {
		Operands() (ast.Action, ast.Action)
	}
	type unHolder interface{ Operand() ast.Action }
	if bh, ok := a.(binHolder); ok {
		l, r := bh.Operands()
		w.walkAction(l)
		w.walkAction(r)
		return
	}
	if uh, ok := a.(unHolder); ok {
		w.walkAction(uh.Operand())
	}
}

// resolveBreak finds the target block (by BreakName if the break names
// one, otherwise the innermost enclosing block) and, if the break's
// lexical position is inside one or more MkLambda bodies nested strictly
// between it and the target, marks each of those lambdas CanCrossBreak —
// the lowering advisor must then keep their frames alive across the call
// that invoked them so the break's stack unwind can still find its way
// back to the target block.
func (w *breakWalker) resolveBreak(br *ast.Break) {
	var target *ast.Block
	if br.Target != nil && !br.Target.BreakName.IsZero() {
		for i := len(w.blocks) - 1; i >= 0; i-- {
			if w.blocks[i].BreakName == br.Target.BreakName {
				target = w.blocks[i]
				break
			}
		}
	} else if len(w.blocks) > 0 {
		target = w.blocks[len(w.blocks)-1]
	}
	if target == nil {
		w.errs.Addf(agerrors.NameErr, locFromPos(br.Position()), "break has no matching enclosing block")
		return
	}
	br.Target = target
	target.Breaks = append(target.Breaks, br)

	targetIdx := -1
	for i := len(w.blocks) - 1; i >= 0; i-- {
		if w.blocks[i] == target {
			targetIdx = i
			break
		}
	}

	// The owning lambda is the innermost one whose own block was pushed at
	// or before targetIdx; every lambda nested deeper than that one is
	// crossed by this break and must keep its frame alive across the call.
	for i := len(w.lambdas) - 1; i >= 0; i-- {
		if w.lambdaBlockIdx[i] <= targetIdx {
			break
		}
		w.lambdas[i].CanCrossBreak = true
	}
}

func locFromPos(p ast.Pos) agerrors.Location {
	return agerrors.Location{File: p.Module, Line: p.Line, Column: p.Col}
}
