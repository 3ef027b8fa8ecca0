// Package lowering computes, for every checked Action, the retain/release
// obligation codegen must discharge before that value goes out of scope.
// It states the obligations; it does not emit code — a conformant codegen
// backend is expected to consume the Advice this package attaches to each
// node.
package lowering

import "argentum/internal/ast"

// Lifetime classifies how a value's ownership was obtained.
type Lifetime int

const (
	// Static values are non-pointer or statically allocated: safe to drop
	// without any runtime action.
	Static Lifetime = iota
	// Temp values are borrowed from a local variable (or nothing, for a
	// null placeholder); they must be retained before they can outlive
	// that variable's scope.
	Temp
	// Retained values own exactly one reference; the holder must release
	// or transfer it before going out of scope.
	Retained
	// RField values are a borrowed field read off a Retained owner; they
	// must either promote to Retained (retain the field, release the
	// owner) or die before the owner does.
	RField
)

func (l Lifetime) String() string {
	switch l {
	case Static:
		return "Static"
	case Temp:
		return "Temp"
	case Retained:
		return "Retained"
	case RField:
		return "RField"
	default:
		return "?"
	}
}

// Advice is one node's lowering contract: its lifetime class, the local
// variable a Temp borrows from (nil for a Temp(null) placeholder), the
// owning expression an RField borrows from, and a sequence of obligations
// codegen must discharge in order.
type Advice struct {
	Life  Lifetime
	Var   *ast.Var   // set when Life == Temp and the borrow has a named source
	Owner ast.Action // set when Life == RField
	Notes []string
}

// Advisor walks every function and method body once, computing and
// memoizing an Advice for every Action it contains.
type Advisor struct {
	prog        *ast.Program
	advice      map[ast.Action]*Advice
	blockOwner  map[*ast.Block]*ast.MkLambda
	lambdaStack []*ast.MkLambda
}

// Advise runs the lowering pass over every Function/Method body in prog.
// Name resolution and type checking must already have run.
func Advise(prog *ast.Program) *Advisor {
	a := &Advisor{
		prog:       prog,
		advice:     map[ast.Action]*Advice{},
		blockOwner: map[*ast.Block]*ast.MkLambda{},
	}
	for _, mod := range prog.Modules {
		for _, fn := range mod.Functions {
			a.adviseTopLevel(&fn.MkLambda)
		}
		for _, cls := range mod.Classes {
			for _, m := range cls.NewMethods {
				a.adviseTopLevel(&m.MkLambda)
			}
		}
	}
	return a
}

func (a *Advisor) adviseTopLevel(l *ast.MkLambda) {
	if l == nil || len(l.Body) == 0 {
		return
	}
	a.pushLambda(l)
	a.adviseBlockBody(&l.Block)
	a.popLambda()
}

// For returns the previously computed Advice for act, or nil if act was
// never visited (e.g. it belongs to a tree Advise wasn't run over).
func (a *Advisor) For(act ast.Action) *Advice {
	return a.advice[act]
}

func (a *Advisor) record(act ast.Action, adv *Advice) *Advice {
	a.advice[act] = adv
	return adv
}

func isPointerKind(t ast.Type) bool {
	switch tt := t.(type) {
	case ast.PtrType:
		return true
	case ast.OptionalType:
		return isPointerKind(tt.Wrapped)
	default:
		return false
	}
}
