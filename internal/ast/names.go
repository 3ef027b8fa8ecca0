// Package ast is the typed tree the middle end (resolver, type checker,
// layout planner, lowering advisor) operates on. Nodes are plain Go
// pointers: the tree is compile-time data, not itself subject to the
// ownership discipline it describes.
package ast

import "fmt"

// Name is a qualified identifier: a short name plus the dotted module that
// declares it. Two names with the same Short but different Module are
// distinct entities; a Module of "" means "unqualified" (used for locals,
// and as the resolver's ambiguity marker).
type Name struct {
	Module string
	Short  string
}

func (n Name) String() string {
	if n.Module == "" {
		return n.Short
	}
	return n.Module + "." + n.Short
}

func (n Name) IsZero() bool { return n.Module == "" && n.Short == "" }

// Pos is a source position. Every Node carries one; codegen and diagnostics
// use it verbatim.
type Pos struct {
	Module string
	Line   int32
	Col    int32
}

func (p Pos) String() string { return fmt.Sprintf("%s:%d:%d", p.Module, p.Line, p.Col) }

// Node is the base of every AST entity that carries a source position.
type Node struct {
	Pos Pos
}
