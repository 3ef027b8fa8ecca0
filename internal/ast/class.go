package ast

// Field is a class field.
type Field struct {
	Node
	Name        Name
	Module      string
	Class       *Class
	Declared    Type // nil until the type checker infers it from Initializer
	Initializer Action
	Offset      int // filled by internal/layout after planning
}

// Mutability tags a method receiver contract.
type Mutability int

const (
	MethodAny Mutability = iota
	MethodMutating
	MethodFrozen
)

// Method is a class method, with its VMT ordinal, mutability contract,
// factory flag, and override chain.
type Method struct {
	Function
	Ordinal   int // index into Class.NewMethods after name resolution; layout planning rewrites it to the method's VMT slot
	Mut       Mutability
	IsFactory bool
	Ovr       *Method // direct method this one overrides (nil if none)
	Base      *Method // first declaring method in the override chain (== self if original)
	Class     *Class  // declaring class
}

// Class is a class or interface declaration.
type Class struct {
	Node
	Name         Name
	IsInterface  bool
	IsTest       bool
	Base         *Class               // at most one, non-interface only
	Interfaces   []*Class             // direct interface bases, source order
	Fields       []*Field             // source order
	NewMethods   []*Method            // source order, each with an Ordinal
	Overloads    map[*Class][]*Method // per-base overloads, keyed by declaring base
	ThisNames    map[Name]*Method     // combined (name,module) and (name,"") keys; nil value == ambiguous marker
	ThisFields   map[Name]*Field
	InterfaceVMT map[*Class][]*Method // per-interface method vector in interface's new-methods order
	TypeParams   []Name               // optional generic class parameters
	BaseContext  map[*Class]*PtrType  // propagated generic bindings for each base/interface

	// Filled by internal/layout.
	InterfaceKey uint64    // random 48-bit id << 16, 0 until assigned (interfaces only)
	InstanceSize int       // in header-relative words, including inherited fields
	VMT          []*Method // index 0 reserved for the dispatcher slot
	VMTSize      int       // len(VMT)
}

func NewClass(name Name) *Class {
	return &Class{
		Name:         name,
		Overloads:    map[*Class][]*Method{},
		ThisNames:    map[Name]*Method{},
		ThisFields:   map[Name]*Field{},
		InterfaceVMT: map[*Class][]*Method{},
		BaseContext:  map[*Class]*PtrType{},
	}
}

// ImplementsInterface reports whether iface appears (directly or
// transitively, post name-resolution) among c.Overloads' keys.
func (c *Class) ImplementsInterface(iface *Class) bool {
	_, ok := c.Overloads[iface]
	return ok && iface.IsInterface
}

// Var is a local variable, lambda parameter, or const.
type Var struct {
	Node
	Name         Name
	Declared     Type
	Initializer  Action // nil for a lambda parameter with no default
	IsMutable    bool
	Captured     bool
	IsConst      bool
	LexicalDepth int
}

// Block is a non-empty body whose last expression is its value, with
// optional named-break support.
type Block struct {
	ActionBase
	Vars      []*Var // locals and, for MkLambda, parameters — source order
	Body      []Action
	BreakName Name
	Breaks    []*Break // Break nodes targeting this block
}

func NewBlock(pos Pos) *Block {
	return &Block{ActionBase: base(KBlock, pos)}
}

// MkLambda is a lambda or function body: a Block whose Vars are its
// parameters, plus the captured-locals and mutable-capture bookkeeping a
// closure needs.
type MkLambda struct {
	Block
	AccessDepth    int
	LexicalDepth   int
	CapturedLocals []*Var
	Mutables       []*Var
	ResultDeclared Type // declared result type, or the body's type once checked; nil keeps the lambda cold
	CanCrossBreak  bool // true if any nested Break targets an enclosing block
}

// Function is a module-level function or a Method's body; it never appears
// inside the Action tree itself — it lives in Module.Functions or
// Class.NewMethods/Overloads.
type Function struct {
	MkLambda
	Name       Name
	TypeExpr   Action // optional declared result-type expression, pre-check
	IsPlatform bool   // no body; resolved to a link-time symbol
	IsTest     bool
	Params     []*Var // convenience alias into Block.Vars for non-method callers
	ResultType Type
}

// ImmediateDelegate is an inline delegate literal bound to a base receiver
// expression.
type ImmediateDelegate struct {
	Function
	Base Action
}

func NewMkLambda(pos Pos) *MkLambda {
	l := &MkLambda{Block: *NewBlock(pos)}
	l.K = KMkLambda
	return l
}

func NewFunction(pos Pos, name Name) *Function {
	return &Function{MkLambda: *NewMkLambda(pos), Name: name}
}

func NewMethod(pos Pos, name Name, cls *Class) *Method {
	return &Method{Function: *NewFunction(pos, name), Class: cls}
}

func NewImmediateDelegate(pos Pos, name Name, baseExpr Action) *ImmediateDelegate {
	return &ImmediateDelegate{Function: *NewFunction(pos, name), Base: baseExpr}
}
