package ast

// Kind enumerates every expression kind codegen must handle.
type Kind int

const (
	KConstInt32 Kind = iota
	KConstInt64
	KConstFloat
	KConstDouble
	KConstBool
	KConstVoid
	KConstString
	KConstEnumTag

	KGet
	KSet

	KMkInstance
	KGetField
	KSetField
	KSpliceField
	KCall
	KAsyncCall
	KMakeDelegate
	KImmediateDelegate
	KMakeFnPtr
	KMkLambda
	KBlock
	KBreak

	KAdd
	KSub
	KMul
	KDiv
	KMod
	KAnd
	KOr
	KXor
	KShl
	KShr
	KEq
	KLt
	KNot
	KNeg
	KInv

	KIf
	KElse
	KLAnd
	KLOr
	KLoop

	KCastOp
	KToInt32
	KToInt
	KToFloat
	KToDouble
	KToStr

	KCopyOp
	KFreezeOp
	KRefOp
	KConformOp
	KMkWeakOp
	KDerefWeakOp

	KGetAtIndex
	KSetAtIndex
)

func (k Kind) String() string {
	names := map[Kind]string{
		KConstInt32: "Int32", KConstInt64: "Int64", KConstFloat: "Float", KConstDouble: "Double",
		KConstBool: "Bool", KConstVoid: "Void", KConstString: "String", KConstEnumTag: "EnumTag",
		KGet: "Get", KSet: "Set",
		KMkInstance: "MkInstance", KGetField: "GetField", KSetField: "SetField", KSpliceField: "SpliceField",
		KCall: "Call", KAsyncCall: "AsyncCall", KMakeDelegate: "MakeDelegate",
		KImmediateDelegate: "ImmediateDelegate", KMakeFnPtr: "MakeFnPtr", KMkLambda: "MkLambda",
		KBlock: "Block", KBreak: "Break",
		KAdd: "Add", KSub: "Sub", KMul: "Mul", KDiv: "Div", KMod: "Mod",
		KAnd: "And", KOr: "Or", KXor: "Xor", KShl: "Shl", KShr: "Shr",
		KEq: "Eq", KLt: "Lt", KNot: "Not", KNeg: "Neg", KInv: "Inv",
		KIf: "If", KElse: "Else", KLAnd: "LAnd", KLOr: "LOr", KLoop: "Loop",
		KCastOp: "CastOp", KToInt32: "ToInt32", KToInt: "ToInt", KToFloat: "ToFloat",
		KToDouble: "ToDouble", KToStr: "ToStr",
		KCopyOp: "CopyOp", KFreezeOp: "FreezeOp", KRefOp: "RefOp", KConformOp: "ConformOp",
		KMkWeakOp: "MkWeakOp", KDerefWeakOp: "DerefWeakOp",
		KGetAtIndex: "GetAtIndex", KSetAtIndex: "SetAtIndex",
	}
	if s, ok := names[k]; ok {
		return s
	}
	return "?"
}

// Action is every expression node: it carries a source position and a type
// the checker fills exactly once. Callers type-switch on the concrete
// struct instead of double-dispatching through a visitor.
type Action interface {
	Kind() Kind
	Type() Type
	SetType(Type)
	Position() Pos
}

// ActionBase is embedded by every concrete Action; it supplies the
// interface's promoted methods.
type ActionBase struct {
	P   Pos
	Typ Type
	K   Kind
}

func (a *ActionBase) Kind() Kind     { return a.K }
func (a *ActionBase) Type() Type     { return a.Typ }
func (a *ActionBase) SetType(t Type) { a.Typ = t }
func (a *ActionBase) Position() Pos  { return a.P }

func base(k Kind, pos Pos) ActionBase { return ActionBase{K: k, P: pos} }

// --- Constants ---

type ConstInt32 struct {
	ActionBase
	Value int32
}
type ConstInt64 struct {
	ActionBase
	Value int64
}
type ConstFloat struct {
	ActionBase
	Value float32
}
type ConstDouble struct {
	ActionBase
	Value float64
}
type ConstBool struct {
	ActionBase
	Value bool
}
type ConstVoid struct{ ActionBase }
type ConstString struct {
	ActionBase
	Value string
}
type ConstEnumTag struct {
	ActionBase
	Enum Name
	Tag  string
}

func NewConstInt32(pos Pos, v int32) *ConstInt32     { return &ConstInt32{base(KConstInt32, pos), v} }
func NewConstInt64(pos Pos, v int64) *ConstInt64     { return &ConstInt64{base(KConstInt64, pos), v} }
func NewConstFloat(pos Pos, v float32) *ConstFloat   { return &ConstFloat{base(KConstFloat, pos), v} }
func NewConstDouble(pos Pos, v float64) *ConstDouble { return &ConstDouble{base(KConstDouble, pos), v} }
func NewConstBool(pos Pos, v bool) *ConstBool        { return &ConstBool{base(KConstBool, pos), v} }
func NewConstVoid(pos Pos) *ConstVoid                { return &ConstVoid{base(KConstVoid, pos)} }
func NewConstString(pos Pos, v string) *ConstString  { return &ConstString{base(KConstString, pos), v} }

// --- Variables ---

// Get/Set are a reference to a Var resolved by name.
type Get struct {
	ActionBase
	Var  *Var
	Name Name // pre-resolution textual name; nil Var until the resolver runs
}

type Set struct {
	ActionBase
	Var  *Var
	Name Name
	Val  Action
}

func NewGet(pos Pos, name Name) *Get { return &Get{ActionBase: base(KGet, pos), Name: name} }
func NewSet(pos Pos, name Name, val Action) *Set {
	return &Set{ActionBase: base(KSet, pos), Name: name, Val: val}
}

// --- Object ---

type MkInstance struct {
	ActionBase
	Class *Class
	Args  []Type // generic bindings for the instance, if Class has TypeParams
}

// GetField is a base expression plus a field reference.
type GetField struct {
	ActionBase
	Base      Action
	Field     *Field
	FieldName Name
}

type SetField struct {
	ActionBase
	Base      Action
	Field     *Field
	FieldName Name
	Val       Action
}

// SpliceField is a SetField whose store must refuse forming an ownership
// cycle through the parent chain.
type SpliceField struct {
	SetField
}

type Call struct {
	ActionBase
	Callee Action // must resolve to a Function/Lambda/Delegate type
	Params []Action
}

// AsyncCall is Call's cross-thread counterpart: the callee is a delegate
// bound to a weak across a thread boundary.
type AsyncCall struct {
	Call
}

type MakeDelegate struct {
	ActionBase
	Method *Method
	Base   Action
}

type MakeFnPtr struct {
	ActionBase
	Fn *Function
}

func NewMkInstance(pos Pos, cls *Class) *MkInstance {
	return &MkInstance{ActionBase: base(KMkInstance, pos), Class: cls}
}
func NewGetField(pos Pos, b Action, name Name) *GetField {
	return &GetField{ActionBase: base(KGetField, pos), Base: b, FieldName: name}
}
func NewSetField(pos Pos, b Action, name Name, v Action) *SetField {
	return &SetField{ActionBase: base(KSetField, pos), Base: b, FieldName: name, Val: v}
}
func NewSpliceField(pos Pos, b Action, name Name, v Action) *SpliceField {
	sf := SpliceField{SetField{ActionBase: base(KSpliceField, pos), Base: b, FieldName: name, Val: v}}
	return &sf
}
func NewCall(pos Pos, callee Action, params ...Action) *Call {
	return &Call{ActionBase: base(KCall, pos), Callee: callee, Params: params}
}

func NewAsyncCall(pos Pos, callee Action, params ...Action) *AsyncCall {
	return &AsyncCall{Call{ActionBase: base(KAsyncCall, pos), Callee: callee, Params: params}}
}

func NewMakeDelegate(pos Pos, method *Method, recv Action) *MakeDelegate {
	return &MakeDelegate{ActionBase: base(KMakeDelegate, pos), Method: method, Base: recv}
}

func NewMakeFnPtr(pos Pos, fn *Function) *MakeFnPtr {
	return &MakeFnPtr{ActionBase: base(KMakeFnPtr, pos), Fn: fn}
}

// --- Binary / unary operators ---

type binOp struct {
	ActionBase
	Lhs, Rhs Action
}

type Add struct{ binOp }
type Sub struct{ binOp }
type Mul struct{ binOp }
type Div struct{ binOp }
type Mod struct{ binOp }
type And struct{ binOp }
type Or struct{ binOp }
type Xor struct{ binOp }
type Shl struct{ binOp }
type Shr struct{ binOp }
type Eq struct{ binOp }
type Lt struct{ binOp }

// If/Else/LAnd/LOr are also binOp shaped: If(cond, then), Else(ifNode,
// elseBranch), LAnd(a,b), LOr(a,b) — all operate on optional-typed operands.
type If struct{ binOp }
type Else struct{ binOp }
type LAnd struct{ binOp }
type LOr struct{ binOp }

func newBin(k Kind, pos Pos, l, r Action) binOp { return binOp{base(k, pos), l, r} }

// Operands exposes Lhs/Rhs uniformly so a generic tree walk can descend
// into any binOp-shaped node without a case per concrete operator.
func (b *binOp) Operands() (Action, Action) { return b.Lhs, b.Rhs }

// SetOperands lets a rewriting pass (e.g. implicit conversion insertion)
// write back checked/rewritten operands uniformly.
func (b *binOp) SetOperands(l, r Action) { b.Lhs, b.Rhs = l, r }

func NewAdd(pos Pos, l, r Action) *Add            { return &Add{newBin(KAdd, pos, l, r)} }
func NewSub(pos Pos, l, r Action) *Sub            { return &Sub{newBin(KSub, pos, l, r)} }
func NewMul(pos Pos, l, r Action) *Mul            { return &Mul{newBin(KMul, pos, l, r)} }
func NewDiv(pos Pos, l, r Action) *Div            { return &Div{newBin(KDiv, pos, l, r)} }
func NewMod(pos Pos, l, r Action) *Mod            { return &Mod{newBin(KMod, pos, l, r)} }
func NewEq(pos Pos, l, r Action) *Eq              { return &Eq{newBin(KEq, pos, l, r)} }
func NewLt(pos Pos, l, r Action) *Lt              { return &Lt{newBin(KLt, pos, l, r)} }
func NewIf(pos Pos, cond, then Action) *If        { return &If{newBin(KIf, pos, cond, then)} }
func NewElse(pos Pos, ifNode, elseB Action) *Else { return &Else{newBin(KElse, pos, ifNode, elseB)} }
func NewLAnd(pos Pos, a, b Action) *LAnd          { return &LAnd{newBin(KLAnd, pos, a, b)} }
func NewLOr(pos Pos, a, b Action) *LOr            { return &LOr{newBin(KLOr, pos, a, b)} }
func NewAnd(pos Pos, l, r Action) *And            { return &And{newBin(KAnd, pos, l, r)} }
func NewOr(pos Pos, l, r Action) *Or              { return &Or{newBin(KOr, pos, l, r)} }
func NewXor(pos Pos, l, r Action) *Xor            { return &Xor{newBin(KXor, pos, l, r)} }
func NewShl(pos Pos, l, r Action) *Shl            { return &Shl{newBin(KShl, pos, l, r)} }
func NewShr(pos Pos, l, r Action) *Shr            { return &Shr{newBin(KShr, pos, l, r)} }

type unOp struct {
	ActionBase
	P Action
}

type Not struct{ unOp }
type Neg struct{ unOp }
type Inv struct{ unOp }
type Loop struct{ unOp }
type CastOp struct {
	unOp
	Target Type
}
type ToInt32 struct{ unOp }
type ToInt struct{ unOp }
type ToFloat struct{ unOp }
type ToDouble struct{ unOp }

// ToStr is the checker's rewrite target: ToStr(stream, value) becomes a
// Call before codegen ever sees it, but the node form is kept for
// completeness of the expression-kind enumeration.
type ToStr struct {
	ActionBase
	Stream Action
	Value  Action
}

type CopyOp struct{ unOp }
type FreezeOp struct{ unOp }
type RefOp struct{ unOp }
type ConformOp struct{ unOp }
type MkWeakOp struct{ unOp }
type DerefWeakOp struct{ unOp }

func newUn(k Kind, pos Pos, p Action) unOp { return unOp{base(k, pos), p} }

// Operand exposes P uniformly so a generic tree walk can descend into any
// unOp-shaped node without a case per concrete operator.
func (u *unOp) Operand() Action { return u.P }

// SetOperand lets a rewriting pass write back a checked/rewritten operand
// uniformly across every unOp-shaped node.
func (u *unOp) SetOperand(p Action) { u.P = p }

func NewNot(pos Pos, p Action) *Not                 { return &Not{newUn(KNot, pos, p)} }
func NewNeg(pos Pos, p Action) *Neg                 { return &Neg{newUn(KNeg, pos, p)} }
func NewLoop(pos Pos, p Action) *Loop               { return &Loop{newUn(KLoop, pos, p)} }
func NewCopyOp(pos Pos, p Action) *CopyOp           { return &CopyOp{newUn(KCopyOp, pos, p)} }
func NewFreezeOp(pos Pos, p Action) *FreezeOp       { return &FreezeOp{newUn(KFreezeOp, pos, p)} }
func NewMkWeakOp(pos Pos, p Action) *MkWeakOp       { return &MkWeakOp{newUn(KMkWeakOp, pos, p)} }
func NewDerefWeakOp(pos Pos, p Action) *DerefWeakOp { return &DerefWeakOp{newUn(KDerefWeakOp, pos, p)} }
func NewInv(pos Pos, p Action) *Inv                 { return &Inv{newUn(KInv, pos, p)} }
func NewToInt32(pos Pos, p Action) *ToInt32         { return &ToInt32{newUn(KToInt32, pos, p)} }
func NewToInt(pos Pos, p Action) *ToInt             { return &ToInt{newUn(KToInt, pos, p)} }
func NewToFloat(pos Pos, p Action) *ToFloat         { return &ToFloat{newUn(KToFloat, pos, p)} }
func NewToDouble(pos Pos, p Action) *ToDouble       { return &ToDouble{newUn(KToDouble, pos, p)} }
func NewRefOp(pos Pos, p Action) *RefOp             { return &RefOp{newUn(KRefOp, pos, p)} }
func NewConformOp(pos Pos, p Action) *ConformOp     { return &ConformOp{newUn(KConformOp, pos, p)} }
func NewCastOp(pos Pos, p Action, target Type) *CastOp {
	return &CastOp{unOp: newUn(KCastOp, pos, p), Target: target}
}

func NewToStr(pos Pos, stream, value Action) *ToStr {
	return &ToStr{ActionBase: base(KToStr, pos), Stream: stream, Value: value}
}

// --- Indexing ---

type GetAtIndex struct {
	ActionBase
	Indexed Action
	Indexes []Action
}

type SetAtIndex struct {
	GetAtIndex
	Value Action
}

func NewGetAtIndex(pos Pos, indexed Action, idx ...Action) *GetAtIndex {
	return &GetAtIndex{ActionBase: base(KGetAtIndex, pos), Indexed: indexed, Indexes: idx}
}

func NewSetAtIndex(pos Pos, indexed Action, value Action, idx ...Action) *SetAtIndex {
	return &SetAtIndex{
		GetAtIndex: GetAtIndex{ActionBase: base(KSetAtIndex, pos), Indexed: indexed, Indexes: idx},
		Value:      value,
	}
}

// --- Break ---

// Break is a non-local exit to a named Block, possibly crossing one or more
// enclosing lambdas ("cross-break").
type Break struct {
	ActionBase
	Target *Block
	Value  Action // may be nil (break with void value)
}

func NewBreak(pos Pos, target *Block, val Action) *Break {
	return &Break{ActionBase: base(KBreak, pos), Target: target, Value: val}
}
