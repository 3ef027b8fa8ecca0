package ast

// Module is a single compilation unit: its imports form a DAG, deduplicated
// by internal/resolver's loader (a module loads at most once — enforced by
// the loader, not by this struct).
type Module struct {
	Name      string // unique dotted name
	Imports   []string
	Aliases   map[string]string // alias name -> imported module name
	Constants map[string]*Var
	Functions []*Function
	Tests     []*Function
	Classes   []*Class
	Entry     Action // optional entry expression
}

func NewModule(name string) *Module {
	return &Module{
		Name:      name,
		Aliases:   map[string]string{},
		Constants: map[string]*Var{},
	}
}

// Program is the whole-compilation context: every loaded Module plus the
// interned type tables shared across all of them (lambda, function,
// delegate, and optional types, and the global class/function tables).
type Program struct {
	Modules   map[string]*Module
	Classes   map[Name]*Class
	Functions map[Name]*Function

	ClassOrder []*Class // base-before-derived, filled by internal/resolver

	// Interning tables, keyed by the structural param list so identical
	// signatures share one Type value.
	lambdaTypes   map[string]LambdaType
	functionTypes map[string]FunctionType
	delegateTypes map[string]DelegateType
	optionalTypes map[string][]OptionalType // base type string -> all wrapping depths

	Object      *Class // the implicit root class every non-interface class extends
	StringClass *Class // the designated String class; resolved lazily by name, nil if none declared
	EntryFn     *Function
}

func NewProgram() *Program {
	return &Program{
		Modules:       map[string]*Module{},
		Classes:       map[Name]*Class{},
		Functions:     map[Name]*Function{},
		lambdaTypes:   map[string]LambdaType{},
		functionTypes: map[string]FunctionType{},
		delegateTypes: map[string]DelegateType{},
		optionalTypes: map[string][]OptionalType{},
	}
}

// GetOrCreateClass gets or creates the named class placeholder (the
// resolver fills in its body once it sees the declaration; forward
// references are legal up to the base-cycle check).
func (p *Program) GetOrCreateClass(name Name) *Class {
	if c, ok := p.Classes[name]; ok {
		return c
	}
	c := NewClass(name)
	p.Classes[name] = c
	return c
}

func (p *Program) PeekClass(name Name) *Class { return p.Classes[name] }

// Lambda interns a LambdaType by its structural parameter list: two lambdas
// with the same signature share one Type value so SameType comparisons and
// VMT/ABI assumptions about identity hold.
func (p *Program) Lambda(params []Type) LambdaType {
	key := paramsString("L", params)
	if t, ok := p.lambdaTypes[key]; ok {
		return t
	}
	t := LambdaType{Params: params}
	p.lambdaTypes[key] = t
	return t
}

func (p *Program) FunctionType(params []Type) FunctionType {
	key := paramsString("F", params)
	if t, ok := p.functionTypes[key]; ok {
		return t
	}
	t := FunctionType{Params: params}
	p.functionTypes[key] = t
	return t
}

func (p *Program) Delegate(params []Type) DelegateType {
	key := paramsString("D", params)
	if t, ok := p.delegateTypes[key]; ok {
		return t
	}
	t := DelegateType{Params: params}
	p.delegateTypes[key] = t
	return t
}

// Optional interns an OptionalType: wrapping the same base type again
// increases Depth instead of allocating a fresh nesting level, so implicit
// optional auto-wrap can grow Depth in place.
func (p *Program) Optional(wrapped Type) OptionalType {
	key := wrapped.String()
	levels := p.optionalTypes[key]
	if len(levels) == 0 {
		o := OptionalType{Wrapped: wrapped, Depth: 0}
		p.optionalTypes[key] = []OptionalType{o}
		return o
	}
	last := levels[len(levels)-1]
	o := OptionalType{Wrapped: wrapped, Depth: last.Depth + 1}
	p.optionalTypes[key] = append(levels, o)
	return o
}
