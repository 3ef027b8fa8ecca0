package layout

import (
	"testing"

	"argentum/internal/ast"
)

func newClass(name string, base *ast.Class) *ast.Class {
	c := ast.NewClass(ast.Name{Short: name})
	c.Base = base
	return c
}

func addMethod(c *ast.Class, name string, ovr *ast.Method) *ast.Method {
	m := ast.NewMethod(ast.Pos{}, ast.Name{Short: name}, c)
	if ovr != nil {
		m.Ovr = ovr.Ovr
		m.Base = ovr.Base
	} else {
		m.Ovr = m
		m.Base = m
	}
	c.NewMethods = append(c.NewMethods, m)
	return m
}

func TestPlanVMTOwnMethodsOrdinalsAfterDispatcherSlot(t *testing.T) {
	c := newClass("Root", nil)
	m1 := addMethod(c, "a", nil)
	m2 := addMethod(c, "b", nil)

	p := &Planner{prog: ast.NewProgram()}
	p.planVMT(c)

	if m1.Ordinal != 1 || m2.Ordinal != 2 {
		t.Fatalf("want ordinals 1,2; got %d,%d", m1.Ordinal, m2.Ordinal)
	}
	if c.VMTSize != 3 {
		t.Fatalf("want VMTSize 3 (dispatcher+2), got %d", c.VMTSize)
	}
}

func TestPlanVMTEmbedsBaseVectorAndShiftsOverrides(t *testing.T) {
	base := newClass("Base", nil)
	baseM := addMethod(base, "go", nil)
	p := &Planner{prog: ast.NewProgram()}
	p.planVMT(base)
	if baseM.Ordinal != 1 {
		t.Fatalf("base method ordinal = %d, want 1", baseM.Ordinal)
	}

	derived := newClass("Derived", base)
	newM := addMethod(derived, "extra", nil)
	overrideM := addMethod(derived, "go", baseM)
	p.planVMT(derived)

	if newM.Ordinal != 1 {
		t.Fatalf("derived's own new method ordinal = %d, want 1", newM.Ordinal)
	}
	// base's vector (len 2: dispatcher + go) is embedded starting right
	// after derived's own new methods (index 2), so go's ordinal shifts
	// from 1 to 2+1=3.
	if overrideM.Ordinal != 3 {
		t.Fatalf("overriding method ordinal = %d, want 3", overrideM.Ordinal)
	}
	if derived.VMTSize != 4 {
		t.Fatalf("derived VMTSize = %d, want 4", derived.VMTSize)
	}
}

func TestPlanFieldsContinueAfterBaseInstanceSize(t *testing.T) {
	base := newClass("Base", nil)
	base.Fields = []*ast.Field{{Name: ast.Name{Short: "x"}}, {Name: ast.Name{Short: "y"}}}
	p := &Planner{prog: ast.NewProgram()}
	p.planFields(base)
	if base.InstanceSize != headerWords+2 {
		t.Fatalf("base InstanceSize = %d, want %d", base.InstanceSize, headerWords+2)
	}

	derived := newClass("Derived", base)
	derived.Fields = []*ast.Field{{Name: ast.Name{Short: "z"}}}
	p.planFields(derived)
	if derived.Fields[0].Offset != base.InstanceSize {
		t.Fatalf("derived field offset = %d, want %d", derived.Fields[0].Offset, base.InstanceSize)
	}
	if derived.InstanceSize != base.InstanceSize+1 {
		t.Fatalf("derived InstanceSize = %d, want %d", derived.InstanceSize, base.InstanceSize+1)
	}
}

func TestAssignInterfaceKeysNoCollisionsAndLow16BitsClear(t *testing.T) {
	prog := ast.NewProgram()
	for i := 0; i < 20; i++ {
		c := newClass("I", nil)
		c.IsInterface = true
		prog.ClassOrder = append(prog.ClassOrder, c)
	}
	p := &Planner{prog: prog}
	p.assignInterfaceKeys()

	seen := map[uint64]bool{}
	for _, c := range prog.ClassOrder {
		if seen[c.InterfaceKey] {
			t.Fatalf("duplicate interface key %d", c.InterfaceKey)
		}
		seen[c.InterfaceKey] = true
		if c.InterfaceKey&0xFFFF != 0 {
			t.Fatalf("interface key %x has nonzero low 16 bits", c.InterfaceKey)
		}
	}
}

func TestBitWidth(t *testing.T) {
	cases := []struct {
		in   uint64
		want uint
	}{
		{0, 0}, {1, 0}, {2, 1}, {3, 2}, {4, 2}, {5, 3}, {8, 3}, {9, 4}, {16, 4}, {17, 5},
	}
	for _, tc := range cases {
		if got := bitWidth(tc.in); got != tc.want {
			t.Errorf("bitWidth(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestFindBestFitExactForDisjointInterfaceKeys(t *testing.T) {
	mkMethod := func(name string) *ast.Method {
		return ast.NewMethod(ast.Pos{}, ast.Name{Short: name}, nil)
	}
	table := map[uint64]*ast.Method{
		(1 << 16):     mkMethod("a"),
		(2 << 16):     mkMethod("b"),
		(3 << 16) | 1: mkMethod("c"),
	}
	best := findBestFit(table)
	if best.spread != len(table) {
		t.Fatalf("expected an exact fit covering all %d keys, got spread %d", len(table), best.spread)
	}
	seen := map[uint64]bool{}
	for ord := range table {
		idx := extractKeyBits(ord, best.pos, best.width, best.splinter)
		if seen[idx] {
			t.Fatalf("fit is not injective: two keys mapped to index %d", idx)
		}
		seen[idx] = true
	}
}

func TestBuildITableResolvesEachInterfaceMethod(t *testing.T) {
	shape := newClass("Shape", nil)
	shape.IsInterface = true
	shapeArea := addMethod(shape, "area", nil)
	p := &Planner{prog: ast.NewProgram()}
	p.planVMT(shape)
	shape.InterfaceKey = 7 << 16

	named := newClass("Named", nil)
	named.IsInterface = true
	namedLabel := addMethod(named, "label", nil)
	p.planVMT(named)
	named.InterfaceKey = 9 << 16

	impl := newClass("Circle", nil)
	implArea := addMethod(impl, "area", shapeArea)
	implLabel := addMethod(impl, "label", namedLabel)
	impl.InterfaceVMT[shape] = []*ast.Method{implArea}
	impl.InterfaceVMT[named] = []*ast.Method{implLabel}
	p.planVMT(impl)

	it := p.buildITable(impl)
	areaKey := shape.InterfaceKey | uint64(shapeArea.Ordinal)
	labelKey := named.InterfaceKey | uint64(namedLabel.Ordinal)
	if got := it.Lookup(areaKey); got != implArea {
		t.Fatalf("Lookup(%x) = %v, want the area implementation", areaKey, got)
	}
	if got := it.Lookup(labelKey); got != implLabel {
		t.Fatalf("Lookup(%x) = %v, want the label implementation", labelKey, got)
	}
}
