package typecheck

import "argentum/internal/ast"

// stringType returns the type of a ConstString literal: an owning pointer
// to the designated String class. The class is found by name once and
// cached on the Program, since every module-level ConstString shares it.
func (c *Checker) stringType() ast.Type {
	if c.prog.StringClass == nil {
		for name, cls := range c.prog.Classes {
			if name.Short == "String" {
				c.prog.StringClass = cls
				break
			}
		}
	}
	if c.prog.StringClass == nil {
		return ast.NoRetType{}
	}
	return ast.PtrType{Flavor: ast.Own, Target: c.prog.StringClass}
}

// isDesignatedString reports whether t is Own/Ref/Shared of the designated
// String class, the "Str" tag case of the ToStr type-tag mapping.
func isDesignatedString(prog *ast.Program, t ast.Type) bool {
	pt, ok := t.(ast.PtrType)
	if !ok || prog.StringClass == nil {
		return false
	}
	return pt.Target == prog.StringClass && (pt.Flavor == ast.Own || pt.Flavor == ast.Ref || pt.Flavor == ast.Shared)
}
