// Package pipeline wires the loader to the four middle-end passes in the
// order each depends on the last: load, resolve names, check types, plan
// layout, then advise lowering. It is the thing a driver (cmd/argc, or an
// embedder linking this module directly) calls once it has a real parser
// to hand the loader.
package pipeline

import (
	"context"
	"fmt"

	"argentum/internal/ast"
	"argentum/internal/buildsession"
	agerrors "argentum/internal/errors"
	"argentum/internal/layout"
	"argentum/internal/lowering"
	"argentum/internal/resolver"
	"argentum/internal/typecheck"
)

// Result is everything a caller driving the middle end over one entry
// module gets back. Layout and Advice are nil if Diags holds any
// resolution or type error, since neither pass can run meaningfully over
// an unresolved or ill-typed program.
type Result struct {
	Program *ast.Program
	Layout  *layout.Planner
	Advice  *lowering.Advisor
	Diags   *agerrors.Bag
}

// Pipeline ties a module loader to the middle end. Cache is optional: when
// set, Build records each loaded module's fingerprint in it. Build does not
// report which modules changed, and the middle-end passes always run over
// the whole loaded set, since layout and lowering are whole-program passes.
type Pipeline struct {
	Loader *resolver.ModuleLoader
	Cache  *buildsession.Cache
}

func New(loader *resolver.ModuleLoader, cache *buildsession.Cache) *Pipeline {
	return &Pipeline{Loader: loader, Cache: cache}
}

// Build loads every module reachable from entry, then runs name
// resolution, type checking, layout planning, and lowering advice over the
// whole set in turn, stopping as soon as a pass reports diagnostics.
func (p *Pipeline) Build(ctx context.Context, entry string) (*Result, error) {
	modules, err := p.Loader.Load(ctx, entry)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", entry, err)
	}

	prog := ast.NewProgram()
	prog.Object = ast.NewClass(ast.Name{Short: "Object"})
	prog.Classes[prog.Object.Name] = prog.Object

	for path, mod := range modules {
		prog.Modules[path] = mod
		for _, cls := range mod.Classes {
			prog.Classes[cls.Name] = cls
		}
		for _, fn := range mod.Functions {
			prog.Functions[fn.Name] = fn
		}
		if p.Cache != nil {
			if _, err := p.Cache.Changed(path, []byte(moduleFingerprint(mod))); err != nil {
				return nil, err
			}
		}
	}

	res := &Result{Program: prog}

	if res.Diags = resolver.Resolve(prog); !res.Diags.Empty() {
		return res, nil
	}
	if res.Diags = typecheck.Check(prog); !res.Diags.Empty() {
		return res, nil
	}

	res.Layout = layout.Plan(prog)
	res.Advice = lowering.Advise(prog)
	res.Diags = &agerrors.Bag{}
	return res, nil
}

// moduleFingerprint summarizes mod's shape for the build cache: the loader
// already discards raw source text once a module is parsed (Load hands
// back *ast.Module, not text), so the cache fingerprints the parsed
// structure's size instead of re-hashing source bytes a second time.
func moduleFingerprint(mod *ast.Module) string {
	return fmt.Sprintf("%s:%d:%d:%d:%d", mod.Name, len(mod.Imports), len(mod.Functions), len(mod.Classes), len(mod.Tests))
}
