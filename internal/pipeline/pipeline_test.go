package pipeline

import (
	"context"
	"fmt"
	"testing"

	"argentum/internal/ast"
	"argentum/internal/buildsession"
	"argentum/internal/resolver"
)

func openMemCache(t *testing.T) *buildsession.Cache {
	t.Helper()
	c, err := buildsession.Open(":memory:")
	if err != nil {
		t.Fatalf("buildsession.Open: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

// fakeSource is a tiny in-memory module registry standing in for a real
// textual parser: the pipeline only needs something that satisfies
// resolver.Parser, and building *ast.Module by hand here keeps this test
// independent of the (external, unimplemented) concrete grammar.
func fakeLoader(modules map[string]*ast.Module) *resolver.ModuleLoader {
	fetch := func(path string) (string, error) {
		if _, ok := modules[path]; !ok {
			return "", fmt.Errorf("unknown module %s", path)
		}
		return path, nil // the "source text" is just the path; parse ignores it
	}
	parse := func(path, _ string) (*ast.Module, error) {
		mod, ok := modules[path]
		if !ok {
			return nil, fmt.Errorf("unknown module %s", path)
		}
		return mod, nil
	}
	return resolver.NewModuleLoader(fetch, parse)
}

func TestBuildRunsTheWholeMiddleEndOverASingleModule(t *testing.T) {
	mod := ast.NewModule("main")
	fn := ast.NewFunction(ast.Pos{}, ast.Name{Module: "main", Short: "answer"})
	fn.Body = []ast.Action{ast.NewConstInt32(ast.Pos{}, 42)}
	mod.Functions = append(mod.Functions, fn)

	p := New(fakeLoader(map[string]*ast.Module{"main": mod}), nil)

	res, err := p.Build(context.Background(), "main")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !res.Diags.Empty() {
		t.Fatalf("unexpected diagnostics: %v", res.Diags.Errors())
	}
	if res.Layout == nil || res.Advice == nil {
		t.Fatalf("expected layout and advice to be populated on a clean build")
	}
	if _, ok := fn.ResultType.(ast.Int32Type); !ok {
		t.Fatalf("fn.ResultType = %v, want Int32Type", fn.ResultType)
	}
}

func TestBuildStopsAtTypeErrorsBeforeLayoutOrLowering(t *testing.T) {
	mod := ast.NewModule("main")
	fn := ast.NewFunction(ast.Pos{}, ast.Name{Module: "main", Short: "bad"})
	// An unqualified Get left unresolved by name resolution (no local, no
	// enclosing field) is reported as an unknown name once type-checking
	// tries to assign it a type, not by the resolver itself.
	fn.Body = []ast.Action{ast.NewGet(ast.Pos{}, ast.Name{Short: "doesNotExist"})}
	mod.Functions = append(mod.Functions, fn)

	p := New(fakeLoader(map[string]*ast.Module{"main": mod}), nil)

	res, err := p.Build(context.Background(), "main")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if res.Diags.Empty() {
		t.Fatalf("expected an unknown-name diagnostic")
	}
	if res.Layout != nil || res.Advice != nil {
		t.Fatalf("layout/advice should not run once type-checking fails")
	}
}

func TestBuildRecordsModuleFingerprintsWhenACacheIsSet(t *testing.T) {
	mod := ast.NewModule("main")
	p := New(fakeLoader(map[string]*ast.Module{"main": mod}), openMemCache(t))

	if _, err := p.Build(context.Background(), "main"); err != nil {
		t.Fatalf("Build: %v", err)
	}
	stats, err := p.Cache.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.ModuleCount != 1 {
		t.Fatalf("stats.ModuleCount = %d, want 1", stats.ModuleCount)
	}
}
