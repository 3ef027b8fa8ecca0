// Package resolver replaces every textual reference in the AST with a
// resolved entity reference, orders classes base-first, builds member
// lookup tables, expands interface VMTs, and resolves cross-breaks.
package resolver

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"argentum/internal/ast"
)

// SourceFetcher reads a module's raw source text. The textual parser is an
// external collaborator; this loader only owns the DAG-shaped
// load-at-most-once discipline, handing text to an injected Parse function.
type SourceFetcher func(modulePath string) (text string, err error)

// Parser is the external-collaborator seam: given a module's text, it
// returns an *ast.Module with Imports already populated so the loader can
// keep walking the DAG. Nothing in this package inspects source syntax.
type Parser func(modulePath, text string) (*ast.Module, error)

// ModuleLoader resolves module search paths, caches parsed modules, and
// fetches sibling imports concurrently ahead of the strictly sequential
// base-ordering walk in base_order.go.
type ModuleLoader struct {
	SearchPath []string
	Fetch      SourceFetcher
	Parse      Parser

	mu    sync.Mutex
	cache map[string]*ast.Module

	group singleflight.Group // collapses concurrent duplicate loads of the same path
}

func NewModuleLoader(fetch SourceFetcher, parse Parser) *ModuleLoader {
	return &ModuleLoader{
		SearchPath: defaultSearchPath(),
		Fetch:      fetch,
		Parse:      parse,
		cache:      map[string]*ast.Module{},
	}
}

func defaultSearchPath() []string {
	return []string{".", filepath.Join(".", "lib"), filepath.Join(".", "modules")}
}

// Load fetches and parses modulePath and every module it (transitively)
// imports, returning the full set reached from the DAG rooted at
// modulePath. Sibling imports at the same depth are fetched concurrently via
// errgroup; singleflight ensures a module reachable via two import paths is
// only ever fetched/parsed once, so a module reachable through two import
// paths is loaded exactly once.
func (l *ModuleLoader) Load(ctx context.Context, modulePath string) (map[string]*ast.Module, error) {
	result := map[string]*ast.Module{}
	var mu sync.Mutex
	var visit func(ctx context.Context, path string) error
	visiting := map[string]bool{}
	var visitingMu sync.Mutex

	visit = func(ctx context.Context, path string) error {
		visitingMu.Lock()
		if visiting[path] {
			visitingMu.Unlock()
			return nil // already in flight; singleflight below collapses the fetch
		}
		visiting[path] = true
		visitingMu.Unlock()

		mod, err, _ := l.group.Do(path, func() (interface{}, error) {
			return l.loadOne(path)
		})
		if err != nil {
			return fmt.Errorf("loading %s: %w", path, err)
		}
		m := mod.(*ast.Module)

		mu.Lock()
		_, already := result[path]
		result[path] = m
		mu.Unlock()
		if already {
			return nil
		}

		g, gctx := errgroup.WithContext(ctx)
		for _, imp := range m.Imports {
			imp := imp
			g.Go(func() error { return visit(gctx, imp) })
		}
		return g.Wait()
	}

	if err := visit(ctx, modulePath); err != nil {
		return nil, err
	}
	return result, nil
}

func (l *ModuleLoader) loadOne(path string) (*ast.Module, error) {
	l.mu.Lock()
	if m, ok := l.cache[path]; ok {
		l.mu.Unlock()
		return m, nil
	}
	l.mu.Unlock()

	text, err := l.Fetch(path)
	if err != nil {
		return nil, err
	}
	mod, err := l.Parse(path, text)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	if existing, ok := l.cache[path]; ok {
		l.mu.Unlock()
		return existing, nil
	}
	l.cache[path] = mod
	l.mu.Unlock()
	return mod, nil
}

// FileFetcher is the default SourceFetcher: modulePath resolved against a
// dotted-name-to-path convention (a.b.c -> a/b/c.ag), consulting SearchPath
// in order.
func FileFetcher(searchPath []string) SourceFetcher {
	return func(modulePath string) (string, error) {
		rel := filepath.Join(strings.Split(modulePath, ".")...)
		for _, dir := range searchPath {
			candidate := filepath.Join(dir, rel+".ag")
			if data, err := os.ReadFile(candidate); err == nil {
				return string(data), nil
			}
		}
		return "", fmt.Errorf("module %s not found in search path", modulePath)
	}
}
