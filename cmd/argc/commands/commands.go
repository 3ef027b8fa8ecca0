// Package commands implements argc's subcommands. Each one drives
// internal/pipeline over a module DAG rooted at an entry module; none of
// them parse source text themselves — spec.md treats the textual grammar
// as an external collaborator, so every command takes a resolver.Parser as
// the seam a real front end plugs into.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/kr/pretty"

	"argentum/internal/ast"
	"argentum/internal/buildsession"
	"argentum/internal/pipeline"
	"argentum/internal/resolver"
)

// Options carries the knobs every subcommand shares.
type Options struct {
	SearchPath []string
	Fetch      resolver.SourceFetcher // defaults to resolver.FileFetcher(SearchPath); overridable for tests/embedders
	Parse      resolver.Parser
	CachePath  string // "" disables the build cache entirely
	DumpAST    bool
}

// NoParser reports the seam's default: a build invoked without a real
// parser wired in fails clearly instead of silently doing nothing.
func NoParser(path, _ string) (*ast.Module, error) {
	return nil, fmt.Errorf("no textual parser is linked into this build; argc only drives the middle end over an already-parsed module DAG (see resolver.Parser)")
}

func newPipeline(opts Options) (*pipeline.Pipeline, *buildsession.Cache, error) {
	parse := opts.Parse
	if parse == nil {
		_, err := NoParser("", "")
		return nil, nil, err
	}
	fetch := opts.Fetch
	if fetch == nil {
		fetch = resolver.FileFetcher(opts.SearchPath)
	}
	loader := resolver.NewModuleLoader(fetch, parse)
	if len(opts.SearchPath) > 0 {
		loader.SearchPath = opts.SearchPath
	}

	var cache *buildsession.Cache
	if opts.CachePath != "" {
		c, err := buildsession.Open(opts.CachePath)
		if err != nil {
			return nil, nil, err
		}
		cache = c
	}
	return pipeline.New(loader, cache), cache, nil
}

// Build runs the full middle end (resolve, check, layout, lower) over the
// module DAG rooted at entry and reports every diagnostic raised. It
// returns a process exit code: 0 on success, 1 on any load/semantic error.
func Build(ctx context.Context, entry string, opts Options, stdout, stderr io.Writer) int {
	p, cache, err := newPipeline(opts)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if cache != nil {
		defer cache.Close()
		if _, err := cache.BeginBuild(entry); err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
	}

	res, err := p.Build(ctx, entry)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if !res.Diags.Empty() {
		for _, e := range res.Diags.Errors() {
			fmt.Fprint(stderr, e.Error())
		}
		return res.Diags.ExitCode()
	}

	if opts.DumpAST {
		for path, mod := range res.Program.Modules {
			fmt.Fprintf(stdout, "module %s:\n", path)
			fmt.Fprintf(stdout, "%# v\n", pretty.Formatter(mod))
		}
	}

	fmt.Fprintf(stdout, "%s: %d module(s), %d interface table(s) planned\n",
		entry, len(res.Program.Modules), len(res.Layout.ITables))
	return 0
}

// Check runs the same pipeline as Build but reports only whether the
// program resolves and type-checks cleanly, discarding layout/lowering
// output — the semantic-only pass a "check" alias is expected to give.
func Check(ctx context.Context, entry string, opts Options, stdout, stderr io.Writer) int {
	opts.DumpAST = false
	p, cache, err := newPipeline(opts)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if cache != nil {
		defer cache.Close()
	}

	res, err := p.Build(ctx, entry)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if !res.Diags.Empty() {
		for _, e := range res.Diags.Errors() {
			fmt.Fprint(stderr, e.Error())
		}
		return res.Diags.ExitCode()
	}
	fmt.Fprintf(stdout, "%s: no semantic errors\n", entry)
	return 0
}
