// cmd/argc/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"argentum/cmd/argc/commands"
)

const version = "0.1.0"

// Build variables - can be set during build with ldflags
var (
	BuildDate = time.Now().Format("2006-01-02")
	GitCommit = "unknown"
)

// Command aliases mapping, same idea as the teacher's: short letters for
// the commands used most often.
var commandAliases = map[string]string{
	"b": "build",
	"c": "check",
}

type srcDirs []string

func (s *srcDirs) String() string     { return strings.Join(*s, ",") }
func (s *srcDirs) Set(v string) error { *s = append(*s, v); return nil }

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		showUsage()
		return 1
	}

	cmd := args[0]
	if alias, ok := commandAliases[cmd]; ok {
		cmd = alias
	}

	switch cmd {
	case "--help", "-h", "help":
		showUsage()
		return 0
	case "--version", "-v", "version":
		showVersion()
		return 0
	case "build", "check":
		return runPipelineCommand(cmd, args[1:])
	default:
		fmt.Fprintf(os.Stderr, "argc: unknown command %q\n\n", args[0])
		showUsage()
		return 1
	}
}

func runPipelineCommand(cmd string, args []string) int {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	var src srcDirs
	fs.Var(&src, "src", "module search directory (repeatable)")
	start := fs.String("start", "main", "entry module name")
	cacheFile := fs.String("cache", defaultCachePath(), "build cache file (empty disables caching)")
	dumpAST := fs.Bool("dump-ast", false, "pretty-print every resolved module after a successful build")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if len(src) == 0 {
		src = srcDirs{"."}
	}

	opts := commands.Options{
		SearchPath: src,
		CachePath:  *cacheFile,
		DumpAST:    *dumpAST,
	}

	ctx := context.Background()
	switch cmd {
	case "build":
		return commands.Build(ctx, *start, opts, os.Stdout, os.Stderr)
	case "check":
		return commands.Check(ctx, *start, opts, os.Stdout, os.Stderr)
	default:
		return 1
	}
}

func defaultCachePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "argc", "buildcache.db")
}

func showUsage() {
	fmt.Println("argc - Argentum middle-end driver")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  argc build [-src dir]... [-start module] [-dump-ast]   Run the full middle end (alias: b)")
	fmt.Println("  argc check [-src dir]... [-start module]               Resolve and type-check only (alias: c)")
	fmt.Println()
	fmt.Println("  argc help                                              Show this message")
	fmt.Println("  argc --version                                         Show version info")
	fmt.Println()
	fmt.Println("argc does not parse Argentum source itself: the concrete grammar is an")
	fmt.Println("external collaborator. Link a resolver.Parser into commands.Options.Parse")
	fmt.Println("to drive this pipeline over real source.")
}

func showVersion() {
	fmt.Printf("argc %s\n", version)
	fmt.Printf("Build date: %s\n", BuildDate)

	if out, err := exec.Command("git", "rev-parse", "--short", "HEAD").Output(); err == nil {
		GitCommit = strings.TrimSpace(string(out))
	}
	if GitCommit != "unknown" {
		fmt.Printf("Git commit: %s\n", GitCommit)
	}
}
