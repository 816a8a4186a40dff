// Command acerun is the toolchain's CLI: it compiles and runs a single
// .ace file given as an argument, or drops into an interactive REPL
// with no arguments. Diagnostic coloring is gated on an attached
// terminal, gating colored diagnostic output accordingly.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/ajmd17/ace-lang-sub002/internal/ace"
	"github.com/ajmd17/ace-lang-sub002/internal/cache"
	"github.com/ajmd17/ace-lang-sub002/internal/config"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	colorEnabled := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	color.NoColor = !colorEnabled

	if len(args) == 0 {
		return runREPL()
	}

	sourcePath := args[0]
	store, err := cache.Open(cachePath())
	if err != nil {
		warn("cache unavailable: %v", err)
	} else {
		defer store.Close()
	}

	bytecode, err := ace.Compile(sourcePath, ace.Options{Config: config.Defaults(), Cache: store})
	if err != nil {
		fail(err)
		return 1
	}

	exitCode, err := ace.Run(bytecode, ace.RunOptions{Config: config.Defaults(), Stdout: os.Stdout})
	if err != nil {
		fail(err)
		return 1
	}
	return exitCode
}

func cachePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return dir + "/acerun/bytecode.sqlite"
}

func fail(err error) {
	red := color.New(color.FgRed, color.Bold)
	red.Fprintln(os.Stderr, "error:")
	fmt.Fprintln(os.Stderr, err)
}

func warn(format string, args ...interface{}) {
	yellow := color.New(color.FgYellow)
	yellow.Fprintf(os.Stderr, format+"\n", args...)
}
