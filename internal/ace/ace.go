// Package ace is the toolchain's public facade: compile(source_path)
// and run(bytes) are the only two operations anything outside this
// module needs, wiring the lexer/parser/sema/emit pipeline together on
// one side and the VM on the other. Everything else (argv parsing, a
// disassembler, the cache, the host-rpc descriptor registry) is a
// caller concern layered on top of these two calls, not part of the
// facade itself.
package ace

import (
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"

	"github.com/ajmd17/ace-lang-sub002/internal/bytecode"
	"github.com/ajmd17/ace-lang-sub002/internal/cache"
	"github.com/ajmd17/ace-lang-sub002/internal/config"
	"github.com/ajmd17/ace-lang-sub002/internal/diagnostics"
	"github.com/ajmd17/ace-lang-sub002/internal/emit"
	"github.com/ajmd17/ace-lang-sub002/internal/lexer"
	"github.com/ajmd17/ace-lang-sub002/internal/native"
	"github.com/ajmd17/ace-lang-sub002/internal/parser"
	"github.com/ajmd17/ace-lang-sub002/internal/pipeline"
	"github.com/ajmd17/ace-lang-sub002/internal/sema"
	"github.com/ajmd17/ace-lang-sub002/internal/vm"
)

// CompileError wraps the diagnostics a failed compile produced. A
// caller that wants individual entries (for coloring, a language
// server, …) type-asserts for this rather than parsing Error()'s text.
type CompileError struct {
	Diagnostics diagnostics.List
}

func (e *CompileError) Error() string {
	if len(e.Diagnostics) == 0 {
		return "compile failed"
	}
	return fmt.Sprintf("compile failed: %s (+%d more)", e.Diagnostics[0].Error(), len(e.Diagnostics)-1)
}

// Options configures a Compile call; the zero value is Defaults().
type Options struct {
	Config *config.Config
	Cache  *cache.Store
	// RequestID correlates a compile with its diagnostics in structured
	// logs; a fresh uuid is generated when empty.
	RequestID string
}

func stages() *pipeline.Pipeline {
	return pipeline.New(
		&lexer.Processor{},
		&parser.Processor{},
		&sema.Processor{},
		&emit.Processor{},
	)
}

// Compile reads sourcePath, runs it through the full pipeline, and
// returns the encoded bytecode container. A Cache hit under
// opts skips the pipeline entirely.
func Compile(sourcePath string, opts Options) ([]byte, error) {
	if opts.Config == nil {
		opts.Config = config.Defaults()
	}
	if opts.RequestID == "" {
		opts.RequestID = uuid.NewString()
	}

	src, err := os.ReadFile(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("ace: read %s: %w", sourcePath, err)
	}
	source := string(src)

	var hash string
	if opts.Cache != nil {
		hash = cache.HashSource(source)
		if hit, ok, err := opts.Cache.Lookup(hash); err == nil && ok {
			return hit, nil
		}
	}

	ctx := pipeline.NewPipelineContext(source, sourcePath, opts.Config)
	ctx = stages().Run(ctx)
	if ctx.Errors.HasErrors() {
		return nil, &CompileError{Diagnostics: ctx.Errors}
	}

	if opts.Cache != nil {
		if err := opts.Cache.Store(hash, sourcePath, ctx.Bytecode); err != nil {
			return nil, fmt.Errorf("ace: cache store: %w", err)
		}
	}
	return ctx.Bytecode, nil
}

// RunOptions configures a Run call.
type RunOptions struct {
	Config  *config.Config
	Stdout  io.Writer
	Natives []*vm.NativeFunction
}

// Run decodes a bytecode container and executes it to completion,
// returning the process exit code EXIT (or an unhandled exception)
// leaves thread 0 with.
func Run(encoded []byte, opts RunOptions) (int, error) {
	container, err := bytecode.Decode(encoded)
	if err != nil {
		return 1, fmt.Errorf("ace: decode container: %w", err)
	}
	if opts.Config == nil {
		opts.Config = config.Defaults()
	}

	m := vm.New(container.Code, container.Statics)
	m.ConfigureHeap(opts.Config.HeapFloor, opts.Config.HeapCeiling)
	if opts.Stdout != nil {
		m.SetOutput(opts.Stdout)
	}

	natives := opts.Natives
	if natives == nil {
		natives = native.Builtins()
	}
	for _, n := range natives {
		m.RegisterNative(n)
	}

	return m.Run()
}
