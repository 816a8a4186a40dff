// Package pipeline wires the compiler stages — lexer, parser, analyzer,
// emitter — into a single composable sequence. Each stage is a
// Processor; the Pipeline runs them in order over a shared
// PipelineContext, accumulating diagnostics from every stage rather
// than aborting at the first error, so a caller sees the complete
// picture in one pass (useful for an LSP-style use case, where parse
// errors and semantic errors must both be reported from one request).
package pipeline

import (
	"github.com/ajmd17/ace-lang-sub002/internal/ast"
	"github.com/ajmd17/ace-lang-sub002/internal/bytecode"
	"github.com/ajmd17/ace-lang-sub002/internal/config"
	"github.com/ajmd17/ace-lang-sub002/internal/diagnostics"
	"github.com/ajmd17/ace-lang-sub002/internal/ir"
	"github.com/ajmd17/ace-lang-sub002/internal/sema"
	"github.com/ajmd17/ace-lang-sub002/internal/token"
)

// PipelineContext threads state between stages. Earlier stages
// populate fields that later stages read; nothing is mutated
// concurrently since the pipeline is single-threaded by design (the
// compiler itself has no use for concurrency, unlike the VM it feeds).
type PipelineContext struct {
	Source   string
	FilePath string
	Config   *config.Config

	Tokens []token.Token

	AstRoot *ast.Program

	Unit *sema.CompilationUnit

	IR *ir.Chunk

	// Statics is the static-object table the final container encodes
	// alongside the lowered code bytes.
	Statics *bytecode.StaticTable

	// Bytecode is the fully encoded container produced by the emit
	// stage.
	Bytecode []byte

	Errors diagnostics.List
}

// NewPipelineContext seeds a context for compiling the given source
// text from the given file path.
func NewPipelineContext(source, filePath string, cfg *config.Config) *PipelineContext {
	if cfg == nil {
		cfg = config.Defaults()
	}
	return &PipelineContext{Source: source, FilePath: filePath, Config: cfg}
}

// Processor is a single pipeline stage.
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
}

// Pipeline is an ordered sequence of Processors.
type Pipeline struct {
	processors []Processor
}

func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Run executes every stage in order, always continuing past a stage
// that recorded errors so later stages can still contribute
// diagnostics (the caller checks ctx.Errors.HasErrors() once at the
// end).
func (p *Pipeline) Run(initial *PipelineContext) *PipelineContext {
	ctx := initial
	for _, proc := range p.processors {
		ctx = proc.Process(ctx)
	}
	ctx.Errors.Sort()
	return ctx
}
