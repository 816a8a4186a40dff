package parser

import "github.com/ajmd17/ace-lang-sub002/internal/pipeline"

// Processor is the pipeline stage that parses ctx.Tokens into
// ctx.AstRoot.
type Processor struct{}

func (pr *Processor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	p := New(ctx.Tokens)
	ctx.AstRoot = p.ParseProgram()
	ctx.Errors = append(ctx.Errors, p.Errors...)
	return ctx
}
