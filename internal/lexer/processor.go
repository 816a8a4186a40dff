package lexer

import "github.com/ajmd17/ace-lang-sub002/internal/pipeline"

// Processor is the pipeline stage that tokenizes ctx.Source into
// ctx.Tokens.
type Processor struct{}

func (p *Processor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	toks, errs := Tokenize(ctx.FilePath, ctx.Source)
	ctx.Tokens = toks
	ctx.Errors = append(ctx.Errors, errs...)
	return ctx
}
