package sema

import "github.com/ajmd17/ace-lang-sub002/internal/pipeline"

// Processor is the pipeline stage that runs the semantic analyzer over
// ctx.AstRoot and populates ctx.Unit.
type Processor struct{}

func (p *Processor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.AstRoot == nil {
		return ctx
	}
	unit := NewCompilationUnit(ctx.AstRoot)
	New(unit).Analyze()
	ctx.Unit = unit
	ctx.Errors = append(ctx.Errors, unit.Errors...)
	return ctx
}
