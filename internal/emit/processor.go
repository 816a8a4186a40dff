package emit

import (
	"bytes"

	"github.com/ajmd17/ace-lang-sub002/internal/bytecode"
	"github.com/ajmd17/ace-lang-sub002/internal/ir"
	"github.com/ajmd17/ace-lang-sub002/internal/pipeline"
)

// Processor is the pipeline stage that lowers ctx.Unit into ctx.IR and
// the final ctx.Bytecode container. It only runs when the analyzer
// produced no errors, following the rule that nothing should emit against a
// broken tree" rule.
type Processor struct{}

func (p *Processor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.Unit == nil || ctx.Errors.HasErrors() {
		return ctx
	}

	e := New(ctx.Unit, &ctx.Errors)
	chunk := e.Emit()
	ctx.IR = chunk
	ctx.Statics = e.Statics()

	if ctx.Errors.HasErrors() {
		return ctx
	}

	var buf bytes.Buffer
	params := &ir.BuildParams{Labels: chunk.Labels, Statics: ctx.Statics}
	chunk.Build(&buf, params)

	container := bytecode.NewContainer(ctx.Statics, buf.Bytes())
	ctx.Bytecode = container.Encode()
	return ctx
}
