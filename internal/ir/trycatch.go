package ir

import (
	"bytes"

	"github.com/ajmd17/ace-lang-sub002/internal/bytecode"
)

// BuildableTryCatch wraps a protected Chunk with BEGIN_TRY/END_TRY,
// plus a catch label the VM jumps to on an unwound exception.
type BuildableTryCatch struct {
	CatchTarget LabelID
	Body        *Chunk
}

func (t *BuildableTryCatch) Size() int {
	return 1 + 4 + t.Body.Size() + 1
}

func (t *BuildableTryCatch) Build(buf *bytes.Buffer, params *BuildParams) {
	buf.WriteByte(byte(bytecode.BEGIN_TRY))
	writeU32(buf, uint32(params.Labels.Position(t.CatchTarget)))

	bodyParams := &BuildParams{
		BlockOffset: params.BlockOffset + params.LocalOffset + 5,
		LocalOffset: 0,
		Labels:      params.Labels,
		Statics:     params.Statics,
	}
	t.Body.Build(buf, bodyParams)

	buf.WriteByte(byte(bytecode.END_TRY))
}
