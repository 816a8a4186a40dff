package ir

import (
	"bytes"
	"encoding/binary"
	"math"
)

// Buildable is a node that can report its byte size without lowering
// and then write its final bytes given a BuildParams.
type Buildable interface {
	Size() int
	Build(buf *bytes.Buffer, params *BuildParams)
}

// Chunk is an ordered list of Buildables plus the label table its
// children's LabelMarkers and Jumps share. Chunks aggregate child
// sizes and accumulate LocalOffset as each child lowers in order.
type Chunk struct {
	Labels   *LabelTable
	Children []Buildable
}

func NewChunk() *Chunk {
	return &Chunk{Labels: NewLabelTable()}
}

func (c *Chunk) Append(b Buildable) {
	c.Children = append(c.Children, b)
}

func (c *Chunk) Size() int {
	total := 0
	for _, child := range c.Children {
		total += child.Size()
	}
	return total
}

func (c *Chunk) Build(buf *bytes.Buffer, params *BuildParams) {
	// A nested chunk shares its parent's static table but owns its own
	// label table and restarts LocalOffset at 0 relative to its own
	// BlockOffset.
	childParams := &BuildParams{
		BlockOffset: params.BlockOffset + params.LocalOffset,
		LocalOffset: 0,
		Labels:      c.Labels,
		Statics:     params.Statics,
	}
	// Every label this chunk (and anything nested inside it) defines
	// must have a resolved position before any child is lowered, since
	// a Jump earlier in the stream may target a LabelMarker later in
	// it: two-pass emission, no backpatching. ResolveLabels is the
	// first of those two passes; Build below is the second.
	c.ResolveLabels(childParams.BlockOffset)
	for _, child := range c.Children {
		child.Build(buf, childParams)
		childParams.LocalOffset += child.Size()
	}
}

// ResolveLabels walks this chunk's children computing each one's
// absolute byte position and records every LabelMarker's position (and
// recurses into nested Chunks and BuildableTryCatch bodies, which carry
// their own sub-chunks) before any Buildable is asked to write its
// final bytes.
func (c *Chunk) ResolveLabels(blockOffset int) {
	offset := 0
	for _, child := range c.Children {
		switch ch := child.(type) {
		case *Chunk:
			ch.ResolveLabels(blockOffset + offset)
		case *LabelMarker:
			c.Labels.Resolve(ch.ID, blockOffset+offset)
		case *BuildableTryCatch:
			ch.Body.ResolveLabels(blockOffset + offset + 5)
		}
		offset += child.Size()
	}
}

// LabelMarker is a zero-size placeholder; its label's position is
// resolved by Chunk.ResolveLabels before Build ever runs, so Build
// itself writes nothing.
type LabelMarker struct {
	ID LabelID
}

func (m *LabelMarker) Size() int                                    { return 0 }
func (m *LabelMarker) Build(buf *bytes.Buffer, params *BuildParams) {}

// RawOperation is the variadic-operand escape hatch for opcodes not
// otherwise modelled by a dedicated Buildable.
type RawOperation struct {
	OpByte byte
	Operands []byte
}

func (r *RawOperation) Size() int { return 1 + len(r.Operands) }
func (r *RawOperation) Build(buf *bytes.Buffer, params *BuildParams) {
	buf.WriteByte(r.OpByte)
	buf.Write(r.Operands)
}

func writeU16(buf *bytes.Buffer, v uint16) {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], v)
	buf.Write(tmp[:])
}

func writeU32(buf *bytes.Buffer, v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	buf.Write(tmp[:])
}

func writeF32(buf *bytes.Buffer, v float32) {
	writeU32(buf, math.Float32bits(v))
}

func writeF64(buf *bytes.Buffer, v float64) {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], math.Float64bits(v))
	buf.Write(tmp[:])
}
