// Package ir implements Ace's composable bytecode IR ("Buildable"): a
// tree of nodes that each report their own byte size before lowering,
// so jump targets resolve in a single pass with no backpatching. This
// is net-new design work required by the register-based, two-pass
// lowering this toolchain needs (see DESIGN.md).
package ir

import "github.com/ajmd17/ace-lang-sub002/internal/bytecode"

// LabelID is an opaque handle into a Chunk's own label table, valid
// only within the chunk that allocated it.
type LabelID int

// LabelTable owns one chunk's labels and their resolved positions,
// which Chunk.ResolveLabels fills in before lowering. It keeps no
// record of the jumps that reference them.
type LabelTable struct {
	positions []int // -1 until Chunk.ResolveLabels records it
}

func NewLabelTable() *LabelTable {
	return &LabelTable{}
}

// New allocates a fresh, unresolved label.
func (t *LabelTable) New() LabelID {
	t.positions = append(t.positions, -1)
	return LabelID(len(t.positions) - 1)
}

// Resolve records a label's absolute byte position in the code
// section. Chunk.ResolveLabels calls it before any jump referencing
// the label is lowered; two-pass sizing makes that possible since
// every sibling's size is already known.
func (t *LabelTable) Resolve(id LabelID, pos int) {
	t.positions[id] = pos
}

func (t *LabelTable) Position(id LabelID) int {
	return t.positions[id]
}

// BuildParams threads the lowering context through a Buildable tree
//.
type BuildParams struct {
	// BlockOffset is this chunk's absolute byte position within the
	// whole program's code section.
	BlockOffset int
	// LocalOffset accumulates as siblings lower in order; it is this
	// node's byte position relative to BlockOffset.
	LocalOffset int
	Labels      *LabelTable
	Statics     *bytecode.StaticTable
}
