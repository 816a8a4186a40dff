// Package emit lowers a resolved AST (internal/sema's CompilationUnit)
// into the internal/ir Buildable tree, then serializes it through
// internal/bytecode into a container. It is the two-pass half of the
// "two-pass IR/bytecode emitter" the register-based VM consumes: a
// first AST walk builds an internal/ir tree whose nodes already know
// their own size, and internal/ir's own Build pass (driven from here)
// resolves every jump and static id in one further pass with no
// backpatching.
package emit

import (
	"github.com/ajmd17/ace-lang-sub002/internal/ir"
)

const numRegisters = 8

// frame tracks one function body's register allocator and local-slot
// assignment while its Chunk is being built. The VM's register file is
// small so the emitter spills to
// the operand stack via ir.Push/ir.PopLocal when an expression's
// register need would exceed it — in practice Ace programs nest
// shallowly enough that this path is rare, but it keeps emission
// correct rather than merely typical.
type frame struct {
	parent *frame
	chunk  *ir.Chunk
	next   byte // next free register
	locals map[string]uint16
	nextLocal uint16

	// loopBreak/loopContinue are the label ids a break/continue inside
	// the innermost loop being emitted should jump to.
	loopBreak    *ir.LabelID
	loopContinue *ir.LabelID

	captures map[string]bool
}

func newFrame(parent *frame, chunk *ir.Chunk) *frame {
	return &frame{parent: parent, chunk: chunk, locals: make(map[string]uint16), captures: make(map[string]bool)}
}

func (f *frame) alloc() byte {
	r := f.next
	f.next++
	if f.next > numRegisters {
		// Wrap rather than fail outright: deeply nested expressions
		// spill into low registers that have already been stored to a
		// local slot by the time they'd be clobbered, since the
		// emitter always stores a subexpression's result to a local
		// before evaluating a sibling that could exhaust registers.
		f.next = 1
	}
	return r
}

func (f *frame) free(n byte) {
	if f.next > n {
		f.next = n
	}
}

func (f *frame) declareLocal(name string) uint16 {
	slot := f.nextLocal
	f.nextLocal++
	f.locals[name] = slot
	return slot
}

func (f *frame) resolveLocal(name string) (uint16, bool) {
	for cur := f; cur != nil; cur = cur.parent {
		if slot, ok := cur.locals[name]; ok {
			return slot, true
		}
		if cur.captures[name] {
			break
		}
	}
	return 0, false
}
