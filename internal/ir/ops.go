package ir

import (
	"bytes"

	"github.com/ajmd17/ace-lang-sub002/internal/bytecode"
)

// JumpKind selects which conditional (or unconditional) jump opcode a
// Jump lowers to.
type JumpKind int

const (
	JumpUnconditional JumpKind = iota
	JumpIfEqual
	JumpIfNotEqual
	JumpIfGreater
	JumpIfGreaterEqual
)

var jumpOpcodes = map[JumpKind]bytecode.Op{
	JumpUnconditional:  bytecode.JMP,
	JumpIfEqual:        bytecode.JE,
	JumpIfNotEqual:     bytecode.JNE,
	JumpIfGreater:      bytecode.JG,
	JumpIfGreaterEqual: bytecode.JGE,
}

// Jump emits an opcode plus a 32-bit absolute target resolved from the
// chunk's label table.
type Jump struct {
	Kind   JumpKind
	Target LabelID
}

func (j *Jump) Size() int { return 1 + 4 }
func (j *Jump) Build(buf *bytes.Buffer, params *BuildParams) {
	buf.WriteByte(byte(jumpOpcodes[j.Kind]))
	// Position is already absolute: ResolveLabels recorded it relative
	// to the whole program, not to this chunk.
	writeU32(buf, uint32(params.Labels.Position(j.Target)))
}

// Comparison is a two-register compare, setting the VM's flags
// register for a subsequent conditional Jump.
type Comparison struct {
	Left, Right byte
}

func (c *Comparison) Size() int { return 3 }
func (c *Comparison) Build(buf *bytes.Buffer, params *BuildParams) {
	buf.WriteByte(byte(bytecode.CMP))
	buf.WriteByte(c.Left)
	buf.WriteByte(c.Right)
}

// StorageTarget selects the operand kind a StorageOperation reads from
// or writes to.
type StorageTarget int

const (
	StorageLocal StorageTarget = iota
	StorageStatic
	StorageMemberByHash
	StorageMemberByIndex
	StorageArrayIndex
	StorageArrayIndexByString
)

// StorageOperation loads or stores between a register and one of the
// operand kinds above. Array-index
// forms always carry their index in a register, per the fixed
// LOAD_ARRAYIDX/MOV_ARRAYIDX encodings.
type StorageOperation struct {
	Store    bool // false = load, true = store
	Target   StorageTarget
	Reg      byte
	Index    uint32 // local slot, static id, or member index/hash
	OtherReg byte   // the array/member base register, for member/array forms
	IndexReg byte   // array index register, for StorageArrayIndex* forms
}

// Size mirrors the fixed per-opcode operand widths in the canonical
// opcode table: member-by-index carries an 8-bit immediate,
// local/static slots a 16-bit one, member-by-hash a 32-bit one, and
// array-index operands travel in registers rather than immediates at
// all. Each branch here must match Build's byte count exactly, or
// two-pass label resolution silently miscomputes every later address.
func (s *StorageOperation) Size() int {
	switch s.Target {
	case StorageArrayIndex, StorageArrayIndexByString:
		return 4 // opcode + dst/src reg + base reg + index reg
	case StorageLocal, StorageStatic:
		return 1 + 1 + 2 // opcode + reg + u16
	case StorageMemberByIndex:
		return 1 + 1 + 1 + 1 // opcode + rd + rs + u8
	case StorageMemberByHash:
		return 1 + 1 + 1 + 4 // opcode + rd + rs + u32
	}
	return 0
}

func (s *StorageOperation) Build(buf *bytes.Buffer, params *BuildParams) {
	switch s.Target {
	case StorageLocal:
		if s.Store {
			buf.WriteByte(byte(bytecode.MOV_LOCAL))
			writeU16(buf, uint16(s.Index))
			buf.WriteByte(s.Reg)
		} else {
			buf.WriteByte(byte(bytecode.LOAD_LOCAL))
			buf.WriteByte(s.Reg)
			writeU16(buf, uint16(s.Index))
		}
	case StorageStatic:
		buf.WriteByte(byte(bytecode.LOAD_STATIC))
		buf.WriteByte(s.Reg)
		writeU16(buf, uint16(s.Index))
	case StorageMemberByIndex:
		if s.Store {
			buf.WriteByte(byte(bytecode.MOV_MEM))
			buf.WriteByte(s.OtherReg)
			buf.WriteByte(byte(s.Index))
			buf.WriteByte(s.Reg)
		} else {
			buf.WriteByte(byte(bytecode.LOAD_MEM))
			buf.WriteByte(s.Reg)
			buf.WriteByte(s.OtherReg)
			buf.WriteByte(byte(s.Index))
		}
	case StorageMemberByHash:
		if s.Store {
			buf.WriteByte(byte(bytecode.MOV_MEM_HASH))
			buf.WriteByte(s.OtherReg)
			writeU32(buf, s.Index)
			buf.WriteByte(s.Reg)
		} else {
			buf.WriteByte(byte(bytecode.LOAD_MEM_HASH))
			buf.WriteByte(s.Reg)
			buf.WriteByte(s.OtherReg)
			writeU32(buf, s.Index)
		}
	case StorageArrayIndex, StorageArrayIndexByString:
		if s.Store {
			buf.WriteByte(byte(bytecode.MOV_ARRAYIDX))
			buf.WriteByte(s.OtherReg)
			buf.WriteByte(s.IndexReg)
			buf.WriteByte(s.Reg)
		} else {
			buf.WriteByte(byte(bytecode.LOAD_ARRAYIDX))
			buf.WriteByte(s.Reg)
			buf.WriteByte(s.OtherReg)
			buf.WriteByte(s.IndexReg)
		}
	}
}

// --- thin single-opcode wrappers ---

type FunctionCall struct {
	FnReg byte
	Nargs byte
}

func (f *FunctionCall) Size() int { return 3 }
func (f *FunctionCall) Build(buf *bytes.Buffer, params *BuildParams) {
	buf.WriteByte(byte(bytecode.CALL))
	buf.WriteByte(f.FnReg)
	buf.WriteByte(f.Nargs)
}

type Return struct{}

func (r *Return) Size() int { return 1 }
func (r *Return) Build(buf *bytes.Buffer, params *BuildParams) {
	buf.WriteByte(byte(bytecode.RET))
}

type StoreLocal struct {
	Slot uint16
	Reg  byte
}

func (s *StoreLocal) Size() int { return 1 + 2 + 1 }
func (s *StoreLocal) Build(buf *bytes.Buffer, params *BuildParams) {
	buf.WriteByte(byte(bytecode.MOV_LOCAL))
	writeU16(buf, s.Slot)
	buf.WriteByte(s.Reg)
}

type PopLocal struct {
	N byte
}

func (p *PopLocal) Size() int {
	if p.N == 1 {
		return 1
	}
	return 2
}
func (p *PopLocal) Build(buf *bytes.Buffer, params *BuildParams) {
	if p.N == 1 {
		buf.WriteByte(byte(bytecode.POP))
		return
	}
	buf.WriteByte(byte(bytecode.POP_N))
	buf.WriteByte(p.N)
}

type Push struct{ Reg byte }

func (p *Push) Size() int { return 2 }
func (p *Push) Build(buf *bytes.Buffer, params *BuildParams) {
	buf.WriteByte(byte(bytecode.PUSH))
	buf.WriteByte(p.Reg)
}

type ConstI32 struct {
	Reg byte
	Val int32
}

func (c *ConstI32) Size() int { return 1 + 1 + 4 }
func (c *ConstI32) Build(buf *bytes.Buffer, params *BuildParams) {
	buf.WriteByte(byte(bytecode.LOAD_I32))
	buf.WriteByte(c.Reg)
	writeU32(buf, uint32(c.Val))
}

type ConstI64 struct {
	Reg byte
	Val int64
}

func (c *ConstI64) Size() int { return 1 + 1 + 8 }
func (c *ConstI64) Build(buf *bytes.Buffer, params *BuildParams) {
	buf.WriteByte(byte(bytecode.LOAD_I64))
	buf.WriteByte(c.Reg)
	var tmp [8]byte
	putU64(tmp[:], uint64(c.Val))
	buf.Write(tmp[:])
}

type ConstF32 struct {
	Reg byte
	Val float32
}

func (c *ConstF32) Size() int { return 1 + 1 + 4 }
func (c *ConstF32) Build(buf *bytes.Buffer, params *BuildParams) {
	buf.WriteByte(byte(bytecode.LOAD_F32))
	buf.WriteByte(c.Reg)
	writeF32(buf, c.Val)
}

type ConstF64 struct {
	Reg byte
	Val float64
}

func (c *ConstF64) Size() int { return 1 + 1 + 8 }
func (c *ConstF64) Build(buf *bytes.Buffer, params *BuildParams) {
	buf.WriteByte(byte(bytecode.LOAD_F64))
	buf.WriteByte(c.Reg)
	writeF64(buf, c.Val)
}

type ConstBool struct {
	Reg byte
	Val bool
}

func (c *ConstBool) Size() int { return 2 }
func (c *ConstBool) Build(buf *bytes.Buffer, params *BuildParams) {
	if c.Val {
		buf.WriteByte(byte(bytecode.LOAD_TRUE))
	} else {
		buf.WriteByte(byte(bytecode.LOAD_FALSE))
	}
	buf.WriteByte(c.Reg)
}

type ConstNull struct{ Reg byte }

func (c *ConstNull) Size() int { return 2 }
func (c *ConstNull) Build(buf *bytes.Buffer, params *BuildParams) {
	buf.WriteByte(byte(bytecode.LOAD_NULL))
	buf.WriteByte(c.Reg)
}

func putU64(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
}
