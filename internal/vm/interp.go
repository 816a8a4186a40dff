package vm

import (
	"fmt"
	"math"

	"github.com/ajmd17/ace-lang-sub002/internal/bytecode"
)

// closureTypeName/closureFnMember mirror internal/emit's markers for a
// bound-closure heap object: its members are the captured names plus a
// reserved slot holding the underlying function value.
const (
	closureTypeName = "@closure"
	closureFnMember = "@fn"
)

// callFrame records what CALL must restore on the matching RET: the
// resumption address, which register receives the result, the operand
// stack depth at call time (so a callee can't underflow past its
// caller's values), and the locals-stack base it owns.
type callFrame struct {
	returnIP   uint32
	resultReg  byte
	stackDepth int
	localBase  int
}

func i32bitsToF32(u uint32) float32 { return math.Float32frombits(u) }
func i64bitsToF64(u uint64) float64 { return math.Float64frombits(u) }

func f32bits(f float32) uint32 { return math.Float32bits(f) }
func f64bits(f float64) uint64 { return math.Float64bits(f) }

// step decodes and executes a single instruction on t, advancing t.IP.
func (m *VM) step(t *Thread) error {
	op := m.readOp(t)
	switch op {
	case bytecode.NOP:

	case bytecode.LOAD_I32:
		r := m.readByte(t)
		t.Registers[r] = I32(m.readI32(t))
	case bytecode.LOAD_I64:
		r := m.readByte(t)
		t.Registers[r] = I64(m.readI64(t))
	case bytecode.LOAD_F32:
		r := m.readByte(t)
		t.Registers[r] = F32(m.readF32(t))
	case bytecode.LOAD_F64:
		r := m.readByte(t)
		t.Registers[r] = F64(m.readF64(t))
	case bytecode.LOAD_TRUE:
		r := m.readByte(t)
		t.Registers[r] = Bool(true)
	case bytecode.LOAD_FALSE:
		r := m.readByte(t)
		t.Registers[r] = Bool(false)
	case bytecode.LOAD_NULL:
		r := m.readByte(t)
		t.Registers[r] = Null()
	case bytecode.LOAD_STATIC:
		r := m.readByte(t)
		id := m.readU16(t)
		t.Registers[r] = m.loadStatic(id)
	case bytecode.LOAD_LOCAL:
		r := m.readByte(t)
		slot := m.readU16(t)
		t.Registers[r] = m.getLocal(t, slot)
	case bytecode.LOAD_MEM:
		rd := m.readByte(t)
		rs := m.readByte(t)
		idx := m.readByte(t)
		v, err := memberByIndex(t.Registers[rs], int(idx))
		if err != nil {
			return m.raiseOrFail(t, err)
		}
		t.Registers[rd] = v
	case bytecode.LOAD_MEM_HASH:
		rd := m.readByte(t)
		rs := m.readByte(t)
		hash := m.readU32(t)
		t.Registers[rd] = memberByHash(t.Registers[rs], hash)
	case bytecode.LOAD_ARRAYIDX:
		rd := m.readByte(t)
		rs := m.readByte(t)
		ri := m.readByte(t)
		v, err := arrayIndex(t.Registers[rs], t.Registers[ri])
		if err != nil {
			return m.raiseOrFail(t, err)
		}
		t.Registers[rd] = v
	case bytecode.LOAD_REF:
		r := m.readByte(t)
		t.Registers[r] = t.pendingException
	case bytecode.LOAD_DEREF:
		rd := m.readByte(t)
		rs := m.readByte(t)
		t.Registers[rd] = t.Registers[rs]

	case bytecode.MOV_REG:
		rd := m.readByte(t)
		rs := m.readByte(t)
		t.Registers[rd] = t.Registers[rs]
	case bytecode.MOV_LOCAL:
		slot := m.readU16(t)
		rs := m.readByte(t)
		m.setLocal(t, slot, t.Registers[rs])
	case bytecode.MOV_MEM:
		base := m.readByte(t)
		idx := m.readByte(t)
		rs := m.readByte(t)
		if err := setMemberByIndex(t.Registers[base], int(idx), t.Registers[rs]); err != nil {
			return m.raiseOrFail(t, err)
		}
	case bytecode.MOV_MEM_HASH:
		base := m.readByte(t)
		hash := m.readU32(t)
		rs := m.readByte(t)
		setMemberByHash(t.Registers[base], hash, t.Registers[rs])
	case bytecode.MOV_ARRAYIDX:
		base := m.readByte(t)
		ri := m.readByte(t)
		rs := m.readByte(t)
		if err := setArrayIndex(t.Registers[base], t.Registers[ri], t.Registers[rs]); err != nil {
			return m.raiseOrFail(t, err)
		}

	case bytecode.PUSH:
		r := m.readByte(t)
		if err := t.push(t.Registers[r]); err != nil {
			return err
		}
	case bytecode.POP:
		if _, err := t.pop(); err != nil {
			return err
		}
	case bytecode.POP_N:
		n := m.readByte(t)
		if err := t.popN(int(n)); err != nil {
			return err
		}

	case bytecode.CMP:
		l := m.readByte(t)
		r := m.readByte(t)
		t.Flags = compare(t.Registers[l], t.Registers[r])
	case bytecode.NEG:
		r := m.readByte(t)
		v, err := negate(t.Registers[r])
		if err != nil {
			return m.raiseOrFail(t, err)
		}
		t.Registers[r] = v
	case bytecode.ADD, bytecode.SUB, bytecode.MUL, bytecode.DIV, bytecode.MOD,
		bytecode.AND, bytecode.OR, bytecode.XOR, bytecode.SHL, bytecode.SHR:
		l := m.readByte(t)
		r := m.readByte(t)
		v, err := arith(op, t.Registers[l], t.Registers[r], m.heap)
		if err != nil {
			return m.raiseOrFail(t, err)
		}
		t.Registers[l] = v

	case bytecode.JMP:
		target := m.readU32(t)
		t.IP = target
	case bytecode.JE:
		target := m.readU32(t)
		if t.Flags == bytecode.CmpEqual {
			t.IP = target
		}
	case bytecode.JNE:
		target := m.readU32(t)
		if t.Flags != bytecode.CmpEqual {
			t.IP = target
		}
	case bytecode.JG:
		target := m.readU32(t)
		if t.Flags == bytecode.CmpGreater {
			t.IP = target
		}
	case bytecode.JGE:
		target := m.readU32(t)
		if t.Flags == bytecode.CmpGreater || t.Flags == bytecode.CmpEqual {
			t.IP = target
		}

	case bytecode.CALL:
		fnReg := m.readByte(t)
		nargs := m.readByte(t)
		return m.call(t, fnReg, int(nargs))
	case bytecode.RET:
		return m.ret(t)

	case bytecode.BEGIN_TRY:
		catchTarget := m.readU32(t)
		t.tryStack = append(t.tryStack, TryInfo{CatchTarget: catchTarget, StackDepth: t.SP})
	case bytecode.END_TRY:
		if len(t.tryStack) > 0 {
			t.tryStack = t.tryStack[:len(t.tryStack)-1]
		}
	case bytecode.THROW:
		r := m.readByte(t)
		return m.raise(t, t.Registers[r])
	case bytecode.YIELD:
		// Cooperative generator support is out of scope for this
		// dispatcher's single-thread drive loop; treat as a no-op pass
		// of the yielded value through register r.
		m.readByte(t)
	case bytecode.NEW:
		r := m.readByte(t)
		id := m.readU16(t)
		return m.allocObject(t, r, id)
	case bytecode.NEW_ARRAY:
		r := m.readByte(t)
		n := m.readU16(t)
		// Elements are filled in by individual MOV_ARRAYIDX stores right
		// after allocation (internal/emit emits one per array-literal
		// element), not popped off the operand stack here.
		elems := make([]Value, n)
		cell, err := m.heap.AllocArray(elems)
		if err != nil {
			return m.raiseOrFail(t, err)
		}
		t.Registers[r] = HeapValue(cell)
	case bytecode.NEW_STRING:
		r := m.readByte(t)
		id := m.readU16(t)
		entry := m.statics.Get(id)
		s := ""
		if entry != nil {
			s = entry.String
		}
		cell, err := m.heap.AllocString(s)
		if err != nil {
			return m.raiseOrFail(t, err)
		}
		t.Registers[r] = HeapValue(cell)

	case bytecode.LEN:
		rd := m.readByte(t)
		rs := m.readByte(t)
		t.Registers[rd] = I32(int32(ValueLength(t.Registers[rs])))

	case bytecode.ECHO:
		r := m.readByte(t)
		fmt.Fprint(m.out, t.Registers[r].String())
	case bytecode.ECHO_NEWLINE:
		fmt.Fprintln(m.out)

	case bytecode.EXIT:
		t.halted = true
		t.exitCode = 0

	default:
		return fmt.Errorf("unknown opcode 0x%02X at %d", byte(op), t.IP-1)
	}
	return nil
}

func (m *VM) getLocal(t *Thread, slot uint16) Value {
	idx := t.localBase() + int(slot)
	if idx >= len(t.locals) {
		return Null()
	}
	return t.locals[idx]
}

func (m *VM) setLocal(t *Thread, slot uint16, v Value) {
	idx := t.localBase() + int(slot)
	for idx >= len(t.locals) {
		t.locals = append(t.locals, Null())
	}
	t.locals[idx] = v
}

// call resolves fnReg to an entry address and an (optional) closure
// object, binds it as local slot 0 ("self"), copies nargs values
// already pushed by the caller into slots 1..nargs, and transfers
// control.
func (m *VM) call(t *Thread, fnReg byte, nargs int) error {
	fv := t.Registers[fnReg]

	var addr uint32
	var self Value = Null()

	switch fv.Kind {
	case KindFunction:
		addr = fv.Fn.Addr
	case KindHeap:
		if fv.Heap.Kind == HeapObject && fv.Heap.TypeName == closureTypeName {
			inner := fv.Heap.Members[closureFnMember]
			if inner.Kind != KindFunction {
				return m.raise(t, nativeError(m, t, "value is not callable"))
			}
			addr = inner.Fn.Addr
			self = fv
		} else {
			return m.raise(t, nativeError(m, t, "value is not callable"))
		}
	case KindNative:
		args := make([]Value, nargs)
		for i := nargs - 1; i >= 0; i-- {
			v, err := t.pop()
			if err != nil {
				return err
			}
			args[i] = v
		}
		result, err := fv.Nat.Fn(t, args)
		if err != nil {
			return m.raise(t, nativeError(m, t, err.Error()))
		}
		t.Registers[fnReg] = result
		return nil
	default:
		return m.raise(t, nativeError(m, t, "value is not callable"))
	}

	args := make([]Value, nargs)
	for i := nargs - 1; i >= 0; i-- {
		v, err := t.pop()
		if err != nil {
			return err
		}
		args[i] = v
	}

	base := len(t.locals)
	t.locals = append(t.locals, self)
	t.locals = append(t.locals, args...)

	t.frames = append(t.frames, callFrame{
		returnIP:   t.IP,
		resultReg:  fnReg,
		stackDepth: t.SP,
		localBase:  base,
	})
	t.IP = addr
	return nil
}

// ret pops the active call frame, truncates its locals, and resumes
// the caller with register 0's value as the result.
func (m *VM) ret(t *Thread) error {
	if len(t.frames) == 0 {
		t.halted = true
		return nil
	}
	fr := t.frames[len(t.frames)-1]
	t.frames = t.frames[:len(t.frames)-1]
	result := t.Registers[0]
	t.locals = t.locals[:fr.localBase]
	t.SP = fr.stackDepth
	t.IP = fr.returnIP
	t.Registers[fr.resultReg] = result
	return nil
}

func (m *VM) allocObject(t *Thread, r byte, id uint16) error {
	entry := m.statics.Get(id)
	if entry == nil || entry.Tag != bytecode.StaticTypeInfo {
		t.Registers[r] = Null()
		return nil
	}
	cell, err := m.heap.AllocObject(entry.TypeName, entry.MemberNames)
	if err != nil {
		return m.raiseOrFail(t, err)
	}
	t.Registers[r] = HeapValue(cell)
	return nil
}

// raiseOrFail wraps an internal Go error (heap overflow, a bad
// member/array access) as a thrown exception value
// rather than aborting the whole VM, so a surrounding BEGIN_TRY can
// still observe it.
func (m *VM) raiseOrFail(t *Thread, err error) error {
	return m.raise(t, nativeError(m, t, err.Error()))
}

func nativeError(m *VM, t *Thread, message string) Value {
	cell, err := m.heap.AllocString(message)
	if err != nil {
		return Bool(false)
	}
	return HeapValue(cell)
}

// raise unwinds to the nearest enclosing BEGIN_TRY in t, restoring its
// recorded stack depth and jumping to its catch target; with no
// enclosing try frame the thread halts with a RuntimeError.
func (m *VM) raise(t *Thread, exc Value) error {
	if len(t.tryStack) == 0 {
		t.halted = true
		t.exitCode = 1
		return &RuntimeError{Thread: t.ID, Message: exc.String()}
	}
	info := t.tryStack[len(t.tryStack)-1]
	t.tryStack = t.tryStack[:len(t.tryStack)-1]
	t.SP = info.StackDepth
	t.pendingException = exc
	t.IP = info.CatchTarget
	return nil
}
