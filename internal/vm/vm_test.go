package vm_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/ajmd17/ace-lang-sub002/internal/bytecode"
	"github.com/ajmd17/ace-lang-sub002/internal/vm"
)

// asm is a tiny hand-rolled assembler for building test programs
// directly against the opcode table, without going through the
// lexer/parser/sema/emit pipeline.
type asm struct {
	buf bytes.Buffer
}

func (a *asm) op(o bytecode.Op) *asm {
	a.buf.WriteByte(byte(o))
	return a
}

// u32Placeholder reserves 4 zero bytes for a forward jump/try target
// and returns their offset, to be filled in later with patchU32 once
// the target address is known.
func (a *asm) u32Placeholder() int {
	off := a.buf.Len()
	a.u32(0)
	return off
}

func patchU32(code []byte, offset int, value uint32) {
	binary.LittleEndian.PutUint32(code[offset:offset+4], value)
}

func (a *asm) b(v byte) *asm {
	a.buf.WriteByte(v)
	return a
}

func (a *asm) u16(v uint16) *asm {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	a.buf.Write(b[:])
	return a
}

func (a *asm) u32(v uint32) *asm {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	a.buf.Write(b[:])
	return a
}

func (a *asm) i32(v int32) *asm { return a.u32(uint32(v)) }

func (a *asm) len() uint32 { return uint32(a.buf.Len()) }

func (a *asm) bytes() []byte { return a.buf.Bytes() }

func newVM(t *testing.T, code []byte, statics *bytecode.StaticTable) (*vm.VM, *bytes.Buffer) {
	t.Helper()
	if statics == nil {
		statics = &bytecode.StaticTable{}
	}
	m := vm.New(code, statics)
	var out bytes.Buffer
	m.SetOutput(&out)
	return m, &out
}

func TestArithmeticAndEcho(t *testing.T) {
	var a asm
	a.op(bytecode.LOAD_I32).b(0).i32(10)
	a.op(bytecode.LOAD_I32).b(1).i32(15)
	a.op(bytecode.ADD).b(0).b(1)
	a.op(bytecode.ECHO).b(0)
	a.op(bytecode.EXIT)

	m, out := newVM(t, a.bytes(), nil)
	code, err := m.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}
	if got := out.String(); got != "25" {
		t.Fatalf("output = %q, want %q", got, "25")
	}
}

func TestLocalsRoundTrip(t *testing.T) {
	var a asm
	a.op(bytecode.LOAD_I32).b(0).i32(7)
	a.op(bytecode.MOV_LOCAL).u16(0).b(0)
	a.op(bytecode.LOAD_I32).b(1).i32(3)
	a.op(bytecode.LOAD_LOCAL).b(2).u16(0)
	a.op(bytecode.ADD).b(2).b(1)
	a.op(bytecode.ECHO).b(2)
	a.op(bytecode.EXIT)

	m, out := newVM(t, a.bytes(), nil)
	if _, err := m.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := out.String(); got != "10" {
		t.Fatalf("output = %q, want %q", got, "10")
	}
}

// TestArrayLiteralFillsByIndex matches internal/emit's actual
// ArrayExpression lowering: NEW_ARRAY allocates N null slots, each
// element is written afterward by an individual MOV_ARRAYIDX store,
// never by popping values the caller never pushed.
func TestArrayLiteralFillsByIndex(t *testing.T) {
	var a asm
	a.op(bytecode.NEW_ARRAY).b(0).u16(3)
	for i, v := range []int32{10, 20, 30} {
		a.op(bytecode.LOAD_I32).b(1).i32(int32(i))
		a.op(bytecode.LOAD_I32).b(2).i32(v)
		a.op(bytecode.MOV_ARRAYIDX).b(0).b(1).b(2)
	}
	a.op(bytecode.LOAD_I32).b(3).i32(1)
	a.op(bytecode.LOAD_ARRAYIDX).b(4).b(0).b(3)
	a.op(bytecode.ECHO).b(4)
	a.op(bytecode.EXIT)

	m, out := newVM(t, a.bytes(), nil)
	if _, err := m.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := out.String(); got != "20" {
		t.Fatalf("output = %q, want %q", got, "20")
	}
}

func TestCallAndReturn(t *testing.T) {
	// Layout:
	//   0: JMP main
	//   5: fn: RET 0 (register 0 already holds arg*2 by convention)
	//   main: load args, push, CALL, echo, EXIT
	var a asm
	a.op(bytecode.JMP)
	jmpPatch := a.u32Placeholder()
	fnAddr := a.len()
	// fn(arg) { return arg*2 }; arg arrives as local slot 1 (slot 0 is self)
	a.op(bytecode.LOAD_LOCAL).b(0).u16(1)
	a.op(bytecode.LOAD_I32).b(1).i32(2)
	a.op(bytecode.MUL).b(0).b(1)
	a.op(bytecode.RET)

	mainAddr := a.len()
	a.op(bytecode.LOAD_I32).b(0).i32(21)
	a.op(bytecode.PUSH).b(0)
	a.op(bytecode.LOAD_STATIC).b(1).u16(0) // function value
	a.op(bytecode.CALL).b(1).b(1)
	a.op(bytecode.ECHO).b(1)
	a.op(bytecode.EXIT)

	code := a.bytes()
	patchU32(code, jmpPatch, mainAddr)

	statics := &bytecode.StaticTable{}
	statics.Register(&bytecode.StaticEntry{Tag: bytecode.StaticFunction, FuncAddr: fnAddr, FuncNargs: 1})

	m, out := newVM(t, code, statics)
	if _, err := m.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := out.String(); got != "42" {
		t.Fatalf("output = %q, want %q", got, "42")
	}
}

func TestTryCatchRecoversThrownValue(t *testing.T) {
	var a asm
	a.op(bytecode.BEGIN_TRY)
	tryPatch := a.u32Placeholder()
	a.op(bytecode.LOAD_STATIC).b(0).u16(0)
	a.op(bytecode.THROW).b(0)
	a.op(bytecode.ECHO).b(0) // unreachable
	catchAddr := a.len()
	a.op(bytecode.LOAD_REF).b(1)
	a.op(bytecode.ECHO).b(1)
	a.op(bytecode.EXIT)

	code := a.bytes()
	patchU32(code, tryPatch, catchAddr)

	statics := &bytecode.StaticTable{}
	statics.Register(&bytecode.StaticEntry{Tag: bytecode.StaticString, String: "caught"})

	m, out := newVM(t, code, statics)
	if _, err := m.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := out.String(); got != "caught" {
		t.Fatalf("output = %q, want %q", got, "caught")
	}
}

func TestDivisionByZeroRaisesCatchableException(t *testing.T) {
	var a asm
	a.op(bytecode.BEGIN_TRY)
	tryPatch := a.u32Placeholder()
	a.op(bytecode.LOAD_I32).b(0).i32(10)
	a.op(bytecode.LOAD_I32).b(1).i32(0)
	a.op(bytecode.DIV).b(0).b(1)
	a.op(bytecode.ECHO).b(0) // unreachable
	catchAddr := a.len()
	a.op(bytecode.LOAD_STATIC).b(2).u16(0)
	a.op(bytecode.ECHO).b(2)
	a.op(bytecode.EXIT)

	code := a.bytes()
	patchU32(code, tryPatch, catchAddr)

	statics := &bytecode.StaticTable{}
	statics.Register(&bytecode.StaticEntry{Tag: bytecode.StaticString, String: "div0"})

	m, out := newVM(t, code, statics)
	if _, err := m.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := out.String(); got != "div0" {
		t.Fatalf("output = %q, want %q", got, "div0")
	}
}

func TestUnhandledExceptionHaltsWithRuntimeError(t *testing.T) {
	var a asm
	a.op(bytecode.LOAD_STATIC).b(0).u16(0)
	a.op(bytecode.THROW).b(0)

	statics := &bytecode.StaticTable{}
	statics.Register(&bytecode.StaticEntry{Tag: bytecode.StaticString, String: "boom"})

	m, _ := newVM(t, a.bytes(), statics)
	code, err := m.Run()
	if err == nil {
		t.Fatal("expected an unhandled-exception error, got nil")
	}
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if _, ok := err.(*vm.RuntimeError); !ok {
		t.Fatalf("error type = %T, want *vm.RuntimeError", err)
	}
}

func TestComparisonFlagsDriveJumps(t *testing.T) {
	var a asm
	a.op(bytecode.LOAD_I32).b(0).i32(5)
	a.op(bytecode.LOAD_I32).b(1).i32(5)
	a.op(bytecode.CMP).b(0).b(1)
	a.op(bytecode.JE)
	jePatch := a.u32Placeholder()
	a.op(bytecode.LOAD_STATIC).b(2).u16(1)
	a.op(bytecode.ECHO).b(2)
	a.op(bytecode.EXIT)
	eqAddr := a.len()
	a.op(bytecode.LOAD_STATIC).b(2).u16(0)
	a.op(bytecode.ECHO).b(2)
	a.op(bytecode.EXIT)

	code := a.bytes()
	patchU32(code, jePatch, eqAddr)

	statics := &bytecode.StaticTable{}
	statics.Register(&bytecode.StaticEntry{Tag: bytecode.StaticString, String: "equal"})
	statics.Register(&bytecode.StaticEntry{Tag: bytecode.StaticString, String: "not-equal"})

	m, out := newVM(t, code, statics)
	if _, err := m.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := out.String(); got != "equal" {
		t.Fatalf("output = %q, want %q", got, "equal")
	}
}

// fnvHash mirrors internal/emit's stringHash and internal/vm's fnvHash
// so a member name hashed here matches what MOV_MEM_HASH/LOAD_MEM_HASH
// resolve against at runtime.
func fnvHash(s string) uint32 {
	var h uint32 = 2166136261
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= 16777619
	}
	return h
}

// TestClosureCapturesAndCalls builds a bound-closure heap object by
// hand (the same shape internal/emit produces for a FunctionExpression
// with captures) and calls it, to exercise the VM's self-binding path
// in call() rather than the plain-function path TestCallAndReturn uses.
func TestClosureCapturesAndCalls(t *testing.T) {
	// fn(self) { return self.captured + 20 }; captured arrives via the
	// closure object bound to local slot 0.
	var a asm
	a.op(bytecode.JMP)
	jmpPatch := a.u32Placeholder()
	fnAddr := a.len()
	a.op(bytecode.LOAD_LOCAL).b(0).u16(0) // self
	a.op(bytecode.LOAD_MEM_HASH).b(1).b(0).u32(fnvHash("captured"))
	a.op(bytecode.LOAD_I32).b(2).i32(20)
	a.op(bytecode.ADD).b(1).b(2)
	a.op(bytecode.MOV_REG).b(0).b(1)
	a.op(bytecode.RET)

	mainAddr := a.len()
	a.op(bytecode.NEW).b(0).u16(0) // closure object
	a.op(bytecode.LOAD_I32).b(1).i32(22)
	a.op(bytecode.MOV_MEM_HASH).b(0).u32(fnvHash("captured")).b(1)
	a.op(bytecode.LOAD_STATIC).b(2).u16(1) // function value
	a.op(bytecode.MOV_MEM_HASH).b(0).u32(fnvHash("@fn")).b(2)
	a.op(bytecode.CALL).b(0).b(0)
	a.op(bytecode.ECHO).b(0)
	a.op(bytecode.EXIT)

	code := a.bytes()
	patchU32(code, jmpPatch, mainAddr)

	statics := &bytecode.StaticTable{}
	statics.Register(&bytecode.StaticEntry{Tag: bytecode.StaticTypeInfo, TypeName: "@closure", MemberNames: []string{"captured", "@fn"}})
	statics.Register(&bytecode.StaticEntry{Tag: bytecode.StaticFunction, FuncAddr: fnAddr, FuncNargs: 0})

	m, out := newVM(t, code, statics)
	if _, err := m.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := out.String(); got != "42" {
		t.Fatalf("output = %q, want %q", got, "42")
	}
}

func TestHeapGrowsAndCollects(t *testing.T) {
	var a asm
	for i := 0; i < 50; i++ {
		a.op(bytecode.NEW_ARRAY).b(0).u16(0)
	}
	a.op(bytecode.LOAD_I32).b(1).i32(1)
	a.op(bytecode.ECHO).b(1)
	a.op(bytecode.EXIT)

	m, out := newVM(t, a.bytes(), nil)
	m.ConfigureHeap(4, 64)
	if _, err := m.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := out.String(); got != "1" {
		t.Fatalf("output = %q, want %q", got, "1")
	}
}

func TestSliceViewsBackingArray(t *testing.T) {
	h := vm.NewHeap(nil)
	arr, err := h.AllocArray([]vm.Value{vm.I32(1), vm.I32(2), vm.I32(3), vm.I32(4)})
	if err != nil {
		t.Fatalf("AllocArray: %v", err)
	}
	sl, err := h.AllocSlice(arr, 1, 3)
	if err != nil {
		t.Fatalf("AllocSlice: %v", err)
	}
	sliceVal := vm.HeapValue(sl)
	if got := vm.ValueLength(sliceVal); got != 2 {
		t.Fatalf("ValueLength(slice) = %d, want 2", got)
	}
	if got := sliceVal.String(); got != "[2, 3]" {
		t.Fatalf("slice String() = %q, want %q", got, "[2, 3]")
	}

	// A slice of a slice flattens to the same backing array.
	sl2, err := h.AllocSlice(sl, 0, 1)
	if err != nil {
		t.Fatalf("AllocSlice of slice: %v", err)
	}
	if sl2.SliceBase != arr || sl2.SliceStart != 1 || sl2.SliceEnd != 2 {
		t.Fatalf("nested slice did not flatten to backing array: %+v", sl2)
	}

	if _, err := h.AllocSlice(arr, 2, 10); err == nil {
		t.Fatal("expected out-of-range slice to error")
	}
}

func TestEventArrayMatchesByMode(t *testing.T) {
	h := vm.NewHeap(nil)
	oneStr, _ := h.AllocString("one")
	handlerA := vm.I32(100)
	handlerB := vm.I32(200)
	events, err := h.AllocEventArray([]vm.EventHandler{
		{MatchMode: vm.MatchValues, Key: vm.HeapValue(oneStr), Handler: handlerA},
		{MatchMode: vm.MatchTypes, Key: vm.F64(0), Handler: handlerB},
	})
	if err != nil {
		t.Fatalf("AllocEventArray: %v", err)
	}
	eventsVal := vm.HeapValue(events)

	matched, ok := vm.ValueMatchEvent(eventsVal, vm.HeapValue(oneStr))
	if !ok || matched != handlerA {
		t.Fatalf("expected value-match to hit handlerA, got %v ok=%v", matched, ok)
	}

	matched, ok = vm.ValueMatchEvent(eventsVal, vm.F64(3.14))
	if !ok || matched != handlerB {
		t.Fatalf("expected type-match to hit handlerB, got %v ok=%v", matched, ok)
	}

	if _, ok := vm.ValueMatchEvent(eventsVal, vm.I32(9)); ok {
		t.Fatal("expected no match for an int against string/float handlers")
	}
}

func TestUserDataRoundTrips(t *testing.T) {
	h := vm.NewHeap(nil)
	cell, err := h.AllocUserData("file_handle", 42)
	if err != nil {
		t.Fatalf("AllocUserData: %v", err)
	}
	tag, payload, ok := vm.ValueUserData(vm.HeapValue(cell))
	if !ok || tag != "file_handle" || payload != 42 {
		t.Fatalf("ValueUserData = (%q, %v, %v), want (\"file_handle\", 42, true)", tag, payload, ok)
	}
}
