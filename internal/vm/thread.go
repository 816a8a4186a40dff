package vm

import "github.com/ajmd17/ace-lang-sub002/internal/bytecode"

const (
	numRegisters  = 8
	maxStackDepth = 20000
)

// Thread is one cooperative execution context:
// a register file, an explicit operand stack, a flags register for
// CMP results, and the nested BEGIN_TRY frame stack.
type Thread struct {
	ID        int
	Registers [numRegisters]Value
	Stack     []Value
	SP        int
	Flags     bytecode.ComparisonFlag

	// Heap lets a native function box a new value without a separate VM
	// handle threaded through every call signature.
	Heap *Heap

	IP       uint32
	tryStack []TryInfo

	// locals is a flat, growable slot array shared by every active call
	// frame on this thread; each callFrame records the base index it
	// owns, so LOAD_LOCAL/MOV_LOCAL index relative to the top frame's
	// base rather than absolutely.
	locals []Value
	frames []callFrame

	exceptionOccurred bool
	pendingException  Value

	halted   bool
	exitCode int
}

func newThread(id int) *Thread {
	return &Thread{ID: id, Stack: make([]Value, maxStackDepth)}
}

// localBase is the slot offset the active call frame's locals start
// at; thread 0's top-level code runs in an implicit frame based at 0.
func (t *Thread) localBase() int {
	if len(t.frames) == 0 {
		return 0
	}
	return t.frames[len(t.frames)-1].localBase
}

// NewBytes boxes a raw byte buffer on the thread's heap, for natives
// marshaling values across a binary FFI boundary.
func (t *Thread) NewBytes(b []byte) (Value, error) {
	cell, err := t.Heap.AllocBytes(b)
	if err != nil {
		return Value{}, err
	}
	return HeapValue(cell), nil
}

// NewString boxes a Go string as an Ace string value, for natives that
// produce text rather than pass an existing string through unchanged.
func (t *Thread) NewString(s string) (Value, error) {
	cell, err := t.Heap.AllocString(s)
	if err != nil {
		return Value{}, err
	}
	return HeapValue(cell), nil
}

// NewSlice boxes a [start,end) view over an array value's backing
// storage, for natives implementing range-taking builtins.
func (t *Thread) NewSlice(array Value, start, end int) (Value, error) {
	if array.Kind != KindHeap || (array.Heap.Kind != HeapArray && array.Heap.Kind != HeapSlice) {
		return Value{}, memberAccessError{"slice of non-array"}
	}
	cell, err := t.Heap.AllocSlice(array.Heap, start, end)
	if err != nil {
		return Value{}, err
	}
	return HeapValue(cell), nil
}

// NewEventArray boxes a handler table for natives implementing
// key-dispatch builtins (the runtime counterpart of a `{key: handler}`
// literal).
func (t *Thread) NewEventArray(handlers []EventHandler) (Value, error) {
	cell, err := t.Heap.AllocEventArray(handlers)
	if err != nil {
		return Value{}, err
	}
	return HeapValue(cell), nil
}

// NewUserData boxes an opaque host payload, for FFI natives that hand
// the Ace side a handle it can only pass back, never inspect.
func (t *Thread) NewUserData(tag string, payload interface{}) (Value, error) {
	cell, err := t.Heap.AllocUserData(tag, payload)
	if err != nil {
		return Value{}, err
	}
	return HeapValue(cell), nil
}

func (t *Thread) push(v Value) error {
	if t.SP >= maxStackDepth {
		return stackOverflowError{}
	}
	t.Stack[t.SP] = v
	t.SP++
	return nil
}

func (t *Thread) pop() (Value, error) {
	if t.SP == 0 {
		return Value{}, stackUnderflowError{}
	}
	t.SP--
	return t.Stack[t.SP], nil
}

func (t *Thread) popN(n int) error {
	if t.SP < n {
		return stackUnderflowError{}
	}
	t.SP -= n
	return nil
}

type stackOverflowError struct{}

func (stackOverflowError) Error() string { return "operand stack overflow" }

type stackUnderflowError struct{}

func (stackUnderflowError) Error() string { return "operand stack underflow" }
