package vm

import (
	"fmt"
	"io"
	"os"

	"github.com/ajmd17/ace-lang-sub002/internal/bytecode"
)

// VM executes a decoded Container's code section against its static
// table. It holds the shared heap and the pool of
// cooperative threads; thread 0 is the main thread created at startup
// and is the only one the reference design schedules work onto unless
// a native explicitly spawns another.
type VM struct {
	code    []byte
	statics *bytecode.StaticTable
	heap    *Heap
	threads []*Thread

	natives map[string]*NativeFunction

	// staticHeapValues caches heap-boxed statics (strings) so repeated
	// LOAD_STATIC of the same entry doesn't reallocate.
	staticHeapValues map[uint16]Value

	out io.Writer

	maxThreads int
}

const defaultMaxThreads = 8

func New(code []byte, statics *bytecode.StaticTable) *VM {
	m := &VM{
		code:             code,
		statics:          statics,
		natives:          make(map[string]*NativeFunction),
		staticHeapValues: make(map[uint16]Value),
		out:              os.Stdout,
		maxThreads:       defaultMaxThreads,
	}
	m.heap = NewHeap(m.collectGarbage)
	t0 := newThread(0)
	t0.Heap = m.heap
	m.threads = []*Thread{t0}
	return m
}

// RegisterNative records a host function in the VM's native table
// under name. The interpreter never reads that table: no opcode looks
// a native up by name.
func (m *VM) RegisterNative(n *NativeFunction) {
	m.natives[n.Name] = n
}

// SetOutput redirects ECHO/ECHO_NEWLINE, defaulting to os.Stdout.
func (m *VM) SetOutput(w io.Writer) { m.out = w }

// ConfigureHeap overrides the heap's geometric growth bounds, normally
// sourced from config.Config.
func (m *VM) ConfigureHeap(floor, ceiling int) {
	if floor > 0 && ceiling > 0 {
		m.heap.Configure(floor, ceiling)
	}
}

// RuntimeError is an unhandled exception that reached thread 0's root
// with no enclosing BEGIN_TRY.
type RuntimeError struct {
	Thread  int
	Message string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("unhandled exception in thread %d: %s", e.Thread, e.Message)
}

// Run executes the program on thread 0 until EXIT or an unrecovered
// exception, returning the process exit code.
func (m *VM) Run() (int, error) {
	t := m.threads[0]
	t.IP = 0
	for !t.halted {
		if err := m.step(t); err != nil {
			return 1, err
		}
	}
	return t.exitCode, nil
}

func (m *VM) readOp(t *Thread) bytecode.Op {
	op := bytecode.Op(m.code[t.IP])
	t.IP++
	return op
}

func (m *VM) readByte(t *Thread) byte {
	b := m.code[t.IP]
	t.IP++
	return b
}

func (m *VM) readU16(t *Thread) uint16 {
	v := uint16(m.code[t.IP]) | uint16(m.code[t.IP+1])<<8
	t.IP += 2
	return v
}

func (m *VM) readU32(t *Thread) uint32 {
	v := uint32(m.code[t.IP]) | uint32(m.code[t.IP+1])<<8 | uint32(m.code[t.IP+2])<<16 | uint32(m.code[t.IP+3])<<24
	t.IP += 4
	return v
}

func (m *VM) readI32(t *Thread) int32 { return int32(m.readU32(t)) }

func (m *VM) readI64(t *Thread) int64 {
	lo := uint64(m.readU32(t))
	hi := uint64(m.readU32(t))
	return int64(lo | hi<<32)
}

func (m *VM) readF32(t *Thread) float32 {
	return i32bitsToF32(m.readU32(t))
}

func (m *VM) readF64(t *Thread) float64 {
	lo := uint64(m.readU32(t))
	hi := uint64(m.readU32(t))
	return i64bitsToF64(lo | hi<<32)
}

func (m *VM) loadStatic(id uint16) Value {
	if v, ok := m.staticHeapValues[id]; ok {
		return v
	}
	entry := m.statics.Get(id)
	if entry == nil {
		return Null()
	}
	var v Value
	switch entry.Tag {
	case bytecode.StaticString:
		cell, err := m.heap.AllocString(entry.String)
		if err != nil {
			return Null()
		}
		v = HeapValue(cell)
	case bytecode.StaticFunction:
		v = FnValue(FunctionValue{Addr: entry.FuncAddr, Nargs: entry.FuncNargs, Variadic: entry.FuncVariadic})
	default:
		v = Null()
	}
	m.staticHeapValues[id] = v
	return v
}
