package vm

import (
	"fmt"
	"strings"

	"github.com/ajmd17/ace-lang-sub002/internal/bytecode"
)

// HeapCellKind distinguishes the boxed value kinds the heap manages.
type HeapCellKind byte

const (
	HeapArray HeapCellKind = iota
	HeapObject
	HeapString
	HeapBytes
	HeapSlice      // a [start,end) view over a backing HeapArray
	HeapEventArray // ordered ⟨match-mode, key, handler⟩ triples
	HeapUserData   // opaque payload owned by a native/host FFI call
)

// KeyMatchMode selects how EventArray.Match compares a value against a
// handler's key: by precomputed hash, by value equality, or by type
// alone (any value of the same kind matches).
type KeyMatchMode byte

const (
	MatchHashes KeyMatchMode = iota
	MatchValues
	MatchTypes
)

// EventHandler is one entry of a HeapEventArray cell.
type EventHandler struct {
	MatchMode KeyMatchMode
	KeyHash   uint32
	Key       Value
	Handler   Value
}

// HeapCell is a boxed value owned by the heap's doubly-linked list.
// Arrays recurse into Elements, objects recurse into Members and
// Proto, slices recurse into the backing array, strings are leaves.
type HeapCell struct {
	Kind HeapCellKind

	Elements []Value
	Members  map[string]Value
	Proto    *HeapCell
	TypeName string
	Str      string
	Bytes    []byte

	// HeapSlice fields: SliceBase must be a HeapArray (or another
	// HeapSlice, flattened to its own base at allocation time).
	SliceBase  *HeapCell
	SliceStart int
	SliceEnd   int

	Events []EventHandler

	// HeapUserData fields: Tag names the host type, Payload is owned by
	// the native code that allocated it and opaque to the VM.
	UserDataTag string
	UserData    interface{}

	marked bool
	prev   *HeapCell
	next   *HeapCell
}

func (c *HeapCell) String() string {
	switch c.Kind {
	case HeapString:
		return c.Str
	case HeapArray:
		parts := make([]string, len(c.Elements))
		for i, e := range c.Elements {
			parts[i] = e.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case HeapObject:
		return "<object " + c.TypeName + ">"
	case HeapBytes:
		return fmt.Sprintf("<bytes %d>", len(c.Bytes))
	case HeapSlice:
		parts := make([]string, 0, c.SliceEnd-c.SliceStart)
		for _, e := range c.sliceElements() {
			parts = append(parts, e.String())
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case HeapEventArray:
		return fmt.Sprintf("<events %d>", len(c.Events))
	case HeapUserData:
		return fmt.Sprintf("<userdata %s>", c.UserDataTag)
	}
	return "<heap>"
}

// sliceElements returns the slice's own view over its backing array's
// elements, without copying.
func (c *HeapCell) sliceElements() []Value {
	return c.SliceBase.Elements[c.SliceStart:c.SliceEnd]
}

// Match implements EventArray::Match: the first handler whose key
// matches value under its own match mode wins, in declaration order.
func (c *HeapCell) Match(value Value) (Value, bool) {
	valueHash := fnvHash(value.String())
	for _, h := range c.Events {
		switch h.MatchMode {
		case MatchHashes:
			if h.KeyHash == valueHash {
				return h.Handler, true
			}
		case MatchValues:
			if compare(value, h.Key) == bytecode.CmpEqual {
				return h.Handler, true
			}
		case MatchTypes:
			if sameValueKind(value, h.Key) {
				return h.Handler, true
			}
		}
	}
	return Null(), false
}

// Heap owns every cell it allocates via a doubly-linked list, growing
// its GC threshold geometrically as it fills.
type Heap struct {
	head, tail *HeapCell
	count      int
	threshold  int
	floor      int
	ceiling    int

	collect func() // invoked before an allocation that would exceed threshold
}

const (
	defaultFloor   = 20
	defaultCeiling = 1000
)

func NewHeap(collect func()) *Heap {
	return &Heap{threshold: defaultFloor, floor: defaultFloor, ceiling: defaultCeiling, collect: collect}
}

// Configure overrides the geometric threshold's floor and ceiling,
// used by a config.Config that narrows or widens the defaults.
func (h *Heap) Configure(floor, ceiling int) {
	h.floor = floor
	h.ceiling = ceiling
	h.threshold = floor
}

// heapOverflowError is thrown as a runtime exception when the heap
// cannot grow past its ceiling.
type heapOverflowError struct{}

func (heapOverflowError) Error() string { return "heap overflow" }

func (h *Heap) alloc(c *HeapCell) (*HeapCell, error) {
	if h.count >= h.threshold {
		if h.collect != nil {
			h.collect()
		}
		if h.count >= h.threshold {
			if h.threshold >= h.ceiling {
				return nil, heapOverflowError{}
			}
			h.threshold *= 2
			if h.threshold > h.ceiling {
				h.threshold = h.ceiling
			}
		}
	}
	c.prev = h.tail
	if h.tail != nil {
		h.tail.next = c
	} else {
		h.head = c
	}
	h.tail = c
	h.count++
	return c, nil
}

func (h *Heap) AllocArray(elems []Value) (*HeapCell, error) {
	return h.alloc(&HeapCell{Kind: HeapArray, Elements: elems})
}

func (h *Heap) AllocObject(typeName string, memberNames []string) (*HeapCell, error) {
	members := make(map[string]Value, len(memberNames))
	for _, n := range memberNames {
		members[n] = Null()
	}
	return h.alloc(&HeapCell{Kind: HeapObject, TypeName: typeName, Members: members})
}

func (h *Heap) AllocString(s string) (*HeapCell, error) {
	return h.alloc(&HeapCell{Kind: HeapString, Str: s})
}

func (h *Heap) AllocBytes(b []byte) (*HeapCell, error) {
	return h.alloc(&HeapCell{Kind: HeapBytes, Bytes: b})
}

// sliceRangeError reports an out-of-bounds [start,end) request.
type sliceRangeError struct{}

func (sliceRangeError) Error() string { return "slice range out of bounds" }

// AllocSlice views [start,end) of base, which must be a HeapArray or
// another HeapSlice. Slicing a slice flattens to the common backing
// array rather than nesting views.
func (h *Heap) AllocSlice(base *HeapCell, start, end int) (*HeapCell, error) {
	root := base
	if base.Kind == HeapSlice {
		root = base.SliceBase
		start += base.SliceStart
		end += base.SliceStart
	}
	if root.Kind != HeapArray || start < 0 || end < start || end > len(root.Elements) {
		return nil, sliceRangeError{}
	}
	return h.alloc(&HeapCell{Kind: HeapSlice, SliceBase: root, SliceStart: start, SliceEnd: end})
}

func (h *Heap) AllocEventArray(handlers []EventHandler) (*HeapCell, error) {
	return h.alloc(&HeapCell{Kind: HeapEventArray, Events: handlers})
}

func (h *Heap) AllocUserData(tag string, payload interface{}) (*HeapCell, error) {
	return h.alloc(&HeapCell{Kind: HeapUserData, UserDataTag: tag, UserData: payload})
}

// sweep unlinks every unmarked cell and leaves survivors marked: the
// mark bit is cleared on the next cycle's entry, not at sweep time.
func (h *Heap) sweep() {
	cur := h.head
	for cur != nil {
		next := cur.next
		if !cur.marked {
			h.unlink(cur)
			h.count--
		}
		cur = next
	}
}

func (h *Heap) unlink(c *HeapCell) {
	if c.prev != nil {
		c.prev.next = c.next
	} else {
		h.head = c.next
	}
	if c.next != nil {
		c.next.prev = c.prev
	} else {
		h.tail = c.prev
	}
}

func (h *Heap) clearMarks() {
	for cur := h.head; cur != nil; cur = cur.next {
		cur.marked = false
	}
}

func markCell(c *HeapCell) {
	if c == nil || c.marked {
		return
	}
	c.marked = true
	switch c.Kind {
	case HeapArray:
		for _, v := range c.Elements {
			if v.Kind == KindHeap {
				markCell(v.Heap)
			}
		}
	case HeapObject:
		for _, v := range c.Members {
			if v.Kind == KindHeap {
				markCell(v.Heap)
			}
		}
		markCell(c.Proto)
	case HeapSlice:
		markCell(c.SliceBase)
	case HeapEventArray:
		for _, h := range c.Events {
			if h.Key.Kind == KindHeap {
				markCell(h.Key.Heap)
			}
			if h.Handler.Kind == KindHeap {
				markCell(h.Handler.Heap)
			}
		}
	}
}
