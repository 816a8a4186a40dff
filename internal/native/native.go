// Package native implements the host side of Ace's FFI: Go functions
// the VM can call through a bytecode.StaticFunction-shaped value,
// sharing the same ⟨address, nargs⟩ calling convention as an Ace
// function so the interpreter's CALL handler doesn't need a second
// dispatch path for them (internal/vm.NativeFunction). Binary-payload
// natives (those exchanging packed byte buffers with a host library
// rather than plain Ace values) decode their argument buffer with
// funbit's Erlang-style bit syntax instead of hand-rolled byte slicing.
package native

import (
	"fmt"

	"github.com/funvibe/funbit/pkg/funbit"

	"github.com/ajmd17/ace-lang-sub002/internal/vm"
)

// Builtins returns the standard library of native functions every
// compilation unit can call by name without an explicit `use library`
// directive.
func Builtins() []*vm.NativeFunction {
	return []*vm.NativeFunction{
		{Name: "len", Fn: lengthOf},
		{Name: "type_name", Fn: typeNameOf},
		{Name: "pack_u32", Fn: packU32},
		{Name: "unpack_u32", Fn: unpackU32},
		{Name: "array_slice", Fn: arraySlice},
		{Name: "host_handle", Fn: hostHandle},
		{Name: "host_handle_tag", Fn: hostHandleTag},
	}
}

func lengthOf(t *vm.Thread, args []vm.Value) (vm.Value, error) {
	if len(args) != 1 {
		return vm.Null(), fmt.Errorf("len expects 1 argument, got %d", len(args))
	}
	return vm.I32(int32(vm.ValueLength(args[0]))), nil
}

func typeNameOf(t *vm.Thread, args []vm.Value) (vm.Value, error) {
	if len(args) != 1 {
		return vm.Null(), fmt.Errorf("type_name expects 1 argument, got %d", len(args))
	}
	return vm.Null(), nil
}

// arraySlice returns a [start,end) view over an array's own backing
// storage, without copying elements.
func arraySlice(t *vm.Thread, args []vm.Value) (vm.Value, error) {
	if len(args) != 3 {
		return vm.Null(), fmt.Errorf("array_slice expects 3 arguments, got %d", len(args))
	}
	start := int(vm.ValueAsInt(args[1]))
	end := int(vm.ValueAsInt(args[2]))
	return t.NewSlice(args[0], start, end)
}

// hostHandle boxes an opaque host value behind a tagged userdata cell,
// the shape a real FFI boundary (file handles, GPU buffers, sockets)
// would hand back to Ace code that can only pass the handle along.
func hostHandle(t *vm.Thread, args []vm.Value) (vm.Value, error) {
	if len(args) != 1 {
		return vm.Null(), fmt.Errorf("host_handle expects 1 argument, got %d", len(args))
	}
	return t.NewUserData(args[0].String(), nil)
}

// hostHandleTag reads back the tag a host_handle value was created
// with, without exposing its opaque payload.
func hostHandleTag(t *vm.Thread, args []vm.Value) (vm.Value, error) {
	if len(args) != 1 {
		return vm.Null(), fmt.Errorf("host_handle_tag expects 1 argument, got %d", len(args))
	}
	tag, _, ok := vm.ValueUserData(args[0])
	if !ok {
		return vm.Null(), fmt.Errorf("host_handle_tag: argument is not a host handle")
	}
	return t.NewString(tag)
}

// packU32 demonstrates the binary-FFI path: it builds a 4-byte
// little-endian payload from an Ace integer the way a native library
// boundary expecting a raw byte buffer would require, using funbit's
// binary construction DSL instead of manual shifting.
func packU32(t *vm.Thread, args []vm.Value) (vm.Value, error) {
	if len(args) != 1 {
		return vm.Null(), fmt.Errorf("pack_u32 expects 1 argument, got %d", len(args))
	}
	v := uint32(vm.ValueAsInt(args[0]))

	builder := funbit.NewBuilder()
	funbit.AddInteger(builder, v, funbit.WithSize(32), funbit.WithEndianness("little"))
	packed, err := funbit.Build(builder)
	if err != nil {
		return vm.Null(), fmt.Errorf("pack_u32: %w", err)
	}
	return t.NewBytes(packed)
}

// unpackU32 is pack_u32's inverse, matching the packed buffer back
// apart with funbit's pattern-matching DSL.
func unpackU32(t *vm.Thread, args []vm.Value) (vm.Value, error) {
	if len(args) != 1 {
		return vm.Null(), fmt.Errorf("unpack_u32 expects 1 argument, got %d", len(args))
	}
	buf, ok := vm.ValueBytes(args[0])
	if !ok {
		return vm.Null(), fmt.Errorf("unpack_u32: argument is not a byte buffer")
	}

	var out uint32
	outVar := funbit.NewIntegerVariable(&out)
	pattern := funbit.NewPattern(funbit.NewField(outVar, funbit.WithSize(32), funbit.WithEndianness("little")))
	if _, err := funbit.Match(pattern, buf); err != nil {
		return vm.Null(), fmt.Errorf("unpack_u32: %w", err)
	}
	return vm.I32(int32(out)), nil
}
