package ir

import (
	"bytes"

	"github.com/ajmd17/ace-lang-sub002/internal/bytecode"
)

// BuildableFunction registers a function's entry address and arity in
// the shared static table, then loads its static id into Reg. The
// entry address is a LabelID because the function body's final
// position isn't known until its own chunk lowers.
type BuildableFunction struct {
	Reg      byte
	Entry    LabelID
	Nargs    byte
	Variadic bool
}

func (f *BuildableFunction) Size() int { return 1 + 1 + 2 }
func (f *BuildableFunction) Build(buf *bytes.Buffer, params *BuildParams) {
	id := params.Statics.Register(&bytecode.StaticEntry{
		Tag:          bytecode.StaticFunction,
		FuncAddr:     uint32(params.Labels.Position(f.Entry)),
		FuncNargs:    f.Nargs,
		FuncVariadic: f.Variadic,
	})
	buf.WriteByte(byte(bytecode.LOAD_STATIC))
	buf.WriteByte(f.Reg)
	writeU16(buf, id)
}

// BuildableType registers a type-info descriptor (name plus member
// names, in declaration order) and loads its static id into Reg.
type BuildableType struct {
	Reg         byte
	TypeName    string
	MemberNames []string
}

func (t *BuildableType) Size() int { return 1 + 1 + 2 }
func (t *BuildableType) Build(buf *bytes.Buffer, params *BuildParams) {
	id := params.Statics.Register(&bytecode.StaticEntry{
		Tag:         bytecode.StaticTypeInfo,
		TypeName:    t.TypeName,
		MemberNames: t.MemberNames,
	})
	buf.WriteByte(byte(bytecode.LOAD_STATIC))
	buf.WriteByte(t.Reg)
	writeU16(buf, id)
}

// NewObject registers a type-info descriptor and directly emits
// `NEW rd u16` against it, rather than loading the descriptor into a
// register first — NEW's u16 operand is a static id immediate, not a
// register.
type NewObject struct {
	Reg         byte
	TypeName    string
	MemberNames []string
}

func (n *NewObject) Size() int { return 1 + 1 + 2 }
func (n *NewObject) Build(buf *bytes.Buffer, params *BuildParams) {
	id := params.Statics.Register(&bytecode.StaticEntry{
		Tag:         bytecode.StaticTypeInfo,
		TypeName:    n.TypeName,
		MemberNames: n.MemberNames,
	})
	buf.WriteByte(byte(bytecode.NEW))
	buf.WriteByte(n.Reg)
	writeU16(buf, id)
}

// BuildableString registers a string literal's contents and loads its
// static id into Reg.
type BuildableString struct {
	Reg   byte
	Value string
}

func (s *BuildableString) Size() int { return 1 + 1 + 2 }
func (s *BuildableString) Build(buf *bytes.Buffer, params *BuildParams) {
	id := params.Statics.Register(&bytecode.StaticEntry{
		Tag:    bytecode.StaticString,
		String: s.Value,
	})
	buf.WriteByte(byte(bytecode.LOAD_STATIC))
	buf.WriteByte(s.Reg)
	writeU16(buf, id)
}
