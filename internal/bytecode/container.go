package bytecode

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Container is a fully assembled program: the static-object table plus
// the flat code section.
type Container struct {
	VersionMajor byte
	VersionMinor byte
	Statics      *StaticTable
	Code         []byte
}

const currentVersionMajor, currentVersionMinor = 1, 0

func NewContainer(statics *StaticTable, code []byte) *Container {
	return &Container{VersionMajor: currentVersionMajor, VersionMinor: currentVersionMinor, Statics: statics, Code: code}
}

// Encode writes the container's exact on-disk byte layout.
func (c *Container) Encode() []byte {
	var staticBuf bytes.Buffer
	for _, e := range c.Statics.Entries {
		staticBuf.WriteByte(byte(e.Tag))
		switch e.Tag {
		case StaticLabel:
			writeU32(&staticBuf, e.LabelTarget)
		case StaticString:
			writeU32(&staticBuf, uint32(len(e.String)))
			staticBuf.WriteString(e.String)
		case StaticFunction:
			writeU32(&staticBuf, e.FuncAddr)
			staticBuf.WriteByte(e.FuncNargs)
			flags := byte(0)
			if e.FuncVariadic {
				flags |= FlagVariadic
			}
			staticBuf.WriteByte(flags)
		case StaticTypeInfo:
			staticBuf.WriteByte(byte(len(e.MemberNames)))
			writeU16(&staticBuf, uint16(len(e.TypeName)))
			staticBuf.WriteString(e.TypeName)
			for _, m := range e.MemberNames {
				writeU16(&staticBuf, uint16(len(m)))
				staticBuf.WriteString(m)
			}
		}
	}

	var out bytes.Buffer
	out.Write(Magic[:])
	out.WriteByte(c.VersionMajor)
	out.WriteByte(c.VersionMinor)
	writeU32(&out, uint32(staticBuf.Len()))
	out.Write(staticBuf.Bytes())
	writeU32(&out, uint32(len(c.Code)))
	out.Write(c.Code)
	return out.Bytes()
}

// Decode parses a container previously written by Encode.
func Decode(data []byte) (*Container, error) {
	r := bytes.NewReader(data)
	var magic [4]byte
	if _, err := r.Read(magic[:]); err != nil {
		return nil, fmt.Errorf("bytecode: short read on magic: %w", err)
	}
	if magic != Magic {
		return nil, fmt.Errorf("bytecode: bad magic %v", magic)
	}
	var verMajor, verMinor byte
	if err := binary.Read(r, binary.LittleEndian, &verMajor); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.LittleEndian, &verMinor); err != nil {
		return nil, err
	}
	staticLen, err := readU32(r)
	if err != nil {
		return nil, err
	}
	staticBytes := make([]byte, staticLen)
	if _, err := r.Read(staticBytes); err != nil {
		return nil, fmt.Errorf("bytecode: short read on static table: %w", err)
	}
	statics, err := decodeStatics(staticBytes)
	if err != nil {
		return nil, err
	}
	codeLen, err := readU32(r)
	if err != nil {
		return nil, err
	}
	code := make([]byte, codeLen)
	if _, err := r.Read(code); err != nil {
		return nil, fmt.Errorf("bytecode: short read on code section: %w", err)
	}
	return &Container{VersionMajor: verMajor, VersionMinor: verMinor, Statics: statics, Code: code}, nil
}

func decodeStatics(data []byte) (*StaticTable, error) {
	r := bytes.NewReader(data)
	table := &StaticTable{}
	for r.Len() > 0 {
		tagByte, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		e := &StaticEntry{Tag: StaticTag(tagByte)}
		switch e.Tag {
		case StaticLabel:
			v, err := readU32(r)
			if err != nil {
				return nil, err
			}
			e.LabelTarget = v
		case StaticString:
			n, err := readU32(r)
			if err != nil {
				return nil, err
			}
			buf := make([]byte, n)
			if _, err := r.Read(buf); err != nil {
				return nil, err
			}
			e.String = string(buf)
		case StaticFunction:
			addr, err := readU32(r)
			if err != nil {
				return nil, err
			}
			e.FuncAddr = addr
			nargs, err := r.ReadByte()
			if err != nil {
				return nil, err
			}
			e.FuncNargs = nargs
			flags, err := r.ReadByte()
			if err != nil {
				return nil, err
			}
			e.FuncVariadic = flags&FlagVariadic != 0
		case StaticTypeInfo:
			memberCount, err := r.ReadByte()
			if err != nil {
				return nil, err
			}
			nameLen, err := readU16(r)
			if err != nil {
				return nil, err
			}
			nameBuf := make([]byte, nameLen)
			if _, err := r.Read(nameBuf); err != nil {
				return nil, err
			}
			e.TypeName = string(nameBuf)
			for i := 0; i < int(memberCount); i++ {
				mLen, err := readU16(r)
				if err != nil {
					return nil, err
				}
				mBuf := make([]byte, mLen)
				if _, err := r.Read(mBuf); err != nil {
					return nil, err
				}
				e.MemberNames = append(e.MemberNames, string(mBuf))
			}
		default:
			return nil, fmt.Errorf("bytecode: unknown static table tag %d", tagByte)
		}
		table.Entries = append(table.Entries, e)
	}
	return table, nil
}

func writeU16(b *bytes.Buffer, v uint16) {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], v)
	b.Write(tmp[:])
}

func writeU32(b *bytes.Buffer, v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	b.Write(tmp[:])
}

func readU16(r *bytes.Reader) (uint16, error) {
	var tmp [2]byte
	if _, err := r.Read(tmp[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(tmp[:]), nil
}

func readU32(r *bytes.Reader) (uint32, error) {
	var tmp [4]byte
	if _, err := r.Read(tmp[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(tmp[:]), nil
}
