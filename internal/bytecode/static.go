package bytecode

// StaticEntry is one row of the static-object table.
type StaticEntry struct {
	Tag StaticTag

	// StaticLabel
	LabelTarget uint32

	// StaticString
	String string

	// StaticFunction
	FuncAddr     uint32
	FuncNargs    byte
	FuncVariadic bool

	// StaticTypeInfo
	TypeName    string
	MemberNames []string
}

// Equal reports payload equality for table-entry deduplication.
func (e *StaticEntry) Equal(o *StaticEntry) bool {
	if e.Tag != o.Tag {
		return false
	}
	switch e.Tag {
	case StaticLabel:
		return e.LabelTarget == o.LabelTarget
	case StaticString:
		return e.String == o.String
	case StaticFunction:
		return e.FuncAddr == o.FuncAddr && e.FuncNargs == o.FuncNargs && e.FuncVariadic == o.FuncVariadic
	case StaticTypeInfo:
		if e.TypeName != o.TypeName || len(e.MemberNames) != len(o.MemberNames) {
			return false
		}
		for i := range e.MemberNames {
			if e.MemberNames[i] != o.MemberNames[i] {
				return false
			}
		}
		return true
	}
	return false
}

// StaticTable assigns and deduplicates static-object ids: two
// value-equal entries always resolve to the same id.
type StaticTable struct {
	Entries []*StaticEntry
}

// Register returns the id of an existing value-equal entry, or appends
// e and returns its new id. Ids are 0-based indices into Entries.
func (t *StaticTable) Register(e *StaticEntry) uint16 {
	for i, existing := range t.Entries {
		if existing.Equal(e) {
			return uint16(i)
		}
	}
	t.Entries = append(t.Entries, e)
	return uint16(len(t.Entries) - 1)
}

func (t *StaticTable) Get(id uint16) *StaticEntry {
	if int(id) >= len(t.Entries) {
		return nil
	}
	return t.Entries[id]
}
