package profile

// StringTable interns strings to stable indices. Index 0 is always "".
type StringTable struct {
	strings []string
	index   map[string]int64
}

// NewStringTable returns a table holding only the empty string.
func NewStringTable() *StringTable {
	return &StringTable{
		strings: []string{""},
		index:   map[string]int64{"": 0},
	}
}

// Intern returns the index of s, appending it on first use.
func (t *StringTable) Intern(s string) int64 {
	if id, ok := t.index[s]; ok {
		return id
	}
	id := int64(len(t.strings))
	t.strings = append(t.strings, s)
	t.index[s] = id
	return id
}

// Len returns the number of interned strings, including "".
func (t *StringTable) Len() int {
	return len(t.strings)
}

// Strings returns the table in index order.
func (t *StringTable) Strings() []string {
	out := make([]string, len(t.strings))
	copy(out, t.strings)
	return out
}
