package profile

type functionKey struct {
	name string
	file string
	line int64
}

// FunctionTable deduplicates functions by (name, file, start line).
//
// Records live in a slice; a record's wire id is its index plus one, so 0
// stays reserved as the invalid id.
type FunctionTable struct {
	strings   *StringTable
	functions []Function
	index     map[functionKey]int
}

// NewFunctionTable creates an empty table interning into strings.
func NewFunctionTable(strings *StringTable) *FunctionTable {
	return &FunctionTable{
		strings: strings,
		index:   make(map[functionKey]int),
	}
}

// ID returns the id for the function, creating the record on first use.
func (t *FunctionTable) ID(name, file string, startLine int64) uint64 {
	key := functionKey{name: name, file: file, line: startLine}
	if i, ok := t.index[key]; ok {
		return uint64(i + 1)
	}

	nameIdx := t.strings.Intern(name)
	i := len(t.functions)
	t.functions = append(t.functions, Function{
		ID:         uint64(i + 1),
		Name:       nameIdx,
		SystemName: nameIdx,
		Filename:   t.strings.Intern(file),
		StartLine:  startLine,
	})
	t.index[key] = i
	return uint64(i + 1)
}

// Len returns the number of functions.
func (t *FunctionTable) Len() int {
	return len(t.functions)
}

// Functions returns the records in id order.
func (t *FunctionTable) Functions() []Function {
	out := make([]Function, len(t.functions))
	copy(out, t.functions)
	return out
}

type locationKey struct {
	functionID uint64
	line       int64
}

// LocationTable deduplicates single-frame locations by (function id, call line).
type LocationTable struct {
	locations []Location
	index     map[locationKey]int
}

// NewLocationTable creates an empty table.
func NewLocationTable() *LocationTable {
	return &LocationTable{
		index: make(map[locationKey]int),
	}
}

// ID returns the id for the call site, creating the record on first use.
func (t *LocationTable) ID(functionID uint64, line int64) uint64 {
	key := locationKey{functionID: functionID, line: line}
	if i, ok := t.index[key]; ok {
		return uint64(i + 1)
	}

	i := len(t.locations)
	t.locations = append(t.locations, Location{
		ID:    uint64(i + 1),
		Lines: []Line{{FunctionID: functionID, Line: line}},
	})
	t.index[key] = i
	return uint64(i + 1)
}

// Len returns the number of locations.
func (t *LocationTable) Len() int {
	return len(t.locations)
}

// Locations returns the records in id order.
func (t *LocationTable) Locations() []Location {
	out := make([]Location, len(t.locations))
	copy(out, t.locations)
	return out
}
