package messagelog

// Batch is a contiguous slice of the log starting at Start.
type Batch struct {
	Start   int
	Entries []Entry
}

// Len returns the number of entries in the batch.
func (b Batch) Len() int {
	return len(b.Entries)
}

// Empty reports whether the batch carries no entries.
func (b Batch) Empty() bool {
	return len(b.Entries) == 0
}

// Next returns the index a display should request after this batch.
func (b Batch) Next() int {
	return b.Start + len(b.Entries)
}

// Kinds returns the wire names of the entry kinds, index-aligned with Data.
func (b Batch) Kinds() []string {
	kinds := make([]string, 0, len(b.Entries))
	for _, e := range b.Entries {
		kinds = append(kinds, e.Kind.String())
	}
	return kinds
}

// Data returns the entry payloads, index-aligned with Kinds.
func (b Batch) Data() []string {
	data := make([]string, 0, len(b.Entries))
	for _, e := range b.Entries {
		data = append(data, e.Data)
	}
	return data
}
