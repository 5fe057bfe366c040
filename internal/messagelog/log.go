// Package messagelog provides the append-only console message log and the
// batch slicing used to keep display surfaces in sync with it.
package messagelog

import "sync"

// Kind identifies how a display surface should interpret an entry.
type Kind int

const (
	KindHTML                Kind = iota // Rendered markup
	KindClear                           // Clear the rendered view
	KindBeginGroup                      // Open an expanded group
	KindBeginGroupCollapsed             // Open a collapsed group
	KindEndGroup                        // Close the innermost group
)

// Wire names for entry kinds, as delivered to display surfaces.
const (
	NameHTML           = "html"
	NameClear          = "clear"
	NameGroup          = "group"
	NameGroupCollapsed = "groupCollapsed"
	NameGroupEnd       = "groupEnd"
)

// String returns the wire name of the kind.
func (k Kind) String() string {
	switch k {
	case KindHTML:
		return NameHTML
	case KindClear:
		return NameClear
	case KindBeginGroup:
		return NameGroup
	case KindBeginGroupCollapsed:
		return NameGroupCollapsed
	case KindEndGroup:
		return NameGroupEnd
	default:
		return "unknown"
	}
}

// Entry is a single rendered console message.
// Data is empty for KindClear and KindEndGroup.
type Entry struct {
	Kind Kind
	Data string
}

// HTML returns an entry carrying rendered markup.
func HTML(markup string) Entry {
	return Entry{Kind: KindHTML, Data: markup}
}

// Clear returns a clear entry.
func Clear() Entry {
	return Entry{Kind: KindClear}
}

// BeginGroup returns a group start entry with a rendered label.
func BeginGroup(label string, collapsed bool) Entry {
	if collapsed {
		return Entry{Kind: KindBeginGroupCollapsed, Data: label}
	}
	return Entry{Kind: KindBeginGroup, Data: label}
}

// EndGroup returns a group end entry.
func EndGroup() Entry {
	return Entry{Kind: KindEndGroup}
}

// Notifier is told about every appended index.
type Notifier interface {
	MessageAppended(index int)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(index int)

// MessageAppended calls f(index).
func (f NotifierFunc) MessageAppended(index int) { f(index) }

// Log is an ordered, append-only sequence of entries.
// Indices are stable: once assigned they never change.
type Log struct {
	mu       sync.RWMutex
	entries  []Entry
	notifier Notifier
}

// New creates an empty log. notifier may be nil.
func New(notifier Notifier) *Log {
	return &Log{notifier: notifier}
}

// SetNotifier replaces the notifier used for subsequent appends.
func (l *Log) SetNotifier(n Notifier) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.notifier = n
}

// Append adds entry at the end of the log and returns its index.
// The notifier runs after the lock is released so it may read the log.
func (l *Log) Append(entry Entry) int {
	l.mu.Lock()
	l.entries = append(l.entries, entry)
	index := len(l.entries) - 1
	n := l.notifier
	l.mu.Unlock()

	if n != nil {
		n.MessageAppended(index)
	}
	return index
}

// Len returns the number of entries.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// At returns the entry at index.
func (l *Log) At(index int) (Entry, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if index < 0 || index >= len(l.entries) {
		return Entry{}, false
	}
	return l.entries[index], true
}

// Fetch returns the entries from start onward, at most limit of them when
// limit > 0. A start outside the log yields an empty batch, which is the
// steady state for a display that is already up to date.
func (l *Log) Fetch(start, limit int) Batch {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if start < 0 || start >= len(l.entries) {
		return Batch{Start: start}
	}
	end := len(l.entries)
	if limit > 0 && end-start > limit {
		end = start + limit
	}
	entries := make([]Entry, end-start)
	copy(entries, l.entries[start:end])
	return Batch{Start: start, Entries: entries}
}
