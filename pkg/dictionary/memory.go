package dictionary

import "fmt"

// Entry is a single headword and its raw definition.
type Entry struct {
	Word       string `json:"word"`
	Definition string `json:"definition"`
}

// Memory is a Dictionary backed by a slice of entries held in memory.
// It is never mutated after construction, so concurrent reads need no locking.
type Memory struct {
	entries []Entry
	keys    []Key
}

// NewMemory builds an in-memory dictionary preserving the order of entries.
func NewMemory(entries []Entry) *Memory {
	keys := make([]Key, len(entries))
	for i, e := range entries {
		keys[i] = Key{Text: e.Word, Index: i}
	}
	return &Memory{entries: entries, keys: keys}
}

// Keys returns the headwords in source order. Callers must not modify the slice.
func (m *Memory) Keys() []Key {
	return m.keys
}

// Len returns the number of entries.
func (m *Memory) Len() int {
	return len(m.entries)
}

// Resolve returns the definition located by k.
func (m *Memory) Resolve(k Key) (string, error) {
	if k.Index < 0 || k.Index >= len(m.entries) {
		return "", fmt.Errorf("%w: %q at %d", ErrKeyNotFound, k.Text, k.Index)
	}
	e := m.entries[k.Index]
	if e.Word != k.Text {
		return "", fmt.Errorf("%w: %q at %d holds %q", ErrKeyNotFound, k.Text, k.Index, e.Word)
	}
	return e.Definition, nil
}
