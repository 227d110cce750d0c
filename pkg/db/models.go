package db

import "fmt"

// Row is one persisted definition.
type Row struct {
	ID         int64
	Word       string
	SourceHTML string
}

// State tracks a store through a single load.
//
//	Uninitialized -> CreatedEmpty | ReusedAsIs -> Populating -> Committed
//
// There is no way back. A failed commit leaves the store in Populating.
type State int

const (
	StateUninitialized State = iota
	StateCreatedEmpty
	StateReusedAsIs
	StatePopulating
	StateCommitted
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateCreatedEmpty:
		return "created-empty"
	case StateReusedAsIs:
		return "reused-as-is"
	case StatePopulating:
		return "populating"
	case StateCommitted:
		return "committed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}
