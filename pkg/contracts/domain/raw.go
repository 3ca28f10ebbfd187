package domain

import (
	"time"
)

// RawTable is a spreadsheet range exactly as pulled from the source.
// The first row carries the human-authored headers.
type RawTable [][]string

// Header returns the header row, or nil for an empty table.
func (t RawTable) Header() []string {
	if len(t) == 0 {
		return nil
	}
	return t[0]
}

// Rows returns the data rows below the header.
func (t RawTable) Rows() [][]string {
	if len(t) < 2 {
		return nil
	}
	return t[1:]
}

// Clone returns a deep copy of the table.
func (t RawTable) Clone() RawTable {
	if t == nil {
		return nil
	}
	out := make(RawTable, len(t))
	for i, row := range t {
		out[i] = append([]string(nil), row...)
	}
	return out
}

// RawTables is the result of a single pull from the climbing spreadsheet.
// A pull is replaced wholesale on every fetch.
type RawTables struct {
	Climbs    RawTable  `json:"climbs"`
	Sessions  RawTable  `json:"sessions"`
	Outdoor   RawTable  `json:"outdoor"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Clone returns a deep copy so that each render works on its own tables.
func (r *RawTables) Clone() *RawTables {
	if r == nil {
		return nil
	}
	return &RawTables{
		Climbs:    r.Climbs.Clone(),
		Sessions:  r.Sessions.Clone(),
		Outdoor:   r.Outdoor.Clone(),
		FetchedAt: r.FetchedAt,
	}
}
