package scanner

import "time"

// ChangeState classifies a scanned file against its prior record.
type ChangeState int

const (
	// ChangeNew means no prior record exists for the path.
	ChangeNew ChangeState = iota
	// ChangeUpdated means size or mtime differ from the prior record.
	ChangeUpdated
	// ChangeUnchanged means size and mtime match, so tag extraction
	// and dimension probing can be skipped.
	ChangeUnchanged
)

// PriorRecord is the stored size+mtime of a previously indexed path.
type PriorRecord struct {
	Size    int64
	ModTime time.Time
}

// Compare decides whether a scanned entry is new, updated or
// unchanged relative to its prior record. Modification times are
// compared at second granularity because that is what survives a
// round trip through the store.
func Compare(prior *PriorRecord, size int64, modTime time.Time) ChangeState {
	if prior == nil {
		return ChangeNew
	}
	if prior.Size != size || prior.ModTime.Unix() != modTime.Unix() {
		return ChangeUpdated
	}
	return ChangeUnchanged
}

// String returns the state name used in logs and summaries.
func (c ChangeState) String() string {
	switch c {
	case ChangeNew:
		return "new"
	case ChangeUpdated:
		return "updated"
	case ChangeUnchanged:
		return "unchanged"
	default:
		return "unknown"
	}
}
