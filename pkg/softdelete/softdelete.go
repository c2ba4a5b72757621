package softdelete

import (
	"fmt"
	"time"
)

// Meta carries the record-lifecycle fields shared by every entity:
// creation/update timestamps and the removal flag. Records are never
// physically erased by the normal deletion path; they are flagged and
// excluded from Active reads.
type Meta struct {
	IsRemoved bool      `json:"is_removed"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewMeta returns Meta for a freshly created record.
func NewMeta(now time.Time) Meta {
	return Meta{CreatedAt: now, UpdatedAt: now}
}

// View selects which slice of a record set a query observes.
type View int

const (
	// Active is the default view used by every ordinary read path.
	Active View = iota
	// Deleted returns only flagged records (audit/restore tooling).
	Deleted
	// Everything returns the full underlying set; reserved for
	// privileged/administrative reads.
	Everything
)

// SQL renders the view as a predicate over the given removal-flag column
// (e.g. "u.is_removed"). Callers interpolate it into WHERE clauses; the
// output never contains user input.
func (v View) SQL(column string) string {
	switch v {
	case Active:
		return "NOT " + column
	case Deleted:
		return column
	default:
		return "TRUE"
	}
}

func (v View) String() string {
	switch v {
	case Active:
		return "active"
	case Deleted:
		return "deleted"
	default:
		return "all"
	}
}

// ParseView maps the query-string form (?view=active|deleted|all) back to
// a View. Empty input means Active.
func ParseView(s string) (View, error) {
	switch s {
	case "", "active":
		return Active, nil
	case "deleted":
		return Deleted, nil
	case "all", "everything":
		return Everything, nil
	default:
		return Active, fmt.Errorf("unknown view %q", s)
	}
}
