package lifecycle

import (
	"time"

	"maintenance-logbook-backend/internal/model"
	"maintenance-logbook-backend/internal/store"
)

// ComplaintView is a complaint decorated with state derived at read time.
type ComplaintView struct {
	model.Complaint
	Escalated   bool       `json:"escalated"`
	SLADeadline *time.Time `json:"slaDeadline,omitempty"`
}

// NewestFirst returns a copy of v whose updates are in reverse insertion order.
// The stored history is untouched.
func (v ComplaintView) NewestFirst() ComplaintView {
	reversed := make([]model.ComplaintUpdate, len(v.Updates))
	for i, u := range v.Updates {
		reversed[len(v.Updates)-1-i] = u
	}
	v.Updates = reversed
	return v
}

// ListFilter selects complaints for listing. Status accepts "all",
// "escalated" or a status value; Category accepts "all" or a category. Room
// matches equivalent spellings of the same room ("b 204" finds "B-204").
type ListFilter struct {
	Status   string
	Category string
	Resident string
	Room     string
}

func (f ListFilter) query() (q store.ComplaintFilter, escalatedOnly bool, err error) {
	q.Resident = f.Resident

	switch f.Status {
	case "", "all":
	case "escalated":
		escalatedOnly = true
	default:
		st := model.Status(f.Status)
		if !st.Valid() {
			return q, false, invalid("status", "unknown status filter %q", f.Status)
		}
		q.Status = st
	}

	switch f.Category {
	case "", "all":
	default:
		cat := model.Category(f.Category)
		if !cat.Valid() {
			return q, false, invalid("category", "unknown category filter %q", f.Category)
		}
		q.Category = cat
	}
	return q, escalatedOnly, nil
}
