// Package analytics summarises a complaint collection for the dashboard.
package analytics

import (
	"time"

	"maintenance-logbook-backend/internal/model"
	"maintenance-logbook-backend/internal/sla"
)

// Summary holds dashboard metrics. AvgResponseTime is in hours and
// ResolutionRate is a percentage.
type Summary struct {
	Total           int                    `json:"total"`
	Open            int                    `json:"open"`
	InProgress      int                    `json:"inProgress"`
	Resolved        int                    `json:"resolved"`
	Escalated       int                    `json:"escalated"`
	CategoryCount   map[model.Category]int `json:"categoryCount"`
	AvgResponseTime float64                `json:"avgResponseTime"`
	ResolutionRate  float64                `json:"resolutionRate"`
}

// Aggregator computes summaries against a single clock reading per pass.
type Aggregator struct {
	evaluator *sla.Evaluator
	now       func() time.Time
}

// NewAggregator creates an aggregator using ev for escalation. A nil clock
// means time.Now.
func NewAggregator(ev *sla.Evaluator, now func() time.Time) *Aggregator {
	if now == nil {
		now = time.Now
	}
	return &Aggregator{evaluator: ev, now: now}
}

// Compute summarises complaints as of the current time.
func (a *Aggregator) Compute(complaints []model.Complaint) Summary {
	return ComputeAt(complaints, a.evaluator, a.now())
}

// ComputeAt summarises complaints with every escalation check evaluated at now.
func ComputeAt(complaints []model.Complaint, ev *sla.Evaluator, now time.Time) Summary {
	s := Summary{
		Total:         len(complaints),
		CategoryCount: make(map[model.Category]int, len(model.Categories)),
	}
	for _, cat := range model.Categories {
		s.CategoryCount[cat] = 0
	}

	var resolvedWithTime int
	var totalResolution time.Duration
	for i := range complaints {
		c := &complaints[i]
		switch c.Status {
		case model.StatusOpen:
			s.Open++
		case model.StatusInProgress:
			s.InProgress++
		case model.StatusResolved:
			s.Resolved++
			if c.ResolvedAt != nil {
				resolvedWithTime++
				totalResolution += c.ResolvedAt.Sub(c.CreatedAt)
			}
		}
		if c.Category.Valid() {
			s.CategoryCount[c.Category]++
		}
		if ev.IsEscalated(c, now) {
			s.Escalated++
		}
	}

	if resolvedWithTime > 0 {
		s.AvgResponseTime = totalResolution.Hours() / float64(resolvedWithTime)
	}
	if s.Total > 0 {
		s.ResolutionRate = float64(s.Resolved) / float64(s.Total) * 100
	}
	return s
}
