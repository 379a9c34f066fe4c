// Package sla decides whether an unresolved complaint has outlived the
// response window for its category.
package sla

import (
	"time"

	"maintenance-logbook-backend/internal/model"
)

// DefaultThresholds is the response window per category.
func DefaultThresholds() map[model.Category]time.Duration {
	return map[model.Category]time.Duration{
		model.CategoryElectricity: 4 * time.Hour,
		model.CategoryWater:       2 * time.Hour,
		model.CategoryWifi:        6 * time.Hour,
		model.CategoryCleaning:    12 * time.Hour,
	}
}

// Evaluator maps a complaint and an instant to an escalation flag. It holds no
// per-complaint state, so the flag is recomputed on every read.
type Evaluator struct {
	thresholds map[model.Category]time.Duration
}

// NewEvaluator creates an evaluator. A nil or empty table falls back to
// DefaultThresholds.
func NewEvaluator(thresholds map[model.Category]time.Duration) *Evaluator {
	if len(thresholds) == 0 {
		thresholds = DefaultThresholds()
	}
	table := make(map[model.Category]time.Duration, len(thresholds))
	for cat, d := range thresholds {
		table[cat] = d
	}
	return &Evaluator{thresholds: table}
}

// Threshold returns the response window for a category.
func (e *Evaluator) Threshold(cat model.Category) (time.Duration, bool) {
	d, ok := e.thresholds[cat]
	return d, ok
}

// Deadline is the instant after which the complaint counts as escalated.
func (e *Evaluator) Deadline(c *model.Complaint) (time.Time, bool) {
	d, ok := e.thresholds[c.Category]
	if !ok {
		return time.Time{}, false
	}
	return c.CreatedAt.Add(d), true
}

// IsEscalated reports whether c is unresolved and strictly past its window at
// now. Resolved complaints and unknown categories never escalate.
func (e *Evaluator) IsEscalated(c *model.Complaint, now time.Time) bool {
	if c.Status == model.StatusResolved {
		return false
	}
	d, ok := e.thresholds[c.Category]
	if !ok {
		return false
	}
	return now.Sub(c.CreatedAt) > d
}
