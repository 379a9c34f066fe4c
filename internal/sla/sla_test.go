package sla

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"maintenance-logbook-backend/internal/model"
)

func TestEvaluator_IsEscalated(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	ev := NewEvaluator(nil)

	testCases := []struct {
		name     string
		category model.Category
		status   model.Status
		age      time.Duration
		expected bool
	}{
		{"water just inside window", model.CategoryWater, model.StatusOpen, 2*time.Hour - time.Minute, false},
		{"water exactly at window", model.CategoryWater, model.StatusOpen, 2 * time.Hour, false},
		{"water just past window", model.CategoryWater, model.StatusOpen, 2*time.Hour + time.Minute, true},
		{"electricity in progress past window", model.CategoryElectricity, model.StatusInProgress, 5 * time.Hour, true},
		{"wifi inside window", model.CategoryWifi, model.StatusOpen, 5 * time.Hour, false},
		{"cleaning past window", model.CategoryCleaning, model.StatusOpen, 13 * time.Hour, true},
		{"resolved never escalates", model.CategoryWater, model.StatusResolved, 100 * time.Hour, false},
		{"unknown category never escalates", model.Category("gas"), model.StatusOpen, 100 * time.Hour, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := &model.Complaint{
				Category:  tc.category,
				Status:    tc.status,
				CreatedAt: now.Add(-tc.age),
			}
			assert.Equal(t, tc.expected, ev.IsEscalated(c, now))
		})
	}
}

func TestEvaluator_CustomThresholds(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	ev := NewEvaluator(map[model.Category]time.Duration{model.CategoryWater: 30 * time.Minute})

	c := &model.Complaint{Category: model.CategoryWater, Status: model.StatusOpen, CreatedAt: now.Add(-31 * time.Minute)}
	assert.True(t, ev.IsEscalated(c, now))

	_, ok := ev.Threshold(model.CategoryElectricity)
	assert.False(t, ok, "custom table replaces the defaults")

	deadline, ok := ev.Deadline(c)
	assert.True(t, ok)
	assert.Equal(t, c.CreatedAt.Add(30*time.Minute), deadline)
}
