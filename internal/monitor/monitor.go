// Package monitor periodically sweeps complaints and logs the ones that have
// crossed their response window since the previous sweep. It writes nothing;
// escalation itself is always derived on read.
package monitor

import (
	"context"
	"time"

	"go.uber.org/zap"

	"maintenance-logbook-backend/internal/lifecycle"
)

// Lister is the read side of the lifecycle service.
type Lister interface {
	ListComplaints(ctx context.Context, filter lifecycle.ListFilter) ([]lifecycle.ComplaintView, error)
}

// Service runs the escalation sweep.
type Service struct {
	complaints Lister
	interval   time.Duration
	log        *zap.Logger
	seen       map[string]struct{}
}

// NewService creates a sweep over complaints. A non-positive interval
// disables Run.
func NewService(complaints Lister, interval time.Duration, logger *zap.Logger) *Service {
	return &Service{
		complaints: complaints,
		interval:   interval,
		log:        logger,
		seen:       make(map[string]struct{}),
	}
}

// Run sweeps once immediately and then on every interval until ctx is done.
func (s *Service) Run(ctx context.Context) {
	if s.interval <= 0 {
		s.log.Info("escalation monitor is disabled")
		return
	}
	s.log.Info("starting escalation monitor", zap.Duration("interval", s.interval))

	s.SweepOnce(ctx)

	timer := time.NewTimer(s.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("escalation monitor shutting down")
			return
		case <-timer.C:
			s.SweepOnce(ctx)
			timer.Reset(s.interval)
		}
	}
}

// SweepOnce logs complaints that became escalated since the last sweep and
// returns their IDs. Complaints that stop being escalated (resolved) are
// forgotten, so Run must be the only caller while it is running.
func (s *Service) SweepOnce(ctx context.Context) []string {
	views, err := s.complaints.ListComplaints(ctx, lifecycle.ListFilter{Status: "escalated"})
	if err != nil {
		s.log.Error("escalation sweep failed", zap.Error(err))
		return nil
	}

	current := make(map[string]struct{}, len(views))
	var fresh []string
	for _, v := range views {
		current[v.ID] = struct{}{}
		if _, ok := s.seen[v.ID]; ok {
			continue
		}
		fresh = append(fresh, v.ID)

		fields := []zap.Field{
			zap.String("complaint_id", v.ID),
			zap.String("category", string(v.Category)),
			zap.String("status", string(v.Status)),
			zap.String("room", v.RoomNumber),
		}
		if v.SLADeadline != nil {
			fields = append(fields, zap.Time("sla_deadline", *v.SLADeadline))
		}
		s.log.Warn("complaint escalated", fields...)
	}
	s.seen = current

	s.log.Debug("escalation sweep finished", zap.Int("escalated", len(views)), zap.Int("new", len(fresh)))
	return fresh
}
