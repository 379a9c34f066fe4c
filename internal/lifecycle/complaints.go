// Package lifecycle owns the rules for how a complaint moves from open to
// resolved and who may move it.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"maintenance-logbook-backend/internal/analytics"
	"maintenance-logbook-backend/internal/auth"
	"maintenance-logbook-backend/internal/model"
	"maintenance-logbook-backend/internal/parse"
	"maintenance-logbook-backend/internal/sla"
	"maintenance-logbook-backend/internal/store"
)

// DefaultResolveMessage is recorded when a complaint is resolved without a note.
const DefaultResolveMessage = "Issue resolved."

// Store is the persistence the service depends on.
type Store interface {
	CreateComplaint(ctx context.Context, c *model.Complaint) error
	GetComplaint(ctx context.Context, id string) (*model.Complaint, error)
	ListComplaints(ctx context.Context, filter store.ComplaintFilter) ([]model.Complaint, error)
	UpdateComplaint(ctx context.Context, id string, mutate store.MutateFunc) (*model.Complaint, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// Assign records a technician assignment on an open complaint and moves it to
// in-progress.
func Assign(c *model.Complaint, tech model.TechnicianRef, now time.Time) error {
	if c.Status != model.StatusOpen {
		return invalid("status", "technicians can only be assigned to open complaints, this one is %s", c.Status)
	}
	c.Technician = &tech
	c.Status = model.StatusInProgress
	c.Updates = append(c.Updates, model.ComplaintUpdate{
		Time:    now,
		Message: "Assigned to " + tech.Name,
		By:      "Admin",
	})
	return nil
}

// ApplyStatusUpdate appends an update and moves c to status. Only forward
// targets are accepted and a resolved complaint takes no further updates.
func ApplyStatusUpdate(c *model.Complaint, status model.Status, message, by string, now time.Time) error {
	if c.Status == model.StatusResolved {
		return invalid("status", "complaint is already resolved")
	}
	switch status {
	case model.StatusInProgress:
		if message == "" {
			return invalid("message", "is required for a progress update")
		}
	case model.StatusResolved:
		if message == "" {
			message = DefaultResolveMessage
		}
	default:
		return invalid("status", "cannot move a complaint to %q", status)
	}

	c.Updates = append(c.Updates, model.ComplaintUpdate{Time: now, Message: message, By: by})
	if status == model.StatusResolved {
		resolvedAt := now
		c.ResolvedAt = &resolvedAt
	}
	c.Status = status
	return nil
}

// Service applies lifecycle operations against the store.
type Service struct {
	store      Store
	evaluator  *sla.Evaluator
	aggregator *analytics.Aggregator
	maxImages  int
	now        func() time.Time
	log        *zap.Logger
}

// NewService creates a lifecycle service.
func NewService(st Store, ev *sla.Evaluator, maxImages int, logger *zap.Logger) *Service {
	s := &Service{
		store:     st,
		evaluator: ev,
		maxImages: maxImages,
		now:       time.Now,
		log:       logger,
	}
	s.aggregator = analytics.NewAggregator(ev, func() time.Time { return s.now() })
	return s
}

// MaxImages is the attachment cap enforced on creation.
func (s *Service) MaxImages() int { return s.maxImages }

// CreateComplaint files a complaint for actor. Nothing is written unless every
// field is valid.
func (s *Service) CreateComplaint(ctx context.Context, actor auth.Principal, in NewComplaint) (*model.Complaint, error) {
	if !CanCreate(actor) {
		return nil, fmt.Errorf("%w: %s users cannot file complaints", ErrForbidden, actor.Role)
	}
	if err := in.normalize(s.maxImages); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	c := &model.Complaint{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		Status:      model.StatusOpen,
		Priority:    in.Priority,
		Resident:    actor.Email,
		RoomNumber:  in.RoomNumber,
		Images:      append([]string{}, in.Images...),
		CreatedAt:   now,
		UpdatedAt:   now,
		Updates:     []model.ComplaintUpdate{},
	}
	if err := s.store.CreateComplaint(ctx, c); err != nil {
		return nil, s.storeErr("create complaint", err)
	}

	s.log.Info("complaint filed",
		zap.String("complaint_id", c.ID),
		zap.String("category", string(c.Category)),
		zap.String("resident", c.Resident))
	return c, nil
}

// AssignTechnician assigns a technician whose specialization matches the
// complaint's category.
func (s *Service) AssignTechnician(ctx context.Context, actor auth.Principal, complaintID, technicianID string) (*model.Complaint, error) {
	if !CanAssign(actor) {
		return nil, fmt.Errorf("%w: only admins can assign technicians", ErrForbidden)
	}

	tech, err := s.store.GetUserByID(ctx, technicianID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: technician %s", ErrNotFound, technicianID)
	}
	if err != nil {
		return nil, s.storeErr("load technician", err)
	}
	if tech.Role != model.RoleTechnician {
		return nil, invalid("technicianId", "user %s is not a technician", technicianID)
	}

	now := s.now().UTC()
	c, err := s.store.UpdateComplaint(ctx, complaintID, func(c *model.Complaint) error {
		if tech.Specialization != c.Category {
			return invalid("technicianId", "technician specializes in %s, complaint is %s", tech.Specialization, c.Category)
		}
		if err := Assign(c, model.TechnicianRef{ID: tech.ID, Name: tech.Name}, now); err != nil {
			return err
		}
		c.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, s.complaintErr("assign technician", complaintID, err)
	}

	s.log.Info("technician assigned",
		zap.String("complaint_id", c.ID),
		zap.String("technician_id", tech.ID))
	return c, nil
}

// RecordStatusUpdate appends a note from actor and moves the complaint to
// status. Only admins and the assigned technician may call it.
func (s *Service) RecordStatusUpdate(ctx context.Context, actor auth.Principal, complaintID string, status model.Status, message string) (*model.Complaint, error) {
	message, err := cleanText("message", message)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()

	c, err := s.store.UpdateComplaint(ctx, complaintID, func(c *model.Complaint) error {
		if !CanUpdate(actor, c) {
			return fmt.Errorf("%w: only an admin or the assigned technician can update this complaint", ErrForbidden)
		}
		if err := ApplyStatusUpdate(c, status, message, updateAuthor(actor), now); err != nil {
			return err
		}
		c.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, s.complaintErr("record status update", complaintID, err)
	}

	s.log.Info("complaint updated",
		zap.String("complaint_id", c.ID),
		zap.String("status", string(c.Status)),
		zap.String("by", updateAuthor(actor)))
	return c, nil
}

// GetComplaint returns one complaint with its derived escalation state.
func (s *Service) GetComplaint(ctx context.Context, id string) (ComplaintView, error) {
	c, err := s.store.GetComplaint(ctx, id)
	if err != nil {
		return ComplaintView{}, s.complaintErr("get complaint", id, err)
	}
	return s.view(c, s.now()), nil
}

// ListComplaints returns complaints newest first, narrowed by filter.
func (s *Service) ListComplaints(ctx context.Context, filter ListFilter) ([]ComplaintView, error) {
	q, escalatedOnly, err := filter.query()
	if err != nil {
		return nil, err
	}

	complaints, err := s.store.ListComplaints(ctx, q)
	if err != nil {
		return nil, s.storeErr("list complaints", err)
	}

	now := s.now()
	views := make([]ComplaintView, 0, len(complaints))
	for i := range complaints {
		if filter.Room != "" && !parse.SameRoom(complaints[i].RoomNumber, filter.Room) {
			continue
		}
		v := s.view(&complaints[i], now)
		if escalatedOnly && !v.Escalated {
			continue
		}
		views = append(views, v)
	}
	return views, nil
}

// Analytics summarises every complaint at a single instant.
func (s *Service) Analytics(ctx context.Context) (analytics.Summary, error) {
	complaints, err := s.store.ListComplaints(ctx, store.ComplaintFilter{})
	if err != nil {
		return analytics.Summary{}, s.storeErr("load analytics", err)
	}
	return s.aggregator.Compute(complaints), nil
}

// View decorates c with its escalation state as of now.
func (s *Service) View(c *model.Complaint) ComplaintView {
	return s.view(c, s.now())
}

func (s *Service) view(c *model.Complaint, now time.Time) ComplaintView {
	v := ComplaintView{Complaint: *c, Escalated: s.evaluator.IsEscalated(c, now)}
	if c.Status != model.StatusResolved {
		if deadline, ok := s.evaluator.Deadline(c); ok {
			v.SLADeadline = &deadline
		}
	}
	return v
}

func (s *Service) complaintErr(op, id string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: complaint %s", ErrNotFound, id)
	}
	return s.storeErr(op, err)
}

// storeErr passes rule violations through and wraps everything else as a
// persistence failure.
func (s *Service) storeErr(op string, err error) error {
	if IsValidation(err) || errors.Is(err, ErrForbidden) || errors.Is(err, ErrNotFound) {
		return err
	}
	s.log.Error("persistence failure", zap.String("op", op), zap.Error(err))
	return &PersistenceError{Op: op, Err: err}
}
