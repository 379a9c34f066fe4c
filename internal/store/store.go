package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"maintenance-logbook-backend/internal/model"
)

// Store defines the interface for all database operations.
type Store interface {
	CreateComplaint(ctx context.Context, c *model.Complaint) error
	GetComplaint(ctx context.Context, id string) (*model.Complaint, error)
	ListComplaints(ctx context.Context, filter ComplaintFilter) ([]model.Complaint, error)
	UpdateComplaint(ctx context.Context, id string, mutate MutateFunc) (*model.Complaint, error)

	CreateUser(ctx context.Context, u *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	ListUsersByRole(ctx context.Context, role model.Role) ([]model.User, error)

	Ping(ctx context.Context) error
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB, logger *zap.Logger) Store {
	return &gormStore{db: db, log: logger}
}

func orderedUpdates(db *gorm.DB) *gorm.DB {
	return db.Order("complaint_updates.id ASC")
}

// CreateComplaint inserts a complaint together with any initial updates.
func (s *gormStore) CreateComplaint(ctx context.Context, c *model.Complaint) error {
	if err := s.db.WithContext(ctx).Create(c).Error; err != nil {
		s.log.Error("create complaint", zap.String("resident", c.Resident), zap.Error(err))
		return fmt.Errorf("failed to create complaint: %w", err)
	}
	return nil
}

// GetComplaint loads one complaint with its update history.
func (s *gormStore) GetComplaint(ctx context.Context, id string) (*model.Complaint, error) {
	return loadComplaint(s.db.WithContext(ctx), id)
}

func loadComplaint(db *gorm.DB, id string) (*model.Complaint, error) {
	var c model.Complaint
	err := db.Preload("Updates", orderedUpdates).First(&c, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load complaint %s: %w", id, err)
	}
	return &c, nil
}

// ListComplaints returns complaints newest first.
func (s *gormStore) ListComplaints(ctx context.Context, filter ComplaintFilter) ([]model.Complaint, error) {
	q := s.db.WithContext(ctx).Preload("Updates", orderedUpdates)
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Resident != "" {
		q = q.Where("resident = ?", filter.Resident)
	}

	var complaints []model.Complaint
	if err := q.Order("created_at DESC").Find(&complaints).Error; err != nil {
		return nil, fmt.Errorf("failed to list complaints: %w", err)
	}
	return complaints, nil
}

// UpdateComplaint performs a read-modify-write of one complaint inside a
// transaction. Updates are append-only: entries already stored are never
// rewritten, new trailing entries are inserted.
func (s *gormStore) UpdateComplaint(ctx context.Context, id string, mutate MutateFunc) (*model.Complaint, error) {
	var result *model.Complaint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, err := loadComplaint(tx, id)
		if err != nil {
			return err
		}
		stored := len(c.Updates)

		if err := mutate(c); err != nil {
			return err
		}
		if len(c.Updates) < stored {
			return fmt.Errorf("complaint %s: update history cannot shrink", id)
		}

		if err := tx.Omit(clause.Associations).Save(c).Error; err != nil {
			return fmt.Errorf("failed to save complaint %s: %w", id, err)
		}

		added := c.Updates[stored:]
		for i := range added {
			added[i].ComplaintID = c.ID
		}
		if len(added) > 0 {
			if err := tx.Create(&added).Error; err != nil {
				return fmt.Errorf("failed to append updates for complaint %s: %w", id, err)
			}
		}
		result = c
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.log.Debug("complaint update rolled back", zap.String("complaint_id", id), zap.Error(err))
		}
		return nil, err
	}
	return result, nil
}

// CreateUser inserts a user. A taken email yields ErrDuplicate.
func (s *gormStore) CreateUser(ctx context.Context, u *model.User) error {
	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&model.User{}).Where("email = ?", u.Email).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check email: %w", err)
	}
	if count > 0 {
		return ErrDuplicate
	}

	if err := db.Create(u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUserByID loads a user by primary key.
func (s *gormStore) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return s.firstUser(ctx, "id = ?", id)
}

// GetUserByEmail loads a user by email.
func (s *gormStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.firstUser(ctx, "email = ?", email)
}

func (s *gormStore) firstUser(ctx context.Context, query string, arg string) (*model.User, error) {
	var u model.User
	err := s.db.WithContext(ctx).First(&u, query, arg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &u, nil
}

// ListUsersByRole returns users with the given role ordered by name.
func (s *gormStore) ListUsersByRole(ctx context.Context, role model.Role) ([]model.User, error) {
	var users []model.User
	if err := s.db.WithContext(ctx).Where("role = ?", role).Order("name ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// Ping checks that the database is reachable.
func (s *gormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// isUniqueViolation catches drivers that do not translate errors.
func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}
