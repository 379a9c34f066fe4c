// Package account registers users, signs them in and provisions technicians.
package account

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"maintenance-logbook-backend/internal/auth"
	"maintenance-logbook-backend/internal/lifecycle"
	"maintenance-logbook-backend/internal/model"
	"maintenance-logbook-backend/internal/store"
)

const minPasswordLen = 6

// ErrInvalidCredentials is returned by Login for an unknown email or a wrong
// password.
var ErrInvalidCredentials = errors.New("invalid email or password")

// Store is the persistence the service depends on.
type Store interface {
	CreateUser(ctx context.Context, u *model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	ListUsersByRole(ctx context.Context, role model.Role) ([]model.User, error)
}

// Session is returned after registering or signing in.
type Session struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

// Registration is the input for a self-service sign-up.
type Registration struct {
	Name     string
	Email    string
	Password string
	Role     model.Role
}

// NewTechnician is the input for provisioning a technician.
type NewTechnician struct {
	Name           string
	Email          string
	Password       string
	Specialization model.Category
}

// Service manages user accounts.
type Service struct {
	store      Store
	tokens     *auth.Tokens
	bcryptCost int
	now        func() time.Time
	log        *zap.Logger
}

// NewService creates an account service.
func NewService(st Store, tokens *auth.Tokens, bcryptCost int, logger *zap.Logger) *Service {
	return &Service{store: st, tokens: tokens, bcryptCost: bcryptCost, now: time.Now, log: logger}
}

// Register creates a resident or admin account. Technicians must be
// provisioned by an admin.
func (s *Service) Register(ctx context.Context, in Registration) (*Session, error) {
	if in.Role == "" {
		in.Role = model.RoleResident
	}
	switch in.Role {
	case model.RoleResident, model.RoleAdmin:
	case model.RoleTechnician:
		return nil, &lifecycle.ValidationError{Field: "role", Message: "technician cannot register this way"}
	default:
		return nil, &lifecycle.ValidationError{Field: "role", Message: fmt.Sprintf("unknown role %q", in.Role)}
	}

	u, err := s.createUser(ctx, in.Name, in.Email, in.Password, in.Role, "")
	if err != nil {
		return nil, err
	}
	return s.session(u)
}

// Login checks credentials and returns a fresh token.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.store.GetUserByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, s.persistence("load user", err)
	}

	ok, err := auth.CheckPassword(u.PasswordHash, password)
	if err != nil {
		s.log.Warn("password check failed", zap.String("user_id", u.ID), zap.Error(err))
		return nil, ErrInvalidCredentials
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}
	return s.session(u)
}

// AddTechnician provisions a technician account. Admin only.
func (s *Service) AddTechnician(ctx context.Context, actor auth.Principal, in NewTechnician) (*model.User, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: only admins can add technicians", lifecycle.ErrForbidden)
	}
	if !in.Specialization.Valid() {
		return nil, &lifecycle.ValidationError{Field: "specialization", Message: fmt.Sprintf("unknown category %q", in.Specialization)}
	}
	return s.createUser(ctx, in.Name, in.Email, in.Password, model.RoleTechnician, in.Specialization)
}

// ListTechnicians returns every technician. Admin only.
func (s *Service) ListTechnicians(ctx context.Context, actor auth.Principal) ([]model.User, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: only admins can list technicians", lifecycle.ErrForbidden)
	}
	techs, err := s.store.ListUsersByRole(ctx, model.RoleTechnician)
	if err != nil {
		return nil, s.persistence("list technicians", err)
	}
	return techs, nil
}

func (s *Service) createUser(ctx context.Context, name, email, password string, role model.Role, spec model.Category) (*model.User, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" {
		return nil, &lifecycle.ValidationError{Field: "name", Message: "is required"}
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, &lifecycle.ValidationError{Field: "email", Message: "is not a valid address"}
	}
	if len(password) < minPasswordLen {
		return nil, &lifecycle.ValidationError{Field: "password", Message: fmt.Sprintf("must be at least %d characters", minPasswordLen)}
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	u := &model.User{
		ID:             uuid.NewString(),
		Name:           name,
		Email:          email,
		PasswordHash:   hash,
		Role:           role,
		Specialization: spec,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, &lifecycle.ValidationError{Field: "email", Message: "user already exists"}
		}
		return nil, s.persistence("create user", err)
	}

	s.log.Info("user created", zap.String("user_id", u.ID), zap.String("role", string(u.Role)))
	return u, nil
}

func (s *Service) session(u *model.User) (*Session, error) {
	token, err := s.tokens.Issue(auth.PrincipalOf(u))
	if err != nil {
		return nil, err
	}
	return &Session{User: u, Token: token}, nil
}

func (s *Service) persistence(op string, err error) error {
	s.log.Error("persistence failure", zap.String("op", op), zap.Error(err))
	return &lifecycle.PersistenceError{Op: op, Err: err}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
