package account

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"maintenance-logbook-backend/internal/auth"
	"maintenance-logbook-backend/internal/lifecycle"
	"maintenance-logbook-backend/internal/model"
	"maintenance-logbook-backend/internal/store"
)

func newTestService(t *testing.T) (*Service, *auth.Tokens) {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.User{}))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	tokens := auth.NewTokens("test-secret", time.Hour)
	return NewService(store.NewGormStore(db, zap.NewNop()), tokens, bcrypt.MinCost, zap.NewNop()), tokens
}

func TestRegisterIssuesToken(t *testing.T) {
	svc, tokens := newTestService(t)

	s, err := svc.Register(context.Background(), Registration{Name: " Riya ", Email: "RIYA@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "Riya", s.User.Name)
	assert.Equal(t, "riya@example.com", s.User.Email)
	assert.Equal(t, model.RoleResident, s.User.Role)
	assert.NotEqual(t, "secret1", s.User.PasswordHash)

	p, err := tokens.Parse(s.Token)
	require.NoError(t, err)
	assert.Equal(t, s.User.ID, p.ID)
	assert.Equal(t, model.RoleResident, p.Role)
}

func TestRegisterRejections(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, Registration{Name: "Riya", Email: "riya@example.com", Password: "secret1"})
	require.NoError(t, err)

	cases := map[string]struct {
		in   Registration
		want string
	}{
		"duplicate email": {Registration{Name: "R", Email: "Riya@Example.com", Password: "secret1"}, "user already exists"},
		"technician":      {Registration{Name: "T", Email: "t@example.com", Password: "secret1", Role: model.RoleTechnician}, "technician cannot register this way"},
		"unknown role":    {Registration{Name: "T", Email: "t@example.com", Password: "secret1", Role: "janitor"}, "unknown role"},
		"bad email":       {Registration{Name: "T", Email: "not-an-email", Password: "secret1"}, "email"},
		"short password":  {Registration{Name: "T", Email: "t@example.com", Password: "123"}, "password"},
		"blank name":      {Registration{Name: "  ", Email: "t@example.com", Password: "secret1"}, "name"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Register(ctx, tc.in)
			require.Error(t, err)
			assert.True(t, lifecycle.IsValidation(err))
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestLogin(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, Registration{Name: "Admin", Email: "admin@example.com", Password: "secret1", Role: model.RoleAdmin})
	require.NoError(t, err)

	s, err := svc.Login(ctx, " Admin@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, s.User.Role)

	_, err = svc.Login(ctx, "admin@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestTechnicians(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	admin := auth.Principal{ID: "a1", Name: "Admin", Role: model.RoleAdmin}
	resident := auth.Principal{ID: "r1", Name: "Riya", Role: model.RoleResident}

	_, err := svc.AddTechnician(ctx, resident, NewTechnician{Name: "Pat", Email: "pat@example.com", Password: "secret1", Specialization: model.CategoryWater})
	assert.ErrorIs(t, err, lifecycle.ErrForbidden)

	_, err = svc.AddTechnician(ctx, admin, NewTechnician{Name: "Pat", Email: "pat@example.com", Password: "secret1", Specialization: "gardening"})
	assert.True(t, lifecycle.IsValidation(err))

	for _, tc := range []NewTechnician{
		{Name: "Sam", Email: "sam@example.com", Password: "secret1", Specialization: model.CategoryElectricity},
		{Name: "Pat", Email: "pat@example.com", Password: "secret1", Specialization: model.CategoryWater},
	} {
		tech, err := svc.AddTechnician(ctx, admin, tc)
		require.NoError(t, err)
		assert.Equal(t, model.RoleTechnician, tech.Role)
	}

	techs, err := svc.ListTechnicians(ctx, admin)
	require.NoError(t, err)
	require.Len(t, techs, 2)
	assert.Equal(t, "Pat", techs[0].Name)
	assert.Equal(t, model.CategoryWater, techs[0].Specialization)

	_, err = svc.ListTechnicians(ctx, resident)
	assert.ErrorIs(t, err, lifecycle.ErrForbidden)

	s, err := svc.Login(ctx, "sam@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, model.CategoryElectricity, s.User.Specialization)
}
