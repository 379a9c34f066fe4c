package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"maintenance-logbook-backend/internal/model"
)

// newSQLiteDB opens a private in-memory database with the schema migrated.
func newSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.User{}, &model.Complaint{}, &model.ComplaintUpdate{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

// A helper function to create a mock database connection.
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func newComplaint(title string, created time.Time) *model.Complaint {
	return &model.Complaint{
		ID:          uuid.NewString(),
		Title:       title,
		Description: "details",
		Category:    model.CategoryWater,
		Status:      model.StatusOpen,
		Priority:    model.PriorityMedium,
		Resident:    "res@example.com",
		RoomNumber:  "B-204",
		Images:      []string{"uploads/a.jpg"},
		CreatedAt:   created,
	}
}

func TestGormStore_ComplaintRoundTrip(t *testing.T) {
	s := NewGormStore(newSQLiteDB(t), zap.NewNop())
	ctx := context.Background()
	now := time.Now().UTC()

	older := newComplaint("older", now.Add(-2*time.Hour))
	newer := newComplaint("newer", now.Add(-1*time.Hour))
	newer.Category = model.CategoryWifi
	require.NoError(t, s.CreateComplaint(ctx, older))
	require.NoError(t, s.CreateComplaint(ctx, newer))

	got, err := s.GetComplaint(ctx, older.ID)
	require.NoError(t, err)
	assert.Equal(t, "older", got.Title)
	assert.Equal(t, []string{"uploads/a.jpg"}, got.Images)
	assert.Nil(t, got.Technician)
	assert.Nil(t, got.ResolvedAt)

	all, err := s.ListComplaints(ctx, ComplaintFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "newer", all[0].Title, "newest first")
	assert.Equal(t, "older", all[1].Title)

	wifi, err := s.ListComplaints(ctx, ComplaintFilter{Category: model.CategoryWifi})
	require.NoError(t, err)
	require.Len(t, wifi, 1)
	assert.Equal(t, newer.ID, wifi[0].ID)

	_, err = s.GetComplaint(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGormStore_UpdateComplaintAppendsHistory(t *testing.T) {
	s := NewGormStore(newSQLiteDB(t), zap.NewNop())
	ctx := context.Background()
	now := time.Now().UTC()

	c := newComplaint("leak", now.Add(-time.Hour))
	require.NoError(t, s.CreateComplaint(ctx, c))

	_, err := s.UpdateComplaint(ctx, c.ID, func(c *model.Complaint) error {
		c.Status = model.StatusInProgress
		c.Technician = &model.TechnicianRef{ID: "t-1", Name: "Ravi"}
		c.Updates = append(c.Updates, model.ComplaintUpdate{Time: now, Message: "Assigned to Ravi", By: "Admin"})
		return nil
	})
	require.NoError(t, err)

	updated, err := s.UpdateComplaint(ctx, c.ID, func(c *model.Complaint) error {
		c.Updates = append(c.Updates, model.ComplaintUpdate{Time: now.Add(time.Minute), Message: "Parts ordered", By: "Ravi"})
		return nil
	})
	require.NoError(t, err)
	require.Len(t, updated.Updates, 2)

	reloaded, err := s.GetComplaint(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusInProgress, reloaded.Status)
	require.NotNil(t, reloaded.Technician)
	assert.Equal(t, "Ravi", reloaded.Technician.Name)
	require.Len(t, reloaded.Updates, 2)
	assert.Equal(t, "Assigned to Ravi", reloaded.Updates[0].Message)
	assert.Equal(t, "Parts ordered", reloaded.Updates[1].Message)
}

func TestGormStore_UpdateComplaintAbortsOnError(t *testing.T) {
	s := NewGormStore(newSQLiteDB(t), zap.NewNop())
	ctx := context.Background()

	c := newComplaint("flicker", time.Now().UTC())
	require.NoError(t, s.CreateComplaint(ctx, c))

	boom := errors.New("rejected")
	_, err := s.UpdateComplaint(ctx, c.ID, func(c *model.Complaint) error {
		c.Status = model.StatusResolved
		return boom
	})
	assert.ErrorIs(t, err, boom)

	reloaded, err := s.GetComplaint(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusOpen, reloaded.Status)

	_, err = s.UpdateComplaint(ctx, "missing", func(*model.Complaint) error { return nil })
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGormStore_Users(t *testing.T) {
	s := NewGormStore(newSQLiteDB(t), zap.NewNop())
	ctx := context.Background()

	tech := &model.User{ID: uuid.NewString(), Name: "Zed", Email: "zed@example.com", PasswordHash: "x", Role: model.RoleTechnician, Specialization: model.CategoryWifi}
	tech2 := &model.User{ID: uuid.NewString(), Name: "Amy", Email: "amy@example.com", PasswordHash: "x", Role: model.RoleTechnician, Specialization: model.CategoryWater}
	admin := &model.User{ID: uuid.NewString(), Name: "Root", Email: "root@example.com", PasswordHash: "x", Role: model.RoleAdmin}
	for _, u := range []*model.User{tech, tech2, admin} {
		require.NoError(t, s.CreateUser(ctx, u))
	}

	dup := &model.User{ID: uuid.NewString(), Name: "Zed 2", Email: "zed@example.com", PasswordHash: "x", Role: model.RoleResident}
	assert.ErrorIs(t, s.CreateUser(ctx, dup), ErrDuplicate)

	byEmail, err := s.GetUserByEmail(ctx, "amy@example.com")
	require.NoError(t, err)
	assert.Equal(t, tech2.ID, byEmail.ID)

	byID, err := s.GetUserByID(ctx, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, byID.Role)

	_, err = s.GetUserByID(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)

	techs, err := s.ListUsersByRole(ctx, model.RoleTechnician)
	require.NoError(t, err)
	require.Len(t, techs, 2)
	assert.Equal(t, "Amy", techs[0].Name)
	assert.Equal(t, "Zed", techs[1].Name)
}

func TestGormStore_ListComplaintsPropagatesDriverError(t *testing.T) {
	gormDB, mock := newMockDB(t)
	s := NewGormStore(gormDB, zap.NewNop())

	mock.ExpectQuery(`SELECT \* FROM "complaints"`).WillReturnError(errors.New("connection reset"))

	_, err := s.ListComplaints(context.Background(), ComplaintFilter{})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
