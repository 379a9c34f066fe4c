package model

import "time"

// Role determines what a user may do with complaints.
type Role string

const (
	RoleResident   Role = "resident"
	RoleAdmin      Role = "admin"
	RoleTechnician Role = "technician"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleResident || r == RoleAdmin || r == RoleTechnician
}

// User is an account. Technicians are users with RoleTechnician and a
// specialization drawn from the complaint categories.
type User struct {
	ID             string    `gorm:"primaryKey;size:36" json:"id"`
	Name           string    `gorm:"size:128;not null" json:"name"`
	Email          string    `gorm:"uniqueIndex;size:256;not null" json:"email"`
	PasswordHash   string    `gorm:"size:128;not null" json:"-"`
	Role           Role      `gorm:"size:16;not null;index" json:"role"`
	Specialization Category  `gorm:"size:32" json:"specialization,omitempty"`
	CreatedAt      time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt      time.Time `gorm:"not null" json:"updatedAt"`
}
