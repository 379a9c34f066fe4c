package model

import "time"

// Category is the kind of maintenance issue a complaint is about.
type Category string

const (
	CategoryElectricity Category = "electricity"
	CategoryWater       Category = "water"
	CategoryWifi        Category = "wifi"
	CategoryCleaning    Category = "cleaning"
)

// Categories lists every known category in display order.
var Categories = []Category{CategoryElectricity, CategoryWater, CategoryWifi, CategoryCleaning}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Status is the lifecycle state of a complaint.
type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in-progress"
	StatusResolved   Status = "resolved"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s == StatusOpen || s == StatusInProgress || s == StatusResolved
}

// Priority is set once when the complaint is filed.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// TechnicianRef is a point-in-time copy of the assigned technician. It is not
// refreshed when the technician's user record changes.
type TechnicianRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Complaint is a maintenance ticket filed by a resident.
type Complaint struct {
	ID          string         `gorm:"primaryKey;size:36" json:"id"`
	Title       string         `gorm:"size:256;not null" json:"title"`
	Description string         `gorm:"type:text;not null" json:"description"`
	Category    Category       `gorm:"size:32;not null;index" json:"category"`
	Status      Status         `gorm:"size:16;not null;index" json:"status"`
	Priority    Priority       `gorm:"size:16;not null" json:"priority"`
	Resident    string         `gorm:"size:256;not null;index" json:"resident"`
	RoomNumber  string         `gorm:"size:64;not null" json:"roomNumber"`
	Images      []string       `gorm:"serializer:json" json:"images"`
	Technician  *TechnicianRef `gorm:"serializer:json" json:"technician,omitempty"`
	CreatedAt   time.Time      `gorm:"not null;index" json:"createdAt"`
	UpdatedAt   time.Time      `gorm:"not null" json:"updatedAt"`
	ResolvedAt  *time.Time     `json:"resolvedAt,omitempty"`

	// Associations
	Updates []ComplaintUpdate `gorm:"foreignKey:ComplaintID;constraint:OnDelete:CASCADE" json:"updates"`
}

// ComplaintUpdate is one entry of a complaint's append-only history. Entries
// are ordered by ID, which follows insertion order.
type ComplaintUpdate struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"-"`
	ComplaintID string    `gorm:"size:36;not null;index" json:"-"`
	Time        time.Time `gorm:"not null" json:"time"`
	Message     string    `gorm:"type:text;not null" json:"message"`
	By          string    `gorm:"size:256;not null" json:"by"`
}
