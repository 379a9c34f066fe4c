package lifecycle

import (
	"maintenance-logbook-backend/internal/auth"
	"maintenance-logbook-backend/internal/model"
)

// CanCreate reports whether p may file complaints.
func CanCreate(p auth.Principal) bool {
	return p.Role == model.RoleResident || p.Role == model.RoleAdmin
}

// CanAssign reports whether p may assign technicians.
func CanAssign(p auth.Principal) bool {
	return p.IsAdmin()
}

// CanUpdate reports whether p may post updates on c: admins always, a
// technician only when named in the complaint's technician snapshot.
func CanUpdate(p auth.Principal, c *model.Complaint) bool {
	if p.IsAdmin() {
		return true
	}
	return p.Role == model.RoleTechnician && c.Technician != nil && c.Technician.ID == p.ID
}

// updateAuthor is the display name recorded on an update.
func updateAuthor(p auth.Principal) string {
	if p.IsAdmin() {
		return "Admin"
	}
	return p.Name
}
