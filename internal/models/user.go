package models

import "time"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleAdmin UserRole = "ADMIN"
	RoleStaff UserRole = "STAFF"
	RoleRider UserRole = "RIDER"
)

// IsStaff reports whether the role grants staff-level access. Admins are
// staff for authorization purposes.
func (r UserRole) IsStaff() bool {
	return r == RoleStaff || r == RoleAdmin
}

// User represents an application user stored in the users table.
type User struct {
	ID           string     `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Name         string     `db:"name" json:"name"`
	LastName     string     `db:"last_name" json:"last_name"`
	Address      string     `db:"address" json:"address"`
	City         string     `db:"city" json:"city"`
	Birthday     *time.Time `db:"birthday" json:"birthday,omitempty"`
	Occupancy    string     `db:"occupancy" json:"occupancy"`
	AcademicUnit string     `db:"academic_unit" json:"academic_unit"`
	Commune      string     `db:"commune" json:"commune"`
	Transport    string     `db:"transport" json:"transport"`
	Signature    *string    `db:"signature" json:"signature,omitempty"`
	Role         UserRole   `db:"role" json:"role"`
	Active       bool       `db:"active" json:"active"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// MissingProfileData lists the profile fields a rider must complete before
// a loan can be opened for them.
func (u *User) MissingProfileData() []string {
	checks := []struct {
		field string
		value string
	}{
		{"email", u.Email},
		{"name", u.Name},
		{"last_name", u.LastName},
		{"address", u.Address},
		{"city", u.City},
		{"occupancy", u.Occupancy},
		{"academic_unit", u.AcademicUnit},
	}
	var missing []string
	for _, c := range checks {
		if c.value == "" {
			missing = append(missing, c.field)
		}
	}
	return missing
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	Role      *UserRole
	Active    *bool
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
