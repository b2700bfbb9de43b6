package models

// Role distinguishes the account's Admin member from everyone else.
type Role string

const (
	RoleMember Role = "Member"
	RoleAdmin  Role = "Admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleMember || r == RoleAdmin
}

// Member represents a family participant who can be attributed expenses.
type Member struct {
	// ID is assigned by the store and increases with insertion order.
	ID int64

	// UserID is the owning account ID.
	UserID string

	// Name is the display name; never empty.
	Name string

	// Email is optional.
	Email string

	// Role is Admin for the member created at sign-up, Member otherwise.
	Role Role

	// CreatedAt is the Unix timestamp when the member was created.
	CreatedAt int64
}

// IsAdmin reports whether the member is the account's Admin.
func (m *Member) IsAdmin() bool {
	return m.Role == RoleAdmin
}

// FindAdmin returns the first Admin in members, or nil.
func FindAdmin(members []*Member) *Member {
	for _, m := range members {
		if m.IsAdmin() {
			return m
		}
	}
	return nil
}

// FindMember returns the member with the given ID, or nil.
func FindMember(members []*Member, id int64) *Member {
	for _, m := range members {
		if m.ID == id {
			return m
		}
	}
	return nil
}
