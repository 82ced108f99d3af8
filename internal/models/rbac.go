package models

// Role is the permission group a user belongs to.
type Role string

const (
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleTeacher || r == RoleAdmin
}

// CanCreateWorkshops reports whether the role may schedule workshops.
func (r Role) CanCreateWorkshops() bool {
	return r.Valid()
}

// CanManage reports whether a user with this role and id may mutate a
// resource owned by ownerID. Admins manage everything; teachers only
// their own records.
func (r Role) CanManage(userID, ownerID string) bool {
	if r == RoleAdmin {
		return true
	}
	return r == RoleTeacher && userID != "" && userID == ownerID
}
