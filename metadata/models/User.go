package models

// SystemUserID is assigned as owner and modifier when no authenticated user
// performed an operation.
const SystemUserID int64 = 0

// User is the acting-user context threaded explicitly through every mutating
// and permission-resolving call. There is no ambient current-user lookup.
type User struct {
	// ID is the user id, SystemUserID when unauthenticated.
	ID int64
	// RoleIDs are the ids of roles held by the user. Workspace grants for
	// any of these participate in permission resolution at lower precedence
	// than grants for the user id itself.
	RoleIDs []int64
	// IsAdmin short-circuits all permission checks to allowed.
	IsAdmin bool
}

// SystemUser returns the acting-user context for unattended operations.
func SystemUser() User {
	return User{ID: SystemUserID}
}

// PrincipalIDs returns the user id together with all held role ids, the id
// set matched against workspace grant rows.
func (u User) PrincipalIDs() []int64 {
	ids := make([]int64, 0, len(u.RoleIDs)+1)
	ids = append(ids, u.ID)
	ids = append(ids, u.RoleIDs...)
	return ids
}
