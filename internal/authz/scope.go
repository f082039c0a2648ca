// Package authz holds the owner-scoping rule shared by the stores and the
// services. A resource is visible through a Scope only when its owner id
// matches the scope's id; the zero Scope matches nothing.
package authz

// Scope restricts access to resources owned by one user.
type Scope struct {
	OwnerID int64
}

// Owner returns the scope for resources owned by userID.
func Owner(userID int64) Scope {
	return Scope{OwnerID: userID}
}

// Valid reports whether the scope names an owner at all.
func (s Scope) Valid() bool {
	return s.OwnerID > 0
}

// Permits reports whether a resource owned by ownerID is inside the scope.
func (s Scope) Permits(ownerID int64) bool {
	return s.Valid() && s.OwnerID == ownerID
}

// PermitsAny reports whether any of the participant ids is inside the scope.
func (s Scope) PermitsAny(participantIDs ...int64) bool {
	for _, id := range participantIDs {
		if s.Permits(id) {
			return true
		}
	}
	return false
}
