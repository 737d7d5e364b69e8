// Package authz evaluates role and campus-scope rules in one place instead
// of inline conditionals spread over handlers.
package authz

import (
	"github.com/campuswatch/backend/internal/apperr"
	"github.com/campuswatch/backend/internal/models"
	"github.com/google/uuid"
)

var roleRank = map[string]int{
	models.RoleUser:       0,
	models.RoleSecurity:   1,
	models.RoleModerator:  2,
	models.RoleAdmin:      3,
	models.RoleSuperAdmin: 4,
}

// RoleRank returns the privilege order of a role, -1 for unknown roles.
func RoleRank(role string) int {
	r, ok := roleRank[role]
	if !ok {
		return -1
	}
	return r
}

// Identity is the authenticated caller as seen by services. It is loaded
// fresh from storage per request, so bans take effect immediately.
type Identity struct {
	UserID        uuid.UUID
	CampusID      uuid.UUID
	Role          string
	EmailVerified bool
}

func (id Identity) AtLeast(role string) bool {
	return RoleRank(id.Role) >= RoleRank(role)
}

func (id Identity) IsModerator() bool { return id.AtLeast(models.RoleModerator) }

func (id Identity) IsAdmin() bool { return id.AtLeast(models.RoleAdmin) }

func (id Identity) IsSuperAdmin() bool { return id.Role == models.RoleSuperAdmin }

// CampusScope is the campus filter for storage lookups: super admins read
// across campuses (uuid.Nil disables the filter), everyone else is pinned.
func (id Identity) CampusScope() uuid.UUID {
	if id.IsSuperAdmin() {
		return uuid.Nil
	}
	return id.CampusID
}

// Policy is a declarative capability rule evaluated once per operation.
type Policy struct {
	MinRole    string // minimum role; empty means any authenticated user
	OwnerOK    bool   // entity owner passes regardless of role
	OwnerOnly  bool   // only the entity owner passes
	SameCampus bool   // non-super-admins must match the entity campus
}

var (
	EditReport     = Policy{OwnerOnly: true}
	RetractReport  = Policy{MinRole: models.RoleAdmin, OwnerOK: true, SameCampus: true}
	ModerateReport = Policy{MinRole: models.RoleModerator, SameCampus: true}
	EditComment    = Policy{OwnerOnly: true}
	DeleteComment  = Policy{MinRole: models.RoleModerator, OwnerOK: true, SameCampus: true}
	ManageUsers    = Policy{MinRole: models.RoleModerator, SameCampus: true}
	ViewAudit      = Policy{MinRole: models.RoleModerator, SameCampus: true}
	ManageCampuses = Policy{MinRole: models.RoleAdmin}
)

// Allow checks id against the policy for an entity owned by ownerID in
// campusID. A nil result means the operation may proceed.
func (p Policy) Allow(id Identity, campusID, ownerID uuid.UUID) error {
	if p.OwnerOnly {
		if id.UserID == ownerID {
			return nil
		}
		return apperr.Forbidden("only the author may do this")
	}
	if p.OwnerOK && id.UserID == ownerID {
		return nil
	}
	if p.MinRole != "" && !id.AtLeast(p.MinRole) {
		return apperr.Forbidden("insufficient role")
	}
	if p.SameCampus && !id.IsSuperAdmin() && campusID != uuid.Nil && id.CampusID != campusID {
		return apperr.Forbidden("outside your campus")
	}
	return nil
}
