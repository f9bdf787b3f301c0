package domain

import "time"

// Role is the authorization role stored alongside a credential.
type Role string

const (
	RoleAdmin    Role = "Admin"
	RoleCustomer Role = "Customer"
)

// ParseRole maps a raw role string to a Role. An empty string defaults to
// RoleCustomer; anything else unknown is rejected.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case "":
		return RoleCustomer, true
	case RoleAdmin, RoleCustomer:
		return Role(s), true
	default:
		return "", false
	}
}

// LandingPage returns where a freshly signed-in principal should be sent.
func LandingPage(role Role) string {
	if role == RoleAdmin {
		return "/dashboard/admin"
	}
	return "/dashboard/customer"
}

// Credential is the local authentication record for a username.
type Credential struct {
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// OrphanedCredential records a credential that survived a failed registration
// because its compensating delete also failed. It needs an operator.
type OrphanedCredential struct {
	Username          string     `json:"username" bson:"username"`
	Role              Role       `json:"role" bson:"role"`
	Cause             string     `json:"cause" bson:"cause"`
	CompensationError string     `json:"compensation_error" bson:"compensation_error"`
	DetectedAt        time.Time  `json:"detected_at" bson:"detected_at"`
	ResolvedAt        *time.Time `json:"resolved_at,omitempty" bson:"resolved_at,omitempty"`
}
