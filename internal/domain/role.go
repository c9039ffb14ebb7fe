package domain

// Role identifies the kind of caller acting on the system. Identity is
// established upstream of this service; roles arrive with the request.
type Role string

const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
	RoleAdmin Role = "admin"
)

// ValidRole reports whether the value is a known role.
func ValidRole(r Role) bool {
	return r == RoleUser || r == RoleAgent || r == RoleAdmin
}

// AuditActorForRole maps a caller role onto the audit actor vocabulary.
func AuditActorForRole(r Role) AuditActor {
	switch r {
	case RoleAgent:
		return ActorAgent
	case RoleAdmin:
		return ActorAdmin
	default:
		return ActorUser
	}
}
