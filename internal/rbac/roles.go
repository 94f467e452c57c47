package rbac

// Role names. Keep these stable; they are part of auth/RBAC contracts.
const (
	RoleAdmin        = "admin"
	RoleViewer       = "viewer"
	RoleAgentRuntime = "agent_runtime" // voice runtime pushing call and live-call updates
)

func IsAdmin(role string) bool { return role == RoleAdmin }

func IsKnownRole(role string) bool {
	switch role {
	case RoleAdmin, RoleViewer, RoleAgentRuntime:
		return true
	default:
		return false
	}
}
