package rbac

type Role string
type Action string

const (
	RoleViewer Role = "viewer"
	RoleEditor Role = "editor"
	RoleAdmin  Role = "admin"
)

const (
	ActionRead Action = "read"
	// ActionCreate covers creating new documents.
	ActionCreate Action = "create"
	// ActionEditAny allows editing and deleting documents owned by others.
	ActionEditAny Action = "edit_any"
	// ActionHistoryOwn shows revisions authored by the acting user.
	ActionHistoryOwn Action = "history_own"
	// ActionHistoryAll shows every revision of a document.
	ActionHistoryAll Action = "history_all"
	ActionListUsers  Action = "list_users"
)

func Can(role Role, action Action) bool {
	switch role {
	case RoleAdmin:
		return true
	case RoleEditor:
		return action == ActionRead || action == ActionCreate || action == ActionHistoryOwn
	case RoleViewer:
		return action == ActionRead
	default:
		return false
	}
}

func Normalize(role string) Role {
	switch Role(role) {
	case RoleViewer, RoleEditor, RoleAdmin:
		return Role(role)
	default:
		return RoleViewer
	}
}

// Valid reports whether role is one of the known roles without normalizing it.
func Valid(role string) bool {
	switch Role(role) {
	case RoleViewer, RoleEditor, RoleAdmin:
		return true
	default:
		return false
	}
}
