package rbac

import "testing"

func TestCan(t *testing.T) {
	cases := []struct {
		name   string
		role   Role
		action Action
		allow  bool
	}{
		{name: "viewer read", role: RoleViewer, action: ActionRead, allow: true},
		{name: "viewer create", role: RoleViewer, action: ActionCreate, allow: false},
		{name: "viewer own history", role: RoleViewer, action: ActionHistoryOwn, allow: false},
		{name: "editor create", role: RoleEditor, action: ActionCreate, allow: true},
		{name: "editor own history", role: RoleEditor, action: ActionHistoryOwn, allow: true},
		{name: "editor all history", role: RoleEditor, action: ActionHistoryAll, allow: false},
		{name: "editor edit any", role: RoleEditor, action: ActionEditAny, allow: false},
		{name: "editor list users", role: RoleEditor, action: ActionListUsers, allow: false},
		{name: "admin edit any", role: RoleAdmin, action: ActionEditAny, allow: true},
		{name: "admin list users", role: RoleAdmin, action: ActionListUsers, allow: true},
		{name: "unknown role read", role: Role("owner"), action: ActionRead, allow: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Can(tc.role, tc.action); got != tc.allow {
				t.Fatalf("Can(%q, %q) = %v, want %v", tc.role, tc.action, got, tc.allow)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	cases := map[string]Role{
		"admin":  RoleAdmin,
		"editor": RoleEditor,
		"viewer": RoleViewer,
		"":       RoleViewer,
		"Admin":  RoleViewer,
		"owner":  RoleViewer,
	}
	for input, want := range cases {
		if got := Normalize(input); got != want {
			t.Fatalf("Normalize(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestValid(t *testing.T) {
	if !Valid("editor") {
		t.Fatal("expected editor to be valid")
	}
	if Valid("commenter") {
		t.Fatal("expected commenter to be invalid")
	}
}
