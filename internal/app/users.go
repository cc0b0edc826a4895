package app

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"irondoc/client/internal/access"
	"irondoc/client/internal/model"
	"irondoc/client/internal/rbac"
)

const usersFallbackNotice = "Failed to load users from server. Showing local account only."

type usersAPI interface {
	ListUsers(ctx context.Context) ([]model.User, error)
}

type avatarSource interface {
	AvatarOverride(ctx context.Context, email string) (string, error)
}

// UserDirectory is the admin view of every account.
type UserDirectory struct {
	api     usersAPI
	avatars avatarSource
	logger  *zap.Logger
}

func NewUserDirectory(api usersAPI, avatars avatarSource, logger *zap.Logger) *UserDirectory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserDirectory{api: api, avatars: avatars, logger: logger}
}

// Roster is the loaded user list. Notice is set when the server list could
// not be fetched and Users holds only the viewer.
type Roster struct {
	Users  []model.User
	Notice string
}

// RoleGroup is one section of the directory.
type RoleGroup struct {
	Role  rbac.Role
	Users []model.User
}

// Load fetches the user list for viewer, who must be an admin. Local avatar
// overrides fill in users that have none, and viewer is always included.
func (d *UserDirectory) Load(ctx context.Context, viewer model.User) (Roster, error) {
	if !access.CanListUsers(viewer) {
		return Roster{}, ErrForbidden
	}

	self := viewer
	if self.AvatarURL == "" {
		self.AvatarURL = d.override(ctx, self.Email)
	}

	users, err := d.api.ListUsers(ctx)
	if err != nil {
		d.logger.Warn("list users failed", zap.Error(err))
		return Roster{Users: []model.User{self}, Notice: usersFallbackNotice}, nil
	}

	out := make([]model.User, len(users))
	copy(out, users)
	found := false
	for i := range out {
		if out[i].AvatarURL == "" {
			out[i].AvatarURL = d.override(ctx, out[i].Email)
		}
		if strings.EqualFold(out[i].Email, viewer.Email) {
			found = true
			if out[i].AvatarURL == "" {
				out[i].AvatarURL = self.AvatarURL
			}
		}
	}
	if !found {
		out = append([]model.User{self}, out...)
	}
	return Roster{Users: out}, nil
}

func (d *UserDirectory) override(ctx context.Context, email string) string {
	if d.avatars == nil || email == "" {
		return ""
	}
	url, err := d.avatars.AvatarOverride(ctx, email)
	if err != nil {
		d.logger.Debug("avatar override lookup failed", zap.String("email", email), zap.Error(err))
		return ""
	}
	return url
}

// FilterUsers keeps users whose name, email or role contains query,
// case-insensitively.
func FilterUsers(users []model.User, query string) []model.User {
	needle := strings.ToLower(strings.TrimSpace(query))
	out := make([]model.User, 0, len(users))
	for _, u := range users {
		if needle == "" ||
			strings.Contains(strings.ToLower(u.Name), needle) ||
			strings.Contains(strings.ToLower(u.Email), needle) ||
			strings.Contains(strings.ToLower(string(u.Role)), needle) {
			out = append(out, u)
		}
	}
	return out
}

// GroupByRole splits users into admin, editor and viewer sections in that
// order. Unknown roles are listed as viewers.
func GroupByRole(users []model.User) []RoleGroup {
	groups := []RoleGroup{
		{Role: rbac.RoleAdmin, Users: []model.User{}},
		{Role: rbac.RoleEditor, Users: []model.User{}},
		{Role: rbac.RoleViewer, Users: []model.User{}},
	}
	for _, u := range users {
		for i := range groups {
			if groups[i].Role == rbac.Normalize(string(u.Role)) {
				groups[i].Users = append(groups[i].Users, u)
				break
			}
		}
	}
	return groups
}
