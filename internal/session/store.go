// Package session keeps the signed-in identity and per-device profile
// overrides in a kv.Store.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"irondoc/client/internal/auth"
	"irondoc/client/internal/kv"
	"irondoc/client/internal/model"
)

const (
	keyToken     = "token"
	keyUser      = "user"
	prefixName   = "name:"
	prefixAvatar = "avatar:"
)

// Profile is what the client displays for a user after local overrides.
type Profile struct {
	DisplayName string
	AvatarURL   string
}

// ttlSetter is implemented by backends that can expire keys themselves.
type ttlSetter interface {
	SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error
}

type Store struct {
	kv  kv.Store
	now func() time.Time
}

func New(store kv.Store) *Store {
	return &Store{kv: store, now: time.Now}
}

func (s *Store) Token(ctx context.Context) (string, error) {
	token, _, err := s.kv.Get(ctx, keyToken)
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}
	return token, nil
}

// SetToken stores token, or removes it when token is empty. When the backend
// supports expiry and the token carries an exp claim, the key expires with it.
func (s *Store) SetToken(ctx context.Context, token string) error {
	if token == "" {
		return s.kv.Remove(ctx, keyToken)
	}
	if setter, ok := s.kv.(ttlSetter); ok {
		if exp, ok := auth.ExpiresAt(token); ok {
			if ttl := exp.Sub(s.now()); ttl > 0 {
				return setter.SetWithTTL(ctx, keyToken, token, ttl)
			}
		}
	}
	if err := s.kv.Set(ctx, keyToken, token); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

// IsAuthenticated reports whether a usable token is stored.
func (s *Store) IsAuthenticated(ctx context.Context) bool {
	token, err := s.Token(ctx)
	if err != nil || token == "" {
		return false
	}
	return auth.Check(token, s.now()) == nil
}

func (s *Store) SaveUser(ctx context.Context, user model.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	if err := s.kv.Set(ctx, keyUser, string(raw)); err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

// CurrentUser returns the identity snapshot saved at login.
func (s *Store) CurrentUser(ctx context.Context) (model.User, bool, error) {
	raw, ok, err := s.kv.Get(ctx, keyUser)
	if err != nil {
		return model.User{}, false, fmt.Errorf("read user: %w", err)
	}
	if !ok || raw == "" {
		return model.User{}, false, nil
	}
	var user model.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return model.User{}, false, fmt.Errorf("decode user: %w", err)
	}
	return user, true, nil
}

// Load applies the overrides saved for user's email on top of the server
// values. The exact email wins over its lower-cased form.
func (s *Store) Load(ctx context.Context, user model.User) (Profile, error) {
	profile := Profile{DisplayName: user.Name, AvatarURL: user.AvatarURL}
	if user.Email == "" {
		return profile, nil
	}
	name, err := s.lookup(ctx, prefixName, user.Email)
	if err != nil {
		return Profile{}, err
	}
	if name != "" {
		profile.DisplayName = name
	}
	avatar, err := s.lookup(ctx, prefixAvatar, user.Email)
	if err != nil {
		return Profile{}, err
	}
	if avatar != "" {
		profile.AvatarURL = avatar
	}
	return profile, nil
}

// Overrides returns only the values saved on this device for email, without
// the server values Load falls back to.
func (s *Store) Overrides(ctx context.Context, email string) (Profile, error) {
	if email == "" {
		return Profile{}, nil
	}
	name, err := s.lookup(ctx, prefixName, email)
	if err != nil {
		return Profile{}, err
	}
	avatar, err := s.lookup(ctx, prefixAvatar, email)
	if err != nil {
		return Profile{}, err
	}
	return Profile{DisplayName: name, AvatarURL: avatar}, nil
}

// AvatarOverride returns the avatar saved on this device for email, if any.
func (s *Store) AvatarOverride(ctx context.Context, email string) (string, error) {
	if email == "" {
		return "", nil
	}
	return s.lookup(ctx, prefixAvatar, email)
}

// keys lists the override keys read for email, exact form first.
func keys(prefix, email string) []string {
	out := []string{prefix + email}
	if lower := strings.ToLower(email); lower != email {
		out = append(out, prefix+lower)
	}
	return out
}

func (s *Store) lookup(ctx context.Context, prefix, email string) (string, error) {
	for _, key := range keys(prefix, email) {
		value, ok, err := s.kv.Get(ctx, key)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", key, err)
		}
		if ok && value != "" {
			return value, nil
		}
	}
	return "", nil
}

// Save writes non-empty profile fields as overrides for user's email and
// removes every override Load would read for empty ones.
func (s *Store) Save(ctx context.Context, user model.User, profile Profile) error {
	if user.Email == "" {
		return fmt.Errorf("%w: profile owner has no email", model.ErrInvalid)
	}
	if err := s.put(ctx, prefixName, user.Email, strings.TrimSpace(profile.DisplayName)); err != nil {
		return err
	}
	return s.put(ctx, prefixAvatar, user.Email, profile.AvatarURL)
}

func (s *Store) put(ctx context.Context, prefix, email, value string) error {
	if value == "" {
		return s.remove(ctx, keys(prefix, email)...)
	}
	key := prefix + email
	if err := s.kv.Set(ctx, key, value); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

func (s *Store) remove(ctx context.Context, names ...string) error {
	for _, key := range names {
		if err := s.kv.Remove(ctx, key); err != nil {
			return fmt.Errorf("remove %s: %w", key, err)
		}
	}
	return nil
}

// ClearProfile removes the overrides saved for one email, including those
// stored under its lower-cased form.
func (s *Store) ClearProfile(ctx context.Context, email string) error {
	if err := s.remove(ctx, keys(prefixName, email)...); err != nil {
		return err
	}
	return s.remove(ctx, keys(prefixAvatar, email)...)
}

// Logout forgets the token and identity snapshot. Profile overrides stay.
func (s *Store) Logout(ctx context.Context) error {
	if err := s.kv.Remove(ctx, keyToken); err != nil {
		return fmt.Errorf("remove token: %w", err)
	}
	if err := s.kv.Remove(ctx, keyUser); err != nil {
		return fmt.Errorf("remove user: %w", err)
	}
	return nil
}
