package app

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"irondoc/client/internal/apiclient"
	"irondoc/client/internal/model"
	"irondoc/client/internal/rbac"
)

const minPasswordLength = 6

type authAPI interface {
	Login(ctx context.Context, email, password string) (apiclient.AuthResult, error)
	Register(ctx context.Context, name, email, password, role string) (apiclient.AuthResult, error)
	Me(ctx context.Context) (model.User, error)
}

type sessionStore interface {
	SaveUser(ctx context.Context, user model.User) error
	CurrentUser(ctx context.Context) (model.User, bool, error)
	Logout(ctx context.Context) error
}

// Authenticator runs the sign-in, sign-up and sign-out flows against the API
// and records the resulting identity in the session store.
type Authenticator struct {
	api     authAPI
	session sessionStore
	logger  *zap.Logger
}

func NewAuthenticator(api authAPI, session sessionStore, logger *zap.Logger) *Authenticator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Authenticator{api: api, session: session, logger: logger}
}

// Login signs in and returns the identity confirmed by the server.
func (a *Authenticator) Login(ctx context.Context, email, password string) (model.User, error) {
	res, err := a.api.Login(ctx, strings.TrimSpace(email), password)
	if err != nil {
		return model.User{}, fmt.Errorf("login: %w", err)
	}
	if !res.Success {
		msg := res.Message
		if msg == "" {
			msg = "Login failed"
		}
		return model.User{}, domainError("LOGIN_FAILED", msg)
	}

	user, err := a.api.Me(ctx)
	if err != nil {
		if res.User == nil {
			if lerr := a.session.Logout(ctx); lerr != nil {
				a.logger.Warn("discard token after failed profile fetch", zap.Error(lerr))
			}
			return model.User{}, fmt.Errorf("load profile: %w", err)
		}
		a.logger.Warn("profile fetch failed, using login response", zap.Error(err))
		user = *res.User
	}
	if err := a.session.SaveUser(ctx, user); err != nil {
		return model.User{}, fmt.Errorf("save session: %w", err)
	}
	a.logger.Info("signed in", zap.String("email", user.Email), zap.String("role", string(user.Role)))
	return user, nil
}

// RegisterInput is the sign-up form.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Confirm  string
	Role     string
}

func (in RegisterInput) validate() error {
	if in.Password != in.Confirm {
		return validationError("Passwords do not match")
	}
	if len(in.Password) < minPasswordLength {
		return validationError(fmt.Sprintf("Password must be at least %d characters", minPasswordLength))
	}
	if strings.TrimSpace(in.Name) == "" {
		return validationError("Name is required")
	}
	if strings.TrimSpace(in.Email) == "" {
		return validationError("Email is required")
	}
	if in.Role != "" && !rbac.Valid(in.Role) {
		return validationError(fmt.Sprintf("Unknown role %q", in.Role))
	}
	return nil
}

// Register creates an account. It does not sign in; the caller logs in with
// the new credentials afterwards.
func (a *Authenticator) Register(ctx context.Context, in RegisterInput) (apiclient.AuthResult, error) {
	if err := in.validate(); err != nil {
		return apiclient.AuthResult{}, err
	}
	role := in.Role
	if role == "" {
		role = string(rbac.RoleViewer)
	}
	res, err := a.api.Register(ctx, strings.TrimSpace(in.Name), strings.TrimSpace(in.Email), in.Password, role)
	if err != nil {
		return apiclient.AuthResult{}, fmt.Errorf("register: %w", err)
	}
	if !res.Success {
		msg := res.Message
		if msg == "" {
			msg = "Registration failed"
		}
		return res, domainError("REGISTER_FAILED", msg)
	}
	return res, nil
}

// Current returns the stored identity, or ErrNotAuthenticated.
func (a *Authenticator) Current(ctx context.Context) (model.User, error) {
	user, ok, err := a.session.CurrentUser(ctx)
	if err != nil {
		return model.User{}, err
	}
	if !ok {
		return model.User{}, ErrNotAuthenticated
	}
	return user, nil
}

func (a *Authenticator) Logout(ctx context.Context) error {
	if err := a.session.Logout(ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}
