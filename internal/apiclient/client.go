// Package apiclient is the typed HTTP client for the IronDoc API.
//
// Every call sends JSON, attaches the stored bearer token when one exists and
// tags the request with an X-Request-ID. Failures come back in three shapes:
// a wrapped transport error, an *APIError for rejected requests, or an error
// wrapping ErrMalformedResponse for payloads that do not match the schema.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"irondoc/client/internal/model"
	"irondoc/client/internal/util"
)

// TokenStore is where the bearer token is read from and written to.
type TokenStore interface {
	Token(ctx context.Context) (string, error)
	SetToken(ctx context.Context, token string) error
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenStore
	logger     *zap.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New builds a client rooted at baseURL, e.g. "http://localhost:5000/api".
// The default http.Client has no timeout; cancellation comes from ctx.
func New(baseURL string, tokens TokenStore, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		tokens:     tokens,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AuthResult is the normalized outcome of login and register.
type AuthResult struct {
	Success bool
	User    *model.User
	Token   string
	Message string
}

// DocumentPatch carries the fields of an update; nil fields are omitted.
type DocumentPatch struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
}

type Health struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type envelope map[string]json.RawMessage

func (c *Client) Register(ctx context.Context, name, email, password, role string) (AuthResult, error) {
	body := map[string]string{"name": name, "email": email, "password": password, "role": role}
	return c.authenticate(ctx, "/auth/register", body)
}

func (c *Client) Login(ctx context.Context, email, password string) (AuthResult, error) {
	body := map[string]string{"email": email, "password": password}
	return c.authenticate(ctx, "/auth/login", body)
}

func (c *Client) authenticate(ctx context.Context, path string, body any) (AuthResult, error) {
	env, err := c.do(ctx, http.MethodPost, path, body)
	if err != nil {
		return AuthResult{}, err
	}

	var result AuthResult
	if raw, ok := env["user"]; ok && !isNull(raw) {
		var user model.User
		if err := json.Unmarshal(raw, &user); err != nil {
			return AuthResult{}, malformed("decode user: %v", err)
		}
		if err := user.Validate(); err != nil {
			return AuthResult{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
		result.User = &user
	}
	if err := optionalString(env, "token", &result.Token); err != nil {
		return AuthResult{}, err
	}
	if err := optionalString(env, "message", &result.Message); err != nil {
		return AuthResult{}, err
	}
	result.Success = result.User != nil || result.Token != ""
	if explicit, ok := successFlag(env); ok {
		result.Success = explicit
	}

	if result.Token != "" && c.tokens != nil {
		if err := c.tokens.SetToken(ctx, result.Token); err != nil {
			return AuthResult{}, fmt.Errorf("store token: %w", err)
		}
	}
	return result, nil
}

func (c *Client) Me(ctx context.Context) (model.User, error) {
	env, err := c.do(ctx, http.MethodGet, "/auth/me", nil)
	if err != nil {
		return model.User{}, err
	}
	var user model.User
	if err := required(env, "user", &user); err != nil {
		return model.User{}, err
	}
	if err := user.Validate(); err != nil {
		return model.User{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return user, nil
}

func (c *Client) ListDocuments(ctx context.Context) ([]model.Document, error) {
	env, err := c.do(ctx, http.MethodGet, "/documents", nil)
	if err != nil {
		return nil, err
	}
	var docs []model.Document
	if err := required(env, "documents", &docs); err != nil {
		return nil, err
	}
	for _, doc := range docs {
		if err := doc.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
	}
	if docs == nil {
		docs = []model.Document{}
	}
	return docs, nil
}

func (c *Client) GetDocument(ctx context.Context, id model.ID) (model.Document, error) {
	return c.document(ctx, http.MethodGet, documentPath(id), nil)
}

func (c *Client) CreateDocument(ctx context.Context, title, content string) (model.Document, error) {
	body := map[string]string{"title": title, "content": content}
	return c.document(ctx, http.MethodPost, "/documents", body)
}

func (c *Client) UpdateDocument(ctx context.Context, id model.ID, patch DocumentPatch) (model.Document, error) {
	return c.document(ctx, http.MethodPut, documentPath(id), patch)
}

func (c *Client) DeleteDocument(ctx context.Context, id model.ID) error {
	_, err := c.do(ctx, http.MethodDelete, documentPath(id), nil)
	return err
}

func (c *Client) RestoreRevision(ctx context.Context, docID, revID model.ID) (model.Document, error) {
	path := documentPath(docID) + "/restore/" + url.PathEscape(revID.String())
	return c.document(ctx, http.MethodPost, path, nil)
}

func (c *Client) ListUsers(ctx context.Context) ([]model.User, error) {
	env, err := c.do(ctx, http.MethodGet, "/users", nil)
	if err != nil {
		return nil, err
	}
	var users []model.User
	if err := required(env, "users", &users); err != nil {
		return nil, err
	}
	for _, user := range users {
		if err := user.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
	}
	if users == nil {
		users = []model.User{}
	}
	return users, nil
}

func (c *Client) Health(ctx context.Context) (Health, error) {
	env, err := c.do(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return Health{}, err
	}
	var health Health
	if err := required(env, "status", &health.Status); err != nil {
		return Health{}, err
	}
	if err := optionalString(env, "message", &health.Message); err != nil {
		return Health{}, err
	}
	return health, nil
}

func (c *Client) document(ctx context.Context, method, path string, body any) (model.Document, error) {
	env, err := c.do(ctx, method, path, body)
	if err != nil {
		return model.Document{}, err
	}
	var doc model.Document
	if err := required(env, "document", &doc); err != nil {
		return model.Document{}, err
	}
	if err := doc.Validate(); err != nil {
		return model.Document{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return doc, nil
}

func documentPath(id model.ID) string {
	return "/documents/" + url.PathEscape(id.String())
}

// do sends one request and returns the decoded JSON object. Non-2xx
// statuses and success:false envelopes become *APIError.
func (c *Client) do(ctx context.Context, method, path string, body any) (envelope, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	requestID := util.NewID("")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, fmt.Errorf("read token: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("api request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("api request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.String("request_id", requestID),
	)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: read body: %w", method, path, err)
	}

	env, decodeErr := decodeEnvelope(raw)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{Status: resp.StatusCode, Message: serverMessage(env)}
	}
	if decodeErr != nil {
		return nil, decodeErr
	}
	if ok, present := successFlag(env); present && !ok && !isAuthPath(path) {
		return nil, &APIError{Status: resp.StatusCode, Message: serverMessage(env)}
	}
	return env, nil
}

func isAuthPath(path string) bool {
	return strings.HasPrefix(path, "/auth/login") || strings.HasPrefix(path, "/auth/register")
}

func decodeEnvelope(raw []byte) (envelope, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return envelope{}, nil
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, malformed("response is not a JSON object: %v", err)
	}
	if env == nil {
		env = envelope{}
	}
	return env, nil
}

func serverMessage(env envelope) string {
	for _, key := range []string{"message", "error"} {
		var msg string
		if raw, ok := env[key]; ok && json.Unmarshal(raw, &msg) == nil && msg != "" {
			return msg
		}
	}
	return fallbackMessage
}

func successFlag(env envelope) (bool, bool) {
	raw, ok := env["success"]
	if !ok {
		return false, false
	}
	var flag bool
	if err := json.Unmarshal(raw, &flag); err != nil {
		return false, false
	}
	return flag, true
}

func required(env envelope, key string, dst any) error {
	raw, ok := env[key]
	if !ok || isNull(raw) {
		return malformed("missing %q", key)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return malformed("decode %q: %v", key, err)
	}
	return nil
}

func optionalString(env envelope, key string, dst *string) error {
	raw, ok := env[key]
	if !ok || isNull(raw) {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return malformed("%q is not a string", key)
	}
	return nil
}

func isNull(raw json.RawMessage) bool {
	return len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
