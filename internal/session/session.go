// Package session keeps the per-browser identity slots: the selected tenant
// with its access key and the administrator bearer token. Both slots may be
// filled at once; the administrator slot wins when building requests.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned by a Store when the session is unknown or expired.
var ErrNotFound = errors.New("session not found")

// Principal is the identity a backend request is made under.
type Principal interface {
	isPrincipal()
}

// Admin authenticates with a bearer token only.
type Admin struct {
	Token string
	User  string
}

// Tenant authenticates with the tenant name and its access key.
type Tenant struct {
	Name string
	Key  string
}

// Anonymous sends no identity headers.
type Anonymous struct{}

func (Admin) isPrincipal()     {}
func (Tenant) isPrincipal()    {}
func (Anonymous) isPrincipal() {}

// State is the stored content of one session.
type State struct {
	ID               string
	CurrentTenant    string
	CurrentTenantKey string
	AdminToken       string
	AdminUser        string
}

// New returns an empty state with a fresh random id.
func New() *State {
	return &State{ID: uuid.NewString()}
}

// Principal resolves which identity requests are made with. An admin token
// takes precedence over tenant credentials.
func (s *State) Principal() Principal {
	if s == nil {
		return Anonymous{}
	}
	if s.AdminToken != "" {
		return Admin{Token: s.AdminToken, User: s.AdminUser}
	}
	if s.CurrentTenant != "" && s.CurrentTenantKey != "" {
		return Tenant{Name: s.CurrentTenant, Key: s.CurrentTenantKey}
	}
	return Anonymous{}
}

func (s *State) IsAdmin() bool   { return s != nil && s.AdminToken != "" }
func (s *State) HasTenant() bool { return s != nil && s.CurrentTenant != "" && s.CurrentTenantKey != "" }

func (s *State) SetTenant(name, key string) {
	s.CurrentTenant = name
	s.CurrentTenantKey = key
}

// ClearTenant drops the tenant slot; the admin slot is left untouched.
func (s *State) ClearTenant() {
	s.CurrentTenant = ""
	s.CurrentTenantKey = ""
}

func (s *State) SetAdmin(token, user string) {
	s.AdminToken = token
	s.AdminUser = user
}

// ClearAdmin drops the admin slot; a selected tenant stays selected.
func (s *State) ClearAdmin() {
	s.AdminToken = ""
	s.AdminUser = ""
}

// Empty reports whether the session holds no identity at all.
func (s *State) Empty() bool {
	return s.CurrentTenant == "" && s.CurrentTenantKey == "" && s.AdminToken == "" && s.AdminUser == ""
}

// Store persists session states.
type Store interface {
	Load(ctx context.Context, id string) (*State, error)
	Save(ctx context.Context, s *State, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

type ctxKey struct{}

// WithState attaches the request's session to ctx.
func WithState(ctx context.Context, s *State) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session attached by WithState, or nil.
func FromContext(ctx context.Context) *State {
	s, _ := ctx.Value(ctxKey{}).(*State)
	return s
}
