package domain

import (
	"strings"
	"time"
)

// AccessKeyLength is the length of the shared secret issued to each tenant.
const AccessKeyLength = 8

// Tenant is a company account with isolated data on the backend.
type Tenant struct {
	ID                  int64      `json:"id"`
	Name                string     `json:"name"`
	DatabaseName        string     `json:"database_name"`
	AccessKey           string     `json:"access_key"`
	IsActive            bool       `json:"is_active"`
	MarkedForDeletion   bool       `json:"marked_for_deletion"`
	MarkedForDeletionAt *time.Time `json:"marked_for_deletion_at"`
	DatabaseExists      bool       `json:"database_exists"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// MaskedKey returns the first four characters of the access key followed by
// asterisks. The full key is only shown on the explicit reveal page.
func (t Tenant) MaskedKey() string {
	if t.AccessKey == "" {
		return "N/A"
	}
	visible := t.AccessKey
	if len(visible) > 4 {
		visible = visible[:4]
	}
	return visible + strings.Repeat("*", 4)
}

// TenantLogin is the body of POST /tenants/login.
type TenantLogin struct {
	Name      string `json:"name"`
	AccessKey string `json:"access_key"`
}

// TenantLoginResponse is returned by a successful tenant login.
type TenantLoginResponse struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	DatabaseName   string    `json:"database_name"`
	IsActive       bool      `json:"is_active"`
	DatabaseExists bool      `json:"database_exists"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// CreateTenant is the body of POST /tenants.
type CreateTenant struct {
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
}

// AdminUser is the administrator profile returned by the auth endpoints.
type AdminUser struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AdminLogin is the body of POST /auth/admin/login.
type AdminLogin struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AdminLoginResponse carries the bearer token issued to an administrator.
type AdminLoginResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	Admin       AdminUser `json:"admin"`
}

// MessageResponse is the generic {"message": "..."} body.
type MessageResponse struct {
	Message string `json:"message"`
}
