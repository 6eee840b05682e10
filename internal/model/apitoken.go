package model

import (
	"slices"
	"time"
)

// Scope constants for API token authorization.
const (
	ScopeRead  = "read"
	ScopeWrite = "write"
	ScopeAdmin = "admin"
)

// ValidScopes contains all valid scope values.
var ValidScopes = []string{ScopeRead, ScopeWrite, ScopeAdmin}

// RateLimitTier constants.
const (
	TierFree      = "free"
	TierPro       = "pro"
	TierUnlimited = "unlimited"
)

// RateLimitConfig defines rate limit parameters per tier.
type RateLimitConfig struct {
	RequestsPerMinute int
	Burst             int
}

// TierConfigs maps tier names to their rate limit configurations.
// A zero RequestsPerMinute means unlimited.
var TierConfigs = map[string]RateLimitConfig{
	TierFree:      {RequestsPerMinute: 60, Burst: 10},
	TierPro:       {RequestsPerMinute: 600, Burst: 50},
	TierUnlimited: {RequestsPerMinute: 0, Burst: 0},
}

// APIToken represents an API token entity. The plaintext token is shown
// once at creation; only the Argon2id hash is stored.
type APIToken struct {
	ID            string     `json:"id"`
	UserID        string     `json:"user_id"`
	Email         string     `json:"email,omitempty"`
	TokenHash     string     `json:"-"`
	TokenPrefix   string     `json:"token_prefix"`
	Scopes        []string   `json:"scopes"`
	RateLimitTier string     `json:"rate_limit_tier"`
	Name          string     `json:"name,omitempty"`
	RevokedAt     *time.Time `json:"revoked_at,omitempty"`
	LastUsedAt    *time.Time `json:"last_used_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// IsRevoked returns true if the token has been revoked.
func (t *APIToken) IsRevoked() bool {
	return t.RevokedAt != nil
}

// HasScope checks if the token has a specific scope.
// Admin scope implies all other scopes.
func (t *APIToken) HasScope(scope string) bool {
	if slices.Contains(t.Scopes, ScopeAdmin) {
		return true
	}
	return slices.Contains(t.Scopes, scope)
}

// GetRateLimitConfig returns the rate limit configuration for this token.
func (t *APIToken) GetRateLimitConfig() RateLimitConfig {
	if config, ok := TierConfigs[t.RateLimitTier]; ok {
		return config
	}
	return TierConfigs[TierFree]
}

// AuthContext holds authenticated request context.
// This is injected into the request context by auth middleware.
type AuthContext struct {
	TokenID       string
	TokenPrefix   string
	UserID        string
	Email         string
	Scopes        []string
	RateLimitTier string
}

// HasScope checks if the auth context has a specific scope.
func (a *AuthContext) HasScope(scope string) bool {
	if slices.Contains(a.Scopes, ScopeAdmin) {
		return true
	}
	return slices.Contains(a.Scopes, scope)
}

// APITokenCreateRequest represents a request to create a new API token.
type APITokenCreateRequest struct {
	Name   string   `json:"name,omitempty"`
	Scopes []string `json:"scopes"`
}

// APITokenResponse represents an API token without secrets.
type APITokenResponse struct {
	ID            string     `json:"id"`
	Name          string     `json:"name,omitempty"`
	TokenPrefix   string     `json:"token_prefix"`
	Scopes        []string   `json:"scopes"`
	RateLimitTier string     `json:"rate_limit_tier"`
	CreatedAt     time.Time  `json:"created_at"`
	LastUsedAt    *time.Time `json:"last_used_at,omitempty"`
	Revoked       bool       `json:"revoked"`
}

// ToResponse converts an APIToken to APITokenResponse.
func (t *APIToken) ToResponse() APITokenResponse {
	return APITokenResponse{
		ID:            t.ID,
		Name:          t.Name,
		TokenPrefix:   t.TokenPrefix,
		Scopes:        t.Scopes,
		RateLimitTier: t.RateLimitTier,
		CreatedAt:     t.CreatedAt,
		LastUsedAt:    t.LastUsedAt,
		Revoked:       t.IsRevoked(),
	}
}

// APITokenCreateResponse includes the plaintext token (shown only once).
type APITokenCreateResponse struct {
	ID            string    `json:"id"`
	Token         string    `json:"token"`
	Name          string    `json:"name,omitempty"`
	TokenPrefix   string    `json:"token_prefix"`
	Scopes        []string  `json:"scopes"`
	RateLimitTier string    `json:"rate_limit_tier"`
	CreatedAt     time.Time `json:"created_at"`
}
