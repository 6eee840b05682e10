package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"
	"github.com/pictoria/pictoria/internal/model"
)

// Common errors for API token repository operations.
var (
	ErrAPITokenNotFound = errors.New("API token not found")
)

// CreateAPIToken inserts a new API token into the database.
func (r *Repository) CreateAPIToken(ctx context.Context, token *model.APIToken) error {
	query := `
		INSERT INTO api_tokens (id, user_id, email, token_hash, token_prefix, scopes, rate_limit_tier, name, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.pool.Exec(ctx, query,
		token.ID,
		token.UserID,
		token.Email,
		token.TokenHash,
		token.TokenPrefix,
		pq.Array(token.Scopes),
		token.RateLimitTier,
		token.Name,
		token.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create API token: %w", err)
	}

	return nil
}

// GetAPITokenByID retrieves an API token by its ID.
func (r *Repository) GetAPITokenByID(ctx context.Context, id string) (*model.APIToken, error) {
	query := `
		SELECT id, user_id, email, token_hash, token_prefix, scopes, rate_limit_tier, name, revoked_at, last_used_at, created_at
		FROM api_tokens
		WHERE id = $1
	`

	return scanAPIToken(r.pool.QueryRow(ctx, query, id))
}

// GetAPITokensByPrefix retrieves all active API tokens matching a prefix.
// Used during authentication to find candidate tokens for verification.
func (r *Repository) GetAPITokensByPrefix(ctx context.Context, prefix string) ([]*model.APIToken, error) {
	query := `
		SELECT id, user_id, email, token_hash, token_prefix, scopes, rate_limit_tier, name, revoked_at, last_used_at, created_at
		FROM api_tokens
		WHERE token_prefix = $1 AND revoked_at IS NULL
	`

	rows, err := r.pool.Query(ctx, query, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to get API tokens by prefix: %w", err)
	}
	defer rows.Close()

	var tokens []*model.APIToken
	for rows.Next() {
		token, err := scanAPITokenFromRows(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan API token: %w", err)
		}
		tokens = append(tokens, token)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating API tokens: %w", err)
	}

	return tokens, nil
}

// ListAPITokensByUserID retrieves all API tokens for a user.
func (r *Repository) ListAPITokensByUserID(ctx context.Context, userID string) ([]*model.APIToken, error) {
	query := `
		SELECT id, user_id, email, token_hash, token_prefix, scopes, rate_limit_tier, name, revoked_at, last_used_at, created_at
		FROM api_tokens
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list API tokens: %w", err)
	}
	defer rows.Close()

	var tokens []*model.APIToken
	for rows.Next() {
		token, err := scanAPITokenFromRows(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan API token: %w", err)
		}
		tokens = append(tokens, token)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating API tokens: %w", err)
	}

	return tokens, nil
}

// RevokeAPIToken revokes an API token by setting revoked_at.
func (r *Repository) RevokeAPIToken(ctx context.Context, id string) error {
	query := `
		UPDATE api_tokens
		SET revoked_at = $2
		WHERE id = $1 AND revoked_at IS NULL
	`

	result, err := r.pool.Exec(ctx, query, id, time.Now())
	if err != nil {
		return fmt.Errorf("failed to revoke API token: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrAPITokenNotFound
	}

	return nil
}

// UpdateAPITokenLastUsed updates the last_used_at timestamp.
// Should be called asynchronously after successful authentication.
func (r *Repository) UpdateAPITokenLastUsed(ctx context.Context, id string) error {
	query := `
		UPDATE api_tokens
		SET last_used_at = $2
		WHERE id = $1
	`

	_, err := r.pool.Exec(ctx, query, id, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update API token last used: %w", err)
	}

	return nil
}

// scanAPIToken scans a single row into an APIToken model.
func scanAPIToken(row pgx.Row) (*model.APIToken, error) {
	var token model.APIToken
	var scopes []string

	err := row.Scan(
		&token.ID,
		&token.UserID,
		&token.Email,
		&token.TokenHash,
		&token.TokenPrefix,
		pq.Array(&scopes),
		&token.RateLimitTier,
		&token.Name,
		&token.RevokedAt,
		&token.LastUsedAt,
		&token.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAPITokenNotFound
		}
		return nil, fmt.Errorf("failed to scan API token: %w", err)
	}

	token.Scopes = scopes
	return &token, nil
}

// scanAPITokenFromRows scans a row from pgx.Rows into an APIToken model.
func scanAPITokenFromRows(rows pgx.Rows) (*model.APIToken, error) {
	var token model.APIToken
	var scopes []string

	err := rows.Scan(
		&token.ID,
		&token.UserID,
		&token.Email,
		&token.TokenHash,
		&token.TokenPrefix,
		pq.Array(&scopes),
		&token.RateLimitTier,
		&token.Name,
		&token.RevokedAt,
		&token.LastUsedAt,
		&token.CreatedAt,
	)

	if err != nil {
		return nil, err
	}

	token.Scopes = scopes
	return &token, nil
}
