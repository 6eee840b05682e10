package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oklog/ulid/v2"

	"github.com/pictoria/pictoria/internal/auth"
	"github.com/pictoria/pictoria/internal/cache"
	"github.com/pictoria/pictoria/internal/handler/dto"
	"github.com/pictoria/pictoria/internal/model"
	"github.com/pictoria/pictoria/internal/repository"
)

// APITokenHandler handles API token management endpoints.
type APITokenHandler struct {
	logger *slog.Logger
	repo   *repository.Repository
	cache  *cache.Cache
}

// NewAPITokenHandler creates a new APITokenHandler.
func NewAPITokenHandler(logger *slog.Logger, repo *repository.Repository, c *cache.Cache) *APITokenHandler {
	return &APITokenHandler{
		logger: logger.With("component", "handler.apitoken"),
		repo:   repo,
		cache:  c,
	}
}

// CreateAPIToken handles POST /v1/api-tokens
func (h *APITokenHandler) CreateAPIToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	authCtx := auth.AuthFromContext(ctx)
	if authCtx == nil {
		h.writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	var req model.APITokenCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	for _, scope := range req.Scopes {
		if !slices.Contains(model.ValidScopes, scope) {
			h.writeError(w, http.StatusBadRequest, "INVALID_SCOPE",
				"Invalid scope: "+scope+". Valid scopes: read, write, admin")
			return
		}
	}

	// Default to read scope if none provided
	if len(req.Scopes) == 0 {
		req.Scopes = []string{model.ScopeRead}
	}

	generated, err := auth.GenerateAPIToken(auth.EnvLive)
	if err != nil {
		h.logger.Error("failed to generate API token", "error", err)
		h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to generate API token")
		return
	}

	token := &model.APIToken{
		ID:            ulid.Make().String(),
		UserID:        authCtx.UserID,
		Email:         authCtx.Email,
		TokenHash:     generated.Hash,
		TokenPrefix:   generated.Prefix,
		Scopes:        req.Scopes,
		RateLimitTier: model.TierFree,
		Name:          req.Name,
		CreatedAt:     time.Now(),
	}

	if err := h.repo.CreateAPIToken(ctx, token); err != nil {
		h.logger.Error("failed to create API token", "error", err)
		h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create API token")
		return
	}

	h.logger.Info("API token created",
		slog.String("token_id", token.ID),
		slog.String("token_prefix", token.TokenPrefix),
		slog.String("user_id", token.UserID),
	)

	// The plaintext token is shown once only.
	writeJSON(w, http.StatusCreated, model.APITokenCreateResponse{
		ID:            token.ID,
		Token:         generated.Plaintext,
		Name:          token.Name,
		TokenPrefix:   token.TokenPrefix,
		Scopes:        token.Scopes,
		RateLimitTier: token.RateLimitTier,
		CreatedAt:     token.CreatedAt,
	})
}

// ListAPITokens handles GET /v1/api-tokens
func (h *APITokenHandler) ListAPITokens(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	authCtx := auth.AuthFromContext(ctx)
	if authCtx == nil {
		h.writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	tokens, err := h.repo.ListAPITokensByUserID(ctx, authCtx.UserID)
	if err != nil {
		h.logger.Error("failed to list API tokens", "error", err)
		h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list API tokens")
		return
	}

	responses := make([]model.APITokenResponse, 0, len(tokens))
	for _, t := range tokens {
		responses = append(responses, t.ToResponse())
	}

	writeJSON(w, http.StatusOK, map[string]any{"tokens": responses})
}

// RevokeAPIToken handles DELETE /v1/api-tokens/{token_id}
func (h *APITokenHandler) RevokeAPIToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	authCtx := auth.AuthFromContext(ctx)
	if authCtx == nil {
		h.writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	tokenID := chi.URLParam(r, "token_id")
	if tokenID == "" {
		h.writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Token ID is required")
		return
	}

	token, err := h.repo.GetAPITokenByID(ctx, tokenID)
	if err != nil {
		// Return 404 for both not found and already revoked (security)
		h.writeError(w, http.StatusNotFound, "TOKEN_NOT_FOUND", "API token not found or already revoked")
		return
	}

	if token.UserID != authCtx.UserID {
		// Return 404 to prevent enumeration
		h.writeError(w, http.StatusNotFound, "TOKEN_NOT_FOUND", "API token not found or already revoked")
		return
	}

	if token.IsRevoked() {
		h.writeError(w, http.StatusNotFound, "TOKEN_NOT_FOUND", "API token not found or already revoked")
		return
	}

	if err := h.repo.RevokeAPIToken(ctx, tokenID); err != nil {
		h.logger.Error("failed to revoke API token", "error", err)
		h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to revoke API token")
		return
	}

	// Drop any cached auth context so the token stops working before the
	// cache TTL would have expired it.
	if err := h.cache.DeleteAuthContext(ctx, tokenID); err != nil {
		h.logger.Warn("failed to evict cached auth context", "token_id", tokenID, "error", err)
	}

	h.logger.Info("API token revoked",
		slog.String("token_id", tokenID),
		slog.String("user_id", authCtx.UserID),
	)

	w.WriteHeader(http.StatusNoContent)
}

// writeError writes a JSON error response.
func (h *APITokenHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}
