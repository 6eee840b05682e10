package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/pictoria/pictoria/internal/auth"
	"github.com/pictoria/pictoria/internal/generation"
	"github.com/pictoria/pictoria/internal/handler/dto"
	"github.com/pictoria/pictoria/internal/metrics"
	"github.com/pictoria/pictoria/internal/middleware"
)

// maxOutputsPerRequest caps fan-out on a single generation call.
const maxOutputsPerRequest = 4

// GenerationHandler handles image generation endpoints.
type GenerationHandler struct {
	logger   *slog.Logger
	client   *generation.Client
	recorder metrics.Recorder
}

// NewGenerationHandler creates a new GenerationHandler.
func NewGenerationHandler(logger *slog.Logger, client *generation.Client, recorder metrics.Recorder) *GenerationHandler {
	return &GenerationHandler{
		logger:   logger.With("component", "handler.generation"),
		client:   client,
		recorder: recorder,
	}
}

// Generate handles POST /v1/generations.
// Generation is synchronous; the response carries the output image URLs
// and the caller decides which to save to the gallery.
func (h *GenerationHandler) Generate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := auth.UserIDFromContext(ctx)

	var req dto.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	if err := middleware.ValidatePrompt(req.Prompt); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_PROMPT", err.Error())
		return
	}
	if req.Model == "" {
		h.writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Model is required")
		return
	}
	if req.NumOutputs < 0 || req.NumOutputs > maxOutputsPerRequest {
		h.writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "num_outputs must be between 1 and 4")
		return
	}

	output, err := h.client.Generate(ctx, generation.Input{
		Prompt:            req.Prompt,
		Model:             req.Model,
		AspectRatio:       req.AspectRatio,
		Guidance:          req.Guidance,
		NumInferenceSteps: req.NumInferenceSteps,
		OutputFormat:      req.OutputFormat,
		OutputQuality:     req.OutputQuality,
		NumOutputs:        req.NumOutputs,
	})
	if err != nil {
		h.recorder.IncGenerationRequested("failed")
		h.logger.Error("generation failed", "user_id", userID, "model", req.Model, "error", err)
		h.writeError(w, http.StatusBadGateway, "GENERATION_FAILED", "Image generation failed")
		return
	}

	h.recorder.IncGenerationRequested("success")
	h.logger.Info("generation completed", "user_id", userID, "model", req.Model, "outputs", len(output))

	writeJSON(w, http.StatusOK, dto.GenerateResponse{
		Model:  req.Model,
		Prompt: req.Prompt,
		Output: output,
	})
}

// writeError writes a JSON error response.
func (h *GenerationHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}
