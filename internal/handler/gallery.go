package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pictoria/pictoria/internal/auth"
	"github.com/pictoria/pictoria/internal/cache"
	"github.com/pictoria/pictoria/internal/events"
	"github.com/pictoria/pictoria/internal/handler/dto"
	"github.com/pictoria/pictoria/internal/metrics"
	"github.com/pictoria/pictoria/internal/middleware"
	"github.com/pictoria/pictoria/internal/model"
	"github.com/pictoria/pictoria/internal/repository"
)

// GalleryHandler handles image gallery endpoints.
type GalleryHandler struct {
	logger    *slog.Logger
	repo      *repository.Repository
	cache     *cache.Cache
	publisher *events.Publisher
	recorder  metrics.Recorder
}

// NewGalleryHandler creates a new GalleryHandler.
func NewGalleryHandler(logger *slog.Logger, repo *repository.Repository, c *cache.Cache, publisher *events.Publisher, recorder metrics.Recorder) *GalleryHandler {
	return &GalleryHandler{
		logger:    logger.With("component", "handler.gallery"),
		repo:      repo,
		cache:     c,
		publisher: publisher,
		recorder:  recorder,
	}
}

// ListImages handles GET /v1/images.
// An optional ?tag= query narrows the result to images carrying the tag.
func (h *GalleryHandler) ListImages(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := auth.UserIDFromContext(ctx)

	tag := r.URL.Query().Get("tag")

	var (
		images []*model.ImageRecord
		err    error
	)
	if tag != "" {
		images, err = h.repo.ListImagesByTag(ctx, userID, tag)
	} else {
		images, err = h.repo.ListImages(ctx, userID)
	}
	if err != nil {
		h.logger.Error("failed to list images", "user_id", userID, "error", err)
		h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list images")
		return
	}

	writeJSON(w, http.StatusOK, dto.ToImageListResponse(images))
}

// GetImage handles GET /v1/images/{id}.
func (h *GalleryHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := auth.UserIDFromContext(ctx)

	id, ok := h.parseImageID(w, r)
	if !ok {
		return
	}

	img, err := h.repo.GetImageByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrImageNotFound) {
			h.writeError(w, http.StatusNotFound, "IMAGE_NOT_FOUND", "Image not found")
			return
		}
		h.logger.Error("failed to get image", "image_id", id, "error", err)
		h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to get image")
		return
	}

	writeJSON(w, http.StatusOK, dto.ToImageResponse(img))
}

// SaveImage handles POST /v1/images.
func (h *GalleryHandler) SaveImage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := auth.UserIDFromContext(ctx)

	var req dto.SaveImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	img, code, msg := h.saveOne(r, userID, req)
	if img == nil {
		status := http.StatusBadRequest
		if code == "INTERNAL_ERROR" {
			status = http.StatusInternalServerError
		}
		h.writeError(w, status, code, msg)
		return
	}

	writeJSON(w, http.StatusCreated, dto.ToImageResponse(img))
}

// SaveImageBatch handles POST /v1/images/batch.
// Each image is saved independently; the response is a per-item
// manifest so one rejected output never discards its siblings.
func (h *GalleryHandler) SaveImageBatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := auth.UserIDFromContext(ctx)

	var req dto.SaveImageBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	if len(req.Images) == 0 {
		h.writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "No images to save")
		return
	}

	resp := dto.SaveImageBatchResponse{
		Results: make([]dto.SaveItemResult, 0, len(req.Images)),
	}

	for i, item := range req.Images {
		img, _, msg := h.saveOne(r, userID, item)
		if img == nil {
			resp.Failed++
			resp.Results = append(resp.Results, dto.SaveItemResult{Index: i, Error: msg})
			continue
		}
		resp.Saved++
		resp.Results = append(resp.Results, dto.SaveItemResult{Index: i, Image: dto.ToImageResponse(img)})
	}

	status := http.StatusCreated
	if resp.Saved == 0 {
		status = http.StatusBadRequest
	} else if resp.Failed > 0 {
		status = http.StatusMultiStatus
	}

	writeJSON(w, status, resp)
}

// saveOne validates and persists a single image. Returns the saved
// record, or a nil record with an error code and message.
func (h *GalleryHandler) saveOne(r *http.Request, userID string, req dto.SaveImageRequest) (*model.ImageRecord, string, string) {
	ctx := r.Context()

	if err := middleware.ValidateImageURL(req.URL); err != nil {
		return nil, "INVALID_URL", err.Error()
	}
	if err := middleware.ValidatePrompt(req.Prompt); err != nil {
		return nil, "INVALID_PROMPT", err.Error()
	}
	if err := middleware.ValidateImageName(req.ImageName); err != nil {
		return nil, "INVALID_NAME", err.Error()
	}
	if err := middleware.ValidateTags(req.Tags); err != nil {
		return nil, "INVALID_TAGS", err.Error()
	}

	img := &model.ImageRecord{
		UserID:            userID,
		URL:               req.URL,
		Prompt:            req.Prompt,
		Model:             req.Model,
		AspectRatio:       req.AspectRatio,
		Guidance:          req.Guidance,
		NumInferenceSteps: req.NumInferenceSteps,
		OutputFormat:      req.OutputFormat,
		ImageName:         req.ImageName,
		Tags:              req.Tags,
	}

	if err := h.repo.InsertImage(ctx, img); err != nil {
		h.logger.Error("failed to save image", "user_id", userID, "error", err)
		return nil, "INTERNAL_ERROR", "Failed to save image"
	}

	h.recorder.IncImageSaved()
	h.publisher.PublishAsync(events.ImageEventPayload{
		UserID:  userID,
		ImageID: img.ID,
		Op:      events.OpSave,
		Tags:    img.Tags,
		At:      img.CreatedAt.UnixMilli(),
	})

	return img, "", ""
}

// UpdateImage handles PATCH /v1/images/{id}.
func (h *GalleryHandler) UpdateImage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := auth.UserIDFromContext(ctx)

	id, ok := h.parseImageID(w, r)
	if !ok {
		return
	}

	var req dto.UpdateImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	if req.ImageName != nil {
		if err := middleware.ValidateImageName(*req.ImageName); err != nil {
			h.writeError(w, http.StatusBadRequest, "INVALID_NAME", err.Error())
			return
		}
	}
	if req.Tags != nil {
		if err := middleware.ValidateTags(*req.Tags); err != nil {
			h.writeError(w, http.StatusBadRequest, "INVALID_TAGS", err.Error())
			return
		}
	}

	patch := model.ImagePatch{
		ImageName:  req.ImageName,
		Tags:       req.Tags,
		IsFavorite: req.IsFavorite,
	}
	if patch.IsEmpty() {
		h.writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "No fields to update")
		return
	}

	img, err := h.repo.UpdateImage(ctx, userID, id, patch)
	if err != nil {
		if errors.Is(err, repository.ErrImageNotFound) {
			h.writeError(w, http.StatusNotFound, "IMAGE_NOT_FOUND", "Image not found")
			return
		}
		h.logger.Error("failed to update image", "image_id", id, "error", err)
		h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update image")
		return
	}

	h.recorder.IncImageUpdated()

	op := events.OpUpdate
	if req.IsFavorite != nil && req.ImageName == nil && req.Tags == nil {
		op = events.OpFavorite
	}
	h.publisher.PublishAsync(events.ImageEventPayload{
		UserID:  userID,
		ImageID: img.ID,
		Op:      op,
		Tags:    img.Tags,
		At:      nowMillis(),
	})

	writeJSON(w, http.StatusOK, dto.ToImageResponse(img))
}

// DeleteImage handles DELETE /v1/images/{id}.
func (h *GalleryHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := auth.UserIDFromContext(ctx)

	id, ok := h.parseImageID(w, r)
	if !ok {
		return
	}

	if err := h.repo.DeleteImage(ctx, userID, id); err != nil {
		if errors.Is(err, repository.ErrImageNotFound) {
			h.writeError(w, http.StatusNotFound, "IMAGE_NOT_FOUND", "Image not found")
			return
		}
		h.logger.Error("failed to delete image", "image_id", id, "error", err)
		h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete image")
		return
	}

	h.recorder.IncImageDeleted()
	h.publisher.PublishAsync(events.ImageEventPayload{
		UserID:  userID,
		ImageID: id,
		Op:      events.OpDelete,
		At:      nowMillis(),
	})

	w.WriteHeader(http.StatusNoContent)
}

// ListTags handles GET /v1/tags.
// Serves the user's tag vocabulary from cache when fresh; falls back to
// the database and repopulates the cache on a miss.
func (h *GalleryHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := auth.UserIDFromContext(ctx)

	tags, err := h.cache.GetTags(ctx, userID)
	if err != nil {
		tags, err = h.repo.DistinctTags(ctx, userID)
		if err != nil {
			h.logger.Error("failed to list tags", "user_id", userID, "error", err)
			h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list tags")
			return
		}
		if cacheErr := h.cache.SetTags(ctx, userID, tags); cacheErr != nil {
			h.logger.Warn("failed to cache tags", "user_id", userID, "error", cacheErr)
		}
	}

	if tags == nil {
		tags = []string{}
	}
	writeJSON(w, http.StatusOK, dto.TagListResponse{Tags: tags})
}

// parseImageID extracts and parses the {id} path parameter.
func (h *GalleryHandler) parseImageID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		h.writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid image ID")
		return 0, false
	}
	return id, true
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}

// writeError writes a JSON error response.
func (h *GalleryHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}
