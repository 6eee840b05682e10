// Package gallery provides the client-side image collection with
// optimistic mutations. Each mutation is applied locally first, then
// reconciled against the remote result: on success the affected item is
// replaced with the server's authoritative representation, on failure
// the full pre-mutation snapshot is restored.
package gallery

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/pictoria/pictoria/internal/model"
)

// Store errors.
var (
	ErrImageNotFound   = errors.New("image not found")
	ErrMutationPending = errors.New("another mutation is pending for this image")
)

// SaveInput defines input for saving a generated image to the gallery.
type SaveInput struct {
	URL               string   `json:"url"`
	Prompt            string   `json:"prompt"`
	Model             string   `json:"model"`
	Guidance          float64  `json:"guidance,omitempty"`
	NumInferenceSteps int      `json:"num_inference_steps,omitempty"`
	OutputFormat      string   `json:"output_format,omitempty"`
	AspectRatio       string   `json:"aspect_ratio,omitempty"`
	Tags              []string `json:"tags,omitempty"`
	ImageName         string   `json:"image_name,omitempty"`
}

// RemoteAPI is the authoritative backend the store reconciles against.
type RemoteAPI interface {
	FetchImages(ctx context.Context) ([]*model.ImageRecord, error)
	FetchImagesByTag(ctx context.Context, tag string) ([]*model.ImageRecord, error)
	SaveImage(ctx context.Context, input SaveInput) (*model.ImageRecord, error)
	UpdateImage(ctx context.Context, id int64, patch model.ImagePatch) (*model.ImageRecord, error)
	DeleteImage(ctx context.Context, id int64) error
	FetchTags(ctx context.Context) ([]string, error)
}

// Store holds one user's gallery collection. Construct one per gallery
// view; it is safe for concurrent use. Only the store mutates the
// collection, never callers directly.
type Store struct {
	mu                sync.Mutex
	api               RemoteAPI
	logger            *slog.Logger
	images            []*model.ImageRecord
	allTags           []string
	selectedTag       string
	showOnlyFavorites bool
	loading           bool
	lastErr           string
	pending           map[int64]bool
	background        sync.WaitGroup
}

// NewStore creates an empty gallery store backed by the given remote API.
func NewStore(api RemoteAPI, logger *slog.Logger) *Store {
	return &Store{
		api:     api,
		logger:  logger.With("component", "gallery.store"),
		pending: make(map[int64]bool),
	}
}

// Images returns a copy of the current collection.
func (s *Store) Images() []*model.ImageRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneAll(s.images)
}

// VisibleImages returns the collection narrowed by the favorites view.
// Tag narrowing happens at load time via LoadImagesByTag.
func (s *Store) VisibleImages() []*model.ImageRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.showOnlyFavorites {
		return cloneAll(s.images)
	}
	out := make([]*model.ImageRecord, 0, len(s.images))
	for _, img := range s.images {
		if img.IsFavorite {
			out = append(out, img.Clone())
		}
	}
	return out
}

// AllTags returns the cached tag vocabulary.
func (s *Store) AllTags() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.allTags))
	copy(out, s.allTags)
	return out
}

// SelectedTag returns the active tag filter, or "" when unfiltered.
func (s *Store) SelectedTag() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedTag
}

// ShowOnlyFavorites reports whether the favorites view is active.
func (s *Store) ShowOnlyFavorites() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.showOnlyFavorites
}

// Loading reports whether a load is in progress.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Err returns the last error message, or "" when clear.
func (s *Store) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// ToggleShowFavorites flips the favorites-only view.
func (s *Store) ToggleShowFavorites() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.showOnlyFavorites = !s.showOnlyFavorites
}

// LoadGallery replaces the collection with the full remote set.
func (s *Store) LoadGallery(ctx context.Context) error {
	s.setLoading()

	images, err := s.api.FetchImages(ctx)
	if err != nil {
		s.setError(err)
		return err
	}

	s.mu.Lock()
	s.images = images
	s.loading = false
	s.mu.Unlock()
	return nil
}

// LoadImagesByTag replaces the collection with the remote set carrying
// the given tag and records the tag as the active filter.
func (s *Store) LoadImagesByTag(ctx context.Context, tag string) error {
	s.mu.Lock()
	s.selectedTag = tag
	s.loading = true
	s.lastErr = ""
	s.mu.Unlock()

	images, err := s.api.FetchImagesByTag(ctx, tag)
	if err != nil {
		s.setError(err)
		return err
	}

	s.mu.Lock()
	s.images = images
	s.loading = false
	s.mu.Unlock()
	return nil
}

// ClearTagFilter drops the active tag filter and reloads the full set.
func (s *Store) ClearTagFilter(ctx context.Context) error {
	s.mu.Lock()
	s.selectedTag = ""
	s.mu.Unlock()
	return s.LoadGallery(ctx)
}

// LoadAllTags refreshes the tag vocabulary synchronously.
func (s *Store) LoadAllTags(ctx context.Context) error {
	tags, err := s.api.FetchTags(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.allTags = tags
	s.mu.Unlock()
	return nil
}

// AddToGallery saves a new image remotely and prepends the server's
// representation to the collection. Not optimistic: the record does not
// exist until the server assigns it an ID.
func (s *Store) AddToGallery(ctx context.Context, input SaveInput) (*model.ImageRecord, error) {
	s.setLoading()

	saved, err := s.api.SaveImage(ctx, input)
	if err != nil {
		s.setError(err)
		return nil, err
	}

	s.mu.Lock()
	s.images = append([]*model.ImageRecord{saved}, s.images...)
	s.loading = false
	s.mu.Unlock()

	s.refreshTagsAsync()
	return saved, nil
}

// DeleteImage optimistically removes the image, rolling back on remote
// failure.
func (s *Store) DeleteImage(ctx context.Context, id int64) error {
	snapshot, err := s.beginMutation(id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	filtered := make([]*model.ImageRecord, 0, len(s.images))
	for _, img := range s.images {
		if img.ID != id {
			filtered = append(filtered, img)
		}
	}
	s.images = filtered
	s.mu.Unlock()

	if err := s.api.DeleteImage(ctx, id); err != nil {
		s.rollback(id, snapshot, err)
		return err
	}

	s.confirm(id, nil)
	return nil
}

// RenameImage optimistically sets the display name, then reconciles
// with the server's returned representation.
func (s *Store) RenameImage(ctx context.Context, id int64, newName string) error {
	snapshot, err := s.beginMutation(id)
	if err != nil {
		return err
	}

	s.applyLocal(id, func(img *model.ImageRecord) {
		img.ImageName = newName
	})

	updated, err := s.api.UpdateImage(ctx, id, model.ImagePatch{ImageName: &newName})
	if err != nil {
		s.rollback(id, snapshot, err)
		return err
	}

	s.confirm(id, updated)
	return nil
}

// AddTagToImage optimistically adds a tag, then reconciles. The tag
// vocabulary is refreshed in the background on success.
func (s *Store) AddTagToImage(ctx context.Context, id int64, tag string) error {
	snapshot, err := s.beginMutation(id)
	if err != nil {
		return err
	}

	current, ok := s.find(id)
	if !ok {
		s.confirm(id, nil)
		s.setErrorMessage(ErrImageNotFound.Error())
		return ErrImageNotFound
	}

	newTags := current.Tags
	if !current.HasTag(tag) {
		newTags = append(append([]string{}, current.Tags...), tag)
	}

	s.applyLocal(id, func(img *model.ImageRecord) {
		img.Tags = newTags
	})

	updated, err := s.api.UpdateImage(ctx, id, model.ImagePatch{Tags: &newTags})
	if err != nil {
		s.rollback(id, snapshot, err)
		return err
	}

	s.confirm(id, updated)
	s.refreshTagsAsync()
	return nil
}

// RemoveTagFromImage optimistically removes a tag, then reconciles.
func (s *Store) RemoveTagFromImage(ctx context.Context, id int64, tag string) error {
	snapshot, err := s.beginMutation(id)
	if err != nil {
		return err
	}

	current, ok := s.find(id)
	if !ok {
		s.confirm(id, nil)
		s.setErrorMessage(ErrImageNotFound.Error())
		return ErrImageNotFound
	}

	newTags := make([]string, 0, len(current.Tags))
	for _, t := range current.Tags {
		if t != tag {
			newTags = append(newTags, t)
		}
	}

	s.applyLocal(id, func(img *model.ImageRecord) {
		img.Tags = newTags
	})

	updated, err := s.api.UpdateImage(ctx, id, model.ImagePatch{Tags: &newTags})
	if err != nil {
		s.rollback(id, snapshot, err)
		return err
	}

	s.confirm(id, updated)
	s.refreshTagsAsync()
	return nil
}

// ToggleFavorite optimistically flips the favorite flag, then
// reconciles with the server's returned representation.
func (s *Store) ToggleFavorite(ctx context.Context, id int64) error {
	snapshot, err := s.beginMutation(id)
	if err != nil {
		return err
	}

	current, ok := s.find(id)
	if !ok {
		s.confirm(id, nil)
		s.setErrorMessage(ErrImageNotFound.Error())
		return ErrImageNotFound
	}

	next := !current.IsFavorite
	s.applyLocal(id, func(img *model.ImageRecord) {
		img.IsFavorite = next
	})

	updated, err := s.api.UpdateImage(ctx, id, model.ImagePatch{IsFavorite: &next})
	if err != nil {
		s.rollback(id, snapshot, err)
		return err
	}

	s.confirm(id, updated)
	return nil
}

// Wait blocks until background tag refreshes finish.
func (s *Store) Wait() {
	s.background.Wait()
}

// beginMutation marks the item as having an in-flight mutation and
// returns a deep snapshot of the collection for rollback. A second
// mutation on the same item while one is pending is rejected.
func (s *Store) beginMutation(id int64) ([]*model.ImageRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending[id] {
		return nil, ErrMutationPending
	}
	s.pending[id] = true
	s.lastErr = ""
	return cloneAll(s.images), nil
}

// applyLocal replaces the item with a mutated clone so the snapshot
// stays untouched.
func (s *Store) applyLocal(id int64, mutate func(*model.ImageRecord)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, img := range s.images {
		if img.ID == id {
			clone := img.Clone()
			mutate(clone)
			s.images[i] = clone
			return
		}
	}
}

// confirm clears the pending flag and, when the server returned a
// representation, replaces the optimistic guess with it.
func (s *Store) confirm(id int64, authoritative *model.ImageRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.pending, id)
	if authoritative == nil {
		return
	}
	for i, img := range s.images {
		if img.ID == id {
			s.images[i] = authoritative
			return
		}
	}
}

// rollback restores the full pre-mutation snapshot and records the error.
func (s *Store) rollback(id int64, snapshot []*model.ImageRecord, cause error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.pending, id)
	s.images = snapshot
	s.lastErr = cause.Error()
}

func (s *Store) find(id int64) (*model.ImageRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, img := range s.images {
		if img.ID == id {
			return img.Clone(), true
		}
	}
	return nil, false
}

func (s *Store) setLoading() {
	s.mu.Lock()
	s.loading = true
	s.lastErr = ""
	s.mu.Unlock()
}

func (s *Store) setError(err error) {
	s.mu.Lock()
	s.lastErr = err.Error()
	s.loading = false
	s.mu.Unlock()
}

func (s *Store) setErrorMessage(msg string) {
	s.mu.Lock()
	s.lastErr = msg
	s.mu.Unlock()
}

// refreshTagsAsync refreshes the tag vocabulary in the background.
// Failures are logged only; they never roll back the primary mutation.
func (s *Store) refreshTagsAsync() {
	s.background.Add(1)
	go func() {
		defer s.background.Done()
		if err := s.LoadAllTags(context.Background()); err != nil {
			s.logger.Warn("tag vocabulary refresh failed", "error", err)
		}
	}()
}

func cloneAll(images []*model.ImageRecord) []*model.ImageRecord {
	out := make([]*model.ImageRecord, len(images))
	for i, img := range images {
		out[i] = img.Clone()
	}
	return out
}
