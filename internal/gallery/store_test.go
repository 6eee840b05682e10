package gallery

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/pictoria/pictoria/internal/model"
)

// fakeAPI implements RemoteAPI with overridable behavior per test.
type fakeAPI struct {
	fetchImages      func(ctx context.Context) ([]*model.ImageRecord, error)
	fetchImagesByTag func(ctx context.Context, tag string) ([]*model.ImageRecord, error)
	saveImage        func(ctx context.Context, input SaveInput) (*model.ImageRecord, error)
	updateImage      func(ctx context.Context, id int64, patch model.ImagePatch) (*model.ImageRecord, error)
	deleteImage      func(ctx context.Context, id int64) error
	fetchTags        func(ctx context.Context) ([]string, error)
}

func (f *fakeAPI) FetchImages(ctx context.Context) ([]*model.ImageRecord, error) {
	if f.fetchImages == nil {
		return nil, nil
	}
	return f.fetchImages(ctx)
}

func (f *fakeAPI) FetchImagesByTag(ctx context.Context, tag string) ([]*model.ImageRecord, error) {
	if f.fetchImagesByTag == nil {
		return nil, nil
	}
	return f.fetchImagesByTag(ctx, tag)
}

func (f *fakeAPI) SaveImage(ctx context.Context, input SaveInput) (*model.ImageRecord, error) {
	if f.saveImage == nil {
		return nil, errors.New("not implemented")
	}
	return f.saveImage(ctx, input)
}

func (f *fakeAPI) UpdateImage(ctx context.Context, id int64, patch model.ImagePatch) (*model.ImageRecord, error) {
	if f.updateImage == nil {
		return nil, errors.New("not implemented")
	}
	return f.updateImage(ctx, id, patch)
}

func (f *fakeAPI) DeleteImage(ctx context.Context, id int64) error {
	if f.deleteImage == nil {
		return nil
	}
	return f.deleteImage(ctx, id)
}

func (f *fakeAPI) FetchTags(ctx context.Context) ([]string, error) {
	if f.fetchTags == nil {
		return nil, nil
	}
	return f.fetchTags(ctx)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testImages() []*model.ImageRecord {
	return []*model.ImageRecord{
		{ID: 1, ImageName: "sunset", Tags: []string{"landscape"}, IsFavorite: true},
		{ID: 2, ImageName: "portrait", Tags: []string{"people"}},
		{ID: 3, ImageName: "abstract", Tags: nil},
	}
}

func loadedStore(t *testing.T, api *fakeAPI) *Store {
	t.Helper()

	if api.fetchImages == nil {
		api.fetchImages = func(ctx context.Context) ([]*model.ImageRecord, error) {
			return testImages(), nil
		}
	}

	store := NewStore(api, testLogger())
	if err := store.LoadGallery(context.Background()); err != nil {
		t.Fatalf("LoadGallery failed: %v", err)
	}
	return store
}

func TestStore_LoadGallery(t *testing.T) {
	t.Parallel()

	store := loadedStore(t, &fakeAPI{})

	images := store.Images()
	if len(images) != 3 {
		t.Fatalf("expected 3 images, got %d", len(images))
	}
	if store.Loading() {
		t.Error("loading flag should be clear after load")
	}
	if store.Err() != "" {
		t.Errorf("unexpected error state: %q", store.Err())
	}
}

func TestStore_LoadGallery_Error(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{
		fetchImages: func(ctx context.Context) ([]*model.ImageRecord, error) {
			return nil, errors.New("connection refused")
		},
	}
	store := NewStore(api, testLogger())

	if err := store.LoadGallery(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if store.Err() != "connection refused" {
		t.Errorf("expected error state, got %q", store.Err())
	}
	if store.Loading() {
		t.Error("loading flag should be clear after failed load")
	}
}

func TestStore_LoadImagesByTag(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{
		fetchImagesByTag: func(ctx context.Context, tag string) ([]*model.ImageRecord, error) {
			if tag != "landscape" {
				t.Errorf("expected tag landscape, got %q", tag)
			}
			return testImages()[:1], nil
		},
	}
	store := loadedStore(t, api)

	if err := store.LoadImagesByTag(context.Background(), "landscape"); err != nil {
		t.Fatalf("LoadImagesByTag failed: %v", err)
	}
	if got := store.SelectedTag(); got != "landscape" {
		t.Errorf("expected selected tag landscape, got %q", got)
	}
	if got := len(store.Images()); got != 1 {
		t.Errorf("expected 1 image, got %d", got)
	}

	if err := store.ClearTagFilter(context.Background()); err != nil {
		t.Fatalf("ClearTagFilter failed: %v", err)
	}
	if got := store.SelectedTag(); got != "" {
		t.Errorf("expected filter cleared, got %q", got)
	}
	if got := len(store.Images()); got != 3 {
		t.Errorf("expected full set restored, got %d", got)
	}
}

func TestStore_ToggleFavorite_UsesServerRepresentation(t *testing.T) {
	t.Parallel()

	// The server record carries state the optimistic guess could not
	// know about. The confirmed item must be the server's version.
	api := &fakeAPI{
		updateImage: func(ctx context.Context, id int64, patch model.ImagePatch) (*model.ImageRecord, error) {
			if patch.IsFavorite == nil || !*patch.IsFavorite {
				t.Errorf("expected is_favorite=true patch, got %+v", patch)
			}
			return &model.ImageRecord{ID: 2, ImageName: "renamed-elsewhere", IsFavorite: true}, nil
		},
	}
	store := loadedStore(t, api)

	if err := store.ToggleFavorite(context.Background(), 2); err != nil {
		t.Fatalf("ToggleFavorite failed: %v", err)
	}

	for _, img := range store.Images() {
		if img.ID != 2 {
			continue
		}
		if !img.IsFavorite {
			t.Error("expected favorite flag set")
		}
		if img.ImageName != "renamed-elsewhere" {
			t.Errorf("expected server representation, got name %q", img.ImageName)
		}
	}
}

func TestStore_ToggleFavorite_RollbackOnFailure(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{
		updateImage: func(ctx context.Context, id int64, patch model.ImagePatch) (*model.ImageRecord, error) {
			return nil, errors.New("server exploded")
		},
	}
	store := loadedStore(t, api)

	err := store.ToggleFavorite(context.Background(), 2)
	if err == nil {
		t.Fatal("expected error")
	}
	if store.Err() != "server exploded" {
		t.Errorf("expected error state, got %q", store.Err())
	}

	// Full snapshot restored: item 2 back to non-favorite.
	for _, img := range store.Images() {
		if img.ID == 2 && img.IsFavorite {
			t.Error("expected rollback to restore original favorite state")
		}
	}

	// The pending flag must be cleared so a retry is possible.
	api.updateImage = func(ctx context.Context, id int64, patch model.ImagePatch) (*model.ImageRecord, error) {
		return &model.ImageRecord{ID: 2, IsFavorite: true}, nil
	}
	if err := store.ToggleFavorite(context.Background(), 2); err != nil {
		t.Errorf("retry after rollback failed: %v", err)
	}
}

func TestStore_ConcurrentMutationRejected(t *testing.T) {
	t.Parallel()

	store := loadedStore(t, &fakeAPI{})
	api := store.api.(*fakeAPI)

	// While the first mutation is in flight at the remote, a second
	// mutation on the same item must be rejected.
	api.updateImage = func(ctx context.Context, id int64, patch model.ImagePatch) (*model.ImageRecord, error) {
		if id != 1 {
			// Remote leg of the nested mutation below.
			return &model.ImageRecord{ID: id, IsFavorite: true}, nil
		}
		if err := store.RenameImage(ctx, id, "second"); !errors.Is(err, ErrMutationPending) {
			t.Errorf("expected ErrMutationPending, got %v", err)
		}
		// A different item is not blocked.
		if err := store.ToggleFavorite(ctx, 3); err != nil {
			t.Errorf("mutation on different item should proceed, got %v", err)
		}
		return &model.ImageRecord{ID: id, ImageName: "first"}, nil
	}

	if err := store.RenameImage(context.Background(), 1, "first"); err != nil {
		t.Fatalf("RenameImage failed: %v", err)
	}
}

func TestStore_DeleteImage(t *testing.T) {
	t.Parallel()

	store := loadedStore(t, &fakeAPI{})

	if err := store.DeleteImage(context.Background(), 2); err != nil {
		t.Fatalf("DeleteImage failed: %v", err)
	}

	for _, img := range store.Images() {
		if img.ID == 2 {
			t.Error("deleted image still present")
		}
	}
	if got := len(store.Images()); got != 2 {
		t.Errorf("expected 2 images, got %d", got)
	}
}

func TestStore_DeleteImage_RollbackOnFailure(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{
		deleteImage: func(ctx context.Context, id int64) error {
			return errors.New("delete rejected")
		},
	}
	store := loadedStore(t, api)

	if err := store.DeleteImage(context.Background(), 2); err == nil {
		t.Fatal("expected error")
	}
	if got := len(store.Images()); got != 3 {
		t.Errorf("expected full collection restored, got %d images", got)
	}
}

func TestStore_AddTagToImage(t *testing.T) {
	t.Parallel()

	var patched *[]string
	api := &fakeAPI{
		updateImage: func(ctx context.Context, id int64, patch model.ImagePatch) (*model.ImageRecord, error) {
			patched = patch.Tags
			return &model.ImageRecord{ID: id, Tags: *patch.Tags}, nil
		},
		fetchTags: func(ctx context.Context) ([]string, error) {
			return []string{"landscape", "people", "sunset"}, nil
		},
	}
	store := loadedStore(t, api)

	if err := store.AddTagToImage(context.Background(), 1, "sunset"); err != nil {
		t.Fatalf("AddTagToImage failed: %v", err)
	}
	if patched == nil || len(*patched) != 2 {
		t.Fatalf("expected patch with 2 tags, got %v", patched)
	}

	// Adding an existing tag sends the unchanged set, never a duplicate.
	if err := store.AddTagToImage(context.Background(), 1, "sunset"); err != nil {
		t.Fatalf("AddTagToImage failed: %v", err)
	}
	if len(*patched) != 2 {
		t.Errorf("expected no duplicate tag, got %v", *patched)
	}

	// Tag vocabulary refreshes in the background.
	store.Wait()
	if got := store.AllTags(); len(got) != 3 {
		t.Errorf("expected refreshed vocabulary, got %v", got)
	}
}

func TestStore_RemoveTagFromImage(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{
		updateImage: func(ctx context.Context, id int64, patch model.ImagePatch) (*model.ImageRecord, error) {
			return &model.ImageRecord{ID: id, Tags: *patch.Tags}, nil
		},
	}
	store := loadedStore(t, api)

	if err := store.RemoveTagFromImage(context.Background(), 1, "landscape"); err != nil {
		t.Fatalf("RemoveTagFromImage failed: %v", err)
	}
	store.Wait()

	for _, img := range store.Images() {
		if img.ID == 1 && img.HasTag("landscape") {
			t.Error("tag still present after removal")
		}
	}
}

func TestStore_MutateMissingImage(t *testing.T) {
	t.Parallel()

	store := loadedStore(t, &fakeAPI{})

	if err := store.ToggleFavorite(context.Background(), 99); !errors.Is(err, ErrImageNotFound) {
		t.Errorf("expected ErrImageNotFound, got %v", err)
	}

	// The pending flag must not leak for missing items.
	if err := store.ToggleFavorite(context.Background(), 99); !errors.Is(err, ErrImageNotFound) {
		t.Errorf("expected ErrImageNotFound on retry, got %v", err)
	}
}

func TestStore_AddToGallery(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{
		saveImage: func(ctx context.Context, input SaveInput) (*model.ImageRecord, error) {
			return &model.ImageRecord{ID: 42, URL: input.URL, Prompt: input.Prompt}, nil
		},
		fetchTags: func(ctx context.Context) ([]string, error) {
			return []string{"new"}, nil
		},
	}
	store := loadedStore(t, api)

	saved, err := store.AddToGallery(context.Background(), SaveInput{URL: "https://cdn.example.com/i.png", Prompt: "a cat"})
	if err != nil {
		t.Fatalf("AddToGallery failed: %v", err)
	}
	if saved.ID != 42 {
		t.Errorf("expected server-assigned ID, got %d", saved.ID)
	}

	images := store.Images()
	if len(images) != 4 {
		t.Fatalf("expected 4 images, got %d", len(images))
	}
	if images[0].ID != 42 {
		t.Errorf("expected new image prepended, got ID %d first", images[0].ID)
	}
	store.Wait()
}

func TestStore_VisibleImages_FavoritesView(t *testing.T) {
	t.Parallel()

	store := loadedStore(t, &fakeAPI{})

	if got := len(store.VisibleImages()); got != 3 {
		t.Fatalf("expected 3 visible images, got %d", got)
	}

	store.ToggleShowFavorites()
	visible := store.VisibleImages()
	if len(visible) != 1 {
		t.Fatalf("expected 1 favorite, got %d", len(visible))
	}
	if visible[0].ID != 1 {
		t.Errorf("expected image 1, got %d", visible[0].ID)
	}

	store.ToggleShowFavorites()
	if got := len(store.VisibleImages()); got != 3 {
		t.Errorf("expected full view restored, got %d", got)
	}
}

func TestStore_ImagesReturnsCopies(t *testing.T) {
	t.Parallel()

	store := loadedStore(t, &fakeAPI{})

	images := store.Images()
	images[0].ImageName = "mutated"
	images[0].Tags[0] = "mutated"

	fresh := store.Images()
	if fresh[0].ImageName == "mutated" {
		t.Error("caller mutation leaked into the store")
	}
	if fresh[0].Tags[0] == "mutated" {
		t.Error("caller tag mutation leaked into the store")
	}
}

func TestStore_DeleteImages_Manifest(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{
		deleteImage: func(ctx context.Context, id int64) error {
			if id == 2 {
				return errors.New("in use")
			}
			return nil
		},
	}
	store := loadedStore(t, api)

	results := store.DeleteImages(context.Background(), []int64{1, 2, 3})
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Failed() || results[2].Failed() {
		t.Error("expected items 1 and 3 to succeed")
	}
	if !results[1].Failed() {
		t.Error("expected item 2 to fail")
	}

	// The failed delete rolled back, so item 2 survives.
	images := store.Images()
	if len(images) != 1 || images[0].ID != 2 {
		t.Errorf("expected only image 2 to remain, got %d images", len(images))
	}
}
