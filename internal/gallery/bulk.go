package gallery

import "context"

// ItemResult reports the outcome of one item in a bulk operation.
type ItemResult struct {
	ID  int64
	Err error
}

// Failed reports whether the item failed.
func (r ItemResult) Failed() bool {
	return r.Err != nil
}

// DeleteImages deletes each image independently and returns a per-item
// manifest. One failed delete never stops the rest; callers inspect the
// results to decide what to retry.
func (s *Store) DeleteImages(ctx context.Context, ids []int64) []ItemResult {
	results := make([]ItemResult, 0, len(ids))
	for _, id := range ids {
		results = append(results, ItemResult{ID: id, Err: s.DeleteImage(ctx, id)})
	}
	return results
}

// TagImages adds the tag to each image independently and returns a
// per-item manifest.
func (s *Store) TagImages(ctx context.Context, ids []int64, tag string) []ItemResult {
	results := make([]ItemResult, 0, len(ids))
	for _, id := range ids {
		results = append(results, ItemResult{ID: id, Err: s.AddTagToImage(ctx, id, tag)})
	}
	return results
}
