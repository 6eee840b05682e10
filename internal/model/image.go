// Package model defines domain entities for the application.
package model

import "time"

// ImageRecord represents a generated image stored in a user's gallery.
// Rows are always scoped to a single user by the repository layer.
type ImageRecord struct {
	ID     int64  `json:"id"`
	UserID string `json:"user_id"`

	// Generation parameters (opaque passthrough for analytics)
	URL               string  `json:"url"`
	Prompt            string  `json:"prompt"`
	Model             string  `json:"model"`
	AspectRatio       string  `json:"aspect_ratio,omitempty"`
	Guidance          float64 `json:"guidance,omitempty"`
	NumInferenceSteps int     `json:"num_inference_steps,omitempty"`
	OutputFormat      string  `json:"output_format,omitempty"`

	// User-managed metadata
	ImageName  string   `json:"image_name,omitempty"`
	Tags       []string `json:"tags"`
	IsFavorite bool     `json:"is_favorite"`

	// CreatedAt is immutable once the row is inserted.
	CreatedAt time.Time `json:"created_at"`
}

// Clone returns a deep copy of the record. The tags slice is copied so
// callers can mutate the clone without aliasing the original.
func (r *ImageRecord) Clone() *ImageRecord {
	c := *r
	if r.Tags != nil {
		c.Tags = make([]string, len(r.Tags))
		copy(c.Tags, r.Tags)
	}
	return &c
}

// HasTag reports whether the record carries the given tag.
func (r *ImageRecord) HasTag(tag string) bool {
	for _, t := range r.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// ImagePatch describes a partial update to an image record.
// Nil fields are left unchanged.
type ImagePatch struct {
	ImageName  *string   `json:"image_name,omitempty"`
	Tags       *[]string `json:"tags,omitempty"`
	IsFavorite *bool     `json:"is_favorite,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p ImagePatch) IsEmpty() bool {
	return p.ImageName == nil && p.Tags == nil && p.IsFavorite == nil
}
