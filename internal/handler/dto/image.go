// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"time"

	"github.com/pictoria/pictoria/internal/model"
)

// SaveImageRequest represents the request body for saving a generated
// image to the gallery.
type SaveImageRequest struct {
	URL               string   `json:"url"`
	Prompt            string   `json:"prompt"`
	Model             string   `json:"model"`
	AspectRatio       string   `json:"aspect_ratio,omitempty"`
	Guidance          float64  `json:"guidance,omitempty"`
	NumInferenceSteps int      `json:"num_inference_steps,omitempty"`
	OutputFormat      string   `json:"output_format,omitempty"`
	ImageName         string   `json:"image_name,omitempty"`
	Tags              []string `json:"tags,omitempty"`
}

// SaveImageBatchRequest saves several generation outputs in one call.
type SaveImageBatchRequest struct {
	Images []SaveImageRequest `json:"images"`
}

// UpdateImageRequest represents a partial image update. Absent fields
// are left unchanged.
type UpdateImageRequest struct {
	ImageName  *string   `json:"image_name,omitempty"`
	Tags       *[]string `json:"tags,omitempty"`
	IsFavorite *bool     `json:"is_favorite,omitempty"`
}

// ImageResponse represents an image in API responses.
type ImageResponse struct {
	ID                int64     `json:"id"`
	URL               string    `json:"url"`
	Prompt            string    `json:"prompt"`
	Model             string    `json:"model"`
	AspectRatio       string    `json:"aspect_ratio,omitempty"`
	Guidance          float64   `json:"guidance,omitempty"`
	NumInferenceSteps int       `json:"num_inference_steps,omitempty"`
	OutputFormat      string    `json:"output_format,omitempty"`
	ImageName         string    `json:"image_name,omitempty"`
	Tags              []string  `json:"tags"`
	IsFavorite        bool      `json:"is_favorite"`
	CreatedAt         time.Time `json:"created_at"`
}

// ImageListResponse represents a list of images.
type ImageListResponse struct {
	Data []ImageResponse `json:"data"`
}

// TagListResponse represents a user's tag vocabulary.
type TagListResponse struct {
	Tags []string `json:"tags"`
}

// SaveItemResult reports the outcome for one image in a batch save.
type SaveItemResult struct {
	Index int            `json:"index"`
	Image *ImageResponse `json:"image,omitempty"`
	Error string         `json:"error,omitempty"`
}

// SaveImageBatchResponse is the per-item manifest for a batch save.
// Saved and Failed always sum to the number of submitted images.
type SaveImageBatchResponse struct {
	Saved   int              `json:"saved"`
	Failed  int              `json:"failed"`
	Results []SaveItemResult `json:"results"`
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// ToImageResponse converts an ImageRecord to ImageResponse DTO.
func ToImageResponse(img *model.ImageRecord) *ImageResponse {
	tags := img.Tags
	if tags == nil {
		tags = []string{}
	}
	return &ImageResponse{
		ID:                img.ID,
		URL:               img.URL,
		Prompt:            img.Prompt,
		Model:             img.Model,
		AspectRatio:       img.AspectRatio,
		Guidance:          img.Guidance,
		NumInferenceSteps: img.NumInferenceSteps,
		OutputFormat:      img.OutputFormat,
		ImageName:         img.ImageName,
		Tags:              tags,
		IsFavorite:        img.IsFavorite,
		CreatedAt:         img.CreatedAt,
	}
}

// ToImageListResponse converts a slice of ImageRecords to ImageListResponse.
func ToImageListResponse(images []*model.ImageRecord) *ImageListResponse {
	responses := make([]ImageResponse, len(images))
	for i, img := range images {
		responses[i] = *ToImageResponse(img)
	}
	return &ImageListResponse{Data: responses}
}
