package gallery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pictoria/pictoria/internal/handler/dto"
	"github.com/pictoria/pictoria/internal/model"
)

// clientTimeout is the total request timeout for API calls.
const clientTimeout = 30 * time.Second

// Client is the HTTP implementation of RemoteAPI. It talks to the
// gallery endpoints under /api/v1 using an API token.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a gallery API client. baseURL is the server root
// without the /api/v1 suffix.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL + "/api/v1",
		token:   token,
		httpClient: &http.Client{
			Timeout: clientTimeout,
		},
	}
}

// FetchImages retrieves the full gallery, newest first.
func (c *Client) FetchImages(ctx context.Context) ([]*model.ImageRecord, error) {
	var resp dto.ImageListResponse
	if err := c.do(ctx, http.MethodGet, "/images", nil, http.StatusOK, &resp); err != nil {
		return nil, err
	}
	return toRecords(resp.Data), nil
}

// FetchImagesByTag retrieves the gallery narrowed to one tag.
func (c *Client) FetchImagesByTag(ctx context.Context, tag string) ([]*model.ImageRecord, error) {
	var resp dto.ImageListResponse
	path := "/images?tag=" + url.QueryEscape(tag)
	if err := c.do(ctx, http.MethodGet, path, nil, http.StatusOK, &resp); err != nil {
		return nil, err
	}
	return toRecords(resp.Data), nil
}

// SaveImage persists a generation output and returns the server record.
func (c *Client) SaveImage(ctx context.Context, input SaveInput) (*model.ImageRecord, error) {
	req := dto.SaveImageRequest{
		URL:               input.URL,
		Prompt:            input.Prompt,
		Model:             input.Model,
		AspectRatio:       input.AspectRatio,
		Guidance:          input.Guidance,
		NumInferenceSteps: input.NumInferenceSteps,
		OutputFormat:      input.OutputFormat,
		ImageName:         input.ImageName,
		Tags:              input.Tags,
	}

	var resp dto.ImageResponse
	if err := c.do(ctx, http.MethodPost, "/images", req, http.StatusCreated, &resp); err != nil {
		return nil, err
	}
	return toRecord(resp), nil
}

// UpdateImage applies a partial update and returns the server record.
func (c *Client) UpdateImage(ctx context.Context, id int64, patch model.ImagePatch) (*model.ImageRecord, error) {
	req := dto.UpdateImageRequest{
		ImageName:  patch.ImageName,
		Tags:       patch.Tags,
		IsFavorite: patch.IsFavorite,
	}

	var resp dto.ImageResponse
	path := "/images/" + strconv.FormatInt(id, 10)
	if err := c.do(ctx, http.MethodPatch, path, req, http.StatusOK, &resp); err != nil {
		return nil, err
	}
	return toRecord(resp), nil
}

// DeleteImage removes an image.
func (c *Client) DeleteImage(ctx context.Context, id int64) error {
	path := "/images/" + strconv.FormatInt(id, 10)
	return c.do(ctx, http.MethodDelete, path, nil, http.StatusNoContent, nil)
}

// FetchTags retrieves the tag vocabulary.
func (c *Client) FetchTags(ctx context.Context) ([]string, error) {
	var resp dto.TagListResponse
	if err := c.do(ctx, http.MethodGet, "/tags", nil, http.StatusOK, &resp); err != nil {
		return nil, err
	}
	return resp.Tags, nil
}

// do sends one request and decodes the response into out when the
// status matches wantStatus. Error responses surface the server's
// message when one is present.
func (c *Client) do(ctx context.Context, method, path string, body any, wantStatus int, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		var apiErr dto.ErrorResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Error != "" {
			return fmt.Errorf("%s %s: %s (%s)", method, path, apiErr.Error, apiErr.Code)
		}
		return fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func toRecord(r dto.ImageResponse) *model.ImageRecord {
	return &model.ImageRecord{
		ID:                r.ID,
		URL:               r.URL,
		Prompt:            r.Prompt,
		Model:             r.Model,
		AspectRatio:       r.AspectRatio,
		Guidance:          r.Guidance,
		NumInferenceSteps: r.NumInferenceSteps,
		OutputFormat:      r.OutputFormat,
		ImageName:         r.ImageName,
		Tags:              r.Tags,
		IsFavorite:        r.IsFavorite,
		CreatedAt:         r.CreatedAt,
	}
}

func toRecords(rs []dto.ImageResponse) []*model.ImageRecord {
	out := make([]*model.ImageRecord, len(rs))
	for i, r := range rs {
		out[i] = toRecord(r)
	}
	return out
}
