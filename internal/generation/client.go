// Package generation calls the hosted image generation API.
package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Input defines one generation request.
type Input struct {
	Prompt            string  `json:"prompt"`
	Model             string  `json:"model"`
	AspectRatio       string  `json:"aspect_ratio,omitempty"`
	Guidance          float64 `json:"guidance,omitempty"`
	NumInferenceSteps int     `json:"num_inference_steps,omitempty"`
	OutputFormat      string  `json:"output_format,omitempty"`
	OutputQuality     int     `json:"output_quality,omitempty"`
	NumOutputs        int     `json:"num_outputs,omitempty"`
}

// Common errors.
var (
	ErrNoOutput = errors.New("generation produced no output")
)

// Client calls the hosted model API. Requests block until the
// prediction completes or the context expires.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a generation client. The timeout bounds a full
// prediction, not just the HTTP round trip.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// predictionRequest is the hosted API's request envelope.
type predictionRequest struct {
	Input Input `json:"input"`
}

// predictionResponse is the hosted API's response envelope.
type predictionResponse struct {
	Output []string `json:"output"`
	Status string   `json:"status"`
	Error  string   `json:"error,omitempty"`
}

// Generate runs one prediction and returns the output image URLs.
func (c *Client) Generate(ctx context.Context, input Input) ([]string, error) {
	if input.NumOutputs <= 0 {
		input.NumOutputs = 1
	}

	body, err := json.Marshal(predictionRequest{Input: input})
	if err != nil {
		return nil, fmt.Errorf("marshal generation request: %w", err)
	}

	url := c.baseURL + "/models/" + input.Model + "/predictions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build generation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	// Hold the connection until the prediction resolves.
	req.Header.Set("Prefer", "wait")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("generation request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("generation request: API returned %d: %s", resp.StatusCode, snippet)
	}

	var pred predictionResponse
	if err := json.NewDecoder(resp.Body).Decode(&pred); err != nil {
		return nil, fmt.Errorf("decode generation response: %w", err)
	}

	if pred.Error != "" {
		return nil, fmt.Errorf("generation failed: %s", pred.Error)
	}
	if len(pred.Output) == 0 {
		return nil, ErrNoOutput
	}

	return pred.Output, nil
}
