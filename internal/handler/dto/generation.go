package dto

// GenerateRequest is the request body for POST /v1/generations.
type GenerateRequest struct {
	Prompt            string  `json:"prompt"`
	Model             string  `json:"model"`
	AspectRatio       string  `json:"aspect_ratio,omitempty"`
	Guidance          float64 `json:"guidance,omitempty"`
	NumInferenceSteps int     `json:"num_inference_steps,omitempty"`
	OutputFormat      string  `json:"output_format,omitempty"`
	OutputQuality     int     `json:"output_quality,omitempty"`
	NumOutputs        int     `json:"num_outputs,omitempty"`
}

// GenerateResponse carries the output image URLs of one generation.
type GenerateResponse struct {
	Model  string   `json:"model"`
	Prompt string   `json:"prompt"`
	Output []string `json:"output"`
}
