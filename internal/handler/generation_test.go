package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pictoria/pictoria/internal/generation"
	"github.com/pictoria/pictoria/internal/handler/dto"
	"github.com/pictoria/pictoria/internal/metrics"
)

func generationBackend(t *testing.T, status int, response string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestGenerationHandler_Generate(t *testing.T) {
	t.Parallel()

	backend := generationBackend(t, http.StatusOK,
		`{"status":"succeeded","output":["https://cdn.example.com/a.webp","https://cdn.example.com/b.webp"]}`)

	recorder := metrics.NewInMemory()
	client := generation.NewClient(backend.URL, "tok", 5*time.Second)
	h := NewGenerationHandler(discardLogger(), client, recorder)

	body, _ := json.Marshal(dto.GenerateRequest{Prompt: "a red fox", Model: "flux-dev", NumOutputs: 2})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/generations", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Generate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.GenerateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Output) != 2 {
		t.Errorf("expected 2 outputs, got %v", resp.Output)
	}
	if resp.Model != "flux-dev" {
		t.Errorf("unexpected model %q", resp.Model)
	}

	if got := recorder.Snapshot().GenerationsSucceeded; got != 1 {
		t.Errorf("expected 1 successful generation recorded, got %d", got)
	}
}

func TestGenerationHandler_Generate_Validation(t *testing.T) {
	t.Parallel()

	client := generation.NewClient("http://unreachable.invalid", "tok", time.Second)
	h := NewGenerationHandler(discardLogger(), client, metrics.NewNoop())

	tests := []struct {
		name string
		req  dto.GenerateRequest
	}{
		{name: "empty prompt", req: dto.GenerateRequest{Model: "flux-dev"}},
		{name: "missing model", req: dto.GenerateRequest{Prompt: "a cat"}},
		{name: "too many outputs", req: dto.GenerateRequest{Prompt: "a cat", Model: "flux-dev", NumOutputs: 10}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			body, _ := json.Marshal(tt.req)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/generations", bytes.NewReader(body))
			rec := httptest.NewRecorder()

			h.Generate(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", rec.Code)
			}
		})
	}
}

func TestGenerationHandler_Generate_BackendFailure(t *testing.T) {
	t.Parallel()

	backend := generationBackend(t, http.StatusInternalServerError, `{"detail":"boom"}`)

	recorder := metrics.NewInMemory()
	client := generation.NewClient(backend.URL, "tok", 5*time.Second)
	h := NewGenerationHandler(discardLogger(), client, recorder)

	body, _ := json.Marshal(dto.GenerateRequest{Prompt: "a red fox", Model: "flux-dev"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/generations", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Generate(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", rec.Code)
	}
	if got := recorder.Snapshot().GenerationsFailed; got != 1 {
		t.Errorf("expected 1 failed generation recorded, got %d", got)
	}
}
