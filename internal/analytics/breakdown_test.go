package analytics

import (
	"testing"

	"github.com/pictoria/pictoria/internal/model"
)

func TestModelBreakdown(t *testing.T) {
	t.Parallel()

	records := []*model.ImageRecord{
		{Model: "sdxl"},
		{Model: "flux-dev"},
		{Model: "flux-dev"},
		{Model: ""},
		{Model: "sdxl"},
		{Model: "flux-dev"},
	}

	got := ModelBreakdown(records)
	want := []model.ModelCount{
		{Model: "flux-dev", Count: 3},
		{Model: "sdxl", Count: 2},
		{Model: "Unknown", Count: 1},
	}

	if len(got) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestModelBreakdown_TiesKeepFirstEncounteredOrder(t *testing.T) {
	t.Parallel()

	records := []*model.ImageRecord{
		{Model: "beta"},
		{Model: "alpha"},
		{Model: "beta"},
		{Model: "alpha"},
	}

	got := ModelBreakdown(records)
	if got[0].Model != "beta" || got[1].Model != "alpha" {
		t.Errorf("expected first-encountered order on ties, got %+v", got)
	}
}

func TestRatioBreakdown_UnknownFallback(t *testing.T) {
	t.Parallel()

	records := []*model.ImageRecord{
		{AspectRatio: "16:9"},
		{AspectRatio: ""},
		{AspectRatio: ""},
	}

	got := RatioBreakdown(records)
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].Ratio != "Unknown" || got[0].Count != 2 {
		t.Errorf("expected Unknown bucket first with count 2, got %+v", got[0])
	}
}

func TestTagBreakdown(t *testing.T) {
	t.Parallel()

	records := []*model.ImageRecord{
		{Tags: []string{"landscape", "sunset"}},
		{Tags: []string{"landscape", "landscape", "  "}},
		{Tags: []string{" sunset "}},
		{Tags: nil},
	}

	got := TagBreakdown(records)
	want := []model.TagCount{
		{Tag: "landscape", Count: 2},
		{Tag: "sunset", Count: 2},
	}

	if len(got) != len(want) {
		t.Fatalf("expected %d entries, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestSelectTopModel(t *testing.T) {
	t.Parallel()

	if top := SelectTopModel(nil); top != nil {
		t.Errorf("expected nil top model for empty breakdown, got %+v", top)
	}

	top := SelectTopModel([]model.ModelCount{
		{Model: "flux-dev", Count: 7},
		{Model: "sdxl", Count: 3},
	})
	if top == nil || top.Name != "flux-dev" || top.Count != 7 {
		t.Errorf("expected flux-dev with count 7, got %+v", top)
	}
}
