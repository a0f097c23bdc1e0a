package recommend

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kailas-cloud/stylist/internal/domain/match"
	"github.com/kailas-cloud/stylist/internal/metrics"
)

func TestRecommender_RecordsMetrics(t *testing.T) {
	m, err := metrics.NewRanking(prometheus.NewRegistry())
	if err != nil {
		t.Fatal(err)
	}
	rec := NewRecommender(New(&mockScorer{}, match.Exact{}), fiveOutfits(), m)

	if _, err := rec.Recommend(context.Background(), mustQuery(t, "", "", "", "", 2)); err != nil {
		t.Fatal(err)
	}
	if got := testutil.ToFloat64(m.Requests.WithLabelValues("filter", "ok")); got != 1 {
		t.Errorf("filter/ok = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.Outfits); got != 5 {
		t.Errorf("outfits = %v, want 5", got)
	}
}

func TestRecommender_RecordsErrors(t *testing.T) {
	m, err := metrics.NewRanking(prometheus.NewRegistry())
	if err != nil {
		t.Fatal(err)
	}
	rec := NewRecommender(New(&mockScorer{err: errors.New("boom")}, match.Exact{}), fiveOutfits(), m)

	if _, err := rec.Recommend(context.Background(), mustQuery(t, "coat", "", "", "", 2)); err == nil {
		t.Fatal("expected error")
	}
	if got := testutil.ToFloat64(m.Requests.WithLabelValues("text", "error")); got != 1 {
		t.Errorf("text/error = %v, want 1", got)
	}
}

func TestRecommender_FacetsAndSize(t *testing.T) {
	rec := NewRecommender(New(&mockScorer{}, match.Exact{}), fiveOutfits(), nil)

	if rec.Size() != 5 || !rec.Loaded() {
		t.Errorf("unexpected size=%d loaded=%v", rec.Size(), rec.Loaded())
	}
	f := rec.Facets()
	if len(f.Seasons) != 4 {
		t.Errorf("expected 4 seasons, got %v", f.Seasons)
	}
	if len(f.Colors) != 5 {
		t.Errorf("expected 5 colors, got %v", f.Colors)
	}
}
