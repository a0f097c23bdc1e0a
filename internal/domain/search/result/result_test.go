package result

import (
	"math"
	"testing"

	"github.com/kailas-cloud/stylist/internal/domain/outfit"
)

func TestNew(t *testing.T) {
	rec := outfit.NewRecord(4, map[outfit.Column]string{outfit.Category: "Coat"})
	r := New(rec, 0.42)

	if r.Position() != 4 {
		t.Errorf("Position() = %d", r.Position())
	}
	if r.Score() != 0.42 {
		t.Errorf("Score() = %f", r.Score())
	}
	if r.Record().Category() != "Coat" {
		t.Errorf("Record().Category() = %q", r.Record().Category())
	}
}

func TestWithBonus_DoesNotMutate(t *testing.T) {
	r := New(outfit.NewRecord(0, nil), 0.5)
	boosted := r.WithBonus(0.15)

	if r.Score() != 0.5 {
		t.Errorf("original score changed to %f", r.Score())
	}
	if math.Abs(boosted.Score()-0.65) > 1e-9 {
		t.Errorf("boosted score = %f, want 0.65", boosted.Score())
	}
}
