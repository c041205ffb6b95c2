package scoring

import (
	"testing"

	"github.com/solanid/solanid-core/internal/checked"
)

func TestWeightedHappySubmit(t *testing.T) {
	got, err := Weighted(150, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 150 {
		t.Fatalf("got %d, want 150", got)
	}
}

func TestAggregateSingleSourceNoBonus(t *testing.T) {
	got, err := Aggregate(150, 1, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 150 {
		t.Fatalf("got %d, want 150 (no bonus below 2 active sources)", got)
	}
}

func TestAggregateDiversityBonus(t *testing.T) {
	// spec §8 scenario: bonus_pct=20, Reclaim base 100 + Gitcoin base 100
	// => aggregated = (100+100)*1.20 = 240
	w1, err := Weighted(100, 100)
	if err != nil {
		t.Fatal(err)
	}
	w2, err := Weighted(100, 100)
	if err != nil {
		t.Fatal(err)
	}
	sum, err := checked.Add64(w1, w2)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Aggregate(sum, 2, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 240 {
		t.Fatalf("got %d, want 240", got)
	}
}

func TestWeightedOverflow(t *testing.T) {
	base := uint64(1) << 60
	if _, err := Weighted(base, 100); err != checked.ErrOverflow {
		t.Fatalf("expected overflow, got %v", err)
	}
}
