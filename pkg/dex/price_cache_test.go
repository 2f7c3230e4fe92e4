package dex

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestPriceCacheLastWriteWins(t *testing.T) {
	pc := NewPriceCache()
	pc.Set("A|B|3000", decimal.RequireFromString("1.50"))
	pc.Set("A|B|3000", decimal.RequireFromString("1.48"))

	price, updatedAt, ok := pc.Get("A|B|3000")
	if !ok {
		t.Fatal("entry missing")
	}
	if !price.Equal(decimal.RequireFromString("1.48")) {
		t.Fatalf("price = %s, want the later write", price)
	}
	if updatedAt.IsZero() {
		t.Fatal("update time not recorded")
	}
	if pc.Size() != 1 {
		t.Fatalf("size = %d, want 1", pc.Size())
	}
}

func TestPriceCacheMiss(t *testing.T) {
	pc := NewPriceCache()
	if _, _, ok := pc.Get("A|B|500"); ok {
		t.Fatal("unexpected hit on empty cache")
	}
}
