package order

import (
	"errors"
	"testing"

	cosmath "cosmossdk.io/math"
	"github.com/shopspring/decimal"
)

func gridFixture() GridOrder {
	return GridOrder{
		ID:             3,
		Owner:          owner,
		TokenIn:        tokenA,
		TokenOut:       tokenB,
		GridLevels:     10,
		LowerPrice:     decimal.NewFromFloat(0.90),
		UpperPrice:     decimal.NewFromFloat(1.10),
		AmountPerLevel: cosmath.NewInt(500),
		Active:         true,
	}
}

func TestGridBuildLevels(t *testing.T) {
	o := gridFixture()
	if err := o.BuildLevels(); err != nil {
		t.Fatalf("BuildLevels: %v", err)
	}

	if len(o.Levels) != 10 {
		t.Fatalf("got %d levels, want 10", len(o.Levels))
	}
	if !o.Levels[0].Price.Equal(o.LowerPrice) {
		t.Errorf("first level price %s, want %s", o.Levels[0].Price, o.LowerPrice)
	}
	if !o.Levels[9].Price.Equal(o.UpperPrice) {
		t.Errorf("last level price %s, want %s", o.Levels[9].Price, o.UpperPrice)
	}

	step := o.UpperPrice.Sub(o.LowerPrice).DivRound(decimal.NewFromInt(9), 18)
	tolerance := decimal.New(1, -15)
	for i, lvl := range o.Levels {
		if lvl.Status != LevelIdle {
			t.Errorf("level %d status %s, want IDLE", i, lvl.Status)
		}
		if !lvl.Amount.Equal(o.AmountPerLevel) {
			t.Errorf("level %d amount %s, want %s", i, lvl.Amount, o.AmountPerLevel)
		}
		if i == 0 {
			continue
		}
		if !lvl.Price.GreaterThan(o.Levels[i-1].Price) {
			t.Errorf("level prices not monotonic at %d: %s <= %s", i, lvl.Price, o.Levels[i-1].Price)
		}
		gap := lvl.Price.Sub(o.Levels[i-1].Price).Sub(step).Abs()
		if gap.GreaterThan(tolerance) {
			t.Errorf("level %d spacing off by %s", i, gap)
		}
	}
}

func TestGridProgress(t *testing.T) {
	o := gridFixture()
	if err := o.BuildLevels(); err != nil {
		t.Fatalf("BuildLevels: %v", err)
	}

	if !o.ProgressPct().IsZero() {
		t.Errorf("fresh grid progress = %s, want 0", o.ProgressPct())
	}

	if err := o.ApplyFill(2, LevelBuyPending, 500); err != nil {
		t.Fatalf("ApplyFill: %v", err)
	}
	if got := o.FilledLevels(); got != 1 {
		t.Errorf("filled levels = %d, want 1", got)
	}
	if want := decimal.NewFromInt(10); !o.ProgressPct().Equal(want) {
		t.Errorf("progress = %s, want %s", o.ProgressPct(), want)
	}

	for i := range o.Levels {
		status := LevelBuyPending
		if i%2 == 1 {
			status = LevelSellPending
		}
		if err := o.ApplyFill(i, status, uint64(600+i)); err != nil {
			t.Fatalf("ApplyFill(%d): %v", i, err)
		}
	}
	if want := decimal.NewFromInt(100); !o.ProgressPct().Equal(want) {
		t.Errorf("full grid progress = %s, want %s", o.ProgressPct(), want)
	}
}

func TestGridApplyFillOutOfRange(t *testing.T) {
	o := gridFixture()
	if err := o.BuildLevels(); err != nil {
		t.Fatalf("BuildLevels: %v", err)
	}
	if err := o.ApplyFill(10, LevelBuyPending, 1); err == nil {
		t.Error("fill past the last level should fail")
	}
	if err := o.ApplyFill(-1, LevelBuyPending, 1); err == nil {
		t.Error("negative level should fail")
	}
}

func TestGridValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*GridOrder)
	}{
		{"one level", func(o *GridOrder) { o.GridLevels = 1 }},
		{"too many levels", func(o *GridOrder) { o.GridLevels = 101 }},
		{"inverted range", func(o *GridOrder) { o.LowerPrice, o.UpperPrice = o.UpperPrice, o.LowerPrice }},
		{"equal bounds", func(o *GridOrder) { o.UpperPrice = o.LowerPrice }},
		{"zero lower price", func(o *GridOrder) { o.LowerPrice = decimal.Zero }},
		{"zero amount", func(o *GridOrder) { o.AmountPerLevel = cosmath.ZeroInt() }},
	}
	for _, tc := range cases {
		o := gridFixture()
		tc.mutate(&o)
		if err := o.Validate(); !errors.Is(err, ErrInvalid) {
			t.Errorf("%s: got %v, want ErrInvalid", tc.name, err)
		}
	}

	o := gridFixture()
	if err := o.Validate(); err != nil {
		t.Errorf("valid grid rejected: %v", err)
	}
}

func TestGridStatus(t *testing.T) {
	o := gridFixture()
	if got := o.Status(); got != StatusActive {
		t.Errorf("status = %s, want ACTIVE", got)
	}
	o.Active = false
	if got := o.Status(); got != StatusCancelled {
		t.Errorf("inactive status = %s, want CANCELLED", got)
	}
	o.Active = true
	o.Cancelled = true
	if got := o.Status(); got != StatusCancelled {
		t.Errorf("cancelled status = %s, want CANCELLED", got)
	}
}
