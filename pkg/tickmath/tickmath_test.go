package tickmath

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestPriceToTickKnownValues(t *testing.T) {
	cases := []struct {
		price string
		want  int32
	}{
		{"1", 0},
		{"1.0001", 1},
		{"0.9999", -2}, // ln(0.9999)/ln(1.0001) ~ -1.00005, floors to -2
		{"2", 6931},
	}
	for _, tc := range cases {
		got, err := PriceToTick(dec(tc.price))
		if err != nil {
			t.Fatalf("PriceToTick(%s): %v", tc.price, err)
		}
		if got != tc.want {
			t.Errorf("PriceToTick(%s) = %d, want %d", tc.price, got, tc.want)
		}
	}
}

func TestPriceToTickRejectsOutOfRange(t *testing.T) {
	for _, price := range []string{"0", "-1", "1e80", "1e-80"} {
		if _, err := PriceToTick(dec(price)); err == nil {
			t.Errorf("PriceToTick(%s) should fail", price)
		}
	}
}

func TestAlignedBoundsNeverCollapse(t *testing.T) {
	prices := []string{"0.00042", "0.5", "0.9999", "1", "1.0001", "3.1415", "42", "123456"}
	spacings := []int32{10, 60, 200}

	for _, spacing := range spacings {
		for _, p := range prices {
			price := dec(p)
			lower, err := PriceToLowerTick(price, spacing)
			if err != nil {
				t.Fatalf("lower(%s, %d): %v", p, spacing, err)
			}
			upper, err := PriceToUpperTick(price, spacing)
			if err != nil {
				t.Fatalf("upper(%s, %d): %v", p, spacing, err)
			}
			if lower > upper {
				t.Errorf("price %s spacing %d: lower %d > upper %d", p, spacing, lower, upper)
			}
			if lower%spacing != 0 || upper%spacing != 0 {
				t.Errorf("price %s spacing %d: bounds %d/%d not aligned", p, spacing, lower, upper)
			}
		}
	}
}

func TestAlignTick(t *testing.T) {
	cases := []struct {
		tick, spacing int32
		roundUp       bool
		want          int32
	}{
		{95, 10, false, 90},
		{95, 10, true, 100},
		{-95, 10, false, -100},
		{-95, 10, true, -90},
		{120, 60, false, 120},
		{120, 60, true, 120},
		{0, 200, true, 0},
	}
	for _, tc := range cases {
		got := AlignTick(tc.tick, tc.spacing, tc.roundUp)
		if got != tc.want {
			t.Errorf("AlignTick(%d, %d, %v) = %d, want %d",
				tc.tick, tc.spacing, tc.roundUp, got, tc.want)
		}
	}
}

func TestFullRangeBoundsConstant(t *testing.T) {
	for _, spacing := range []int32{10, 60, 200} {
		lower, upper := FullRangeBounds(spacing)
		if lower != -887220 || upper != 887220 {
			t.Errorf("FullRangeBounds(%d) = (%d, %d), want (-887220, 887220)", spacing, lower, upper)
		}
	}
}

func TestTickToPriceInvertsApproximately(t *testing.T) {
	for _, tick := range []int32{-6932, -1, 0, 1, 6931, 100000} {
		price := TickToPrice(tick)
		back, err := PriceToTick(price)
		if err != nil {
			t.Fatalf("PriceToTick(TickToPrice(%d)): %v", tick, err)
		}
		if back < tick-1 || back > tick+1 {
			t.Errorf("tick %d round-tripped to %d", tick, back)
		}
	}
}
