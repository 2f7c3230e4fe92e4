// Package tickmath approximates price <-> tick conversion for client-side
// hinting and validation. The contract performs the authoritative integer
// tick math on submission; the logarithmic approximation here must never be
// the sole source of a submitted tick boundary.
package tickmath

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Protocol-wide tick range. price = 1.0001^tick.
const (
	MinTick int32 = -887272
	MaxTick int32 = 887272

	// Full-range bounds used by the contracts for every fee tier. These are
	// not multiples of every tick spacing (887220 % 200 != 0); the chain
	// special-cases full-range positions, so they are kept verbatim rather
	// than re-aligned.
	FullRangeLower int32 = -887220
	FullRangeUpper int32 = 887220
)

var lnBase = math.Log(1.0001)

// PriceToTick returns floor(ln(price) / ln(1.0001)). The result is a hint:
// float logarithms drift from the contract's exact integer math by up to a
// tick near the range ends.
func PriceToTick(price decimal.Decimal) (int32, error) {
	if price.Sign() <= 0 {
		return 0, fmt.Errorf("tickmath: price %s must be positive", price)
	}
	f, _ := price.Float64()
	if f <= 0 || math.IsInf(f, 0) {
		return 0, fmt.Errorf("tickmath: price %s out of float range", price)
	}
	tick := int64(math.Floor(math.Log(f) / lnBase))
	if tick < int64(MinTick) || tick > int64(MaxTick) {
		return 0, fmt.Errorf("tickmath: price %s maps to tick %d outside [%d, %d]",
			price, tick, MinTick, MaxTick)
	}
	return int32(tick), nil
}

// TickToPrice returns 1.0001^tick for display.
func TickToPrice(tick int32) decimal.Decimal {
	return decimal.NewFromFloat(math.Pow(1.0001, float64(tick)))
}

// AlignTick aligns a tick to a multiple of spacing. Lower bounds round down
// and upper bounds round up so an aligned [lower, upper] range never
// collapses to empty.
func AlignTick(tick, spacing int32, roundUp bool) int32 {
	if spacing <= 0 {
		return tick
	}
	q := tick / spacing
	r := tick % spacing
	if r == 0 {
		return tick
	}
	if roundUp {
		if tick > 0 {
			q++
		}
	} else {
		if tick < 0 {
			q--
		}
	}
	return q * spacing
}

// PriceToLowerTick converts a price to a tick aligned down to spacing, for
// use as a range lower bound.
func PriceToLowerTick(price decimal.Decimal, spacing int32) (int32, error) {
	tick, err := PriceToTick(price)
	if err != nil {
		return 0, err
	}
	return AlignTick(tick, spacing, false), nil
}

// PriceToUpperTick converts a price to a tick aligned up to spacing, for use
// as a range upper bound.
func PriceToUpperTick(price decimal.Decimal, spacing int32) (int32, error) {
	tick, err := PriceToTick(price)
	if err != nil {
		return 0, err
	}
	return AlignTick(tick, spacing, true), nil
}

// FullRangeBounds returns the protocol's fixed full-range boundaries. The
// spacing argument is accepted for symmetry with the other converters but
// does not change the result.
func FullRangeBounds(spacing int32) (int32, int32) {
	_ = spacing
	return FullRangeLower, FullRangeUpper
}
