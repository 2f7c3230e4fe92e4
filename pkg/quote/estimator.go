// Package quote estimates swap output and price impact for display before
// submission. The estimate is a single-tick linear approximation: it does not
// simulate crossing tick boundaries, so it understates impact for trades that
// are large relative to available liquidity. Callers are flagged, never
// silently corrected, when that happens.
package quote

import (
	"errors"
	"fmt"

	cosmath "cosmossdk.io/math"
	"github.com/shopspring/decimal"
)

// ErrPriceUnavailable is returned when the pool price has not been loaded.
// It is a degraded display state, not a failure: the caller shows "price
// unavailable" instead of a stale quote.
var ErrPriceUnavailable = errors.New("quote: current price unavailable")

// DefaultMaxLiquidityFraction is the share of visible liquidity above which
// an estimate is flagged as understated.
var DefaultMaxLiquidityFraction = decimal.NewFromFloat(0.1)

var (
	ppmDenominator = decimal.NewFromInt(1_000_000)
	hundred        = decimal.NewFromInt(100)
	impactCap      = decimal.NewFromInt(99)
)

// Params describes a hypothetical swap to estimate.
type Params struct {
	AmountIn   cosmath.Int
	ZeroForOne bool
	// CurrentPrice is the pool's token1/token0 spot price. A zero value means
	// the pool is not loaded.
	CurrentPrice decimal.Decimal
	FeePpm       uint32
	// VisibleLiquidity, when positive, enables the understatement flag:
	// AmountIn above VisibleLiquidity * MaxLiquidityFraction marks the quote.
	VisibleLiquidity cosmath.Int
	// MaxLiquidityFraction overrides DefaultMaxLiquidityFraction when positive.
	MaxLiquidityFraction decimal.Decimal
}

// Quote is an estimate for UI display. AmountOut and the impact percentage
// are hints; the contract computes the authoritative amounts on execution.
type Quote struct {
	AmountIn       cosmath.Int
	AmountOut      cosmath.Int
	EffectivePrice decimal.Decimal
	PriceImpactPct decimal.Decimal
	ZeroForOne     bool
	FeePpm         uint32
	// ImpactUnderstated marks quotes where AmountIn exceeds the configured
	// fraction of visible liquidity, so the linear estimate is optimistic.
	ImpactUnderstated bool
}

// Estimate computes the expected output and price impact for a swap.
func Estimate(p Params) (Quote, error) {
	if p.CurrentPrice.Sign() <= 0 {
		return Quote{}, ErrPriceUnavailable
	}
	if p.AmountIn.IsNil() || p.AmountIn.IsNegative() {
		return Quote{}, fmt.Errorf("quote: amountIn must be non-negative")
	}

	q := Quote{
		AmountIn:   p.AmountIn,
		AmountOut:  cosmath.ZeroInt(),
		ZeroForOne: p.ZeroForOne,
		FeePpm:     p.FeePpm,
	}
	if p.AmountIn.IsZero() {
		q.PriceImpactPct = decimal.Zero
		q.EffectivePrice = p.CurrentPrice
		return q, nil
	}

	amountIn := decimal.NewFromBigInt(p.AmountIn.BigInt(), 0)

	var grossOut decimal.Decimal
	if p.ZeroForOne {
		grossOut = amountIn.Mul(p.CurrentPrice)
	} else {
		grossOut = amountIn.DivRound(p.CurrentPrice, 18)
	}

	feeFactor := ppmDenominator.Sub(decimal.NewFromInt(int64(p.FeePpm))).DivRound(ppmDenominator, 18)
	netOut := grossOut.Mul(feeFactor)
	q.AmountOut = cosmath.NewIntFromBigInt(netOut.Floor().BigInt())

	if q.AmountOut.IsZero() {
		// Degenerate input: output rounds to nothing, show the cap.
		q.EffectivePrice = decimal.Zero
		q.PriceImpactPct = impactCap
		flagUnderstated(&q, p)
		return q, nil
	}

	if p.ZeroForOne {
		q.EffectivePrice = netOut.DivRound(amountIn, 18)
	} else {
		q.EffectivePrice = amountIn.DivRound(netOut, 18)
	}

	impact := q.EffectivePrice.Sub(p.CurrentPrice).Abs().
		DivRound(p.CurrentPrice, 18).Mul(hundred)
	if impact.GreaterThan(impactCap) {
		impact = impactCap
	}
	q.PriceImpactPct = impact

	flagUnderstated(&q, p)
	return q, nil
}

// flagUnderstated sets ImpactUnderstated when the trade size exceeds the
// configured fraction of visible liquidity.
func flagUnderstated(q *Quote, p Params) {
	if p.VisibleLiquidity.IsNil() || !p.VisibleLiquidity.IsPositive() {
		return
	}
	fraction := p.MaxLiquidityFraction
	if fraction.Sign() <= 0 {
		fraction = DefaultMaxLiquidityFraction
	}
	threshold := decimal.NewFromBigInt(p.VisibleLiquidity.BigInt(), 0).Mul(fraction)
	amountIn := decimal.NewFromBigInt(p.AmountIn.BigInt(), 0)
	if amountIn.GreaterThan(threshold) {
		q.ImpactUnderstated = true
	}
}
