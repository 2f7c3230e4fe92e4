// Package fixedpoint converts between the contract's Q64.96 fixed-point
// price representation and decimals for display and client-side estimation.
// The decimal side is one-directional: a decimal derived here is never fed
// back into a contract call, only the Q64.96 integer crosses that boundary.
package fixedpoint

import (
	"fmt"
	"math"
	"math/big"

	cosmath "cosmossdk.io/math"
	"github.com/shopspring/decimal"
)

// DisplayPrecision is the number of fractional decimal digits kept when
// dividing out of Q64.96. Rounding happens at this precision only, after the
// exact division.
const DisplayPrecision = 18

var (
	q96Int = new(big.Int).Lsh(big.NewInt(1), 96)
	q96Dec = decimal.NewFromBigInt(new(big.Int).Lsh(big.NewInt(1), 96), 0)
)

// Q96 returns 2^96 as an integer.
func Q96() cosmath.Int {
	return cosmath.NewIntFromBigInt(new(big.Int).Set(q96Int))
}

// ToDecimal converts a Q64.96 integer to its decimal value, q / 2^96, rounded
// at DisplayPrecision. Prices are strictly positive, so q <= 0 is rejected.
func ToDecimal(q cosmath.Int) (decimal.Decimal, error) {
	if q.IsNil() {
		return decimal.Decimal{}, fmt.Errorf("fixedpoint: nil value")
	}
	if !q.IsPositive() {
		return decimal.Decimal{}, fmt.Errorf("fixedpoint: value %s must be positive", q)
	}
	d := decimal.NewFromBigInt(q.BigInt(), 0)
	return d.DivRound(q96Dec, DisplayPrecision), nil
}

// FromDecimal converts a decimal to Q64.96, floor(d * 2^96). Non-positive
// inputs are rejected: a zero or negative price is never a valid field.
func FromDecimal(d decimal.Decimal) (cosmath.Int, error) {
	if d.Sign() <= 0 {
		return cosmath.Int{}, fmt.Errorf("fixedpoint: price %s must be positive", d)
	}
	scaled := d.Mul(q96Dec).Floor()
	return cosmath.NewIntFromBigInt(scaled.BigInt()), nil
}

// FromFloat converts a float price to Q64.96, rejecting NaN and infinities at
// the ingestion boundary before any fixed-point arithmetic happens.
func FromFloat(f float64) (cosmath.Int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return cosmath.Int{}, fmt.Errorf("fixedpoint: non-finite price %v", f)
	}
	return FromDecimal(decimal.NewFromFloat(f))
}
