// Package beam holds the shared on-chain data model for the MassaBeam
// concentrated-liquidity DEX: pools, positions and the fee-tier table.
// Everything here is a value fetched from or destined for the chain; the
// client never owns authoritative state.
package beam

import (
	"fmt"
	"time"

	cosmath "cosmossdk.io/math"
	"github.com/shopspring/decimal"

	"github.com/uuzor/massabeam-go/pkg/fixedpoint"
)

// FeeTier pairs a swap fee (parts per million) with the tick spacing
// positions in that tier must align to.
type FeeTier struct {
	FeePpm      uint32
	TickSpacing int32
}

// The deployed contracts only accept these three tiers.
var feeTiers = []FeeTier{
	{FeePpm: 500, TickSpacing: 10},
	{FeePpm: 3000, TickSpacing: 60},
	{FeePpm: 10000, TickSpacing: 200},
}

// FeeTiers returns the enumerated fee tiers supported by the protocol.
func FeeTiers() []FeeTier {
	tiers := make([]FeeTier, len(feeTiers))
	copy(tiers, feeTiers)
	return tiers
}

// FeeTierForPpm resolves a fee value to its tier.
func FeeTierForPpm(feePpm uint32) (FeeTier, error) {
	for _, tier := range feeTiers {
		if tier.FeePpm == feePpm {
			return tier, nil
		}
	}
	return FeeTier{}, fmt.Errorf("unknown fee tier: %d ppm", feePpm)
}

// Token describes a fungible token contract.
type Token struct {
	Address  Address `json:"address"`
	Symbol   string  `json:"symbol"`
	Decimals uint8   `json:"decimals"`
}

// Pool mirrors the on-chain pool state the client cares about. SqrtPrice is
// the Q64.96 square root of the token1/token0 price, exactly as stored on
// chain.
type Pool struct {
	Address     Address     `json:"address"`
	Token0      Address     `json:"token0"`
	Token1      Address     `json:"token1"`
	FeePpm      uint32      `json:"feePpm"`
	TickSpacing int32       `json:"tickSpacing"`
	SqrtPrice   cosmath.Int `json:"sqrtPrice"`
	CurrentTick int32       `json:"currentTick"`
	Liquidity   cosmath.Int `json:"liquidity"`
	LastUpdate  time.Time   `json:"lastUpdate"`
}

// SpotPrice returns the pool's current token1/token0 price as a decimal for
// display and client-side estimation. The Q64.96 integer remains the value
// that crosses the contract boundary.
func (p *Pool) SpotPrice() (decimal.Decimal, error) {
	if p.SqrtPrice.IsNil() || !p.SqrtPrice.IsPositive() {
		return decimal.Decimal{}, fmt.Errorf("pool %s has no price", p.Address)
	}
	sqrt, err := fixedpoint.ToDecimal(p.SqrtPrice)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return sqrt.Mul(sqrt), nil
}

// Loaded reports whether the pool state has been fetched at least once.
func (p *Pool) Loaded() bool {
	return !p.SqrtPrice.IsNil() && p.SqrtPrice.IsPositive()
}

// Position is a concentrated-liquidity position record. Positions are created
// by mint and mutated by mint/burn/collect; a position whose liquidity drops
// to zero persists as a record.
type Position struct {
	Owner       Address     `json:"owner"`
	Pool        Address     `json:"pool"`
	TickLower   int32       `json:"tickLower"`
	TickUpper   int32       `json:"tickUpper"`
	Liquidity   cosmath.Int `json:"liquidity"`
	TokensOwed0 cosmath.Int `json:"tokensOwed0"`
	TokensOwed1 cosmath.Int `json:"tokensOwed1"`
}

// Validate checks the boundary invariants the contract enforces on mint.
func (pos *Position) Validate(tickSpacing int32) error {
	if pos.TickLower >= pos.TickUpper {
		return fmt.Errorf("tickLower %d must be below tickUpper %d", pos.TickLower, pos.TickUpper)
	}
	if tickSpacing <= 0 {
		return fmt.Errorf("invalid tick spacing %d", tickSpacing)
	}
	if pos.TickLower%tickSpacing != 0 || pos.TickUpper%tickSpacing != 0 {
		return fmt.Errorf("position bounds [%d, %d] must be multiples of spacing %d",
			pos.TickLower, pos.TickUpper, tickSpacing)
	}
	return nil
}
