package order

import (
	"fmt"
	"time"

	cosmath "cosmossdk.io/math"

	"github.com/uuzor/massabeam-go/pkg/beam"
	"github.com/uuzor/massabeam-go/pkg/fixedpoint"
)

// LimitOrder mirrors the on-chain limit order record. LimitPrice is the
// Q64.96 tokenOut/tokenIn price fixed at creation; Expiry is in seconds with
// zero meaning never.
type LimitOrder struct {
	ID           uint64       `json:"id"`
	Owner        beam.Address `json:"owner"`
	TokenIn      beam.Address `json:"tokenIn"`
	TokenOut     beam.Address `json:"tokenOut"`
	AmountIn     cosmath.Int  `json:"amountIn"`
	MinAmountOut cosmath.Int  `json:"minAmountOut"`
	LimitPrice   cosmath.Int  `json:"limitPrice"`
	Type         Type         `json:"orderType"`
	Expiry       uint64       `json:"expiry"`
	Filled       bool         `json:"filled"`
	Cancelled    bool         `json:"cancelled"`
	CreatedAt    uint64       `json:"createdAt"`
}

// Status derives the lifecycle state from the canonical flags. Filled and
// cancelled are sticky and checked before expiry: a filled order that has
// since passed its expiry still reports FILLED.
func (o *LimitOrder) Status(now time.Time) Status {
	switch {
	case o.Filled:
		return StatusFilled
	case o.Cancelled:
		return StatusCancelled
	case o.Expiry != 0 && uint64(now.Unix()) >= o.CreatedAt+o.Expiry:
		return StatusExpired
	default:
		return StatusPending
	}
}

// Validate performs the client-side checks run before submission.
func (o *LimitOrder) Validate() error {
	if err := validateTokenPair(o.TokenIn, o.TokenOut); err != nil {
		return err
	}
	if err := validatePositiveAmount("amountIn", o.AmountIn); err != nil {
		return err
	}
	if o.LimitPrice.IsNil() || !o.LimitPrice.IsPositive() {
		return fmt.Errorf("%w: limitPrice must be positive", ErrInvalid)
	}
	if o.Type != TypeBuy && o.Type != TypeSell {
		return fmt.Errorf("%w: unknown order type %d", ErrInvalid, o.Type)
	}
	return nil
}

// ExpectedOut is the pre-fee output hint shown while composing the order. It
// mirrors the swap estimator's direction logic but uses the user's limit
// price: a limit order's fill price is fixed at creation, not at quote time.
func (o *LimitOrder) ExpectedOut() (cosmath.Int, error) {
	if err := validatePositiveAmount("amountIn", o.AmountIn); err != nil {
		return cosmath.Int{}, err
	}
	price, err := fixedpoint.ToDecimal(o.LimitPrice)
	if err != nil {
		return cosmath.Int{}, fmt.Errorf("limit price: %w", err)
	}
	in := decimalFromInt(o.AmountIn)
	switch o.Type {
	case TypeSell:
		return intFromDecimal(in.Mul(price)), nil
	case TypeBuy:
		return intFromDecimal(in.DivRound(price, fixedpoint.DisplayPrecision)), nil
	default:
		return cosmath.Int{}, fmt.Errorf("%w: unknown order type %d", ErrInvalid, o.Type)
	}
}
