// Package order models the three autonomous order strategies the DEX
// supports: limit orders, recurring (DCA) orders and grid orders. Status is
// always derived from canonical on-chain fields, never stored as a separate
// mutable flag, so a cached order can not desynchronize from the chain.
package order

import (
	"errors"
	"fmt"

	cosmath "cosmossdk.io/math"
	"github.com/shopspring/decimal"

	"github.com/uuzor/massabeam-go/pkg/beam"
)

// ErrInvalid tags client-side validation failures. They are caught before any
// network call and surfaced inline, never retried.
var ErrInvalid = errors.New("invalid order")

// Type distinguishes buy and sell limit orders.
type Type uint8

const (
	TypeBuy  Type = 1
	TypeSell Type = 2
)

func (t Type) String() string {
	switch t {
	case TypeBuy:
		return "BUY"
	case TypeSell:
		return "SELL"
	default:
		return fmt.Sprintf("Type(%d)", uint8(t))
	}
}

// Status is a derived lifecycle state shared across the order variants.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusFilled    Status = "FILLED"
	StatusCancelled Status = "CANCELLED"
	StatusExpired   Status = "EXPIRED"
	StatusActive    Status = "ACTIVE"
	StatusComplete  Status = "COMPLETE"
)

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	switch s {
	case StatusFilled, StatusCancelled, StatusExpired, StatusComplete:
		return true
	}
	return false
}

func validateTokenPair(tokenIn, tokenOut beam.Address) error {
	if tokenIn == "" || tokenOut == "" {
		return fmt.Errorf("%w: both tokens must be selected", ErrInvalid)
	}
	if tokenIn == tokenOut {
		return fmt.Errorf("%w: tokenIn and tokenOut must differ", ErrInvalid)
	}
	return nil
}

func validatePositiveAmount(name string, amount cosmath.Int) error {
	if amount.IsNil() || !amount.IsPositive() {
		return fmt.Errorf("%w: %s must be positive", ErrInvalid, name)
	}
	return nil
}

func decimalFromInt(v cosmath.Int) decimal.Decimal {
	return decimal.NewFromBigInt(v.BigInt(), 0)
}

func intFromDecimal(d decimal.Decimal) cosmath.Int {
	return cosmath.NewIntFromBigInt(d.Floor().BigInt())
}
