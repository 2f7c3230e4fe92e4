package order

import (
	"fmt"

	cosmath "cosmossdk.io/math"

	"github.com/uuzor/massabeam-go/pkg/beam"
)

// RecurringOrder mirrors the on-chain DCA order record: a fixed-size swap
// executed by the bot every IntervalPeriods chain periods until
// TotalExecutions have run.
type RecurringOrder struct {
	ID                  uint64       `json:"id"`
	Owner               beam.Address `json:"owner"`
	TokenIn             beam.Address `json:"tokenIn"`
	TokenOut            beam.Address `json:"tokenOut"`
	AmountPerExecution  cosmath.Int  `json:"amountPerExecution"`
	IntervalPeriods     uint64       `json:"intervalPeriods"`
	TotalExecutions     uint64       `json:"totalExecutions"`
	ExecutedCount       uint64       `json:"executedCount"`
	LastExecutionPeriod uint64       `json:"lastExecutionPeriod"`
	Active              bool         `json:"active"`
	Cancelled           bool         `json:"cancelled"`
}

// Status derives the lifecycle state. Completion wins over the active flag:
// once every execution has run the order is COMPLETE even if the contract
// still reports it active. Inactive-and-incomplete collapses to CANCELLED,
// matching the contract where deactivation without completion is a
// cancellation.
func (o *RecurringOrder) Status() Status {
	switch {
	case o.Cancelled:
		return StatusCancelled
	case o.ExecutedCount >= o.TotalExecutions:
		return StatusComplete
	case o.Active:
		return StatusActive
	default:
		return StatusCancelled
	}
}

// Validate performs the client-side checks run before submission.
func (o *RecurringOrder) Validate() error {
	if err := validateTokenPair(o.TokenIn, o.TokenOut); err != nil {
		return err
	}
	if err := validatePositiveAmount("amountPerExecution", o.AmountPerExecution); err != nil {
		return err
	}
	if o.IntervalPeriods == 0 {
		return fmt.Errorf("%w: intervalPeriods must be positive", ErrInvalid)
	}
	if o.TotalExecutions == 0 {
		return fmt.Errorf("%w: totalExecutions must be positive", ErrInvalid)
	}
	return nil
}

// RemainingExecutions returns how many executions are still due.
func (o *RecurringOrder) RemainingExecutions() uint64 {
	if o.ExecutedCount >= o.TotalExecutions {
		return 0
	}
	return o.TotalExecutions - o.ExecutedCount
}

// NextExecutionPeriod returns the earliest chain period the bot may execute
// at again, or zero when the order is terminal.
func (o *RecurringOrder) NextExecutionPeriod() uint64 {
	if o.Status().Terminal() {
		return 0
	}
	return o.LastExecutionPeriod + o.IntervalPeriods
}
