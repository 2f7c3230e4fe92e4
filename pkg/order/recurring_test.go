package order

import (
	"errors"
	"testing"

	cosmath "cosmossdk.io/math"
)

func recurringFixture() RecurringOrder {
	return RecurringOrder{
		ID:                 7,
		Owner:              owner,
		TokenIn:            tokenA,
		TokenOut:           tokenB,
		AmountPerExecution: cosmath.NewInt(1000),
		IntervalPeriods:    100,
		TotalExecutions:    5,
		Active:             true,
	}
}

func TestRecurringStatusDerivation(t *testing.T) {
	cases := []struct {
		name      string
		executed  uint64
		active    bool
		cancelled bool
		want      Status
	}{
		{"fresh", 0, true, false, StatusActive},
		{"partway", 3, true, false, StatusActive},
		{"complete overrides active", 5, true, false, StatusComplete},
		{"over-complete still complete", 6, true, false, StatusComplete},
		{"cancelled wins", 5, true, true, StatusCancelled},
		{"inactive incomplete collapses to cancelled", 3, false, false, StatusCancelled},
	}
	for _, tc := range cases {
		o := recurringFixture()
		o.ExecutedCount = tc.executed
		o.Active = tc.active
		o.Cancelled = tc.cancelled
		if got := o.Status(); got != tc.want {
			t.Errorf("%s: status = %s, want %s", tc.name, got, tc.want)
		}
	}
}

func TestRecurringRemainingExecutions(t *testing.T) {
	o := recurringFixture()
	o.ExecutedCount = 3
	if got := o.RemainingExecutions(); got != 2 {
		t.Errorf("remaining = %d, want 2", got)
	}
	o.ExecutedCount = 6
	if got := o.RemainingExecutions(); got != 0 {
		t.Errorf("remaining past completion = %d, want 0", got)
	}
}

func TestRecurringNextExecutionPeriod(t *testing.T) {
	o := recurringFixture()
	o.LastExecutionPeriod = 12_000
	if got := o.NextExecutionPeriod(); got != 12_100 {
		t.Errorf("next period = %d, want 12100", got)
	}

	o.ExecutedCount = o.TotalExecutions
	if got := o.NextExecutionPeriod(); got != 0 {
		t.Errorf("terminal order next period = %d, want 0", got)
	}
}

func TestRecurringValidate(t *testing.T) {
	o := recurringFixture()
	if err := o.Validate(); err != nil {
		t.Fatalf("valid order rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*RecurringOrder)
	}{
		{"zero interval", func(o *RecurringOrder) { o.IntervalPeriods = 0 }},
		{"zero executions", func(o *RecurringOrder) { o.TotalExecutions = 0 }},
		{"zero amount", func(o *RecurringOrder) { o.AmountPerExecution = cosmath.ZeroInt() }},
		{"duplicate tokens", func(o *RecurringOrder) { o.TokenOut = o.TokenIn }},
	}
	for _, tc := range cases {
		o := recurringFixture()
		tc.mutate(&o)
		if err := o.Validate(); !errors.Is(err, ErrInvalid) {
			t.Errorf("%s: got %v, want ErrInvalid", tc.name, err)
		}
	}
}
