package main

import (
	"time"

	"github.com/uuzor/massabeam-go/pkg/order"
)

// QuoteResponse is the wire shape of a swap estimate. Amounts are base units
// as decimal strings.
type QuoteResponse struct {
	TokenIn           string `json:"tokenIn"`
	AmountIn          string `json:"amountIn"`
	AmountOut         string `json:"amountOut"`
	EffectivePrice    string `json:"effectivePrice"`
	PriceImpactPct    string `json:"priceImpactPct"`
	ImpactUnderstated bool   `json:"impactUnderstated"`
	FeePpm            uint32 `json:"feePpm"`
}

// Order views pair the raw record with its derived status so clients never
// re-implement the lifecycle rules.

type LimitOrderView struct {
	order.LimitOrder
	Status string `json:"status"`
}

type RecurringOrderView struct {
	order.RecurringOrder
	Status    string `json:"status"`
	Remaining uint64 `json:"remainingExecutions"`
}

type GridOrderView struct {
	order.GridOrder
	Status      string `json:"status"`
	ProgressPct string `json:"progressPct"`
}

type OrdersResponse struct {
	Limit     []LimitOrderView     `json:"limit"`
	Recurring []RecurringOrderView `json:"recurring"`
	Grid      []GridOrderView      `json:"grid"`
	AsOf      time.Time            `json:"asOf"`
}

type HealthResponse struct {
	Status     string    `json:"status"`
	LastPoll   time.Time `json:"lastPoll"`
	Uptime     string    `json:"uptime"`
	CachedAsOf time.Time `json:"cachedAsOf"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
