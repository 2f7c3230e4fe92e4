package order

import (
	"fmt"

	cosmath "cosmossdk.io/math"
	"github.com/shopspring/decimal"

	"github.com/uuzor/massabeam-go/pkg/beam"
)

// Grid orders accept between 2 and 100 levels.
const (
	MinGridLevels = 2
	MaxGridLevels = 100
)

// LevelStatus reflects a grid level's last-known state on chain. Transitions
// are event-driven from bot executions; the client never advances a level
// locally.
type LevelStatus string

const (
	LevelIdle        LevelStatus = "IDLE"
	LevelBuyPending  LevelStatus = "BUY_PENDING"
	LevelSellPending LevelStatus = "SELL_PENDING"
)

// GridLevel is one rung of the ladder.
type GridLevel struct {
	Price          decimal.Decimal `json:"price"`
	Amount         cosmath.Int     `json:"amount"`
	Status         LevelStatus     `json:"status"`
	LastFillPeriod uint64          `json:"lastFillPeriod"`
}

// GridOrder mirrors the on-chain grid order record and owns its ordered
// level sequence. Level prices are an arithmetic subdivision of
// [LowerPrice, UpperPrice] inclusive of both bounds.
type GridOrder struct {
	ID             uint64          `json:"id"`
	Owner          beam.Address    `json:"owner"`
	TokenIn        beam.Address    `json:"tokenIn"`
	TokenOut       beam.Address    `json:"tokenOut"`
	GridLevels     uint32          `json:"gridLevels"`
	LowerPrice     decimal.Decimal `json:"lowerPrice"`
	UpperPrice     decimal.Decimal `json:"upperPrice"`
	AmountPerLevel cosmath.Int     `json:"amountPerLevel"`
	Active         bool            `json:"active"`
	Cancelled      bool            `json:"cancelled"`
	Levels         []GridLevel     `json:"levels"`
}

// Validate performs the client-side checks run before submission.
func (o *GridOrder) Validate() error {
	if err := validateTokenPair(o.TokenIn, o.TokenOut); err != nil {
		return err
	}
	if err := validatePositiveAmount("amountPerLevel", o.AmountPerLevel); err != nil {
		return err
	}
	if o.GridLevels < MinGridLevels || o.GridLevels > MaxGridLevels {
		return fmt.Errorf("%w: gridLevels %d outside [%d, %d]",
			ErrInvalid, o.GridLevels, MinGridLevels, MaxGridLevels)
	}
	if o.LowerPrice.Sign() <= 0 {
		return fmt.Errorf("%w: lowerPrice must be positive", ErrInvalid)
	}
	if !o.LowerPrice.LessThan(o.UpperPrice) {
		return fmt.Errorf("%w: lowerPrice %s must be below upperPrice %s",
			ErrInvalid, o.LowerPrice, o.UpperPrice)
	}
	return nil
}

// BuildLevels populates the level ladder: GridLevels prices evenly spaced
// across [LowerPrice, UpperPrice] with both bounds included, every level
// IDLE. Called once at composition; afterwards levels only change by
// ApplyFill.
func (o *GridOrder) BuildLevels() error {
	if err := o.Validate(); err != nil {
		return err
	}
	n := int64(o.GridLevels)
	span := o.UpperPrice.Sub(o.LowerPrice)
	steps := decimal.NewFromInt(n - 1)

	levels := make([]GridLevel, n)
	for i := int64(0); i < n; i++ {
		price := o.UpperPrice
		if i < n-1 {
			price = o.LowerPrice.Add(span.Mul(decimal.NewFromInt(i)).DivRound(steps, 18))
		}
		levels[i] = GridLevel{
			Price:  price,
			Amount: o.AmountPerLevel,
			Status: LevelIdle,
		}
	}
	o.Levels = levels
	return nil
}

// ApplyFill records a chain-reported level transition. Out-of-range indexes
// are rejected rather than clamped; a mismatch means the local copy is stale
// and must be re-fetched.
func (o *GridOrder) ApplyFill(level int, status LevelStatus, period uint64) error {
	if level < 0 || level >= len(o.Levels) {
		return fmt.Errorf("grid order %d has no level %d", o.ID, level)
	}
	o.Levels[level].Status = status
	o.Levels[level].LastFillPeriod = period
	return nil
}

// FilledLevels counts levels that have left IDLE.
func (o *GridOrder) FilledLevels() int {
	filled := 0
	for _, lvl := range o.Levels {
		if lvl.Status != LevelIdle {
			filled++
		}
	}
	return filled
}

// ProgressPct derives completion from the level sequence.
func (o *GridOrder) ProgressPct() decimal.Decimal {
	if len(o.Levels) == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(o.FilledLevels())).
		Mul(decimal.NewFromInt(100)).
		DivRound(decimal.NewFromInt(int64(len(o.Levels))), 4)
}

// Status derives the lifecycle state from the canonical flags, with the same
// inactive-means-cancelled collapse as recurring orders.
func (o *GridOrder) Status() Status {
	switch {
	case o.Cancelled:
		return StatusCancelled
	case o.Active:
		return StatusActive
	default:
		return StatusCancelled
	}
}
