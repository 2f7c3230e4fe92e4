package dex

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/uuzor/massabeam-go/pkg/gateway"
	"github.com/uuzor/massabeam-go/pkg/order"
)

// Tracker keeps the wallet's order lists fresh: a fixed-interval poll
// re-reads all three lists, and chain events can update grid levels between
// polls. The tracker only ever reflects chain state; it never advances an
// order locally.
type Tracker struct {
	client   *Client
	interval time.Duration
	log      *zap.Logger

	inFlight atomic.Bool

	mu        sync.RWMutex
	limit     []order.LimitOrder
	recurring []order.RecurringOrder
	grid      []order.GridOrder
	lastPoll  time.Time
}

// NewTracker builds a tracker around a client, using the client's configured
// poll interval.
func NewTracker(client *Client) *Tracker {
	return &Tracker{
		client:   client,
		interval: client.opts.PollInterval,
		log:      client.log,
	}
}

// Start runs the poll loop until the context ends. A tick that arrives while
// the previous refresh is still in flight is skipped; polls against the same
// wallet never overlap.
func (t *Tracker) Start(ctx context.Context) {
	t.refresh(ctx)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			t.log.Debug("order tracker stopped")
			return
		case <-ticker.C:
			if !t.inFlight.CompareAndSwap(false, true) {
				t.log.Debug("previous poll still in flight, skipping tick")
				continue
			}
			go func() {
				defer t.inFlight.Store(false)
				t.refresh(ctx)
			}()
		}
	}
}

// refresh re-reads all order lists. A failed list keeps its previous
// snapshot; errors surface to the log and the user re-triggers if needed.
func (t *Tracker) refresh(ctx context.Context) {
	started := time.Now()

	limit, err := t.client.LimitOrders(ctx)
	if err != nil {
		t.log.Warn("limit order refresh failed", zap.Error(err))
	} else {
		t.mu.Lock()
		t.limit = limit
		t.mu.Unlock()
	}

	recurring, err := t.client.RecurringOrders(ctx)
	if err != nil {
		t.log.Warn("recurring order refresh failed", zap.Error(err))
	} else {
		t.mu.Lock()
		t.recurring = recurring
		t.mu.Unlock()
	}

	grid, err := t.client.GridOrders(ctx)
	if err != nil {
		t.log.Warn("grid order refresh failed", zap.Error(err))
	} else {
		t.mu.Lock()
		t.grid = grid
		t.mu.Unlock()
	}

	t.mu.Lock()
	t.lastPoll = time.Now()
	t.mu.Unlock()

	t.log.Debug("order snapshot refreshed",
		zap.Int("limit", len(limit)),
		zap.Int("recurring", len(recurring)),
		zap.Int("grid", len(grid)),
		zap.Duration("took", time.Since(started)))
}

// HandleEvent applies a contract event to the snapshot. Grid fill events are
// formatted by the contract as "grid_fill:<orderID>:<level>:<BUY|SELL>:<period>".
// Anything else just marks the snapshot for the next poll to pick up.
func (t *Tracker) HandleEvent(ev gateway.Event) {
	if !strings.HasPrefix(ev.Data, "grid_fill:") {
		return
	}
	parts := strings.Split(ev.Data, ":")
	if len(parts) != 5 {
		t.log.Debug("malformed grid fill event", zap.String("data", ev.Data))
		return
	}
	orderID, err1 := strconv.ParseUint(parts[1], 10, 64)
	level, err2 := strconv.Atoi(parts[2])
	period, err3 := strconv.ParseUint(parts[4], 10, 64)
	if err1 != nil || err2 != nil || err3 != nil {
		t.log.Debug("malformed grid fill event", zap.String("data", ev.Data))
		return
	}

	status := order.LevelBuyPending
	if parts[3] == "SELL" {
		status = order.LevelSellPending
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.grid {
		if t.grid[i].ID != orderID {
			continue
		}
		if err := t.grid[i].ApplyFill(level, status, period); err != nil {
			t.log.Warn("stale grid snapshot, awaiting next poll",
				zap.Uint64("order", orderID), zap.Error(err))
		}
		return
	}
}

// Snapshot returns copies of the tracked order lists. Grid levels are copied
// too: event handling mutates them in place, so a shared backing array would
// let snapshot readers race the handler.
func (t *Tracker) Snapshot() ([]order.LimitOrder, []order.RecurringOrder, []order.GridOrder) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	limit := make([]order.LimitOrder, len(t.limit))
	copy(limit, t.limit)
	recurring := make([]order.RecurringOrder, len(t.recurring))
	copy(recurring, t.recurring)
	grid := make([]order.GridOrder, len(t.grid))
	copy(grid, t.grid)
	for i := range grid {
		levels := make([]order.GridLevel, len(grid[i].Levels))
		copy(levels, grid[i].Levels)
		grid[i].Levels = levels
	}
	return limit, recurring, grid
}

// LastPoll reports when the last refresh completed.
func (t *Tracker) LastPoll() time.Time {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lastPoll
}
