package dex

import (
	"context"
	"testing"
	"time"

	cosmath "cosmossdk.io/math"
	"github.com/shopspring/decimal"

	"github.com/uuzor/massabeam-go/pkg/gateway"
	"github.com/uuzor/massabeam-go/pkg/order"
)

func trackedGrid() order.GridOrder {
	return order.GridOrder{
		ID:             9,
		TokenIn:        tokenA,
		TokenOut:       tokenB,
		GridLevels:     3,
		LowerPrice:     decimal.RequireFromString("0.90"),
		UpperPrice:     decimal.RequireFromString("1.10"),
		AmountPerLevel: cosmath.NewInt(100),
		Active:         true,
		Levels: []order.GridLevel{
			{Price: decimal.RequireFromString("0.90"), Amount: cosmath.NewInt(100), Status: order.LevelIdle},
			{Price: decimal.RequireFromString("1.00"), Amount: cosmath.NewInt(100), Status: order.LevelIdle},
			{Price: decimal.RequireFromString("1.10"), Amount: cosmath.NewInt(100), Status: order.LevelIdle},
		},
	}
}

func TestTrackerHandleEventAppliesGridFill(t *testing.T) {
	tr := NewTracker(newTestClient(t, newFakeGateway()))
	tr.grid = []order.GridOrder{trackedGrid()}

	tr.HandleEvent(gateway.Event{Data: "grid_fill:9:1:SELL:4200"})

	_, _, grid := tr.Snapshot()
	lvl := grid[0].Levels[1]
	if lvl.Status != order.LevelSellPending {
		t.Fatalf("level status = %s, want SELL_PENDING", lvl.Status)
	}
	if lvl.LastFillPeriod != 4200 {
		t.Fatalf("fill period = %d, want 4200", lvl.LastFillPeriod)
	}
	// Untouched levels stay idle.
	if grid[0].Levels[0].Status != order.LevelIdle || grid[0].Levels[2].Status != order.LevelIdle {
		t.Fatal("unrelated levels changed")
	}
}

func TestTrackerHandleEventIgnoresMalformed(t *testing.T) {
	tr := NewTracker(newTestClient(t, newFakeGateway()))
	tr.grid = []order.GridOrder{trackedGrid()}

	for _, data := range []string{
		"swap:done",
		"grid_fill:9:1:SELL",        // missing period
		"grid_fill:x:1:SELL:4200",   // bad order id
		"grid_fill:9:one:SELL:4200", // bad level
		"grid_fill:77:1:SELL:4200",  // unknown order
		"grid_fill:9:99:SELL:4200",  // out-of-range level
	} {
		tr.HandleEvent(gateway.Event{Data: data})
	}

	_, _, grid := tr.Snapshot()
	for i, lvl := range grid[0].Levels {
		if lvl.Status != order.LevelIdle {
			t.Fatalf("level %d mutated by malformed event: %s", i, lvl.Status)
		}
	}
}

func TestTrackerRefreshReplacesSnapshots(t *testing.T) {
	gw := newFakeGateway()
	empty, err := gateway.NewArgs().AddU64(0).Bytes()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	gw.respond["getLimitOrdersByOwner"] = empty
	gw.respond["getRecurringOrdersByOwner"] = empty
	gw.respond["getGridOrdersByOwner"] = empty

	tr := NewTracker(newTestClient(t, gw))
	tr.grid = []order.GridOrder{trackedGrid()}
	tr.refresh(context.Background())

	limit, recurring, grid := tr.Snapshot()
	if len(limit) != 0 || len(recurring) != 0 || len(grid) != 0 {
		t.Fatalf("snapshot not replaced: %d/%d/%d", len(limit), len(recurring), len(grid))
	}
	if tr.LastPoll().IsZero() {
		t.Fatal("last poll not recorded")
	}
}

func TestTrackerRefreshKeepsSnapshotOnFailure(t *testing.T) {
	gw := newFakeGateway()
	empty, err := gateway.NewArgs().AddU64(0).Bytes()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	gw.respond["getLimitOrdersByOwner"] = empty
	gw.respond["getRecurringOrdersByOwner"] = empty
	// getGridOrdersByOwner intentionally unserved: that list read fails.

	tr := NewTracker(newTestClient(t, gw))
	tr.grid = []order.GridOrder{trackedGrid()}
	tr.refresh(context.Background())

	_, _, grid := tr.Snapshot()
	if len(grid) != 1 || grid[0].ID != 9 {
		t.Fatalf("failed list lost its previous snapshot: %+v", grid)
	}
}

func TestSnapshotReturnsCopies(t *testing.T) {
	tr := NewTracker(newTestClient(t, newFakeGateway()))
	tr.grid = []order.GridOrder{trackedGrid()}

	_, _, grid := tr.Snapshot()
	grid[0].ID = 1234

	_, _, again := tr.Snapshot()
	if again[0].ID != 9 {
		t.Fatal("snapshot shares backing storage with the tracker")
	}
}

func TestSnapshotLevelsIndependentOfEvents(t *testing.T) {
	tr := NewTracker(newTestClient(t, newFakeGateway()))
	tr.grid = []order.GridOrder{trackedGrid()}

	_, _, grid := tr.Snapshot()

	// A fill landing after the snapshot must not show up in it.
	tr.HandleEvent(gateway.Event{Data: "grid_fill:9:1:SELL:4200"})
	if grid[0].Levels[1].Status != order.LevelIdle {
		t.Fatal("snapshot levels share backing storage with the tracker")
	}

	// And writes into the snapshot leave the tracker alone.
	grid[0].Levels[2].Status = order.LevelBuyPending
	_, _, again := tr.Snapshot()
	if again[0].Levels[2].Status != order.LevelIdle {
		t.Fatal("tracker levels mutated through a snapshot")
	}
}

func TestSnapshotConcurrentWithEvents(t *testing.T) {
	tr := NewTracker(newTestClient(t, newFakeGateway()))
	tr.grid = []order.GridOrder{trackedGrid()}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			tr.HandleEvent(gateway.Event{Data: "grid_fill:9:1:SELL:4200"})
		}
	}()
	for i := 0; i < 200; i++ {
		_, _, grid := tr.Snapshot()
		_ = grid[0].Levels[1].Status
	}
	<-done
}

func TestStartSkipsTicksWhileRefreshInFlight(t *testing.T) {
	gw := newFakeGateway()
	empty, err := gateway.NewArgs().AddU64(0).Bytes()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	gw.respond["getLimitOrdersByOwner"] = empty
	gw.respond["getRecurringOrdersByOwner"] = empty
	gw.respond["getGridOrdersByOwner"] = empty

	tr := NewTracker(newTestClient(t, gw))
	tr.interval = 5 * time.Millisecond
	// Simulate a refresh that never completes; every tick must be skipped.
	tr.inFlight.Store(true)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	tr.Start(ctx)

	// Only the initial synchronous refresh touched the chain.
	if got := len(gw.reads); got != 3 {
		t.Fatalf("ticks refreshed while a poll was in flight: %d reads, want 3", got)
	}
}
