package dex

import (
	"context"
	"fmt"

	cosmath "cosmossdk.io/math"
	"go.uber.org/zap"

	"github.com/uuzor/massabeam-go/pkg/beam"
	"github.com/uuzor/massabeam-go/pkg/fixedpoint"
	"github.com/uuzor/massabeam-go/pkg/gateway"
	"github.com/uuzor/massabeam-go/pkg/order"
)

// Order submission. Each create flow is strictly sequential: validate,
// allowance read, approve-if-needed awaited to finality, then the create
// call awaited to finality. Validation failures never reach the network.

// CreateLimitOrder submits a limit order and returns its operation id.
func (c *Client) CreateLimitOrder(ctx context.Context, o order.LimitOrder) (string, error) {
	if err := o.Validate(); err != nil {
		return "", err
	}
	if err := c.ensureAllowance(ctx, o.TokenIn, c.opts.OrderContract, o.AmountIn); err != nil {
		return "", err
	}

	minOut := o.MinAmountOut
	if minOut.IsNil() {
		minOut = cosmath.ZeroInt()
	}
	args, err := gateway.NewArgs().
		AddU8(uint8(o.Type)).
		AddString(o.TokenIn.String()).
		AddString(o.TokenOut.String()).
		AddU256(o.AmountIn).
		AddU256(minOut).
		AddU256(o.LimitPrice).
		AddU64(o.Expiry).
		Bytes()
	if err != nil {
		return "", err
	}

	return c.submit(ctx, "createLimitOrder", args)
}

// CreateRecurringOrder submits a DCA order. The allowance covers the full
// schedule up front so the bot can execute every interval.
func (c *Client) CreateRecurringOrder(ctx context.Context, o order.RecurringOrder) (string, error) {
	if err := o.Validate(); err != nil {
		return "", err
	}
	total := o.AmountPerExecution.MulRaw(int64(o.TotalExecutions))
	if err := c.ensureAllowance(ctx, o.TokenIn, c.opts.OrderContract, total); err != nil {
		return "", err
	}

	args, err := gateway.NewArgs().
		AddString(o.TokenIn.String()).
		AddString(o.TokenOut.String()).
		AddU256(o.AmountPerExecution).
		AddU64(o.IntervalPeriods).
		AddU64(o.TotalExecutions).
		Bytes()
	if err != nil {
		return "", err
	}

	return c.submit(ctx, "createRecurringOrder", args)
}

// CreateGridOrder submits a grid order. Bounds cross the boundary as Q64.96
// integers; the decimal ladder built client-side is display-only.
func (c *Client) CreateGridOrder(ctx context.Context, o order.GridOrder) (string, error) {
	if err := o.Validate(); err != nil {
		return "", err
	}
	total := o.AmountPerLevel.MulRaw(int64(o.GridLevels))
	if err := c.ensureAllowance(ctx, o.TokenIn, c.opts.OrderContract, total); err != nil {
		return "", err
	}

	lowerQ, err := fixedpoint.FromDecimal(o.LowerPrice)
	if err != nil {
		return "", fmt.Errorf("%w: lowerPrice: %v", order.ErrInvalid, err)
	}
	upperQ, err := fixedpoint.FromDecimal(o.UpperPrice)
	if err != nil {
		return "", fmt.Errorf("%w: upperPrice: %v", order.ErrInvalid, err)
	}

	args, err := gateway.NewArgs().
		AddString(o.TokenIn.String()).
		AddString(o.TokenOut.String()).
		AddU64(uint64(o.GridLevels)).
		AddU256(lowerQ).
		AddU256(upperQ).
		AddU256(o.AmountPerLevel).
		Bytes()
	if err != nil {
		return "", err
	}

	return c.submit(ctx, "createGridOrder", args)
}

// CancelOrder cancels any of the three order kinds by id. Cancellation of an
// already-terminal order is rejected by the contract and surfaced verbatim.
func (c *Client) CancelOrder(ctx context.Context, kind string, id uint64) (string, error) {
	var function string
	switch kind {
	case "limit":
		function = "cancelLimitOrder"
	case "recurring":
		function = "cancelRecurringOrder"
	case "grid":
		function = "cancelGridOrder"
	default:
		return "", fmt.Errorf("%w: unknown order kind %q", order.ErrInvalid, kind)
	}

	args, err := gateway.NewArgs().AddU64(id).Bytes()
	if err != nil {
		return "", err
	}
	return c.submit(ctx, function, args)
}

// submit sends a state-changing order-contract call and waits for finality.
func (c *Client) submit(ctx context.Context, function string, args []byte) (string, error) {
	op, err := c.gw.CallSC(ctx, gateway.CallRequest{
		Contract: c.opts.OrderContract,
		Function: function,
		Args:     args,
		Coins:    cosmath.ZeroInt(),
		MaxGas:   c.opts.MaxGas,
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", function, err)
	}
	c.log.Info("submitted order operation",
		zap.String("function", function),
		zap.String("operation", op.ID()))
	if err := op.WaitFinal(ctx); err != nil {
		return op.ID(), fmt.Errorf("%s: %w", function, err)
	}
	return op.ID(), nil
}

// LimitOrders fetches the wallet's limit orders.
func (c *Client) LimitOrders(ctx context.Context) ([]order.LimitOrder, error) {
	raw, err := c.readOrders(ctx, "getLimitOrdersByOwner")
	if err != nil {
		return nil, err
	}
	r := gateway.NewArgsReader(raw)
	count, err := r.NextU64()
	if err != nil {
		return nil, fmt.Errorf("limit order count: %w", err)
	}
	orders := make([]order.LimitOrder, 0, count)
	for i := uint64(0); i < count; i++ {
		o, err := decodeLimitOrder(r)
		if err != nil {
			return nil, fmt.Errorf("limit order %d: %w", i, err)
		}
		o.Owner = c.opts.Wallet.Address
		orders = append(orders, o)
	}
	return orders, nil
}

// RecurringOrders fetches the wallet's DCA orders.
func (c *Client) RecurringOrders(ctx context.Context) ([]order.RecurringOrder, error) {
	raw, err := c.readOrders(ctx, "getRecurringOrdersByOwner")
	if err != nil {
		return nil, err
	}
	r := gateway.NewArgsReader(raw)
	count, err := r.NextU64()
	if err != nil {
		return nil, fmt.Errorf("recurring order count: %w", err)
	}
	orders := make([]order.RecurringOrder, 0, count)
	for i := uint64(0); i < count; i++ {
		o, err := decodeRecurringOrder(r)
		if err != nil {
			return nil, fmt.Errorf("recurring order %d: %w", i, err)
		}
		o.Owner = c.opts.Wallet.Address
		orders = append(orders, o)
	}
	return orders, nil
}

// GridOrders fetches the wallet's grid orders with their level ladders.
func (c *Client) GridOrders(ctx context.Context) ([]order.GridOrder, error) {
	raw, err := c.readOrders(ctx, "getGridOrdersByOwner")
	if err != nil {
		return nil, err
	}
	r := gateway.NewArgsReader(raw)
	count, err := r.NextU64()
	if err != nil {
		return nil, fmt.Errorf("grid order count: %w", err)
	}
	orders := make([]order.GridOrder, 0, count)
	for i := uint64(0); i < count; i++ {
		o, err := decodeGridOrder(r)
		if err != nil {
			return nil, fmt.Errorf("grid order %d: %w", i, err)
		}
		o.Owner = c.opts.Wallet.Address
		orders = append(orders, o)
	}
	return orders, nil
}

func (c *Client) readOrders(ctx context.Context, function string) ([]byte, error) {
	args, err := gateway.NewArgs().AddString(c.opts.Wallet.Address.String()).Bytes()
	if err != nil {
		return nil, err
	}
	raw, err := c.gw.ReadSC(ctx, gateway.ReadRequest{
		Contract: c.opts.OrderContract,
		Function: function,
		Args:     args,
		Caller:   c.opts.Wallet.Address,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", function, err)
	}
	return raw, nil
}

// Decode schemas mirror the contract serializers field for field.

func decodeLimitOrder(r *gateway.ArgsReader) (order.LimitOrder, error) {
	var o order.LimitOrder
	var err error
	if o.ID, err = r.NextU64(); err != nil {
		return o, err
	}
	orderType, err := r.NextU8()
	if err != nil {
		return o, err
	}
	o.Type = order.Type(orderType)
	tokenIn, err := r.NextString()
	if err != nil {
		return o, err
	}
	tokenOut, err := r.NextString()
	if err != nil {
		return o, err
	}
	o.TokenIn, o.TokenOut = beam.Address(tokenIn), beam.Address(tokenOut)
	if o.AmountIn, err = r.NextU256(); err != nil {
		return o, err
	}
	if o.MinAmountOut, err = r.NextU256(); err != nil {
		return o, err
	}
	if o.LimitPrice, err = r.NextU256(); err != nil {
		return o, err
	}
	if o.Expiry, err = r.NextU64(); err != nil {
		return o, err
	}
	if o.Filled, err = r.NextBool(); err != nil {
		return o, err
	}
	if o.Cancelled, err = r.NextBool(); err != nil {
		return o, err
	}
	if o.CreatedAt, err = r.NextU64(); err != nil {
		return o, err
	}
	return o, nil
}

func decodeRecurringOrder(r *gateway.ArgsReader) (order.RecurringOrder, error) {
	var o order.RecurringOrder
	var err error
	if o.ID, err = r.NextU64(); err != nil {
		return o, err
	}
	tokenIn, err := r.NextString()
	if err != nil {
		return o, err
	}
	tokenOut, err := r.NextString()
	if err != nil {
		return o, err
	}
	o.TokenIn, o.TokenOut = beam.Address(tokenIn), beam.Address(tokenOut)
	if o.AmountPerExecution, err = r.NextU256(); err != nil {
		return o, err
	}
	if o.IntervalPeriods, err = r.NextU64(); err != nil {
		return o, err
	}
	if o.TotalExecutions, err = r.NextU64(); err != nil {
		return o, err
	}
	if o.ExecutedCount, err = r.NextU64(); err != nil {
		return o, err
	}
	if o.LastExecutionPeriod, err = r.NextU64(); err != nil {
		return o, err
	}
	if o.Active, err = r.NextBool(); err != nil {
		return o, err
	}
	if o.Cancelled, err = r.NextBool(); err != nil {
		return o, err
	}
	return o, nil
}

func decodeGridOrder(r *gateway.ArgsReader) (order.GridOrder, error) {
	var o order.GridOrder
	var err error
	if o.ID, err = r.NextU64(); err != nil {
		return o, err
	}
	tokenIn, err := r.NextString()
	if err != nil {
		return o, err
	}
	tokenOut, err := r.NextString()
	if err != nil {
		return o, err
	}
	o.TokenIn, o.TokenOut = beam.Address(tokenIn), beam.Address(tokenOut)
	levels, err := r.NextU64()
	if err != nil {
		return o, err
	}
	o.GridLevels = uint32(levels)
	lowerQ, err := r.NextU256()
	if err != nil {
		return o, err
	}
	upperQ, err := r.NextU256()
	if err != nil {
		return o, err
	}
	if o.LowerPrice, err = fixedpoint.ToDecimal(lowerQ); err != nil {
		return o, err
	}
	if o.UpperPrice, err = fixedpoint.ToDecimal(upperQ); err != nil {
		return o, err
	}
	if o.AmountPerLevel, err = r.NextU256(); err != nil {
		return o, err
	}
	if o.Active, err = r.NextBool(); err != nil {
		return o, err
	}
	if o.Cancelled, err = r.NextBool(); err != nil {
		return o, err
	}

	o.Levels = make([]order.GridLevel, 0, o.GridLevels)
	for i := uint32(0); i < o.GridLevels; i++ {
		priceQ, err := r.NextU256()
		if err != nil {
			return o, fmt.Errorf("level %d price: %w", i, err)
		}
		price, err := fixedpoint.ToDecimal(priceQ)
		if err != nil {
			return o, fmt.Errorf("level %d price: %w", i, err)
		}
		amount, err := r.NextU256()
		if err != nil {
			return o, fmt.Errorf("level %d amount: %w", i, err)
		}
		statusCode, err := r.NextU8()
		if err != nil {
			return o, fmt.Errorf("level %d status: %w", i, err)
		}
		fillPeriod, err := r.NextU64()
		if err != nil {
			return o, fmt.Errorf("level %d fill period: %w", i, err)
		}
		o.Levels = append(o.Levels, order.GridLevel{
			Price:          price,
			Amount:         amount,
			Status:         levelStatusFromCode(statusCode),
			LastFillPeriod: fillPeriod,
		})
	}
	return o, nil
}

func levelStatusFromCode(code uint8) order.LevelStatus {
	switch code {
	case 1:
		return order.LevelBuyPending
	case 2:
		return order.LevelSellPending
	default:
		return order.LevelIdle
	}
}
