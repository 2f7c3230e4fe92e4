// Package dex is the client facade over the deployed MassaBeam contracts:
// pool reads, swap quoting, and the three order strategies. All chain access
// flows through an explicit Client carrying the wallet context; there is no
// package-level connection state.
package dex

import (
	"context"
	"fmt"
	"sync"
	"time"

	cosmath "cosmossdk.io/math"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/uuzor/massabeam-go/pkg/beam"
	"github.com/uuzor/massabeam-go/pkg/gateway"
	"github.com/uuzor/massabeam-go/pkg/quote"
)

const defaultMaxGas = 100_000_000

// Wallet is the connected account context. Connect/disconnect is an explicit
// lifecycle: a Client is built for one wallet and discarded on disconnect.
type Wallet struct {
	Address beam.Address
}

// Options configures a Client.
type Options struct {
	AMMContract   beam.Address
	OrderContract beam.Address
	Wallet        Wallet
	PollInterval  time.Duration
	MaxGas        uint64
	Logger        *zap.Logger
}

// Client talks to the DEX contracts through a Gateway. Cached pool state is
// read-through: it is only ever replaced by a fresh chain read, never mutated
// locally.
type Client struct {
	gw     gateway.Gateway
	opts   Options
	log    *zap.Logger
	prices *PriceCache

	mu    sync.RWMutex
	pools map[string]*beam.Pool
}

// New builds a Client for one wallet session.
func New(gw gateway.Gateway, opts Options) (*Client, error) {
	if err := opts.AMMContract.Validate(); err != nil {
		return nil, fmt.Errorf("amm contract: %w", err)
	}
	if err := opts.OrderContract.Validate(); err != nil {
		return nil, fmt.Errorf("order contract: %w", err)
	}
	if err := opts.Wallet.Address.Validate(); err != nil {
		return nil, fmt.Errorf("wallet: %w", err)
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 30 * time.Second
	}
	if opts.MaxGas == 0 {
		opts.MaxGas = defaultMaxGas
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Client{
		gw:     gw,
		opts:   opts,
		log:    opts.Logger,
		prices: NewPriceCache(),
		pools:  make(map[string]*beam.Pool),
	}, nil
}

func poolKey(token0, token1 beam.Address, feePpm uint32) string {
	return fmt.Sprintf("%s|%s|%d", token0, token1, feePpm)
}

// Pool fetches pool state from the chain and refreshes the local cache.
func (c *Client) Pool(ctx context.Context, token0, token1 beam.Address, feePpm uint32) (*beam.Pool, error) {
	tier, err := beam.FeeTierForPpm(feePpm)
	if err != nil {
		return nil, err
	}

	args, err := gateway.NewArgs().
		AddString(token0.String()).
		AddString(token1.String()).
		AddU64(uint64(feePpm)).
		Bytes()
	if err != nil {
		return nil, err
	}

	raw, err := c.gw.ReadSC(ctx, gateway.ReadRequest{
		Contract: c.opts.AMMContract,
		Function: "getPool",
		Args:     args,
		Caller:   c.opts.Wallet.Address,
	})
	if err != nil {
		return nil, fmt.Errorf("read pool: %w", err)
	}

	pool, err := decodePool(raw, token0, token1, tier)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.pools[poolKey(token0, token1, feePpm)] = pool
	c.mu.Unlock()

	if price, err := pool.SpotPrice(); err == nil {
		c.prices.Set(poolKey(token0, token1, feePpm), price)
	}
	return pool, nil
}

// decodePool reads the getPool result buffer. Field order is part of the
// contract ABI: sqrtPrice u256, currentTick i32, liquidity u256.
func decodePool(raw []byte, token0, token1 beam.Address, tier beam.FeeTier) (*beam.Pool, error) {
	r := gateway.NewArgsReader(raw)
	sqrtPrice, err := r.NextU256()
	if err != nil {
		return nil, fmt.Errorf("pool sqrtPrice: %w", err)
	}
	tick, err := r.NextI32()
	if err != nil {
		return nil, fmt.Errorf("pool tick: %w", err)
	}
	liquidity, err := r.NextU256()
	if err != nil {
		return nil, fmt.Errorf("pool liquidity: %w", err)
	}
	return &beam.Pool{
		Token0:      token0,
		Token1:      token1,
		FeePpm:      tier.FeePpm,
		TickSpacing: tier.TickSpacing,
		SqrtPrice:   sqrtPrice,
		CurrentTick: tick,
		Liquidity:   liquidity,
		LastUpdate:  time.Now(),
	}, nil
}

// CachedPool returns the last fetched pool state without touching the chain.
func (c *Client) CachedPool(token0, token1 beam.Address, feePpm uint32) (*beam.Pool, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	pool, ok := c.pools[poolKey(token0, token1, feePpm)]
	return pool, ok
}

// QuoteSwap estimates a swap against the cached pool state. A pool that has
// never been loaded yields quote.ErrPriceUnavailable: the UI shows "price
// unavailable" rather than a stale number.
func (c *Client) QuoteSwap(ctx context.Context, token0, token1, tokenIn beam.Address, feePpm uint32, amountIn cosmath.Int) (quote.Quote, error) {
	pool, ok := c.CachedPool(token0, token1, feePpm)
	if !ok {
		fetched, err := c.Pool(ctx, token0, token1, feePpm)
		if err != nil {
			return quote.Quote{}, quote.ErrPriceUnavailable
		}
		pool = fetched
	}

	var price decimal.Decimal
	if pool.Loaded() {
		p, err := pool.SpotPrice()
		if err != nil {
			return quote.Quote{}, quote.ErrPriceUnavailable
		}
		price = p
	}

	return quote.Estimate(quote.Params{
		AmountIn:         amountIn,
		ZeroForOne:       tokenIn == pool.Token0,
		CurrentPrice:     price,
		FeePpm:           pool.FeePpm,
		VisibleLiquidity: pool.Liquidity,
	})
}

// Balance reads the wallet's token balance.
func (c *Client) Balance(ctx context.Context, token beam.Address) (cosmath.Int, error) {
	args, err := gateway.NewArgs().AddString(c.opts.Wallet.Address.String()).Bytes()
	if err != nil {
		return cosmath.Int{}, err
	}
	raw, err := c.gw.ReadSC(ctx, gateway.ReadRequest{
		Contract: token,
		Function: "balanceOf",
		Args:     args,
		Caller:   c.opts.Wallet.Address,
	})
	if err != nil {
		return cosmath.Int{}, fmt.Errorf("read balance: %w", err)
	}
	return gateway.NewArgsReader(raw).NextU256()
}

// allowance reads how much of token the spender may pull from the wallet.
func (c *Client) allowance(ctx context.Context, token, spender beam.Address) (cosmath.Int, error) {
	args, err := gateway.NewArgs().
		AddString(c.opts.Wallet.Address.String()).
		AddString(spender.String()).
		Bytes()
	if err != nil {
		return cosmath.Int{}, err
	}
	raw, err := c.gw.ReadSC(ctx, gateway.ReadRequest{
		Contract: token,
		Function: "allowance",
		Args:     args,
		Caller:   c.opts.Wallet.Address,
	})
	if err != nil {
		return cosmath.Int{}, fmt.Errorf("read allowance: %w", err)
	}
	return gateway.NewArgsReader(raw).NextU256()
}

// ensureAllowance approves the spender when the current allowance does not
// cover amount. The approval is awaited to finality before the caller may
// submit the dependent call; the two mutations are never in flight together.
func (c *Client) ensureAllowance(ctx context.Context, token, spender beam.Address, amount cosmath.Int) error {
	current, err := c.allowance(ctx, token, spender)
	if err != nil {
		return err
	}
	if current.GTE(amount) {
		return nil
	}

	args, err := gateway.NewArgs().
		AddString(spender.String()).
		AddU256(amount.Sub(current)).
		Bytes()
	if err != nil {
		return err
	}
	op, err := c.gw.CallSC(ctx, gateway.CallRequest{
		Contract: token,
		Function: "increaseAllowance",
		Args:     args,
		Coins:    cosmath.ZeroInt(),
		MaxGas:   c.opts.MaxGas,
	})
	if err != nil {
		return fmt.Errorf("approve: %w", err)
	}
	c.log.Info("approving token spend",
		zap.String("token", token.String()),
		zap.String("operation", op.ID()))
	if err := op.WaitFinal(ctx); err != nil {
		return fmt.Errorf("approve: %w", err)
	}
	return nil
}
