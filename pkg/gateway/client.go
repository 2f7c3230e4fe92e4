package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/uuzor/massabeam-go/pkg/beam"
)

const (
	defaultTimeout      = 30 * time.Second
	defaultPollInterval = 2 * time.Second
)

// Client is a rate-limited JSON-RPC client to a chain node, implementing
// Gateway.
type Client struct {
	url          string
	http         *http.Client
	limiter      *rate.Limiter
	log          *zap.Logger
	nextID       atomic.Uint64
	pollInterval time.Duration
}

// NewClient creates a node client. reqPerSecond bounds the request rate per
// node; zero disables limiting.
func NewClient(url string, reqPerSecond int, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	limit := rate.Inf
	if reqPerSecond > 0 {
		limit = rate.Limit(reqPerSecond)
	}
	return &Client{
		url:          url,
		http:         &http.Client{Timeout: defaultTimeout},
		limiter:      rate.NewLimiter(limit, max(reqPerSecond, 1)),
		log:          logger,
		pollInterval: defaultPollInterval,
	}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

// rpc performs one JSON-RPC round trip, honoring the rate limiter and the
// caller's context.
func (c *Client) rpc(ctx context.Context, method string, params, result any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	payload, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      c.nextID.Add(1),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: node returned HTTP %d", method, resp.StatusCode)
	}

	var envelope rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode %s response: %w", method, err)
	}
	if envelope.Error != nil {
		return classifyChainError(envelope.Error.Message)
	}
	if result != nil {
		if err := json.Unmarshal(envelope.Result, result); err != nil {
			return fmt.Errorf("decode %s result: %w", method, err)
		}
	}
	return nil
}

type readOnlyCallParams struct {
	TargetAddress  string `json:"target_address"`
	TargetFunction string `json:"target_function"`
	Parameter      []byte `json:"parameter"`
	CallerAddress  string `json:"caller_address,omitempty"`
}

type readOnlyCallResult struct {
	Result  []byte `json:"result"`
	Error   string `json:"error,omitempty"`
	GasCost uint64 `json:"gas_cost"`
}

// ReadSC executes a read-only contract call and returns the raw result
// buffer, to be decoded with an ArgsReader.
func (c *Client) ReadSC(ctx context.Context, req ReadRequest) ([]byte, error) {
	params := []readOnlyCallParams{{
		TargetAddress:  req.Contract.String(),
		TargetFunction: req.Function,
		Parameter:      req.Args,
		CallerAddress:  req.Caller.String(),
	}}

	var results []readOnlyCallResult
	if err := c.rpc(ctx, "execute_read_only_call", params, &results); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("%s.%s: empty read result", req.Contract, req.Function)
	}
	if results[0].Error != "" {
		return nil, classifyChainError(results[0].Error)
	}
	return results[0].Result, nil
}

type callParams struct {
	TargetAddress  string `json:"target_address"`
	TargetFunction string `json:"target_function"`
	Parameter      []byte `json:"parameter"`
	Coins          string `json:"coins"`
	MaxGas         uint64 `json:"max_gas"`
}

// CallSC submits a state-changing contract call and returns a handle to the
// pending operation. The mutation cannot be revoked once the node accepts it.
func (c *Client) CallSC(ctx context.Context, req CallRequest) (Operation, error) {
	coins := "0"
	if !req.Coins.IsNil() {
		coins = req.Coins.String()
	}
	params := []callParams{{
		TargetAddress:  req.Contract.String(),
		TargetFunction: req.Function,
		Parameter:      req.Args,
		Coins:          coins,
		MaxGas:         req.MaxGas,
	}}

	var opIDs []string
	if err := c.rpc(ctx, "send_operations", params, &opIDs); err != nil {
		return nil, err
	}
	if len(opIDs) == 0 {
		return nil, fmt.Errorf("%s.%s: node accepted call but returned no operation id",
			req.Contract, req.Function)
	}

	c.log.Debug("submitted operation",
		zap.String("operation", opIDs[0]),
		zap.String("contract", req.Contract.String()),
		zap.String("function", req.Function))

	return &nodeOperation{id: opIDs[0], client: c}, nil
}

// Ensure Client satisfies the Gateway contract.
var _ Gateway = (*Client)(nil)

// BalanceOf is a convenience wrapper for the standard token balance view.
func (c *Client) BalanceOf(ctx context.Context, token, owner beam.Address) ([]byte, error) {
	args, err := NewArgs().AddString(owner.String()).Bytes()
	if err != nil {
		return nil, err
	}
	return c.ReadSC(ctx, ReadRequest{Contract: token, Function: "balanceOf", Args: args})
}
