// Package gateway is the client's only path to the chain: read-only contract
// calls, state-changing calls with an explicit finality wait, and the typed
// argument codec both sides of the boundary share. Q64.96 price integers
// cross this boundary raw; decimals never do.
package gateway

import (
	"context"

	cosmath "cosmossdk.io/math"

	"github.com/uuzor/massabeam-go/pkg/beam"
)

// ReadRequest is a read-only contract call. It changes no state and costs
// nothing beyond the node's query fee.
type ReadRequest struct {
	Contract beam.Address
	Function string
	Args     []byte
	// Caller is optional; some view functions resolve balances against it.
	Caller beam.Address
}

// CallRequest is a state-changing contract call. Coins are attached native
// coins, MaxGas bounds execution.
type CallRequest struct {
	Contract beam.Address
	Function string
	Args     []byte
	Coins    cosmath.Int
	MaxGas   uint64
}

// Gateway abstracts the node RPC surface the DEX client consumes. A call
// accepted by the gateway cannot be revoked; the caller can only await its
// outcome via the returned operation or abandon the wait.
type Gateway interface {
	// ReadSC executes a read-only call and returns the raw result buffer.
	ReadSC(ctx context.Context, req ReadRequest) ([]byte, error)
	// CallSC submits a state-changing call. The result must not be trusted
	// until the operation's WaitFinal returns.
	CallSC(ctx context.Context, req CallRequest) (Operation, error)
}
