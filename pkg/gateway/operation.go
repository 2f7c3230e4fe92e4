package gateway

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// OpStatus is the observed execution status of a submitted operation.
// Speculative statuses come from blocks that are not yet final and must not
// be treated as an outcome.
type OpStatus string

const (
	OpPending          OpStatus = "PENDING"
	OpSpeculativeOK    OpStatus = "SPECULATIVE_SUCCESS"
	OpSpeculativeError OpStatus = "SPECULATIVE_ERROR"
	OpFinalOK          OpStatus = "FINAL_SUCCESS"
	OpFinalError       OpStatus = "FINAL_ERROR"
)

// Final reports whether the status is irreversible.
func (s OpStatus) Final() bool {
	return s == OpFinalOK || s == OpFinalError
}

// Operation is a handle to a submitted state-changing call. The mutation it
// tracks cannot be revoked; callers either await finality or abandon the
// wait.
type Operation interface {
	// ID returns the chain operation id.
	ID() string
	// Status fetches the current execution status.
	Status(ctx context.Context) (OpStatus, error)
	// WaitFinal blocks until the operation is final or the context ends.
	WaitFinal(ctx context.Context) error
}

// nodeOperation tracks an operation through the node RPC.
type nodeOperation struct {
	id     string
	client *Client
}

func (op *nodeOperation) ID() string {
	return op.id
}

type operationInfo struct {
	ID      string `json:"id"`
	InPool  bool   `json:"in_pool"`
	IsFinal bool   `json:"is_final"`
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
}

// Status fetches the operation's current execution status.
func (op *nodeOperation) Status(ctx context.Context) (OpStatus, error) {
	var infos []operationInfo
	if err := op.client.rpc(ctx, "get_operations", []string{op.id}, &infos); err != nil {
		return OpPending, err
	}
	if len(infos) == 0 {
		return OpPending, nil
	}

	info := infos[0]
	switch {
	case info.IsFinal && info.Error != "":
		return OpFinalError, nil
	case info.IsFinal:
		return OpFinalOK, nil
	case info.InPool:
		return OpPending, nil
	case info.Error != "":
		return OpSpeculativeError, nil
	default:
		return OpSpeculativeOK, nil
	}
}

// WaitFinal polls until the operation reaches a final status or the context
// ends. A final error surfaces the chain's rejection message; speculative
// results are only logged, never returned.
func (op *nodeOperation) WaitFinal(ctx context.Context) error {
	ticker := time.NewTicker(op.client.pollInterval)
	defer ticker.Stop()

	for {
		status, err := op.Status(ctx)
		if err != nil {
			return fmt.Errorf("operation %s: %w", op.id, err)
		}

		switch status {
		case OpFinalOK:
			return nil
		case OpFinalError:
			return op.finalError(ctx)
		case OpSpeculativeOK, OpSpeculativeError:
			op.client.log.Debug("operation executed speculatively, awaiting finality",
				zap.String("operation", op.id), zap.String("status", string(status)))
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("operation %s: %w", op.id, ctx.Err())
		case <-ticker.C:
		}
	}
}

// finalError re-reads the operation to surface the chain's own message.
func (op *nodeOperation) finalError(ctx context.Context) error {
	var infos []operationInfo
	if err := op.client.rpc(ctx, "get_operations", []string{op.id}, &infos); err != nil {
		return fmt.Errorf("operation %s failed: %w", op.id, ErrOperationFailed)
	}
	if len(infos) > 0 && infos[0].Error != "" {
		return fmt.Errorf("operation %s: %w", op.id, classifyChainError(infos[0].Error))
	}
	return fmt.Errorf("operation %s: %w", op.id, ErrOperationFailed)
}
