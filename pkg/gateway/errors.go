package gateway

import (
	"errors"
	"fmt"
	"strings"
)

// Recognized chain rejection conditions. The raw message from the node is
// always preserved via wrapping; these sentinels let callers map known
// conditions to friendly labels.
var (
	ErrInsufficientAllowance = errors.New("insufficient allowance")
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrOrderNotFound         = errors.New("order not found")
	ErrPoolNotFound          = errors.New("pool does not exist")
	ErrOperationFailed       = errors.New("operation failed on chain")
)

// rpcError is the error object of a JSON-RPC response.
type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// classifyChainError wraps a raw chain rejection message with the matching
// sentinel where the condition is recognized. Unrecognized messages pass
// through verbatim.
func classifyChainError(message string) error {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "allowance"):
		return fmt.Errorf("%w: %s", ErrInsufficientAllowance, message)
	case strings.Contains(lower, "insufficient balance"):
		return fmt.Errorf("%w: %s", ErrInsufficientBalance, message)
	case strings.Contains(lower, "order not found"), strings.Contains(lower, "unknown order"):
		return fmt.Errorf("%w: %s", ErrOrderNotFound, message)
	case strings.Contains(lower, "pool not found"), strings.Contains(lower, "pool does not exist"):
		return fmt.Errorf("%w: %s", ErrPoolNotFound, message)
	default:
		return errors.New(message)
	}
}

// FriendlyMessage converts a gateway or chain error into the label the UI
// shows. Unrecognized errors keep their verbatim message.
func FriendlyMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInsufficientAllowance):
		return "approve tokens first"
	case errors.Is(err, ErrInsufficientBalance):
		return "insufficient balance"
	case errors.Is(err, ErrOrderNotFound):
		return "order no longer exists"
	case errors.Is(err, ErrPoolNotFound):
		return "pool is not available"
	default:
		return err.Error()
	}
}
