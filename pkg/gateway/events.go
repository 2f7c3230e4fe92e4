package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/uuzor/massabeam-go/pkg/beam"
)

// Event is a contract-emitted event delivered over the node's WebSocket
// feed. Data is the raw payload string the contract emitted; Period orders
// events on chain time. IsFinal mirrors the operation finality distinction:
// non-final events may still be reverted.
type Event struct {
	Contract beam.Address `json:"emitter_address"`
	Data     string       `json:"data"`
	Period   uint64       `json:"period"`
	IsFinal  bool         `json:"is_final"`
}

// EventHandler receives events for a subscribed contract. Handlers run on
// the read loop goroutine; delivery order is arrival order.
type EventHandler func(Event)

// EventStream subscribes to contract events over WebSocket. Handlers are
// last-write-wins per contract: registering again replaces the previous
// handler.
type EventStream struct {
	url            string
	conn           *websocket.Conn
	mu             sync.RWMutex
	handlers       map[beam.Address]EventHandler
	reconnectDelay time.Duration
	log            *zap.Logger
	ctx            context.Context
	cancel         context.CancelFunc
	connected      bool
}

// NewEventStream connects to the node's event feed and starts the read loop.
func NewEventStream(ctx context.Context, url string, logger *zap.Logger) (*EventStream, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	streamCtx, cancel := context.WithCancel(ctx)
	es := &EventStream{
		url:            url,
		handlers:       make(map[beam.Address]EventHandler),
		reconnectDelay: 5 * time.Second,
		log:            logger,
		ctx:            streamCtx,
		cancel:         cancel,
	}
	if err := es.connect(); err != nil {
		cancel()
		return nil, fmt.Errorf("connect event stream: %w", err)
	}
	go es.readLoop()
	return es, nil
}

func (es *EventStream) connect() error {
	conn, _, err := websocket.DefaultDialer.DialContext(es.ctx, es.url, nil)
	if err != nil {
		return err
	}
	es.mu.Lock()
	es.conn = conn
	es.connected = true
	es.mu.Unlock()
	es.log.Info("event stream connected", zap.String("url", es.url))
	return nil
}

// Subscribe registers a handler for a contract's events and tells the node
// to start streaming them.
func (es *EventStream) Subscribe(contract beam.Address, handler EventHandler) error {
	es.mu.Lock()
	es.handlers[contract] = handler
	conn := es.conn
	es.mu.Unlock()

	if conn == nil {
		return fmt.Errorf("event stream not connected")
	}
	sub := rpcRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "subscribe_new_filtered_sc_output_event",
		Params:  []any{map[string]string{"emitter_address": contract.String()}},
	}
	if err := conn.WriteJSON(sub); err != nil {
		return fmt.Errorf("subscribe %s: %w", contract, err)
	}
	return nil
}

// readLoop dispatches incoming events and reconnects on failure until the
// stream is closed.
func (es *EventStream) readLoop() {
	for {
		select {
		case <-es.ctx.Done():
			return
		default:
		}

		es.mu.RLock()
		conn := es.conn
		es.mu.RUnlock()
		if conn == nil {
			es.retryConnect()
			continue
		}

		_, payload, err := conn.ReadMessage()
		if err != nil {
			es.mu.Lock()
			es.connected = false
			es.conn = nil
			es.mu.Unlock()
			es.log.Warn("event stream read failed, reconnecting", zap.Error(err))
			es.retryConnect()
			continue
		}

		var envelope struct {
			Params struct {
				Result Event `json:"result"`
			} `json:"params"`
		}
		if err := json.Unmarshal(payload, &envelope); err != nil {
			es.log.Debug("ignoring unparseable event frame", zap.Error(err))
			continue
		}

		event := envelope.Params.Result
		es.mu.RLock()
		handler := es.handlers[event.Contract]
		es.mu.RUnlock()
		if handler != nil {
			handler(event)
		}
	}
}

func (es *EventStream) retryConnect() {
	select {
	case <-es.ctx.Done():
		return
	case <-time.After(es.reconnectDelay):
	}
	if err := es.connect(); err != nil {
		es.log.Warn("event stream reconnect failed", zap.Error(err))
		return
	}
	// Re-issue subscriptions on the fresh connection.
	es.mu.RLock()
	contracts := make([]beam.Address, 0, len(es.handlers))
	for contract := range es.handlers {
		contracts = append(contracts, contract)
	}
	handlers := es.handlers
	es.mu.RUnlock()
	for _, contract := range contracts {
		if err := es.Subscribe(contract, handlers[contract]); err != nil {
			es.log.Warn("resubscribe failed", zap.String("contract", contract.String()), zap.Error(err))
		}
	}
}

// IsConnected reports whether the stream currently has a live connection.
func (es *EventStream) IsConnected() bool {
	es.mu.RLock()
	defer es.mu.RUnlock()
	return es.connected
}

// Close tears the stream down.
func (es *EventStream) Close() error {
	es.cancel()
	es.mu.Lock()
	defer es.mu.Unlock()
	if es.conn != nil {
		err := es.conn.Close()
		es.conn = nil
		es.connected = false
		return err
	}
	return nil
}
