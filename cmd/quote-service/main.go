package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	cosmath "cosmossdk.io/math"
	"go.uber.org/zap"

	"github.com/uuzor/massabeam-go/pkg/beam"
	"github.com/uuzor/massabeam-go/pkg/config"
	"github.com/uuzor/massabeam-go/pkg/dex"
	"github.com/uuzor/massabeam-go/pkg/gateway"
	"github.com/uuzor/massabeam-go/pkg/quote"
)

func main() {
	flags := config.Flags()
	if err := flags.Parse(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	cfg, err := config.Load("", flags)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger, err := buildLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("service failed", zap.Error(err))
	}
}

func buildLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = lvl
	return zcfg.Build()
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	node := gateway.NewClient(cfg.NodeURL, cfg.RateLimit, logger)
	client, err := dex.New(node, dex.Options{
		AMMContract:   beam.Address(cfg.AMMContract),
		OrderContract: beam.Address(cfg.OrderContract),
		Wallet:        dex.Wallet{Address: beam.Address(cfg.WalletAddress)},
		PollInterval:  cfg.PollInterval,
		Logger:        logger,
	})
	if err != nil {
		return err
	}

	tracker := dex.NewTracker(client)
	go tracker.Start(ctx)

	if cfg.EventsURL != "" {
		stream, err := gateway.NewEventStream(ctx, cfg.EventsURL, logger)
		if err != nil {
			logger.Warn("event stream unavailable, relying on polling", zap.Error(err))
		} else {
			defer stream.Close()
			if err := stream.Subscribe(beam.Address(cfg.OrderContract), tracker.HandleEvent); err != nil {
				logger.Warn("event subscription failed, relying on polling", zap.Error(err))
			}
		}
	}

	srv := &server{
		client:  client,
		tracker: tracker,
		log:     logger,
		started: time.Now(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/quote", srv.handleQuote)
	mux.HandleFunc("/orders", srv.handleOrders)
	mux.HandleFunc("/health", srv.handleHealth)
	mux.HandleFunc("/", srv.handleRoot)

	httpServer := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: corsMiddleware(mux),
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		logger.Info("shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("shutdown error", zap.Error(err))
		}
		cancel()
	}()

	logger.Info("quote service listening",
		zap.String("addr", cfg.ListenAddr),
		zap.String("node", cfg.NodeURL),
		zap.Duration("poll", cfg.PollInterval))

	if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type server struct {
	client  *dex.Client
	tracker *dex.Tracker
	log     *zap.Logger
	started time.Time
}

// handleQuote serves GET /quote?token0=&token1=&tokenIn=&fee=&amount=.
func (s *server) handleQuote(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	token0 := beam.Address(q.Get("token0"))
	token1 := beam.Address(q.Get("token1"))
	tokenIn := beam.Address(q.Get("tokenIn"))
	if token0 == "" || token1 == "" || tokenIn == "" || q.Get("amount") == "" {
		writeError(w, "missing required parameters: token0, token1, tokenIn, amount", http.StatusBadRequest)
		return
	}
	if tokenIn != token0 && tokenIn != token1 {
		writeError(w, "tokenIn must be token0 or token1", http.StatusBadRequest)
		return
	}

	feePpm := uint32(3000)
	if feeParam := q.Get("fee"); feeParam != "" {
		fee, err := strconv.ParseUint(feeParam, 10, 32)
		if err != nil {
			writeError(w, "invalid fee parameter", http.StatusBadRequest)
			return
		}
		feePpm = uint32(fee)
	}
	if _, err := beam.FeeTierForPpm(feePpm); err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	amountIn, ok := cosmath.NewIntFromString(q.Get("amount"))
	if !ok || !amountIn.IsPositive() {
		writeError(w, "invalid amount parameter (must be a positive integer)", http.StatusBadRequest)
		return
	}

	est, err := s.client.QuoteSwap(r.Context(), token0, token1, tokenIn, feePpm, amountIn)
	if errors.Is(err, quote.ErrPriceUnavailable) {
		writeError(w, "price unavailable", http.StatusServiceUnavailable)
		return
	}
	if err != nil {
		s.log.Warn("quote failed", zap.Error(err))
		writeError(w, gateway.FriendlyMessage(err), http.StatusInternalServerError)
		return
	}

	writeJSON(w, QuoteResponse{
		TokenIn:           tokenIn.String(),
		AmountIn:          amountIn.String(),
		AmountOut:         est.AmountOut.String(),
		EffectivePrice:    est.EffectivePrice.String(),
		PriceImpactPct:    est.PriceImpactPct.String(),
		ImpactUnderstated: est.ImpactUnderstated,
		FeePpm:            feePpm,
	})
}

// handleOrders serves the tracked order snapshot with derived statuses.
func (s *server) handleOrders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit, recurring, grid := s.tracker.Snapshot()
	now := time.Now()

	resp := OrdersResponse{
		Limit:     make([]LimitOrderView, 0, len(limit)),
		Recurring: make([]RecurringOrderView, 0, len(recurring)),
		Grid:      make([]GridOrderView, 0, len(grid)),
		AsOf:      s.tracker.LastPoll(),
	}
	for i := range limit {
		resp.Limit = append(resp.Limit, LimitOrderView{
			LimitOrder: limit[i],
			Status:     string(limit[i].Status(now)),
		})
	}
	for i := range recurring {
		resp.Recurring = append(resp.Recurring, RecurringOrderView{
			RecurringOrder: recurring[i],
			Status:         string(recurring[i].Status()),
			Remaining:      recurring[i].RemainingExecutions(),
		})
	}
	for i := range grid {
		resp.Grid = append(resp.Grid, GridOrderView{
			GridOrder:   grid[i],
			Status:      string(grid[i].Status()),
			ProgressPct: grid[i].ProgressPct().String(),
		})
	}

	writeJSON(w, resp)
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, HealthResponse{
		Status:     "healthy",
		LastPoll:   s.tracker.LastPoll(),
		Uptime:     time.Since(s.started).Round(time.Second).String(),
		CachedAsOf: s.tracker.LastPoll(),
	})
}

func (s *server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, map[string]any{
		"service": "MassaBeam Quote Service",
		"status":  "running",
		"endpoints": map[string]string{
			"quote":  "/quote?token0=<addr>&token1=<addr>&tokenIn=<addr>&fee=<ppm>&amount=<units>",
			"orders": "/orders",
			"health": "/health",
		},
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
