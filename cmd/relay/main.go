package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"fillRelay/internal/catalog"
	"fillRelay/internal/chain"
	"fillRelay/internal/config"
	"fillRelay/internal/metrics"
	"fillRelay/internal/relay"
	"fillRelay/internal/ws"
)

func main() {
	root := &cobra.Command{
		Use:          "relay",
		Short:        "Manifest fill feed relay",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the fill relay",
		RunE:  runRelay,
	}

	runCmd.Flags().String("rpc", "", "Solana RPC URL")
	runCmd.Flags().String("catalog-url", "https://player-markets.vercel.app/api", "market catalog base URL")
	runCmd.Flags().String("program", config.DefaultProgramAddress, "venue program address")
	runCmd.Flags().String("ws-addr", ":1234", "subscriber websocket listen address")
	runCmd.Flags().String("metrics-addr", ":9090", "Prometheus listen address")
	runCmd.Flags().Duration("poll-interval", 10*time.Second, "delay between poll cycles")
	runCmd.Flags().Duration("query-delay", time.Second, "delay before each per-market signature query")
	runCmd.Flags().Duration("stop-timeout", 30*time.Second, "bounded wait for the feed to stop")
	runCmd.Flags().Int("dedup-cap", 1000, "recency set capacity")
	runCmd.Flags().Duration("dead-threshold", 5*time.Minute, "liveness stall threshold")
	runCmd.Flags().Duration("monitor-interval", time.Minute, "liveness check interval")
	runCmd.Flags().Duration("restart-cooldown", 5*time.Second, "sleep between feed restarts")
	runCmd.Flags().Duration("max-runtime", 0, "optional run duration limit (diagnostic mode)")
	runCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(runCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runRelay(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.RPCURL == "" {
		return fmt.Errorf("rpc url is required (RELAY_RPC)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient := chain.NewClient(cfg.RPCURL)
	defer chainClient.Close()

	catalogClient := catalog.NewClient(cfg.CatalogURL, cfg.CatalogToken)
	relayMetrics := metrics.New()

	metricsServer := serveMetrics(cfg.MetricsAddr, relayMetrics, logger)
	defer shutdownServer(metricsServer, logger)

	logger.Info("relay start",
		zap.String("rpc", cfg.RPCURL),
		zap.String("program", cfg.ProgramAddress),
		zap.String("catalog", cfg.CatalogURL),
		zap.String("ws_addr", cfg.WSAddr),
		zap.String("metrics_addr", cfg.MetricsAddr),
		zap.Duration("poll_interval", cfg.PollInterval),
	)

	// Supervisor loop: rebuild the feed from a fresh cursor whenever it or
	// its liveness monitor fails.
	for {
		if ctx.Err() != nil {
			return nil
		}

		err := runFeedOnce(ctx, cfg, chainClient, catalogClient, relayMetrics, logger)
		if ctx.Err() != nil {
			return nil
		}
		if cfg.MaxRunTime > 0 {
			return err
		}
		if err != nil {
			logger.Error("feed terminated", zap.Error(err))
		}

		logger.Warn("restarting feed", zap.Duration("cooldown", cfg.RestartCooldown))
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(cfg.RestartCooldown):
		}
	}
}

// runFeedOnce runs one feed incarnation together with its liveness monitor
// and returns when either fails or the context ends.
func runFeedOnce(ctx context.Context, cfg config.Config, chainClient *chain.Client, catalogClient *catalog.Client, relayMetrics *metrics.Metrics, logger *zap.Logger) error {
	hub := ws.NewHub(cfg.WSAddr, logger)
	go func() {
		if err := hub.ListenAndServe(); err != nil {
			logger.Error("websocket server failed", zap.Error(err))
		}
	}()

	feed := relay.NewFeed(relay.FeedConfig{
		ProgramAddress: cfg.ProgramAddress,
		PollInterval:   cfg.PollInterval,
		QueryDelay:     cfg.QueryDelay,
		StopTimeout:    cfg.StopTimeout,
		DedupCap:       cfg.DedupCap,
		MaxRunTime:     cfg.MaxRunTime,
	}, chainClient, catalogClient, hub, relayMetrics, logger)

	monitor := relay.NewMonitor(feed, cfg.MonitorInterval, cfg.DeadThreshold, logger)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 2)
	go func() { errCh <- feed.Run(runCtx) }()
	go func() { errCh <- monitor.Watch(runCtx) }()

	err := <-errCh
	cancel()

	if stopErr := feed.Stop(); stopErr != nil {
		logger.Error("stop feed failed", zap.Error(stopErr))
	}
	<-errCh

	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func serveMetrics(addr string, relayMetrics *metrics.Metrics, logger *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", relayMetrics.Handler())

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 15 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()
	return server
}

func shutdownServer(server *http.Server, logger *zap.Logger) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("metrics server shutdown", zap.Error(err))
	}
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
