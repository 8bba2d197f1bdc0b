package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nalin/ethereum-pubsub/internal/infra"
	"github.com/nalin/ethereum-pubsub/internal/pkg/applog"
)

const shutdownTimeout = 10 * time.Second

// flagKeys maps command line flags to configuration keys.
var flagKeys = map[string]string{
	"rpc-url":        "chain.url",
	"publisher":      "publisher.kind",
	"project-id":     "pubsub.project_id",
	"topic-id":       "pubsub.topic_id",
	"watermark":      "watermark.kind",
	"watermark-file": "watermark.file",
	"poll-interval":  "listener.poll_interval",
	"catch-up":       "listener.catch_up",
	"log-level":      "log.level",
	"log-format":     "log.format",
	"http-enabled":   "http.enabled",
	"http-addr":      "http.addr",
}

func newRootCmd() *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:           "ethereum-pubsub",
		Short:         "Publish every Ethereum transaction to a message broker topic",
		Long:          "Polls an Ethereum JSON-RPC node for new blocks and publishes each transaction as a JSON message to Google Cloud Pub/Sub or Kafka.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return infra.LoadConfig(cfgFile)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context())
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is ./configs/config.yml)")
	flags.String("rpc-url", "", "Ethereum JSON-RPC endpoint (http, ws or ipc)")
	flags.String("publisher", "", "publisher kind: pubsub or kafka")
	flags.String("project-id", "", "Google Cloud project id")
	flags.String("topic-id", "", "Pub/Sub topic id")
	flags.String("watermark", "", "watermark store kind: file or redis")
	flags.String("watermark-file", "", "path of the watermark file")
	flags.String("poll-interval", "", "delay between chain head polls, e.g. 1s")
	flags.Bool("catch-up", false, "process every block since the watermark instead of only the newest")
	flags.String("log-level", "", "log level: trace, debug, info, warn, error")
	flags.String("log-format", "", "log format: text or json")
	flags.Bool("http-enabled", false, "serve /health and /metrics")
	flags.String("http-addr", "", "address for the HTTP server")
	for flag, key := range flagKeys {
		_ = viper.BindPFlag(key, flags.Lookup(flag))
	}

	return cmd
}

// run wires the adapters and drives the listener until ctx is cancelled, a
// termination signal arrives or the listener fails.
func run(parent context.Context) error {
	log := applog.NewAppDefaultLogger()
	infra.InitMetrics()
	v := validator.New()

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("Creating chain client...")
	chainClient, err := infra.InitChainClient(ctx, log, v)
	if err != nil {
		log.Error("Failed to create chain client", "err", err)
		return err
	}
	defer chainClient.Close()

	log.Info("Creating publisher...")
	publisher, err := infra.InitPublisher(ctx, log, v)
	if err != nil {
		log.Error("Failed to create publisher", "err", err)
		return err
	}

	watermark, closeWatermark, err := infra.InitWatermarkStore(ctx, log, afero.NewOsFs(), v)
	if err != nil {
		log.Error("Failed to create watermark store", "err", err)
		closePublisher(log, publisher.Close)
		return err
	}
	defer func() { _ = closeWatermark() }()

	listener, err := infra.InitListener(log, chainClient, publisher, watermark, v)
	if err != nil {
		log.Error("Failed to create listener", "err", err)
		closePublisher(log, publisher.Close)
		return err
	}

	var wg sync.WaitGroup
	stopHTTP := infra.StartHTTP(log, &wg, listener)
	stopPprof := infra.StartPprof(log, &wg)

	runErr := listener.Run(ctx)

	closePublisher(log, publisher.Close)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := stopHTTP(shutdownCtx); err != nil {
		log.Warn("HTTP server shutdown failed", "err", err)
	}
	if err := stopPprof(shutdownCtx); err != nil {
		log.Warn("pprof server shutdown failed", "err", err)
	}
	wg.Wait()

	if runErr != nil {
		log.Error("Listener stopped", "err", runErr)
		return runErr
	}
	log.Info("Shutdown complete", "lastProcessedHeight", listener.LastProcessed())
	return nil
}

func closePublisher(log applog.AppLogger, closeFn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := closeFn(ctx); err != nil {
		log.Warn("Publisher close failed", "err", err)
	}
}
