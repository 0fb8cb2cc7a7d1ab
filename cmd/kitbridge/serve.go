package kitbridge

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/growerlab/kitbridge/pkg/bridge"
	"github.com/growerlab/kitbridge/pkg/config"
	"github.com/growerlab/kitbridge/pkg/fanout"
	"github.com/growerlab/kitbridge/pkg/gateway"
	"github.com/growerlab/kitbridge/pkg/ingest"
	"github.com/growerlab/kitbridge/pkg/metrics"
	"github.com/growerlab/kitbridge/pkg/ratelimit"
	"github.com/growerlab/kitbridge/pkg/rpc"
	"github.com/growerlab/kitbridge/pkg/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the bridge",
	Long:  `Connect to the MQTT broker and the database and serve kit traffic until interrupted.`,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	var wg sync.WaitGroup

	db, err := store.NewPostgres(ctx, cfg.Database.ConnString, logger)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	hub := fanout.NewHub(16, logger)
	pipeline := ingest.NewPipeline(db, db, hub, logger)
	server := rpc.NewServerHandler(config.Version, db, logger)
	table := rpc.NewTable(logger)
	limiter := ratelimit.New(cfg.RateLimit.PerSecond, cfg.RateLimit.Capacity)

	session := bridge.NewSession(bridge.SessionOptions{
		Brokers:        cfg.MQTT.Brokers,
		ClientID:       cfg.MQTT.ClientID,
		Username:       cfg.MQTT.Username,
		Password:       cfg.MQTT.Password,
		KeepAlive:      cfg.MQTT.KeepAlive,
		ConnectTimeout: cfg.MQTT.ConnectTimeout,
	}, logger)
	if err := session.Connect(); err != nil {
		return fmt.Errorf("failed to connect to broker: %w", err)
	}
	defer session.Disconnect()

	b := bridge.New(session, pipeline, server, table, limiter, bridge.Options{}, logger)
	if err := b.Start(ctx, &wg); err != nil {
		return fmt.Errorf("failed to start bridge: %w", err)
	}

	if cfg.Metrics.Enabled {
		metrics.StartServer(ctx, &wg, logger, &metrics.ServerOpts{Addr: cfg.Metrics.Addr})
	}
	if cfg.Gateway.Enabled {
		gw := gateway.NewServer(hub, nil, logger)
		if cfg.Gateway.CertFile != "" && cfg.Gateway.KeyFile != "" {
			if err := gw.UseTLS(cfg.Gateway.CertFile, cfg.Gateway.KeyFile); err != nil {
				return fmt.Errorf("failed to configure gateway TLS: %w", err)
			}
		}
		gw.Start(ctx, &wg, cfg.Gateway.Addr)
	}

	logger.Info("Bridge running", zap.Strings("brokers", cfg.MQTT.Brokers))

	<-sigChan
	logger.Info("Received termination signal, shutting down gracefully")
	cancel()

	doneChan := make(chan struct{})
	go func() {
		wg.Wait()
		close(doneChan)
	}()

	select {
	case <-doneChan:
		logger.Info("Shutdown complete")
	case <-time.After(10 * time.Second):
		logger.Warn("Shutdown timed out after 10 seconds")
	}

	return nil
}
