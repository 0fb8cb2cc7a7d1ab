package metrics

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var (
	IngestedMeasurements = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kitbridge_ingested_measurements_total",
			Help: "Total number of measurements accepted and persisted, by kind",
		},
		[]string{"kind"},
	)

	RejectedMeasurements = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kitbridge_rejected_measurements_total",
			Help: "Total number of measurements rejected by validation, by reason",
		},
		[]string{"reason"},
	)

	RateLimitedMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kitbridge_rate_limited_total",
			Help: "Total number of messages dropped or refused by the per-kit rate limiter",
		},
		[]string{"channel"},
	)

	DecodeFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kitbridge_decode_failures_total",
			Help: "Total number of payloads that failed wire decoding, by channel",
		},
		[]string{"channel"},
	)

	RPCRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kitbridge_rpc_requests_total",
			Help: "Total number of RPC requests, by direction and method",
		},
		[]string{"direction", "method"},
	)

	RPCTimeouts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "kitbridge_rpc_timeouts_total",
			Help: "Total number of kit RPC calls that timed out",
		},
	)

	RPCDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kitbridge_rpc_duration_seconds",
			Help:    "Duration of kit RPC calls from publish to resolution",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	FanoutDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "kitbridge_fanout_dropped_total",
			Help: "Total number of live updates dropped because a subscriber buffer was full",
		},
	)
)

type ServerOpts struct {
	Addr              string
	Path              string        // Path for the metrics endpoint, defaults to "/metrics"
	ShutdownTimeout   time.Duration // Timeout for server shutdown, defaults to 5 seconds
	ReadHeaderTimeout time.Duration // Timeout for reading request headers, defaults to 3 seconds
}

// or mirrors cmp.Or from Go 1.22+, which is unavailable on the Go 1.21 toolchain.
func or[T comparable](vals ...T) T {
	var zero T
	for _, v := range vals {
		if v != zero {
			return v
		}
	}
	return zero
}

func defaultServerOpts() ServerOpts {
	return ServerOpts{
		Addr:              ":9100",
		Path:              "/metrics",
		ShutdownTimeout:   5 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}
}

// StartServer starts a Prometheus metrics server with the given options.
// The server shuts down gracefully when the provided context is canceled.
func StartServer(ctx context.Context, wg *sync.WaitGroup, logger *zap.Logger, opts *ServerOpts) {
	effective := defaultServerOpts()
	if opts != nil {
		effective.Addr = or(opts.Addr, effective.Addr)
		effective.Path = or(opts.Path, effective.Path)
		effective.ShutdownTimeout = or(opts.ShutdownTimeout, effective.ShutdownTimeout)
		effective.ReadHeaderTimeout = or(opts.ReadHeaderTimeout, effective.ReadHeaderTimeout)
	}

	mux := http.NewServeMux()
	mux.Handle(effective.Path, promhttp.Handler())
	server := &http.Server{
		Addr:              effective.Addr,
		Handler:           mux,
		ReadHeaderTimeout: effective.ReadHeaderTimeout,
	}

	serverClosed := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info("starting metrics server", zap.String("addr", effective.Addr))
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("metrics server error", zap.Error(err))
		}
		close(serverClosed)
	}()

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), effective.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("error shutting down metrics server", zap.Error(err))
		}

		select {
		case <-serverClosed:
			logger.Info("metrics server shutdown complete")
		case <-shutdownCtx.Done():
			logger.Warn("metrics server shutdown timed out")
		}
	}()
}
