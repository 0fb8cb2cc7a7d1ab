// Package bridge connects the MQTT side of the system to ingestion,
// RPC dispatch, and fan-out. It subscribes to the kit topic tree,
// routes each inbound message by channel, and publishes server RPC
// responses and kit RPC requests back to the broker.
package bridge

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/growerlab/kitbridge/pkg/ingest"
	"github.com/growerlab/kitbridge/pkg/metrics"
	"github.com/growerlab/kitbridge/pkg/ratelimit"
	"github.com/growerlab/kitbridge/pkg/rpc"
	"github.com/growerlab/kitbridge/pkg/topic"
	"github.com/growerlab/kitbridge/pkg/wire"
)

// Messenger is the broker surface the bridge needs. *Session satisfies
// it; tests substitute an in-memory fake.
type Messenger interface {
	Publish(topic string, payload []byte) error
	Subscribe(filter string, handler func(topic string, payload []byte)) error
}

// Options tunes bridge behavior. Zero values select the defaults.
type Options struct {
	// IngestTimeout bounds the database work for one inbound batch.
	IngestTimeout time.Duration
	// PruneInterval and PruneIdle control eviction of idle rate-limit
	// buckets.
	PruneInterval time.Duration
	PruneIdle     time.Duration
}

func (o *Options) withDefaults() {
	if o.IngestTimeout <= 0 {
		o.IngestTimeout = 30 * time.Second
	}
	if o.PruneInterval <= 0 {
		o.PruneInterval = time.Minute
	}
	if o.PruneIdle <= 0 {
		o.PruneIdle = 5 * time.Minute
	}
}

// Bridge routes kit traffic between the broker and the backend.
type Bridge struct {
	session  Messenger
	pipeline *ingest.Pipeline
	server   *rpc.ServerHandler
	table    *rpc.Table
	limiter  *ratelimit.Limiter
	opts     Options
	logger   *zap.Logger

	mu  sync.Mutex
	ctx context.Context
}

// New assembles a bridge from its collaborators.
func New(session Messenger, pipeline *ingest.Pipeline, server *rpc.ServerHandler, table *rpc.Table, limiter *ratelimit.Limiter, opts Options, logger *zap.Logger) *Bridge {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts.withDefaults()
	return &Bridge{
		session:  session,
		pipeline: pipeline,
		server:   server,
		table:    table,
		limiter:  limiter,
		opts:     opts,
		logger:   logger,
	}
}

// Start subscribes to the kit topic tree and launches the timeout
// sweeper and the rate-limit prune loop. The loops stop when ctx is
// canceled; wg tracks them.
func (b *Bridge) Start(ctx context.Context, wg *sync.WaitGroup) error {
	b.mu.Lock()
	b.ctx = ctx
	b.mu.Unlock()

	if err := b.session.Subscribe(topic.SubscribeFilter, b.handle); err != nil {
		return err
	}

	wg.Add(2)
	go func() {
		defer wg.Done()
		b.table.SweepLoop(ctx)
	}()
	go func() {
		defer wg.Done()
		b.pruneLoop(ctx)
	}()
	return nil
}

func (b *Bridge) pruneLoop(ctx context.Context) {
	ticker := time.NewTicker(b.opts.PruneInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := b.limiter.Prune(b.opts.PruneIdle); removed > 0 {
				b.logger.Debug("Pruned idle rate-limit buckets", zap.Int("removed", removed))
			}
		}
	}
}

func (b *Bridge) baseContext() context.Context {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ctx != nil {
		return b.ctx
	}
	return context.Background()
}

// handle dispatches one inbound broker message. It runs on paho's
// handler goroutines, so everything it touches must be safe for
// concurrent use.
func (b *Bridge) handle(topicName string, payload []byte) {
	kitSerial, channel, ok := topic.Parse(topicName)
	if !ok {
		b.logger.Debug("Ignoring unrecognized topic", zap.String("topic", topicName))
		return
	}

	switch channel {
	case topic.ChannelRawMeasurement:
		b.handleRaw(kitSerial, payload)
	case topic.ChannelAggregateMeasurement:
		b.handleAggregate(kitSerial, payload)
	case topic.ChannelServerRPCRequest:
		b.handleServerRPC(kitSerial, payload)
	case topic.ChannelKitRPCResponse:
		b.handleKitRPCResponse(kitSerial, payload)
	case topic.ChannelServerRPCResponse, topic.ChannelKitRPCRequest:
		// Our own outbound traffic echoed back by the kit/# filter.
	default:
		b.logger.Debug("Ignoring channel", zap.Stringer("channel", channel))
	}
}

func (b *Bridge) handleRaw(kitSerial string, payload []byte) {
	if !b.limiter.Allow(kitSerial, 1) {
		metrics.RateLimitedMessages.WithLabelValues("rawMeasurement").Inc()
		return
	}

	m, err := wire.DecodeRawMeasurement(payload)
	if err != nil {
		metrics.DecodeFailures.WithLabelValues("rawMeasurement").Inc()
		b.logger.Warn("Undecodable raw measurement",
			zap.String("kitSerial", kitSerial), zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(b.baseContext(), b.opts.IngestTimeout)
	defer cancel()

	result, err := b.pipeline.IngestRaw(ctx, kitSerial, []wire.RawMeasurement{m})
	b.logIngest("raw", kitSerial, result, err)
}

func (b *Bridge) handleAggregate(kitSerial string, payload []byte) {
	if !b.limiter.Allow(kitSerial, 1) {
		metrics.RateLimitedMessages.WithLabelValues("aggregateMeasurement").Inc()
		return
	}

	m, err := wire.DecodeAggregateMeasurement(payload)
	if err != nil {
		metrics.DecodeFailures.WithLabelValues("aggregateMeasurement").Inc()
		b.logger.Warn("Undecodable aggregate measurement",
			zap.String("kitSerial", kitSerial), zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(b.baseContext(), b.opts.IngestTimeout)
	defer cancel()

	result, err := b.pipeline.IngestAggregate(ctx, kitSerial, []wire.AggregateMeasurement{m})
	b.logIngest("aggregate", kitSerial, result, err)
}

func (b *Bridge) logIngest(kind, kitSerial string, result ingest.Result, err error) {
	if err != nil {
		b.logger.Error("Ingestion failed",
			zap.String("kind", kind), zap.String("kitSerial", kitSerial), zap.Error(err))
		return
	}
	for _, r := range result.Rejections {
		b.logger.Info("Measurement rejected",
			zap.String("kind", kind),
			zap.String("kitSerial", kitSerial),
			zap.String("measurementId", r.MeasurementID.String()),
			zap.Int32("peripheral", r.Peripheral),
			zap.Int32("quantityType", r.QuantityType),
			zap.String("reason", r.Reason))
	}
}

// handleServerRPC answers a kit-originated RPC request. Rate-limited
// requests still get a response so the kit learns how long to back
// off.
func (b *Bridge) handleServerRPC(kitSerial string, payload []byte) {
	allowed, wait := b.limiter.Check(kitSerial, 1)
	if !allowed {
		metrics.RateLimitedMessages.WithLabelValues("serverRpcRequest").Inc()
	}

	ctx, cancel := context.WithTimeout(b.baseContext(), b.opts.IngestTimeout)
	defer cancel()

	response, ok := b.server.Handle(ctx, kitSerial, payload, !allowed, wait)
	if !ok {
		metrics.DecodeFailures.WithLabelValues("serverRpcRequest").Inc()
		b.logger.Warn("Undecodable server RPC request", zap.String("kitSerial", kitSerial))
		return
	}

	if err := b.session.Publish(topic.Format(kitSerial, topic.ChannelServerRPCResponse), response); err != nil {
		b.logger.Error("Failed to publish server RPC response",
			zap.String("kitSerial", kitSerial), zap.Error(err))
	}
}

func (b *Bridge) handleKitRPCResponse(kitSerial string, payload []byte) {
	resp, err := wire.DecodeKitResponse(payload)
	if err != nil {
		metrics.DecodeFailures.WithLabelValues("kitRpcResponse").Inc()
		b.logger.Warn("Undecodable kit RPC response",
			zap.String("kitSerial", kitSerial), zap.Error(err))
		return
	}

	if !b.table.Resolve(kitSerial, resp.ID, rpc.Outcome{Response: resp}) {
		// Late or duplicate response; the caller is gone.
		b.logger.Debug("Dropping unmatched kit RPC response",
			zap.String("kitSerial", kitSerial), zap.Uint64("id", resp.ID))
	}
}
