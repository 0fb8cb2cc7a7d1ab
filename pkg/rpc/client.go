package rpc

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/growerlab/kitbridge/pkg/metrics"
	"github.com/growerlab/kitbridge/pkg/topic"
	"github.com/growerlab/kitbridge/pkg/wire"
)

// Publisher sends a payload to an MQTT topic. The bridge session
// satisfies this.
type Publisher interface {
	Publish(topic string, payload []byte) error
}

// KitClient issues RPC calls from the server to kits. Multiple calls
// to the same kit may be outstanding simultaneously; ids come from a
// per-kit monotonic counter and wraparound reuse is guarded by the
// table's duplicate check.
type KitClient struct {
	table   *Table
	pub     Publisher
	timeout time.Duration
	logger  *zap.Logger

	mu      sync.Mutex
	nextIDs map[string]uint64
}

// NewKitClient creates a client publishing through pub and correlating
// responses through table. timeout bounds each call unless the
// caller's context expires sooner.
func NewKitClient(table *Table, pub Publisher, timeout time.Duration, logger *zap.Logger) *KitClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &KitClient{
		table:   table,
		pub:     pub,
		timeout: timeout,
		logger:  logger,
		nextIDs: make(map[string]uint64),
	}
}

func (c *KitClient) nextID(kitSerial string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextIDs[kitSerial]
	c.nextIDs[kitSerial] = id + 1
	return id
}

// Call publishes an RPC request to the kit and suspends the caller
// until the response arrives, the timeout fires, or ctx is canceled.
// Cancellation deregisters the pending entry; the publish already sent
// is not retracted, and a late response is silently dropped.
func (c *KitClient) Call(ctx context.Context, kitSerial string, method wire.KitMethod, payload []byte) ([]byte, error) {
	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	var receipt *Receipt
	var id uint64
	for {
		id = c.nextID(kitSerial)
		var err error
		receipt, err = c.table.Register(kitSerial, id, deadline)
		if err == nil {
			break
		}
		// Counter wrapped onto a still-outstanding id; advance past it.
		if !errors.Is(err, ErrDuplicateID) {
			return nil, err
		}
	}

	metrics.RPCRequests.WithLabelValues("kit", method.String()).Inc()
	started := time.Now()

	request, err := wire.EncodeKitRequest(wire.KitRequest{ID: id, Method: method, Payload: payload})
	if err != nil {
		receipt.Cancel()
		return nil, fmt.Errorf("rpc: encode request for kit %s: %w", kitSerial, err)
	}
	if err := c.pub.Publish(topic.Format(kitSerial, topic.ChannelKitRPCRequest), request); err != nil {
		receipt.Cancel()
		return nil, fmt.Errorf("rpc: publish request to kit %s: %w", kitSerial, err)
	}

	select {
	case out := <-receipt.Outcome():
		metrics.RPCDuration.WithLabelValues(method.String()).Observe(time.Since(started).Seconds())
		if out.Err != nil {
			return nil, out.Err
		}
		if out.Response.Err != nil {
			return nil, out.Response.Err
		}
		return out.Response.Result, nil
	case <-ctx.Done():
		receipt.Cancel()
		return nil, ctx.Err()
	}
}

// Version asks the kit for its firmware version string.
func (c *KitClient) Version(ctx context.Context, kitSerial string) (string, error) {
	result, err := c.Call(ctx, kitSerial, wire.KitMethodVersion, nil)
	if err != nil {
		return "", err
	}
	return string(result), nil
}

// Uptime asks the kit how long it has been running.
func (c *KitClient) Uptime(ctx context.Context, kitSerial string) (time.Duration, error) {
	result, err := c.Call(ctx, kitSerial, wire.KitMethodUptime, nil)
	if err != nil {
		return 0, err
	}
	if len(result) != 8 {
		return 0, &wire.DecodeError{Reason: fmt.Sprintf("uptime result has %d bytes, want 8", len(result))}
	}
	seconds := binary.LittleEndian.Uint64(result)
	return time.Duration(seconds) * time.Second, nil
}

// EncodeUptime serializes an uptime result the way kits report it.
// Exported for the mock kit and tests.
func EncodeUptime(d time.Duration) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, uint64(d/time.Second))
	return buf
}
