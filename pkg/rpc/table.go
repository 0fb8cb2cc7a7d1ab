package rpc

import (
	"context"
	"errors"
	"hash/fnv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/growerlab/kitbridge/pkg/metrics"
	"github.com/growerlab/kitbridge/pkg/wire"
)

// ErrDuplicateID is returned by Register when the id is already
// outstanding for the kit. Reusing an id before the prior call
// resolved would corrupt correlation, so the new registration is
// refused and the old pending call stays alive.
var ErrDuplicateID = errors.New("rpc: request id already outstanding for kit")

// ErrTimeout is delivered to a receipt whose deadline elapsed without
// a matching response.
var ErrTimeout = errors.New("rpc: call timed out")

// Outcome is the single resolution of a pending call: a decoded
// response, or an error (ErrTimeout, a *wire.DecodeError, or a
// *wire.RPCError reported by the kit).
type Outcome struct {
	Response wire.Response
	Err      error
}

// Receipt is the caller's handle on a pending call. Exactly one
// outcome is ever delivered. A caller that abandons the call must
// Cancel the receipt so the table entry does not leak.
type Receipt struct {
	table     *Table
	kitSerial string
	id        uint64
	ch        chan Outcome
}

// Outcome returns the channel on which the call's single outcome
// arrives.
func (r *Receipt) Outcome() <-chan Outcome { return r.ch }

// Cancel deregisters the pending call if no outcome has been delivered
// yet. Safe to call multiple times and after resolution.
func (r *Receipt) Cancel() {
	r.table.remove(r.kitSerial, r.id)
}

type pendingKey struct {
	kitSerial string
	id        uint64
}

type pending struct {
	deadline time.Time
	receipt  *Receipt
}

// The table is sharded by kit serial so contention stays local to one
// kit's traffic.
const tableShards = 16

// Table tracks pending server-to-kit calls and pairs late-arriving
// MQTT responses with them. Removal of an entry is atomic with its
// resolution, making double delivery structurally impossible.
type Table struct {
	shards [tableShards]tableShard
	logger *zap.Logger
}

type tableShard struct {
	mu      sync.Mutex
	pending map[pendingKey]*pending
}

// NewTable creates an empty correlation table.
func NewTable(logger *zap.Logger) *Table {
	if logger == nil {
		logger = zap.NewNop()
	}
	t := &Table{logger: logger}
	for i := range t.shards {
		t.shards[i].pending = make(map[pendingKey]*pending)
	}
	return t
}

func (t *Table) shard(kitSerial string) *tableShard {
	h := fnv.New32a()
	h.Write([]byte(kitSerial))
	return &t.shards[h.Sum32()%tableShards]
}

// Register records a pending call and returns its receipt. It fails
// with ErrDuplicateID if the id is already outstanding for the kit.
func (t *Table) Register(kitSerial string, id uint64, deadline time.Time) (*Receipt, error) {
	key := pendingKey{kitSerial: kitSerial, id: id}
	s := t.shard(kitSerial)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.pending[key]; exists {
		t.logger.Warn("duplicate rpc request id",
			zap.String("kitSerial", kitSerial), zap.Uint64("id", id))
		return nil, ErrDuplicateID
	}

	receipt := &Receipt{
		table:     t,
		kitSerial: kitSerial,
		id:        id,
		// Buffered so resolution never blocks on an absent reader.
		ch: make(chan Outcome, 1),
	}
	s.pending[key] = &pending{deadline: deadline, receipt: receipt}
	return receipt, nil
}

// Resolve removes the pending entry and delivers the outcome to the
// awaiting receipt. An unmatched id is a normal event under
// at-least-once delivery (late or duplicate response after timeout
// eviction) and is silently dropped; the return value reports whether
// a pending call was matched.
func (t *Table) Resolve(kitSerial string, id uint64, out Outcome) bool {
	key := pendingKey{kitSerial: kitSerial, id: id}
	s := t.shard(kitSerial)

	s.mu.Lock()
	p, ok := s.pending[key]
	if ok {
		delete(s.pending, key)
	}
	s.mu.Unlock()

	if !ok {
		return false
	}
	p.receipt.ch <- out
	return true
}

// remove drops a pending entry without delivering an outcome. Used by
// receipt cancellation.
func (t *Table) remove(kitSerial string, id uint64) {
	key := pendingKey{kitSerial: kitSerial, id: id}
	s := t.shard(kitSerial)

	s.mu.Lock()
	delete(s.pending, key)
	s.mu.Unlock()
}

// Len reports the number of pending calls across all shards.
func (t *Table) Len() int {
	n := 0
	for i := range t.shards {
		s := &t.shards[i]
		s.mu.Lock()
		n += len(s.pending)
		s.mu.Unlock()
	}
	return n
}

// SweepInterval bounds how far a timeout can overrun its nominal
// deadline: an expired entry is evicted no later than one interval
// after the deadline passes.
const SweepInterval = 250 * time.Millisecond

// SweepLoop periodically evicts expired entries until the context is
// canceled, delivering ErrTimeout to their receipts.
func (t *Table) SweepLoop(ctx context.Context) {
	ticker := time.NewTicker(SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			t.sweep(now)
		}
	}
}

func (t *Table) sweep(now time.Time) {
	for i := range t.shards {
		s := &t.shards[i]

		var expired []*pending
		s.mu.Lock()
		for key, p := range s.pending {
			if !p.deadline.After(now) {
				delete(s.pending, key)
				expired = append(expired, p)
			}
		}
		s.mu.Unlock()

		for _, p := range expired {
			metrics.RPCTimeouts.Inc()
			p.receipt.ch <- Outcome{Err: ErrTimeout}
		}
	}
}
