// Package fanout broadcasts newly ingested measurements to live
// viewers inside the process. Delivery is best-effort: a slow or
// disconnected subscriber never stalls ingestion for other
// subscribers or other kits.
package fanout

import (
	"sync"

	"go.uber.org/zap"

	"github.com/growerlab/kitbridge/pkg/metrics"
	"github.com/growerlab/kitbridge/pkg/wire"
)

// Update is one live measurement delivered to a subscriber. Exactly
// one of Raw and Aggregate is set.
type Update struct {
	KitSerial string
	Raw       *wire.RawMeasurement
	Aggregate *wire.AggregateMeasurement
}

// Subscription is one viewer's stream of updates for a single kit. It
// is owned by the viewer connection and must be released with
// Hub.Unsubscribe when that connection closes.
type Subscription struct {
	kitSerial string
	id        uint64
	ch        chan Update
}

// C returns the stream of updates. The channel is closed by
// Hub.Unsubscribe.
func (s *Subscription) C() <-chan Update { return s.ch }

// KitSerial reports which kit this subscription follows.
func (s *Subscription) KitSerial() string { return s.kitSerial }

type pqKey struct {
	peripheral   int32
	quantityType int32
}

// Hub is the in-process publish/subscribe broadcaster. Subscriber
// buffers are bounded; when a buffer is full the newest update is
// dropped for that subscriber only (drop-newest). The hub also retains
// the latest raw reading per (peripheral, quantityType) for each kit
// and replays it to new subscribers.
type Hub struct {
	mu       sync.RWMutex
	subs     map[string]map[uint64]*Subscription
	retained map[string]map[pqKey]wire.RawMeasurement
	nextID   uint64
	buffer   int
	logger   *zap.Logger
}

// NewHub creates a hub whose subscriber channels buffer up to
// bufferSize updates.
func NewHub(bufferSize int, logger *zap.Logger) *Hub {
	if bufferSize <= 0 {
		bufferSize = 16
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		subs:     make(map[string]map[uint64]*Subscription),
		retained: make(map[string]map[pqKey]wire.RawMeasurement),
		buffer:   bufferSize,
		logger:   logger,
	}
}

// Subscribe registers a new viewer for the given kit. Retained last
// readings for that kit are replayed into the subscription buffer so a
// fresh viewer sees current values immediately.
func (h *Hub) Subscribe(kitSerial string) *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	sub := &Subscription{
		kitSerial: kitSerial,
		id:        h.nextID,
		ch:        make(chan Update, h.buffer),
	}
	kitSubs, ok := h.subs[kitSerial]
	if !ok {
		kitSubs = make(map[uint64]*Subscription)
		h.subs[kitSerial] = kitSubs
	}
	kitSubs[sub.id] = sub

	for _, m := range h.retained[kitSerial] {
		m := m // per-iteration copy; Go 1.21 reuses the range variable
		select {
		case sub.ch <- Update{KitSerial: kitSerial, Raw: &m}:
		default:
			// Replay exceeding the buffer is dropped like any other
			// overflow.
			metrics.FanoutDropped.Inc()
		}
	}
	return sub
}

// Unsubscribe removes a subscription and closes its channel. It is
// idempotent; releasing an already-released subscription is a no-op.
func (h *Hub) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	kitSubs, ok := h.subs[sub.kitSerial]
	if !ok {
		return
	}
	if _, ok := kitSubs[sub.id]; !ok {
		return
	}
	delete(kitSubs, sub.id)
	if len(kitSubs) == 0 {
		delete(h.subs, sub.kitSerial)
	}
	close(sub.ch)
}

// PublishRaw delivers a raw measurement to every subscriber of the
// kit. Called by the ingestion pipeline after persistence succeeds.
func (h *Hub) PublishRaw(kitSerial string, m wire.RawMeasurement) {
	h.mu.Lock()
	defer h.mu.Unlock()

	key := pqKey{peripheral: m.Peripheral, quantityType: m.QuantityType}
	kitRetained, ok := h.retained[kitSerial]
	if !ok {
		kitRetained = make(map[pqKey]wire.RawMeasurement)
		h.retained[kitSerial] = kitRetained
	}
	kitRetained[key] = m

	h.deliver(kitSerial, Update{KitSerial: kitSerial, Raw: &m})
}

// PublishAggregate delivers an aggregate measurement to every
// subscriber of the kit. Aggregates are not retained.
func (h *Hub) PublishAggregate(kitSerial string, m wire.AggregateMeasurement) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	h.deliver(kitSerial, Update{KitSerial: kitSerial, Aggregate: &m})
}

// deliver pushes an update without blocking. Callers hold h.mu.
func (h *Hub) deliver(kitSerial string, u Update) {
	for _, sub := range h.subs[kitSerial] {
		select {
		case sub.ch <- u:
		default:
			metrics.FanoutDropped.Inc()
			h.logger.Debug("subscriber buffer full, dropping update",
				zap.String("kitSerial", kitSerial))
		}
	}
}

// Subscribers reports how many subscriptions currently follow a kit.
func (h *Hub) Subscribers(kitSerial string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[kitSerial])
}
