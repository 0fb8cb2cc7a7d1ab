package fanout

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/growerlab/kitbridge/pkg/wire"
)

type (
	wireRaw       = wire.RawMeasurement
	wireAggregate = wire.AggregateMeasurement
)

func rawWithValue(v float64) wireRaw {
	return wireRaw{ID: uuid.New(), Peripheral: 1, QuantityType: 2, Value: v}
}

func TestPublishReachesKitSubscribers(t *testing.T) {
	h := NewHub(4, nil)

	sub := h.Subscribe("k-1")
	other := h.Subscribe("k-2")
	defer h.Unsubscribe(sub)
	defer h.Unsubscribe(other)

	h.PublishRaw("k-1", rawWithValue(1.5))

	select {
	case u := <-sub.C():
		require.NotNil(t, u.Raw)
		assert.Equal(t, 1.5, u.Raw.Value)
		assert.Equal(t, "k-1", u.KitSerial)
	default:
		t.Fatal("expected an update for k-1 subscriber")
	}

	select {
	case <-other.C():
		t.Fatal("k-2 subscriber must not see k-1 traffic")
	default:
	}
}

func TestSlowSubscriberDropsNewestOnly(t *testing.T) {
	h := NewHub(2, nil)

	slow := h.Subscribe("k-1")
	fast := h.Subscribe("k-1")
	defer h.Unsubscribe(slow)
	defer h.Unsubscribe(fast)

	// Publish more than the buffer holds without draining `slow`.
	for i := 0; i < 5; i++ {
		h.PublishRaw("k-1", rawWithValue(float64(i)))
		// Keep `fast` drained so its buffer never fills.
		<-fast.C()
	}

	// Drop-newest: the slow subscriber holds the two oldest updates.
	u := <-slow.C()
	assert.Equal(t, 0.0, u.Raw.Value)
	u = <-slow.C()
	assert.Equal(t, 1.0, u.Raw.Value)
	select {
	case <-slow.C():
		t.Fatal("overflowed updates should have been dropped")
	default:
	}
}

func TestRetainedReadingsReplayToNewSubscribers(t *testing.T) {
	h := NewHub(8, nil)

	h.PublishRaw("k-1", wireRaw{ID: uuid.New(), Peripheral: 1, QuantityType: 1, Value: 20})
	h.PublishRaw("k-1", wireRaw{ID: uuid.New(), Peripheral: 1, QuantityType: 1, Value: 21})
	h.PublishRaw("k-1", wireRaw{ID: uuid.New(), Peripheral: 2, QuantityType: 1, Value: 55})

	sub := h.Subscribe("k-1")
	defer h.Unsubscribe(sub)

	got := map[int32]float64{}
	for i := 0; i < 2; i++ {
		select {
		case u := <-sub.C():
			require.NotNil(t, u.Raw)
			got[u.Raw.Peripheral] = u.Raw.Value
		default:
			t.Fatal("expected retained replay")
		}
	}
	// Latest reading per peripheral/quantity pair.
	assert.Equal(t, map[int32]float64{1: 21, 2: 55}, got)
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	h := NewHub(2, nil)

	sub := h.Subscribe("k-1")
	require.Equal(t, 1, h.Subscribers("k-1"))

	h.Unsubscribe(sub)
	assert.Equal(t, 0, h.Subscribers("k-1"))

	// Releasing again must not panic or double-close.
	h.Unsubscribe(sub)
	h.Unsubscribe(nil)

	_, open := <-sub.C()
	assert.False(t, open)
}

func TestAggregatesAreNotRetained(t *testing.T) {
	h := NewHub(2, nil)

	h.PublishAggregate("k-1", wireAggregate{ID: uuid.New(), Values: map[string]float64{"average": 1}})

	sub := h.Subscribe("k-1")
	defer h.Unsubscribe(sub)

	select {
	case <-sub.C():
		t.Fatal("aggregates must not replay to new subscribers")
	default:
	}
}
