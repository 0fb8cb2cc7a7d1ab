package ingest

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/growerlab/kitbridge/pkg/fanout"
	"github.com/growerlab/kitbridge/pkg/wire"
)

// memoryStore is an in-memory MeasurementStore mirroring the Postgres
// implementation's semantics: inserts deduplicate on measurement id
// and fail with ErrConfigurationChanged when the active configuration
// no longer matches.
type memoryStore struct {
	mu         sync.Mutex
	activeID   int64
	raw        map[uuid.UUID]wire.RawMeasurement
	aggregate  map[uuid.UUID]wire.AggregateMeasurement
	failInsert error
}

func newMemoryStore(activeID int64) *memoryStore {
	return &memoryStore{
		activeID:  activeID,
		raw:       make(map[uuid.UUID]wire.RawMeasurement),
		aggregate: make(map[uuid.UUID]wire.AggregateMeasurement),
	}
}

func (s *memoryStore) InsertRaw(_ context.Context, _ string, configurationID int64, ms []wire.RawMeasurement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failInsert != nil {
		return s.failInsert
	}
	if configurationID != s.activeID {
		return ErrConfigurationChanged
	}
	for _, m := range ms {
		if _, exists := s.raw[m.ID]; !exists {
			s.raw[m.ID] = m
		}
	}
	return nil
}

func (s *memoryStore) InsertAggregate(_ context.Context, _ string, configurationID int64, ms []wire.AggregateMeasurement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failInsert != nil {
		return s.failInsert
	}
	if configurationID != s.activeID {
		return ErrConfigurationChanged
	}
	for _, m := range ms {
		if _, exists := s.aggregate[m.ID]; !exists {
			s.aggregate[m.ID] = m
		}
	}
	return nil
}

type memoryConfigs struct {
	mu     sync.Mutex
	active map[string]*Configuration
}

func (c *memoryConfigs) Active(_ context.Context, kitSerial string) (*Configuration, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active[kitSerial], nil
}

func configurationWith(id int64, pairs ...Pair) *Configuration {
	peripherals := make(map[Pair]struct{}, len(pairs))
	for _, p := range pairs {
		peripherals[p] = struct{}{}
	}
	return &Configuration{ID: id, Peripherals: peripherals}
}

func newTestPipeline(t *testing.T, configuration *Configuration) (*Pipeline, *memoryStore, *fanout.Hub) {
	t.Helper()
	store := newMemoryStore(configuration.ID)
	configs := &memoryConfigs{active: map[string]*Configuration{"k-1": configuration}}
	hub := fanout.NewHub(16, nil)
	return NewPipeline(configs, store, hub, nil), store, hub
}

func rawFor(pair Pair, value float64) wire.RawMeasurement {
	return wire.RawMeasurement{
		ID:           uuid.New(),
		Datetime:     1724932800000,
		Peripheral:   pair.Peripheral,
		QuantityType: pair.QuantityType,
		Value:        value,
	}
}

func TestIngestRawPartialAcceptance(t *testing.T) {
	valid := Pair{Peripheral: 1, QuantityType: 1}
	pipeline, store, hub := newTestPipeline(t, configurationWith(10, valid))

	sub := hub.Subscribe("k-1")
	defer hub.Unsubscribe(sub)

	good := rawFor(valid, 20.5)
	bad := rawFor(Pair{Peripheral: 9, QuantityType: 9}, 1.0)

	result, err := pipeline.IngestRaw(context.Background(), "k-1", []wire.RawMeasurement{good, bad})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Accepted)
	require.Len(t, result.Rejections, 1)
	assert.Equal(t, bad.ID, result.Rejections[0].MeasurementID)
	assert.Equal(t, int32(9), result.Rejections[0].Peripheral)

	// Only the valid member is persisted and fanned out.
	assert.Contains(t, store.raw, good.ID)
	assert.NotContains(t, store.raw, bad.ID)

	select {
	case u := <-sub.C():
		assert.Equal(t, good.ID, u.Raw.ID)
	default:
		t.Fatal("accepted measurement should reach subscribers")
	}
	select {
	case <-sub.C():
		t.Fatal("rejected measurement must not be fanned out")
	default:
	}
}

func TestIngestRawRedeliveryIsIdempotent(t *testing.T) {
	valid := Pair{Peripheral: 1, QuantityType: 1}
	pipeline, store, _ := newTestPipeline(t, configurationWith(10, valid))

	batch := []wire.RawMeasurement{rawFor(valid, 1), rawFor(valid, 2)}

	_, err := pipeline.IngestRaw(context.Background(), "k-1", batch)
	require.NoError(t, err)
	// Simulate MQTT at-least-once redelivery of the exact same batch.
	_, err = pipeline.IngestRaw(context.Background(), "k-1", batch)
	require.NoError(t, err)

	assert.Len(t, store.raw, 2, "redelivered measurements must not duplicate")
}

func TestIngestRawNoActiveConfiguration(t *testing.T) {
	pipeline := NewPipeline(
		&memoryConfigs{active: map[string]*Configuration{}},
		newMemoryStore(1),
		fanout.NewHub(4, nil),
		nil,
	)

	_, err := pipeline.IngestRaw(context.Background(), "k-1", []wire.RawMeasurement{rawFor(Pair{1, 1}, 1)})
	assert.ErrorIs(t, err, ErrNoActiveConfiguration)
}

func TestIngestRawStorageFailurePropagates(t *testing.T) {
	valid := Pair{Peripheral: 1, QuantityType: 1}
	pipeline, store, hub := newTestPipeline(t, configurationWith(10, valid))
	store.failInsert = errors.New("connection refused")

	sub := hub.Subscribe("k-1")
	defer hub.Unsubscribe(sub)

	_, err := pipeline.IngestRaw(context.Background(), "k-1", []wire.RawMeasurement{rawFor(valid, 1)})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoActiveConfiguration)

	select {
	case <-sub.C():
		t.Fatal("nothing may be fanned out when persistence fails")
	default:
	}

	// The retry succeeds once storage recovers.
	store.failInsert = nil
	result, err := pipeline.IngestRaw(context.Background(), "k-1", []wire.RawMeasurement{rawFor(valid, 1)})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Accepted)
}

// staleConfigs answers with an outdated configuration on the first
// lookup and the current one afterwards, simulating a configuration
// switch racing the ingestion.
type staleConfigs struct {
	mu      sync.Mutex
	lookups int
	stale   *Configuration
	current *Configuration
}

func (c *staleConfigs) Active(_ context.Context, _ string) (*Configuration, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lookups++
	if c.lookups == 1 {
		return c.stale, nil
	}
	return c.current, nil
}

func TestIngestRevalidatesOnConfigurationSwitch(t *testing.T) {
	shared := Pair{Peripheral: 1, QuantityType: 1}
	removed := Pair{Peripheral: 2, QuantityType: 1}

	store := newMemoryStore(11) // storage already sees configuration 11
	configs := &staleConfigs{
		stale:   configurationWith(10, shared, removed),
		current: configurationWith(11, shared),
	}
	pipeline := NewPipeline(configs, store, fanout.NewHub(4, nil), nil)

	kept := rawFor(shared, 3.3)
	dropped := rawFor(removed, 4.4)
	result, err := pipeline.IngestRaw(context.Background(), "k-1", []wire.RawMeasurement{kept, dropped})
	require.NoError(t, err)
	assert.Equal(t, 2, configs.lookups, "pipeline should have revalidated against the new configuration")

	// Both members passed the stale validation, but persistence refused
	// the outdated configuration id. Against the new configuration only
	// the shared pair survives; the removed one must not be attributed
	// to configuration 11.
	assert.Equal(t, 1, result.Accepted)
	require.Len(t, result.Rejections, 1)
	assert.Equal(t, dropped.ID, result.Rejections[0].MeasurementID)
	assert.Contains(t, store.raw, kept.ID)
	assert.NotContains(t, store.raw, dropped.ID)
}

func TestIngestAggregate(t *testing.T) {
	valid := Pair{Peripheral: 1, QuantityType: 1}
	pipeline, store, hub := newTestPipeline(t, configurationWith(10, valid))

	sub := hub.Subscribe("k-1")
	defer hub.Unsubscribe(sub)

	m := wire.AggregateMeasurement{
		ID:            uuid.New(),
		DatetimeStart: 1724932800000,
		DatetimeEnd:   1724932860000,
		Peripheral:    valid.Peripheral,
		QuantityType:  valid.QuantityType,
		Values:        map[string]float64{"minimum": 1, "maximum": 2},
	}

	result, err := pipeline.IngestAggregate(context.Background(), "k-1", []wire.AggregateMeasurement{m})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Accepted)
	assert.Contains(t, store.aggregate, m.ID)

	select {
	case u := <-sub.C():
		require.NotNil(t, u.Aggregate)
		assert.Equal(t, m.ID, u.Aggregate.ID)
	default:
		t.Fatal("aggregate should reach subscribers")
	}
}
