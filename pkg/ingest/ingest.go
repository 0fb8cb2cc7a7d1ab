// Package ingest validates and persists measurement batches and hands
// accepted measurements to the live fan-out hub.
package ingest

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/growerlab/kitbridge/pkg/fanout"
	"github.com/growerlab/kitbridge/pkg/metrics"
	"github.com/growerlab/kitbridge/pkg/wire"
)

// Pair identifies one measurable quantity of one peripheral.
type Pair struct {
	Peripheral   int32
	QuantityType int32
}

// Configuration is the peripheral set in effect for a kit. At most one
// configuration is active per kit at a time.
type Configuration struct {
	ID          int64
	Peripherals map[Pair]struct{}
}

// ConfigurationStore resolves a kit's active configuration. A nil
// configuration with nil error means none is active.
type ConfigurationStore interface {
	Active(ctx context.Context, kitSerial string) (*Configuration, error)
}

// MeasurementStore persists accepted measurements. Implementations
// must be idempotent under redelivery: measurements carry kit-chosen
// UUIDs and re-inserting an existing id is a no-op. They must also
// verify, atomically with the write, that configurationID is still the
// kit's active configuration, returning ErrConfigurationChanged
// otherwise.
type MeasurementStore interface {
	InsertRaw(ctx context.Context, kitSerial string, configurationID int64, ms []wire.RawMeasurement) error
	InsertAggregate(ctx context.Context, kitSerial string, configurationID int64, ms []wire.AggregateMeasurement) error
}

// ErrNoActiveConfiguration rejects a batch from a kit without an
// active configuration; there is no peripheral set to validate
// against.
var ErrNoActiveConfiguration = errors.New("ingest: kit has no active configuration")

// ErrConfigurationChanged signals that the active configuration
// switched between resolution and persistence. The pipeline retries
// once against the new configuration.
var ErrConfigurationChanged = errors.New("ingest: active configuration changed during ingestion")

// Rejection reports one batch member refused by validation.
type Rejection struct {
	MeasurementID uuid.UUID
	Peripheral    int32
	QuantityType  int32
	Reason        string
}

// Result summarizes a batch ingestion: how many members were accepted
// and which were rejected. Rejections are per-member; a batch with one
// bad reading still has its valid remainder accepted.
type Result struct {
	Accepted   int
	Rejections []Rejection
}

// Pipeline validates batches against the kit's active configuration,
// persists the accepted members, and fans them out to live viewers.
type Pipeline struct {
	configs ConfigurationStore
	store   MeasurementStore
	hub     *fanout.Hub
	logger  *zap.Logger
}

// NewPipeline assembles an ingestion pipeline.
func NewPipeline(configs ConfigurationStore, store MeasurementStore, hub *fanout.Hub, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{configs: configs, store: store, hub: hub, logger: logger}
}

// IngestRaw processes a batch of raw measurements for one kit. A
// storage failure is returned as an error distinct from validation
// rejection; the whole batch may be retried safely because persisted
// ids deduplicate.
func (p *Pipeline) IngestRaw(ctx context.Context, kitSerial string, batch []wire.RawMeasurement) (Result, error) {
	var result Result
	err := p.withActiveConfiguration(ctx, kitSerial, func(configuration *Configuration) error {
		accepted := make([]wire.RawMeasurement, 0, len(batch))
		result = Result{}
		for _, m := range batch {
			if rejection := validateMember(configuration, m.ID, m.Peripheral, m.QuantityType); rejection != nil {
				result.Rejections = append(result.Rejections, *rejection)
				continue
			}
			accepted = append(accepted, m)
		}
		if len(accepted) > 0 {
			if err := p.store.InsertRaw(ctx, kitSerial, configuration.ID, accepted); err != nil {
				return err
			}
			for _, m := range accepted {
				p.hub.PublishRaw(kitSerial, m)
			}
		}
		result.Accepted = len(accepted)
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	p.count("raw", result)
	return result, nil
}

// IngestAggregate processes a batch of aggregate measurements for one
// kit.
func (p *Pipeline) IngestAggregate(ctx context.Context, kitSerial string, batch []wire.AggregateMeasurement) (Result, error) {
	var result Result
	err := p.withActiveConfiguration(ctx, kitSerial, func(configuration *Configuration) error {
		accepted := make([]wire.AggregateMeasurement, 0, len(batch))
		result = Result{}
		for _, m := range batch {
			if rejection := validateMember(configuration, m.ID, m.Peripheral, m.QuantityType); rejection != nil {
				result.Rejections = append(result.Rejections, *rejection)
				continue
			}
			accepted = append(accepted, m)
		}
		if len(accepted) > 0 {
			if err := p.store.InsertAggregate(ctx, kitSerial, configuration.ID, accepted); err != nil {
				return err
			}
			for _, m := range accepted {
				p.hub.PublishAggregate(kitSerial, m)
			}
		}
		result.Accepted = len(accepted)
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	p.count("aggregate", result)
	return result, nil
}

// withActiveConfiguration resolves the kit's active configuration and
// runs fn with it. If persistence detects the configuration switched
// mid-flight, the batch is re-validated once against the new one so a
// measurement is never attributed to the wrong peripheral set.
func (p *Pipeline) withActiveConfiguration(ctx context.Context, kitSerial string, fn func(*Configuration) error) error {
	for attempt := 0; attempt < 2; attempt++ {
		configuration, err := p.configs.Active(ctx, kitSerial)
		if err != nil {
			return fmt.Errorf("ingest: resolving active configuration for kit %s: %w", kitSerial, err)
		}
		if configuration == nil {
			return ErrNoActiveConfiguration
		}

		err = fn(configuration)
		if errors.Is(err, ErrConfigurationChanged) && attempt == 0 {
			p.logger.Info("active configuration changed during ingestion, revalidating",
				zap.String("kitSerial", kitSerial))
			continue
		}
		return err
	}
	return ErrConfigurationChanged
}

func validateMember(configuration *Configuration, id uuid.UUID, peripheral, quantityType int32) *Rejection {
	if _, ok := configuration.Peripherals[Pair{Peripheral: peripheral, QuantityType: quantityType}]; !ok {
		return &Rejection{
			MeasurementID: id,
			Peripheral:    peripheral,
			QuantityType:  quantityType,
			Reason:        "peripheral/quantity pair not in active configuration",
		}
	}
	return nil
}

func (p *Pipeline) count(kind string, result Result) {
	metrics.IngestedMeasurements.WithLabelValues(kind).Add(float64(result.Accepted))
	if n := len(result.Rejections); n > 0 {
		metrics.RejectedMeasurements.WithLabelValues("unknown_peripheral").Add(float64(n))
	}
}
