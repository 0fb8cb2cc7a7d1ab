// Package store implements the configuration and measurement
// collaborator interfaces on PostgreSQL.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/growerlab/kitbridge/pkg/ingest"
	"github.com/growerlab/kitbridge/pkg/wire"
)

// Postgres provides the kit configuration and measurement stores
// backed by a pgx connection pool.
type Postgres struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgres connects to the database, retrying with exponential
// backoff until the context is canceled or the retry budget runs out.
func NewPostgres(ctx context.Context, connString string, logger *zap.Logger) (*Postgres, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("store: parse connection string: %w", err)
	}

	var pool *pgxpool.Pool
	operation := func() error {
		pool, err = pgxpool.NewWithConfig(ctx, cfg)
		if err != nil {
			return err
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return err
		}
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5), ctx)
	if err := backoff.RetryNotify(operation, policy, func(err error, next time.Duration) {
		logger.Warn("database connection failed, retrying",
			zap.Error(err), zap.Duration("nextAttemptIn", next))
	}); err != nil {
		return nil, fmt.Errorf("store: connect: %w", err)
	}

	return &Postgres{pool: pool, logger: logger}, nil
}

// Close releases the connection pool.
func (p *Postgres) Close() {
	p.pool.Close()
}

// Active resolves the kit's active configuration and its peripheral
// set. Returns nil when the kit has no active configuration.
func (p *Postgres) Active(ctx context.Context, kitSerial string) (*ingest.Configuration, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT c.id, p.peripheral, p.quantity_type
		FROM kit_configurations c
		JOIN kits k ON k.id = c.kit_id
		LEFT JOIN peripherals p ON p.kit_configuration_id = c.id
		WHERE k.serial = $1 AND c.active`,
		kitSerial)
	if err != nil {
		return nil, fmt.Errorf("store: query active configuration: %w", err)
	}
	defer rows.Close()

	var configuration *ingest.Configuration
	for rows.Next() {
		var id int64
		var peripheral, quantityType *int32
		if err := rows.Scan(&id, &peripheral, &quantityType); err != nil {
			return nil, fmt.Errorf("store: scan active configuration: %w", err)
		}
		if configuration == nil {
			configuration = &ingest.Configuration{
				ID:          id,
				Peripherals: make(map[ingest.Pair]struct{}),
			}
		}
		if peripheral != nil && quantityType != nil {
			configuration.Peripherals[ingest.Pair{Peripheral: *peripheral, QuantityType: *quantityType}] = struct{}{}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: read active configuration: %w", err)
	}
	return configuration, nil
}

// peripheralView mirrors the wire-facing JSON shape of one peripheral.
type peripheralView struct {
	Peripheral   int32 `json:"peripheral"`
	QuantityType int32 `json:"quantityType"`
}

type configurationView struct {
	ID          int64            `json:"id"`
	Rules       json.RawMessage  `json:"rules"`
	Peripherals []peripheralView `json:"peripherals"`
}

// ActiveConfigurationJSON serializes the kit's active configuration
// for the getActiveConfiguration server RPC. Returns nil when none is
// active.
func (p *Postgres) ActiveConfigurationJSON(ctx context.Context, kitSerial string) ([]byte, error) {
	var view configurationView
	err := p.pool.QueryRow(ctx, `
		SELECT c.id, c.rules
		FROM kit_configurations c
		JOIN kits k ON k.id = c.kit_id
		WHERE k.serial = $1 AND c.active`,
		kitSerial).Scan(&view.ID, &view.Rules)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: query active configuration: %w", err)
	}

	rows, err := p.pool.Query(ctx,
		`SELECT peripheral, quantity_type FROM peripherals WHERE kit_configuration_id = $1 ORDER BY id`,
		view.ID)
	if err != nil {
		return nil, fmt.Errorf("store: query peripherals: %w", err)
	}
	defer rows.Close()

	view.Peripherals = []peripheralView{}
	for rows.Next() {
		var pv peripheralView
		if err := rows.Scan(&pv.Peripheral, &pv.QuantityType); err != nil {
			return nil, fmt.Errorf("store: scan peripheral: %w", err)
		}
		view.Peripherals = append(view.Peripherals, pv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: read peripherals: %w", err)
	}

	encoded, err := json.Marshal(view)
	if err != nil {
		return nil, fmt.Errorf("store: encode configuration: %w", err)
	}
	return encoded, nil
}

// InsertRaw persists raw measurements in one transaction. Measurement
// ids deduplicate via ON CONFLICT DO NOTHING, so redelivered batches
// are no-ops. The transaction re-checks that configurationID is still
// active, returning ingest.ErrConfigurationChanged when a switch raced
// the batch.
func (p *Postgres) InsertRaw(ctx context.Context, kitSerial string, configurationID int64, ms []wire.RawMeasurement) error {
	return p.inTx(ctx, configurationID, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, m := range ms {
			batch.Queue(`
				INSERT INTO raw_measurements
					(id, kit_serial, kit_configuration_id, peripheral, quantity_type, value, datetime)
				VALUES ($1, $2, $3, $4, $5, $6, to_timestamp($7::double precision / 1000))
				ON CONFLICT (id) DO NOTHING`,
				m.ID, kitSerial, configurationID, m.Peripheral, m.QuantityType, m.Value, m.Datetime)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
}

// InsertAggregate persists aggregate measurements with the same
// transactional and idempotence semantics as InsertRaw.
func (p *Postgres) InsertAggregate(ctx context.Context, kitSerial string, configurationID int64, ms []wire.AggregateMeasurement) error {
	return p.inTx(ctx, configurationID, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, m := range ms {
			values, err := json.Marshal(m.Values)
			if err != nil {
				return fmt.Errorf("encode aggregate values: %w", err)
			}
			batch.Queue(`
				INSERT INTO aggregate_measurements
					(id, kit_serial, kit_configuration_id, peripheral, quantity_type, aggregates,
					 datetime_start, datetime_end)
				VALUES ($1, $2, $3, $4, $5, $6,
					to_timestamp($7::double precision / 1000), to_timestamp($8::double precision / 1000))
				ON CONFLICT (id) DO NOTHING`,
				m.ID, kitSerial, configurationID, m.Peripheral, m.QuantityType, values,
				m.DatetimeStart, m.DatetimeEnd)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
}

// inTx runs fn in a transaction that first verifies configurationID is
// still the active configuration.
func (p *Postgres) inTx(ctx context.Context, configurationID int64, fn func(pgx.Tx) error) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("store: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var active bool
	err = tx.QueryRow(ctx,
		`SELECT active FROM kit_configurations WHERE id = $1`,
		configurationID).Scan(&active)
	if errors.Is(err, pgx.ErrNoRows) {
		return ingest.ErrConfigurationChanged
	}
	if err != nil {
		return fmt.Errorf("store: check configuration: %w", err)
	}
	if !active {
		return ingest.ErrConfigurationChanged
	}

	if err := fn(tx); err != nil {
		return fmt.Errorf("store: insert measurements: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("store: commit: %w", err)
	}
	return nil
}
