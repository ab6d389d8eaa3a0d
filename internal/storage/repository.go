package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ErrNotConfigured indicates the storage pool was not initialised.
var ErrNotConfigured = errors.New("storage: pool not configured")

const (
	insertSnapshotSQL = `INSERT INTO quote_snapshots (
        symbol,
        price_usd,
        price_thb,
        fx_rate,
        fx_source,
        rsi,
        cycle_ts
    ) VALUES ($1,$2,$3,$4,$5,$6,$7)
    ON CONFLICT (symbol, cycle_ts) DO UPDATE
    SET price_usd = EXCLUDED.price_usd,
        price_thb = EXCLUDED.price_thb,
        fx_rate   = EXCLUDED.fx_rate,
        fx_source = EXCLUDED.fx_source,
        rsi       = EXCLUDED.rsi;`

	listRecentSnapshotsSQL = `SELECT
        symbol, price_usd, price_thb, fx_rate, fx_source, rsi, cycle_ts, created_at
    FROM quote_snapshots
    WHERE ($1 = '' OR symbol = $1)
    ORDER BY cycle_ts DESC, symbol
    LIMIT $2;`

	listSnapshotsBetweenSQL = `SELECT
        symbol, price_usd, price_thb, fx_rate, fx_source, rsi, cycle_ts, created_at
    FROM quote_snapshots
    WHERE symbol = $1
      AND cycle_ts >= $2
      AND cycle_ts < $3
    ORDER BY cycle_ts;`

	insertAlertSQL = `INSERT INTO alerts (
        symbol, kind, price_thb, profit_pct
    ) VALUES ($1,$2,$3,$4)
    RETURNING id, symbol, kind, price_thb, profit_pct, created_at;`

	listRecentAlertsSQL = `SELECT
        id, symbol, kind, price_thb, profit_pct, created_at
    FROM alerts
    ORDER BY created_at DESC
    LIMIT $1;`
)

// SnapshotStore defines operations for quote snapshot persistence.
type SnapshotStore interface {
	InsertSnapshots(ctx context.Context, snapshots []QuoteSnapshot) error
	ListRecentSnapshots(ctx context.Context, symbol string, limit int) ([]QuoteSnapshot, error)
	ListSnapshotsBetween(ctx context.Context, symbol string, from, to time.Time) ([]QuoteSnapshot, error)
}

// AlertStore defines operations for alert auditing.
type AlertStore interface {
	InsertAlert(ctx context.Context, alert AlertRecord) (AlertRecord, error)
	ListRecentAlerts(ctx context.Context, limit int) ([]AlertRecord, error)
}

// Store aggregates access to snapshots and alerts.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wires a pgx pool into a Store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

func (s *Store) getPool() (*pgxpool.Pool, error) {
	if s == nil || s.pool == nil {
		return nil, ErrNotConfigured
	}
	return s.pool, nil
}

// InsertSnapshots persists one cycle's snapshots in a single batch.
func (s *Store) InsertSnapshots(ctx context.Context, snapshots []QuoteSnapshot) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}
	if len(snapshots) == 0 {
		return nil
	}

	batch := new(pgx.Batch)
	for _, snap := range snapshots {
		batch.Queue(insertSnapshotSQL,
			snap.Symbol,
			snap.PriceUSD.String(),
			snap.PriceTHB.String(),
			snap.FxRate.String(),
			snap.FxSource,
			snap.RSI,
			snap.CycleTS,
		)
	}

	results := pool.SendBatch(ctx, batch)
	defer results.Close()

	for range snapshots {
		if _, execErr := results.Exec(); execErr != nil {
			return fmt.Errorf("insert snapshot batch: %w", execErr)
		}
	}
	return nil
}

// ListRecentSnapshots lists the newest snapshots, optionally filtered
// by symbol.
func (s *Store) ListRecentSnapshots(ctx context.Context, symbol string, limit int) ([]QuoteSnapshot, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listRecentSnapshotsSQL, symbol, limit)
	if queryErr != nil {
		return nil, fmt.Errorf("list recent snapshots: %w", queryErr)
	}
	defer rows.Close()

	return collectSnapshots(rows)
}

// ListSnapshotsBetween lists one symbol's snapshots within a window.
func (s *Store) ListSnapshotsBetween(ctx context.Context, symbol string, from, to time.Time) ([]QuoteSnapshot, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listSnapshotsBetweenSQL, symbol, from, to)
	if queryErr != nil {
		return nil, fmt.Errorf("list snapshots between: %w", queryErr)
	}
	defer rows.Close()

	return collectSnapshots(rows)
}

// InsertAlert persists an alert emission.
func (s *Store) InsertAlert(ctx context.Context, alert AlertRecord) (AlertRecord, error) {
	pool, err := s.getPool()
	if err != nil {
		return AlertRecord{}, err
	}

	row := pool.QueryRow(ctx, insertAlertSQL,
		alert.Symbol,
		alert.Kind,
		alert.PriceTHB.String(),
		alert.ProfitPct.String(),
	)

	rec, scanErr := scanAlert(row)
	if scanErr != nil {
		return AlertRecord{}, fmt.Errorf("insert alert: %w", scanErr)
	}
	return rec, nil
}

// ListRecentAlerts lists most recent alerts.
func (s *Store) ListRecentAlerts(ctx context.Context, limit int) ([]AlertRecord, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listRecentAlertsSQL, limit)
	if queryErr != nil {
		return nil, fmt.Errorf("list recent alerts: %w", queryErr)
	}
	defer rows.Close()

	alerts := make([]AlertRecord, 0, limit)
	for rows.Next() {
		rec, scanErr := scanAlert(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		alerts = append(alerts, rec)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return alerts, nil
}

func collectSnapshots(rows pgx.Rows) ([]QuoteSnapshot, error) {
	snapshots := make([]QuoteSnapshot, 0)
	for rows.Next() {
		var (
			snap    QuoteSnapshot
			usdStr  string
			thbStr  string
			rateStr string
		)
		if err := rows.Scan(
			&snap.Symbol,
			&usdStr,
			&thbStr,
			&rateStr,
			&snap.FxSource,
			&snap.RSI,
			&snap.CycleTS,
			&snap.CreatedAt,
		); err != nil {
			return nil, err
		}

		var convErr error
		if snap.PriceUSD, convErr = decimal.NewFromString(usdStr); convErr != nil {
			return nil, fmt.Errorf("parse price_usd: %w", convErr)
		}
		if snap.PriceTHB, convErr = decimal.NewFromString(thbStr); convErr != nil {
			return nil, fmt.Errorf("parse price_thb: %w", convErr)
		}
		if snap.FxRate, convErr = decimal.NewFromString(rateStr); convErr != nil {
			return nil, fmt.Errorf("parse fx_rate: %w", convErr)
		}

		snapshots = append(snapshots, snap)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return snapshots, nil
}

func scanAlert(row pgx.Row) (AlertRecord, error) {
	var (
		rec       AlertRecord
		priceStr  string
		profitStr string
	)
	if err := row.Scan(
		&rec.ID,
		&rec.Symbol,
		&rec.Kind,
		&priceStr,
		&profitStr,
		&rec.CreatedAt,
	); err != nil {
		return AlertRecord{}, err
	}

	var convErr error
	if rec.PriceTHB, convErr = decimal.NewFromString(priceStr); convErr != nil {
		return AlertRecord{}, fmt.Errorf("parse price_thb: %w", convErr)
	}
	if rec.ProfitPct, convErr = decimal.NewFromString(profitStr); convErr != nil {
		return AlertRecord{}, fmt.Errorf("parse profit_pct: %w", convErr)
	}
	return rec, nil
}
