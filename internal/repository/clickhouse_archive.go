package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/supneo2025-ops/vwap-prediction/internal/domain/models"
	domrepo "github.com/supneo2025-ops/vwap-prediction/internal/domain/repository"
)

// ClickHouseArchive persists published rows as an append-only log, one
// insert per cadence tick. The dashboard never reads this; it exists so
// prediction accuracy can be verified across sessions without replaying.
type ClickHouseArchive struct {
	db     *sql.DB
	table  string
	closer func() error
}

// NewClickHouseArchive creates the archive repository. closer releases
// the connection pool on Close; nil leaves ownership with the caller.
func NewClickHouseArchive(db *sql.DB, table string, closer func() error) *ClickHouseArchive {
	return &ClickHouseArchive{db: db, table: table, closer: closer}
}

func (a *ClickHouseArchive) Init(ctx context.Context) error {
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			ts DateTime64(3),
			effective_ts DateTime64(3),
			bu_current Float64,
			sd_current Float64,
			busd_current Float64,
			forecasts String
		) ENGINE=MergeTree ORDER BY ts`, a.table),
	}
	for _, stmt := range stmts {
		if _, err := a.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("archive schema: %w", err)
		}
	}
	return nil
}

func (a *ClickHouseArchive) Archive(ctx context.Context, row models.PublishedRow) error {
	forecasts, err := json.Marshal(row.Forecasts)
	if err != nil {
		return fmt.Errorf("marshal forecasts: %w", err)
	}
	q := fmt.Sprintf("INSERT INTO %s (ts, effective_ts, bu_current, sd_current, busd_current, forecasts) VALUES (?, ?, ?, ?, ?, ?)", a.table)
	_, err = a.db.ExecContext(ctx, q,
		time.UnixMilli(row.Timestamp),
		time.UnixMilli(row.EffectiveTime),
		row.BU,
		row.SD,
		row.Net,
		string(forecasts),
	)
	if err != nil {
		return fmt.Errorf("archive insert: %w", err)
	}
	return nil
}

func (a *ClickHouseArchive) Close() error {
	if a.closer != nil {
		return a.closer()
	}
	return nil
}

var _ domrepo.Archiver = (*ClickHouseArchive)(nil)
