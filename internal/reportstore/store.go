// internal/reportstore/store.go

// Package reportstore persists finished campaign reports in Postgres, with a
// Redis read-through cache in front of the lookup path. Cache failures only
// cost a database round trip; they are logged and never surfaced.
package reportstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"campaign-forecaster/internal/common/config"
	stderrors "campaign-forecaster/internal/common/errors"
	"campaign-forecaster/internal/common/logger"
	"campaign-forecaster/internal/models"
)

const cacheKeyPrefix = "forecast:report:"

const schema = `
CREATE TABLE IF NOT EXISTS forecast_reports (
	id           TEXT PRIMARY KEY,
	industry     TEXT NOT NULL,
	total_budget NUMERIC(14, 2) NOT NULL,
	report       JSONB NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_forecast_reports_industry ON forecast_reports (industry);
CREATE INDEX IF NOT EXISTS idx_forecast_reports_created_at ON forecast_reports (created_at DESC);
`

type Store struct {
	db     *sql.DB
	cache  *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

// New builds a store. The cache client may be nil, in which case every read
// goes straight to Postgres.
func New(db *sql.DB, cache *redis.Client, cfg config.ReportsConfig, log logger.Logger) *Store {
	return &Store{
		db:     db,
		cache:  cache,
		ttl:    time.Duration(cfg.CacheTTL) * time.Second,
		logger: log.WithFields(map[string]interface{}{"component": "reportstore"}),
	}
}

// Migrate creates the reports table and indexes if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return stderrors.NewReportStoreError(err)
	}
	return nil
}

// Save inserts a report and primes the cache with it.
func (s *Store) Save(ctx context.Context, report *models.CampaignReport) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return stderrors.NewReportStoreError(err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO forecast_reports (id, industry, total_budget, report, created_at) VALUES ($1, $2, $3, $4, $5)`,
		report.ID, report.Brief.Industry, report.Brief.TotalBudget, payload, report.CreatedAt,
	)
	if err != nil {
		return stderrors.NewReportStoreError(err)
	}

	s.cacheSet(ctx, report.ID, payload)
	return nil
}

// Get returns a stored report, preferring the cache.
func (s *Store) Get(ctx context.Context, id string) (*models.CampaignReport, error) {
	if payload, ok := s.cacheGet(ctx, id); ok {
		var report models.CampaignReport
		if err := json.Unmarshal(payload, &report); err == nil {
			return &report, nil
		}
		s.logger.Warn("cached report is unreadable, falling through to postgres", map[string]interface{}{
			"reportId": id,
		})
	}

	var payload []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT report FROM forecast_reports WHERE id = $1`, id,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, stderrors.NewReportNotFoundError(id)
	}
	if err != nil {
		return nil, stderrors.NewReportStoreError(err)
	}

	var report models.CampaignReport
	if err := json.Unmarshal(payload, &report); err != nil {
		return nil, stderrors.NewReportStoreError(err)
	}

	s.cacheSet(ctx, id, payload)
	return &report, nil
}

// UpdateNarrative patches the narrative section of a stored report in place
// and drops the cached copy so the next read sees the new text.
func (s *Store) UpdateNarrative(ctx context.Context, id string, narrative map[string]string) error {
	payload, err := json.Marshal(narrative)
	if err != nil {
		return stderrors.NewReportStoreError(err)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE forecast_reports SET report = jsonb_set(report, '{narrative}', $2::jsonb, true) WHERE id = $1`,
		id, payload,
	)
	if err != nil {
		return stderrors.NewReportStoreError(err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return stderrors.NewReportNotFoundError(id)
	}

	s.cacheDelete(ctx, id)
	return nil
}

func (s *Store) cacheGet(ctx context.Context, id string) ([]byte, bool) {
	if s.cache == nil {
		return nil, false
	}
	payload, err := s.cache.Get(ctx, cacheKeyPrefix+id).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("report cache read failed", map[string]interface{}{
				"reportId": id,
				"error":    err.Error(),
			})
		}
		return nil, false
	}
	return payload, true
}

func (s *Store) cacheSet(ctx context.Context, id string, payload []byte) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, cacheKeyPrefix+id, payload, s.ttl).Err(); err != nil {
		s.logger.Warn("report cache write failed", map[string]interface{}{
			"reportId": id,
			"error":    err.Error(),
		})
	}
}

func (s *Store) cacheDelete(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, cacheKeyPrefix+id).Err(); err != nil {
		s.logger.Warn("report cache invalidation failed", map[string]interface{}{
			"reportId": id,
			"error":    err.Error(),
		})
	}
}
