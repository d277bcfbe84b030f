package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/hamed0406/statuspage/internal/domain"
	"github.com/hamed0406/statuspage/internal/repo"
)

var _ repo.CheckStore = (*Store)(nil)
var _ repo.Pinger = (*Store)(nil)

type Config struct {
	DSN          string        `mapstructure:"dsn"`
	MaxConns     int32         `mapstructure:"max_conns"`
	MinConns     int32         `mapstructure:"min_conns"`
	QueryTimeout time.Duration `mapstructure:"query_timeout"`
	Migrate      bool          `mapstructure:"migrate"`
}

type Store struct {
	pool         *pgxpool.Pool
	log          *zap.Logger
	queryTimeout time.Duration
}

func New(ctx context.Context, cfg Config, log *zap.Logger) (*Store, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}
	if cfg.MaxConns > 0 {
		pcfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		pcfg.MinConns = cfg.MinConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	ctxPing, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctxPing); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return &Store{pool: pool, log: log, queryTimeout: cfg.QueryTimeout}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.queryTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.queryTimeout)
}

const (
	qAppend = `
INSERT INTO service_checks (service_name, checked_at, status, response_time)
VALUES ($1, $2, $3, $4)`

	qLatest = `
SELECT service_name, checked_at, status, response_time
  FROM service_checks
 WHERE service_name = $1
 ORDER BY checked_at DESC, id DESC
 LIMIT 1`

	qRange = `
SELECT service_name, checked_at, status, response_time
  FROM service_checks
 WHERE service_name = $1
   AND checked_at >= $2
   AND checked_at <= $3
 ORDER BY checked_at ASC, id ASC`
)

func (s *Store) Append(ctx context.Context, cr *domain.CheckResult) error {
	if cr.CheckedAt.IsZero() {
		cr.CheckedAt = time.Now().UTC()
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.pool.Exec(ctx, qAppend, cr.ServiceName, cr.CheckedAt, cr.Status, cr.ResponseTimeMS)
	if err != nil {
		return fmt.Errorf("insert check: %w", err)
	}
	return nil
}

func (s *Store) Latest(ctx context.Context, service string) (*domain.CheckResult, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var cr domain.CheckResult
	err := scanCheck(s.pool.QueryRow(ctx, qLatest, service), &cr)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest check: %w", err)
	}
	return &cr, nil
}

func (s *Store) Range(ctx context.Context, service string, from, to time.Time) ([]domain.CheckResult, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.pool.Query(ctx, qRange, service, from, to)
	if err != nil {
		return nil, fmt.Errorf("range checks: %w", err)
	}
	defer rows.Close()

	out := []domain.CheckResult{}
	for rows.Next() {
		var cr domain.CheckResult
		if err := scanCheck(rows, &cr); err != nil {
			return nil, fmt.Errorf("scan check: %w", err)
		}
		out = append(out, cr)
	}
	return out, rows.Err()
}

func scanCheck(row pgx.Row, cr *domain.CheckResult) error {
	var ms int32
	if err := row.Scan(&cr.ServiceName, &cr.CheckedAt, &cr.Status, &ms); err != nil {
		return err
	}
	cr.CheckedAt = cr.CheckedAt.UTC()
	cr.ResponseTimeMS = int64(ms)
	return nil
}
