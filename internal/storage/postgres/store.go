// Package postgres is the production LeadStore, backed by a pgx pool.
//
// Imports are written with the COPY protocol inside a single transaction, so
// a file of any size costs one round trip and a failure commits nothing.
package postgres

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/LeadTracker/internal/core"
)

//go:embed schema.sql
var schemaSQL string

// PoolConfig tunes the connection pool.
type PoolConfig struct {
	URL             string
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// Store implements core.LeadStore on PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

var _ core.LeadStore = (*Store)(nil)

// Open connects a pool, verifies it and applies the schema.
func Open(ctx context.Context, cfg PoolConfig) (*Store, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = int32(cfg.MaxConns)
	}
	if cfg.MinConns > 0 {
		poolConfig.MinConns = int32(cfg.MinConns)
	}
	if cfg.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := New(pool)
	if err := s.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an existing pool. The caller owns the schema.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Migrate creates missing tables and indexes.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func (s *Store) CreateCampaign(ctx context.Context, name string) (core.Campaign, error) {
	c := core.Campaign{ID: uuid.New(), Name: name}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO campaigns (id, name) VALUES ($1, $2) RETURNING created_at`,
		c.ID, c.Name,
	).Scan(&c.CreatedAt)
	if err != nil {
		return core.Campaign{}, fmt.Errorf("insert campaign: %w", err)
	}
	return c, nil
}

func (s *Store) GetCampaign(ctx context.Context, id uuid.UUID) (core.Campaign, error) {
	var c core.Campaign
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, created_at FROM campaigns WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Campaign{}, fmt.Errorf("campaign %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Campaign{}, fmt.Errorf("get campaign: %w", err)
	}
	return c, nil
}

func (s *Store) ListCampaigns(ctx context.Context) ([]core.CampaignSummary, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT c.id, c.name, c.created_at, count(l.id)
		FROM campaigns c
		LEFT JOIN leads l ON l.campaign_id = c.id
		GROUP BY c.id
		ORDER BY c.created_at DESC, c.name`)
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	defer rows.Close()

	out := []core.CampaignSummary{}
	for rows.Next() {
		var cs core.CampaignSummary
		if err := rows.Scan(&cs.ID, &cs.Name, &cs.CreatedAt, &cs.LeadCount); err != nil {
			return nil, fmt.Errorf("scan campaign: %w", err)
		}
		out = append(out, cs)
	}
	return out, rows.Err()
}

// leadColumns are the catalog columns in catalog order; catalog keys double
// as column names.
var leadColumns = func() []string {
	keys := core.FieldKeys()
	cols := make([]string, len(keys))
	for i, k := range keys {
		cols[i] = string(k)
	}
	return cols
}()

var copyColumns = append(append([]string{"campaign_id"}, leadColumns...), "status", "extra_fields")

// InsertLeads copies every record inside one transaction.
func (s *Store) InsertLeads(ctx context.Context, records []core.LeadRecord) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	src := pgx.CopyFromSlice(len(records), func(i int) ([]any, error) {
		return leadValues(records[i])
	})
	n, err := tx.CopyFrom(ctx, pgx.Identifier{"leads"}, copyColumns, src)
	if err != nil {
		return fmt.Errorf("copy leads: %w", err)
	}
	if int(n) != len(records) {
		return fmt.Errorf("copy leads: wrote %d of %d rows", n, len(records))
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func leadValues(r core.LeadRecord) ([]any, error) {
	vals := make([]any, 0, len(copyColumns))
	vals = append(vals, r.CampaignID)
	for _, k := range core.FieldKeys() {
		vals = append(vals, nullIfEmpty(r.Value(k)))
	}
	status := r.Status
	if status == "" {
		status = core.StatusNew
	}
	vals = append(vals, string(status))

	extra, err := encodeExtra(r.ExtraFields)
	if err != nil {
		return nil, err
	}
	return append(vals, extra), nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func encodeExtra(m map[string]string) (any, error) {
	if len(m) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode extra fields: %w", err)
	}
	return b, nil
}

// selectLead lists the columns scanLead reads.
var selectLead = func() string {
	cols := []string{"id", "campaign_id"}
	for _, c := range leadColumns {
		cols = append(cols, "COALESCE("+c+", '')")
	}
	cols = append(cols, "status", "extra_fields", "created_at", "updated_at")
	return strings.Join(cols, ", ")
}()

func scanLead(row pgx.Row) (core.Lead, error) {
	var (
		l      core.Lead
		status string
		extra  []byte
	)
	values := make([]string, len(leadColumns))

	dest := []any{&l.ID, &l.CampaignID}
	for i := range values {
		dest = append(dest, &values[i])
	}
	dest = append(dest, &status, &extra, &l.CreatedAt, &l.UpdatedAt)

	if err := row.Scan(dest...); err != nil {
		return core.Lead{}, err
	}

	for i, k := range core.FieldKeys() {
		l.SetField(k, values[i])
	}
	l.Status = core.LeadStatus(status)
	if len(extra) > 0 {
		if err := json.Unmarshal(extra, &l.ExtraFields); err != nil {
			return core.Lead{}, fmt.Errorf("decode extra fields: %w", err)
		}
	}
	return l, nil
}
