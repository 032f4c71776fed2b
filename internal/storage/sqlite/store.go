// Package sqlite is a single-file LeadStore built on gorm, for local use and
// small deployments without PostgreSQL.
package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/JonMunkholm/LeadTracker/internal/core"
)

// insertBatchSize bounds the rows per INSERT statement. SQLite caps bound
// parameters per statement and a lead row has 29 columns.
const insertBatchSize = 100

// Store implements core.LeadStore on a SQLite file.
type Store struct {
	db *gorm.DB
}

var _ core.LeadStore = (*Store)(nil)

// Options tunes Open.
type Options struct {
	// LogSQL logs every statement through gorm's logger.
	LogSQL bool
}

// Open opens (creating if needed) the database at path and migrates it.
// Use ":memory:" for a throwaway database.
func Open(path string, opts Options) (*Store, error) {
	level := logger.Warn
	if opts.LogSQL {
		level = logger.Info
	}

	db, err := gorm.Open(gormsqlite.Open(dsn(path)), &gorm.Config{
		Logger:  logger.Default.LogMode(level),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// One connection keeps :memory: databases shared and serializes writers.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&campaignRow{}, &leadRow{}, &activityRow{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	return &Store{db: db}, nil
}

func dsn(path string) string {
	const params = "_foreign_keys=on&_busy_timeout=5000"
	if path == ":memory:" {
		return "file::memory:?" + params
	}
	if strings.Contains(path, "?") {
		return path + "&" + params
	}
	return path + "?" + params
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) CreateCampaign(ctx context.Context, name string) (core.Campaign, error) {
	row := campaignRow{ID: uuid.NewString(), Name: name}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return core.Campaign{}, fmt.Errorf("create campaign: %w", err)
	}
	return row.toCampaign(), nil
}

func (s *Store) GetCampaign(ctx context.Context, id uuid.UUID) (core.Campaign, error) {
	var row campaignRow
	err := s.db.WithContext(ctx).First(&row, "id = ?", id.String()).Error
	if err != nil {
		return core.Campaign{}, notFound(err, "campaign %s", id)
	}
	return row.toCampaign(), nil
}

func (s *Store) ListCampaigns(ctx context.Context) ([]core.CampaignSummary, error) {
	db := s.db.WithContext(ctx)

	var rows []campaignRow
	if err := db.Order("created_at DESC").Order("name").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}

	var counts []struct {
		CampaignID string
		N          int
	}
	err := db.Model(&leadRow{}).
		Select("campaign_id, COUNT(*) AS n").
		Group("campaign_id").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("count leads: %w", err)
	}
	byCampaign := make(map[string]int, len(counts))
	for _, c := range counts {
		byCampaign[c.CampaignID] = c.N
	}

	out := make([]core.CampaignSummary, 0, len(rows))
	for _, r := range rows {
		out = append(out, core.CampaignSummary{Campaign: r.toCampaign(), LeadCount: byCampaign[r.ID]})
	}
	return out, nil
}

// InsertLeads writes every record in one transaction. Foreign keys are on, so
// an unknown campaign fails the whole batch.
func (s *Store) InsertLeads(ctx context.Context, records []core.LeadRecord) error {
	if len(records) == 0 {
		return nil
	}
	rows := make([]leadRow, len(records))
	for i, r := range records {
		rows[i] = toLeadRow(r)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).CreateInBatches(rows, insertBatchSize).Error; err != nil {
			return fmt.Errorf("insert leads: %w", err)
		}
		return nil
	})
}
