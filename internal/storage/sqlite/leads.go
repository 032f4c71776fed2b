package sqlite

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/JonMunkholm/LeadTracker/internal/core"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func filterLeads(db *gorm.DB, q core.LeadQuery) *gorm.DB {
	if q.Search != "" {
		pattern := "%" + likeEscaper.Replace(strings.ToLower(q.Search)) + "%"
		db = db.Where(
			`(LOWER(company_name) LIKE @p ESCAPE '\' OR LOWER(first_name) LIKE @p ESCAPE '\' OR `+
				`LOWER(last_name) LIKE @p ESCAPE '\' OR LOWER(email_address) LIKE @p ESCAPE '\')`,
			map[string]any{"p": pattern},
		)
	}
	if q.Status != "" {
		db = db.Where("status = ?", string(q.Status))
	}
	if q.CampaignID != nil {
		db = db.Where("campaign_id = ?", q.CampaignID.String())
	}
	return db
}

func (s *Store) ListLeads(ctx context.Context, q core.LeadQuery) (core.LeadPage, error) {
	q = q.Normalize()
	db := s.db.WithContext(ctx)

	var total int64
	if err := filterLeads(db.Model(&leadRow{}), q).Count(&total).Error; err != nil {
		return core.LeadPage{}, fmt.Errorf("count leads: %w", err)
	}

	var rows []leadRow
	// q.Sort is whitelisted by LeadQuery.Normalize.
	err := filterLeads(db.Model(&leadRow{}), q).
		Order(clause.OrderByColumn{Column: clause.Column{Name: q.Sort}, Desc: q.Desc}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: q.Desc}).
		Limit(q.Limit).
		Offset(q.Offset).
		Find(&rows).Error
	if err != nil {
		return core.LeadPage{}, fmt.Errorf("list leads: %w", err)
	}

	page := core.LeadPage{Total: int(total), Leads: make([]core.Lead, 0, len(rows))}
	for _, r := range rows {
		page.Leads = append(page.Leads, r.toLead())
	}
	return page, nil
}

func (s *Store) GetLead(ctx context.Context, id int64) (core.Lead, error) {
	var row leadRow
	if err := s.db.WithContext(ctx).First(&row, id).Error; err != nil {
		return core.Lead{}, notFound(err, "lead %d", id)
	}
	return row.toLead(), nil
}

func (s *Store) UpdateLeadStatus(ctx context.Context, id int64, status core.LeadStatus) (core.Lead, error) {
	db := s.db.WithContext(ctx)
	res := db.Model(&leadRow{ID: id}).Update("status", string(status))
	if res.Error != nil {
		return core.Lead{}, fmt.Errorf("update lead %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return core.Lead{}, fmt.Errorf("lead %d: %w", id, core.ErrNotFound)
	}
	return s.GetLead(ctx, id)
}

func (s *Store) DeleteLead(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("lead_id = ?", id).Delete(&activityRow{}).Error; err != nil {
			return fmt.Errorf("delete activities of lead %d: %w", id, err)
		}
		res := tx.Delete(&leadRow{}, id)
		if res.Error != nil {
			return fmt.Errorf("delete lead %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("lead %d: %w", id, core.ErrNotFound)
		}
		return nil
	})
}

func (s *Store) AddActivity(ctx context.Context, a core.Activity) (core.Activity, error) {
	db := s.db.WithContext(ctx)

	var n int64
	if err := db.Model(&leadRow{}).Where("id = ?", a.LeadID).Count(&n).Error; err != nil {
		return core.Activity{}, fmt.Errorf("add activity: %w", err)
	}
	if n == 0 {
		return core.Activity{}, fmt.Errorf("lead %d: %w", a.LeadID, core.ErrNotFound)
	}

	row := activityRow{LeadID: a.LeadID, ContactMethod: string(a.ContactMethod), Notes: a.Notes}
	if err := db.Omit(clause.Associations).Create(&row).Error; err != nil {
		return core.Activity{}, fmt.Errorf("add activity: %w", err)
	}
	return row.toActivity(), nil
}

func (s *Store) ListActivities(ctx context.Context, leadID int64) ([]core.Activity, error) {
	var rows []activityRow
	err := s.db.WithContext(ctx).
		Where("lead_id = ?", leadID).
		Order("created_at DESC").Order("id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	out := make([]core.Activity, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toActivity())
	}
	return out, nil
}

func (s *Store) Stats(ctx context.Context, campaignID *uuid.UUID) (core.LeadStats, error) {
	db := s.db.WithContext(ctx).Model(&leadRow{})
	if campaignID != nil {
		db = db.Where("campaign_id = ?", campaignID.String())
	}

	var counts []struct {
		Status string
		N      int
	}
	if err := db.Select("status, COUNT(*) AS n").Group("status").Scan(&counts).Error; err != nil {
		return core.LeadStats{}, fmt.Errorf("lead stats: %w", err)
	}

	stats := core.NewLeadStats()
	for _, c := range counts {
		stats.Add(core.LeadStatus(c.Status), c.N)
	}
	return stats, nil
}

func notFound(err error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf(format+": %w", append(args, core.ErrNotFound)...)
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}
