package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/JonMunkholm/LeadTracker/internal/core"
)

// whereLeads builds the filter clause for q, numbering placeholders from 1.
func whereLeads(q core.LeadQuery) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if q.Search != "" {
		args = append(args, "%"+escapeLike(q.Search)+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf(
			"(company_name ILIKE $%[1]d OR first_name ILIKE $%[1]d OR last_name ILIKE $%[1]d OR email_address ILIKE $%[1]d)", n))
	}
	if q.Status != "" {
		args = append(args, string(q.Status))
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if q.CampaignID != nil {
		args = append(args, *q.CampaignID)
		conds = append(conds, fmt.Sprintf("campaign_id = $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func orderLeads(q core.LeadQuery) string {
	dir := "ASC"
	if q.Desc {
		dir = "DESC"
	}
	// q.Sort is whitelisted by LeadQuery.Normalize.
	return fmt.Sprintf(" ORDER BY %s %s, id %s", pgx.Identifier{q.Sort}.Sanitize(), dir, dir)
}

func (s *Store) ListLeads(ctx context.Context, q core.LeadQuery) (core.LeadPage, error) {
	q = q.Normalize()
	where, args := whereLeads(q)

	var page core.LeadPage
	if err := s.pool.QueryRow(ctx, "SELECT count(*) FROM leads"+where, args...).Scan(&page.Total); err != nil {
		return core.LeadPage{}, fmt.Errorf("count leads: %w", err)
	}

	args = append(args, q.Limit, q.Offset)
	query := "SELECT " + selectLead + " FROM leads" + where + orderLeads(q) +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return core.LeadPage{}, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	page.Leads = []core.Lead{}
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return core.LeadPage{}, fmt.Errorf("scan lead: %w", err)
		}
		page.Leads = append(page.Leads, l)
	}
	return page, rows.Err()
}

func (s *Store) GetLead(ctx context.Context, id int64) (core.Lead, error) {
	row := s.pool.QueryRow(ctx, "SELECT "+selectLead+" FROM leads WHERE id = $1", id)
	l, err := scanLead(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Lead{}, fmt.Errorf("lead %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Lead{}, fmt.Errorf("get lead: %w", err)
	}
	return l, nil
}

func (s *Store) UpdateLeadStatus(ctx context.Context, id int64, status core.LeadStatus) (core.Lead, error) {
	row := s.pool.QueryRow(ctx,
		"UPDATE leads SET status = $2, updated_at = now() WHERE id = $1 RETURNING "+selectLead,
		id, string(status),
	)
	l, err := scanLead(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Lead{}, fmt.Errorf("lead %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Lead{}, fmt.Errorf("update lead status: %w", err)
	}
	return l, nil
}

func (s *Store) DeleteLead(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM leads WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete lead: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("lead %d: %w", id, core.ErrNotFound)
	}
	return nil
}

func (s *Store) AddActivity(ctx context.Context, a core.Activity) (core.Activity, error) {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO activities (lead_id, contact_method, notes)
		 VALUES ($1, $2, NULLIF($3, ''))
		 RETURNING id, created_at`,
		a.LeadID, string(a.ContactMethod), a.Notes,
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "foreign key") {
			return core.Activity{}, fmt.Errorf("lead %d: %w", a.LeadID, core.ErrNotFound)
		}
		return core.Activity{}, fmt.Errorf("insert activity: %w", err)
	}
	return a, nil
}

func (s *Store) ListActivities(ctx context.Context, leadID int64) ([]core.Activity, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, lead_id, contact_method, COALESCE(notes, ''), created_at
		 FROM activities WHERE lead_id = $1
		 ORDER BY created_at DESC, id DESC`, leadID)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer rows.Close()

	out := []core.Activity{}
	for rows.Next() {
		var (
			a      core.Activity
			method string
		)
		if err := rows.Scan(&a.ID, &a.LeadID, &method, &a.Notes, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		a.ContactMethod = core.ContactMethod(method)
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) Stats(ctx context.Context, campaignID *uuid.UUID) (core.LeadStats, error) {
	query := "SELECT status, count(*) FROM leads"
	var args []any
	if campaignID != nil {
		query += " WHERE campaign_id = $1"
		args = append(args, *campaignID)
	}
	query += " GROUP BY status"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return core.LeadStats{}, fmt.Errorf("lead stats: %w", err)
	}
	defer rows.Close()

	stats := core.NewLeadStats()
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return core.LeadStats{}, fmt.Errorf("scan stats: %w", err)
		}
		stats.Add(core.LeadStatus(status), n)
	}
	return stats, rows.Err()
}
