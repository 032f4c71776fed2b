package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/JonMunkholm/LeadTracker/internal/logging"
)

// maxNotesLength bounds activity notes.
const maxNotesLength = 4000

// CreateCampaign creates an empty campaign.
func (s *Service) CreateCampaign(ctx context.Context, name string) (Campaign, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Campaign{}, ErrCampaignRequired
	}
	c, err := s.store.CreateCampaign(ctx, name)
	if err != nil {
		return Campaign{}, fmt.Errorf("create campaign: %w", err)
	}
	s.invalidate(ctx)
	return c, nil
}

// UpdateLeadStatus moves a lead to another pipeline stage.
func (s *Service) UpdateLeadStatus(ctx context.Context, id int64, status LeadStatus) (Lead, error) {
	if !status.Valid() {
		return Lead{}, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	lead, err := s.store.UpdateLeadStatus(ctx, id, status)
	if err != nil {
		return Lead{}, err
	}
	s.invalidate(ctx)

	logging.WithFields(ctx, clientFields(ctx)...).Info("lead status updated",
		"lead_id", id,
		"status", status,
	)
	return lead, nil
}

// DeleteLead removes a lead and its activities.
func (s *Service) DeleteLead(ctx context.Context, id int64) error {
	if err := s.store.DeleteLead(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// AddActivity logs a contact attempt. A lead still at StatusNew moves to
// StatusContacted; any later status is left alone.
func (s *Service) AddActivity(ctx context.Context, leadID int64, method ContactMethod, notes string) (Activity, error) {
	if _, err := ParseContactMethod(string(method)); err != nil {
		return Activity{}, err
	}
	notes = strings.TrimSpace(notes)
	if r := []rune(notes); len(r) > maxNotesLength {
		notes = string(r[:maxNotesLength])
	}

	lead, err := s.store.GetLead(ctx, leadID)
	if err != nil {
		return Activity{}, err
	}

	a, err := s.store.AddActivity(ctx, Activity{
		LeadID:        leadID,
		ContactMethod: method,
		Notes:         notes,
	})
	if err != nil {
		return Activity{}, fmt.Errorf("add activity: %w", err)
	}

	if lead.Status == StatusNew {
		if _, err := s.store.UpdateLeadStatus(ctx, leadID, StatusContacted); err != nil {
			return a, fmt.Errorf("mark lead contacted: %w", err)
		}
		s.invalidate(ctx)
	}

	logging.WithFields(ctx, clientFields(ctx)...).Info("activity logged",
		"lead_id", leadID,
		"contact_method", method,
		"previous_status", lead.Status,
	)
	return a, nil
}
