package core

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/JonMunkholm/LeadTracker/internal/logging"
)

const (
	cacheKeyCampaigns = "campaigns"
	cacheKeyStatsAll  = "stats:all"
)

func statsCacheKey(campaignID *uuid.UUID) string {
	if campaignID == nil {
		return cacheKeyStatsAll
	}
	return "stats:" + campaignID.String()
}

// ListLeads returns one page of leads matching q.
func (s *Service) ListLeads(ctx context.Context, q LeadQuery) (LeadPage, error) {
	if q.Status != "" && !q.Status.Valid() {
		return LeadPage{}, fmt.Errorf("%w: %q", ErrInvalidStatus, q.Status)
	}
	return s.store.ListLeads(ctx, q.Normalize())
}

// GetLead returns a single lead.
func (s *Service) GetLead(ctx context.Context, id int64) (Lead, error) {
	return s.store.GetLead(ctx, id)
}

// ListActivities returns a lead's activities, newest first.
func (s *Service) ListActivities(ctx context.Context, leadID int64) ([]Activity, error) {
	if _, err := s.store.GetLead(ctx, leadID); err != nil {
		return nil, err
	}
	return s.store.ListActivities(ctx, leadID)
}

// ListCampaigns returns every campaign with its lead count. The list is
// served from the view cache when present.
func (s *Service) ListCampaigns(ctx context.Context) ([]CampaignSummary, error) {
	var cached []CampaignSummary
	if ok, err := s.cache.Load(ctx, cacheKeyCampaigns, &cached); err == nil && ok {
		return cached, nil
	}

	campaigns, err := s.store.ListCampaigns(ctx)
	if err != nil {
		return nil, err
	}
	s.storeView(ctx, cacheKeyCampaigns, campaigns)
	return campaigns, nil
}

// GetCampaign returns a single campaign.
func (s *Service) GetCampaign(ctx context.Context, id uuid.UUID) (Campaign, error) {
	return s.store.GetCampaign(ctx, id)
}

// Stats counts leads per status, optionally within one campaign.
func (s *Service) Stats(ctx context.Context, campaignID *uuid.UUID) (LeadStats, error) {
	key := statsCacheKey(campaignID)

	var cached LeadStats
	if ok, err := s.cache.Load(ctx, key, &cached); err == nil && ok {
		return cached, nil
	}

	stats, err := s.store.Stats(ctx, campaignID)
	if err != nil {
		return LeadStats{}, err
	}
	s.storeView(ctx, key, stats)
	return stats, nil
}

func (s *Service) storeView(ctx context.Context, key string, v any) {
	if err := s.cache.Store(ctx, key, v); err != nil {
		logging.FromContext(ctx).Debug("view cache store failed", "key", key, "error", err)
	}
}
