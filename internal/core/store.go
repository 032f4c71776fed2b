package core

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
)

// LeadStore is the full storage collaborator used by Service. Adapters live
// under internal/storage.
type LeadStore interface {
	LeadWriter

	ListCampaigns(ctx context.Context) ([]CampaignSummary, error)
	GetCampaign(ctx context.Context, id uuid.UUID) (Campaign, error)

	ListLeads(ctx context.Context, q LeadQuery) (LeadPage, error)
	GetLead(ctx context.Context, id int64) (Lead, error)
	UpdateLeadStatus(ctx context.Context, id int64, status LeadStatus) (Lead, error)
	DeleteLead(ctx context.Context, id int64) error

	AddActivity(ctx context.Context, a Activity) (Activity, error)
	ListActivities(ctx context.Context, leadID int64) ([]Activity, error)

	Stats(ctx context.Context, campaignID *uuid.UUID) (LeadStats, error)

	Ping(ctx context.Context) error
	Close() error
}

// CampaignSummary is a campaign with its lead count.
type CampaignSummary struct {
	Campaign
	LeadCount int `json:"lead_count"`
}

// ViewCache stores rendered read models (stats, campaign lists) that must
// be dropped whenever leads change.
type ViewCache interface {
	Load(ctx context.Context, key string, dest any) (bool, error)
	Store(ctx context.Context, key string, value any) error
	Invalidate(ctx context.Context) error
}

// ImportNotifier is told about every committed import.
type ImportNotifier interface {
	NotifyImported(ctx context.Context, ev ImportEvent) error
}

// ImportEvent describes a committed import.
type ImportEvent struct {
	EventID       uuid.UUID `json:"event_id"`
	CampaignID    uuid.UUID `json:"campaign_id"`
	InsertedCount int       `json:"inserted_count"`
	ImportedBy    string    `json:"imported_by,omitempty"`
	SourceIP      string    `json:"source_ip,omitempty"`
	ImportedAt    string    `json:"imported_at"`
}

type noopCache struct{}

func (noopCache) Load(context.Context, string, any) (bool, error) { return false, nil }
func (noopCache) Store(context.Context, string, any) error        { return nil }
func (noopCache) Invalidate(context.Context) error                { return nil }

type noopNotifier struct{}

func (noopNotifier) NotifyImported(context.Context, ImportEvent) error { return nil }

// MemoryViewCache is a process-local ViewCache, used when no Redis is
// configured and in tests.
type MemoryViewCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

// NewMemoryViewCache creates an empty cache.
func NewMemoryViewCache() *MemoryViewCache {
	return &MemoryViewCache{entries: make(map[string][]byte)}
}

func (c *MemoryViewCache) Load(_ context.Context, key string, dest any) (bool, error) {
	c.mu.Lock()
	data, ok := c.entries[key]
	c.mu.Unlock()
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(data, dest)
}

func (c *MemoryViewCache) Store(_ context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.entries[key] = data
	c.mu.Unlock()
	return nil
}

func (c *MemoryViewCache) Invalidate(context.Context) error {
	c.mu.Lock()
	clear(c.entries)
	c.mu.Unlock()
	return nil
}

// Len returns the number of cached entries.
func (c *MemoryViewCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
