package core

// importer.go persists a validated import.
//
// The importer performs exactly one InsertLeads call per import. Atomicity
// is the store's job: every store runs the bulk insert in one transaction, so
// a failed call leaves nothing behind and the importer reports no count.

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
)

// LeadWriter is the storage collaborator an import needs.
type LeadWriter interface {
	CreateCampaign(ctx context.Context, name string) (Campaign, error)
	InsertLeads(ctx context.Context, leads []LeadRecord) error
}

// ImportResult reports a successful import.
type ImportResult struct {
	InsertedCount int       `json:"inserted_count"`
	CampaignID    uuid.UUID `json:"campaign_id"`
}

// CampaignTarget selects where imported leads go. Exactly one of ID and
// NewName must be set.
type CampaignTarget struct {
	ID      uuid.UUID
	NewName string
}

// ImportRequest is everything Importer.Run needs.
type ImportRequest struct {
	Campaign CampaignTarget
	Rows     []RawRow
	Mapping  FieldMapping
}

// Importer turns rows into persisted leads.
type Importer struct {
	store          LeadWriter
	defaultCompany string
}

// NewImporter creates an importer writing to store. defaultCompany fills
// company_name on rows that have none.
func NewImporter(store LeadWriter, defaultCompany string) *Importer {
	if strings.TrimSpace(defaultCompany) == "" {
		defaultCompany = DefaultCompanyName
	}
	return &Importer{store: store, defaultCompany: defaultCompany}
}

// Execute materializes rows into campaignID and inserts them in one call.
// The returned count is the number of rows submitted.
func (imp *Importer) Execute(ctx context.Context, campaignID uuid.UUID, rows []RawRow, m FieldMapping) (ImportResult, error) {
	if len(rows) == 0 {
		return ImportResult{}, ErrNoRows
	}

	leads := MaterializeLeads(campaignID, rows, m, imp.defaultCompany)
	if err := imp.store.InsertLeads(ctx, leads); err != nil {
		return ImportResult{}, &StorageError{Op: "insert leads", Err: err}
	}

	return ImportResult{InsertedCount: len(leads), CampaignID: campaignID}, nil
}

// Run validates the mapping, resolves the campaign and executes the import.
// A new campaign is created before any row is materialized. A mapping that
// fails validation never reaches the store. When the insert fails after a
// new campaign was created, the returned *StorageError carries its id.
func (imp *Importer) Run(ctx context.Context, req ImportRequest) (ImportResult, error) {
	if err := ValidateMapping(req.Mapping); err != nil {
		return ImportResult{}, err
	}
	if len(req.Rows) == 0 {
		return ImportResult{}, ErrNoRows
	}

	campaignID, created, err := imp.resolveCampaign(ctx, req.Campaign)
	if err != nil {
		return ImportResult{}, err
	}

	result, err := imp.Execute(ctx, campaignID, req.Rows, req.Mapping)
	var se *StorageError
	if created && errors.As(err, &se) {
		se.CampaignID = campaignID
	}
	return result, err
}

// resolveCampaign returns the target campaign id and whether it was created.
func (imp *Importer) resolveCampaign(ctx context.Context, t CampaignTarget) (uuid.UUID, bool, error) {
	name := strings.TrimSpace(t.NewName)
	hasID := t.ID != uuid.Nil

	switch {
	case hasID && name == "":
		return t.ID, false, nil
	case !hasID && name != "":
		c, err := imp.store.CreateCampaign(ctx, name)
		if err != nil {
			return uuid.Nil, false, &StorageError{Op: "create campaign", Err: err}
		}
		return c.ID, true, nil
	default:
		return uuid.Nil, false, ErrCampaignRequired
	}
}
