package core

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrNoRows is returned when an import has no data rows to insert.
	ErrNoRows = errors.New("no valid rows found")

	// ErrUnknownField is returned when a mapping targets a key outside the catalog.
	ErrUnknownField = errors.New("unknown lead field")

	// ErrCampaignRequired is returned when an import names neither an existing
	// campaign nor a new one.
	ErrCampaignRequired = errors.New("campaign required: select a campaign or name a new one")

	// ErrNotFound is returned by stores when a lead or campaign does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidStatus is returned for a status outside the lead status enum.
	ErrInvalidStatus = errors.New("invalid lead status")

	// ErrInvalidContactMethod is returned for an activity contact method outside call/email/text.
	ErrInvalidContactMethod = errors.New("invalid contact method")

	// ErrInvalidTransition is returned when an import session step is not
	// allowed from the current stage.
	ErrInvalidTransition = errors.New("invalid import step")
)

// StorageError wraps a failure of the storage collaborator during an import.
// No lead from the attempt was committed. A campaign requested by name may
// already exist: CampaignID is set when the import created it before the
// insert failed, and a retry must target it instead of naming a new one.
type StorageError struct {
	Op         string // "create campaign" or "insert leads"
	Err        error
	CampaignID uuid.UUID
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the failed submission may be resent. Resend it
// with RetryTarget so no second campaign is created.
func (e *StorageError) Retryable() bool {
	return true
}

// RetryTarget returns the campaign a retry of an import aimed at t must use.
func (e *StorageError) RetryTarget(t CampaignTarget) CampaignTarget {
	if e.CampaignID != uuid.Nil {
		return CampaignTarget{ID: e.CampaignID}
	}
	return t
}
