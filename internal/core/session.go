package core

// session.go models the import wizard as an explicit state machine.
//
// An ImportSession is a value. Every transition returns a new session and
// leaves the receiver untouched, so callers can keep the previous step for
// "back" navigation or store sessions between HTTP requests.
//
//	campaign --SelectCampaign/NewCampaign--> upload --Upload--> mapping
//	mapping --BeginImport--> importing --Complete--> done
//
// Back moves one stage toward campaign from upload, mapping and importing.

import (
	"strings"

	"github.com/google/uuid"
)

// Stage is a step of the import wizard.
type Stage string

const (
	StageCampaign  Stage = "campaign"
	StageUpload    Stage = "upload"
	StageMapping   Stage = "mapping"
	StageImporting Stage = "importing"
	StageDone      Stage = "done"
)

// ImportSession is the state of one import wizard.
type ImportSession struct {
	Stage    Stage
	Campaign CampaignTarget
	Table    ParsedTable
	Mapping  FieldMapping
	Result   ImportResult
}

// NewImportSession starts a wizard at the campaign step.
func NewImportSession() ImportSession {
	return ImportSession{Stage: StageCampaign}
}

func (s ImportSession) expect(stage Stage) error {
	if s.Stage != stage {
		return ErrInvalidTransition
	}
	return nil
}

// SelectCampaign targets an existing campaign.
func (s ImportSession) SelectCampaign(id uuid.UUID) (ImportSession, error) {
	if err := s.expect(StageCampaign); err != nil {
		return s, err
	}
	if id == uuid.Nil {
		return s, ErrCampaignRequired
	}
	s.Campaign = CampaignTarget{ID: id}
	s.Stage = StageUpload
	return s, nil
}

// NewCampaign targets a campaign that will be created on import.
func (s ImportSession) NewCampaign(name string) (ImportSession, error) {
	if err := s.expect(StageCampaign); err != nil {
		return s, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return s, ErrCampaignRequired
	}
	s.Campaign = CampaignTarget{NewName: name}
	s.Stage = StageUpload
	return s, nil
}

// Upload parses text and proposes a mapping. Text with no data rows keeps the
// session at the upload step and returns ErrNoRows.
func (s ImportSession) Upload(text string) (ImportSession, error) {
	if err := s.expect(StageUpload); err != nil {
		return s, err
	}
	table := ParseTable(text)
	if table.Empty() {
		return s, ErrNoRows
	}
	s.Table = table
	s.Mapping = AutoMap(table.Headers)
	s.Stage = StageMapping
	return s, nil
}

// SetMapping overrides the mapping of one header.
func (s ImportSession) SetMapping(header string, key FieldKey) (ImportSession, error) {
	if err := s.expect(StageMapping); err != nil {
		return s, err
	}
	m, err := s.Mapping.Set(header, key)
	if err != nil {
		return s, err
	}
	s.Mapping = m
	return s, nil
}

// Validate checks the current mapping without changing stage.
func (s ImportSession) Validate() error {
	return ValidateMapping(s.Mapping)
}

// BeginImport moves to the importing step when the mapping is valid. On a
// *ValidationError the session stays at the mapping step.
func (s ImportSession) BeginImport() (ImportSession, error) {
	if err := s.expect(StageMapping); err != nil {
		return s, err
	}
	if err := s.Validate(); err != nil {
		return s, err
	}
	s.Stage = StageImporting
	return s, nil
}

// Request returns the request to hand to Importer.Run.
func (s ImportSession) Request() ImportRequest {
	return ImportRequest{
		Campaign: s.Campaign,
		Rows:     s.Table.Rows,
		Mapping:  s.Mapping.Clone(),
	}
}

// Complete records a finished import.
func (s ImportSession) Complete(result ImportResult) (ImportSession, error) {
	if err := s.expect(StageImporting); err != nil {
		return s, err
	}
	s.Result = result
	s.Stage = StageDone
	return s, nil
}

// Back returns to the previous step. A failed import goes back from
// importing to mapping with the mapping intact.
func (s ImportSession) Back() (ImportSession, error) {
	switch s.Stage {
	case StageUpload:
		s.Campaign = CampaignTarget{}
		s.Stage = StageCampaign
	case StageMapping:
		s.Table = ParsedTable{}
		s.Mapping = nil
		s.Stage = StageUpload
	case StageImporting:
		s.Stage = StageMapping
	default:
		return s, ErrInvalidTransition
	}
	return s, nil
}
