package core

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/LeadTracker/internal/logging"
)

// ServiceConfig tunes import behaviour.
type ServiceConfig struct {
	DefaultCompanyName   string
	MaxConcurrentImports int
	MaxWaitTime          time.Duration
	ImportTimeout        time.Duration
	PreviewSampleSize    int
}

// Defaults applied by NewService for zero config fields.
const (
	DefaultImportTimeout     = 2 * time.Minute
	DefaultPreviewSampleSize = 5
)

// Service is the entry point for HTTP and CLI callers. It wraps the import
// pipeline with concurrency limits, timeouts, cache invalidation and import
// events, and exposes the lead, campaign and activity operations.
type Service struct {
	store    LeadStore
	importer *Importer
	limiter  *ImportLimiter
	cache    ViewCache
	notifier ImportNotifier
	cfg      ServiceConfig
	now      func() time.Time
}

// Option configures optional collaborators.
type Option func(*Service)

// WithViewCache sets the cache invalidated after every write.
func WithViewCache(c ViewCache) Option {
	return func(s *Service) {
		if c != nil {
			s.cache = c
		}
	}
}

// WithNotifier sets the receiver of import events.
func WithNotifier(n ImportNotifier) Option {
	return func(s *Service) {
		if n != nil {
			s.notifier = n
		}
	}
}

// NewService creates a Service over store.
func NewService(store LeadStore, cfg ServiceConfig, opts ...Option) *Service {
	if cfg.DefaultCompanyName == "" {
		cfg.DefaultCompanyName = DefaultCompanyName
	}
	if cfg.ImportTimeout <= 0 {
		cfg.ImportTimeout = DefaultImportTimeout
	}
	if cfg.PreviewSampleSize <= 0 {
		cfg.PreviewSampleSize = DefaultPreviewSampleSize
	}

	s := &Service{
		store:    store,
		importer: NewImporter(store, cfg.DefaultCompanyName),
		limiter:  NewImportLimiter(cfg.MaxConcurrentImports, cfg.MaxWaitTime),
		cache:    noopCache{},
		notifier: noopNotifier{},
		cfg:      cfg,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Catalog returns the mappable lead fields.
func (s *Service) Catalog() []CatalogEntry {
	return Catalog()
}

// ImportPreview is what the mapping step shows before an import.
type ImportPreview struct {
	Headers    []string     `json:"headers"`
	Delimiter  string       `json:"delimiter"`
	Mapping    FieldMapping `json:"mapping"`
	Validation *UserMessage `json:"validation,omitempty"`
	SampleRows []RawRow     `json:"sample_rows"`
	RowCount   int          `json:"row_count"`
}

// PreviewImport parses text and proposes a mapping without touching storage.
// A nil mapping requests the automatic one; otherwise the given mapping is
// validated as-is.
func (s *Service) PreviewImport(text string, mapping FieldMapping) (ImportPreview, error) {
	table := ParseTable(text)
	if table.Empty() {
		return ImportPreview{}, ErrNoRows
	}
	if mapping == nil {
		mapping = AutoMap(table.Headers)
	}

	preview := ImportPreview{
		Headers:   table.Headers,
		Delimiter: delimiterName(table.Delimiter),
		Mapping:   mapping,
		RowCount:  len(table.Rows),
	}
	if err := ValidateMapping(mapping); err != nil {
		msg := MapError(err)
		preview.Validation = &msg
	}

	n := min(s.cfg.PreviewSampleSize, len(table.Rows))
	preview.SampleRows = table.Rows[:n]

	return preview, nil
}

func delimiterName(d rune) string {
	if d == DelimiterTab {
		return "tab"
	}
	return "comma"
}

// ImportText is the input of Service.Import.
type ImportText struct {
	Campaign CampaignTarget
	Text     string
	// Mapping overrides the automatic mapping when non-nil.
	Mapping FieldMapping
}

// Import parses text and runs a full import.
func (s *Service) Import(ctx context.Context, in ImportText) (ImportResult, error) {
	table := ParseTable(in.Text)
	if table.Empty() {
		recordImport(OutcomeEmpty, 0, 0)
		return ImportResult{}, ErrNoRows
	}
	mapping := in.Mapping
	if mapping == nil {
		mapping = AutoMap(table.Headers)
	}
	return s.RunImport(ctx, ImportRequest{
		Campaign: in.Campaign,
		Rows:     table.Rows,
		Mapping:  mapping,
	})
}

// RunImport executes a prepared request, for example one built by
// ImportSession.Request.
func (s *Service) RunImport(ctx context.Context, req ImportRequest) (ImportResult, error) {
	start := time.Now()
	logger := logging.WithFields(ctx, append([]any{
		"campaign_id", req.Campaign.ID,
		"new_campaign", req.Campaign.NewName,
		"rows", len(req.Rows),
	}, clientFields(ctx)...)...)

	if err := s.limiter.Acquire(ctx); err != nil {
		recordImport(importOutcome(err), 0, 0)
		logger.Warn("import rejected", "error", err)
		return ImportResult{}, err
	}
	defer s.limiter.Release()

	ctx, cancel := context.WithTimeout(ctx, s.cfg.ImportTimeout)
	defer cancel()

	logger.Info("import started")

	result, err := s.importer.Run(ctx, req)
	elapsed := time.Since(start)
	recordImport(importOutcome(err), result.InsertedCount, elapsed.Seconds())

	if err != nil {
		level := slog.LevelWarn
		var se *StorageError
		if errors.As(err, &se) {
			level = slog.LevelError
		}
		logger.Log(ctx, level, "import failed",
			"error", err,
			"duration_ms", elapsed.Milliseconds(),
		)
		if se != nil && se.CampaignID != uuid.Nil {
			logger.Warn("campaign created without leads", "created_campaign_id", se.CampaignID)
			s.invalidate(ctx)
		}
		return ImportResult{}, err
	}

	logger.Info("import completed",
		"campaign_id", result.CampaignID,
		"inserted", result.InsertedCount,
		"duration_ms", elapsed.Milliseconds(),
	)

	s.invalidate(ctx)
	s.notify(ctx, result)

	return result, nil
}

func importOutcome(err error) string {
	var ve *ValidationError
	var se *StorageError
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.As(err, &ve):
		return OutcomeInvalid
	case errors.Is(err, ErrNoRows):
		return OutcomeEmpty
	case errors.Is(err, ErrTooManyImports):
		return OutcomeBusy
	case errors.As(err, &se):
		return OutcomeStorage
	default:
		return OutcomeOtherError
	}
}

// invalidate drops cached views. Failures are logged only; the write has
// already committed.
func (s *Service) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		logging.FromContext(ctx).Warn("view cache invalidation failed", "error", err)
	}
}

func (s *Service) notify(ctx context.Context, result ImportResult) {
	ev := ImportEvent{
		EventID:       uuid.New(),
		CampaignID:    result.CampaignID,
		InsertedCount: result.InsertedCount,
		ImportedBy:    GetUserFromContext(ctx),
		SourceIP:      GetIPAddressFromContext(ctx),
		ImportedAt:    s.now().UTC().Format(time.RFC3339),
	}
	if err := s.notifier.NotifyImported(ctx, ev); err != nil {
		logging.FromContext(ctx).Warn("import event not published",
			"campaign_id", result.CampaignID,
			"error", err,
		)
	}
}

// LimiterStatus reports import slot usage.
func (s *Service) LimiterStatus() LimiterStatus {
	return s.limiter.Status()
}

// WaitForImports blocks until in-flight imports finish or ctx ends.
func (s *Service) WaitForImports(ctx context.Context) error {
	return s.limiter.Drain(ctx)
}

// Ping checks storage connectivity.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}
