// Package core provides the business logic for lead ingestion and tracking.
//
// This package holds all domain logic independent of any UI or transport
// layer. It is used by the web handlers, the storage adapters under
// internal/storage, and tests without modification.
//
// # Architecture
//
// The import pipeline runs in five stages:
//
//  1. [TokenizeLine] splits one line into fields, honouring quoted spans that
//     contain the delimiter and doubled quotes.
//  2. [ParseTable] detects the delimiter from the header line, takes that
//     line as headers and turns the remaining lines into [RawRow] values.
//  3. [AutoMap] proposes a [FieldMapping] from headers to the fixed
//     [Catalog]; callers correct it with [FieldMapping.Set].
//  4. [ValidateMapping] checks the mapping can produce usable leads.
//  5. [Importer] resolves the campaign, materializes rows and persists them
//     with a single atomic [LeadWriter.InsertLeads] call.
//
// [Service] wraps the pipeline with an [ImportLimiter], import timeouts,
// view cache invalidation and import events, and exposes the lead, campaign
// and activity operations used after import. [ImportSession] models the
// multi-step upload wizard (upload, mapping, import) for interactive callers.
//
// # Storage
//
// [LeadStore] is implemented by the postgres, sqlite and memory packages.
// Every store performs InsertLeads in one transaction, so a failed import
// leaves no rows behind.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - IMP001-IMP005: Import errors (no rows, busy, no campaign, wizard step,
//     cancelled request)
//   - MAP001-MAP003: Mapping rule failures
//   - VAL001-VAL004: Invalid status, contact method, field or request
//   - DB000-DB007: Storage errors (constraints, connections, timeouts)
//   - FILE001-FILE004: Upload file errors (size, unreadable spreadsheet)
package core
