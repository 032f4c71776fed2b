// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support
// reference. Users can quote the code to support staff for faster diagnosis.
//
// Typed errors from this package are resolved first with errors.Is/errors.As.
// Anything else falls through to the case-insensitive pattern table.
//
// # Import Errors (IMP001-IMP099)
//
//	IMP001 - No rows: The file has a header but no data rows
//	         Action: Upload a file with a header line and at least one data row
//	         Source: ErrNoRows
//
//	IMP002 - System busy: Too many imports in progress
//	         Action: Please wait a moment and try again
//	         Source: ErrTooManyImports
//
//	IMP003 - No campaign: Neither an existing nor a new campaign was chosen
//	         Action: Select a campaign or enter a name for a new one
//	         Source: ErrCampaignRequired
//
//	IMP004 - Invalid step: The import wizard step is out of order
//	         Action: Start the import again
//	         Source: ErrInvalidTransition
//
//	IMP005 - Cancelled: The client went away before the import finished
//	         Action: Please try again
//	         Source: context.Canceled
//
// # Mapping Errors (MAP001-MAP099)
//
//	MAP001 - Company name not mapped           (RuleCompanyName)
//	MAP002 - No first or last name mapped      (RuleContactName)
//	MAP003 - No email or phone column mapped   (RuleContactMethod)
//	         Action: Adjust the column mapping and try again
//
// # Database Errors (DB001-DB099)
//
//	DB001 - Duplicate key             Patterns: "duplicate key", "unique constraint"
//	DB003 - Foreign key               Patterns: "foreign key"
//	DB004 - Connection refused        Patterns: "connection refused", "no such host"
//	DB005 - Connection reset          Patterns: "connection reset", "broken pipe"
//	DB006 - Timeout                   Patterns: "timeout", "context deadline exceeded"
//	DB007 - Deadlock / locked         Patterns: "deadlock", "database is locked"
//	DB000 - Other storage failure     Source: *StorageError
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL001 - Invalid status           Source: ErrInvalidStatus
//	VAL002 - Invalid contact method   Source: ErrInvalidContactMethod
//	VAL003 - Unknown field            Source: ErrUnknownField
//	VAL004 - Malformed request        Patterns: "invalid request"
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large          Patterns: "file too large", "request body too large"
//	FILE002 - Unreadable spreadsheet  Patterns: "unreadable spreadsheet"
//	FILE004 - No file                 Patterns: "no file provided"
//
// # Other
//
//	NF001   - Not found               Source: ErrNotFound
//	RATE001 - Rate limited            Patterns: "rate limit"
//	ERR000  - Unknown error           Fallback when nothing matches
//
// # For Support Staff
//
// For ERR000 and DB000, check the application logs for the technical error
// logged next to the request id.

package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// sentinelMessages resolves this package's sentinel errors by identity.
var sentinelMessages = []struct {
	err error
	msg UserMessage
}{
	{ErrNoRows, UserMessage{
		Message: "No valid rows found",
		Action:  "Upload a file with a header line and at least one data row",
		Code:    "IMP001",
	}},
	{ErrTooManyImports, UserMessage{
		Message: "System is busy processing other imports",
		Action:  "Please wait a moment and try again",
		Code:    "IMP002",
	}},
	{ErrCampaignRequired, UserMessage{
		Message: "No campaign selected",
		Action:  "Select a campaign or enter a name for a new one",
		Code:    "IMP003",
	}},
	{ErrInvalidTransition, UserMessage{
		Message: "Import step is out of order",
		Action:  "Start the import again",
		Code:    "IMP004",
	}},
	{ErrNotFound, UserMessage{
		Message: "Record not found",
		Action:  "It may have been deleted. Refresh and try again",
		Code:    "NF001",
	}},
	{ErrInvalidStatus, UserMessage{
		Message: "Invalid lead status",
		Action:  "Use one of: new, left_vm_emailed, contacted, meeting_set, not_interested",
		Code:    "VAL001",
	}},
	{ErrInvalidContactMethod, UserMessage{
		Message: "Invalid contact method",
		Action:  "Use one of: call, email, text",
		Code:    "VAL002",
	}},
	{ErrUnknownField, UserMessage{
		Message: "Unknown lead field",
		Action:  "Pick a field from the catalog or leave the column unmapped",
		Code:    "VAL003",
	}},
	{context.Canceled, UserMessage{
		Message: "Request was cancelled",
		Action:  "Please try again",
		Code:    "IMP005",
	}},
}

var ruleCodes = map[MappingRule]string{
	RuleCompanyName:   "MAP001",
	RuleContactName:   "MAP002",
	RuleContactMethod: "MAP003",
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error text (case-insensitive) to user
// messages. The first match wins, so specific patterns come first.
var errorPatterns = []errorPattern{
	// =========================================================================
	// Database Constraint Errors (DB001-DB003)
	// =========================================================================
	{
		pattern: "duplicate key",
		msg: UserMessage{
			Message: "A record with this key already exists",
			Action:  "Refresh and try again",
			Code:    "DB001",
		},
	},
	{
		pattern: "unique constraint",
		msg: UserMessage{
			Message: "A record with this key already exists",
			Action:  "Refresh and try again",
			Code:    "DB001",
		},
	},
	{
		pattern: "foreign key",
		msg: UserMessage{
			Message: "The campaign for these leads does not exist",
			Action:  "Select an existing campaign or create a new one",
			Code:    "DB003",
		},
	},

	// =========================================================================
	// Database Connection Errors (DB004-DB007)
	// =========================================================================
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},
	{
		pattern: "no such host",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Nothing was saved. Please try again",
			Code:    "DB005",
		},
	},
	{
		pattern: "broken pipe",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Nothing was saved. Please try again",
			Code:    "DB005",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Nothing was saved. Try a smaller file or try again later",
			Code:    "DB006",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Nothing was saved. Try a smaller file or try again later",
			Code:    "DB006",
		},
	},
	{
		pattern: "deadlock",
		msg: UserMessage{
			Message: "Database was busy with conflicting operations",
			Action:  "Nothing was saved. Please try again",
			Code:    "DB007",
		},
	},
	{
		pattern: "database is locked",
		msg: UserMessage{
			Message: "Database was busy with conflicting operations",
			Action:  "Nothing was saved. Please try again",
			Code:    "DB007",
		},
	},

	// =========================================================================
	// Request and File Errors
	// =========================================================================
	{
		pattern: "invalid request",
		msg: UserMessage{
			Message: "The request could not be understood",
			Action:  "Check the submitted fields and try again",
			Code:    "VAL004",
		},
	},
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the maximum upload size",
			Action:  "Split the file into smaller files",
			Code:    "FILE001",
		},
	},
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "File exceeds the maximum upload size",
			Action:  "Split the file into smaller files",
			Code:    "FILE001",
		},
	},
	{
		pattern: "unreadable spreadsheet",
		msg: UserMessage{
			Message: "The spreadsheet could not be read",
			Action:  "Save it as .xlsx or export it as CSV",
			Code:    "FILE002",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select a CSV, TSV or XLSX file to import",
			Code:    "FILE004",
		},
	},

	// =========================================================================
	// Rate Limiting (RATE001)
	// =========================================================================
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// storageFallback is used for a *StorageError whose cause matches no pattern.
var storageFallback = UserMessage{
	Message: "The leads could not be saved",
	Action:  "Nothing was saved. Please try again",
	Code:    "DB000",
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
//
// Example:
//
//	err := ValidateMapping(FieldMapping{"Company": FieldCompanyName})
//	msg := MapError(err)
//	// msg.Code == "MAP002"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var ve *ValidationError
	if errors.As(err, &ve) {
		return UserMessage{
			Message: ve.Reason,
			Action:  "Adjust the column mapping and try again",
			Code:    ruleCodes[ve.Rule],
		}
	}

	for _, s := range sentinelMessages {
		if errors.Is(err, s.err) {
			return s.msg
		}
	}

	if msg, ok := matchPattern(err); ok {
		return msg
	}

	var se *StorageError
	if errors.As(err, &se) {
		return storageFallback
	}

	return defaultMessage
}

func matchPattern(err error) (UserMessage, bool) {
	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg, true
		}
	}
	return UserMessage{}, false
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-facing message.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
