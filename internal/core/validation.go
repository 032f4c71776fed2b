package core

// validation.go checks that a field mapping can produce a usable lead.
//
// Three rules are evaluated in order and the first failure is returned:
//  1. A column is mapped to the company name
//  2. A column is mapped to the contact's first or last name
//  3. A column is mapped to at least one contact channel (email or a phone)
//
// Only one problem is reported at a time so the mapping step can walk the
// user through fixes one by one.

import "fmt"

// MappingRule identifies which mapping requirement failed.
type MappingRule string

const (
	RuleCompanyName   MappingRule = "company_name"
	RuleContactName   MappingRule = "contact_name"
	RuleContactMethod MappingRule = "contact_method"
)

// ValidationError reports an unmet mapping rule.
type ValidationError struct {
	Rule   MappingRule // Rule that failed
	Reason string      // Human-readable explanation
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid mapping: %s", e.Reason)
}

// contactChannels are the fields that satisfy RuleContactMethod.
var contactChannels = []FieldKey{
	FieldEmailAddress,
	FieldDirectPhoneNumber,
	FieldMobilePhone,
	FieldCompanyHQPhone,
}

type mappingCheck struct {
	rule   MappingRule
	keys   []FieldKey
	reason string
}

var mappingChecks = []mappingCheck{
	{
		rule:   RuleCompanyName,
		keys:   []FieldKey{FieldCompanyName},
		reason: "Company Name must be mapped",
	},
	{
		rule:   RuleContactName,
		keys:   []FieldKey{FieldFirstName, FieldLastName},
		reason: "At least First Name or Last Name must be mapped",
	},
	{
		rule:   RuleContactMethod,
		keys:   contactChannels,
		reason: "At least one contact method (email or phone) must be mapped",
	},
}

// ValidateMapping returns nil when m satisfies every rule, otherwise a
// *ValidationError for the first rule that fails.
func ValidateMapping(m FieldMapping) error {
	for _, c := range mappingChecks {
		if !m.HasAny(c.keys...) {
			return &ValidationError{Rule: c.rule, Reason: c.reason}
		}
	}
	return nil
}
