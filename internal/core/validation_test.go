package core

import (
	"errors"
	"testing"
)

func TestValidateMapping(t *testing.T) {
	tests := []struct {
		name     string
		mapping  FieldMapping
		wantRule MappingRule
	}{
		{
			name:     "empty mapping fails company rule",
			mapping:  FieldMapping{},
			wantRule: RuleCompanyName,
		},
		{
			name:     "company only fails name rule before contact rule",
			mapping:  FieldMapping{"A": FieldCompanyName},
			wantRule: RuleContactName,
		},
		{
			name:     "company and name fails contact rule",
			mapping:  FieldMapping{"A": FieldCompanyName, "B": FieldLastName},
			wantRule: RuleContactMethod,
		},
		{
			name:     "contact without company still fails company rule",
			mapping:  FieldMapping{"B": FieldFirstName, "C": FieldEmailAddress},
			wantRule: RuleCompanyName,
		},
		{
			name:    "last name and hq phone is enough",
			mapping: FieldMapping{"A": FieldCompanyName, "B": FieldLastName, "C": FieldCompanyHQPhone},
		},
		{
			name:    "first name and mobile is enough",
			mapping: FieldMapping{"A": FieldCompanyName, "B": FieldFirstName, "C": FieldMobilePhone},
		},
		{
			name:    "direct phone counts",
			mapping: FieldMapping{"A": FieldCompanyName, "B": FieldFirstName, "C": FieldDirectPhoneNumber},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMapping(tt.mapping)
			if tt.wantRule == "" {
				if err != nil {
					t.Errorf("ValidateMapping() = %v, want nil", err)
				}
				return
			}

			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("ValidateMapping() = %v, want *ValidationError", err)
			}
			if ve.Rule != tt.wantRule {
				t.Errorf("Rule = %q, want %q", ve.Rule, tt.wantRule)
			}
			if ve.Reason == "" {
				t.Error("Reason is empty")
			}
		})
	}
}
