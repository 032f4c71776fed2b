package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// LeadStatus is the sales pipeline stage of a lead.
type LeadStatus string

const (
	StatusNew           LeadStatus = "new"
	StatusLeftVMEmailed LeadStatus = "left_vm_emailed"
	StatusContacted     LeadStatus = "contacted"
	StatusMeetingSet    LeadStatus = "meeting_set"
	StatusNotInterested LeadStatus = "not_interested"
)

// LeadStatuses lists every status in pipeline order.
var LeadStatuses = []LeadStatus{
	StatusNew,
	StatusLeftVMEmailed,
	StatusContacted,
	StatusMeetingSet,
	StatusNotInterested,
}

// Valid reports whether s is a known status.
func (s LeadStatus) Valid() bool {
	for _, v := range LeadStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// ParseLeadStatus converts user input to a LeadStatus.
func ParseLeadStatus(s string) (LeadStatus, error) {
	st := LeadStatus(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return st, nil
}

// ContactMethod is how a lead was contacted in an activity.
type ContactMethod string

const (
	ContactCall  ContactMethod = "call"
	ContactEmail ContactMethod = "email"
	ContactText  ContactMethod = "text"
)

// ParseContactMethod converts user input to a ContactMethod.
func ParseContactMethod(s string) (ContactMethod, error) {
	switch m := ContactMethod(strings.ToLower(strings.TrimSpace(s))); m {
	case ContactCall, ContactEmail, ContactText:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidContactMethod, s)
	}
}

// LeadRecord is a lead ready for insertion.
type LeadRecord struct {
	CampaignID uuid.UUID `json:"campaign_id"`

	CompanyName               string `json:"company_name"`
	FirstName                 string `json:"first_name,omitempty"`
	LastName                  string `json:"last_name,omitempty"`
	EmailAddress              string `json:"email_address,omitempty"`
	DirectPhoneNumber         string `json:"direct_phone_number,omitempty"`
	MobilePhone               string `json:"mobile_phone,omitempty"`
	CompanyHQPhone            string `json:"company_hq_phone,omitempty"`
	JobTitle                  string `json:"job_title,omitempty"`
	JobFunction               string `json:"job_function,omitempty"`
	JobStartDate              string `json:"job_start_date,omitempty"`
	Website                   string `json:"website,omitempty"`
	CompanyStreetAddress      string `json:"company_street_address,omitempty"`
	CompanyCity               string `json:"company_city,omitempty"`
	CompanyState              string `json:"company_state,omitempty"`
	CompanyZipCode            string `json:"company_zip_code,omitempty"`
	Employees                 string `json:"employees,omitempty"`
	NumberOfLocations         string `json:"number_of_locations,omitempty"`
	AnnualRevenue             string `json:"annual_revenue,omitempty"`
	PrimaryIndustry           string `json:"primary_industry,omitempty"`
	PrimarySubIndustry        string `json:"primary_sub_industry,omitempty"`
	LinkedInContactProfileURL string `json:"linkedin_contact_profile_url,omitempty"`
	LinkedInCompanyProfileURL string `json:"linkedin_company_profile_url,omitempty"`
	FacebookCompanyProfileURL string `json:"facebook_company_profile_url,omitempty"`
	TwitterCompanyProfileURL  string `json:"twitter_company_profile_url,omitempty"`

	Status      LeadStatus        `json:"status"`
	ExtraFields map[string]string `json:"extra_fields,omitempty"`
}

// field returns a pointer to the struct field backing key.
func (r *LeadRecord) field(key FieldKey) *string {
	switch key {
	case FieldCompanyName:
		return &r.CompanyName
	case FieldFirstName:
		return &r.FirstName
	case FieldLastName:
		return &r.LastName
	case FieldEmailAddress:
		return &r.EmailAddress
	case FieldDirectPhoneNumber:
		return &r.DirectPhoneNumber
	case FieldMobilePhone:
		return &r.MobilePhone
	case FieldCompanyHQPhone:
		return &r.CompanyHQPhone
	case FieldJobTitle:
		return &r.JobTitle
	case FieldJobFunction:
		return &r.JobFunction
	case FieldJobStartDate:
		return &r.JobStartDate
	case FieldWebsite:
		return &r.Website
	case FieldCompanyStreetAddress:
		return &r.CompanyStreetAddress
	case FieldCompanyCity:
		return &r.CompanyCity
	case FieldCompanyState:
		return &r.CompanyState
	case FieldCompanyZipCode:
		return &r.CompanyZipCode
	case FieldEmployees:
		return &r.Employees
	case FieldNumberOfLocations:
		return &r.NumberOfLocations
	case FieldAnnualRevenue:
		return &r.AnnualRevenue
	case FieldPrimaryIndustry:
		return &r.PrimaryIndustry
	case FieldPrimarySubIndustry:
		return &r.PrimarySubIndustry
	case FieldLinkedInContactProfileURL:
		return &r.LinkedInContactProfileURL
	case FieldLinkedInCompanyProfileURL:
		return &r.LinkedInCompanyProfileURL
	case FieldFacebookCompanyProfileURL:
		return &r.FacebookCompanyProfileURL
	case FieldTwitterCompanyProfileURL:
		return &r.TwitterCompanyProfileURL
	}
	return nil
}

// SetField stores value under a catalog key. It reports false for keys
// outside the catalog.
func (r *LeadRecord) SetField(key FieldKey, value string) bool {
	p := r.field(key)
	if p == nil {
		return false
	}
	*p = value
	return true
}

// Value returns the value stored under a catalog key.
func (r LeadRecord) Value(key FieldKey) string {
	if p := r.field(key); p != nil {
		return *p
	}
	return ""
}

// Lead is a persisted lead.
type Lead struct {
	ID int64 `json:"id"`
	LeadRecord
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Campaign groups the leads of one or more imports.
type Campaign struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Activity is a logged contact attempt against a lead.
type Activity struct {
	ID            int64         `json:"id"`
	LeadID        int64         `json:"lead_id"`
	ContactMethod ContactMethod `json:"contact_method"`
	Notes         string        `json:"notes,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
}

// Sort columns accepted by LeadQuery.
const (
	SortCreatedAt   = "created_at"
	SortCompanyName = "company_name"
	SortFirstName   = "first_name"
	SortLastName    = "last_name"
	SortStatus      = "status"
)

var sortColumns = map[string]bool{
	SortCreatedAt:   true,
	SortCompanyName: true,
	SortFirstName:   true,
	SortLastName:    true,
	SortStatus:      true,
}

// LeadQuery filters and pages ListLeads.
type LeadQuery struct {
	Search     string     // Case-insensitive match on company, names and email
	Status     LeadStatus // Empty matches every status
	CampaignID *uuid.UUID
	Sort       string // One of the Sort* columns, default created_at
	Desc       bool
	Limit      int
	Offset     int
}

// Normalize fills defaults and clamps paging.
func (q LeadQuery) Normalize() LeadQuery {
	q.Search = strings.TrimSpace(q.Search)
	if !sortColumns[q.Sort] {
		q.Sort = SortCreatedAt
		q.Desc = true
	}
	if q.Limit <= 0 {
		q.Limit = DefaultPageSize
	}
	if q.Limit > MaxPageSize {
		q.Limit = MaxPageSize
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	return q
}

// Matches reports whether lead satisfies the query filters. Stores without a
// query language use it to filter in memory.
func (q LeadQuery) Matches(l Lead) bool {
	if q.Status != "" && l.Status != q.Status {
		return false
	}
	if q.CampaignID != nil && l.CampaignID != *q.CampaignID {
		return false
	}
	if q.Search == "" {
		return true
	}
	needle := strings.ToLower(q.Search)
	for _, v := range []string{l.CompanyName, l.FirstName, l.LastName, l.EmailAddress} {
		if strings.Contains(strings.ToLower(v), needle) {
			return true
		}
	}
	return false
}

// Paging defaults for ListLeads.
const (
	DefaultPageSize = 50
	MaxPageSize     = 500
)

// LeadPage is one page of ListLeads results.
type LeadPage struct {
	Leads []Lead `json:"leads"`
	Total int    `json:"total"`
}

// LeadStats counts leads per status.
type LeadStats struct {
	Total    int                `json:"total"`
	ByStatus map[LeadStatus]int `json:"by_status"`
}

// NewLeadStats returns stats with every status present at zero.
func NewLeadStats() LeadStats {
	s := LeadStats{ByStatus: make(map[LeadStatus]int, len(LeadStatuses))}
	for _, st := range LeadStatuses {
		s.ByStatus[st] = 0
	}
	return s
}

// Add counts one lead with status st.
func (s *LeadStats) Add(st LeadStatus, n int) {
	s.Total += n
	s.ByStatus[st] += n
}
