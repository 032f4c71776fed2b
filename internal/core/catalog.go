package core

// catalog.go defines the fixed set of lead attributes an imported column can
// be mapped onto.
//
// Catalog order is significant: AutoMap walks the entries in declaration order
// and the first matching entry wins, so more specific labels must come before
// labels that would also match by substring.

// FieldKey identifies a known lead attribute.
type FieldKey string

const (
	FieldCompanyName               FieldKey = "company_name"
	FieldFirstName                 FieldKey = "first_name"
	FieldLastName                  FieldKey = "last_name"
	FieldEmailAddress              FieldKey = "email_address"
	FieldDirectPhoneNumber         FieldKey = "direct_phone_number"
	FieldMobilePhone               FieldKey = "mobile_phone"
	FieldCompanyHQPhone            FieldKey = "company_hq_phone"
	FieldJobTitle                  FieldKey = "job_title"
	FieldJobFunction               FieldKey = "job_function"
	FieldJobStartDate              FieldKey = "job_start_date"
	FieldWebsite                   FieldKey = "website"
	FieldCompanyStreetAddress      FieldKey = "company_street_address"
	FieldCompanyCity               FieldKey = "company_city"
	FieldCompanyState              FieldKey = "company_state"
	FieldCompanyZipCode            FieldKey = "company_zip_code"
	FieldEmployees                 FieldKey = "employees"
	FieldNumberOfLocations         FieldKey = "number_of_locations"
	FieldAnnualRevenue             FieldKey = "annual_revenue"
	FieldPrimaryIndustry           FieldKey = "primary_industry"
	FieldPrimarySubIndustry        FieldKey = "primary_sub_industry"
	FieldLinkedInContactProfileURL FieldKey = "linkedin_contact_profile_url"
	FieldLinkedInCompanyProfileURL FieldKey = "linkedin_company_profile_url"
	FieldFacebookCompanyProfileURL FieldKey = "facebook_company_profile_url"
	FieldTwitterCompanyProfileURL  FieldKey = "twitter_company_profile_url"
)

// CatalogEntry describes one mappable attribute.
type CatalogEntry struct {
	Key      FieldKey `json:"key"`
	Label    string   `json:"label"`
	Required bool     `json:"required"`
}

// catalog is the authoritative field list. Required is metadata for the
// mapping UI; enforcement is done by ValidateMapping.
var catalog = []CatalogEntry{
	{Key: FieldCompanyName, Label: "Company Name", Required: true},
	{Key: FieldFirstName, Label: "First Name", Required: true},
	{Key: FieldLastName, Label: "Last Name"},
	{Key: FieldEmailAddress, Label: "Email Address"},
	{Key: FieldDirectPhoneNumber, Label: "Direct Phone Number"},
	{Key: FieldMobilePhone, Label: "Mobile Phone"},
	{Key: FieldCompanyHQPhone, Label: "Company HQ Phone"},
	{Key: FieldJobTitle, Label: "Job Title"},
	{Key: FieldJobFunction, Label: "Job Function"},
	{Key: FieldJobStartDate, Label: "Job Start Date"},
	{Key: FieldWebsite, Label: "Website"},
	{Key: FieldCompanyStreetAddress, Label: "Company Street Address"},
	{Key: FieldCompanyCity, Label: "Company City"},
	{Key: FieldCompanyState, Label: "Company State"},
	{Key: FieldCompanyZipCode, Label: "Company Zip Code"},
	{Key: FieldEmployees, Label: "Employees"},
	{Key: FieldNumberOfLocations, Label: "Number of Locations"},
	{Key: FieldAnnualRevenue, Label: "Annual Revenue"},
	{Key: FieldPrimaryIndustry, Label: "Primary Industry"},
	{Key: FieldPrimarySubIndustry, Label: "Primary Sub-Industry"},
	{Key: FieldLinkedInContactProfileURL, Label: "LinkedIn Contact Profile URL"},
	{Key: FieldLinkedInCompanyProfileURL, Label: "LinkedIn Company Profile URL"},
	{Key: FieldFacebookCompanyProfileURL, Label: "Facebook Company Profile URL"},
	{Key: FieldTwitterCompanyProfileURL, Label: "Twitter Company Profile URL"},
}

var catalogIndex = func() map[FieldKey]CatalogEntry {
	idx := make(map[FieldKey]CatalogEntry, len(catalog))
	for _, e := range catalog {
		idx[e.Key] = e
	}
	return idx
}()

// Catalog returns a copy of the field catalog in declaration order.
func Catalog() []CatalogEntry {
	out := make([]CatalogEntry, len(catalog))
	copy(out, catalog)
	return out
}

// LookupField returns the catalog entry for key.
func LookupField(key FieldKey) (CatalogEntry, bool) {
	e, ok := catalogIndex[key]
	return e, ok
}

// FieldKeys returns every catalog key in declaration order.
func FieldKeys() []FieldKey {
	keys := make([]FieldKey, len(catalog))
	for i, e := range catalog {
		keys[i] = e.Key
	}
	return keys
}
