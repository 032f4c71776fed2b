package core

import "github.com/google/uuid"

// DefaultCompanyName is used when a row has no company name.
const DefaultCompanyName = "Unknown Company"

// MaterializeLead converts one row into a lead record.
//
// Mapped columns fill known fields in column order, so when two columns map
// to the same key the later one wins. Unmapped non-empty columns go to
// ExtraFields under their original name; unmapped empty columns are dropped.
// Status is always StatusNew.
func MaterializeLead(campaignID uuid.UUID, row RawRow, m FieldMapping, defaultCompany string) LeadRecord {
	rec := LeadRecord{CampaignID: campaignID, Status: StatusNew}

	var extra map[string]string
	for _, col := range row.columns {
		value := row.values[col]
		if key, ok := m[col]; ok && rec.SetField(key, value) {
			continue
		}
		if value == "" {
			continue
		}
		if extra == nil {
			extra = make(map[string]string)
		}
		extra[col] = value
	}
	rec.ExtraFields = extra

	if rec.CompanyName == "" {
		if defaultCompany == "" {
			defaultCompany = DefaultCompanyName
		}
		rec.CompanyName = defaultCompany
	}

	return rec
}

// MaterializeLeads converts every row, sharing one campaign id.
func MaterializeLeads(campaignID uuid.UUID, rows []RawRow, m FieldMapping, defaultCompany string) []LeadRecord {
	out := make([]LeadRecord, len(rows))
	for i, row := range rows {
		out[i] = MaterializeLead(campaignID, row, m, defaultCompany)
	}
	return out
}
