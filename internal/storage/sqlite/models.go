package sqlite

import (
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/LeadTracker/internal/core"
)

type campaignRow struct {
	ID        string    `gorm:"primaryKey;type:text"`
	Name      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"autoCreateTime;index"`
}

func (campaignRow) TableName() string {
	return "campaigns"
}

type leadRow struct {
	ID         int64        `gorm:"primaryKey;autoIncrement"`
	CampaignID string       `gorm:"type:text;not null;index"`
	Campaign   *campaignRow `gorm:"foreignKey:CampaignID;constraint:OnDelete:CASCADE"`

	CompanyName               string `gorm:"column:company_name;not null"`
	FirstName                 string `gorm:"column:first_name"`
	LastName                  string `gorm:"column:last_name"`
	EmailAddress              string `gorm:"column:email_address"`
	DirectPhoneNumber         string `gorm:"column:direct_phone_number"`
	MobilePhone               string `gorm:"column:mobile_phone"`
	CompanyHQPhone            string `gorm:"column:company_hq_phone"`
	JobTitle                  string `gorm:"column:job_title"`
	JobFunction               string `gorm:"column:job_function"`
	JobStartDate              string `gorm:"column:job_start_date"`
	Website                   string `gorm:"column:website"`
	CompanyStreetAddress      string `gorm:"column:company_street_address"`
	CompanyCity               string `gorm:"column:company_city"`
	CompanyState              string `gorm:"column:company_state"`
	CompanyZipCode            string `gorm:"column:company_zip_code"`
	Employees                 string `gorm:"column:employees"`
	NumberOfLocations         string `gorm:"column:number_of_locations"`
	AnnualRevenue             string `gorm:"column:annual_revenue"`
	PrimaryIndustry           string `gorm:"column:primary_industry"`
	PrimarySubIndustry        string `gorm:"column:primary_sub_industry"`
	LinkedInContactProfileURL string `gorm:"column:linkedin_contact_profile_url"`
	LinkedInCompanyProfileURL string `gorm:"column:linkedin_company_profile_url"`
	FacebookCompanyProfileURL string `gorm:"column:facebook_company_profile_url"`
	TwitterCompanyProfileURL  string `gorm:"column:twitter_company_profile_url"`

	Status      string            `gorm:"type:varchar(20);not null;default:new;index"`
	ExtraFields map[string]string `gorm:"serializer:json"`
	CreatedAt   time.Time         `gorm:"autoCreateTime;index"`
	UpdatedAt   time.Time         `gorm:"autoUpdateTime"`
}

func (leadRow) TableName() string {
	return "leads"
}

type activityRow struct {
	ID            int64     `gorm:"primaryKey;autoIncrement"`
	LeadID        int64     `gorm:"not null;index"`
	Lead          *leadRow  `gorm:"foreignKey:LeadID;constraint:OnDelete:CASCADE"`
	ContactMethod string    `gorm:"type:varchar(10);not null"`
	Notes         string    `gorm:"type:text"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
}

func (activityRow) TableName() string {
	return "activities"
}

func toLeadRow(r core.LeadRecord) leadRow {
	status := r.Status
	if status == "" {
		status = core.StatusNew
	}
	return leadRow{
		CampaignID:                r.CampaignID.String(),
		CompanyName:               r.CompanyName,
		FirstName:                 r.FirstName,
		LastName:                  r.LastName,
		EmailAddress:              r.EmailAddress,
		DirectPhoneNumber:         r.DirectPhoneNumber,
		MobilePhone:               r.MobilePhone,
		CompanyHQPhone:            r.CompanyHQPhone,
		JobTitle:                  r.JobTitle,
		JobFunction:               r.JobFunction,
		JobStartDate:              r.JobStartDate,
		Website:                   r.Website,
		CompanyStreetAddress:      r.CompanyStreetAddress,
		CompanyCity:               r.CompanyCity,
		CompanyState:              r.CompanyState,
		CompanyZipCode:            r.CompanyZipCode,
		Employees:                 r.Employees,
		NumberOfLocations:         r.NumberOfLocations,
		AnnualRevenue:             r.AnnualRevenue,
		PrimaryIndustry:           r.PrimaryIndustry,
		PrimarySubIndustry:        r.PrimarySubIndustry,
		LinkedInContactProfileURL: r.LinkedInContactProfileURL,
		LinkedInCompanyProfileURL: r.LinkedInCompanyProfileURL,
		FacebookCompanyProfileURL: r.FacebookCompanyProfileURL,
		TwitterCompanyProfileURL:  r.TwitterCompanyProfileURL,
		Status:                    string(status),
		ExtraFields:               r.ExtraFields,
	}
}

func (row leadRow) toLead() core.Lead {
	campaignID, _ := uuid.Parse(row.CampaignID)
	extra := row.ExtraFields
	if len(extra) == 0 {
		extra = nil
	}
	return core.Lead{
		ID: row.ID,
		LeadRecord: core.LeadRecord{
			CampaignID:                campaignID,
			CompanyName:               row.CompanyName,
			FirstName:                 row.FirstName,
			LastName:                  row.LastName,
			EmailAddress:              row.EmailAddress,
			DirectPhoneNumber:         row.DirectPhoneNumber,
			MobilePhone:               row.MobilePhone,
			CompanyHQPhone:            row.CompanyHQPhone,
			JobTitle:                  row.JobTitle,
			JobFunction:               row.JobFunction,
			JobStartDate:              row.JobStartDate,
			Website:                   row.Website,
			CompanyStreetAddress:      row.CompanyStreetAddress,
			CompanyCity:               row.CompanyCity,
			CompanyState:              row.CompanyState,
			CompanyZipCode:            row.CompanyZipCode,
			Employees:                 row.Employees,
			NumberOfLocations:         row.NumberOfLocations,
			AnnualRevenue:             row.AnnualRevenue,
			PrimaryIndustry:           row.PrimaryIndustry,
			PrimarySubIndustry:        row.PrimarySubIndustry,
			LinkedInContactProfileURL: row.LinkedInContactProfileURL,
			LinkedInCompanyProfileURL: row.LinkedInCompanyProfileURL,
			FacebookCompanyProfileURL: row.FacebookCompanyProfileURL,
			TwitterCompanyProfileURL:  row.TwitterCompanyProfileURL,
			Status:                    core.LeadStatus(row.Status),
			ExtraFields:               extra,
		},
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

func (row campaignRow) toCampaign() core.Campaign {
	id, _ := uuid.Parse(row.ID)
	return core.Campaign{ID: id, Name: row.Name, CreatedAt: row.CreatedAt}
}

func (row activityRow) toActivity() core.Activity {
	return core.Activity{
		ID:            row.ID,
		LeadID:        row.LeadID,
		ContactMethod: core.ContactMethod(row.ContactMethod),
		Notes:         row.Notes,
		CreatedAt:     row.CreatedAt,
	}
}
