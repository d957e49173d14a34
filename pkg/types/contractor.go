package types

import (
	"time"
)

type ContractorStatus string

const (
	ContractorStatusActive   ContractorStatus = "ACTIVE"
	ContractorStatusInactive ContractorStatus = "INACTIVE"
)

type Contractor struct {
	ID                   string           `db:"id" json:"id"`
	ContractorNo         string           `db:"contractor_no" json:"contractorNo"`
	OldRegNo             *string          `db:"old_reg_no" json:"oldRegNo,omitempty"`
	CacRegNo             *string          `db:"cac_reg_no" json:"cacRegNo,omitempty"`
	CompanyName          string           `db:"company_name" json:"companyName"`
	Status               ContractorStatus `db:"status" json:"status"`
	RegistrationCategory *string          `db:"registration_category" json:"registrationCategory,omitempty"`
	MajorArea            *string          `db:"major_area" json:"majorArea,omitempty"`
	SubArea              *string          `db:"sub_area" json:"subArea,omitempty"`
	StateOfOrigin        *string          `db:"state_of_origin" json:"stateOfOrigin,omitempty"`
	Community            *string          `db:"community" json:"community,omitempty"`
	ContactPerson        *string          `db:"contact_person" json:"contactPerson,omitempty"`
	Phone                *string          `db:"phone" json:"phone,omitempty"`
	Email                *string          `db:"email" json:"email,omitempty"`
	Notes                *string          `db:"notes" json:"notes,omitempty"`
	SourceSheet          *string          `db:"source_sheet" json:"sourceSheet,omitempty"`
	CreatedAt            time.Time        `db:"created_at" json:"createdAt"`
	UpdatedAt            time.Time        `db:"updated_at" json:"updatedAt"`

	// Populated on individual fetches.
	Bids []*Bid `db:"-" json:"bids,omitempty"`
}

type CreateContractorInput struct {
	ContractorNo         string           `json:"contractorNo"` // generated when blank
	OldRegNo             *string          `json:"oldRegNo"`
	CacRegNo             *string          `json:"cacRegNo"`
	CompanyName          string           `json:"companyName"`
	Status               ContractorStatus `json:"status"` // defaults to ACTIVE
	RegistrationCategory *string          `json:"registrationCategory"`
	MajorArea            *string          `json:"majorArea"`
	SubArea              *string          `json:"subArea"`
	StateOfOrigin        *string          `json:"stateOfOrigin"`
	Community            *string          `json:"community"`
	ContactPerson        *string          `json:"contactPerson"`
	Phone                *string          `json:"phone"`
	Email                *string          `json:"email"`
	Notes                *string          `json:"notes"`
	SourceSheet          *string          `json:"sourceSheet"`
}

type UpdateContractorInput struct {
	ContractorNo         *string           `json:"contractorNo"` // existing number kept when absent or blank
	OldRegNo             *string           `json:"oldRegNo"`
	CacRegNo             *string           `json:"cacRegNo"`
	CompanyName          *string           `json:"companyName"`
	Status               *ContractorStatus `json:"status"`
	RegistrationCategory *string           `json:"registrationCategory"`
	MajorArea            *string           `json:"majorArea"`
	SubArea              *string           `json:"subArea"`
	StateOfOrigin        *string           `json:"stateOfOrigin"`
	Community            *string           `json:"community"`
	ContactPerson        *string           `json:"contactPerson"`
	Phone                *string           `json:"phone"`
	Email                *string           `json:"email"`
	Notes                *string           `json:"notes"`
}

type ContractorFilter struct {
	Search        string `form:"search"`
	Status        string `form:"status"`
	MajorArea     string `form:"majorArea"`
	StateOfOrigin string `form:"stateOfOrigin"`
}

// ContractorImportRow is one row of a bulk import file, already mapped from
// the source's column headers.
type ContractorImportRow struct {
	ContractorNo         string
	OldRegNo             string
	CacRegNo             string
	CompanyName          string
	Status               string
	RegistrationCategory string
	MajorArea            string
	SubArea              string
	StateOfOrigin        string
	Community            string
	ContactPerson        string
	Phone                string
	Email                string
	Notes                string
	SourceSheet          string
}

type ImportRowError struct {
	Row     int    `json:"row"` // 1-based position in the import file
	Message string `json:"message"`
}

type ImportReport struct {
	Total   int              `json:"total"`
	Created int              `json:"created"`
	Updated int              `json:"updated"`
	Skipped int              `json:"skipped"`
	Errors  []ImportRowError `json:"errors"`
}
