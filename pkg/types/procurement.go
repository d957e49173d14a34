package types

import (
	"time"
)

type ProcurementStatus string

const (
	ProcurementStatusDraft     ProcurementStatus = "draft"
	ProcurementStatusPublished ProcurementStatus = "published"
	ProcurementStatusClosed    ProcurementStatus = "closed"
	ProcurementStatusAwarded   ProcurementStatus = "awarded"
	ProcurementStatusArchived  ProcurementStatus = "archived"
)

// Valid reports whether s is one of the known procurement statuses.
func (s ProcurementStatus) Valid() bool {
	switch s {
	case ProcurementStatusDraft, ProcurementStatusPublished, ProcurementStatusClosed,
		ProcurementStatusAwarded, ProcurementStatusArchived:
		return true
	}
	return false
}

// Rank orders statuses along the lifecycle so the catalog can reject
// backwards transitions. closed and awarded share a rank; archived is
// terminal.
func (s ProcurementStatus) Rank() int {
	switch s {
	case ProcurementStatusDraft:
		return 0
	case ProcurementStatusPublished:
		return 1
	case ProcurementStatusClosed, ProcurementStatusAwarded:
		return 2
	case ProcurementStatusArchived:
		return 3
	}
	return -1
}

type Procurement struct {
	ID                    string            `db:"id" json:"id"`
	ReferenceNo           string            `db:"reference_no" json:"referenceNo"`
	Title                 string            `db:"title" json:"title"`
	Category              string            `db:"category" json:"category"`
	Type                  string            `db:"type" json:"type"`
	Location              string            `db:"location" json:"location"`
	Description           string            `db:"description" json:"description"`
	EligibilityCriteria   *string           `db:"eligibility_criteria" json:"eligibilityCriteria,omitempty"`
	SubmissionDeadline    time.Time         `db:"submission_deadline" json:"submissionDeadline"`
	PublishDate           time.Time         `db:"publish_date" json:"publishDate"`
	BudgetEstimate        *float64          `db:"budget_estimate" json:"budgetEstimate,omitempty"`
	PreBidMeetingDate     *time.Time        `db:"pre_bid_meeting_date" json:"preBidMeetingDate,omitempty"`
	PreBidMeetingLocation *string           `db:"pre_bid_meeting_location" json:"preBidMeetingLocation,omitempty"`
	PreBidNotes           *string           `db:"pre_bid_notes" json:"preBidNotes,omitempty"`
	Tags                  []string          `db:"tags" json:"tags"`
	ContactEmail          *string           `db:"contact_email" json:"contactEmail,omitempty"`
	ContactPhone          *string           `db:"contact_phone" json:"contactPhone,omitempty"`
	CreatedBy             string            `db:"created_by" json:"createdBy"`
	Status                ProcurementStatus `db:"status" json:"status"`
	CreatedAt             time.Time         `db:"created_at" json:"createdAt"`
	UpdatedAt             time.Time         `db:"updated_at" json:"updatedAt"`

	// Populated by the catalog on reads, never persisted directly.
	BidCount  int64                  `db:"-" json:"bidCount"`
	Documents []*ProcurementDocument `db:"-" json:"documents,omitempty"`
	Bids      []*Bid                 `db:"-" json:"bids,omitempty"`
}

type ProcurementDocument struct {
	ID            string    `db:"id" json:"id"`
	ProcurementID string    `db:"procurement_id" json:"procurementId"`
	Name          string    `db:"name" json:"name"`
	URL           string    `db:"url" json:"url"`
	MimeType      *string   `db:"mime_type" json:"mimeType,omitempty"`
	Size          *int64    `db:"size" json:"size,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
}

type CreateProcurementInput struct {
	Title                 string            `json:"title"`
	ReferenceNo           string            `json:"referenceNo"` // generated when blank
	Category              string            `json:"category"`
	Type                  string            `json:"type"`
	Location              string            `json:"location"`
	Description           string            `json:"description"`
	EligibilityCriteria   *string           `json:"eligibilityCriteria"`
	SubmissionDeadline    time.Time         `json:"submissionDeadline"`
	PublishDate           *time.Time        `json:"publishDate"` // defaults to now
	BudgetEstimate        *float64          `json:"budgetEstimate"`
	PreBidMeetingDate     *time.Time        `json:"preBidMeetingDate"`
	PreBidMeetingLocation *string           `json:"preBidMeetingLocation"`
	PreBidNotes           *string           `json:"preBidNotes"`
	Tags                  []string          `json:"tags"`
	ContactEmail          *string           `json:"contactEmail"`
	ContactPhone          *string           `json:"contactPhone"`
	CreatedBy             string            `json:"createdBy"`
	Status                ProcurementStatus `json:"status"` // defaults to draft
}

type UpdateProcurementInput struct {
	Title                 *string            `json:"title"`
	Category              *string            `json:"category"`
	Type                  *string            `json:"type"`
	Location              *string            `json:"location"`
	Description           *string            `json:"description"`
	EligibilityCriteria   *string            `json:"eligibilityCriteria"`
	SubmissionDeadline    *time.Time         `json:"submissionDeadline"`
	PublishDate           *time.Time         `json:"publishDate"`
	BudgetEstimate        *float64           `json:"budgetEstimate"`
	PreBidMeetingDate     *time.Time         `json:"preBidMeetingDate"`
	PreBidMeetingLocation *string            `json:"preBidMeetingLocation"`
	PreBidNotes           *string            `json:"preBidNotes"`
	Tags                  []string           `json:"tags"`
	ContactEmail          *string            `json:"contactEmail"`
	ContactPhone          *string            `json:"contactPhone"`
	Status                *ProcurementStatus `json:"status"`
}

type ProcurementFilter struct {
	Search       string     `form:"search"`
	Status       string     `form:"status"`
	Location     string     `form:"location"`
	Category     string     `form:"category"`
	Type         string     `form:"type"`
	CreatedBy    string     `form:"createdBy"`
	DeadlineFrom *time.Time `form:"deadlineFrom"`
	DeadlineTo   *time.Time `form:"deadlineTo"`
}

type AddDocumentInput struct {
	Name     string  `json:"name"`
	URL      string  `json:"url"`
	MimeType *string `json:"mimeType"`
	Size     *int64  `json:"size"`
}
