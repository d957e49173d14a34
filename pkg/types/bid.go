package types

import (
	"time"
)

type BidStatus string

const (
	BidStatusSubmitted   BidStatus = "submitted"
	BidStatusUnderReview BidStatus = "under_review"
	BidStatusAccepted    BidStatus = "accepted"
	BidStatusRejected    BidStatus = "rejected"
	BidStatusWithdrawn   BidStatus = "withdrawn"
	BidStatusAwarded     BidStatus = "awarded"
)

func (s BidStatus) Valid() bool {
	switch s {
	case BidStatusSubmitted, BidStatusUnderReview, BidStatusAccepted,
		BidStatusRejected, BidStatusWithdrawn, BidStatusAwarded:
		return true
	}
	return false
}

type Bid struct {
	ID            string    `db:"id" json:"id"`
	ProcurementID string    `db:"procurement_id" json:"procurementId"`
	ContractorID  string    `db:"contractor_id" json:"contractorId"`
	ContractorNo  string    `db:"contractor_no" json:"contractorNo"`
	ContactName   string    `db:"contact_name" json:"contactName"`
	ContactEmail  string    `db:"contact_email" json:"contactEmail"`
	ContactPhone  string    `db:"contact_phone" json:"contactPhone"`
	Amount        *float64  `db:"amount" json:"amount,omitempty"`
	ProposalURL   *string   `db:"proposal_url" json:"proposalUrl,omitempty"`
	OtherFiles    []string  `db:"other_files" json:"otherFiles"`
	Notes         *string   `db:"notes" json:"notes,omitempty"`
	Status        BidStatus `db:"status" json:"status"`
	SubmittedAt   time.Time `db:"submitted_at" json:"submittedAt"`
	UpdatedAt     time.Time `db:"updated_at" json:"updatedAt"`

	// Populated by the engine on reads.
	Contractor  *Contractor  `db:"-" json:"contractor,omitempty"`
	Procurement *Procurement `db:"-" json:"procurement,omitempty"`
	Events      []*BidEvent  `db:"-" json:"events,omitempty"`
}

// BidEvent is an append-only audit record. Events are only ever inserted,
// in the same transaction as the mutation they describe.
type BidEvent struct {
	ID        string    `db:"id" json:"id"`
	BidID     string    `db:"bid_id" json:"bidId"`
	Action    string    `db:"action" json:"action"`
	ActorID   *string   `db:"actor_id" json:"actorId,omitempty"`
	ActorRole *string   `db:"actor_role" json:"actorRole,omitempty"`
	Metadata  *string   `db:"metadata" json:"metadata,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

type CreateBidInput struct {
	ContractorNo string   `json:"contractorNo" form:"contractorNo"`
	ContactName  string   `json:"contactName" form:"contactName"`
	ContactEmail string   `json:"contactEmail" form:"contactEmail"`
	ContactPhone string   `json:"contactPhone" form:"contactPhone"`
	Amount       *float64 `json:"amount" form:"amount"`
	ProposalURL  *string  `json:"proposalUrl" form:"-"`
	OtherFiles   []string `json:"otherFiles" form:"-"`
	Notes        *string  `json:"notes" form:"notes"`
}

type UpdateBidInput struct {
	ContactName  *string  `json:"contactName"`
	ContactEmail *string  `json:"contactEmail"`
	ContactPhone *string  `json:"contactPhone"`
	Amount       *float64 `json:"amount"`
	ProposalURL  *string  `json:"proposalUrl"`
	OtherFiles   []string `json:"otherFiles"`
	Notes        *string  `json:"notes"`
}

type BidFilter struct {
	Search       string `form:"search"`
	Status       string `form:"status"`
	ContractorNo string `form:"contractorNo"`
}

type ChangeBidStatusInput struct {
	Status   BidStatus `json:"status"`
	Metadata *string   `json:"metadata"`
}

// Actor identifies who performed an admin-initiated action. It comes from
// the identity collaborator and is recorded verbatim on audit events.
type Actor struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}
