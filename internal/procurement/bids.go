package procurement

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tenderd/internal/utils"
	"tenderd/pkg/types"

	"github.com/sirupsen/logrus"
)

// Bids runs the bid lifecycle: submission and resubmission while a
// procurement is open, withdrawal, and admin status changes including the
// award. Every mutation lands an audit event in the same transaction as
// the bid write.
type Bids struct {
	bids         BidStore
	procurements ProcurementStore
	contractors  ContractorStore
	mailer       Mailer
	logger       *logrus.Logger

	now func() time.Time
}

func NewBids(
	bids BidStore,
	procurements ProcurementStore,
	contractors ContractorStore,
	mailer Mailer,
	logger *logrus.Logger,
) *Bids {
	return &Bids{
		bids:         bids,
		procurements: procurements,
		contractors:  contractors,
		mailer:       mailer,
		logger:       logger,
		now:          time.Now,
	}
}

// SubmitBid records a contractor's bid on a published procurement. A
// contractor resubmitting before the deadline overwrites their earlier
// bid and the status resets to submitted, withdrawn included.
func (b *Bids) SubmitBid(ctx context.Context, procurementID string, input types.CreateBidInput) (*types.Bid, error) {

	if strings.TrimSpace(input.ContractorNo) == "" {
		return nil, fmt.Errorf("%w: contractorNo is required", types.ErrInvalidArgument)
	}
	if strings.TrimSpace(input.ContactName) == "" {
		return nil, fmt.Errorf("%w: contactName is required", types.ErrInvalidArgument)
	}
	if strings.TrimSpace(input.ContactEmail) == "" {
		return nil, fmt.Errorf("%w: contactEmail is required", types.ErrInvalidArgument)
	}
	if input.Amount != nil && *input.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", types.ErrInvalidArgument)
	}

	procurement, err := b.procurements.Procurement(ctx, procurementID)
	if err != nil {
		return nil, err
	}

	if procurement.Status != types.ProcurementStatusPublished {
		return nil, fmt.Errorf("%w: procurement %s is not accepting bids", types.ErrInvalidState, procurement.ID)
	}

	now := b.now()
	if now.After(procurement.SubmissionDeadline) {
		return nil, fmt.Errorf("%w: procurement %s closed for submissions", types.ErrDeadlinePassed, procurement.ID)
	}

	contractor, err := b.contractors.ByNumber(ctx, input.ContractorNo)
	if err != nil {
		return nil, err
	}
	if contractor.Status != types.ContractorStatusActive {
		return nil, fmt.Errorf("%w: contractor %s is not active", types.ErrInvalidState, contractor.ContractorNo)
	}

	otherFiles := input.OtherFiles
	if otherFiles == nil {
		otherFiles = []string{}
	}

	existing, err := b.bids.ForPair(ctx, procurement.ID, contractor.ID)
	if err != nil && !errors.Is(err, types.ErrNotFound) {
		return nil, err
	}

	if existing != nil {
		existing.ContactName = input.ContactName
		existing.ContactEmail = input.ContactEmail
		existing.ContactPhone = input.ContactPhone
		existing.Amount = input.Amount
		if input.ProposalURL != nil {
			existing.ProposalURL = input.ProposalURL
		}
		existing.OtherFiles = otherFiles
		existing.Notes = input.Notes
		existing.Status = types.BidStatusSubmitted
		existing.UpdatedAt = now

		event := b.newEvent(existing.ID, "bid_updated", nil, utils.StringPtr(`{"note":"Bid resubmitted"}`))
		if err := b.bids.UpdateWithEvent(ctx, existing, event); err != nil {
			return nil, err
		}
		return existing, nil
	}

	bid := &types.Bid{
		ID:            utils.NanoID(),
		ProcurementID: procurement.ID,
		ContractorID:  contractor.ID,
		ContractorNo:  contractor.ContractorNo,
		ContactName:   input.ContactName,
		ContactEmail:  input.ContactEmail,
		ContactPhone:  input.ContactPhone,
		Amount:        input.Amount,
		ProposalURL:   input.ProposalURL,
		OtherFiles:    otherFiles,
		Notes:         input.Notes,
		Status:        types.BidStatusSubmitted,
		SubmittedAt:   now,
		UpdatedAt:     now,
	}

	event := b.newEvent(bid.ID, "bid_submitted", nil, utils.StringPtr(`{"note":"New bid submitted"}`))
	if err := b.bids.CreateWithEvent(ctx, bid, event); err != nil {
		return nil, err
	}

	return bid, nil
}

// UpdateBid applies a partial update to a live bid before the deadline.
func (b *Bids) UpdateBid(ctx context.Context, bidID string, input types.UpdateBidInput) (*types.Bid, error) {

	bid, err := b.bids.Bid(ctx, bidID)
	if err != nil {
		return nil, err
	}

	if bid.Status == types.BidStatusWithdrawn {
		return nil, fmt.Errorf("%w: bid %s has been withdrawn", types.ErrInvalidState, bid.ID)
	}
	if bid.Status == types.BidStatusAwarded {
		return nil, fmt.Errorf("%w: bid %s has been awarded", types.ErrInvalidState, bid.ID)
	}

	procurement, err := b.procurements.Procurement(ctx, bid.ProcurementID)
	if err != nil {
		return nil, err
	}

	if procurement.Status != types.ProcurementStatusPublished {
		return nil, fmt.Errorf("%w: procurement %s is not accepting bids", types.ErrInvalidState, procurement.ID)
	}

	now := b.now()
	if now.After(procurement.SubmissionDeadline) {
		return nil, fmt.Errorf("%w: procurement %s closed for submissions", types.ErrDeadlinePassed, procurement.ID)
	}

	if input.ContactName != nil {
		bid.ContactName = *input.ContactName
	}
	if input.ContactEmail != nil {
		bid.ContactEmail = *input.ContactEmail
	}
	if input.ContactPhone != nil {
		bid.ContactPhone = *input.ContactPhone
	}
	if input.Amount != nil {
		if *input.Amount <= 0 {
			return nil, fmt.Errorf("%w: amount must be positive", types.ErrInvalidArgument)
		}
		bid.Amount = input.Amount
	}
	if input.ProposalURL != nil {
		bid.ProposalURL = input.ProposalURL
	}
	if input.OtherFiles != nil {
		bid.OtherFiles = input.OtherFiles
	}
	if input.Notes != nil {
		bid.Notes = input.Notes
	}
	bid.UpdatedAt = now

	event := b.newEvent(bid.ID, "bid_updated", nil, nil)
	if err := b.bids.UpdateWithEvent(ctx, bid, event); err != nil {
		return nil, err
	}

	return bid, nil
}

// WithdrawBid takes a bid out of contention. An awarded bid is binding and
// cannot be withdrawn; withdrawing twice fails rather than appending a
// duplicate audit event.
func (b *Bids) WithdrawBid(ctx context.Context, bidID string) (*types.Bid, error) {

	bid, err := b.bids.Bid(ctx, bidID)
	if err != nil {
		return nil, err
	}

	if bid.Status == types.BidStatusWithdrawn {
		return nil, fmt.Errorf("%w: bid %s is already withdrawn", types.ErrInvalidState, bid.ID)
	}
	if bid.Status == types.BidStatusAwarded {
		return nil, fmt.Errorf("%w: bid %s has been awarded", types.ErrInvalidState, bid.ID)
	}

	now := b.now()
	event := b.newEvent(bid.ID, "bid_withdrawn", nil, nil)
	if err := b.bids.SetStatusWithEvent(ctx, bid.ID, types.BidStatusWithdrawn, now, event); err != nil {
		return nil, err
	}

	bid.Status = types.BidStatusWithdrawn
	bid.UpdatedAt = now

	return bid, nil
}

// ChangeBidStatus moves a bid through review on behalf of an actor. At most
// one bid per procurement can hold awarded; awarding also marks the
// procurement awarded, all in one transaction.
func (b *Bids) ChangeBidStatus(ctx context.Context, bidID string, actor types.Actor, input types.ChangeBidStatusInput) (*types.Bid, error) {

	if !input.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown bid status %q", types.ErrInvalidArgument, input.Status)
	}

	bid, err := b.bids.Bid(ctx, bidID)
	if err != nil {
		return nil, err
	}

	if bid.Status == types.BidStatusWithdrawn && input.Status != types.BidStatusWithdrawn {
		return nil, fmt.Errorf("%w: bid %s has been withdrawn", types.ErrInvalidState, bid.ID)
	}

	if bid.Status == input.Status {
		return bid, nil
	}

	now := b.now()
	action := fmt.Sprintf("bid_status_changed_to_%s", input.Status)
	event := b.newEvent(bid.ID, action, &actor, input.Metadata)

	if input.Status == types.BidStatusAwarded {
		awarded, err := b.bids.Awarded(ctx, bid.ProcurementID)
		if err != nil && !errors.Is(err, types.ErrNotFound) {
			return nil, err
		}
		if awarded != nil && awarded.ID != bid.ID {
			return nil, types.ErrAnotherBidAwarded
		}

		bid.Status = types.BidStatusAwarded
		bid.UpdatedAt = now
		if err := b.bids.AwardWithEvent(ctx, bid, now, event); err != nil {
			return nil, err
		}
	} else {
		if err := b.bids.SetStatusWithEvent(ctx, bid.ID, input.Status, now, event); err != nil {
			return nil, err
		}
		bid.Status = input.Status
		bid.UpdatedAt = now
	}

	b.notifyStatusChange(ctx, bid)

	return bid, nil
}

func (b *Bids) Bid(ctx context.Context, bidID string) (*types.Bid, error) {

	bid, err := b.bids.Bid(ctx, bidID)
	if err != nil {
		return nil, err
	}

	bids := []*types.Bid{bid}
	if err := attachContractors(ctx, b.contractors, bids); err != nil {
		return nil, err
	}
	if err := attachProcurements(ctx, b.procurements, bids); err != nil {
		return nil, err
	}
	if err := attachEvents(ctx, b.bids, bids, 0); err != nil {
		return nil, err
	}

	return bid, nil
}

func (b *Bids) BidsByProcurement(ctx context.Context, procurementID string, filter types.BidFilter) ([]*types.Bid, error) {

	procurement, err := b.procurements.Procurement(ctx, procurementID)
	if err != nil {
		return nil, err
	}

	bids, err := b.bids.ByProcurement(ctx, procurement.ID, filter)
	if err != nil {
		return nil, err
	}

	if err := attachContractors(ctx, b.contractors, bids); err != nil {
		return nil, err
	}
	if err := attachEvents(ctx, b.bids, bids, bidEventHistoryLimit); err != nil {
		return nil, err
	}

	return bids, nil
}

func (b *Bids) BidsByContractor(ctx context.Context, contractorID string) ([]*types.Bid, error) {

	contractor, err := b.contractors.Contractor(ctx, contractorID)
	if err != nil {
		return nil, err
	}

	bids, err := b.bids.ByContractor(ctx, contractor.ID)
	if err != nil {
		return nil, err
	}

	if err := attachProcurements(ctx, b.procurements, bids); err != nil {
		return nil, err
	}

	return bids, nil
}

func (b *Bids) newEvent(bidID, action string, actor *types.Actor, metadata *string) *types.BidEvent {
	event := &types.BidEvent{
		ID:        utils.NanoID(),
		BidID:     bidID,
		Action:    action,
		Metadata:  metadata,
		CreatedAt: b.now(),
	}
	if actor != nil {
		event.ActorID = utils.StringPtr(actor.ID)
		event.ActorRole = utils.StringPtr(actor.Role)
	}
	return event
}

// notifyStatusChange emails the bid contact about the new status. Failures
// are logged, never returned.
func (b *Bids) notifyStatusChange(ctx context.Context, bid *types.Bid) {
	if b.mailer == nil || bid.ContactEmail == "" {
		return
	}

	subject := fmt.Sprintf("Your bid status is now %s", bid.Status)
	body := fmt.Sprintf(
		"Hello %s,\n\nThe status of your bid (%s) has changed to %s.\n\nRegards,\nProcurement Team",
		bid.ContactName, bid.ContractorNo, bid.Status,
	)

	if err := b.mailer.Send(ctx, bid.ContactEmail, subject, body); err != nil {
		b.logger.WithError(err).WithFields(logrus.Fields{
			"bid_id": bid.ID,
			"to":     bid.ContactEmail,
		}).Error("failed to send bid status notification")
	}
}
