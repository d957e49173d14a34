package procurement

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tenderd/internal/utils"
	"tenderd/pkg/types"
)

type bidsFixture struct {
	engine       *Bids
	bids         *fakeBidStore
	procurements *fakeProcurementStore
	contractors  *fakeContractorStore
	mailer       *fakeMailer

	procurement *types.Procurement
	contractor  *types.Contractor
}

func newBidsFixture(t *testing.T) *bidsFixture {
	t.Helper()

	procurements := newFakeProcurementStore()
	contractors := newFakeContractorStore()
	bids := newFakeBidStore()
	bids.procurements = procurements
	mailer := &fakeMailer{}

	engine := NewBids(bids, procurements, contractors, mailer, testLogger())
	engine.now = func() time.Time { return testClock }

	procurement := &types.Procurement{
		ID:                 "proc-1",
		ReferenceNo:        "PROC-20250310-0001",
		Title:              "Road rehabilitation",
		Status:             types.ProcurementStatusPublished,
		SubmissionDeadline: testClock.Add(7 * 24 * time.Hour),
		Tags:               []string{},
	}
	require.NoError(t, procurements.Create(context.Background(), procurement))

	contractor := &types.Contractor{
		ID:           "ctr-1",
		ContractorNo: "CTR-00001",
		CompanyName:  "Acme Construction Ltd",
		Status:       types.ContractorStatusActive,
	}
	require.NoError(t, contractors.Create(context.Background(), contractor))

	return &bidsFixture{
		engine:       engine,
		bids:         bids,
		procurements: procurements,
		contractors:  contractors,
		mailer:       mailer,
		procurement:  procurement,
		contractor:   contractor,
	}
}

func validBidInput() types.CreateBidInput {
	return types.CreateBidInput{
		ContractorNo: "CTR-00001",
		ContactName:  "Jane Okafor",
		ContactEmail: "jane@acme.example",
		ContactPhone: "08030000000",
		Amount:       utils.Float64Ptr(125000),
	}
}

func TestSubmitBidCreatesBidWithEvent(t *testing.T) {
	fx := newBidsFixture(t)
	ctx := context.Background()

	bid, err := fx.engine.SubmitBid(ctx, fx.procurement.ID, validBidInput())
	require.NoError(t, err)
	require.Equal(t, types.BidStatusSubmitted, bid.Status)
	require.Equal(t, fx.contractor.ID, bid.ContractorID)
	require.Equal(t, testClock, bid.SubmittedAt)
	require.NotNil(t, bid.OtherFiles)

	events := fx.bids.eventsFor(bid.ID)
	require.Len(t, events, 1)
	require.Equal(t, "bid_submitted", events[0].Action)
	require.Nil(t, events[0].ActorID)
}

func TestSubmitBidRejections(t *testing.T) {
	fx := newBidsFixture(t)
	ctx := context.Background()

	_, err := fx.engine.SubmitBid(ctx, "missing", validBidInput())
	require.ErrorIs(t, err, types.ErrNotFound)

	input := validBidInput()
	input.ContractorNo = ""
	_, err = fx.engine.SubmitBid(ctx, fx.procurement.ID, input)
	require.ErrorIs(t, err, types.ErrInvalidArgument)

	input = validBidInput()
	input.Amount = utils.Float64Ptr(-5)
	_, err = fx.engine.SubmitBid(ctx, fx.procurement.ID, input)
	require.ErrorIs(t, err, types.ErrInvalidArgument)

	input = validBidInput()
	input.ContractorNo = "CTR-99999"
	_, err = fx.engine.SubmitBid(ctx, fx.procurement.ID, input)
	require.ErrorIs(t, err, types.ErrNotFound)

	require.NoError(t, fx.procurements.SetStatus(ctx, fx.procurement.ID, types.ProcurementStatusDraft, testClock))
	_, err = fx.engine.SubmitBid(ctx, fx.procurement.ID, validBidInput())
	require.ErrorIs(t, err, types.ErrInvalidState)
}

func TestSubmitBidAfterDeadline(t *testing.T) {
	fx := newBidsFixture(t)

	fx.engine.now = func() time.Time {
		return fx.procurement.SubmissionDeadline.Add(time.Minute)
	}

	_, err := fx.engine.SubmitBid(context.Background(), fx.procurement.ID, validBidInput())
	require.ErrorIs(t, err, types.ErrDeadlinePassed)
}

func TestSubmitBidInactiveContractor(t *testing.T) {
	fx := newBidsFixture(t)
	ctx := context.Background()

	fx.contractor.Status = types.ContractorStatusInactive
	require.NoError(t, fx.contractors.Update(ctx, fx.contractor))

	_, err := fx.engine.SubmitBid(ctx, fx.procurement.ID, validBidInput())
	require.ErrorIs(t, err, types.ErrInvalidState)
}

func TestSubmitBidResubmissionOverwrites(t *testing.T) {
	fx := newBidsFixture(t)
	ctx := context.Background()

	first, err := fx.engine.SubmitBid(ctx, fx.procurement.ID, validBidInput())
	require.NoError(t, err)

	// Withdraw, then resubmit before the deadline.
	_, err = fx.engine.WithdrawBid(ctx, first.ID)
	require.NoError(t, err)

	input := validBidInput()
	input.Amount = utils.Float64Ptr(99000)
	second, err := fx.engine.SubmitBid(ctx, fx.procurement.ID, input)
	require.NoError(t, err)

	require.Equal(t, first.ID, second.ID)
	require.Equal(t, types.BidStatusSubmitted, second.Status)
	require.Equal(t, float64(99000), *second.Amount)

	actions := []string{}
	for _, event := range fx.bids.eventsFor(first.ID) {
		actions = append(actions, event.Action)
	}
	require.Equal(t, []string{"bid_submitted", "bid_withdrawn", "bid_updated"}, actions)
}

func TestUpdateBid(t *testing.T) {
	fx := newBidsFixture(t)
	ctx := context.Background()

	bid, err := fx.engine.SubmitBid(ctx, fx.procurement.ID, validBidInput())
	require.NoError(t, err)

	updated, err := fx.engine.UpdateBid(ctx, bid.ID, types.UpdateBidInput{
		Amount: utils.Float64Ptr(110000),
		Notes:  utils.StringPtr("Revised rates"),
	})
	require.NoError(t, err)
	require.Equal(t, float64(110000), *updated.Amount)
	require.Equal(t, "Revised rates", *updated.Notes)

	_, err = fx.engine.WithdrawBid(ctx, bid.ID)
	require.NoError(t, err)

	_, err = fx.engine.UpdateBid(ctx, bid.ID, types.UpdateBidInput{Amount: utils.Float64Ptr(1)})
	require.ErrorIs(t, err, types.ErrInvalidState)
}

func TestUpdateBidClosedProcurement(t *testing.T) {
	fx := newBidsFixture(t)
	ctx := context.Background()

	bid, err := fx.engine.SubmitBid(ctx, fx.procurement.ID, validBidInput())
	require.NoError(t, err)

	// Closed early by an admin, deadline still in the future.
	require.NoError(t, fx.procurements.SetStatus(ctx, fx.procurement.ID, types.ProcurementStatusClosed, testClock))

	_, err = fx.engine.UpdateBid(ctx, bid.ID, types.UpdateBidInput{Amount: utils.Float64Ptr(90000)})
	require.ErrorIs(t, err, types.ErrInvalidState)

	stored, err := fx.bids.Bid(ctx, bid.ID)
	require.NoError(t, err)
	require.Equal(t, float64(125000), *stored.Amount)
}

func TestWithdrawBid(t *testing.T) {
	fx := newBidsFixture(t)
	ctx := context.Background()

	bid, err := fx.engine.SubmitBid(ctx, fx.procurement.ID, validBidInput())
	require.NoError(t, err)

	withdrawn, err := fx.engine.WithdrawBid(ctx, bid.ID)
	require.NoError(t, err)
	require.Equal(t, types.BidStatusWithdrawn, withdrawn.Status)

	// Withdrawing twice fails and appends no duplicate event.
	_, err = fx.engine.WithdrawBid(ctx, bid.ID)
	require.ErrorIs(t, err, types.ErrInvalidState)

	withdrawals := 0
	for _, event := range fx.bids.eventsFor(bid.ID) {
		if event.Action == "bid_withdrawn" {
			withdrawals++
		}
	}
	require.Equal(t, 1, withdrawals)
}

func TestChangeBidStatusRecordsActor(t *testing.T) {
	fx := newBidsFixture(t)
	ctx := context.Background()

	bid, err := fx.engine.SubmitBid(ctx, fx.procurement.ID, validBidInput())
	require.NoError(t, err)

	actor := types.Actor{ID: "admin-1", Role: "procurement_officer"}
	changed, err := fx.engine.ChangeBidStatus(ctx, bid.ID, actor, types.ChangeBidStatusInput{
		Status:   types.BidStatusUnderReview,
		Metadata: utils.StringPtr(`{"note":"Screening"}`),
	})
	require.NoError(t, err)
	require.Equal(t, types.BidStatusUnderReview, changed.Status)

	events := fx.bids.eventsFor(bid.ID)
	last := events[len(events)-1]
	require.Equal(t, "bid_status_changed_to_under_review", last.Action)
	require.Equal(t, "admin-1", *last.ActorID)
	require.Equal(t, "procurement_officer", *last.ActorRole)
	require.Equal(t, `{"note":"Screening"}`, *last.Metadata)

	require.Len(t, fx.mailer.sent, 1)
	require.Equal(t, "jane@acme.example", fx.mailer.sent[0].to)
}

func TestChangeBidStatusRejections(t *testing.T) {
	fx := newBidsFixture(t)
	ctx := context.Background()

	bid, err := fx.engine.SubmitBid(ctx, fx.procurement.ID, validBidInput())
	require.NoError(t, err)

	actor := types.Actor{ID: "admin-1", Role: "procurement_officer"}

	_, err = fx.engine.ChangeBidStatus(ctx, bid.ID, actor, types.ChangeBidStatusInput{
		Status: types.BidStatus("approved"),
	})
	require.ErrorIs(t, err, types.ErrInvalidArgument)

	_, err = fx.engine.WithdrawBid(ctx, bid.ID)
	require.NoError(t, err)

	_, err = fx.engine.ChangeBidStatus(ctx, bid.ID, actor, types.ChangeBidStatusInput{
		Status: types.BidStatusAwarded,
	})
	require.ErrorIs(t, err, types.ErrInvalidState)
}

func TestAwardMarksProcurementAndExcludesOthers(t *testing.T) {
	fx := newBidsFixture(t)
	ctx := context.Background()

	other := &types.Contractor{
		ID:           "ctr-2",
		ContractorNo: "CTR-00002",
		CompanyName:  "Delta Works Nig Ltd",
		Status:       types.ContractorStatusActive,
	}
	require.NoError(t, fx.contractors.Create(ctx, other))

	first, err := fx.engine.SubmitBid(ctx, fx.procurement.ID, validBidInput())
	require.NoError(t, err)

	secondInput := validBidInput()
	secondInput.ContractorNo = other.ContractorNo
	second, err := fx.engine.SubmitBid(ctx, fx.procurement.ID, secondInput)
	require.NoError(t, err)

	actor := types.Actor{ID: "admin-1", Role: "procurement_officer"}

	awarded, err := fx.engine.ChangeBidStatus(ctx, first.ID, actor, types.ChangeBidStatusInput{
		Status: types.BidStatusAwarded,
	})
	require.NoError(t, err)
	require.Equal(t, types.BidStatusAwarded, awarded.Status)

	procurement, err := fx.procurements.Procurement(ctx, fx.procurement.ID)
	require.NoError(t, err)
	require.Equal(t, types.ProcurementStatusAwarded, procurement.Status)

	events := fx.bids.eventsFor(first.ID)
	require.Equal(t, "bid_status_changed_to_awarded", events[len(events)-1].Action)

	_, err = fx.engine.ChangeBidStatus(ctx, second.ID, actor, types.ChangeBidStatusInput{
		Status: types.BidStatusAwarded,
	})
	require.ErrorIs(t, err, types.ErrConflict)
	require.ErrorIs(t, err, types.ErrAnotherBidAwarded)
}

func TestChangeBidStatusMailFailureDoesNotFail(t *testing.T) {
	fx := newBidsFixture(t)
	ctx := context.Background()

	bid, err := fx.engine.SubmitBid(ctx, fx.procurement.ID, validBidInput())
	require.NoError(t, err)

	fx.mailer.err = errors.New("ses unavailable")

	changed, err := fx.engine.ChangeBidStatus(ctx, bid.ID, types.Actor{ID: "admin-1", Role: "procurement_officer"},
		types.ChangeBidStatusInput{Status: types.BidStatusRejected})
	require.NoError(t, err)
	require.Equal(t, types.BidStatusRejected, changed.Status)
}

func TestBidAttachesRelations(t *testing.T) {
	fx := newBidsFixture(t)
	ctx := context.Background()

	submitted, err := fx.engine.SubmitBid(ctx, fx.procurement.ID, validBidInput())
	require.NoError(t, err)

	bid, err := fx.engine.Bid(ctx, submitted.ID)
	require.NoError(t, err)
	require.NotNil(t, bid.Contractor)
	require.Equal(t, fx.contractor.ID, bid.Contractor.ID)
	require.NotNil(t, bid.Procurement)
	require.Len(t, bid.Events, 1)

	bids, err := fx.engine.BidsByProcurement(ctx, fx.procurement.ID, types.BidFilter{})
	require.NoError(t, err)
	require.Len(t, bids, 1)
	require.NotNil(t, bids[0].Contractor)

	history, err := fx.engine.BidsByContractor(ctx, fx.contractor.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.NotNil(t, history[0].Procurement)
}
