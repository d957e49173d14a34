package procurement

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tenderd/internal/utils"
	"tenderd/pkg/types"
)

func newTestRegistry() (*Registry, *fakeContractorStore, *fakeBidStore, *fakeProcurementStore) {
	contractors := newFakeContractorStore()
	bids := newFakeBidStore()
	procurements := newFakeProcurementStore()

	registry := NewRegistry(contractors, bids, procurements, testLogger())
	registry.now = func() time.Time { return testClock }

	return registry, contractors, bids, procurements
}

func TestCreateContractorGeneratesNumber(t *testing.T) {
	registry, _, _, _ := newTestRegistry()
	ctx := context.Background()

	first, err := registry.CreateContractor(ctx, types.CreateContractorInput{
		CompanyName: "Acme Construction Ltd",
	})
	require.NoError(t, err)
	require.Equal(t, "CTR-00001", first.ContractorNo)
	require.Equal(t, types.ContractorStatusActive, first.Status)

	second, err := registry.CreateContractor(ctx, types.CreateContractorInput{
		CompanyName: "Delta Works Nig Ltd",
	})
	require.NoError(t, err)
	require.Equal(t, "CTR-00002", second.ContractorNo)
}

func TestCreateContractorExplicitNumberConflict(t *testing.T) {
	registry, _, _, _ := newTestRegistry()
	ctx := context.Background()

	_, err := registry.CreateContractor(ctx, types.CreateContractorInput{
		ContractorNo: "CTR-90001",
		CompanyName:  "First Company",
	})
	require.NoError(t, err)

	_, err = registry.CreateContractor(ctx, types.CreateContractorInput{
		ContractorNo: "CTR-90001",
		CompanyName:  "Second Company",
	})
	require.ErrorIs(t, err, types.ErrConflict)
}

func TestCreateContractorValidation(t *testing.T) {
	registry, _, _, _ := newTestRegistry()
	ctx := context.Background()

	_, err := registry.CreateContractor(ctx, types.CreateContractorInput{CompanyName: "  "})
	require.ErrorIs(t, err, types.ErrInvalidArgument)

	_, err = registry.CreateContractor(ctx, types.CreateContractorInput{
		CompanyName: "Bad Status Co",
		Status:      types.ContractorStatus("DORMANT"),
	})
	require.ErrorIs(t, err, types.ErrInvalidArgument)
}

func TestUpdateContractorKeepsNumberWhenBlank(t *testing.T) {
	registry, _, _, _ := newTestRegistry()
	ctx := context.Background()

	contractor, err := registry.CreateContractor(ctx, types.CreateContractorInput{
		CompanyName: "Acme Construction Ltd",
	})
	require.NoError(t, err)

	blank := "  "
	inactive := types.ContractorStatusInactive
	updated, err := registry.UpdateContractor(ctx, contractor.ID, types.UpdateContractorInput{
		ContractorNo: &blank,
		Status:       &inactive,
		Phone:        utils.StringPtr("08030000000"),
	})
	require.NoError(t, err)
	require.Equal(t, contractor.ContractorNo, updated.ContractorNo)
	require.Equal(t, types.ContractorStatusInactive, updated.Status)
	require.Equal(t, "08030000000", *updated.Phone)
}

func TestImportMixedRows(t *testing.T) {
	registry, contractors, _, _ := newTestRegistry()
	ctx := context.Background()

	existing, err := registry.CreateContractor(ctx, types.CreateContractorInput{
		ContractorNo: "CTR-00042",
		CompanyName:  "Old Name Ltd",
		Phone:        utils.StringPtr("08010000000"),
	})
	require.NoError(t, err)

	report, err := registry.Import(ctx, []types.ContractorImportRow{
		{CompanyName: "Fresh Company Ltd", MajorArea: "Civil Works"},
		{ContractorNo: "CTR-00042", CompanyName: "New Name Ltd", Email: "info@newname.example"},
		{CompanyName: "   "}, // missing company name
		{CompanyName: "Bad Status Co", Status: "DORMANT"},
	})
	require.NoError(t, err)

	require.Equal(t, 4, report.Total)
	require.Equal(t, 1, report.Created)
	require.Equal(t, 1, report.Updated)
	require.Equal(t, 2, report.Skipped)
	require.Len(t, report.Errors, 2)
	require.Equal(t, 3, report.Errors[0].Row)
	require.Equal(t, 4, report.Errors[1].Row)

	updated, err := contractors.Contractor(ctx, existing.ID)
	require.NoError(t, err)
	require.Equal(t, "New Name Ltd", updated.CompanyName)
	require.Equal(t, "info@newname.example", *updated.Email)
	// Blank cells keep the stored value.
	require.Equal(t, "08010000000", *updated.Phone)
}

func TestImportNormalizesStatus(t *testing.T) {
	registry, _, _, _ := newTestRegistry()

	report, err := registry.Import(context.Background(), []types.ContractorImportRow{
		{CompanyName: "Lowercase Status Ltd", Status: "inactive"},
	})
	require.NoError(t, err)
	require.Equal(t, 1, report.Created)
	require.Empty(t, report.Errors)

	contractor, err := registry.ContractorByNumber(context.Background(), "CTR-00001")
	require.NoError(t, err)
	require.Equal(t, types.ContractorStatusInactive, contractor.Status)
}

func TestContractorBidsHistory(t *testing.T) {
	registry, _, bids, procurements := newTestRegistry()
	ctx := context.Background()

	contractor, err := registry.CreateContractor(ctx, types.CreateContractorInput{
		CompanyName: "History Ltd",
	})
	require.NoError(t, err)

	procurement := &types.Procurement{
		ID:          "proc-1",
		ReferenceNo: "PROC-20250310-0001",
		Title:       "Road rehabilitation",
		Status:      types.ProcurementStatusPublished,
		Tags:        []string{},
	}
	require.NoError(t, procurements.Create(ctx, procurement))

	require.NoError(t, bids.CreateWithEvent(ctx, &types.Bid{
		ID:            "bid-1",
		ProcurementID: procurement.ID,
		ContractorID:  contractor.ID,
		ContractorNo:  contractor.ContractorNo,
		Status:        types.BidStatusSubmitted,
		OtherFiles:    []string{},
	}, &types.BidEvent{ID: "evt-1", BidID: "bid-1", Action: "bid_submitted"}))

	history, err := registry.ContractorBids(ctx, contractor.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.NotNil(t, history[0].Procurement)
	require.Equal(t, procurement.ReferenceNo, history[0].Procurement.ReferenceNo)
	require.Len(t, history[0].Events, 1)

	_, err = registry.ContractorBids(ctx, "missing")
	require.ErrorIs(t, err, types.ErrNotFound)
}
