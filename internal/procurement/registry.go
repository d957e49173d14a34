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

// Registry manages the contractor roster, including bulk imports from the
// legacy registration workbooks.
type Registry struct {
	contractors  ContractorStore
	bids         BidStore
	procurements ProcurementStore
	logger       *logrus.Logger

	now func() time.Time
}

func NewRegistry(
	contractors ContractorStore,
	bids BidStore,
	procurements ProcurementStore,
	logger *logrus.Logger,
) *Registry {
	return &Registry{
		contractors:  contractors,
		bids:         bids,
		procurements: procurements,
		logger:       logger,
		now:          time.Now,
	}
}

func (r *Registry) CreateContractor(ctx context.Context, input types.CreateContractorInput) (*types.Contractor, error) {

	if strings.TrimSpace(input.CompanyName) == "" {
		return nil, fmt.Errorf("%w: company name is required", types.ErrInvalidArgument)
	}

	status := input.Status
	if status == "" {
		status = types.ContractorStatusActive
	}
	if status != types.ContractorStatusActive && status != types.ContractorStatusInactive {
		return nil, fmt.Errorf("%w: unknown contractor status %q", types.ErrInvalidArgument, status)
	}

	now := r.now()
	contractor := &types.Contractor{
		ID:                   utils.NanoID(),
		OldRegNo:             input.OldRegNo,
		CacRegNo:             input.CacRegNo,
		CompanyName:          input.CompanyName,
		Status:               status,
		RegistrationCategory: input.RegistrationCategory,
		MajorArea:            input.MajorArea,
		SubArea:              input.SubArea,
		StateOfOrigin:        input.StateOfOrigin,
		Community:            input.Community,
		ContactPerson:        input.ContactPerson,
		Phone:                input.Phone,
		Email:                input.Email,
		Notes:                input.Notes,
		SourceSheet:          input.SourceSheet,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	if contractorNo := strings.TrimSpace(input.ContractorNo); contractorNo != "" {
		contractor.ContractorNo = contractorNo
		if err := r.contractors.Create(ctx, contractor); err != nil {
			return nil, err
		}
		return contractor, nil
	}

	for attempt := 0; attempt < generateAttempts; attempt++ {
		count, err := r.contractors.CountByNumberPrefix(ctx, contractorNoScope())
		if err != nil {
			return nil, err
		}

		contractor.ContractorNo = formatContractorNo(count + 1)

		err = r.contractors.Create(ctx, contractor)
		if errors.Is(err, types.ErrDuplicateContractorNo) {
			r.logger.WithField("contractor_no", contractor.ContractorNo).
				Warn("contractor number collision, regenerating")
			continue
		}
		if err != nil {
			return nil, err
		}

		return contractor, nil
	}

	return nil, types.ErrDuplicateContractorNo
}

func (r *Registry) UpdateContractor(ctx context.Context, contractorID string, input types.UpdateContractorInput) (*types.Contractor, error) {

	contractor, err := r.contractors.Contractor(ctx, contractorID)
	if err != nil {
		return nil, err
	}

	if input.ContractorNo != nil && strings.TrimSpace(*input.ContractorNo) != "" {
		contractor.ContractorNo = strings.TrimSpace(*input.ContractorNo)
	}
	if input.CompanyName != nil {
		if strings.TrimSpace(*input.CompanyName) == "" {
			return nil, fmt.Errorf("%w: company name is required", types.ErrInvalidArgument)
		}
		contractor.CompanyName = *input.CompanyName
	}
	if input.Status != nil {
		if *input.Status != types.ContractorStatusActive && *input.Status != types.ContractorStatusInactive {
			return nil, fmt.Errorf("%w: unknown contractor status %q", types.ErrInvalidArgument, *input.Status)
		}
		contractor.Status = *input.Status
	}
	if input.OldRegNo != nil {
		contractor.OldRegNo = input.OldRegNo
	}
	if input.CacRegNo != nil {
		contractor.CacRegNo = input.CacRegNo
	}
	if input.RegistrationCategory != nil {
		contractor.RegistrationCategory = input.RegistrationCategory
	}
	if input.MajorArea != nil {
		contractor.MajorArea = input.MajorArea
	}
	if input.SubArea != nil {
		contractor.SubArea = input.SubArea
	}
	if input.StateOfOrigin != nil {
		contractor.StateOfOrigin = input.StateOfOrigin
	}
	if input.Community != nil {
		contractor.Community = input.Community
	}
	if input.ContactPerson != nil {
		contractor.ContactPerson = input.ContactPerson
	}
	if input.Phone != nil {
		contractor.Phone = input.Phone
	}
	if input.Email != nil {
		contractor.Email = input.Email
	}
	if input.Notes != nil {
		contractor.Notes = input.Notes
	}

	contractor.UpdatedAt = r.now()

	if err := r.contractors.Update(ctx, contractor); err != nil {
		return nil, err
	}

	return contractor, nil
}

func (r *Registry) Contractors(ctx context.Context, filter types.ContractorFilter) ([]*types.Contractor, error) {
	return r.contractors.Contractors(ctx, filter)
}

func (r *Registry) Contractor(ctx context.Context, contractorID string) (*types.Contractor, error) {

	contractor, err := r.contractors.Contractor(ctx, contractorID)
	if err != nil {
		return nil, err
	}

	return r.withBids(ctx, contractor)
}

func (r *Registry) ContractorByNumber(ctx context.Context, contractorNo string) (*types.Contractor, error) {

	contractor, err := r.contractors.ByNumber(ctx, contractorNo)
	if err != nil {
		return nil, err
	}

	return r.withBids(ctx, contractor)
}

// bidEventHistoryLimit caps the audit trail attached to each bid on the
// contractor history views.
const bidEventHistoryLimit = 5

func (r *Registry) withBids(ctx context.Context, contractor *types.Contractor) (*types.Contractor, error) {

	bids, err := r.bids.ByContractor(ctx, contractor.ID)
	if err != nil {
		return nil, err
	}

	if err := attachProcurements(ctx, r.procurements, bids); err != nil {
		return nil, err
	}

	contractor.Bids = bids
	return contractor, nil
}

// ContractorBids returns a contractor's bid history with procurement
// summaries and a capped audit trail per bid.
func (r *Registry) ContractorBids(ctx context.Context, contractorID string) ([]*types.Bid, error) {

	contractor, err := r.contractors.Contractor(ctx, contractorID)
	if err != nil {
		return nil, err
	}

	bids, err := r.bids.ByContractor(ctx, contractor.ID)
	if err != nil {
		return nil, err
	}

	if err := attachProcurements(ctx, r.procurements, bids); err != nil {
		return nil, err
	}
	if err := attachEvents(ctx, r.bids, bids, bidEventHistoryLimit); err != nil {
		return nil, err
	}

	return bids, nil
}

// Import upserts contractor rows keyed by contractor number. A row failure
// is recorded against its position and never aborts the rest of the batch.
func (r *Registry) Import(ctx context.Context, rows []types.ContractorImportRow) (*types.ImportReport, error) {

	report := &types.ImportReport{
		Total:  len(rows),
		Errors: []types.ImportRowError{},
	}

	for i, row := range rows {
		created, err := r.importRow(ctx, row)
		if err != nil {
			report.Skipped++
			report.Errors = append(report.Errors, types.ImportRowError{
				Row:     i + 1,
				Message: err.Error(),
			})
			continue
		}
		if created {
			report.Created++
		} else {
			report.Updated++
		}
	}

	if len(report.Errors) > 0 {
		r.logger.WithFields(logrus.Fields{
			"total":  report.Total,
			"failed": len(report.Errors),
		}).Warn("contractor import finished with row errors")
	}

	return report, nil
}

func (r *Registry) importRow(ctx context.Context, row types.ContractorImportRow) (created bool, err error) {

	companyName := strings.TrimSpace(row.CompanyName)
	if companyName == "" {
		return false, fmt.Errorf("%w: company name is required", types.ErrInvalidArgument)
	}

	status := types.ContractorStatusActive
	if s := strings.ToUpper(strings.TrimSpace(row.Status)); s != "" {
		switch types.ContractorStatus(s) {
		case types.ContractorStatusActive, types.ContractorStatusInactive:
			status = types.ContractorStatus(s)
		default:
			return false, fmt.Errorf("%w: unknown contractor status %q", types.ErrInvalidArgument, row.Status)
		}
	}

	contractorNo := strings.TrimSpace(row.ContractorNo)
	if contractorNo != "" {
		existing, err := r.contractors.ByNumber(ctx, contractorNo)
		if err != nil && !errors.Is(err, types.ErrNotFound) {
			return false, err
		}
		if existing != nil {
			existing.OldRegNo = importValue(row.OldRegNo, existing.OldRegNo)
			existing.CacRegNo = importValue(row.CacRegNo, existing.CacRegNo)
			existing.CompanyName = companyName
			existing.Status = status
			existing.RegistrationCategory = importValue(row.RegistrationCategory, existing.RegistrationCategory)
			existing.MajorArea = importValue(row.MajorArea, existing.MajorArea)
			existing.SubArea = importValue(row.SubArea, existing.SubArea)
			existing.StateOfOrigin = importValue(row.StateOfOrigin, existing.StateOfOrigin)
			existing.Community = importValue(row.Community, existing.Community)
			existing.ContactPerson = importValue(row.ContactPerson, existing.ContactPerson)
			existing.Phone = importValue(row.Phone, existing.Phone)
			existing.Email = importValue(row.Email, existing.Email)
			existing.Notes = importValue(row.Notes, existing.Notes)
			existing.SourceSheet = importValue(row.SourceSheet, existing.SourceSheet)
			existing.UpdatedAt = r.now()

			if err := r.contractors.Update(ctx, existing); err != nil {
				return false, err
			}
			return false, nil
		}
	}

	_, err = r.CreateContractor(ctx, types.CreateContractorInput{
		ContractorNo:         contractorNo,
		OldRegNo:             importValue(row.OldRegNo, nil),
		CacRegNo:             importValue(row.CacRegNo, nil),
		CompanyName:          companyName,
		Status:               status,
		RegistrationCategory: importValue(row.RegistrationCategory, nil),
		MajorArea:            importValue(row.MajorArea, nil),
		SubArea:              importValue(row.SubArea, nil),
		StateOfOrigin:        importValue(row.StateOfOrigin, nil),
		Community:            importValue(row.Community, nil),
		ContactPerson:        importValue(row.ContactPerson, nil),
		Phone:                importValue(row.Phone, nil),
		Email:                importValue(row.Email, nil),
		Notes:                importValue(row.Notes, nil),
		SourceSheet:          importValue(row.SourceSheet, nil),
	})
	if err != nil {
		return false, err
	}

	return true, nil
}

// importValue keeps the current value when the incoming cell is blank.
func importValue(incoming string, current *string) *string {
	trimmed := strings.TrimSpace(incoming)
	if trimmed == "" {
		return current
	}
	return &trimmed
}
