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

// Catalog manages procurement notices and their documents.
type Catalog struct {
	procurements ProcurementStore
	documents    DocumentStore
	contractors  ContractorStore
	bids         BidStore
	logger       *logrus.Logger

	now func() time.Time
}

func NewCatalog(
	procurements ProcurementStore,
	documents DocumentStore,
	contractors ContractorStore,
	bids BidStore,
	logger *logrus.Logger,
) *Catalog {
	return &Catalog{
		procurements: procurements,
		documents:    documents,
		contractors:  contractors,
		bids:         bids,
		logger:       logger,
		now:          time.Now,
	}
}

func (c *Catalog) CreateProcurement(ctx context.Context, input types.CreateProcurementInput) (*types.Procurement, error) {

	if strings.TrimSpace(input.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", types.ErrInvalidArgument)
	}
	if strings.TrimSpace(input.CreatedBy) == "" {
		return nil, fmt.Errorf("%w: createdBy is required", types.ErrInvalidArgument)
	}

	now := c.now()

	if !input.SubmissionDeadline.After(now) {
		return nil, fmt.Errorf("%w: submission deadline must be in the future", types.ErrInvalidArgument)
	}

	publishDate := now
	if input.PublishDate != nil {
		publishDate = *input.PublishDate
	}
	if publishDate.After(input.SubmissionDeadline) {
		return nil, fmt.Errorf("%w: publish date must be before or equal to submission deadline", types.ErrInvalidArgument)
	}

	status := input.Status
	if status == "" {
		status = types.ProcurementStatusDraft
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown procurement status %q", types.ErrInvalidArgument, status)
	}

	tags := input.Tags
	if tags == nil {
		tags = []string{}
	}

	procurement := &types.Procurement{
		ID:                    utils.NanoID(),
		Title:                 input.Title,
		Category:              input.Category,
		Type:                  input.Type,
		Location:              input.Location,
		Description:           input.Description,
		EligibilityCriteria:   input.EligibilityCriteria,
		SubmissionDeadline:    input.SubmissionDeadline,
		PublishDate:           publishDate,
		BudgetEstimate:        input.BudgetEstimate,
		PreBidMeetingDate:     input.PreBidMeetingDate,
		PreBidMeetingLocation: input.PreBidMeetingLocation,
		PreBidNotes:           input.PreBidNotes,
		Tags:                  tags,
		ContactEmail:          input.ContactEmail,
		ContactPhone:          input.ContactPhone,
		CreatedBy:             input.CreatedBy,
		Status:                status,
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	if refNo := strings.TrimSpace(input.ReferenceNo); refNo != "" {
		procurement.ReferenceNo = refNo
		if err := c.procurements.Create(ctx, procurement); err != nil {
			return nil, err
		}
		return procurement, nil
	}

	// Generated reference: count-then-insert, retried when a concurrent
	// create claims the same ordinal first.
	scope := referenceNoScope(now)
	for attempt := 0; attempt < generateAttempts; attempt++ {
		count, err := c.procurements.CountByReferencePrefix(ctx, scope)
		if err != nil {
			return nil, err
		}

		procurement.ReferenceNo = formatReferenceNo(now, count+1)

		err = c.procurements.Create(ctx, procurement)
		if errors.Is(err, types.ErrDuplicateReferenceNo) {
			c.logger.WithField("reference_no", procurement.ReferenceNo).
				Warn("reference number collision, regenerating")
			continue
		}
		if err != nil {
			return nil, err
		}

		return procurement, nil
	}

	return nil, types.ErrDuplicateReferenceNo
}

func (c *Catalog) Procurements(ctx context.Context, filter types.ProcurementFilter) ([]*types.Procurement, error) {

	procurements, err := c.procurements.Procurements(ctx, filter)
	if err != nil {
		return nil, err
	}

	if len(procurements) == 0 {
		return procurements, nil
	}

	ids := make([]string, 0, len(procurements))
	for _, procurement := range procurements {
		ids = append(ids, procurement.ID)
	}

	documents, err := c.documents.ByProcurements(ctx, ids)
	if err != nil {
		return nil, err
	}

	byProcurement := make(map[string][]*types.ProcurementDocument, len(procurements))
	for _, document := range documents {
		byProcurement[document.ProcurementID] = append(byProcurement[document.ProcurementID], document)
	}

	for _, procurement := range procurements {
		docs := byProcurement[procurement.ID]
		if docs == nil {
			docs = []*types.ProcurementDocument{}
		}
		procurement.Documents = docs
	}

	return procurements, nil
}

func (c *Catalog) Procurement(ctx context.Context, procurementID string) (*types.Procurement, error) {

	procurement, err := c.procurements.Procurement(ctx, procurementID)
	if err != nil {
		return nil, err
	}

	documents, err := c.documents.ByProcurement(ctx, procurement.ID)
	if err != nil {
		return nil, err
	}
	procurement.Documents = documents

	bids, err := c.bids.ByProcurement(ctx, procurement.ID, types.BidFilter{})
	if err != nil {
		return nil, err
	}
	if err := attachContractors(ctx, c.contractors, bids); err != nil {
		return nil, err
	}
	procurement.Bids = bids
	procurement.BidCount = int64(len(bids))

	return procurement, nil
}

func (c *Catalog) UpdateProcurement(ctx context.Context, procurementID string, input types.UpdateProcurementInput) (*types.Procurement, error) {

	procurement, err := c.procurements.Procurement(ctx, procurementID)
	if err != nil {
		return nil, err
	}

	if procurement.Status == types.ProcurementStatusArchived {
		return nil, fmt.Errorf("%w: archived procurement %s cannot be modified", types.ErrInvalidState, procurement.ID)
	}

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, fmt.Errorf("%w: title is required", types.ErrInvalidArgument)
		}
		procurement.Title = *input.Title
	}
	if input.Category != nil {
		procurement.Category = *input.Category
	}
	if input.Type != nil {
		procurement.Type = *input.Type
	}
	if input.Location != nil {
		procurement.Location = *input.Location
	}
	if input.Description != nil {
		procurement.Description = *input.Description
	}
	if input.EligibilityCriteria != nil {
		procurement.EligibilityCriteria = input.EligibilityCriteria
	}
	if input.SubmissionDeadline != nil {
		procurement.SubmissionDeadline = *input.SubmissionDeadline
	}
	if input.PublishDate != nil {
		procurement.PublishDate = *input.PublishDate
	}
	if input.BudgetEstimate != nil {
		procurement.BudgetEstimate = input.BudgetEstimate
	}
	if input.PreBidMeetingDate != nil {
		procurement.PreBidMeetingDate = input.PreBidMeetingDate
	}
	if input.PreBidMeetingLocation != nil {
		procurement.PreBidMeetingLocation = input.PreBidMeetingLocation
	}
	if input.PreBidNotes != nil {
		procurement.PreBidNotes = input.PreBidNotes
	}
	if input.Tags != nil {
		procurement.Tags = input.Tags
	}
	if input.ContactEmail != nil {
		procurement.ContactEmail = input.ContactEmail
	}
	if input.ContactPhone != nil {
		procurement.ContactPhone = input.ContactPhone
	}

	if procurement.PublishDate.After(procurement.SubmissionDeadline) {
		return nil, fmt.Errorf("%w: publish date must be before or equal to submission deadline", types.ErrInvalidArgument)
	}

	if input.Status != nil {
		next := *input.Status
		if !next.Valid() {
			return nil, fmt.Errorf("%w: unknown procurement status %q", types.ErrInvalidArgument, next)
		}
		if next.Rank() < procurement.Status.Rank() {
			return nil, fmt.Errorf("%w: procurement status cannot move back from %s to %s",
				types.ErrInvalidState, procurement.Status, next)
		}
		procurement.Status = next
	}

	procurement.UpdatedAt = c.now()

	if err := c.procurements.Update(ctx, procurement); err != nil {
		return nil, err
	}

	return procurement, nil
}

// DeleteProcurement hard-deletes drafts. Anything that was ever published
// keeps its history and is archived instead.
func (c *Catalog) DeleteProcurement(ctx context.Context, procurementID string) (*types.Procurement, error) {

	procurement, err := c.procurements.Procurement(ctx, procurementID)
	if err != nil {
		return nil, err
	}

	if procurement.Status == types.ProcurementStatusDraft {
		if err := c.procurements.Delete(ctx, procurement.ID); err != nil {
			return nil, err
		}
		return procurement, nil
	}

	now := c.now()
	if err := c.procurements.SetStatus(ctx, procurement.ID, types.ProcurementStatusArchived, now); err != nil {
		return nil, err
	}

	procurement.Status = types.ProcurementStatusArchived
	procurement.UpdatedAt = now

	return procurement, nil
}

func (c *Catalog) AddDocument(ctx context.Context, procurementID string, input types.AddDocumentInput) (*types.ProcurementDocument, error) {

	if strings.TrimSpace(input.Name) == "" {
		return nil, fmt.Errorf("%w: document name is required", types.ErrInvalidArgument)
	}
	if strings.TrimSpace(input.URL) == "" {
		return nil, fmt.Errorf("%w: document url is required", types.ErrInvalidArgument)
	}

	procurement, err := c.procurements.Procurement(ctx, procurementID)
	if err != nil {
		return nil, err
	}

	document := &types.ProcurementDocument{
		ID:            utils.NanoID(),
		ProcurementID: procurement.ID,
		Name:          input.Name,
		URL:           input.URL,
		MimeType:      input.MimeType,
		Size:          input.Size,
		CreatedAt:     c.now(),
	}

	if err := c.documents.Create(ctx, document); err != nil {
		return nil, err
	}

	return document, nil
}

func (c *Catalog) Documents(ctx context.Context, procurementID string) ([]*types.ProcurementDocument, error) {
	return c.documents.ByProcurement(ctx, procurementID)
}

func (c *Catalog) RemoveDocument(ctx context.Context, documentID string) error {

	document, err := c.documents.Document(ctx, documentID)
	if err != nil {
		return err
	}

	return c.documents.Delete(ctx, document.ID)
}
