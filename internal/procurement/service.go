// Package procurement holds the procurement catalog, the contractor
// registry, and the bid lifecycle engine. All storage access goes through
// the narrow store interfaces below so the services can be exercised
// against fakes, with time injected the same way.
package procurement

import (
	"context"
	"time"

	"tenderd/pkg/types"
)

type ProcurementStore interface {
	Procurement(ctx context.Context, procurementID string) (*types.Procurement, error)
	ProcurementsByIDs(ctx context.Context, procurementIDs []string) ([]*types.Procurement, error)
	Procurements(ctx context.Context, filter types.ProcurementFilter) ([]*types.Procurement, error)
	Create(ctx context.Context, procurement *types.Procurement) error
	Update(ctx context.Context, procurement *types.Procurement) error
	SetStatus(ctx context.Context, procurementID string, status types.ProcurementStatus, at time.Time) error
	Delete(ctx context.Context, procurementID string) error
	CountByReferencePrefix(ctx context.Context, prefix string) (int, error)
}

type DocumentStore interface {
	Document(ctx context.Context, documentID string) (*types.ProcurementDocument, error)
	ByProcurement(ctx context.Context, procurementID string) ([]*types.ProcurementDocument, error)
	ByProcurements(ctx context.Context, procurementIDs []string) ([]*types.ProcurementDocument, error)
	Create(ctx context.Context, document *types.ProcurementDocument) error
	Delete(ctx context.Context, documentID string) error
}

type ContractorStore interface {
	Contractor(ctx context.Context, contractorID string) (*types.Contractor, error)
	ByNumber(ctx context.Context, contractorNo string) (*types.Contractor, error)
	ContractorsByIDs(ctx context.Context, contractorIDs []string) ([]*types.Contractor, error)
	Contractors(ctx context.Context, filter types.ContractorFilter) ([]*types.Contractor, error)
	Create(ctx context.Context, contractor *types.Contractor) error
	Update(ctx context.Context, contractor *types.Contractor) error
	CountByNumberPrefix(ctx context.Context, prefix string) (int, error)
}

type BidStore interface {
	Bid(ctx context.Context, bidID string) (*types.Bid, error)
	ForPair(ctx context.Context, procurementID, contractorID string) (*types.Bid, error)
	Awarded(ctx context.Context, procurementID string) (*types.Bid, error)
	ByProcurement(ctx context.Context, procurementID string, filter types.BidFilter) ([]*types.Bid, error)
	ByContractor(ctx context.Context, contractorID string) ([]*types.Bid, error)
	Events(ctx context.Context, bidIDs []string) ([]*types.BidEvent, error)
	CreateWithEvent(ctx context.Context, bid *types.Bid, event *types.BidEvent) error
	UpdateWithEvent(ctx context.Context, bid *types.Bid, event *types.BidEvent) error
	SetStatusWithEvent(ctx context.Context, bidID string, status types.BidStatus, at time.Time, event *types.BidEvent) error
	AwardWithEvent(ctx context.Context, bid *types.Bid, at time.Time, event *types.BidEvent) error
}

// Mailer dispatches notification email. Send failures are logged and never
// propagate into the operation that triggered them.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

func attachContractors(ctx context.Context, store ContractorStore, bids []*types.Bid) error {
	if len(bids) == 0 {
		return nil
	}

	ids := make([]string, 0, len(bids))
	seen := make(map[string]struct{}, len(bids))
	for _, bid := range bids {
		if _, ok := seen[bid.ContractorID]; ok {
			continue
		}
		seen[bid.ContractorID] = struct{}{}
		ids = append(ids, bid.ContractorID)
	}

	contractors, err := store.ContractorsByIDs(ctx, ids)
	if err != nil {
		return err
	}

	byID := make(map[string]*types.Contractor, len(contractors))
	for _, contractor := range contractors {
		byID[contractor.ID] = contractor
	}

	for _, bid := range bids {
		bid.Contractor = byID[bid.ContractorID]
	}

	return nil
}

func attachProcurements(ctx context.Context, store ProcurementStore, bids []*types.Bid) error {
	if len(bids) == 0 {
		return nil
	}

	ids := make([]string, 0, len(bids))
	seen := make(map[string]struct{}, len(bids))
	for _, bid := range bids {
		if _, ok := seen[bid.ProcurementID]; ok {
			continue
		}
		seen[bid.ProcurementID] = struct{}{}
		ids = append(ids, bid.ProcurementID)
	}

	procurements, err := store.ProcurementsByIDs(ctx, ids)
	if err != nil {
		return err
	}

	byID := make(map[string]*types.Procurement, len(procurements))
	for _, procurement := range procurements {
		byID[procurement.ID] = procurement
	}

	for _, bid := range bids {
		bid.Procurement = byID[bid.ProcurementID]
	}

	return nil
}

// attachEvents loads audit trails for the given bids. Events arrive newest
// first; a positive limit caps the trail per bid.
func attachEvents(ctx context.Context, store BidStore, bids []*types.Bid, limit int) error {
	if len(bids) == 0 {
		return nil
	}

	ids := make([]string, 0, len(bids))
	for _, bid := range bids {
		ids = append(ids, bid.ID)
	}

	events, err := store.Events(ctx, ids)
	if err != nil {
		return err
	}

	byBid := make(map[string][]*types.BidEvent, len(bids))
	for _, event := range events {
		byBid[event.BidID] = append(byBid[event.BidID], event)
	}

	for _, bid := range bids {
		trail := byBid[bid.ID]
		if trail == nil {
			trail = []*types.BidEvent{}
		}
		if limit > 0 && len(trail) > limit {
			trail = trail[:limit]
		}
		bid.Events = trail
	}

	return nil
}
