package procurement

import (
	"context"
	"strings"
	"time"

	"tenderd/pkg/types"
)

// In-memory stores backing the service tests. They enforce the same
// uniqueness rules the database constraints do.

type fakeProcurementStore struct {
	procurements map[string]*types.Procurement

	// failCreates makes the next N Create calls fail with a duplicate
	// reference error, to exercise generation retries.
	failCreates int
}

func newFakeProcurementStore() *fakeProcurementStore {
	return &fakeProcurementStore{procurements: map[string]*types.Procurement{}}
}

func (s *fakeProcurementStore) Procurement(_ context.Context, procurementID string) (*types.Procurement, error) {
	procurement, ok := s.procurements[procurementID]
	if !ok {
		return nil, types.ErrProcurementNotFound
	}
	clone := *procurement
	return &clone, nil
}

func (s *fakeProcurementStore) ProcurementsByIDs(_ context.Context, procurementIDs []string) ([]*types.Procurement, error) {
	var out []*types.Procurement
	for _, id := range procurementIDs {
		if procurement, ok := s.procurements[id]; ok {
			clone := *procurement
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (s *fakeProcurementStore) Procurements(_ context.Context, filter types.ProcurementFilter) ([]*types.Procurement, error) {
	var out []*types.Procurement
	for _, procurement := range s.procurements {
		if filter.Status != "" && string(procurement.Status) != filter.Status {
			continue
		}
		clone := *procurement
		out = append(out, &clone)
	}
	return out, nil
}

func (s *fakeProcurementStore) Create(_ context.Context, procurement *types.Procurement) error {
	if s.failCreates > 0 {
		s.failCreates--
		return types.ErrDuplicateReferenceNo
	}
	for _, existing := range s.procurements {
		if existing.ReferenceNo == procurement.ReferenceNo {
			return types.ErrDuplicateReferenceNo
		}
	}
	clone := *procurement
	s.procurements[procurement.ID] = &clone
	return nil
}

func (s *fakeProcurementStore) Update(_ context.Context, procurement *types.Procurement) error {
	if _, ok := s.procurements[procurement.ID]; !ok {
		return types.ErrProcurementNotFound
	}
	clone := *procurement
	s.procurements[procurement.ID] = &clone
	return nil
}

func (s *fakeProcurementStore) SetStatus(_ context.Context, procurementID string, status types.ProcurementStatus, at time.Time) error {
	procurement, ok := s.procurements[procurementID]
	if !ok {
		return types.ErrProcurementNotFound
	}
	procurement.Status = status
	procurement.UpdatedAt = at
	return nil
}

func (s *fakeProcurementStore) Delete(_ context.Context, procurementID string) error {
	if _, ok := s.procurements[procurementID]; !ok {
		return types.ErrProcurementNotFound
	}
	delete(s.procurements, procurementID)
	return nil
}

func (s *fakeProcurementStore) CountByReferencePrefix(_ context.Context, prefix string) (int, error) {
	var count int
	for _, procurement := range s.procurements {
		if strings.HasPrefix(procurement.ReferenceNo, prefix) {
			count++
		}
	}
	return count, nil
}

type fakeContractorStore struct {
	contractors map[string]*types.Contractor
}

func newFakeContractorStore() *fakeContractorStore {
	return &fakeContractorStore{contractors: map[string]*types.Contractor{}}
}

func (s *fakeContractorStore) Contractor(_ context.Context, contractorID string) (*types.Contractor, error) {
	contractor, ok := s.contractors[contractorID]
	if !ok {
		return nil, types.ErrContractorNotFound
	}
	clone := *contractor
	return &clone, nil
}

func (s *fakeContractorStore) ByNumber(_ context.Context, contractorNo string) (*types.Contractor, error) {
	for _, contractor := range s.contractors {
		if contractor.ContractorNo == contractorNo {
			clone := *contractor
			return &clone, nil
		}
	}
	return nil, types.ErrContractorNotFound
}

func (s *fakeContractorStore) ContractorsByIDs(_ context.Context, contractorIDs []string) ([]*types.Contractor, error) {
	var out []*types.Contractor
	for _, id := range contractorIDs {
		if contractor, ok := s.contractors[id]; ok {
			clone := *contractor
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (s *fakeContractorStore) Contractors(_ context.Context, filter types.ContractorFilter) ([]*types.Contractor, error) {
	var out []*types.Contractor
	for _, contractor := range s.contractors {
		if filter.Status != "" && string(contractor.Status) != filter.Status {
			continue
		}
		clone := *contractor
		out = append(out, &clone)
	}
	return out, nil
}

func (s *fakeContractorStore) Create(_ context.Context, contractor *types.Contractor) error {
	for _, existing := range s.contractors {
		if existing.ContractorNo == contractor.ContractorNo {
			return types.ErrDuplicateContractorNo
		}
	}
	clone := *contractor
	s.contractors[contractor.ID] = &clone
	return nil
}

func (s *fakeContractorStore) Update(_ context.Context, contractor *types.Contractor) error {
	if _, ok := s.contractors[contractor.ID]; !ok {
		return types.ErrContractorNotFound
	}
	clone := *contractor
	s.contractors[contractor.ID] = &clone
	return nil
}

func (s *fakeContractorStore) CountByNumberPrefix(_ context.Context, prefix string) (int, error) {
	var count int
	for _, contractor := range s.contractors {
		if strings.HasPrefix(contractor.ContractorNo, prefix) {
			count++
		}
	}
	return count, nil
}

type fakeDocumentStore struct {
	documents map[string]*types.ProcurementDocument
}

func newFakeDocumentStore() *fakeDocumentStore {
	return &fakeDocumentStore{documents: map[string]*types.ProcurementDocument{}}
}

func (s *fakeDocumentStore) Document(_ context.Context, documentID string) (*types.ProcurementDocument, error) {
	document, ok := s.documents[documentID]
	if !ok {
		return nil, types.ErrDocumentNotFound
	}
	clone := *document
	return &clone, nil
}

func (s *fakeDocumentStore) ByProcurement(ctx context.Context, procurementID string) ([]*types.ProcurementDocument, error) {
	return s.ByProcurements(ctx, []string{procurementID})
}

func (s *fakeDocumentStore) ByProcurements(_ context.Context, procurementIDs []string) ([]*types.ProcurementDocument, error) {
	wanted := map[string]struct{}{}
	for _, id := range procurementIDs {
		wanted[id] = struct{}{}
	}
	out := []*types.ProcurementDocument{}
	for _, document := range s.documents {
		if _, ok := wanted[document.ProcurementID]; ok {
			clone := *document
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (s *fakeDocumentStore) Create(_ context.Context, document *types.ProcurementDocument) error {
	clone := *document
	s.documents[document.ID] = &clone
	return nil
}

func (s *fakeDocumentStore) Delete(_ context.Context, documentID string) error {
	if _, ok := s.documents[documentID]; !ok {
		return types.ErrDocumentNotFound
	}
	delete(s.documents, documentID)
	return nil
}

type fakeBidStore struct {
	bids   map[string]*types.Bid
	events []*types.BidEvent

	// procurements, when set, lets AwardWithEvent flip the procurement
	// status the way the transactional repository does.
	procurements *fakeProcurementStore
}

func newFakeBidStore() *fakeBidStore {
	return &fakeBidStore{bids: map[string]*types.Bid{}}
}

func (s *fakeBidStore) Bid(_ context.Context, bidID string) (*types.Bid, error) {
	bid, ok := s.bids[bidID]
	if !ok {
		return nil, types.ErrBidNotFound
	}
	clone := *bid
	return &clone, nil
}

func (s *fakeBidStore) ForPair(_ context.Context, procurementID, contractorID string) (*types.Bid, error) {
	for _, bid := range s.bids {
		if bid.ProcurementID == procurementID && bid.ContractorID == contractorID {
			clone := *bid
			return &clone, nil
		}
	}
	return nil, types.ErrBidNotFound
}

func (s *fakeBidStore) Awarded(_ context.Context, procurementID string) (*types.Bid, error) {
	for _, bid := range s.bids {
		if bid.ProcurementID == procurementID && bid.Status == types.BidStatusAwarded {
			clone := *bid
			return &clone, nil
		}
	}
	return nil, types.ErrBidNotFound
}

func (s *fakeBidStore) ByProcurement(_ context.Context, procurementID string, filter types.BidFilter) ([]*types.Bid, error) {
	out := []*types.Bid{}
	for _, bid := range s.bids {
		if bid.ProcurementID != procurementID {
			continue
		}
		if filter.Status != "" && string(bid.Status) != filter.Status {
			continue
		}
		clone := *bid
		out = append(out, &clone)
	}
	return out, nil
}

func (s *fakeBidStore) ByContractor(_ context.Context, contractorID string) ([]*types.Bid, error) {
	out := []*types.Bid{}
	for _, bid := range s.bids {
		if bid.ContractorID == contractorID {
			clone := *bid
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (s *fakeBidStore) Events(_ context.Context, bidIDs []string) ([]*types.BidEvent, error) {
	wanted := map[string]struct{}{}
	for _, id := range bidIDs {
		wanted[id] = struct{}{}
	}
	// Newest first, matching the repository's ordering.
	out := []*types.BidEvent{}
	for i := len(s.events) - 1; i >= 0; i-- {
		event := s.events[i]
		if _, ok := wanted[event.BidID]; ok {
			clone := *event
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (s *fakeBidStore) CreateWithEvent(_ context.Context, bid *types.Bid, event *types.BidEvent) error {
	for _, existing := range s.bids {
		if existing.ProcurementID == bid.ProcurementID && existing.ContractorID == bid.ContractorID {
			return types.ErrDuplicateBid
		}
	}
	clone := *bid
	s.bids[bid.ID] = &clone
	s.appendEvent(event)
	return nil
}

func (s *fakeBidStore) UpdateWithEvent(_ context.Context, bid *types.Bid, event *types.BidEvent) error {
	if _, ok := s.bids[bid.ID]; !ok {
		return types.ErrBidNotFound
	}
	clone := *bid
	s.bids[bid.ID] = &clone
	s.appendEvent(event)
	return nil
}

func (s *fakeBidStore) SetStatusWithEvent(_ context.Context, bidID string, status types.BidStatus, at time.Time, event *types.BidEvent) error {
	bid, ok := s.bids[bidID]
	if !ok {
		return types.ErrBidNotFound
	}
	bid.Status = status
	bid.UpdatedAt = at
	s.appendEvent(event)
	return nil
}

func (s *fakeBidStore) AwardWithEvent(ctx context.Context, bid *types.Bid, at time.Time, event *types.BidEvent) error {
	for _, existing := range s.bids {
		if existing.ProcurementID == bid.ProcurementID &&
			existing.ID != bid.ID &&
			existing.Status == types.BidStatusAwarded {
			return types.ErrAnotherBidAwarded
		}
	}
	stored, ok := s.bids[bid.ID]
	if !ok {
		return types.ErrBidNotFound
	}
	stored.Status = types.BidStatusAwarded
	stored.UpdatedAt = at
	s.appendEvent(event)

	if s.procurements != nil {
		return s.procurements.SetStatus(ctx, bid.ProcurementID, types.ProcurementStatusAwarded, at)
	}
	return nil
}

func (s *fakeBidStore) appendEvent(event *types.BidEvent) {
	clone := *event
	s.events = append(s.events, &clone)
}

func (s *fakeBidStore) eventsFor(bidID string) []*types.BidEvent {
	out := []*types.BidEvent{}
	for _, event := range s.events {
		if event.BidID == bidID {
			out = append(out, event)
		}
	}
	return out
}

type fakeMailer struct {
	sent []fakeMail
	err  error
}

type fakeMail struct {
	to      string
	subject string
	body    string
}

func (m *fakeMailer) Send(_ context.Context, to, subject, body string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, fakeMail{to: to, subject: subject, body: body})
	return nil
}
