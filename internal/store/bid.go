package store

import (
	"context"
	"fmt"
	"time"

	"tenderd/internal/utils"
	"tenderd/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	bidTableName      = "tenderd.bids"
	bidEventTableName = "tenderd.bid_events"
)

var (
	bidColumns      = utils.StructTagValues(types.Bid{})
	bidEventColumns = utils.StructTagValues(types.BidEvent{})
)

// BidRepository persists bids and their audit events. Every mutating
// operation writes the bid row and its audit event in one transaction so a
// mutation is never visible without its event, and events never describe a
// rolled-back mutation.
type BidRepository struct {
	pool *pgxpool.Pool
}

func NewBidRepository(pool *pgxpool.Pool) *BidRepository {
	return &BidRepository{pool: pool}
}

func (r *BidRepository) Bid(ctx context.Context, bidID string) (*types.Bid, error) {

	query, args, err := psql().Select(bidColumns...).From(bidTableName).
		Where(sq.Eq{"id": bidID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate bid query: %w", err)
	}

	var bid = new(types.Bid)
	err = pgxscan.Get(ctx, r.pool, bid, query, args...)
	if err != nil && !pgxscan.NotFound(err) {
		return nil, err
	}

	if err != nil {
		return nil, types.ErrBidNotFound
	}

	return bid, nil
}

// ForPair returns the bid for a (procurement, contractor) pair, which the
// schema guarantees is unique.
func (r *BidRepository) ForPair(ctx context.Context, procurementID, contractorID string) (*types.Bid, error) {

	query, args, err := psql().Select(bidColumns...).From(bidTableName).
		Where(sq.Eq{"procurement_id": procurementID, "contractor_id": contractorID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate bid pair query: %w", err)
	}

	var bid = new(types.Bid)
	err = pgxscan.Get(ctx, r.pool, bid, query, args...)
	if err != nil && !pgxscan.NotFound(err) {
		return nil, err
	}

	if err != nil {
		return nil, types.ErrBidNotFound
	}

	return bid, nil
}

// Awarded returns the awarded bid for a procurement, if any.
func (r *BidRepository) Awarded(ctx context.Context, procurementID string) (*types.Bid, error) {

	query, args, err := psql().Select(bidColumns...).From(bidTableName).
		Where(sq.Eq{"procurement_id": procurementID, "status": types.BidStatusAwarded}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate awarded bid query: %w", err)
	}

	var bid = new(types.Bid)
	err = pgxscan.Get(ctx, r.pool, bid, query, args...)
	if err != nil && !pgxscan.NotFound(err) {
		return nil, err
	}

	if err != nil {
		return nil, types.ErrBidNotFound
	}

	return bid, nil
}

func (r *BidRepository) ByProcurement(ctx context.Context, procurementID string, filter types.BidFilter) ([]*types.Bid, error) {

	columns := utils.PrefixSliceOfStrings("b", bidColumns)

	builder := psql().Select(columns...).From(bidTableName + " b").
		Where(sq.Eq{"b.procurement_id": procurementID}).
		OrderBy("b.submitted_at DESC")

	if filter.Status != "" {
		builder = builder.Where(sq.Eq{"b.status": filter.Status})
	}
	if filter.ContractorNo != "" {
		builder = builder.Where(sq.Eq{"b.contractor_no": filter.ContractorNo})
	}
	if filter.Search != "" {
		like := likePattern(filter.Search)
		builder = builder.
			Join("tenderd.contractors c ON c.id = b.contractor_id").
			Where(sq.Or{
				sq.ILike{"b.contractor_no": like},
				sq.ILike{"c.company_name": like},
			})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate bids by procurement query: %w", err)
	}

	var bids = make([]*types.Bid, 0)
	err = pgxscan.Select(ctx, r.pool, &bids, query, args...)
	if err != nil {
		return nil, err
	}

	return bids, nil
}

func (r *BidRepository) ByContractor(ctx context.Context, contractorID string) ([]*types.Bid, error) {

	query, args, err := psql().Select(bidColumns...).From(bidTableName).
		Where(sq.Eq{"contractor_id": contractorID}).
		OrderBy("submitted_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate bids by contractor query: %w", err)
	}

	var bids = make([]*types.Bid, 0)
	err = pgxscan.Select(ctx, r.pool, &bids, query, args...)
	if err != nil {
		return nil, err
	}

	return bids, nil
}

// Events returns the audit events for the given bids, newest first.
func (r *BidRepository) Events(ctx context.Context, bidIDs []string) ([]*types.BidEvent, error) {

	if len(bidIDs) == 0 {
		return []*types.BidEvent{}, nil
	}

	query, args, err := psql().Select(bidEventColumns...).From(bidEventTableName).
		Where(sq.Eq{"bid_id": bidIDs}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate bid events query: %w", err)
	}

	var events = make([]*types.BidEvent, 0)
	err = pgxscan.Select(ctx, r.pool, &events, query, args...)
	if err != nil {
		return nil, err
	}

	return events, nil
}

func (r *BidRepository) CreateWithEvent(ctx context.Context, bid *types.Bid, event *types.BidEvent) error {

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query, args, err := psql().Insert(bidTableName).
		SetMap(utils.StructToMap(bid)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert bid query: %w", err)
	}

	if _, err = tx.Exec(ctx, query, args...); err != nil {
		if uniqueViolation(err, "bids_procurement_contractor_key") {
			return types.ErrDuplicateBid
		}
		return utils.ErrorWrapOrNil(err, "failed to create bid")
	}

	if err := insertBidEvent(ctx, tx, event); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *BidRepository) UpdateWithEvent(ctx context.Context, bid *types.Bid, event *types.BidEvent) error {

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query, args, err := psql().Update(bidTableName).
		SetMap(utils.StructToMap(bid)).
		Where(sq.Eq{"id": bid.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate update bid query for bid %s: %w", bid.ID, err)
	}

	if _, err = tx.Exec(ctx, query, args...); err != nil {
		return utils.ErrorWrapOrNil(err, "failed to update bid")
	}

	if err := insertBidEvent(ctx, tx, event); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *BidRepository) SetStatusWithEvent(ctx context.Context, bidID string, status types.BidStatus, at time.Time, event *types.BidEvent) error {

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := setBidStatus(ctx, tx, bidID, status, at); err != nil {
		return err
	}

	if err := insertBidEvent(ctx, tx, event); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// AwardWithEvent marks a bid awarded, flips its procurement to awarded, and
// appends the audit event, all in one transaction. The partial unique index
// on (procurement_id) WHERE status = 'awarded' is the final guarantee that
// concurrent awards for the same procurement cannot both commit.
func (r *BidRepository) AwardWithEvent(ctx context.Context, bid *types.Bid, at time.Time, event *types.BidEvent) error {

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := setBidStatus(ctx, tx, bid.ID, types.BidStatusAwarded, at); err != nil {
		return err
	}

	query, args, err := psql().Update(procurementTableName).
		Set("status", types.ProcurementStatusAwarded).
		Set("updated_at", at).
		Where(sq.Eq{"id": bid.ProcurementID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate award procurement query for procurement %s: %w", bid.ProcurementID, err)
	}

	if _, err = tx.Exec(ctx, query, args...); err != nil {
		return utils.ErrorWrapOrNil(err, "failed to mark procurement awarded")
	}

	if err := insertBidEvent(ctx, tx, event); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func setBidStatus(ctx context.Context, tx pgx.Tx, bidID string, status types.BidStatus, at time.Time) error {

	query, args, err := psql().Update(bidTableName).
		Set("status", status).
		Set("updated_at", at).
		Where(sq.Eq{"id": bidID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate set bid status query for bid %s: %w", bidID, err)
	}

	if _, err = tx.Exec(ctx, query, args...); err != nil {
		if uniqueViolation(err, "bids_one_awarded_per_procurement") {
			return types.ErrAnotherBidAwarded
		}
		return utils.ErrorWrapOrNil(err, "failed to set bid status")
	}

	return nil
}

func insertBidEvent(ctx context.Context, tx pgx.Tx, event *types.BidEvent) error {

	query, args, err := psql().Insert(bidEventTableName).
		SetMap(utils.StructToMap(event)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert bid event query: %w", err)
	}

	_, err = tx.Exec(ctx, query, args...)

	return utils.ErrorWrapOrNil(err, "failed to append bid event")
}
