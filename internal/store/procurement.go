package store

import (
	"context"
	"fmt"
	"time"

	"tenderd/internal/utils"
	"tenderd/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const procurementTableName = "tenderd.procurements"

var procurementColumns = utils.StructTagValues(types.Procurement{})

type ProcurementRepository struct {
	pool *pgxpool.Pool
}

func NewProcurementRepository(pool *pgxpool.Pool) *ProcurementRepository {
	return &ProcurementRepository{pool: pool}
}

func (r *ProcurementRepository) Procurement(ctx context.Context, procurementID string) (*types.Procurement, error) {

	query, args, err := psql().Select(procurementColumns...).From(procurementTableName).
		Where(sq.Eq{"id": procurementID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate procurement query: %w", err)
	}

	var procurement = new(types.Procurement)
	err = pgxscan.Get(ctx, r.pool, procurement, query, args...)
	if err != nil && !pgxscan.NotFound(err) {
		return nil, err
	}

	if err != nil {
		return nil, types.ErrProcurementNotFound
	}

	return procurement, nil
}

func (r *ProcurementRepository) ProcurementsByIDs(ctx context.Context, procurementIDs []string) ([]*types.Procurement, error) {

	if len(procurementIDs) == 0 {
		return []*types.Procurement{}, nil
	}

	query, args, err := psql().Select(procurementColumns...).From(procurementTableName).
		Where(sq.Eq{"id": procurementIDs}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate procurements by ids query: %w", err)
	}

	var procurements = make([]*types.Procurement, 0, len(procurementIDs))
	err = pgxscan.Select(ctx, r.pool, &procurements, query, args...)
	if err != nil {
		return nil, err
	}

	return procurements, nil
}

// procurementRow carries the aggregated bid count alongside the entity
// columns for list queries.
type procurementRow struct {
	types.Procurement
	BidCount int64 `db:"bid_count"`
}

func (r *ProcurementRepository) Procurements(ctx context.Context, filter types.ProcurementFilter) ([]*types.Procurement, error) {

	columns := utils.PrefixSliceOfStrings("p", procurementColumns)

	builder := psql().Select(append(columns, "count(b.id) AS bid_count")...).
		From(procurementTableName + " p").
		LeftJoin("tenderd.bids b ON b.procurement_id = p.id").
		GroupBy("p.id").
		OrderBy("p.created_at DESC")

	if filter.Search != "" {
		like := likePattern(filter.Search)
		builder = builder.Where(sq.Or{
			sq.ILike{"p.title": like},
			sq.ILike{"p.reference_no": like},
		})
	}
	if filter.Status != "" {
		builder = builder.Where(sq.Eq{"p.status": filter.Status})
	}
	if filter.Location != "" {
		builder = builder.Where(sq.Eq{"p.location": filter.Location})
	}
	if filter.Category != "" {
		builder = builder.Where(sq.Eq{"p.category": filter.Category})
	}
	if filter.Type != "" {
		builder = builder.Where(sq.Eq{"p.type": filter.Type})
	}
	if filter.CreatedBy != "" {
		builder = builder.Where(sq.Eq{"p.created_by": filter.CreatedBy})
	}
	if filter.DeadlineFrom != nil {
		builder = builder.Where(sq.GtOrEq{"p.submission_deadline": *filter.DeadlineFrom})
	}
	if filter.DeadlineTo != nil {
		builder = builder.Where(sq.LtOrEq{"p.submission_deadline": *filter.DeadlineTo})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate procurements query: %w", err)
	}

	var rows = make([]*procurementRow, 0)
	err = pgxscan.Select(ctx, r.pool, &rows, query, args...)
	if err != nil {
		return nil, err
	}

	procurements := make([]*types.Procurement, 0, len(rows))
	for _, row := range rows {
		procurement := row.Procurement
		procurement.BidCount = row.BidCount
		procurements = append(procurements, &procurement)
	}

	return procurements, nil
}

func (r *ProcurementRepository) Create(ctx context.Context, procurement *types.Procurement) error {

	query, args, err := psql().Insert(procurementTableName).
		SetMap(utils.StructToMap(procurement)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert procurement query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	if uniqueViolation(err, "procurements_reference_no_key") {
		return types.ErrDuplicateReferenceNo
	}

	return utils.ErrorWrapOrNil(err, "failed to create procurement")
}

func (r *ProcurementRepository) Update(ctx context.Context, procurement *types.Procurement) error {

	query, args, err := psql().Update(procurementTableName).
		SetMap(utils.StructToMap(procurement)).
		Where(sq.Eq{"id": procurement.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate update procurement query for procurement %s: %w", procurement.ID, err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	if uniqueViolation(err, "procurements_reference_no_key") {
		return types.ErrDuplicateReferenceNo
	}

	return utils.ErrorWrapOrNil(err, "failed to update procurement")
}

func (r *ProcurementRepository) SetStatus(ctx context.Context, procurementID string, status types.ProcurementStatus, at time.Time) error {

	query, args, err := psql().Update(procurementTableName).
		Set("status", status).
		Set("updated_at", at).
		Where(sq.Eq{"id": procurementID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate set procurement status query for procurement %s: %w", procurementID, err)
	}

	_, err = r.pool.Exec(ctx, query, args...)

	return utils.ErrorWrapOrNil(err, "failed to set procurement status")
}

func (r *ProcurementRepository) Delete(ctx context.Context, procurementID string) error {

	query, args, err := psql().Delete(procurementTableName).
		Where(sq.Eq{"id": procurementID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate delete procurement query for procurement %s: %w", procurementID, err)
	}

	_, err = r.pool.Exec(ctx, query, args...)

	return utils.ErrorWrapOrNil(err, "failed to delete procurement")
}

// CountByReferencePrefix counts procurements whose reference number starts
// with prefix. The reference generator reads this count and relies on the
// unique constraint to catch concurrent generation.
func (r *ProcurementRepository) CountByReferencePrefix(ctx context.Context, prefix string) (int, error) {

	query, args, err := psql().Select("count(1)").From(procurementTableName).
		Where(sq.Like{"reference_no": prefix + "%"}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to generate reference count query: %w", err)
	}

	var count int
	err = pgxscan.Get(ctx, r.pool, &count, query, args...)
	if err != nil {
		return 0, err
	}

	return count, nil
}
