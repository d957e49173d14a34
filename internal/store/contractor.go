package store

import (
	"context"
	"fmt"

	"tenderd/internal/utils"
	"tenderd/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const contractorTableName = "tenderd.contractors"

var contractorColumns = utils.StructTagValues(types.Contractor{})

type ContractorRepository struct {
	pool *pgxpool.Pool
}

func NewContractorRepository(pool *pgxpool.Pool) *ContractorRepository {
	return &ContractorRepository{pool: pool}
}

func (r *ContractorRepository) Contractor(ctx context.Context, contractorID string) (*types.Contractor, error) {

	query, args, err := psql().Select(contractorColumns...).From(contractorTableName).
		Where(sq.Eq{"id": contractorID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate contractor query: %w", err)
	}

	var contractor = new(types.Contractor)
	err = pgxscan.Get(ctx, r.pool, contractor, query, args...)
	if err != nil && !pgxscan.NotFound(err) {
		return nil, err
	}

	if err != nil {
		return nil, types.ErrContractorNotFound
	}

	return contractor, nil
}

func (r *ContractorRepository) ByNumber(ctx context.Context, contractorNo string) (*types.Contractor, error) {

	query, args, err := psql().Select(contractorColumns...).From(contractorTableName).
		Where(sq.Eq{"contractor_no": contractorNo}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate contractor by number query: %w", err)
	}

	var contractor = new(types.Contractor)
	err = pgxscan.Get(ctx, r.pool, contractor, query, args...)
	if err != nil && !pgxscan.NotFound(err) {
		return nil, err
	}

	if err != nil {
		return nil, types.ErrContractorNotFound
	}

	return contractor, nil
}

func (r *ContractorRepository) ContractorsByIDs(ctx context.Context, contractorIDs []string) ([]*types.Contractor, error) {

	if len(contractorIDs) == 0 {
		return []*types.Contractor{}, nil
	}

	query, args, err := psql().Select(contractorColumns...).From(contractorTableName).
		Where(sq.Eq{"id": contractorIDs}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate contractors by ids query: %w", err)
	}

	var contractors = make([]*types.Contractor, 0, len(contractorIDs))
	err = pgxscan.Select(ctx, r.pool, &contractors, query, args...)
	if err != nil {
		return nil, err
	}

	return contractors, nil
}

func (r *ContractorRepository) Contractors(ctx context.Context, filter types.ContractorFilter) ([]*types.Contractor, error) {

	builder := psql().Select(contractorColumns...).From(contractorTableName).
		OrderBy("company_name ASC")

	if filter.Search != "" {
		like := likePattern(filter.Search)
		builder = builder.Where(sq.Or{
			sq.ILike{"contractor_no": like},
			sq.ILike{"company_name": like},
		})
	}
	if filter.Status != "" {
		builder = builder.Where(sq.Eq{"status": filter.Status})
	}
	if filter.MajorArea != "" {
		builder = builder.Where(sq.Eq{"major_area": filter.MajorArea})
	}
	if filter.StateOfOrigin != "" {
		builder = builder.Where(sq.Eq{"state_of_origin": filter.StateOfOrigin})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate contractors query: %w", err)
	}

	var contractors = make([]*types.Contractor, 0)
	err = pgxscan.Select(ctx, r.pool, &contractors, query, args...)
	if err != nil {
		return nil, err
	}

	return contractors, nil
}

func (r *ContractorRepository) Create(ctx context.Context, contractor *types.Contractor) error {

	query, args, err := psql().Insert(contractorTableName).
		SetMap(utils.StructToMap(contractor)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert contractor query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	if uniqueViolation(err, "contractors_contractor_no_key") {
		return types.ErrDuplicateContractorNo
	}

	return utils.ErrorWrapOrNil(err, "failed to create contractor")
}

func (r *ContractorRepository) Update(ctx context.Context, contractor *types.Contractor) error {

	query, args, err := psql().Update(contractorTableName).
		SetMap(utils.StructToMap(contractor)).
		Where(sq.Eq{"id": contractor.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate update contractor query for contractor %s: %w", contractor.ID, err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	if uniqueViolation(err, "contractors_contractor_no_key") {
		return types.ErrDuplicateContractorNo
	}

	return utils.ErrorWrapOrNil(err, "failed to update contractor")
}

// CountByNumberPrefix counts contractors whose number starts with prefix,
// for the contractor-number generator.
func (r *ContractorRepository) CountByNumberPrefix(ctx context.Context, prefix string) (int, error) {

	query, args, err := psql().Select("count(1)").From(contractorTableName).
		Where(sq.Like{"contractor_no": prefix + "%"}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to generate contractor number count query: %w", err)
	}

	var count int
	err = pgxscan.Get(ctx, r.pool, &count, query, args...)
	if err != nil {
		return 0, err
	}

	return count, nil
}
