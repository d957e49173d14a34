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

const documentTableName = "tenderd.procurement_documents"

var documentColumns = utils.StructTagValues(types.ProcurementDocument{})

type DocumentRepository struct {
	pool *pgxpool.Pool
}

func NewDocumentRepository(pool *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{pool: pool}
}

func (r *DocumentRepository) Document(ctx context.Context, documentID string) (*types.ProcurementDocument, error) {

	query, args, err := psql().Select(documentColumns...).From(documentTableName).
		Where(sq.Eq{"id": documentID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate document query: %w", err)
	}

	var document = new(types.ProcurementDocument)
	err = pgxscan.Get(ctx, r.pool, document, query, args...)
	if err != nil && !pgxscan.NotFound(err) {
		return nil, err
	}

	if err != nil {
		return nil, types.ErrDocumentNotFound
	}

	return document, nil
}

func (r *DocumentRepository) ByProcurement(ctx context.Context, procurementID string) ([]*types.ProcurementDocument, error) {
	return r.ByProcurements(ctx, []string{procurementID})
}

func (r *DocumentRepository) ByProcurements(ctx context.Context, procurementIDs []string) ([]*types.ProcurementDocument, error) {

	if len(procurementIDs) == 0 {
		return []*types.ProcurementDocument{}, nil
	}

	query, args, err := psql().Select(documentColumns...).From(documentTableName).
		Where(sq.Eq{"procurement_id": procurementIDs}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate documents query: %w", err)
	}

	var documents = make([]*types.ProcurementDocument, 0)
	err = pgxscan.Select(ctx, r.pool, &documents, query, args...)
	if err != nil {
		return nil, err
	}

	return documents, nil
}

func (r *DocumentRepository) Create(ctx context.Context, document *types.ProcurementDocument) error {

	query, args, err := psql().Insert(documentTableName).
		SetMap(utils.StructToMap(document)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert document query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)

	return utils.ErrorWrapOrNil(err, "failed to create document")
}

func (r *DocumentRepository) Delete(ctx context.Context, documentID string) error {

	query, args, err := psql().Delete(documentTableName).
		Where(sq.Eq{"id": documentID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate delete document query for document %s: %w", documentID, err)
	}

	_, err = r.pool.Exec(ctx, query, args...)

	return utils.ErrorWrapOrNil(err, "failed to delete document")
}
