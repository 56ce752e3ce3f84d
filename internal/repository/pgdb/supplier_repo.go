package pgdb

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
	"github.com/smart-procure/go-backend/internal/domain"
	"github.com/smart-procure/go-backend/internal/repository/pgdb/converter"
	"github.com/smart-procure/go-backend/pkg/e"
	"github.com/smart-procure/go-backend/pkg/tr"
)

// SupplierRepo реализует справочник поставщиков поверх PostgreSQL.
type SupplierRepo struct {
	pool *pgxpool.Pool
	conv converter.SupplierConverter
}

func NewSupplierRepo(pool *pgxpool.Pool, conv converter.SupplierConverter) *SupplierRepo {
	return &SupplierRepo{
		pool: pool,
		conv: conv,
	}
}

// Upsert идемпотентно создает или обновляет поставщика по уникальному имени компании.
// Повторная котировка обновляет контакты и увеличивает счетчик котировок.
func (s *SupplierRepo) Upsert(ctx context.Context, supplier *domain.Supplier) (*domain.Supplier, error) {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	query := `
		INSERT INTO suppliers (company_name, contact_name, contact_phone, quote_count, last_quote_date)
		VALUES ($1, $2, $3, 1, NOW())
		ON CONFLICT (company_name)
		DO UPDATE SET
			contact_name = CASE WHEN EXCLUDED.contact_name <> '' THEN EXCLUDED.contact_name ELSE suppliers.contact_name END,
			contact_phone = CASE WHEN EXCLUDED.contact_phone <> '' THEN EXCLUDED.contact_phone ELSE suppliers.contact_phone END,
			quote_count = suppliers.quote_count + 1,
			last_quote_date = NOW(),
			updated_at = NOW()
		RETURNING
			id, company_name, contact_name, contact_phone, quote_count, last_quote_date, created_at, updated_at;
	`

	var model converter.SupplierModel
	err = tx.QueryRow(ctx, query, supplier.CompanyName, supplier.ContactName, supplier.ContactPhone).
		Scan(
			&model.ID, &model.CompanyName, &model.ContactName, &model.ContactPhone,
			&model.QuoteCount, &model.LastQuoteDate, &model.CreatedAt, &model.UpdatedAt,
		)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return s.conv.ToEntity(&model), nil
}

// GetByIDs возвращает поставщиков по списку идентификаторов.
func (s *SupplierRepo) GetByIDs(ctx context.Context, ids []int64) ([]domain.Supplier, error) {
	query := `
		SELECT id, company_name, contact_name, contact_phone, quote_count, last_quote_date, created_at, updated_at
		FROM suppliers
		WHERE id = ANY($1)
	`

	rows, err := s.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	models := make([]*converter.SupplierModel, 0)
	for rows.Next() {
		var model converter.SupplierModel
		if err := rows.Scan(
			&model.ID, &model.CompanyName, &model.ContactName, &model.ContactPhone,
			&model.QuoteCount, &model.LastQuoteDate, &model.CreatedAt, &model.UpdatedAt,
		); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}

		models = append(models, &model)
	}

	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return s.conv.ToArrEntity(models), nil
}
