package pgdb

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
	"github.com/smart-procure/go-backend/internal/domain"
	"github.com/smart-procure/go-backend/internal/repository/pgdb/converter"
	"github.com/smart-procure/go-backend/pkg/e"
	"github.com/smart-procure/go-backend/pkg/tr"
)

// ProductRepo реализует каталог позиций котировок поверх PostgreSQL.
type ProductRepo struct {
	pool *pgxpool.Pool
	conv converter.ProductConverter
}

func NewProductRepo(pool *pgxpool.Pool, conv converter.ProductConverter) *ProductRepo {
	return &ProductRepo{
		pool: pool,
		conv: conv,
	}
}

// Upsert идемпотентно создает или обновляет позицию по ключу
// (supplier_id, brand, product_name, product_model). Повторная котировка
// обновляет цену и увеличивает счетчик котировок.
func (p *ProductRepo) Upsert(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	query := `
		INSERT INTO supplier_products (supplier_id, brand, product_name, product_model, last_price, quote_count)
		VALUES ($1, $2, $3, $4, $5, 1)
		ON CONFLICT (supplier_id, brand, product_name, product_model)
		DO UPDATE SET
			last_price = EXCLUDED.last_price,
			quote_count = supplier_products.quote_count + 1,
			updated_at = NOW()
		RETURNING
			id, supplier_id, brand, product_name, product_model, last_price, quote_count, created_at, updated_at;
	`

	var model converter.ProductModel
	err = tx.QueryRow(ctx, query,
		product.SupplierID, product.Brand, product.ProductName, product.ProductModel, product.LastPrice,
	).Scan(
		&model.ID, &model.SupplierID, &model.Brand, &model.ProductName, &model.ProductModel,
		&model.LastPrice, &model.QuoteCount, &model.CreatedAt, &model.UpdatedAt,
	)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return p.conv.ToEntity(&model), nil
}

// GetByIDs возвращает продукты по списку идентификаторов.
// Отсутствующие идентификаторы молча пропускаются.
func (p *ProductRepo) GetByIDs(ctx context.Context, ids []int64) ([]domain.Product, error) {
	query := `
		SELECT id, supplier_id, brand, product_name, product_model, last_price, quote_count, created_at, updated_at
		FROM supplier_products
		WHERE id = ANY($1)
	`

	rows, err := p.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	return p.scanProducts(rows)
}

// List возвращает страницу каталога в стабильном порядке по id.
func (p *ProductRepo) List(ctx context.Context, limit, offset int) ([]domain.Product, error) {
	query := `
		SELECT id, supplier_id, brand, product_name, product_model, last_price, quote_count, created_at, updated_at
		FROM supplier_products
		ORDER BY id
		LIMIT $1 OFFSET $2
	`

	rows, err := p.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	return p.scanProducts(rows)
}

// ListIDs возвращает идентификаторы всех продуктов каталога.
func (p *ProductRepo) ListIDs(ctx context.Context) ([]int64, error) {
	rows, err := p.pool.Query(ctx, `SELECT id FROM supplier_products ORDER BY id`)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// Count возвращает размер каталога.
func (p *ProductRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := p.pool.QueryRow(ctx, `SELECT COUNT(*) FROM supplier_products`).Scan(&count); err != nil {
		return 0, e.Wrap(whereami.WhereAmI(), err)
	}

	return count, nil
}

// Delete удаляет позицию каталога. Эмбеддинг удаляется отдельным хуком.
func (p *ProductRepo) Delete(ctx context.Context, id int64) error {
	result, err := p.pool.Exec(ctx, `DELETE FROM supplier_products WHERE id = $1`, id)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if result.RowsAffected() == 0 {
		return e.Wrap(whereami.WhereAmI(), e.ErrProductNotFound)
	}

	return nil
}

func (p *ProductRepo) scanProducts(rows pgx.Rows) ([]domain.Product, error) {
	models := make([]*converter.ProductModel, 0)
	for rows.Next() {
		var model converter.ProductModel
		if err := rows.Scan(
			&model.ID, &model.SupplierID, &model.Brand, &model.ProductName, &model.ProductModel,
			&model.LastPrice, &model.QuoteCount, &model.CreatedAt, &model.UpdatedAt,
		); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}

		models = append(models, &model)
	}

	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return p.conv.ToArrEntity(models), nil
}
