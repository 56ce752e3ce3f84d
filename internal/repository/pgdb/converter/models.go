package converter

import "time"

// ProductModel представляет запись таблицы supplier_products в PostgreSQL.
type ProductModel struct {
	ID           int64      `db:"id"`
	SupplierID   int64      `db:"supplier_id"`
	Brand        string     `db:"brand"`
	ProductName  string     `db:"product_name"`
	ProductModel string     `db:"product_model"`
	LastPrice    int64      `db:"last_price"`
	QuoteCount   int64      `db:"quote_count"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    *time.Time `db:"updated_at"`
}

// SupplierModel представляет запись таблицы suppliers в PostgreSQL.
type SupplierModel struct {
	ID            int64      `db:"id"`
	CompanyName   string     `db:"company_name"`
	ContactName   string     `db:"contact_name"`
	ContactPhone  string     `db:"contact_phone"`
	QuoteCount    int64      `db:"quote_count"`
	LastQuoteDate *time.Time `db:"last_quote_date"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     *time.Time `db:"updated_at"`
}

// ReindexEventModel представляет запись таблицы index_outbox в PostgreSQL.
type ReindexEventModel struct {
	ID                  int64      `db:"id"`
	EventID             string     `db:"event_id"`
	ProductID           int64      `db:"product_id"`
	Status              string     `db:"status"`
	Attempts            int        `db:"attempts"`
	NextRetryAt         time.Time  `db:"next_retry_at"`
	CreatedAt           time.Time  `db:"created_at"`
	ProcessingStartedAt *time.Time `db:"processing_started_at"`
	ProcessedAt         *time.Time `db:"processed_at"`
}
