package domain

import "time"

// Product описывает позицию котировки поставщика (строку прайса)
type Product struct {
	ID           int64
	SupplierID   int64
	Brand        string
	ProductName  string
	ProductModel string
	LastPrice    int64 // Цена хранится в копейках
	QuoteCount   int64
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}

func NewProduct(supplierID int64, brand, name, model string, lastPrice int64) *Product {
	return &Product{
		SupplierID:   supplierID,
		Brand:        brand,
		ProductName:  name,
		ProductModel: model,
		LastPrice:    lastPrice,
	}
}
