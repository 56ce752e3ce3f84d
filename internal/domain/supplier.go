package domain

import "time"

// Supplier описывает поставщика из справочника
type Supplier struct {
	ID            int64
	CompanyName   string
	ContactName   string
	ContactPhone  string
	QuoteCount    int64
	LastQuoteDate *time.Time
	CreatedAt     time.Time
	UpdatedAt     *time.Time
}

func NewSupplier(companyName, contactName, contactPhone string) *Supplier {
	return &Supplier{
		CompanyName:  companyName,
		ContactName:  contactName,
		ContactPhone: contactPhone,
	}
}
