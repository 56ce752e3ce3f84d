package converter

// SupplierInfoRedisModel — сериализуемое представление поставщика в Redis.
type SupplierInfoRedisModel struct {
	ID           int64  `json:"id"`
	CompanyName  string `json:"company_name"`
	ContactName  string `json:"contact_name"`
	ContactPhone string `json:"contact_phone"`
}
