package usecase

import "time"

// RECOMMEND USECASE

// RecommendReq — запрос рекомендации поставщиков для позиции котировки.
type RecommendReq struct {
	ProductName string
	Spec        string
	Brand       string
	Limit       int
}

// RecommendRes — упорядоченный список рекомендованных поставщиков.
type RecommendRes struct {
	Suppliers []SupplierRecommendation
}

// SupplierRecommendation — агрегированная запись одного поставщика.
type SupplierRecommendation struct {
	SupplierID      int64
	CompanyName     string
	ContactName     string
	ContactPhone    string
	AggregateScore  float64
	MaxSimilarity   float64
	MeanSimilarity  float64
	TotalQuoteCount int64
	Brands          []string
	MatchedProducts []MatchedProduct
}

// MatchedProduct — продукт поставщика, попавший в выдачу поиска.
type MatchedProduct struct {
	ProductID    int64
	ProductName  string
	ProductModel string
	Brand        string
	LastPrice    int64
	QuoteCount   int64
	Similarity   float64
	Composite    float64
}

// SEARCH USECASE

// SearchReq — запрос поиска похожих продуктов.
// TopK <= 0 и Threshold <= 0 заменяются значениями по умолчанию из конфигурации.
type SearchReq struct {
	ProductName string
	Spec        string
	Brand       string
	TopK        int
	Threshold   float64
}

// SearchCandidate — кандидат из векторного поиска на уровне продукта.
type SearchCandidate struct {
	ProductID     int64
	SupplierID    int64
	ProductName   string
	ProductModel  string
	Brand         string
	EmbeddingText string
	QuoteCount    int64
	Similarity    float64
}

// VectorSearchReq — явный запрос к векторному хранилищу.
// Опциональный фильтр выражен полем, а не конкатенацией строк.
type VectorSearchReq struct {
	Vector    []float32
	Brand     string // пустая строка — без фильтра
	Limit     uint64
	Threshold float32
}

// INDEX USECASE

// RebuildStats — счетчики полной перестройки индекса.
// Инвариант: Total == Success + Failed.
type RebuildStats struct {
	Total   int
	Success int
	Failed  int
}

// MissingStats — счетчики инкрементальной индексации.
type MissingStats struct {
	Total   int
	Indexed int
}

// IndexStatsRes — сводка состояния индекса.
type IndexStatsRes struct {
	DBProductCount   int64
	QdrantPointCount uint64
	CollectionName   string
}

// CATALOG USECASE

// RegisterQuotedProductReq — запрос регистрации позиции котировки поставщика.
type RegisterQuotedProductReq struct {
	CompanyName  string
	ContactName  string
	ContactPhone string
	Brand        string
	ProductName  string
	ProductModel string
	LastPrice    int64
}

// RegisterQuotedProductRes — результат регистрации.
type RegisterQuotedProductRes struct {
	ProductID  int64
	SupplierID int64
	Indexed    bool
}

// INFRASTRUCTURE

type EmbeddingEventType string

const (
	EventEmbeddingUpserted EmbeddingEventType = "embedding_upserted"
	EventEmbeddingRemoved  EmbeddingEventType = "embedding_removed"
)

// EmbeddingEvent — событие жизненного цикла эмбеддинга для внешних потребителей.
type EmbeddingEvent struct {
	EventID    string             `json:"event_id"`
	EventType  EmbeddingEventType `json:"event_type"`
	ProductID  int64              `json:"product_id"`
	SupplierID int64              `json:"supplier_id,omitempty"`
	OccurredAt int64              `json:"occurred_at"`
}

// REPOSITORIES

type ReindexStatus string

const (
	ReindexPending    ReindexStatus = "pending"
	ReindexProcessing ReindexStatus = "processing"
	ReindexProcessed  ReindexStatus = "processed"
	ReindexFailed     ReindexStatus = "failed"
)

// ReindexEvent — запись очереди отложенной переиндексации.
type ReindexEvent struct {
	ID                  int64
	EventID             string
	ProductID           int64
	Status              ReindexStatus
	Attempts            int
	NextRetryAt         time.Time
	CreatedAt           time.Time
	ProcessingStartedAt *time.Time
	ProcessedAt         *time.Time
}

// SupplierInfo — DTO поставщика для кэша и выдачи.
type SupplierInfo struct {
	ID           int64
	CompanyName  string
	ContactName  string
	ContactPhone string
}

// MAPPERS

func NewRecommendReq(productName, spec, brand string, limit int) *RecommendReq {
	return &RecommendReq{
		ProductName: productName,
		Spec:        spec,
		Brand:       brand,
		Limit:       limit,
	}
}

func NewRecommendRes(suppliers []SupplierRecommendation) *RecommendRes {
	return &RecommendRes{Suppliers: suppliers}
}

func NewSearchReq(productName, spec, brand string, topK int, threshold float64) *SearchReq {
	return &SearchReq{
		ProductName: productName,
		Spec:        spec,
		Brand:       brand,
		TopK:        topK,
		Threshold:   threshold,
	}
}

func NewVectorSearchReq(vector []float32, brand string, limit uint64, threshold float32) *VectorSearchReq {
	return &VectorSearchReq{
		Vector:    vector,
		Brand:     brand,
		Limit:     limit,
		Threshold: threshold,
	}
}

func NewSupplierInfo(id int64, companyName, contactName, contactPhone string) SupplierInfo {
	return SupplierInfo{
		ID:           id,
		CompanyName:  companyName,
		ContactName:  contactName,
		ContactPhone: contactPhone,
	}
}

func NewReindexEvent(eventID string, productID int64) *ReindexEvent {
	return &ReindexEvent{
		EventID:   eventID,
		ProductID: productID,
		Status:    ReindexPending,
	}
}
