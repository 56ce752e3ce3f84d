package usecase

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/smart-procure/go-backend/internal/domain"
)

// stubProvider отдает заранее заданные векторы по точному тексту.
type stubProvider struct {
	vectors map[string][]float32
}

func (s *stubProvider) GetEmbedding(_ context.Context, text string) []float32 {
	return s.vectors[strings.TrimSpace(text)]
}

func (s *stubProvider) GetEmbeddingsBatch(_ context.Context, texts []string, _ int) [][]float32 {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = s.vectors[strings.TrimSpace(text)]
	}
	return out
}

// memVectorStore — векторное хранилище в памяти с канонической выдачей поиска.
type memVectorStore struct {
	mu         sync.Mutex
	points     map[int64]*domain.Embedding
	results    []SearchCandidate
	searchErr  error
	upsertErr  error
	lastSearch *VectorSearchReq
}

func newMemVectorStore() *memVectorStore {
	return &memVectorStore{points: make(map[int64]*domain.Embedding)}
}

func (m *memVectorStore) Upsert(_ context.Context, embedding *domain.Embedding) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.points[embedding.ProductID] = embedding
	return nil
}

func (m *memVectorStore) Delete(_ context.Context, productID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.points, productID)
	return nil
}

// Search отдает каноническую выдачу, если она задана, иначе честно ранжирует
// сохраненные точки по косинусной близости с учетом бренд-фильтра и порога.
func (m *memVectorStore) Search(_ context.Context, req *VectorSearchReq) ([]SearchCandidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastSearch = req
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if m.results != nil {
		return m.results, nil
	}

	out := make([]SearchCandidate, 0, len(m.points))
	for _, point := range m.points {
		if req.Brand != "" && payloadString(point.Payload, "brand") != req.Brand {
			continue
		}
		score := cosine(req.Vector, point.Vector)
		if score < float64(req.Threshold) {
			continue
		}
		out = append(out, SearchCandidate{
			ProductID:     point.ProductID,
			SupplierID:    payloadInt(point.Payload, "supplier_id"),
			ProductName:   payloadString(point.Payload, "product_name"),
			ProductModel:  payloadString(point.Payload, "product_model"),
			Brand:         payloadString(point.Payload, "brand"),
			EmbeddingText: payloadString(point.Payload, "embedding_text"),
			QuoteCount:    payloadInt(point.Payload, "quote_count"),
			Similarity:    score,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Similarity != out[j].Similarity {
			return out[i].Similarity > out[j].Similarity
		}
		return out[i].ProductID < out[j].ProductID
	})
	if req.Limit > 0 && uint64(len(out)) > req.Limit {
		out = out[:req.Limit]
	}

	return out, nil
}

func cosine(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := 0; i < len(a) && i < len(b); i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func payloadString(payload domain.Payload, key string) string {
	s, _ := payload[key].(string)
	return s
}

func payloadInt(payload domain.Payload, key string) int64 {
	n, _ := payload[key].(int64)
	return n
}

func (m *memVectorStore) ExistingIDs(_ context.Context, ids []int64) (map[int64]struct{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[int64]struct{})
	for _, id := range ids {
		if _, ok := m.points[id]; ok {
			out[id] = struct{}{}
		}
	}
	return out, nil
}

func (m *memVectorStore) Count(_ context.Context) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return uint64(len(m.points)), nil
}

// memProductRepo — каталог продуктов в памяти, упорядоченный по ID.
type memProductRepo struct {
	products map[int64]domain.Product
	nextID   int64
}

func newMemProductRepo(products ...domain.Product) *memProductRepo {
	repo := &memProductRepo{products: make(map[int64]domain.Product)}
	for _, p := range products {
		repo.products[p.ID] = p
		if p.ID > repo.nextID {
			repo.nextID = p.ID
		}
	}
	return repo
}

func (m *memProductRepo) Upsert(_ context.Context, product *domain.Product) (*domain.Product, error) {
	if product.ID == 0 {
		m.nextID++
		product.ID = m.nextID
	}
	m.products[product.ID] = *product
	return product, nil
}

func (m *memProductRepo) GetByIDs(_ context.Context, ids []int64) ([]domain.Product, error) {
	out := make([]domain.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := m.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memProductRepo) List(_ context.Context, limit, offset int) ([]domain.Product, error) {
	ids, _ := m.ListIDs(context.Background())
	if offset >= len(ids) {
		return nil, nil
	}
	end := offset + limit
	if end > len(ids) {
		end = len(ids)
	}
	out := make([]domain.Product, 0, end-offset)
	for _, id := range ids[offset:end] {
		out = append(out, m.products[id])
	}
	return out, nil
}

func (m *memProductRepo) ListIDs(_ context.Context) ([]int64, error) {
	ids := make([]int64, 0, len(m.products))
	for id := range m.products {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (m *memProductRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.products)), nil
}

func (m *memProductRepo) Delete(_ context.Context, id int64) error {
	delete(m.products, id)
	return nil
}

type memSupplierRepo struct {
	suppliers map[int64]domain.Supplier
	nextID    int64
	getErr    error
}

// Upsert повторяет семантику БД: конфликт по company_name обновляет запись.
func (m *memSupplierRepo) Upsert(_ context.Context, supplier *domain.Supplier) (*domain.Supplier, error) {
	for id, existing := range m.suppliers {
		if existing.CompanyName == supplier.CompanyName {
			supplier.ID = id
			supplier.QuoteCount = existing.QuoteCount + 1
			m.suppliers[id] = *supplier
			return supplier, nil
		}
	}

	m.nextID++
	supplier.ID = m.nextID
	supplier.QuoteCount = 1
	m.suppliers[supplier.ID] = *supplier
	return supplier, nil
}

func (m *memSupplierRepo) GetByIDs(_ context.Context, ids []int64) ([]domain.Supplier, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	out := make([]domain.Supplier, 0, len(ids))
	for _, id := range ids {
		if s, ok := m.suppliers[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

// memCache — потокобезопасный кэш: фоновое заполнение пишет из горутины.
type memCache struct {
	mu      sync.Mutex
	entries map[int64]SupplierInfo
	getErr  error
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[int64]SupplierInfo)}
}

func (m *memCache) GetSuppliers(_ context.Context, ids []int64) (map[int64]SupplierInfo, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[int64]SupplierInfo)
	for _, id := range ids {
		if info, ok := m.entries[id]; ok {
			out[id] = info
		}
	}
	return out, nil
}

func (m *memCache) SetSuppliers(_ context.Context, suppliers []SupplierInfo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, info := range suppliers {
		m.entries[info.ID] = info
	}
	return nil
}

func (m *memCache) DeleteSuppliers(_ context.Context, ids []int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		delete(m.entries, id)
	}
	return nil
}

// memProducer накапливает опубликованные события.
type memProducer struct {
	mu     sync.Mutex
	events []EmbeddingEvent
}

func (m *memProducer) WriteEvent(_ context.Context, event *EmbeddingEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, *event)
	return nil
}

func (m *memProducer) byType(eventType EmbeddingEventType) []EmbeddingEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []EmbeddingEvent
	for _, event := range m.events {
		if event.EventType == eventType {
			out = append(out, event)
		}
	}
	return out
}
