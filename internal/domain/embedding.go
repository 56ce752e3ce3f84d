package domain

import (
	"strings"
	"time"
)

// Payload описывает дополнительную информацию вектора
type Payload map[string]any

// Embedding представляет эмбеддинг одного продукта.
// Инвариант: не более одной записи на продукт, ID точки равен ID продукта.
type Embedding struct {
	ProductID int64
	Vector    []float32
	Payload   Payload
}

func NewEmbedding(productID int64, vector []float32, payload Payload) *Embedding {
	return &Embedding{
		ProductID: productID,
		Vector:    vector,
		Payload:   payload,
	}
}

// NewPayload собирает метаданные точки из продукта и текста эмбеддинга.
// Бренд хранится в нижнем регистре для точной фильтрации при поиске.
func NewPayload(product *Product, text string) Payload {
	return Payload{
		"supplier_product_id": product.ID,
		"supplier_id":         product.SupplierID,
		"product_name":        product.ProductName,
		"product_model":       product.ProductModel,
		"brand":               strings.ToLower(product.Brand),
		"embedding_text":      text,
		"quote_count":         product.QuoteCount,
		"indexed_at":          time.Now().UTC().UnixNano(),
	}
}
