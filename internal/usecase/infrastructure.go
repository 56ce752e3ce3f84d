package usecase

import "context"

// EmbeddingProvider — клиент внешнего провайдера эмбеддингов.
// Отказ провайдера поглощается на границе клиента: nil-вектор вместо ошибки.
type EmbeddingProvider interface {
	// GetEmbedding возвращает вектор текста или nil, если текст пуст
	// либо провайдер недоступен.
	GetEmbedding(ctx context.Context, text string) []float32

	// GetEmbeddingsBatch возвращает векторы, позиционно выровненные со входным
	// списком. Отказ одного под-батча дает nil ровно для его элементов,
	// обработка остальных под-батчей продолжается.
	GetEmbeddingsBatch(ctx context.Context, texts []string, batchSize int) [][]float32
}

// EventProducer публикует события жизненного цикла эмбеддингов.
type EventProducer interface {
	WriteEvent(ctx context.Context, event *EmbeddingEvent) error
}
