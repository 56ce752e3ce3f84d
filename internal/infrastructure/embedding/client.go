// Package embedding реализует клиент OpenRouter-совместимого API эмбеддингов.
// Отказ провайдера поглощается здесь: наружу уходит nil-вектор, не ошибка.
package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/smart-procure/go-backend/internal/cfg"
	"github.com/smart-procure/go-backend/pkg/e"
	"github.com/smart-procure/go-backend/pkg/logger"
)

type Client struct {
	httpClient    *http.Client
	cfg           *cfg.EmbeddingCfg
	maxConcurrent int
	logger        logger.Logger
}

func NewClient(cfg *cfg.EmbeddingCfg, logger logger.Logger) *Client {
	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}

	return &Client{
		httpClient:    &http.Client{},
		cfg:           cfg,
		maxConcurrent: maxConcurrent,
		logger:        logger,
	}
}

type embeddingsRequest struct {
	Model      string   `json:"model"`
	Input      []string `json:"input"`
	Dimensions int      `json:"dimensions,omitempty"`
}

type embeddingsResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// GetEmbedding возвращает вектор одного текста или nil.
// Пустой текст отсекается до сетевого вызова.
func (c *Client) GetEmbedding(ctx context.Context, text string) []float32 {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.SingleTimeout)
	defer cancel()

	vectors, err := c.requestEmbeddings(ctx, []string{text})
	if err != nil {
		c.logger.Warnf("embedding request failed: %v", err)
		return nil
	}

	if len(vectors) != 1 || len(vectors[0]) == 0 {
		c.logger.Warnf("embedding response is malformed: %d vectors for single input", len(vectors))
		return nil
	}

	return vectors[0]
}

// GetEmbeddingsBatch возвращает векторы, позиционно выровненные со входом.
// Вход режется на под-батчи, под-батчи идут параллельно под семафором,
// результаты собираются по исходному индексу, а не по порядку завершения.
// Ретраев на этом уровне нет — политика повтора принадлежит вызывающему.
func (c *Client) GetEmbeddingsBatch(ctx context.Context, texts []string, batchSize int) [][]float32 {
	if batchSize <= 0 {
		batchSize = c.cfg.BatchSize
	}
	if batchSize <= 0 {
		batchSize = len(texts)
	}

	results := make([][]float32, len(texts))
	sem := make(chan struct{}, c.maxConcurrent)

	var wg sync.WaitGroup
	for start := 0; start < len(texts); start += batchSize {
		end := start + batchSize
		if end > len(texts) {
			end = len(texts)
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			c.fillSubBatch(ctx, texts[start:end], results[start:end])
		}(start, end)
	}
	wg.Wait()

	return results
}

// fillSubBatch запрашивает векторы одного под-батча. Отказ запроса оставляет
// nil ровно для элементов этого под-батча; пустые тексты не уходят в сеть.
func (c *Client) fillSubBatch(ctx context.Context, texts []string, out [][]float32) {
	indexes := make([]int, 0, len(texts))
	input := make([]string, 0, len(texts))
	for i, text := range texts {
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			continue
		}
		indexes = append(indexes, i)
		input = append(input, trimmed)
	}

	if len(input) == 0 {
		return
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.cfg.BatchTimeout)
	defer cancel()

	vectors, err := c.requestEmbeddings(reqCtx, input)
	if err != nil {
		c.logger.Warnf("batch embedding request failed for %d texts: %v", len(input), err)
		return
	}

	if len(vectors) != len(input) {
		c.logger.Warnf("embedding response is malformed: %d vectors for %d inputs", len(vectors), len(input))
		return
	}

	for i, vector := range vectors {
		out[indexes[i]] = vector
	}
}

// requestEmbeddings выполняет один вызов провайдера и возвращает векторы
// в порядке входного списка.
func (c *Client) requestEmbeddings(ctx context.Context, input []string) ([][]float32, error) {
	body, err := json.Marshal(embeddingsRequest{
		Model:      c.cfg.Model,
		Input:      input,
		Dimensions: c.cfg.Dimensions,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.ApiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("provider call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("provider returned %d: %s", resp.StatusCode, string(data))
	}

	var parsed embeddingsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	vectors := make([][]float32, len(input))
	for i, item := range parsed.Data {
		idx := item.Index
		if idx < 0 || idx >= len(input) {
			idx = i
		}
		if idx >= len(vectors) {
			continue
		}
		vectors[idx] = item.Embedding
	}

	for i, vector := range vectors {
		if len(vector) == 0 {
			return nil, fmt.Errorf("missing embedding for input %d", i)
		}
		if c.cfg.Dimensions > 0 && len(vector) != c.cfg.Dimensions {
			return nil, fmt.Errorf("input %d: got %d dimensions, want %d: %w",
				i, len(vector), c.cfg.Dimensions, e.ErrVectorSizeMismatch)
		}
	}

	return vectors, nil
}
