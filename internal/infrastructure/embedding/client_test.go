package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/smart-procure/go-backend/internal/cfg"
	"github.com/smart-procure/go-backend/pkg/logger"
)

func testCfg(baseURL string) *cfg.EmbeddingCfg {
	return &cfg.EmbeddingCfg{
		BaseURL:       baseURL,
		ApiKey:        "test-key",
		Model:         "test-model",
		Dimensions:    3,
		SingleTimeout: 2 * time.Second,
		BatchTimeout:  2 * time.Second,
		MaxConcurrent: 2,
		BatchSize:     2,
	}
}

type providerRequest struct {
	Model      string   `json:"model"`
	Input      []string `json:"input"`
	Dimensions int      `json:"dimensions"`
}

func vectorFor(text string) []float32 {
	return []float32{float32(len(text)), 1, 0}
}

// newProviderStub отвечает детерминированными векторами по длине текста.
func newProviderStub(t *testing.T, calls *[]providerRequest, mu *sync.Mutex) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}

		var req providerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		mu.Lock()
		*calls = append(*calls, req)
		mu.Unlock()

		type item struct {
			Index     int       `json:"index"`
			Embedding []float32 `json:"embedding"`
		}
		resp := struct {
			Data []item `json:"data"`
		}{}
		for i, text := range req.Input {
			resp.Data = append(resp.Data, item{Index: i, Embedding: vectorFor(text)})
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func TestGetEmbedding(t *testing.T) {
	var (
		calls []providerRequest
		mu    sync.Mutex
	)
	srv := newProviderStub(t, &calls, &mu)
	defer srv.Close()

	client := NewClient(testCfg(srv.URL), logger.NewSlogLogger())

	got := client.GetEmbedding(context.Background(), "  siemens plc s7-1200  ")
	want := vectorFor("siemens plc s7-1200")
	if len(got) != len(want) || got[0] != want[0] {
		t.Fatalf("GetEmbedding = %v, want %v", got, want)
	}

	if len(calls) != 1 {
		t.Fatalf("provider calls = %d, want 1", len(calls))
	}
	if calls[0].Model != "test-model" {
		t.Errorf("model = %q", calls[0].Model)
	}
	if len(calls[0].Input) != 1 || calls[0].Input[0] != "siemens plc s7-1200" {
		t.Errorf("input = %v, want trimmed text", calls[0].Input)
	}
	if calls[0].Dimensions != 3 {
		t.Errorf("dimensions = %d, want 3", calls[0].Dimensions)
	}
}

func TestGetEmbeddingDimensionMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		resp := struct {
			Data []struct {
				Index     int       `json:"index"`
				Embedding []float32 `json:"embedding"`
			} `json:"data"`
		}{}
		resp.Data = append(resp.Data, struct {
			Index     int       `json:"index"`
			Embedding []float32 `json:"embedding"`
		}{Index: 0, Embedding: []float32{1, 0}})
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	client := NewClient(testCfg(srv.URL), logger.NewSlogLogger())

	// Провайдер вернул 2 компоненты вместо заявленных 3.
	if got := client.GetEmbedding(context.Background(), "smc cdq2b20-10d"); got != nil {
		t.Fatalf("GetEmbedding = %v, want nil on dimension mismatch", got)
	}
}

func TestGetEmbeddingsBatchZeroConcurrency(t *testing.T) {
	var (
		calls []providerRequest
		mu    sync.Mutex
	)
	srv := newProviderStub(t, &calls, &mu)
	defer srv.Close()

	conf := testCfg(srv.URL)
	conf.MaxConcurrent = 0
	client := NewClient(conf, logger.NewSlogLogger())

	texts := []string{"a", "bb", "ccc"}
	got := client.GetEmbeddingsBatch(context.Background(), texts, 2)

	if len(got) != len(texts) {
		t.Fatalf("len = %d, want %d", len(got), len(texts))
	}
	for i, text := range texts {
		want := vectorFor(text)
		if len(got[i]) == 0 || got[i][0] != want[0] {
			t.Errorf("got[%d] = %v, want %v", i, got[i], want)
		}
	}
}

func TestGetEmbeddingEmptyTextSkipsProvider(t *testing.T) {
	var (
		calls []providerRequest
		mu    sync.Mutex
	)
	srv := newProviderStub(t, &calls, &mu)
	defer srv.Close()

	client := NewClient(testCfg(srv.URL), logger.NewSlogLogger())

	if got := client.GetEmbedding(context.Background(), "   "); got != nil {
		t.Fatalf("GetEmbedding(blank) = %v, want nil", got)
	}
	if len(calls) != 0 {
		t.Fatalf("provider calls = %d, want 0", len(calls))
	}
}

func TestGetEmbeddingProviderFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(testCfg(srv.URL), logger.NewSlogLogger())

	if got := client.GetEmbedding(context.Background(), "smc cdq2b20-10d"); got != nil {
		t.Fatalf("GetEmbedding = %v, want nil on provider failure", got)
	}
}

func TestGetEmbeddingsBatchAlignment(t *testing.T) {
	var (
		calls []providerRequest
		mu    sync.Mutex
	)
	srv := newProviderStub(t, &calls, &mu)
	defer srv.Close()

	client := NewClient(testCfg(srv.URL), logger.NewSlogLogger())

	texts := []string{"a", "bb", "", "dddd", "eeeee"}
	got := client.GetEmbeddingsBatch(context.Background(), texts, 2)

	if len(got) != len(texts) {
		t.Fatalf("len = %d, want %d", len(got), len(texts))
	}
	for i, text := range texts {
		if text == "" {
			if got[i] != nil {
				t.Errorf("got[%d] = %v, want nil for empty text", i, got[i])
			}
			continue
		}
		want := vectorFor(text)
		if len(got[i]) == 0 || got[i][0] != want[0] {
			t.Errorf("got[%d] = %v, want %v", i, got[i], want)
		}
	}

	// 5 текстов при размере под-батча 2 дают три запроса.
	if len(calls) != 3 {
		t.Errorf("provider calls = %d, want 3", len(calls))
	}
}

func TestGetEmbeddingsBatchPartialFailure(t *testing.T) {
	var mu sync.Mutex
	failed := false

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req providerRequest
		_ = json.NewDecoder(r.Body).Decode(&req)

		// Отказывает ровно один под-батч: тот, где встречается "boom".
		for _, text := range req.Input {
			if text == "boom" {
				mu.Lock()
				failed = true
				mu.Unlock()
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
		}

		type item struct {
			Index     int       `json:"index"`
			Embedding []float32 `json:"embedding"`
		}
		resp := struct {
			Data []item `json:"data"`
		}{}
		for i, text := range req.Input {
			resp.Data = append(resp.Data, item{Index: i, Embedding: vectorFor(text)})
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	client := NewClient(testCfg(srv.URL), logger.NewSlogLogger())

	texts := []string{"ok-1", "ok-2", "boom", "ok-3"}
	got := client.GetEmbeddingsBatch(context.Background(), texts, 2)

	if !failed {
		t.Fatal("failing sub-batch was never requested")
	}
	if got[0] == nil || got[1] == nil {
		t.Errorf("healthy sub-batch must survive: %v", got)
	}
	// "boom" и "ok-3" попадают в один под-батч, отказ накрывает оба.
	if got[2] != nil || got[3] != nil {
		t.Errorf("failed sub-batch must yield nils: %v", got)
	}
}
