package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewEmbeddingsClient(t *testing.T) {
	client := NewEmbeddingsClient("http://localhost:8080/", "test-key", "test-model", 768)
	if client.BaseURL != "http://localhost:8080" {
		t.Errorf("BaseURL = %q, want trailing slash trimmed", client.BaseURL)
	}
	if client.ExpectedSize != 768 {
		t.Errorf("ExpectedSize = %d, want 768", client.ExpectedSize)
	}
}

func index(i int) *int {
	return &i
}

func writeEmbeddings(w http.ResponseWriter, data ...EmbeddingData) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(EmbeddingsResponse{Data: data})
}

func TestEmbeddingsClient_EmbedTexts(t *testing.T) {
	tests := []struct {
		name       string
		texts      []string
		serverResp func(w http.ResponseWriter, r *http.Request)
		wantErr    bool
		wantCount  int
	}{
		{
			name:  "successful embedding",
			texts: []string{"Hello", "World"},
			serverResp: func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("expected POST, got %s", r.Method)
				}
				if r.URL.Path != "/v1/embeddings" {
					t.Errorf("expected /v1/embeddings, got %s", r.URL.Path)
				}
				if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
					t.Errorf("Authorization = %q", got)
				}
				var req EmbeddingsRequest
				if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
					t.Errorf("decode request: %v", err)
				}
				if req.Model != "test-model" || len(req.Input) != 2 {
					t.Errorf("request = %+v", req)
				}
				writeEmbeddings(w,
					EmbeddingData{Index: index(0), Embedding: make([]float64, 4)},
					EmbeddingData{Index: index(1), Embedding: make([]float64, 4)},
				)
			},
			wantCount: 2,
		},
		{
			name:       "empty input",
			texts:      []string{},
			serverResp: func(w http.ResponseWriter, r *http.Request) {},
			wantErr:    true,
		},
		{
			name:  "wrong embedding count",
			texts: []string{"Hello", "World"},
			serverResp: func(w http.ResponseWriter, r *http.Request) {
				writeEmbeddings(w, EmbeddingData{Embedding: make([]float64, 4)})
			},
			wantErr: true,
		},
		{
			name:  "wrong vector size",
			texts: []string{"Hello"},
			serverResp: func(w http.ResponseWriter, r *http.Request) {
				writeEmbeddings(w, EmbeddingData{Embedding: make([]float64, 3)})
			},
			wantErr: true,
		},
		{
			name:  "duplicate index",
			texts: []string{"a", "b"},
			serverResp: func(w http.ResponseWriter, r *http.Request) {
				writeEmbeddings(w,
					EmbeddingData{Index: index(1), Embedding: make([]float64, 4)},
					EmbeddingData{Index: index(1), Embedding: make([]float64, 4)},
				)
			},
			wantErr: true,
		},
		{
			name:  "server error",
			texts: []string{"Hello"},
			serverResp: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte("internal server error"))
			},
			wantErr: true,
		},
		{
			name:  "malformed body",
			texts: []string{"Hello"},
			serverResp: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("{not json"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(tt.serverResp))
			defer server.Close()

			client := NewEmbeddingsClient(server.URL, "test-key", "test-model", 4)
			embeddings, err := client.EmbedTexts(context.Background(), tt.texts)

			if tt.wantErr {
				if err == nil {
					t.Errorf("EmbedTexts() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("EmbedTexts() unexpected error: %v", err)
			}
			if len(embeddings) != tt.wantCount {
				t.Errorf("EmbedTexts() returned %d embeddings, want %d", len(embeddings), tt.wantCount)
			}
		})
	}
}

func TestEmbeddingsClient_EmbedTexts_OrdersByIndex(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEmbeddings(w,
			EmbeddingData{Index: index(1), Embedding: []float64{2.5, 2.5}},
			EmbeddingData{Index: index(0), Embedding: []float64{1.5, 1.5}},
		)
	}))
	defer server.Close()

	client := NewEmbeddingsClient(server.URL, "", "test-model", 2)
	embeddings, err := client.EmbedTexts(context.Background(), []string{"first", "second"})
	if err != nil {
		t.Fatalf("EmbedTexts() error = %v", err)
	}

	if embeddings[0][0] != float32(1.5) {
		t.Errorf("embedding[0][0] = %v, want 1.5", embeddings[0][0])
	}
	if embeddings[1][0] != float32(2.5) {
		t.Errorf("embedding[1][0] = %v, want 2.5", embeddings[1][0])
	}
}

func TestEmbeddingsClient_EmbedTexts_Placement(t *testing.T) {
	tests := []struct {
		name    string
		data    []EmbeddingData
		want    []float32 // first component of each returned vector
		wantErr bool
	}{
		{
			name: "reversed batch",
			data: []EmbeddingData{
				{Index: index(2), Embedding: []float64{3}},
				{Index: index(1), Embedding: []float64{2}},
				{Index: index(0), Embedding: []float64{1}},
			},
			want: []float32{1, 2, 3},
		},
		{
			name: "index zero last",
			data: []EmbeddingData{
				{Index: index(1), Embedding: []float64{2}},
				{Index: index(2), Embedding: []float64{3}},
				{Index: index(0), Embedding: []float64{1}},
			},
			want: []float32{1, 2, 3},
		},
		{
			name: "index omitted",
			data: []EmbeddingData{
				{Embedding: []float64{1}},
				{Embedding: []float64{2}},
				{Embedding: []float64{3}},
			},
			want: []float32{1, 2, 3},
		},
		{
			name: "every entry reports index zero",
			data: []EmbeddingData{
				{Index: index(0), Embedding: []float64{1}},
				{Index: index(0), Embedding: []float64{2}},
				{Index: index(0), Embedding: []float64{3}},
			},
			wantErr: true,
		},
		{
			name: "index out of range",
			data: []EmbeddingData{
				{Index: index(0), Embedding: []float64{1}},
				{Index: index(1), Embedding: []float64{2}},
				{Index: index(3), Embedding: []float64{3}},
			},
			wantErr: true,
		},
		{
			name: "negative index",
			data: []EmbeddingData{
				{Index: index(-1), Embedding: []float64{1}},
				{Index: index(1), Embedding: []float64{2}},
				{Index: index(2), Embedding: []float64{3}},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeEmbeddings(w, tt.data...)
			}))
			defer server.Close()

			client := NewEmbeddingsClient(server.URL, "", "test-model", 1)
			embeddings, err := client.EmbedTexts(context.Background(), []string{"a", "b", "c"})

			if tt.wantErr {
				if err == nil {
					t.Errorf("EmbedTexts() expected error, got %v", embeddings)
				}
				return
			}
			if err != nil {
				t.Fatalf("EmbedTexts() unexpected error: %v", err)
			}
			for i, want := range tt.want {
				if embeddings[i][0] != want {
					t.Errorf("embedding[%d][0] = %v, want %v", i, embeddings[i][0], want)
				}
			}
		})
	}
}

func TestEmbeddingsClient_NoAPIKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "" {
			t.Errorf("Authorization = %q, want none", got)
		}
		writeEmbeddings(w, EmbeddingData{Embedding: []float64{1}})
	}))
	defer server.Close()

	client := NewEmbeddingsClient(server.URL, "", "m", 1)
	if _, err := client.EmbedTexts(context.Background(), []string{"x"}); err != nil {
		t.Fatalf("EmbedTexts() error = %v", err)
	}
}

func TestEmbeddingsClient_RetryableErrors(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		wantRetryable bool
	}{
		{name: "rate limited", status: http.StatusTooManyRequests, wantRetryable: true},
		{name: "server error", status: http.StatusBadGateway, wantRetryable: true},
		{name: "bad request", status: http.StatusBadRequest, wantRetryable: false},
		{name: "unauthorized", status: http.StatusUnauthorized, wantRetryable: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			client := NewEmbeddingsClient(server.URL, "", "m", 1)
			_, err := client.EmbedTexts(context.Background(), []string{"x"})
			if err == nil {
				t.Fatal("EmbedTexts() expected error, got nil")
			}

			var retryErr *RetryableError
			if got := errors.As(err, &retryErr); got != tt.wantRetryable {
				t.Errorf("retryable = %v, want %v (err: %v)", got, tt.wantRetryable, err)
			}
		})
	}
}
