package vectordb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// QdrantIndex queries one Qdrant collection over REST. The namespace is
// matched against the "namespace" payload field.
type QdrantIndex struct {
	baseURL    string
	collection string
	apiKey     string
	client     *http.Client
}

// NewQdrantIndex creates a client for collection. apiKey may be empty for
// an unauthenticated instance.
func NewQdrantIndex(baseURL, collection, apiKey string) *QdrantIndex {
	if baseURL == "" {
		baseURL = "http://localhost:6333"
	}
	return &QdrantIndex{
		baseURL:    strings.TrimRight(baseURL, "/"),
		collection: collection,
		apiKey:     apiKey,
		client:     &http.Client{Timeout: 30 * time.Second},
	}
}

type qdrantSearchResponse struct {
	Result []struct {
		ID      any            `json:"id"`
		Score   any            `json:"score"`
		Payload map[string]any `json:"payload"`
	} `json:"result"`
	Status any `json:"status"`
}

func (q *QdrantIndex) Query(ctx context.Context, req QueryRequest) (*QueryResponse, error) {
	body := map[string]any{
		"vector":       req.Vector,
		"limit":        req.TopK,
		"with_payload": req.IncludeMetadata,
	}
	if req.Namespace != "" {
		body["filter"] = map[string]any{
			"must": []map[string]any{{
				"key":   MetaNamespace,
				"match": map[string]any{"value": req.Namespace},
			}},
		}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal qdrant search: %w", err)
	}

	endpoint := fmt.Sprintf("%s/collections/%s/points/search", q.baseURL, url.PathEscape(q.collection))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create qdrant request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if q.apiKey != "" {
		httpReq.Header.Set("api-key", q.apiKey)
	}

	resp, err := q.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("qdrant search failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("qdrant error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var apiResp qdrantSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("decode qdrant response: %w", err)
	}

	out := &QueryResponse{Matches: make([]Match, 0, len(apiResp.Result))}
	for _, r := range apiResp.Result {
		m := Match{Score: scoreFrom(r.Score), Metadata: r.Payload}
		// Point ids are either strings or unsigned integers.
		switch id := r.ID.(type) {
		case string:
			m.ID = id
		case float64:
			m.ID = fmt.Sprintf("%d", int64(id))
		}
		out.Matches = append(out.Matches, m)
	}
	return out, nil
}
