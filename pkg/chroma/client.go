package chroma

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/prospect-cli/internal/resilience"
)

const (
	defaultBaseURL = "http://localhost:8000"
	defaultTenant  = "default_tenant"
)

// Client performs operations against a Chroma vector store server.
type Client interface {
	GetOrCreateCollection(ctx context.Context, name string) (*Collection, error)
	Add(ctx context.Context, collectionID string, req AddRequest) error
	Query(ctx context.Context, collectionID string, req QueryRequest) (*QueryResponse, error)
}

// Collection identifies a named document collection.
type Collection struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// AddRequest is the request body for POST /collections/{id}/add.
type AddRequest struct {
	IDs       []string         `json:"ids"`
	Documents []string         `json:"documents"`
	Metadatas []map[string]any `json:"metadatas,omitempty"`
}

// QueryRequest is the request body for POST /collections/{id}/query.
type QueryRequest struct {
	QueryTexts []string       `json:"query_texts"`
	NResults   int            `json:"n_results"`
	Where      map[string]any `json:"where,omitempty"`
}

// QueryResponse holds one result set per query text.
type QueryResponse struct {
	IDs       [][]string         `json:"ids"`
	Documents [][]string         `json:"documents"`
	Metadatas [][]map[string]any `json:"metadatas"`
	Distances [][]float64        `json:"distances"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default server URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithTenant overrides the default tenant.
func WithTenant(tenant string) Option {
	return func(c *httpClient) {
		c.tenant = tenant
	}
}

// WithRetry overrides the default retry configuration.
func WithRetry(cfg resilience.RetryConfig) Option {
	return func(c *httpClient) {
		c.retry = cfg
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	baseURL string
	tenant  string
	http    *http.Client
	retry   resilience.RetryConfig
}

// NewClient creates a Chroma server client.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL: defaultBaseURL,
		tenant:  defaultTenant,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		retry: resilience.DefaultRetryConfig(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) GetOrCreateCollection(ctx context.Context, name string) (*Collection, error) {
	payload := map[string]any{
		"name":          name,
		"get_or_create": true,
	}

	respBody, err := c.post(ctx, "/api/v1/collections", payload)
	if err != nil {
		return nil, err
	}

	var coll Collection
	if err := json.Unmarshal(respBody, &coll); err != nil {
		return nil, eris.Wrap(err, "chroma: unmarshal collection")
	}

	return &coll, nil
}

func (c *httpClient) Add(ctx context.Context, collectionID string, req AddRequest) error {
	if len(req.IDs) != len(req.Documents) {
		return eris.Errorf("chroma: ids/documents length mismatch: %d vs %d", len(req.IDs), len(req.Documents))
	}

	path := fmt.Sprintf("/api/v1/collections/%s/add", collectionID)
	if _, err := c.post(ctx, path, req); err != nil {
		return err
	}
	return nil
}

func (c *httpClient) Query(ctx context.Context, collectionID string, req QueryRequest) (*QueryResponse, error) {
	if req.NResults <= 0 {
		req.NResults = 10
	}

	path := fmt.Sprintf("/api/v1/collections/%s/query", collectionID)
	respBody, err := c.post(ctx, path, req)
	if err != nil {
		return nil, err
	}

	var result QueryResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, eris.Wrap(err, "chroma: unmarshal query response")
	}

	return &result, nil
}

func (c *httpClient) post(ctx context.Context, path string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, eris.Wrap(err, "chroma: marshal request")
	}

	return resilience.DoVal(ctx, c.retry, "chroma "+path, func(ctx context.Context) ([]byte, error) {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return nil, eris.Wrap(err, "chroma: create request")
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("X-Chroma-Tenant", c.tenant)

		resp, err := c.http.Do(httpReq)
		if err != nil {
			return nil, eris.Wrap(err, "chroma: send request")
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, eris.Wrap(err, "chroma: read response")
		}

		if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
			err := eris.Errorf("chroma: unexpected status %d: %s", resp.StatusCode, string(respBody))
			if resilience.IsTransientHTTPStatus(resp.StatusCode) {
				return nil, resilience.NewTransientError(err, resp.StatusCode)
			}
			return nil, err
		}

		return respBody, nil
	})
}
