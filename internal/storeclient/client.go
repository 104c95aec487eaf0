package storeclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go-product-bridge/pkg/metrics"
)

const (
	DefaultTimeout = 10 * time.Second

	requestIDHeader = "X-Request-ID"
	maxErrorBody    = 4096
)

// ErrUpstreamUnavailable wraps every transport, timeout and decoding failure.
var ErrUpstreamUnavailable = errors.New("record store unavailable")

// StatusError is returned when the store answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Message    string
	Errors     map[string][]string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("record store returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("record store returned %d", e.StatusCode)
}

func (e *StatusError) NotFound() bool   { return e.StatusCode == http.StatusNotFound }
func (e *StatusError) Validation() bool { return e.StatusCode == http.StatusUnprocessableEntity }

// AsStatusError extracts a *StatusError from err, or nil.
func AsStatusError(err error) *StatusError {
	var se *StatusError
	if errors.As(err, &se) {
		return se
	}
	return nil
}

// Product mirrors the store's JSON representation.
type Product struct {
	ID          uint       `json:"id"`
	Name        string     `json:"name"`
	SKU         string     `json:"sku"`
	CountryCode string     `json:"country_code"`
	LoadDate    time.Time  `json:"load_date"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at"`
}

// envelope is the store's {ok, msg, data, errors} wrapper.
type envelope struct {
	OK     bool                `json:"ok"`
	Msg    string              `json:"msg"`
	Data   json.RawMessage     `json:"data"`
	Errors map[string][]string `json:"errors"`
}

type ctxKey struct{}

// WithRequestID makes the client forward id to the store.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, ctxKey{}, id)
}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// Client talks to the record store over HTTP.
type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *metrics.UpstreamMetrics
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout bounds every call to the store.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithMetrics records per-call outcome and latency.
func WithMetrics(m *metrics.UpstreamMetrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// New builds a client for the store rooted at baseURL (e.g. http://localhost:8000/api).
func New(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, errors.New("record store base url is required")
	}

	client := &Client{
		baseURL:    trimmed,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	if client.httpClient.Timeout <= 0 {
		client.httpClient.Timeout = DefaultTimeout
	}
	return client, nil
}

// BaseURL is the store root this client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	var products []Product
	if _, err := c.do(ctx, "list_products", http.MethodGet, "/products", nil, &products); err != nil {
		return nil, err
	}
	if products == nil {
		products = []Product{}
	}
	return products, nil
}

func (c *Client) GetProduct(ctx context.Context, id uint) (*Product, error) {
	var product Product
	if _, err := c.do(ctx, "get_product", http.MethodGet, productPath(id), nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// CreateProduct forwards payload as-is; the store owns validation.
func (c *Client) CreateProduct(ctx context.Context, payload map[string]any) (*Product, error) {
	var product Product
	if _, err := c.do(ctx, "create_product", http.MethodPost, "/products", payload, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *Client) UpdateProduct(ctx context.Context, id uint, payload map[string]any) (*Product, error) {
	var product Product
	if _, err := c.do(ctx, "update_product", http.MethodPut, productPath(id), payload, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// DeleteProduct soft-deletes on the store and returns its confirmation message.
func (c *Client) DeleteProduct(ctx context.Context, id uint) (string, error) {
	env, err := c.do(ctx, "delete_product", http.MethodDelete, productPath(id), nil, nil)
	if err != nil {
		return "", err
	}
	return env.Msg, nil
}

func productPath(id uint) string {
	return "/products/" + strconv.FormatUint(uint64(id), 10)
}

func (c *Client) do(ctx context.Context, op, method, path string, body any, out any) (env *envelope, err error) {
	start := time.Now()
	defer func() {
		c.metrics.Observe(op, outcome(err), time.Since(start))
	}()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%w: marshal %s request: %v", ErrUpstreamUnavailable, op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("%w: build %s request: %v", ErrUpstreamUnavailable, op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id := requestIDFrom(ctx); id != "" {
		req.Header.Set(requestIDHeader, id)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUpstreamUnavailable, op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, statusError(resp)
	}

	env = &envelope{}
	if err := json.NewDecoder(resp.Body).Decode(env); err != nil {
		return nil, fmt.Errorf("%w: decode %s response: %v", ErrUpstreamUnavailable, op, err)
	}
	if !env.OK {
		return nil, fmt.Errorf("%w: %s answered ok=false: %s", ErrUpstreamUnavailable, op, env.Msg)
	}
	if out != nil {
		if len(env.Data) == 0 || string(env.Data) == "null" {
			return nil, fmt.Errorf("%w: %s response has no data", ErrUpstreamUnavailable, op)
		}
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, fmt.Errorf("%w: decode %s data: %v", ErrUpstreamUnavailable, op, err)
		}
	}
	return env, nil
}

func statusError(resp *http.Response) *StatusError {
	se := &StatusError{StatusCode: resp.StatusCode}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil {
		se.Message = env.Msg
		se.Errors = env.Errors
	} else {
		se.Message = strings.TrimSpace(string(raw))
	}
	return se
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if se := AsStatusError(err); se != nil {
		return strconv.Itoa(se.StatusCode)
	}
	return "unavailable"
}
