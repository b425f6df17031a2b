// Package storefront is the customer side of the shop: a client for the
// catalog and order endpoints and the checkout flow that turns a cart into
// an order.
package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"cicli-volante/internal/domain"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// Order backends a client can submit to
const (
	BackendAPI    = "api"
	BackendStatic = "static"
)

const (
	apiOrderPath    = "/api/orders"
	staticOrderPath = "/send_order.php"

	// maxResponseBytes bounds how much of a response body is read
	maxResponseBytes = 4 << 20
)

var (
	ErrSubmissionFailed = errors.New("order submission failed")
	ErrNotFound         = errors.New("not found")
	ErrUnknownBackend   = errors.New("unknown order backend")
)

// HTTPError is a non-2xx answer from the shop
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server answered %d", e.StatusCode)
	}
	return fmt.Sprintf("server answered %d: %s", e.StatusCode, e.Message)
}

// ProductQuery filters a catalog listing
type ProductQuery struct {
	Category   string
	Featured   bool
	Bestseller bool
	Search     string
}

// Client talks to one shop deployment. Catalog reads and tracking always go
// to the REST API; order submission goes to the configured backend.
type Client struct {
	baseURL    string
	orderPath  string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a client for baseURL submitting orders to backend
// ("api" or "static"). A nil httpClient gets a traced client with a 15s
// timeout.
func NewClient(baseURL, backend string, httpClient *http.Client, logger *zap.Logger) (*Client, error) {
	var orderPath string
	switch backend {
	case BackendAPI, "":
		orderPath = apiOrderPath
	case BackendStatic:
		orderPath = staticOrderPath
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}

	if httpClient == nil {
		httpClient = &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   15 * time.Second,
		}
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		orderPath:  orderPath,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// ListProducts returns the catalog filtered by query
func (c *Client) ListProducts(ctx context.Context, query ProductQuery) ([]*domain.Product, error) {
	params := url.Values{}
	if query.Category != "" {
		params.Set("category", query.Category)
	}
	if query.Featured {
		params.Set("featured", strconv.FormatBool(true))
	}
	if query.Bestseller {
		params.Set("bestseller", strconv.FormatBool(true))
	}
	if query.Search != "" {
		params.Set("search", query.Search)
	}

	path := "/api/products"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var products []*domain.Product
	if err := c.do(ctx, http.MethodGet, path, nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// GetProduct resolves a product by slug or numeric id
func (c *Client) GetProduct(ctx context.Context, ref string) (*domain.Product, error) {
	var product domain.Product
	if err := c.do(ctx, http.MethodGet, "/api/products/"+url.PathEscape(ref), nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// TrackOrder looks up an order by its order number
func (c *Client) TrackOrder(ctx context.Context, orderNumber string) (*domain.Order, error) {
	var order domain.Order
	if err := c.do(ctx, http.MethodGet, "/api/orders/"+url.PathEscape(orderNumber), nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// SubmitOrder posts sub to the order backend. Any non-2xx status, a body
// that is not JSON or a confirmation without order number is reported as
// ErrSubmissionFailed. Submissions are never retried.
func (c *Client) SubmitOrder(ctx context.Context, sub domain.OrderSubmission) (*domain.OrderConfirmation, error) {
	var confirmation domain.OrderConfirmation
	if err := c.do(ctx, http.MethodPost, c.orderPath, sub, &confirmation); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSubmissionFailed, err)
	}
	if confirmation.OrderNumber == "" {
		return nil, fmt.Errorf("%w: response carries no order number", ErrSubmissionFailed)
	}
	return &confirmation, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.Debug("Shop request completed",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		httpErr := &HTTPError{StatusCode: resp.StatusCode, Message: errorMessage(raw)}
		if resp.StatusCode == http.StatusNotFound {
			return fmt.Errorf("%w: %w", ErrNotFound, httpErr)
		}
		return httpErr
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("invalid JSON response: %w", err)
	}
	return nil
}

// errorMessage extracts the message of an error envelope or of the static
// confirmer's {"error": "..."} body
func errorMessage(raw []byte) string {
	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil || len(envelope.Error) == 0 {
		return ""
	}

	var detail struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(envelope.Error, &detail); err == nil {
		return detail.Message
	}

	var text string
	if err := json.Unmarshal(envelope.Error, &text); err == nil {
		return text
	}
	return ""
}
