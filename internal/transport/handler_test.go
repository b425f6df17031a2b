package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"cicli-volante/internal/domain"
	"cicli-volante/internal/middleware"
	"cicli-volante/internal/notify"
	"cicli-volante/internal/pricing"
	"cicli-volante/internal/repository"
	"cicli-volante/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testPayment = domain.PaymentInfo{
	IBAN:        "IT00 X000 0000 0000 0000 0000 000",
	BIC:         "TESTITM1",
	Bank:        "Banca di Prova",
	Beneficiary: "Cicli Volante",
}

// writableCatalog serves reads from a static catalog and records writes
type writableCatalog struct {
	service.CatalogService
	mu      sync.Mutex
	created []service.ProductInput
	deleted []string
}

func (c *writableCatalog) CreateProduct(ctx context.Context, input service.ProductInput) (*domain.Product, error) {
	category, err := domain.ParseCategory(input.Category)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.created = append(c.created, input)
	return &domain.Product{ID: 100, Name: input.Name, Slug: domain.Slugify(input.Name), Category: category, Price: input.Price}, nil
}

func (c *writableCatalog) DeleteProduct(ctx context.Context, ref string) error {
	if _, err := c.GetProduct(ctx, ref); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleted = append(c.deleted, ref)
	return nil
}

// stubOrders accepts orders for product 3 only
type stubOrders struct {
	mu     sync.Mutex
	orders []*domain.Order
}

func (s *stubOrders) PlaceOrder(ctx context.Context, sub domain.OrderSubmission) (*domain.OrderConfirmation, error) {
	for _, line := range sub.Items {
		if line.ProductID != 3 {
			return nil, fmt.Errorf("%w: %d", service.ErrUnknownProduct, line.ProductID)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	order := &domain.Order{
		ID:            int64(len(s.orders) + 1),
		OrderNumber:   fmt.Sprintf("ORD202601-TEST%04d", len(s.orders)+1),
		CustomerName:  sub.Order.CustomerName,
		TotalAmount:   sub.Order.TotalAmount,
		PaymentMethod: sub.Order.PaymentMethod,
		PaymentStatus: domain.PaymentStatusPending,
		OrderStatus:   domain.OrderStatusPendingPayment,
	}
	s.orders = append(s.orders, order)
	return &domain.OrderConfirmation{OrderNumber: order.OrderNumber, TotalAmount: pricing.FormatAmount(order.TotalAmount)}, nil
}

func (s *stubOrders) GetOrder(ctx context.Context, orderNumber string) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orders {
		if o.OrderNumber == orderNumber {
			return o, nil
		}
	}
	return nil, repository.ErrOrderNotFound
}

func (s *stubOrders) ListOrders(ctx context.Context) ([]*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*domain.Order{}, s.orders...), nil
}

func (s *stubOrders) UpdateStatus(ctx context.Context, ref string, update domain.StatusUpdate) (*domain.Order, error) {
	if update.OrderStatus != nil && !update.OrderStatus.Valid() {
		return nil, service.ErrInvalidStatus
	}
	order, err := s.GetOrder(ctx, ref)
	if err != nil {
		return nil, err
	}
	if update.OrderStatus != nil {
		order.OrderStatus = *update.OrderStatus
	}
	if update.PaymentStatus != nil {
		order.PaymentStatus = *update.PaymentStatus
	}
	return order, nil
}

// stubAdmins knows two sessions: one per role
type stubAdmins struct {
	mu        sync.Mutex
	loggedOut []string
}

var (
	testAdmin   = &domain.AdminUser{ID: 1, Username: "admin", Role: domain.AdminRoleAdmin}
	testManager = &domain.AdminUser{ID: 2, Username: "manager", Role: domain.AdminRoleManager}
)

func (s *stubAdmins) Login(ctx context.Context, username, password string) (string, *domain.AdminUser, error) {
	if username == "admin" && password == "s3cret-pass" {
		return "admin-token", testAdmin, nil
	}
	return "", nil, service.ErrInvalidCredentials
}

func (s *stubAdmins) Logout(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loggedOut = append(s.loggedOut, token)
	return nil
}

func (s *stubAdmins) Authenticate(ctx context.Context, token string) (*domain.AdminUser, error) {
	switch token {
	case "admin-token":
		return testAdmin, nil
	case "manager-token":
		return testManager, nil
	case "expired-token":
		return nil, service.ErrSessionExpired
	}
	return nil, service.ErrInvalidToken
}

func (s *stubAdmins) EnsureAdmin(ctx context.Context, username, password, role string) (*domain.AdminUser, bool, error) {
	return testAdmin, false, nil
}

func (s *stubAdmins) SessionTTL() time.Duration { return time.Hour }

type testAPI struct {
	router  chi.Router
	catalog *writableCatalog
	orders  *stubOrders
	admins  *stubAdmins
}

func passthrough(next http.Handler) http.Handler { return next }

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	logger := zap.NewNop()

	repo, err := repository.NewStaticProductRepository([]*domain.Product{
		{ID: 1, Slug: "trail-pro-1", Name: "Trail Pro 1", Category: domain.CategoryEMTB, Price: decimal.NewFromInt(2570), IsFeatured: true},
		{ID: 3, Slug: "urban-glide-3", Name: "Urban Glide 3", Category: domain.CategoryECityUrban, Price: decimal.NewFromInt(300)},
		{ID: 51, Slug: "casco-51", Name: "Casco 51", Category: domain.CategoryAccessories, Price: decimal.NewFromInt(96)},
	})
	require.NoError(t, err)

	api := &testAPI{
		router:  chi.NewRouter(),
		catalog: &writableCatalog{CatalogService: service.NewCatalogService(repo, logger)},
		orders:  &stubOrders{},
		admins:  &stubAdmins{},
	}

	adminSession := middleware.AdminSession(api.admins, logger)
	NewProductHandler(api.catalog, logger).RegisterRoutes(api.router, adminSession, middleware.RequireAdminRole(logger))
	NewOrderHandler(api.orders, logger).RegisterRoutes(api.router, adminSession, passthrough)
	NewStaticOrderHandler(service.NewStaticOrderService(testPayment, notify.NewNoopPublisher(logger), logger), logger).RegisterRoutes(api.router, passthrough)
	NewAdminHandler(api.admins, true, logger).RegisterRoutes(api.router, adminSession, passthrough)

	return api
}

func (a *testAPI) do(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) middleware.ErrorDetail {
	t.Helper()
	var resp middleware.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp.Error
}

func validationFields(t *testing.T, rr *httptest.ResponseRecorder) []string {
	t.Helper()
	detail := decodeError(t, rr)
	raw, ok := detail.Details["validation_errors"].([]interface{})
	require.True(t, ok, "missing validation_errors in %s", rr.Body.String())

	var fields []string
	for _, e := range raw {
		fields = append(fields, e.(map[string]interface{})["field"].(string))
	}
	return fields
}

func validOrderBody() map[string]interface{} {
	return map[string]interface{}{
		"order": map[string]interface{}{
			"customerName":  "Mario Rossi",
			"customerEmail": "mario@example.com",
			"customerPhone": "3331234567",
			"shippingAddress": map[string]interface{}{
				"via":       "Via Roma 1",
				"città":     "Milano",
				"cap":       "20100",
				"provincia": "MI",
			},
			"totalAmount":   600,
			"paymentMethod": "bonifico",
		},
		"items": []map[string]interface{}{{"productId": 3, "quantity": 2}},
	}
}
