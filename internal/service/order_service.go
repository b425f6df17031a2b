package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"cicli-volante/internal/domain"
	"cicli-volante/internal/notify"
	"cicli-volante/internal/pricing"
	"cicli-volante/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// maxOrderNumberAttempts bounds the retries on an order number collision
const maxOrderNumberAttempts = 5

var (
	ErrNoItems              = errors.New("order has no items")
	ErrInvalidQuantity      = errors.New("item quantity must be at least 1")
	ErrUnknownProduct       = errors.New("unknown product")
	ErrInvalidTotal         = errors.New("total amount must be positive and within range")
	ErrInvalidPaymentMethod = errors.New("unsupported payment method")
	ErrInvalidStatus        = errors.New("invalid order status")
	ErrOrderNumberExhausted = errors.New("could not allocate a unique order number")
)

// OrderPlacer is the order submission contract shared by the stateful API
// and the stateless confirmer
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, sub domain.OrderSubmission) (*domain.OrderConfirmation, error)
}

// OrderService defines the stateful order operations
type OrderService interface {
	OrderPlacer
	GetOrder(ctx context.Context, orderNumber string) (*domain.Order, error)
	ListOrders(ctx context.Context) ([]*domain.Order, error)
	UpdateStatus(ctx context.Context, ref string, update domain.StatusUpdate) (*domain.Order, error)
}

type orderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	publisher   notify.Publisher
	payment     domain.PaymentInfo
	logger      *zap.Logger
	newNumber   func(time.Time) string
	now         func() time.Time
}

// NewOrderService creates the database backed OrderService
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	publisher notify.Publisher,
	payment domain.PaymentInfo,
	logger *zap.Logger,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		publisher:   publisher,
		payment:     payment,
		logger:      logger,
		newNumber:   NewOrderNumber,
		now:         time.Now,
	}
}

// validateSubmission checks the business rules every backend applies on
// top of request validation
func validateSubmission(sub domain.OrderSubmission) error {
	if len(sub.Items) == 0 {
		return ErrNoItems
	}
	for _, line := range sub.Items {
		if line.Quantity < 1 || line.Quantity > domain.MaxLineQuantity {
			return fmt.Errorf("%w: product %d", ErrInvalidQuantity, line.ProductID)
		}
		if line.ProductID <= 0 {
			return fmt.Errorf("%w: %d", ErrUnknownProduct, line.ProductID)
		}
	}
	if !sub.Order.TotalAmount.IsPositive() || sub.Order.TotalAmount.GreaterThan(domain.MaxAmount) {
		return ErrInvalidTotal
	}
	if !sub.Order.PaymentMethod.Valid() {
		return ErrInvalidPaymentMethod
	}
	return nil
}

// PlaceOrder snapshots every requested product, stores the order with its
// items and publishes the order.placed event.
// The submitted total is stored as is.
func (s *orderService) PlaceOrder(ctx context.Context, sub domain.OrderSubmission) (*domain.OrderConfirmation, error) {
	if err := validateSubmission(sub); err != nil {
		return nil, err
	}

	items := make([]*domain.OrderItem, 0, len(sub.Items))
	subtotal := decimal.Zero
	for _, line := range sub.Items {
		product, err := s.productRepo.FindByID(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, repository.ErrProductNotFound) {
				return nil, fmt.Errorf("%w: %d", ErrUnknownProduct, line.ProductID)
			}
			return nil, fmt.Errorf("failed to load product: %w", err)
		}

		lineTotal := product.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		if lineTotal.GreaterThan(domain.MaxAmount) {
			return nil, fmt.Errorf("%w: product %d subtotal too large", ErrInvalidQuantity, line.ProductID)
		}
		subtotal = subtotal.Add(lineTotal)
		items = append(items, &domain.OrderItem{
			ProductID:    product.ID,
			ProductName:  product.Name,
			ProductPrice: product.Price,
			Quantity:     line.Quantity,
			Subtotal:     lineTotal,
		})
	}

	// Cart prices are snapshots taken at add time, so a mismatch is
	// expected after a price change and only logged.
	if quote := pricing.QuoteFor(subtotal); !quote.Total.Equal(sub.Order.TotalAmount) {
		s.logger.Warn("Submitted total differs from current prices",
			zap.String("submitted", pricing.FormatAmount(sub.Order.TotalAmount)),
			zap.String("quoted", pricing.FormatAmount(quote.Total)),
		)
	}

	order := &domain.Order{
		CustomerName:    sub.Order.CustomerName,
		CustomerEmail:   sub.Order.CustomerEmail,
		CustomerPhone:   sub.Order.CustomerPhone,
		ShippingAddress: sub.Order.ShippingAddress,
		TotalAmount:     sub.Order.TotalAmount,
		PaymentMethod:   sub.Order.PaymentMethod,
		PaymentStatus:   domain.PaymentStatusPending,
		OrderStatus:     domain.OrderStatusPendingPayment,
		Items:           items,
	}

	if err := s.createWithUniqueNumber(ctx, order); err != nil {
		return nil, err
	}

	s.logger.Info("Order placed",
		zap.String("order_number", order.OrderNumber),
		zap.Int("items", len(order.Items)),
		zap.String("total", pricing.FormatAmount(order.TotalAmount)),
	)

	event := notify.NewOrderPlacedEvent(sub, order.OrderNumber, s.payment)
	if err := s.publisher.PublishOrderPlaced(ctx, event); err != nil {
		s.logger.Warn("Failed to publish order event",
			zap.String("order_number", order.OrderNumber),
			zap.Error(err),
		)
	}

	return &domain.OrderConfirmation{
		OrderNumber: order.OrderNumber,
		TotalAmount: pricing.FormatAmount(order.TotalAmount),
	}, nil
}

func (s *orderService) createWithUniqueNumber(ctx context.Context, order *domain.Order) error {
	for attempt := 1; attempt <= maxOrderNumberAttempts; attempt++ {
		order.OrderNumber = s.newNumber(s.now())

		err := s.orderRepo.Create(ctx, order)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrDuplicateOrderNumber) {
			return fmt.Errorf("failed to create order: %w", err)
		}

		s.logger.Warn("Order number collision, retrying",
			zap.String("order_number", order.OrderNumber),
			zap.Int("attempt", attempt),
		)
	}
	return ErrOrderNumberExhausted
}

// GetOrder returns the order and its items for the tracking page
func (s *orderService) GetOrder(ctx context.Context, orderNumber string) (*domain.Order, error) {
	order, err := s.orderRepo.FindByNumber(ctx, strings.TrimSpace(orderNumber))
	if err != nil {
		return nil, err
	}
	return order, nil
}

// ListOrders returns every order, newest first
func (s *orderService) ListOrders(ctx context.Context) ([]*domain.Order, error) {
	return s.orderRepo.List(ctx)
}

// UpdateStatus changes payment and/or order status. ref is either the
// numeric id or the order number. Values must be known statuses; any
// known value may follow any other.
func (s *orderService) UpdateStatus(ctx context.Context, ref string, update domain.StatusUpdate) (*domain.Order, error) {
	if update.Empty() {
		return nil, fmt.Errorf("%w: nothing to update", ErrInvalidStatus)
	}
	if update.PaymentStatus != nil && !update.PaymentStatus.Valid() {
		return nil, fmt.Errorf("%w: payment status %q", ErrInvalidStatus, *update.PaymentStatus)
	}
	if update.OrderStatus != nil && !update.OrderStatus.Valid() {
		return nil, fmt.Errorf("%w: order status %q", ErrInvalidStatus, *update.OrderStatus)
	}

	id, err := s.resolveOrderID(ctx, ref)
	if err != nil {
		return nil, err
	}

	order, err := s.orderRepo.UpdateStatus(ctx, id, update)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Order status updated",
		zap.String("order_number", order.OrderNumber),
		zap.String("payment_status", string(order.PaymentStatus)),
		zap.String("order_status", string(order.OrderStatus)),
	)
	return order, nil
}

func (s *orderService) resolveOrderID(ctx context.Context, ref string) (int64, error) {
	ref = strings.TrimSpace(ref)
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		return id, nil
	}

	order, err := s.orderRepo.FindByNumber(ctx, ref)
	if err != nil {
		return 0, err
	}
	return order.ID, nil
}
