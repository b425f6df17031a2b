package service

import (
	"context"

	"cicli-volante/internal/domain"
	"cicli-volante/internal/notify"
	"cicli-volante/internal/pricing"

	"go.uber.org/zap"
)

// StaticConfirmationMessage is returned with every stateless confirmation
const StaticConfirmationMessage = "Ordine ricevuto. In attesa di pagamento."

type staticOrderService struct {
	payment   domain.PaymentInfo
	publisher notify.Publisher
	logger    *zap.Logger
}

// NewStaticOrderService creates the stateless confirmer used by static
// hosting. Nothing is persisted; the order exists only in the response and
// in the published confirmation e-mails.
func NewStaticOrderService(payment domain.PaymentInfo, publisher notify.Publisher, logger *zap.Logger) OrderPlacer {
	return &staticOrderService{
		payment:   payment,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *staticOrderService) PlaceOrder(ctx context.Context, sub domain.OrderSubmission) (*domain.OrderConfirmation, error) {
	if err := validateSubmission(sub); err != nil {
		return nil, err
	}

	orderNumber := NewConfirmationNumber()
	payment := s.payment

	event := notify.NewOrderPlacedEvent(sub, orderNumber, payment)
	if err := s.publisher.PublishOrderPlaced(ctx, event); err != nil {
		s.logger.Warn("Failed to publish order confirmation",
			zap.String("order_number", orderNumber),
			zap.Error(err),
		)
	}

	s.logger.Info("Order confirmed without persistence",
		zap.String("order_number", orderNumber),
		zap.Int("items", len(sub.Items)),
	)

	return &domain.OrderConfirmation{
		Success:     true,
		OrderNumber: orderNumber,
		TotalAmount: pricing.FormatAmount(sub.Order.TotalAmount),
		PaymentInfo: &payment,
		Message:     StaticConfirmationMessage,
	}, nil
}
