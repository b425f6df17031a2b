package storefront

import (
	"context"
	"errors"

	"cicli-volante/internal/cart"
	"cicli-volante/internal/domain"
	"cicli-volante/internal/pricing"

	"go.uber.org/zap"
)

var ErrEmptyCart = errors.New("cart is empty")

// OrderSubmitter sends an order to a backend
type OrderSubmitter interface {
	SubmitOrder(ctx context.Context, sub domain.OrderSubmission) (*domain.OrderConfirmation, error)
}

// Customer holds the checkout form
type Customer struct {
	Name            string
	Email           string
	Phone           string
	ShippingAddress domain.ShippingAddress
	PaymentMethod   domain.PaymentMethod
}

// Receipt is what the confirmation page shows after a successful checkout
type Receipt struct {
	Confirmation domain.OrderConfirmation
	Quote        pricing.Quote
	Lines        []cart.Line
}

// Checkout turns the cart of one browsing session into an order
type Checkout struct {
	cart      *cart.Cart
	submitter OrderSubmitter
	logger    *zap.Logger
}

// NewCheckout binds a session's cart to an order backend
func NewCheckout(c *cart.Cart, submitter OrderSubmitter, logger *zap.Logger) *Checkout {
	return &Checkout{
		cart:      c,
		submitter: submitter,
		logger:    logger,
	}
}

// Quote returns the amounts the checkout page displays
func (c *Checkout) Quote() pricing.Quote {
	return c.cart.Quote()
}

// Submission builds the order request for customer. The total includes
// shipping and is computed with the same rule the cart displays.
func (c *Checkout) Submission(customer Customer) domain.OrderSubmission {
	paymentMethod := customer.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = domain.PaymentMethodBankTransfer
	}

	return domain.OrderSubmission{
		Order: domain.OrderDetails{
			CustomerName:    customer.Name,
			CustomerEmail:   customer.Email,
			CustomerPhone:   customer.Phone,
			ShippingAddress: customer.ShippingAddress,
			TotalAmount:     c.cart.Quote().Total,
			PaymentMethod:   paymentMethod,
		},
		Items: c.cart.OrderLines(),
	}
}

// PlaceOrder submits the cart. The cart is cleared only after the backend
// confirmed the order; on failure it is left intact so the customer can
// try again.
func (c *Checkout) PlaceOrder(ctx context.Context, customer Customer) (*Receipt, error) {
	if c.cart.Len() == 0 {
		return nil, ErrEmptyCart
	}

	lines := c.cart.Lines()
	quote := c.cart.Quote()

	confirmation, err := c.submitter.SubmitOrder(ctx, c.Submission(customer))
	if err != nil {
		c.logger.Warn("Order submission failed, cart kept", zap.Error(err))
		return nil, err
	}

	c.cart.Clear()

	c.logger.Info("Order submitted",
		zap.String("order_number", confirmation.OrderNumber),
		zap.String("total", confirmation.TotalAmount),
	)

	return &Receipt{
		Confirmation: *confirmation,
		Quote:        quote,
		Lines:        lines,
	}, nil
}
