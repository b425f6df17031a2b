package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"cicli-volante/internal/domain"
)

var (
	ErrOrderNotFound        = errors.New("order not found")
	ErrDuplicateOrderNumber = errors.New("order number already exists")
	ErrOrderWithoutItems    = errors.New("order has no items")
	ErrEmptyStatusUpdate    = errors.New("status update is empty")
)

// OrderRepository defines the interface for order data access
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	CreateItem(ctx context.Context, item *domain.OrderItem) error
	FindByNumber(ctx context.Context, orderNumber string) (*domain.Order, error)
	FindByID(ctx context.Context, id int64) (*domain.Order, error)
	List(ctx context.Context) ([]*domain.Order, error)
	UpdateStatus(ctx context.Context, id int64, update domain.StatusUpdate) (*domain.Order, error)
}

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a PostgreSQL backed OrderRepository
func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepository{db: db}
}

const orderColumns = `id, order_number, customer_email, customer_name, customer_phone, shipping_address,
	total_amount, payment_method, payment_status, order_status, created_at`

type execQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var (
		order   domain.Order
		phone   sql.NullString
		address []byte
	)

	err := row.Scan(
		&order.ID,
		&order.OrderNumber,
		&order.CustomerEmail,
		&order.CustomerName,
		&phone,
		&address,
		&order.TotalAmount,
		&order.PaymentMethod,
		&order.PaymentStatus,
		&order.OrderStatus,
		&order.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	order.CustomerPhone = phone.String
	if err := json.Unmarshal(address, &order.ShippingAddress); err != nil {
		return nil, fmt.Errorf("failed to decode shipping address: %w", err)
	}

	return &order, nil
}

// Create inserts the order and every item in order.Items in one
// transaction. Either all rows are committed or none.
func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	if len(order.Items) == 0 {
		return ErrOrderWithoutItems
	}
	if order.PaymentStatus == "" {
		order.PaymentStatus = domain.PaymentStatusPending
	}
	if order.OrderStatus == "" {
		order.OrderStatus = domain.OrderStatusPendingPayment
	}

	address, err := json.Marshal(order.ShippingAddress)
	if err != nil {
		return fmt.Errorf("failed to encode shipping address: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO orders (order_number, customer_email, customer_name, customer_phone, shipping_address,
			total_amount, payment_method, payment_status, order_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`

	err = tx.QueryRowContext(
		ctx,
		query,
		order.OrderNumber,
		order.CustomerEmail,
		order.CustomerName,
		order.CustomerPhone,
		string(address),
		order.TotalAmount,
		order.PaymentMethod,
		order.PaymentStatus,
		order.OrderStatus,
	).Scan(&order.ID, &order.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, "orders_order_number_key") {
			return ErrDuplicateOrderNumber
		}
		return fmt.Errorf("failed to create order: %w", err)
	}

	for _, item := range order.Items {
		item.OrderID = order.ID
		if err := insertOrderItem(ctx, tx, item); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit order: %w", err)
	}

	return nil
}

// CreateItem inserts one item for an existing order
func (r *orderRepository) CreateItem(ctx context.Context, item *domain.OrderItem) error {
	return insertOrderItem(ctx, r.db, item)
}

func insertOrderItem(ctx context.Context, q execQuerier, item *domain.OrderItem) error {
	query := `
		INSERT INTO order_items (order_id, product_id, product_name, product_price, quantity, subtotal)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := q.QueryRowContext(
		ctx,
		query,
		item.OrderID,
		item.ProductID,
		item.ProductName,
		item.ProductPrice,
		item.Quantity,
		item.Subtotal,
	).Scan(&item.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("failed to create order item: %w", err)
	}

	return nil
}

// FindByNumber retrieves an order and its items by order number
func (r *orderRepository) FindByNumber(ctx context.Context, orderNumber string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE order_number = $1`
	return r.findOne(ctx, query, orderNumber)
}

// FindByID retrieves an order and its items by id
func (r *orderRepository) FindByID(ctx context.Context, id int64) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	return r.findOne(ctx, query, id)
}

func (r *orderRepository) findOne(ctx context.Context, query string, arg interface{}) (*domain.Order, error) {
	order, err := scanOrder(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to find order: %w", err)
	}

	items, err := r.listItems(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = items

	return order, nil
}

func (r *orderRepository) listItems(ctx context.Context, orderID int64) ([]*domain.OrderItem, error) {
	query := `
		SELECT id, order_id, product_id, product_name, product_price, quantity, subtotal
		FROM order_items
		WHERE order_id = $1
		ORDER BY id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list order items: %w", err)
	}
	defer rows.Close()

	items := []*domain.OrderItem{}
	for rows.Next() {
		item := &domain.OrderItem{}
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.ProductName,
			&item.ProductPrice,
			&item.Quantity,
			&item.Subtotal,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return items, nil
}

// List retrieves all orders, newest first, without their items
func (r *orderRepository) List(ctx context.Context) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := []*domain.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	return orders, nil
}

// UpdateStatus applies a partial status update. Any value may replace any
// other; transitions are not checked here.
func (r *orderRepository) UpdateStatus(ctx context.Context, id int64, update domain.StatusUpdate) (*domain.Order, error) {
	if update.Empty() {
		return nil, ErrEmptyStatusUpdate
	}

	var paymentStatus, orderStatus sql.NullString
	if update.PaymentStatus != nil {
		paymentStatus = sql.NullString{String: string(*update.PaymentStatus), Valid: true}
	}
	if update.OrderStatus != nil {
		orderStatus = sql.NullString{String: string(*update.OrderStatus), Valid: true}
	}

	query := `
		UPDATE orders
		SET payment_status = COALESCE($2, payment_status),
		    order_status = COALESCE($3, order_status)
		WHERE id = $1
		RETURNING ` + orderColumns

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id, paymentStatus, orderStatus))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	return order, nil
}
