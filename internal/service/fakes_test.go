package service

import (
	"context"
	"sort"
	"sync"

	"cicli-volante/internal/domain"
	"cicli-volante/internal/notify"
	"cicli-volante/internal/repository"
)

type memoryProducts struct {
	mu       sync.Mutex
	nextID   int64
	products map[int64]*domain.Product
}

func newMemoryProducts(products ...*domain.Product) *memoryProducts {
	m := &memoryProducts{products: make(map[int64]*domain.Product)}
	for _, p := range products {
		cp := *p
		m.products[p.ID] = &cp
		if p.ID > m.nextID {
			m.nextID = p.ID
		}
	}
	return m
}

func (m *memoryProducts) Create(ctx context.Context, product *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.products {
		if p.Slug == product.Slug {
			return repository.ErrSlugAlreadyExists
		}
	}
	m.nextID++
	product.ID = m.nextID
	cp := *product
	m.products[product.ID] = &cp
	return nil
}

func (m *memoryProducts) Update(ctx context.Context, product *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[product.ID]; !ok {
		return repository.ErrProductNotFound
	}
	for _, p := range m.products {
		if p.Slug == product.Slug && p.ID != product.ID {
			return repository.ErrSlugAlreadyExists
		}
	}
	cp := *product
	m.products[product.ID] = &cp
	return nil
}

func (m *memoryProducts) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[id]; !ok {
		return repository.ErrProductNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *memoryProducts) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memoryProducts) FindBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.products {
		if p.Slug == slug {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repository.ErrProductNotFound
}

func (m *memoryProducts) List(ctx context.Context, filter repository.ProductFilter) ([]*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	products := []*domain.Product{}
	for _, p := range m.products {
		if filter.Matches(p) {
			cp := *p
			products = append(products, &cp)
		}
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	return products, nil
}

func (m *memoryProducts) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.products), nil
}

type memoryOrders struct {
	mu      sync.Mutex
	nextID  int64
	orders  []*domain.Order
	creates int
}

func (m *memoryOrders) Create(ctx context.Context, order *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creates++
	for _, o := range m.orders {
		if o.OrderNumber == order.OrderNumber {
			return repository.ErrDuplicateOrderNumber
		}
	}
	m.nextID++
	order.ID = m.nextID
	for i, item := range order.Items {
		item.ID = int64(i + 1)
		item.OrderID = order.ID
	}
	cp := *order
	m.orders = append(m.orders, &cp)
	return nil
}

func (m *memoryOrders) CreateItem(ctx context.Context, item *domain.OrderItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if o.ID == item.OrderID {
			o.Items = append(o.Items, item)
			return nil
		}
	}
	return repository.ErrOrderNotFound
}

func (m *memoryOrders) FindByNumber(ctx context.Context, orderNumber string) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if o.OrderNumber == orderNumber {
			cp := *o
			return &cp, nil
		}
	}
	return nil, repository.ErrOrderNotFound
}

func (m *memoryOrders) FindByID(ctx context.Context, id int64) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if o.ID == id {
			cp := *o
			return &cp, nil
		}
	}
	return nil, repository.ErrOrderNotFound
}

func (m *memoryOrders) List(ctx context.Context) ([]*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	orders := make([]*domain.Order, 0, len(m.orders))
	for i := len(m.orders) - 1; i >= 0; i-- {
		cp := *m.orders[i]
		orders = append(orders, &cp)
	}
	return orders, nil
}

func (m *memoryOrders) UpdateStatus(ctx context.Context, id int64, update domain.StatusUpdate) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if o.ID != id {
			continue
		}
		if update.PaymentStatus != nil {
			o.PaymentStatus = *update.PaymentStatus
		}
		if update.OrderStatus != nil {
			o.OrderStatus = *update.OrderStatus
		}
		cp := *o
		return &cp, nil
	}
	return nil, repository.ErrOrderNotFound
}

type memoryAdmins struct {
	mu     sync.Mutex
	nextID int64
	admins []*domain.AdminUser
}

func (m *memoryAdmins) Create(ctx context.Context, admin *domain.AdminUser) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.admins {
		if a.Username == admin.Username {
			return repository.ErrAdminAlreadyExists
		}
	}
	m.nextID++
	admin.ID = m.nextID
	cp := *admin
	m.admins = append(m.admins, &cp)
	return nil
}

func (m *memoryAdmins) FindByUsername(ctx context.Context, username string) (*domain.AdminUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.admins {
		if a.Username == username {
			cp := *a
			return &cp, nil
		}
	}
	return nil, repository.ErrAdminNotFound
}

func (m *memoryAdmins) FindByID(ctx context.Context, id int64) (*domain.AdminUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.admins {
		if a.ID == id {
			cp := *a
			return &cp, nil
		}
	}
	return nil, repository.ErrAdminNotFound
}

func (m *memoryAdmins) remove(id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, a := range m.admins {
		if a.ID == id {
			m.admins = append(m.admins[:i], m.admins[i+1:]...)
			return
		}
	}
}

// recordingPublisher keeps every published event
type recordingPublisher struct {
	mu     sync.Mutex
	events []notify.OrderPlacedEvent
	err    error
}

func (p *recordingPublisher) PublishOrderPlaced(ctx context.Context, event notify.OrderPlacedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) published() []notify.OrderPlacedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]notify.OrderPlacedEvent(nil), p.events...)
}
