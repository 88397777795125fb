package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/storefront/commerce/internal/core/domain"
)

var discardLogger = zerolog.Nop()

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*domain.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[int64]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == user.Username && u.DeletedAt == nil {
			return nil, domain.ErrUserExists
		}
	}
	r.nextID++
	copy := cloneUser(user)
	copy.ID = r.nextID
	r.users[copy.ID] = copy
	return cloneUser(copy), nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok || u.DeletedAt != nil {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username && u.DeletedAt == nil {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) List(_ context.Context) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		if u.DeletedAt == nil {
			out = append(out, cloneUser(u))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubUserRepo) Update(_ context.Context, id int64, patch domain.UserPatch) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok || u.DeletedAt != nil {
		return nil, domain.ErrUserNotFound
	}
	if patch.Username != nil {
		u.Username = *patch.Username
	}
	if patch.PasswordHash != nil {
		u.PasswordHash = *patch.PasswordHash
	}
	if patch.Role != nil {
		u.Role = *patch.Role
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) SoftDelete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok || u.DeletedAt != nil {
		return domain.ErrUserNotFound
	}
	now := time.Now()
	u.DeletedAt = &now
	return nil
}

// seed stores a user directly and returns its id.
func (r *stubUserRepo) seed(username string, role domain.Role) int64 {
	u, _ := r.Create(context.Background(), &domain.User{Username: username, Role: role})
	return u.ID
}

// ---------------------------------------------------------------------------
// Carts
// ---------------------------------------------------------------------------

type stubCartRepo struct {
	mu    sync.Mutex
	carts map[int64]*domain.Cart
}

func newStubCartRepo() *stubCartRepo {
	return &stubCartRepo{carts: make(map[int64]*domain.Cart)}
}

func (r *stubCartRepo) FindByOwner(_ context.Context, ownerID int64) (*domain.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.carts[ownerID]
	if !ok {
		return nil, domain.ErrCartNotFound
	}
	return c.Clone(), nil
}

func (r *stubCartRepo) Create(_ context.Context, ownerID int64) (*domain.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.carts[ownerID]; ok {
		return c.Clone(), nil
	}
	now := time.Now()
	c := &domain.Cart{OwnerID: ownerID, Lines: []domain.CartLine{}, CreatedAt: now, UpdatedAt: now}
	r.carts[ownerID] = c
	return c.Clone(), nil
}

// Mutate holds the repo lock for the whole callback, like the row lock does.
func (r *stubCartRepo) Mutate(_ context.Context, ownerID int64, fn func(*domain.Cart) error) (*domain.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.carts[ownerID]
	if !ok {
		return nil, domain.ErrCartNotFound
	}
	work := c.Clone()
	if err := fn(work); err != nil {
		return nil, err
	}
	work.UpdatedAt = time.Now()
	r.carts[ownerID] = work
	return work.Clone(), nil
}

func (r *stubCartRepo) Delete(_ context.Context, ownerID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.carts[ownerID]; !ok {
		return domain.ErrCartNotFound
	}
	delete(r.carts, ownerID)
	return nil
}

// ---------------------------------------------------------------------------
// Catalog (query + stock)
// ---------------------------------------------------------------------------

type stubCatalog struct {
	mu       sync.Mutex
	products map[string]*domain.Product
	failOn   map[string]error // ReserveStock returns this error for the product
	released map[string]int
}

func newStubCatalog() *stubCatalog {
	return &stubCatalog{
		products: make(map[string]*domain.Product),
		failOn:   make(map[string]error),
		released: make(map[string]int),
	}
}

func (c *stubCatalog) add(id string, stock int, price string) {
	c.products[id] = &domain.Product{ID: id, Slug: id, Name: id, StockCount: stock, Price: decimal.RequireFromString(price)}
}

func (c *stubCatalog) stock(id string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.products[id].StockCount
}

func (c *stubCatalog) GetProduct(_ context.Context, id string) (*domain.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	clone := *p
	return &clone, nil
}

func (c *stubCatalog) ReserveStock(_ context.Context, id string, quantity int) (*domain.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.failOn[id]; err != nil {
		return nil, err
	}
	p, ok := c.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	if p.StockCount < quantity {
		return nil, domain.ErrInsufficientStock
	}
	p.StockCount -= quantity
	clone := *p
	return &clone, nil
}

func (c *stubCatalog) ReleaseStock(_ context.Context, id string, quantity int) (*domain.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	p.StockCount += quantity
	c.released[id] += quantity
	clone := *p
	return &clone, nil
}

// ---------------------------------------------------------------------------
// Orders, idempotency, events
// ---------------------------------------------------------------------------

type stubOrderRepo struct {
	mu     sync.Mutex
	orders []*domain.Order
}

func cloneOrder(o *domain.Order) *domain.Order {
	clone := *o
	clone.Lines = append([]domain.OrderLine(nil), o.Lines...)
	if o.Shipping != nil {
		s := *o.Shipping
		clone.Shipping = &s
	}
	return &clone
}

func (r *stubOrderRepo) Create(_ context.Context, o *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.orders {
		if existing.OwnerID == o.OwnerID && existing.Status.Open() {
			return domain.ErrOrderExists
		}
	}
	r.orders = append(r.orders, cloneOrder(o))
	return nil
}

func (r *stubOrderRepo) FindByID(_ context.Context, id string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.ID == id {
			return cloneOrder(o), nil
		}
	}
	return nil, domain.ErrOrderNotFound
}

func (r *stubOrderRepo) FindOpenByOwner(_ context.Context, ownerID int64) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.OwnerID == ownerID && o.Status.Open() {
			return cloneOrder(o), nil
		}
	}
	return nil, domain.ErrOrderNotFound
}

func (r *stubOrderRepo) FindLatestByOwner(_ context.Context, ownerID int64) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.orders) - 1; i >= 0; i-- {
		if r.orders[i].OwnerID == ownerID {
			return cloneOrder(r.orders[i]), nil
		}
	}
	return nil, domain.ErrOrderNotFound
}

func (r *stubOrderRepo) Save(_ context.Context, o *domain.Order, from domain.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.orders {
		if existing.ID == o.ID {
			if existing.Status != from {
				return domain.ErrInvalidTransition
			}
			r.orders[i] = cloneOrder(o)
			return nil
		}
	}
	return domain.ErrOrderNotFound
}

func (r *stubOrderRepo) ListByStatus(_ context.Context, status domain.OrderStatus) ([]*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Order
	for _, o := range r.orders {
		if o.Status == status {
			out = append(out, cloneOrder(o))
		}
	}
	return out, nil
}

type stubIdempotency struct {
	mu     sync.Mutex
	values map[string]string
}

func newStubIdempotency() *stubIdempotency {
	return &stubIdempotency{values: make(map[string]string)}
}

func (s *stubIdempotency) Lookup(_ context.Context, scope, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[scope+"/"+key]
	return v, ok, nil
}

func (s *stubIdempotency) Remember(_ context.Context, scope, key, value string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[scope+"/"+key] = value
	return nil
}

type recordingSink struct {
	mu     sync.Mutex
	events []domain.Event
}

func (s *recordingSink) Emit(e domain.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

func (s *recordingSink) types() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.events))
	for i, e := range s.events {
		out[i] = e.Type
	}
	return out
}
