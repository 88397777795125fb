package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/storefront/commerce/internal/core/domain"
	"github.com/storefront/commerce/internal/core/ports"
)

const (
	idempotencyScope      = "order-reserve"
	defaultIdempotencyTTL = 24 * time.Hour
)

// OrderService turns carts into orders and drives them through their lifecycle.
// Stock leaves the catalog when an order is reserved and returns when it is cancelled.
type OrderService struct {
	orders  ports.OrderRepository
	carts   ports.CartRepository
	stock   ports.StockReserver
	idem    ports.IdempotencyStore
	events  ports.EventSink
	log     zerolog.Logger
	idemTTL time.Duration
}

func NewOrderService(
	orders ports.OrderRepository,
	carts ports.CartRepository,
	stock ports.StockReserver,
	idem ports.IdempotencyStore,
	events ports.EventSink,
	idemTTL time.Duration,
	log zerolog.Logger,
) *OrderService {
	if idemTTL <= 0 {
		idemTTL = defaultIdempotencyTTL
	}
	return &OrderService{
		orders:  orders,
		carts:   carts,
		stock:   stock,
		idem:    idem,
		events:  events,
		log:     log,
		idemTTL: idemTTL,
	}
}

// Reserve converts the owner's cart into a reserved order. Stock is
// decremented line by line; if any line cannot be reserved the lines already
// taken are released and the cart is left untouched. A repeated call with the
// same idempotency key returns the order created by the first call.
func (s *OrderService) Reserve(ctx context.Context, ownerID int64, idempotencyKey string) (*domain.Order, error) {
	scope := idempotencyScope + ":" + strconv.FormatInt(ownerID, 10)
	if idempotencyKey != "" {
		if existing := s.replay(ctx, scope, idempotencyKey); existing != nil {
			return existing, nil
		}
	}

	if _, err := s.orders.FindOpenByOwner(ctx, ownerID); err == nil {
		return nil, domain.ErrOrderExists
	} else if !errors.Is(err, domain.ErrOrderNotFound) {
		return nil, err
	}

	cart, err := s.carts.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if len(cart.Lines) == 0 {
		return nil, domain.ErrEmptyCart
	}

	lines := make([]domain.OrderLine, 0, len(cart.Lines))
	for _, l := range cart.Lines {
		product, err := s.stock.ReserveStock(ctx, l.ProductID, l.Quantity)
		if err != nil {
			s.release(ctx, ownerID, lines)
			return nil, fmt.Errorf("reserve product %s: %w", l.ProductID, err)
		}
		lines = append(lines, domain.OrderLine{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: product.Price,
		})
	}

	now := time.Now().UTC()
	order := &domain.Order{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Status:    domain.OrderReserved,
		Lines:     lines,
		Total:     domain.ComputeTotal(lines),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		s.release(ctx, ownerID, lines)
		return nil, fmt.Errorf("create order: %w", err)
	}

	if err := s.carts.Delete(ctx, ownerID); err != nil && !errors.Is(err, domain.ErrCartNotFound) {
		s.log.Warn().Err(err).Int64("owner_id", ownerID).Str("order_id", order.ID).Msg("cart not cleared after reservation")
	}
	if idempotencyKey != "" {
		if err := s.idem.Remember(ctx, scope, idempotencyKey, order.ID, s.idemTTL); err != nil {
			s.log.Warn().Err(err).Str("order_id", order.ID).Msg("idempotency key not stored")
		}
	}

	s.log.Info().Int64("owner_id", ownerID).Str("order_id", order.ID).Str("total", order.Total.String()).Msg("order reserved")
	s.emit(domain.EventOrderReserved, order)
	return order, nil
}

func (s *OrderService) replay(ctx context.Context, scope, key string) *domain.Order {
	id, ok, err := s.idem.Lookup(ctx, scope, key)
	if err != nil {
		s.log.Warn().Err(err).Str("idempotency_key", key).Msg("idempotency lookup failed, reserving anyway")
		return nil
	}
	if !ok {
		return nil
	}
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil
	}
	s.log.Info().Str("idempotency_key", key).Str("order_id", id).Msg("idempotent replay")
	return order
}

// release returns reserved stock to the catalog. It keeps going after a
// failure so that one bad line does not strand the others.
func (s *OrderService) release(ctx context.Context, ownerID int64, lines []domain.OrderLine) {
	ctx = context.WithoutCancel(ctx)
	for _, l := range lines {
		if _, err := s.stock.ReleaseStock(ctx, l.ProductID, l.Quantity); err != nil {
			s.log.Error().Err(err).
				Int64("owner_id", ownerID).
				Str("product_id", l.ProductID).
				Int("quantity", l.Quantity).
				Msg("stock release failed")
		}
	}
}

// AttachShipping records the delivery address. It may be called again to
// correct the address until the order ships.
func (s *OrderService) AttachShipping(ctx context.Context, ownerID int64, info domain.ShippingInfo) (*domain.Order, error) {
	if info.RecipientName == "" || info.Address == "" || info.City == "" || info.PostalCode == "" {
		return nil, domain.ErrShippingRequired
	}
	order, err := s.orders.FindOpenByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if err := s.transition(ctx, order, domain.OrderAwaitingShipment, func(o *domain.Order) {
		o.Shipping = &info
	}); err != nil {
		return nil, err
	}
	s.emit(domain.EventOrderShippingAttached, order)
	return order, nil
}

// Ship marks the owner's open order as shipped. Shipping info must be attached first.
func (s *OrderService) Ship(ctx context.Context, ownerID int64) (*domain.Order, error) {
	order, err := s.orders.FindOpenByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if order.Shipping == nil {
		return nil, domain.ErrShippingRequired
	}
	if err := s.transition(ctx, order, domain.OrderShipped, nil); err != nil {
		return nil, err
	}
	s.log.Info().Str("order_id", order.ID).Msg("order shipped")
	s.emit(domain.EventOrderShipped, order)
	return order, nil
}

// Read returns the owner's most recent order, whatever its status.
func (s *OrderService) Read(ctx context.Context, ownerID int64) (*domain.Order, error) {
	return s.orders.FindLatestByOwner(ctx, ownerID)
}

// Cancel cancels the owner's open order and returns its stock to the catalog.
// Stock is released only after the status change is stored, so a losing
// concurrent caller gives nothing back.
func (s *OrderService) Cancel(ctx context.Context, ownerID int64) (*domain.Order, error) {
	order, err := s.orders.FindOpenByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if err := s.transition(ctx, order, domain.OrderCancelled, nil); err != nil {
		return nil, err
	}
	s.release(ctx, ownerID, order.Lines)
	s.log.Info().Str("order_id", order.ID).Msg("order cancelled")
	s.emit(domain.EventOrderCancelled, order)
	return order, nil
}

// NeedingAttention lists orders that have shipping info and wait to be shipped.
func (s *OrderService) NeedingAttention(ctx context.Context) ([]*domain.Order, error) {
	return s.orders.ListByStatus(ctx, domain.OrderAwaitingShipment)
}

func (s *OrderService) transition(ctx context.Context, order *domain.Order, next domain.OrderStatus, mutate func(*domain.Order)) error {
	if !order.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, order.Status, next)
	}
	from := order.Status
	order.Status = next
	if mutate != nil {
		mutate(order)
	}
	order.UpdatedAt = time.Now().UTC()
	return s.orders.Save(ctx, order, from)
}

func (s *OrderService) emit(eventType string, order *domain.Order) {
	s.events.Emit(domain.Event{
		Type:       eventType,
		Key:        "order-" + order.ID,
		OccurredAt: time.Now().UTC(),
		Payload:    order,
	})
}
