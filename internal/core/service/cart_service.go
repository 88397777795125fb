package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/storefront/commerce/internal/core/domain"
	"github.com/storefront/commerce/internal/core/ports"
)

// CartService keeps every cart line within the stock the catalog reports.
type CartService struct {
	carts   ports.CartRepository
	users   ports.UserRepository
	catalog ports.CatalogQuery
	events  ports.EventSink
	log     zerolog.Logger
}

func NewCartService(carts ports.CartRepository, users ports.UserRepository, catalog ports.CatalogQuery, events ports.EventSink, log zerolog.Logger) *CartService {
	return &CartService{carts: carts, users: users, catalog: catalog, events: events, log: log}
}

// SetQuantity creates, overwrites or removes (quantity 0) the owner's line
// for productID. The cart is created on first use once the owner is known
// to exist. The stock check and the write happen under the cart lock.
func (s *CartService) SetQuantity(ctx context.Context, ownerID int64, productID string, quantity int) (*domain.Cart, error) {
	if productID == "" {
		return nil, fmt.Errorf("%w: productId is required", domain.ErrValidation)
	}
	if quantity < 0 {
		return nil, fmt.Errorf("%w: quantity must not be negative", domain.ErrValidation)
	}

	if err := s.ensureCart(ctx, ownerID); err != nil {
		return nil, err
	}

	cart, err := s.carts.Mutate(ctx, ownerID, func(cart *domain.Cart) error {
		_, present := cart.Line(productID)
		if quantity == 0 {
			if !present {
				return domain.ErrLineNotFound
			}
			cart.RemoveLine(productID)
			return nil
		}

		product, err := s.catalog.GetProduct(ctx, productID)
		if err != nil {
			return err
		}
		if product.StockCount < quantity {
			s.log.Debug().
				Int64("owner_id", ownerID).
				Str("product_id", productID).
				Int("requested", quantity).
				Int("stock", product.StockCount).
				Msg("insufficient stock")
			return domain.ErrInsufficientStock
		}
		cart.SetLine(productID, quantity)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("set cart quantity: %w", err)
	}

	s.events.Emit(domain.Event{
		Type:       domain.EventCartLineSet,
		Key:        cartKey(ownerID),
		OccurredAt: time.Now().UTC(),
		Payload:    map[string]any{"ownerId": ownerID, "productId": productID, "quantity": quantity},
	})
	return cart, nil
}

func (s *CartService) ensureCart(ctx context.Context, ownerID int64) error {
	_, err := s.carts.FindByOwner(ctx, ownerID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrCartNotFound) {
		return err
	}

	if _, err := s.users.FindByID(ctx, ownerID); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrOwnerNotFound
		}
		return err
	}
	if _, err := s.carts.Create(ctx, ownerID); err != nil {
		return fmt.Errorf("create cart: %w", err)
	}
	s.log.Info().Int64("owner_id", ownerID).Msg("cart created")
	return nil
}

func (s *CartService) Read(ctx context.Context, ownerID int64) (*domain.Cart, error) {
	return s.carts.FindByOwner(ctx, ownerID)
}

// Delete removes the cart and all of its lines.
func (s *CartService) Delete(ctx context.Context, ownerID int64) error {
	if err := s.carts.Delete(ctx, ownerID); err != nil {
		return err
	}
	s.events.Emit(domain.Event{
		Type:       domain.EventCartDeleted,
		Key:        cartKey(ownerID),
		OccurredAt: time.Now().UTC(),
		Payload:    map[string]any{"ownerId": ownerID},
	})
	return nil
}

func cartKey(ownerID int64) string {
	return "cart-" + strconv.FormatInt(ownerID, 10)
}
