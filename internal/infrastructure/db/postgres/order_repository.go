package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/storefront/commerce/internal/core/domain"
)

var openStatuses = []string{string(domain.OrderReserved), string(domain.OrderAwaitingShipment)}

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create inserts the order with its lines. The partial unique index on open
// orders turns a second open order for the owner into domain.ErrOrderExists.
func (r *OrderRepository) Create(ctx context.Context, o *domain.Order) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	m := fromDomainOrder(o)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrOrderExists
		}
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	return r.first(ctx, r.db.Where("id = ?", id))
}

func (r *OrderRepository) FindOpenByOwner(ctx context.Context, ownerID int64) (*domain.Order, error) {
	return r.first(ctx, r.db.Where("owner_id = ? AND status IN ?", ownerID, openStatuses))
}

func (r *OrderRepository) FindLatestByOwner(ctx context.Context, ownerID int64) (*domain.Order, error) {
	return r.first(ctx, r.db.Where("owner_id = ?", ownerID))
}

func (r *OrderRepository) first(ctx context.Context, q *gorm.DB) (*domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var m orderModel
	err := q.WithContext(ctx).Preload("Lines", func(db *gorm.DB) *gorm.DB {
		return db.Order("id")
	}).Order("created_at DESC").First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("find order: %w", err)
	}
	return m.toDomain(), nil
}

// Save persists the mutable part of an order: status, shipping and updated_at.
// The update is conditional on the status the caller read, so two concurrent
// transitions out of the same status cannot both succeed.
func (r *OrderRepository) Save(ctx context.Context, o *domain.Order, from domain.OrderStatus) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	m := fromDomainOrder(o)
	res := r.db.WithContext(ctx).Model(&orderModel{}).Where("id = ? AND status = ?", o.ID, string(from)).Updates(map[string]any{
		"status":                  m.Status,
		"shipping_recipient_name": m.Shipping.RecipientName,
		"shipping_address":        m.Shipping.Address,
		"shipping_city":           m.Shipping.City,
		"shipping_postal_code":    m.Shipping.PostalCode,
		"shipping_phone":          m.Shipping.Phone,
		"updated_at":              m.UpdatedAt,
	})
	if res.Error != nil {
		return fmt.Errorf("update order: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := r.FindByID(ctx, o.ID); err != nil {
			return err
		}
		return fmt.Errorf("%w: order %s is no longer %s", domain.ErrInvalidTransition, o.ID, from)
	}
	return nil
}

func (r *OrderRepository) ListByStatus(ctx context.Context, status domain.OrderStatus) ([]*domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var models []orderModel
	err := r.db.WithContext(ctx).Preload("Lines").
		Where("status = ?", string(status)).
		Order("updated_at").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	orders := make([]*domain.Order, 0, len(models))
	for i := range models {
		orders = append(orders, models[i].toDomain())
	}
	return orders, nil
}
