package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/storefront/commerce/internal/core/domain"
)

type CartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) *CartRepository {
	return &CartRepository{db: db}
}

func (r *CartRepository) FindByOwner(ctx context.Context, ownerID int64) (*domain.Cart, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	return loadCart(r.db.WithContext(ctx), ownerID, false)
}

// Create inserts an empty cart. A concurrent insert for the same owner is
// not an error; the surviving row is returned.
func (r *CartRepository) Create(ctx context.Context, ownerID int64) (*domain.Cart, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	db := r.db.WithContext(ctx)
	now := time.Now().UTC()
	m := cartModel{OwnerID: ownerID, CreatedAt: now, UpdatedAt: now}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Omit("Lines").Create(&m).Error; err != nil {
		return nil, fmt.Errorf("insert cart: %w", err)
	}
	return loadCart(db, ownerID, false)
}

// Mutate locks the cart row with SELECT ... FOR UPDATE for the duration of
// fn, so concurrent writers to one cart are serialized.
func (r *CartRepository) Mutate(ctx context.Context, ownerID int64, fn func(*domain.Cart) error) (*domain.Cart, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var out *domain.Cart
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cart, err := loadCart(tx, ownerID, true)
		if err != nil {
			return err
		}
		before := cart.Clone()
		if err := fn(cart); err != nil {
			return err
		}
		if err := syncLines(tx, ownerID, before.Lines, cart.Lines); err != nil {
			return err
		}
		cart.UpdatedAt = time.Now().UTC()
		if err := tx.Model(&cartModel{}).Where("owner_id = ?", ownerID).Update("updated_at", cart.UpdatedAt).Error; err != nil {
			return fmt.Errorf("touch cart: %w", err)
		}
		out = cart
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes the lines and the cart in one transaction.
func (r *CartRepository) Delete(ctx context.Context, ownerID int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("owner_id = ?", ownerID).Delete(&cartLineModel{}).Error; err != nil {
			return fmt.Errorf("delete cart lines: %w", err)
		}
		res := tx.Where("owner_id = ?", ownerID).Delete(&cartModel{})
		if res.Error != nil {
			return fmt.Errorf("delete cart: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.ErrCartNotFound
		}
		return nil
	})
}

func loadCart(db *gorm.DB, ownerID int64, lock bool) (*domain.Cart, error) {
	q := db
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var m cartModel
	if err := q.Where("owner_id = ?", ownerID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCartNotFound
		}
		return nil, fmt.Errorf("find cart: %w", err)
	}

	var lines []cartLineModel
	if err := db.Where("owner_id = ?", ownerID).Order("created_at, product_id").Find(&lines).Error; err != nil {
		return nil, fmt.Errorf("find cart lines: %w", err)
	}
	return toDomainCart(&m, lines), nil
}

// syncLines writes the difference between two line sets.
func syncLines(tx *gorm.DB, ownerID int64, before, after []domain.CartLine) error {
	now := time.Now().UTC()
	kept := make(map[string]bool, len(after))
	for _, l := range after {
		kept[l.ProductID] = true
	}
	for _, l := range before {
		if kept[l.ProductID] {
			continue
		}
		if err := tx.Where("owner_id = ? AND product_id = ?", ownerID, l.ProductID).Delete(&cartLineModel{}).Error; err != nil {
			return fmt.Errorf("delete cart line: %w", err)
		}
	}

	previous := make(map[string]int, len(before))
	for _, l := range before {
		previous[l.ProductID] = l.Quantity
	}
	for _, l := range after {
		if q, ok := previous[l.ProductID]; ok && q == l.Quantity {
			continue
		}
		line := cartLineModel{OwnerID: ownerID, ProductID: l.ProductID, Quantity: l.Quantity, CreatedAt: now, UpdatedAt: now}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "owner_id"}, {Name: "product_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"quantity", "updated_at"}),
		}).Create(&line).Error
		if err != nil {
			return fmt.Errorf("upsert cart line: %w", err)
		}
	}
	return nil
}
