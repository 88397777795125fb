package postgres

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/storefront/commerce/internal/core/domain"
)

type userModel struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"`
	Username     string `gorm:"type:varchar(64);not null;uniqueIndex:idx_users_username,where:deleted_at IS NULL"`
	PasswordHash string `gorm:"not null"`
	Role         string `gorm:"type:varchar(16);not null;default:ANONYMOUS"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

func (userModel) TableName() string { return "users" }

func (m *userModel) toDomain() *domain.User {
	u := &domain.User{
		ID:           m.ID,
		Username:     m.Username,
		PasswordHash: m.PasswordHash,
		Role:         domain.Role(m.Role),
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
	if m.DeletedAt.Valid {
		t := m.DeletedAt.Time
		u.DeletedAt = &t
	}
	return u
}

type cartModel struct {
	OwnerID   int64 `gorm:"primaryKey;autoIncrement:false"`
	CreatedAt time.Time
	UpdatedAt time.Time
	Lines     []cartLineModel `gorm:"foreignKey:OwnerID;references:OwnerID;constraint:OnDelete:CASCADE"`
}

func (cartModel) TableName() string { return "carts" }

type cartLineModel struct {
	OwnerID   int64  `gorm:"primaryKey;autoIncrement:false"`
	ProductID string `gorm:"primaryKey;type:varchar(64)"`
	Quantity  int    `gorm:"not null;check:quantity > 0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (cartLineModel) TableName() string { return "cart_lines" }

func toDomainCart(m *cartModel, lines []cartLineModel) *domain.Cart {
	cart := &domain.Cart{
		OwnerID:   m.OwnerID,
		Lines:     make([]domain.CartLine, 0, len(lines)),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	for _, l := range lines {
		cart.Lines = append(cart.Lines, domain.CartLine{ProductID: l.ProductID, Quantity: l.Quantity})
	}
	return cart
}

type orderModel struct {
	ID        string          `gorm:"primaryKey;type:uuid"`
	OwnerID   int64           `gorm:"not null;index"`
	Status    string          `gorm:"type:varchar(32);not null;index"`
	Total     decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Shipping  shippingColumns `gorm:"embedded;embeddedPrefix:shipping_"`
	CreatedAt time.Time       `gorm:"index"`
	UpdatedAt time.Time
	Lines     []orderLineModel `gorm:"foreignKey:OrderID;references:ID;constraint:OnDelete:CASCADE"`
}

func (orderModel) TableName() string { return "orders" }

type shippingColumns struct {
	RecipientName string
	Address       string
	City          string
	PostalCode    string
	Phone         string
}

type orderLineModel struct {
	ID        int64           `gorm:"primaryKey;autoIncrement"`
	OrderID   string          `gorm:"type:uuid;not null;index"`
	ProductID string          `gorm:"type:varchar(64);not null"`
	Quantity  int             `gorm:"not null;check:quantity > 0"`
	UnitPrice decimal.Decimal `gorm:"type:numeric(14,2);not null"`
}

func (orderLineModel) TableName() string { return "order_lines" }

func fromDomainOrder(o *domain.Order) *orderModel {
	m := &orderModel{
		ID:        o.ID,
		OwnerID:   o.OwnerID,
		Status:    string(o.Status),
		Total:     o.Total,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
	if o.Shipping != nil {
		m.Shipping = shippingColumns(*o.Shipping)
	}
	for _, l := range o.Lines {
		m.Lines = append(m.Lines, orderLineModel{
			OrderID:   o.ID,
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		})
	}
	return m
}

func (m *orderModel) toDomain() *domain.Order {
	o := &domain.Order{
		ID:        m.ID,
		OwnerID:   m.OwnerID,
		Status:    domain.OrderStatus(m.Status),
		Total:     m.Total,
		Lines:     make([]domain.OrderLine, 0, len(m.Lines)),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	if m.Shipping.RecipientName != "" {
		s := domain.ShippingInfo(m.Shipping)
		o.Shipping = &s
	}
	for _, l := range m.Lines {
		o.Lines = append(o.Lines, domain.OrderLine{ProductID: l.ProductID, Quantity: l.Quantity, UnitPrice: l.UnitPrice})
	}
	return o
}
