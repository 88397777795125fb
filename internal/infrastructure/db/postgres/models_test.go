package postgres

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/storefront/commerce/internal/core/domain"
)

func TestOrderModel_RoundTrip(t *testing.T) {
	now := time.Now().UTC()
	in := &domain.Order{
		ID:      "0b3f7e0e-4c35-4d7e-9d7a-53e5f3f8c001",
		OwnerID: 2,
		Status:  domain.OrderAwaitingShipment,
		Lines: []domain.OrderLine{
			{ProductID: "p1", Quantity: 2, UnitPrice: decimal.RequireFromString("9.99")},
		},
		Total:     decimal.RequireFromString("19.98"),
		Shipping:  &domain.ShippingInfo{RecipientName: "Bob", Address: "1 Main St", City: "Springfield", PostalCode: "12345"},
		CreatedAt: now,
		UpdatedAt: now,
	}

	m := fromDomainOrder(in)
	if m.Lines[0].OrderID != in.ID {
		t.Fatalf("line not linked to order: %+v", m.Lines[0])
	}
	out := m.toDomain()
	if out.Shipping == nil || out.Shipping.City != "Springfield" {
		t.Fatalf("shipping lost: %+v", out.Shipping)
	}
	if !out.Total.Equal(in.Total) || !out.Lines[0].UnitPrice.Equal(in.Lines[0].UnitPrice) {
		t.Fatalf("amounts changed: %s %s", out.Total, out.Lines[0].UnitPrice)
	}
}

func TestOrderModel_NoShipping(t *testing.T) {
	out := fromDomainOrder(&domain.Order{ID: "x", Status: domain.OrderReserved}).toDomain()
	if out.Shipping != nil {
		t.Fatalf("expected nil shipping, got %+v", out.Shipping)
	}
}

func TestUserModel_ToDomain(t *testing.T) {
	deleted := time.Now()
	m := userModel{ID: 7, Username: "bob", Role: "CUSTOMER", DeletedAt: gorm.DeletedAt{Time: deleted, Valid: true}}
	u := m.toDomain()
	if u.ID != 7 || u.Role != domain.RoleCustomer || u.DeletedAt == nil {
		t.Fatalf("unexpected user %+v", u)
	}
}

func TestToDomainCart(t *testing.T) {
	cart := toDomainCart(&cartModel{OwnerID: 3}, []cartLineModel{{OwnerID: 3, ProductID: "p1", Quantity: 2}})
	if cart.OwnerID != 3 || len(cart.Lines) != 1 || cart.Lines[0].Quantity != 2 {
		t.Fatalf("unexpected cart %+v", cart)
	}
}
