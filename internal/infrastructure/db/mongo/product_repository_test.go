package mongo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/storefront/commerce/internal/core/domain"
)

func TestDecimal128_RoundTrip(t *testing.T) {
	for _, s := range []string{"0", "12.99", "1000000.01"} {
		in := decimal.RequireFromString(s)
		v, err := toDecimal128(in)
		if err != nil {
			t.Fatalf("toDecimal128(%s): %v", s, err)
		}
		if out := fromDecimal128(v); !out.Equal(in) {
			t.Fatalf("round trip %s -> %s", in, out)
		}
	}
}

func TestProductDoc_ToDomain(t *testing.T) {
	oid := primitive.NewObjectID()
	price, _ := primitive.ParseDecimal128("4.50")
	doc := productDoc{ID: oid, Name: "Mug", Slug: "mug", Price: price, StockCount: 3, CreatedAt: time.Now()}

	p := doc.toDomain()
	if p.ID != oid.Hex() || p.StockCount != 3 || !p.Price.Equal(decimal.RequireFromString("4.5")) {
		t.Fatalf("unexpected product %+v", p)
	}
}

func TestActiveFilter(t *testing.T) {
	f := active(bson.M{"slug": "mug"})
	if v, ok := f["deleted_at"]; !ok || v != nil {
		t.Fatalf("expected deleted_at: nil in filter, got %v", f)
	}
}

func TestProductRepository_InvalidID(t *testing.T) {
	r := &ProductRepository{}
	ctx := context.Background()

	if _, err := r.FindByID(ctx, "not-an-object-id"); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("FindByID: expected ErrProductNotFound, got %v", err)
	}
	if _, err := r.AdjustStock(ctx, "nope", -1); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("AdjustStock: expected ErrProductNotFound, got %v", err)
	}
	if err := r.SoftDelete(ctx, "nope"); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("SoftDelete: expected ErrProductNotFound, got %v", err)
	}
}
