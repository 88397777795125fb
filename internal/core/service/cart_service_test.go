package service

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/storefront/commerce/internal/core/domain"
)

type cartFixture struct {
	svc     *CartService
	users   *stubUserRepo
	carts   *stubCartRepo
	catalog *stubCatalog
	sink    *recordingSink
	bob     int64
}

func newCartFixture() *cartFixture {
	f := &cartFixture{
		users:   newStubUserRepo(),
		carts:   newStubCartRepo(),
		catalog: newStubCatalog(),
		sink:    &recordingSink{},
	}
	f.bob = f.users.seed("bob", domain.RoleCustomer)
	f.catalog.add("p1", 5, "10.00")
	f.catalog.add("p2", 1, "3.50")
	f.svc = NewCartService(f.carts, f.users, f.catalog, f.sink, discardLogger)
	return f
}

func TestCartService_SetQuantity_StockBoundary(t *testing.T) {
	f := newCartFixture()
	ctx := context.Background()

	cart, err := f.svc.SetQuantity(ctx, f.bob, "p1", 5)
	if err != nil {
		t.Fatalf("SetQuantity at stock count returned error: %v", err)
	}
	if l, ok := cart.Line("p1"); !ok || l.Quantity != 5 {
		t.Fatalf("unexpected line: %+v", cart.Lines)
	}

	if _, err := f.svc.SetQuantity(ctx, f.bob, "p1", 6); !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
	after, _ := f.svc.Read(ctx, f.bob)
	if l, _ := after.Line("p1"); l.Quantity != 5 {
		t.Fatalf("cart changed after rejected write: %+v", after.Lines)
	}
}

func TestCartService_SetQuantity_NewLineInsufficientStock(t *testing.T) {
	f := newCartFixture()

	if _, err := f.svc.SetQuantity(context.Background(), f.bob, "p1", 6); !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
	cart, err := f.svc.Read(context.Background(), f.bob)
	if err != nil {
		t.Fatalf("expected empty cart to exist, got %v", err)
	}
	if len(cart.Lines) != 0 {
		t.Fatalf("expected no lines, got %+v", cart.Lines)
	}
}

func TestCartService_SetQuantity_Idempotent(t *testing.T) {
	f := newCartFixture()
	ctx := context.Background()

	first, _ := f.svc.SetQuantity(ctx, f.bob, "p1", 3)
	second, err := f.svc.SetQuantity(ctx, f.bob, "p1", 3)
	if err != nil {
		t.Fatalf("second SetQuantity returned error: %v", err)
	}
	if !reflect.DeepEqual(first.Lines, second.Lines) {
		t.Fatalf("lines changed: %+v -> %+v", first.Lines, second.Lines)
	}
}

func TestCartService_SetQuantity_RemoveLine(t *testing.T) {
	f := newCartFixture()
	ctx := context.Background()

	_, _ = f.svc.SetQuantity(ctx, f.bob, "p1", 2)
	_, _ = f.svc.SetQuantity(ctx, f.bob, "p2", 1)
	cart, err := f.svc.SetQuantity(ctx, f.bob, "p1", 0)
	if err != nil {
		t.Fatalf("remove returned error: %v", err)
	}
	if _, ok := cart.Line("p1"); ok {
		t.Fatalf("line p1 still present: %+v", cart.Lines)
	}
	if _, ok := cart.Line("p2"); !ok {
		t.Fatalf("line p2 missing: %+v", cart.Lines)
	}
}

func TestCartService_SetQuantity_RemoveMissingLine(t *testing.T) {
	f := newCartFixture()

	if _, err := f.svc.SetQuantity(context.Background(), f.bob, "p1", 0); !errors.Is(err, domain.ErrLineNotFound) {
		t.Fatalf("expected ErrLineNotFound, got %v", err)
	}
}

func TestCartService_SetQuantity_OwnerNotFound(t *testing.T) {
	f := newCartFixture()

	if _, err := f.svc.SetQuantity(context.Background(), 999, "p1", 1); !errors.Is(err, domain.ErrOwnerNotFound) {
		t.Fatalf("expected ErrOwnerNotFound, got %v", err)
	}
	if _, err := f.carts.FindByOwner(context.Background(), 999); !errors.Is(err, domain.ErrCartNotFound) {
		t.Fatalf("cart must not be created for unknown owner, got %v", err)
	}
}

func TestCartService_SetQuantity_ProductNotFound(t *testing.T) {
	f := newCartFixture()

	if _, err := f.svc.SetQuantity(context.Background(), f.bob, "missing", 1); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestCartService_SetQuantity_Validation(t *testing.T) {
	f := newCartFixture()

	if _, err := f.svc.SetQuantity(context.Background(), f.bob, "p1", -1); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if _, err := f.svc.SetQuantity(context.Background(), f.bob, "", 1); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestCartService_SetQuantity_Concurrent(t *testing.T) {
	f := newCartFixture()
	ctx := context.Background()

	var wg sync.WaitGroup
	for q := 1; q <= 5; q++ {
		wg.Add(1)
		go func(q int) {
			defer wg.Done()
			_, _ = f.svc.SetQuantity(ctx, f.bob, "p1", q)
		}(q)
	}
	wg.Wait()

	cart, err := f.svc.Read(ctx, f.bob)
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	if len(cart.Lines) != 1 {
		t.Fatalf("expected exactly one line, got %+v", cart.Lines)
	}
}

func TestCartService_ReadAndDelete(t *testing.T) {
	f := newCartFixture()
	ctx := context.Background()

	if _, err := f.svc.Read(ctx, f.bob); !errors.Is(err, domain.ErrCartNotFound) {
		t.Fatalf("expected ErrCartNotFound, got %v", err)
	}
	if err := f.svc.Delete(ctx, f.bob); !errors.Is(err, domain.ErrCartNotFound) {
		t.Fatalf("expected ErrCartNotFound, got %v", err)
	}

	_, _ = f.svc.SetQuantity(ctx, f.bob, "p1", 1)
	if err := f.svc.Delete(ctx, f.bob); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, err := f.svc.Read(ctx, f.bob); !errors.Is(err, domain.ErrCartNotFound) {
		t.Fatalf("expected ErrCartNotFound after delete, got %v", err)
	}

	want := []string{domain.EventCartLineSet, domain.EventCartDeleted}
	if got := f.sink.types(); !reflect.DeepEqual(got, want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
}

func TestCartService_SetQuantity_RejectsSlug(t *testing.T) {
	products := newProductFixture()
	p := products.create(t)
	users := newStubUserRepo()
	bob := users.seed("bob", domain.RoleCustomer)
	svc := NewCartService(newStubCartRepo(), users, products.svc, &recordingSink{}, discardLogger)
	ctx := context.Background()

	if _, err := svc.SetQuantity(ctx, bob, p.ID, 4); err != nil {
		t.Fatalf("SetQuantity by id returned error: %v", err)
	}
	if _, err := svc.SetQuantity(ctx, bob, p.Slug, 4); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound for a slug, got %v", err)
	}
	cart, err := svc.Read(ctx, bob)
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	if len(cart.Lines) != 1 || cart.Lines[0].ProductID != p.ID {
		t.Fatalf("expected a single line keyed by id, got %+v", cart.Lines)
	}
}
