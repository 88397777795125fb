package redis

import (
	"context"
	"testing"
	"time"
)

func TestIdemKey(t *testing.T) {
	if got := idemKey("order-reserve:2", "abc"); got != "idem:order-reserve:2:abc" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestProductCache_DeleteNothing(t *testing.T) {
	c := NewProductCache(nil)
	if err := c.Delete(context.Background()); err != nil {
		t.Fatalf("Delete with no keys returned error: %v", err)
	}
}

func TestConnect_Unreachable(t *testing.T) {
	_, err := Connect(context.Background(), Config{Addr: "127.0.0.1:1", Timeout: 200 * time.Millisecond})
	if err == nil {
		t.Fatalf("expected error connecting to a closed port")
	}
}
