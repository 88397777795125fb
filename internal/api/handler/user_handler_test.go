package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/storefront/commerce/internal/core/domain"
	"github.com/storefront/commerce/internal/core/ports"
)

var (
	adminClaims    = &domain.Claims{ID: 1, Username: "root", Role: domain.RoleAdmin}
	customerClaims = &domain.Claims{ID: 7, Username: "alice", Role: domain.RoleCustomer}
)

func registeringAuth(t *testing.T, wantRole domain.Role) *stubAuthService {
	return &stubAuthService{
		registerFn: func(ctx context.Context, username, password string, role domain.Role) (string, *domain.User, error) {
			if role != wantRole {
				t.Fatalf("role: want %s, got %s", wantRole, role)
			}
			return "tok", &domain.User{ID: 9, Username: username, Role: role}, nil
		},
	}
}

func TestUserHandler_Create(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		claims     *domain.Claims
		wantRole   domain.Role
		wantErr    error
		wantStatus int
	}{
		{"no role defaults to anonymous", `{"username":"bob","password":"secret12"}`, nil, domain.RoleAnonymous, nil, http.StatusCreated},
		{"admin sets role", `{"username":"bob","password":"secret12","role":"CUSTOMER"}`, adminClaims, domain.RoleCustomer, nil, http.StatusCreated},
		{"anonymous sets role", `{"username":"bob","password":"secret12","role":"ADMIN"}`, nil, "", domain.ErrUnauthenticated, 0},
		{"customer sets role", `{"username":"bob","password":"secret12","role":"ADMIN"}`, customerClaims, "", domain.ErrForbidden, 0},
		{"role checked before body", `{"username":"b","role":"ADMIN"}`, customerClaims, "", domain.ErrForbidden, 0},
		{"short password", `{"username":"bob","password":"x"}`, nil, "", domain.ErrValidation, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewUserHandler(registeringAuth(t, tt.wantRole), &stubUserService{})
			c, rec := newContext(http.MethodPost, "/users", tt.body, tt.claims)

			err := h.Create(c)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("want %v, got %v", tt.wantErr, err)
			}
			if tt.wantErr == nil && rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rec.Code)
			}
		})
	}
}

func TestUserHandler_Read(t *testing.T) {
	users := &stubUserService{
		getFn: func(ctx context.Context, id int64) (*domain.User, error) {
			return &domain.User{ID: id}, nil
		},
		getByUsernameFn: func(ctx context.Context, username string) (*domain.User, error) {
			return &domain.User{ID: 7, Username: username}, nil
		},
		listFn: func(ctx context.Context) ([]*domain.User, error) {
			return []*domain.User{{ID: 1}, {ID: 7}}, nil
		},
	}

	tests := []struct {
		name    string
		target  string
		claims  *domain.Claims
		wantErr error
	}{
		{"anonymous", "/users", nil, domain.ErrUnauthenticated},
		{"customer lists all", "/users", customerClaims, domain.ErrForbidden},
		{"admin lists all", "/users", adminClaims, nil},
		{"customer reads self by id", "/users?id=7", customerClaims, nil},
		{"customer reads other by id", "/users?id=8", customerClaims, domain.ErrForbidden},
		{"customer reads self by name", "/users?username=alice", customerClaims, nil},
		{"customer reads other by name", "/users?username=bob", customerClaims, domain.ErrForbidden},
		{"admin reads other by name", "/users?username=bob", adminClaims, nil},
		{"bad id", "/users?id=x", customerClaims, domain.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newContext(http.MethodGet, tt.target, "", tt.claims)
			err := NewUserHandler(&stubAuthService{}, users).Read(c)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("want %v, got %v", tt.wantErr, err)
			}
			if err == nil && rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rec.Code)
			}
		})
	}
}

func TestUserHandler_Update(t *testing.T) {
	var got ports.UpdateUserInput
	users := &stubUserService{
		updateFn: func(ctx context.Context, id int64, in ports.UpdateUserInput) (*domain.User, error) {
			got = in
			return &domain.User{ID: id}, nil
		},
	}

	t.Run("customer cannot change role", func(t *testing.T) {
		c, _ := newContext(http.MethodPatch, "/users/7", `{"role":"ADMIN"}`, customerClaims, "id", "7")
		if err := NewUserHandler(&stubAuthService{}, users).Update(c); !errors.Is(err, domain.ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("admin changes role", func(t *testing.T) {
		c, rec := newContext(http.MethodPatch, "/users/7", `{"role":"CUSTOMER"}`, adminClaims, "id", "7")
		if err := NewUserHandler(&stubAuthService{}, users).Update(c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if got.Role == nil || *got.Role != domain.RoleCustomer {
			t.Fatalf("role not forwarded: %+v", got)
		}
	})

	t.Run("password forwarded", func(t *testing.T) {
		c, _ := newContext(http.MethodPatch, "/users/7", `{"password":"longenough"}`, customerClaims, "id", "7")
		if err := NewUserHandler(&stubAuthService{}, users).Update(c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Password == nil || *got.Password != "longenough" {
			t.Fatalf("password not forwarded: %+v", got)
		}
	})
}

func TestUserHandler_Delete(t *testing.T) {
	var deleted int64
	users := &stubUserService{
		deleteFn: func(ctx context.Context, id int64) error {
			deleted = id
			return nil
		},
	}
	c, rec := newContext(http.MethodDelete, "/users/7", "", customerClaims, "id", "7")
	if err := NewUserHandler(&stubAuthService{}, users).Delete(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	// Without the policy middleware the caller's own id is used.
	if deleted != 7 {
		t.Fatalf("expected user 7 deleted, got %d", deleted)
	}
}
