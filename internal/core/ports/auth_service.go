package ports

import (
	"context"

	"github.com/storefront/commerce/internal/core/domain"
)

// TokenService issues and verifies signed bearer tokens.
type TokenService interface {
	Issue(claims domain.Claims) (string, error)
	Verify(token string) (domain.Claims, error)
}

// PasswordHasher hashes and checks plaintext passwords.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

type AuthService interface {
	Register(ctx context.Context, username, password string, role domain.Role) (string, *domain.User, error)
	Login(ctx context.Context, username, password string) (string, *domain.User, error)
}

// UpdateUserInput carries the optional fields of a user update. Password is plaintext.
type UpdateUserInput struct {
	Username *string
	Password *string
	Role     *domain.Role
}

type UserService interface {
	Get(ctx context.Context, id int64) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	Update(ctx context.Context, id int64, in UpdateUserInput) (*domain.User, error)
	Delete(ctx context.Context, id int64) error
}
