package ports

import (
	"context"

	"github.com/storefront/commerce/internal/core/domain"
)

// UserRepository is the credential store. Soft-deleted users are invisible
// to every method.
type UserRepository interface {
	// Create fails with domain.ErrUserExists on a username collision.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	Update(ctx context.Context, id int64, patch domain.UserPatch) (*domain.User, error)
	SoftDelete(ctx context.Context, id int64) error
}
