package ports

import (
	"context"

	"github.com/adminhub/user-accounts/internal/core/domain"
)

// UserRepository defines persistence operations for user accounts.
// Lookups that match nothing return domain.ErrUserNotFound.
type UserRepository interface {
	FindByEmailAndRole(ctx context.Context, email string, role domain.Role) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByIDAndRole(ctx context.Context, id string, role domain.Role) (*domain.User, error)
	// Insert returns domain.ErrUserExists when (email, role) is already taken.
	Insert(ctx context.Context, user *domain.User) (*domain.User, error)
	// UpdateByID atomically applies the non-nil fields of update and returns
	// the record as it was before and as it is after the update.
	UpdateByID(ctx context.Context, id string, update domain.UserUpdate) (before, after *domain.User, err error)
	DeleteByIDAndRole(ctx context.Context, id string, role domain.Role) error
}
