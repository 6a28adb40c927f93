package ports

import (
	"context"

	"github.com/fieldserve/servicetrack/internal/core/domain"
)

// UserRepository defines persistence operations for the user directory.
// FindByEmail is the only lookup that hydrates the password hash; every other
// read returns users without credentials.
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	ListByRole(ctx context.Context, role string) ([]*domain.User, error)
	CountByRole(ctx context.Context, role string) (int64, error)
	UpdateRole(ctx context.Context, id, role string) (*domain.User, error)
}
