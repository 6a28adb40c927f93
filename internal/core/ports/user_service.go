package ports

import (
	"context"

	"github.com/fieldserve/servicetrack/internal/core/domain"
)

// UserService defines user-directory use cases (admin scope, except Profile).
type UserService interface {
	List(ctx context.Context) ([]*domain.User, error)
	Profile(ctx context.Context, userID string) (*domain.User, error)
	ChangeRole(ctx context.Context, id, role string) (*domain.User, error)
}
