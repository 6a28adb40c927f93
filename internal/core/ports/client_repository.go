package ports

import (
	"context"
	"time"

	"github.com/fieldserve/servicetrack/internal/core/domain"
)

// DueWindowFilter selects clients having at least one equipment item whose
// service-due date falls inside [From, To] (inclusive on both ends).
// Status and ExcludeStatus additionally constrain the matching item's service
// status; at most one of the two is set.
type DueWindowFilter struct {
	From          time.Time
	To            time.Time
	Status        domain.ServiceStatus // exact match when non-empty
	ExcludeStatus domain.ServiceStatus // "not equal" when non-empty
}

// ClientRepository defines persistence operations for clients.
type ClientRepository interface {
	Insert(ctx context.Context, c *domain.Client) (*domain.Client, error)
	FindByID(ctx context.Context, id string) (*domain.Client, error)
	// List returns all clients when managerID is empty, otherwise only the
	// clients owned by that manager.
	List(ctx context.Context, managerID string) ([]*domain.Client, error)
	// Update persists the mutable fields and the full equipment list of c.
	// The owning manager is never changed here; use SetManager.
	Update(ctx context.Context, c *domain.Client) error
	Delete(ctx context.Context, id string) error
	SetActive(ctx context.Context, id string, active bool) error
	SetManager(ctx context.Context, id, managerID string) (*domain.Client, error)
	// UpdateEquipment atomically writes the service fields of a single
	// embedded equipment item, addressed by client id + equipment id.
	UpdateEquipment(ctx context.Context, clientID string, eq *domain.Equipment) error
	CountAll(ctx context.Context) (int64, error)
	CountDueInWindow(ctx context.Context, f DueWindowFilter) (int64, error)
}
