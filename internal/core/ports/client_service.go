package ports

import (
	"context"
	"time"

	"github.com/fieldserve/servicetrack/internal/core/domain"
)

// Actor is the resolved identity of the caller, injected by the auth
// middleware and threaded through every role-scoped operation.
type Actor struct {
	ID   string
	Role string
}

// EquipmentInput carries one equipment item on client create/update.
// ServiceDueDate and LastServiceNotified are optional; when the due date is
// omitted it defaults to one year after the purchase date.
type EquipmentInput struct {
	Model               string
	Serial              string
	PurchaseDate        time.Time
	ServiceStatus       string
	ServiceDueDate      *time.Time
	LastServiceNotified *time.Time
}

// CreateClientInput carries all data needed to create a client. ManagerID is
// ignored for manager callers (forced to self) and required for supervisors.
type CreateClientInput struct {
	ManagerID     string
	ContactPerson string
	CompanyName   string
	ContactEmail  string
	ContactPhone  string
	Notes         string
	Equipment     []EquipmentInput
}

// UpdateClientInput is the allow-listed partial update. Nil fields are left
// untouched. The owning manager is deliberately absent: reassignment goes
// through Assign only.
type UpdateClientInput struct {
	ContactPerson *string
	CompanyName   *string
	ContactEmail  *string
	ContactPhone  *string
	Notes         *string
	Active        *bool
	Equipment     *[]EquipmentInput
}

// ExpiringClient is one entry of the soon-expiring report: a client reduced
// to its matching equipment, sorted ascending by service-due date.
type ExpiringClient struct {
	ClientID    string
	CompanyName string
	ManagerID   string
	Equipment   []domain.Equipment
}

// ClientService defines the role-scoped use-case operations on clients.
type ClientService interface {
	List(ctx context.Context, actor Actor) ([]*domain.Client, error)
	Create(ctx context.Context, actor Actor, in CreateClientInput) (*domain.Client, error)
	Get(ctx context.Context, actor Actor, id string) (*domain.Client, error)
	Update(ctx context.Context, actor Actor, id string, in UpdateClientInput) (*domain.Client, error)
	Delete(ctx context.Context, id string) error
	SoftDelete(ctx context.Context, id string) error
	Assign(ctx context.Context, id, newManagerID string) (*domain.Client, error)
	ServiceAction(ctx context.Context, actor Actor, clientID, equipmentID string, action domain.ServiceAction) error
	// SoonExpiring returns the actor's clients having equipment due within
	// the next months calendar months, optionally restricted to items that
	// were never notified. Empty result yields domain.ErrNoExpiringEquipment.
	SoonExpiring(ctx context.Context, actor Actor, months int, onlyNeverNotified bool) ([]ExpiringClient, error)
}
