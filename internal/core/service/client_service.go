package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/fieldserve/servicetrack/internal/core/domain"
	"github.com/fieldserve/servicetrack/internal/core/ports"
)

// ClientService implements the role-scoped client use cases. Route-level RBAC
// has already rejected roles with no business on an endpoint; this layer
// enforces the finer rules — ownership for managers, manager-id requirements
// for supervisors.
type ClientService struct {
	clients ports.ClientRepository
	users   ports.UserRepository
	logger  zerolog.Logger
	now     func() time.Time
}

func NewClientService(clients ports.ClientRepository, users ports.UserRepository, logger zerolog.Logger) *ClientService {
	return &ClientService{
		clients: clients,
		users:   users,
		logger:  logger,
		now:     time.Now,
	}
}

// List returns all clients for supervisors and only owned clients for
// managers.
func (s *ClientService) List(ctx context.Context, actor ports.Actor) ([]*domain.Client, error) {
	managerID := ""
	if actor.Role == domain.RoleManager {
		managerID = actor.ID
	}
	return s.clients.List(ctx, managerID)
}

// Create stores a new client. Managers always become the owner themselves;
// supervisors must name an existing manager.
func (s *ClientService) Create(ctx context.Context, actor ports.Actor, in ports.CreateClientInput) (*domain.Client, error) {
	managerID := in.ManagerID
	if actor.Role == domain.RoleManager {
		managerID = actor.ID
	} else if managerID == "" {
		return nil, domain.ErrManagerRequired
	}

	if actor.Role == domain.RoleSupervisor {
		if err := s.requireManager(ctx, managerID); err != nil {
			return nil, err
		}
	}

	client := &domain.Client{
		ManagerID:     managerID,
		ContactPerson: in.ContactPerson,
		CompanyName:   in.CompanyName,
		ContactEmail:  in.ContactEmail,
		ContactPhone:  in.ContactPhone,
		Notes:         in.Notes,
		Active:        true,
		Equipment:     buildEquipment(in.Equipment),
	}

	created, err := s.clients.Insert(ctx, client)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to create client")
		return nil, err
	}

	s.logger.Info().Str("client_id", created.ID).Str("manager_id", managerID).Msg("client created")
	return created, nil
}

// Get returns a single client. Managers only see their own; a foreign client
// yields ErrForbidden, never silently an empty result.
func (s *ClientService) Get(ctx context.Context, actor ports.Actor, id string) (*domain.Client, error) {
	client, err := s.clients.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role == domain.RoleManager && !client.OwnedBy(actor.ID) {
		return nil, domain.ErrForbidden
	}
	return client, nil
}

// Update applies an allow-listed partial update. Supervisors may update any
// client, managers only their own. The owning manager cannot be changed here.
func (s *ClientService) Update(ctx context.Context, actor ports.Actor, id string, in ports.UpdateClientInput) (*domain.Client, error) {
	client, err := s.clients.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role == domain.RoleManager && !client.OwnedBy(actor.ID) {
		return nil, domain.ErrForbidden
	}

	if in.ContactPerson != nil {
		client.ContactPerson = *in.ContactPerson
	}
	if in.CompanyName != nil {
		client.CompanyName = *in.CompanyName
	}
	if in.ContactEmail != nil {
		client.ContactEmail = *in.ContactEmail
	}
	if in.ContactPhone != nil {
		client.ContactPhone = *in.ContactPhone
	}
	if in.Notes != nil {
		client.Notes = *in.Notes
	}
	if in.Active != nil {
		client.Active = *in.Active
	}
	if in.Equipment != nil {
		client.Equipment = buildEquipment(*in.Equipment)
	}

	if err := s.clients.Update(ctx, client); err != nil {
		s.logger.Error().Err(err).Str("client_id", id).Msg("failed to update client")
		return nil, err
	}
	return client, nil
}

// Delete removes a client permanently. Admin scope; the route gate already
// rejected everyone else.
func (s *ClientService) Delete(ctx context.Context, id string) error {
	if err := s.clients.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("client_id", id).Msg("client deleted")
	return nil
}

// SoftDelete marks a client inactive without removing it. Supervisor scope.
func (s *ClientService) SoftDelete(ctx context.Context, id string) error {
	if err := s.clients.SetActive(ctx, id, false); err != nil {
		return err
	}
	s.logger.Info().Str("client_id", id).Msg("client marked inactive")
	return nil
}

// Assign moves a client to another manager. The target must exist and hold
// the manager role.
func (s *ClientService) Assign(ctx context.Context, id, newManagerID string) (*domain.Client, error) {
	if err := s.requireManager(ctx, newManagerID); err != nil {
		return nil, err
	}

	client, err := s.clients.SetManager(ctx, id, newManagerID)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("client_id", id).Str("manager_id", newManagerID).Msg("client reassigned")
	return client, nil
}

// ServiceAction runs a notify/confirm transition on one equipment item.
// Ownership is enforced for managers, same as every other client-scoped
// operation. The transition itself is a single atomic positional update.
func (s *ClientService) ServiceAction(ctx context.Context, actor ports.Actor, clientID, equipmentID string, action domain.ServiceAction) error {
	client, err := s.clients.FindByID(ctx, clientID)
	if err != nil {
		return err
	}
	if actor.Role == domain.RoleManager && !client.OwnedBy(actor.ID) {
		return domain.ErrForbidden
	}

	eq := client.FindEquipment(equipmentID)
	if eq == nil {
		return domain.ErrEquipmentNotFound
	}

	if err := eq.Apply(action, s.now()); err != nil {
		return err
	}

	if err := s.clients.UpdateEquipment(ctx, clientID, eq); err != nil {
		s.logger.Error().Err(err).Str("client_id", clientID).Str("equipment_id", equipmentID).Msg("failed to persist service action")
		return err
	}

	s.logger.Info().
		Str("client_id", clientID).
		Str("equipment_id", equipmentID).
		Str("action", string(action)).
		Msg("service action applied")
	return nil
}

// SoonExpiring returns the actor's clients reduced to equipment due within
// the next months calendar months, ascending by due date. Clients without a
// matching item are omitted; an empty overall result is reported as
// ErrNoExpiringEquipment so the transport can answer 404.
func (s *ClientService) SoonExpiring(ctx context.Context, actor ports.Actor, months int, onlyNeverNotified bool) ([]ports.ExpiringClient, error) {
	if months <= 0 {
		months = 1
	}
	today := s.now()
	end := today.AddDate(0, months, 0)

	clients, err := s.clients.List(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	var out []ports.ExpiringClient
	for _, client := range clients {
		var matching []domain.Equipment
		for _, eq := range client.Equipment {
			if eq.ServiceDueDate.Before(today) || eq.ServiceDueDate.After(end) {
				continue
			}
			if onlyNeverNotified && eq.LastServiceNotified != nil {
				continue
			}
			matching = append(matching, eq)
		}
		if len(matching) == 0 {
			continue
		}
		sort.Slice(matching, func(i, j int) bool {
			return matching[i].ServiceDueDate.Before(matching[j].ServiceDueDate)
		})
		out = append(out, ports.ExpiringClient{
			ClientID:    client.ID,
			CompanyName: client.CompanyName,
			ManagerID:   client.ManagerID,
			Equipment:   matching,
		})
	}

	if len(out) == 0 {
		return nil, domain.ErrNoExpiringEquipment
	}
	return out, nil
}

// requireManager checks that the id names an existing user holding the
// manager role. A missing user is a caller mistake, same as a wrong role;
// repository failures pass through untranslated.
func (s *ClientService) requireManager(ctx context.Context, managerID string) error {
	manager, err := s.users.FindByID(ctx, managerID)
	if errors.Is(err, domain.ErrUserNotFound) {
		return domain.ErrNotAManager
	}
	if err != nil {
		return err
	}
	if manager.Role != domain.RoleManager {
		return domain.ErrNotAManager
	}
	return nil
}

// buildEquipment converts inputs into domain items with creation defaults
// applied.
func buildEquipment(inputs []ports.EquipmentInput) []domain.Equipment {
	items := make([]domain.Equipment, 0, len(inputs))
	for _, in := range inputs {
		eq := domain.Equipment{
			Model:               in.Model,
			Serial:              in.Serial,
			PurchaseDate:        in.PurchaseDate,
			ServiceStatus:       domain.ServiceStatus(in.ServiceStatus),
			LastServiceNotified: in.LastServiceNotified,
		}
		if in.ServiceDueDate != nil {
			eq.ServiceDueDate = *in.ServiceDueDate
		}
		eq.ApplyDefaults()
		items = append(items, eq)
	}
	return items
}
