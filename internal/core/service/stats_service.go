package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/fieldserve/servicetrack/internal/core/domain"
	"github.com/fieldserve/servicetrack/internal/core/ports"
)

// summaryFanOutLimit caps the number of concurrent per-manager reads in the
// summary rollup.
const summaryFanOutLimit = 8

// StatsService implements the supervisor reporting queries. Every query is
// read-only; per-manager work fans out concurrently and aggregates in memory.
type StatsService struct {
	clients ports.ClientRepository
	users   ports.UserRepository
	logger  zerolog.Logger
	now     func() time.Time
}

func NewStatsService(clients ports.ClientRepository, users ports.UserRepository, logger zerolog.Logger) *StatsService {
	return &StatsService{
		clients: clients,
		users:   users,
		logger:  logger,
		now:     time.Now,
	}
}

// TotalClients returns the unconditional client count.
func (s *StatsService) TotalClients(ctx context.Context) (int64, error) {
	return s.clients.CountAll(ctx)
}

// Expiring counts clients with equipment due this calendar month: all items
// not yet completed, and the notified subset.
func (s *StatsService) Expiring(ctx context.Context) (*ports.ExpiringStats, error) {
	start, end := monthBounds(s.now(), 0)

	expiring, err := s.clients.CountDueInWindow(ctx, ports.DueWindowFilter{
		From:          start,
		To:            end,
		ExcludeStatus: domain.ServiceStatusCompleted,
	})
	if err != nil {
		return nil, err
	}

	notified, err := s.clients.CountDueInWindow(ctx, ports.DueWindowFilter{
		From:   start,
		To:     end,
		Status: domain.ServiceStatusNotified,
	})
	if err != nil {
		return nil, err
	}

	return &ports.ExpiringStats{ExpiringThisMonth: expiring, NotifiedThisMonth: notified}, nil
}

// TotalManagers returns the number of users holding the manager role.
func (s *StatsService) TotalManagers(ctx context.Context) (int64, error) {
	return s.users.CountByRole(ctx, domain.RoleManager)
}

// SummaryPerManager builds one dashboard row per manager. The per-manager
// client reads are independent, so they run concurrently and the rows are
// re-ordered afterwards to keep the output deterministic.
func (s *StatsService) SummaryPerManager(ctx context.Context) ([]ports.ManagerSummary, error) {
	managers, err := s.users.ListByRole(ctx, domain.RoleManager)
	if err != nil {
		return nil, err
	}

	now := s.now()
	lastStart, lastEnd := monthBounds(now, -1)
	nextStart, nextEnd := monthBounds(now, 1)

	summaries := make([]ports.ManagerSummary, len(managers))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(summaryFanOutLimit)

	for i, manager := range managers {
		i, manager := i, manager
		g.Go(func() error {
			clients, err := s.clients.List(gctx, manager.ID)
			if err != nil {
				return err
			}

			row := ports.ManagerSummary{
				ManagerID:    manager.ID,
				Name:         manager.Name,
				Email:        manager.Email,
				TotalClients: len(clients),
			}
			for _, client := range clients {
				for _, eq := range client.Equipment {
					if eq.LastServiceNotified != nil && inWindow(*eq.LastServiceNotified, lastStart, lastEnd) {
						switch eq.ServiceStatus {
						case domain.ServiceStatusNotified:
							row.NotificationsSentLastMonth++
						case domain.ServiceStatusCompleted:
							row.ServicesDoneLastMonth++
						}
					}
					if inWindow(eq.ServiceDueDate, nextStart, nextEnd) {
						row.ExpectedDueNextMonth++
					}
				}
			}
			summaries[i] = row
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		s.logger.Error().Err(err).Msg("per-manager summary failed")
		return nil, err
	}

	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Name < summaries[j].Name })
	return summaries, nil
}

// ManagerDetails reports a single manager's activity within [from, to]. A
// known user without the manager role is reported exactly like an unknown id.
func (s *StatsService) ManagerDetails(ctx context.Context, managerID string, from, to time.Time) (*ports.ManagerDetails, error) {
	manager, err := s.users.FindByID(ctx, managerID)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.ErrManagerNotFound
	}
	if err != nil {
		return nil, err
	}
	if manager.Role != domain.RoleManager {
		return nil, domain.ErrManagerNotFound
	}

	clients, err := s.clients.List(ctx, managerID)
	if err != nil {
		return nil, err
	}

	details := &ports.ManagerDetails{
		ManagerID: manager.ID,
		Name:      manager.Name,
		From:      from,
		To:        to,
	}

	for _, client := range clients {
		var matching []domain.Equipment
		for _, eq := range client.Equipment {
			notifiedInRange := eq.LastServiceNotified != nil && inWindow(*eq.LastServiceNotified, from, to)
			dueInRange := !eq.ServiceDueDate.IsZero() && inWindow(eq.ServiceDueDate, from, to)

			if notifiedInRange {
				switch eq.ServiceStatus {
				case domain.ServiceStatusNotified:
					details.NotificationsSent++
				case domain.ServiceStatusCompleted:
					details.ServicesCompleted++
				}
			}
			if dueInRange {
				details.ExpectedDue++
			}
			if notifiedInRange || dueInRange {
				matching = append(matching, eq)
			}
		}
		if len(matching) > 0 {
			details.Clients = append(details.Clients, ports.ManagerDetailClient{
				ClientID:      client.ID,
				ContactPerson: client.ContactPerson,
				CompanyName:   client.CompanyName,
				Equipment:     matching,
			})
		}
	}

	return details, nil
}

// inWindow reports whether t falls inside [from, to], inclusive on both ends.
func inWindow(t, from, to time.Time) bool {
	return !t.Before(from) && !t.After(to)
}

// monthBounds returns the first and last day (midnight) of the calendar month
// offset months away from now.
func monthBounds(now time.Time, offset int) (time.Time, time.Time) {
	start := time.Date(now.Year(), now.Month()+time.Month(offset), 1, 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 1, -1)
	return start, end
}
