package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fieldserve/servicetrack/internal/core/domain"
	"github.com/fieldserve/servicetrack/internal/core/ports"
)

func newStatsService(clients *stubClientRepo) *StatsService {
	users := newStubUserRepo(manager1, manager2, supervisor)
	return NewStatsService(clients, users, discardLogger)
}

func addClient(repo *stubClientRepo, managerID string, equipment ...domain.Equipment) *domain.Client {
	c, err := repo.Insert(context.Background(), &domain.Client{
		ManagerID:     managerID,
		ContactPerson: "Ana",
		CompanyName:   "Acme",
		Active:        true,
		Equipment:     equipment,
	})
	if err != nil {
		panic(err)
	}
	return c
}

func TestStatsService_TotalClients(t *testing.T) {
	repo := newStubClientRepo()
	addClient(repo, "m1")
	addClient(repo, "m2")

	svc := newStatsService(repo)
	total, err := svc.TotalClients(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 2 {
		t.Errorf("expected 2, got %d", total)
	}
}

func TestStatsService_TotalManagers(t *testing.T) {
	svc := newStatsService(newStubClientRepo())
	total, err := svc.TotalManagers(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 2 {
		t.Errorf("expected 2 managers, got %d", total)
	}
}

func TestStatsService_Expiring(t *testing.T) {
	repo := newStubClientRepo()
	// Due this month, never notified: counts toward expiring only.
	addClient(repo, "m1", domain.Equipment{ServiceDueDate: date("2025-06-20"), ServiceStatus: domain.ServiceStatusNone})
	// Due this month, notified: counts toward both.
	addClient(repo, "m1", domain.Equipment{ServiceDueDate: date("2025-06-25"), ServiceStatus: domain.ServiceStatusNotified})
	// Due this month but completed: counts toward neither.
	addClient(repo, "m2", domain.Equipment{ServiceDueDate: date("2025-06-05"), ServiceStatus: domain.ServiceStatusCompleted})
	// Due next month: out of window.
	addClient(repo, "m2", domain.Equipment{ServiceDueDate: date("2025-07-02"), ServiceStatus: domain.ServiceStatusNone})

	svc := newStatsService(repo)
	svc.now = func() time.Time { return date("2025-06-10") }

	stats, err := svc.Expiring(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.ExpiringThisMonth != 2 {
		t.Errorf("expected 2 expiring, got %d", stats.ExpiringThisMonth)
	}
	if stats.NotifiedThisMonth != 1 {
		t.Errorf("expected 1 notified, got %d", stats.NotifiedThisMonth)
	}
}

func TestStatsService_SummaryPerManager(t *testing.T) {
	repo := newStubClientRepo()

	lastMonth := date("2025-05-12")
	addClient(repo, "m1",
		// Notified last month and still pending.
		domain.Equipment{ServiceStatus: domain.ServiceStatusNotified, LastServiceNotified: &lastMonth, ServiceDueDate: date("2025-09-01")},
		// Notified last month and since completed.
		domain.Equipment{ServiceStatus: domain.ServiceStatusCompleted, LastServiceNotified: &lastMonth, ServiceDueDate: date("2026-05-12")},
		// Due next month.
		domain.Equipment{ServiceStatus: domain.ServiceStatusNone, ServiceDueDate: date("2025-07-15")},
	)
	addClient(repo, "m1")
	addClient(repo, "m2")

	svc := newStatsService(repo)
	svc.now = func() time.Time { return date("2025-06-10") }

	rows, err := svc.SummaryPerManager(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	// Rows are sorted by name.
	if rows[0].ManagerID != "m1" || rows[1].ManagerID != "m2" {
		t.Fatalf("rows out of order: %s, %s", rows[0].ManagerID, rows[1].ManagerID)
	}

	m1 := rows[0]
	if m1.TotalClients != 2 {
		t.Errorf("expected 2 clients, got %d", m1.TotalClients)
	}
	if m1.NotificationsSentLastMonth != 1 {
		t.Errorf("expected 1 notification, got %d", m1.NotificationsSentLastMonth)
	}
	if m1.ServicesDoneLastMonth != 1 {
		t.Errorf("expected 1 completed service, got %d", m1.ServicesDoneLastMonth)
	}
	if m1.ExpectedDueNextMonth != 1 {
		t.Errorf("expected 1 due next month, got %d", m1.ExpectedDueNextMonth)
	}

	m2 := rows[1]
	if m2.TotalClients != 1 || m2.NotificationsSentLastMonth != 0 {
		t.Errorf("unexpected m2 row: %+v", m2)
	}
}

func TestStatsService_ManagerDetails(t *testing.T) {
	repo := newStubClientRepo()

	inRange := date("2025-06-05")
	outOfRange := date("2025-04-01")
	c := addClient(repo, "m1",
		domain.Equipment{Model: "notified", ServiceStatus: domain.ServiceStatusNotified, LastServiceNotified: &inRange, ServiceDueDate: date("2025-12-01")},
		domain.Equipment{Model: "done", ServiceStatus: domain.ServiceStatusCompleted, LastServiceNotified: &inRange, ServiceDueDate: date("2026-06-05")},
		domain.Equipment{Model: "due", ServiceStatus: domain.ServiceStatusNone, ServiceDueDate: date("2025-06-20")},
		domain.Equipment{Model: "old", ServiceStatus: domain.ServiceStatusNotified, LastServiceNotified: &outOfRange, ServiceDueDate: date("2025-12-01")},
	)
	addClient(repo, "m2", domain.Equipment{ServiceStatus: domain.ServiceStatusNotified, LastServiceNotified: &inRange})

	svc := newStatsService(repo)

	details, err := svc.ManagerDetails(context.Background(), "m1", date("2025-06-01"), date("2025-06-30"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if details.ManagerID != "m1" || details.Name != "Manager One" {
		t.Errorf("wrong manager header: %+v", details)
	}
	if details.NotificationsSent != 1 {
		t.Errorf("expected 1 notification, got %d", details.NotificationsSent)
	}
	if details.ServicesCompleted != 1 {
		t.Errorf("expected 1 completed, got %d", details.ServicesCompleted)
	}
	if details.ExpectedDue != 1 {
		t.Errorf("expected 1 due, got %d", details.ExpectedDue)
	}
	if len(details.Clients) != 1 || details.Clients[0].ClientID != c.ID {
		t.Fatalf("expected one matching client %s, got %+v", c.ID, details.Clients)
	}
	if len(details.Clients[0].Equipment) != 3 {
		t.Errorf("expected 3 matching items, got %d", len(details.Clients[0].Equipment))
	}
}

func TestStatsService_ManagerDetails_InclusiveBounds(t *testing.T) {
	repo := newStubClientRepo()
	addClient(repo, "m1",
		domain.Equipment{ServiceStatus: domain.ServiceStatusNone, ServiceDueDate: date("2025-06-01")},
		domain.Equipment{ServiceStatus: domain.ServiceStatusNone, ServiceDueDate: date("2025-06-30")},
	)

	svc := newStatsService(repo)
	details, err := svc.ManagerDetails(context.Background(), "m1", date("2025-06-01"), date("2025-06-30"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if details.ExpectedDue != 2 {
		t.Errorf("window bounds must be inclusive, got %d due", details.ExpectedDue)
	}
}

func TestStatsService_ManagerDetails_NotAManager(t *testing.T) {
	svc := newStatsService(newStubClientRepo())

	from, to := date("2025-06-01"), date("2025-06-30")
	if _, err := svc.ManagerDetails(context.Background(), "s1", from, to); !errors.Is(err, domain.ErrManagerNotFound) {
		t.Fatalf("expected ErrManagerNotFound for wrong role, got %v", err)
	}
	if _, err := svc.ManagerDetails(context.Background(), "ghost", from, to); !errors.Is(err, domain.ErrManagerNotFound) {
		t.Fatalf("expected ErrManagerNotFound for unknown id, got %v", err)
	}
}

func TestStatsService_ManagerDetails_LookupFailurePassesThrough(t *testing.T) {
	users := newStubUserRepo(manager1)
	users.failErr = errors.New("store down")
	svc := NewStatsService(newStubClientRepo(), users, discardLogger)

	_, err := svc.ManagerDetails(context.Background(), "m1", date("2025-06-01"), date("2025-06-30"))
	if !errors.Is(err, users.failErr) {
		t.Fatalf("expected the repository error unchanged, got %v", err)
	}
	if errors.Is(err, domain.ErrManagerNotFound) {
		t.Fatal("infrastructure failure must not read as a missing manager")
	}
}

func TestMonthBounds(t *testing.T) {
	cases := []struct {
		now    string
		offset int
		start  string
		end    string
	}{
		{"2025-06-10", 0, "2025-06-01", "2025-06-30"},
		{"2025-06-10", -1, "2025-05-01", "2025-05-31"},
		{"2025-06-10", 1, "2025-07-01", "2025-07-31"},
		{"2025-01-15", -1, "2024-12-01", "2024-12-31"},
		{"2024-02-10", 0, "2024-02-01", "2024-02-29"},
	}
	for _, tc := range cases {
		start, end := monthBounds(date(tc.now), tc.offset)
		if !start.Equal(date(tc.start)) || !end.Equal(date(tc.end)) {
			t.Errorf("monthBounds(%s, %d) = %s..%s, want %s..%s",
				tc.now, tc.offset,
				start.Format("2006-01-02"), end.Format("2006-01-02"),
				tc.start, tc.end)
		}
	}
}

var _ ports.StatsService = (*StatsService)(nil)
