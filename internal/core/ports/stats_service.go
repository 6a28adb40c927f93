package ports

import (
	"context"
	"time"

	"github.com/fieldserve/servicetrack/internal/core/domain"
)

// ExpiringStats counts clients with equipment due within the current calendar
// month: all items not yet completed, and the notified subset.
type ExpiringStats struct {
	ExpiringThisMonth int64
	NotifiedThisMonth int64
}

// ManagerSummary is one row of the per-manager dashboard rollup. The
// notification/completion counts cover the last full calendar month; the due
// count covers the next full calendar month.
type ManagerSummary struct {
	ManagerID                  string
	Name                       string
	Email                      string
	TotalClients               int
	NotificationsSentLastMonth int
	ServicesDoneLastMonth      int
	ExpectedDueNextMonth       int
}

// ManagerDetailClient is a client reduced to the equipment matching the
// report window.
type ManagerDetailClient struct {
	ClientID      string
	ContactPerson string
	CompanyName   string
	Equipment     []domain.Equipment
}

// ManagerDetails is the windowed activity report for a single manager.
// Counts are evaluated against lastServiceNotified (notifications/completions)
// and serviceDueDate (expected due); both window bounds are inclusive.
type ManagerDetails struct {
	ManagerID         string
	Name              string
	From              time.Time
	To                time.Time
	NotificationsSent int
	ServicesCompleted int
	ExpectedDue       int
	Clients           []ManagerDetailClient
}

// StatsService defines the supervisor reporting queries.
type StatsService interface {
	TotalClients(ctx context.Context) (int64, error)
	Expiring(ctx context.Context) (*ExpiringStats, error)
	TotalManagers(ctx context.Context) (int64, error)
	SummaryPerManager(ctx context.Context) ([]ManagerSummary, error)
	// ManagerDetails reports on one manager within [from, to]. A user whose
	// role is not manager is indistinguishable from a missing id: both
	// return domain.ErrManagerNotFound.
	ManagerDetails(ctx context.Context, managerID string, from, to time.Time) (*ManagerDetails, error)
}
