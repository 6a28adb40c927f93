// Package metrics defines and registers the custom Prometheus metrics for
// the servicetrack API. It is the single source of truth for metric names,
// labels, and help strings; registration happens at import time via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "servicetrack"

// ClientsCreatedTotal counts newly created clients.
// Label:
//   - role: the creator's role ("manager" or "supervisor")
var ClientsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "clients_created_total",
		Help:      "Total number of clients created, by creator role.",
	},
	[]string{"role"},
)

// ServiceActionsTotal counts completed equipment service actions.
// Label:
//   - action: "notify" or "confirm"
var ServiceActionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "service_actions_total",
		Help:      "Total number of equipment service actions applied, by action.",
	},
	[]string{"action"},
)

// LoginsTotal counts successful logins.
// Label:
//   - role: the authenticated user's role
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of successful logins, by role.",
	},
	[]string{"role"},
)
