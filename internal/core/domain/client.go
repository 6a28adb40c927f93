package domain

import (
	"errors"
	"time"
)

// ServiceStatus represents the service lifecycle state of an equipment item.
type ServiceStatus string

const (
	ServiceStatusNone      ServiceStatus = "none"
	ServiceStatusNotified  ServiceStatus = "notified"
	ServiceStatusCompleted ServiceStatus = "completed"
)

// ServiceAction is a caller-requested transition on an equipment item.
type ServiceAction string

const (
	ActionNotify  ServiceAction = "notify"
	ActionConfirm ServiceAction = "confirm"
)

var ErrClientNotFound = errors.New("client not found")
var ErrEquipmentNotFound = errors.New("equipment not found")
var ErrInvalidAction = errors.New("invalid action type")
var ErrManagerRequired = errors.New("manager id required")
var ErrNotAManager = errors.New("target user is not a manager")
var ErrNoExpiringEquipment = errors.New("no soon-expiring equipment found")

// ValidServiceStatus reports whether s is one of the known statuses.
func ValidServiceStatus(s ServiceStatus) bool {
	switch s {
	case ServiceStatusNone, ServiceStatusNotified, ServiceStatusCompleted:
		return true
	}
	return false
}

// Equipment is a serviceable asset embedded in a Client. It has no identity
// outside its parent; ID is unique only within the owning client.
type Equipment struct {
	ID                  string
	Model               string
	Serial              string
	PurchaseDate        time.Time
	ServiceStatus       ServiceStatus
	LastServiceNotified *time.Time
	ServiceDueDate      time.Time
}

// ApplyDefaults fills in the creation-time defaults: status "none" and a
// service-due date one calendar year after purchase when the caller supplied
// neither. Calendar arithmetic (AddDate) keeps leap years correct.
func (e *Equipment) ApplyDefaults() {
	if e.ServiceStatus == "" {
		e.ServiceStatus = ServiceStatusNone
	}
	if e.ServiceDueDate.IsZero() && !e.PurchaseDate.IsZero() {
		e.ServiceDueDate = e.PurchaseDate.AddDate(1, 0, 0)
	}
}

// Notify marks the item as notified and records when. Legal from any status.
func (e *Equipment) Notify(now time.Time) {
	ts := now
	e.LastServiceNotified = &ts
	e.ServiceStatus = ServiceStatusNotified
}

// Confirm marks servicing as completed and pushes the due date one calendar
// year past the previous due date, or past now when no due date was set.
// Legal from any status; completed items cycle back through future confirms.
func (e *Equipment) Confirm(now time.Time) {
	base := e.ServiceDueDate
	if base.IsZero() {
		base = now
	}
	e.ServiceDueDate = base.AddDate(1, 0, 0)
	e.ServiceStatus = ServiceStatusCompleted
}

// Apply dispatches a service action onto the item.
func (e *Equipment) Apply(action ServiceAction, now time.Time) error {
	switch action {
	case ActionNotify:
		e.Notify(now)
	case ActionConfirm:
		e.Confirm(now)
	default:
		return ErrInvalidAction
	}
	return nil
}

// Client is the core aggregate: a company/contact record owned by exactly one
// manager, exclusively owning its embedded equipment list.
type Client struct {
	ID            string
	ManagerID     string
	ContactPerson string
	CompanyName   string
	ContactEmail  string
	ContactPhone  string
	Notes         string
	Active        bool
	Equipment     []Equipment
}

// OwnedBy reports whether the client belongs to the given manager.
func (c *Client) OwnedBy(userID string) bool {
	return c.ManagerID == userID
}

// FindEquipment returns a pointer to the equipment item with the given
// locally-unique id, or nil when absent.
func (c *Client) FindEquipment(id string) *Equipment {
	for i := range c.Equipment {
		if c.Equipment[i].ID == id {
			return &c.Equipment[i]
		}
	}
	return nil
}
