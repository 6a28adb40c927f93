package handler

import (
	"fmt"
	"time"

	"github.com/fieldserve/servicetrack/internal/core/domain"
	"github.com/fieldserve/servicetrack/internal/core/ports"
)

const dateLayout = "2006-01-02"

// parseDate accepts a bare date or an RFC 3339 timestamp.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD or RFC 3339", s)
}

func parseOptionalDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := parseDate(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// --- Request → Service input ---

func toEquipmentInputs(reqs []equipmentRequest) ([]ports.EquipmentInput, error) {
	inputs := make([]ports.EquipmentInput, 0, len(reqs))
	for _, req := range reqs {
		purchase, err := parseDate(req.PurchaseDate)
		if err != nil {
			return nil, err
		}
		due, err := parseOptionalDate(req.ServiceDueDate)
		if err != nil {
			return nil, err
		}
		notified, err := parseOptionalDate(req.LastServiceNotified)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, ports.EquipmentInput{
			Model:               req.Model,
			Serial:              req.Serial,
			PurchaseDate:        purchase,
			ServiceStatus:       req.ServiceStatus,
			ServiceDueDate:      due,
			LastServiceNotified: notified,
		})
	}
	return inputs, nil
}

func toCreateInput(req createClientRequest) (ports.CreateClientInput, error) {
	equipment, err := toEquipmentInputs(req.Equipment)
	if err != nil {
		return ports.CreateClientInput{}, err
	}
	return ports.CreateClientInput{
		ManagerID:     req.ManagerID,
		ContactPerson: req.ContactPerson,
		CompanyName:   req.CompanyName,
		ContactEmail:  req.ContactEmail,
		ContactPhone:  req.ContactPhone,
		Notes:         req.Notes,
		Equipment:     equipment,
	}, nil
}

func toUpdateInput(req updateClientRequest) (ports.UpdateClientInput, error) {
	in := ports.UpdateClientInput{
		ContactPerson: req.ContactPerson,
		CompanyName:   req.CompanyName,
		ContactEmail:  req.ContactEmail,
		ContactPhone:  req.ContactPhone,
		Notes:         req.Notes,
		Active:        req.Active,
	}
	if req.Equipment != nil {
		equipment, err := toEquipmentInputs(*req.Equipment)
		if err != nil {
			return ports.UpdateClientInput{}, err
		}
		in.Equipment = &equipment
	}
	return in, nil
}

// --- Domain → HTTP response ---

func toEquipmentResponse(eq domain.Equipment) equipmentResponse {
	resp := equipmentResponse{
		ID:            eq.ID,
		Model:         eq.Model,
		Serial:        eq.Serial,
		ServiceStatus: string(eq.ServiceStatus),
	}
	if !eq.PurchaseDate.IsZero() {
		resp.PurchaseDate = eq.PurchaseDate.Format(dateLayout)
	}
	if !eq.ServiceDueDate.IsZero() {
		resp.ServiceDueDate = eq.ServiceDueDate.Format(dateLayout)
	}
	if eq.LastServiceNotified != nil {
		s := eq.LastServiceNotified.UTC().Format(time.RFC3339)
		resp.LastServiceNotified = &s
	}
	return resp
}

func toClientResponse(c *domain.Client) clientResponse {
	equipment := make([]equipmentResponse, 0, len(c.Equipment))
	for _, eq := range c.Equipment {
		equipment = append(equipment, toEquipmentResponse(eq))
	}
	return clientResponse{
		ID:            c.ID,
		ManagerID:     c.ManagerID,
		ContactPerson: c.ContactPerson,
		CompanyName:   c.CompanyName,
		ContactEmail:  c.ContactEmail,
		ContactPhone:  c.ContactPhone,
		Notes:         c.Notes,
		IsActive:      c.Active,
		Equipment:     equipment,
	}
}

func toClientListResponse(clients []*domain.Client) []clientResponse {
	out := make([]clientResponse, 0, len(clients))
	for _, c := range clients {
		out = append(out, toClientResponse(c))
	}
	return out
}

func toExpiringResponse(items []ports.ExpiringClient) []expiringClientResponse {
	out := make([]expiringClientResponse, 0, len(items))
	for _, item := range items {
		equipment := make([]equipmentResponse, 0, len(item.Equipment))
		for _, eq := range item.Equipment {
			equipment = append(equipment, toEquipmentResponse(eq))
		}
		out = append(out, expiringClientResponse{
			ID:          item.ClientID,
			CompanyName: item.CompanyName,
			ManagerID:   item.ManagerID,
			Equipment:   equipment,
		})
	}
	return out
}
