package handler

// Date fields arrive as strings so callers can send either a bare date
// ("2024-01-10") or a full RFC 3339 timestamp; the mapper parses both.

type equipmentRequest struct {
	Model               string `json:"model"`
	Serial              string `json:"serial"`
	PurchaseDate        string `json:"purchaseDate" validate:"required"`
	ServiceStatus       string `json:"serviceStatus" validate:"omitempty,oneof=none notified completed"`
	ServiceDueDate      string `json:"serviceDueDate"`
	LastServiceNotified string `json:"lastServiceNotified"`
}

type createClientRequest struct {
	ManagerID     string             `json:"managerId"`
	ContactPerson string             `json:"clientContactPerson" validate:"required,max=100"`
	CompanyName   string             `json:"companyName" validate:"omitempty,max=100"`
	ContactEmail  string             `json:"contactEmail" validate:"required,email"`
	ContactPhone  string             `json:"contactPhone" validate:"omitempty,e164"`
	Notes         string             `json:"notes" validate:"omitempty,max=500"`
	Equipment     []equipmentRequest `json:"equipment" validate:"omitempty,dive"`
}

// updateClientRequest is the allow-listed partial update; absent fields stay
// untouched. managerId is intentionally not bindable here.
type updateClientRequest struct {
	ContactPerson *string             `json:"clientContactPerson" validate:"omitempty,max=100"`
	CompanyName   *string             `json:"companyName" validate:"omitempty,max=100"`
	ContactEmail  *string             `json:"contactEmail" validate:"omitempty,email"`
	ContactPhone  *string             `json:"contactPhone" validate:"omitempty,e164"`
	Notes         *string             `json:"notes" validate:"omitempty,max=500"`
	Active        *bool               `json:"isActive"`
	Equipment     *[]equipmentRequest `json:"equipment" validate:"omitempty,dive"`
}

type assignClientRequest struct {
	NewManagerID string `json:"newManagerId" validate:"required"`
}

// serviceActionRequest deliberately has no oneof tag: unknown actions must
// surface the canonical "Invalid action type" message, not a validator one.
type serviceActionRequest struct {
	Action string `json:"action"`
}

type equipmentResponse struct {
	ID                  string  `json:"id"`
	Model               string  `json:"model,omitempty"`
	Serial              string  `json:"serial,omitempty"`
	PurchaseDate        string  `json:"purchaseDate,omitempty"`
	ServiceStatus       string  `json:"serviceStatus"`
	LastServiceNotified *string `json:"lastServiceNotified"`
	ServiceDueDate      string  `json:"serviceDueDate,omitempty"`
}

type clientResponse struct {
	ID            string              `json:"id"`
	ManagerID     string              `json:"managerId"`
	ContactPerson string              `json:"clientContactPerson"`
	CompanyName   string              `json:"companyName,omitempty"`
	ContactEmail  string              `json:"contactEmail"`
	ContactPhone  string              `json:"contactPhone,omitempty"`
	Notes         string              `json:"notes,omitempty"`
	IsActive      bool                `json:"isActive"`
	Equipment     []equipmentResponse `json:"equipment"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type clientMessageResponse struct {
	Message string         `json:"message"`
	Client  clientResponse `json:"client"`
}

type expiringClientResponse struct {
	ID          string              `json:"id"`
	CompanyName string              `json:"companyName,omitempty"`
	ManagerID   string              `json:"managerId"`
	Equipment   []equipmentResponse `json:"equipment"`
}
