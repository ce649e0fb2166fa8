package models

// CheckoutRequest is the storefront checkout payload. The hold reference
// points at a live reservation held by the resale provider; the gateway
// never extends or enforces its expiry.
type CheckoutRequest struct {
	HoldReference string  `json:"hold_reference" validate:"required"`
	CustomerName  string  `json:"customer_name" validate:"required"`
	CustomerEmail string  `json:"customer_email" validate:"required,email"`
	CustomerPhone string  `json:"customer_phone"`
	EventName     string  `json:"event_name" validate:"required"`
	VenueName     string  `json:"venue_name"`
	EventDate     string  `json:"event_date"`
	Quantity      int     `json:"quantity" validate:"required,min=1,max=10"`
	UnitPrice     float64 `json:"unit_price" validate:"required,gt=0"`
	Currency      string  `json:"currency"`
}

type CheckoutResponse struct {
	OrderID      string  `json:"order_id"`
	OrderNumber  string  `json:"order_number"`
	Status       string  `json:"status"`
	TotalPrice   float64 `json:"total_price"`
	Currency     string  `json:"currency"`
	ClientSecret string  `json:"client_secret,omitempty"`
}

// HoldRequest asks the resale provider to reserve inventory.
type HoldRequest struct {
	ListingID string `json:"listing_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1,max=10"`
}

type StatusUpdateRequest struct {
	Status string `json:"status" validate:"required"`
}

// ResaleWebhookPayload is the provider's callback body. The provider has
// shipped several shapes over time, hence the redundant reference fields.
type ResaleWebhookPayload struct {
	Type        string                 `json:"type"`
	OrderID     string                 `json:"order_id"`
	OrderNumber string                 `json:"order_number"`
	ID          string                 `json:"id"`
	Reference   string                 `json:"reference"`
	TicketURL   string                 `json:"ticket_url"`
	Data        map[string]interface{} `json:"data"`
}
