package models

import (
	"encoding/json"
	"time"

	"github.com/uptrace/bun"
)

// Order lifecycle statuses.
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusPaid      = "paid"
	OrderStatusTicketed  = "ticketed"
	OrderStatusCancelled = "cancelled"
	OrderStatusRefunded  = "refunded"
)

type Order struct {
	bun.BaseModel `bun:"table:orders"`

	ID              string    `bun:"id,pk" json:"id"`
	OrderNumber     string    `bun:"order_number,notnull,unique" json:"order_number"`
	CustomerName    string    `bun:"customer_name" json:"customer_name"`
	CustomerEmail   string    `bun:"customer_email,notnull" json:"customer_email"`
	CustomerPhone   string    `bun:"customer_phone,nullzero" json:"customer_phone,omitempty"`
	EventName       string    `bun:"event_name,notnull" json:"event_name"`
	VenueName       string    `bun:"venue_name,nullzero" json:"venue_name,omitempty"`
	EventDate       string    `bun:"event_date,nullzero" json:"event_date,omitempty"`
	Quantity        int       `bun:"quantity,notnull" json:"quantity"`
	UnitPrice       float64   `bun:"unit_price,notnull" json:"unit_price"`
	TotalPrice      float64   `bun:"total_price,notnull" json:"total_price"`
	Currency        string    `bun:"currency,notnull,default:'GBP'" json:"currency"`
	Status          string    `bun:"status,notnull" json:"status"`
	HoldReference   string    `bun:"hold_reference,nullzero" json:"hold_reference,omitempty"`
	ProviderOrderID string    `bun:"provider_order_id,nullzero" json:"provider_order_id,omitempty"`
	PaymentIntentID string    `bun:"payment_intent_id,nullzero" json:"payment_intent_id,omitempty"`
	Notes           string    `bun:"notes,nullzero" json:"notes,omitempty"`
	CreatedAt       time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt       time.Time `bun:"updated_at,nullzero" json:"updated_at,omitempty"`
}

// NotesMap decodes the free-text notes column as a JSON object. A notes
// value that is empty or not valid JSON yields an empty map rather than an
// error, since the column doubles as a scratch pad for provider metadata.
func (o *Order) NotesMap() map[string]interface{} {
	out := map[string]interface{}{}
	if o.Notes == "" {
		return out
	}
	if err := json.Unmarshal([]byte(o.Notes), &out); err != nil {
		return map[string]interface{}{}
	}
	return out
}

// MergeNotes folds the given fields into the notes JSON blob without
// discarding keys already stored there.
func (o *Order) MergeNotes(fields map[string]interface{}) {
	merged := o.NotesMap()
	for k, v := range fields {
		merged[k] = v
	}
	data, err := json.Marshal(merged)
	if err != nil {
		return
	}
	o.Notes = string(data)
}

type OrderWithTickets struct {
	Order   Order    `json:"order"`
	Tickets []Ticket `json:"tickets"`
}
