package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Ticket lifecycle statuses.
const (
	TicketStatusPending   = "pending"
	TicketStatusIssued    = "issued"
	TicketStatusSent      = "sent"
	TicketStatusUsed      = "used"
	TicketStatusCancelled = "cancelled"
)

type Ticket struct {
	bun.BaseModel `bun:"table:tickets"`

	ID       string    `bun:"id,pk" json:"id"`
	OrderID  string    `bun:"order_id,notnull" json:"order_id"`
	Status   string    `bun:"status,notnull" json:"status"`
	Seat     string    `bun:"seat,nullzero" json:"seat,omitempty"`
	Barcode  string    `bun:"barcode,nullzero" json:"barcode,omitempty"`
	QRCode   []byte    `bun:"qr_code" json:"qr_code,omitempty"`
	IssuedAt time.Time `bun:"issued_at,nullzero" json:"issued_at,omitempty"`

	Order *Order `bun:"rel:belongs-to,join:order_id=id" json:"-"`
}
