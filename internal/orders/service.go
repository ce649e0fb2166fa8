package orders

import (
	"errors"
	"fmt"
	"time"

	"ticket-marketplace/internal/logger"
	"ticket-marketplace/internal/models"
	"ticket-marketplace/internal/monitoring"
	"ticket-marketplace/internal/payments"
	"ticket-marketplace/internal/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type DBLayer interface {
	CreateOrder(order models.Order) error
	GetOrderByID(id string) (*models.Order, error)
	GetOrderByNumber(orderNumber string) (*models.Order, error)
	GetOrderByReference(ref string) (*models.Order, error)
	GetOrdersByEmail(email string) ([]models.Order, error)
	ListOrders(limit, offset int) ([]models.Order, error)
	UpdateOrder(order models.Order) error
	DeleteOrder(id string) error
	CreateTicket(ticket models.Ticket) error
	GetTicketsByOrder(orderID string) ([]models.Ticket, error)
	CountTicketsByOrder(orderID string) (int, error)
}

type PaymentProvider interface {
	CreateIntent(orderID, existingIntentID string, amount float64, currency string) (*payments.Intent, error)
}

type Mailer interface {
	SendOrderConfirmation(order models.Order)
	SendTickets(order models.Order, tickets []models.Ticket)
}

var ErrInvalidStatus = errors.New("invalid order status")

var validStatuses = map[string]bool{
	models.OrderStatusPending:   true,
	models.OrderStatusConfirmed: true,
	models.OrderStatusPaid:      true,
	models.OrderStatusTicketed:  true,
	models.OrderStatusCancelled: true,
	models.OrderStatusRefunded:  true,
}

type Service struct {
	DB       DBLayer
	Payments PaymentProvider
	Mailer   Mailer
	QR       *QRGenerator
	Logger   *logger.Logger

	// CreateProviderOrder converts a provider hold into a provider order
	// during checkout. Injected as a func so tests can stub the relay.
	CreateProviderOrder func(holdRef, customerName, customerEmail string) (providerOrderID string, err error)
}

func NewService(db DBLayer, paymentProvider PaymentProvider, mail Mailer, qr *QRGenerator, log *logger.Logger) *Service {
	return &Service{
		DB:       db,
		Payments: paymentProvider,
		Mailer:   mail,
		QR:       qr,
		Logger:   log,
	}
}

// Checkout confirms the provider hold, records the order and opens a
// payment intent. The hold itself stays provider-owned; locally we only
// keep its reference.
func (s *Service) Checkout(req models.CheckoutRequest) (*models.CheckoutResponse, error) {
	currency := req.Currency
	if currency == "" {
		currency = "GBP"
	}

	unit := decimal.NewFromFloat(req.UnitPrice)
	total := unit.Mul(decimal.NewFromInt(int64(req.Quantity)))
	totalPrice, _ := total.Float64()

	order := models.Order{
		ID:            uuid.NewString(),
		OrderNumber:   utils.GenerateOrderNumber(),
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		EventName:     req.EventName,
		VenueName:     req.VenueName,
		EventDate:     req.EventDate,
		Quantity:      req.Quantity,
		UnitPrice:     req.UnitPrice,
		TotalPrice:    totalPrice,
		Currency:      currency,
		Status:        models.OrderStatusPending,
		HoldReference: req.HoldReference,
		CreatedAt:     time.Now(),
	}

	if s.CreateProviderOrder != nil {
		providerOrderID, err := s.CreateProviderOrder(req.HoldReference, req.CustomerName, req.CustomerEmail)
		if err != nil {
			return nil, fmt.Errorf("failed to convert hold %s: %w", req.HoldReference, err)
		}
		order.ProviderOrderID = providerOrderID
	}

	if err := s.DB.CreateOrder(order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	s.Logger.LogOrder("CHECKOUT", order.OrderNumber, fmt.Sprintf("Order created for %s x%d", order.EventName, order.Quantity))
	monitoring.TrackOrderPlaced()

	resp := &models.CheckoutResponse{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Status:      order.Status,
		TotalPrice:  order.TotalPrice,
		Currency:    order.Currency,
	}

	if s.Payments != nil {
		intent, err := s.Payments.CreateIntent(order.ID, "", order.TotalPrice, order.Currency)
		if err != nil {
			// The order stands; payment can be retried from the UI.
			s.Logger.Error("CHECKOUT", fmt.Sprintf("Payment intent failed for %s: %v", order.OrderNumber, err))
		} else {
			order.PaymentIntentID = intent.ID
			if err := s.DB.UpdateOrder(order); err != nil {
				s.Logger.Error("CHECKOUT", fmt.Sprintf("Failed to store intent ID for %s: %v", order.OrderNumber, err))
			}
			resp.ClientSecret = intent.ClientSecret
		}
	}

	if s.Mailer != nil {
		s.Mailer.SendOrderConfirmation(order)
	}

	return resp, nil
}

// CreatePaymentIntent opens (or re-opens) the payment intent for an
// order, returning the client secret the storefront hands to Stripe.js.
func (s *Service) CreatePaymentIntent(orderNumber string) (*payments.Intent, error) {
	if s.Payments == nil {
		return nil, errors.New("payments are not configured")
	}
	order, err := s.DB.GetOrderByNumber(orderNumber)
	if err != nil {
		return nil, fmt.Errorf("order %s not found: %w", orderNumber, err)
	}

	intent, err := s.Payments.CreateIntent(order.ID, order.PaymentIntentID, order.TotalPrice, order.Currency)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	if order.PaymentIntentID != intent.ID {
		order.PaymentIntentID = intent.ID
		if err := s.DB.UpdateOrder(*order); err != nil {
			s.Logger.Error("PAYMENT", fmt.Sprintf("Failed to store intent ID for %s: %v", order.OrderNumber, err))
		}
	}
	return intent, nil
}

func (s *Service) GetOrderByNumber(orderNumber string) (*models.Order, error) {
	return s.DB.GetOrderByNumber(orderNumber)
}

func (s *Service) GetOrdersByEmail(email string) ([]models.Order, error) {
	return s.DB.GetOrdersByEmail(email)
}

func (s *Service) ListOrders(limit, offset int) ([]models.Order, error) {
	if limit < 1 || limit > 200 {
		limit = 50
	}
	return s.DB.ListOrders(limit, offset)
}

func (s *Service) GetTicketsByOrder(orderID string) ([]models.Ticket, error) {
	return s.DB.GetTicketsByOrder(orderID)
}

func (s *Service) DeleteOrder(id string) error {
	if _, err := s.DB.GetOrderByID(id); err != nil {
		return fmt.Errorf("order %s not found: %w", id, err)
	}
	return s.DB.DeleteOrder(id)
}

// SetStatusByID moves an order to the given status, issuing tickets on the
// ticketed transition. Reapplying a status the order already holds is a
// no-op, which keeps webhook processing idempotent.
func (s *Service) SetStatusByID(orderID, status string) error {
	order, err := s.DB.GetOrderByID(orderID)
	if err != nil {
		return fmt.Errorf("order %s not found: %w", orderID, err)
	}
	return s.setStatus(order, status)
}

// SetStatusByReference resolves a provider-supplied reference first.
func (s *Service) SetStatusByReference(ref, status string) error {
	order, err := s.DB.GetOrderByReference(ref)
	if err != nil {
		return fmt.Errorf("order %s not found: %w", ref, err)
	}
	return s.setStatus(order, status)
}

func (s *Service) setStatus(order *models.Order, status string) error {
	if !validStatuses[status] {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	if order.Status == status {
		s.Logger.LogOrder("STATUS", order.OrderNumber, fmt.Sprintf("Already %s, nothing to do", status))
		return nil
	}

	order.Status = status
	if err := s.DB.UpdateOrder(*order); err != nil {
		return fmt.Errorf("failed to update order %s: %w", order.OrderNumber, err)
	}
	s.Logger.LogOrder("STATUS", order.OrderNumber, fmt.Sprintf("Status set to %s", status))

	if status == models.OrderStatusTicketed {
		return s.issueTickets(order)
	}
	return nil
}

// MergeOrderNotes folds provider metadata into the order's notes blob.
func (s *Service) MergeOrderNotes(order *models.Order, fields map[string]interface{}) error {
	order.MergeNotes(fields)
	if err := s.DB.UpdateOrder(*order); err != nil {
		return fmt.Errorf("failed to update notes for %s: %w", order.OrderNumber, err)
	}
	return nil
}

func (s *Service) MergeOrderNotesByReference(ref string, fields map[string]interface{}) error {
	order, err := s.DB.GetOrderByReference(ref)
	if err != nil {
		return fmt.Errorf("order %s not found: %w", ref, err)
	}
	return s.MergeOrderNotes(order, fields)
}

func (s *Service) GetOrderByReference(ref string) (*models.Order, error) {
	return s.DB.GetOrderByReference(ref)
}

// issueTickets creates one ticket row per purchased unit. Inserts are
// independent: a failed row is logged and counted, the rest still land.
func (s *Service) issueTickets(order *models.Order) error {
	existing, err := s.DB.CountTicketsByOrder(order.ID)
	if err != nil {
		return fmt.Errorf("failed to count tickets for %s: %w", order.OrderNumber, err)
	}
	if existing >= order.Quantity {
		s.Logger.LogOrder("TICKETS", order.OrderNumber, fmt.Sprintf("%d tickets already issued, skipping", existing))
		return nil
	}

	issued := make([]models.Ticket, 0, order.Quantity)
	failed := 0
	for i := existing; i < order.Quantity; i++ {
		ticket := models.Ticket{
			ID:       utils.GenerateTicketID(),
			OrderID:  order.ID,
			Status:   models.TicketStatusIssued,
			IssuedAt: time.Now(),
		}

		if s.QR != nil {
			qr, err := s.QR.Generate(qrPayload{
				TicketID:    ticket.ID,
				OrderNumber: order.OrderNumber,
				EventName:   order.EventName,
				IssuedAt:    ticket.IssuedAt,
			})
			if err != nil {
				s.Logger.Error("TICKETS", fmt.Sprintf("QR generation failed for %s: %v", ticket.ID, err))
			} else {
				ticket.QRCode = qr
			}
		}

		if err := s.DB.CreateTicket(ticket); err != nil {
			s.Logger.Error("TICKETS", fmt.Sprintf("Failed to insert ticket %d/%d for %s: %v", i+1, order.Quantity, order.OrderNumber, err))
			failed++
			continue
		}
		issued = append(issued, ticket)
	}

	s.Logger.LogOrder("TICKETS", order.OrderNumber, fmt.Sprintf("Issued %d tickets (%d failed)", len(issued), failed))

	if s.Mailer != nil && len(issued) > 0 {
		s.Mailer.SendTickets(*order, issued)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d ticket inserts failed for order %s", failed, order.Quantity, order.OrderNumber)
	}
	return nil
}

// ResendTickets re-sends the ticket email for an already-ticketed order.
func (s *Service) ResendTickets(orderID string) error {
	order, err := s.DB.GetOrderByID(orderID)
	if err != nil {
		return fmt.Errorf("order %s not found: %w", orderID, err)
	}
	if order.Status != models.OrderStatusTicketed {
		return fmt.Errorf("order %s is %s, not ticketed", order.OrderNumber, order.Status)
	}

	tickets, err := s.DB.GetTicketsByOrder(order.ID)
	if err != nil {
		return fmt.Errorf("failed to fetch tickets for %s: %w", order.OrderNumber, err)
	}
	if len(tickets) == 0 {
		return fmt.Errorf("no tickets on record for order %s", order.OrderNumber)
	}

	if s.Mailer != nil {
		s.Mailer.SendTickets(*order, tickets)
	}
	return nil
}
