package orders_test

import (
	"errors"
	"testing"

	"ticket-marketplace/internal/logger"
	"ticket-marketplace/internal/models"
	"ticket-marketplace/internal/orders"
	"ticket-marketplace/internal/payments"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// Mock implementations
type MockDBLayer struct {
	mock.Mock
}

func (m *MockDBLayer) CreateOrder(order models.Order) error {
	args := m.Called(order)
	return args.Error(0)
}

func (m *MockDBLayer) GetOrderByID(id string) (*models.Order, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockDBLayer) GetOrderByNumber(orderNumber string) (*models.Order, error) {
	args := m.Called(orderNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockDBLayer) GetOrderByReference(ref string) (*models.Order, error) {
	args := m.Called(ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockDBLayer) GetOrdersByEmail(email string) ([]models.Order, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *MockDBLayer) ListOrders(limit, offset int) ([]models.Order, error) {
	args := m.Called(limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *MockDBLayer) UpdateOrder(order models.Order) error {
	args := m.Called(order)
	return args.Error(0)
}

func (m *MockDBLayer) DeleteOrder(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockDBLayer) CreateTicket(ticket models.Ticket) error {
	args := m.Called(ticket)
	return args.Error(0)
}

func (m *MockDBLayer) GetTicketsByOrder(orderID string) ([]models.Ticket, error) {
	args := m.Called(orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Ticket), args.Error(1)
}

func (m *MockDBLayer) CountTicketsByOrder(orderID string) (int, error) {
	args := m.Called(orderID)
	return args.Int(0), args.Error(1)
}

type MockPaymentProvider struct {
	mock.Mock
}

func (m *MockPaymentProvider) CreateIntent(orderID, existingIntentID string, amount float64, currency string) (*payments.Intent, error) {
	args := m.Called(orderID, existingIntentID, amount, currency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payments.Intent), args.Error(1)
}

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendOrderConfirmation(order models.Order) {
	m.Called(order)
}

func (m *MockMailer) SendTickets(order models.Order, tickets []models.Ticket) {
	m.Called(order, tickets)
}

func newTestService(db *MockDBLayer, pay *MockPaymentProvider, mail *MockMailer) *orders.Service {
	var provider orders.PaymentProvider
	if pay != nil {
		provider = pay
	}
	var mailer orders.Mailer
	if mail != nil {
		mailer = mail
	}
	return orders.NewService(db, provider, mailer, orders.NewQRGenerator("test-secret"), logger.NewLogger())
}

// Tests start here
func TestCheckoutCreatesPendingOrder(t *testing.T) {
	mockDB := new(MockDBLayer)
	mockPay := new(MockPaymentProvider)
	mockMail := new(MockMailer)
	svc := newTestService(mockDB, mockPay, mockMail)

	svc.CreateProviderOrder = func(holdRef, name, email string) (string, error) {
		assert.Equal(t, "hold-123", holdRef)
		return "prov-order-1", nil
	}

	var created models.Order
	mockDB.On("CreateOrder", mock.AnythingOfType("models.Order")).Run(func(args mock.Arguments) {
		created = args.Get(0).(models.Order)
	}).Return(nil)
	mockDB.On("UpdateOrder", mock.AnythingOfType("models.Order")).Return(nil)
	mockPay.On("CreateIntent", mock.Anything, "", 170.0, "GBP").
		Return(&payments.Intent{ID: "pi_1", ClientSecret: "pi_1_secret"}, nil)
	mockMail.On("SendOrderConfirmation", mock.AnythingOfType("models.Order")).Return()

	resp, err := svc.Checkout(models.CheckoutRequest{
		HoldReference: "hold-123",
		CustomerName:  "Alice Wonderland",
		CustomerEmail: "alice@example.com",
		EventName:     "Summer Fest",
		Quantity:      2,
		UnitPrice:     85.0,
	})

	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, resp.Status)
	assert.Equal(t, 170.0, resp.TotalPrice)
	assert.Equal(t, "GBP", resp.Currency)
	assert.Equal(t, "pi_1_secret", resp.ClientSecret)
	assert.NotEmpty(t, resp.OrderNumber)
	assert.Equal(t, "prov-order-1", created.ProviderOrderID)
	mockDB.AssertExpectations(t)
	mockPay.AssertExpectations(t)
	mockMail.AssertExpectations(t)
}

func TestCheckoutFailsWhenHoldConversionFails(t *testing.T) {
	mockDB := new(MockDBLayer)
	svc := newTestService(mockDB, nil, nil)

	svc.CreateProviderOrder = func(holdRef, name, email string) (string, error) {
		return "", errors.New("hold expired")
	}

	_, err := svc.Checkout(models.CheckoutRequest{
		HoldReference: "hold-dead",
		CustomerName:  "Bob",
		CustomerEmail: "bob@example.com",
		Quantity:      1,
		UnitPrice:     50.0,
	})

	assert.Error(t, err)
	// Nothing was persisted: no local order for a hold the provider rejected.
	mockDB.AssertNotCalled(t, "CreateOrder", mock.Anything)
}

func TestCheckoutSurvivesPaymentIntentFailure(t *testing.T) {
	mockDB := new(MockDBLayer)
	mockPay := new(MockPaymentProvider)
	svc := newTestService(mockDB, mockPay, nil)

	mockDB.On("CreateOrder", mock.AnythingOfType("models.Order")).Return(nil)
	mockPay.On("CreateIntent", mock.Anything, "", 50.0, "GBP").
		Return(nil, errors.New("stripe unavailable"))

	resp, err := svc.Checkout(models.CheckoutRequest{
		HoldReference: "hold-1",
		CustomerName:  "Bob",
		CustomerEmail: "bob@example.com",
		Quantity:      1,
		UnitPrice:     50.0,
	})

	// The order stands even though the intent could not be opened.
	assert.NoError(t, err)
	assert.Empty(t, resp.ClientSecret)
	assert.Equal(t, models.OrderStatusPending, resp.Status)
}

func TestTicketedTransitionIssuesExactlyQuantityTickets(t *testing.T) {
	mockDB := new(MockDBLayer)
	mockMail := new(MockMailer)
	svc := newTestService(mockDB, nil, mockMail)

	order := &models.Order{
		ID:          "ord-1",
		OrderNumber: "4D691144",
		EventName:   "Summer Fest",
		Quantity:    3,
		Status:      models.OrderStatusPaid,
	}

	mockDB.On("GetOrderByReference", "4D691144").Return(order, nil)
	mockDB.On("UpdateOrder", mock.AnythingOfType("models.Order")).Return(nil)
	mockDB.On("CountTicketsByOrder", "ord-1").Return(0, nil)
	mockDB.On("CreateTicket", mock.AnythingOfType("models.Ticket")).Return(nil)
	mockMail.On("SendTickets", mock.AnythingOfType("models.Order"), mock.AnythingOfType("[]models.Ticket")).Return()

	err := svc.SetStatusByReference("4D691144", models.OrderStatusTicketed)

	assert.NoError(t, err)
	mockDB.AssertNumberOfCalls(t, "CreateTicket", 3)
	mockMail.AssertExpectations(t)
}

func TestTicketedTransitionTopsUpPartialIssue(t *testing.T) {
	mockDB := new(MockDBLayer)
	svc := newTestService(mockDB, nil, nil)

	order := &models.Order{
		ID:          "ord-2",
		OrderNumber: "AB12CD34",
		Quantity:    4,
		Status:      models.OrderStatusPaid,
	}

	// Two tickets exist from an earlier partially-failed issue; only the
	// remaining two are created.
	mockDB.On("GetOrderByID", "ord-2").Return(order, nil)
	mockDB.On("UpdateOrder", mock.AnythingOfType("models.Order")).Return(nil)
	mockDB.On("CountTicketsByOrder", "ord-2").Return(2, nil)
	mockDB.On("CreateTicket", mock.AnythingOfType("models.Ticket")).Return(nil)

	err := svc.SetStatusByID("ord-2", models.OrderStatusTicketed)

	assert.NoError(t, err)
	mockDB.AssertNumberOfCalls(t, "CreateTicket", 2)
}

func TestSameStatusUpdateIsIdempotent(t *testing.T) {
	mockDB := new(MockDBLayer)
	svc := newTestService(mockDB, nil, nil)

	order := &models.Order{
		ID:          "ord-3",
		OrderNumber: "EF56GH78",
		Quantity:    2,
		Status:      models.OrderStatusTicketed,
	}

	mockDB.On("GetOrderByReference", "EF56GH78").Return(order, nil)

	// A replayed webhook lands on the same status: no write, no re-issue.
	err := svc.SetStatusByReference("EF56GH78", models.OrderStatusTicketed)

	assert.NoError(t, err)
	mockDB.AssertNotCalled(t, "UpdateOrder", mock.Anything)
	mockDB.AssertNotCalled(t, "CreateTicket", mock.Anything)
}

func TestSetStatusRejectsUnknownStatus(t *testing.T) {
	mockDB := new(MockDBLayer)
	svc := newTestService(mockDB, nil, nil)

	order := &models.Order{ID: "ord-4", OrderNumber: "IJ90KL12", Status: models.OrderStatusPending}
	mockDB.On("GetOrderByID", "ord-4").Return(order, nil)

	err := svc.SetStatusByID("ord-4", "shipped")

	assert.ErrorIs(t, err, orders.ErrInvalidStatus)
	mockDB.AssertNotCalled(t, "UpdateOrder", mock.Anything)
}

func TestIssueTicketsCountsFailuresWithoutRetry(t *testing.T) {
	mockDB := new(MockDBLayer)
	mockMail := new(MockMailer)
	svc := newTestService(mockDB, nil, mockMail)

	order := &models.Order{
		ID:          "ord-5",
		OrderNumber: "MN34OP56",
		Quantity:    3,
		Status:      models.OrderStatusPaid,
	}

	mockDB.On("GetOrderByID", "ord-5").Return(order, nil)
	mockDB.On("UpdateOrder", mock.AnythingOfType("models.Order")).Return(nil)
	mockDB.On("CountTicketsByOrder", "ord-5").Return(0, nil)
	// Second insert fails; siblings still land and the mail still goes out
	// for the tickets that were issued.
	mockDB.On("CreateTicket", mock.AnythingOfType("models.Ticket")).Return(nil).Once()
	mockDB.On("CreateTicket", mock.AnythingOfType("models.Ticket")).Return(errors.New("disk full")).Once()
	mockDB.On("CreateTicket", mock.AnythingOfType("models.Ticket")).Return(nil).Once()
	mockMail.On("SendTickets", mock.AnythingOfType("models.Order"), mock.MatchedBy(func(tickets []models.Ticket) bool {
		return len(tickets) == 2
	})).Return()

	err := svc.SetStatusByID("ord-5", models.OrderStatusTicketed)

	assert.Error(t, err)
	mockDB.AssertNumberOfCalls(t, "CreateTicket", 3)
	mockMail.AssertExpectations(t)
}

func TestMergeOrderNotesPreservesExistingKeys(t *testing.T) {
	mockDB := new(MockDBLayer)
	svc := newTestService(mockDB, nil, nil)

	order := &models.Order{
		ID:          "ord-6",
		OrderNumber: "QR78ST90",
		Notes:       `{"delivery_method":"e-ticket"}`,
	}

	var updated models.Order
	mockDB.On("GetOrderByReference", "QR78ST90").Return(order, nil)
	mockDB.On("UpdateOrder", mock.AnythingOfType("models.Order")).Run(func(args mock.Arguments) {
		updated = args.Get(0).(models.Order)
	}).Return(nil)

	err := svc.MergeOrderNotesByReference("QR78ST90", map[string]interface{}{
		"ticket_url": "https://cdn.example.com/t/1.pdf",
	})

	assert.NoError(t, err)
	notes := updated.NotesMap()
	assert.Equal(t, "e-ticket", notes["delivery_method"])
	assert.Equal(t, "https://cdn.example.com/t/1.pdf", notes["ticket_url"])
}

func TestCreatePaymentIntentReusesExistingIntent(t *testing.T) {
	mockDB := new(MockDBLayer)
	mockPay := new(MockPaymentProvider)
	svc := newTestService(mockDB, mockPay, nil)

	order := &models.Order{
		ID:              "ord-7",
		OrderNumber:     "UV12WX34",
		TotalPrice:      120.0,
		Currency:        "GBP",
		PaymentIntentID: "pi_old",
	}

	mockDB.On("GetOrderByNumber", "UV12WX34").Return(order, nil)
	mockPay.On("CreateIntent", "ord-7", "pi_old", 120.0, "GBP").
		Return(&payments.Intent{ID: "pi_old", ClientSecret: "pi_old_secret"}, nil)

	intent, err := svc.CreatePaymentIntent("UV12WX34")

	assert.NoError(t, err)
	assert.Equal(t, "pi_old", intent.ID)
	// Same intent came back, so no pointless write.
	mockDB.AssertNotCalled(t, "UpdateOrder", mock.Anything)
}

func TestResendTicketsRequiresTicketedOrder(t *testing.T) {
	mockDB := new(MockDBLayer)
	svc := newTestService(mockDB, nil, nil)

	order := &models.Order{ID: "ord-8", OrderNumber: "YZ56AB78", Status: models.OrderStatusPending}
	mockDB.On("GetOrderByID", "ord-8").Return(order, nil)

	err := svc.ResendTickets("ord-8")

	assert.Error(t, err)
	mockDB.AssertNotCalled(t, "GetTicketsByOrder", mock.Anything)
}
