package store_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"ticket-marketplace/internal/models"
	"ticket-marketplace/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func setupTestDB(t *testing.T) *store.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("Failed to open SQLite: %v", err)
	}

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())

	ctx := context.Background()
	if err := bunDB.ResetModel(ctx, (*models.Order)(nil)); err != nil {
		t.Fatalf("Failed to reset orders table: %v", err)
	}
	if err := bunDB.ResetModel(ctx, (*models.Ticket)(nil)); err != nil {
		t.Fatalf("Failed to reset tickets table: %v", err)
	}

	return &store.DB{Bun: bunDB}
}

func sampleOrder(id, number string) models.Order {
	return models.Order{
		ID:            id,
		OrderNumber:   number,
		CustomerName:  "Alice Wonderland",
		CustomerEmail: "alice@example.com",
		EventName:     "Summer Fest 2026",
		VenueName:     "Finsbury Park",
		EventDate:     "2026-09-12",
		Quantity:      2,
		UnitPrice:     85.0,
		TotalPrice:    170.0,
		Currency:      "GBP",
		Status:        models.OrderStatusPending,
		HoldReference: "hold-" + id,
		CreatedAt:     time.Now().Round(time.Second),
	}
}

func TestCreateAndGetOrder(t *testing.T) {
	db := setupTestDB(t)

	order := sampleOrder("ord-1", "AA11BB22")
	assert.NoError(t, db.CreateOrder(order))

	got, err := db.GetOrderByID("ord-1")
	assert.NoError(t, err)
	assert.Equal(t, order.OrderNumber, got.OrderNumber)
	assert.Equal(t, order.CustomerEmail, got.CustomerEmail)
	assert.Equal(t, order.TotalPrice, got.TotalPrice)

	byNumber, err := db.GetOrderByNumber("AA11BB22")
	assert.NoError(t, err)
	assert.Equal(t, "ord-1", byNumber.ID)

	_, err = db.GetOrderByID("nope")
	assert.Error(t, err)
}

func TestGetOrderByReference(t *testing.T) {
	db := setupTestDB(t)

	order := sampleOrder("ord-ref", "CC33DD44")
	order.ProviderOrderID = "prov-777"
	assert.NoError(t, db.CreateOrder(order))

	// Resolves by order number, row ID and provider order ID alike.
	for _, ref := range []string{"CC33DD44", "ord-ref", "prov-777"} {
		got, err := db.GetOrderByReference(ref)
		assert.NoError(t, err, "ref %q", ref)
		assert.Equal(t, "ord-ref", got.ID, "ref %q", ref)
	}

	_, err := db.GetOrderByReference("unknown")
	assert.Error(t, err)
}

func TestUpdateOrderPersistsStatusAndNotes(t *testing.T) {
	db := setupTestDB(t)

	order := sampleOrder("ord-upd", "EE55FF66")
	assert.NoError(t, db.CreateOrder(order))

	order.Status = models.OrderStatusConfirmed
	order.MergeNotes(map[string]interface{}{"delivery_method": "e-ticket"})
	assert.NoError(t, db.UpdateOrder(order))

	// A later merge keeps the earlier key.
	got, err := db.GetOrderByID("ord-upd")
	assert.NoError(t, err)
	got.MergeNotes(map[string]interface{}{"ticket_url": "https://cdn.example.com/t/1.pdf"})
	assert.NoError(t, db.UpdateOrder(*got))

	final, err := db.GetOrderByID("ord-upd")
	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusConfirmed, final.Status)

	notes := final.NotesMap()
	assert.Equal(t, "e-ticket", notes["delivery_method"])
	assert.Equal(t, "https://cdn.example.com/t/1.pdf", notes["ticket_url"])
}

func TestGetOrdersByEmailAndList(t *testing.T) {
	db := setupTestDB(t)

	first := sampleOrder("ord-a", "GG77HH88")
	second := sampleOrder("ord-b", "II99JJ00")
	second.CustomerEmail = "bob@example.com"
	assert.NoError(t, db.CreateOrder(first))
	assert.NoError(t, db.CreateOrder(second))

	mine, err := db.GetOrdersByEmail("alice@example.com")
	assert.NoError(t, err)
	assert.Len(t, mine, 1)
	assert.Equal(t, "ord-a", mine[0].ID)

	// Unknown customer gets an empty slice, never nil.
	none, err := db.GetOrdersByEmail("nobody@example.com")
	assert.NoError(t, err)
	assert.NotNil(t, none)
	assert.Len(t, none, 0)

	all, err := db.ListOrders(10, 0)
	assert.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestDeleteOrder(t *testing.T) {
	db := setupTestDB(t)

	assert.NoError(t, db.CreateOrder(sampleOrder("ord-del", "KK11LL22")))
	assert.NoError(t, db.DeleteOrder("ord-del"))

	_, err := db.GetOrderByID("ord-del")
	assert.Error(t, err)
}

func TestTicketLifecycle(t *testing.T) {
	db := setupTestDB(t)

	order := sampleOrder("ord-t", "MM33NN44")
	assert.NoError(t, db.CreateOrder(order))

	for i, id := range []string{"tick-1", "tick-2"} {
		ticket := models.Ticket{
			ID:       id,
			OrderID:  "ord-t",
			Status:   models.TicketStatusIssued,
			IssuedAt: time.Now().Add(time.Duration(i) * time.Second).Round(time.Second),
		}
		assert.NoError(t, db.CreateTicket(ticket))
	}

	count, err := db.CountTicketsByOrder("ord-t")
	assert.NoError(t, err)
	assert.Equal(t, 2, count)

	tickets, err := db.GetTicketsByOrder("ord-t")
	assert.NoError(t, err)
	assert.Len(t, tickets, 2)
	assert.Equal(t, "tick-1", tickets[0].ID)

	tickets[0].Status = models.TicketStatusSent
	assert.NoError(t, db.UpdateTicket(tickets[0]))

	got, err := db.GetTicketByID("tick-1")
	assert.NoError(t, err)
	assert.Equal(t, models.TicketStatusSent, got.Status)

	// Order with no tickets: empty slice, zero count.
	empty, err := db.GetTicketsByOrder("ord-none")
	assert.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Len(t, empty, 0)
}
