package models_test

import (
	"testing"

	"ticket-marketplace/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestNotesMapToleratesGarbage(t *testing.T) {
	order := models.Order{}
	assert.Empty(t, order.NotesMap())

	order.Notes = "not json at all"
	assert.Empty(t, order.NotesMap())

	order.Notes = `{"ticket_url": "https://cdn.example.com/t/1.pdf"}`
	assert.Equal(t, "https://cdn.example.com/t/1.pdf", order.NotesMap()["ticket_url"])
}

func TestMergeNotesKeepsExistingKeys(t *testing.T) {
	order := models.Order{Notes: `{"delivery_method": "e-ticket", "seats": "A1,A2"}`}

	order.MergeNotes(map[string]interface{}{
		"ticket_url": "https://cdn.example.com/t/1.pdf",
		"seats":      "B1,B2", // newer value wins for a repeated key
	})

	notes := order.NotesMap()
	assert.Equal(t, "e-ticket", notes["delivery_method"])
	assert.Equal(t, "B1,B2", notes["seats"])
	assert.Equal(t, "https://cdn.example.com/t/1.pdf", notes["ticket_url"])
}

func TestMergeNotesOntoEmptyOrder(t *testing.T) {
	order := models.Order{}
	order.MergeNotes(map[string]interface{}{"ticket_url": "x"})
	assert.Equal(t, "x", order.NotesMap()["ticket_url"])
}
