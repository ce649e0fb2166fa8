package theatre_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"ticket-marketplace/internal/config"
	"ticket-marketplace/internal/logger"
	"ticket-marketplace/internal/theatre"
	"ticket-marketplace/internal/utils"

	"github.com/stretchr/testify/assert"
)

func newTestClient(t *testing.T, handler http.Handler) *theatre.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return theatre.NewClient(config.ProviderConfig{
		BaseURL: server.URL,
		APIKey:  "test-key",
	}, server.Client(), logger.NewLogger())
}

func TestListShowsNormalizesCamelCase(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))
		assert.Equal(t, "London", r.URL.Query().Get("city"))
		fmt.Fprint(w, `{"shows": [{
			"showId": "show-1",
			"showName": "The Phantom of the Opera",
			"theatre": {"name": "His Majesty's Theatre", "city": "London"},
			"runTimeMinutes": 150,
			"posterUrl": "https://cdn.example.com/phantom.jpg"
		}]}`)
	}))

	shows, err := client.ListShows("London")

	assert.NoError(t, err)
	assert.Len(t, shows, 1)
	assert.Equal(t, "show-1", shows[0].ID)
	assert.Equal(t, "His Majesty's Theatre", shows[0].TheatreName)
	assert.Equal(t, 150, shows[0].RunTime)
}

func TestListPerformancesInvertsSoldOut(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"performances": [
			{"performanceId": "perf-1", "startsAt": "2026-09-12T19:30:00",
			 "minPrice": 25, "maxPrice": 150, "currency": "GBP", "soldOut": false},
			{"performanceId": "perf-2", "startsAt": "2026-09-13T14:30:00",
			 "minPrice": 25, "maxPrice": 150, "currency": "GBP", "soldOut": true}
		]}`)
	}))

	performances, err := client.ListPerformances("show-1")

	assert.NoError(t, err)
	assert.Len(t, performances, 2)
	assert.True(t, performances[0].Available)
	assert.False(t, performances[1].Available)
	assert.Equal(t, "show-1", performances[0].ShowID)
}

func TestCreateBookingBuildsNestedPayload(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)

		var payload map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "perf-1", payload["performanceId"])
		assert.Equal(t, "Stalls", payload["areaName"])
		customer := payload["customer"].(map[string]interface{})
		assert.Equal(t, "alice@example.com", customer["email"])

		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"booking": {"bookingReference": "THB-88",
			"status": "confirmed", "totalPrice": 130.0, "currency": "GBP"}}`)
	}))

	booking, err := client.CreateBooking(theatre.BookingRequest{
		PerformanceID: "perf-1",
		Area:          "Stalls",
		Quantity:      2,
		CustomerName:  "Alice Wonderland",
		CustomerEmail: "alice@example.com",
	})

	assert.NoError(t, err)
	assert.Equal(t, "THB-88", booking.Reference)
	assert.Equal(t, "confirmed", booking.Status)
	assert.Equal(t, 130.0, booking.Total)
}

func TestBookingErrorCarriesUpstreamStatus(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		fmt.Fprint(w, `{"error": "performance sold out"}`)
	}))

	_, err := client.CreateBooking(theatre.BookingRequest{
		PerformanceID: "perf-gone",
		Area:          "Stalls",
		Quantity:      2,
		CustomerName:  "Bob",
		CustomerEmail: "bob@example.com",
	})

	assert.Error(t, err)
	assert.Equal(t, http.StatusConflict, utils.UpstreamStatus(err))
}
