package discovery_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"ticket-marketplace/internal/config"
	"ticket-marketplace/internal/discovery"
	"ticket-marketplace/internal/logger"

	"github.com/stretchr/testify/assert"
)

func newTestClient(t *testing.T, handler http.Handler) *discovery.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return discovery.NewClient(config.ProviderConfig{
		BaseURL: server.URL,
		APIKey:  "test-key",
	}, server.Client(), logger.NewLogger())
}

func TestSearchEventsNormalizesEnvelope(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/events.json", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("apikey"))
		assert.Equal(t, "coldplay", r.URL.Query().Get("keyword"))

		fmt.Fprint(w, `{
			"_embedded": {"events": [{
				"id": "tm-1",
				"name": "Coldplay",
				"url": "https://tickets.example.com/tm-1",
				"images": [
					{"url": "https://img.example.com/small.jpg", "width": 205},
					{"url": "https://img.example.com/big.jpg", "width": 1024}
				],
				"dates": {"start": {"localDate": "2026-09-12", "localTime": "19:30:00"}},
				"classifications": [{"segment": {"name": "Music"}, "genre": {"name": "Rock"}}],
				"priceRanges": [{"min": 85, "max": 250, "currency": "GBP"}],
				"_embedded": {"venues": [{"name": "Wembley Stadium",
					"city": {"name": "London"}, "country": {"name": "United Kingdom"}}]}
			}]},
			"page": {"totalElements": 1, "number": 0}
		}`)
	}))

	result, err := client.SearchEvents(discovery.SearchParams{Keyword: "coldplay"})

	assert.NoError(t, err)
	assert.Equal(t, 1, result.Total)
	assert.Len(t, result.Events, 1)

	event := result.Events[0]
	assert.Equal(t, "tm-1", event.ID)
	assert.Equal(t, "Wembley Stadium", event.Venue)
	assert.Equal(t, "Music", event.Classification)
	assert.Equal(t, "Rock", event.Genre)
	assert.Equal(t, 85.0, event.MinPrice)
	// The widest image wins.
	assert.Equal(t, "https://img.example.com/big.jpg", event.ImageURL)
}

func TestSearchEventsEmptyResult(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// A well-formed response with no _embedded block at all.
		fmt.Fprint(w, `{"page": {"totalElements": 0, "number": 0}}`)
	}))

	result, err := client.SearchEvents(discovery.SearchParams{Keyword: "no such act"})

	assert.NoError(t, err)
	assert.NotNil(t, result.Events)
	assert.Len(t, result.Events, 0)
	assert.Equal(t, 0, result.Total)
}

func TestSearchEventsDateWindowExpansion(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2026-09-01T00:00:00Z", r.URL.Query().Get("startDateTime"))
		assert.Equal(t, "2026-09-30T23:59:59Z", r.URL.Query().Get("endDateTime"))
		fmt.Fprint(w, `{"page": {"totalElements": 0}}`)
	}))

	_, err := client.SearchEvents(discovery.SearchParams{
		StartDate: "2026-09-01",
		EndDate:   "2026-09-30",
	})
	assert.NoError(t, err)
}

func TestSearchEventsHandlerFallsBackToDemoData(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	h := discovery.NewHandler(client, logger.NewLogger())

	req := httptest.NewRequest("GET", "/api/discovery/events?keyword=anything", nil)
	rec := httptest.NewRecorder()
	h.SearchEvents(rec, req)

	// Catalog-style reads degrade silently: 200 with demo data.
	assert.Equal(t, http.StatusOK, rec.Code)

	var result discovery.SearchResult
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, len(discovery.DemoEvents), result.Total)
	assert.NotEmpty(t, result.Events)
}

func TestClassificationsHandlerFallsBackToDemoData(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	h := discovery.NewHandler(client, logger.NewLogger())

	req := httptest.NewRequest("GET", "/api/discovery/classifications", nil)
	rec := httptest.NewRecorder()
	h.ListClassifications(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Classifications []discovery.Classification `json:"classifications"`
		Total           int                        `json:"total"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, len(discovery.DemoClassifications), resp.Total)
}
