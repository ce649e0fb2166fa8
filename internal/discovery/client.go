package discovery

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"ticket-marketplace/internal/config"
	"ticket-marketplace/internal/logger"
	"ticket-marketplace/internal/monitoring"
	"ticket-marketplace/internal/utils"

	"github.com/gosimple/slug"
)

// Client talks to the concerts/sports discovery provider. The provider
// keys requests with an apikey query parameter and wraps collections in an
// _embedded envelope.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *logger.Logger
}

func NewClient(cfg config.ProviderConfig, client *http.Client, log *logger.Logger) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		client:  client,
		logger:  log,
	}
}

// SearchParams are the structured filters the storefront (or the AI query
// parser) builds for an event search.
type SearchParams struct {
	Keyword        string `json:"keyword,omitempty"`
	City           string `json:"city,omitempty"`
	CountryCode    string `json:"country_code,omitempty"`
	StartDate      string `json:"start_date,omitempty"`
	EndDate        string `json:"end_date,omitempty"`
	Classification string `json:"classification,omitempty"`
	Page           int    `json:"page,omitempty"`
	PageSize       int    `json:"page_size,omitempty"`
}

type Event struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Slug           string  `json:"slug"`
	Venue          string  `json:"venue"`
	City           string  `json:"city"`
	Country        string  `json:"country"`
	Date           string  `json:"date"`
	Time           string  `json:"time,omitempty"`
	Classification string  `json:"classification,omitempty"`
	Genre          string  `json:"genre,omitempty"`
	MinPrice       float64 `json:"min_price,omitempty"`
	MaxPrice       float64 `json:"max_price,omitempty"`
	Currency       string  `json:"currency,omitempty"`
	ImageURL       string  `json:"image_url,omitempty"`
	TicketURL      string  `json:"ticket_url,omitempty"`
}

type SearchResult struct {
	Events []Event `json:"events"`
	Total  int     `json:"total"`
	Page   int     `json:"page"`
}

type Venue struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	City    string `json:"city"`
	Country string `json:"country"`
}

type Classification struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// upstream wire shapes

type upstreamEvent struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	URL    string `json:"url"`
	Images []struct {
		URL   string `json:"url"`
		Width int    `json:"width"`
	} `json:"images"`
	Dates struct {
		Start struct {
			LocalDate string `json:"localDate"`
			LocalTime string `json:"localTime"`
		} `json:"start"`
	} `json:"dates"`
	Classifications []struct {
		Segment struct {
			Name string `json:"name"`
		} `json:"segment"`
		Genre struct {
			Name string `json:"name"`
		} `json:"genre"`
	} `json:"classifications"`
	PriceRanges []struct {
		Min      float64 `json:"min"`
		Max      float64 `json:"max"`
		Currency string  `json:"currency"`
	} `json:"priceRanges"`
	Embedded struct {
		Venues []struct {
			Name string `json:"name"`
			City struct {
				Name string `json:"name"`
			} `json:"city"`
			Country struct {
				Name string `json:"name"`
			} `json:"country"`
		} `json:"venues"`
	} `json:"_embedded"`
}

func normalizeEvent(ue upstreamEvent) Event {
	event := Event{
		ID:        ue.ID,
		Name:      ue.Name,
		Slug:      slug.Make(ue.Name),
		Date:      ue.Dates.Start.LocalDate,
		Time:      ue.Dates.Start.LocalTime,
		TicketURL: ue.URL,
	}

	if len(ue.Embedded.Venues) > 0 {
		venue := ue.Embedded.Venues[0]
		event.Venue = venue.Name
		event.City = venue.City.Name
		event.Country = venue.Country.Name
	}
	if len(ue.Classifications) > 0 {
		event.Classification = ue.Classifications[0].Segment.Name
		event.Genre = ue.Classifications[0].Genre.Name
	}
	if len(ue.PriceRanges) > 0 {
		event.MinPrice = ue.PriceRanges[0].Min
		event.MaxPrice = ue.PriceRanges[0].Max
		event.Currency = ue.PriceRanges[0].Currency
	}

	// Prefer the widest image the provider offers.
	bestWidth := 0
	for _, img := range ue.Images {
		if img.Width > bestWidth {
			bestWidth = img.Width
			event.ImageURL = img.URL
		}
	}

	return event
}

func (c *Client) get(path string, query url.Values, out interface{}) error {
	if query == nil {
		query = url.Values{}
	}
	query.Set("apikey", c.apiKey)

	req, err := http.NewRequest("GET", c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create discovery request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		monitoring.TrackUpstreamCall("discovery", "error", time.Since(start))
		return fmt.Errorf("discovery service error: %w", err)
	}
	monitoring.TrackUpstreamCall("discovery", strconv.Itoa(resp.StatusCode), time.Since(start))
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &utils.UpstreamError{Provider: "discovery", StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode discovery response: %w", err)
	}
	return nil
}

// SearchEvents runs an event search. A well-formed upstream response with
// no matches yields an empty slice and zero total, never nil.
func (c *Client) SearchEvents(params SearchParams) (*SearchResult, error) {
	query := url.Values{}
	if params.Keyword != "" {
		query.Set("keyword", params.Keyword)
	}
	if params.City != "" {
		query.Set("city", params.City)
	}
	if params.CountryCode != "" {
		query.Set("countryCode", params.CountryCode)
	}
	if params.StartDate != "" {
		query.Set("startDateTime", params.StartDate+"T00:00:00Z")
	}
	if params.EndDate != "" {
		query.Set("endDateTime", params.EndDate+"T23:59:59Z")
	}
	if params.Classification != "" {
		query.Set("classificationName", params.Classification)
	}
	if params.Page > 0 {
		query.Set("page", strconv.Itoa(params.Page))
	}
	pageSize := params.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	query.Set("size", strconv.Itoa(pageSize))

	var upstream struct {
		Embedded struct {
			Events []upstreamEvent `json:"events"`
		} `json:"_embedded"`
		Page struct {
			TotalElements int `json:"totalElements"`
			Number        int `json:"number"`
		} `json:"page"`
	}
	if err := c.get("/events.json", query, &upstream); err != nil {
		return nil, err
	}

	events := make([]Event, 0, len(upstream.Embedded.Events))
	for _, ue := range upstream.Embedded.Events {
		events = append(events, normalizeEvent(ue))
	}

	return &SearchResult{
		Events: events,
		Total:  upstream.Page.TotalElements,
		Page:   upstream.Page.Number,
	}, nil
}

func (c *Client) GetEvent(eventID string) (*Event, error) {
	var ue upstreamEvent
	if err := c.get("/events/"+url.PathEscape(eventID)+".json", nil, &ue); err != nil {
		return nil, err
	}
	event := normalizeEvent(ue)
	return &event, nil
}

func (c *Client) SearchVenues(keyword string) ([]Venue, error) {
	query := url.Values{}
	if keyword != "" {
		query.Set("keyword", keyword)
	}

	var upstream struct {
		Embedded struct {
			Venues []struct {
				ID   string `json:"id"`
				Name string `json:"name"`
				City struct {
					Name string `json:"name"`
				} `json:"city"`
				Country struct {
					Name string `json:"name"`
				} `json:"country"`
			} `json:"venues"`
		} `json:"_embedded"`
	}
	if err := c.get("/venues.json", query, &upstream); err != nil {
		return nil, err
	}

	venues := make([]Venue, 0, len(upstream.Embedded.Venues))
	for _, uv := range upstream.Embedded.Venues {
		venues = append(venues, Venue{
			ID:      uv.ID,
			Name:    uv.Name,
			City:    uv.City.Name,
			Country: uv.Country.Name,
		})
	}
	return venues, nil
}

func (c *Client) ListClassifications() ([]Classification, error) {
	var upstream struct {
		Embedded struct {
			Classifications []struct {
				Segment struct {
					ID   string `json:"id"`
					Name string `json:"name"`
				} `json:"segment"`
			} `json:"classifications"`
		} `json:"_embedded"`
	}
	if err := c.get("/classifications.json", nil, &upstream); err != nil {
		return nil, err
	}

	classifications := make([]Classification, 0, len(upstream.Embedded.Classifications))
	for _, uc := range upstream.Embedded.Classifications {
		if uc.Segment.Name == "" {
			continue
		}
		classifications = append(classifications, Classification{
			ID:   uc.Segment.ID,
			Name: uc.Segment.Name,
		})
	}
	return classifications, nil
}
