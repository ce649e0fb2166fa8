package resale

import (
	"bytes"
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

// Client talks to the ticket-resale feed provider: paginated event feed,
// per-event listings, holds and provider-side orders.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *logger.Logger
	cache   *availabilityCache
}

func NewClient(cfg config.ProviderConfig, client *http.Client, log *logger.Logger) *Client {
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	return &Client{
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
		client:  client,
		logger:  log,
		cache:   newAvailabilityCache(5 * time.Minute),
	}
}

// FeedEvent is the normalized shape the storefront renders.
type FeedEvent struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Slug     string  `json:"slug"`
	Venue    string  `json:"venue"`
	City     string  `json:"city"`
	Country  string  `json:"country"`
	Date     string  `json:"date"`
	MinPrice float64 `json:"min_price"`
	Currency string  `json:"currency"`
	ImageURL string  `json:"image_url,omitempty"`
}

type FeedPage struct {
	Events   []FeedEvent `json:"events"`
	Total    int         `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
}

type Listing struct {
	ID        string  `json:"id"`
	Section   string  `json:"section"`
	Row       string  `json:"row,omitempty"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Currency  string  `json:"currency"`
}

type Hold struct {
	Reference string    `json:"reference"`
	ListingID string    `json:"listing_id"`
	Quantity  int       `json:"quantity"`
	ExpiresAt time.Time `json:"expires_at"`
}

type ProviderOrder struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// upstream wire shapes

type upstreamEvent struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Venue struct {
		Name    string `json:"name"`
		City    string `json:"city"`
		Country string `json:"country"`
	} `json:"venue"`
	DateTime   string  `json:"datetime"`
	MinPrice   float64 `json:"min_ticket_price"`
	CurrencyCd string  `json:"currency_code"`
	ImageURL   string  `json:"image_url"`
}

type upstreamFeedPage struct {
	Data []upstreamEvent `json:"data"`
	Meta struct {
		Total    int `json:"total"`
		Page     int `json:"current_page"`
		PageSize int `json:"per_page"`
	} `json:"meta"`
}

type upstreamListing struct {
	ID       string `json:"id"`
	Section  string `json:"split_section"`
	Row      string `json:"row"`
	Quantity int    `json:"no_of_tickets"`
	Price    struct {
		Amount   float64 `json:"amount"`
		Currency string  `json:"currency"`
	} `json:"sell_price"`
}

func normalizeEvent(ue upstreamEvent) FeedEvent {
	return FeedEvent{
		ID:       ue.ID,
		Name:     ue.Name,
		Slug:     slug.Make(ue.Name),
		Venue:    ue.Venue.Name,
		City:     ue.Venue.City,
		Country:  ue.Venue.Country,
		Date:     ue.DateTime,
		MinPrice: ue.MinPrice,
		Currency: ue.CurrencyCd,
		ImageURL: ue.ImageURL,
	}
}

func (c *Client) get(path string, query url.Values, out interface{}) error {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	req, err := http.NewRequest("GET", reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create resale request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		monitoring.TrackUpstreamCall("resale", "error", time.Since(start))
		return fmt.Errorf("resale feed error: %w", err)
	}
	monitoring.TrackUpstreamCall("resale", strconv.Itoa(resp.StatusCode), time.Since(start))
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.logger.Error("RESALE", fmt.Sprintf("Feed returned status %d for %s", resp.StatusCode, path))
		return &utils.UpstreamError{Provider: "resale", StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode resale response: %w", err)
	}
	return nil
}

func (c *Client) post(path string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal resale request: %w", err)
	}

	req, err := http.NewRequest("POST", c.baseURL+path, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create resale request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		monitoring.TrackUpstreamCall("resale", "error", time.Since(start))
		return fmt.Errorf("resale feed error: %w", err)
	}
	monitoring.TrackUpstreamCall("resale", strconv.Itoa(resp.StatusCode), time.Since(start))
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		c.logger.Error("RESALE", fmt.Sprintf("Feed returned status %d for %s", resp.StatusCode, path))
		return &utils.UpstreamError{Provider: "resale", StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode resale response: %w", err)
	}
	return nil
}

// ListEvents fetches one page of the purchasable-event feed.
func (c *Client) ListEvents(page, pageSize int, keyword, city string) (*FeedPage, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("per_page", strconv.Itoa(pageSize))
	if keyword != "" {
		query.Set("query", keyword)
	}
	if city != "" {
		query.Set("city", city)
	}

	var upstream upstreamFeedPage
	if err := c.get("/events", query, &upstream); err != nil {
		return nil, err
	}

	events := make([]FeedEvent, 0, len(upstream.Data))
	for _, ue := range upstream.Data {
		events = append(events, normalizeEvent(ue))
	}

	return &FeedPage{
		Events:   events,
		Total:    upstream.Meta.Total,
		Page:     upstream.Meta.Page,
		PageSize: upstream.Meta.PageSize,
	}, nil
}

func (c *Client) GetEvent(eventID string) (*FeedEvent, error) {
	var upstream struct {
		Data upstreamEvent `json:"data"`
	}
	if err := c.get("/events/"+url.PathEscape(eventID), nil, &upstream); err != nil {
		return nil, err
	}
	event := normalizeEvent(upstream.Data)
	return &event, nil
}

// GetListings returns the purchasable listings for an event. Results are
// held in an in-process map for five minutes; entries are judged stale on
// the next read, there is no eviction.
func (c *Client) GetListings(eventID string) ([]Listing, error) {
	if cached, ok := c.cache.get(eventID); ok {
		c.logger.Debug("RESALE", fmt.Sprintf("Availability cache hit for event %s", eventID))
		return cached, nil
	}

	var upstream struct {
		Data []upstreamListing `json:"data"`
	}
	if err := c.get("/events/"+url.PathEscape(eventID)+"/listings", nil, &upstream); err != nil {
		return nil, err
	}

	listings := make([]Listing, 0, len(upstream.Data))
	for _, ul := range upstream.Data {
		listings = append(listings, Listing{
			ID:        ul.ID,
			Section:   ul.Section,
			Row:       ul.Row,
			Quantity:  ul.Quantity,
			UnitPrice: ul.Price.Amount,
			Currency:  ul.Price.Currency,
		})
	}

	c.cache.set(eventID, listings)
	return listings, nil
}

// CreateHold reserves inventory at the provider. Expiry is enforced by the
// provider; the returned ExpiresAt is advisory.
func (c *Client) CreateHold(listingID string, quantity int) (*Hold, error) {
	payload := map[string]interface{}{
		"listing_id": listingID,
		"quantity":   quantity,
	}

	var upstream struct {
		Data struct {
			HoldID    string `json:"hold_id"`
			ListingID string `json:"listing_id"`
			Quantity  int    `json:"quantity"`
			ExpiresAt string `json:"expires_at"`
		} `json:"data"`
	}
	if err := c.post("/holds", payload, &upstream); err != nil {
		return nil, err
	}

	expiresAt, err := time.Parse(time.RFC3339, upstream.Data.ExpiresAt)
	if err != nil {
		c.logger.Warn("RESALE", fmt.Sprintf("Unparseable hold expiry %q, defaulting to 15m", upstream.Data.ExpiresAt))
		expiresAt = time.Now().Add(15 * time.Minute)
	}

	return &Hold{
		Reference: upstream.Data.HoldID,
		ListingID: upstream.Data.ListingID,
		Quantity:  upstream.Data.Quantity,
		ExpiresAt: expiresAt,
	}, nil
}

func (c *Client) ReleaseHold(holdRef string) error {
	req, err := http.NewRequest("DELETE", c.baseURL+"/holds/"+url.PathEscape(holdRef), nil)
	if err != nil {
		return fmt.Errorf("failed to create resale request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		monitoring.TrackUpstreamCall("resale", "error", time.Since(start))
		return fmt.Errorf("resale feed error: %w", err)
	}
	monitoring.TrackUpstreamCall("resale", strconv.Itoa(resp.StatusCode), time.Since(start))
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		return &utils.UpstreamError{Provider: "resale", StatusCode: resp.StatusCode, Body: string(body)}
	}
	return nil
}

// CreateOrder converts a hold into a provider-side order.
func (c *Client) CreateOrder(holdRef, customerName, customerEmail string) (*ProviderOrder, error) {
	payload := map[string]interface{}{
		"hold_id":        holdRef,
		"customer_name":  customerName,
		"customer_email": customerEmail,
	}

	var upstream struct {
		Data struct {
			OrderID string `json:"order_id"`
			Status  string `json:"status"`
		} `json:"data"`
	}
	if err := c.post("/orders", payload, &upstream); err != nil {
		return nil, err
	}

	return &ProviderOrder{ID: upstream.Data.OrderID, Status: upstream.Data.Status}, nil
}
