package theatre

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
)

// Client talks to the theatre-booking provider. Unlike the resale feed the
// theatre API keys requests with an X-Api-Key header and nests everything
// one level deeper.
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

type Show struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	TheatreName string `json:"theatre_name"`
	City        string `json:"city"`
	Synopsis    string `json:"synopsis,omitempty"`
	RunTime     int    `json:"run_time_minutes,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
}

type Performance struct {
	ID        string  `json:"id"`
	ShowID    string  `json:"show_id"`
	StartsAt  string  `json:"starts_at"`
	MinPrice  float64 `json:"min_price"`
	MaxPrice  float64 `json:"max_price"`
	Currency  string  `json:"currency"`
	Available bool    `json:"available"`
}

type SeatBlock struct {
	Area      string  `json:"area"`
	Row       string  `json:"row,omitempty"`
	Seats     int     `json:"seats"`
	UnitPrice float64 `json:"unit_price"`
	Currency  string  `json:"currency"`
}

type Booking struct {
	Reference string  `json:"reference"`
	Status    string  `json:"status"`
	Total     float64 `json:"total"`
	Currency  string  `json:"currency"`
}

type BookingRequest struct {
	PerformanceID string `json:"performance_id" validate:"required"`
	Area          string `json:"area" validate:"required"`
	Quantity      int    `json:"quantity" validate:"required,min=1,max=10"`
	CustomerName  string `json:"customer_name" validate:"required"`
	CustomerEmail string `json:"customer_email" validate:"required,email"`
}

func (c *Client) do(method, path string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal theatre request: %w", err)
		}
		body = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create theatre request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		monitoring.TrackUpstreamCall("theatre", "error", time.Since(start))
		return fmt.Errorf("theatre service error: %w", err)
	}
	monitoring.TrackUpstreamCall("theatre", strconv.Itoa(resp.StatusCode), time.Since(start))
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		c.logger.Error("THEATRE", fmt.Sprintf("Theatre API returned status %d for %s", resp.StatusCode, path))
		return &utils.UpstreamError{Provider: "theatre", StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode theatre response: %w", err)
	}
	return nil
}

func (c *Client) ListShows(city string) ([]Show, error) {
	path := "/shows"
	if city != "" {
		path += "?city=" + url.QueryEscape(city)
	}

	var upstream struct {
		Shows []struct {
			ID      string `json:"showId"`
			Name    string `json:"showName"`
			Theatre struct {
				Name string `json:"name"`
				City string `json:"city"`
			} `json:"theatre"`
			Synopsis string `json:"synopsis"`
			RunTime  int    `json:"runTimeMinutes"`
			Poster   string `json:"posterUrl"`
		} `json:"shows"`
	}
	if err := c.do("GET", path, nil, &upstream); err != nil {
		return nil, err
	}

	shows := make([]Show, 0, len(upstream.Shows))
	for _, us := range upstream.Shows {
		shows = append(shows, Show{
			ID:          us.ID,
			Name:        us.Name,
			TheatreName: us.Theatre.Name,
			City:        us.Theatre.City,
			Synopsis:    us.Synopsis,
			RunTime:     us.RunTime,
			ImageURL:    us.Poster,
		})
	}
	return shows, nil
}

func (c *Client) GetShow(showID string) (*Show, error) {
	var upstream struct {
		Show struct {
			ID      string `json:"showId"`
			Name    string `json:"showName"`
			Theatre struct {
				Name string `json:"name"`
				City string `json:"city"`
			} `json:"theatre"`
			Synopsis string `json:"synopsis"`
			RunTime  int    `json:"runTimeMinutes"`
			Poster   string `json:"posterUrl"`
		} `json:"show"`
	}
	if err := c.do("GET", "/shows/"+url.PathEscape(showID), nil, &upstream); err != nil {
		return nil, err
	}

	return &Show{
		ID:          upstream.Show.ID,
		Name:        upstream.Show.Name,
		TheatreName: upstream.Show.Theatre.Name,
		City:        upstream.Show.Theatre.City,
		Synopsis:    upstream.Show.Synopsis,
		RunTime:     upstream.Show.RunTime,
		ImageURL:    upstream.Show.Poster,
	}, nil
}

func (c *Client) ListPerformances(showID string) ([]Performance, error) {
	var upstream struct {
		Performances []struct {
			ID       string  `json:"performanceId"`
			StartsAt string  `json:"startsAt"`
			MinPrice float64 `json:"minPrice"`
			MaxPrice float64 `json:"maxPrice"`
			Currency string  `json:"currency"`
			SoldOut  bool    `json:"soldOut"`
		} `json:"performances"`
	}
	if err := c.do("GET", "/shows/"+url.PathEscape(showID)+"/performances", nil, &upstream); err != nil {
		return nil, err
	}

	performances := make([]Performance, 0, len(upstream.Performances))
	for _, up := range upstream.Performances {
		performances = append(performances, Performance{
			ID:        up.ID,
			ShowID:    showID,
			StartsAt:  up.StartsAt,
			MinPrice:  up.MinPrice,
			MaxPrice:  up.MaxPrice,
			Currency:  up.Currency,
			Available: !up.SoldOut,
		})
	}
	return performances, nil
}

func (c *Client) GetSeatAvailability(performanceID string) ([]SeatBlock, error) {
	var upstream struct {
		Areas []struct {
			Name      string  `json:"areaName"`
			Row       string  `json:"row"`
			Available int     `json:"availableCount"`
			Price     float64 `json:"price"`
			Currency  string  `json:"currency"`
		} `json:"areas"`
	}
	if err := c.do("GET", "/performances/"+url.PathEscape(performanceID)+"/availability", nil, &upstream); err != nil {
		return nil, err
	}

	blocks := make([]SeatBlock, 0, len(upstream.Areas))
	for _, ua := range upstream.Areas {
		blocks = append(blocks, SeatBlock{
			Area:      ua.Name,
			Row:       ua.Row,
			Seats:     ua.Available,
			UnitPrice: ua.Price,
			Currency:  ua.Currency,
		})
	}
	return blocks, nil
}

func (c *Client) CreateBooking(req BookingRequest) (*Booking, error) {
	payload := map[string]interface{}{
		"performanceId": req.PerformanceID,
		"areaName":      req.Area,
		"quantity":      req.Quantity,
		"customer": map[string]string{
			"name":  req.CustomerName,
			"email": req.CustomerEmail,
		},
	}

	var upstream struct {
		Booking struct {
			Reference string  `json:"bookingReference"`
			Status    string  `json:"status"`
			Total     float64 `json:"totalPrice"`
			Currency  string  `json:"currency"`
		} `json:"booking"`
	}
	if err := c.do("POST", "/bookings", payload, &upstream); err != nil {
		return nil, err
	}

	return &Booking{
		Reference: upstream.Booking.Reference,
		Status:    upstream.Booking.Status,
		Total:     upstream.Booking.Total,
		Currency:  upstream.Booking.Currency,
	}, nil
}
