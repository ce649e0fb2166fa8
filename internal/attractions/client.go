package attractions

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

type Attraction struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	City        string  `json:"city"`
	Category    string  `json:"category"`
	Description string  `json:"description,omitempty"`
	FromPrice   float64 `json:"from_price"`
	Currency    string  `json:"currency"`
	Duration    string  `json:"duration,omitempty"`
	ImageURL    string  `json:"image_url,omitempty"`
	Rating      float64 `json:"rating,omitempty"`
}

func (c *Client) get(path string, query url.Values, out interface{}) error {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	req, err := http.NewRequest("GET", reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create attractions request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		monitoring.TrackUpstreamCall("attractions", "error", time.Since(start))
		return fmt.Errorf("attractions service error: %w", err)
	}
	monitoring.TrackUpstreamCall("attractions", strconv.Itoa(resp.StatusCode), time.Since(start))
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &utils.UpstreamError{Provider: "attractions", StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode attractions response: %w", err)
	}
	return nil
}

func (c *Client) ListAttractions(city, category string) ([]Attraction, error) {
	query := url.Values{}
	if city != "" {
		query.Set("city", city)
	}
	if category != "" {
		query.Set("category", category)
	}

	var upstream struct {
		Products []struct {
			ID          string  `json:"productId"`
			Title       string  `json:"title"`
			City        string  `json:"destinationName"`
			Category    string  `json:"categoryName"`
			Description string  `json:"shortDescription"`
			FromPrice   float64 `json:"fromPrice"`
			Currency    string  `json:"currencyCode"`
			Duration    string  `json:"duration"`
			Thumbnail   string  `json:"thumbnailHiResURL"`
			Rating      float64 `json:"rating"`
		} `json:"products"`
	}
	if err := c.get("/products", query, &upstream); err != nil {
		return nil, err
	}

	attractions := make([]Attraction, 0, len(upstream.Products))
	for _, up := range upstream.Products {
		attractions = append(attractions, Attraction{
			ID:          up.ID,
			Name:        up.Title,
			Slug:        slug.Make(up.Title),
			City:        up.City,
			Category:    up.Category,
			Description: up.Description,
			FromPrice:   up.FromPrice,
			Currency:    up.Currency,
			Duration:    up.Duration,
			ImageURL:    up.Thumbnail,
			Rating:      up.Rating,
		})
	}
	return attractions, nil
}

func (c *Client) GetAttraction(id string) (*Attraction, error) {
	var upstream struct {
		Product struct {
			ID          string  `json:"productId"`
			Title       string  `json:"title"`
			City        string  `json:"destinationName"`
			Category    string  `json:"categoryName"`
			Description string  `json:"description"`
			FromPrice   float64 `json:"fromPrice"`
			Currency    string  `json:"currencyCode"`
			Duration    string  `json:"duration"`
			Thumbnail   string  `json:"thumbnailHiResURL"`
			Rating      float64 `json:"rating"`
		} `json:"product"`
	}
	if err := c.get("/products/"+url.PathEscape(id), nil, &upstream); err != nil {
		return nil, err
	}

	up := upstream.Product
	return &Attraction{
		ID:          up.ID,
		Name:        up.Title,
		Slug:        slug.Make(up.Title),
		City:        up.City,
		Category:    up.Category,
		Description: up.Description,
		FromPrice:   up.FromPrice,
		Currency:    up.Currency,
		Duration:    up.Duration,
		ImageURL:    up.Thumbnail,
		Rating:      up.Rating,
	}, nil
}
