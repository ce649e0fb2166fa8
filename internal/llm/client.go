package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"ticket-marketplace/internal/config"
	"ticket-marketplace/internal/logger"
	"ticket-marketplace/internal/monitoring"
	"ticket-marketplace/internal/utils"
)

// Client calls the hosted language-model completion endpoint. All of the
// "intelligence" lives on the other side of this call; the gateway only
// contributes prompt text.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
	logger  *logger.Logger
}

func NewClient(cfg config.LLMConfig, client *http.Client, log *logger.Logger) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		client:  client,
		logger:  log,
	}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends an instruction plus user input and returns the raw model
// output text.
func (c *Client) Complete(instruction, input string) (string, error) {
	payload := completionRequest{
		Model: c.model,
		Messages: []message{
			{Role: "system", Content: instruction},
			{Role: "user", Content: input},
		},
		Temperature: 0.2,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal completion request: %w", err)
	}

	req, err := http.NewRequest("POST", c.baseURL+"/chat/completions", bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("failed to create completion request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		monitoring.TrackUpstreamCall("llm", "error", time.Since(start))
		return "", fmt.Errorf("completion endpoint error: %w", err)
	}
	monitoring.TrackUpstreamCall("llm", strconv.Itoa(resp.StatusCode), time.Since(start))
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		c.logger.Error("LLM", fmt.Sprintf("Completion endpoint returned status %d", resp.StatusCode))
		return "", &utils.UpstreamError{Provider: "llm", StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var completion completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return "", fmt.Errorf("failed to decode completion response: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("completion response contained no choices")
	}

	return completion.Choices[0].Message.Content, nil
}
