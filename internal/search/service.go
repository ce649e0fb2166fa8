package search

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"ticket-marketplace/internal/discovery"
	"ticket-marketplace/internal/logger"
)

const parseInstruction = `You convert free-text ticket searches into a JSON filter.
Respond with a single JSON object and nothing else, using these keys:
keyword, city, country_code, start_date (YYYY-MM-DD), end_date (YYYY-MM-DD),
classification (one of Music, Sports, Arts & Theatre, Family).
Omit keys you cannot infer. Do not invent dates.`

// Completer is the slice of the LLM client the parser needs.
type Completer interface {
	Complete(instruction, input string) (string, error)
}

// ParseError carries the raw model output so a 500 response can attach it
// for diagnosis.
type ParseError struct {
	RawOutput string
	Err       error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse model output: %v", e.Err)
}

var jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)

type Service struct {
	LLM       Completer
	Discovery *discovery.Client
	Logger    *logger.Logger
}

func NewService(llm Completer, disc *discovery.Client, log *logger.Logger) *Service {
	return &Service{LLM: llm, Discovery: disc, Logger: log}
}

// ParseQuery turns a free-text query into structured search filters. The
// model is asked for strict JSON; when it wraps the object in prose or code
// fences anyway, the first {...} block is extracted and retried once.
func (s *Service) ParseQuery(query string) (*discovery.SearchParams, error) {
	raw, err := s.LLM.Complete(parseInstruction, query)
	if err != nil {
		return nil, err
	}

	params, parseErr := decodeFilter(raw)
	if parseErr == nil {
		return params, nil
	}

	s.Logger.Warn("SEARCH", fmt.Sprintf("Model output was not strict JSON, attempting extraction: %v", parseErr))
	match := jsonObjectPattern.FindString(raw)
	if match != "" {
		if params, err := decodeFilter(match); err == nil {
			return params, nil
		}
	}

	return nil, &ParseError{RawOutput: raw, Err: parseErr}
}

func decodeFilter(raw string) (*discovery.SearchParams, error) {
	raw = strings.TrimSpace(raw)
	var params discovery.SearchParams
	if err := json.Unmarshal([]byte(raw), &params); err != nil {
		return nil, err
	}
	return &params, nil
}

// Search parses the query and relays the resulting filter to the discovery
// provider.
func (s *Service) Search(query string) (*discovery.SearchResult, *discovery.SearchParams, error) {
	params, err := s.ParseQuery(query)
	if err != nil {
		return nil, nil, err
	}

	result, err := s.Discovery.SearchEvents(*params)
	if err != nil {
		return nil, params, err
	}
	return result, params, nil
}
