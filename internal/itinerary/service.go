package itinerary

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"ticket-marketplace/internal/discovery"
	"ticket-marketplace/internal/logger"
	"ticket-marketplace/internal/search"
)

const planInstruction = `You are a trip planner for a ticket marketplace.
Given a destination city, a date range and the traveller's interests, produce
a JSON object: {"days": [{"date": "YYYY-MM-DD", "title": string,
"entries": [{"time_of_day": "morning"|"afternoon"|"evening",
"activity": string, "event_hint": string}]}]}.
event_hint should name a concert, match or show likely to exist in that city
on that date, or be empty. Respond with the JSON object only.`

type Request struct {
	City      string   `json:"city" validate:"required"`
	StartDate string   `json:"start_date" validate:"required"`
	EndDate   string   `json:"end_date" validate:"required"`
	Interests []string `json:"interests"`
}

type Entry struct {
	TimeOfDay    string           `json:"time_of_day"`
	Activity     string           `json:"activity"`
	EventHint    string           `json:"event_hint,omitempty"`
	MatchedEvent *discovery.Event `json:"matched_event,omitempty"`
}

type Day struct {
	Date    string  `json:"date"`
	Title   string  `json:"title"`
	Entries []Entry `json:"entries"`
}

type Plan struct {
	City  string `json:"city"`
	Days  []Day  `json:"days"`
	Total int    `json:"total_days"`
}

type Service struct {
	LLM       search.Completer
	Discovery *discovery.Client
	Logger    *logger.Logger
}

func NewService(llm search.Completer, disc *discovery.Client, log *logger.Logger) *Service {
	return &Service{LLM: llm, Discovery: disc, Logger: log}
}

var jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)

// BuildPlan asks the model for a day-by-day plan, then decorates each entry
// that carries an event hint with the best-matching live event.
func (s *Service) BuildPlan(req Request) (*Plan, error) {
	input := fmt.Sprintf("City: %s\nDates: %s to %s\nInterests: %s",
		req.City, req.StartDate, req.EndDate, strings.Join(req.Interests, ", "))

	raw, err := s.LLM.Complete(planInstruction, input)
	if err != nil {
		return nil, err
	}

	var decoded struct {
		Days []Day `json:"days"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &decoded); err != nil {
		match := jsonObjectPattern.FindString(raw)
		if match == "" {
			return nil, &search.ParseError{RawOutput: raw, Err: err}
		}
		if err := json.Unmarshal([]byte(match), &decoded); err != nil {
			return nil, &search.ParseError{RawOutput: raw, Err: err}
		}
	}

	// One discovery lookup for the whole window; each hinted entry is
	// matched against the same candidate set.
	candidates := s.fetchCandidates(req)

	for di := range decoded.Days {
		for ei := range decoded.Days[di].Entries {
			entry := &decoded.Days[di].Entries[ei]
			if entry.EventHint == "" {
				continue
			}
			if matched := MatchEvent(entry.EventHint, decoded.Days[di].Date, candidates); matched != nil {
				entry.MatchedEvent = matched
			}
		}
	}

	return &Plan{
		City:  req.City,
		Days:  decoded.Days,
		Total: len(decoded.Days),
	}, nil
}

func (s *Service) fetchCandidates(req Request) []discovery.Event {
	result, err := s.Discovery.SearchEvents(discovery.SearchParams{
		City:      req.City,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		PageSize:  100,
	})
	if err != nil {
		s.Logger.Warn("ITINERARY", fmt.Sprintf("Discovery lookup failed, plan will carry hints only: %v", err))
		return nil
	}
	return result.Events
}
