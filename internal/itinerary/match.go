package itinerary

import (
	"strings"

	"ticket-marketplace/internal/discovery"
)

// MatchEvent scores candidate events against a free-text hint and returns
// the best match, or nil when nothing scores. Scoring is plain normalized
// substring and token overlap; an event on the entry's own date outranks
// one elsewhere in the window.
func MatchEvent(hint, date string, candidates []discovery.Event) *discovery.Event {
	normalizedHint := normalize(hint)
	if normalizedHint == "" {
		return nil
	}
	hintTokens := strings.Fields(normalizedHint)

	var best *discovery.Event
	bestScore := 0

	for i := range candidates {
		candidate := &candidates[i]
		name := normalize(candidate.Name)
		if name == "" {
			continue
		}

		score := 0
		if name == normalizedHint {
			score += 100
		} else if strings.Contains(name, normalizedHint) || strings.Contains(normalizedHint, name) {
			score += 50
		}

		for _, token := range hintTokens {
			if len(token) < 3 {
				continue
			}
			if strings.Contains(name, token) {
				score += 10
			}
		}

		if score == 0 {
			continue
		}
		if date != "" && candidate.Date == date {
			score += 25
		}

		if score > bestScore {
			bestScore = score
			best = candidate
		}
	}

	// A single short-token hit is noise, not a match.
	if bestScore < 20 {
		return nil
	}
	return best
}

func normalize(s string) string {
	s = strings.ToLower(s)
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == ' ':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
