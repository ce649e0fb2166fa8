package utils

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateOrderNumber creates a short, human-quotable order reference,
// e.g. "4D691144". Upstream providers use the same 8-hex-char style.
func GenerateOrderNumber() string {
	id := uuid.NewString()
	return strings.ToUpper(strings.ReplaceAll(id, "-", "")[:8])
}

func GenerateTicketID() string {
	return uuid.NewString()
}
