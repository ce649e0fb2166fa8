package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// UpstreamError carries the status code an external API answered with, so a
// relay handler can forward it verbatim instead of collapsing everything
// into a 500.
type UpstreamError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s returned status %d", e.Provider, e.StatusCode)
}

// UpstreamStatus extracts the upstream status from err, defaulting to 502
// for network-level failures.
func UpstreamStatus(err error) int {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue.StatusCode
	}
	return http.StatusBadGateway
}
