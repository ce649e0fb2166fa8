package utils_test

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"testing"

	"ticket-marketplace/internal/utils"

	"github.com/stretchr/testify/assert"
)

func TestGenerateOrderNumberFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^[0-9A-F]{8}$`)

	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		n := utils.GenerateOrderNumber()
		assert.Regexp(t, pattern, n)
		seen[n] = true
	}
	// Collisions across 100 draws would point at a broken source.
	assert.Greater(t, len(seen), 90)
}

func TestUpstreamStatus(t *testing.T) {
	err := &utils.UpstreamError{Provider: "resale", StatusCode: http.StatusConflict, Body: "gone"}
	assert.Equal(t, http.StatusConflict, utils.UpstreamStatus(err))

	// Wrapped upstream errors still resolve.
	wrapped := fmt.Errorf("failed to hold: %w", err)
	assert.Equal(t, http.StatusConflict, utils.UpstreamStatus(wrapped))

	// Anything else is a bad gateway.
	assert.Equal(t, http.StatusBadGateway, utils.UpstreamStatus(errors.New("dial tcp: refused")))
}

func TestUpstreamErrorMessage(t *testing.T) {
	err := &utils.UpstreamError{Provider: "theatre", StatusCode: 503, Body: "maintenance"}
	assert.Contains(t, err.Error(), "theatre")
	assert.Contains(t, err.Error(), "503")
}
