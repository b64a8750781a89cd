package gateway

import (
	"fmt"
	"unicode/utf8"

	"devisflow/internal/domain"
)

// maxErrorBody bounds the response body kept in a ProviderHTTPError.
const maxErrorBody = 2000

// HTTPError builds a ProviderHTTPError, truncating body.
func HTTPError(id domain.ProviderID, status int, body string) error {
	return domain.NewProviderHTTPError(id, status, Truncate(body, maxErrorBody), nil)
}

// Truncate shortens s to at most maxLen bytes, appending "..." when cut.
// The cut never splits a multi-byte character.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

// EmptyResponseError reports a 2xx response without any completion choice.
func EmptyResponseError(id domain.ProviderID) error {
	return fmt.Errorf("%s: empty response from API: no choices", id)
}
