package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorPredicatesSeeThroughWrapping(t *testing.T) {
	cfgErr := fmt.Errorf("build engine failed: %w", NewConfigurationError("llm.api_key_ref", "missing credential"))
	assert.True(t, IsConfiguration(cfgErr))
	assert.False(t, IsNotFound(cfgErr))

	nfErr := fmt.Errorf("lookup failed: %w", NewNotFoundError("assistant"))
	assert.True(t, IsNotFound(nfErr))

	provErr := NewProviderError("embed", "request rejected", errors.New("401 invalid api key sk-live-123"))
	assert.True(t, IsProvider(provErr))
}

func TestSanitizedHidesProviderDetail(t *testing.T) {
	assert.Empty(t, Sanitized(nil))

	cfgErr := NewConfigurationError("credentials.parse_api_key", "document parsing requires a configured parse credential")
	assert.Equal(t, "credentials.parse_api_key: document parsing requires a configured parse credential", Sanitized(cfgErr))

	assert.Equal(t, "assistant not found", Sanitized(NewNotFoundError("assistant")))

	provErr := NewProviderError("embed", "request rejected", errors.New("401 invalid api key sk-live-123"))
	sanitized := Sanitized(provErr)
	assert.Equal(t, "embed provider failed: request rejected", sanitized)
	assert.NotContains(t, sanitized, "sk-live-123")

	assert.Equal(t, "internal processing error", Sanitized(errors.New("dial tcp 10.0.0.3: connection refused")))
}
