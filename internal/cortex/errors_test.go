package cortex

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_KeywordTable(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    ErrorCode
	}{
		{"parse failure", "failed to parse response body", CodeMalformedPayload},
		{"payload failure", "payload truncated at byte 512", CodeMalformedPayload},
		{"unmarshal failure", "cannot unmarshal number into string", CodeMalformedPayload},
		{"network failure", "network unreachable", CodeExternalService},
		{"fetch failure", "fetch aborted by peer", CodeExternalService},
		{"design tool failure", "figma returned an empty document", CodeDesignTool},
		{"auth failure", "request unauthorized", CodeAuthorization},
		{"expired credential", "credential expired yesterday", CodeAuthorization},
		{"rate limit", "rate limit exceeded, slow down", CodeRateLimit},
		{"throttling", "requests are being throttled", CodeRateLimit},
		{"fallback", "something inexplicable happened", CodeUnknown},
		{"case insensitive", "FAILED TO PARSE RESPONSE", CodeMalformedPayload},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classify(errors.New(tt.message)))
		})
	}
}

func TestClassify_FirstMatchWins(t *testing.T) {
	// "figma" (design-tool) and "token" (authorization) both match, but
	// malformed-payload is checked first and "parse" matches.
	code := classify(errors.New("figma token response failed to parse"))
	assert.Equal(t, CodeMalformedPayload, code)

	// design-tool outranks authorization in the rule order.
	code = classify(errors.New("figma rejected the token"))
	assert.Equal(t, CodeDesignTool, code)
}

func TestHandleError_RateLimitRecoverableUntilBudgetExhausted(t *testing.T) {
	m := New()

	for i := 1; i <= 3; i++ {
		cerr := m.HandleError(fmt.Errorf("rate limit hit (%d)", i), "test")
		require.Equal(t, CodeRateLimit, cerr.Code)
		if i < 3 {
			assert.True(t, cerr.Recoverable, "occurrence %d should be recoverable", i)
		} else {
			assert.False(t, cerr.Recoverable, "retry budget exhausted at occurrence %d", i)
		}
	}

	// Fourth occurrence is certainly non-recoverable.
	cerr := m.HandleError(errors.New("rate limit hit again"), "test")
	assert.False(t, cerr.Recoverable)
}

func TestHandleError_UnknownAndAuthorizationNeverRecoverable(t *testing.T) {
	m := New()

	assert.False(t, m.HandleError(errors.New("unauthorized"), "t").Recoverable)
	assert.False(t, m.HandleError(errors.New("gremlins"), "t").Recoverable)
	assert.False(t, m.HandleError(errors.New("figma exploded"), "t").Recoverable)
}

func TestCortexError_MessageIsHumanReadable(t *testing.T) {
	m := New()

	raw := errors.New("dial tcp 10.0.0.1:443: network is unreachable")
	cerr := m.HandleError(raw, "test")

	assert.Equal(t, "An external service request failed", cerr.Message)
	assert.Equal(t, raw.Error(), cerr.TechnicalDetail)
	assert.NotEmpty(t, cerr.SuggestedActions)
	assert.ErrorIs(t, cerr, raw)
}

func TestNewCortexError_RetryBookkeeping(t *testing.T) {
	cerr := newCortexError(errors.New("network down"), 2, 3)

	assert.Equal(t, 2, cerr.RetryCount)
	assert.Equal(t, 3, cerr.MaxRetries)
	assert.True(t, cerr.Recoverable)

	cerr = newCortexError(errors.New("network down"), 3, 3)
	assert.False(t, cerr.Recoverable)
}
