package cortex

import (
	"strings"
)

// ErrorCode is one of the closed failure taxonomy codes.
type ErrorCode string

const (
	CodeMalformedPayload ErrorCode = "malformed-payload"
	CodeExternalService  ErrorCode = "external-service"
	CodeDesignTool       ErrorCode = "design-tool"
	CodeAuthorization    ErrorCode = "authorization"
	CodeRateLimit        ErrorCode = "rate-limit"
	CodeUnknown          ErrorCode = "unknown"
)

// CortexError is a classified failure. Message is always human-readable;
// the raw failure text lives in TechnicalDetail.
type CortexError struct {
	Code             ErrorCode `json:"code"`
	Message          string    `json:"message"`
	Recoverable      bool      `json:"recoverable"`
	SuggestedActions []string  `json:"suggested_actions"`
	TechnicalDetail  string    `json:"technical_detail,omitempty"`
	RetryCount       int       `json:"retry_count"`
	MaxRetries       int       `json:"max_retries"`

	cause error
}

// Error implements the error interface.
func (e *CortexError) Error() string {
	return e.Message
}

// Unwrap exposes the originating failure to errors.Is and errors.As.
func (e *CortexError) Unwrap() error {
	return e.cause
}

// classificationRule binds an error code to its category keywords.
// Matching is a case-insensitive substring check.
type classificationRule struct {
	code     ErrorCode
	keywords []string
}

// classificationRules is the fixed, ordered rule table. Order matters:
// the first rule with a matching keyword wins, and no match falls back to
// CodeUnknown.
var classificationRules = []classificationRule{
	{CodeMalformedPayload, []string{"payload", "parse", "json", "unmarshal", "malformed"}},
	{CodeExternalService, []string{"network", "fetch", "api", "connection", "unavailable", "503"}},
	{CodeDesignTool, []string{"figma", "design tool", "node tree", "frame"}},
	{CodeAuthorization, []string{"token", "auth", "unauthorized", "forbidden", "credential", "401"}},
	{CodeRateLimit, []string{"rate limit", "rate-limit", "throttl", "too many requests", "429"}},
}

// recoverableCodes are the codes worth retrying while the retry budget
// lasts.
var recoverableCodes = map[ErrorCode]bool{
	CodeMalformedPayload: true,
	CodeExternalService:  true,
	CodeRateLimit:        true,
}

// errorMessages maps each code to its fixed user-facing message.
var errorMessages = map[ErrorCode]string{
	CodeMalformedPayload: "The design payload could not be parsed",
	CodeExternalService:  "An external service request failed",
	CodeDesignTool:       "The design tool reported a failure",
	CodeAuthorization:    "Authorization with an external surface failed",
	CodeRateLimit:        "An external surface is throttling requests",
	CodeUnknown:          "An unexpected failure occurred",
}

// suggestedActions maps each code to its fixed, ordered remediation list.
var suggestedActions = map[ErrorCode][]string{
	CodeMalformedPayload: {
		"Retry the generation with a stricter output format",
		"Inspect the raw payload in the technical detail",
		"Reduce the size of the requested node tree",
	},
	CodeExternalService: {
		"Check network connectivity",
		"Verify the service status page",
		"Retry in a few seconds",
	},
	CodeDesignTool: {
		"Verify the design file is accessible",
		"Check that the target frame still exists",
		"Re-run the surface readiness check",
	},
	CodeAuthorization: {
		"Refresh the surface API token",
		"Verify the token scopes",
		"Re-run `cortexd surfaces` to confirm configuration",
	},
	CodeRateLimit: {
		"Wait for the rate limit window to pass",
		"Reduce workflow concurrency against this surface",
		"Retry with a longer interval",
	},
	CodeUnknown: {
		"Inspect the technical detail",
		"Re-run the workflow with trace logging enabled",
	},
}

// classify maps a raised failure onto the taxonomy by keyword matching
// its message text.
func classify(err error) ErrorCode {
	msg := strings.ToLower(err.Error())
	for _, rule := range classificationRules {
		for _, kw := range rule.keywords {
			if strings.Contains(msg, kw) {
				return rule.code
			}
		}
	}
	return CodeUnknown
}

// newCortexError builds the classified error for a raised failure given
// the current retry state.
func newCortexError(err error, retryCount, maxRetries int) *CortexError {
	code := classify(err)
	return &CortexError{
		Code:             code,
		Message:          errorMessages[code],
		Recoverable:      recoverableCodes[code] && retryCount < maxRetries,
		SuggestedActions: suggestedActions[code],
		TechnicalDetail:  err.Error(),
		RetryCount:       retryCount,
		MaxRetries:       maxRetries,
		cause:            err,
	}
}
