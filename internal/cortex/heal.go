package cortex

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Validator inspects parsed payload data and returns a list of
// validation problems. An empty list means the data is acceptable.
type Validator func(data any) []string

// Healer produces a corrected payload given the broken one and the
// problems found. It typically asks a language model for a fixed
// rendition; the core treats it as an opaque, possibly suspending call.
type Healer func(ctx context.Context, payload string, issues []string) (string, error)

// HealResult is the outcome of a successful ValidateAndHeal run.
// Healed is true when more than one attempt was needed.
type HealResult struct {
	Data     any  `json:"data"`
	Healed   bool `json:"healed"`
	Attempts int  `json:"attempts"`
}

// ValidateAndHeal runs the bounded repair loop for a malformed structured
// payload. Each attempt parses the payload as JSON; on a parse failure it
// first scans for an embedded well-formed fragment, then falls back to the
// healer. Parsed data is checked by the validator; validation problems are
// traced and fed back to the healer for another attempt.
//
// Exhausting the retry budget fails with a terminal, non-recoverable
// error. That exhaustion is reported to the caller and never retried
// further.
func (m *Machine) ValidateAndHeal(ctx context.Context, payload string, validator Validator, healer Healer) (*HealResult, error) {
	current := payload

	for attempt := 1; attempt <= m.maxRetries; attempt++ {
		data, parseErr := parsePayload(current)
		if parseErr != nil {
			m.Think("Payload did not parse; requesting a corrected rendition",
				WithDetail(parseErr.Error()))
			healed, err := healer(ctx, current, []string{parseErr.Error()})
			if err != nil {
				m.logger.Warn(ctx, "healer call failed", zap.Error(err), zap.Int("attempt", attempt))
				continue
			}
			current = healed
			continue
		}

		issues := []string{}
		if validator != nil {
			issues = validator(data)
		}
		if len(issues) == 0 {
			return &HealResult{Data: data, Healed: attempt > 1, Attempts: attempt}, nil
		}

		m.Think("Payload failed validation; requesting a corrected rendition",
			WithDetail(strings.Join(issues, "; ")))
		healed, err := healer(ctx, current, issues)
		if err != nil {
			m.logger.Warn(ctx, "healer call failed", zap.Error(err), zap.Int("attempt", attempt))
			continue
		}
		current = healed
	}

	return nil, &CortexError{
		Code:             CodeMalformedPayload,
		Message:          fmt.Sprintf("Unable to heal payload after %d attempts", m.maxRetries),
		Recoverable:      false,
		SuggestedActions: suggestedActions[CodeMalformedPayload],
		RetryCount:       m.maxRetries,
		MaxRetries:       m.maxRetries,
	}
}

// parsePayload parses the payload as JSON. When the payload as a whole is
// malformed it scans for the outermost balanced object or array and tries
// that fragment instead, which rescues payloads wrapped in prose or
// markdown fences.
func parsePayload(payload string) (any, error) {
	var data any
	err := json.Unmarshal([]byte(payload), &data)
	if err == nil {
		return data, nil
	}
	if fragment, ok := extractBalancedFragment(payload); ok {
		if json.Unmarshal([]byte(fragment), &data) == nil {
			return data, nil
		}
	}
	return nil, err
}

// extractBalancedFragment returns the outermost balanced {...} or [...]
// fragment of s, tracking strings and escapes so delimiters inside quoted
// values do not miscount.
func extractBalancedFragment(s string) (string, bool) {
	start := -1
	var opener, closer byte
	for i := 0; i < len(s); i++ {
		if s[i] == '{' || s[i] == '[' {
			start = i
			opener = s[i]
			if opener == '{' {
				closer = '}'
			} else {
				closer = ']'
			}
			break
		}
	}
	if start == -1 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
			// delimiters inside strings are data, not structure
		case c == opener:
			depth++
		case c == closer:
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
