package logging

import (
	"testing"

	"github.com/fyrsmithlabs/cortexd/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func newTestRedactor(t *testing.T) *RedactingEncoder {
	t.Helper()
	enc, err := NewRedactingEncoder(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		NewDefaultConfig().Redaction,
	)
	require.NoError(t, err)
	return enc
}

func encodeEntry(t *testing.T, enc zapcore.Encoder, fields ...zapcore.Field) string {
	t.Helper()
	buf, err := enc.EncodeEntry(zapcore.Entry{Message: "m"}, fields)
	require.NoError(t, err)
	return buf.String()
}

func TestRedactingEncoder_SensitiveKeys(t *testing.T) {
	enc := newTestRedactor(t)

	out := encodeEntry(t, enc,
		zap.String("figma_token", "figd_abc"),
		zap.String("password", "hunter2"),
		zap.String("action", "extract-tokens"),
	)

	assert.NotContains(t, out, "figd_abc")
	assert.NotContains(t, out, "hunter2")
	assert.Contains(t, out, "[REDACTED]")
	assert.Contains(t, out, "extract-tokens")
}

func TestRedactingEncoder_ValuePatterns(t *testing.T) {
	enc := newTestRedactor(t)

	out := encodeEntry(t, enc,
		zap.String("header", "Bearer eyJhbGciOi"),
		zap.String("note", "slack says xoxb-123-456"),
	)

	assert.NotContains(t, out, "eyJhbGciOi")
	assert.NotContains(t, out, "xoxb-123-456")
	assert.Contains(t, out, "[REDACTED:pattern]")
}

func TestRedactingEncoder_DisabledPassesThrough(t *testing.T) {
	enc, err := NewRedactingEncoder(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		RedactionConfig{Enabled: false},
	)
	require.NoError(t, err)

	out := encodeEntry(t, enc, zap.String("token", "raw-value"))
	assert.Contains(t, out, "raw-value")
}

func TestNewRedactingEncoder_RejectsBadPattern(t *testing.T) {
	_, err := NewRedactingEncoder(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		RedactionConfig{Enabled: true, Patterns: []string{"("}},
	)
	require.Error(t, err)
}

func TestSecretField_ShowsOnlyLength(t *testing.T) {
	tl := NewTestLogger()

	tl.Info(t.Context(), "configured", Secret("figma_token", config.Secret("figd_abcdef")))

	entries := tl.FilterMessage("configured").All()
	require.Len(t, entries, 1)

	enc := zapcore.NewMapObjectEncoder()
	for _, f := range entries[0].Context {
		f.AddTo(enc)
	}
	nested, ok := enc.Fields["figma_token"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "[REDACTED:11]", nested["figma_token"])
}

func TestRedactedString(t *testing.T) {
	f := RedactedString("token", "abcd")
	assert.Equal(t, "[REDACTED:4]", f.String)
}
