package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextFields_EmptyContext(t *testing.T) {
	fields := ContextFields(context.Background())
	assert.Empty(t, fields)
}

func TestContextFields_CorrelationData(t *testing.T) {
	ctx := WithWorkflowID(context.Background(), "wf-1")
	ctx = WithApprovalID(ctx, "apr-2")
	ctx = WithSurface(ctx, "github")

	fields := ContextFields(ctx)
	require.Len(t, fields, 3)

	keys := make([]string, 0, len(fields))
	for _, f := range fields {
		keys = append(keys, f.Key)
	}
	assert.ElementsMatch(t, []string{"workflow.id", "approval.id", "surface"}, keys)
}

func TestWorkflowIDRoundTrip(t *testing.T) {
	assert.Equal(t, "", WorkflowIDFromContext(context.Background()))

	ctx := WithWorkflowID(context.Background(), "wf-9")
	assert.Equal(t, "wf-9", WorkflowIDFromContext(ctx))
}

func TestFromContext_FallsBackToNop(t *testing.T) {
	logger := FromContext(context.Background())
	require.NotNil(t, logger)

	injected := NewNop()
	ctx := WithLogger(context.Background(), injected)
	assert.Same(t, injected, FromContext(ctx))
}
