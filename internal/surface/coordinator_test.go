package surface

import (
	"context"
	"errors"
	"testing"

	"github.com/fyrsmithlabs/cortexd/internal/cortex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAdapter struct {
	name       string
	surface    cortex.Surface
	configured bool
	testErr    error
	tested     bool
}

func (f *fakeAdapter) Name() string            { return f.name }
func (f *fakeAdapter) Surface() cortex.Surface { return f.surface }
func (f *fakeAdapter) Configured() bool        { return f.configured }
func (f *fakeAdapter) Test(context.Context) error {
	f.tested = true
	return f.testErr
}

func configuredFake(s cortex.Surface) *fakeAdapter {
	return &fakeAdapter{name: string(s) + " fake", surface: s, configured: true}
}

func TestRegisterAdapter_TracesAndLastWins(t *testing.T) {
	m := cortex.New()
	c := NewCoordinator(m)

	first := configuredFake(Figma)
	second := configuredFake(Figma)
	c.RegisterAdapter(first)
	c.RegisterAdapter(second)

	got, ok := c.Adapter(Figma)
	require.True(t, ok)
	assert.Same(t, second, got)

	trace := m.Trace()
	require.Len(t, trace, 2)
	assert.Contains(t, trace[0].Message, "Connected surface: figma")
}

func TestCheckReadiness(t *testing.T) {
	m := cortex.New()
	c := NewCoordinator(m)

	ready := configuredFake(Figma)
	broken := configuredFake(Slack)
	broken.testErr = errors.New("invalid_auth")
	unconfigured := &fakeAdapter{name: "notion fake", surface: Notion}

	c.RegisterAdapter(ready)
	c.RegisterAdapter(broken)
	c.RegisterAdapter(unconfigured)

	statuses := c.CheckReadiness(context.Background())
	require.Len(t, statuses, 3)

	byName := make(map[cortex.Surface]Status)
	for _, s := range statuses {
		byName[s.Surface] = s
	}

	assert.True(t, byName[Figma].Ready)
	assert.Empty(t, byName[Figma].Error)

	assert.False(t, byName[Slack].Ready)
	assert.Contains(t, byName[Slack].Error, "invalid_auth")

	assert.False(t, byName[Notion].Ready)
	assert.False(t, byName[Notion].Configured)
	assert.False(t, unconfigured.tested, "unconfigured adapters must not be probed")
}

func TestAvailableWorkflows_FiltersByConfiguredSurfaces(t *testing.T) {
	m := cortex.New()
	c := NewCoordinator(m)

	c.RegisterAdapter(configuredFake(Figma))
	c.RegisterAdapter(configuredFake(GitHub))

	ids := make([]string, 0)
	for _, w := range c.AvailableWorkflows() {
		ids = append(ids, w.ID)
	}
	// token-sync needs only figma+github. The rest need slack, notion or
	// analytics.
	assert.Equal(t, []string{"token-sync"}, ids)
}

func TestExecuteWorkflow_UnknownTemplate(t *testing.T) {
	c := NewCoordinator(cortex.New())

	_, err := c.ExecuteWorkflow(context.Background(), "mystery", nil)
	require.ErrorIs(t, err, ErrUnknownWorkflow)
}

func TestExecuteWorkflow_UnconfiguredSurfaceFailsBeforeAnyStep(t *testing.T) {
	m := cortex.New()
	c := NewCoordinator(m)
	c.RegisterAdapter(configuredFake(Figma))
	c.RegisterAdapter(&fakeAdapter{name: "github fake", surface: GitHub}) // not configured

	var started bool
	m.Bus().Subscribe(cortex.EventStepStart, func(cortex.Event) { started = true })

	_, err := c.ExecuteWorkflow(context.Background(), "token-sync", nil)

	require.ErrorIs(t, err, ErrSurfaceNotReady)
	assert.Contains(t, err.Error(), "github")
	assert.False(t, started, "no step may start when a surface is missing")
	assert.Nil(t, m.Plan(), "no plan may be created when a surface is missing")
}

func TestExecuteWorkflow_RunsTemplateToCompletion(t *testing.T) {
	m := cortex.New()
	c := NewCoordinator(m)
	c.RegisterAdapter(configuredFake(Figma))
	c.RegisterAdapter(configuredFake(GitHub))

	// commit-tokens requires approval; approve it when asked.
	m.Bus().Subscribe(cortex.EventApprovalRequired, func(e cortex.Event) {
		req := e.Payload.(cortex.ApprovalRequest)
		go m.RespondToApproval(req.ID, cortex.OptionApprove)
	})

	executors := map[string]cortex.StepExecutor{
		"extract-tokens": func(context.Context, *cortex.ExecutionStep) (any, error) {
			return map[string]any{"ok": true}, nil
		},
		"diff-tokens":   func(context.Context, *cortex.ExecutionStep) (any, error) { return 3, nil },
		"commit-tokens": func(context.Context, *cortex.ExecutionStep) (any, error) { return "sha123", nil },
	}

	result, err := c.ExecuteWorkflow(context.Background(), "token-sync", executors)

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, map[string]any{"ok": true}, result.Results["extract-tokens"])
	assert.Equal(t, "sha123", result.Results["commit-tokens"])
	assert.Equal(t, cortex.PhaseComplete, m.Phase())
}
