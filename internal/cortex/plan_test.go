package cortex

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoStepPlan() []ExecutionStep {
	return []ExecutionStep{
		{ID: "s1", Name: "Extract tokens", Action: "extract-tokens", Surface: "figma"},
		{ID: "s2", Name: "Open pull request", Action: "open-pr", Surface: "github"},
	}
}

func okExecutor(output any) StepExecutor {
	return func(context.Context, *ExecutionStep) (any, error) {
		return output, nil
	}
}

func failExecutor(message string) StepExecutor {
	return func(context.Context, *ExecutionStep) (any, error) {
		return nil, errors.New(message)
	}
}

func TestCreateExecutionPlan_InitializesAndPublishes(t *testing.T) {
	m := New()

	var created *ExecutionPlan
	m.Bus().Subscribe(EventPlanCreated, func(e Event) {
		created = e.Payload.(*ExecutionPlan)
	})

	plan := m.CreateExecutionPlan("design-refresh", twoStepPlan())

	require.NotNil(t, plan)
	assert.NotEmpty(t, plan.ID)
	assert.Equal(t, PlanPending, plan.Status)
	assert.Equal(t, 0, plan.CurrentStep)
	for _, step := range plan.Steps {
		assert.Equal(t, StepPending, step.Status)
	}
	assert.Equal(t, plan, created)
	assert.Equal(t, plan, m.Plan())
}

func TestCreateExecutionPlan_SupersedesPreviousPlan(t *testing.T) {
	m := New()

	first := m.CreateExecutionPlan("first", twoStepPlan())
	second := m.CreateExecutionPlan("second", twoStepPlan())

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, second, m.Plan())
}

func TestExecuteStep_NoActivePlan(t *testing.T) {
	m := New()

	_, err := m.ExecuteStep(context.Background(), "s1", okExecutor(nil))
	require.ErrorIs(t, err, ErrNoActivePlan)
}

func TestExecuteStep_UnknownStep(t *testing.T) {
	m := New()
	m.CreateExecutionPlan("p", twoStepPlan())

	_, err := m.ExecuteStep(context.Background(), "nope", okExecutor(nil))
	require.ErrorIs(t, err, ErrStepNotFound)
}

func TestExecuteStep_Success(t *testing.T) {
	m := New()
	plan := m.CreateExecutionPlan("p", twoStepPlan())

	var events []EventName
	for _, name := range []EventName{EventStepStart, EventStepComplete, EventStepFailed, EventStepSkipped} {
		name := name
		m.Bus().Subscribe(name, func(Event) { events = append(events, name) })
	}

	output, err := m.ExecuteStep(context.Background(), "s1", okExecutor(map[string]any{"ok": true}))

	require.NoError(t, err)
	assert.Equal(t, map[string]any{"ok": true}, output)
	assert.Equal(t, StepComplete, plan.Steps[0].Status)
	assert.Equal(t, output, plan.Steps[0].Output)
	assert.Equal(t, []EventName{EventStepStart, EventStepComplete}, events)
}

func TestExecuteStep_FailureClassifiedAndReRaised(t *testing.T) {
	m := New()
	plan := m.CreateExecutionPlan("p", twoStepPlan())

	var failure StepFailure
	m.Bus().Subscribe(EventStepFailed, func(e Event) {
		failure = e.Payload.(StepFailure)
	})

	_, err := m.ExecuteStep(context.Background(), "s1", failExecutor("figma api network error"))

	var cerr *CortexError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, StepFailed, plan.Steps[0].Status)
	assert.Equal(t, cerr, plan.Steps[0].Err)
	assert.Equal(t, cerr, failure.Err)
	assert.Equal(t, plan.Steps[0], failure.Step)
}

func TestExecuteStep_ApprovalDenySkipsExecutor(t *testing.T) {
	m := New()
	steps := twoStepPlan()
	steps[0].RequiresApproval = true
	plan := m.CreateExecutionPlan("p", steps)

	m.Bus().Subscribe(EventApprovalRequired, func(e Event) {
		req := e.Payload.(ApprovalRequest)
		go m.RespondToApproval(req.ID, OptionDeny)
	})

	var skipped bool
	m.Bus().Subscribe(EventStepSkipped, func(Event) { skipped = true })

	executed := false
	output, err := m.ExecuteStep(context.Background(), "s1", func(context.Context, *ExecutionStep) (any, error) {
		executed = true
		return nil, nil
	})

	require.NoError(t, err)
	assert.Nil(t, output)
	assert.False(t, executed, "denied step must never invoke its executor")
	assert.Equal(t, StepSkipped, plan.Steps[0].Status)
	assert.True(t, skipped)
}

func TestExecuteStep_ApprovalApproveRunsExecutor(t *testing.T) {
	m := New()
	steps := twoStepPlan()
	steps[0].RequiresApproval = true
	m.CreateExecutionPlan("p", steps)

	m.Bus().Subscribe(EventApprovalRequired, func(e Event) {
		req := e.Payload.(ApprovalRequest)
		require.Len(t, req.Options, 2)
		go m.RespondToApproval(req.ID, OptionApprove)
	})

	output, err := m.ExecuteStep(context.Background(), "s1", okExecutor("done"))

	require.NoError(t, err)
	assert.Equal(t, "done", output)
}

func TestExecuteStep_ApprovalTimeoutFailsStep(t *testing.T) {
	m := New(WithApprovalTimeout(20 * time.Millisecond))
	steps := twoStepPlan()
	steps[0].RequiresApproval = true
	plan := m.CreateExecutionPlan("p", steps)

	_, err := m.ExecuteStep(context.Background(), "s1", okExecutor(nil))

	var cerr *CortexError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, StepFailed, plan.Steps[0].Status)
}

func TestExecutePlan_RecoverableFailureContinues(t *testing.T) {
	m := New()
	m.CreateExecutionPlan("p", twoStepPlan())

	result, err := m.ExecutePlan(context.Background(), map[string]StepExecutor{
		"s1": failExecutor("network blip"), // recoverable on first retry
		"s2": okExecutor("fine"),
	})

	require.NoError(t, err)
	assert.False(t, result.Success)
	require.Len(t, result.Errors, 1)
	assert.True(t, result.Errors[0].Recoverable)
	assert.Equal(t, "fine", result.Results["s2"])
	assert.Equal(t, PlanComplete, m.Plan().Status)
}

func TestExecutePlan_NonRecoverableFailureHaltsImmediately(t *testing.T) {
	m := New()
	plan := m.CreateExecutionPlan("p", twoStepPlan())

	executedSecond := false
	result, err := m.ExecutePlan(context.Background(), map[string]StepExecutor{
		"s1": failExecutor("unauthorized: bad credential"), // authorization is never recoverable
		"s2": func(context.Context, *ExecutionStep) (any, error) {
			executedSecond = true
			return nil, nil
		},
	})

	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.False(t, executedSecond, "plan must halt before the second step")
	assert.Equal(t, PlanFailed, plan.Status)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, CodeAuthorization, result.Errors[0].Code)
}

func TestExecutePlan_MissingExecutorSkipsStep(t *testing.T) {
	m := New()
	plan := m.CreateExecutionPlan("p", twoStepPlan())

	result, err := m.ExecutePlan(context.Background(), map[string]StepExecutor{
		"s2": okExecutor(42),
	})

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, StepSkipped, plan.Steps[0].Status)
	assert.Equal(t, 42, result.Results["s2"])
	assert.NotContains(t, result.Results, "s1")
}

func TestExecutePlan_CompletionTransitionsPhase(t *testing.T) {
	m := New()
	m.CreateExecutionPlan("p", twoStepPlan())

	result, err := m.ExecutePlan(context.Background(), map[string]StepExecutor{
		"s1": okExecutor(nil),
		"s2": okExecutor(nil),
	})

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, PhaseComplete, m.Phase())
	assert.Equal(t, PlanComplete, m.Plan().Status)
	assert.False(t, m.Plan().CompletedAt.IsZero())
}

func TestExecutePlan_NoActivePlan(t *testing.T) {
	m := New()

	_, err := m.ExecutePlan(context.Background(), nil)
	require.ErrorIs(t, err, ErrNoActivePlan)
}

func TestExecutePlan_StepEventsFollowArrayOrder(t *testing.T) {
	m := New()
	m.CreateExecutionPlan("p", twoStepPlan())

	var order []string
	m.Bus().Subscribe(EventStepStart, func(e Event) {
		order = append(order, "start:"+e.Payload.(*ExecutionStep).ID)
	})
	m.Bus().Subscribe(EventStepComplete, func(e Event) {
		order = append(order, "complete:"+e.Payload.(*ExecutionStep).ID)
	})

	_, err := m.ExecutePlan(context.Background(), map[string]StepExecutor{
		"s1": okExecutor(nil),
		"s2": okExecutor(nil),
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"start:s1", "complete:s1", "start:s2", "complete:s2"}, order)
}
