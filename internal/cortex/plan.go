package cortex

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Errors returned by the plan runner.
var (
	ErrNoActivePlan = errors.New("no active execution plan")
	ErrStepNotFound = errors.New("step not found in active plan")
)

const tracerName = "github.com/fyrsmithlabs/cortexd/internal/cortex"

// CreateExecutionPlan replaces any active plan with a fresh one. All
// steps start pending; the previous plan, if any, is discarded, not
// merged.
func (m *Machine) CreateExecutionPlan(name string, steps []ExecutionStep) *ExecutionPlan {
	plan := &ExecutionPlan{
		ID:     uuid.New().String(),
		Name:   name,
		Steps:  make([]*ExecutionStep, len(steps)),
		Status: PlanPending,
	}
	for i := range steps {
		step := steps[i]
		step.Status = StepPending
		step.Output = nil
		step.Err = nil
		plan.Steps[i] = &step
	}

	m.mu.Lock()
	m.plan = plan
	m.mu.Unlock()

	m.bus.Publish(EventPlanCreated, plan)
	return plan
}

// Plan returns the active execution plan, or nil.
func (m *Machine) Plan() *ExecutionPlan {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.plan
}

// ExecuteStep runs a single step of the active plan. A step that
// requires approval first blocks on the gate with approve/deny options;
// a deny marks the step skipped and returns a nil result without
// invoking the executor. A raised failure is classified, attached to the
// step, and re-raised as a *CortexError.
func (m *Machine) ExecuteStep(ctx context.Context, id string, executor StepExecutor) (any, error) {
	m.mu.Lock()
	plan := m.plan
	m.mu.Unlock()
	if plan == nil {
		return nil, ErrNoActivePlan
	}

	index := -1
	for i, s := range plan.Steps {
		if s.ID == id {
			index = i
			break
		}
	}
	if index == -1 {
		return nil, fmt.Errorf("%w: %q", ErrStepNotFound, id)
	}
	step := plan.Steps[index]

	ctx, span := otel.Tracer(tracerName).Start(ctx, "cortex.ExecuteStep",
		trace.WithAttributes(
			attribute.String("step.id", step.ID),
			attribute.String("step.surface", string(step.Surface)),
		))
	defer span.End()

	m.mu.Lock()
	plan.CurrentStep = index
	if plan.Status == PlanPending {
		plan.Status = PlanRunning
	}
	m.mu.Unlock()

	m.setPhase(PhaseExecuting)
	step.Status = StepRunning
	m.bus.Publish(EventStepStart, step)

	if step.RequiresApproval {
		option, err := m.RequestApproval(ctx, ApprovalSpec{
			Type:        "step",
			Title:       fmt.Sprintf("Execute step: %s", step.Name),
			Description: fmt.Sprintf("Action %q against surface %q", step.Action, step.Surface),
			Options: []ApprovalOption{
				{ID: OptionApprove, Label: "Approve", Risk: RiskLow, Recommended: true},
				{ID: OptionDeny, Label: "Deny", Risk: RiskMedium},
			},
		})
		if err != nil {
			cerr := m.HandleError(err, fmt.Sprintf("approval for step %s", step.ID))
			step.Status = StepFailed
			step.Err = cerr
			m.bus.Publish(EventStepFailed, StepFailure{Step: step, Err: cerr})
			return nil, cerr
		}
		if option.ID == OptionDeny {
			step.Status = StepSkipped
			m.bus.Publish(EventStepSkipped, step)
			return nil, nil
		}
	}

	started := time.Now()
	output, err := executor(ctx, step)
	if err != nil {
		cerr := m.HandleError(err, fmt.Sprintf("step %s", step.ID))
		step.Status = StepFailed
		step.Err = cerr
		m.bus.Publish(EventStepFailed, StepFailure{Step: step, Err: cerr})
		return nil, cerr
	}

	step.Status = StepComplete
	step.Output = output
	m.Think(fmt.Sprintf("Step %s complete", step.Name),
		WithDuration(time.Since(started)))
	m.bus.Publish(EventStepComplete, step)
	return output, nil
}

// ExecutePlan drives every step of the active plan in array order,
// looking up executors by step id. Steps without an executor are
// skipped. Recoverable failures are collected and the plan continues;
// the first non-recoverable failure marks the plan failed and returns
// immediately with whatever was collected so far.
func (m *Machine) ExecutePlan(ctx context.Context, executors map[string]StepExecutor) (*PlanResult, error) {
	m.mu.Lock()
	plan := m.plan
	m.mu.Unlock()
	if plan == nil {
		return nil, ErrNoActivePlan
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "cortex.ExecutePlan",
		trace.WithAttributes(attribute.String("plan.name", plan.Name)))
	defer span.End()

	plan.Status = PlanRunning
	plan.StartedAt = time.Now()
	m.setPhase(PhaseExecuting)

	result := &PlanResult{Results: make(map[string]any)}

	for _, step := range plan.Steps {
		executor, ok := executors[step.ID]
		if !ok {
			step.Status = StepSkipped
			m.bus.Publish(EventStepSkipped, step)
			continue
		}

		output, err := m.ExecuteStep(ctx, step.ID, executor)
		if err != nil {
			var cerr *CortexError
			if !errors.As(err, &cerr) {
				return nil, err
			}
			result.Errors = append(result.Errors, cerr)
			if !cerr.Recoverable {
				plan.Status = PlanFailed
				plan.CompletedAt = time.Now()
				result.Success = false
				return result, nil
			}
			continue
		}
		if step.Status == StepComplete {
			result.Results[step.ID] = output
		}
	}

	plan.Status = PlanComplete
	plan.CompletedAt = time.Now()
	m.setPhase(PhaseComplete)
	result.Success = len(result.Errors) == 0
	return result, nil
}
