package surface

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/fyrsmithlabs/cortexd/internal/cortex"
	"github.com/fyrsmithlabs/cortexd/internal/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const tracerName = "github.com/fyrsmithlabs/cortexd/internal/surface"

var (
	// ErrUnknownWorkflow indicates the template id is not in the catalog.
	ErrUnknownWorkflow = errors.New("unknown workflow template")

	// ErrSurfaceNotReady indicates a required surface is unregistered or
	// unconfigured.
	ErrSurfaceNotReady = errors.New("surface not ready")
)

// Coordinator owns the adapter registry and runs workflow templates on a
// cortex machine.
//
// Registration and lookups are safe for concurrent use. ExecuteWorkflow
// drives the machine's sequential plan runner and should not be called
// concurrently for the same machine.
type Coordinator struct {
	machine *cortex.Machine
	logger  *logging.Logger

	mu       sync.RWMutex
	adapters map[cortex.Surface]Adapter
}

// CoordinatorOption customizes a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithLogger sets the coordinator logger.
func WithLogger(logger *logging.Logger) CoordinatorOption {
	return func(c *Coordinator) { c.logger = logger }
}

// NewCoordinator creates a coordinator bound to machine.
func NewCoordinator(machine *cortex.Machine, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		machine:  machine,
		logger:   logging.NewNop(),
		adapters: make(map[cortex.Surface]Adapter),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RegisterAdapter adds an adapter to the registry. Registering a second
// adapter for the same surface replaces the first.
func (c *Coordinator) RegisterAdapter(adapter Adapter) {
	c.mu.Lock()
	_, replaced := c.adapters[adapter.Surface()]
	c.adapters[adapter.Surface()] = adapter
	c.mu.Unlock()

	c.machine.Think(fmt.Sprintf("Connected surface: %s", adapter.Surface()),
		cortex.WithDetail(adapter.Name()))
	if replaced {
		c.logger.Warn(context.Background(), "surface adapter replaced",
			zap.String("surface", string(adapter.Surface())),
			zap.String("adapter", adapter.Name()))
	}
}

// Adapter returns the registered adapter for a surface.
func (c *Coordinator) Adapter(s cortex.Surface) (Adapter, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	adapter, ok := c.adapters[s]
	return adapter, ok
}

// CheckReadiness probes every registered adapter. Test errors are reported
// in the status, never propagated.
func (c *Coordinator) CheckReadiness(ctx context.Context) []Status {
	c.mu.RLock()
	adapters := make([]Adapter, 0, len(c.adapters))
	for _, a := range c.adapters {
		adapters = append(adapters, a)
	}
	c.mu.RUnlock()

	statuses := make([]Status, 0, len(adapters))
	for _, a := range adapters {
		status := Status{
			Surface:    a.Surface(),
			Adapter:    a.Name(),
			Configured: a.Configured(),
		}
		if status.Configured {
			if err := a.Test(ctx); err != nil {
				status.Error = err.Error()
				c.logger.Warn(ctx, "surface connectivity test failed",
					zap.String("surface", string(a.Surface())),
					zap.Error(err))
			} else {
				status.Ready = true
			}
		}
		statuses = append(statuses, status)
	}
	return statuses
}

// AvailableWorkflows returns the templates whose required surfaces are all
// registered and configured.
func (c *Coordinator) AvailableWorkflows() []WorkflowTemplate {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var available []WorkflowTemplate
	for _, t := range catalog {
		if c.surfacesConfiguredLocked(t.Surfaces) == nil {
			available = append(available, t)
		}
	}
	return available
}

// ExecuteWorkflow creates a plan from the named template and runs it to
// completion. It fails before any step starts when the template is unknown
// or a required surface is not configured.
func (c *Coordinator) ExecuteWorkflow(ctx context.Context, id string, executors map[string]cortex.StepExecutor) (*cortex.PlanResult, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "surface.ExecuteWorkflow")
	span.SetAttributes(attribute.String("workflow.id", id))
	defer span.End()

	template, ok := TemplateByID(id)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownWorkflow, id)
	}

	c.mu.RLock()
	err := c.surfacesConfiguredLocked(template.Surfaces)
	c.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	c.logger.Info(ctx, "starting workflow",
		zap.String("workflow", template.ID),
		zap.Int("steps", len(template.Steps)))
	c.machine.Think(fmt.Sprintf("Starting workflow: %s", template.Name),
		cortex.WithDetail(template.Description))

	steps := make([]cortex.ExecutionStep, len(template.Steps))
	copy(steps, template.Steps)
	c.machine.CreateExecutionPlan(template.ID, steps)

	return c.machine.ExecutePlan(ctx, executors)
}

// surfacesConfiguredLocked reports the first missing or unconfigured
// surface. Caller holds at least a read lock.
func (c *Coordinator) surfacesConfiguredLocked(surfaces []cortex.Surface) error {
	for _, s := range surfaces {
		adapter, ok := c.adapters[s]
		if !ok {
			return fmt.Errorf("%w: %s is not registered", ErrSurfaceNotReady, s)
		}
		if !adapter.Configured() {
			return fmt.Errorf("%w: %s is not configured", ErrSurfaceNotReady, s)
		}
	}
	return nil
}
