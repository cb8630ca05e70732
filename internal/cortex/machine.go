package cortex

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/cortexd/internal/logging"
)

// Defaults for a Machine built without options.
const (
	DefaultApprovalTimeout = 60 * time.Second
	DefaultMaxRetries      = 3
)

// Machine owns the current phase, the trace log, the retry counter and
// the active execution plan. It is explicitly constructed and
// independently instantiable; run one Machine per workflow session.
type Machine struct {
	bus    *Bus
	logger *logging.Logger
	gate   *approvalGate

	mu         sync.Mutex
	phase      Phase
	trace      []TraceStep
	retryCount int
	plan       *ExecutionPlan

	maxRetries      int
	approvalTimeout time.Duration
}

// Option configures a Machine.
type Option func(*Machine)

// WithLogger sets the structured logger. Defaults to a no-op logger.
func WithLogger(logger *logging.Logger) Option {
	return func(m *Machine) { m.logger = logger }
}

// WithMaxRetries overrides the retry budget shared by the error
// classifier and the healing loop.
func WithMaxRetries(n int) Option {
	return func(m *Machine) {
		if n > 0 {
			m.maxRetries = n
		}
	}
}

// WithApprovalTimeout overrides the default approval timeout.
func WithApprovalTimeout(d time.Duration) Option {
	return func(m *Machine) {
		if d > 0 {
			m.approvalTimeout = d
		}
	}
}

// New creates an idle Machine.
func New(opts ...Option) *Machine {
	m := &Machine{
		bus:             NewBus(),
		logger:          logging.NewNop(),
		phase:           PhaseIdle,
		maxRetries:      DefaultMaxRetries,
		approvalTimeout: DefaultApprovalTimeout,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.gate = newApprovalGate(m.bus, m.approvalTimeout)
	return m
}

// Bus returns the Machine's event bus.
func (m *Machine) Bus() *Bus {
	return m.bus
}

// Phase returns the current phase.
func (m *Machine) Phase() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

// setPhase transitions the phase and publishes a stateChange event.
// No-op when the phase is unchanged.
func (m *Machine) setPhase(to Phase) {
	m.mu.Lock()
	from := m.phase
	if from == to {
		m.mu.Unlock()
		return
	}
	m.phase = to
	m.mu.Unlock()

	m.logger.Debug(context.Background(), "phase transition",
		zap.String("from", string(from)),
		zap.String("to", string(to)))
	m.bus.Publish(EventStateChange, StateChange{From: from, To: to})
}

// Think appends a trace step tagged with the current phase and publishes
// it as a thinking event. Steps are published in the exact order Think
// was invoked.
func (m *Machine) Think(message string, opts ...TraceOption) TraceStep {
	step := TraceStep{
		Timestamp: time.Now(),
		Message:   message,
		Progress:  -1,
	}
	for _, opt := range opts {
		opt(&step)
	}

	m.mu.Lock()
	step.Phase = m.phase
	m.trace = append(m.trace, step)
	m.mu.Unlock()

	m.logger.Debug(context.Background(), "trace step",
		zap.String("message", step.Message),
		zap.String("phase", string(step.Phase)))
	m.bus.Publish(EventThinking, step)
	return step
}

// Trace returns a snapshot of the trace log.
func (m *Machine) Trace() []TraceStep {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]TraceStep, len(m.trace))
	copy(out, m.trace)
	return out
}

// RetryCount reports how many failures this Machine has classified since
// construction or the last Reset.
func (m *Machine) RetryCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.retryCount
}

// HandleError classifies a raised failure, transitions the phase to
// recovering, and publishes the resulting CortexError. The retry counter
// is monotonically non-decreasing until Reset.
func (m *Machine) HandleError(err error, origin string) *CortexError {
	m.mu.Lock()
	m.retryCount++
	cerr := newCortexError(err, m.retryCount, m.maxRetries)
	m.mu.Unlock()

	m.setPhase(PhaseRecovering)
	m.logger.Warn(context.Background(), "failure classified",
		zap.String("code", string(cerr.Code)),
		zap.String("context", origin),
		zap.Bool("recoverable", cerr.Recoverable),
		zap.Int("retry_count", cerr.RetryCount),
		zap.Error(err))
	m.bus.Publish(EventError, cerr)
	return cerr
}

// Reset clears the trace log, cancels pending approvals, drops the
// active plan, zeroes the retry counter, and returns the phase to idle.
func (m *Machine) Reset() {
	m.gate.cancelAll()

	m.mu.Lock()
	from := m.phase
	m.phase = PhaseIdle
	m.trace = nil
	m.retryCount = 0
	m.plan = nil
	m.mu.Unlock()

	if from != PhaseIdle {
		m.bus.Publish(EventStateChange, StateChange{From: from, To: PhaseIdle})
	}
	m.bus.Publish(EventReset, nil)
}
