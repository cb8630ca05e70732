package cortex

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Errors returned by the approval gate.
var (
	ErrApprovalTimeout   = errors.New("approval request timed out")
	ErrApprovalCancelled = errors.New("approval request cancelled")
	ErrNoOptions         = errors.New("approval request needs at least one option")
)

// pendingApproval is one outstanding request. The resolved channel has
// capacity 1 and is written exactly once, by whichever path wins the
// removal race.
type pendingApproval struct {
	request   ApprovalRequest
	resolved  chan ApprovalOption
	cancelled chan struct{}
}

// approvalGate suspends callers until a human decision arrives or the
// timeout elapses.
type approvalGate struct {
	bus            *Bus
	defaultTimeout time.Duration

	mu      sync.Mutex
	pending map[string]*pendingApproval
}

func newApprovalGate(bus *Bus, defaultTimeout time.Duration) *approvalGate {
	return &approvalGate{
		bus:            bus,
		defaultTimeout: defaultTimeout,
		pending:        make(map[string]*pendingApproval),
	}
}

// request registers the approval, publishes approvalRequired, and blocks
// until a response, the timeout, or cancellation. The timer and the
// response race with first-wins semantics: whichever removes the pending
// entry owns the resolution, and the loser is dropped.
func (g *approvalGate) request(ctx context.Context, spec ApprovalSpec) (ApprovalOption, error) {
	if len(spec.Options) == 0 {
		return ApprovalOption{}, ErrNoOptions
	}

	timeout := spec.Timeout
	if timeout <= 0 {
		timeout = g.defaultTimeout
	}

	p := &pendingApproval{
		request: ApprovalRequest{
			ID:          uuid.New().String(),
			Type:        spec.Type,
			Title:       spec.Title,
			Description: spec.Description,
			Options:     spec.Options,
			Timeout:     timeout,
			CreatedAt:   time.Now(),
		},
		resolved:  make(chan ApprovalOption, 1),
		cancelled: make(chan struct{}),
	}

	g.mu.Lock()
	g.pending[p.request.ID] = p
	g.mu.Unlock()

	g.bus.Publish(EventApprovalRequired, p.request)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case option := <-p.resolved:
		return option, nil
	case <-p.cancelled:
		return ApprovalOption{}, ErrApprovalCancelled
	case <-timer.C:
		g.remove(p.request.ID)
		// A response may have won the race just before removal; honor it.
		select {
		case option := <-p.resolved:
			return option, nil
		default:
		}
		return ApprovalOption{}, fmt.Errorf("%w after %s", ErrApprovalTimeout, timeout)
	case <-ctx.Done():
		g.remove(p.request.ID)
		return ApprovalOption{}, ctx.Err()
	}
}

// respond resolves a pending request. Responding twice, or responding to
// an unknown or expired id, is a no-op and returns false.
func (g *approvalGate) respond(id, optionID string) bool {
	g.mu.Lock()
	p, ok := g.pending[id]
	if !ok {
		g.mu.Unlock()
		return false
	}
	option, valid := findOption(p.request.Options, optionID)
	if !valid {
		g.mu.Unlock()
		return false
	}
	delete(g.pending, id)
	g.mu.Unlock()

	p.resolved <- option
	return true
}

// snapshot returns a copy of the currently outstanding requests.
func (g *approvalGate) snapshot() []ApprovalRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]ApprovalRequest, 0, len(g.pending))
	for _, p := range g.pending {
		out = append(out, p.request)
	}
	return out
}

// remove drops a pending entry, if still present.
func (g *approvalGate) remove(id string) {
	g.mu.Lock()
	delete(g.pending, id)
	g.mu.Unlock()
}

// cancelAll aborts every pending request. Suspended callers fail with
// ErrApprovalCancelled.
func (g *approvalGate) cancelAll() {
	g.mu.Lock()
	pending := g.pending
	g.pending = make(map[string]*pendingApproval)
	g.mu.Unlock()

	for _, p := range pending {
		close(p.cancelled)
	}
}

func findOption(options []ApprovalOption, id string) (ApprovalOption, bool) {
	for _, o := range options {
		if o.ID == id {
			return o, true
		}
	}
	return ApprovalOption{}, false
}

// RequestApproval transitions to awaiting_approval, delegates to the
// gate, and transitions to executing once an option is chosen. Timeout
// and cancellation errors are returned to the caller undecorated.
func (m *Machine) RequestApproval(ctx context.Context, spec ApprovalSpec) (ApprovalOption, error) {
	m.setPhase(PhaseAwaitingApproval)
	option, err := m.gate.request(ctx, spec)
	if err != nil {
		return ApprovalOption{}, err
	}
	m.setPhase(PhaseExecuting)
	return option, nil
}

// RespondToApproval resolves a specific pending request with the chosen
// option id. It reports whether a pending request was resolved; resolving
// an unknown, expired, or already-resolved id is a no-op.
func (m *Machine) RespondToApproval(id, optionID string) bool {
	return m.gate.respond(id, optionID)
}

// PendingApprovals returns a snapshot, not a live view, of outstanding
// requests.
func (m *Machine) PendingApprovals() []ApprovalRequest {
	return m.gate.snapshot()
}
