package cortex

import (
	"sync"
	"time"
)

// EventName identifies one event stream on the Bus.
type EventName string

const (
	EventStateChange      EventName = "stateChange"
	EventThinking         EventName = "thinking"
	EventApprovalRequired EventName = "approvalRequired"
	EventError            EventName = "error"
	EventPlanCreated      EventName = "planCreated"
	EventStepStart        EventName = "stepStart"
	EventStepComplete     EventName = "stepComplete"
	EventStepFailed       EventName = "stepFailed"
	EventStepSkipped      EventName = "stepSkipped"
	EventReset            EventName = "reset"
)

// Event is one published occurrence. Payload holds the typed payload for
// the event name: StateChange, TraceStep, ApprovalRequest, *CortexError,
// *ExecutionPlan, *ExecutionStep, StepFailure, or nil for reset.
type Event struct {
	Name    EventName
	Payload any
	At      time.Time
}

// StateChange is the payload of stateChange events.
type StateChange struct {
	From Phase `json:"from"`
	To   Phase `json:"to"`
}

// StepFailure is the payload of stepFailed events.
type StepFailure struct {
	Step *ExecutionStep `json:"step"`
	Err  *CortexError   `json:"error"`
}

// Handler consumes events. Handlers run synchronously on the publishing
// goroutine; a slow handler delays the workflow.
type Handler func(Event)

// Bus is the Machine's publish/subscribe surface. Delivery is at least
// once per publish and in publish order within a single event name.
// Subscribers must not assume ordering across different event names.
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventName][]Handler
	all      []Handler
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{handlers: make(map[EventName][]Handler)}
}

// Subscribe registers a handler for one event name.
func (b *Bus) Subscribe(name EventName, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[name] = append(b.handlers[name], h)
}

// SubscribeAll registers a handler for every event name.
func (b *Bus) SubscribeAll(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.all = append(b.all, h)
}

// Publish delivers the event to all matching handlers in registration
// order.
func (b *Bus) Publish(name EventName, payload any) {
	b.mu.RLock()
	named := b.handlers[name]
	all := b.all
	b.mu.RUnlock()

	event := Event{Name: name, Payload: payload, At: time.Now()}
	for _, h := range named {
		h(event)
	}
	for _, h := range all {
		h(event)
	}
}
