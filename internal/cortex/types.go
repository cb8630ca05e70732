package cortex

import (
	"context"
	"time"
)

// Phase is the Machine's single current high-level activity marker.
type Phase string

const (
	PhaseIdle             Phase = "idle"
	PhaseAnalyzing        Phase = "analyzing"
	PhaseStrategizing     Phase = "strategizing"
	PhaseDesigning        Phase = "designing"
	PhaseValidating       Phase = "validating"
	PhaseAwaitingApproval Phase = "awaiting_approval"
	PhaseExecuting        Phase = "executing"
	PhaseRecovering       Phase = "recovering"
	PhaseComplete         Phase = "complete"
	PhaseError            Phase = "error"
)

// Surface names an external collaborator category that an adapter
// implements and a workflow step targets (e.g. "figma", "github").
type Surface string

// TraceStep is one immutable, timestamped record of reasoning or progress.
// Progress is -1 when unreported, otherwise 0-100.
type TraceStep struct {
	Timestamp time.Time     `json:"timestamp"`
	Phase     Phase         `json:"phase"`
	Message   string        `json:"message"`
	Detail    string        `json:"detail,omitempty"`
	Progress  int           `json:"progress,omitempty"`
	Duration  time.Duration `json:"duration,omitempty"`
}

// TraceOption customizes a trace step created by Think.
type TraceOption func(*TraceStep)

// WithDetail attaches secondary detail to a trace step.
func WithDetail(detail string) TraceOption {
	return func(s *TraceStep) { s.Detail = detail }
}

// WithProgress attaches a 0-100 progress marker to a trace step.
func WithProgress(progress int) TraceOption {
	return func(s *TraceStep) { s.Progress = progress }
}

// WithDuration attaches the elapsed time of the work being reported.
func WithDuration(d time.Duration) TraceOption {
	return func(s *TraceStep) { s.Duration = d }
}

// RiskLevel grades an approval option.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Well-known approval option IDs. Directional options (A/B/C) are used by
// strategy approvals; approve/deny/modify by execution approvals.
const (
	OptionA       = "A"
	OptionB       = "B"
	OptionC       = "C"
	OptionApprove = "approve"
	OptionDeny    = "deny"
	OptionModify  = "modify"
)

// ApprovalOption is one labeled choice offered by an approval request.
// At most one option per request should be marked Recommended; the flag
// is advisory only.
type ApprovalOption struct {
	ID          string    `json:"id"`
	Label       string    `json:"label"`
	Description string    `json:"description,omitempty"`
	Risk        RiskLevel `json:"risk"`
	Recommended bool      `json:"recommended,omitempty"`
}

// ApprovalSpec describes an approval request before the gate assigns its
// ID and creation time. A zero Timeout uses the gate default.
type ApprovalSpec struct {
	Type        string
	Title       string
	Description string
	Options     []ApprovalOption
	Timeout     time.Duration
}

// ApprovalRequest is a registered, pending approval. It is owned by the
// gate for its pending lifetime and removed on resolution or timeout.
type ApprovalRequest struct {
	ID          string           `json:"id"`
	Type        string           `json:"type"`
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	Options     []ApprovalOption `json:"options"`
	Timeout     time.Duration    `json:"timeout"`
	CreatedAt   time.Time        `json:"created_at"`
}

// StepStatus is the lifecycle state of a single execution step.
type StepStatus string

const (
	StepPending  StepStatus = "pending"
	StepRunning  StepStatus = "running"
	StepComplete StepStatus = "complete"
	StepFailed   StepStatus = "failed"
	StepSkipped  StepStatus = "skipped"
)

// ExecutionStep is one unit of work in a plan, bound to a named surface.
// The runner mutates Status, Output and Err in place as it executes.
//
// Steps carry no dependency information: execution is strictly sequential
// by array order.
type ExecutionStep struct {
	ID               string       `json:"id"`
	Name             string       `json:"name"`
	Action           string       `json:"action"`
	Surface          Surface      `json:"surface"`
	Status           StepStatus   `json:"status"`
	Output           any          `json:"output,omitempty"`
	Err              *CortexError `json:"error,omitempty"`
	RequiresApproval bool         `json:"requires_approval,omitempty"`
}

// PlanStatus is the lifecycle state of an execution plan.
type PlanStatus string

const (
	PlanPending  PlanStatus = "pending"
	PlanRunning  PlanStatus = "running"
	PlanPaused   PlanStatus = "paused"
	PlanComplete PlanStatus = "complete"
	PlanFailed   PlanStatus = "failed"
)

// ExecutionPlan is the ordered, stateful list of steps for one workflow
// run. Exactly one plan is active per Machine; a new plan supersedes the
// previous one.
type ExecutionPlan struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Steps       []*ExecutionStep `json:"steps"`
	CurrentStep int              `json:"current_step"`
	Status      PlanStatus       `json:"status"`
	StartedAt   time.Time        `json:"started_at,omitempty"`
	CompletedAt time.Time        `json:"completed_at,omitempty"`
}

// StepExecutor performs the work for one step. It may suspend; once
// invoked it runs to completion or returns an error, there is no built-in
// cancellation beyond the supplied context.
type StepExecutor func(ctx context.Context, step *ExecutionStep) (any, error)

// PlanResult is the aggregate outcome of ExecutePlan. Results holds the
// outputs of completed steps keyed by step ID. Success is true only when
// no step raised.
type PlanResult struct {
	Success bool           `json:"success"`
	Results map[string]any `json:"results"`
	Errors  []*CortexError `json:"errors,omitempty"`
}
