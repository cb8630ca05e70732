// Package render writes cortex activity to a terminal as an append-only
// stream: phase transitions, trace steps, step progress, error panels and
// approval prompts.
package render

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/fyrsmithlabs/cortexd/internal/cortex"
)

var (
	phaseStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("51")).
			Bold(true).
			Padding(0, 1)

	thinkingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	detailStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("238"))

	stepOkStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("46")).
			Bold(true)

	stepFailStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	stepSkipStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("226"))

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(0, 1)

	optionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("231"))

	recommendedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("46")).
				Bold(true)

	riskHighStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)

// Renderer turns bus events into styled terminal output. Safe for the
// synchronous, single-goroutine delivery the bus guarantees per event name;
// a mutex keeps lines whole across names.
type Renderer struct {
	mu sync.Mutex
	w  io.Writer
}

// New creates a renderer writing to w.
func New(w io.Writer) *Renderer {
	return &Renderer{w: w}
}

// Attach subscribes the renderer to every event stream on the bus.
func (r *Renderer) Attach(bus *cortex.Bus) {
	bus.Subscribe(cortex.EventStateChange, func(e cortex.Event) {
		change := e.Payload.(cortex.StateChange)
		r.println(phaseStyle.Render(strings.ToUpper(string(change.To))))
	})
	bus.Subscribe(cortex.EventThinking, func(e cortex.Event) {
		step := e.Payload.(cortex.TraceStep)
		r.renderThought(step)
	})
	bus.Subscribe(cortex.EventPlanCreated, func(e cortex.Event) {
		plan := e.Payload.(*cortex.ExecutionPlan)
		r.println(fmt.Sprintf("plan %s: %d steps", plan.Name, len(plan.Steps)))
	})
	bus.Subscribe(cortex.EventStepStart, func(e cortex.Event) {
		step := e.Payload.(*cortex.ExecutionStep)
		r.println(fmt.Sprintf("  > %s (%s)", step.Name, step.Surface))
	})
	bus.Subscribe(cortex.EventStepComplete, func(e cortex.Event) {
		step := e.Payload.(*cortex.ExecutionStep)
		r.println(stepOkStyle.Render("  ✓ ") + step.Name)
	})
	bus.Subscribe(cortex.EventStepFailed, func(e cortex.Event) {
		failure := e.Payload.(cortex.StepFailure)
		r.println(stepFailStyle.Render("  ✗ ") + failure.Step.Name)
	})
	bus.Subscribe(cortex.EventStepSkipped, func(e cortex.Event) {
		step := e.Payload.(*cortex.ExecutionStep)
		r.println(stepSkipStyle.Render("  - ") + step.Name + " (skipped)")
	})
	bus.Subscribe(cortex.EventError, func(e cortex.Event) {
		r.renderError(e.Payload.(*cortex.CortexError))
	})
	bus.Subscribe(cortex.EventApprovalRequired, func(e cortex.Event) {
		r.renderApproval(e.Payload.(cortex.ApprovalRequest))
	})
	bus.Subscribe(cortex.EventReset, func(cortex.Event) {
		r.println(thinkingStyle.Render("session reset"))
	})
}

func (r *Renderer) println(line string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.w, line)
}

func (r *Renderer) renderThought(step cortex.TraceStep) {
	line := thinkingStyle.Render("· " + step.Message)
	if step.Progress >= 0 {
		line += thinkingStyle.Render(fmt.Sprintf(" [%d%%]", step.Progress))
	}
	if step.Detail != "" {
		line += "\n" + detailStyle.Render("  "+step.Detail)
	}
	r.println(line)
}

func (r *Renderer) renderError(cerr *cortex.CortexError) {
	var b strings.Builder
	b.WriteString(stepFailStyle.Render(string(cerr.Code)) + "\n")
	b.WriteString(cerr.Message)
	for _, action := range cerr.SuggestedActions {
		b.WriteString("\n  • " + action)
	}
	r.println(panelStyle.Render(b.String()))
}

// renderApproval draws the approval prompt with each option's risk and the
// recommended marker.
func (r *Renderer) renderApproval(req cortex.ApprovalRequest) {
	var b strings.Builder
	b.WriteString(req.Title)
	if req.Description != "" {
		b.WriteString("\n" + detailStyle.Render(req.Description))
	}
	for _, opt := range req.Options {
		line := fmt.Sprintf("\n  [%s] %s", opt.ID, opt.Label)
		if opt.Risk == cortex.RiskHigh {
			line += riskHighStyle.Render(" (high risk)")
		} else if opt.Risk != "" {
			line += detailStyle.Render(fmt.Sprintf(" (%s risk)", opt.Risk))
		}
		if opt.Recommended {
			line += recommendedStyle.Render(" ★ recommended")
		}
		b.WriteString(optionStyle.Render(line))
	}
	r.println(panelStyle.Render(b.String()))
}
