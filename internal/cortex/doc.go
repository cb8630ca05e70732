// Package cortex implements the orchestration core that drives a design
// workflow through a fixed set of phases.
//
// # Overview
//
// A Machine owns the current Phase, an append-only trace of reasoning
// steps, a process-wide retry counter, and at most one active
// ExecutionPlan. Every observable side effect is published on the
// Machine's event Bus; callers subscribe to named event streams or poll
// Phase() directly.
//
// # Key Components
//
// ## Machine
//
// The Machine is the single entry point. It composes:
//   - the trace log (Think, Trace)
//   - the approval gate (RequestApproval, RespondToApproval)
//   - the error classifier (HandleError) and healing loop (ValidateAndHeal)
//   - the execution plan runner (CreateExecutionPlan, ExecuteStep, ExecutePlan)
//
// ## Approval gate
//
// RequestApproval suspends the calling flow until RespondToApproval
// delivers a matching option or the timeout elapses. The response and the
// timer race with first-wins semantics; the losing path is cleaned up so
// no pending entry or timer leaks.
//
// ## Error classifier
//
// HandleError maps a raised failure onto a closed taxonomy by matching
// category keywords against the failure message. The rule table is fixed
// and ordered; the first matching category wins. Recoverability is a pure
// function of the code and the retry counter.
//
// ## Plan runner
//
// ExecutePlan drives steps strictly in array order, one at a time.
// Recoverable step failures are collected and the plan continues;
// a non-recoverable failure halts the plan immediately.
//
// # Concurrency
//
// The Machine serializes step execution; nothing inside one Machine runs
// steps concurrently. RespondToApproval is safe to call from any
// goroutine (it is typically wired to an HTTP handler or a terminal
// prompt). Callers must not run two plans on one Machine at the same
// time: CreateExecutionPlan silently supersedes the previous plan.
//
// # Usage Example
//
//	m := cortex.New(cortex.WithLogger(log))
//	m.Bus().Subscribe(cortex.EventThinking, func(e cortex.Event) { ... })
//
//	m.CreateExecutionPlan("token-sync", steps)
//	result, err := m.ExecutePlan(ctx, executors)
package cortex
