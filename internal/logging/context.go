package logging

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ContextFields extracts correlation data from context.
func ContextFields(ctx context.Context) []zap.Field {
	fields := make([]zap.Field, 0, 6)

	// Trace correlation (from OpenTelemetry)
	if span := trace.SpanFromContext(ctx); span.SpanContext().IsValid() {
		sc := span.SpanContext()
		fields = append(fields,
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()),
		)
		if sc.IsSampled() {
			fields = append(fields, zap.Bool("trace_sampled", true))
		}
	}

	if workflowID := WorkflowIDFromContext(ctx); workflowID != "" {
		fields = append(fields, zap.String("workflow.id", workflowID))
	}
	if approvalID := ApprovalIDFromContext(ctx); approvalID != "" {
		fields = append(fields, zap.String("approval.id", approvalID))
	}
	if surface := SurfaceFromContext(ctx); surface != "" {
		fields = append(fields, zap.String("surface", surface))
	}

	return fields
}

// Context key types
type workflowCtxKey struct{}
type approvalCtxKey struct{}
type surfaceCtxKey struct{}
type loggerCtxKey struct{}

// WithWorkflowID tags the context with the active workflow run.
func WithWorkflowID(ctx context.Context, workflowID string) context.Context {
	return context.WithValue(ctx, workflowCtxKey{}, workflowID)
}

// WorkflowIDFromContext extracts the workflow ID, or "" if absent.
func WorkflowIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(workflowCtxKey{}).(string); ok {
		return id
	}
	return ""
}

// WithApprovalID tags the context with the approval request being handled.
func WithApprovalID(ctx context.Context, approvalID string) context.Context {
	return context.WithValue(ctx, approvalCtxKey{}, approvalID)
}

// ApprovalIDFromContext extracts the approval ID, or "" if absent.
func ApprovalIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(approvalCtxKey{}).(string); ok {
		return id
	}
	return ""
}

// WithSurface tags the context with the surface being acted on.
func WithSurface(ctx context.Context, surface string) context.Context {
	return context.WithValue(ctx, surfaceCtxKey{}, surface)
}

// SurfaceFromContext extracts the surface name, or "" if absent.
func SurfaceFromContext(ctx context.Context) string {
	if s, ok := ctx.Value(surfaceCtxKey{}).(string); ok {
		return s
	}
	return ""
}

// WithLogger stores logger in context.
func WithLogger(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, loggerCtxKey{}, logger)
}

// FromContext retrieves the logger from context, or a nop logger if absent.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(loggerCtxKey{}).(*Logger); ok {
		return l
	}
	return NewNop()
}
