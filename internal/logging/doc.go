// Package logging provides structured, context-aware logging for cortexd.
//
// Loggers wrap zap with methods that take a context.Context first so every
// entry automatically carries trace correlation (OpenTelemetry trace and
// span IDs) plus cortexd correlation data: the active workflow, approval
// request, and surface when they are present in the context.
//
// Output goes to stdout (JSON or console encoding) and optionally to an
// OpenTelemetry log provider via the otelzap bridge. Sensitive values such
// as surface tokens are redacted at the encoder level.
//
// Usage:
//
//	logger, err := logging.NewLogger(logging.NewDefaultConfig(), nil)
//	if err != nil {
//	    return err
//	}
//	defer logger.Sync()
//
//	ctx = logging.WithWorkflowID(ctx, workflowID)
//	logger.Info(ctx, "workflow started", zap.String("template", name))
package logging
