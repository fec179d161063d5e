// Package errutil flattens coded errors into structured log attributes.
package errutil

import (
	"log/slog"

	"github.com/samber/oops"
)

// LogError logs err at error level. For oops errors the code and context
// attributes are logged alongside the message.
func LogError(logger *slog.Logger, msg string, err error) {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		logger.Error(msg, "error", err)
		return
	}

	attrs := []any{"error", oopsErr.Error()}
	if code := oopsErr.Code(); code != nil {
		attrs = append(attrs, "code", code)
	}
	if ctx := oopsErr.Context(); len(ctx) > 0 {
		attrs = append(attrs, "context", ctx)
	}
	logger.Error(msg, attrs...)
}

// Code returns the oops code attached to err, or "" if there is none.
func Code(err error) string {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return ""
	}
	if code, ok := oopsErr.Code().(string); ok {
		return code
	}
	return ""
}
