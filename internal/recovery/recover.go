// Package recovery provides panic recovery for user-provided hooks.
// Ensures a misbehaving rendering hook doesn't crash the viewer.
package recovery

import (
	"fmt"
	"log/slog"
	"runtime/debug"
)

// RecoverToValue wraps a function that returns a value and error.
// If the function panics, returns the zero value and an error.
//
// Example:
//
//	href, err := recovery.RecoverToValue(logger, "LinkFunc", func() (string, error) {
//	    return cfg.LinkFunc(value), nil
//	})
func RecoverToValue[T any](logger *slog.Logger, operation string, fn func() (T, error)) (result T, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Panic recovered",
				"operation", operation,
				"panic", r,
				"stack", string(debug.Stack()),
			)

			var zero T
			result = zero
			err = fmt.Errorf("%s panicked: %v", operation, r)
		}
	}()

	return fn()
}
