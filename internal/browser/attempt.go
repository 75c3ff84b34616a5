package browser

import (
	"linkjd/internal/logging/types"
)

// Attempt runs one best-effort sub-step. A failure is logged at debug level and
// absorbed; the caller only learns whether the step succeeded.
func Attempt(logger types.Logger, step string, fn func() error) bool {
	if err := fn(); err != nil {
		logger.Debug("Best-effort step failed", map[string]interface{}{
			"step":  step,
			"error": err.Error(),
		})
		return false
	}
	return true
}
