package rabbit

import (
	"errors"
	"time"

	"github.com/Temutjin2k/govv-tracker/internal/domain/types"
)

// isRecoverableError reports whether a failed delivery is worth another attempt.
// Invalid payloads and records that do not exist will fail the same way again.
func isRecoverableError(err error) bool {
	return !oneOf(err, types.ErrInvalidActivity, types.ErrActivityNotFound, errDecode)
}

func oneOf(err error, targets ...error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

func retry(n int, sleep time.Duration, fn func() error) error {
	var err error
	for range n {
		if err = fn(); err == nil {
			return nil
		}
		time.Sleep(sleep)
	}
	return err
}
