package httpclient

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
)

// halfOpenRequests is the number of trial requests let through while half-open.
// A comparison fetches two characters' episodes at once.
const halfOpenRequests = 2

// BreakerSettings configures the upstream circuit breaker
type BreakerSettings struct {
	Name string
	// FailureThreshold is the number of consecutive retryable failures that opens the circuit
	FailureThreshold uint32
	// OpenTimeout is how long the circuit stays open before a trial request is let through
	OpenTimeout time.Duration
}

func newBreaker(settings BreakerSettings, logger zerolog.Logger) *gobreaker.CircuitBreaker[[]byte] {
	if settings.Name == "" {
		settings.Name = "upstream"
	}
	if settings.FailureThreshold == 0 {
		settings.FailureThreshold = 5
	}
	if settings.OpenTimeout <= 0 {
		settings.OpenTimeout = 30 * time.Second
	}

	return gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        settings.Name,
		MaxRequests: halfOpenRequests,
		Timeout:     settings.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= settings.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state transition")
		},
		IsSuccessful: breakerSuccess,
	})
}

// breakerSuccess reports whether err leaves the circuit untouched. Only
// failures that say something about upstream health count against it.
func breakerSuccess(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return true
	}
	var herr *Error
	if errors.As(err, &herr) {
		return !herr.IsRetryable()
	}
	return false
}

func circuitOpenError(err error) *Error {
	return &Error{
		Kind:    KindNetwork,
		Message: "Circuit open - upstream temporarily unavailable",
		Code:    CodeCircuitOpen,
		Err:     err,
	}
}
