package secrets

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"

	"hostfacts/internal/types"
)

// BreakerStore wraps a Store with a circuit breaker so a store outage fails
// fast instead of stalling every caller on the network. Only
// ErrCodeSecretStoreUnavailable counts as a failure; missing or malformed
// secrets are answers, not outages.
type BreakerStore struct {
	next    Store
	breaker *gobreaker.CircuitBreaker[string]
}

// NewBreakerStore wraps next with a breaker that opens after more than five
// consecutive store failures and probes again after 30 seconds.
func NewBreakerStore(next Store, name string) *BreakerStore {
	return &BreakerStore{
		next: next,
		breaker: gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
			Name:        name,
			MaxRequests: 1,
			Interval:    60 * time.Second,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures > 5
			},
			IsSuccessful: func(err error) bool {
				return err == nil || !types.IsCode(err, types.ErrCodeSecretStoreUnavailable)
			},
		}),
	}
}

// GetSecretString delegates to the wrapped store unless the breaker is open.
func (s *BreakerStore) GetSecretString(ctx context.Context, id string) (string, error) {
	value, err := s.breaker.Execute(func() (string, error) {
		return s.next.GetSecretString(ctx, id)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return "", types.NewAppError(types.ErrCodeSecretStoreUnavailable,
			"secrets store circuit breaker is open", err)
	}
	return value, err
}

// State reports the breaker state, e.g. for health checks.
func (s *BreakerStore) State() gobreaker.State {
	return s.breaker.State()
}
