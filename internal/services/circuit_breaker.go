package services

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/stitts-dev/mlb-projections/internal/providers"
)

// Upstream names, one breaker each.
const (
	SourceFangraphs = "fangraphs"
	SourceSavant    = "savant"
	SourceChadwick  = "chadwick"
	SourceMLBStats  = "mlbstats"
)

type CircuitBreakerService struct {
	breakers map[string]*gobreaker.CircuitBreaker
	logger   *logrus.Logger
}

// NewCircuitBreakerService trips a source after threshold consecutive
// failures. Once open, calls fail fast until timeout elapses.
func NewCircuitBreakerService(threshold int, timeout time.Duration, logger *logrus.Logger) *CircuitBreakerService {
	if threshold < 1 {
		threshold = 1
	}
	breakers := make(map[string]*gobreaker.CircuitBreaker)
	for _, name := range []string{SourceFangraphs, SourceSavant, SourceChadwick, SourceMLBStats} {
		breakers[name] = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        name,
			MaxRequests: 1,
			Timeout:     timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= uint32(threshold)
			},
			// A missing season is an answer, not an outage.
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, providers.ErrNotFound) || errors.Is(err, context.Canceled)
			},
			OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
				logger.WithFields(logrus.Fields{
					"component": "circuit_breaker",
					"source":    name,
					"from":      from.String(),
					"to":        to.String(),
				}).Warn("Circuit breaker state changed")
			},
		})
	}

	return &CircuitBreakerService{
		breakers: breakers,
		logger:   logger,
	}
}

// Execute wraps a fetch with circuit breaker protection.
func (cb *CircuitBreakerService) Execute(source string, fn func() ([]byte, error)) ([]byte, error) {
	breaker, exists := cb.breakers[source]
	if !exists {
		cb.logger.WithFields(logrus.Fields{
			"component": "circuit_breaker",
			"source":    source,
		}).Warn("No circuit breaker found for source, executing without protection")
		return fn()
	}

	out, err := breaker.Execute(func() (interface{}, error) {
		data, err := fn()
		return data, err
	})
	if err != nil {
		return nil, err
	}
	data, _ := out.([]byte)
	return data, nil
}

// GetState returns the current state of a circuit breaker
func (cb *CircuitBreakerService) GetState(source string) gobreaker.State {
	if breaker, exists := cb.breakers[source]; exists {
		return breaker.State()
	}
	return gobreaker.StateClosed
}
