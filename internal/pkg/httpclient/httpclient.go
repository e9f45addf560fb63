package httpclient

import (
	"ticket-service/config"

	circuit "github.com/rubyist/circuitbreaker"
)

// InitCircuitBreaker builds the breaker guarding calls to sibling
// services. The strategy is configurable so deployments can trade
// sensitivity for stability.
func InitCircuitBreaker(cfg *config.HttpClientConfig, cbType string) *circuit.Breaker {
	switch cbType {
	case "rate":
		return circuit.NewRateBreaker(cfg.ErrorRate, cfg.MinSamples)
	case "threshold":
		return circuit.NewThresholdBreaker(cfg.Threshold)
	default:
		return circuit.NewConsecutiveBreaker(cfg.Threshold)
	}
}

// InitHttpClient wraps a plain http client with the circuit breaker and
// an explicit per-request timeout. Remote lookups must never block a
// booking indefinitely.
func InitHttpClient(cfg *config.HttpClientConfig, cb *circuit.Breaker) *circuit.HTTPClient {
	return circuit.NewHTTPClientWithBreaker(cb, cfg.Timeout, nil)
}
