package circuitbreaker

import "github.com/sony/gobreaker"

var (
	// MaxNumOfFailingRequests is the minimum number of observed requests
	// before the breaker may trip.
	MaxNumOfFailingRequests = 10
	// FailingRatio is the failure ratio at which the breaker trips.
	FailingRatio = 0.6
)

// NewCircuitBreaker returns a named *gobreaker.CircuitBreaker shared by the
// outbound surfaces of the daemon (webhook delivery, price feed dialing). It
// trips once at least MaxNumOfFailingRequests requests have been observed and
// the failure ratio has reached FailingRatio, so a dead endpoint stops being
// hammered on every event or reconnect attempt.
func NewCircuitBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name: name,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return int(counts.Requests) > MaxNumOfFailingRequests && ratio >= FailingRatio
		},
	})
}
