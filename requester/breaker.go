package requester

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
)

// NewBreaker trips after maxFailures consecutive transport failures. HTTP
// error statuses are answers, not failures, and never count.
func NewBreaker(name string, maxFailures uint32, timeout time.Duration, logger *slog.Logger) *gobreaker.CircuitBreaker[*http.Response] {
	if maxFailures == 0 {
		maxFailures = 5
	}
	if logger == nil {
		logger = slog.Default()
	}
	return gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name: name,

		MaxRequests: 1,
		Interval:    30 * time.Second,
		Timeout:     timeout,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	})
}
