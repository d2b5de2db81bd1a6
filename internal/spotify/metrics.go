package spotify

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values for spotify_api_requests_total. Non-2xx responses
// are labelled status_<code>.
const (
	OutcomeOK             = "ok"
	OutcomeTransportError = "transport_error"
	OutcomeShapeError     = "shape_error"
)

// Metrics holds the Prometheus collectors for outbound Spotify calls.
type Metrics struct {
	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// NewMetrics registers the collectors with reg. A nil reg creates
// unregistered collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "spotify_api_requests_total",
			Help: "The total number of Spotify API calls by endpoint and outcome",
		}, []string{"endpoint", "outcome"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "spotify_api_request_duration_seconds",
			Help:    "The duration of Spotify API calls in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
	}
}

func (m *Metrics) observe(endpoint string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(endpoint, outcome(err)).Inc()
	m.RequestDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

func outcome(err error) string {
	var reqErr *ErrProviderRequest
	var shapeErr *ErrDataShape
	switch {
	case err == nil:
		return OutcomeOK
	case errors.As(err, &reqErr):
		return "status_" + strconv.Itoa(reqErr.StatusCode)
	case errors.As(err, &shapeErr):
		return OutcomeShapeError
	default:
		return OutcomeTransportError
	}
}
