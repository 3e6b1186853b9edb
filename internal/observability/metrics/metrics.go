package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"service", "method", "path", "status"},
	)

	// Typed as ObserverVec so the curried reassignment in MustRegister is
	// legal: (*HistogramVec).MustCurryWith returns the interface, not the
	// concrete vec.
	HTTPRequestDurationSeconds prometheus.ObserverVec = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)

	DeviceRegistrationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "push_device_registrations_total",
			Help: "Device registration attempts by outcome.",
		},
		[]string{"result"},
	)

	DeviceRemovalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "push_device_removals_total",
			Help: "Device removal attempts by outcome.",
		},
		[]string{"result"},
	)

	PushSignalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "push_registration_signals_total",
			Help: "Registration-change signals handed to the push relay.",
		},
		[]string{"action"},
	)
)

func MustRegister(serviceName string) {
	HTTPRequestsTotal = HTTPRequestsTotal.MustCurryWith(prometheus.Labels{"service": serviceName})
	HTTPRequestDurationSeconds = HTTPRequestDurationSeconds.MustCurryWith(prometheus.Labels{"service": serviceName})

	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDurationSeconds,
		DeviceRegistrationsTotal,
		DeviceRemovalsTotal,
		PushSignalsTotal,
	)
}
