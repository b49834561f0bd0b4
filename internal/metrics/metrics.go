// Package metrics exposes Prometheus counters for the authentication,
// authorization and validation pipeline.
//
//	metrics.RecordAuthFailure("INVALID_TOKEN")
//	metrics.RecordPermissionDenied("operario", "manage:users")
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthFailuresTotal counts 401 outcomes by error code and layer.
	AuthFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_failures_total",
			Help: "Authentication failures by code and layer (middleware, guard)",
		},
		[]string{"code", "layer"},
	)

	// PermissionDeniedTotal counts 403 outcomes for alerting.
	PermissionDeniedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authz_denied_total",
			Help: "Authorization denials by role and required permission",
		},
		[]string{"role", "permission"},
	)

	// ValidationFailuresTotal counts requests rejected by schema validation.
	ValidationFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "request_validation_failures_total",
			Help: "Requests rejected by schema validation, by request section",
		},
		[]string{"section"},
	)

	// AuditDroppedTotal counts audit entries dropped because the sink queue was full.
	AuditDroppedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "audit_entries_dropped_total",
			Help: "Audit entries not forwarded to the sink because its queue was full",
		},
	)
)

// RecordAuthFailure increments AuthFailuresTotal.
func RecordAuthFailure(code, layer string) {
	AuthFailuresTotal.WithLabelValues(code, layer).Inc()
}

// RecordPermissionDenied increments PermissionDeniedTotal.
func RecordPermissionDenied(role, permission string) {
	PermissionDeniedTotal.WithLabelValues(role, permission).Inc()
}

// RecordValidationFailure increments ValidationFailuresTotal.
func RecordValidationFailure(section string) {
	ValidationFailuresTotal.WithLabelValues(section).Inc()
}

// RecordAuditDropped increments AuditDroppedTotal.
func RecordAuditDropped() {
	AuditDroppedTotal.Inc()
}
