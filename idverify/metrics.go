package idverify

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/keksclan/goIDVerify/internal/keyprovider"
	"github.com/keksclan/goIDVerify/internal/token"
)

// MetricsCollector receives verification outcome counters.
// All methods must be safe for concurrent use.
// Implementations must never log or store tokens or claims.
type MetricsCollector interface {
	ValidationOK()
	ValidationFailed(reason string)
	// KeySetLookup reports how the built-in remote provider answered a lookup.
	KeySetLookup(outcome string)
}

// Failure reason constants used with MetricsCollector.
const (
	FailReasonParse     = token.FailReasonParse
	FailReasonAudience  = token.FailReasonAudience
	FailReasonIssuer    = token.FailReasonIssuer
	FailReasonExpired   = token.FailReasonExpired
	FailReasonIat       = token.FailReasonIat
	FailReasonPayload   = token.FailReasonPayload
	FailReasonKey       = token.FailReasonKey
	FailReasonKid       = token.FailReasonKid
	FailReasonAlg       = token.FailReasonAlg
	FailReasonSignature = token.FailReasonSignature
)

// Key set lookup outcomes used with MetricsCollector.KeySetLookup.
const (
	KeySetCacheHit = keyprovider.OutcomeCacheHit
	KeySetFetched  = keyprovider.OutcomeFetched
	KeySetUncached = keyprovider.OutcomeUncached
	KeySetError    = keyprovider.OutcomeError
)

type nopMetrics struct{}

func (nopMetrics) ValidationOK()           {}
func (nopMetrics) ValidationFailed(string) {}
func (nopMetrics) KeySetLookup(string)     {}

// PrometheusMetrics implements MetricsCollector with Prometheus counters.
type PrometheusMetrics struct {
	validations *prometheus.CounterVec
	lookups     *prometheus.CounterVec
}

// NewPrometheusMetrics registers the idverify counters with reg.
// A nil reg uses prometheus.DefaultRegisterer.
func NewPrometheusMetrics(reg prometheus.Registerer) (*PrometheusMetrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &PrometheusMetrics{
		validations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "idverify",
			Name:      "validations_total",
			Help:      "ID token verifications by result and failure reason.",
		}, []string{"result", "reason"}),
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "idverify",
			Name:      "key_set_lookups_total",
			Help:      "Signing key lookups by cache outcome.",
		}, []string{"outcome"}),
	}
	var err error
	if m.validations, err = register(reg, m.validations); err != nil {
		return nil, err
	}
	if m.lookups, err = register(reg, m.lookups); err != nil {
		return nil, err
	}
	return m, nil
}

// register adds c to reg, reusing an identical collector that is already registered.
func register(reg prometheus.Registerer, c *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
			return existing, nil
		}
	}
	return nil, err
}

func (m *PrometheusMetrics) ValidationOK() {
	m.validations.WithLabelValues("ok", "").Inc()
}

func (m *PrometheusMetrics) ValidationFailed(reason string) {
	m.validations.WithLabelValues("failed", reason).Inc()
}

func (m *PrometheusMetrics) KeySetLookup(outcome string) {
	m.lookups.WithLabelValues(outcome).Inc()
}
