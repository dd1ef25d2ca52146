package oqs

import (
	"io"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts operations performed through instrumented capabilities.
// One Metrics value is registered per registerer and shared by every
// instrumented algorithm.
type Metrics struct {
	operations *prometheus.CounterVec
	failures   *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// NewMetrics registers the operation metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		operations: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "pqc",
			Name:      "operations_total",
			Help:      "Total number of cryptographic operations.",
		}, []string{"algorithm", "operation"}),
		failures: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "pqc",
			Name:      "operation_failures_total",
			Help:      "Total number of cryptographic operations that returned an error.",
		}, []string{"algorithm", "operation"}),
		duration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "pqc",
			Name:      "operation_duration_seconds",
			Help:      "Time spent in cryptographic operations.",
			Buckets:   prometheus.ExponentialBuckets(1e-5, 4, 8),
		}, []string{"algorithm", "operation"}),
	}
}

func (m *Metrics) observe(logger log.Logger, alg, op string, start time.Time, err error) {
	m.operations.WithLabelValues(alg, op).Inc()
	m.duration.WithLabelValues(alg, op).Observe(time.Since(start).Seconds())
	if err != nil {
		m.failures.WithLabelValues(alg, op).Inc()
		level.Debug(logger).Log("msg", "operation failed", "algorithm", alg, "operation", op, "err", err)
	}
}

// InstrumentKEM wraps k so that every call is counted and timed. A nil
// logger discards failure logs.
func (m *Metrics) InstrumentKEM(k KEM, logger log.Logger) KEM {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &instrumentedKEM{next: k, m: m, logger: logger, name: k.Algorithm().Name}
}

// InstrumentSignature wraps s so that every call is counted and timed.
func (m *Metrics) InstrumentSignature(s Signature, logger log.Logger) Signature {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &instrumentedSignature{next: s, m: m, logger: logger, name: s.Algorithm().Name}
}

type instrumentedKEM struct {
	next   KEM
	m      *Metrics
	logger log.Logger
	name   string
}

func (i *instrumentedKEM) Algorithm() Algorithm { return i.next.Algorithm() }

func (i *instrumentedKEM) Keypair(rand io.Reader) (pk, sk []byte, err error) {
	defer func(start time.Time) { i.m.observe(i.logger, i.name, "keypair", start, err) }(time.Now())
	return i.next.Keypair(rand)
}

func (i *instrumentedKEM) KeypairDerand(seed []byte) (pk, sk []byte, err error) {
	defer func(start time.Time) { i.m.observe(i.logger, i.name, "keypair_derand", start, err) }(time.Now())
	return i.next.KeypairDerand(seed)
}

func (i *instrumentedKEM) Encaps(pk []byte, rand io.Reader) (ct, ss []byte, err error) {
	defer func(start time.Time) { i.m.observe(i.logger, i.name, "encaps", start, err) }(time.Now())
	return i.next.Encaps(pk, rand)
}

func (i *instrumentedKEM) EncapsDerand(pk, m []byte) (ct, ss []byte, err error) {
	defer func(start time.Time) { i.m.observe(i.logger, i.name, "encaps_derand", start, err) }(time.Now())
	return i.next.EncapsDerand(pk, m)
}

func (i *instrumentedKEM) Decaps(ct, sk []byte) (ss []byte, err error) {
	defer func(start time.Time) { i.m.observe(i.logger, i.name, "decaps", start, err) }(time.Now())
	return i.next.Decaps(ct, sk)
}

func (i *instrumentedKEM) PublicFromPrivate(sk []byte) (pk []byte, err error) {
	defer func(start time.Time) { i.m.observe(i.logger, i.name, "public_from_private", start, err) }(time.Now())
	return i.next.PublicFromPrivate(sk)
}

type instrumentedSignature struct {
	next   Signature
	m      *Metrics
	logger log.Logger
	name   string
}

func (i *instrumentedSignature) Algorithm() Algorithm { return i.next.Algorithm() }

func (i *instrumentedSignature) Keypair(rand io.Reader) (pk, sk []byte, err error) {
	defer func(start time.Time) { i.m.observe(i.logger, i.name, "keypair", start, err) }(time.Now())
	return i.next.Keypair(rand)
}

func (i *instrumentedSignature) KeypairFromSeed(seed []byte) (pk, sk []byte, err error) {
	defer func(start time.Time) { i.m.observe(i.logger, i.name, "keypair_derand", start, err) }(time.Now())
	return i.next.KeypairFromSeed(seed)
}

func (i *instrumentedSignature) Sign(msg, sk []byte, rand io.Reader) (sig []byte, err error) {
	defer func(start time.Time) { i.m.observe(i.logger, i.name, "sign", start, err) }(time.Now())
	return i.next.Sign(msg, sk, rand)
}

func (i *instrumentedSignature) Verify(msg, sig, pk []byte) (err error) {
	defer func(start time.Time) { i.m.observe(i.logger, i.name, "verify", start, err) }(time.Now())
	return i.next.Verify(msg, sig, pk)
}

func (i *instrumentedSignature) SignWithCtx(msg, ctx, sk []byte, rand io.Reader) (sig []byte, err error) {
	defer func(start time.Time) { i.m.observe(i.logger, i.name, "sign", start, err) }(time.Now())
	return i.next.SignWithCtx(msg, ctx, sk, rand)
}

func (i *instrumentedSignature) VerifyWithCtx(msg, sig, ctx, pk []byte) (err error) {
	defer func(start time.Time) { i.m.observe(i.logger, i.name, "verify", start, err) }(time.Now())
	return i.next.VerifyWithCtx(msg, sig, ctx, pk)
}

func (i *instrumentedSignature) SignAttached(msg, ctx, sk []byte, rand io.Reader) (sm []byte, err error) {
	defer func(start time.Time) { i.m.observe(i.logger, i.name, "sign_attached", start, err) }(time.Now())
	return i.next.SignAttached(msg, ctx, sk, rand)
}

func (i *instrumentedSignature) Open(sm, ctx, pk []byte) (msg []byte, err error) {
	defer func(start time.Time) { i.m.observe(i.logger, i.name, "open", start, err) }(time.Now())
	return i.next.Open(sm, ctx, pk)
}

func (i *instrumentedSignature) PublicFromPrivate(sk []byte) (pk []byte, err error) {
	defer func(start time.Time) { i.m.observe(i.logger, i.name, "public_from_private", start, err) }(time.Now())
	return i.next.PublicFromPrivate(sk)
}
