package tracing

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/kbukum/anyhttp/core"
	"github.com/kbukum/anyhttp/interceptor"
)

// Instrument names.
const (
	MetricRequestDuration = "http.client.request.duration"
	MetricActiveRequests  = "http.client.active_requests"
)

type startKey struct{}

type requestStart struct {
	at     time.Time
	method string
}

// Metrics records client request durations and in-flight counts.
type Metrics struct {
	duration metric.Float64Histogram
	active   metric.Int64UpDownCounter
}

// NewMetrics creates the instruments on mp. A nil mp uses
// otel.GetMeterProvider.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter(tracerName)

	duration, err := meter.Float64Histogram(MetricRequestDuration,
		metric.WithDescription("Duration of HTTP client requests in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s histogram: %w", MetricRequestDuration, err)
	}
	active, err := meter.Int64UpDownCounter(MetricActiveRequests,
		metric.WithDescription("Number of in-flight HTTP client requests"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricActiveRequests, err)
	}
	return &Metrics{duration: duration, active: active}, nil
}

// Register installs the request and response interceptors and returns
// their ids.
func (m *Metrics) Register(req *interceptor.Manager[*core.Config], resp *interceptor.Manager[*core.Response]) (reqID, respID int) {
	reqID = req.Use(m.StartRequest, nil)
	respID = resp.Use(m.EndResponse, m.EndError)
	return reqID, respID
}

// StartRequest stamps the start time on the config context.
func (m *Metrics) StartRequest(_ context.Context, cfg *core.Config) (*core.Config, error) {
	out := cfg.Clone()
	out.Context = context.WithValue(cfg.Ctx(), startKey{}, requestStart{at: time.Now(), method: cfg.Method})
	m.active.Add(out.Context, 1, metric.WithAttributes(attribute.String(AttrMethod, cfg.Method)))
	return out, nil
}

// EndResponse records a settled request.
func (m *Metrics) EndResponse(ctx context.Context, resp *core.Response) (*core.Response, error) {
	if resp != nil {
		m.record(ctx, resp.Config, attribute.Int(AttrStatusCode, resp.Status))
	}
	return resp, nil
}

// EndError records a failed request and passes err on.
func (m *Metrics) EndError(ctx context.Context, err *core.Error) (*core.Response, error) {
	attrs := []attribute.KeyValue{attribute.String(AttrErrorCode, err.Code.String())}
	if err.Response != nil {
		attrs = append(attrs, attribute.Int(AttrStatusCode, err.Response.Status))
	}
	m.record(ctx, err.Config, attrs...)
	return nil, err
}

func (m *Metrics) record(ctx context.Context, cfg *core.Config, attrs ...attribute.KeyValue) {
	start, ok := ctx.Value(startKey{}).(requestStart)
	if !ok {
		start, ok = cfg.Ctx().Value(startKey{}).(requestStart)
	}
	if !ok {
		return
	}
	method := attribute.String(AttrMethod, start.method)
	m.active.Add(ctx, -1, metric.WithAttributes(method))
	m.duration.Record(ctx, time.Since(start.at).Seconds(), metric.WithAttributes(append(attrs, method)...))
}
