// Package tracing adds OpenTelemetry client spans and request metrics to
// httpclient requests through interceptor pairs.
//
//	tracing.New().Register(client.Interceptors.Request, client.Interceptors.Response)
//
//	m, err := tracing.NewMetrics(nil)
//	m.Register(client.Interceptors.Request, client.Interceptors.Response)
//
// Instrument does both with providers that export over OTLP HTTP:
//
//	shutdown, err := tracing.Instrument(ctx, client, "orders", settings.Telemetry)
//	defer shutdown(context.Background())
//
// Register the tracing request interceptor after any interceptor that may
// reject, so a span is only started for requests that reach dispatch.
package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/anyhttp/core"
	"github.com/kbukum/anyhttp/interceptor"
)

const tracerName = "github.com/kbukum/anyhttp/tracing"

// Attribute keys.
const (
	AttrMethod     = "http.request.method"
	AttrURL        = "url.full"
	AttrStatusCode = "http.response.status_code"
	AttrErrorCode  = "anyhttp.error.code"
)

type spanKey struct{}

// Tracing starts a span per request and ends it when the response chain
// settles.
type Tracing struct {
	tracer     trace.Tracer
	propagator propagation.TextMapPropagator
}

// Option configures Tracing.
type Option func(*options)

type options struct {
	provider   trace.TracerProvider
	propagator propagation.TextMapPropagator
}

// WithTracerProvider sets the provider. Defaults to otel.GetTracerProvider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) { o.provider = tp }
}

// WithPropagator sets the header propagator. Defaults to
// otel.GetTextMapPropagator.
func WithPropagator(p propagation.TextMapPropagator) Option {
	return func(o *options) { o.propagator = p }
}

// New creates a Tracing.
func New(opts ...Option) *Tracing {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.provider == nil {
		o.provider = otel.GetTracerProvider()
	}
	if o.propagator == nil {
		o.propagator = otel.GetTextMapPropagator()
	}
	return &Tracing{
		tracer:     o.provider.Tracer(tracerName),
		propagator: o.propagator,
	}
}

// Register installs the request and response interceptors and returns
// their ids.
func (t *Tracing) Register(req *interceptor.Manager[*core.Config], resp *interceptor.Manager[*core.Response]) (reqID, respID int) {
	reqID = req.Use(t.StartRequest, nil)
	respID = resp.Use(t.EndResponse, t.EndError)
	return reqID, respID
}

// StartRequest starts a client span and injects propagation headers.
func (t *Tracing) StartRequest(_ context.Context, cfg *core.Config) (*core.Config, error) {
	out := cfg.Clone()
	fullURL, _ := cfg.FullURL()

	ctx, span := t.tracer.Start(cfg.Ctx(), "HTTP "+cfg.Method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String(AttrMethod, cfg.Method),
			attribute.String(AttrURL, fullURL),
		),
	)
	t.propagator.Inject(ctx, &out.Headers)
	out.Context = context.WithValue(ctx, spanKey{}, span)
	return out, nil
}

// EndResponse records the status code and ends the span.
func (t *Tracing) EndResponse(ctx context.Context, resp *core.Response) (*core.Response, error) {
	span, ok := spanOf(ctx)
	if !ok && resp != nil {
		span, ok = spanOf(resp.Config.Ctx())
	}
	if ok {
		if resp != nil {
			span.SetAttributes(attribute.Int(AttrStatusCode, resp.Status))
		}
		span.End()
	}
	return resp, nil
}

// EndError records err on the span, ends it and passes err on.
func (t *Tracing) EndError(ctx context.Context, err *core.Error) (*core.Response, error) {
	span, ok := spanOf(ctx)
	if !ok {
		span, ok = spanOf(err.Config.Ctx())
	}
	if ok {
		if err.Response != nil {
			span.SetAttributes(attribute.Int(AttrStatusCode, err.Response.Status))
		}
		if err.Code != "" {
			span.SetAttributes(attribute.String(AttrErrorCode, err.Code.String()))
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Message)
		span.End()
	}
	return nil, err
}

// spanOf returns the span started by StartRequest, ignoring any span the
// caller placed on the context.
func spanOf(ctx context.Context) (trace.Span, bool) {
	span, ok := ctx.Value(spanKey{}).(trace.Span)
	return span, ok
}
