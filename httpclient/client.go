package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/anyhttp/adapter"
	"github.com/kbukum/anyhttp/core"
	"github.com/kbukum/anyhttp/interceptor"
	"github.com/kbukum/anyhttp/logger"
)

// Interceptors holds a client's two pipelines.
type Interceptors struct {
	// Request runs on the resolved config before dispatch.
	Request *interceptor.Manager[*core.Config]
	// Response runs on the settled response, or its failure.
	Response *interceptor.Manager[*core.Response]
}

func newInterceptors() Interceptors {
	return Interceptors{
		Request:  interceptor.NewManager[*core.Config](),
		Response: interceptor.NewManager[*core.Response](),
	}
}

// Client orchestrates config resolution, interceptors and adapter dispatch.
// A Client is safe for concurrent use.
type Client struct {
	// Interceptors are this instance's pipelines. Child instances start empty.
	Interceptors Interceptors

	defaults core.Config
	registry *adapter.Registry
	log      *logger.Logger
}

// Option configures a Client.
type Option func(*options)

type options struct {
	registry *adapter.Registry
	host     *adapter.Host
	log      *logger.Logger
}

// WithRegistry shares an existing adapter registry.
func WithRegistry(r *adapter.Registry) Option {
	return func(o *options) { o.registry = r }
}

// WithHost builds the registry from host instead of adapter.DefaultHost.
func WithHost(h adapter.Host) Option {
	return func(o *options) { o.host = &h }
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// New creates a client whose requests inherit defaults.
func New(defaults core.Config, opts ...Option) *Client {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.log == nil {
		o.log = logger.NewNop()
	}
	if o.registry == nil {
		host := adapter.DefaultHost()
		if o.host != nil {
			host = *o.host
		}
		o.registry = adapter.NewRegistry(host, adapter.WithLogger(o.log))
	}

	return &Client{
		Interceptors: newInterceptors(),
		defaults:     core.Merge(defaults),
		registry:     o.registry,
		log:          o.log.WithComponent("httpclient"),
	}
}

// Create returns a child client. Its defaults are this client's merged with
// cfg; it shares the adapter registry and starts with empty interceptors.
func (c *Client) Create(cfg core.Config) *Client {
	return &Client{
		Interceptors: newInterceptors(),
		defaults:     core.Merge(c.defaults, cfg),
		registry:     c.registry,
		log:          c.log,
	}
}

// Defaults returns a copy of the instance defaults.
func (c *Client) Defaults() core.Config {
	return *c.defaults.Clone()
}

// Registry returns the adapter registry.
func (c *Client) Registry() *adapter.Registry {
	return c.registry
}

// Request resolves cfg against the library and instance defaults and runs it
// through the request chain, the adapter and the response chain. ctx is the
// cancellation token unless cfg.Context is set.
//
// Both chains are frozen when the call starts; interceptors registered while
// it is in flight apply to later requests. Configuration errors
// (ERR_BAD_OPTION) are returned as is and never reach a rejection handler. Any
// other request interceptor failure skips dispatch and is offered to the
// response chain's rejection handlers.
func (c *Client) Request(ctx context.Context, cfg core.Config) (*core.Response, error) {
	resolved, err := core.Resolve(core.Defaults(), c.defaults, core.Config{Context: ctx}, cfg)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	start := time.Now()
	requestChain := c.Interceptors.Request.Snapshot()
	responseChain := c.Interceptors.Response.Snapshot()

	sent, err := requestChain.Run(resolved.Ctx(), resolved, nil, normalizeWith(resolved))
	if err == nil && sent == nil {
		err = core.NewConfigError("request interceptor returned no config", resolved)
	}

	current := resolved
	var resp *core.Response
	if err == nil {
		current = sent
		resp, err = c.send(sent)
	}
	if core.IsConfigError(err) {
		c.logOutcome(id, current, nil, err, start)
		return nil, err
	}

	settled := resp
	resp, err = responseChain.Run(current.Ctx(), resp, err, normalizeWith(current))
	if err != nil && (core.IsCancel(err) || core.IsTimeout(err)) {
		closeStream(settled)
	}
	c.logOutcome(id, current, resp, err, start)
	return resp, err
}

// closeStream releases a streamed body that will not reach the caller.
func closeStream(resp *core.Response) {
	if resp == nil {
		return
	}
	if rc, ok := resp.Data.(io.Closer); ok {
		_ = rc.Close()
	}
}

// send runs the dispatch stage: cancellation check, request transforms,
// adapter, status validation and response transforms.
func (c *Client) send(cfg *core.Config) (*core.Response, error) {
	if cerr := core.ContextError(cfg.Ctx(), cfg, nil); cerr != nil {
		return nil, cerr
	}

	if len(cfg.TransformRequest) > 0 {
		cfg = cfg.Clone()
		for _, t := range cfg.TransformRequest {
			body, err := t(cfg.Body, &cfg.Headers)
			if err != nil {
				return nil, core.From(err, "", cfg, nil, nil)
			}
			cfg.Body = body
		}
	}

	resp, err := c.registry.Dispatch(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.ValidateStatus != nil && !cfg.ValidateStatus(resp.Status) {
		msg := fmt.Sprintf("request failed with status code %d", resp.Status)
		return nil, core.NewError(core.CodeBadResponse, msg, cfg, resp.Request, resp)
	}

	for _, t := range cfg.TransformResponse {
		data, err := t(resp.Data, resp.Headers, resp.Status)
		if err != nil {
			return nil, core.From(err, core.CodeBadResponse, cfg, resp.Request, resp)
		}
		resp.Data = data
	}
	return resp, nil
}

func normalizeWith(cfg *core.Config) interceptor.Normalizer {
	return func(err error) *core.Error {
		if ce, ok := err.(*core.Error); ok && ce.Config == nil && cfg != nil {
			stamped := *ce
			stamped.Config = cfg
			return &stamped
		}
		return core.From(err, "", cfg, nil, nil)
	}
}

func (c *Client) logOutcome(id string, cfg *core.Config, resp *core.Response, err error, start time.Time) {
	if !c.log.DebugEnabled() {
		return
	}
	fields := logger.Fields(
		logger.FieldRequestID, id,
		logger.FieldMethod, cfg.Method,
		logger.FieldURL, cfg.URL,
	)
	for k, v := range logger.DurationFields(time.Since(start)) {
		fields[k] = v
	}
	if err != nil {
		var ce *core.Error
		if errors.As(err, &ce) && ce.Code != "" {
			fields[logger.FieldCode] = ce.Code.String()
		}
		c.log.Debug("request failed", logger.MergeWithError(fields, err))
		return
	}
	if resp != nil {
		fields[logger.FieldStatus] = resp.Status
	}
	c.log.Debug("request completed", fields)
}
