package adapter

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/kbukum/anyhttp/core"
	"github.com/kbukum/anyhttp/logger"
)

// Registry selects adapters by name or host capability and dispatches
// through them. It is safe for concurrent use.
type Registry struct {
	mu          sync.RWMutex
	caps        Capabilities
	descriptors []Descriptor
	def         int
	log         *logger.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithDescriptors replaces the built-in descriptors.
func WithDescriptors(ds ...Descriptor) Option {
	return func(r *Registry) { r.descriptors = append([]Descriptor(nil), ds...) }
}

// WithLogger sets the registry logger.
func WithLogger(l *logger.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.log = l
		}
	}
}

// NewRegistry probes host once and memoizes the default adapter: the first
// descriptor, in priority order, whose capability is present.
func NewRegistry(host Host, opts ...Option) *Registry {
	r := &Registry{
		caps:        Probe(host),
		descriptors: Builtins(host),
		log:         logger.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = r.log.WithComponent("adapter")
	r.def = r.pick()

	fields := logger.Fields("fetch", r.caps.Fetch, "xhr", r.caps.XHR, "socket", r.caps.Socket)
	if r.def >= 0 {
		fields[logger.FieldAdapter] = r.descriptors[r.def].Name
	}
	r.log.Debug("host probed", fields)
	return r
}

// pick returns the index of the highest priority available descriptor, or -1.
func (r *Registry) pick() int {
	for i := range r.descriptors {
		if r.descriptors[i].available(r.caps) {
			return i
		}
	}
	return -1
}

// Register appends d at the lowest priority. Names must be unique.
func (r *Registry) Register(d Descriptor) error {
	if d.Name == "" || d.Adapter == nil {
		return fmt.Errorf("adapter descriptor requires a name and an adapter")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.descriptors {
		if existing.Name == d.Name {
			return fmt.Errorf("adapter %q already registered", d.Name)
		}
	}
	r.descriptors = append(r.descriptors, d)
	if r.def < 0 {
		r.def = r.pick()
	}
	return nil
}

// Capabilities returns the memoized probe result.
func (r *Registry) Capabilities() Capabilities { return r.caps }

// Names lists registered adapters in priority order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.descriptors))
	for i, d := range r.descriptors {
		names[i] = d.Name
	}
	return names
}

// Default returns the memoized default adapter.
func (r *Registry) Default() (Adapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.def < 0 {
		return nil, false
	}
	return r.descriptors[r.def].Adapter, true
}

// Select resolves the adapter for cfg. An explicit name must be registered
// and available; otherwise the default is used.
func (r *Registry) Select(cfg *core.Config) (Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if cfg.Adapter != "" {
		for _, d := range r.descriptors {
			if d.Name != cfg.Adapter {
				continue
			}
			if !d.available(r.caps) {
				return nil, core.NewConfigError(fmt.Sprintf("adapter %q is not supported by this host", d.Name), cfg)
			}
			return d.Adapter, nil
		}
		return nil, core.NewConfigError(fmt.Sprintf("unknown adapter %q", cfg.Adapter), cfg)
	}
	if r.def < 0 {
		return nil, core.NewConfigError("no adapter available", cfg)
	}
	return r.descriptors[r.def].Adapter, nil
}

type result struct {
	resp *core.Response
	err  error
}

// Dispatch selects an adapter and races it against cfg's context and
// timeout. Whichever settles first wins; a losing adapter result is
// discarded and any streamed body closed. The returned response carries cfg.
func (r *Registry) Dispatch(cfg *core.Config) (*core.Response, error) {
	a, err := r.Select(cfg)
	if err != nil {
		return nil, err
	}

	parent := cfg.Ctx()
	if cerr := core.ContextError(parent, cfg, nil); cerr != nil {
		return nil, cerr
	}

	ctx, cancel := context.WithCancelCause(parent)
	var timer *time.Timer
	if cfg.Timeout > 0 {
		cause := core.NewTimeoutCause(cfg)
		timer = time.AfterFunc(cfg.Timeout, func() { cancel(cause) })
	}
	release := func() {
		if timer != nil {
			timer.Stop()
		}
		cancel(nil)
	}

	call := *cfg
	call.Context = ctx

	start := time.Now()
	done := make(chan result, 1)
	go func() {
		resp, err := a.Dispatch(&call)
		done <- result{resp: resp, err: err}
	}()

	select {
	case res := <-done:
		if cerr := core.ContextError(ctx, cfg, nil); cerr != nil {
			discard(res)
			release()
			r.logFailure(a, cfg, cerr, start)
			return nil, cerr
		}
		if res.err != nil {
			release()
			ce := core.From(res.err, core.CodeNetwork, cfg, nil, nil)
			if ce.Config == &call {
				ce.Config = cfg
			}
			r.logFailure(a, cfg, ce, start)
			return nil, ce
		}
		if res.resp == nil {
			release()
			return nil, core.NewError(core.CodeNetwork, fmt.Sprintf("adapter %q returned no response", a.Name()), cfg, nil, nil)
		}
		res.resp.Config = cfg
		if rc, ok := res.resp.Data.(io.ReadCloser); ok && cfg.ResponseType == core.ResponseStream {
			if timer != nil {
				timer.Stop()
			}
			res.resp.Data = &releasingBody{ReadCloser: rc, release: func() { cancel(nil) }}
		} else {
			release()
		}
		r.log.Debug("adapter settled", logger.Fields(
			logger.FieldAdapter, a.Name(),
			logger.FieldStatus, res.resp.Status,
			logger.FieldDuration, time.Since(start).Milliseconds(),
		))
		return res.resp, nil

	case <-ctx.Done():
		cerr := core.ContextError(ctx, cfg, nil)
		release()
		go func() { discard(<-done) }()
		r.logFailure(a, cfg, cerr, start)
		return nil, cerr
	}
}

func (r *Registry) logFailure(a Adapter, cfg *core.Config, err *core.Error, start time.Time) {
	r.log.Debug("adapter failed", logger.Fields(
		logger.FieldAdapter, a.Name(),
		logger.FieldURL, cfg.URL,
		logger.FieldCode, err.Code.String(),
		logger.FieldDuration, time.Since(start).Milliseconds(),
	))
}

// discard drops a result that lost the race.
func discard(res result) {
	if res.resp != nil {
		_ = res.resp.Close()
	}
}

// releasingBody cancels the dispatch context once a streamed body is closed.
type releasingBody struct {
	io.ReadCloser
	once    sync.Once
	release func()
}

func (b *releasingBody) Close() error {
	err := b.ReadCloser.Close()
	b.once.Do(b.release)
	return err
}
