package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kbukum/anyhttp/adapter"
	"github.com/kbukum/anyhttp/core"
)

// stubClient returns a client whose only adapter is fn.
func stubClient(defaults core.Config, fn func(cfg *core.Config) (*core.Response, error)) *Client {
	reg := adapter.NewRegistry(adapter.Host{}, adapter.WithDescriptors(adapter.Descriptor{
		Name:    "stub",
		Adapter: adapter.Func{AdapterName: "stub", Fn: fn},
	}))
	return New(defaults, WithRegistry(reg))
}

func statusAdapter(status int, data any) func(cfg *core.Config) (*core.Response, error) {
	return func(cfg *core.Config) (*core.Response, error) {
		return core.NewResponse(status, core.Header{}, data, cfg), nil
	}
}

func echoServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"id":0,"name":"missing"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"method": r.Method,
			"path":   r.URL.Path,
			"query":  r.URL.RawQuery,
			"auth":   r.Header.Get("Authorization"),
			"apiKey": r.Header.Get("X-API-Key"),
			"type":   r.Header.Get("Content-Type"),
			"body":   string(body),
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_InterceptorOrder(t *testing.T) {
	var order []string
	c := stubClient(core.Config{}, func(cfg *core.Config) (*core.Response, error) {
		order = append(order, "dispatch")
		return core.NewResponse(200, core.Header{}, "ok", cfg), nil
	})

	for _, name := range []string{"A", "B"} {
		c.Interceptors.Request.Use(func(_ context.Context, cfg *core.Config) (*core.Config, error) {
			order = append(order, "req"+name)
			return cfg, nil
		}, nil)
		c.Interceptors.Response.Use(func(_ context.Context, r *core.Response) (*core.Response, error) {
			order = append(order, "resp"+name)
			return r, nil
		}, nil)
	}

	if _, err := c.Get(context.Background(), "/x"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "reqA,reqB,dispatch,respA,respB"
	if got := strings.Join(order, ","); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestClient_EjectedInterceptorIsSkipped(t *testing.T) {
	c := stubClient(core.Config{}, statusAdapter(200, "ok"))
	called := false
	id := c.Interceptors.Request.Use(func(_ context.Context, cfg *core.Config) (*core.Config, error) {
		called = true
		return cfg, nil
	}, nil)
	c.Interceptors.Request.Eject(id)

	if _, err := c.Get(context.Background(), "/x"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if called {
		t.Error("ejected interceptor ran")
	}
}

func TestClient_RequestInterceptorEditsConfig(t *testing.T) {
	var seen string
	c := stubClient(core.Config{}, func(cfg *core.Config) (*core.Response, error) {
		seen = cfg.Headers.Get("X-Trace")
		return core.NewResponse(200, core.Header{}, nil, cfg), nil
	})
	c.Interceptors.Request.Use(func(_ context.Context, cfg *core.Config) (*core.Config, error) {
		out := cfg.Clone()
		out.Headers.Set("X-Trace", "abc")
		return out, nil
	}, nil)

	if _, err := c.Get(context.Background(), "/x"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seen != "abc" {
		t.Errorf("expected adapter to see interceptor header, got %q", seen)
	}
}

func TestClient_RejectionRecovery(t *testing.T) {
	c := stubClient(core.Config{}, statusAdapter(http.StatusNotModified, nil))
	cached := core.NewResponse(200, core.Header{}, "cached", nil)
	c.Interceptors.Response.Use(nil, func(_ context.Context, err *core.Error) (*core.Response, error) {
		if err.Status() == http.StatusNotModified {
			return cached, nil
		}
		return nil, err
	})
	var after string
	c.Interceptors.Response.Use(func(_ context.Context, r *core.Response) (*core.Response, error) {
		after, _ = r.Data.(string)
		return r, nil
	}, nil)

	resp, err := c.Get(context.Background(), "/x")
	if err != nil {
		t.Fatalf("expected recovery, got %v", err)
	}
	if resp != cached {
		t.Error("expected the substituted response")
	}
	if after != "cached" {
		t.Errorf("expected forward path to resume after recovery, got %q", after)
	}
}

func TestClient_RequestInterceptorFailureSkipsDispatch(t *testing.T) {
	var dispatched atomic.Bool
	c := stubClient(core.Config{}, func(cfg *core.Config) (*core.Response, error) {
		dispatched.Store(true)
		return core.NewResponse(200, core.Header{}, nil, cfg), nil
	})
	c.Interceptors.Request.Use(func(context.Context, *core.Config) (*core.Config, error) {
		return nil, errors.New("token refresh failed")
	}, nil)

	var rejected *core.Error
	c.Interceptors.Response.Use(nil, func(_ context.Context, err *core.Error) (*core.Response, error) {
		rejected = err
		return nil, err
	})

	_, err := c.Get(context.Background(), "/x")
	if err == nil {
		t.Fatal("expected error")
	}
	if dispatched.Load() {
		t.Error("adapter ran after a request interceptor failed")
	}
	if rejected == nil || !strings.Contains(rejected.Message, "token refresh failed") {
		t.Errorf("expected response rejection handler to see the failure, got %v", rejected)
	}
	if !IsCanonicalError(err) {
		t.Errorf("expected canonical error, got %T", err)
	}
}

func TestClient_ConfigErrorBypassesInterceptors(t *testing.T) {
	c := stubClient(core.Config{}, statusAdapter(200, nil))
	called := false
	c.Interceptors.Request.Use(func(_ context.Context, cfg *core.Config) (*core.Config, error) {
		called = true
		return cfg, nil
	}, nil)
	c.Interceptors.Response.Use(nil, func(_ context.Context, err *core.Error) (*core.Response, error) {
		called = true
		return nil, err
	})

	tests := []struct {
		name string
		cfg  core.Config
	}{
		{"missing url", core.Config{}},
		{"bad method", core.Config{URL: "/x", Method: "FETCH"}},
		{"bad response type", core.Config{URL: "/x", ResponseType: "xml"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := c.Request(context.Background(), tc.cfg)
			if !core.IsConfigError(err) {
				t.Fatalf("expected ERR_BAD_OPTION, got %v", err)
			}
		})
	}
	if called {
		t.Error("interceptors ran for an invalid config")
	}
}

func TestClient_NilConfigFromInterceptor(t *testing.T) {
	c := stubClient(core.Config{}, statusAdapter(200, nil))
	c.Interceptors.Request.Use(func(context.Context, *core.Config) (*core.Config, error) {
		return nil, nil
	}, nil)
	if _, err := c.Get(context.Background(), "/x"); !core.IsConfigError(err) {
		t.Fatalf("expected ERR_BAD_OPTION, got %v", err)
	}
}

func TestClient_DispatchConfigErrorSkipsRejectionHandlers(t *testing.T) {
	tests := []struct {
		name string
		c    *Client
		opts []RequestOption
	}{
		{"no adapter for host", New(core.Config{}, WithHost(adapter.Host{})), nil},
		{"unknown adapter", stubClient(core.Config{}, statusAdapter(200, nil)), []RequestOption{WithAdapter("carrier-pigeon")}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			recovered := false
			tc.c.Interceptors.Response.Use(nil, func(context.Context, *core.Error) (*core.Response, error) {
				recovered = true
				return core.NewResponse(200, core.Header{}, "fallback", nil), nil
			})

			resp, err := tc.c.Get(context.Background(), "/x", tc.opts...)
			if !core.IsConfigError(err) {
				t.Fatalf("expected ERR_BAD_OPTION, got %v", err)
			}
			if resp != nil {
				t.Errorf("expected no response, got %+v", resp)
			}
			if recovered {
				t.Error("rejection handler ran for a configuration error")
			}
		})
	}
}

func TestClient_NilConfigSkipsRejectionHandlers(t *testing.T) {
	c := stubClient(core.Config{}, statusAdapter(200, nil))
	c.Interceptors.Request.Use(func(context.Context, *core.Config) (*core.Config, error) {
		return nil, nil
	}, nil)
	recovered := false
	c.Interceptors.Response.Use(nil, func(context.Context, *core.Error) (*core.Response, error) {
		recovered = true
		return core.NewResponse(200, core.Header{}, nil, nil), nil
	})

	if _, err := c.Get(context.Background(), "/x"); !core.IsConfigError(err) {
		t.Fatalf("expected ERR_BAD_OPTION, got %v", err)
	}
	if recovered {
		t.Error("rejection handler ran for a configuration error")
	}
}

func TestClient_InterceptorAddedInFlightAppliesToNextRequest(t *testing.T) {
	var c *Client
	var lateCalls atomic.Int32
	var added atomic.Bool
	c = stubClient(core.Config{}, func(cfg *core.Config) (*core.Response, error) {
		if !added.Swap(true) {
			c.Interceptors.Response.Use(func(_ context.Context, r *core.Response) (*core.Response, error) {
				lateCalls.Add(1)
				return r, nil
			}, nil)
		}
		return core.NewResponse(200, core.Header{}, "ok", cfg), nil
	})

	if _, err := c.Get(context.Background(), "/x"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := lateCalls.Load(); n != 0 {
		t.Fatalf("interceptor registered during dispatch ran for the same request (%d calls)", n)
	}

	if _, err := c.Get(context.Background(), "/x"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := lateCalls.Load(); n != 1 {
		t.Errorf("expected the new interceptor to run once on the next request, got %d", n)
	}
}

func TestClient_CancelBetweenRequestInterceptors(t *testing.T) {
	var dispatched, secondRan atomic.Bool
	c := stubClient(core.Config{}, func(cfg *core.Config) (*core.Response, error) {
		dispatched.Store(true)
		return core.NewResponse(200, core.Header{}, nil, cfg), nil
	})

	src := core.NewCancelSource(context.Background())
	c.Interceptors.Request.Use(func(_ context.Context, cfg *core.Config) (*core.Config, error) {
		src.Cancel("logged out")
		return cfg, nil
	}, nil)
	c.Interceptors.Request.Use(func(_ context.Context, cfg *core.Config) (*core.Config, error) {
		secondRan.Store(true)
		return cfg, nil
	}, nil)

	var seen *core.Error
	c.Interceptors.Response.Use(nil, func(_ context.Context, err *core.Error) (*core.Response, error) {
		seen = err
		return nil, err
	})

	_, err := c.Get(src.Context(), "/x")
	if !IsCancel(err) {
		t.Fatalf("expected ERR_CANCELED, got %v", err)
	}
	if !strings.Contains(err.Error(), "logged out") {
		t.Errorf("expected cancel reason in message, got %q", err.Error())
	}
	if secondRan.Load() {
		t.Error("request interceptor ran after cancellation")
	}
	if dispatched.Load() {
		t.Error("adapter ran after cancellation")
	}
	if seen == nil || !core.IsCancel(seen) || seen.Config == nil {
		t.Errorf("expected rejection handler to see the cancellation with its config, got %+v", seen)
	}
}

func TestClient_CancelDuringResponseChain(t *testing.T) {
	c := stubClient(core.Config{}, statusAdapter(200, "ok"))
	src := core.NewCancelSource(context.Background())

	c.Interceptors.Response.Use(func(_ context.Context, r *core.Response) (*core.Response, error) {
		src.Cancel("user navigated away")
		return r, nil
	}, nil)
	laterRan := false
	c.Interceptors.Response.Use(func(_ context.Context, r *core.Response) (*core.Response, error) {
		laterRan = true
		return r, nil
	}, nil)

	resp, err := c.Get(src.Context(), "/x")
	if !IsCancel(err) {
		t.Fatalf("expected ERR_CANCELED, got %v", err)
	}
	if resp != nil {
		t.Errorf("expected no response after cancellation, got %+v", resp)
	}
	if laterRan {
		t.Error("response interceptor ran after cancellation")
	}
}

func TestClient_CancelAfterLastResponseInterceptor(t *testing.T) {
	c := stubClient(core.Config{}, statusAdapter(200, "ok"))
	src := core.NewCancelSource(context.Background())
	c.Interceptors.Response.Use(func(_ context.Context, r *core.Response) (*core.Response, error) {
		src.Cancel("")
		return r, nil
	}, nil)

	resp, err := c.Get(src.Context(), "/x")
	if !IsCancel(err) || resp != nil {
		t.Fatalf("expected ERR_CANCELED and no response, got %v, %+v", err, resp)
	}
}

func TestClient_StatusValidation(t *testing.T) {
	c := stubClient(core.Config{}, statusAdapter(http.StatusNotFound, "nope"))

	_, err := c.Get(context.Background(), "/x")
	if !core.IsBadResponse(err) {
		t.Fatalf("expected ERR_BAD_RESPONSE, got %v", err)
	}
	var ce *core.Error
	errors.As(err, &ce)
	if ce.Response == nil || ce.Status() != http.StatusNotFound {
		t.Fatalf("expected error to carry the response, got %+v", ce.Response)
	}
	if ce.Message != "request failed with status code 404" {
		t.Errorf("unexpected message %q", ce.Message)
	}

	resp, err := c.Get(context.Background(), "/x", WithValidateStatus(func(int) bool { return true }))
	if err != nil {
		t.Fatalf("expected custom validator to accept 404, got %v", err)
	}
	if resp.Status != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.Status)
	}
}

func TestClient_Timeout(t *testing.T) {
	c := stubClient(core.Config{Timeout: 30 * time.Millisecond}, func(cfg *core.Config) (*core.Response, error) {
		<-cfg.Ctx().Done()
		return nil, cfg.Ctx().Err()
	})
	_, err := c.Get(context.Background(), "/slow")
	if !core.IsTimeout(err) {
		t.Fatalf("expected ERR_TIMEOUT, got %v", err)
	}

	_, err = c.Get(context.Background(), "/slow", WithTimeout(20*time.Millisecond), WithConfig(func(cfg *core.Config) {
		cfg.TimeoutMessage = "upstream too slow"
	}))
	if err == nil || !strings.Contains(err.Error(), "upstream too slow") {
		t.Errorf("expected custom timeout message, got %v", err)
	}
}

func TestClient_Cancel(t *testing.T) {
	started := make(chan struct{})
	c := stubClient(core.Config{}, func(cfg *core.Config) (*core.Response, error) {
		close(started)
		<-cfg.Ctx().Done()
		return nil, cfg.Ctx().Err()
	})

	src := core.NewCancelSource(context.Background())
	go func() {
		<-started
		src.Cancel("user navigated away")
	}()

	_, err := c.Get(src.Context(), "/x")
	if !IsCancel(err) {
		t.Fatalf("expected ERR_CANCELED, got %v", err)
	}
	if !strings.Contains(err.Error(), "user navigated away") {
		t.Errorf("expected cancel reason in message, got %q", err.Error())
	}
}

func TestClient_AlreadyCanceledSkipsDispatch(t *testing.T) {
	var dispatched atomic.Bool
	c := stubClient(core.Config{}, func(cfg *core.Config) (*core.Response, error) {
		dispatched.Store(true)
		return core.NewResponse(200, core.Header{}, nil, cfg), nil
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Get(ctx, "/x")
	if !IsCancel(err) {
		t.Fatalf("expected ERR_CANCELED, got %v", err)
	}
	if dispatched.Load() {
		t.Error("adapter ran for a canceled request")
	}
}

func TestClient_CreateInheritsDefaults(t *testing.T) {
	var seen *core.Config
	parent := stubClient(core.Config{BaseURL: "https://api.example.com", Headers: core.NewHeader("X-Parent", "1")},
		func(cfg *core.Config) (*core.Response, error) {
			seen = cfg
			return core.NewResponse(200, core.Header{}, nil, cfg), nil
		})
	parent.Interceptors.Request.Use(func(_ context.Context, cfg *core.Config) (*core.Config, error) {
		out := cfg.Clone()
		out.Headers.Set("X-Parent-Interceptor", "1")
		return out, nil
	}, nil)

	child := parent.Create(core.Config{Headers: core.NewHeader("X-Child", "1"), Timeout: time.Second})
	if child.Interceptors.Request.Len() != 0 || child.Interceptors.Response.Len() != 0 {
		t.Fatal("expected child to start with empty interceptors")
	}
	if child.Registry() != parent.Registry() {
		t.Error("expected child to share the adapter registry")
	}

	if _, err := child.Get(context.Background(), "/users"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seen.BaseURL != "https://api.example.com" || seen.Timeout != time.Second {
		t.Errorf("expected merged defaults, got base=%q timeout=%v", seen.BaseURL, seen.Timeout)
	}
	if !seen.Headers.Has("X-Parent") || !seen.Headers.Has("X-Child") {
		t.Errorf("expected both header layers, got %v", seen.Headers.Keys())
	}
	if seen.Headers.Has("X-Parent-Interceptor") {
		t.Error("parent interceptor leaked into child")
	}
	if parent.Defaults().Timeout != 0 {
		t.Error("child defaults leaked into parent")
	}
}

func TestClient_Verbs(t *testing.T) {
	srv := echoServer(t)
	c := New(core.Config{BaseURL: srv.URL})
	ctx := context.Background()

	tests := []struct {
		name   string
		call   func() (*core.Response, error)
		method string
		body   string
		ctype  string
	}{
		{"get", func() (*core.Response, error) { return c.Get(ctx, "/r") }, "GET", "", ""},
		{"delete", func() (*core.Response, error) { return c.Delete(ctx, "/r") }, "DELETE", "", ""},
		{"options", func() (*core.Response, error) { return c.Options(ctx, "/r") }, "OPTIONS", "", ""},
		{"post json", func() (*core.Response, error) { return c.Post(ctx, "/r", map[string]int{"a": 1}) }, "POST", `{"a":1}`, "application/json"},
		{"put text", func() (*core.Response, error) { return c.Put(ctx, "/r", "hello") }, "PUT", "hello", "text/plain; charset=utf-8"},
		{"patch form", func() (*core.Response, error) { return c.Patch(ctx, "/r", core.NewParams("a", "1")) }, "PATCH", "a=1", "application/x-www-form-urlencoded"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := tc.call()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			data, ok := resp.Data.(map[string]any)
			if !ok {
				t.Fatalf("expected decoded JSON, got %T", resp.Data)
			}
			if data["method"] != tc.method {
				t.Errorf("expected method %s, got %v", tc.method, data["method"])
			}
			if strings.TrimSpace(data["body"].(string)) != tc.body {
				t.Errorf("expected body %q, got %q", tc.body, data["body"])
			}
			if tc.ctype != "" && !strings.HasPrefix(data["type"].(string), tc.ctype) {
				t.Errorf("expected content type %q, got %q", tc.ctype, data["type"])
			}
		})
	}

	resp, err := c.Head(ctx, "/r")
	if err != nil || resp.Status != http.StatusOK {
		t.Errorf("expected HEAD 200, got %v %v", resp, err)
	}
}

func TestClient_RequestOptions(t *testing.T) {
	srv := echoServer(t)
	c := New(core.Config{BaseURL: "http://unused.invalid"})

	resp, err := c.Get(context.Background(), "/opts",
		WithBaseURL(srv.URL),
		WithParam("q", "go"),
		WithParam("tags", []string{"a", "b"}),
		WithHeader("Authorization", "Token x"),
		WithResponseType(core.ResponseText),
		WithAdapter(adapter.NameXHR),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	text, ok := resp.Data.(string)
	if !ok {
		t.Fatalf("expected text data, got %T", resp.Data)
	}
	var data map[string]any
	if err := json.Unmarshal([]byte(text), &data); err != nil {
		t.Fatalf("invalid echo body: %v", err)
	}
	if data["query"] != "q=go&tags=a&tags=b" {
		t.Errorf("unexpected query %q", data["query"])
	}
	if data["auth"] != "Token x" {
		t.Errorf("unexpected auth header %q", data["auth"])
	}
}

func TestClient_BasicAuthOption(t *testing.T) {
	srv := echoServer(t)
	c := New(core.Config{BaseURL: srv.URL})
	resp, err := c.Get(context.Background(), "/", WithBasicAuth("user", "pass"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data := resp.Data.(map[string]any)
	if data["auth"] != "Basic dXNlcjpwYXNz" {
		t.Errorf("unexpected auth header %q", data["auth"])
	}
}

func TestClient_Transforms(t *testing.T) {
	var sent string
	c := stubClient(core.Config{}, func(cfg *core.Config) (*core.Response, error) {
		sent, _ = cfg.Body.Value.(string)
		return core.NewResponse(200, core.Header{}, "raw", cfg), nil
	})

	resp, err := c.Post(context.Background(), "/x", "body", WithConfig(func(cfg *core.Config) {
		cfg.TransformRequest = []core.RequestTransformer{func(b core.Body, h *core.Header) (core.Body, error) {
			h.Set("X-Transformed", "1")
			return core.TextBody(strings.ToUpper(b.Value.(string))), nil
		}}
		cfg.TransformResponse = []core.ResponseTransformer{func(data any, _ core.Header, status int) (any, error) {
			return data.(string) + "!", nil
		}}
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sent != "BODY" {
		t.Errorf("expected transformed request body, got %q", sent)
	}
	if resp.Data != "raw!" {
		t.Errorf("expected transformed response data, got %v", resp.Data)
	}

	_, err = c.Get(context.Background(), "/x", WithConfig(func(cfg *core.Config) {
		cfg.TransformResponse = []core.ResponseTransformer{func(any, core.Header, int) (any, error) {
			return nil, errors.New("bad payload")
		}}
	}))
	if !core.IsBadResponse(err) {
		t.Errorf("expected ERR_BAD_RESPONSE from response transform, got %v", err)
	}
}

func TestClient_GetURI(t *testing.T) {
	c := New(core.Config{BaseURL: "https://api.example.com/v1/"})
	uri, err := c.GetURI(core.Config{URL: "/users", Params: core.NewParams("page", 2, "q", "a b")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if uri != "https://api.example.com/v1/users?page=2&q=a+b" && uri != "https://api.example.com/v1/users?page=2&q=a%20b" {
		t.Errorf("unexpected uri %q", uri)
	}
	if _, err := New(core.Config{}).GetURI(core.Config{}); !core.IsConfigError(err) {
		t.Errorf("expected config error, got %v", err)
	}
}

func TestAll(t *testing.T) {
	c := stubClient(core.Config{}, func(cfg *core.Config) (*core.Response, error) {
		if cfg.URL == "/slow" {
			time.Sleep(20 * time.Millisecond)
		}
		return core.NewResponse(200, core.Header{}, cfg.URL, cfg), nil
	})
	get := func(url string) Call {
		return func(ctx context.Context) (*core.Response, error) { return c.Get(ctx, url) }
	}

	resps, err := All(context.Background(), get("/slow"), get("/fast"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resps[0].Data != "/slow" || resps[1].Data != "/fast" {
		t.Errorf("expected argument order, got %v, %v", resps[0].Data, resps[1].Data)
	}

	joined := Spread(func(rs ...*core.Response) string {
		parts := make([]string, len(rs))
		for i, r := range rs {
			parts[i] = r.Data.(string)
		}
		return strings.Join(parts, "+")
	})(resps)
	if joined != "/slow+/fast" {
		t.Errorf("unexpected spread result %q", joined)
	}
}

func TestAll_FirstErrorCancelsRest(t *testing.T) {
	c := stubClient(core.Config{}, func(cfg *core.Config) (*core.Response, error) {
		if cfg.URL == "/fail" {
			return core.NewResponse(500, core.Header{}, nil, cfg), nil
		}
		<-cfg.Ctx().Done()
		return nil, cfg.Ctx().Err()
	})
	get := func(url string) Call {
		return func(ctx context.Context) (*core.Response, error) { return c.Get(ctx, url) }
	}

	resps, err := All(context.Background(), get("/hang"), get("/fail"))
	if !core.IsBadResponse(err) {
		t.Fatalf("expected first error to be returned, got %v", err)
	}
	if resps != nil {
		t.Error("expected no results on failure")
	}
}

type user struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func TestTypedHelpers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/users/1":
			_, _ = w.Write([]byte(`{"id":1,"name":"ada"}`))
		case "/users":
			var in user
			_ = json.NewDecoder(r.Body).Decode(&in)
			in.ID = 2
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(in)
		case "/broken":
			_, _ = w.Write([]byte(`{`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"id":0,"name":"missing"}`))
		}
	}))
	defer srv.Close()
	c := New(core.Config{BaseURL: srv.URL})
	ctx := context.Background()

	got, err := GetJSON[user](c, ctx, "/users/1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Data.Name != "ada" || got.Status != http.StatusOK {
		t.Errorf("unexpected typed response %+v", got)
	}

	created, err := PostJSON[user](c, ctx, "/users", user{Name: "grace"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.Data.ID != 2 || created.Data.Name != "grace" || created.Status != http.StatusCreated {
		t.Errorf("unexpected created response %+v", created.Data)
	}

	missing, err := GetJSON[user](c, ctx, "/nope")
	if !core.IsBadResponse(err) {
		t.Fatalf("expected ERR_BAD_RESPONSE, got %v", err)
	}
	if missing == nil || missing.Data.Name != "missing" {
		t.Errorf("expected decoded error body alongside the error, got %+v", missing)
	}

	if _, err := GetJSON[user](c, ctx, "/broken"); !core.IsBadResponse(err) {
		t.Errorf("expected decode failure to be ERR_BAD_RESPONSE, got %v", err)
	}
}

func TestBodyOf(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want core.BodyKind
	}{
		{"nil", nil, core.BodyNone},
		{"body", core.TextBody("x"), core.BodyText},
		{"reader", strings.NewReader("x"), core.BodyStream},
		{"bytes", []byte("x"), core.BodyBinary},
		{"string", "x", core.BodyText},
		{"params", core.NewParams("a", 1), core.BodyForm},
		{"multipart", core.Multipart{}, core.BodyMultipart},
		{"struct", user{}, core.BodyJSON},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := BodyOf(tc.in).Kind; got != tc.want {
				t.Errorf("expected %v, got %v", tc.want, got)
			}
		})
	}
}
