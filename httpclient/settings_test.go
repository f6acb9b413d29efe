package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kbukum/anyhttp/config"
	"github.com/kbukum/anyhttp/logger"
)

func TestNewFromSettings(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte(r.Header.Get("X-Client")))
	}))
	defer srv.Close()

	s := &config.Settings{
		Name:         "billing",
		BaseURL:      srv.URL,
		Timeout:      2 * time.Second,
		Headers:      map[string]string{"X-Client": "billing"},
		ResponseType: "text",
		TLS:          &config.TLSConfig{SkipVerify: true},
		Logging:      logger.Config{Level: "disabled", Format: "json"},
	}
	c, err := NewFromSettings(s)
	if err != nil {
		t.Fatalf("NewFromSettings failed: %v", err)
	}
	if c.Defaults().Timeout != 2*time.Second {
		t.Errorf("expected settings timeout, got %v", c.Defaults().Timeout)
	}

	resp, err := c.Get(context.Background(), "/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Data != "billing" {
		t.Errorf("expected settings header to be sent, got %v", resp.Data)
	}
}

func TestNewFromSettings_Invalid(t *testing.T) {
	if _, err := NewFromSettings(&config.Settings{Adapter: "carrier-pigeon"}); err == nil {
		t.Error("expected validation error")
	}
	if _, err := NewFromSettings(&config.Settings{TLS: &config.TLSConfig{CAFile: "/nonexistent/ca.pem"}}); err == nil {
		t.Error("expected TLS error")
	}
}
