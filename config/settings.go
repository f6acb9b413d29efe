package config

import (
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/kbukum/anyhttp/adapter"
	"github.com/kbukum/anyhttp/core"
	"github.com/kbukum/anyhttp/logger"
)

const defaultName = "anyhttp"

// Settings are the file and environment configurable client defaults.
type Settings struct {
	Name             string            `yaml:"name" mapstructure:"name"`
	BaseURL          string            `yaml:"base_url" mapstructure:"base_url" validate:"omitempty,url"`
	Timeout          time.Duration     `yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`
	Headers          map[string]string `yaml:"headers" mapstructure:"headers"`
	Adapter          string            `yaml:"adapter" mapstructure:"adapter" validate:"omitempty,oneof=fetch xhr http"`
	ResponseType     string            `yaml:"response_type" mapstructure:"response_type" validate:"omitempty,oneof=json text bytes stream"`
	MaxRedirects     *int              `yaml:"max_redirects" mapstructure:"max_redirects" validate:"omitempty,gte=0"`
	MaxContentLength int64             `yaml:"max_content_length" mapstructure:"max_content_length"`
	WithCredentials  bool              `yaml:"with_credentials" mapstructure:"with_credentials"`
	TLS              *TLSConfig        `yaml:"tls" mapstructure:"tls"`
	Telemetry        *TelemetryConfig  `yaml:"telemetry" mapstructure:"telemetry"`
	Logging          logger.Config     `yaml:"logging" mapstructure:"logging"`
}

// ApplyDefaults fills in zero-value fields.
func (s *Settings) ApplyDefaults() {
	if s.Name == "" {
		s.Name = defaultName
	}
	s.Logging.ApplyDefaults()
	s.Telemetry.ApplyDefaults()
}

// Validate checks struct tags, TLS consistency and logging settings.
func (s *Settings) Validate() error {
	if err := validateStruct(s); err != nil {
		return err
	}
	if err := s.TLS.Validate(); err != nil {
		return err
	}
	if err := s.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	return nil
}

// ClientConfig converts s into instance defaults for httpclient.New.
func (s *Settings) ClientConfig() core.Config {
	cfg := core.Config{
		BaseURL:          s.BaseURL,
		Timeout:          s.Timeout,
		Adapter:          s.Adapter,
		ResponseType:     core.ResponseType(s.ResponseType),
		MaxContentLength: s.MaxContentLength,
	}
	if s.MaxRedirects != nil {
		n := *s.MaxRedirects
		cfg.MaxRedirects = &n
	}
	if s.WithCredentials {
		yes := true
		cfg.WithCredentials = &yes
	}

	keys := make([]string, 0, len(s.Headers))
	for k := range s.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		cfg.Headers.Set(k, s.Headers[k])
	}
	return cfg
}

// Host returns adapter.DefaultHost with the TLS settings applied to every
// primitive.
func (s *Settings) Host() (adapter.Host, error) {
	host := adapter.DefaultHost()
	tlsCfg, err := s.TLS.Build()
	if err != nil {
		return adapter.Host{}, err
	}
	if tlsCfg == nil {
		return host, nil
	}
	if t, ok := host.Transport.(*http.Transport); ok {
		t.TLSClientConfig = tlsCfg
	}
	host.TLS = tlsCfg
	return host, nil
}
