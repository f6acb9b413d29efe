package httpclient

import (
	"github.com/kbukum/anyhttp/config"
	"github.com/kbukum/anyhttp/logger"
)

// NewFromSettings builds a client from loaded settings: TLS is applied to the
// host transports and the logger follows s.Logging. opts are applied after
// the settings-derived ones.
func NewFromSettings(s *config.Settings, opts ...Option) (*Client, error) {
	s.ApplyDefaults()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	host, err := s.Host()
	if err != nil {
		return nil, err
	}
	base := []Option{WithHost(host), WithLogger(logger.New(&s.Logging, s.Name))}
	return New(s.ClientConfig(), append(base, opts...)...), nil
}
