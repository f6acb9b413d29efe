package httpclient

import (
	"context"

	"github.com/kbukum/anyhttp/core"
)

// AuthType identifies the authentication method.
type AuthType int

const (
	// AuthNone disables authentication.
	AuthNone AuthType = iota
	// AuthBearer uses Bearer token authentication.
	AuthBearer
	// AuthBasic uses HTTP Basic authentication.
	AuthBasic
	// AuthAPIKey uses API key authentication (header or query parameter).
	AuthAPIKey
	// AuthCustom uses a custom authentication function.
	AuthCustom
)

const defaultAPIKeyName = "X-API-Key"

// AuthConfig configures request authentication. It is applied by a request
// interceptor, see (*Client).UseAuth, or per call with WithAuth.
type AuthConfig struct {
	// Type is the authentication method.
	Type AuthType
	// Token is the bearer token (AuthBearer). TokenFunc, when set, is called
	// per request instead.
	Token     string
	TokenFunc func(ctx context.Context) (string, error)
	// Username is the basic auth username (AuthBasic).
	Username string
	// Password is the basic auth password (AuthBasic).
	Password string
	// Key is the API key value (AuthAPIKey).
	Key string
	// In specifies where to place the API key: "header" (default) or "query" (AuthAPIKey).
	In string
	// Name is the header or query parameter name (AuthAPIKey). Defaults to "X-API-Key".
	Name string
	// Apply is a custom config modifier (AuthCustom).
	Apply func(*core.Config) error
}

// BearerAuth creates a bearer token auth config.
func BearerAuth(token string) *AuthConfig {
	return &AuthConfig{Type: AuthBearer, Token: token}
}

// BearerAuthFunc creates a bearer auth config whose token is fetched per request.
func BearerAuthFunc(fn func(ctx context.Context) (string, error)) *AuthConfig {
	return &AuthConfig{Type: AuthBearer, TokenFunc: fn}
}

// BasicAuth creates a basic auth config.
func BasicAuth(username, password string) *AuthConfig {
	return &AuthConfig{Type: AuthBasic, Username: username, Password: password}
}

// APIKeyAuth creates an API key auth config sent via header.
func APIKeyAuth(key string) *AuthConfig {
	return &AuthConfig{Type: AuthAPIKey, Key: key, In: "header", Name: defaultAPIKeyName}
}

// APIKeyAuthHeader creates an API key auth config with a custom header name.
func APIKeyAuthHeader(key, headerName string) *AuthConfig {
	return &AuthConfig{Type: AuthAPIKey, Key: key, In: "header", Name: headerName}
}

// APIKeyAuthQuery creates an API key auth config sent via query parameter.
func APIKeyAuthQuery(key, paramName string) *AuthConfig {
	return &AuthConfig{Type: AuthAPIKey, Key: key, In: "query", Name: paramName}
}

// CustomAuth creates a custom auth config with a config modifier function.
func CustomAuth(fn func(*core.Config) error) *AuthConfig {
	return &AuthConfig{Type: AuthCustom, Apply: fn}
}

// apply writes credentials into cfg.
func (a *AuthConfig) apply(ctx context.Context, cfg *core.Config) error {
	if a == nil {
		return nil
	}
	switch a.Type {
	case AuthBearer:
		token := a.Token
		if a.TokenFunc != nil {
			t, err := a.TokenFunc(ctx)
			if err != nil {
				return err
			}
			token = t
		}
		cfg.Headers.Set("Authorization", "Bearer "+token)
	case AuthBasic:
		cfg.Auth = &core.BasicAuth{Username: a.Username, Password: a.Password}
	case AuthAPIKey:
		name := a.Name
		if name == "" {
			name = defaultAPIKeyName
		}
		if a.In == "query" {
			cfg.Params.Set(name, a.Key)
		} else {
			cfg.Headers.Set(name, a.Key)
		}
	case AuthCustom:
		if a.Apply != nil {
			return a.Apply(cfg)
		}
	}
	return nil
}

// UseAuth registers a request interceptor applying a and returns its id.
// Auth failures from TokenFunc or Apply enter the rejection path.
func (c *Client) UseAuth(a *AuthConfig) int {
	return c.Interceptors.Request.Use(func(ctx context.Context, cfg *core.Config) (*core.Config, error) {
		out := cfg.Clone()
		if err := a.apply(ctx, out); err != nil {
			return nil, err
		}
		return out, nil
	}, nil)
}

// WithAuth applies static credentials to a single request. TokenFunc is
// called with context.Background.
func WithAuth(a *AuthConfig) RequestOption {
	return func(cfg *core.Config) {
		_ = a.apply(context.Background(), cfg)
	}
}
