package adapter

import (
	"github.com/kbukum/anyhttp/core"
)

type fetchAdapter struct {
	client Doer
}

// NewFetch returns the fetch adapter backed by client.
func NewFetch(client Doer) Adapter {
	return &fetchAdapter{client: client}
}

func (a *fetchAdapter) Name() string { return NameFetch }

func (a *fetchAdapter) Dispatch(cfg *core.Config) (*core.Response, error) {
	req, err := newHTTPRequest(cfg)
	if err != nil {
		return nil, err
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, core.From(err, core.CodeNetwork, cfg, req, nil)
	}
	return settle(cfg, req, resp)
}
