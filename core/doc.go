// Package core holds the transport-independent pieces of anyhttp: the request
// configuration model and its layered merge, URL and parameter building, the
// canonical Response, and the canonical Error every failure is normalized into.
//
// # Merging
//
//	cfg, err := core.Resolve(core.Defaults(), instance, core.Config{
//	    Method: http.MethodGet,
//	    URL:    "/users",
//	    Params: core.NewParams("page", 2),
//	})
//
// # Errors
//
//	e := core.From(err, core.CodeNetwork, cfg, nil, nil)
//	if core.IsTimeout(e) { ... }
package core
