// Package httpclient is the request orchestrator: it merges layered
// configuration, runs request and response interceptors, and dispatches
// through whichever adapter the host supports.
//
// Every failure is a *core.Error with one of the canonical codes, so a
// single errors.As covers config mistakes, transport failures, timeouts,
// cancellation and rejected status codes.
//
// # Basic Usage
//
//	client := httpclient.New(core.Config{
//	    BaseURL: "https://api.example.com",
//	    Timeout: 10 * time.Second,
//	})
//	client.UseAuth(httpclient.BearerAuth("my-token"))
//
//	resp, err := client.Get(ctx, "/users/123")
//	if httpclient.IsCancel(err) {
//	    return
//	}
//
// # Typed Helpers
//
//	user, err := httpclient.GetJSON[User](client, ctx, "/users/123")
//
// # Interceptors
//
//	id := client.Interceptors.Response.Use(nil, func(ctx context.Context, err *core.Error) (*core.Response, error) {
//	    if err.Status() == http.StatusNotModified {
//	        return cached, nil
//	    }
//	    return nil, err
//	})
//	defer client.Interceptors.Response.Eject(id)
package httpclient
