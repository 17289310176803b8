package main

import (
	htmlstatehttp "github.com/fwojciec/htmlstate/http"
)

// Run executes the serve command. It blocks until the context is canceled.
func (c *ServeCmd) Run(deps *Dependencies) error {
	srv := htmlstatehttp.NewServer(deps.Converter,
		htmlstatehttp.WithLogger(deps.Logger),
		htmlstatehttp.WithMaxBodyBytes(c.MaxBody),
		htmlstatehttp.WithRequestTimeout(c.Timeout),
		htmlstatehttp.WithRateLimit(c.Rate, c.Burst),
	)
	return srv.ListenAndServe(deps.Ctx, c.Addr)
}
