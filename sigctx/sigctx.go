// Package sigctx provides a root context that is canceled by SIGINT or
// SIGTERM.
package sigctx

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// New returns a context canceled on interrupt or termination signals. A
// second signal kills the process immediately.
func New() context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	sigs := make(chan os.Signal, 2)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigs
		cancel()
		<-sigs
		os.Exit(1)
	}()

	return ctx
}
