package observability

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
)

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
// Blocking stages (transfer, unpack, compiler process) observe the cancellation.
func SignalContext(parent context.Context, logger logrus.FieldLogger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			logger.WithField("signal", sig.String()).Warn("Received signal, aborting")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
