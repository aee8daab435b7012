// Package logger builds the structured zap logger every flashkit component
// takes as a constructor dependency, the way sparseimage.New and kvs.New
// each accept a *zap.SugaredLogger rather than building their own.
package logger

import (
	"go.uber.org/zap"
)

// New builds a production zap logger scoped to service, returning the
// sugared form every flashkit constructor expects.
//
// service typically names the component instance ("sparseimage", "kvs",
// or a caller-chosen identifier for multi-instance setups) and is attached
// to every log line so multiple stores/engines in one process stay
// distinguishable in aggregated logs.
func New(service string) *zap.SugaredLogger {
	base, err := zap.NewProduction()
	if err != nil {
		// zap.NewProduction only fails if the default config can't build
		// its sink, which does not happen with the stock production config.
		base = zap.NewNop()
	}
	return base.Sugar().Named(service)
}

// Nop returns a logger that discards everything, for tests and callers that
// don't want flashkit's internal logging.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
