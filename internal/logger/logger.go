package logger

import (
	"errors"
	"log"
	"syscall"

	"go.uber.org/zap"
)

// Initialize installs a zap logger as the process-wide global and returns a
// cleanup func that flushes it.
func Initialize(production bool) (*zap.Logger, func()) {
	var (
		logger *zap.Logger
		err    error
	)
	if production {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	zap.ReplaceGlobals(logger)

	cleanup := func() {
		if err := logger.Sync(); err != nil && !isIgnorableSyncError(err) {
			log.Printf("Failed to sync logger: %v\n", err)
		}
	}

	return logger, cleanup
}

// stdout/stderr syncs fail with EINVAL or ENOTTY on most terminals.
func isIgnorableSyncError(err error) bool {
	return errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.ENOTTY)
}
