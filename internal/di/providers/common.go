package providers

import "time"

const (
	// shutdownTimeout is the maximum time to wait for graceful shutdown of services.
	shutdownTimeout = 30 * time.Second

	// initialLoadTimeout bounds the first catalog build at startup.
	initialLoadTimeout = 5 * time.Minute
)
