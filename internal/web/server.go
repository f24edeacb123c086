package web

import "context"

// Server is the lifecycle shape shared by the HTTP server and test doubles.
type Server interface {
	Start(ctx context.Context) error
	Stop() error
}
