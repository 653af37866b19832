package freight

import "context"

// RateProvider is the port implemented by rate marketplace adapters.
type RateProvider interface {
	// Name returns the provider code, e.g. "cargofive".
	Name() string

	// Search runs one rate search and returns canonical rates.
	// Errors are ErrRateLimited, ErrInvalidCredentials or a wrapped
	// transport failure.
	Search(ctx context.Context, q Query) ([]Rate, error)
}
