package freight

import (
	"errors"

	"github.com/erp/seafreight/internal/domain/shared"
)

// ---------------------------------------------------------------------------
// Provider Errors
// ---------------------------------------------------------------------------

var (
	// ErrConfiguration is returned when a provider is constructed without
	// the credentials or endpoint it needs.
	ErrConfiguration = errors.New("freight: provider configuration error")
	// ErrInvalidCredentials is returned when the provider rejects the API key (401/403).
	ErrInvalidCredentials = errors.New("freight: provider rejected credentials")
	// ErrRateLimited is returned when the provider answers 429.
	ErrRateLimited = errors.New("freight: provider rate limited")
	// ErrProviderRequestFailed is returned for any other non-2xx provider answer.
	ErrProviderRequestFailed = errors.New("freight: provider request failed")
	// ErrProviderDisabled is returned when the integration is switched off.
	ErrProviderDisabled = errors.New("freight: provider disabled")
)

// ---------------------------------------------------------------------------
// Query Errors
// ---------------------------------------------------------------------------

var (
	ErrQueryMissingSourcePort      = shared.NewFieldError(shared.CodeInvalidQuery, "sourcePort", "source port is required")
	ErrQueryMissingDestinationPort = shared.NewFieldError(shared.CodeInvalidQuery, "destinationPort", "destination port is required")
	ErrQueryNoProducts             = shared.NewFieldError(shared.CodeInvalidQuery, "products", "at least one product is required")
	ErrQueryInvalidQuantity        = shared.NewFieldError(shared.CodeInvalidQuery, "products.quantity", "product quantity must be positive")
	ErrQueryInvalidDateWindow      = shared.NewFieldError(shared.CodeInvalidQuery, "dateEnd", "dateEnd must not be before dateBegin")
)
