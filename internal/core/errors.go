package core

import "errors"

var (
	// ErrInvalidQuantity marks a negative or non-numeric transaction or consumption amount.
	ErrInvalidQuantity = errors.New("invalid quantity")

	// ErrInvalidBalanceRecord marks a missing or negative fabric-colour balance.
	ErrInvalidBalanceRecord = errors.New("invalid balance record")

	// ErrMissingCatalogMetadata marks fabric metadata that is absent or unusable
	// where no configured fallback applies.
	ErrMissingCatalogMetadata = errors.New("missing catalog metadata")
)
