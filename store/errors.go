package store

import (
	"errors"
	"fmt"

	"github.com/xcube-dev/xcube-cci/internal/catalog"
)

// The six error kinds a caller needs to distinguish, each a package-level
// sentinel so callers classify failures with errors.Is rather than type
// assertions.
var (
	ErrNotFound           = errors.New("store: not found")
	ErrMetadataUnavailable = errors.New("store: metadata unavailable")
	ErrGranuleUnavailable = errors.New("store: granule unavailable")
	ErrReadOnly           = errors.New("store: read-only")
	ErrInvalidArgument    = errors.New("store: invalid argument")
	ErrTransport          = errors.New("store: transport")
)

// translateCatalogErr maps a catalog-package sentinel onto the store's own,
// preserving the original error in the chain so both remain visible to
// errors.Is.
func translateCatalogErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, catalog.ErrUnknownDataset):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, catalog.ErrMetadataUnavailable):
		return fmt.Errorf("%w: %w", ErrMetadataUnavailable, err)
	case errors.Is(err, catalog.ErrGranuleUnavailable):
		return fmt.Errorf("%w: %w", ErrGranuleUnavailable, err)
	default:
		return err
	}
}
