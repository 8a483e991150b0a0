package store

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xcube-dev/xcube-cci/internal/catalog"
)

func TestTranslateCatalogErrMapsKnownSentinels(t *testing.T) {
	assert.ErrorIs(t, translateCatalogErr(catalog.ErrUnknownDataset), ErrNotFound)
	assert.ErrorIs(t, translateCatalogErr(catalog.ErrMetadataUnavailable), ErrMetadataUnavailable)
	assert.ErrorIs(t, translateCatalogErr(catalog.ErrGranuleUnavailable), ErrGranuleUnavailable)
}

func TestTranslateCatalogErrPreservesOriginal(t *testing.T) {
	wrapped := errors.New("boom")
	err := translateCatalogErr(catalog.ErrUnknownDataset)
	assert.NotErrorIs(t, err, wrapped)
	assert.ErrorIs(t, err, catalog.ErrUnknownDataset)
}

func TestTranslateCatalogErrPassesThroughUnknown(t *testing.T) {
	other := errors.New("some other failure")
	assert.Equal(t, other, translateCatalogErr(other))
}

func TestTranslateCatalogErrNil(t *testing.T) {
	assert.NoError(t, translateCatalogErr(nil))
}
