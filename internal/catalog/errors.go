package catalog

import "errors"

// ErrUnknownDataset is returned by Resolver.EnsureKnown when no OpenSearch
// feature advertises the requested DRS id.
var ErrUnknownDataset = errors.New("catalog: unknown dataset id")

// ErrMetadataUnavailable reports that a dataset's first granule's DDS/DAS
// was empty or unparseable.
var ErrMetadataUnavailable = errors.New("catalog: metadata unavailable")

// ErrGranuleUnavailable reports that a feature carries no Opendap link.
var ErrGranuleUnavailable = errors.New("catalog: granule unavailable")
