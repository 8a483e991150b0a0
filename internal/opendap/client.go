package opendap

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Getter issues a single GET and returns the response body.
type Getter func(ctx context.Context, url string) ([]byte, error)

// Client is the OPeNDAP transport: it fetches and parses DDS/DAS schema
// documents and decodes `.dods` hyperslab payloads.
type Client struct {
	Get Getter
}

// NewClient builds a Client backed by get.
func NewClient(get Getter) *Client {
	return &Client{Get: get}
}

// Open builds a Dataset's typed schema by requesting both `.dds` and
// `.das` in parallel and merging the attribute table into
// the variable tree.
func (c *Client) Open(ctx context.Context, baseURL string) (*Dataset, error) {
	ds, _, err := OpenWithAttributes(ctx, c.Get, baseURL)
	return ds, err
}

// OpenWithAttributes is Open, additionally returning the raw DAS table
// (keyed by variable name, including the pseudo-variable "NC_GLOBAL"
// carrying the dataset's global attributes) for callers that need
// attributes AttachDAS doesn't copy onto any declared variable — the
// catalog aggregator's global-attribute merge is the only
// such caller.
func OpenWithAttributes(ctx context.Context, get Getter, baseURL string) (*Dataset, map[string]map[string]string, error) {
	var ddsBody, dasBody []byte

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		body, err := get(gctx, baseURL+".dds")
		if err != nil {
			return fmt.Errorf("opendap: fetching dds: %w", err)
		}
		ddsBody = body
		return nil
	})
	g.Go(func() error {
		body, err := get(gctx, baseURL+".das")
		if err != nil {
			return fmt.Errorf("opendap: fetching das: %w", err)
		}
		dasBody = body
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	ds, err := ParseDDS(ddsBody)
	if err != nil {
		return nil, nil, err
	}
	das := ParseDAS(dasBody)
	AttachDAS(ds, das)
	return ds, das, nil
}

// Slice is a half-open [Start, Stop) index range for one axis of a
// hyperslab request, Go-slice style; it is rendered on the wire as
// OPeNDAP's inclusive-both-ends "[start:1:stop-1]".
type Slice struct {
	Start int
	Stop  int
}

// Read fetches the hyperslab of variable identified by quotedID (its DDS
// name, percent-encoded if necessary) over slices, and returns the
// variable's packed data in row-major order as raw little-endian bytes.
func (c *Client) Read(ctx context.Context, baseURL, quotedID string, dtype string, slices []Slice) ([]byte, error) {
	url := baseURL + ".dods?" + quotedID + hyperslabSuffix(slices)
	body, err := c.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("opendap: reading hyperslab: %w", err)
	}
	return DecodeDODSResponse(body, dtype)
}

// hyperslabSuffix renders half-open slices as OPeNDAP's inclusive
// "[start:1:stop-1]" syntax per axis.
func hyperslabSuffix(slices []Slice) string {
	var b []byte
	for _, s := range slices {
		b = append(b, []byte(fmt.Sprintf("[%d:1:%d]", s.Start, s.Stop-1))...)
	}
	return string(b)
}
