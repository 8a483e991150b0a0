// Package config holds the store's recognised options (retry/backoff
// tuning, upstream endpoint overrides, the cube-readiness filter) plus the
// ambient logging and fetch-observability hooks every component accepts.
package config

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/xcube-dev/xcube-cci/internal/opensearch"
)

// FetchEvent is the "(var_name, chunk_index, time_range, duration,
// exception?)" tuple the chunk fetcher emits after every fetch attempt,
// successful or not.
type FetchEvent struct {
	Variable   string
	ChunkIndex []int
	TimeStart  time.Time
	TimeEnd    time.Time
	Duration   time.Duration
	Err        error
}

// FetchObserver receives one FetchEvent per chunk fetch attempt.
// Implementations must be safe for concurrent use and re-entrant with
// respect to further reads they may themselves trigger.
type FetchObserver interface {
	OnFetch(FetchEvent)
}

type noopObserver struct{}

func (noopObserver) OnFetch(FetchEvent) {}

// NoopObserver is the default, silent FetchObserver.
var NoopObserver FetchObserver = noopObserver{}

// Config is the set of recognised store options plus the ambient
// logging/observer hooks every component accepts.
type Config struct {
	EndpointURL            string
	EndpointDescriptionURL string
	EnableWarnings         bool
	NumRetries             int
	RetryBackoffMaxMs      float64
	RetryBackoffBase       float64
	OnlyConsiderCubeReady  bool

	Logger   zerolog.Logger
	Observer FetchObserver
}

// Default returns a Config carrying every documented default.
func Default() Config {
	return Config{
		EndpointURL:            opensearch.DefaultEndpoint,
		EndpointDescriptionURL: opensearch.DefaultDescriptionURL,
		EnableWarnings:         false,
		NumRetries:             200,
		RetryBackoffMaxMs:      40,
		RetryBackoffBase:       1.001,
		OnlyConsiderCubeReady:  false,
		Logger:                 zerolog.Nop(),
		Observer:               NoopObserver,
	}
}

// Option configures a Config. The store takes functional options rather
// than a config-file format: CLI and file plumbing belong to whatever
// application embeds this module, not to the module itself.
type Option func(*Config)

func WithEndpoint(url string) Option { return func(c *Config) { c.EndpointURL = url } }

func WithEndpointDescriptionURL(url string) Option {
	return func(c *Config) { c.EndpointDescriptionURL = url }
}

func WithEnableWarnings(v bool) Option { return func(c *Config) { c.EnableWarnings = v } }

func WithNumRetries(n int) Option { return func(c *Config) { c.NumRetries = n } }

func WithRetryBackoffMaxMs(ms float64) Option { return func(c *Config) { c.RetryBackoffMaxMs = ms } }

func WithRetryBackoffBase(base float64) Option { return func(c *Config) { c.RetryBackoffBase = base } }

func WithOnlyConsiderCubeReady(v bool) Option {
	return func(c *Config) { c.OnlyConsiderCubeReady = v }
}

func WithLogger(l zerolog.Logger) Option { return func(c *Config) { c.Logger = l } }

func WithObserver(o FetchObserver) Option { return func(c *Config) { c.Observer = o } }

// New builds a Config from Default with opts applied in order.
func New(opts ...Option) Config {
	c := Default()
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// OpenParams is the per-dataset selection a caller passes to store.Open.
type OpenParams struct {
	VariableNames []string // nil means "every data variable"
	TimeStart     time.Time
	TimeEnd       time.Time
	HasBBox       bool
	BBoxMinX      float64
	BBoxMinY      float64
	BBoxMaxX      float64
	BBoxMaxY      float64
}
