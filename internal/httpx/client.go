// Package httpx implements the bounded-retry GET client the rest of the
// store uses to talk to OpenSearch, OPeNDAP and the ODD/descxml endpoints.
package httpx

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog"
)

// Client is a GET-only HTTP client with bounded retry/backoff semantics:
// 5xx and transport errors retry immediately, 429 sleeps for
// max(Retry-After, random·ceiling) and grows the ceiling geometrically
// (capped at MaxBackoffMs), and any other non-200 status fails the call.
// A Client has no shared mutable state across calls: the backoff ceiling
// lives on the stack of a single Get call, matching the upstream contract
// that retries are call-local.
type Client struct {
	HTTPClient   *http.Client
	MaxRetries   int     // default 200
	MaxBackoffMs float64 // default 40
	BackoffBase  float64 // default 1.001
	Logger       zerolog.Logger
}

// NewClient builds a Client with the portal's documented defaults.
func NewClient(logger zerolog.Logger) *Client {
	return &Client{
		HTTPClient:   http.DefaultClient,
		MaxRetries:   200,
		MaxBackoffMs: 40,
		BackoffBase:  1.001,
		Logger:       logger,
	}
}

// ErrTransport is wrapped around every terminal network/HTTP failure Get
// returns (retries exhausted, or a non-retryable status), so callers can
// recognise a failed request with errors.Is.
var ErrTransport = fmt.Errorf("httpx: request failed")

// Get issues a GET request to url, retrying according to the Client's
// backoff policy, and returns the response body on a 200 OK.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	ceiling := 1.0 // ms; grows geometrically on each 429, capped at MaxBackoffMs

	op := func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("%w: building request for %s: %w", ErrTransport, url, err))
		}
		resp, err := c.HTTPClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrTransport, url, err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			body, err := io.ReadAll(resp.Body)
			if err != nil {
				return nil, fmt.Errorf("%w: reading body from %s: %w", ErrTransport, url, err)
			}
			return body, nil

		case resp.StatusCode == http.StatusTooManyRequests:
			wait := c.retryAfterWait(resp.Header.Get("Retry-After"), ceiling)
			ceiling *= c.backoffBase()
			if ceiling > c.maxBackoffMs() {
				ceiling = c.maxBackoffMs()
			}
			c.Logger.Debug().Str("url", url).Dur("wait", wait).Msg("rate limited, retrying")
			return nil, fmt.Errorf("%w: %s: rate limited: %w", ErrTransport, url, &backoff.RetryAfterError{Duration: wait})

		case resp.StatusCode >= 500:
			return nil, fmt.Errorf("%w: %s: server error %d", ErrTransport, url, resp.StatusCode)

		default:
			return nil, backoff.Permanent(fmt.Errorf("%w: %s: unexpected status %d", ErrTransport, url, resp.StatusCode))
		}
	}

	body, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(backoff.NewConstantBackOff(0)),
		backoff.WithMaxTries(uint(c.maxRetries())+1),
	)
	if err != nil {
		return nil, err
	}
	return body, nil
}

// retryAfterWait implements max(Retry-After, random·ceiling) in
// milliseconds, converted to a time.Duration. The portal's Retry-After
// value is itself milliseconds, not seconds, matching the ms-scaled
// backoff ceiling.
func (c *Client) retryAfterWait(retryAfterHeader string, ceilingMs float64) time.Duration {
	var retryAfterMs float64
	if retryAfterHeader != "" {
		if ms, err := strconv.Atoi(retryAfterHeader); err == nil {
			retryAfterMs = float64(ms)
		}
	}
	jitterMs := rand.Float64() * ceilingMs
	waitMs := retryAfterMs
	if jitterMs > waitMs {
		waitMs = jitterMs
	}
	return time.Duration(waitMs * float64(time.Millisecond))
}

func (c *Client) maxRetries() int {
	if c.MaxRetries > 0 {
		return c.MaxRetries
	}
	return 200
}

func (c *Client) maxBackoffMs() float64 {
	if c.MaxBackoffMs > 0 {
		return c.MaxBackoffMs
	}
	return 40
}

func (c *Client) backoffBase() float64 {
	if c.BackoffBase > 1 {
		return c.BackoffBase
	}
	return 1.001
}
