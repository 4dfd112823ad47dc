package fdp

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/datavisiting/fdp-explorer/pkg/logging"
	"github.com/datavisiting/fdp-explorer/pkg/rdf"
	"github.com/datavisiting/fdp-explorer/pkg/retry"
)

const (
	// DefaultTimeout is the per-request timeout when none is configured.
	DefaultTimeout = 30 * time.Second

	// AcceptHeader lists the RDF serializations we can parse, Turtle preferred.
	AcceptHeader = "text/turtle, application/ld+json;q=0.9, application/rdf+xml;q=0.8"

	maxBodyBytes = 32 << 20
)

// Fetch outcomes reported to an Observer.
const (
	OutcomeOK = "ok"
)

// Observer receives one call per completed fetch. outcome is OutcomeOK or the
// ErrorKind of the failure.
type Observer interface {
	ObserveFetch(outcome string, format rdf.Format, duration time.Duration)
}

// Options configures a Fetcher (and the Client built on it).
type Options struct {
	Timeout       time.Duration // Per request; DefaultTimeout when zero
	SkipTLSVerify bool          // Accept any server certificate
	MaxRetries    int           // Extra attempts for retryable failures
	RateLimit     float64       // Requests per second across all hosts; 0 is unlimited
	Observer      Observer      // Optional
}

// insecureWarning makes sure the disabled-verification warning is logged once
// per process, not once per fetcher or request.
var insecureWarning sync.Once

// Fetcher performs content-negotiated HTTP GETs and parses the response into
// an RDF graph. It holds no state beyond its configuration.
type Fetcher struct {
	httpClient *http.Client
	decoder    *rdf.Decoder
	retryCfg   *retry.Config
	limiter    *rate.Limiter // nil when unlimited
	observer   Observer
	logger     *zap.Logger
}

// NewFetcher creates a metadata fetcher.
func NewFetcher(opts Options, logger *zap.Logger) *Fetcher {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if opts.SkipTLSVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in via config
		insecureWarning.Do(func() {
			logger.Warn("TLS certificate verification is disabled for FAIR Data Point requests")
		})
	}

	httpClient := &http.Client{Timeout: timeout, Transport: transport}

	retryCfg := retry.DefaultConfig()
	retryCfg.MaxRetries = max(opts.MaxRetries, 0)

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}

	return &Fetcher{
		httpClient: httpClient,
		decoder:    rdf.NewDecoder(httpClient),
		retryCfg:   retryCfg,
		limiter:    limiter,
		observer:   opts.Observer,
		logger:     logger.Named("fetcher"),
	}
}

// Fetch retrieves uri and parses the body into a graph. Every failure is a
// *FetchError.
func (f *Fetcher) Fetch(ctx context.Context, uri string) (*rdf.Graph, error) {
	graph, err := retry.Do(ctx, f.retryCfg, func() (*rdf.Graph, error) {
		return f.fetchOnce(ctx, uri)
	})
	if err != nil {
		var fe *FetchError
		if !errors.As(err, &fe) {
			// Context cancelled between attempts.
			return nil, newConnectionError(uri, err)
		}
		return nil, fe
	}
	return graph, nil
}

func (f *Fetcher) fetchOnce(ctx context.Context, uri string) (*rdf.Graph, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, classifyTransportError(uri, err)
		}
	}

	start := time.Now()
	format := rdf.Turtle

	graph, err := func() (*rdf.Graph, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
		if err != nil {
			return nil, newConnectionError(uri, err)
		}
		req.Header.Set("Accept", AcceptHeader)

		resp, err := f.httpClient.Do(req)
		if err != nil {
			return nil, classifyTransportError(uri, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, newStatusError(uri, resp.StatusCode)
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if err != nil {
			return nil, classifyTransportError(uri, err)
		}

		format = rdf.FormatFromContentType(resp.Header.Get("Content-Type"))
		g, err := f.decoder.Decode(bytes.NewReader(body), format, uri)
		if err != nil {
			f.logger.Debug("Unparsable metadata body",
				zap.String("uri", logging.SanitizeURL(uri)),
				zap.String("format", string(format)),
				zap.String("body", logging.TruncateString(string(body), 200)))
			return nil, newParseError(uri, err)
		}
		return g, nil
	}()

	elapsed := time.Since(start)
	if f.observer != nil {
		outcome := OutcomeOK
		if err != nil {
			outcome = string(KindOf(err))
		}
		f.observer.ObserveFetch(outcome, format, elapsed)
	}

	if err != nil {
		f.logger.Debug("Fetch failed",
			zap.String("uri", logging.SanitizeURL(uri)),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
		return nil, err
	}

	f.logger.Debug("Fetched metadata",
		zap.String("uri", logging.SanitizeURL(uri)),
		zap.String("format", string(format)),
		zap.Int("triples", graph.Len()),
		zap.Duration("elapsed", elapsed))
	return graph, nil
}

func classifyTransportError(uri string, err error) *FetchError {
	if errors.Is(err, context.DeadlineExceeded) {
		return newTimeoutError(uri, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return newTimeoutError(uri, err)
	}
	return newConnectionError(uri, fmt.Errorf("request failed: %w", err))
}
