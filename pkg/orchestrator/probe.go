package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"syscall"
	"time"

	"github.com/arnavsurve/wfcapture/pkg/log"
	"github.com/arnavsurve/wfcapture/pkg/types"
)

// browserUserAgent makes the probe look like a normal browser; several app
// frontends reject requests with a default Go user agent.
const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// ProbeReason classifies why a reachability probe failed.
type ProbeReason string

const (
	ReasonTimeout           ProbeReason = "timeout"
	ReasonConnectionRefused ProbeReason = "connection_refused"
	ReasonBadStatus         ProbeReason = "bad_status"
	ReasonOther             ProbeReason = "other"
)

// ProbeError is a reachability failure with a classified reason and a
// human-readable remediation hint.
type ProbeError struct {
	URL    string
	Reason ProbeReason
	Hint   string
	Err    error
}

func (e *ProbeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Hint, e.Err)
	}
	return e.Hint
}

func (e *ProbeError) Unwrap() error { return e.Err }

// URLProber checks that an application URL is reachable before the browser
// agent is pointed at it. It issues a HEAD request first and falls back to
// a single GET when the server rejects HEAD; status codes in [200,400) are
// accepted. Redirects are followed.
type URLProber struct {
	client  *http.Client
	timeout time.Duration
	logger  types.Logger
}

func NewURLProber(timeout time.Duration, logger types.Logger) *URLProber {
	if logger == nil {
		logger = log.Nop()
	}
	return &URLProber{
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
		logger:  logger,
	}
}

func (p *URLProber) Probe(ctx context.Context, appURL string) error {
	p.logger.Info().Str("url", appURL).Msg("Validating application URL")

	status, err := p.request(ctx, http.MethodHead, appURL)
	if err != nil {
		// Some servers don't support HEAD; retry once with GET.
		p.logger.Debug().Err(err).Msg("HEAD probe failed, retrying with GET")
		status, err = p.request(ctx, http.MethodGet, appURL)
	}
	if err != nil {
		perr := classifyProbeError(appURL, err, p.timeout)
		p.logger.Error().Err(perr).Str("reason", string(perr.Reason)).Msg("URL validation failed")
		return perr
	}

	if status >= 200 && status < 400 {
		p.logger.Info().Int("status", status).Msg("URL is accessible")
		return nil
	}

	perr := &ProbeError{
		URL:    appURL,
		Reason: ReasonBadStatus,
		Hint:   fmt.Sprintf("URL returned status %d", status),
	}
	p.logger.Warn().Int("status", status).Msg("URL validation failed")
	return perr
}

func (p *URLProber) request(ctx context.Context, method, appURL string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, appURL, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return resp.StatusCode, nil
}

func classifyProbeError(appURL string, err error, timeout time.Duration) *ProbeError {
	var netErr net.Error
	switch {
	case errors.As(err, &netErr) && netErr.Timeout(), errors.Is(err, context.DeadlineExceeded):
		return &ProbeError{
			URL:    appURL,
			Reason: ReasonTimeout,
			Hint:   fmt.Sprintf("URL validation timed out after %s; the server might be slow or unreachable", timeout),
			Err:    err,
		}
	case errors.Is(err, syscall.ECONNREFUSED):
		return &ProbeError{
			URL:    appURL,
			Reason: ReasonConnectionRefused,
			Hint:   fmt.Sprintf("could not connect to %s; check that the URL is correct and the server is running", appURL),
			Err:    err,
		}
	default:
		return &ProbeError{
			URL:    appURL,
			Reason: ReasonOther,
			Hint:   "URL validation failed",
			Err:    err,
		}
	}
}
