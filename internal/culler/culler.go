// Package culler finds bookmarks whose targets no longer resolve.
package culler

import (
	"context"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nikbrunner/places/internal/location"
	"github.com/nikbrunner/places/internal/metadata"
	"github.com/nikbrunner/places/internal/model"
)

// Status represents whether a bookmark target resolves.
type Status int

const (
	Resolved    Status = iota // target exists (or answered 2xx/3xx)
	Missing                   // target does not exist (or answered 404/410)
	Remote                    // remote target that is not probed
	Unreachable               // web target that timed out or failed
)

// String returns a string representation of the status.
func (s Status) String() string {
	switch s {
	case Resolved:
		return "ok"
	case Missing:
		return "missing"
	case Remote:
		return "remote"
	case Unreachable:
		return "unreachable"
	default:
		return "unknown"
	}
}

// Result holds the check result for a single entry.
type Result struct {
	Index      int
	Entry      model.Entry
	Status     Status
	StatusCode int    // HTTP status code (0 if not a web target)
	Error      string // Error message for unreachable targets
}

// ProgressFunc is called after each target is checked.
// completed is the number of targets checked so far, total is the total count.
type ProgressFunc func(completed, total int)

// Options tune a check run.
type Options struct {
	Concurrency int           // 0 = 8
	Timeout     time.Duration // per web request, 0 = 5s
	OnProgress  ProgressFunc
}

// CheckTargets checks all entries concurrently and returns one result per
// entry, in input order. Native targets are looked up through provider, web
// targets (http, https, dav, davs) are probed with HEAD and then GET. Other
// remote targets are reported as Remote.
func CheckTargets(ctx context.Context, entries []model.Entry, provider metadata.Provider, opts Options) ([]Result, error) {
	if len(entries) == 0 {
		return nil, nil
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 8
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}

	// Suppress noisy HTTP client logging (protocol errors, unsolicited responses, etc.)
	originalOutput := log.Writer()
	log.SetOutput(io.Discard)
	defer log.SetOutput(originalOutput)

	client := &http.Client{
		Timeout: opts.Timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			// Follow redirects but limit to 10
			if len(via) >= 10 {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}

	results := make([]Result, len(entries))

	var progressMu sync.Mutex
	completed := 0

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)
	for i := range entries {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = checkEntry(ctx, client, provider, entries[i])
			results[i].Index = i

			if opts.OnProgress != nil {
				progressMu.Lock()
				completed++
				opts.OnProgress(completed, len(entries))
				progressMu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func checkEntry(ctx context.Context, client *http.Client, provider metadata.Provider, e model.Entry) Result {
	result := Result{Entry: e}

	loc, err := location.Parse(e.URI)
	if err != nil {
		result.Status = Missing
		result.Error = "Invalid location"
		return result
	}

	if webURL, ok := webTarget(loc); ok {
		return checkURL(ctx, client, webURL, result)
	}

	if !loc.IsNative() {
		result.Status = Remote
		return result
	}

	var info metadata.Info
	if provider != nil {
		info = provider.Lookup(loc)
	}
	switch {
	case info.Remote:
		result.Status = Remote
	case info.Exists:
		result.Status = Resolved
	default:
		result.Status = Missing
	}
	return result
}

// webTarget maps WebDAV schemes onto their HTTP equivalents.
func webTarget(loc location.Location) (string, bool) {
	s := loc.String()
	switch loc.Scheme() {
	case "http", "https":
		return s, true
	case "dav":
		return "http" + strings.TrimPrefix(s, "dav"), true
	case "davs":
		return "https" + strings.TrimPrefix(s, "davs"), true
	default:
		return "", false
	}
}

// checkURL checks a single URL and fills in result.
func checkURL(ctx context.Context, client *http.Client, rawURL string, result Result) Result {
	// Try HEAD first (faster, less bandwidth)
	resp, err := do(ctx, client, http.MethodHead, rawURL)
	if err != nil {
		// HEAD failed, try GET as fallback (some servers don't support HEAD)
		resp, err = do(ctx, client, http.MethodGet, rawURL)
		if err != nil {
			result.Status = Unreachable
			result.Error = normalizeError(err.Error())
			return result
		}
	}
	defer resp.Body.Close()

	result.StatusCode = resp.StatusCode

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 400:
		result.Status = Resolved
	case resp.StatusCode == 404 || resp.StatusCode == 410:
		result.Status = Missing
	default:
		// Other errors (500, 403, etc.) - could be temporary or auth-required
		result.Status = Unreachable
		result.Error = http.StatusText(resp.StatusCode)
	}

	return result
}

func do(ctx context.Context, client *http.Client, method, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, err
	}
	return client.Do(req)
}

// normalizeError simplifies verbose error messages into readable categories.
func normalizeError(errStr string) string {
	lower := strings.ToLower(errStr)

	switch {
	case strings.Contains(lower, "no such host"):
		return "DNS failure"
	case strings.Contains(lower, "context deadline exceeded"),
		strings.Contains(lower, "timeout"):
		return "Timeout"
	case strings.Contains(lower, "connection refused"):
		return "Connection refused"
	case strings.Contains(lower, "certificate"):
		return "TLS/certificate error"
	case strings.Contains(lower, "network is unreachable"):
		return "Network unreachable"
	case strings.Contains(lower, "tls:"):
		return "TLS error"
	default:
		return errStr
	}
}
