// Package remote fetches the small resources the patcher depends on (password
// list, version descriptor) and probes the patch repository for files.
package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"gopkg.in/retry.v1"

	"github.com/swpatch/swpatch/internal/logger"
)

// UserAgent is sent with every request
const UserAgent = "Mozilla/4.0 (compatible; MSIE 8.0;)"

// DefaultRetryStrategy retries transient transport failures
var DefaultRetryStrategy retry.Strategy = retry.LimitCount(4, retry.LimitTime(30*time.Second,
	retry.Exponential{
		Initial: 500 * time.Millisecond,
		Factor:  2,
	},
))

// StatusError reports an unexpected HTTP status
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d for %s", e.Code, e.URL)
}

// Client wraps an http.Client with retries
type Client struct {
	HTTP  *http.Client
	Retry retry.Strategy
}

// New returns a client using http.DefaultClient and DefaultRetryStrategy
func New() *Client {
	return &Client{HTTP: http.DefaultClient, Retry: DefaultRetryStrategy}
}

func (c *Client) httpClient() *http.Client {
	if c == nil || c.HTTP == nil {
		return http.DefaultClient
	}
	return c.HTTP
}

func (c *Client) strategy() retry.Strategy {
	if c == nil || c.Retry == nil {
		return DefaultRetryStrategy
	}
	return c.Retry
}

// Do sends req, retrying on transport errors and 5xx answers. The caller
// closes the returned body.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	req = req.WithContext(ctx)
	req.Header.Set("User-Agent", UserAgent)

	var lastErr error
	for attempt := retry.Start(c.strategy(), nil); attempt.Next(); {
		if attempt.Count() > 1 {
			logger.Debugf("Retrying %s %s, attempt %d", req.Method, req.URL, attempt.Count())
		}

		resp, err := c.httpClient().Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			continue
		}
		if resp.StatusCode >= 500 && attempt.More() {
			resp.Body.Close()
			lastErr = &StatusError{Code: resp.StatusCode, URL: req.URL.String()}
			continue
		}
		return resp, nil
	}
	return nil, lastErr
}

// Exists probes url with a HEAD request. 404 is a negative answer; any
// other failure is returned as an error.
func (c *Client) Exists(ctx context.Context, url string) (bool, error) {
	req, err := http.NewRequest(http.MethodHead, url, nil)
	if err != nil {
		return false, err
	}

	resp, err := c.Do(ctx, req)
	if err != nil {
		return false, fmt.Errorf("probe %s: %w", url, err)
	}
	resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, &StatusError{Code: resp.StatusCode, URL: url}
	}
}

// Fetch returns the content of source, which is either an http(s) URL or a
// local file path.
func (c *Client) Fetch(ctx context.Context, source string) ([]byte, error) {
	if !isURL(source) {
		data, err := os.ReadFile(source)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", source, err)
		}
		return data, nil
	}

	req, err := http.NewRequest(http.MethodGet, source, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", source, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Code: resp.StatusCode, URL: source}
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", source, err)
	}
	return data, nil
}

// IsNotFound reports whether err is a 404 answer
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == http.StatusNotFound
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
