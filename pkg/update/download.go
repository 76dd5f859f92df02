// pkg/update/download.go
package update

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/juju/ratelimit"
	"gopkg.in/retry.v1"

	"github.com/swpatch/swpatch/internal/logger"
	"github.com/swpatch/swpatch/internal/remote"
	"github.com/swpatch/swpatch/pkg/swpatch"
)

const (
	// ResumeMargin is re-fetched from the end of a partial download
	ResumeMargin = 10

	// BufferSize is the read size between cancellation checks
	BufferSize = 1 << 20
)

// resumeRetryStrategy bounds the restarts after a body read failure
var resumeRetryStrategy retry.Strategy = retry.LimitCount(4, retry.Exponential{
	Initial: time.Second,
	Factor:  2,
})

// DownloadProgress receives (received, total) bytes and the transfer rate.
// received counts the resumed prefix; total is -1 when the server does not
// announce a length.
type DownloadProgress func(received, total int64, bytesPerSecond int64)

// Downloader fetches a diff with resume support
type Downloader struct {
	Client    *remote.Client
	RateLimit int64 // bytes per second, 0 = unlimited
	Progress  DownloadProgress
	Retry     retry.Strategy
}

// ResumeOffset returns where a download resumes given the current size of
// the partial file
func ResumeOffset(size int64) int64 {
	if size >= ResumeMargin {
		return size - ResumeMargin
	}
	return 0
}

// Download fetches url into destination, resuming a previous partial file.
// It returns the final file size. On cancellation the partial file is kept.
func (d *Downloader) Download(ctx context.Context, url, destination string) (int64, error) {
	f, err := os.OpenFile(destination, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", destination, err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return 0, err
	}
	resume := ResumeOffset(fi.Size())

	strategy := d.Retry
	if strategy == nil {
		strategy = resumeRetryStrategy
	}

	var finalErr error
	for attempt := retry.Start(strategy, nil); attempt.Next(); {
		if err := ctx.Err(); err != nil {
			return resume, err
		}

		var again bool
		resume, again, finalErr = d.fetch(ctx, f, url, resume)
		if finalErr == nil {
			return resume, nil
		}
		if !again || ctx.Err() != nil {
			break
		}
		logger.Debugf("Download of %s interrupted at %d: %v", url, resume, finalErr)
	}
	return resume, finalErr
}

// fetch runs one ranged request. It returns the offset reached and whether
// the failure can be resumed.
func (d *Downloader) fetch(ctx context.Context, f *os.File, url string, resume int64) (int64, bool, error) {
	if err := f.Truncate(resume); err != nil {
		return resume, false, err
	}
	if _, err := f.Seek(resume, io.SeekStart); err != nil {
		return resume, false, err
	}

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return resume, false, err
	}
	if resume > 0 {
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", resume))
	}

	resp, err := d.Client.Do(ctx, req)
	if err != nil {
		return resume, false, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusPartialContent:
	case http.StatusOK:
		if resume > 0 {
			logger.Debugf("server does not support resume")
			if err := f.Truncate(0); err != nil {
				return resume, false, err
			}
			if _, err := f.Seek(0, io.SeekStart); err != nil {
				return resume, false, err
			}
			resume = 0
		}
	default:
		return resume, false, &DownloadError{Code: resp.StatusCode, URL: url}
	}

	total := int64(-1)
	if resp.ContentLength >= 0 {
		total = resume + resp.ContentLength
	}
	var body io.Reader = resp.Body
	if d.RateLimit > 0 {
		bucket := ratelimit.NewBucketWithRate(float64(d.RateLimit), 2*d.RateLimit)
		body = ratelimit.Reader(resp.Body, bucket)
	}

	received := resume
	start := time.Now()
	w := &swpatch.ProgressWriter{Writer: f, OnWrite: func(n int) {
		received += int64(n)
		if d.Progress != nil {
			d.Progress(received, total, bytesPerSecond(received-resume, time.Since(start)))
		}
	}}

	buf := make([]byte, BufferSize)
	for {
		if err := ctx.Err(); err != nil {
			return received, false, err
		}

		n, rerr := body.Read(buf)
		if n > 0 {
			if _, err := w.Write(buf[:n]); err != nil {
				return received, false, fmt.Errorf("write %s: %w", f.Name(), err)
			}
		}
		if errors.Is(rerr, io.EOF) {
			break
		}
		if rerr != nil {
			return received, true, rerr
		}
	}

	if resp.ContentLength >= 0 && received != total {
		return received, true, fmt.Errorf("short download: %d of %d bytes", received, total)
	}
	return received, false, nil
}

func bytesPerSecond(n int64, elapsed time.Duration) int64 {
	if secs := int64(elapsed / time.Second); secs > 0 {
		return n / secs
	}
	return n
}
