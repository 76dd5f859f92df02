// pkg/update/update.go
package update

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/swpatch/swpatch/internal/logger"
	"github.com/swpatch/swpatch/internal/version"
)

// Update brings the client in opts.GamePath to the server version one hop at
// a time: resolve the next version, download its diff, apply it. Applied
// hops are kept when a later one fails; the next run resumes from the new
// client version.
func Update(ctx context.Context, opts *Options, progressCb ProgressCallback) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	out := opts.ProgressWriter
	if out == nil || opts.Quiet {
		out = io.Discard
	}

	info, err := FetchServerInfo(ctx, opts.Client, opts.ServerInfo)
	if err != nil {
		return nil, fmt.Errorf("load server info: %w", err)
	}
	client, err := version.ReadClient(opts.GamePath)
	if err != nil {
		return nil, err
	}

	result := &Result{From: client, Current: client, Server: info.Version}
	emit(progressCb, ProgressEvent{Type: EventStart})
	logger.Noticef("Client version=[%s] server version=[%s]", client, info.Version)

	resolver := &Resolver{Prober: opts.Client, BaseURL: info.RepositoryURL(opts.RepositoryPath)}

	if opts.DryRun {
		jobs, err := resolver.Chain(ctx, client, info.Version)
		for _, j := range jobs {
			result.Jobs = append(result.Jobs, newJob(j.From, j.To, resolver.BaseURL, opts.GamePath, opts.LogDir))
			fmt.Fprintf(out, "%s -> %s  %s\n", j.From, j.To, j.URL)
		}
		return result, err
	}

	downloader := &Downloader{Client: opts.Client, RateLimit: opts.RateLimit}

	for result.Current.Less(info.Version) {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		from := result.Current
		next, err := resolver.Next(ctx, from, info.Version)
		if err != nil {
			return result, &HopError{From: from, Err: err}
		}
		job := newJob(from, next, resolver.BaseURL, opts.GamePath, opts.LogDir)
		result.Jobs = append(result.Jobs, job)
		emit(progressCb, ProgressEvent{Type: EventHopStart, Job: job})

		if err := runJob(ctx, opts, downloader, job, result, progressCb, out); err != nil {
			emit(progressCb, ProgressEvent{Type: EventError, Job: job})
			return result, &HopError{From: job.From, To: job.To, Err: err}
		}

		result.Current = next
		result.HopsApplied++
		emit(progressCb, ProgressEvent{Type: EventHopComplete, Job: job})
	}

	emit(progressCb, ProgressEvent{Type: EventComplete})
	return result, nil
}

func runJob(ctx context.Context, opts *Options, d *Downloader, job Job, result *Result, progressCb ProgressCallback, out io.Writer) error {
	logger.Noticef("Downloading url=[%s] path=[%s]", job.URL, job.DiffPath)
	if opts.Verbose {
		fmt.Fprintf(out, "Downloading %s\n", job.URL)
	}

	var last int64
	if fi, err := os.Stat(job.DiffPath); err == nil {
		last = ResumeOffset(fi.Size())
	}
	d.Progress = func(received, total, bps int64) {
		fraction := -1.0
		if total > 0 {
			fraction = float64(received) / float64(total)
		}
		if received > last {
			result.BytesDownloaded += uint64(received - last)
		}
		last = received
		emit(progressCb, ProgressEvent{
			Type:     EventDownloadProgress,
			Job:      job,
			Current:  received,
			Total:    total,
			Fraction: fraction,
			Speed:    bps,
		})
	}

	size, err := d.Download(ctx, job.URL, job.DiffPath)
	if err != nil {
		return fmt.Errorf("download: %w", err)
	}
	emit(progressCb, ProgressEvent{Type: EventDownloadComplete, Job: job, Current: size, Total: size, Fraction: 1})

	if err := ctx.Err(); err != nil {
		return err
	}

	if opts.Verbose {
		fmt.Fprintf(out, "Applying %s\n", job.To.FileName())
	}
	emit(progressCb, ProgressEvent{Type: EventPatchStart, Job: job, Fraction: -1})
	return Apply(ctx, opts.Engine, opts.GamePath, job, &eventSink{cb: progressCb, job: job})
}
