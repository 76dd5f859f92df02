// pkg/update/apply.go
package update

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/swpatch/swpatch/internal/logger"
	"github.com/swpatch/swpatch/internal/rtpatch"
	"github.com/swpatch/swpatch/internal/version"
)

// Job is one hop of the update chain
type Job struct {
	From     version.Version
	To       version.Version
	URL      string
	DiffPath string
	LogPath  string
}

// newJob places the diff in the game directory and its log in logDir
func newJob(from, to version.Version, baseURL, gamePath, logDir string) Job {
	name := to.FileName()
	return Job{
		From:     from,
		To:       to,
		URL:      baseURL + name,
		DiffPath: filepath.Join(gamePath, name),
		LogPath:  filepath.Join(logDir, name+".log"),
	}
}

// Apply runs engine on a downloaded job. On success the diff is removed and
// the client version record is advanced to job.To. Engine output goes to
// job.LogPath, followed by the result code.
func Apply(ctx context.Context, engine rtpatch.Engine, gamePath string, job Job, sink rtpatch.EventSink) error {
	if err := os.MkdirAll(filepath.Dir(job.LogPath), 0755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}
	if err := os.Remove(job.LogPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove old log: %w", err)
	}
	logFile, err := os.OpenFile(job.LogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer logFile.Close()

	logger.Noticef("RTPatchApply diffFile=[%s] path=[%s]", job.DiffPath, gamePath)
	d := rtpatch.NewDispatcher(ctx, sink, logFile)
	code := engine.Apply(rtpatch.Command{GameDir: gamePath, DiffPath: job.DiffPath}, d.Handle)
	logger.Debugf("RTPatchApply finished with result=[%d]", code)
	fmt.Fprintf(logFile, "Result=[%d]", code)

	err = rtpatch.Classify(code, rtpatch.Report{
		Message:  d.LastMessage(),
		LogPath:  job.LogPath,
		FileName: d.FileName(),
		Version:  job.From,
	})
	if errors.Is(err, rtpatch.ErrCancelled) {
		logger.Debugf("RTPatchApply cancelled Result=[%d] IsNormal=[%t]", code, code == rtpatch.ResultUserAbort)
		return err
	}
	if err != nil {
		return err
	}

	if err := os.Remove(job.DiffPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove diff: %w", err)
	}
	return version.WriteClient(gamePath, job.To)
}
