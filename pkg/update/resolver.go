// pkg/update/resolver.go
package update

import (
	"context"
	"fmt"

	"github.com/swpatch/swpatch/internal/logger"
	"github.com/swpatch/swpatch/internal/version"
)

// Prober checks whether a diff exists on the repository
type Prober interface {
	Exists(ctx context.Context, url string) (bool, error)
}

// Resolver finds the hops between a client and a server version
type Resolver struct {
	Prober  Prober
	BaseURL string
}

// Next returns the version following from. Revision, build and minor bumps
// are probed in that order; the major bump needs no probe. Candidates past
// server are never probed.
func (r *Resolver) Next(ctx context.Context, from, server version.Version) (version.Version, error) {
	for _, candidate := range []version.Version{from.BumpRevision(), from.BumpBuild(), from.BumpMinor()} {
		if server.Less(candidate) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return version.Version{}, err
		}

		ok, err := r.Prober.Exists(ctx, r.url(candidate))
		if err != nil {
			return version.Version{}, fmt.Errorf("probe %s: %w", candidate, err)
		}
		logger.Debugf("Probe version=[%s] exists=[%t]", candidate, ok)
		if ok {
			return candidate, nil
		}
	}

	major := from.BumpMajor()
	if server.Less(major) {
		return version.Version{}, fmt.Errorf("%w after %s (server %s)", ErrVersionChainExhausted, from, server)
	}
	return major, nil
}

// Chain resolves every hop from client to server
func (r *Resolver) Chain(ctx context.Context, client, server version.Version) ([]Job, error) {
	var jobs []Job
	for cur := client; cur.Less(server); {
		next, err := r.Next(ctx, cur, server)
		if err != nil {
			return jobs, err
		}
		jobs = append(jobs, Job{From: cur, To: next, URL: r.url(next)})
		cur = next
	}
	return jobs, nil
}

func (r *Resolver) url(v version.Version) string {
	return r.BaseURL + v.FileName()
}
