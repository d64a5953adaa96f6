package history

import (
	"context"
	"sort"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"

	"github.com/matzehuels/layershare/pkg/errors"
	"github.com/matzehuels/layershare/pkg/layer"
)

// dockerAPI is the subset of the engine client the daemon provider uses.
type dockerAPI interface {
	ImageHistory(ctx context.Context, imageID string) ([]image.HistoryResponseItem, error)
	ImageList(ctx context.Context, options types.ImageListOptions) ([]types.ImageSummary, error)
	Close() error
}

// DaemonProvider reads image histories from the local Docker engine.
// The engine is located through DOCKER_HOST and related variables.
type DaemonProvider struct {
	api dockerAPI
}

// NewDaemonProvider connects to the Docker engine configured in the
// environment. The API version is negotiated on first use.
func NewDaemonProvider() (*DaemonProvider, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDaemonUnavailable, err, "docker client")
	}
	return &DaemonProvider{api: cli}, nil
}

// Name returns "daemon".
func (p *DaemonProvider) Name() string { return KindDaemon }

// History returns the history of ref. The engine lists the newest step
// first; records are returned oldest first.
func (p *DaemonProvider) History(ctx context.Context, ref string) ([]layer.Record, error) {
	items, err := p.api.ImageHistory(ctx, ref)
	if err != nil {
		return nil, daemonError(err, "history of %s", ref)
	}

	records := make([]layer.Record, len(items))
	for i, it := range items {
		records[len(items)-1-i] = layer.Record{
			ID:        it.ID,
			Size:      it.Size,
			Comment:   it.Comment,
			Created:   it.Created,
			CreatedBy: it.CreatedBy,
			Tags:      it.Tags,
		}
	}
	return records, nil
}

// Tags lists the tags of local images of repository, sorted.
func (p *DaemonProvider) Tags(ctx context.Context, repository string) ([]string, error) {
	images, err := p.api.ImageList(ctx, types.ImageListOptions{
		Filters: filters.NewArgs(filters.Arg("reference", repository)),
	})
	if err != nil {
		return nil, daemonError(err, "images of %s", repository)
	}

	prefix := repository + ":"
	seen := make(map[string]bool)
	var tags []string
	for _, img := range images {
		for _, rt := range img.RepoTags {
			if len(rt) <= len(prefix) || rt[:len(prefix)] != prefix {
				continue
			}
			if t := rt[len(prefix):]; !seen[t] {
				seen[t] = true
				tags = append(tags, t)
			}
		}
	}
	sort.Strings(tags)
	return tags, nil
}

// Close closes the engine client.
func (p *DaemonProvider) Close() error {
	return p.api.Close()
}

func daemonError(err error, format string, args ...any) error {
	switch {
	case client.IsErrNotFound(err):
		return errors.Wrap(errors.ErrCodeImageNotFound, err, format, args...)
	case client.IsErrConnectionFailed(err):
		return errors.Wrap(errors.ErrCodeDaemonUnavailable, err, format, args...)
	}
	return errors.Wrap(errors.ErrCodeInternal, err, format, args...)
}

var (
	_ Provider  = (*DaemonProvider)(nil)
	_ TagLister = (*DaemonProvider)(nil)
)
