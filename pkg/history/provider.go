package history

import (
	"context"
	"net/http"
	"strings"

	"github.com/matzehuels/layershare/pkg/errors"
	"github.com/matzehuels/layershare/pkg/layer"
)

// Provider kinds accepted by [New].
const (
	KindDaemon   = "daemon"
	KindRegistry = "registry"
	KindArchive  = "archive"
)

// Kinds lists the provider kinds in display order.
var Kinds = []string{KindDaemon, KindRegistry, KindArchive}

// Provider fetches the build history of one image reference.
type Provider interface {
	// History returns the records of ref, oldest first. An image without
	// history returns an empty slice and no error.
	History(ctx context.Context, ref string) ([]layer.Record, error)

	// Name identifies the provider in logs and cache keys.
	Name() string
}

// TagLister is implemented by providers that can enumerate the tags of a
// repository.
type TagLister interface {
	Tags(ctx context.Context, repository string) ([]string, error)
}

// Options configures providers created by [New].
type Options struct {
	// Platform selects one image of a multi-platform index, as
	// "os/arch[/variant]". Empty selects the registry default.
	Platform string

	// Insecure allows plain HTTP registries.
	Insecure bool

	// Transport overrides the registry HTTP transport.
	Transport http.RoundTripper

	// UserAgent is sent with registry requests.
	UserAgent string
}

// New returns the provider of the given kind.
func New(kind string, opts Options) (Provider, error) {
	switch kind {
	case KindDaemon:
		return NewDaemonProvider()
	case KindRegistry:
		return NewRegistryProvider(opts)
	case KindArchive:
		return NewArchiveProvider(), nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidProvider,
			"invalid provider: %q (must be one of: %s)", kind, strings.Join(Kinds, ", "))
	}
}

// Reference joins a repository and a version into an image reference.
// For archives the repository is the tarball path.
func Reference(repository, version string) string {
	if version == "" {
		return repository
	}
	return repository + ":" + version
}

// Close releases provider resources when the provider holds any.
func Close(p Provider) error {
	if c, ok := p.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
