package history

import (
	"context"
	stderrors "errors"
	"net/http"
	"sort"

	"github.com/google/go-containerregistry/pkg/authn"
	"github.com/google/go-containerregistry/pkg/name"
	v1 "github.com/google/go-containerregistry/pkg/v1"
	"github.com/google/go-containerregistry/pkg/v1/remote"
	"github.com/google/go-containerregistry/pkg/v1/remote/transport"

	"github.com/matzehuels/layershare/pkg/cache"
	"github.com/matzehuels/layershare/pkg/errors"
	"github.com/matzehuels/layershare/pkg/httputil"
	"github.com/matzehuels/layershare/pkg/layer"
)

// RegistryProvider reads image histories from a remote registry.
// Credentials come from the default keychain (docker config and helpers).
type RegistryProvider struct {
	platform  *v1.Platform
	nameOpts  []name.Option
	transport http.RoundTripper
}

// NewRegistryProvider creates a registry provider.
func NewRegistryProvider(opts Options) (*RegistryProvider, error) {
	base := opts.Transport
	if base == nil {
		base = remote.DefaultTransport
	}
	p := &RegistryProvider{transport: httputil.NewTransport(base, opts.UserAgent)}
	if opts.Platform != "" {
		plat, err := v1.ParsePlatform(opts.Platform)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid platform %q", opts.Platform)
		}
		p.platform = plat
	}
	if opts.Insecure {
		p.nameOpts = append(p.nameOpts, name.Insecure)
	}
	return p, nil
}

// Name returns "registry".
func (p *RegistryProvider) Name() string { return KindRegistry }

func (p *RegistryProvider) remoteOptions(ctx context.Context) []remote.Option {
	opts := []remote.Option{
		remote.WithContext(ctx),
		remote.WithAuthFromKeychain(authn.DefaultKeychain),
		remote.WithTransport(p.transport),
	}
	if p.platform != nil {
		opts = append(opts, remote.WithPlatform(*p.platform))
	}
	return opts
}

// History fetches the config and manifest of ref and converts the config
// history into records. Sizes are compressed layer sizes as stored in the
// registry.
func (p *RegistryProvider) History(ctx context.Context, ref string) ([]layer.Record, error) {
	r, err := name.ParseReference(ref, p.nameOpts...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidReference, err, "invalid image reference %q", ref)
	}

	var records []layer.Record
	err = cache.RetryWithBackoff(ctx, func() error {
		img, err := remote.Image(r, p.remoteOptions(ctx)...)
		if err != nil {
			return retryableRemote(err)
		}
		records, err = imageRecords(img, ref)
		return retryableRemote(err)
	})
	if err != nil {
		return nil, remoteError(err, "history of %s", ref)
	}
	return records, nil
}

// Tags lists the tags of repository, sorted.
func (p *RegistryProvider) Tags(ctx context.Context, repository string) ([]string, error) {
	repo, err := name.NewRepository(repository, p.nameOpts...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRepository, err, "invalid repository %q", repository)
	}

	var tags []string
	err = cache.RetryWithBackoff(ctx, func() error {
		var err error
		tags, err = remote.List(repo, p.remoteOptions(ctx)...)
		return retryableRemote(err)
	})
	if err != nil {
		return nil, remoteError(err, "tags of %s", repository)
	}
	sort.Strings(tags)
	return tags, nil
}

// retryableRemote marks transient registry failures for RetryWithBackoff.
func retryableRemote(err error) error {
	if err == nil {
		return nil
	}
	var terr *transport.Error
	if stderrors.As(err, &terr) {
		if terr.StatusCode == http.StatusTooManyRequests || terr.StatusCode >= http.StatusInternalServerError {
			return cache.Retryable(err)
		}
		return err
	}
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return err
	}
	// Anything else is a connection level failure.
	return cache.Retryable(stderrors.Join(cache.ErrNetwork, err))
}

// remoteError converts a registry failure into a coded error.
func remoteError(err error, format string, args ...any) error {
	var terr *transport.Error
	if stderrors.As(err, &terr) {
		switch {
		case terr.StatusCode == http.StatusNotFound || hasDiagnostic(terr, transport.ManifestUnknownErrorCode, transport.NameUnknownErrorCode):
			return errors.Wrap(errors.ErrCodeImageNotFound, err, format, args...)
		case terr.StatusCode == http.StatusUnauthorized || terr.StatusCode == http.StatusForbidden:
			return errors.Wrap(errors.ErrCodeUnauthorized, err, format, args...)
		case terr.StatusCode == http.StatusTooManyRequests:
			return errors.Wrap(errors.ErrCodeRateLimited, err, format, args...)
		}
	}
	switch {
	case stderrors.Is(err, context.DeadlineExceeded):
		return errors.Wrap(errors.ErrCodeTimeout, err, format, args...)
	case stderrors.Is(err, context.Canceled):
		return err
	case stderrors.Is(err, cache.ErrNetwork):
		return errors.Wrap(errors.ErrCodeNetwork, err, format, args...)
	}
	return errors.Wrap(errors.ErrCodeInternal, err, format, args...)
}

func hasDiagnostic(terr *transport.Error, codes ...transport.ErrorCode) bool {
	for _, d := range terr.Errors {
		for _, c := range codes {
			if d.Code == c {
				return true
			}
		}
	}
	return false
}

var (
	_ Provider  = (*RegistryProvider)(nil)
	_ TagLister = (*RegistryProvider)(nil)
)
