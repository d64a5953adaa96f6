package history

import (
	"context"
	stderrors "errors"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/google/go-containerregistry/pkg/name"
	"github.com/google/go-containerregistry/pkg/v1/tarball"

	"github.com/matzehuels/layershare/pkg/errors"
	"github.com/matzehuels/layershare/pkg/layer"
)

// ArchiveProvider reads image histories from "docker save" tarballs.
//
// References have the form "path.tar" or "path.tar:tag". Without a tag the
// archive must contain exactly one image.
type ArchiveProvider struct{}

// NewArchiveProvider creates an archive provider.
func NewArchiveProvider() *ArchiveProvider { return &ArchiveProvider{} }

// Name returns "archive".
func (p *ArchiveProvider) Name() string { return KindArchive }

// History opens the archive named by ref and converts the image config
// history into records. Sizes are layer sizes as stored in the archive.
func (p *ArchiveProvider) History(ctx context.Context, ref string) ([]layer.Record, error) {
	path, tagName := splitArchiveRef(ref)
	if err := errors.ValidateArchivePath(path); err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "archive %s", path)
	}

	tag, err := resolveArchiveTag(path, tagName)
	if err != nil {
		return nil, err
	}

	img, err := tarball.ImageFromPath(path, tag)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeImageNotFound, err, "image %s", ref)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	records, err := imageRecords(img, ref)
	if err != nil {
		var perr *os.PathError
		if stderrors.As(err, &perr) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "archive %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "archive %s", path)
	}
	return records, nil
}

// resolveArchiveTag finds the repo tag in the archive manifest that tagName
// names. A bare version such as "1.25" matches any "<repo>:1.25" entry.
func resolveArchiveTag(path, tagName string) (*name.Tag, error) {
	if tagName == "" {
		return nil, nil
	}
	manifest, err := tarball.LoadManifest(func() (io.ReadCloser, error) { return os.Open(path) })
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "archive %s", path)
	}

	full := strings.Contains(tagName, ":")
	for _, desc := range manifest {
		for _, rt := range desc.RepoTags {
			if rt == tagName || (!full && strings.HasSuffix(rt, ":"+tagName)) {
				t, err := name.NewTag(rt)
				if err != nil {
					return nil, errors.Wrap(errors.ErrCodeInvalidReference, err, "invalid tag %q", rt)
				}
				return &t, nil
			}
		}
	}
	return nil, errors.New(errors.ErrCodeImageNotFound, "tag %q not found in archive %s", tagName, path)
}

// splitArchiveRef splits "path.tar:repo:tag" or "path.tar:tag" after the
// archive extension. Colons inside the path are kept.
func splitArchiveRef(ref string) (path, tag string) {
	for _, ext := range []string{".tar.gz", ".tgz", ".tar"} {
		if i := strings.Index(ref, ext+":"); i >= 0 {
			return ref[:i+len(ext)], ref[i+len(ext)+1:]
		}
	}
	return ref, ""
}

// Tags lists the versions of all repo tags in the archive at path, sorted.
func (p *ArchiveProvider) Tags(ctx context.Context, path string) ([]string, error) {
	if err := errors.ValidateArchivePath(path); err != nil {
		return nil, err
	}
	manifest, err := tarball.LoadManifest(func() (io.ReadCloser, error) { return os.Open(path) })
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "archive %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "archive %s", path)
	}

	seen := make(map[string]bool)
	var tags []string
	for _, desc := range manifest {
		for _, rt := range desc.RepoTags {
			v := layer.ShortTag(rt)
			if !seen[v] {
				seen[v] = true
				tags = append(tags, v)
			}
		}
	}
	sort.Strings(tags)
	return tags, nil
}

var (
	_ Provider  = (*ArchiveProvider)(nil)
	_ TagLister = (*ArchiveProvider)(nil)
)
