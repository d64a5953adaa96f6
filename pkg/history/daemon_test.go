package history

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/errdefs"

	"github.com/matzehuels/layershare/pkg/errors"
	"github.com/matzehuels/layershare/pkg/layer"
)

type fakeDocker struct {
	history map[string][]image.HistoryResponseItem
	images  []types.ImageSummary
	closed  bool
}

func (f *fakeDocker) ImageHistory(_ context.Context, ref string) ([]image.HistoryResponseItem, error) {
	items, ok := f.history[ref]
	if !ok {
		return nil, errdefs.NotFound(stderrors.New("No such image: " + ref))
	}
	return items, nil
}

func (f *fakeDocker) ImageList(context.Context, types.ImageListOptions) ([]types.ImageSummary, error) {
	return f.images, nil
}

func (f *fakeDocker) Close() error {
	f.closed = true
	return nil
}

func TestDaemonProvider_History(t *testing.T) {
	api := &fakeDocker{history: map[string][]image.HistoryResponseItem{
		"app:1.0": {
			{ID: "sha256:top", Size: 30, CreatedBy: "CMD run", Created: 3, Tags: []string{"app:1.0"}},
			{ID: layer.MissingID, Size: 20, CreatedBy: "RUN build", Created: 2},
			{ID: layer.MissingID, Size: 10, CreatedBy: "ADD base", Created: 1, Comment: "base"},
		},
	}}
	p := &DaemonProvider{api: api}

	records, err := p.History(context.Background(), "app:1.0")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"ADD base", "RUN build", "CMD run"}
	if len(records) != len(want) {
		t.Fatalf("len = %d, want %d", len(records), len(want))
	}
	for i, w := range want {
		if records[i].CreatedBy != w {
			t.Errorf("records[%d].CreatedBy = %q, want %q (oldest first)", i, records[i].CreatedBy, w)
		}
	}
	if records[0].ID != layer.MissingID || records[0].Comment != "base" {
		t.Errorf("records[0] = %+v", records[0])
	}
	if records[2].Tags[0] != "app:1.0" {
		t.Errorf("records[2].Tags = %v", records[2].Tags)
	}

	if err := p.Close(); err != nil || !api.closed {
		t.Errorf("Close() = %v, closed = %v", err, api.closed)
	}
}

func TestDaemonProvider_NotFound(t *testing.T) {
	p := &DaemonProvider{api: &fakeDocker{}}
	_, err := p.History(context.Background(), "app:missing")
	if !errors.Is(err, errors.ErrCodeImageNotFound) {
		t.Errorf("err = %v, want %s", err, errors.ErrCodeImageNotFound)
	}
}

func TestDaemonProvider_Tags(t *testing.T) {
	p := &DaemonProvider{api: &fakeDocker{images: []types.ImageSummary{
		{RepoTags: []string{"app:2.0", "app:latest"}},
		{RepoTags: []string{"app:1.0", "app-other:1.0"}},
		{RepoTags: []string{"app:2.0"}},
	}}}

	tags, err := p.Tags(context.Background(), "app")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"1.0", "2.0", "latest"}
	if len(tags) != len(want) {
		t.Fatalf("Tags() = %v, want %v", tags, want)
	}
	for i := range want {
		if tags[i] != want[i] {
			t.Errorf("Tags() = %v, want %v", tags, want)
			break
		}
	}
}
