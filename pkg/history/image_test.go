package history

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"
	"time"

	v1 "github.com/google/go-containerregistry/pkg/v1"

	"github.com/matzehuels/layershare/pkg/layer"
)

func hashOf(s string) v1.Hash {
	sum := sha256.Sum256([]byte(s))
	return v1.Hash{Algorithm: "sha256", Hex: hex.EncodeToString(sum[:])}
}

func TestChainIDs(t *testing.T) {
	d0, d1, d2 := hashOf("a"), hashOf("b"), hashOf("c")
	ids := chainIDs([]v1.Hash{d0, d1, d2})

	if len(ids) != 3 {
		t.Fatalf("len = %d, want 3", len(ids))
	}
	if ids[0] != d0.String() {
		t.Errorf("first chain id = %s, want the diff id %s", ids[0], d0)
	}
	sum := sha256.Sum256([]byte(d0.String() + " " + d1.String()))
	if want := "sha256:" + hex.EncodeToString(sum[:]); ids[1] != want {
		t.Errorf("second chain id = %s, want %s", ids[1], want)
	}

	// A different base changes every later id.
	other := chainIDs([]v1.Hash{hashOf("x"), d1, d2})
	for i := range ids {
		if ids[i] == other[i] {
			t.Errorf("chain id %d does not depend on the base layer", i)
		}
	}
}

func TestConfigRecords(t *testing.T) {
	created := time.Unix(1700000000, 0)
	cfg := &v1.ConfigFile{
		RootFS: v1.RootFS{Type: "layers", DiffIDs: []v1.Hash{hashOf("base"), hashOf("app")}},
		History: []v1.History{
			{CreatedBy: "ADD rootfs.tar /", Created: v1.Time{Time: created}},
			{CreatedBy: "ENV PATH=/bin", EmptyLayer: true},
			{CreatedBy: "COPY app /app", Comment: "buildkit"},
			{CreatedBy: "CMD [\"/app\"]", EmptyLayer: true},
		},
	}
	layers := []v1.Descriptor{{Size: 1000}, {Size: 20}}

	records := configRecords(cfg, layers, "app:1.0")
	if len(records) != 4 {
		t.Fatalf("len = %d, want 4", len(records))
	}
	chain := chainIDs(cfg.RootFS.DiffIDs)

	want := []layer.Record{
		{ID: chain[0], Size: 1000, Created: created.Unix(), CreatedBy: "ADD rootfs.tar /"},
		{ID: layer.MissingID, CreatedBy: "ENV PATH=/bin"},
		{ID: chain[1], Size: 20, Comment: "buildkit", CreatedBy: "COPY app /app"},
		{ID: layer.MissingID, CreatedBy: "CMD [\"/app\"]", Tags: []string{"app:1.0"}},
	}
	for i, w := range want {
		got := records[i]
		if got.ID != w.ID || got.Size != w.Size || got.Created != w.Created ||
			got.CreatedBy != w.CreatedBy || got.Comment != w.Comment || len(got.Tags) != len(w.Tags) {
			t.Errorf("record %d = %+v, want %+v", i, got, w)
		}
	}
	if records[3].Tags[0] != "app:1.0" {
		t.Errorf("last record tags = %v", records[3].Tags)
	}
}

func TestConfigRecords_NoHistory(t *testing.T) {
	cfg := &v1.ConfigFile{
		RootFS: v1.RootFS{DiffIDs: []v1.Hash{hashOf("a"), hashOf("b")}},
	}
	records := configRecords(cfg, []v1.Descriptor{{Size: 5}, {Size: 6}}, "x:1")
	if len(records) != 2 {
		t.Fatalf("len = %d, want one record per layer", len(records))
	}
	if records[1].Size != 6 || records[1].Tags[0] != "x:1" {
		t.Errorf("records[1] = %+v", records[1])
	}
}

func TestConfigRecords_Empty(t *testing.T) {
	if records := configRecords(&v1.ConfigFile{}, nil, "x:1"); len(records) != 0 {
		t.Errorf("empty image should yield no records, got %v", records)
	}
}

func TestConfigRecords_MoreHistoryThanLayers(t *testing.T) {
	cfg := &v1.ConfigFile{
		RootFS:  v1.RootFS{DiffIDs: []v1.Hash{hashOf("a")}},
		History: []v1.History{{CreatedBy: "one"}, {CreatedBy: "two"}},
	}
	records := configRecords(cfg, []v1.Descriptor{{Size: 3}}, "")
	if records[1].ID != layer.MissingID || records[1].Size != 0 {
		t.Errorf("unmatched history entry = %+v, want missing id and zero size", records[1])
	}
	if len(records[1].Tags) != 0 {
		t.Errorf("empty tag should not be recorded: %v", records[1].Tags)
	}
}
