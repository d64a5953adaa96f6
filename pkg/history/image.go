package history

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	v1 "github.com/google/go-containerregistry/pkg/v1"

	"github.com/matzehuels/layershare/pkg/layer"
)

// imageRecords converts the config history of img into records.
//
// History entries are walked alongside the filesystem layers: an entry that
// is not marked empty consumes the next layer and is identified by the chain
// id of the stack ending in that layer. Empty entries have no layer and get
// the missing id. An image without config history yields one record per
// layer. The last record carries tag.
func imageRecords(img v1.Image, tag string) ([]layer.Record, error) {
	cfg, err := img.ConfigFile()
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	manifest, err := img.Manifest()
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return configRecords(cfg, manifest.Layers, tag), nil
}

func configRecords(cfg *v1.ConfigFile, layers []v1.Descriptor, tag string) []layer.Record {
	chain := chainIDs(cfg.RootFS.DiffIDs)
	sizeOf := func(i int) int64 {
		if i < len(layers) {
			return layers[i].Size
		}
		return 0
	}

	var records []layer.Record
	if len(cfg.History) == 0 {
		for i, id := range chain {
			records = append(records, layer.Record{ID: id, Size: sizeOf(i)})
		}
	} else {
		next := 0
		for _, h := range cfg.History {
			rec := layer.Record{
				ID:        layer.MissingID,
				Comment:   h.Comment,
				CreatedBy: h.CreatedBy,
			}
			if !h.Created.IsZero() {
				rec.Created = h.Created.Unix()
			}
			if !h.EmptyLayer {
				if next < len(chain) {
					rec.ID = chain[next]
				}
				rec.Size = sizeOf(next)
				next++
			}
			records = append(records, rec)
		}
	}

	if len(records) > 0 && tag != "" {
		records[len(records)-1].Tags = []string{tag}
	}
	return records
}

// chainIDs returns the OCI chain id of every prefix of diffIDs:
// ChainID(L0) = DiffID(L0), ChainID(L0..Ln) = SHA256(ChainID(L0..Ln-1) + " " + DiffID(Ln)).
func chainIDs(diffIDs []v1.Hash) []string {
	ids := make([]string, 0, len(diffIDs))
	for i, d := range diffIDs {
		if i == 0 {
			ids = append(ids, d.String())
			continue
		}
		sum := sha256.Sum256([]byte(ids[i-1] + " " + d.String()))
		ids = append(ids, "sha256:"+hex.EncodeToString(sum[:]))
	}
	return ids
}
