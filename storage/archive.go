package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path"
	"path/filepath"

	"github.com/mycguo/autogen-multi-agent-workflow/types"
)

// ObjectStore is the storage surface the archiver needs. *S3 implements it.
type ObjectStore interface {
	Put(ctx context.Context, bucket, key string, body io.Reader, contentType string) error
	Exists(ctx context.Context, bucket, key string) (bool, error)
}

// Archiver copies a finished run's manifest and assets to object storage
// under <prefix>/runs/<runID>/.
type Archiver struct {
	store  ObjectStore
	bucket string
	prefix string
}

// NewArchiver creates an Archiver writing to the given bucket. An empty
// prefix puts runs at the bucket root.
func NewArchiver(store ObjectStore, bucket, prefix string) *Archiver {
	return &Archiver{store: store, bucket: bucket, prefix: prefix}
}

// Archive uploads the run manifest plus every asset the run produced. The
// manifest is always rewritten so it reflects the latest resume; assets
// already present in the bucket are skipped. Assets missing on local disk
// are logged and skipped rather than failing the archive.
func (a *Archiver) Archive(ctx context.Context, runID string, run *types.PipelineRun) (int, error) {
	if runID == "" {
		return 0, fmt.Errorf("run ID is empty")
	}

	manifest, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("failed to marshal run manifest: %w", err)
	}

	manifestKey := path.Join(a.prefix, "runs", runID, "run.json")
	if err := a.store.Put(ctx, a.bucket, manifestKey, bytes.NewReader(manifest), "application/json"); err != nil {
		return 0, fmt.Errorf("failed to upload run manifest: %w", err)
	}
	uploaded := 1

	assets := make([]types.GeneratedAsset, 0, len(run.Voiceovers)+len(run.Images))
	assets = append(assets, run.Voiceovers...)
	assets = append(assets, run.Images...)

	paths := make([]string, 0, len(assets)+1)
	for _, asset := range assets {
		if asset.Status == types.AssetFailed || asset.Path == "" {
			continue
		}
		paths = append(paths, asset.Path)
	}
	if run.VideoPath != "" {
		paths = append(paths, run.VideoPath)
	}

	for _, localPath := range paths {
		n, err := a.uploadFile(ctx, runID, localPath)
		if err != nil {
			return uploaded, err
		}
		uploaded += n
	}

	log.Printf("[archive] ☁️ uploaded %d objects for run %s", uploaded, runID)
	return uploaded, nil
}

// uploadFile uploads one local file under the run prefix, skipping objects
// that already exist. Returns how many objects were written (0 or 1).
func (a *Archiver) uploadFile(ctx context.Context, runID, localPath string) (int, error) {
	key := path.Join(a.prefix, "runs", runID, filepath.Base(localPath))

	exists, err := a.store.Exists(ctx, a.bucket, key)
	if err != nil {
		return 0, fmt.Errorf("failed to check %s: %w", key, err)
	}
	if exists {
		return 0, nil
	}

	f, err := os.Open(localPath)
	if err != nil {
		log.Printf("[archive] skipping %s: %v", localPath, err)
		return 0, nil
	}
	defer f.Close()

	if err := a.store.Put(ctx, a.bucket, key, f, contentTypeFor(localPath)); err != nil {
		return 0, fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return 1, nil
}

func contentTypeFor(name string) string {
	switch filepath.Ext(name) {
	case ".mp3":
		return "audio/mpeg"
	case ".webp":
		return "image/webp"
	case ".mp4":
		return "video/mp4"
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}
