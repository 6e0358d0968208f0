package voiceover

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/mycguo/autogen-multi-agent-workflow/config"
	"github.com/mycguo/autogen-multi-agent-workflow/types"
)

// Stage converts captions into numbered voiceover files. Numbering is
// append-only: the starting index is re-derived from the directory contents
// on every invocation, so re-running never overwrites earlier output.
type Stage struct {
	client TTSClient
	dir    string
}

// NewStage creates a voiceover stage writing into dir.
func NewStage(client TTSClient, dir string) *Stage {
	return &Stage{client: client, dir: dir}
}

// Synthesize produces one asset per caption, in input order. Items are
// processed strictly one at a time; a failed item is recorded and the loop
// moves on. onProgress (optional) fires after every resolved item.
func (s *Stage) Synthesize(ctx context.Context, captions []string, onProgress types.Progress) []types.GeneratedAsset {
	total := len(captions)
	assets := make([]types.GeneratedAsset, 0, total)

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		log.Printf("[voiceover] cannot create output dir %s: %v", s.dir, err)
		return failAll(captions, 1, err, onProgress)
	}

	start := countExisting(s.dir) + 1
	log.Printf("[voiceover] generating %d voiceovers starting from index %d", total, start)

	for i, caption := range captions {
		index := start + i
		path := filepath.Join(s.dir, fmt.Sprintf(config.VoiceoverFileFmt, index))
		asset := types.GeneratedAsset{Index: index, Path: path}

		switch {
		case ctx.Err() != nil:
			asset.Status = types.AssetFailed
			asset.Error = ctx.Err().Error()
		case fileExists(path):
			asset.Status = types.AssetSkipped
			log.Printf("[voiceover] %s already exists, skipping", path)
		default:
			if err := s.generateOne(ctx, caption, path); err != nil {
				asset.Status = types.AssetFailed
				asset.Error = err.Error()
				log.Printf("[voiceover] voiceover %d failed: %v", index, err)
			} else {
				asset.Status = types.AssetReady
				log.Printf("[voiceover] saved %s (%d/%d)", path, i+1, total)
			}
		}

		assets = append(assets, asset)
		if onProgress != nil {
			onProgress(i+1, total)
		}
	}
	return assets
}

// generateOne calls the TTS service for a single caption and persists the
// complete payload atomically.
func (s *Stage) generateOne(ctx context.Context, caption, path string) error {
	cctx, cancel := context.WithTimeout(ctx, config.TTSTimeout)
	defer cancel()

	audio, err := s.client.Synthesize(cctx, caption)
	if err != nil {
		return err
	}
	if err := writeFileAtomic(path, audio); err != nil {
		return fmt.Errorf("failed to persist voiceover: %w", err)
	}
	return nil
}

// countExisting counts voiceover files already present in dir. The count is
// taken fresh on every stage invocation rather than cached.
func countExisting(dir string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	n := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, config.VoiceoverPrefix) && strings.HasSuffix(name, config.VoiceoverExt) {
			n++
		}
	}
	return n
}

// failAll marks every caption failed with the same error, still reporting
// progress and a full-length result.
func failAll(captions []string, startIndex int, err error, onProgress types.Progress) []types.GeneratedAsset {
	total := len(captions)
	assets := make([]types.GeneratedAsset, 0, total)
	for i := range captions {
		assets = append(assets, types.GeneratedAsset{
			Index:  startIndex + i,
			Status: types.AssetFailed,
			Error:  err.Error(),
		})
		if onProgress != nil {
			onProgress(i+1, total)
		}
	}
	return assets
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// writeFileAtomic writes data to a temp file in the target directory and
// renames it into place, so a crash mid-write never leaves a partial file
// that a later run would mistake for a finished asset.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
