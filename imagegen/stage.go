package imagegen

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/mycguo/autogen-multi-agent-workflow/config"
	"github.com/mycguo/autogen-multi-agent-workflow/types"
)

// Stage renders one image per prompt into positionally numbered files.
// Unlike voiceovers, image numbering follows the prompt position directly:
// prompt i maps to image_i.webp, and an existing file at that position is
// skipped. A full re-run over unchanged prompts performs no service calls.
type Stage struct {
	client ImageClient
	dir    string
}

// NewStage creates an image stage writing into dir.
func NewStage(client ImageClient, dir string) *Stage {
	return &Stage{client: client, dir: dir}
}

// Generate produces one asset per prompt, in input order. Items are
// processed strictly one at a time; a failed item is recorded and the loop
// moves on. onProgress (optional) fires after every resolved item.
func (s *Stage) Generate(ctx context.Context, prompts []string, onProgress types.Progress) []types.GeneratedAsset {
	total := len(prompts)
	assets := make([]types.GeneratedAsset, 0, total)

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		log.Printf("[imagegen] cannot create output dir %s: %v", s.dir, err)
		return failAll(prompts, err, onProgress)
	}

	log.Printf("[imagegen] generating %d images", total)

	for i, prompt := range prompts {
		index := i + 1
		path := filepath.Join(s.dir, fmt.Sprintf(config.ImageFileFmt, index))
		asset := types.GeneratedAsset{Index: index, Path: path}

		switch {
		case ctx.Err() != nil:
			asset.Status = types.AssetFailed
			asset.Error = ctx.Err().Error()
		case fileExists(path):
			asset.Status = types.AssetSkipped
			log.Printf("[imagegen] %s already exists, skipping", path)
		default:
			if err := s.generateOne(ctx, prompt, path); err != nil {
				asset.Status = types.AssetFailed
				asset.Error = err.Error()
				log.Printf("[imagegen] image %d failed: %v", index, err)
			} else {
				asset.Status = types.AssetReady
				log.Printf("[imagegen] saved %s (%d/%d)", path, index, total)
			}
		}

		assets = append(assets, asset)
		if onProgress != nil {
			onProgress(i+1, total)
		}
	}
	return assets
}

// generateOne calls the image service for a single prompt and persists the
// complete payload atomically.
func (s *Stage) generateOne(ctx context.Context, prompt, path string) error {
	cctx, cancel := context.WithTimeout(ctx, config.ImageTimeout)
	defer cancel()

	img, err := s.client.Generate(cctx, prompt)
	if err != nil {
		return err
	}
	if err := writeFileAtomic(path, img); err != nil {
		return fmt.Errorf("failed to persist image: %w", err)
	}
	return nil
}

// failAll marks every prompt failed with the same error, still reporting
// progress and a full-length result.
func failAll(prompts []string, err error, onProgress types.Progress) []types.GeneratedAsset {
	total := len(prompts)
	assets := make([]types.GeneratedAsset, 0, total)
	for i := range prompts {
		assets = append(assets, types.GeneratedAsset{
			Index:  i + 1,
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
