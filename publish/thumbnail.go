package publish

import (
	"fmt"
	"image/jpeg"
	"log"
	"os"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // decode generated webp frames
)

const (
	thumbnailWidth  = 1280
	thumbnailHeight = 720
	jpegQuality     = 80
)

// GenerateThumbnail center-crops a generated frame to YouTube's 1280x720
// thumbnail box and writes it as JPEG.
func GenerateThumbnail(framePath, outPath string) error {
	img, err := imaging.Open(framePath)
	if err != nil {
		return fmt.Errorf("failed to decode frame: %w", err)
	}

	thumbnail := imaging.Fill(img, thumbnailWidth, thumbnailHeight, imaging.Center, imaging.Lanczos)

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("failed to create thumbnail file: %w", err)
	}
	defer out.Close()

	if err := jpeg.Encode(out, thumbnail, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return fmt.Errorf("failed to encode thumbnail: %w", err)
	}

	log.Printf("[publish] 🖼️ thumbnail written: %s", outPath)
	return nil
}
