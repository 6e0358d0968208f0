package publish

import (
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mycguo/autogen-multi-agent-workflow/types"
)

func writeFrame(t *testing.T, dir string) string {
	t.Helper()

	// Portrait frame with the same aspect ratio the pipeline renders.
	img := image.NewRGBA(image.Rect(0, 0, 108, 192))
	for y := 0; y < 192; y++ {
		for x := 0; x < 108; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}

	path := filepath.Join(dir, "frame.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create frame: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode frame: %v", err)
	}
	return path
}

func TestGenerateThumbnailDimensions(t *testing.T) {
	dir := t.TempDir()
	framePath := writeFrame(t, dir)
	outPath := filepath.Join(dir, "thumbnail.jpg")

	if err := GenerateThumbnail(framePath, outPath); err != nil {
		t.Fatalf("GenerateThumbnail returned error: %v", err)
	}

	f, err := os.Open(outPath)
	if err != nil {
		t.Fatalf("failed to open thumbnail: %v", err)
	}
	defer f.Close()

	decoded, err := jpeg.Decode(f)
	if err != nil {
		t.Fatalf("failed to decode thumbnail: %v", err)
	}

	bounds := decoded.Bounds()
	if bounds.Dx() != thumbnailWidth || bounds.Dy() != thumbnailHeight {
		t.Errorf("expected %dx%d, got %dx%d", thumbnailWidth, thumbnailHeight, bounds.Dx(), bounds.Dy())
	}
}

func TestGenerateThumbnailMissingFrame(t *testing.T) {
	dir := t.TempDir()
	err := GenerateThumbnail(filepath.Join(dir, "missing.webp"), filepath.Join(dir, "out.jpg"))
	if err == nil {
		t.Fatal("expected error for missing frame")
	}
}

func TestGenerateMetadata(t *testing.T) {
	run := &types.PipelineRun{
		Topic: "why octopuses dream",
		Script: &types.Script{
			Topic:    "why octopuses dream",
			Takeaway: "Octopus sleep looks a lot like ours",
			Captions: []string{
				"Octopuses flash colors while they sleep",
				"Scientists think they replay the day",
			},
		},
	}
	meta := GenerateMetadata(run, "https://example.com/article")

	if meta.Title != "why octopuses dream" {
		t.Errorf("unexpected title %q", meta.Title)
	}
	if !strings.HasPrefix(meta.Description, "Octopus sleep looks a lot like ours") {
		t.Errorf("expected description to lead with the takeaway, got %q", meta.Description)
	}
	if !strings.Contains(meta.Description, "• Octopuses flash colors while they sleep") {
		t.Error("expected description to list the captions")
	}
	if !strings.Contains(meta.Description, "https://example.com/article") {
		t.Error("expected description to reference the source")
	}
	if !strings.Contains(meta.Description, "#shorts") {
		t.Error("expected description to carry hashtags")
	}
	if meta.CategoryID == "" || len(meta.Tags) == 0 {
		t.Error("expected category and tags to be set")
	}
}

func TestGenerateMetadataCapsTitle(t *testing.T) {
	long := strings.Repeat("a", 150)
	meta := GenerateMetadata(&types.PipelineRun{Topic: long}, "")

	if len(meta.Title) != 100 {
		t.Errorf("expected 100 character title, got %d", len(meta.Title))
	}
	if !strings.HasSuffix(meta.Title, "...") {
		t.Errorf("expected ellipsis suffix, got %q", meta.Title)
	}
}

func TestGenerateMetadataWithoutScript(t *testing.T) {
	meta := GenerateMetadata(&types.PipelineRun{Topic: "desert blooms"}, "")
	if !strings.HasPrefix(meta.Description, "desert blooms") {
		t.Errorf("expected topic fallback, got %q", meta.Description)
	}
	if strings.Contains(meta.Description, "Source:") {
		t.Errorf("expected no source line, got %q", meta.Description)
	}
}
