package imagegen

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/mycguo/autogen-multi-agent-workflow/types"
)

type fakeImager struct {
	calls  int
	failOn map[int]error // 1-based call number -> error
}

func (f *fakeImager) Generate(ctx context.Context, prompt string) ([]byte, error) {
	f.calls++
	if err, ok := f.failOn[f.calls]; ok {
		return nil, err
	}
	return []byte("IMG:" + prompt), nil
}

func TestGeneratePositionalNaming(t *testing.T) {
	dir := t.TempDir()
	img := &fakeImager{}
	stage := NewStage(img, dir)

	prompts := []string{"sunrise", "ocean", "forest"}
	assets := stage.Generate(context.Background(), prompts, nil)

	if len(assets) != 3 {
		t.Fatalf("assets: got %d want 3", len(assets))
	}
	for i, a := range assets {
		if a.Status != types.AssetReady {
			t.Errorf("asset %d status: got %q (%s)", i+1, a.Status, a.Error)
		}
		want := filepath.Join(dir, fmt.Sprintf("image_%d.webp", i+1))
		if a.Path != want {
			t.Errorf("asset %d path: got %q want %q", i+1, a.Path, want)
		}
		data, err := os.ReadFile(a.Path)
		if err != nil {
			t.Fatalf("reading %s: %v", a.Path, err)
		}
		if string(data) != "IMG:"+prompts[i] {
			t.Errorf("asset %d content: got %q", i+1, data)
		}
	}
	if img.calls != 3 {
		t.Errorf("service calls: got %d want 3", img.calls)
	}
}

func TestGenerateRerunMakesNoCalls(t *testing.T) {
	dir := t.TempDir()
	img := &fakeImager{}
	stage := NewStage(img, dir)
	prompts := []string{"a", "b", "c"}

	first := stage.Generate(context.Background(), prompts, nil)
	for i, a := range first {
		if a.Status != types.AssetReady {
			t.Fatalf("first run asset %d: got %q", i+1, a.Status)
		}
	}
	callsAfterFirst := img.calls

	second := stage.Generate(context.Background(), prompts, nil)
	if len(second) != 3 {
		t.Fatalf("second run assets: got %d want 3", len(second))
	}
	for i, a := range second {
		if a.Status != types.AssetSkipped {
			t.Errorf("second run asset %d: got %q want %q", i+1, a.Status, types.AssetSkipped)
		}
	}
	if img.calls != callsAfterFirst {
		t.Errorf("second run made %d extra calls", img.calls-callsAfterFirst)
	}
}

func TestGenerateFillsOnlyMissingPositions(t *testing.T) {
	dir := t.TempDir()
	// Position 2 already has an image; positions 1 and 3 are missing.
	if err := os.WriteFile(filepath.Join(dir, "image_2.webp"), []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	img := &fakeImager{}
	stage := NewStage(img, dir)
	assets := stage.Generate(context.Background(), []string{"a", "b", "c"}, nil)

	wantStatuses := []types.AssetStatus{types.AssetReady, types.AssetSkipped, types.AssetReady}
	for i, want := range wantStatuses {
		if assets[i].Status != want {
			t.Errorf("asset %d: got %q want %q", i+1, assets[i].Status, want)
		}
	}
	if img.calls != 2 {
		t.Errorf("service calls: got %d want 2", img.calls)
	}
	// The pre-existing image at position 2 is untouched.
	data, err := os.ReadFile(filepath.Join(dir, "image_2.webp"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "old" {
		t.Errorf("pre-existing image was modified: %q", data)
	}
}

func TestGeneratePerItemIsolation(t *testing.T) {
	dir := t.TempDir()
	img := &fakeImager{failOn: map[int]error{2: errors.New("image service unavailable")}}
	stage := NewStage(img, dir)

	assets := stage.Generate(context.Background(), []string{"a", "b", "c"}, nil)

	wantStatuses := []types.AssetStatus{types.AssetReady, types.AssetFailed, types.AssetReady}
	for i, want := range wantStatuses {
		if assets[i].Status != want {
			t.Errorf("asset %d: got %q want %q", i+1, assets[i].Status, want)
		}
	}
	if assets[1].Error != "image service unavailable" {
		t.Errorf("failed asset error: got %q", assets[1].Error)
	}
	if _, err := os.Stat(assets[1].Path); !os.IsNotExist(err) {
		t.Errorf("failed item left a file at %s", assets[1].Path)
	}
}

func TestGenerateRetryFillsFailedPosition(t *testing.T) {
	dir := t.TempDir()
	img := &fakeImager{failOn: map[int]error{2: errors.New("boom")}}
	stage := NewStage(img, dir)
	prompts := []string{"a", "b", "c"}

	stage.Generate(context.Background(), prompts, nil)

	// Second invocation: positions 1 and 3 exist, only position 2 is
	// regenerated.
	callsBefore := img.calls
	assets := stage.Generate(context.Background(), prompts, nil)

	wantStatuses := []types.AssetStatus{types.AssetSkipped, types.AssetReady, types.AssetSkipped}
	for i, want := range wantStatuses {
		if assets[i].Status != want {
			t.Errorf("retry asset %d: got %q want %q", i+1, assets[i].Status, want)
		}
	}
	if img.calls-callsBefore != 1 {
		t.Errorf("retry calls: got %d want 1", img.calls-callsBefore)
	}
}

func TestGenerateCancelledContextFailsRemainingItems(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	img := &fakeImager{}
	stage := NewStage(img, dir)
	assets := stage.Generate(ctx, []string{"a", "b"}, nil)

	if len(assets) != 2 {
		t.Fatalf("assets: got %d want 2", len(assets))
	}
	for i, a := range assets {
		if a.Status != types.AssetFailed {
			t.Errorf("asset %d: got %q want %q", i+1, a.Status, types.AssetFailed)
		}
	}
	if img.calls != 0 {
		t.Errorf("service calls after cancel: got %d want 0", img.calls)
	}
}

func TestGenerateProgressReachesTotal(t *testing.T) {
	dir := t.TempDir()
	img := &fakeImager{failOn: map[int]error{1: errors.New("boom")}}
	stage := NewStage(img, dir)

	var last, lastTotal int
	count := 0
	stage.Generate(context.Background(), []string{"a", "b"}, func(done, total int) {
		if done < last {
			t.Errorf("progress went backwards: %d after %d", done, last)
		}
		last, lastTotal = done, total
		count++
	})

	if count != 2 || last != 2 || lastTotal != 2 {
		t.Errorf("progress: %d callbacks, final %d/%d, want 2 callbacks ending 2/2", count, last, lastTotal)
	}
}
