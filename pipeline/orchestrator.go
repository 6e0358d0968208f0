package pipeline

import (
	"context"
	"log"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mycguo/autogen-multi-agent-workflow/config"
	"github.com/mycguo/autogen-multi-agent-workflow/imagegen"
	"github.com/mycguo/autogen-multi-agent-workflow/script"
	"github.com/mycguo/autogen-multi-agent-workflow/types"
	"github.com/mycguo/autogen-multi-agent-workflow/video"
	"github.com/mycguo/autogen-multi-agent-workflow/voiceover"
)

// Orchestrator drives one topic through every stage: script, voiceovers,
// images, assembly. Per-item failures inside a stage never abort a run; the
// only run-level failure is the assembler itself erroring.
type Orchestrator struct {
	generator  *script.Generator
	voiceovers *voiceover.Stage
	images     *imagegen.Stage
	assembler  video.Assembler

	voiceoverDir string
	imageDir     string
	outputPath   string
}

// Config wires the external service clients into an Orchestrator. WorkDir
// is the root for the stage directories and the output video; empty keeps
// everything relative to the process directory.
type Config struct {
	Chat      script.ChatClient
	TTS       voiceover.TTSClient
	Imager    imagegen.ImageClient
	Assembler video.Assembler
	WorkDir   string
}

// New creates an Orchestrator from the given service clients.
func New(cfg Config) *Orchestrator {
	voiceoverDir := filepath.Join(cfg.WorkDir, config.VoiceoverDirName)
	imageDir := filepath.Join(cfg.WorkDir, config.ImageDirName)

	return &Orchestrator{
		generator:    script.NewGenerator(cfg.Chat),
		voiceovers:   voiceover.NewStage(cfg.TTS, voiceoverDir),
		images:       imagegen.NewStage(cfg.Imager, imageDir),
		assembler:    cfg.Assembler,
		voiceoverDir: voiceoverDir,
		imageDir:     imageDir,
		outputPath:   filepath.Join(cfg.WorkDir, config.VideoOutputName),
	}
}

// Options customizes a single run. All fields are optional.
type Options struct {
	// Background is extra source material handed to the script generator,
	// e.g. the body of the article a topic was suggested from.
	Background string

	// OnStage fires when the run moves to a new stage.
	OnStage func(stage types.RunState)

	// OnVoiceoverProgress and OnImageProgress receive per-item progress.
	OnVoiceoverProgress types.Progress
	OnImageProgress     types.Progress
}

// Run executes the full pipeline for a topic.
func (o *Orchestrator) Run(ctx context.Context, topic string) *types.PipelineRun {
	return o.RunWithOptions(ctx, topic, Options{})
}

// RunWithOptions executes the full pipeline for a topic with per-run hooks.
// It always returns a structured result; Success is false only when the
// assembly step failed.
func (o *Orchestrator) RunWithOptions(ctx context.Context, topic string, opts Options) *types.PipelineRun {
	setStage := func(stage types.RunState) {
		if opts.OnStage != nil {
			opts.OnStage(stage)
		}
	}

	log.Printf("[pipeline] starting run for topic %q", topic)
	run := &types.PipelineRun{Topic: topic, Success: true}

	setStage(types.StateScripting)
	sc := o.generator.GenerateWithContext(ctx, topic, opts.Background)
	run.Script = sc

	prompts := buildImagePrompts(sc.Captions)

	setStage(types.StateGenerating)

	// The two stages have no data dependency: they run concurrently with
	// each other while staying strictly sequential inside. Each result is
	// written by one goroutine and read only after Wait.
	var voiceovers, images []types.GeneratedAsset
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		voiceovers = o.voiceovers.Synthesize(gctx, sc.Captions, opts.OnVoiceoverProgress)
		return nil
	})
	g.Go(func() error {
		images = o.images.Generate(gctx, prompts, opts.OnImageProgress)
		return nil
	})
	// Stages report per-item failures on the assets instead of returning
	// errors, so Wait cannot fail.
	_ = g.Wait()
	run.Voiceovers = voiceovers
	run.Images = images

	log.Printf("[pipeline] voiceovers ready=%d skipped=%d failed=%d",
		types.CountByStatus(voiceovers, types.AssetReady),
		types.CountByStatus(voiceovers, types.AssetSkipped),
		types.CountByStatus(voiceovers, types.AssetFailed))
	log.Printf("[pipeline] images ready=%d skipped=%d failed=%d",
		types.CountByStatus(images, types.AssetReady),
		types.CountByStatus(images, types.AssetSkipped),
		types.CountByStatus(images, types.AssetFailed))

	setStage(types.StateAssembling)
	actx, cancel := context.WithTimeout(ctx, config.AssembleTimeout)
	defer cancel()

	videoPath, err := o.assembler.Assemble(actx, video.AssembleRequest{
		Captions:     sanitizeCaptions(sc.Captions),
		VoiceoverDir: o.voiceoverDir,
		ImageDir:     o.imageDir,
		OutputPath:   o.outputPath,
	})
	if err != nil {
		run.Success = false
		run.Error = err.Error()
		log.Printf("[pipeline] ❌ assembly failed: %v", err)
	} else {
		run.VideoPath = videoPath
		log.Printf("[pipeline] ✅ run complete: %s", videoPath)
	}

	run.Timestamp = time.Now().UTC()
	return run
}

// buildImagePrompts prefixes every caption with the constant style tag the
// image service is prompted with.
func buildImagePrompts(captions []string) []string {
	prompts := make([]string, len(captions))
	for i, caption := range captions {
		prompts[i] = config.ImagePromptPrefix + caption
	}
	return prompts
}
