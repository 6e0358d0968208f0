package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/joho/godotenv"

	"github.com/mycguo/autogen-multi-agent-workflow/config"
	"github.com/mycguo/autogen-multi-agent-workflow/imagegen"
	"github.com/mycguo/autogen-multi-agent-workflow/pipeline"
	"github.com/mycguo/autogen-multi-agent-workflow/publish"
	"github.com/mycguo/autogen-multi-agent-workflow/script"
	"github.com/mycguo/autogen-multi-agent-workflow/topics"
	"github.com/mycguo/autogen-multi-agent-workflow/types"
	"github.com/mycguo/autogen-multi-agent-workflow/video"
	"github.com/mycguo/autogen-multi-agent-workflow/voiceover"
)

func main() {
	// Load environment variables
	_ = godotenv.Load()

	// Parse command-line flags
	topic := flag.String("topic", "", "Topic to produce a short for (empty: print feed suggestions)")
	source := flag.String("source", "", "Article URL giving the script extra background")
	publishFlag := flag.Bool("publish", false, "Upload the finished video to YouTube")
	workDir := flag.String("workdir", config.GetEnvOrDefault("SHORTS_WORK_DIR", "."), "Directory for voiceovers, images and the output video")
	feed := flag.String("feed", "tr", "RSS feed preset name or URL (use -feeds to list presets)")
	count := flag.Int("count", 10, "Number of suggestions to fetch")
	listFeeds := flag.Bool("feeds", false, "List available feed presets and exit")
	flag.Parse()

	// List available feeds if requested
	if *listFeeds {
		fmt.Println("Available feed presets:")

		names := make([]string, 0, len(config.FeedPresets))
		for name := range config.FeedPresets {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			fmt.Printf("  %-12s %s\n", name, config.FeedPresets[name])
		}
		fmt.Println("\nUsage:")
		fmt.Println("  ./shorts -feed=tr")
		fmt.Println("  ./shorts -topic=\"why octopuses dream\"")
		os.Exit(0)
	}

	// Log to stderr so JSON output to stdout is clean
	log.SetOutput(os.Stderr)

	if *topic == "" {
		printSuggestions(*feed, *count)
		return
	}

	secrets := config.LoadSecrets()

	var background string
	if *source != "" {
		text, err := topics.Enrich(*source)
		if err != nil {
			log.Printf("Warning: source article unavailable: %v", err)
		} else {
			background = text
		}
	}

	orchestrator := pipeline.New(pipeline.Config{
		Chat: script.NewOpenAIClient(secrets.OpenAIKey, "", config.ScriptModel),
		TTS: voiceover.NewElevenLabsClient(voiceover.ElevenLabsConfig{
			APIKey:  secrets.ElevenLabsKey,
			BaseURL: config.ElevenLabsBaseURL,
			VoiceID: config.TTSVoiceID,
			ModelID: config.TTSModelID,
		}),
		Imager: imagegen.NewStabilityClient(imagegen.StabilityConfig{
			APIKey:   secrets.StabilityKey,
			Endpoint: config.StabilityEndpoint,
		}),
		Assembler: video.NewFFmpegAssembler(),
		WorkDir:   *workDir,
	})

	run := orchestrator.RunWithOptions(context.Background(), *topic, pipeline.Options{
		Background: background,
		OnVoiceoverProgress: func(completed, total int) {
			log.Printf("Voiceovers: %d/%d", completed, total)
		},
		OnImageProgress: func(completed, total int) {
			log.Printf("Images: %d/%d", completed, total)
		},
	})

	if run.Success && *publishFlag {
		publishRun(run, *source)
	}

	displaySummary(run)

	// Output the run manifest to stdout
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(run); err != nil {
		log.Fatalf("Failed to encode JSON: %v", err)
	}

	if !run.Success {
		os.Exit(1)
	}
}

// displaySummary logs per-stage asset counts to stderr, keeping stdout clean
// for the run manifest.
func displaySummary(run *types.PipelineRun) {
	log.Println("\n=== Run Summary ===")
	log.Printf("Voiceovers: %s", stageCounts(run.Voiceovers))
	log.Printf("Images:     %s", stageCounts(run.Images))
	if run.Success {
		log.Printf("Video:      %s", run.VideoPath)
	} else {
		log.Printf("Video:      FAILED (%s)", run.Error)
	}
	log.Println("===================")
}

func stageCounts(assets []types.GeneratedAsset) string {
	return fmt.Sprintf("%d ready, %d skipped, %d failed",
		types.CountByStatus(assets, types.AssetReady),
		types.CountByStatus(assets, types.AssetSkipped),
		types.CountByStatus(assets, types.AssetFailed))
}

// printSuggestions fetches feed suggestions and writes them to stdout as
// JSON, so a topic can be picked and passed back via -topic.
func printSuggestions(feed string, count int) {
	suggester := topics.NewSuggester()
	suggestions, err := suggester.Suggest(context.Background(), feed, count)
	if err != nil {
		log.Fatalf("Failed to fetch suggestions: %v", err)
	}
	log.Printf("Fetched %d suggestions from feed", len(suggestions))

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(suggestions); err != nil {
		log.Fatalf("Failed to encode JSON: %v", err)
	}
}

// publishRun uploads the finished video when YouTube credentials are
// configured. Failures are logged, not fatal: the video is already on disk.
func publishRun(run *types.PipelineRun, sourceURL string) {
	credentials := os.Getenv("YOUTUBE_CREDENTIALS_FILE")
	if credentials == "" {
		log.Println("Warning: -publish set but YOUTUBE_CREDENTIALS_FILE is empty, skipping upload")
		return
	}

	uploader, err := publish.NewUploader(credentials, os.Getenv("YOUTUBE_PRIVACY"))
	if err != nil {
		log.Printf("Failed to create YouTube uploader: %v", err)
		return
	}

	videoID, err := uploader.PublishRun(run, sourceURL)
	if err != nil {
		log.Printf("Upload failed: %v", err)
		return
	}
	log.Printf("Published: https://youtube.com/shorts/%s", videoID)
}
