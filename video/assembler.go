package video

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"
	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/mycguo/autogen-multi-agent-workflow/config"
)

// AssembleRequest carries the inputs for one assembly: the ordered caption
// list (already sanitized) and the directories the stages persisted assets
// into. Caption i pairs with voiceover_i.mp3 and image_i.webp.
type AssembleRequest struct {
	Captions     []string
	VoiceoverDir string
	ImageDir     string
	OutputPath   string
}

// Assembler composes the final video. Its failure is the one error class
// that fails a whole pipeline run.
type Assembler interface {
	Assemble(ctx context.Context, req AssembleRequest) (string, error)
}

// FFmpegAssembler builds the video with ffmpeg: each caption becomes one
// segment of its image looped for the duration of its voiceover, the
// segments are concatenated, and the captions are burned in as subtitles.
type FFmpegAssembler struct{}

// NewFFmpegAssembler creates the production assembler.
func NewFFmpegAssembler() *FFmpegAssembler {
	return &FFmpegAssembler{}
}

// segment is one caption's slice of the final video.
type segment struct {
	caption   string
	audioPath string
	imagePath string
	duration  float64
}

// Assemble builds the video and returns its path. Any missing input or
// encoder failure is returned as an error.
func (a *FFmpegAssembler) Assemble(ctx context.Context, req AssembleRequest) (string, error) {
	if len(req.Captions) == 0 {
		return "", fmt.Errorf("no captions to assemble")
	}

	segments, err := collectSegments(req)
	if err != nil {
		return "", err
	}

	tmpDir, err := os.MkdirTemp("", "shorts-assembly-*")
	if err != nil {
		return "", fmt.Errorf("failed to create staging dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	segPaths := make([]string, 0, len(segments))
	for i, seg := range segments {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		segPath := filepath.Join(tmpDir, fmt.Sprintf("segment_%d.mp4", i+1))
		if err := renderSegment(seg, segPath); err != nil {
			return "", fmt.Errorf("segment %d: %w", i+1, err)
		}
		segPaths = append(segPaths, segPath)
		log.Printf("[video] rendered segment %d/%d (%.2fs)", i+1, len(segments), seg.duration)
	}

	listPath := filepath.Join(tmpDir, "segments.txt")
	if err := writeConcatList(segPaths, listPath); err != nil {
		return "", fmt.Errorf("failed to write concat list: %w", err)
	}

	srtPath := filepath.Join(tmpDir, "captions.srt")
	if err := generateSRT(segments, srtPath); err != nil {
		return "", fmt.Errorf("failed to generate subtitles: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	err = ffmpeg.Input(listPath, ffmpeg.KwArgs{"f": "concat", "safe": "0"}).
		Output(req.OutputPath, ffmpeg.KwArgs{
			"vf":     generateSubtitleFilter(srtPath),
			"c:v":    config.VideoCodec,
			"c:a":    "copy",
			"preset": config.VideoPreset,
		}).
		OverWriteOutput().
		Run()
	if err != nil {
		return "", fmt.Errorf("ffmpeg failed: %w", err)
	}

	log.Printf("[video] 🎬 assembled %s from %d segments", req.OutputPath, len(segments))
	return req.OutputPath, nil
}

// collectSegments pairs each caption with its positional voiceover and
// image files and probes the voiceover durations.
func collectSegments(req AssembleRequest) ([]segment, error) {
	segments := make([]segment, 0, len(req.Captions))
	for i, caption := range req.Captions {
		index := i + 1
		audioPath := filepath.Join(req.VoiceoverDir, fmt.Sprintf(config.VoiceoverFileFmt, index))
		imagePath := filepath.Join(req.ImageDir, fmt.Sprintf(config.ImageFileFmt, index))

		if _, err := os.Stat(audioPath); err != nil {
			return nil, fmt.Errorf("missing voiceover for caption %d: %w", index, err)
		}
		if _, err := os.Stat(imagePath); err != nil {
			return nil, fmt.Errorf("missing image for caption %d: %w", index, err)
		}

		duration, err := probeDuration(audioPath)
		if err != nil {
			return nil, fmt.Errorf("probing voiceover %d: %w", index, err)
		}

		segments = append(segments, segment{
			caption:   caption,
			audioPath: audioPath,
			imagePath: imagePath,
			duration:  duration,
		})
	}
	return segments, nil
}

// renderSegment encodes one still image plus its voiceover into a video
// segment scaled to the 9:16 output size.
func renderSegment(seg segment, outputPath string) error {
	image := ffmpeg.Input(seg.imagePath, ffmpeg.KwArgs{
		"loop":      1,
		"framerate": config.VideoFrameRate,
		"t":         fmt.Sprintf("%.3f", seg.duration),
	})
	audio := ffmpeg.Input(seg.audioPath)

	scaled := ffmpeg.Filter(
		[]*ffmpeg.Stream{image},
		"scale",
		ffmpeg.Args{fmt.Sprintf("%d:%d", config.ImageWidth, config.ImageHeight)},
	).Filter("setsar", ffmpeg.Args{"1"})

	err := ffmpeg.Output([]*ffmpeg.Stream{scaled, audio}, outputPath, ffmpeg.KwArgs{
		"c:v":      config.VideoCodec,
		"c:a":      config.AudioCodec,
		"b:a":      config.AudioBitrate,
		"preset":   config.VideoPreset,
		"r":        config.VideoFrameRate,
		"pix_fmt":  "yuv420p",
		"shortest": "",
	}).OverWriteOutput().Run()
	if err != nil {
		return fmt.Errorf("ffmpeg failed: %w", err)
	}
	return nil
}

// probeDuration reads the container duration of a media file in seconds.
func probeDuration(path string) (float64, error) {
	out, err := ffmpeg.Probe(path)
	if err != nil {
		return 0, err
	}
	duration := gjson.Get(out, "format.duration").Float()
	if duration <= 0 {
		return 0, fmt.Errorf("no duration reported for %s", filepath.Base(path))
	}
	return duration, nil
}

// writeConcatList writes the ffmpeg concat demuxer list file.
func writeConcatList(paths []string, outputPath string) error {
	var lines []string
	for _, p := range paths {
		lines = append(lines, fmt.Sprintf("file '%s'", filepath.ToSlash(p)))
	}
	return os.WriteFile(outputPath, []byte(strings.Join(lines, "\n")+"\n"), 0o644)
}

// generateSRT writes one subtitle cue per segment, spanning exactly the
// segment's voiceover duration on the concatenated timeline.
func generateSRT(segments []segment, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer file.Close()

	elapsed := 0.0
	for i, seg := range segments {
		start := elapsed
		end := elapsed + seg.duration
		fmt.Fprintf(file, "%d\n", i+1)
		fmt.Fprintf(file, "%s --> %s\n", formatTimestamp(start), formatTimestamp(end))
		fmt.Fprintf(file, "%s\n\n", seg.caption)
		elapsed = end
	}
	return nil
}

// formatTimestamp converts seconds to the SRT timestamp format.
func formatTimestamp(seconds float64) string {
	hours := int(seconds / 3600)
	minutes := int((seconds - float64(hours*3600)) / 60)
	secs := int(seconds) % 60
	millis := int((seconds - float64(int(seconds))) * 1000)

	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}

func generateSubtitleFilter(srtPath string) string {
	style := "FontName=Impact," +
		"FontSize=32," +
		"PrimaryColour=&H00FFFF," +
		"OutlineColour=&H000000," +
		"BorderStyle=3," +
		"Outline=3," +
		"Shadow=0," +
		"Alignment=2," +
		"Bold=1"

	escapedPath := filepath.ToSlash(srtPath)
	return fmt.Sprintf("subtitles='%s':force_style='%s'", escapedPath, style)
}
