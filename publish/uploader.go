package publish

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"github.com/mycguo/autogen-multi-agent-workflow/config"
	"github.com/mycguo/autogen-multi-agent-workflow/types"
)

// VideoMetadata describes the listing fields for an uploaded short.
type VideoMetadata struct {
	Title       string
	Description string
	Tags        []string
	CategoryID  string
}

// Uploader publishes finished videos to YouTube.
type Uploader struct {
	service *youtube.Service
	privacy string
}

// NewUploader authenticates with a service account key file. An empty
// privacy falls back to the default status.
func NewUploader(serviceAccountFile, privacy string) (*Uploader, error) {
	ctx := context.Background()

	if privacy == "" {
		privacy = config.YouTubePrivacyStatus
	}

	data, err := os.ReadFile(serviceAccountFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read service account file: %w", err)
	}

	jwtConfig, err := google.JWTConfigFromJSON(data, youtube.YoutubeUploadScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse service account: %w", err)
	}

	client := jwtConfig.Client(ctx)

	service, err := youtube.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to create YouTube service: %w", err)
	}

	return &Uploader{service: service, privacy: privacy}, nil
}

// UploadVideo uploads one video file and returns its YouTube ID.
func (u *Uploader) UploadVideo(videoPath string, metadata VideoMetadata) (string, error) {
	file, err := os.Open(videoPath)
	if err != nil {
		return "", fmt.Errorf("failed to open video file: %w", err)
	}
	defer file.Close()

	fileInfo, err := file.Stat()
	if err != nil {
		return "", fmt.Errorf("failed to stat video file: %w", err)
	}

	log.Printf("📤 Uploading: %s (%.2f MB)", videoPath, float64(fileInfo.Size())/(1024*1024))

	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:       metadata.Title,
			Description: metadata.Description,
			Tags:        metadata.Tags,
			CategoryId:  metadata.CategoryID,
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus:           u.privacy,
			SelfDeclaredMadeForKids: false,
		},
	}

	call := u.service.Videos.Insert([]string{"snippet", "status"}, video)
	call = call.Media(file)

	response, err := call.Do()
	if err != nil {
		return "", fmt.Errorf("failed to upload video: %w", err)
	}

	videoID := response.Id
	log.Printf("✅ Uploaded! https://youtube.com/shorts/%s", videoID)

	return videoID, nil
}

// SetThumbnail attaches a custom thumbnail to an uploaded video.
func (u *Uploader) SetThumbnail(videoID, thumbnailPath string) error {
	file, err := os.Open(thumbnailPath)
	if err != nil {
		return fmt.Errorf("failed to open thumbnail: %w", err)
	}
	defer file.Close()

	if _, err := u.service.Thumbnails.Set(videoID).Media(file).Do(); err != nil {
		return fmt.Errorf("failed to set thumbnail: %w", err)
	}
	return nil
}

// PublishRun uploads a finished run's video with metadata derived from its
// script, then sets a thumbnail rendered from the run's first usable frame.
// Thumbnail failures are logged but do not fail the publish.
func (u *Uploader) PublishRun(run *types.PipelineRun, sourceURL string) (string, error) {
	if run == nil || run.VideoPath == "" {
		return "", fmt.Errorf("run has no video to publish")
	}

	videoID, err := u.UploadVideo(run.VideoPath, GenerateMetadata(run, sourceURL))
	if err != nil {
		return "", err
	}

	framePath := firstUsableFrame(run.Images)
	if framePath == "" {
		return videoID, nil
	}

	thumbPath := filepath.Join(filepath.Dir(run.VideoPath), "thumbnail.jpg")
	if err := GenerateThumbnail(framePath, thumbPath); err != nil {
		log.Printf("[publish] thumbnail generation failed: %v", err)
		return videoID, nil
	}
	if err := u.SetThumbnail(videoID, thumbPath); err != nil {
		log.Printf("[publish] %v", err)
	}

	return videoID, nil
}

// GenerateMetadata builds YouTube listing fields from a finished run. The
// description carries the script takeaway and captions so the listing
// mirrors what the video says.
func GenerateMetadata(run *types.PipelineRun, sourceURL string) VideoMetadata {
	title := run.Topic
	if len(title) > 100 {
		title = title[:97] + "..."
	}

	var b strings.Builder
	if run.Script != nil && run.Script.Takeaway != "" {
		b.WriteString(run.Script.Takeaway)
	} else {
		b.WriteString(run.Topic)
	}
	if run.Script != nil && len(run.Script.Captions) > 0 {
		b.WriteString("\n")
		for _, caption := range run.Script.Captions {
			b.WriteString("\n• ")
			b.WriteString(caption)
		}
	}
	if sourceURL != "" {
		b.WriteString("\n\n🔗 Source: ")
		b.WriteString(sourceURL)
	}
	b.WriteString("\n\n📱 Follow for a new short every day!\n#shorts #facts #didyouknow")

	tags := []string{
		"shorts",
		"facts",
		"did you know",
		"explainer",
	}

	return VideoMetadata{
		Title:       title,
		Description: b.String(),
		Tags:        tags,
		CategoryID:  config.YouTubeCategoryID,
	}
}

func firstUsableFrame(images []types.GeneratedAsset) string {
	for _, img := range images {
		if img.Status != types.AssetFailed && img.Path != "" {
			return img.Path
		}
	}
	return ""
}
