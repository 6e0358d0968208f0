package config

import "time"

// Script Constants
const (
	// CaptionCount is the fixed number of captions every script carries
	CaptionCount = 5

	// MaxCaptionWords is the per-caption word limit
	MaxCaptionWords = 8

	// ScriptModel is the chat model used for script generation
	ScriptModel = "gpt-4o"

	// ScriptTemperature is the sampling temperature for script generation
	ScriptTemperature = 0.7

	// ScriptTimeout bounds one language-model call
	ScriptTimeout = 60 * time.Second
)

// Voiceover Constants
const (
	// VoiceoverDirName is the directory holding numbered voiceover files
	VoiceoverDirName = "voiceovers"

	// VoiceoverFileFmt names voiceover files by sequential index
	VoiceoverFileFmt = "voiceover_%d.mp3"

	// VoiceoverPrefix and VoiceoverExt identify voiceover files when counting
	VoiceoverPrefix = "voiceover_"
	VoiceoverExt    = ".mp3"

	// TTSVoiceID is the ElevenLabs voice used for all captions
	TTSVoiceID = "onwK4e9ZLuTAKqWW03F9"

	// TTSModelID is the ElevenLabs model identifier
	TTSModelID = "eleven_multilingual_v2"

	// TTSOutputFormat is the requested audio encoding
	TTSOutputFormat = "mp3_22050_32"

	// TTSTimeout bounds one text-to-speech call
	TTSTimeout = 60 * time.Second
)

// Image Constants
const (
	// ImageDirName is the directory holding positionally numbered images
	ImageDirName = "images"

	// ImageFileFmt names image files by 1-based caption position
	ImageFileFmt = "image_%d.webp"

	// ImageWidth and ImageHeight give the 9:16 short-form dimensions
	ImageWidth  = 1080
	ImageHeight = 1920

	// ImageSeed keeps image generation reproducible across runs
	ImageSeed = 42

	// ImageOutputFormat is the requested image encoding
	ImageOutputFormat = "webp"

	// ImagePromptPrefix is the style tag prepended to every caption
	ImagePromptPrefix = "Abstract Art Style / Ultra High Quality. "

	// ImageTimeout bounds one image generation call
	ImageTimeout = 90 * time.Second
)

// Video Output Constants
const (
	// VideoOutputName is the well-known path of the assembled video
	VideoOutputName = "yt_shorts_video.mp4"

	// VideoCodec is the video encoding codec
	VideoCodec = "libx264"

	// AudioCodec is the audio encoding codec
	AudioCodec = "aac"

	// AudioBitrate is the audio quality bitrate
	AudioBitrate = "192k"

	// VideoPreset is the ffmpeg encoding speed preset
	VideoPreset = "fast"

	// VideoFrameRate is the frame rate for image-backed segments
	VideoFrameRate = 30

	// AssembleTimeout bounds the whole assembly step
	AssembleTimeout = 5 * time.Minute
)

// Service Endpoints
const (
	// ElevenLabsBaseURL is the text-to-speech API host
	ElevenLabsBaseURL = "https://api.elevenlabs.io"

	// StabilityEndpoint is the image generation endpoint
	StabilityEndpoint = "https://api.stability.ai/v2beta/stable-image/generate/core"
)

// Deduplication Constants
const (
	// SimilarityThreshold marks two topics as near-duplicates
	SimilarityThreshold = 0.95
)

// YouTube Constants
const (
	// YouTubeCategoryID for Science & Technology
	YouTubeCategoryID = "28"

	// YouTubePrivacyStatus sets video visibility
	YouTubePrivacyStatus = "public"
)

// FallbackTakeawayFmt fills the takeaway of the fallback script.
const FallbackTakeawayFmt = "Key insights about %s"

// FallbackCaptions is the deterministic script body substituted whenever the
// language model returns something unusable.
var FallbackCaptions = [CaptionCount]string{
	"What lies beyond our understanding?",
	"Exploring new frontiers of knowledge",
	"Discovering hidden patterns and connections",
	"Innovation shapes our future path",
	"The journey continues with endless possibilities",
}

// FeedPresets maps friendly names to RSS feed URLs for topic suggestions.
var FeedPresets = map[string]string{
	"cna": "https://www.channelnewsasia.com/api/v1/rss-outbound-feed?_format=xml",
	"st":  "https://www.straitstimes.com/news/singapore/rss.xml",
	"hn":  "https://hnrss.org/newest",
	"tr":  "https://www.technologyreview.com/feed/",
}

// ResolveFeedURL resolves a feed identifier to a URL
// If the input is a preset name, returns the corresponding URL
// Otherwise, returns the input as-is (assuming it's a direct URL)
func ResolveFeedURL(feedInput string) string {
	if url, exists := FeedPresets[feedInput]; exists {
		return url
	}
	return feedInput
}
