package voiceover

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/mycguo/autogen-multi-agent-workflow/config"
)

// TTSClient converts one caption into a complete audio payload. The payload
// is returned in full so the caller never persists a half-streamed response.
type TTSClient interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// ElevenLabsConfig configures the ElevenLabs client. Zero values fall back
// to the pipeline defaults.
type ElevenLabsConfig struct {
	APIKey  string
	BaseURL string
	VoiceID string
	ModelID string
}

// ElevenLabsClient calls the ElevenLabs text-to-speech API.
type ElevenLabsClient struct {
	apiKey     string
	baseURL    string
	voiceID    string
	modelID    string
	httpClient *http.Client
}

// NewElevenLabsClient creates a TTS client with the fixed voice and model
// used for all captions.
func NewElevenLabsClient(cfg ElevenLabsConfig) *ElevenLabsClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = config.ElevenLabsBaseURL
	}
	if cfg.VoiceID == "" {
		cfg.VoiceID = config.TTSVoiceID
	}
	if cfg.ModelID == "" {
		cfg.ModelID = config.TTSModelID
	}
	return &ElevenLabsClient{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		voiceID:    cfg.VoiceID,
		modelID:    cfg.ModelID,
		httpClient: &http.Client{Timeout: config.TTSTimeout},
	}
}

// Synthesize requests one MP3 for the given text and returns the full body.
func (c *ElevenLabsClient) Synthesize(ctx context.Context, text string) ([]byte, error) {
	payload := map[string]string{
		"text":     text,
		"model_id": c.modelID,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/v1/text-to-speech/%s?output_format=%s", c.baseURL, c.voiceID, config.TTSOutputFormat)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("tts request failed: status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio payload: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("tts returned an empty payload")
	}
	return audio, nil
}
