package imagegen

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/mycguo/autogen-multi-agent-workflow/config"
)

// ImageClient turns one prompt into a complete image payload.
type ImageClient interface {
	Generate(ctx context.Context, prompt string) ([]byte, error)
}

// StabilityConfig configures the Stability AI client. Zero values fall back
// to the pipeline defaults.
type StabilityConfig struct {
	APIKey   string
	Endpoint string
}

// StabilityClient calls the Stability AI stable-image generation API.
type StabilityClient struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
}

// NewStabilityClient creates an image client generating 9:16 webp frames
// with a fixed seed, so identical prompts reproduce identical images.
func NewStabilityClient(cfg StabilityConfig) *StabilityClient {
	if cfg.Endpoint == "" {
		cfg.Endpoint = config.StabilityEndpoint
	}
	return &StabilityClient{
		apiKey:     cfg.APIKey,
		endpoint:   cfg.Endpoint,
		httpClient: &http.Client{Timeout: config.ImageTimeout},
	}
}

// Generate requests one image for the given prompt and returns the raw
// encoded bytes exactly as the service produced them.
func (c *StabilityClient) Generate(ctx context.Context, prompt string) ([]byte, error) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	fields := map[string]string{
		"prompt":        prompt,
		"output_format": config.ImageOutputFormat,
		"height":        strconv.Itoa(config.ImageHeight),
		"width":         strconv.Itoa(config.ImageWidth),
		"seed":          strconv.Itoa(config.ImageSeed),
	}
	for name, value := range fields {
		if err := form.WriteField(name, value); err != nil {
			return nil, fmt.Errorf("failed to build form: %w", err)
		}
	}
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("failed to build form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "image/*")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("image request failed: status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	img, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image payload: %w", err)
	}
	if len(img) == 0 {
		return nil, fmt.Errorf("image service returned an empty payload")
	}
	return img, nil
}
