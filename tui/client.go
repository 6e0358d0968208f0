package tui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mycguo/autogen-multi-agent-workflow/topics"
	"github.com/mycguo/autogen-multi-agent-workflow/types"
)

// APIClient is a thin HTTP client for the shorts daemon API.
type APIClient struct {
	baseURL string
	client  *http.Client
}

// NewAPIClient creates a client for the daemon at baseURL.
func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// Submit posts a new run. Conflict responses (busy pipeline, duplicate
// topic) come back as errors carrying the server's message.
func (c *APIClient) Submit(topic, sourceURL string, publish bool) (*types.RunStatus, error) {
	payload, err := json.Marshal(map[string]any{
		"topic":      topic,
		"source_url": sourceURL,
		"publish":    publish,
	})
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Post(c.baseURL+"/api/runs", "application/json", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to submit run: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, readError(resp.Body))
	}

	var status types.RunStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &status, nil
}

// GetRun fetches one run's status.
func (c *APIClient) GetRun(id string) (*types.RunStatus, error) {
	resp, err := c.client.Get(c.baseURL + "/api/runs/" + id)
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, readError(resp.Body))
	}

	var status types.RunStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &status, nil
}

// Suggestions fetches topic suggestions from the daemon's configured feed.
func (c *APIClient) Suggestions(count int) ([]topics.Suggestion, error) {
	resp, err := c.client.Get(fmt.Sprintf("%s/api/topics/suggestions?count=%d", c.baseURL, count))
	if err != nil {
		return nil, fmt.Errorf("failed to get suggestions: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, readError(resp.Body))
	}

	var body struct {
		Suggestions []topics.Suggestion `json:"suggestions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return body.Suggestions, nil
}

func readError(r io.Reader) string {
	body, _ := io.ReadAll(io.LimitReader(r, 512))
	var parsed struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Error != "" {
		return parsed.Error
	}
	return string(body)
}
