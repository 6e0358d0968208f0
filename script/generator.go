package script

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/mycguo/autogen-multi-agent-workflow/config"
	"github.com/mycguo/autogen-multi-agent-workflow/types"
)

// systemPrompt pins the model to the fixed script shape.
const systemPrompt = `You are a creative assistant tasked with writing a script for a short video.
The script should consist of captions designed to be displayed on-screen, with the following guidelines:
    1. Each caption must be short and impactful (no more than 8 words) to avoid overwhelming the viewer.
    2. The script should have exactly 5 captions, each representing a key moment in the story.
    3. The flow of captions must feel natural, like a compelling voiceover guiding the viewer through the narrative.
    4. Always start with a question or a statement that keeps the viewer wanting to know more.
    5. You must also include the topic and takeaway in your response.
    6. The caption values must ONLY include the captions, no additional meta data or information.

Output your response in the following JSON format:
{
    "topic": "topic",
    "takeaway": "takeaway",
    "captions": [
        "caption1",
        "caption2",
        "caption3",
        "caption4",
        "caption5"
    ]
}`

// ChatClient is the minimal language-model surface the generator needs.
type ChatClient interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Generator turns a topic into a Script. It never returns an error: a failed
// call or unusable model output is replaced by the deterministic fallback
// script, and no retry is attempted.
type Generator struct {
	client ChatClient
}

// NewGenerator creates a script generator backed by the given chat client.
func NewGenerator(client ChatClient) *Generator {
	return &Generator{client: client}
}

// Generate produces a Script for the topic with a single model call.
func (g *Generator) Generate(ctx context.Context, topic string) *types.Script {
	return g.GenerateWithContext(ctx, topic, "")
}

// GenerateWithContext additionally feeds source material (e.g. an extracted
// article) into the prompt for factual grounding.
func (g *Generator) GenerateWithContext(ctx context.Context, topic, background string) *types.Script {
	user := fmt.Sprintf("Create a script for a short video about: %s", topic)
	if background != "" {
		user += "\n\nUse the following source material as background:\n" + background
	}

	cctx, cancel := context.WithTimeout(ctx, config.ScriptTimeout)
	defer cancel()

	raw, err := g.client.Complete(cctx, systemPrompt, user)
	if err != nil {
		log.Printf("[script] model call failed, using fallback script: %v", err)
		return Fallback(topic)
	}

	s, err := parseScript(raw)
	if err != nil {
		log.Printf("[script] unusable model output, using fallback script: %v", err)
		return Fallback(topic)
	}
	if s.Topic == "" {
		s.Topic = topic
	}
	return s
}

// parseScript extracts the JSON object from raw model output and validates
// its shape. Any violation is an error so the caller can fall back.
func parseScript(raw string) (*types.Script, error) {
	payload, err := extractJSON(raw)
	if err != nil {
		return nil, err
	}

	var s types.Script
	if err := json.Unmarshal([]byte(payload), &s); err != nil {
		return nil, fmt.Errorf("failed to decode script JSON: %w", err)
	}
	if s.Takeaway == "" {
		return nil, fmt.Errorf("script is missing a takeaway")
	}
	if len(s.Captions) != config.CaptionCount {
		return nil, fmt.Errorf("expected %d captions, got %d", config.CaptionCount, len(s.Captions))
	}
	for i, c := range s.Captions {
		words := len(strings.Fields(c))
		if words == 0 {
			return nil, fmt.Errorf("caption %d is empty", i+1)
		}
		if words > config.MaxCaptionWords {
			return nil, fmt.Errorf("caption %d has %d words, limit is %d", i+1, words, config.MaxCaptionWords)
		}
	}
	return &s, nil
}

// extractJSON returns the substring from the first '{' to the last '}'.
// Models often wrap the object in prose or markdown fences; the greedy match
// strips both.
func extractJSON(raw string) (string, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end < start {
		return "", fmt.Errorf("no JSON object in model output")
	}
	return raw[start : end+1], nil
}

// Fallback builds the deterministic script used whenever generation fails.
// The topic is copied from the input so the pipeline always has a usable
// script to work with.
func Fallback(topic string) *types.Script {
	captions := make([]string, config.CaptionCount)
	copy(captions, config.FallbackCaptions[:])
	return &types.Script{
		Topic:    topic,
		Takeaway: fmt.Sprintf(config.FallbackTakeawayFmt, topic),
		Captions: captions,
	}
}
