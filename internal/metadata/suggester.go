package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/conneroisu/groq-go"

	"tubeup/pkg/httputil"
	"tubeup/pkg/prompts"
)

const DefaultMaxTags = 10

// Suggester asks a Groq-hosted model for search tags derived from a video's
// title and description.
type Suggester struct {
	client  *groq.Client
	model   groq.ChatModel
	prompts *prompts.Prompts
}

func NewSuggester(apiKey, model string, p *prompts.Prompts) (*Suggester, error) {
	client, err := groq.NewClient(apiKey,
		groq.WithClient(httputil.NewRetryClient(nil, httputil.DefaultRetryConfig())),
	)
	if err != nil {
		return nil, fmt.Errorf("create groq client: %w", err)
	}

	return &Suggester{
		client:  client,
		model:   groq.ChatModel(model),
		prompts: p,
	}, nil
}

func (s *Suggester) SuggestTags(ctx context.Context, title, description string, maxTags int) ([]string, error) {
	if maxTags <= 0 {
		maxTags = DefaultMaxTags
	}

	prompt, err := s.prompts.RenderTags(prompts.TagParams{
		Title:       title,
		Description: description,
		MaxTags:     maxTags,
	})
	if err != nil {
		return nil, fmt.Errorf("render prompt: %w", err)
	}

	resp, err := s.client.ChatCompletion(ctx, groq.ChatCompletionRequest{
		Model: s.model,
		Messages: []groq.ChatCompletionMessage{
			{Role: groq.RoleSystem, Content: s.prompts.System.Tags},
			{Role: groq.RoleUser, Content: prompt},
		},
		ResponseFormat: &groq.ChatResponseFormat{
			Type: "json_object",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response")
	}

	content := resp.Choices[0].Message.Content
	if content == "" {
		return nil, fmt.Errorf("empty response")
	}

	return parseTags(content, maxTags)
}

func parseTags(content string, maxTags int) ([]string, error) {
	var wrapped struct {
		Tags []string `json:"tags"`
	}
	if err := json.Unmarshal([]byte(content), &wrapped); err != nil {
		var bare []string
		if err := json.Unmarshal([]byte(content), &bare); err != nil {
			return nil, fmt.Errorf("parse response: %w", err)
		}
		wrapped.Tags = bare
	}

	return normalizeTags(wrapped.Tags, maxTags), nil
}

// normalizeTags trims whitespace and leading '#', drops blanks and
// case-insensitive duplicates, and keeps at most maxTags entries.
func normalizeTags(raw []string, maxTags int) []string {
	seen := make(map[string]bool, len(raw))
	tags := make([]string, 0, min(len(raw), maxTags))

	for _, tag := range raw {
		tag = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(tag), "#"))
		key := strings.ToLower(tag)
		if tag == "" || seen[key] {
			continue
		}
		seen[key] = true
		tags = append(tags, tag)
		if len(tags) == maxTags {
			break
		}
	}

	return tags
}
