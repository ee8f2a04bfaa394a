// Package ai asks a Gemini model for question tags, people to mention and
// names already mentioned in a question. Every call returns JSON so the
// answers can be decoded without scraping prose.
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Dias221467/Campus_Overflow/internal/models"
	"github.com/Dias221467/Campus_Overflow/pkg/logger"
	"google.golang.org/api/generativelanguage/v1beta"
	"google.golang.org/api/option"
)

var ErrEmptyResponse = errors.New("model returned no content")

const (
	tagsPrompt = `Suggest relevant tags for the following question. Return a list of tags that can help categorize it effectively.
Respond with JSON of the form {"tags": ["..."]}. Tags are short, lowercase and contain no spaces.

Question: %s`

	recommendPrompt = `You are an expert at connecting people. Recommend users to mention in a question based on their expertise, which is described in their bio.
Based on the question's content and the users' bios, identify up to 3 users who would be most suitable to answer the question.
If no users seem relevant, return an empty list.
Respond with JSON of the form {"recommendedUsernames": ["..."]} using names exactly as listed.

Users:
%s
Question: %s`

	mentionsPrompt = `Analyze the following question and extract all mentioned usernames. If no users are mentioned, return an empty list.
Only these usernames exist: %s
Respond with JSON of the form {"mentionedUsernames": ["..."]}.

Question: %s`
)

// Client talks to the generativelanguage v1beta API.
type Client struct {
	svc   *generativelanguage.Service
	model string
}

// NewClient builds a client for model. An empty apiKey leaves authentication
// to opts.
func NewClient(ctx context.Context, apiKey, model string, opts ...option.ClientOption) (*Client, error) {
	if !strings.HasPrefix(model, "models/") {
		model = "models/" + model
	}
	if apiKey != "" {
		opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	}
	svc, err := generativelanguage.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create generative language client: %w", err)
	}
	return &Client{svc: svc, model: model}, nil
}

func (c *Client) SuggestTags(ctx context.Context, question string) ([]string, error) {
	var out struct {
		Tags []string `json:"tags"`
	}
	if err := c.generate(ctx, fmt.Sprintf(tagsPrompt, question), &out); err != nil {
		return nil, err
	}
	return out.Tags, nil
}

func (c *Client) RecommendUsers(ctx context.Context, question string, candidates []models.User) ([]string, error) {
	var b strings.Builder
	for _, u := range candidates {
		fmt.Fprintf(&b, "- %s: %s\n", u.Name, u.Bio)
	}

	var out struct {
		RecommendedUsernames []string `json:"recommendedUsernames"`
	}
	if err := c.generate(ctx, fmt.Sprintf(recommendPrompt, b.String(), question), &out); err != nil {
		return nil, err
	}
	return out.RecommendedUsernames, nil
}

func (c *Client) DetectMentions(ctx context.Context, question string, names []string) ([]string, error) {
	var out struct {
		MentionedUsernames []string `json:"mentionedUsernames"`
	}
	if err := c.generate(ctx, fmt.Sprintf(mentionsPrompt, strings.Join(names, ", "), question), &out); err != nil {
		return nil, err
	}
	return out.MentionedUsernames, nil
}

func (c *Client) generate(ctx context.Context, prompt string, out any) error {
	req := &generativelanguage.GenerateContentRequest{
		Contents: []*generativelanguage.Content{{
			Role:  "user",
			Parts: []*generativelanguage.Part{{Text: prompt}},
		}},
		GenerationConfig: &generativelanguage.GenerationConfig{
			ResponseMimeType: "application/json",
		},
	}

	resp, err := c.svc.Models.GenerateContent(c.model, req).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("generateContent failed: %w", err)
	}

	text := responseText(resp)
	if text == "" {
		return ErrEmptyResponse
	}
	if err := json.Unmarshal([]byte(text), out); err != nil {
		logger.Log.WithField("response", text).Warn("Model returned malformed JSON")
		return fmt.Errorf("failed to decode model output: %w", err)
	}
	return nil
}

func responseText(resp *generativelanguage.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	return strings.TrimSpace(b.String())
}
