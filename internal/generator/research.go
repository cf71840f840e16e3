package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const (
	DefaultResearchURL   = "https://api.perplexity.ai/chat/completions"
	DefaultResearchModel = "llama-3-sonar-large-32k-online"

	researchSystemPrompt = "Be precise and concise."
	researchUserPrompt   = "Research information about %s"
)

// Researcher gathers topical context for a keyword before writing.
type Researcher interface {
	Research(ctx context.Context, keyword string) (string, error)
}

// ChatResearcher talks to a search-augmented chat completions endpoint using
// the OpenAI-compatible wire format.
type ChatResearcher struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

func NewChatResearcher(apiKey, model, endpoint string, client *http.Client) *ChatResearcher {
	if model == "" {
		model = DefaultResearchModel
	}
	if endpoint == "" {
		endpoint = DefaultResearchURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &ChatResearcher{apiKey: apiKey, model: model, endpoint: endpoint, client: client}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (r *ChatResearcher) Research(ctx context.Context, keyword string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: r.model,
		Messages: []chatMessage{
			{Role: "system", Content: researchSystemPrompt},
			{Role: "user", Content: fmt.Sprintf(researchUserPrompt, keyword)},
		},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.apiKey)

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("research API error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("research API %d: %s", resp.StatusCode, string(b))
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", fmt.Errorf("decode research response: %w", err)
	}
	if len(cr.Choices) == 0 {
		return "", fmt.Errorf("empty research response")
	}
	return cr.Choices[0].Message.Content, nil
}
