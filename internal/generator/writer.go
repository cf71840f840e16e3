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
	DefaultWriterURL   = "https://api.anthropic.com/v1/messages"
	DefaultWriterModel = "claude-3-opus-20240229"
	DefaultMaxTokens   = 4000

	anthropicVersion = "2023-06-01"
)

// Writer produces the article body from a system and a user prompt.
type Writer interface {
	Write(ctx context.Context, system, prompt string) (string, error)
}

// MessagesWriter calls a large-language-model messages endpoint.
type MessagesWriter struct {
	apiKey    string
	model     string
	maxTokens int
	endpoint  string
	client    *http.Client
}

func NewMessagesWriter(apiKey, model string, maxTokens int, endpoint string, client *http.Client) *MessagesWriter {
	if model == "" {
		model = DefaultWriterModel
	}
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	if endpoint == "" {
		endpoint = DefaultWriterURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &MessagesWriter{apiKey: apiKey, model: model, maxTokens: maxTokens, endpoint: endpoint, client: client}
}

type messagesRequest struct {
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens"`
	System    string        `json:"system,omitempty"`
	Messages  []chatMessage `json:"messages"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

func (w *MessagesWriter) Write(ctx context.Context, system, prompt string) (string, error) {
	body, err := json.Marshal(messagesRequest{
		Model:     w.model,
		MaxTokens: w.maxTokens,
		System:    system,
		Messages:  []chatMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", w.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := w.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("messages API error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("messages API %d: %s", resp.StatusCode, string(b))
	}

	var mr messagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&mr); err != nil {
		return "", fmt.Errorf("decode messages response: %w", err)
	}
	if len(mr.Content) == 0 {
		return "", fmt.Errorf("empty messages response")
	}
	return mr.Content[0].Text, nil
}
