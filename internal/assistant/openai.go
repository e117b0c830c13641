package assistant

import (
	"context"
	"encoding/json"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/justyntemme/shelfmate/internal/catalog"
)

const (
	searchSystemPrompt = "You are a book catalog. Given a query, respond with ONLY a JSON array of book objects " +
		"with the fields id, title, authors (array of strings), publisher, publishedDate, description, " +
		"pageCount (integer), categories (array of strings) and thumbnail (image URL). " +
		"Return at most 5 results and no other text."

	coverSystemPrompt = "You find book cover images. Given a book title, respond with ONLY a JSON array of " +
		"publicly reachable cover image URLs, best match first, at most 5. No other text."

	chatSystemPrompt = "You are a friendly reading assistant for a personal book library. " +
		"Answer questions about the user's collection and recommend what to read next. " +
		"Base your answers on the library summary provided."
)

// OpenAIProvider talks to the OpenAI chat-completions API (or any
// API-compatible endpoint).
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

// NewOpenAIProvider creates a provider for the given API key and model.
func NewOpenAIProvider(apiKey, model string) *OpenAIProvider {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIProvider{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

// Name returns the provider identifier
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// SearchCatalog finds candidate books matching a free-text query.
func (p *OpenAIProvider) SearchCatalog(ctx context.Context, query string) ([]catalog.SearchResult, error) {
	raw, err := p.complete(ctx, searchSystemPrompt, query)
	if err != nil {
		return nil, err
	}

	var results []catalog.SearchResult
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &results); err != nil {
		return nil, fmt.Errorf("decode catalog search response: %w", err)
	}
	return results, nil
}

// SearchCovers returns cover image URLs for a book title.
func (p *OpenAIProvider) SearchCovers(ctx context.Context, title string) ([]string, error) {
	raw, err := p.complete(ctx, coverSystemPrompt, title)
	if err != nil {
		return nil, err
	}

	var urls []string
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &urls); err != nil {
		return nil, fmt.Errorf("decode cover search response: %w", err)
	}
	return urls, nil
}

// Ask answers a chat message given a summary of the library.
func (p *OpenAIProvider) Ask(ctx context.Context, message, libraryContext string) (string, error) {
	return p.complete(ctx, chatSystemPrompt+"\n\n"+libraryContext, message)
}

func (p *OpenAIProvider) complete(ctx context.Context, system, user string) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
