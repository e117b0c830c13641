package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/justyntemme/shelfmate/internal/catalog"
)

// OllamaProvider talks to a local Ollama instance over its generate API.
type OllamaProvider struct {
	client  *http.Client
	baseURL string
	model   string
}

// NewOllamaProvider creates a provider for the given Ollama base URL and
// model name.
func NewOllamaProvider(baseURL, model string) *OllamaProvider {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "llama3.2"
	}
	return &OllamaProvider{
		client:  &http.Client{},
		baseURL: baseURL,
		model:   model,
	}
}

// Name returns the provider identifier
func (p *OllamaProvider) Name() string {
	return "ollama"
}

// SearchCatalog finds candidate books matching a free-text query.
func (p *OllamaProvider) SearchCatalog(ctx context.Context, query string) ([]catalog.SearchResult, error) {
	raw, err := p.generate(ctx, searchSystemPrompt+"\n\nQuery: "+query)
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
func (p *OllamaProvider) SearchCovers(ctx context.Context, title string) ([]string, error) {
	raw, err := p.generate(ctx, coverSystemPrompt+"\n\nTitle: "+title)
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
func (p *OllamaProvider) Ask(ctx context.Context, message, libraryContext string) (string, error) {
	return p.generate(ctx, chatSystemPrompt+"\n\n"+libraryContext+"\n\nUser: "+message)
}

func (p *OllamaProvider) generate(ctx context.Context, prompt string) (string, error) {
	requestBody, err := json.Marshal(map[string]any{
		"model":  p.model,
		"prompt": prompt,
		"stream": false,
	})
	if err != nil {
		return "", fmt.Errorf("marshal ollama request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/generate", bytes.NewReader(requestBody))
	if err != nil {
		return "", fmt.Errorf("create ollama request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send ollama request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, string(body))
	}

	var response struct {
		Response string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("decode ollama response: %w", err)
	}
	return response.Response, nil
}
