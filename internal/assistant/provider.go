// Package assistant is the boundary to the generative-AI collaborator used
// for catalog search, cover-image lookup, and library chat. Providers are
// pluggable, fallible, and slow; everything above this package treats them
// that way.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/justyntemme/shelfmate/internal/catalog"
	"github.com/justyntemme/shelfmate/internal/models"
)

// Common errors
var (
	// ErrUpstream reports a provider failure. Callers convert it into a
	// user-facing fallback message; it never leaves partial state behind.
	ErrUpstream = errors.New("assistant provider failure")
	// ErrUpstreamTimeout reports a provider call that exceeded the
	// configured deadline.
	ErrUpstreamTimeout = errors.New("assistant provider timed out")
)

// Provider defines the interface for generative-AI backends.
type Provider interface {
	// Name returns the provider identifier (e.g., "openai", "ollama").
	Name() string

	// SearchCatalog finds candidate books matching a free-text query.
	SearchCatalog(ctx context.Context, query string) ([]catalog.SearchResult, error)

	// SearchCovers returns cover image URLs for a book title.
	SearchCovers(ctx context.Context, title string) ([]string, error)

	// Ask answers a chat message given a short summary of the library.
	Ask(ctx context.Context, message, libraryContext string) (string, error)
}

// BuildLibraryContext renders the library as a compact plain-text summary
// for the chat prompt. Only titles, authors, status and progress go in;
// descriptions would blow the prompt budget for no gain.
func BuildLibraryContext(books []models.Book) string {
	if len(books) == 0 {
		return "The library is currently empty."
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "The library contains %d books:\n", len(books))
	for _, b := range books {
		fmt.Fprintf(&sb, "- %q by %s (%s, %d/%d pages)\n",
			b.Title, strings.Join(b.Authors, ", "), b.ReadingStatus, b.CurrentPage, b.PageCount)
	}
	return sb.String()
}

// stripCodeFence removes a markdown code fence wrapper if the model added
// one around its JSON answer.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
