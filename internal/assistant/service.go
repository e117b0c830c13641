package assistant

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/justyntemme/shelfmate/internal/catalog"
	"github.com/justyntemme/shelfmate/internal/models"
)

// DefaultTimeout bounds every provider call. The upstream contract has no
// deadline of its own, so we impose one.
const DefaultTimeout = 30 * time.Second

// Service wraps a Provider with timeouts, error classification and the
// in-memory chat session log. Sessions are ephemeral: they live for the
// process only and are never persisted.
type Service struct {
	provider Provider
	timeout  time.Duration
	logger   *zap.Logger

	mu       sync.Mutex
	sessions map[string][]models.ChatMessage
}

// NewService creates an assistant service. A non-positive timeout falls
// back to DefaultTimeout.
func NewService(provider Provider, timeout time.Duration, logger *zap.Logger) *Service {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Service{
		provider: provider,
		timeout:  timeout,
		logger:   logger,
		sessions: make(map[string][]models.ChatMessage),
	}
}

// SearchCatalog runs a catalog search against the provider.
func (s *Service) SearchCatalog(ctx context.Context, query string) ([]catalog.SearchResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	results, err := s.provider.SearchCatalog(ctx, query)
	if err != nil {
		return nil, s.classify("catalog search", err)
	}
	return results, nil
}

// SearchCovers looks up cover image URLs for a title.
func (s *Service) SearchCovers(ctx context.Context, title string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	urls, err := s.provider.SearchCovers(ctx, title)
	if err != nil {
		return nil, s.classify("cover search", err)
	}
	return urls, nil
}

// Chat sends a message within a session and returns the session id and the
// assistant's reply. An empty session id starts a new session. The session
// log is only appended after a successful reply AND only while the caller's
// context is still live: a reply that arrives after the caller has gone
// away is discarded so it can never clobber newer state.
func (s *Service) Chat(ctx context.Context, sessionID, message, libraryContext string) (string, string, error) {
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	reply, err := s.provider.Ask(callCtx, message, libraryContext)
	if err != nil {
		return sessionID, "", s.classify("chat", err)
	}
	if ctx.Err() != nil {
		// Caller is gone; drop the result instead of applying it.
		return sessionID, "", s.classify("chat", ctx.Err())
	}

	s.mu.Lock()
	s.sessions[sessionID] = append(s.sessions[sessionID],
		models.ChatMessage{Role: "user", Content: message},
		models.ChatMessage{Role: "assistant", Content: reply},
	)
	s.mu.Unlock()

	return sessionID, reply, nil
}

// History returns a copy of a session's message log, oldest first.
func (s *Service) History(sessionID string) []models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := s.sessions[sessionID]
	out := make([]models.ChatMessage, len(log))
	copy(out, log)
	return out
}

// classify maps provider failures onto the upstream error taxonomy.
func (s *Service) classify(op string, err error) error {
	s.logger.Warn("assistant call failed", zap.String("op", op), zap.String("provider", s.provider.Name()), zap.Error(err))
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s", ErrUpstreamTimeout, op)
	}
	return fmt.Errorf("%w: %s: %v", ErrUpstream, op, err)
}
