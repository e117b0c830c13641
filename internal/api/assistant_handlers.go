package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/justyntemme/shelfmate/internal/assistant"
	"github.com/justyntemme/shelfmate/internal/catalog"
	"github.com/justyntemme/shelfmate/internal/models"
)

// SearchCatalog asks the assistant for candidate books and returns them
// normalized, without adding anything to the library.
func (h *Handler) SearchCatalog(c *gin.Context) {
	var req struct {
		Query string `json:"query" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query is required"})
		return
	}

	results, err := h.assistant.SearchCatalog(c.Request.Context(), req.Query)
	if err != nil {
		h.upstreamError(c, err)
		return
	}
	if c.Request.Context().Err() != nil {
		// The client went away while we were waiting; drop the result.
		return
	}

	candidates := make([]models.Book, 0, len(results))
	for _, r := range results {
		candidates = append(candidates, catalog.FromSearchResult(r))
	}
	c.JSON(http.StatusOK, gin.H{"candidates": candidates})
}

// AddFromSearch adds one chosen search candidate to the library. Like the
// manual path, the page count must be known.
func (h *Handler) AddFromSearch(c *gin.Context) {
	var raw catalog.SearchResult
	if err := c.ShouldBindJSON(&raw); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if raw.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}
	if raw.PageCount <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "total pages must be a positive number"})
		return
	}

	book := catalog.FromSearchResult(raw)
	if err := h.library.AddOne(book); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "This book is already in your library"})
		return
	}
	c.JSON(http.StatusCreated, book)
}

// SearchCovers returns cover image URLs for a title.
func (h *Handler) SearchCovers(c *gin.Context) {
	title := c.Query("title")
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title query parameter is required"})
		return
	}

	urls, err := h.assistant.SearchCovers(c.Request.Context(), title)
	if err != nil {
		h.upstreamError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"covers": urls})
}

// Chat relays a message to the assistant with the library as context.
func (h *Handler) Chat(c *gin.Context) {
	var req struct {
		SessionID string `json:"sessionId"`
		Message   string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}

	libraryContext := assistant.BuildLibraryContext(h.library.All())
	sessionID, reply, err := h.assistant.Chat(c.Request.Context(), req.SessionID, req.Message, libraryContext)
	if err != nil {
		h.upstreamError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"sessionId": sessionID, "reply": reply})
}

// ChatHistory returns a session's in-memory message log.
func (h *Handler) ChatHistory(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"messages": h.assistant.History(c.Param("id"))})
}

// upstreamError converts assistant failures into user-facing fallbacks.
func (h *Handler) upstreamError(c *gin.Context, err error) {
	if errors.Is(err, assistant.ErrUpstreamTimeout) {
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "The assistant took too long to answer. Please try again."})
		return
	}
	c.JSON(http.StatusBadGateway, gin.H{"error": "The assistant is unavailable right now. Please try again later."})
}
