package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/justyntemme/shelfmate/internal/assistant"
	"github.com/justyntemme/shelfmate/internal/catalog"
	"github.com/justyntemme/shelfmate/internal/importer"
	"github.com/justyntemme/shelfmate/internal/library"
	"github.com/justyntemme/shelfmate/internal/models"
	"github.com/justyntemme/shelfmate/internal/store"
)

// maxImportSize caps bulk-import uploads at 10MB.
const maxImportSize = 10 * 1024 * 1024

// Handler contains all HTTP handlers
type Handler struct {
	library   *library.Manager
	assistant *assistant.Service
	store     *store.Store
	logger    *zap.Logger
}

// NewHandler creates a new handler instance
func NewHandler(lib *library.Manager, ai *assistant.Service, st *store.Store, logger *zap.Logger) *Handler {
	return &Handler{
		library:   lib,
		assistant: ai,
		store:     st,
		logger:    logger,
	}
}

// HealthCheck reports service liveness
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ListBooks returns the library, narrowed by filter query parameters
func (h *Handler) ListBooks(c *gin.Context) {
	filter := models.Filter{
		Title:         c.Query("title"),
		Author:        c.Query("author"),
		Publisher:     c.Query("publisher"),
		Category:      c.Query("category"),
		ReadingStatus: c.Query("status"),
	}

	books := library.ApplyFilter(h.library.All(), filter)
	c.JSON(http.StatusOK, gin.H{"books": books, "count": len(books)})
}

// GetBook returns a single book by id
func (h *Handler) GetBook(c *gin.Context) {
	book, err := h.library.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Book not found"})
		return
	}
	c.JSON(http.StatusOK, book)
}

// AddBook handles a manual form submission
func (h *Handler) AddBook(c *gin.Context) {
	var input catalog.ManualInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	book, err := catalog.FromManualInput(input)
	if err != nil {
		var verr *catalog.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message, "field": verr.Field})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.library.AddOne(book); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "A book with this id already exists"})
		return
	}
	c.JSON(http.StatusCreated, book)
}

// UpdateBook replaces the book with the id in the path. The payload goes
// through the same validation and defaulting as the manual add path so an
// edit can never store a book that an add would have rejected.
func (h *Handler) UpdateBook(c *gin.Context) {
	var input models.Book
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	input.ID = c.Param("id")

	book, err := catalog.FromUpdate(input)
	if err != nil {
		var verr *catalog.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message, "field": verr.Field})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.library.Update(book); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Book not found"})
		return
	}

	updated, _ := h.library.Get(book.ID)
	c.JSON(http.StatusOK, updated)
}

// ImportBooks parses an uploaded CSV/XML file. With ?preview=true it
// returns the candidates and title-duplicate warnings without committing;
// otherwise it commits the whole batch in one step.
func (h *Handler) ImportBooks(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return
	}
	defer file.Close()

	if header.Size > maxImportSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File too large (max 10MB)"})
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file"})
		return
	}

	candidates, err := importer.Parse(header.Filename, data)
	if err != nil {
		var perr *importer.ParseError
		if errors.As(err, &perr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": perr.Message})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if c.Query("preview") == "true" {
		c.JSON(http.StatusOK, gin.H{
			"candidates": candidates,
			"warnings":   h.library.PreviewDuplicates(candidates),
		})
		return
	}

	added, skipped := h.library.AddMany(candidates)
	h.logger.Info("bulk import committed",
		zap.String("file", header.Filename),
		zap.Int("added", added),
		zap.Int("skipped", skipped))
	c.JSON(http.StatusOK, gin.H{"added": added, "skipped": skipped})
}

// GetStats returns the library summary metrics
func (h *Handler) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, library.Summarize(h.library.All()))
}

// GetProfile returns the stored display name
func (h *Handler) GetProfile(c *gin.Context) {
	var name string
	if err := h.store.Load(store.KeyDisplayName, &name); err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			h.logger.Warn("display name snapshot unreadable", zap.Error(err))
		}
		name = ""
	}
	c.JSON(http.StatusOK, gin.H{"displayName": name})
}

// UpdateProfile stores the display name
func (h *Handler) UpdateProfile(c *gin.Context) {
	var req struct {
		DisplayName string `json:"displayName" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "displayName is required"})
		return
	}

	if err := h.store.Save(store.KeyDisplayName, req.DisplayName); err != nil {
		// Write failures are logged and swallowed; the action still succeeds
		// from the user's point of view.
		h.logger.Error("failed to persist display name", zap.Error(err))
	}
	c.JSON(http.StatusOK, gin.H{"displayName": req.DisplayName})
}
