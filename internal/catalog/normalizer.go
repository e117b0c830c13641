// Package catalog converts heterogeneous raw input (assistant search
// results, manual form entries, bulk-import rows) into canonical Book
// records with defaulted fields.
package catalog

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/justyntemme/shelfmate/internal/models"
)

// Placeholder values applied when a source omits a field.
const (
	DefaultAuthor        = "Unknown Author"
	DefaultPublisher     = "Unknown Publisher"
	DefaultPublishedDate = "Unknown"
	DefaultDescription   = "No description available."
	DefaultCategory      = "Uncategorized"
)

const (
	placeholderHost   = "https://picsum.photos"
	placeholderWidth  = 300
	placeholderHeight = 450
)

// ValidationError reports user-facing input problems on the manual and
// search-add paths. The message is surfaced verbatim to the caller.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func newValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// SearchResult is a candidate book returned by the assistant's catalog
// search, before normalization.
type SearchResult struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Authors       []string `json:"authors"`
	Publisher     string   `json:"publisher"`
	PublishedDate string   `json:"publishedDate"`
	Description   string   `json:"description"`
	PageCount     int      `json:"pageCount"`
	Categories    []string `json:"categories"`
	Thumbnail     string   `json:"thumbnail"`
}

// ManualInput carries the fields of the add-book form.
type ManualInput struct {
	Title         string   `json:"title"`
	Authors       []string `json:"authors"`
	Publisher     string   `json:"publisher"`
	PublishedDate string   `json:"publishedDate"`
	Description   string   `json:"description"`
	PageCount     int      `json:"pageCount"`
	Categories    []string `json:"categories"`
	CoverImageURL string   `json:"coverImageUrl"`
	ReadingStatus string   `json:"readingStatus"`
	CurrentPage   int      `json:"currentPage"`
}

// PlaceholderCover returns a deterministic placeholder image URL for the
// given seed (book id, or title when no id exists yet). Determinism matters:
// re-normalizing the same record must produce the same cover.
func PlaceholderCover(seed string) string {
	safe := url.PathEscape(strings.ReplaceAll(strings.TrimSpace(seed), " ", "-"))
	return fmt.Sprintf("%s/seed/%s/%d/%d", placeholderHost, safe, placeholderWidth, placeholderHeight)
}

// FromSearchResult normalizes an assistant search candidate. Every field is
// defaulted; validation of the page count happens at the add site because
// the candidate list itself may legitimately carry unknown page counts.
func FromSearchResult(raw SearchResult) models.Book {
	id := strings.TrimSpace(raw.ID)
	if id == "" {
		id = NewID("manual")
	}

	book := models.Book{
		ID:            id,
		Title:         strings.TrimSpace(raw.Title),
		Authors:       cleanList(raw.Authors, DefaultAuthor),
		Publisher:     defaultString(raw.Publisher, DefaultPublisher),
		PublishedDate: defaultString(raw.PublishedDate, DefaultPublishedDate),
		Description:   defaultString(raw.Description, DefaultDescription),
		PageCount:     raw.PageCount,
		Categories:    cleanList(raw.Categories, DefaultCategory),
		CoverImageURL: strings.TrimSpace(raw.Thumbnail),
		ReadingStatus: models.StatusPlanningToRead,
	}
	if book.CoverImageURL == "" {
		book.CoverImageURL = PlaceholderCover(coverSeed(book.ID, book.Title))
	}
	book.Normalize()
	return book
}

// FromManualInput validates and normalizes a form submission. Title, at
// least one author, and a positive page count are required.
func FromManualInput(in ManualInput) (models.Book, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return models.Book{}, newValidationError("title", "title is required")
	}
	authors := cleanList(in.Authors, "")
	if len(authors) == 0 {
		return models.Book{}, newValidationError("authors", "at least one author is required")
	}
	if in.PageCount <= 0 {
		return models.Book{}, newValidationError("pageCount", "total pages must be a positive number")
	}

	status, _ := models.ParseReadingStatus(in.ReadingStatus)

	book := models.Book{
		ID:            NewID("manual"),
		Title:         title,
		Authors:       authors,
		Publisher:     defaultString(in.Publisher, DefaultPublisher),
		PublishedDate: defaultString(in.PublishedDate, DefaultPublishedDate),
		Description:   defaultString(in.Description, DefaultDescription),
		PageCount:     in.PageCount,
		Categories:    cleanList(in.Categories, DefaultCategory),
		CoverImageURL: strings.TrimSpace(in.CoverImageURL),
		ReadingStatus: status,
		CurrentPage:   in.CurrentPage,
	}
	if book.CoverImageURL == "" {
		book.CoverImageURL = PlaceholderCover(coverSeed(book.ID, book.Title))
	}
	book.Normalize()
	return book, nil
}

// FromUpdate validates and normalizes an edit of an existing book. Title
// and at least one author are required like the manual path; the page count
// may stay 0 because bulk-imported books legitimately carry an unknown page
// count until the user fills it in.
func FromUpdate(in models.Book) (models.Book, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return models.Book{}, newValidationError("title", "title is required")
	}
	authors := cleanList(in.Authors, "")
	if len(authors) == 0 {
		return models.Book{}, newValidationError("authors", "at least one author is required")
	}
	if in.PageCount < 0 {
		return models.Book{}, newValidationError("pageCount", "total pages cannot be negative")
	}

	status, _ := models.ParseReadingStatus(string(in.ReadingStatus))

	book := models.Book{
		ID:            in.ID,
		Title:         title,
		Authors:       authors,
		Publisher:     defaultString(in.Publisher, DefaultPublisher),
		PublishedDate: defaultString(in.PublishedDate, DefaultPublishedDate),
		Description:   defaultString(in.Description, DefaultDescription),
		PageCount:     in.PageCount,
		Categories:    cleanList(in.Categories, DefaultCategory),
		CoverImageURL: strings.TrimSpace(in.CoverImageURL),
		ReadingStatus: status,
		CurrentPage:   in.CurrentPage,
	}
	if book.CoverImageURL == "" {
		book.CoverImageURL = PlaceholderCover(coverSeed(book.ID, book.Title))
	}
	book.Normalize()
	return book, nil
}

// Row is a bulk-import record keyed by canonical column name. Recognized
// keys: title, authors, publisher, publisheddate, description, pagecount,
// categories, thumbnail, status, currentpage. Unresolved keys default.
type Row map[string]string

// FromRow normalizes one bulk-import row. Rows without a title are rejected
// (ok=false) and silently skipped by the importer; a missing author falls
// back to the placeholder. Unlike the manual path, a missing or unparseable
// page count defaults to 0: bulk files are best-effort and a half-known
// record beats a dropped one.
func FromRow(row Row, id string) (models.Book, bool) {
	title := strings.TrimSpace(row["title"])
	if title == "" {
		return models.Book{}, false
	}

	var authors []string
	if author := strings.TrimSpace(row["authors"]); author != "" {
		authors = splitList(author)
	}

	pageCount := parseNonNegativeInt(row["pagecount"])
	currentPage := parseNonNegativeInt(row["currentpage"])
	status, _ := models.ParseReadingStatus(strings.TrimSpace(row["status"]))

	book := models.Book{
		ID:            id,
		Title:         title,
		Authors:       cleanList(authors, DefaultAuthor),
		Publisher:     defaultString(row["publisher"], DefaultPublisher),
		PublishedDate: defaultString(row["publisheddate"], DefaultPublishedDate),
		Description:   defaultString(row["description"], DefaultDescription),
		PageCount:     pageCount,
		Categories:    cleanList(splitList(row["categories"]), DefaultCategory),
		CoverImageURL: strings.TrimSpace(row["thumbnail"]),
		ReadingStatus: status,
		CurrentPage:   currentPage,
	}
	if book.CoverImageURL == "" {
		book.CoverImageURL = PlaceholderCover(coverSeed(book.ID, book.Title))
	}
	book.Normalize()
	return book, true
}

func coverSeed(id, title string) string {
	if id != "" {
		return id
	}
	return title
}

func defaultString(s, fallback string) string {
	if trimmed := strings.TrimSpace(s); trimmed != "" {
		return trimmed
	}
	return fallback
}

// cleanList trims entries and drops empties. When nothing survives and a
// fallback is given, the fallback becomes the single entry.
func cleanList(items []string, fallback string) []string {
	var out []string
	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 && fallback != "" {
		return []string{fallback}
	}
	return out
}

// splitList splits a semicolon- or comma-delimited cell into entries.
func splitList(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	sep := ","
	if strings.Contains(s, ";") {
		sep = ";"
	}
	return strings.Split(s, sep)
}

func parseNonNegativeInt(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
