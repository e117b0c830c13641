package library

import (
	"strings"

	"github.com/justyntemme/shelfmate/internal/models"
)

// ApplyFilter returns the books matching every active predicate of the
// filter, preserving input order. An empty filter returns the input
// unchanged; the result is always a subsequence of the input.
func ApplyFilter(books []models.Book, f models.Filter) []models.Book {
	out := make([]models.Book, 0, len(books))
	for _, b := range books {
		if matches(b, f) {
			out = append(out, b)
		}
	}
	return out
}

func matches(b models.Book, f models.Filter) bool {
	if !containsFold(b.Title, f.Title) {
		return false
	}
	if !containsFold(strings.Join(b.Authors, ", "), f.Author) {
		return false
	}
	if !containsFold(b.Publisher, f.Publisher) {
		return false
	}
	if !containsFold(strings.Join(b.Categories, ", "), f.Category) {
		return false
	}
	if f.ReadingStatus != "" && f.ReadingStatus != models.StatusAll &&
		f.ReadingStatus != string(b.ReadingStatus) {
		return false
	}
	return true
}

// containsFold is a case-insensitive substring test; an empty needle
// matches everything.
func containsFold(haystack, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
