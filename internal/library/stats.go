package library

import (
	"math"

	"github.com/justyntemme/shelfmate/internal/catalog"
	"github.com/justyntemme/shelfmate/internal/models"
)

// noFavorite is reported when no categorized books exist.
const noFavorite = "N/A"

// Summarize derives the dashboard metrics from the book list.
//
// OverallPercentage covers books that are actually on the go: everything
// except planning-to-read, and only where a page count is known. The
// favorite category excludes the placeholder category; ties break to the
// alphabetically first name so the result is deterministic.
func Summarize(books []models.Book) models.Stats {
	stats := models.Stats{
		TotalBooks:       len(books),
		FavoriteCategory: noFavorite,
	}

	var pagesRead, pagesTotal int
	counts := make(map[string]int)

	for _, b := range books {
		if b.ReadingStatus == models.StatusRead {
			stats.BooksRead++
		}
		if b.ReadingStatus != models.StatusPlanningToRead && b.PageCount > 0 {
			pagesRead += b.CurrentPage
			pagesTotal += b.PageCount
		}
		for _, c := range b.Categories {
			if c != catalog.DefaultCategory {
				counts[c]++
			}
		}
	}

	if pagesTotal > 0 {
		stats.OverallPercentage = int(math.Round(100 * float64(pagesRead) / float64(pagesTotal)))
	}

	best, bestCount := noFavorite, 0
	for category, count := range counts {
		if count > bestCount || (count == bestCount && category < best) {
			best, bestCount = category, count
		}
	}
	if bestCount > 0 {
		stats.FavoriteCategory = best
	}
	return stats
}
