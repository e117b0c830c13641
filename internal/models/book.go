package models

// ReadingStatus is the reading state of a book. The wire values are the
// Turkish labels the original web app stored, so existing snapshots and
// CSV exports keep working.
type ReadingStatus string

const (
	StatusRead           ReadingStatus = "Okundu"
	StatusUnread         ReadingStatus = "Okunmadı"
	StatusReading        ReadingStatus = "Okuyorum"
	StatusPlanningToRead ReadingStatus = "Okuyacağım"
	StatusDropped        ReadingStatus = "Yarıda Bıraktım"
)

// StatusAll is the filter sentinel matching every status.
const StatusAll = "all"

// AllStatuses lists every valid reading status.
var AllStatuses = []ReadingStatus{
	StatusRead,
	StatusUnread,
	StatusReading,
	StatusPlanningToRead,
	StatusDropped,
}

// ParseReadingStatus validates a status string from untrusted input.
// Unrecognized values report ok=false; callers importing bulk rows
// fall back to StatusPlanningToRead.
func ParseReadingStatus(s string) (ReadingStatus, bool) {
	for _, st := range AllStatuses {
		if string(st) == s {
			return st, true
		}
	}
	return StatusPlanningToRead, false
}

// Book is a single catalog entry in the library.
type Book struct {
	ID            string        `json:"id"`
	Title         string        `json:"title"`
	Authors       []string      `json:"authors"`
	Publisher     string        `json:"publisher"`
	PublishedDate string        `json:"publishedDate"`
	Description   string        `json:"description"`
	PageCount     int           `json:"pageCount"`
	Categories    []string      `json:"categories"`
	CoverImageURL string        `json:"coverImageUrl"`
	ReadingStatus ReadingStatus `json:"readingStatus"`
	CurrentPage   int           `json:"currentPage"`
}

// ClampProgress computes the current page a book is allowed to carry for
// its status:
//
//	Read                   -> pageCount
//	Unread, PlanningToRead -> 0
//	Reading, Dropped       -> clamp(current, 0, pageCount)
func ClampProgress(status ReadingStatus, current, pageCount int) int {
	switch status {
	case StatusRead:
		return pageCount
	case StatusUnread, StatusPlanningToRead:
		return 0
	default:
		if current < 0 {
			return 0
		}
		if current > pageCount {
			return pageCount
		}
		return current
	}
}

// Normalize enforces the page/status invariant on a book. Called on every
// write path into the library.
func (b *Book) Normalize() {
	if b.PageCount < 0 {
		b.PageCount = 0
	}
	b.CurrentPage = ClampProgress(b.ReadingStatus, b.CurrentPage, b.PageCount)
}

// Filter narrows the visible subset of the library. Empty fields match
// everything; ReadingStatus additionally treats StatusAll as match-all.
type Filter struct {
	Title         string `json:"title"`
	Author        string `json:"author"`
	Publisher     string `json:"publisher"`
	Category      string `json:"category"`
	ReadingStatus string `json:"readingStatus"`
}

// Stats summarizes the library for the dashboard.
type Stats struct {
	TotalBooks        int    `json:"totalBooks"`
	BooksRead         int    `json:"booksRead"`
	OverallPercentage int    `json:"overallPercentage"`
	FavoriteCategory  string `json:"favoriteCategory"`
}

// ChatMessage is one turn of an assistant conversation. Messages live only
// in the session's in-memory log and are never persisted.
type ChatMessage struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}
