package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justyntemme/shelfmate/internal/models"
)

func TestParseCSVRoundTrip(t *testing.T) {
	data := []byte("title,author,publisher,pages,status\n" +
		`"Dune","Frank Herbert","Ace",412,Okuyorum` + "\n")

	books, err := Parse("library.csv", data)
	require.NoError(t, err)
	require.Len(t, books, 1)

	book := books[0]
	assert.Equal(t, "Dune", book.Title)
	assert.Equal(t, []string{"Frank Herbert"}, book.Authors)
	assert.Equal(t, "Ace", book.Publisher)
	assert.Equal(t, 412, book.PageCount)
	assert.Equal(t, models.StatusReading, book.ReadingStatus)
	assert.Contains(t, book.ID, "bulk_")
}

func TestParseCSVQuotedComma(t *testing.T) {
	data := []byte("title,author\n" +
		`"A Memoir","Smith, John"` + "\n")

	books, err := Parse("a.csv", data)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, []string{"Smith, John"}, books[0].Authors)
}

func TestParseCSVDoubledQuotes(t *testing.T) {
	data := []byte("title,author\n" +
		`"The ""Best"" Book","Jane Doe"` + "\n")

	books, err := Parse("a.csv", data)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, `The "Best" Book`, books[0].Title)
}

func TestParseCSVSkipsIncompleteRows(t *testing.T) {
	data := []byte("title,author,pages\n" +
		"Dune,Frank Herbert,412\n" +
		"Short Row\n" + // fewer fields than headers
		",,100\n" + // no title, no author
		"Hyperion,Dan Simmons,482\n")

	books, err := Parse("a.csv", data)
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, "Dune", books[0].Title)
	assert.Equal(t, "Hyperion", books[1].Title)
}

func TestParseCSVPartialValidity(t *testing.T) {
	// Three rows, one lacking a title: exactly two candidates. The author
	// alone does not rescue the row; CSV and XML agree that a record
	// without a title is dropped.
	data := []byte("title,author\n" +
		"Dune,Frank Herbert\n" +
		" ,Ursula K. Le Guin\n" +
		"Hyperion,Dan Simmons\n")

	books, err := Parse("a.csv", data)
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, "Dune", books[0].Title)
	assert.Equal(t, "Hyperion", books[1].Title)
}

func TestParseCSVHeaderAliases(t *testing.T) {
	data := []byte("title,authors,year,category,imagelink,currentpage,status\n" +
		"Dune,Frank Herbert,1965,Science Fiction,https://example.com/d.jpg,50,Okuyorum\n")

	books, err := Parse("a.csv", data)
	require.NoError(t, err)
	require.Len(t, books, 1)

	book := books[0]
	assert.Equal(t, "1965", book.PublishedDate)
	assert.Equal(t, []string{"Science Fiction"}, book.Categories)
	assert.Equal(t, "https://example.com/d.jpg", book.CoverImageURL)
	// pageCount defaulted to 0, so the clamp pins currentPage to 0.
	assert.Equal(t, 0, book.CurrentPage)
}

func TestParseCSVUnknownHeader(t *testing.T) {
	data := []byte("foo,bar\n1,2\n")
	_, err := Parse("a.csv", data)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, perr.Message, "header")
}

func TestParseRejectsUnsupportedAndEmptyFiles(t *testing.T) {
	var perr *ParseError

	_, err := Parse("books.txt", []byte("whatever"))
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, perr.Message, "unsupported file type")

	_, err = Parse("books.csv", []byte("   \n "))
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, perr.Message, "empty")
}

func TestParseXML(t *testing.T) {
	data := []byte(`<?xml version="1.0" encoding="UTF-8"?>
<books>
  <book>
    <title>Dune</title>
    <author>Frank Herbert</author>
    <publisher>Ace</publisher>
    <pageCount>412</pageCount>
    <status>Okundu</status>
    <currentPage>100</currentPage>
  </book>
  <book>
    <author>No Title</author>
  </book>
  <book>
    <title>Hyperion</title>
    <pages>482</pages>
  </book>
</books>`)

	books, err := Parse("library.xml", data)
	require.NoError(t, err)
	require.Len(t, books, 2)

	assert.Equal(t, "Dune", books[0].Title)
	assert.Equal(t, 412, books[0].PageCount)
	assert.Equal(t, models.StatusRead, books[0].ReadingStatus)
	// Read status forces currentPage to pageCount.
	assert.Equal(t, 412, books[0].CurrentPage)

	// The pages alias works for XML too.
	assert.Equal(t, "Hyperion", books[1].Title)
	assert.Equal(t, 482, books[1].PageCount)
}

func TestParseXMLNoBooks(t *testing.T) {
	_, err := Parse("a.xml", []byte(`<library><shelf/></library>`))
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, perr.Message, "no <book> entries")
}

func TestParseXMLMalformed(t *testing.T) {
	_, err := Parse("a.xml", []byte(`<books><book><title>Dune</title>`))
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
}

func TestParseBulkIDsUnique(t *testing.T) {
	data := []byte("title,author\n" +
		"A,1\nB,2\nC,3\nD,4\nE,5\n")

	books, err := Parse("a.csv", data)
	require.NoError(t, err)

	seen := make(map[string]struct{})
	for _, b := range books {
		_, dup := seen[b.ID]
		require.False(t, dup, "duplicate bulk id %s", b.ID)
		seen[b.ID] = struct{}{}
	}
}
