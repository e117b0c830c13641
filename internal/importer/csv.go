package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/justyntemme/shelfmate/internal/catalog"
	"github.com/justyntemme/shelfmate/internal/models"
)

// headerAliases maps the column names accepted in CSV headers to the
// canonical row keys the normalizer understands. Resolution is explicit: a
// column outside this table is ignored rather than trusted.
var headerAliases = map[string]string{
	"title":         "title",
	"author":        "authors",
	"authors":       "authors",
	"publisher":     "publisher",
	"publisheddate": "publisheddate",
	"year":          "publisheddate",
	"description":   "description",
	"pagecount":     "pagecount",
	"pages":         "pagecount",
	"category":      "categories",
	"categories":    "categories",
	"imagelink":     "thumbnail",
	"thumbnail":     "thumbnail",
	"status":        "status",
	"currentpage":   "currentpage",
}

// parseCSV reads a comma-delimited file whose first line is a header row.
// Quoted fields may contain commas; doubled quotes decode to a literal
// quote. Rows shorter than the header, unreadable rows, and rows without a
// title are skipped, same as title-less nodes in the XML parser.
func parseCSV(data []byte) ([]models.Book, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	headerRecord, err := r.Read()
	if err != nil {
		return nil, newParseError("could not read CSV header row: %v", err)
	}

	headers := make([]string, len(headerRecord))
	recognized := 0
	for i, h := range headerRecord {
		key := headerAliases[strings.ToLower(strings.TrimSpace(h))]
		headers[i] = key
		if key != "" {
			recognized++
		}
	}
	if recognized == 0 {
		return nil, newParseError("the first line must be a header row naming at least one known column (title, author, pages, ...)")
	}

	var books []models.Book
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// Malformed row: skip it and keep going.
			continue
		}
		if len(record) < len(headers) {
			continue
		}

		row := catalog.Row{}
		for i, key := range headers {
			if key != "" {
				row[key] = record[i]
			}
		}

		book, ok := catalog.FromRow(row, catalog.NewID("bulk"))
		if !ok {
			continue
		}
		books = append(books, book)
	}

	return books, nil
}
