package importer

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"

	"github.com/justyntemme/shelfmate/internal/catalog"
	"github.com/justyntemme/shelfmate/internal/models"
)

// xmlBook mirrors one <book> element of a flat export file. All fields are
// read as text; the normalizer handles typing and defaults.
type xmlBook struct {
	Title         string `xml:"title"`
	Author        string `xml:"author"`
	Publisher     string `xml:"publisher"`
	PublishedDate string `xml:"publishedDate"`
	Description   string `xml:"description"`
	PageCount     string `xml:"pageCount"`
	Pages         string `xml:"pages"`
	Categories    string `xml:"categories"`
	Thumbnail     string `xml:"thumbnail"`
	Status        string `xml:"status"`
	CurrentPage   string `xml:"currentPage"`
}

// parseXML reads a flat list of <book> elements, with or without an
// enclosing root element. Elements without a title are skipped.
func parseXML(data []byte) ([]models.Book, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))

	var books []models.Book
	sawBookElement := false

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, newParseError("malformed XML: %v", err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "book" {
			continue
		}
		sawBookElement = true

		var node xmlBook
		if err := dec.DecodeElement(&node, &start); err != nil {
			// Broken element: skip it and keep going.
			continue
		}
		if strings.TrimSpace(node.Title) == "" {
			continue
		}

		pageCount := node.PageCount
		if strings.TrimSpace(pageCount) == "" {
			pageCount = node.Pages
		}

		row := catalog.Row{
			"title":         node.Title,
			"authors":       node.Author,
			"publisher":     node.Publisher,
			"publisheddate": node.PublishedDate,
			"description":   node.Description,
			"pagecount":     pageCount,
			"categories":    node.Categories,
			"thumbnail":     node.Thumbnail,
			"status":        node.Status,
			"currentpage":   node.CurrentPage,
		}

		book, ok := catalog.FromRow(row, catalog.NewID("bulk"))
		if !ok {
			continue
		}
		books = append(books, book)
	}

	if !sawBookElement {
		return nil, newParseError("no <book> entries found in XML file")
	}

	return books, nil
}
