// Package importer parses CSV and XML bulk-import files into candidate
// Book records. Parsing is tolerant of malformed rows (skip and continue)
// but never mutates the library itself: callers collect the full candidate
// list and commit it in one step.
package importer

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/justyntemme/shelfmate/internal/models"
)

// ParseError reports an unusable import file (unsupported extension, empty
// content, missing header). The message is surfaced verbatim to the user
// and the import is aborted without touching the library.
type ParseError struct {
	Message string
}

func (e *ParseError) Error() string {
	return e.Message
}

func newParseError(format string, args ...any) *ParseError {
	return &ParseError{Message: fmt.Sprintf(format, args...)}
}

// Parse converts the contents of an uploaded file into candidate books,
// dispatching on the file extension.
func Parse(filename string, data []byte) ([]models.Book, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, newParseError("import file %q is empty", filename)
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return parseCSV(data)
	case ".xml":
		return parseXML(data)
	default:
		return nil, newParseError("unsupported file type %q: only .csv and .xml imports are supported", filepath.Ext(filename))
	}
}
