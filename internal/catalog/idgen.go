package catalog

import (
	"fmt"
	"sync/atomic"
	"time"
)

// idSeq disambiguates ids generated within the same millisecond. The old
// timestamp-only scheme could hand two books the same id when a bulk import
// produced rows faster than the clock ticked.
var idSeq atomic.Uint64

// NewID returns a library-unique id of the form <prefix>_<unixMilli>_<seq>.
// Prefixes in use: "manual" for form entries, "bulk" for imported rows.
func NewID(prefix string) string {
	return fmt.Sprintf("%s_%d_%d", prefix, time.Now().UnixMilli(), idSeq.Add(1))
}
