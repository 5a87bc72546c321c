package sources

import (
	"context"
	"time"

	"github.com/poiesic/bookvec/core"
)

// Source fetches raw book records from one external service.
type Source interface {
	// Name identifies the source in logs, metadata and identity keys.
	Name() string

	// Fetch requests the first page of records for facet and maps each item
	// into a Candidate. Items that cannot be mapped at all are skipped.
	// Failures are reported as *FetchError.
	Fetch(ctx context.Context, facet core.Facet) ([]Candidate, error)
}

// Candidate is a raw record mapped into uniform fields but not yet admitted.
type Candidate struct {
	NaturalID     string // Source-specific dedup key
	ISBN          string // Canonical key, normalized
	Title         string
	Authors       []string
	Description   string
	PublishedDate string
	Thumbnail     string

	// DescriptionOptional admits records without a description.
	// Such records are stored without an embedding.
	DescriptionOptional bool
}

// Config holds the settings shared by every source client.
type Config struct {
	BaseURL           string
	APIKey            string
	PageSize          int
	RequestsPerSecond float64
	Timeout           time.Duration
}

// DefaultTimeout bounds a single source request.
const DefaultTimeout = 10 * time.Second

// WithDefaults returns a copy of c with zero fields replaced by the given
// base URL and page size and the default timeout.
func (c Config) WithDefaults(baseURL string, pageSize int) Config {
	if c.BaseURL == "" {
		c.BaseURL = baseURL
	}
	if c.PageSize <= 0 {
		c.PageSize = pageSize
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}
