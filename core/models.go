package core

import (
	"encoding/binary"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// UnknownTitle is used when a source omits a book's title.
const UnknownTitle = "Unknown Title"

// Metadata keys attached to every stored point.
const (
	MetaTitle         = "title"
	MetaAuthors       = "authors"
	MetaPublishedDate = "published_date"
	MetaThumbnail     = "thumbnail"
	MetaSource        = "source"
)

// ID is a compact numeric key derived from content.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// NormalizeISBN strips hyphens and spaces from an ISBN and upper-cases it.
// A well-formed ISBN-10 is converted to its ISBN-13 form so both editions of
// an identifier compare equal.
func NormalizeISBN(isbn string) string {
	normalized := strings.ReplaceAll(isbn, "-", "")
	normalized = strings.ReplaceAll(normalized, " ", "")
	normalized = strings.ToUpper(strings.TrimSpace(normalized))
	if isISBN10(normalized) {
		return isbn10To13(normalized)
	}
	return normalized
}

// isISBN10 reports whether s is nine digits followed by a digit or X.
func isISBN10(s string) bool {
	if len(s) != 10 {
		return false
	}
	for i := 0; i < 9; i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	last := s[9]
	return (last >= '0' && last <= '9') || last == 'X'
}

// isbn10To13 prefixes 978 and recomputes the check digit.
func isbn10To13(isbn10 string) string {
	body := "978" + isbn10[:9]
	sum := 0
	for i := 0; i < len(body); i++ {
		digit := int(body[i] - '0')
		if i%2 == 1 {
			digit *= 3
		}
		sum += digit
	}
	check := (10 - sum%10) % 10
	return body + string(rune('0'+check))
}

// Facet is one query variation applied to every source in a pass.
type Facet struct {
	Type  string `mapstructure:"type"`
	Value string `mapstructure:"value"`
}

func (f Facet) String() string {
	return f.Type + "=" + f.Value
}

// DefaultFacets returns the facets traversed when none are configured.
func DefaultFacets() []Facet {
	return []Facet{
		{Type: "rating", Value: "high"},
		{Type: "popularity", Value: "popular"},
		{Type: "date", Value: "newest"},
	}
}

// BookRecord is the uniform representation of a book accepted from any source.
type BookRecord struct {
	Identity      string    // Canonical key (normalized ISBN), also the sink key
	Title         string
	Authors       string    // Comma-joined author names
	PublishedDate string    // Passenger metadata, catalog sources only
	Thumbnail     string    // Passenger metadata, bestseller source only
	Source        string    // Name of the source that produced the record
	Embedding     []float32 // Nil when the source had no description
}

// Metadata returns the record's passenger fields keyed for storage.
// Empty optional fields are omitted.
func (b *BookRecord) Metadata() map[string]string {
	md := map[string]string{
		MetaTitle:   b.Title,
		MetaAuthors: b.Authors,
	}
	if b.PublishedDate != "" {
		md[MetaPublishedDate] = b.PublishedDate
	}
	if b.Thumbnail != "" {
		md[MetaThumbnail] = b.Thumbnail
	}
	if b.Source != "" {
		md[MetaSource] = b.Source
	}
	return md
}

// Point converts the record into the unit written to a vector sink.
func (b *BookRecord) Point() Point {
	return Point{
		ID:       b.Identity,
		Values:   b.Embedding,
		Metadata: b.Metadata(),
	}
}

// JoinAuthors joins author names the way BookRecord.Authors stores them.
// Blank names are dropped.
func JoinAuthors(names []string) string {
	kept := make([]string, 0, len(names))
	for _, name := range names {
		if name = strings.TrimSpace(name); name != "" {
			kept = append(kept, name)
		}
	}
	return strings.Join(kept, ", ")
}

// Point is a vector with metadata keyed by a string id.
type Point struct {
	ID        string
	Values    []float32         // May be empty for records without a description
	Metadata  map[string]string
	UpdatedAt time.Time // Set by the store on write
}

// Key returns the compact storage key for the point.
func (p *Point) Key() ID {
	return IDFromContent(p.ID)
}

// Distance metrics supported by an index.
const (
	MetricCosine     = "cosine"
	MetricDotProduct = "dotproduct"
	MetricEuclidean  = "euclidean"
)

// IndexSpec describes a provisioned vector index.
type IndexSpec struct {
	Name      string
	Dimension int
	Metric    string
	CreatedAt time.Time
}
