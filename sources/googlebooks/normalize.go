package googlebooks

import (
	"strings"

	"github.com/poiesic/bookvec/core"
	"github.com/poiesic/bookvec/sources"
)

// isbn returns the volume's ISBN-13, falling back to the converted ISBN-10.
func (v volumeInfo) isbn() string {
	var isbn10 string
	for _, id := range v.IndustryIdentifiers {
		switch id.Type {
		case "ISBN_13":
			if isbn := core.NormalizeISBN(id.Identifier); isbn != "" {
				return isbn
			}
		case "ISBN_10":
			if isbn10 == "" {
				isbn10 = core.NormalizeISBN(id.Identifier)
			}
		}
	}
	return isbn10
}

// toCandidate maps a volume into a Candidate. Catalog records must carry a
// description, and the publish date travels as metadata.
func toCandidate(v volume) sources.Candidate {
	info := v.VolumeInfo
	return sources.Candidate{
		NaturalID:     strings.TrimSpace(v.ID),
		ISBN:          info.isbn(),
		Title:         strings.TrimSpace(info.Title),
		Authors:       info.Authors,
		Description:   strings.TrimSpace(info.Description),
		PublishedDate: info.PublishedDate,
	}
}
