package nyt

import (
	"strings"

	"github.com/poiesic/bookvec/core"
	"github.com/poiesic/bookvec/sources"
)

// toCandidate maps a list entry. The ISBN-13 is both the natural and the
// canonical key. Bestsellers are admitted without a description.
func toCandidate(b book) sources.Candidate {
	natural := core.NormalizeISBN(b.PrimaryISBN13)
	isbn := natural
	if isbn == "" {
		isbn = core.NormalizeISBN(b.PrimaryISBN10)
	}

	var authors []string
	if author := strings.TrimSpace(b.Author); author != "" {
		authors = []string{author}
	}

	return sources.Candidate{
		NaturalID:           natural,
		ISBN:                isbn,
		Title:               strings.TrimSpace(b.Title),
		Authors:             authors,
		Description:         strings.TrimSpace(b.Description),
		Thumbnail:           b.BookImage,
		DescriptionOptional: true,
	}
}
