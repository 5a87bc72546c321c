package openlibrary

import (
	"strconv"
	"strings"

	"github.com/poiesic/bookvec/core"
	"github.com/poiesic/bookvec/sources"
)

// isbn returns the first usable entry in ISBN-13 form.
func (d doc) isbn() string {
	for _, raw := range d.ISBN {
		if isbn := core.NormalizeISBN(raw); isbn != "" {
			return isbn
		}
	}
	return ""
}

// description prefers the first sentence and falls back to the subtitle.
func (d doc) description() string {
	if text := strings.TrimSpace(strings.Join(d.FirstSentence, " ")); text != "" {
		return text
	}
	return strings.TrimSpace(d.Subtitle)
}

func toCandidate(d doc) sources.Candidate {
	var published string
	if d.FirstPublishYear > 0 {
		published = strconv.Itoa(d.FirstPublishYear)
	}
	return sources.Candidate{
		NaturalID:     strings.TrimSpace(d.Key),
		ISBN:          d.isbn(),
		Title:         strings.TrimSpace(d.Title),
		Authors:       d.AuthorName,
		Description:   d.description(),
		PublishedDate: published,
	}
}
