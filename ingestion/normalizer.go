package ingestion

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/bookvec/ai"
	"github.com/poiesic/bookvec/core"
	"github.com/poiesic/bookvec/identity"
	"github.com/poiesic/bookvec/sources"
)

// Reason explains why a candidate was not admitted.
type Reason string

// Rejection reasons, in the order the rules are applied.
const (
	ReasonMissingNaturalID   Reason = "missing natural id"
	ReasonDuplicate          Reason = "duplicate natural id"
	ReasonMissingDescription Reason = "missing description"
	ReasonMissingISBN        Reason = "missing isbn"
	ReasonDuplicateISBN      Reason = "duplicate isbn"
)

// Normalizer admits source candidates as book records.
// It is not safe for concurrent use; a run drives it from one goroutine.
type Normalizer struct {
	tracker  *identity.Tracker
	embedder ai.Embedder
	logger   *slog.Logger
	rejected map[Reason]int
	accepted int
}

// NewNormalizer creates a normalizer that records identities in tracker.
func NewNormalizer(tracker *identity.Tracker, embedder ai.Embedder, logger *slog.Logger) (*Normalizer, error) {
	if tracker == nil {
		return nil, ErrTrackerRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{
		tracker:  tracker,
		embedder: embedder,
		logger:   logger.With("component", "normalizer"),
		rejected: make(map[Reason]int),
	}, nil
}

// Normalize returns the admitted record, or nil if the candidate was rejected.
// The only error is an embedder failure.
//
// Rules, in order:
//  1. a candidate without a natural id is rejected
//  2. a natural id already seen this run is rejected, before any other work
//  3. a missing description is rejected unless the source marks it optional
//  4. the natural id is marked; a candidate without an ISBN is then rejected
//  5. an ISBN already seen this run is rejected; otherwise it is marked
//  6. the description, if any, is embedded
func (n *Normalizer) Normalize(ctx context.Context, source string, c sources.Candidate) (*core.BookRecord, error) {
	logger := n.logger.With("source", source)

	if c.NaturalID == "" {
		logger.Warn("rejecting record without natural id", "title", c.Title)
		return n.reject(ReasonMissingNaturalID), nil
	}

	natural := NaturalKey(source, c.NaturalID)
	if n.tracker.Seen(natural) {
		logger.Debug("skipping already seen record", "id", c.NaturalID)
		return n.reject(ReasonDuplicate), nil
	}

	if c.Description == "" && !c.DescriptionOptional {
		logger.Info("rejecting record without description", "id", c.NaturalID, "title", c.Title)
		return n.reject(ReasonMissingDescription), nil
	}

	n.tracker.Mark(natural)

	if c.ISBN == "" {
		logger.Warn("rejecting record without isbn", "id", c.NaturalID, "title", c.Title)
		return n.reject(ReasonMissingISBN), nil
	}

	if !n.tracker.MarkIfUnseen(CanonicalKey(c.ISBN)) {
		logger.Info("rejecting duplicate isbn", "id", c.NaturalID, "isbn", c.ISBN)
		return n.reject(ReasonDuplicateISBN), nil
	}

	record := &core.BookRecord{
		Identity:      c.ISBN,
		Title:         c.Title,
		Authors:       core.JoinAuthors(c.Authors),
		PublishedDate: c.PublishedDate,
		Thumbnail:     c.Thumbnail,
		Source:        source,
	}
	if record.Title == "" {
		record.Title = core.UnknownTitle
	}

	if c.Description != "" {
		embedding, err := n.embedder.EmbedText(ctx, c.Description)
		if err != nil {
			return nil, fmt.Errorf("embed %s: %w", c.ISBN, err)
		}
		record.Embedding = embedding
	}

	if err := core.ValidateBookRecord(record); err != nil {
		return nil, err
	}

	n.accepted++
	logger.Debug("accepted record", "isbn", record.Identity, "title", record.Title)
	return record, nil
}

// Accepted returns the number of records admitted so far.
func (n *Normalizer) Accepted() int {
	return n.accepted
}

// Rejected returns the number of candidates rejected for each reason.
func (n *Normalizer) Rejected() map[Reason]int {
	out := make(map[Reason]int, len(n.rejected))
	for k, v := range n.rejected {
		out[k] = v
	}
	return out
}

func (n *Normalizer) reject(reason Reason) *core.BookRecord {
	n.rejected[reason]++
	return nil
}

// NaturalKey namespaces a source's own identifier in the tracker.
func NaturalKey(source, id string) string {
	return source + ":" + id
}

// CanonicalKey namespaces an ISBN in the tracker.
func CanonicalKey(isbn string) string {
	return "isbn:" + isbn
}
