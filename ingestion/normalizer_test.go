package ingestion

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/bookvec/ai/mock"
	"github.com/poiesic/bookvec/core"
	"github.com/poiesic/bookvec/identity"
	"github.com/poiesic/bookvec/sources"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNormalizer(t *testing.T) (*Normalizer, *identity.Tracker, *mock.MockEmbedder) {
	t.Helper()
	tracker := identity.NewTracker()
	embedder := mock.NewMockEmbedderWithDimension(4)
	n, err := NewNormalizer(tracker, embedder, nil)
	require.NoError(t, err)
	return n, tracker, embedder
}

func TestNewNormalizer_Validation(t *testing.T) {
	_, err := NewNormalizer(nil, mock.NewMockEmbedder(), nil)
	assert.ErrorIs(t, err, ErrTrackerRequired)

	_, err = NewNormalizer(identity.NewTracker(), nil, nil)
	assert.ErrorIs(t, err, ErrEmbedderRequired)
}

func TestNormalize_Accepts(t *testing.T) {
	n, tracker, embedder := newTestNormalizer(t)

	c := sources.Candidate{
		NaturalID:     "vol-1",
		ISBN:          "9780316769488",
		Title:         "The Catcher in the Rye",
		Authors:       []string{"J.D. Salinger", "Other Writer"},
		Description:   "A teenager wanders New York.",
		PublishedDate: "1951",
	}
	record, err := n.Normalize(context.Background(), "googlebooks", c)
	require.NoError(t, err)
	require.NotNil(t, record)

	assert.Equal(t, "9780316769488", record.Identity)
	assert.Equal(t, "The Catcher in the Rye", record.Title)
	assert.Equal(t, "J.D. Salinger, Other Writer", record.Authors)
	assert.Equal(t, "1951", record.PublishedDate)
	assert.Equal(t, "googlebooks", record.Source)
	assert.Len(t, record.Embedding, 4)

	assert.True(t, tracker.Seen(NaturalKey("googlebooks", "vol-1")))
	assert.True(t, tracker.Seen(CanonicalKey("9780316769488")))
	assert.Equal(t, []string{"A teenager wanders New York."}, embedder.Texts())
	assert.Equal(t, 1, n.Accepted())
}

func TestNormalize_DefaultsTitle(t *testing.T) {
	n, _, _ := newTestNormalizer(t)

	c := book("vol-1", "111", "desc")
	c.Title = ""
	record, err := n.Normalize(context.Background(), "googlebooks", c)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, core.UnknownTitle, record.Title)
}

func TestNormalize_DedupIdempotence(t *testing.T) {
	n, _, embedder := newTestNormalizer(t)
	ctx := context.Background()
	c := book("vol-1", "111", "A detective story")

	first, err := n.Normalize(ctx, "googlebooks", c)
	require.NoError(t, err)
	second, err := n.Normalize(ctx, "googlebooks", c)
	require.NoError(t, err)

	assert.NotNil(t, first)
	assert.Nil(t, second)
	assert.Equal(t, 1, embedder.CallCount())
	assert.Equal(t, 1, n.Rejected()[ReasonDuplicate])
}

func TestNormalize_SeenIdentityNeverEmbeds(t *testing.T) {
	n, tracker, embedder := newTestNormalizer(t)
	tracker.Mark(NaturalKey("openlibrary", "/works/OL1W"))

	record, err := n.Normalize(context.Background(), "openlibrary", book("/works/OL1W", "222", "desc"))
	require.NoError(t, err)
	assert.Nil(t, record)
	assert.Zero(t, embedder.CallCount())
}

func TestNormalize_MissingISBNKeepsNaturalIDMarked(t *testing.T) {
	n, tracker, embedder := newTestNormalizer(t)
	ctx := context.Background()
	c := book("vol-9", "", "has a description")

	record, err := n.Normalize(ctx, "googlebooks", c)
	require.NoError(t, err)
	assert.Nil(t, record)
	assert.True(t, tracker.Seen(NaturalKey("googlebooks", "vol-9")))
	assert.Equal(t, 1, n.Rejected()[ReasonMissingISBN])

	// A later copy is rejected as a duplicate, not for the missing ISBN.
	record, err = n.Normalize(ctx, "googlebooks", c)
	require.NoError(t, err)
	assert.Nil(t, record)
	assert.Equal(t, 1, n.Rejected()[ReasonDuplicate])
	assert.Zero(t, embedder.CallCount())
}

func TestNormalize_MissingDescription(t *testing.T) {
	n, tracker, embedder := newTestNormalizer(t)
	ctx := context.Background()

	record, err := n.Normalize(ctx, "openlibrary", book("/works/OL2W", "333", ""))
	require.NoError(t, err)
	assert.Nil(t, record)
	assert.False(t, tracker.Seen(NaturalKey("openlibrary", "/works/OL2W")), "rejected before the natural id is marked")
	assert.Equal(t, 1, n.Rejected()[ReasonMissingDescription])
	assert.Zero(t, embedder.CallCount())
}

func TestNormalize_OptionalDescription(t *testing.T) {
	n, _, embedder := newTestNormalizer(t)

	c := sources.Candidate{
		NaturalID:           "9780593321201",
		ISBN:                "9780593321201",
		Title:               "BESTSELLER",
		Thumbnail:           "https://example.test/cover.jpg",
		DescriptionOptional: true,
	}
	record, err := n.Normalize(context.Background(), "nyt", c)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Nil(t, record.Embedding)
	assert.Equal(t, "https://example.test/cover.jpg", record.Thumbnail)
	assert.Zero(t, embedder.CallCount())
}

func TestNormalize_MissingNaturalID(t *testing.T) {
	n, tracker, _ := newTestNormalizer(t)

	c := book("", "444", "desc")
	c.DescriptionOptional = true
	record, err := n.Normalize(context.Background(), "nyt", c)
	require.NoError(t, err)
	assert.Nil(t, record)
	assert.Zero(t, tracker.Len())
	assert.Equal(t, 1, n.Rejected()[ReasonMissingNaturalID])
}

func TestNormalize_DuplicateISBNAcrossSources(t *testing.T) {
	n, _, embedder := newTestNormalizer(t)
	ctx := context.Background()

	first, err := n.Normalize(ctx, "googlebooks", book("vol-1", "111", "A detective story"))
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := n.Normalize(ctx, "openlibrary", book("/works/OL7W", "111", "Another blurb"))
	require.NoError(t, err)
	assert.Nil(t, second)
	assert.Equal(t, 1, embedder.CallCount())
	assert.Equal(t, 1, n.Rejected()[ReasonDuplicateISBN])
}

func TestNormalize_NaturalIDsAreScopedBySource(t *testing.T) {
	n, _, _ := newTestNormalizer(t)
	ctx := context.Background()

	a, err := n.Normalize(ctx, "googlebooks", book("same", "111", "desc"))
	require.NoError(t, err)
	b, err := n.Normalize(ctx, "openlibrary", book("same", "222", "desc"))
	require.NoError(t, err)

	assert.NotNil(t, a)
	assert.NotNil(t, b)
}

func TestNormalize_EmbedderFailureIsFatal(t *testing.T) {
	n, _, embedder := newTestNormalizer(t)
	boom := errors.New("model offline")
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, boom
	}

	record, err := n.Normalize(context.Background(), "googlebooks", book("vol-1", "111", "desc"))
	assert.Nil(t, record)
	assert.ErrorIs(t, err, boom)
}
