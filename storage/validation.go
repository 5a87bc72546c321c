package storage

import (
	"fmt"

	"github.com/poiesic/bookvec/core"
)

// CheckPoints validates a batch before it is written.
// A dimension of zero disables the length check. Points without a vector are
// always accepted.
func CheckPoints(dimension int, points []core.Point) error {
	for i := range points {
		p := &points[i]
		if p.ID == "" {
			return fmt.Errorf("%w: point %d has no id", ErrInvalidPoint, i)
		}
		if dimension > 0 && len(p.Values) > 0 && len(p.Values) != dimension {
			return fmt.Errorf("%w: point %s has %d values, index expects %d",
				ErrDimensionMismatch, p.ID, len(p.Values), dimension)
		}
	}
	return nil
}

// MatchIndex reports whether an existing index can serve a requested spec.
func MatchIndex(existing, requested *core.IndexSpec) error {
	if existing.Dimension != requested.Dimension || existing.Metric != requested.Metric {
		return fmt.Errorf("%w: %s is %d/%s, requested %d/%s", ErrIndexMismatch,
			existing.Name, existing.Dimension, existing.Metric, requested.Dimension, requested.Metric)
	}
	return nil
}
