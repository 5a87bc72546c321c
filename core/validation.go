// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	"fmt"
	"slices"
	"strings"
)

// ValidateBookRecord validates a BookRecord according to domain rules.
//
// Validation rules:
//   - Identity must not be empty
//   - Title must not be empty (normalizers substitute UnknownTitle)
//
// NOT validated:
//   - Embedding (absent when the source had no description)
//   - Authors, PublishedDate, Thumbnail (passenger metadata)
func ValidateBookRecord(record *BookRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidBookRecord)
	}

	if record.Identity == "" {
		return fmt.Errorf("%w: %w", ErrInvalidBookRecord, ErrEmptyIdentity)
	}

	if record.Title == "" {
		return fmt.Errorf("%w: %w", ErrInvalidBookRecord, ErrEmptyTitle)
	}

	return nil
}

// ValidateFacet validates that a Facet has both a type and a value.
func ValidateFacet(facet Facet) error {
	if facet.Type == "" || facet.Value == "" {
		return fmt.Errorf("%w: %w", ErrInvalidFacet, ErrEmptyFacetField)
	}
	return nil
}

// ValidateIndexSpec validates an IndexSpec.
func ValidateIndexSpec(spec *IndexSpec) error {
	if spec == nil {
		return fmt.Errorf("%w: spec is nil", ErrInvalidIndexSpec)
	}
	if strings.TrimSpace(spec.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidIndexSpec)
	}
	if spec.Dimension <= 0 {
		return fmt.Errorf("%w: %w", ErrInvalidIndexSpec, ErrInvalidDimension)
	}
	if !IsKnownMetric(spec.Metric) {
		return fmt.Errorf("%w: %w: %q", ErrInvalidIndexSpec, ErrUnknownMetric, spec.Metric)
	}
	return nil
}

// IsKnownMetric reports whether metric names a supported distance metric.
func IsKnownMetric(metric string) bool {
	return slices.Contains([]string{MetricCosine, MetricDotProduct, MetricEuclidean}, metric)
}
