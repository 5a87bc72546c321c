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

import "errors"

// Domain validation errors
var (
	// ErrInvalidBookRecord indicates a BookRecord failed validation.
	ErrInvalidBookRecord = errors.New("invalid book record")

	// ErrInvalidFacet indicates a Facet failed validation.
	ErrInvalidFacet = errors.New("invalid facet")

	// ErrInvalidIndexSpec indicates an IndexSpec failed validation.
	ErrInvalidIndexSpec = errors.New("invalid index spec")

	// ErrEmptyIdentity indicates the Identity field is empty.
	ErrEmptyIdentity = errors.New("identity cannot be empty")

	// ErrEmptyTitle indicates the Title field is empty.
	ErrEmptyTitle = errors.New("title cannot be empty")

	// ErrEmptyFacetField indicates a facet's type or value is empty.
	ErrEmptyFacetField = errors.New("facet type and value are required")

	// ErrInvalidDimension indicates a non-positive vector dimension.
	ErrInvalidDimension = errors.New("dimension must be greater than 0")

	// ErrUnknownMetric indicates an unsupported distance metric.
	ErrUnknownMetric = errors.New("unknown distance metric")
)
