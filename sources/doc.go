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


// Package sources defines the contract shared by external book sources.
//
// A Source fetches one page of raw records for a query facet and maps each
// raw record into a Candidate. Candidates carry the source's natural identity,
// the canonical ISBN and the descriptive text, but no admission decision:
// dedup and rejection rules live in the ingestion package so they can be
// applied uniformly across every source.
//
// # Implementations
//
//   - googlebooks: commercial catalog, fiction volumes ordered by facet value
//   - openlibrary: community catalog, free-text search by facet value
//   - nyt: bestseller list, facet ignored
//
// # Transport
//
// Every fetch issues exactly one HTTP GET through a Requester. There is no
// pagination and no retry. A non-success status, transport failure or
// undecodable body is returned as a *FetchError so the caller decides whether
// to continue.
package sources
