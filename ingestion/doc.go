// Package ingestion turns source records into batches of embedded book vectors.
//
// A Pipeline run walks the configured facets in order. For each facet it
// fetches every source (concurrently, on a worker pool), then normalizes the
// candidates one at a time in source order:
//   - Normalizer applies the admission rules, consults the run's identity
//     tracker and embeds accepted descriptions
//   - Accumulator collects accepted records and writes them to the sink in
//     fixed-size batches
//
// A source that fails is logged and contributes no records for that facet.
// Embedder and sink failures end the run with an error.
package ingestion
