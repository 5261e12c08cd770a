// Package tasks runs the long-running rating operations with real-time progress reporting.
//
// # Core Operations
//
// [RatingsEngine] provides three operations:
//
//  1. [RatingsEngine.ImportRatings] : bulk rating import
//     - Applies parsed CSV rows through RateOrUpdate, one request at a time
//     - Paced by a [rate.Limiter]
//     - Rows that fail are recorded and the import continues
//
//  2. [RatingsEngine.ExportRatings] : ratings export
//     - Fetches ratings and the catalog, joins titles
//     - Writes CSV, Markdown, text or JSON through the formatter
//
//  3. [RatingsEngine.Dump] : raw account data
//     - Retrieves catalog, ratings, recommendations, watch list and watched movies
//     - Endpoint failures are collected instead of aborting
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
package tasks
