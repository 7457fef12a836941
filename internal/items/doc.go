// Package items loads the batch work list from a CSV source.
//
// Each row of the input names one project to process. A header row is
// optional: when any first-row column mentions the project concept
// ("project" or "proyecto", case-insensitive substring match), that column
// supplies the identifiers for the remaining rows; otherwise column 0 of
// every row, including the first, is used. Blank values are dropped,
// duplicates and row order are preserved so downstream set filtering stays
// deterministic.
//
// Every item carries a filesystem-safe Token derived from its Project
// identifier, used to name per-item shard and temp files.
package items
