// Package tasks assembles per-locale catalogs and exports them as tables and workbooks.
//
// # Pipeline
//
// For each requested locale the [ExportEngine] runs:
//
//  1. [Aggregator.Build] : catalog assembly from the upstream API
//     - Enumerates every game and assigns oldest-first indices
//     - Collects related titles for every game
//     - Fetches the "all tracks" playlist of each non-link game without a table on disk
//     - Marks best tracks and misc playlist membership
//     - Applies the curated sections document and release years
//
//  2. Table output : one CSV per game plus the catalog table (see formatter)
//
//  3. Consolidation : every table on disk is merged into a single workbook
//
// Locales never share state. [ExportEngine.ExportAll] runs them one after another or concurrently,
// and a failed locale never stops the others.
//
// # Progress Reporting
//
// Operations accept an optional channel of [ProgressUpdate]. Sends use select with default so a slow
// consumer never blocks an export.
//
// # Run Ledger
//
// When a [RunRecorder] is configured (repositories.RunRepository), each locale export is recorded with
// its counts, workbook path and outcome.
package tasks
