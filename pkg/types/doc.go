// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the data shared by the paper-scraper pipelines:
// paper records produced by listing parsers, download tasks and their
// results, run summaries, and the configuration of each pipeline.
package types
