// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The conversion pipeline lives here: Cleaner, GlossaryExtractor,
// StyleRewriter, CriticReviewer and ImageResolver are composed by Pipeline
// into a state machine. ConvertService wraps the pipeline with ingestion
// and rendering, KnowledgeIndexer feeds the knowledge store, and
// SettingsService manages configuration.
//
// Services are pure Go with no CGO.
package services
