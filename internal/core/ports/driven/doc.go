// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for a conversion to run:
//
//   - Generator: Task-routed text and structured generation
//   - Ingestor: Turns a URL, file or GitHub reference into text
//   - Renderer: Renders Markdown to HTML and PDF
//   - ArtifactWriter: Persists rendered documents and images
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the pipeline degrades gracefully:
//
//   - KnowledgeStore: Glossary persistence and retrieval. Without it both are skipped.
//   - EmbeddingService: Vectors for knowledge ranking. Without it ranking is lexical.
//   - ImageGenerator: Illustrations. Without it placeholders stay unresolved.
//   - PromptStore: User-editable prompts. Without it built-in prompts are used.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
