package domain

// Knowledge item types stored under the "type" metadata key.
const (
	KnowledgeTypeGlossary    = "glossary"
	KnowledgeTypeRAGDocument = "rag_document"
)

// Metadata keys used on knowledge items.
const (
	MetaType        = "type"
	MetaDefinition  = "definition"
	MetaRunID       = "run_id"
	MetaPosition    = "position"
	MetaSource      = "source"
	MetaFilename    = "filename"
	MetaChunkIndex  = "chunk_index"
	MetaTotalChunks = "total_chunks"
)

// KnowledgeItem is a short text item in the knowledge store.
type KnowledgeItem struct {
	// ID uniquely identifies the item. Adding an existing ID replaces it.
	ID string `json:"id"`

	// Text is the indexed content.
	Text string `json:"text"`

	// Metadata holds string attributes such as the item type.
	Metadata map[string]string `json:"metadata,omitempty"`
}

// IndexStats summarises a knowledge folder indexing pass.
type IndexStats struct {
	Indexed int `json:"indexed"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// KnowledgeHit is a knowledge item ranked against a query.
type KnowledgeHit struct {
	Item  KnowledgeItem `json:"item"`
	Score float64       `json:"score"`
}
