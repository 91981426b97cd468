// Package generation routes generation requests to LLM backends by task
// category, paces them per backend and decodes structured answers.
package generation
