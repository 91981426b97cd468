// Package image provides image generation backends: a local ComfyUI
// server, an OpenAI-compatible images API and a fallback chain over both.
package image
