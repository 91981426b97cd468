// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data under ~/.tutorforge by default.
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage
//   - PromptStore: user-editable prompt files with built-in fallbacks
package file
