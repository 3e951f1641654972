package config

import (
	"sync"
)

var (
	loadedPrompts     AllLoadedPrompts
	loadedPromptsOnce sync.Once
)

// LoadedSystemPrompts contains system-level instructions loaded from files
type LoadedSystemPrompts struct {
	Formalize string
	Cover     string
	Rewrite   string
	Generate  string
}

// AllLoadedPrompts holds loaded prompts for the global block and every operation
type AllLoadedPrompts struct {
	Global    LoadedSystemPrompts
	Formalize LoadedSystemPrompts
	Cover     LoadedSystemPrompts
	Rewrite   LoadedSystemPrompts
	Generate  LoadedSystemPrompts
}

// GetPromptsForOperation returns a copy of the loaded prompts for an operation type
func GetPromptsForOperation(operationType string) LoadedSystemPrompts {
	switch operationType {
	case "formalize":
		return loadedPrompts.Formalize
	case "cover":
		return loadedPrompts.Cover
	case "rewrite":
		return loadedPrompts.Rewrite
	case "generate":
		return loadedPrompts.Generate
	default:
		return loadedPrompts.Global
	}
}
