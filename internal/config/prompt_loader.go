package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// PromptSource represents where a prompt was loaded from
type PromptSource struct {
	Source    string // "file", "operation-config", "global-config", or "default"
	FilePath  string // Set if Source is "file"
	Operation string // The operation this prompt is for
}

// GetLoadedPrompts returns the loaded prompt content in a thread-safe way
func GetLoadedPrompts() *AllLoadedPrompts {
	return &loadedPrompts
}

// trackPromptSource tracks the source of a prompt for debugging
func (c *Config) trackPromptSource(source PromptSource) {
	// Prompt source tracking can be implemented when new logging is hooked up
}

// loadPromptsFromFiles loads custom prompts from external files if file paths are specified
func (c *Config) loadPromptsFromFiles() error {
	log.Println("[CONFIG] Starting custom prompt loading from files")

	// Initialize loaded prompts exactly once
	loadedPromptsOnce.Do(func() {
		loadedPrompts = AllLoadedPrompts{}
	})

	// Load global prompts
	if err := c.loadSystemPromptsFromFiles(&c.AI.CustomPrompts.SystemPrompts, &loadedPrompts.Global); err != nil {
		return fmt.Errorf("failed to load global system prompts: %w", err)
	}

	// Load operation-specific prompts
	if err := c.loadSystemPromptsFromFiles(&c.AI.Formalize.CustomPrompts.SystemPrompts, &loadedPrompts.Formalize); err != nil {
		return fmt.Errorf("failed to load formalize system prompts: %w", err)
	}
	if err := c.loadSystemPromptsFromFiles(&c.AI.Cover.CustomPrompts.SystemPrompts, &loadedPrompts.Cover); err != nil {
		return fmt.Errorf("failed to load cover system prompts: %w", err)
	}
	if err := c.loadSystemPromptsFromFiles(&c.AI.Rewrite.CustomPrompts.SystemPrompts, &loadedPrompts.Rewrite); err != nil {
		return fmt.Errorf("failed to load rewrite system prompts: %w", err)
	}
	if err := c.loadSystemPromptsFromFiles(&c.AI.Generate.CustomPrompts.SystemPrompts, &loadedPrompts.Generate); err != nil {
		return fmt.Errorf("failed to load generate system prompts: %w", err)
	}

	// Log summary of prompt sources after loading
	c.logPromptLoadingSummary()

	return nil
}

// loadSystemPromptsFromFiles loads system prompts from files if file paths are specified
func (c *Config) loadSystemPromptsFromFiles(prompts *SystemPrompts, target *LoadedSystemPrompts) error {
	if prompts.FormalizeFile != "" {
		content, err := c.loadPromptFromFile(prompts.FormalizeFile, "formalize")
		if err != nil {
			return err
		}
		target.Formalize = content
	}

	if prompts.CoverFile != "" {
		content, err := c.loadPromptFromFile(prompts.CoverFile, "cover")
		if err != nil {
			return err
		}
		target.Cover = content
	}

	if prompts.RewriteFile != "" {
		content, err := c.loadPromptFromFile(prompts.RewriteFile, "rewrite")
		if err != nil {
			return err
		}
		target.Rewrite = content
	}

	if prompts.GenerateFile != "" {
		content, err := c.loadPromptFromFile(prompts.GenerateFile, "generate")
		if err != nil {
			return err
		}
		target.Generate = content
	}

	return nil
}

// loadPromptFromFile loads a prompt from a file with proper error handling and logging
func (c *Config) loadPromptFromFile(filePath, operation string) (string, error) {
	// Track prompt source
	c.trackPromptSource(PromptSource{
		Source:    "file",
		FilePath:  filePath,
		Operation: operation,
	})

	// Resolve relative paths
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path for %s prompt file '%s': %w", operation, filePath, err)
	}

	// Check if file exists
	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		return "", fmt.Errorf("%s prompt file not found: %s", operation, absPath)
	}

	// Read file content
	content, err := os.ReadFile(absPath)
	if err != nil {
		return "", fmt.Errorf("failed to read %s prompt file '%s': %w", operation, absPath, err)
	}

	// Validate content is not empty
	trimmedContent := strings.TrimSpace(string(content))
	if trimmedContent == "" {
		return "", fmt.Errorf("%s prompt file '%s' is empty", operation, absPath)
	}

	// Log successful loading
	log.Printf("[CONFIG] Successfully loaded %s prompt from file: %s (%d characters)",
		operation, absPath, len(trimmedContent))

	return trimmedContent, nil
}

// validatePromptFiles validates that prompt files exist and are readable before loading
func (c *Config) validatePromptFiles() error {
	var validationErrors []string

	// Helper function to validate a file path
	validateFile := func(filePath, scope, operation string) {
		if filePath == "" {
			return // No file specified, skip validation
		}

		absPath, err := filepath.Abs(filePath)
		if err != nil {
			validationErrors = append(validationErrors, fmt.Sprintf("invalid path for %s %s prompt: %s", scope, operation, filePath))
			return
		}

		if _, err := os.Stat(absPath); os.IsNotExist(err) {
			validationErrors = append(validationErrors, fmt.Sprintf("%s %s prompt file not found: %s", scope, operation, absPath))
		}
	}

	// Validate global prompt files
	validateFile(c.AI.CustomPrompts.SystemPrompts.FormalizeFile, "global", "formalize")
	validateFile(c.AI.CustomPrompts.SystemPrompts.CoverFile, "global", "cover")
	validateFile(c.AI.CustomPrompts.SystemPrompts.RewriteFile, "global", "rewrite")
	validateFile(c.AI.CustomPrompts.SystemPrompts.GenerateFile, "global", "generate")

	// Validate operation-specific prompt files
	validateFile(c.AI.Formalize.CustomPrompts.SystemPrompts.FormalizeFile, "operation", "formalize")
	validateFile(c.AI.Cover.CustomPrompts.SystemPrompts.CoverFile, "operation", "cover")
	validateFile(c.AI.Rewrite.CustomPrompts.SystemPrompts.RewriteFile, "operation", "rewrite")
	validateFile(c.AI.Generate.CustomPrompts.SystemPrompts.GenerateFile, "operation", "generate")

	if len(validationErrors) > 0 {
		return fmt.Errorf("prompt file validation failed:\n%s", strings.Join(validationErrors, "\n"))
	}

	return nil
}

// logPromptLoadingSummary logs a summary of loaded prompts
func (c *Config) logPromptLoadingSummary() {
	log.Println("[CONFIG] === Custom Prompt Loading Summary ===")

	promptCount := 0

	promptChecks := []struct {
		content string
		message string
	}{
		{loadedPrompts.Global.Formalize, "[CONFIG] Global formalize prompt: loaded from config/file"},
		{loadedPrompts.Global.Cover, "[CONFIG] Global cover prompt: loaded from config/file"},
		{loadedPrompts.Global.Rewrite, "[CONFIG] Global rewrite prompt: loaded from config/file"},
		{loadedPrompts.Global.Generate, "[CONFIG] Global generate prompt: loaded from config/file"},
		{loadedPrompts.Formalize.Formalize, "[CONFIG] Formalize-specific system prompt: loaded from config/file"},
		{loadedPrompts.Cover.Cover, "[CONFIG] Cover-specific system prompt: loaded from config/file"},
		{loadedPrompts.Rewrite.Rewrite, "[CONFIG] Rewrite-specific system prompt: loaded from config/file"},
		{loadedPrompts.Generate.Generate, "[CONFIG] Generate-specific system prompt: loaded from config/file"},
	}

	for _, check := range promptChecks {
		if check.content != "" {
			log.Println(check.message)
			promptCount++
		}
	}

	if promptCount == 0 {
		log.Println("[CONFIG] No custom prompts loaded - using built-in defaults")
	} else {
		log.Printf("[CONFIG] Total custom prompts loaded: %d", promptCount)
	}

	log.Println("[CONFIG] ==========================================")
}
