package formatters

import (
	"encoding/json"
	"fmt"
	"strings"

	"resumeforge/internal/assemble"
	"resumeforge/internal/types"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	// Register default formatters
	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	registry.RegisterFormatter("text", "BuildResult", &BuildTextFormatter{})
	registry.RegisterFormatter("markdown", "BuildResult", &BuildMarkdownFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	// Try specific formatter first
	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		// Fall back to generic formatter
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case types.BuildResult, *types.BuildResult:
		return "BuildResult"
	default:
		return "any"
	}
}

func asBuildResult(data any) (*types.BuildResult, error) {
	switch v := data.(type) {
	case types.BuildResult:
		return &v, nil
	case *types.BuildResult:
		return v, nil
	default:
		return nil, fmt.Errorf("expected BuildResult, got %T", data)
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

// BuildTextFormatter handles text formatting for built documents
type BuildTextFormatter struct{}

func (btf *BuildTextFormatter) Format(data any) (string, error) {
	result, err := asBuildResult(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder

	output.WriteString("=== DOCUMENT ===\n\n")
	plain := result.PlainText
	if plain == "" {
		plain = assemble.StripTags(result.Output)
	}
	output.WriteString(plain)
	output.WriteString("\n\n")

	if result.ATSScore > 0 {
		output.WriteString("=== ATS SCORE ===\n")
		output.WriteString(fmt.Sprintf("%d/100\n", result.ATSScore))
	}

	if result.Error != "" {
		output.WriteString("\n=== WARNING ===\n")
		output.WriteString(result.Error)
		output.WriteString("\n")
	}

	return output.String(), nil
}

func (btf *BuildTextFormatter) SupportedType() string {
	return "BuildResult"
}

// BuildMarkdownFormatter handles markdown formatting for built documents
type BuildMarkdownFormatter struct{}

func (bmf *BuildMarkdownFormatter) Format(data any) (string, error) {
	result, err := asBuildResult(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder

	output.WriteString("# Document\n\n")
	plain := result.PlainText
	if plain == "" {
		plain = assemble.StripTags(result.Output)
	}
	output.WriteString(plain)
	output.WriteString("\n\n")

	if result.ATSScore > 0 {
		output.WriteString(fmt.Sprintf("**ATS Score:** %d/100\n\n", result.ATSScore))
	}

	output.WriteString("## HTML\n\n")
	output.WriteString("```html\n")
	output.WriteString(result.Output)
	output.WriteString("\n```\n")

	if result.Error != "" {
		output.WriteString("\n> ")
		output.WriteString(result.Error)
		output.WriteString("\n")
	}

	return output.String(), nil
}

func (bmf *BuildMarkdownFormatter) SupportedType() string {
	return "BuildResult"
}

// Global formatter registry
var GlobalRegistry = NewFormatterRegistry()
