package processor

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/byteowlz/strle/internal/text"
)

type OutputFormat string

const (
	OutputText     OutputFormat = "text"
	OutputJSON     OutputFormat = "json"
	OutputYAML     OutputFormat = "yaml"
	OutputMarkdown OutputFormat = "markdown"
)

// ParseOutputFormat accepts the output format names and their common aliases
func ParseOutputFormat(name string) (OutputFormat, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "text", "txt", "plain":
		return OutputText, nil
	case "json":
		return OutputJSON, nil
	case "yaml", "yml":
		return OutputYAML, nil
	case "markdown", "md":
		return OutputMarkdown, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, json, yaml or markdown)", name)
	}
}

type ProcessOptions struct {
	Dedupe bool
	Sort   text.SortMode
}

// StringProcessor post-processes and renders extracted string lists
type StringProcessor struct {
}

func NewStringProcessor() *StringProcessor {
	return &StringProcessor{}
}

// Process dedupes, then sorts, as configured. The input is never modified.
func (sp *StringProcessor) Process(list []string, opts ProcessOptions) []string {
	sorting := opts.Sort != "" && opts.Sort != text.SortOff
	if !opts.Dedupe && !sorting {
		return append([]string{}, list...)
	}

	out := list
	if opts.Dedupe {
		out = text.Dedupe(out)
	}
	if sorting {
		out = text.Sort(out, opts.Sort)
	}
	return out
}

// Render formats list for output. Text output is newline-joined with no
// trailing newline.
func (sp *StringProcessor) Render(list []string, format OutputFormat) (string, error) {
	if list == nil {
		list = []string{}
	}

	switch format {
	case OutputText, "":
		return sp.ToText(list), nil
	case OutputJSON:
		return sp.ToJSON(list)
	case OutputYAML:
		return sp.ToYAML(list)
	case OutputMarkdown:
		return sp.ToMarkdown(list), nil
	default:
		return "", fmt.Errorf("unknown output format %q", format)
	}
}

func (sp *StringProcessor) ToText(list []string) string {
	return strings.Join(list, "\n")
}

func (sp *StringProcessor) ToJSON(list []string) (string, error) {
	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode JSON: %w", err)
	}
	return string(data), nil
}

func (sp *StringProcessor) ToYAML(list []string) (string, error) {
	data, err := yaml.Marshal(list)
	if err != nil {
		return "", fmt.Errorf("failed to encode YAML: %w", err)
	}
	return strings.TrimSuffix(string(data), "\n"), nil
}

// ToMarkdown renders a bullet list. Continuation lines of multi-line
// entries are indented under their bullet.
func (sp *StringProcessor) ToMarkdown(list []string) string {
	var md strings.Builder
	for i, s := range list {
		if i > 0 {
			md.WriteString("\n")
		}
		md.WriteString("- ")
		md.WriteString(strings.ReplaceAll(s, "\n", "\n  "))
	}
	return md.String()
}

// SplitLines turns newline-separated input into a list for the dedupe and
// sort commands. Blank lines are dropped; other lines are kept verbatim.
func (sp *StringProcessor) SplitLines(input string) []string {
	out := []string{}
	for _, line := range text.Lines(input) {
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}
