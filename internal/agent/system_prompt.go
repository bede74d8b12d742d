package agent

import (
	"fmt"
	"strings"
	"time"
)

// PromptConfig controls system prompt generation.
type PromptConfig struct {
	Persona     string
	Guidelines  []string
	Tools       []ToolDef
	ExtraPrompt string
	Now         time.Time // zero means time.Now()
}

// BuildSystemPrompt constructs the system prompt for the LLM.
func BuildSystemPrompt(cfg PromptConfig) string {
	var b strings.Builder

	if cfg.Persona != "" {
		b.WriteString(cfg.Persona)
		b.WriteString("\n\n")
	}

	now := cfg.Now
	if now.IsZero() {
		now = time.Now()
	}
	fmt.Fprintf(&b, "Current date: %s\n\n", now.Format("2006-01-02"))

	// Guidelines
	b.WriteString("Guidelines:\n")
	for _, g := range cfg.Guidelines {
		fmt.Fprintf(&b, "- %s\n", g)
	}
	if len(cfg.Tools) > 0 {
		b.WriteString("- When using tools, explain what you're doing.\n")
	}

	// Tool definitions
	if len(cfg.Tools) > 0 {
		b.WriteString("\n## Available Tools\n\n")
		b.WriteString("You can call tools by outputting a fenced code block with the language tag `tool_call`:\n\n")
		b.WriteString("```tool_call\n{\"tool\": \"tool_name\", \"input\": {\"param\": \"value\"}}\n```\n\n")
		b.WriteString("After a tool is executed, the result will be provided. You may call multiple tools before giving your final response.\n\n")
		for _, t := range cfg.Tools {
			fmt.Fprintf(&b, "### %s\n%s\n", t.Name, t.Description)
			if t.InputSchema != "" {
				fmt.Fprintf(&b, "Input schema: %s\n", t.InputSchema)
			}
			b.WriteString("\n")
		}
	}

	// Extra/custom prompt
	if cfg.ExtraPrompt != "" {
		b.WriteString("\n")
		b.WriteString(cfg.ExtraPrompt)
		b.WriteString("\n")
	}

	return b.String()
}
