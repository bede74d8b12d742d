package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/FenadoAI/fv2-ai-wall-craft-sdk648/internal/llm"
	"github.com/FenadoAI/fv2-ai-wall-craft-sdk648/internal/logging"
)

// maxToolIterations limits how many tool call rounds one execution can perform.
const maxToolIterations = 5

// runner is the completion loop shared by the agent variants. It calls the
// LLM, executes any tool calls in the reply, and feeds results back until the
// model answers without calling a tool.
type runner struct {
	variant     Variant
	persona     string
	guidelines  []string
	client      *FailoverClient
	tools       *ToolRegistry
	maxTokens   int
	temperature *float64
	log         *logging.Logger
}

func newRunner(v Variant, cfg Config, persona string, guidelines []string, tools *ToolRegistry) *runner {
	return &runner{
		variant:     v,
		persona:     persona,
		guidelines:  guidelines,
		client:      NewFailoverClient(cfg.LLM, cfg.Provider, cfg.Fallbacks, cfg.Log),
		tools:       tools,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		log:         cfg.Log.Sub("agent." + v.String()),
	}
}

// run executes one prompt. Provider failures come back as an unsuccessful
// result; only context cancellation is returned as an error.
func (r *runner) run(ctx context.Context, prompt string, useTools bool) (ExecutionResult, error) {
	start := time.Now()
	ctx, rm := withRunMetadata(ctx)

	var defs []ToolDef
	if useTools {
		defs = r.tools.Definitions()
	}
	system := BuildSystemPrompt(PromptConfig{
		Persona:    r.persona,
		Guidelines: r.guidelines,
		Tools:      defs,
	})

	r.log.Info().
		Bool("useTools", useTools).
		Int("promptLen", len(prompt)).
		Msg("executing prompt")

	history := []llm.Message{{Role: llm.RoleUser, Content: prompt}}
	toolCalls := []string{}
	var usage llm.Usage
	var finalResp *llm.CompletionResponse

	for i := 0; i < maxToolIterations; i++ {
		resp, err := r.client.Complete(ctx, llm.CompletionRequest{
			System:      system,
			Messages:    history,
			MaxTokens:   r.maxTokens,
			Temperature: r.temperature,
		})
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ExecutionResult{}, ctxErr
			}
			r.log.Error().Err(err).Msg("completion failed")
			return ExecutionResult{
				Success:  false,
				Metadata: map[string]any{"agent_type": r.variant.String()},
				Error:    err.Error(),
			}, nil
		}

		finalResp = resp
		usage.InputTokens += resp.Usage.InputTokens
		usage.OutputTokens += resp.Usage.OutputTokens

		if !useTools {
			break
		}
		calls := parseToolCalls(resp.Content)
		if len(calls) == 0 {
			break
		}

		r.log.Info().Int("toolCalls", len(calls)).Msg("executing tool calls")

		results := r.executeToolCalls(ctx, calls)
		for _, tr := range results {
			toolCalls = append(toolCalls, tr.Tool)
		}
		history = append(history,
			llm.Message{Role: llm.RoleAssistant, Content: resp.Content},
			llm.Message{Role: llm.RoleUser, Content: formatToolResults(results)},
		)
	}

	content := stripToolCalls(finalResp.Content, r.log)

	meta := rm.snapshot()
	meta["agent_type"] = r.variant.String()
	meta["model"] = finalResp.Model
	meta["provider"] = finalResp.Provider
	meta["tools_used"] = len(toolCalls)
	meta["tool_calls"] = toolCalls
	meta["input_tokens"] = usage.InputTokens
	meta["output_tokens"] = usage.OutputTokens
	meta["duration_ms"] = time.Since(start).Milliseconds()

	r.log.Info().
		Str("model", finalResp.Model).
		Int("toolsUsed", len(toolCalls)).
		Int("inputTokens", usage.InputTokens).
		Int("outputTokens", usage.OutputTokens).
		Dur("duration", time.Since(start)).
		Msg("response generated")

	return ExecutionResult{
		Success:  true,
		Content:  content,
		Metadata: meta,
	}, nil
}

// toolCall is a parsed tool invocation from the LLM response.
type toolCall struct {
	Tool  string          `json:"tool"`
	Input json.RawMessage `json:"input"`
}

// toolResult holds the output from executing a tool.
type toolResult struct {
	Tool   string
	Output string
	Err    error
}

// toolCallRe matches ```tool_call\n{...}\n``` blocks in LLM output.
var toolCallRe = regexp.MustCompile("(?s)```tool_call\\s*\n(\\{.*?\\})\n\\s*```")

// xmlFuncCallRe matches <function_calls>...</function_calls> XML blocks.
var xmlFuncCallRe = regexp.MustCompile(`(?s)<function_calls>.*?</function_calls>`)

// xmlBlockLevelRe matches self-contained XML blocks that models emit for tool use.
var xmlBlockLevelRe = regexp.MustCompile(`(?s)(?:` +
	`<invoke\b[^>]*>.*?</invoke>` +
	`|<tool_call\b[^>]*>.*?</tool_call>` +
	`|<tool_use\b[^>]*>.*?</tool_use>` +
	`)`)

// xmlInlineTagRe matches parameter tags that can appear inline within text.
var xmlInlineTagRe = regexp.MustCompile(`(?s)[ \t]*<parameter\b[^>]*>.*?</parameter>[ \t]*`)

var (
	whitespaceLineRe    = regexp.MustCompile(`(?m)^[ \t]+$`)
	blankLineCollapseRe = regexp.MustCompile(`\n{3,}`)
)

// parseToolCalls extracts tool_call blocks from LLM response text.
func parseToolCalls(text string) []toolCall {
	matches := toolCallRe.FindAllStringSubmatch(text, -1)
	var calls []toolCall
	for _, match := range matches {
		if len(match) < 2 {
			continue
		}
		var tc toolCall
		if err := json.Unmarshal([]byte(match[1]), &tc); err != nil {
			continue
		}
		if tc.Tool != "" {
			calls = append(calls, tc)
		}
	}
	return calls
}

// executeToolCalls runs each tool in order and returns results.
func (r *runner) executeToolCalls(ctx context.Context, calls []toolCall) []toolResult {
	results := make([]toolResult, 0, len(calls))
	for _, tc := range calls {
		tool, ok := r.tools.Get(tc.Tool)
		if !ok {
			results = append(results, toolResult{
				Tool: tc.Tool,
				Err:  fmt.Errorf("unknown tool: %s", tc.Tool),
			})
			continue
		}

		input := string(tc.Input)
		if input == "" {
			input = "{}"
		}
		r.log.Debug().Str("tool", tc.Tool).Msg("executing tool")
		output, err := tool.Execute(ctx, input)
		if err != nil {
			r.log.Warn().Str("tool", tc.Tool).Err(err).Msg("tool failed")
		}
		results = append(results, toolResult{Tool: tc.Tool, Output: output, Err: err})
	}
	return results
}

// formatToolResults renders tool execution results for the LLM.
func formatToolResults(results []toolResult) string {
	var b strings.Builder
	b.WriteString("Tool execution results:\n\n")
	for _, r := range results {
		fmt.Fprintf(&b, "### %s\n", r.Tool)
		if r.Err != nil {
			fmt.Fprintf(&b, "Error: %s\n", r.Err)
		} else {
			b.WriteString(r.Output)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

// stripToolCalls removes tool_call code blocks and XML tool-use markup from
// the response, leaving surrounding text. Other fenced code is kept.
func stripToolCalls(text string, log *logging.Logger) string {
	cleaned := toolCallRe.ReplaceAllString(text, "\n\n")

	if log != nil {
		for _, m := range xmlFuncCallRe.FindAllString(cleaned, -1) {
			log.Debug().Str("xml", m).Msg("stripped XML function_calls from LLM response")
		}
	}
	cleaned = xmlFuncCallRe.ReplaceAllString(cleaned, "\n\n")
	cleaned = xmlBlockLevelRe.ReplaceAllString(cleaned, "\n\n")
	cleaned = xmlInlineTagRe.ReplaceAllString(cleaned, " ")

	cleaned = whitespaceLineRe.ReplaceAllString(cleaned, "")
	cleaned = blankLineCollapseRe.ReplaceAllString(cleaned, "\n\n")

	return strings.TrimSpace(cleaned)
}
