package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/FenadoAI/fv2-ai-wall-craft-sdk648/internal/llm"
	"github.com/FenadoAI/fv2-ai-wall-craft-sdk648/internal/logging"
)

// MetaGeneratedImageURL is the metadata key under which a generated image is reported.
const MetaGeneratedImageURL = "generated_image_url"

// ImageTool generates an image and reports its URL in the execution metadata.
type ImageTool struct {
	gen llm.ImageGenerator
	log *logging.Logger
}

// NewImageTool creates the generate_image tool.
func NewImageTool(gen llm.ImageGenerator, log *logging.Logger) *ImageTool {
	return &ImageTool{gen: gen, log: log.Sub("tool.generate_image")}
}

func (t *ImageTool) Name() string { return "generate_image" }

func (t *ImageTool) Description() string {
	return "Generate an image from a detailed text description. Returns the image URL."
}

func (t *ImageTool) InputSchema() string {
	return `{"type":"object","properties":{"prompt":{"type":"string","description":"Detailed image description"},"size":{"type":"string","description":"Image size, e.g. 1024x1792"}},"required":["prompt"]}`
}

func (t *ImageTool) Execute(ctx context.Context, input string) (string, error) {
	var args struct {
		Prompt string `json:"prompt"`
		Size   string `json:"size"`
	}
	if err := json.Unmarshal([]byte(input), &args); err != nil {
		return "", fmt.Errorf("invalid input: %w", err)
	}
	if strings.TrimSpace(args.Prompt) == "" {
		return "", fmt.Errorf("prompt is required")
	}

	res, err := t.gen.Generate(ctx, llm.ImageRequest{Prompt: args.Prompt, Size: args.Size})
	if err != nil {
		t.log.Warn().Err(err).Msg("image generation failed")
		return "", err
	}

	SetResultMetadata(ctx, MetaGeneratedImageURL, res.URL)
	if res.RevisedPrompt != "" {
		SetResultMetadata(ctx, "revised_prompt", res.RevisedPrompt)
	}

	out, err := json.Marshal(res)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
