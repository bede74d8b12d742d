package llm

import (
	"context"
	"errors"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	defaultOpenAIModel      = openai.ChatModelGPT4oMini
	defaultOpenAIImageModel = "dall-e-3"
	defaultOpenAIImageSize  = "1024x1792"
)

// OpenAIOptions configures the OpenAI-backed clients.
type OpenAIOptions struct {
	APIKey     string
	Model      string
	BaseURL    string // optional, for OpenAI-compatible gateways
	MaxRetries int
}

func (o OpenAIOptions) requestOptions() []option.RequestOption {
	var opts []option.RequestOption
	if o.APIKey != "" {
		opts = append(opts, option.WithAPIKey(o.APIKey))
	}
	if o.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(o.BaseURL))
	}
	if o.MaxRetries > 0 {
		opts = append(opts, option.WithMaxRetries(o.MaxRetries))
	}
	return opts
}

// OpenAIClient implements Client over the Chat Completions API.
type OpenAIClient struct {
	client openai.Client
	model  string
}

// NewOpenAIClient creates a chat client. No request is made until Complete.
func NewOpenAIClient(opts OpenAIOptions) *OpenAIClient {
	model := opts.Model
	if model == "" {
		model = defaultOpenAIModel
	}
	return &OpenAIClient{
		client: openai.NewClient(opts.requestOptions()...),
		model:  model,
	}
}

// Name returns the provider name.
func (c *OpenAIClient) Name() string { return "openai" }

// Complete sends a chat completion request.
func (c *OpenAIClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	start := time.Now()

	model := c.model
	if req.Model != "" && req.Model != c.Name() {
		model = req.Model
	}

	var messages []openai.ChatCompletionMessageParamUnion
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	for _, m := range req.Messages {
		switch m.Role {
		case RoleSystem:
			messages = append(messages, openai.SystemMessage(m.Content))
		case RoleAssistant:
			messages = append(messages, openai.AssistantMessage(m.Content))
		default:
			messages = append(messages, openai.UserMessage(m.Content))
		}
	}

	params := openai.ChatCompletionNewParams{
		Messages: messages,
		Model:    model,
	}
	if req.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(req.MaxTokens))
	}
	if req.Temperature != nil {
		params.Temperature = openai.Float(*req.Temperature)
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, openAIError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, &ProviderError{Provider: c.Name(), Message: "no choices returned"}
	}

	choice := resp.Choices[0]
	return &CompletionResponse{
		Content:    choice.Message.Content,
		StopReason: string(choice.FinishReason),
		Usage: Usage{
			InputTokens:  int(resp.Usage.PromptTokens),
			OutputTokens: int(resp.Usage.CompletionTokens),
		},
		Model:    resp.Model,
		Provider: c.Name(),
		Duration: time.Since(start),
	}, nil
}

// OpenAIImageGenerator implements ImageGenerator over the Images API.
type OpenAIImageGenerator struct {
	client openai.Client
	model  string
	size   string
}

// NewOpenAIImageGenerator creates an image generator. size may be empty.
func NewOpenAIImageGenerator(opts OpenAIOptions, size string) *OpenAIImageGenerator {
	model := opts.Model
	if model == "" {
		model = defaultOpenAIImageModel
	}
	if size == "" {
		size = defaultOpenAIImageSize
	}
	return &OpenAIImageGenerator{
		client: openai.NewClient(opts.requestOptions()...),
		model:  model,
		size:   size,
	}
}

// Name returns the provider name.
func (g *OpenAIImageGenerator) Name() string { return "openai" }

// Generate requests a single image and returns its hosted URL.
func (g *OpenAIImageGenerator) Generate(ctx context.Context, req ImageRequest) (*ImageResult, error) {
	model, size := g.model, g.size
	if req.Model != "" {
		model = req.Model
	}
	if req.Size != "" {
		size = req.Size
	}

	resp, err := g.client.Images.Generate(ctx, openai.ImageGenerateParams{
		Prompt:         req.Prompt,
		Model:          openai.ImageModel(model),
		Size:           openai.ImageGenerateParamsSize(size),
		ResponseFormat: openai.ImageGenerateParamsResponseFormatURL,
		N:              openai.Int(1),
	})
	if err != nil {
		return nil, openAIError(err)
	}
	if len(resp.Data) == 0 || resp.Data[0].URL == "" {
		return nil, &ProviderError{Provider: g.Name(), Message: "no image returned"}
	}

	return &ImageResult{
		URL:           resp.Data[0].URL,
		RevisedPrompt: resp.Data[0].RevisedPrompt,
	}, nil
}

// openAIError converts SDK errors into ProviderError so failover can inspect the status.
func openAIError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return &ProviderError{Provider: "openai", Message: apiErr.Message, Code: apiErr.StatusCode}
	}
	return &ProviderError{Provider: "openai", Message: err.Error()}
}
