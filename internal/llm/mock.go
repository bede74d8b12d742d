package llm

import "context"

// MockClient is a test double for Client.
type MockClient struct {
	ProviderName string
	CompleteFunc func(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}

func (m *MockClient) Name() string { return m.ProviderName }

func (m *MockClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, req)
	}
	return &CompletionResponse{Content: "mock response", Provider: m.ProviderName}, nil
}

// EchoClient answers every request with the last user message. It backs the
// "mock" provider for local runs without API keys.
type EchoClient struct{}

func (EchoClient) Name() string { return "mock" }

func (EchoClient) Complete(_ context.Context, req CompletionRequest) (*CompletionResponse, error) {
	var last string
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == RoleUser {
			last = req.Messages[i].Content
			break
		}
	}
	return &CompletionResponse{
		Content:    last,
		StopReason: "end_turn",
		Model:      "echo",
		Provider:   "mock",
	}, nil
}

// MockImageGenerator is a test double for ImageGenerator.
type MockImageGenerator struct {
	GenerateFunc func(ctx context.Context, req ImageRequest) (*ImageResult, error)
}

func (m *MockImageGenerator) Name() string { return "mock" }

func (m *MockImageGenerator) Generate(ctx context.Context, req ImageRequest) (*ImageResult, error) {
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, req)
	}
	return &ImageResult{URL: "https://images.example.com/mock.png"}, nil
}
