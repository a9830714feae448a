package services

import (
	"context"
	"errors"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// ErrNoChoices is returned when the upstream answers without any completion choice.
var ErrNoChoices = errors.New("upstream returned no choices")

// CompletionClient is the subset of *openai.Client used by ChatService.
type CompletionClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// UpstreamError wraps any failure of the outbound completion call.
// Description is safe to return to callers.
type UpstreamError struct {
	Description string
	Err         error
}

func (e *UpstreamError) Error() string {
	return "azure openai: " + e.Description
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// AzureOptions configures the Azure OpenAI deployment the relay talks to.
type AzureOptions struct {
	APIKey     string
	Endpoint   string
	Deployment string
	APIVersion string
	Timeout    time.Duration
}

type ChatService struct {
	client     CompletionClient
	deployment string
}

// NewAzureChatService builds the single outbound client for the process.
// Requests go to <Endpoint>/openai/deployments/<Deployment>/chat/completions
// with the api-version query parameter on every call.
func NewAzureChatService(opts AzureOptions) *ChatService {
	cfg := openai.DefaultAzureConfig(opts.APIKey, opts.Endpoint)
	cfg.APIVersion = opts.APIVersion
	// Deployment names are used verbatim; the default mapper strips '.' and ':'.
	cfg.AzureModelMapperFunc = func(model string) string { return model }
	cfg.HTTPClient = &http.Client{Timeout: opts.Timeout}

	return NewChatService(openai.NewClientWithConfig(cfg), opts.Deployment)
}

func NewChatService(client CompletionClient, deployment string) *ChatService {
	return &ChatService{
		client:     client,
		deployment: deployment,
	}
}

// Complete sends message as a single-turn user conversation and returns the
// content of the first choice. Every failure is returned as *UpstreamError.
func (s *ChatService) Complete(ctx context.Context, message string) (string, error) {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.deployment,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: message},
		},
	})
	if err != nil {
		return "", &UpstreamError{Description: DescribeError(err), Err: err}
	}

	if len(resp.Choices) == 0 {
		return "", &UpstreamError{Description: ErrNoChoices.Error(), Err: ErrNoChoices}
	}

	return resp.Choices[0].Message.Content, nil
}

// DescribeError extracts a human-readable description from an upstream failure.
func DescribeError(err error) string {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Error()
	}

	return err.Error()
}
