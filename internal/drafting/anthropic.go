package drafting

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const draftMaxTokens = 1024

const systemPrompt = "You write concise, professional project proposals " +
	"for a small creative studio. Respond with the proposal body only, " +
	"in Markdown, without any preamble."

// AnthropicProvider drafts proposal copy through the Anthropic Messages API.
type AnthropicProvider struct {
	client *anthropic.Client
	model  string
}

// NewAnthropicProvider creates a provider for the given model.
func NewAnthropicProvider(apiKey, model string) (*AnthropicProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}
	if model == "" {
		return nil, fmt.Errorf("anthropic model is required")
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	return &AnthropicProvider{
		client: &client,
		model:  model,
	}, nil
}

func (p *AnthropicProvider) Name() string {
	return "anthropic"
}

func (p *AnthropicProvider) Draft(ctx context.Context, req Request) (string, error) {
	prompt := buildPrompt(req)

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: draftMaxTokens,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}

	msg, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic message: %w", err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}

	return b.String(), nil
}

func buildPrompt(req Request) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Write a project proposal titled %q", req.Title)
	if req.ClientName != "" {
		fmt.Fprintf(&b, " for the client %q", req.ClientName)
	}
	b.WriteString(".\n\nBrief:\n")
	b.WriteString(req.Brief)

	return b.String()
}
