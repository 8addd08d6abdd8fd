package translate

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/MrSnakeDoc/boardwatch/internal/domain"
)

const anthropicMaxTokens = 4096

// Anthropic translates with a Claude model through the Messages API.
type Anthropic struct {
	client anthropic.Client
	model  string
}

// NewAnthropic builds the translator. Extra options are passed to the SDK
// client (base URL, retries, HTTP client).
func NewAnthropic(apiKey, model string, opts ...option.RequestOption) *Anthropic {
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &Anthropic{
		client: anthropic.NewClient(opts...),
		model:  model,
	}
}

func (a *Anthropic) Name() string { return "anthropic" }

func (a *Anthropic) Translate(ctx context.Context, text string, lang domain.Language) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}

	msg, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: anthropicMaxTokens,
		System: []anthropic.TextBlockParam{{
			Text: systemPrompt(lang),
		}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(text)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrTranslation, err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	out := strings.TrimSpace(sb.String())
	if out == "" {
		return "", fmt.Errorf("%w: empty completion", domain.ErrTranslation)
	}
	return out, nil
}

func systemPrompt(lang domain.Language) string {
	return "Translate the user's game announcement into " + lang.Name + ". " +
		"Keep bullet markers, line breaks, numbers, dates, times and item names as they are. " +
		"Reply with the translation only."
}
