package generator

import (
	"context"
	"strings"
	"time"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/charmbracelet/log"

	"github.com/julianstephens/softworkday/internal/constants"
	"github.com/julianstephens/softworkday/internal/logger"
	"github.com/julianstephens/softworkday/internal/models"
)

// Claude generates messages with the Anthropic Messages API.
type Claude struct {
	client  anthropic.Client
	model   string
	timeout time.Duration
	log     *log.Logger
}

func NewClaude(apiKey, model string, timeout time.Duration, opts ...option.RequestOption) *Claude {
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &Claude{
		client:  anthropic.NewClient(opts...),
		model:   model,
		timeout: timeout,
		log:     logger.Component("generator"),
	}
}

func (c *Claude) Generate(ctx context.Context, mood models.Mood, tod models.TimeOfDay, userContext string) string {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: 256,
		System: []anthropic.TextBlockParam{
			{Text: systemInstruction},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(buildPrompt(mood, tod, userContext))),
		},
		Temperature: anthropic.Float(0.9),
		TopP:        anthropic.Float(0.95),
	})
	if err != nil {
		c.log.Error("Message generation failed", "error", err)
		return constants.FallbackError
	}

	var b strings.Builder
	for _, block := range msg.Content {
		b.WriteString(block.Text)
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return constants.FallbackEmpty
	}
	return text
}
