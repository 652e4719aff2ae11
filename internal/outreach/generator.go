package outreach

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tmc/langchaingo/llms"

	"github.com/shaiso/Prospector/internal/domain"
)

// systemPrompt — роль модели при генерации сообщений.
const systemPrompt = `You write short, personalised outreach messages for social media prospecting.
Keep the message under 80 words, reference something concrete from the profile,
and reply with the message text only: no subject line, no quotes, no commentary.`

// Request — задание на одно сообщение.
type Request struct {
	// Recipient — запись получателя (username, full_name, raw_text, ...).
	Recipient domain.Record

	// Template — шаблон сообщения. Без модели — единственный источник
	// текста; с моделью используется как черновик в инструкции.
	Template string

	// Tone — тон сообщения (friendly, formal, ...).
	Tone string

	CompanyName string
	SenderName  string

	// CustomPrompt — дополнительная инструкция для модели.
	CustomPrompt string
}

// Config — зависимости генератора.
type Config struct {
	// Model — LLM для генерации текста. nil допустим: тогда сообщения
	// строятся только по шаблону.
	Model llms.Model

	Logger *slog.Logger
}

// Generator создаёт персональные сообщения.
type Generator struct {
	model  llms.Model
	logger *slog.Logger
}

// NewGenerator создаёт генератор сообщений.
func NewGenerator(cfg Config) *Generator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{model: cfg.Model, logger: logger}
}

// Generate возвращает текст сообщения для одного получателя.
func (g *Generator) Generate(ctx context.Context, req Request) (string, error) {
	if g.model == nil {
		if strings.TrimSpace(req.Template) == "" {
			return "", ErrNoTemplate
		}
		return RenderTemplate(req.Template, req.Recipient)
	}

	prompt, err := buildPrompt(req)
	if err != nil {
		return "", err
	}

	messages := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(systemPrompt)},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(prompt)},
		},
	}

	resp, err := g.model.GenerateContent(ctx, messages,
		llms.WithTemperature(0.7),
		llms.WithMaxTokens(400),
	)
	if err != nil {
		return "", fmt.Errorf("generate message: %w", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Content) == "" {
		return "", ErrEmptyCompletion
	}
	return strings.TrimSpace(resp.Choices[0].Content), nil
}

// buildPrompt собирает инструкцию для модели из параметров шага
// и записи получателя.
func buildPrompt(req Request) (string, error) {
	recipient, err := json.Marshal(req.Recipient)
	if err != nil {
		return "", fmt.Errorf("encode recipient: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Write an outreach message for this profile:\n%s\n", recipient)
	if req.Tone != "" {
		fmt.Fprintf(&b, "Tone: %s.\n", req.Tone)
	}
	if req.CompanyName != "" {
		fmt.Fprintf(&b, "You are writing on behalf of %s.\n", req.CompanyName)
	}
	if req.SenderName != "" {
		fmt.Fprintf(&b, "Sign the message as %s.\n", req.SenderName)
	}
	if req.Template != "" {
		draft, err := RenderTemplate(req.Template, req.Recipient)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "Use this draft as the starting point:\n%s\n", draft)
	}
	if req.CustomPrompt != "" {
		fmt.Fprintf(&b, "Additional instructions: %s\n", req.CustomPrompt)
	}
	return b.String(), nil
}
