package outreach

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/tmc/langchaingo/llms"

	"github.com/shaiso/Prospector/internal/domain"
)

func TestRenderTemplate(t *testing.T) {
	recipient := domain.Record{
		"username":  "alice",
		"full_name": "Alice Liddell",
		"followers": 1200,
	}

	tests := []struct {
		name string
		tmpl string
		want string
	}{
		{
			name: "plain string passes through",
			tmpl: "Hi there!",
			want: "Hi there!",
		},
		{
			name: "fields substituted",
			tmpl: "Hi {{.username}}, loved your profile, {{.full_name}}!",
			want: "Hi alice, loved your profile, Alice Liddell!",
		},
		{
			name: "non-string field rendered",
			tmpl: "You have {{.followers}} followers.",
			want: "You have 1200 followers.",
		},
		{
			name: "missing field renders empty",
			tmpl: "Hi {{.nickname}}!",
			want: "Hi !",
		},
		{
			name: "template functions",
			tmpl: "HI {{upper .username}}",
			want: "HI ALICE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RenderTemplate(tt.tmpl, recipient)
			if err != nil {
				t.Fatalf("RenderTemplate() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("RenderTemplate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderTemplate_ParseError(t *testing.T) {
	_, err := RenderTemplate("Hi {{.username", domain.Record{"username": "alice"})
	if !errors.Is(err, ErrTemplateParse) {
		t.Errorf("expected ErrTemplateParse, got %v", err)
	}
}

// fakeModel — модель для тестов: возвращает заготовленный ответ и
// запоминает последнюю инструкцию.
type fakeModel struct {
	reply     string
	err       error
	gotPrompt string
}

func (m *fakeModel) GenerateContent(_ context.Context, messages []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, msg := range messages {
		if msg.Role != llms.ChatMessageTypeHuman {
			continue
		}
		for _, part := range msg.Parts {
			if text, ok := part.(llms.TextContent); ok {
				m.gotPrompt = text.Text
			}
		}
	}
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: m.reply}},
	}, nil
}

func (m *fakeModel) Call(_ context.Context, _ string, _ ...llms.CallOption) (string, error) {
	return m.reply, m.err
}

func TestGenerator_TemplateFallback(t *testing.T) {
	g := NewGenerator(Config{})

	msg, err := g.Generate(context.Background(), Request{
		Recipient: domain.Record{"username": "alice"},
		Template:  "Hi {{.username}}!",
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if msg != "Hi alice!" {
		t.Errorf("message = %q", msg)
	}
}

func TestGenerator_NoModelNoTemplate(t *testing.T) {
	g := NewGenerator(Config{})

	_, err := g.Generate(context.Background(), Request{
		Recipient: domain.Record{"username": "alice"},
	})
	if !errors.Is(err, ErrNoTemplate) {
		t.Errorf("expected ErrNoTemplate, got %v", err)
	}
}

func TestGenerator_ModelPath(t *testing.T) {
	model := &fakeModel{reply: "  Hi Alice, your vintage camera shots are great.  "}
	g := NewGenerator(Config{Model: model})

	msg, err := g.Generate(context.Background(), Request{
		Recipient:    domain.Record{"username": "alice", "raw_text": "vintage cameras"},
		Tone:         "friendly",
		CompanyName:  "Acme Studio",
		SenderName:   "Dan",
		Template:     "Hi {{.username}}!",
		CustomPrompt: "Mention film photography.",
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if msg != "Hi Alice, your vintage camera shots are great." {
		t.Errorf("message = %q, want trimmed reply", msg)
	}

	// Инструкция включает параметры шага и отрендеренный черновик.
	for _, fragment := range []string{"friendly", "Acme Studio", "Dan", "Hi alice!", "Mention film photography.", "vintage cameras"} {
		if !strings.Contains(model.gotPrompt, fragment) {
			t.Errorf("prompt missing %q:\n%s", fragment, model.gotPrompt)
		}
	}
}

func TestGenerator_EmptyCompletion(t *testing.T) {
	g := NewGenerator(Config{Model: &fakeModel{reply: "   "}})

	_, err := g.Generate(context.Background(), Request{
		Recipient: domain.Record{"username": "alice"},
	})
	if !errors.Is(err, ErrEmptyCompletion) {
		t.Errorf("expected ErrEmptyCompletion, got %v", err)
	}
}
