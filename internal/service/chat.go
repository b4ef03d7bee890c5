package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/majupersonalizados/briefing/internal/metrics"
	openai "github.com/sashabaranov/go-openai"
)

var (
	ErrEmptyMessage      = errors.New("message is required")
	ErrChatNotConfigured = errors.New("chat assistant not configured (missing OPENAI_API_KEY)")
	ErrNoCompletion      = errors.New("model returned no choices")
)

// AssistantGreeting opens every conversation in the chat widget.
const AssistantGreeting = "Olá! Sou seu assistente virtual da Maju. Precisa de ajuda para preencher algum campo?"

// AssistantFallback is shown in the widget when a completion fails.
const AssistantFallback = "Desculpe, tive um problema de conexão. Tente novamente mais tarde."

const assistantSystemPrompt = `Você é o assistente virtual da Maju Personalizados.
Sua função é ajudar o cliente a preencher um formulário de briefing para criação de um e-commerce.
Seja cordial, profissional e use emojis ocasionalmente.
O usuário pode ter dúvidas sobre termos técnicos de e-commerce, branding ou sobre o que escrever nos campos.
Ajude-os a elaborar respostas claras e completas para a equipe de design.

Contexto da Maju Personalizados:
- E-commerce de produtos personalizados.
- Foco em identidade visual e experiência do usuário.`

// ChatService proxies single questions to a hosted chat model. It keeps no history.
type ChatService struct {
	client *openai.Client
	model  string
}

func NewChatService(apiKey, baseURL, model string) *ChatService {
	var client *openai.Client
	if apiKey != "" {
		cfg := openai.DefaultConfig(apiKey)
		if baseURL != "" {
			cfg.BaseURL = baseURL
		}
		client = openai.NewClientWithConfig(cfg)
	}

	if model == "" {
		model = openai.GPT4o
	}

	return &ChatService{
		client: client,
		model:  model,
	}
}

// Ask sends the system prompt plus message and returns the first choice.
func (s *ChatService) Ask(ctx context.Context, message string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", ErrEmptyMessage
	}
	if s.client == nil {
		metrics.ChatRequests.WithLabelValues(metrics.ResultError).Inc()
		return "", ErrChatNotConfigured
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: assistantSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: message},
		},
	})
	if err == nil && len(resp.Choices) == 0 {
		err = ErrNoCompletion
	}
	metrics.ChatRequests.WithLabelValues(metrics.Result(err)).Inc()
	if err != nil {
		return "", fmt.Errorf("failed to create completion: %w", err)
	}

	return resp.Choices[0].Message.Content, nil
}
