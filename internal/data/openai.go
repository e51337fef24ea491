package data

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/bradyshelf/solofoodies-chat-prototype/internal/biz/domain"
	"github.com/bradyshelf/solofoodies-chat-prototype/internal/biz/repo"
)

const responderSystemPrompt = `You are the restaurant side of a collaboration chat on Solofoodies.
Reply to the food creator's last message briefly and politely, in their language.
Do not discuss prices or offers; amounts are handled by the offer flow, not by you.`

// openAIResponder generates the counterpart reply texts with a chat model.
// The deterministic offer math is untouched: this only replaces the two
// scripted reply texts, and falls back to them whenever the API fails so
// the reply count and ordering never change.
type openAIResponder struct {
	client   *openai.Client
	model    string
	fallback repo.ResponderRepo
}

// NewOpenAIResponder creates a model-backed responder
func NewOpenAIResponder(apiKey, model string) repo.ResponderRepo {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &openAIResponder{
		client:   openai.NewClient(apiKey),
		model:    model,
		fallback: NewScriptedResponder(),
	}
}

// Replies returns two reply texts: one generated, one scripted follow-up
func (r *openAIResponder) Replies(ctx context.Context, history []domain.Message, userText string) []string {
	msgs := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: responderSystemPrompt},
	}
	for _, m := range history {
		role := openai.ChatMessageRoleAssistant
		if m.IsFromUser() {
			role = openai.ChatMessageRoleUser
		}
		content := m.Text
		if m.IsOffer() {
			content = fmt.Sprintf("[offer: %s]", domain.FormatAmount(m.OfferAmount))
		}
		msgs = append(msgs, openai.ChatCompletionMessage{Role: role, Content: content})
	}

	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    r.model,
		Messages: msgs,
	})
	if err != nil {
		fmt.Printf("[Responder] OpenAI error: %v, using scripted replies\n", err)
		return r.fallback.Replies(ctx, history, userText)
	}
	if len(resp.Choices) == 0 {
		return r.fallback.Replies(ctx, history, userText)
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return r.fallback.Replies(ctx, history, userText)
	}

	return []string{text, SecondAutoReply}
}
