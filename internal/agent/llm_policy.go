package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/payrisk/merchant-risk/internal/domain"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const llmSystemPrompt = `You are a financial risk analyst specializing in merchant onboarding.
Given the merchant details and the verification sources not yet consulted, pick the single
source most likely to surface decisive risk evidence next. Reply with exactly one source
name from the list, or STOP if nothing remains worth consulting.`

// LLMPolicy lets a language model direct the source call order. The model
// only chooses ordering; scoring stays deterministic, and any model failure
// or malformed reply surfaces as an error so the loop can fall back to the
// deterministic drain.
type LLMPolicy struct {
	client *openai.Client
	model  string
	logger *zap.SugaredLogger
}

func NewLLMPolicy(apiKey, model string, logger *zap.SugaredLogger) *LLMPolicy {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &LLMPolicy{
		client: openai.NewClient(apiKey),
		model:  model,
		logger: logger,
	}
}

func (p *LLMPolicy) Next(ctx context.Context, app *domain.Application, remaining []string) (string, bool, error) {
	if len(remaining) == 0 {
		return "", false, nil
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.model,
		Temperature: 0,
		MaxTokens:   16,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: llmSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: p.prompt(app, remaining)},
		},
	})
	if err != nil {
		return "", false, fmt.Errorf("model call failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", false, fmt.Errorf("model returned no choices")
	}

	answer := strings.ToLower(strings.TrimSpace(resp.Choices[0].Message.Content))
	if answer == "stop" {
		return "", false, nil
	}
	for _, name := range remaining {
		if answer == name {
			p.logger.Debugw("model selected source", "application_id", app.ID, "source", name)
			return name, true, nil
		}
	}
	return "", false, fmt.Errorf("model answer %q not in remaining set", answer)
}

func (p *LLMPolicy) prompt(app *domain.Application, remaining []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Merchant: %s (%s)\n", app.Company.LegalName, app.Company.CompanyType)
	fmt.Fprintf(&b, "Trade name: %s\n", app.Company.TradeName)
	fmt.Fprintf(&b, "Location: %s, %s\n", app.Company.City, app.Company.District)
	if app.Company.WebsiteURL != "" {
		fmt.Fprintf(&b, "Website: %s\n", app.Company.WebsiteURL)
	}
	if app.Company.MonthlyRevenue > 0 {
		fmt.Fprintf(&b, "Monthly revenue: %.2f TL\n", app.Company.MonthlyRevenue)
	}
	fmt.Fprintf(&b, "Sources not yet consulted: %s\n", strings.Join(SortByWeightDesc(remaining), ", "))
	return b.String()
}
