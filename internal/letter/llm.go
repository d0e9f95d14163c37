package letter

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/joelkehle/claim-advocate/internal/claims"
)

const systemPrompt = "You are a consumer insurance advocate drafting a negotiation letter on behalf of a policyholder. " +
	"Be factual, cite only the facts provided, and never invent policy language. Respond with strict JSON only."

const maxAttempts = 3

type llmFailureClass int

const (
	failureNone llmFailureClass = iota
	failureTimeout
	failureRateLimit
	failureServer
	failureClient
)

type LLMCaller interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type AnthropicMessager interface {
	New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

type AnthropicClientCreator func(apiKey string) AnthropicMessager

func defaultAnthropicCreator(apiKey string) AnthropicMessager {
	c := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &c.Messages
}

var newAnthropicClient AnthropicClientCreator = defaultAnthropicCreator

type AnthropicCaller struct {
	messages  AnthropicMessager
	model     anthropic.Model
	maxTokens int64
}

// NewAnthropicCallerFromEnv reads ANTHROPIC_API_KEY. CLAIM_LETTER_NO_LLM
// forces the template drafter even when a key is present.
func NewAnthropicCallerFromEnv(model string, maxTokens int64) (*AnthropicCaller, error) {
	if envEnabled("CLAIM_LETTER_NO_LLM") {
		return nil, errors.New("LLM drafting disabled by CLAIM_LETTER_NO_LLM")
	}
	apiKey := strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY"))
	if apiKey == "" {
		return nil, errors.New("ANTHROPIC_API_KEY not configured")
	}
	return NewAnthropicCaller(newAnthropicClient(apiKey), model, maxTokens), nil
}

func NewAnthropicCaller(messages AnthropicMessager, model string, maxTokens int64) *AnthropicCaller {
	m := anthropic.Model(model)
	if model == "" {
		m = anthropic.ModelClaudeSonnet4_20250514
	}
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	return &AnthropicCaller{messages: messages, model: m, maxTokens: maxTokens}
}

func (a *AnthropicCaller) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := a.messages.New(ctx, anthropic.MessageNewParams{
		Model:       a.model,
		MaxTokens:   a.maxTokens,
		System:      []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(prompt))},
		Temperature: anthropic.Float(0.2),
	})
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, b := range resp.Content {
		if b.Type == "text" {
			sb.WriteString(b.Text)
		}
	}
	return sb.String(), nil
}

type llmLetter struct {
	Subject   string   `json:"subject"`
	Body      string   `json:"body"`
	KeyPoints []string `json:"key_points"`
}

func (l llmLetter) validate() error {
	var missing []string
	if strings.TrimSpace(l.Subject) == "" {
		missing = append(missing, "subject")
	}
	if strings.TrimSpace(l.Body) == "" {
		missing = append(missing, "body")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing %s", strings.Join(missing, ", "))
	}
	return nil
}

// LLMDrafter asks the model for the letter and falls back to the template
// letter when every attempt fails.
type LLMDrafter struct {
	caller   LLMCaller
	fallback *TemplateDrafter
	log      *zap.Logger
	sleep    func(context.Context, time.Duration) error
}

func NewLLMDrafter(caller LLMCaller, fallback *TemplateDrafter, log *zap.Logger) *LLMDrafter {
	if log == nil {
		log = zap.NewNop()
	}
	return &LLMDrafter{caller: caller, fallback: fallback, log: log, sleep: sleepContext}
}

func (d *LLMDrafter) Mode() string { return ModeLLM }

func (d *LLMDrafter) Draft(ctx context.Context, c claims.Case, req Request) (Letter, error) {
	base, err := d.fallback.Draft(ctx, c, req)
	if err != nil {
		return Letter{}, err
	}
	prompt, err := buildPrompt(c, req.Normalize())
	if err != nil {
		return Letter{}, err
	}
	out, err := d.generate(ctx, prompt)
	if err != nil {
		if ctx.Err() != nil {
			return Letter{}, ctx.Err()
		}
		d.log.Warn("llm letter failed, using template", zap.String("case_id", c.CaseID), zap.Error(err))
		return base, nil
	}
	base.Subject = out.Subject
	base.Body = out.Body
	if len(out.KeyPoints) > 0 {
		base.KeyPoints = out.KeyPoints
	}
	base.Mode = ModeLLM
	return base, nil
}

func (d *LLMDrafter) generate(ctx context.Context, prompt string) (llmLetter, error) {
	feedback := ""
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		fullPrompt := prompt
		if feedback != "" {
			fullPrompt += "\n\n" + feedback
		}
		raw, err := d.caller.Generate(ctx, fullPrompt)
		if err != nil {
			class := classifyTransportError(err)
			if class == failureTimeout || class == failureRateLimit || class == failureServer {
				if attempt < maxAttempts && ctx.Err() == nil {
					if err := d.sleep(ctx, backoffDelay(attempt)); err != nil {
						return llmLetter{}, fmt.Errorf("letter retry backoff: %w", err)
					}
					continue
				}
			}
			return llmLetter{}, fmt.Errorf("letter transport failure: %w", err)
		}

		clean := stripCodeFences(raw)
		if clean == "" {
			feedback = "Your previous response was empty. Respond with valid JSON."
			continue
		}
		var out llmLetter
		if err := json.Unmarshal([]byte(clean), &out); err != nil {
			feedback = "Your previous response was not valid JSON. Respond with only valid JSON."
			continue
		}
		if err := out.validate(); err != nil {
			feedback = fmt.Sprintf("Your response failed validation: %s. Fix these issues.", err)
			continue
		}
		return out, nil
	}
	return llmLetter{}, fmt.Errorf("letter generation failed after %d attempts", maxAttempts)
}

func buildPrompt(c claims.Case, req Request) (string, error) {
	payload := map[string]any{
		"case_id":       c.CaseID,
		"policy_number": policyNumber(c),
		"extracted":     c.ExtractedInfo,
		"analysis":      c.Analysis,
		"strategy":      c.Strategy,
		"request":       req,
	}
	blob, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode letter prompt: %w", err)
	}
	var b strings.Builder
	b.WriteString("Draft a negotiation letter to the insurer's claims department for the case below.\n")
	fmt.Fprintf(&b, "Tone: %s. Urgency: %s.\n", req.Tone, req.UrgencyLevel)
	if req.legalReferences() {
		b.WriteString("You may reference the legal precedents listed in the strategy.\n")
	} else {
		b.WriteString("Do not cite legal precedents or doctrines.\n")
	}
	if len(req.CustomPoints) > 0 {
		b.WriteString("Make sure the letter covers these points: " + strings.Join(req.CustomPoints, "; ") + "\n")
	}
	b.WriteString("Sign the letter as \"" + senderName + "\".\n\n")
	b.WriteString("Case:\n")
	b.Write(blob)
	b.WriteString("\n\nRespond with only a JSON object: {\"subject\": string, \"body\": string, \"key_points\": [string]}.")
	return b.String(), nil
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		parts := strings.SplitN(s, "\n", 2)
		if len(parts) == 2 {
			s = parts[1]
		}
		s = strings.TrimPrefix(s, "json")
		s = strings.TrimSpace(strings.TrimSuffix(s, "```"))
	}
	return s
}

func classifyTransportError(err error) llmFailureClass {
	if err == nil {
		return failureNone
	}
	msg := strings.ToLower(err.Error())
	if errors.Is(err, context.DeadlineExceeded) {
		return failureTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return failureTimeout
	}
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == 429:
			return failureRateLimit
		case apiErr.StatusCode >= 500:
			return failureServer
		case apiErr.StatusCode >= 400:
			return failureClient
		}
	}
	switch {
	case strings.Contains(msg, "429"):
		return failureRateLimit
	case strings.Contains(msg, "status code: 5") || strings.Contains(msg, "status=5") || strings.Contains(msg, "server error"):
		return failureServer
	case strings.Contains(msg, "status code: 4") || strings.Contains(msg, "status=4"):
		return failureClient
	default:
		return failureServer
	}
}

// sleepContext waits for d or until ctx is done, whichever comes first.
func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func backoffDelay(attempt int) time.Duration {
	if attempt <= 1 {
		return 1 * time.Second
	}
	return 2 * time.Second
}

func envEnabled(key string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
