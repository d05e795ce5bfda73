package notify

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/genai"

	"github.com/nguyentantai21042004/sitwatch/internal/feed"
	"github.com/nguyentantai21042004/sitwatch/internal/logger"
)

const summaryPrompt = `Summarize the following newly published video in one short sentence.
Keep the original language of the title.

Title: %s
Uploader: %s
Description:
---
%s
---`

// generateFunc sends prompt to model using apiKey and returns the text reply.
type generateFunc func(ctx context.Context, apiKey, model, prompt string) (string, error)

type implSummarizer struct {
	model    string
	logger   logger.Logger
	generate generateFunc

	apiKeys []string

	mu         sync.Mutex
	currentKey int
}

// NewSummarizer creates a Notifier that logs a Gemini summary of each new
// video, rotating through apiKeys when one is rate limited.
func NewSummarizer(apiKeys []string, model string, log logger.Logger) Notifier {
	return &implSummarizer{
		apiKeys:  apiKeys,
		model:    model,
		logger:   log,
		generate: generateGemini,
	}
}

func (s *implSummarizer) Notify(ctx context.Context, item feed.Item) error {
	v, err := item.Video()
	if err != nil {
		return err
	}
	if strings.TrimSpace(v.Description) == "" && strings.TrimSpace(v.Title) == "" {
		s.logger.Debug(ctx, "Video %d has no text to summarize", item.ID)
		return nil
	}

	summary, err := s.summarize(ctx, fmt.Sprintf(summaryPrompt, v.Title, v.Uploader.Username, v.Description))
	if err != nil {
		return fmt.Errorf("summarize video %d: %w", item.ID, err)
	}

	s.logger.Info(ctx, "Summary #%d: %s", item.ID, strings.TrimSpace(summary))
	return nil
}

func (s *implSummarizer) summarize(ctx context.Context, prompt string) (string, error) {
	if len(s.apiKeys) == 0 {
		return "", fmt.Errorf("no Gemini API keys configured")
	}

	var lastErr error
	for range len(s.apiKeys) {
		idx := s.keyIndex()

		text, err := s.generate(ctx, s.apiKeys[idx], s.model, prompt)
		if err == nil {
			return text, nil
		}
		if !isQuotaErr(err) {
			return "", err
		}

		s.logger.Warn(ctx, "Key %d rate limited, rotating...", idx+1)
		s.rotateFrom(idx)
		lastErr = err
	}

	return "", fmt.Errorf("all API keys exhausted: %w", lastErr)
}

func (s *implSummarizer) keyIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentKey
}

// rotateFrom moves past key idx unless a concurrent call already did.
func (s *implSummarizer) rotateFrom(idx int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.currentKey == idx {
		s.currentKey = (idx + 1) % len(s.apiKeys)
	}
}

func isQuotaErr(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(msg, "quota") || strings.Contains(msg, "RESOURCE_EXHAUSTED")
}

func generateGemini(ctx context.Context, apiKey, model, prompt string) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("create client: %w", err)
	}

	result, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return "", fmt.Errorf("empty response from Gemini")
	}

	var text strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			text.WriteString(part.Text)
		}
	}
	return text.String(), nil
}
