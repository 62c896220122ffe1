// Package judge scores generated analysis reports with an LLM acting as an
// evaluator, returning structured 1-10 scores with written feedback.
package judge

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/pitchlens/pitchlens/internal/config"
	"github.com/pitchlens/pitchlens/internal/domain"
)

const promptAnalysisJudge = "analysis_judge"

// maxOriginalRunes caps how much of the source material is quoted in the
// evaluation prompt.
const maxOriginalRunes = 2000

// PromptSource resolves prompt configurations by type.
type PromptSource interface {
	Get(promptType string) (config.PromptConfig, error)
}

// Service evaluates analysis quality against the original content.
type Service struct {
	completer domain.Completer
	prompts   PromptSource
	logger    *zap.Logger
}

func New(completer domain.Completer, prompts PromptSource, logger *zap.Logger) *Service {
	return &Service{completer: completer, prompts: prompts, logger: logger}
}

// Evaluate asks the judge model to score the analysis and parses its JSON
// verdict. Fenced ```json output is tolerated.
func (s *Service) Evaluate(ctx context.Context, original, analysis string) (domain.Evaluation, error) {
	original = strings.TrimSpace(original)
	analysis = strings.TrimSpace(analysis)
	if original == "" {
		return domain.Evaluation{}, fmt.Errorf("%w: original content must not be empty", domain.ErrInvalidArgument)
	}
	if analysis == "" {
		return domain.Evaluation{}, fmt.Errorf("%w: analysis must not be empty", domain.ErrInvalidArgument)
	}

	prompt, err := s.prompts.Get(promptAnalysisJudge)
	if err != nil {
		return domain.Evaluation{}, fmt.Errorf("resolve prompt: %w", err)
	}

	userPrompt := strings.ReplaceAll(prompt.UserPromptTemplate, "{content}", truncateRunes(original, maxOriginalRunes))
	userPrompt = strings.ReplaceAll(userPrompt, "{analysis}", analysis)

	raw, err := s.completer.Complete(ctx, prompt.SystemPrompt, userPrompt, domain.ModelConfig{
		Model:           prompt.Model.Model,
		MaxOutputTokens: prompt.Model.MaxOutputTokens,
		Temperature:     prompt.Model.Temperature,
	})
	if err != nil {
		return domain.Evaluation{}, fmt.Errorf("evaluate analysis: %w", err)
	}

	var eval domain.Evaluation
	if err := json.Unmarshal([]byte(extractJSON(raw)), &eval); err != nil {
		return domain.Evaluation{}, fmt.Errorf("parse judge verdict: %w", err)
	}

	s.logger.Info("Evaluated analysis",
		zap.Float64("overall", eval.Overall),
		zap.String("model", prompt.Model.Model),
	)
	return eval, nil
}

// extractJSON strips a markdown code fence around the judge's JSON payload,
// if present.
func extractJSON(s string) string {
	if start := strings.Index(s, "```json"); start >= 0 {
		rest := s[start+len("```json"):]
		if end := strings.Index(rest, "```"); end >= 0 {
			return strings.TrimSpace(rest[:end])
		}
		return strings.TrimSpace(rest)
	}
	return strings.TrimSpace(s)
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
