// Package analysis generates retrieval-grounded investment analysis reports:
// relevant knowledge is pulled from the index, rendered into the system
// prompt, and the combined prompt is sent to the chat completion provider.
package analysis

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/pitchlens/pitchlens/internal/domain"
)

const promptInvestmentAnalysis = "investment_analysis"

// Service turns extracted pitch-deck text into an analysis report.
type Service struct {
	retriever  Retriever
	completer  domain.Completer
	prompts    PromptSource
	topK       int
	minScore   float32
	minContent int
	logger     *zap.Logger
}

// New creates an analysis service. topK and minScore control the knowledge
// context window; minContent is the minimum accepted input length in runes.
func New(
	retriever Retriever,
	completer domain.Completer,
	prompts PromptSource,
	topK int,
	minScore float32,
	minContent int,
	logger *zap.Logger,
) *Service {
	return &Service{
		retriever:  retriever,
		completer:  completer,
		prompts:    prompts,
		topK:       topK,
		minScore:   minScore,
		minContent: minContent,
		logger:     logger,
	}
}

// Analyze retrieves knowledge context for the content, builds the grounded
// prompt pair, and returns the generated report with its sources.
func (s *Service) Analyze(ctx context.Context, content string) (domain.Analysis, error) {
	trimmed := strings.TrimSpace(content)
	if utf8.RuneCountInString(trimmed) < s.minContent {
		return domain.Analysis{}, fmt.Errorf(
			"%w: content must be at least %d characters", domain.ErrInvalidArgument, s.minContent)
	}

	matches, err := s.retriever.Retrieve(ctx, trimmed, s.topK, s.minScore)
	if err != nil {
		return domain.Analysis{}, fmt.Errorf("retrieve knowledge context: %w", err)
	}

	prompt, err := s.prompts.Get(promptInvestmentAnalysis)
	if err != nil {
		return domain.Analysis{}, fmt.Errorf("resolve prompt: %w", err)
	}

	systemPrompt := fmt.Sprintf(
		"RETRIEVED INVESTMENT KNOWLEDGE & FRAMEWORKS:\n%s\n\n%s\n\n"+
			"Use the retrieved investment knowledge above to inform your analysis "+
			"and provide industry-standard insights with specific benchmarks and frameworks.",
		formatContext(matches), prompt.SystemPrompt)
	userPrompt := strings.ReplaceAll(prompt.UserPromptTemplate, "{content}", trimmed)

	report, err := s.completer.Complete(ctx, systemPrompt, userPrompt, domain.ModelConfig{
		Model:           prompt.Model.Model,
		MaxOutputTokens: prompt.Model.MaxOutputTokens,
		Temperature:     prompt.Model.Temperature,
	})
	if err != nil {
		return domain.Analysis{}, fmt.Errorf("generate analysis: %w", err)
	}

	s.logger.Info("Generated analysis report",
		zap.Int("content_len", utf8.RuneCountInString(trimmed)),
		zap.Int("context_matches", len(matches)),
		zap.String("model", prompt.Model.Model),
	)

	return domain.Analysis{Report: report, Sources: matches}, nil
}

// formatContext renders matches as markdown sections, highest score first.
func formatContext(matches []domain.Match) string {
	sections := make([]string, len(matches))
	for i, m := range matches {
		sections[i] = fmt.Sprintf("**%s** (Relevance: %.3f, Category: %s):\n%s",
			topicTitle(m.Topic), m.SimilarityScore, m.Category, m.Content)
	}
	return strings.Join(sections, "\n\n")
}

// topicTitle turns a snake_case topic id into a display title.
func topicTitle(topic string) string {
	words := strings.Split(topic, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		r, size := utf8.DecodeRuneInString(w)
		words[i] = strings.ToUpper(string(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
