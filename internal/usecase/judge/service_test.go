package judge

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/pitchlens/pitchlens/internal/config"
	"github.com/pitchlens/pitchlens/internal/domain"
)

type mockCompleter struct {
	response string
	err      error

	gotSystem string
	gotUser   string
	gotCfg    domain.ModelConfig
}

func (m *mockCompleter) Complete(_ context.Context, systemPrompt, userPrompt string, cfg domain.ModelConfig) (string, error) {
	m.gotSystem = systemPrompt
	m.gotUser = userPrompt
	m.gotCfg = cfg
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func judgePrompts() config.Prompts {
	return config.Prompts{
		promptAnalysisJudge: {
			SystemPrompt:       "You are a strict evaluator of investment analyses.",
			UserPromptTemplate: "Original:\n{content}\n\nAnalysis:\n{analysis}\n\nReturn JSON scores.",
			Model:              config.ModelConfig{Model: "gpt-4-turbo", MaxOutputTokens: 500, Temperature: 0.3},
		},
	}
}

const verdict = `{"accuracy": 8, "completeness": 7, "usefulness": 9, "overall": 8.0, "feedback": "Solid coverage."}`

func TestEvaluate(t *testing.T) {
	completer := &mockCompleter{response: verdict}
	svc := New(completer, judgePrompts(), zap.NewNop())

	eval, err := svc.Evaluate(context.Background(), "pitch deck text", "analysis text")
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}

	if eval.Accuracy != 8 || eval.Completeness != 7 || eval.Usefulness != 9 || eval.Overall != 8.0 {
		t.Errorf("unexpected scores: %+v", eval)
	}
	if eval.Feedback != "Solid coverage." {
		t.Errorf("Feedback = %q", eval.Feedback)
	}

	if !strings.Contains(completer.gotUser, "Original:\npitch deck text") {
		t.Errorf("user prompt missing original content:\n%s", completer.gotUser)
	}
	if !strings.Contains(completer.gotUser, "Analysis:\nanalysis text") {
		t.Errorf("user prompt missing analysis:\n%s", completer.gotUser)
	}
	if completer.gotCfg.Model != "gpt-4-turbo" || completer.gotCfg.Temperature != 0.3 {
		t.Errorf("model config = %+v", completer.gotCfg)
	}
}

func TestEvaluate_FencedJSON(t *testing.T) {
	completer := &mockCompleter{response: "Here is my verdict:\n```json\n" + verdict + "\n```\nDone."}
	svc := New(completer, judgePrompts(), zap.NewNop())

	eval, err := svc.Evaluate(context.Background(), "pitch deck text", "analysis text")
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if eval.Overall != 8.0 {
		t.Errorf("Overall = %v, want 8.0", eval.Overall)
	}
}

func TestEvaluate_TruncatesOriginal(t *testing.T) {
	completer := &mockCompleter{response: verdict}
	svc := New(completer, judgePrompts(), zap.NewNop())

	long := strings.Repeat("a", 5000)
	_, err := svc.Evaluate(context.Background(), long, "analysis text")
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}

	if strings.Contains(completer.gotUser, strings.Repeat("a", 2001)) {
		t.Error("original content not truncated to 2000 runes")
	}
	if !strings.Contains(completer.gotUser, strings.Repeat("a", 2000)) {
		t.Error("truncated original missing from prompt")
	}
}

func TestEvaluate_EmptyArguments(t *testing.T) {
	svc := New(&mockCompleter{response: verdict}, judgePrompts(), zap.NewNop())

	if _, err := svc.Evaluate(context.Background(), "", "analysis"); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("empty original: error = %v, want ErrInvalidArgument", err)
	}
	if _, err := svc.Evaluate(context.Background(), "original", "  "); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("blank analysis: error = %v, want ErrInvalidArgument", err)
	}
}

func TestEvaluate_CompleterError(t *testing.T) {
	completer := &mockCompleter{err: domain.ErrCompletionProviderError}
	svc := New(completer, judgePrompts(), zap.NewNop())

	_, err := svc.Evaluate(context.Background(), "original", "analysis")
	if !errors.Is(err, domain.ErrCompletionProviderError) {
		t.Fatalf("error = %v, want ErrCompletionProviderError", err)
	}
}

func TestEvaluate_MalformedVerdict(t *testing.T) {
	completer := &mockCompleter{response: "I refuse to answer in JSON."}
	svc := New(completer, judgePrompts(), zap.NewNop())

	if _, err := svc.Evaluate(context.Background(), "original", "analysis"); err == nil {
		t.Fatal("Evaluate() expected parse error")
	}
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"bare", `{"a":1}`, `{"a":1}`},
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"fenced with prose", "verdict below\n```json\n{\"a\":1}\n```\nthanks", `{"a":1}`},
		{"unclosed fence", "```json\n{\"a\":1}", `{"a":1}`},
		{"surrounding whitespace", "  {\"a\":1}\n", `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractJSON(tt.in); got != tt.want {
				t.Errorf("extractJSON(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
