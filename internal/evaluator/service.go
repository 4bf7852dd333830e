package evaluator

import (
	"context"
	"strings"

	"github.com/agusx1211/promptarena/internal/catalog"
	"github.com/agusx1211/promptarena/internal/debug"
	"github.com/agusx1211/promptarena/internal/llm"
	"github.com/agusx1211/promptarena/pkg/protocol"
)

// Per-call generation settings.
const (
	EvaluateTemperature = 0.3
	EvaluateMaxTokens   = 2000
	AnalyzeTemperature  = 0.5
	AnalyzeMaxTokens    = 500
	ReviewTemperature   = 0.3
)

// Service issues evaluator, execution, analysis and review calls. A nil
// Completer makes every call take its offline path.
type Service struct {
	llm         llm.Completer
	model       string
	temperature float64
}

// NewService wraps c. model may be empty to use the completer default;
// temperature applies to Execute.
func NewService(c llm.Completer, model string, temperature float64) *Service {
	return &Service{llm: c, model: model, temperature: temperature}
}

func (s *Service) complete(ctx context.Context, msgs []llm.Message, maxTokens int, temperature float64) (llm.Completion, error) {
	if s == nil || s.llm == nil {
		return llm.Completion{}, llm.ErrNoAPIKey
	}
	return s.llm.Complete(ctx, msgs, llm.Options{
		Model:       s.model,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
}

// Evaluate scores prompt against sc. It always returns a usable Result.
func (s *Service) Evaluate(ctx context.Context, prompt string, sc catalog.Scenario) Result {
	resp, err := s.complete(ctx, []llm.Message{
		llm.System(protocol.EvaluatorInstructions()),
		llm.User(protocol.EvaluationRequest(sc.Title, sc.Description, sc.Criteria, prompt)),
	}, EvaluateMaxTokens, EvaluateTemperature)
	r := Normalize(resp.Content, err, prompt)
	debug.LogKV("evaluator", "evaluated", "scenario", sc.ID, "source", r.Source, "total", r.TotalScore)
	return r
}

// Execution is the model's output for a prompt run against scenario data.
type Execution struct {
	Output string    `json:"output"`
	OK     bool      `json:"ok"`
	Usage  llm.Usage `json:"usage"`
}

// Execute runs prompt against data. A failed call yields the error text as
// the output with OK unset.
func (s *Service) Execute(ctx context.Context, prompt, data string) Execution {
	resp, err := s.complete(ctx, []llm.Message{
		llm.User(protocol.ExecutionRequest(prompt, data)),
	}, 0, s.temperature)
	if err != nil {
		debug.LogKV("evaluator", "execution failed", "error", err)
		return Execution{Output: "Error executing prompt: " + err.Error()}
	}
	return Execution{Output: resp.Content, OK: true, Usage: resp.Usage}
}

// Analyze returns brief free-text feedback on a draft.
func (s *Service) Analyze(ctx context.Context, prompt string) (string, error) {
	resp, err := s.complete(ctx, []llm.Message{
		llm.System(protocol.AnalyzerInstructions()),
		llm.User(protocol.AnalysisRequest(prompt)),
	}, AnalyzeMaxTokens, AnalyzeTemperature)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Content), nil
}
