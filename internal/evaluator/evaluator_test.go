package evaluator

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/agusx1211/promptarena/internal/catalog"
	"github.com/agusx1211/promptarena/internal/llm"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestHeuristicRoleFormatExample(t *testing.T) {
	// 57 characters: inside the sweet spot, so every signal fires.
	p := "You are a writer. Respond in JSON format with an example."
	r := Heuristic(p)
	if r.TotalScore != 9 {
		t.Fatalf("total = %v, want 9", r.TotalScore)
	}
	if r.Source != SourceHeuristic {
		t.Fatalf("source = %q", r.Source)
	}
	if r.Scores.FormatQuality != 1.5 || r.Scores.TechnicalAccuracy != 1.5 || r.Scores.Efficiency != 1.5 {
		t.Fatalf("scores = %+v", r.Scores)
	}
	if !near(r.Scores.AIEvaluation, 3.6) {
		t.Fatalf("ai_evaluation = %v, want 3.6", r.Scores.AIEvaluation)
	}
	if r.Feedback.Strengths[0] != "Good use of role definition" || r.Feedback.Strengths[1] != "Specifies output format" {
		t.Fatalf("strengths = %v", r.Feedback.Strengths)
	}
	if r.Feedback.Improvements[0] != "Try adding more specific constraints" || r.Feedback.Improvements[1] != "Consider adding examples" {
		t.Fatalf("improvements = %v", r.Feedback.Improvements)
	}
}

func TestHeuristicShortPromptSkipsLengthBonus(t *testing.T) {
	r := Heuristic("Act as a bot. JSON list, for example.")
	if r.TotalScore != 8 {
		t.Fatalf("total = %v, want 8", r.TotalScore)
	}
	if !near(r.Scores.AIEvaluation, 3.2) {
		t.Fatalf("ai_evaluation = %v", r.Scores.AIEvaluation)
	}
}

func TestHeuristicNoSignals(t *testing.T) {
	r := Heuristic("Summarize it.")
	if r.TotalScore != 5 {
		t.Fatalf("total = %v, want 5", r.TotalScore)
	}
	want := Scores{AIEvaluation: 2, FormatQuality: 1, Efficiency: 1.5, TechnicalAccuracy: 1}
	if !near(r.Scores.AIEvaluation, want.AIEvaluation) || r.Scores.FormatQuality != 1 || r.Scores.Efficiency != 1.5 || r.Scores.TechnicalAccuracy != 1 {
		t.Fatalf("scores = %+v, want %+v", r.Scores, want)
	}
	if r.Feedback.Strengths[0] != "Prompt is clear" || r.Feedback.Improvements[0] != "Consider defining a role for the AI" {
		t.Fatalf("feedback = %+v", r.Feedback)
	}
	if r.Feedback.Improvements[1] != "Specify the desired output format" {
		t.Fatalf("improvements = %v", r.Feedback.Improvements)
	}
}

func TestHeuristicLongPromptEfficiency(t *testing.T) {
	r := Heuristic(strings.Repeat("word ", 120))
	if r.Scores.Efficiency != 1 {
		t.Fatalf("efficiency = %v, want 1", r.Scores.Efficiency)
	}
	if r.TotalScore != 5 {
		t.Fatalf("total = %v, want 5", r.TotalScore)
	}
}

func TestHeuristicDeterministic(t *testing.T) {
	p := "Act as an analyst and produce a table of such as these items"
	a, b := Heuristic(p), Heuristic(p)
	if a.TotalScore != b.TotalScore || a.Scores != b.Scores {
		t.Fatalf("heuristic not deterministic: %+v vs %+v", a, b)
	}
}

const validJSON = `{
  "scores": {"ai_evaluation": 3.5, "format_quality": 1.5, "efficiency": 2, "technical_accuracy": 1},
  "total_score": 8,
  "feedback": {"strengths": ["clear"], "improvements": ["shorter"], "tips": ["add role"]},
  "extra": true
}`

func TestNormalizeUpstream(t *testing.T) {
	r := Normalize(validJSON, nil, "ignored")
	if r.Source != SourceUpstream {
		t.Fatalf("source = %q, reason %q", r.Source, r.FallbackReason)
	}
	if r.TotalScore != 8 || r.Scores.AIEvaluation != 3.5 {
		t.Fatalf("result = %+v", r)
	}
	if r.Adjusted {
		t.Fatal("in-range result flagged as adjusted")
	}
	if r.Feedback.Tips[0] != "add role" {
		t.Fatalf("tips = %v", r.Feedback.Tips)
	}
}

func TestNormalizeTrustsMismatchedTotal(t *testing.T) {
	raw := strings.Replace(validJSON, `"total_score": 8`, `"total_score": 9.5`, 1)
	r := Normalize(raw, nil, "p")
	if r.TotalScore != 9.5 {
		t.Fatalf("total = %v, want upstream 9.5", r.TotalScore)
	}
	if r.Consistent() {
		t.Fatal("expected inconsistent result")
	}
}

func TestNormalizeStripsFence(t *testing.T) {
	r := Normalize("```json\n"+validJSON+"\n```\n", nil, "p")
	if r.Source != SourceUpstream {
		t.Fatalf("fenced output fell back: %s", r.FallbackReason)
	}
}

func TestNormalizeClamps(t *testing.T) {
	raw := `{"scores":{"ai_evaluation":7,"format_quality":-1,"efficiency":1,"technical_accuracy":1},"total_score":12,"feedback":{}}`
	r := Normalize(raw, nil, "p")
	if !r.Adjusted {
		t.Fatal("expected Adjusted")
	}
	if r.Scores.AIEvaluation != MaxAIEvaluation || r.Scores.FormatQuality != 0 || r.TotalScore != MaxTotal {
		t.Fatalf("clamped = %+v total %v", r.Scores, r.TotalScore)
	}
	if r.Feedback.Strengths == nil || len(r.Feedback.Tips) != 0 {
		t.Fatalf("feedback lists should be empty, got %+v", r.Feedback)
	}
}

func TestNormalizeFallbacks(t *testing.T) {
	prompt := "You are a chef. List three recipes in a table."
	want := Heuristic(prompt).TotalScore
	cases := map[string]struct {
		raw string
		err error
	}{
		"call error":       {raw: validJSON, err: errors.New("HTTP 500")},
		"malformed":        {raw: "{not json"},
		"empty":            {raw: "   "},
		"missing total":    {raw: `{"scores":{"ai_evaluation":1,"format_quality":1,"efficiency":1,"technical_accuracy":1},"feedback":{}}`},
		"missing score":    {raw: `{"scores":{"ai_evaluation":1,"format_quality":1,"efficiency":1},"total_score":3,"feedback":{}}`},
		"missing feedback": {raw: `{"scores":{"ai_evaluation":1,"format_quality":1,"efficiency":1,"technical_accuracy":1},"total_score":4}`},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			r := Normalize(tc.raw, tc.err, prompt)
			if r.Source != SourceHeuristic {
				t.Fatalf("source = %q", r.Source)
			}
			if r.TotalScore != want {
				t.Fatalf("total = %v, want %v", r.TotalScore, want)
			}
			if r.FallbackReason == "" {
				t.Fatal("missing fallback reason")
			}
		})
	}
}

type fakeCompleter struct {
	content string
	err     error
	calls   []llm.Options
	msgs    [][]llm.Message
}

func (f *fakeCompleter) Complete(_ context.Context, msgs []llm.Message, opts llm.Options) (llm.Completion, error) {
	f.calls = append(f.calls, opts)
	f.msgs = append(f.msgs, msgs)
	if f.err != nil {
		return llm.Completion{}, f.err
	}
	return llm.Completion{Content: f.content}, nil
}

func TestServiceEvaluate(t *testing.T) {
	fc := &fakeCompleter{content: validJSON}
	svc := NewService(fc, "test-model", 0.7)
	sc := catalog.Scenario{ID: "s", Title: "Summaries", Description: "d", Criteria: []string{"short"}}
	r := svc.Evaluate(context.Background(), "prompt text", sc)
	if r.Source != SourceUpstream || r.TotalScore != 8 {
		t.Fatalf("result = %+v", r)
	}
	opts := fc.calls[0]
	if opts.Temperature != EvaluateTemperature || opts.MaxTokens != EvaluateMaxTokens || opts.Model != "test-model" {
		t.Fatalf("options = %+v", opts)
	}
	if len(fc.msgs[0]) != 2 || fc.msgs[0][0].Role != "system" {
		t.Fatalf("messages = %+v", fc.msgs[0])
	}
	if !strings.Contains(fc.msgs[0][1].Content, "prompt text") {
		t.Fatalf("user message missing prompt: %q", fc.msgs[0][1].Content)
	}
}

func TestServiceWithoutCompleterUsesHeuristic(t *testing.T) {
	svc := NewService(nil, "", 0.7)
	r := svc.Evaluate(context.Background(), "Summarize it.", catalog.Scenario{})
	if r.Source != SourceHeuristic || r.TotalScore != 5 {
		t.Fatalf("result = %+v", r)
	}
	ex := svc.Execute(context.Background(), "p", "d")
	if ex.OK || !strings.Contains(ex.Output, "no API key") {
		t.Fatalf("execution = %+v", ex)
	}
	if _, err := svc.Analyze(context.Background(), "p"); !errors.Is(err, llm.ErrNoAPIKey) {
		t.Fatalf("analyze err = %v", err)
	}
}

func TestServiceExecute(t *testing.T) {
	fc := &fakeCompleter{content: "output"}
	ex := NewService(fc, "", 0.7).Execute(context.Background(), "Do it", "a,b")
	if !ex.OK || ex.Output != "output" {
		t.Fatalf("execution = %+v", ex)
	}
	if got := fc.msgs[0]; len(got) != 1 || got[0].Content != "Do it\n\nData:\na,b" {
		t.Fatalf("messages = %+v", got)
	}
	if fc.calls[0].Temperature != 0.7 {
		t.Fatalf("temperature = %v", fc.calls[0].Temperature)
	}
}

func TestServiceAnalyze(t *testing.T) {
	fc := &fakeCompleter{content: "  Looks fine.\n"}
	got, err := NewService(fc, "", 0.7).Analyze(context.Background(), "p")
	if err != nil || got != "Looks fine." {
		t.Fatalf("Analyze = %q, %v", got, err)
	}
	if fc.calls[0].MaxTokens != AnalyzeMaxTokens || fc.calls[0].Temperature != AnalyzeTemperature {
		t.Fatalf("options = %+v", fc.calls[0])
	}
}

func TestServiceReview(t *testing.T) {
	fc := &fakeCompleter{content: `{"strengths":["a"],"improvements":["b"],"recommendations":["c"],"qualityScore":7.5,"qualityLabel":"Solid"}`}
	r := NewService(fc, "", 0.7).Review(context.Background(), "p", "ctx")
	if r.Source != SourceUpstream || r.QualityScore != 7.5 || r.QualityLabel != "Solid" {
		t.Fatalf("review = %+v", r)
	}
	if !strings.HasPrefix(fc.msgs[0][1].Content, "Context: ctx") {
		t.Fatalf("review request = %q", fc.msgs[0][1].Content)
	}
}

func TestServiceReviewFallback(t *testing.T) {
	fc := &fakeCompleter{content: "sorry"}
	r := NewService(fc, "", 0.7).Review(context.Background(), "Summarize it.", "")
	if r.Source != SourceHeuristic || r.QualityScore != 5 || r.QualityLabel != "Fair" {
		t.Fatalf("review = %+v", r)
	}
	if len(r.Recommendations) == 0 {
		t.Fatal("expected recommendations")
	}
}

func TestQualityLabel(t *testing.T) {
	for score, want := range map[float64]string{10: "Excellent", 7: "Good", 5.5: "Fair", 2: "Needs work"} {
		if got := QualityLabel(score); got != want {
			t.Errorf("QualityLabel(%v) = %q, want %q", score, got, want)
		}
	}
}
