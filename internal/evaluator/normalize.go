package evaluator

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/agusx1211/promptarena/internal/debug"
)

// wire mirrors the upstream JSON with pointers so missing fields are
// distinguishable from zeros.
type wire struct {
	Scores *struct {
		AIEvaluation      *float64 `json:"ai_evaluation"`
		FormatQuality     *float64 `json:"format_quality"`
		Efficiency        *float64 `json:"efficiency"`
		TechnicalAccuracy *float64 `json:"technical_accuracy"`
	} `json:"scores"`
	TotalScore *float64 `json:"total_score"`
	Feedback   *struct {
		Strengths    []string `json:"strengths"`
		Improvements []string `json:"improvements"`
		Tips         []string `json:"tips"`
	} `json:"feedback"`
}

// Normalize turns raw evaluator output into a Result. A non-nil callErr or
// output that fails Decode yields Heuristic(prompt).
func Normalize(raw string, callErr error, prompt string) Result {
	if callErr != nil {
		debug.LogKV("evaluator", "upstream failed, using heuristic", "error", callErr)
		return fallback(prompt, callErr)
	}
	r, err := Decode(raw)
	if err != nil {
		debug.LogKV("evaluator", "unusable upstream output, using heuristic", "error", err, "bytes", len(raw))
		return fallback(prompt, err)
	}
	return r
}

func fallback(prompt string, reason error) Result {
	r := Heuristic(prompt)
	r.FallbackReason = reason.Error()
	return r
}

// Decode strictly parses an upstream evaluation. Surrounding whitespace and
// a Markdown code fence are tolerated. Every score and the feedback object
// must be present. Out-of-range values are clamped and flagged as Adjusted;
// the total is never recomputed from the sub-scores.
func Decode(raw string) (Result, error) {
	body := StripFence(raw)
	if body == "" {
		return Result{}, errors.New("empty evaluator output")
	}
	var w wire
	if err := json.Unmarshal([]byte(body), &w); err != nil {
		return Result{}, fmt.Errorf("parsing evaluator output: %w", err)
	}
	if err := w.complete(); err != nil {
		return Result{}, err
	}

	r := Result{Source: SourceUpstream}
	var adj [5]bool
	r.Scores.AIEvaluation, adj[0] = clamp(*w.Scores.AIEvaluation, MaxAIEvaluation)
	r.Scores.FormatQuality, adj[1] = clamp(*w.Scores.FormatQuality, MaxFormatQuality)
	r.Scores.Efficiency, adj[2] = clamp(*w.Scores.Efficiency, MaxEfficiency)
	r.Scores.TechnicalAccuracy, adj[3] = clamp(*w.Scores.TechnicalAccuracy, MaxTechnicalAccuracy)
	r.TotalScore, adj[4] = clamp(*w.TotalScore, MaxTotal)
	for _, a := range adj {
		r.Adjusted = r.Adjusted || a
	}
	if r.Adjusted {
		debug.LogKV("evaluator", "clamped out-of-range upstream scores", "total", *w.TotalScore)
	}

	r.Feedback = Feedback{
		Strengths:    nonNil(w.Feedback.Strengths),
		Improvements: nonNil(w.Feedback.Improvements),
		Tips:         nonNil(w.Feedback.Tips),
	}
	return r, nil
}

func (w *wire) complete() error {
	var missing []string
	if w.Scores == nil {
		missing = append(missing, "scores")
	} else {
		if w.Scores.AIEvaluation == nil {
			missing = append(missing, "scores.ai_evaluation")
		}
		if w.Scores.FormatQuality == nil {
			missing = append(missing, "scores.format_quality")
		}
		if w.Scores.Efficiency == nil {
			missing = append(missing, "scores.efficiency")
		}
		if w.Scores.TechnicalAccuracy == nil {
			missing = append(missing, "scores.technical_accuracy")
		}
	}
	if w.TotalScore == nil {
		missing = append(missing, "total_score")
	}
	if w.Feedback == nil {
		missing = append(missing, "feedback")
	}
	if len(missing) > 0 {
		return fmt.Errorf("evaluator output missing %s", strings.Join(missing, ", "))
	}
	return nil
}

// StripFence trims whitespace and one surrounding ``` fence (with an
// optional language tag).
func StripFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = ""
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func clamp(v, max float64) (float64, bool) {
	switch {
	case v < 0:
		return 0, true
	case v > max:
		return max, true
	default:
		return v, false
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
