package evaluator

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/agusx1211/promptarena/internal/debug"
	"github.com/agusx1211/promptarena/internal/llm"
	"github.com/agusx1211/promptarena/pkg/protocol"
)

// Review is playground feedback on a standalone prompt.
type Review struct {
	Strengths       []string `json:"strengths"`
	Improvements    []string `json:"improvements"`
	Recommendations []string `json:"recommendations"`
	QualityScore    float64  `json:"qualityScore"`
	QualityLabel    string   `json:"qualityLabel"`
	ImprovedVersion string   `json:"improvedVersion,omitempty"`
	Source          Source   `json:"source"`
}

// Review asks the reviewer model for feedback on prompt. background is
// optional background. Failures fall back to HeuristicReview.
func (s *Service) Review(ctx context.Context, prompt, background string) Review {
	resp, err := s.complete(ctx, []llm.Message{
		llm.System(protocol.ReviewerInstructions()),
		llm.User(protocol.ReviewRequest(prompt, background)),
	}, 0, ReviewTemperature)
	if err == nil {
		var r Review
		if r, err = decodeReview(resp.Content); err == nil {
			return r
		}
	}
	debug.LogKV("evaluator", "review fell back to heuristic", "error", err)
	return HeuristicReview(prompt)
}

func decodeReview(raw string) (Review, error) {
	var w struct {
		Strengths       []string `json:"strengths"`
		Improvements    []string `json:"improvements"`
		Recommendations []string `json:"recommendations"`
		QualityScore    *float64 `json:"qualityScore"`
		QualityLabel    string   `json:"qualityLabel"`
		ImprovedVersion string   `json:"improvedVersion"`
	}
	if err := json.Unmarshal([]byte(StripFence(raw)), &w); err != nil {
		return Review{}, fmt.Errorf("parsing review: %w", err)
	}
	if w.QualityScore == nil {
		return Review{}, fmt.Errorf("review missing qualityScore")
	}
	score, _ := clamp(*w.QualityScore, MaxTotal)
	label := w.QualityLabel
	if label == "" {
		label = QualityLabel(score)
	}
	return Review{
		Strengths:       nonNil(w.Strengths),
		Improvements:    nonNil(w.Improvements),
		Recommendations: nonNil(w.Recommendations),
		QualityScore:    score,
		QualityLabel:    label,
		ImprovedVersion: w.ImprovedVersion,
		Source:          SourceUpstream,
	}, nil
}

// HeuristicReview derives a review from the local heuristic.
func HeuristicReview(prompt string) Review {
	r := Heuristic(prompt)
	recs := []string{}
	sig := Detect(prompt)
	if !sig.Example {
		recs = append(recs, "Add a short example of the expected output")
	}
	if !sig.SweetSpot {
		recs = append(recs, "Aim for a prompt between 50 and 500 characters")
	}
	recs = append(recs, r.Feedback.Tips...)
	return Review{
		Strengths:       r.Feedback.Strengths,
		Improvements:    r.Feedback.Improvements,
		Recommendations: recs,
		QualityScore:    r.TotalScore,
		QualityLabel:    QualityLabel(r.TotalScore),
		Source:          SourceHeuristic,
	}
}

// QualityLabel buckets a 0-10 score.
func QualityLabel(score float64) string {
	switch {
	case score >= 9:
		return "Excellent"
	case score >= 7:
		return "Good"
	case score >= 5:
		return "Fair"
	default:
		return "Needs work"
	}
}
