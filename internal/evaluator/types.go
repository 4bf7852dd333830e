// Package evaluator scores battle prompts. Upstream model output is
// normalized into a Result; any call failure or unusable output falls back
// to a deterministic local heuristic.
package evaluator

// Sub-score ranges.
const (
	MaxAIEvaluation      = 4.0
	MaxFormatQuality     = 2.0
	MaxEfficiency        = 2.0
	MaxTechnicalAccuracy = 2.0
	MaxTotal             = 10.0
)

// Source says which path produced a Result.
type Source string

const (
	SourceUpstream  Source = "upstream"
	SourceHeuristic Source = "heuristic"
)

// Scores are the four weighted categories.
type Scores struct {
	AIEvaluation      float64 `json:"ai_evaluation"`
	FormatQuality     float64 `json:"format_quality"`
	Efficiency        float64 `json:"efficiency"`
	TechnicalAccuracy float64 `json:"technical_accuracy"`
}

// Sum adds the four categories.
func (s Scores) Sum() float64 {
	return s.AIEvaluation + s.FormatQuality + s.Efficiency + s.TechnicalAccuracy
}

// Feedback is free-text guidance, each list in display order.
type Feedback struct {
	Strengths    []string `json:"strengths"`
	Improvements []string `json:"improvements"`
	Tips         []string `json:"tips"`
}

// Result is a normalized evaluation. TotalScore is authoritative and is not
// recomputed from Scores for upstream results.
type Result struct {
	Scores     Scores   `json:"scores"`
	TotalScore float64  `json:"total_score"`
	Feedback   Feedback `json:"feedback"`
	Source     Source   `json:"source"`
	// Adjusted is set when upstream values were clamped into range.
	Adjusted bool `json:"adjusted,omitempty"`
	// FallbackReason explains why the heuristic was used.
	FallbackReason string `json:"fallback_reason,omitempty"`
}

// Consistent reports whether TotalScore matches the sub-score sum within
// rounding.
func (r Result) Consistent() bool {
	d := r.TotalScore - r.Scores.Sum()
	return d > -0.05 && d < 0.05
}
