package evaluator

import (
	"math"
	"regexp"
	"unicode/utf8"
)

var (
	roleRe    = regexp.MustCompile(`(?i)you are|act as|as a`)
	formatRe  = regexp.MustCompile(`(?i)format|json|list|table|bullet`)
	exampleRe = regexp.MustCompile(`(?i)example|for instance|such as`)
)

// Length bounds (exclusive) for the sweet-spot bonus.
const (
	sweetSpotMin = 50
	sweetSpotMax = 500
)

// Signals are the prompt features the heuristic looks for.
type Signals struct {
	Role      bool `json:"role"`
	Format    bool `json:"format"`
	Example   bool `json:"example"`
	SweetSpot bool `json:"sweet_spot"`
	Length    int  `json:"length"`
}

// Detect inspects prompt for the heuristic signals.
func Detect(prompt string) Signals {
	n := utf8.RuneCountInString(prompt)
	return Signals{
		Role:      roleRe.MatchString(prompt),
		Format:    formatRe.MatchString(prompt),
		Example:   exampleRe.MatchString(prompt),
		SweetSpot: n > sweetSpotMin && n < sweetSpotMax,
		Length:    n,
	}
}

// Heuristic scores prompt locally. It is a pure function of the text.
func Heuristic(prompt string) Result {
	sig := Detect(prompt)

	total := 5.0
	for _, hit := range []bool{sig.Role, sig.Format, sig.Example, sig.SweetSpot} {
		if hit {
			total++
		}
	}
	total = math.Min(total, MaxTotal)

	return Result{
		Scores: Scores{
			AIEvaluation:      math.Min(total*0.4, MaxAIEvaluation),
			FormatQuality:     pick(sig.Format, 1.5, 1),
			Efficiency:        pick(sig.Length < sweetSpotMax, 1.5, 1),
			TechnicalAccuracy: pick(sig.Role, 1.5, 1),
		},
		TotalScore: total,
		Feedback: Feedback{
			Strengths: []string{
				pickStr(sig.Role, "Good use of role definition", "Prompt is clear"),
				pickStr(sig.Format, "Specifies output format", "Addresses the task"),
			},
			Improvements: []string{
				pickStr(sig.Role, "Try adding more specific constraints", "Consider defining a role for the AI"),
				pickStr(sig.Format, "Consider adding examples", "Specify the desired output format"),
			},
			Tips: []string{
				"Be specific about what you want the AI to do",
				"Use structured formatting for complex tasks",
			},
		},
		Source: SourceHeuristic,
	}
}

func pick(cond bool, yes, no float64) float64 {
	if cond {
		return yes
	}
	return no
}

func pickStr(cond bool, yes, no string) string {
	if cond {
		return yes
	}
	return no
}
