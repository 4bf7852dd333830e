package protocol

import (
	"strings"
	"testing"
)

func TestEvaluationRequestIncludesScenarioAndSchema(t *testing.T) {
	got := EvaluationRequest("Report Query", "Write SQL", []string{"uses schema", "explains"}, "You are a DBA.")
	for _, want := range []string{
		"Scenario: Report Query",
		"Description: Write SQL",
		"Criteria: uses schema, explains",
		"User's Prompt:\nYou are a DBA.",
		`"total_score"`,
		`"technical_accuracy"`,
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("EvaluationRequest missing %q:\n%s", want, got)
		}
	}
}

func TestExecutionRequest(t *testing.T) {
	if got := ExecutionRequest("Summarize", "a,b"); got != "Summarize\n\nData:\na,b" {
		t.Fatalf("ExecutionRequest = %q", got)
	}
}

func TestReviewRequestContext(t *testing.T) {
	if got := ReviewRequest("p", ""); got != "Prompt to review:\np" {
		t.Fatalf("ReviewRequest without context = %q", got)
	}
	if got := ReviewRequest("p", "for a chatbot"); !strings.HasPrefix(got, "Context: for a chatbot\n\n") {
		t.Fatalf("ReviewRequest with context = %q", got)
	}
}

func TestInstructionsMentionJSON(t *testing.T) {
	for name, s := range map[string]string{
		"evaluator": EvaluatorInstructions(),
		"reviewer":  ReviewerInstructions(),
	} {
		if !strings.Contains(s, "JSON") {
			t.Fatalf("%s instructions do not ask for JSON", name)
		}
	}
	if !strings.Contains(AnalysisRequest("x"), "2-3 sentences") {
		t.Fatal("AnalysisRequest lost its length hint")
	}
	if AnalyzerInstructions() == "" {
		t.Fatal("AnalyzerInstructions is empty")
	}
}
