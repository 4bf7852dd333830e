// Package protocol defines the contract between promptarena and the
// evaluator model: the instructions it receives and the JSON shapes it must
// answer with.
//
// The evaluator answers every scoring request with a single JSON object:
//
//	{
//	  "scores": {
//	    "ai_evaluation": 0-4,
//	    "format_quality": 0-2,
//	    "efficiency": 0-2,
//	    "technical_accuracy": 0-2
//	  },
//	  "total_score": 0-10,
//	  "feedback": {"strengths": [...], "improvements": [...], "tips": [...]}
//	}
//
// Anything else is treated as unusable and scored locally instead.
package protocol

import (
	"fmt"
	"strings"
)

// EvaluatorInstructions is the system prompt for scoring a battle prompt.
func EvaluatorInstructions() string {
	return `You are an expert prompt engineering evaluator. You will evaluate prompts based on:
1. AI Evaluation (40%): How well would this prompt work with an AI to accomplish the task?
2. Format Quality (20%): Is the prompt well-structured, clear, and properly formatted?
3. Efficiency (20%): Is the prompt concise yet complete? Does it avoid unnecessary words?
4. Technical Accuracy (20%): Does it use proper prompt engineering techniques (role definition, output format, examples, etc.)?

Score each category within its range and provide specific feedback. Respond with JSON only.`
}

// EvaluationRequest is the user message asking for a score of prompt in the
// context of one scenario.
func EvaluationRequest(title, description string, criteria []string, prompt string) string {
	return fmt.Sprintf(`Scenario: %s
Description: %s
Criteria: %s

User's Prompt:
%s

Please evaluate this prompt and return a JSON response with this structure:
{
    "scores": {
        "ai_evaluation": <number 0-4>,
        "format_quality": <number 0-2>,
        "efficiency": <number 0-2>,
        "technical_accuracy": <number 0-2>
    },
    "total_score": <number 0-10>,
    "feedback": {
        "strengths": ["<strength 1>", "<strength 2>"],
        "improvements": ["<improvement 1>", "<improvement 2>"],
        "tips": ["<tip 1>", "<tip 2>"]
    }
}`, title, description, strings.Join(criteria, ", "), prompt)
}

// ExecutionRequest runs the player's prompt against the scenario data.
func ExecutionRequest(prompt, data string) string {
	return prompt + "\n\nData:\n" + data
}

// AnalyzerInstructions is the system prompt for the quick draft check.
func AnalyzerInstructions() string {
	return "You are a prompt engineering assistant. Analyze the given prompt and provide quick feedback on its structure and potential effectiveness."
}

// AnalysisRequest asks for two or three sentences of feedback on prompt.
func AnalysisRequest(prompt string) string {
	return "Analyze this prompt and provide brief feedback (2-3 sentences):\n\n" + prompt
}

// ReviewerInstructions is the system prompt for playground reviews.
func ReviewerInstructions() string {
	return `You are an expert prompt engineering coach. Provide detailed, constructive feedback on prompts.

Analyze the prompt on these dimensions:
1. Clarity and specificity
2. Structure and formatting
3. Role definition
4. Output format specification
5. Use of examples and constraints
6. Overall effectiveness

Provide your analysis in this JSON format:
{
    "strengths": ["strength1", "strength2", "strength3"],
    "improvements": ["improvement1", "improvement2", "improvement3"],
    "recommendations": ["specific recommendation1", "specific recommendation2"],
    "qualityScore": <number 0-10>,
    "qualityLabel": "<brief assessment>",
    "improvedVersion": "<optional: improved version of the prompt if significant issues found>"
}`
}

// ReviewRequest is the user message for a playground review. context may be
// empty.
func ReviewRequest(prompt, context string) string {
	if strings.TrimSpace(context) != "" {
		return "Context: " + context + "\n\nPrompt to review:\n" + prompt
	}
	return "Prompt to review:\n" + prompt
}
