package catalog

import "math/rand/v2"

// Tips are the one-line hints shown in the lobby.
var Tips = []string{
	"Be specific and clear in your instructions.",
	`Define the role the AI should take (e.g., "You are a technical writer").`,
	"Specify the output format you want (e.g., bullet points, JSON, table).",
	"Include examples when helpful to guide the AI.",
	"Use structured formatting with line breaks and sections.",
	"Define constraints (e.g., word count, tone, style).",
	"Test your prompts - think about edge cases.",
	`Use positive instructions ("Do this") rather than negative ("Don't do that").`,
	"Break complex tasks into steps.",
	"Review the AI output carefully before submitting.",
}

// Tip returns a random tip.
func Tip(rng *rand.Rand) string {
	return Tips[intN(rng, len(Tips))]
}

// TutorialStep is one page of the onboarding walkthrough.
type TutorialStep struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Kind    string `json:"type"`
}

// Tutorial is the onboarding walkthrough in display order.
var Tutorial = []TutorialStep{
	{
		Title:   "Welcome to the Arena!",
		Content: "Each round presents a real-world scenario that tests your prompt engineering skills. Craft the best prompt before the clock runs out.",
		Kind:    "intro",
	},
	{
		Title:   "Understanding Scenarios",
		Content: "Each scenario contains a task, criteria for success, and sample data. Read carefully and understand what the AI needs to accomplish before crafting your prompt.",
		Kind:    "scenario",
	},
	{
		Title:   "Crafting Your Prompt",
		Content: "Write clear, specific prompts that define the role, task, format, and constraints. Use structured formatting and provide examples when helpful.",
		Kind:    "prompt",
	},
	{
		Title:   "Scoring System",
		Content: "Prompts are scored on AI evaluation (40%), format quality (20%), efficiency (20%), and technical accuracy (20%). Scores range from 0 to 10.",
		Kind:    "scoring",
	},
	{
		Title:   "Level Up & Achieve",
		Content: "Earn XP for every battle, with bonuses for wins and perfect rounds. Level up to unlock achievements and power-ups, and climb the leaderboard.",
		Kind:    "progression",
	},
}
