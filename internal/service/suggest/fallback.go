package suggest

import (
	"github.com/Engineernoob/ai-interview-buddy/internal/analysis/intent"
	"github.com/Engineernoob/ai-interview-buddy/internal/model/interview"
)

// fallbackTips maps each question type to canned coaching bullets served
// when generation is unavailable, times out, or produces garbage.
var fallbackTips = map[intent.Label][]string{
	intent.Behavioral: {
		"Use the STAR method (Situation, Task, Action, Result)",
		"Focus on specific examples from your experience",
		"Quantify your impact with numbers when possible",
	},
	intent.Technical: {
		"Break down complex concepts into simple terms",
		"Use examples to illustrate your points",
		"Mention relevant experience with the technology",
	},
	intent.Experience: {
		"Highlight relevant skills and achievements",
		"Connect your experience to the job requirements",
		"Keep it concise and focused",
	},
	intent.Motivation: {
		"Show genuine enthusiasm for the role",
		"Connect your goals with company values",
		"Be specific about what interests you",
	},
	intent.StrengthsWeaknesses: {
		"Choose strengths relevant to the job",
		"For weaknesses, show how you're improving",
		"Provide concrete examples",
	},
	intent.Future: {
		"Align your goals with the company's direction",
		"Show ambition but be realistic",
		"Demonstrate long-term thinking",
	},
	intent.Situational: {
		"Think through the problem systematically",
		"Consider multiple perspectives",
		"Explain your reasoning clearly",
	},
	intent.GeneralQuestion: {
		"Listen carefully to the full question",
		"Take a moment to organize your thoughts",
		"Provide specific examples when possible",
	},
}

var genericTips = []string{
	"Stay calm and confident",
	"Be honest and authentic",
	"Ask clarifying questions if needed",
}

// fallbackResult builds the deterministic per-label suggestion. Canned
// results never carry a follow-up.
func fallbackResult(label intent.Label) *interview.CoachingResult {
	tips, ok := fallbackTips[label]
	if !ok {
		tips = genericTips
	}

	bullets := make([]string, len(tips))
	copy(bullets, tips)
	return &interview.CoachingResult{Bullets: bullets, FollowUp: ""}
}
