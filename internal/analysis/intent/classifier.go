// Package intent tags interview questions with a coarse type label.
// Classification is rule based and fully deterministic so the downstream
// prompt selection never depends on a model call.
package intent

import "strings"

// Label is the coarse question-type classification of a transcript.
// Labels drive prompt template and fallback selection and are never sent
// to the client.
type Label string

const (
	Behavioral          Label = "behavioral"
	Technical           Label = "technical"
	Experience          Label = "experience"
	Motivation          Label = "motivation"
	StrengthsWeaknesses Label = "strengths_weaknesses"
	Future              Label = "future"
	Situational         Label = "situational"
	GeneralQuestion     Label = "general_question"
	Unknown             Label = "unknown"
)

// rule pairs a label with the phrases that select it. Rules are evaluated
// in order and the first matching group wins, so the table order is part of
// the classifier's contract.
type rule struct {
	label   Label
	phrases []string
}

var rules = []rule{
	{Behavioral, []string{
		"tell me about a time", "describe a situation", "give me an example",
		"walk me through", "how did you handle", "what would you do if",
	}},
	{Technical, []string{
		"how does", "explain", "algorithm", "what is", "how would you implement",
		"design a system", "code", "programming",
	}},
	{Experience, []string{
		"tell me about yourself", "your background", "your experience",
		"worked on", "previous role", "career",
	}},
	{Motivation, []string{
		"why do you want", "why are you interested", "why should we hire",
		"what motivates you", "why this company",
	}},
	{StrengthsWeaknesses, []string{
		"greatest strength", "biggest weakness", "what are you good at",
		"areas for improvement", "strength", "weakness", "improve",
	}},
	{Future, []string{
		"where do you see yourself", "career goals", "five years", "future plans",
	}},
	{Situational, []string{
		"what would you do", "how would you approach", "if you were", "imagine you",
	}},
}

var questionWords = []string{"what", "how", "why", "when", "where", "who"}

// Classify maps a transcript to its question-type label. Empty input yields
// Unknown; text that matches no rule but contains a question word yields
// GeneralQuestion.
func Classify(text string) Label {
	normalized := strings.TrimSpace(strings.ToLower(text))
	if normalized == "" {
		return Unknown
	}

	for _, r := range rules {
		for _, phrase := range r.phrases {
			if strings.Contains(normalized, phrase) {
				return r.label
			}
		}
	}

	for _, word := range questionWords {
		if strings.Contains(normalized, word) {
			return GeneralQuestion
		}
	}

	return Unknown
}

// Labels returns every label the classifier can produce, in rule order.
func Labels() []Label {
	out := make([]Label, 0, len(rules)+2)
	for _, r := range rules {
		out = append(out, r.label)
	}
	return append(out, GeneralQuestion, Unknown)
}
