// Package retrieve selects resume and job-description fragments relevant to
// a classified question. Scoring is plain keyword overlap so retrieval stays
// deterministic and collaborator free.
package retrieve

import (
	"sort"
	"strings"

	"github.com/Engineernoob/ai-interview-buddy/internal/analysis/intent"
)

// Snippet is one retrieved fragment with its originating document.
type Snippet struct {
	Text   string `json:"text"`
	Source string `json:"source"`
}

// Snippet sources.
const (
	SourceResume = "resume"
	SourceJob    = "job"
)

// DefaultTopN is how many fragments are kept per source.
const DefaultTopN = 3

// keywordSets is the retrieval vocabulary per label: the terms whose overlap
// with a fragment scores it. Unlisted labels use the generic set.
var keywordSets = map[intent.Label][]string{
	intent.Behavioral: {
		"led", "managed", "team", "challenge", "conflict", "project",
		"resolved", "deadline", "problem", "delivered",
	},
	intent.Technical: {
		"python", "javascript", "java", "react", "node", "sql", "aws",
		"docker", "kubernetes", "git", "machine learning", "tensorflow",
		"system", "design", "built", "developed", "implemented", "architecture",
	},
	intent.Experience: {
		"year", "month", "led", "developed", "managed", "implemented",
		"worked", "experience", "role", "responsible", "shipped",
	},
	intent.Motivation: {
		"mission", "values", "culture", "growth", "impact", "product",
		"company", "vision", "benefits",
	},
	intent.StrengthsWeaknesses: {
		"skill", "proficient", "expert", "strength", "leadership",
		"communication", "improvement", "certified", "award",
	},
	intent.Future: {
		"growth", "career", "goal", "senior", "lead", "mentor",
		"promotion", "roadmap",
	},
	intent.Situational: {
		"process", "approach", "stakeholder", "priority", "deadline",
		"risk", "plan", "decision",
	},
}

var genericKeywords = []string{
	"experience", "skill", "project", "team", "required", "developed",
}

// Retrieve returns the top scoring fragments for the label from each source,
// resume first. Ties keep original document order. Empty sources contribute
// nothing; the result may be empty but is never nil on a scored hit.
func Retrieve(label intent.Label, resumeText, jobText string) []Snippet {
	keywords := keywordSets[label]
	if len(keywords) == 0 {
		keywords = genericKeywords
	}

	var out []Snippet
	for _, frag := range topFragments(resumeText, keywords, DefaultTopN) {
		out = append(out, Snippet{Text: frag, Source: SourceResume})
	}
	for _, frag := range topFragments(jobText, keywords, DefaultTopN) {
		out = append(out, Snippet{Text: frag, Source: SourceJob})
	}
	return out
}

type scoredFragment struct {
	index int
	score int
	text  string
}

func topFragments(text string, keywords []string, n int) []string {
	fragments := splitFragments(text)
	if len(fragments) == 0 {
		return nil
	}

	scored := make([]scoredFragment, 0, len(fragments))
	for i, frag := range fragments {
		score := overlapScore(frag, keywords)
		if score > 0 {
			scored = append(scored, scoredFragment{index: i, score: score, text: frag})
		}
	}

	// Stable sort on score only: equal scores keep document order, so the
	// earlier fragment wins ties.
	sort.SliceStable(scored, func(a, b int) bool {
		return scored[a].score > scored[b].score
	})

	if len(scored) > n {
		scored = scored[:n]
	}

	out := make([]string, len(scored))
	for i, s := range scored {
		out[i] = s.text
	}
	return out
}

// splitFragments breaks a document into lines, then sentences within each
// line, preserving original order.
func splitFragments(text string) []string {
	var fragments []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		for _, sentence := range strings.FieldsFunc(line, func(r rune) bool {
			return r == '.' || r == '!' || r == '?'
		}) {
			sentence = strings.TrimSpace(sentence)
			if len(sentence) >= 3 {
				fragments = append(fragments, sentence)
			}
		}
	}
	return fragments
}

// overlapScore counts how many distinct keywords appear in the fragment.
func overlapScore(fragment string, keywords []string) int {
	normalized := strings.ToLower(fragment)
	score := 0
	for _, keyword := range keywords {
		if strings.Contains(normalized, keyword) {
			score++
		}
	}
	return score
}
