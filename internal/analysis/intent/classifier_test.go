package intent

import "testing"

func TestClassifyKnownQuestionTypes(t *testing.T) {
	cases := []struct {
		text string
		want Label
	}{
		{"Tell me about a time you disagreed with a teammate.", Behavioral},
		{"Walk me through your debugging process.", Behavioral},
		{"How does a hash map work under the hood?", Technical},
		{"How would you implement rate limiting?", Technical},
		{"Tell me about yourself.", Experience},
		{"What have you worked on recently?", Experience},
		{"Why do you want this job?", Motivation},
		{"Why should we hire you over other candidates?", Motivation},
		{"What is your greatest strength?", Technical}, // "what is" wins by rule order
		{"Describe your biggest weakness.", StrengthsWeaknesses},
		{"What are you good at?", StrengthsWeaknesses},
		{"Where do you see yourself in five years?", Future},
		{"How would you approach a missed deadline?", Situational},
		{"If you were the tech lead, what changes first?", Situational},
	}

	for _, tc := range cases {
		if got := Classify(tc.text); got != tc.want {
			t.Errorf("Classify(%q) = %s, want %s", tc.text, got, tc.want)
		}
	}
}

func TestClassifyFirstMatchWins(t *testing.T) {
	// Contains both a behavioral phrase and a situational phrase; the
	// behavioral rule sits earlier in the table.
	got := Classify("Tell me about a time and what would you do if it happened again?")
	if got != Behavioral {
		t.Fatalf("expected behavioral, got %s", got)
	}
}

func TestClassifyGenericFallbacks(t *testing.T) {
	if got := Classify("What brings you here today?"); got != GeneralQuestion {
		t.Fatalf("question word should fall back to general_question, got %s", got)
	}
	if got := Classify("Please introduce the team."); got != Unknown {
		t.Fatalf("no match and no question word should yield unknown, got %s", got)
	}
	if got := Classify(""); got != Unknown {
		t.Fatalf("empty text should yield unknown, got %s", got)
	}
	if got := Classify("   "); got != Unknown {
		t.Fatalf("blank text should yield unknown, got %s", got)
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	const text = "Why are you interested in our company and what motivates you?"
	first := Classify(text)
	for i := 0; i < 10; i++ {
		if got := Classify(text); got != first {
			t.Fatalf("classification changed between runs: %s then %s", first, got)
		}
	}
}
