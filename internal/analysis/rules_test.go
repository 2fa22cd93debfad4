package analysis

import (
	"reflect"
	"testing"
)

const (
	vaguePrompt    = "Write a blog post."
	detailedPrompt = "Write a 500-word blog post in a formal tone about renewable energy trends " +
		"for a business audience, with three concrete statistics."
)

func newRuleAnalyzer() *RuleAnalyzer {
	return NewRuleAnalyzer(DefaultRulesConfig())
}

func assertScoresInRange(t *testing.T, s Scores) {
	t.Helper()
	for name, v := range map[string]float64{
		"clarity":          s.Clarity,
		"specificity":      s.Specificity,
		"context":          s.Context,
		"constraints":      s.Constraints,
		"goal_orientation": s.GoalOrientation,
		"overall":          s.Overall,
	} {
		if v < 1 || v > 10 {
			t.Fatalf("%s score %v outside [1,10]", name, v)
		}
	}
}

func TestRuleAnalyzer_Deterministic(t *testing.T) {
	a := newRuleAnalyzer()
	first := a.Analyze(detailedPrompt)
	second := a.Analyze(detailedPrompt)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("same input must produce identical results")
	}
}

func TestRuleAnalyzer_ScoresAlwaysInRange(t *testing.T) {
	a := newRuleAnalyzer()
	prompts := []string{
		vaguePrompt,
		detailedPrompt,
		"help me with something maybe, anything really, stuff like that thing",
		"Compare JSON and CSV formats. Include a table. Write in a technical style for expert readers. 3 examples.",
		"what is go",
	}
	for _, p := range prompts {
		res := a.Analyze(p)
		assertScoresInRange(t, res.Scores)
		if res.Provenance != ProvenanceRules {
			t.Fatalf("expected rule-based provenance, got %s", res.Provenance)
		}
	}
}

func TestRuleAnalyzer_VagueVersusDetailed(t *testing.T) {
	a := newRuleAnalyzer()
	vague := a.Analyze(vaguePrompt)
	detailed := a.Analyze(detailedPrompt)

	if vague.Scores.Specificity >= 6 {
		t.Fatalf("vague prompt specificity should be low, got %v", vague.Scores.Specificity)
	}
	if vague.Scores.Constraints >= 6 {
		t.Fatalf("vague prompt constraints should be low, got %v", vague.Scores.Constraints)
	}
	if detailed.Scores.Specificity <= vague.Scores.Specificity {
		t.Fatalf("detailed prompt should out-score vague on specificity: %v <= %v",
			detailed.Scores.Specificity, vague.Scores.Specificity)
	}
	if detailed.Scores.Context <= vague.Scores.Context {
		t.Fatalf("detailed prompt should out-score vague on context: %v <= %v",
			detailed.Scores.Context, vague.Scores.Context)
	}
	if detailed.Scores.Constraints <= vague.Scores.Constraints {
		t.Fatalf("detailed prompt should out-score vague on constraints: %v <= %v",
			detailed.Scores.Constraints, vague.Scores.Constraints)
	}
}

func TestRuleAnalyzer_OverallIsEqualWeightMean(t *testing.T) {
	a := newRuleAnalyzer()
	s := a.Analyze(detailedPrompt).Scores
	want := round1((s.Clarity + s.Specificity + s.Context + s.Constraints + s.GoalOrientation) / 5)
	if s.Overall != want {
		t.Fatalf("overall = %v, want equal-weight mean %v", s.Overall, want)
	}
}

func TestRuleAnalyzer_VaguePenaltyLowersClarity(t *testing.T) {
	a := newRuleAnalyzer()
	clean := a.Analyze("Summarize the quarterly revenue figures from the attached report in plain language.")
	vague := a.Analyze("Summarize the stuff from that thing, maybe something about revenue perhaps.")
	if vague.Scores.Clarity >= clean.Scores.Clarity {
		t.Fatalf("vague wording should lower clarity: %v >= %v",
			vague.Scores.Clarity, clean.Scores.Clarity)
	}
}

func TestRuleAnalyzer_FeedbackPopulated(t *testing.T) {
	a := newRuleAnalyzer()
	res := a.Analyze(vaguePrompt)

	if len(res.Strengths) == 0 || len(res.Weaknesses) == 0 || len(res.Suggestions) == 0 {
		t.Fatalf("expected non-empty feedback lists, got %d/%d/%d",
			len(res.Strengths), len(res.Weaknesses), len(res.Suggestions))
	}
	if res.ImprovedPrompt == "" || res.ImprovedPrompt == vaguePrompt {
		t.Fatalf("expected a rewritten prompt for a short input")
	}
	if res.WordCount != 4 {
		t.Fatalf("word count = %d, want 4", res.WordCount)
	}
	if res.SentenceCount != 1 {
		t.Fatalf("sentence count = %d, want 1", res.SentenceCount)
	}
	if res.Complexity != "Simple" {
		t.Fatalf("complexity = %q, want Simple", res.Complexity)
	}
}

func TestComplexityLevels(t *testing.T) {
	cases := []struct {
		words int
		want  string
	}{
		{5, "Simple"},
		{25, "Moderate"},
		{60, "Complex"},
		{150, "Advanced"},
	}
	for _, tc := range cases {
		if got := complexityLevel(tc.words); got != tc.want {
			t.Fatalf("complexityLevel(%d) = %q, want %q", tc.words, got, tc.want)
		}
	}
}
