package analysis

import (
	"regexp"
	"strings"
)

// =================================================================================
// Rule-Based Analyzer
// =================================================================================
// Deterministic fallback scorer. Every dimension starts from a word-count
// derived base score and is adjusted by lexicon hits: vague wording is
// penalized, concrete verbs, numbers, formats, framing and outcome phrasing
// are rewarded. Same input always produces the same output, no network, no
// randomness. This analyzer can never fail; it is the terminal fallback when
// the provider is unreachable or misbehaves.
// =================================================================================

// RulesConfig carries the tunable multipliers of the heuristics. These are
// tuning knobs loaded from config.yaml, not load-bearing business logic.
type RulesConfig struct {
	VaguePenalty    float64 `yaml:"vague_penalty"`
	ActionVerbBonus float64 `yaml:"action_verb_bonus"`
	NumberBonus     float64 `yaml:"number_bonus"`
	FormatBonus     float64 `yaml:"format_bonus"`
	ContextBonus    float64 `yaml:"context_bonus"`
	ConstraintBonus float64 `yaml:"constraint_bonus"`
	GoalBonus       float64 `yaml:"goal_bonus"`
	Confidence      float64 `yaml:"confidence"`
}

// DefaultRulesConfig returns the multipliers the heuristics were tuned with.
func DefaultRulesConfig() RulesConfig {
	return RulesConfig{
		VaguePenalty:    1.0,
		ActionVerbBonus: 0.5,
		NumberBonus:     0.8,
		FormatBonus:     1.0,
		ContextBonus:    0.8,
		ConstraintBonus: 1.0,
		GoalBonus:       1.0,
		Confidence:      0.7,
	}
}

var (
	vagueWords    = []string{"thing", "stuff", "something", "anything", "maybe", "perhaps", "might", "kinda", "sorta"}
	actionVerbs   = []string{"create", "write", "analyze", "explain", "describe", "list", "compare", "summarize"}
	formatWords   = []string{"json", "csv", "markdown", "html", "pdf", "bullet points", "numbered list", "table", "report", "essay"}
	domainWords   = []string{"business", "technical", "academic", "marketing", "sales", "finance", "education", "health"}
	vagueRequests = []string{"help me", "can you", "please do", "make it good", "do something", "fix this"}
	contextWords  = []string{"background", "context", "situation", "purpose", "goal", "because", "since", "for", "i need", "i want"}
	personalWords = []string{"i am", "my", "our", "we are", "company", "project", "team"}
	formatDirects = []string{"format as", "write in", "use style", "include", "structure", "organize", "make it"}
	// "word" rather than "words" so hyphenated forms like "500-word" count.
	lengthSpecs   = []string{"word", "characters", "pages", "paragraphs", "sentences", "bullet points", "brief", "detailed", "long", "short"}
	styleSpecs    = []string{"tone", "style", "formal", "casual", "professional", "friendly", "technical", "simple", "advanced"}
	audienceSpecs = []string{"for", "audience", "beginner", "expert", "student", "client", "manager"}
	goalVerbs     = []string{"create", "write", "analyze", "design", "develop", "build", "generate", "produce", "make", "explain", "describe"}
	outcomeWords  = []string{"result", "output", "deliverable", "final", "end goal", "objective", "want", "need"}
	intentVerbs   = []string{"show", "tell", "find", "solve", "fix", "improve", "optimize", "compare"}
	unclearWords  = []string{"somehow", "whatever", "anything", "something", "help", "please"}

	numberRegex   = regexp.MustCompile(`\d+`)
	sentenceSplit = regexp.MustCompile(`[.!?]+`)
)

// RuleAnalyzer computes the five dimension scores via deterministic
// heuristics, requiring no network access.
type RuleAnalyzer struct {
	cfg RulesConfig
}

func NewRuleAnalyzer(cfg RulesConfig) *RuleAnalyzer {
	if cfg == (RulesConfig{}) {
		cfg = DefaultRulesConfig()
	}
	return &RuleAnalyzer{cfg: cfg}
}

// Analyze scores the prompt across all dimensions and derives textual
// feedback from the scores. Provenance is always rule-based.
func (a *RuleAnalyzer) Analyze(text string) *Result {
	lower := strings.ToLower(text)
	wordCount := len(strings.Fields(text))

	scores := finalizeScores(Scores{
		Clarity:         a.clarityScore(lower, wordCount),
		Specificity:     a.specificityScore(lower, wordCount),
		Context:         a.contextScore(lower, wordCount),
		Constraints:     a.constraintScore(lower),
		GoalOrientation: a.goalScore(lower),
	})

	weaknesses := identifyWeaknesses(lower, wordCount, scores)
	return &Result{
		Scores:         scores,
		Strengths:      identifyStrengths(lower, wordCount, scores),
		Weaknesses:     weaknesses,
		Suggestions:    generateSuggestions(weaknesses),
		ImprovedPrompt: improvePrompt(text, lower, wordCount),
		Confidence:     a.cfg.Confidence,
		Provenance:     ProvenanceRules,
		WordCount:      wordCount,
		SentenceCount:  countSentences(text),
		Complexity:     complexityLevel(wordCount),
	}
}

// countMatches counts how many of the given phrases occur in the prompt.
// Substring matching keeps parity across inflections ("words" hits "word").
func countMatches(lower string, phrases []string) float64 {
	n := 0.0
	for _, p := range phrases {
		if strings.Contains(lower, p) {
			n++
		}
	}
	return n
}

func capAt(v, limit float64) float64 {
	if v > limit {
		return limit
	}
	return v
}

func countSentences(text string) int {
	n := 0
	for _, seg := range sentenceSplit.Split(strings.TrimSpace(text), -1) {
		if strings.TrimSpace(seg) != "" {
			n++
		}
	}
	return n
}

// clarityScore: longer prompts tend to spell themselves out; vague filler
// words pull the score down, imperative verbs and questions push it up.
func (a *RuleAnalyzer) clarityScore(lower string, wordCount int) float64 {
	var score float64
	switch {
	case wordCount < 5:
		score = 3.0
	case wordCount < 15:
		score = 5.0
	case wordCount < 50:
		score = 7.0
	default:
		score = 8.0
	}

	score -= countMatches(lower, vagueWords) * a.cfg.VaguePenalty
	score += countMatches(lower, actionVerbs) * a.cfg.ActionVerbBonus
	if strings.Contains(lower, "?") {
		score += 0.5
	}
	return score
}

// specificityScore rewards numbers, named formats and domains; boilerplate
// requests ("help me", "can you") are penalized hard.
func (a *RuleAnalyzer) specificityScore(lower string, wordCount int) float64 {
	var score float64
	switch {
	case wordCount < 10:
		score = 3.0
	case wordCount < 30:
		score = 5.0
	default:
		score = 7.0
	}

	score += capAt(float64(len(numberRegex.FindAllString(lower, -1)))*a.cfg.NumberBonus, 2.0)
	score += capAt(countMatches(lower, formatWords)*a.cfg.FormatBonus, 2.0)
	score += capAt(countMatches(lower, domainWords)*0.5, 1.5)
	score -= countMatches(lower, vagueRequests) * 1.5
	return score
}

// contextScore leans heavily on length: situational framing takes words.
func (a *RuleAnalyzer) contextScore(lower string, wordCount int) float64 {
	var score float64
	switch {
	case wordCount < 8:
		score = 2.0
	case wordCount < 20:
		score = 4.0
	case wordCount < 50:
		score = 6.0
	default:
		score = 8.0
	}

	score += capAt(countMatches(lower, contextWords)*a.cfg.ContextBonus, 2.0)
	score += capAt(countMatches(lower, personalWords)*0.3, 1.0)
	return score
}

// constraintScore rewards explicit format, length, style and audience
// directives.
func (a *RuleAnalyzer) constraintScore(lower string) float64 {
	score := 4.0
	score += capAt(countMatches(lower, formatDirects)*a.cfg.ConstraintBonus, 3.0)
	score += capAt(countMatches(lower, lengthSpecs)*0.8, 2.0)
	score += capAt(countMatches(lower, styleSpecs)*0.6, 2.0)
	score += capAt(countMatches(lower, audienceSpecs)*0.5, 1.0)
	return score
}

// goalScore rewards explicit desired-outcome phrasing and clear intent verbs.
func (a *RuleAnalyzer) goalScore(lower string) float64 {
	score := 4.0
	score += capAt(countMatches(lower, goalVerbs)*a.cfg.GoalBonus, 3.0)
	score += capAt(countMatches(lower, outcomeWords)*0.8, 2.0)
	score += capAt(countMatches(lower, intentVerbs)*0.6, 1.5)
	score -= countMatches(lower, unclearWords) * 0.8
	return score
}

const maxFeedbackItems = 5

func identifyStrengths(lower string, wordCount int, s Scores) []string {
	var strengths []string
	if s.Clarity >= 7 {
		strengths = append(strengths, "Clear and unambiguous language")
	}
	if s.Specificity >= 7 {
		strengths = append(strengths, "Specific requirements and details provided")
	}
	if s.Context >= 7 {
		strengths = append(strengths, "Sufficient background context")
	}
	if s.Constraints >= 7 {
		strengths = append(strengths, "Well-defined formatting and style constraints")
	}
	if s.GoalOrientation >= 7 {
		strengths = append(strengths, "Clear goal and desired outcome")
	}
	if wordCount > 50 {
		strengths = append(strengths, "Comprehensive and detailed prompt")
	}
	if countMatches(lower, []string{"include", "format", "structure"}) > 0 {
		strengths = append(strengths, "Good structural guidance provided")
	}
	if len(strengths) == 0 {
		strengths = append(strengths, "Basic prompt structure in place")
	}
	if len(strengths) > maxFeedbackItems {
		strengths = strengths[:maxFeedbackItems]
	}
	return strengths
}

func identifyWeaknesses(lower string, wordCount int, s Scores) []string {
	var weaknesses []string
	if s.Clarity < 6 {
		weaknesses = append(weaknesses, "Language could be clearer and less ambiguous")
	}
	if s.Specificity < 6 {
		weaknesses = append(weaknesses, "Needs more specific requirements and details")
	}
	if s.Context < 6 {
		weaknesses = append(weaknesses, "Lacks sufficient background context")
	}
	if s.Constraints < 6 {
		weaknesses = append(weaknesses, "Missing clear formatting and style guidelines")
	}
	if s.GoalOrientation < 6 {
		weaknesses = append(weaknesses, "Desired outcome could be more clearly defined")
	}
	if wordCount < 15 {
		weaknesses = append(weaknesses, "Prompt is too brief and lacks detail")
	}
	if countMatches(lower, []string{"thing", "stuff", "good", "nice", "help"}) > 0 {
		weaknesses = append(weaknesses, "Contains vague language that could be more specific")
	}
	if len(weaknesses) == 0 {
		weaknesses = append(weaknesses, "Minor improvements possible in overall clarity")
	}
	if len(weaknesses) > maxFeedbackItems {
		weaknesses = weaknesses[:maxFeedbackItems]
	}
	return weaknesses
}

// generateSuggestions maps each identified weakness to a concrete remedy.
func generateSuggestions(weaknesses []string) []string {
	var suggestions []string
	for _, w := range weaknesses {
		switch {
		case strings.Contains(w, "clearer") || strings.Contains(w, "ambiguous"):
			suggestions = append(suggestions, "Replace vague terms with specific, concrete language")
		case strings.Contains(w, "specific") && strings.Contains(w, "requirements"):
			suggestions = append(suggestions, "Add specific numbers, formats, or measurable criteria")
		case strings.Contains(w, "context"):
			suggestions = append(suggestions, "Provide background information about your situation or goals")
		case strings.Contains(w, "formatting") || strings.Contains(w, "guidelines"):
			suggestions = append(suggestions, "Specify desired output format (length, style, structure)")
		case strings.Contains(w, "outcome"):
			suggestions = append(suggestions, "Clearly state what success looks like for this task")
		case strings.Contains(w, "brief"):
			suggestions = append(suggestions, "Expand the prompt with more context and requirements")
		case strings.Contains(w, "vague language"):
			suggestions = append(suggestions, "Replace general terms with specific, actionable language")
		}
	}
	if len(suggestions) == 0 {
		suggestions = append(suggestions,
			"Consider adding more specific details about your requirements",
			"Include context about your intended audience or use case",
			"Specify the desired format and length of the output",
		)
	}
	if len(suggestions) > maxFeedbackItems {
		suggestions = suggestions[:maxFeedbackItems]
	}
	return suggestions
}

// improvePrompt produces a rewritten prompt. Very short prompts get a full
// template; longer prompts get targeted additions for missing directives.
func improvePrompt(text, lower string, wordCount int) string {
	if wordCount < 15 {
		return text + "\n\nPlease provide a comprehensive response that includes:\n" +
			"- Clear explanations with specific examples\n" +
			"- Structured format with headings or bullet points\n" +
			"- Relevant context and background information\n" +
			"- Actionable insights or recommendations\n\n" +
			"Target length: 200-500 words\n" +
			"Tone: Professional and informative"
	}

	improved := text
	if !strings.Contains(lower, "format") {
		improved += "\n\nPlease format your response with clear headings and structure."
	}
	if countMatches(lower, []string{"word", "length", "brief", "detailed"}) == 0 {
		improved += " Aim for a comprehensive response of 300-500 words."
	}
	return improved
}
