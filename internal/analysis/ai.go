package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"promptly/internal/llm"
)

// metaPrompt instructs the model to score the five dimensions and justify
// each with short feedback, as strict JSON. Bump
// version.ComponentVersions.PromptTemplate when changing it.
const metaPrompt = `You are an expert prompt engineering consultant. Analyze the following prompt and provide scores from 1-10 for each dimension.

IMPORTANT: Return scores as NUMBERS, not arrays. Example: "clarity": 7, NOT "clarity": [7]

Respond ONLY with valid JSON in this exact format:
{
    "scores": {
        "clarity": 7,
        "specificity": 5,
        "context": 4,
        "constraints": 3,
        "goal_orientation": 8,
        "overall": 6
    },
    "analysis": {
        "strengths": ["strength1", "strength2", "strength3"],
        "weaknesses": ["weakness1", "weakness2", "weakness3"],
        "suggestions": ["suggestion1", "suggestion2", "suggestion3"]
    },
    "improved_prompt": "Your improved version of the prompt here",
    "confidence": 0.8
}

PROMPT TO ANALYZE:
`

var (
	fenceRegex    = regexp.MustCompile("```(?:json)?")
	jsonBodyRegex = regexp.MustCompile(`(?s)\{.*\}`)
)

// aiPayload is the strict schema expected from the model. Score and
// confidence fields are pointers so a missing field is distinguishable from
// zero and can be rejected outright instead of silently defaulting.
type aiPayload struct {
	Scores struct {
		Clarity         *float64 `json:"clarity"`
		Specificity     *float64 `json:"specificity"`
		Context         *float64 `json:"context"`
		Constraints     *float64 `json:"constraints"`
		GoalOrientation *float64 `json:"goal_orientation"`
		Overall         *float64 `json:"overall"`
	} `json:"scores"`
	Analysis struct {
		Strengths   []string `json:"strengths"`
		Weaknesses  []string `json:"weaknesses"`
		Suggestions []string `json:"suggestions"`
	} `json:"analysis"`
	ImprovedPrompt string   `json:"improved_prompt"`
	Confidence     *float64 `json:"confidence"`
}

// AIAnalyzer formats a scoring request, invokes the external model, and
// parses its structured response. Any failure — network, timeout, malformed
// payload — is returned as an error for the orchestrator to handle; this
// analyzer never falls back on its own.
type AIAnalyzer struct {
	client      llm.Client
	modelID     string
	timeout     time.Duration
	temperature float32
	topP        float32
	maxTokens   int
	verbose     bool
}

// AIConfig carries the generation tuning for the analyzer.
type AIConfig struct {
	ModelID     string
	Timeout     time.Duration
	Temperature float32
	TopP        float32
	MaxTokens   int
	Verbose     bool
}

func NewAIAnalyzer(client llm.Client, cfg AIConfig) *AIAnalyzer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1000
	}
	return &AIAnalyzer{
		client:      client,
		modelID:     cfg.ModelID,
		timeout:     cfg.Timeout,
		temperature: cfg.Temperature,
		topP:        cfg.TopP,
		maxTokens:   cfg.MaxTokens,
		verbose:     cfg.Verbose,
	}
}

// Analyze asks the model to score the prompt. The call is bounded by the
// configured timeout; a deadline hit surfaces as a provider error.
func (a *AIAnalyzer) Analyze(ctx context.Context, text string) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	messages := []llm.Message{
		{Role: llm.RoleUser, Content: metaPrompt + text},
	}
	temp := a.temperature
	topP := a.topP
	genConfig := &llm.GenerationConfig{
		Model:       a.modelID,
		Temperature: &temp,
		TopP:        &topP,
		MaxTokens:   a.maxTokens,
	}

	start := time.Now()
	generated, err := a.client.Generate(ctx, messages, genConfig)
	if err != nil {
		return nil, fmt.Errorf("model call failed: %w", err)
	}
	if a.verbose {
		log.Printf("🤖 Model responded in %s (%d completion tokens)",
			time.Since(start).Round(time.Millisecond), generated.Usage.CompletionTokens)
	}

	result, err := parseModelResponse(generated.Content)
	if err != nil {
		return nil, err
	}
	result.WordCount = len(strings.Fields(text))
	result.SentenceCount = countSentences(text)
	result.Complexity = complexityLevel(result.WordCount)
	return result, nil
}

// parseModelResponse extracts and validates the JSON payload. Models often
// wrap JSON in markdown fences or surrounding prose, so those are stripped
// before decoding. Anything short of a fully-populated payload is a
// *MalformedResponseError.
func parseModelResponse(raw string) (*Result, error) {
	clean := strings.TrimSpace(fenceRegex.ReplaceAllString(raw, ""))
	if body := jsonBodyRegex.FindString(clean); body != "" {
		clean = body
	}

	var payload aiPayload
	if err := json.Unmarshal([]byte(clean), &payload); err != nil {
		return nil, &MalformedResponseError{Reason: "invalid JSON: " + err.Error()}
	}

	required := map[string]*float64{
		"scores.clarity":          payload.Scores.Clarity,
		"scores.specificity":      payload.Scores.Specificity,
		"scores.context":          payload.Scores.Context,
		"scores.constraints":      payload.Scores.Constraints,
		"scores.goal_orientation": payload.Scores.GoalOrientation,
		"scores.overall":          payload.Scores.Overall,
		"confidence":              payload.Confidence,
	}
	for field, value := range required {
		if value == nil {
			return nil, &MalformedResponseError{Reason: "missing required field " + field}
		}
	}
	if len(payload.Analysis.Strengths) == 0 &&
		len(payload.Analysis.Weaknesses) == 0 &&
		len(payload.Analysis.Suggestions) == 0 {
		return nil, &MalformedResponseError{Reason: "missing analysis feedback"}
	}

	// Out-of-range scores are clamped, not rejected; finalizeScores also
	// recomputes the overall as the equal-weight mean so a model arithmetic
	// slip cannot leak through.
	scores := finalizeScores(Scores{
		Clarity:         *payload.Scores.Clarity,
		Specificity:     *payload.Scores.Specificity,
		Context:         *payload.Scores.Context,
		Constraints:     *payload.Scores.Constraints,
		GoalOrientation: *payload.Scores.GoalOrientation,
	})

	confidence := *payload.Confidence
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	return &Result{
		Scores:         scores,
		Strengths:      payload.Analysis.Strengths,
		Weaknesses:     payload.Analysis.Weaknesses,
		Suggestions:    payload.Analysis.Suggestions,
		ImprovedPrompt: payload.ImprovedPrompt,
		Confidence:     confidence,
		Provenance:     ProvenanceAI,
	}, nil
}
