package recipe

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"

	"github.com/platekit/cooksession/internal/domain"
	"github.com/platekit/cooksession/internal/logger"
)

// Compile-time interface check.
var _ domain.StepSource = (*OpenAISource)(nil)

const stepPrompt = `You are a cooking expert. Produce the ordered cooking steps for the dish %q.
Return ONLY a JSON array, no other text, where each element has this shape:
{
  "stepNumber": 1,
  "description": "Short step label",
  "instructions": "Full instructions for the cook",
  "isTimerRequired": false,
  "durationMinutes": 0,
  "durationSeconds": 0
}
Set isTimerRequired to true with a realistic duration for steps that need a countdown
(simmering, baking, resting). Keep descriptions under six words.`

// OpenAISource generates cooking steps for a dish on demand. Generated
// step lists are memoized per recipe ID so every operation on a session
// sees the same steps for its lifetime.
type OpenAISource struct {
	client *openai.Client
	model  string
	log    *logger.Logger

	mu    sync.Mutex
	cache map[string][]domain.CookingStep
}

// NewOpenAISource creates a step source backed by an OpenAI-compatible
// chat-completions endpoint. apiBase may be empty for the default.
func NewOpenAISource(apiKey, apiBase, model string, log *logger.Logger) *OpenAISource {
	config := openai.DefaultConfig(apiKey)
	if apiBase != "" {
		config.BaseURL = apiBase
	}
	return &OpenAISource{
		client: openai.NewClientWithConfig(config),
		model:  model,
		log:    log,
		cache:  make(map[string][]domain.CookingStep),
	}
}

// StepsForRecipe returns the generated steps for a dish, generating them
// on first use. The recipe ID doubles as the dish name.
func (s *OpenAISource) StepsForRecipe(ctx context.Context, recipeID string) ([]domain.CookingStep, error) {
	s.mu.Lock()
	cached, ok := s.cache[recipeID]
	s.mu.Unlock()
	if ok {
		return cached, nil
	}

	steps, err := s.generate(ctx, recipeID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.cache[recipeID] = steps
	s.mu.Unlock()
	return steps, nil
}

func (s *OpenAISource) generate(ctx context.Context, dish string) ([]domain.CookingStep, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	s.log.Info("generating steps for dish %q", dish)

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf(stepPrompt, dish)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("generating steps for %q: %w", dish, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("generating steps for %q: empty response", dish)
	}

	raw := extractJSON(resp.Choices[0].Message.Content)

	var decoded []struct {
		StepNumber      int    `json:"stepNumber"`
		Description     string `json:"description"`
		Instructions    string `json:"instructions"`
		IsTimerRequired bool   `json:"isTimerRequired"`
		DurationMinutes int    `json:"durationMinutes"`
		DurationSeconds int    `json:"durationSeconds"`
	}
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil, fmt.Errorf("decoding generated steps for %q: %w", dish, err)
	}
	if len(decoded) == 0 {
		return nil, domain.ErrNoSteps
	}

	steps := make([]domain.CookingStep, 0, len(decoded))
	for i, d := range decoded {
		num := d.StepNumber
		if num <= 0 {
			num = i + 1
		}
		steps = append(steps, domain.CookingStep{
			ID:              uuid.NewString(),
			RecipeID:        dish,
			StepNumber:      num,
			Description:     d.Description,
			Instructions:    d.Instructions,
			IsTimerRequired: d.IsTimerRequired,
			DurationMinutes: d.DurationMinutes,
			DurationSeconds: d.DurationSeconds,
		})
	}
	sort.Slice(steps, func(i, j int) bool { return steps[i].StepNumber < steps[j].StepNumber })

	s.log.Debug("generated %d steps for %q", len(steps), dish)
	return steps, nil
}

// extractJSON strips markdown code fences some models wrap around JSON.
func extractJSON(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
	}
	return strings.TrimSpace(content)
}
