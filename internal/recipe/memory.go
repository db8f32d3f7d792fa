// Package recipe provides step catalog implementations.
package recipe

import (
	"context"
	"sort"
	"sync"

	"github.com/platekit/cooksession/internal/domain"
	"github.com/platekit/cooksession/internal/logger"
)

// Compile-time interface check.
var _ domain.StepSource = (*MemoryCatalog)(nil)

// MemoryCatalog holds recipe steps in memory. Safe for concurrent use.
type MemoryCatalog struct {
	mu    sync.RWMutex
	steps map[string][]domain.CookingStep
	log   *logger.Logger
}

// NewMemoryCatalog creates a catalog preloaded with built-in recipes.
func NewMemoryCatalog(log *logger.Logger) *MemoryCatalog {
	c := &MemoryCatalog{
		steps: make(map[string][]domain.CookingStep),
		log:   log,
	}
	c.seed()
	return c
}

// StepsForRecipe returns the recipe's steps ordered by step number.
func (c *MemoryCatalog) StepsForRecipe(ctx context.Context, recipeID string) ([]domain.CookingStep, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	steps, ok := c.steps[recipeID]
	if !ok {
		c.log.Debug("recipe not found: %s", recipeID)
		return nil, domain.ErrNotFound
	}

	out := make([]domain.CookingStep, len(steps))
	copy(out, steps)
	sort.Slice(out, func(i, j int) bool { return out[i].StepNumber < out[j].StepNumber })
	return out, nil
}

// Put replaces the step list for a recipe. Used for tests and admin
// seeding; the session engine never writes to the catalog.
func (c *MemoryCatalog) Put(recipeID string, steps []domain.CookingStep) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.steps[recipeID] = steps
	c.log.Debug("catalog updated: %s (%d steps)", recipeID, len(steps))
}

// seed populates the catalog with built-in recipes.
func (c *MemoryCatalog) seed() {
	c.steps["tomato-soup"] = tomatoSoup()
	c.steps["garlic-butter-pasta"] = garlicButterPasta()
	c.log.Debug("seeded %d recipes", len(c.steps))
}

func tomatoSoup() []domain.CookingStep {
	const id = "tomato-soup"
	return []domain.CookingStep{
		{
			ID: "ts-1", RecipeID: id, StepNumber: 1,
			Description:  "Sweat the aromatics",
			Instructions: "Dice the onion and garlic, then sweat them in olive oil over medium heat until translucent.",
		},
		{
			ID: "ts-2", RecipeID: id, StepNumber: 2,
			Description:     "Simmer the tomatoes",
			Instructions:    "Add the crushed tomatoes and stock, season, and leave at a gentle simmer.",
			IsTimerRequired: true,
			DurationMinutes: 20,
		},
		{
			ID: "ts-3", RecipeID: id, StepNumber: 3,
			Description:  "Blend and serve",
			Instructions: "Blend until smooth, adjust the seasoning, and serve with a swirl of cream.",
		},
	}
}

func garlicButterPasta() []domain.CookingStep {
	const id = "garlic-butter-pasta"
	return []domain.CookingStep{
		{
			ID: "gbp-1", RecipeID: id, StepNumber: 1,
			Description:     "Boil the pasta",
			Instructions:    "Bring a large pot of salted water to a boil and cook the spaghetti until al dente.",
			IsTimerRequired: true,
			DurationMinutes: 9,
		},
		{
			ID: "gbp-2", RecipeID: id, StepNumber: 2,
			Description:     "Toast the garlic",
			Instructions:    "Melt the butter in a wide pan and toast the sliced garlic until just golden.",
			IsTimerRequired: true,
			DurationMinutes: 1,
			DurationSeconds: 30,
		},
		{
			ID: "gbp-3", RecipeID: id, StepNumber: 3,
			Description:  "Toss and finish",
			Instructions: "Toss the drained pasta in the garlic butter with a splash of pasta water and plenty of parsley.",
		},
	}
}
