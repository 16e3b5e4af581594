package main

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/myrjola/plottwist/internal/ai"
)

// storyBackend answers each prompt kind with a canned, valid response.
type storyBackend struct {
	mu      sync.Mutex
	prompts []string
	// override replaces every response when set.
	override *ai.Completion
}

func (b *storyBackend) Name() string {
	return "story"
}

func (b *storyBackend) Generate(_ context.Context, req ai.Request) (ai.Completion, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.prompts = append(b.prompts, req.Prompt)
	if b.override != nil {
		return *b.override, nil
	}

	var resp map[string]any
	switch {
	case strings.Contains(req.Prompt, "selected_art_style"):
		resp = map[string]any{"theme_title": "The Silent Bell", "selected_art_style": "Victorian Engraving"}
	case strings.Contains(req.Prompt, "initial_choices_pool"):
		resp = map[string]any{
			"base_story_text":      "The church bell did not ring at noon.",
			"actual_solution_text": "The verger muffled the clapper to hide his midnight meetings.",
			"initial_choices_pool": []string{
				"Climb the bell tower", "Question the verger", "Inspect the rope", "Visit the tavern",
				"Read the parish log", "Talk to the baker", "Check the clock", "Search the crypt",
				"Follow the choir boy", "Examine the clapper",
			},
			"character_dossiers": []map[string]string{
				{"character_name": "Verger Holm", "description": "Keeps the keys."},
				{"character_name": "Mrs. Reed", "description": "Runs the tavern."},
				{"character_name": "Tobias", "description": "A choir boy."},
			},
			"critical_path_clues": []string{"Wool fibres on the clapper", "Muddy boots at midnight"},
			"base_image_prompts":  []string{"A silent bell tower at noon"},
		}
	case strings.Contains(req.Prompt, "FINAL round"):
		resp = map[string]any{
			"scenario_text":        "The verger confesses.",
			"image_prompt":         "A verger in tears",
			"choices":              []string{},
			"is_final_round":       true,
			"solution_explanation": "The wool on the clapper came from the verger's scarf.",
		}
	default:
		resp = map[string]any{
			"scenario_text":  "You hear footsteps above.",
			"image_prompt":   "A dark staircase",
			"choices":        []string{"Go up", "Hide", "Call out"},
			"is_final_round": false,
		}
	}
	out, err := json.Marshal(resp)
	if err != nil {
		return ai.Completion{}, err //nolint:wrapcheck // test helper
	}
	return ai.Completion{Text: "```json\n" + string(out) + "\n```"}, nil
}
