// Package prompts builds the text prompts sent to the generative model.
//
// Every function is pure: the same input always produces the same prompt.
package prompts

import (
	"fmt"
	"strings"

	"github.com/myrjola/plottwist/internal/models"
)

// SystemInstruction asks the model for a single JSON object and nothing else.
const SystemInstruction = `You are a creative assistant meticulously generating content for a mystery game.
Your output MUST be a single, valid JSON object. Do not include any text, explanations, or markdown formatting outside of this JSON object.
The JSON object must strictly adhere to the schema provided in the user prompt, including all specified keys and data types.
Pay close attention to array and object structures.`

const firstChoiceSummary = "This is the first choice in the game."

const themeAndStyleTemplate = `You are a creative assistant for a mystery game.
Your task is to generate a compelling, one-line mystery theme/title and select the most suitable art style for it.

**Input Information:**
1.  **Mystery Type:** %s
2.  **Available Art Styles (Choose ONE from this list):**
%s

**Task:**
1.  Based on the given **Mystery Type**, create a succinct, intriguing, one-line theme or title for a mystery story. The title itself should be the theme.
2.  From the **Available Art Styles** list, select the ONE art style that you believe would best visually represent the generated theme and the given mystery type.

**Output Requirements (Strict JSON Object):**
Your entire response MUST be a single, valid JSON object with the following exact keys:
- "theme_title": (String) The generated one-line mystery theme/title.
- "selected_art_style": (String) The name of the ONE art style chosen from the provided list. It must be an exact match to one of the names in the "Available Art Styles" list.
`

// ThemeAndStyle asks for a one-line theme for archetype and one art style picked from artStyleNames.
func ThemeAndStyle(archetype models.MysteryArchetype, artStyleNames []string) string {
	var list strings.Builder
	for i, name := range artStyleNames {
		if i > 0 {
			list.WriteByte('\n')
		}
		list.WriteString("    - ")
		list.WriteString(name)
	}
	return fmt.Sprintf(themeAndStyleTemplate, archetype, list.String())
}

const dailyContentTemplate = `Generate a complete daily mystery game setup.

**Core Requirements:**
- **Theme:** "%[1]s"
- **Visual Style for Images:** Evoke "%[2]s" (this should primarily influence the 'base_image_prompts').
- **Target Audience Engagement:** The mystery must be intriguing yet solvable by a general audience, using clear, conversational language.
- **Red Herrings:** Include at least two subtle red herrings woven into character secrets or events to mislead players.
- **Twist:** The 'actual_solution_text' must include an unexpected twist that is logical, fresh, and not a cliché (avoid overusing faked deaths or insurance fraud).

**Output Structure (Strict JSON Object):**
Output a single JSON object with these exact keys and value types:
- "base_story_text": (String) An engaging, clear opening narrative for the mystery (approximately 150-250 words). Introduce the setting, the main characters, and the core puzzle or incident. Use simple, vivid language suitable for a broad audience.
- "actual_solution_text": (String) The true solution to the mystery (100-150 words). Reveal the hidden truth and clearly explain how the player could deduce it from the clues. Focus on what was truly happening behind the scenes and why.
- "initial_choices_pool": (Array of exactly 10 Strings) Ten unique, plausible initial actions or questions a player might use to investigate. Make each choice specific to the mystery's people, objects, or locations. Avoid generic actions like "Investigate further."
- "character_dossiers": (Array of 4 to 5 Objects) Each object represents a key character with these exact keys:
    - "character_name": (String) The character's full name. Use unique character names.
    - "description": (String) A concise physical description and their initial connection to the mystery. (30-50 words)
    - "potential_secrets_or_motives": (String) Hints of secrets, quirks, or possible motives, ideally including at least one misleading clue to serve as a red herring. (30-50 words)
- "critical_path_clues": (Array of 2 to 3 Strings) Essential clues, observations, or pieces of information that a player must find to logically deduce the solution. Ensure they connect clearly to the twist.
- "base_image_prompts": (Array of exactly 2 Strings) Two detailed image prompts depicting vivid scenes from the 'base_story_text'. Incorporate the visual style: "%[2]s". Example: "A cluttered detective's desk lit by a single desk lamp, old case files scattered around, in style: %[2]s."

**Additional Quality Guidelines:**
- **Clarity & Simplicity:** Use short, clear sentences. Avoid unnecessarily complex or literary vocabulary.
- **Immersive Details:** Characters, settings, and choices should feel rich and authentic to the mystery's theme.
- **Red Herrings:** Each character dossier must subtly mislead the player about their guilt or involvement.
- **Solution Variety:** Each mystery's solution should feel fresh and not repeat common twists more than once in a week.
- **Consistency:** All parts must align logically. Clues, story, and solution must fit together with no contradictions.

Respond with only the JSON object and no extra text.
`

// DailyContent asks for the full story content of a mystery with theme, rendered in the style of promptModifier.
func DailyContent(theme, promptModifier string) string {
	return fmt.Sprintf(dailyContentTemplate, theme, promptModifier)
}

// HistorySummary renders the completed turns as numbered scenario/choice lines.
func HistorySummary(path []models.GameplayTurn) string {
	if len(path) == 0 {
		return firstChoiceSummary
	}
	lines := make([]string, 0, 2*len(path)) //nolint:mnd // two lines per turn
	for i, turn := range path {
		lines = append(lines,
			fmt.Sprintf("Round %d Scenario: %q", i+1, turn.ScenarioText),
			fmt.Sprintf("Round %d Player Chose: %q", i+1, turn.ChosenAction),
		)
	}
	return strings.Join(lines, "\n")
}

// Turn is the input for a continuation or finale prompt.
type Turn struct {
	BaseStoryText      string
	ActualSolutionText string
	PreviousScenario   string
	PlayerChoice       string
	PromptModifier     string
	History            []models.GameplayTurn
	Round              int
	MaxRounds          int
}

const continueTemplate = `Continue an interactive mystery game. This is round %[1]d of %[2]d.

**Mystery Premise:**
%[3]s

**Hidden Solution (guide the story toward it, NEVER reveal it in this round):**
%[4]s

**Story So Far:**
%[5]s

**Scenario The Player Just Saw:**
%[6]s

**Player's Choice:** %[7]q

**Task:**
Write what happens next as a direct consequence of the player's choice. Reveal one new detail that moves the player closer to, or subtly away from, the truth.

**Output Requirements (Strict JSON Object):**
- "scenario_text": (String) The next scenario, 80-150 words, in clear and vivid language.
- "image_prompt": (String) One detailed image prompt depicting the scenario, in style: %[8]s.
- "choices": (Array of exactly 3 Strings) Three distinct, specific actions the player could take next.
- "is_final_round": (Boolean) Must be false.
- "solution_explanation": Must be null.
`

// Continue asks for the next scenario and exactly three follow-up choices.
func Continue(t Turn) string {
	return fmt.Sprintf(continueTemplate,
		t.Round, t.MaxRounds, t.BaseStoryText, t.ActualSolutionText, HistorySummary(t.History),
		t.PreviousScenario, t.PlayerChoice, t.PromptModifier)
}

const finaleTemplate = `Conclude an interactive mystery game. This is the FINAL round (%[1]d of %[2]d).

**Mystery Premise:**
%[3]s

**True Solution:**
%[4]s

**Story So Far:**
%[5]s

**Scenario The Player Just Saw:**
%[6]s

**Player's Final Choice:** %[7]q

**Task:**
Narrate the concluding scene that follows from the player's final choice and reveals the truth. Do not offer any further choices.

**Output Requirements (Strict JSON Object):**
- "scenario_text": (String) The concluding scene, 100-200 words.
- "image_prompt": (String) One detailed image prompt depicting the concluding scene, in style: %[8]s.
- "choices": (Array) Must be an empty array.
- "is_final_round": (Boolean) Must be true.
- "solution_explanation": (String) Explain the true solution and which clues from the story pointed to it, 80-150 words.
`

// Finale asks for the concluding scene with a solution explanation and no choices.
func Finale(t Turn) string {
	return fmt.Sprintf(finaleTemplate,
		t.Round, t.MaxRounds, t.BaseStoryText, t.ActualSolutionText, HistorySummary(t.History),
		t.PreviousScenario, t.PlayerChoice, t.PromptModifier)
}
