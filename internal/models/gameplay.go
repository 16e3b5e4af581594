package models

// GameplayTurn records what was shown to the player and what they picked.
type GameplayTurn struct {
	ScenarioText string `json:"scenario_text"  validate:"required"`
	ChosenAction string `json:"chosen_action"  validate:"required"`
}

// Round is the round number of the next scenario for a session that has completed path.
func Round(path []GameplayTurn) int {
	return len(path) + 1
}

// ScenarioResult is the validated output of a progression call.
//
// A non-final result has exactly three choices and no solution explanation. A final result is expected to carry an
// explanation and no choices.
type ScenarioResult struct {
	ScenarioText        string
	ImagePrompt         string
	Choices             []string
	IsFinalRound        bool
	SolutionExplanation *string
}

// ScenarioPayload is returned to the player after a turn.
type ScenarioPayload struct {
	ScenarioText          string   `json:"next_scenario_text"`
	ImageURL              *string  `json:"next_scenario_image_url"`
	Choices               []string `json:"next_choices"`
	CurrentRoundGenerated int      `json:"current_round_generated"`
	IsFinalRound          bool     `json:"is_final_round"`
	SolutionExplanation   *string  `json:"solution_explanation"`
}
