package models

import "time"

// DateLayout is the calendar date format used for DailyMystery.Date in storage and on the wire.
const DateLayout = "2006-01-02"

// MysteryArchetype is a coarse mystery category used only to seed theme generation.
type MysteryArchetype string

// ArtStyle is a named visual-prompt modifier. Name is unique.
type ArtStyle struct {
	ID             int64  `db:"id"              json:"id"`
	Name           string `db:"name"            json:"name"`
	PromptModifier string `db:"prompt_modifier" json:"prompt_modifier"`
}

// CharacterDossier is a short character profile bundled with the base content of a mystery.
type CharacterDossier struct {
	CharacterName             string `json:"character_name"`
	Description               string `json:"description"`
	PotentialSecretsOrMotives string `json:"potential_secrets_or_motives,omitempty"`
}

// DailyMystery is the generated content unit. There is exactly one per Date.
//
// ActualSolutionText and the full InitialChoicesPool must never reach a player mid-game; use PublicView.
type DailyMystery struct {
	ID                 int64              `json:"id"`
	Date               time.Time          `json:"-"`
	Theme              string             `json:"theme"`
	BaseStoryText      string             `json:"base_story_text"`
	ActualSolutionText string             `json:"actual_solution_text"`
	CharacterDossiers  []CharacterDossier `json:"character_dossiers"`
	CriticalPathClues  []string           `json:"critical_path_clues"`
	ArtStyle           ArtStyle           `json:"art_style"`
	BaseImageURLs      []string           `json:"base_image_urls"`
	InitialChoicesPool []string           `json:"initial_choices_pool"`
	CreatedAt          time.Time          `json:"created_at"`
}

// DateString formats Date with DateLayout.
func (m DailyMystery) DateString() string {
	return m.Date.Format(DateLayout)
}

// PublicView strips the solution and replaces the choice pool with the given subset.
func (m DailyMystery) PublicView(initialChoices []string) DailyMysteryPublicView {
	dossiers := m.CharacterDossiers
	if dossiers == nil {
		dossiers = []CharacterDossier{}
	}
	urls := m.BaseImageURLs
	if urls == nil {
		urls = []string{}
	}
	return DailyMysteryPublicView{
		DailyMysteryID:    m.ID,
		Date:              m.DateString(),
		Theme:             m.Theme,
		BaseStoryText:     m.BaseStoryText,
		BaseImageURLs:     urls,
		CharacterDossiers: dossiers,
		ArtStyleName:      m.ArtStyle.Name,
		InitialChoices:    initialChoices,
	}
}

// DailyMysteryPublicView is what players see of a DailyMystery.
type DailyMysteryPublicView struct {
	DailyMysteryID    int64              `json:"daily_mystery_id"`
	Date              string             `json:"date"`
	Theme             string             `json:"theme"`
	BaseStoryText     string             `json:"base_story_text"`
	BaseImageURLs     []string           `json:"base_image_urls"`
	CharacterDossiers []CharacterDossier `json:"character_dossiers"`
	ArtStyleName      string             `json:"art_style_name"`
	InitialChoices    []string           `json:"initial_choices"`
}
