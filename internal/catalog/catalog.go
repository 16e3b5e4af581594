// Package catalog holds the fixed mystery archetypes and art styles the generator chooses from.
//
// Both lists are immutable and shared by every request. The art styles are mirrored into the art_styles table by
// the database seed; the generative model must pick one of [ArtStyleNames] verbatim.
package catalog

import "slices"

// Archetypes seed theme generation. They carry no persisted identity.
var archetypes = []string{
	"Classic Murder Mystery: Whodunit",
	"Theft/Heist: Who stole the MacGuffin?",
	"Missing Person/Pet: Where did they go?",
	"Sabotage: Who is trying to ruin the event/company?",
	"Supernatural/Paranormal: Is it a ghost, or a clever human?",
	"Espionage/Intrigue: Uncover the spy or secret plot",
	"Silly/Comedic Mystery: e.g., 'Who replaced all the office coffee with decaf?'",
	"Historical Mystery: Solve a cold case from a bygone era",
	"Sci-Fi Mystery: e.g., on a space station, future tech involved",
}

// ArtStyle is a catalog entry. Description doubles as the image prompt modifier stored in the database.
type ArtStyle struct {
	Name        string
	Description string
}

var artStyles = []ArtStyle{
	{Name: "Film Noir", Description: "Stark black and white, dramatic shadows, gritty classic detective feel."},
	{Name: "Gritty Comic Book", Description: "Bold lines, strong inks, dynamic action, graphic novel feel."},
	{Name: "Watercolor Illustration", Description: "Soft, blended colors, ethereal, dreamlike quality, ambiguity."},
	{Name: "Pixel Art", Description: "Retro, nostalgic, charmingly simplified, for lighthearted/puzzle focus."},
	{Name: "Neo-Expressionist", Description: "Distorted figures, vibrant clashing colors, intense emotion, unease."},
	{Name: "Low Poly 3D", Description: "Geometric shapes, minimalist 3D rendering, modern and stylized."},
	{Name: "Victorian Engraving", Description: "Highly detailed, intricate linework, historical, macabre feel."},
	{Name: "Psychedelic Pop", Description: "Bright, contrasting colors, swirling patterns, surreal vibe."},
	{Name: "Traditional Japanese Woodblock Print", Description: "Bold outlines, flat colors, classic Ukiyo-e aesthetic."},
	{Name: "Art Deco Illustration", Description: "Elegant lines, geometric patterns, sophisticated 1920s/30s glamour."},
	{Name: "Gothic Revival Painting", Description: "Dark, dramatic, ornate, historical detail, foreboding sense."},
	{Name: "Cyberpunk Dystopian", Description: "Neon lights, rain-slicked streets, advanced tech, dark futuristic."},
	{Name: "Impressionistic Brushstrokes", Description: "Blurry, soft edges, focus on light/atmosphere, fleeting moments."},
	{Name: "Hand-Drawn Sketch", Description: "Raw, unfinished look, artist's notebook, authentic intimate feel."},
}

// Archetypes returns a copy of the mystery archetype catalog.
func Archetypes() []string {
	return slices.Clone(archetypes)
}

// ArtStyles returns a copy of the art style catalog.
func ArtStyles() []ArtStyle {
	return slices.Clone(artStyles)
}

// ArtStyleNames returns the catalog names in catalog order.
func ArtStyleNames() []string {
	names := make([]string, len(artStyles))
	for i, s := range artStyles {
		names[i] = s.Name
	}
	return names
}

// IsArtStyle reports whether name is an exact, case-sensitive catalog member.
func IsArtStyle(name string) bool {
	return slices.Contains(ArtStyleNames(), name)
}
