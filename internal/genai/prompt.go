package genai

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/woodchen-ink/aice-ps/internal/editor"
)

var titleCaser = cases.Title(language.English)

// BuildEditInstruction phrases a localized or global edit for the model.
// When a hotspot is present the model is told to change only the region
// around that pixel and keep everything else identical.
func BuildEditInstruction(description string, hotspot *editor.Hotspot) string {
	description = strings.TrimSpace(description)
	parts := []string{}
	if hotspot != nil {
		parts = append(parts,
			fmt.Sprintf("Apply a localized edit centered on pixel (%d, %d).", hotspot.X, hotspot.Y),
			"Blend the change naturally and keep the rest of the image identical.")
	} else {
		parts = append(parts, "Edit this photo.")
	}
	if description != "" {
		parts = append(parts, "Requested change: "+description+".")
	}
	parts = append(parts, "Preserve the subject's identity, proportions and pose.")
	return strings.Join(parts, " ")
}

// BuildFilterInstruction phrases a whole-image stylistic filter.
func BuildFilterInstruction(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "a subtle cinematic look"
	}
	return fmt.Sprintf(
		"Apply the %s style to the entire photo. Keep the composition and every subject unchanged; only the look and color treatment may change.",
		titleCaser.String(name),
	)
}

// BuildAdjustmentInstruction phrases a photographic adjustment such as
// exposure, background blur or warmth.
func BuildAdjustmentInstruction(description string) string {
	description = strings.TrimSpace(description)
	if description == "" {
		description = "improve overall lighting and clarity"
	}
	return fmt.Sprintf(
		"Perform a natural, photorealistic adjustment of this photo: %s. Do not add, remove or move any object.",
		description,
	)
}

// BuildTextureInstruction phrases an overlay of a material texture.
func BuildTextureInstruction(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "fine film grain"
	}
	return fmt.Sprintf(
		"Overlay a %s texture across the photo. The texture follows the surfaces and lighting of the scene; subjects stay recognizable.",
		name,
	)
}

// BuildDecadeInstruction phrases the decade restyle used by the batch
// generator: same person, same framing, a different era.
func BuildDecadeInstruction(decade string) string {
	decade = strings.TrimSpace(decade)
	if decade == "" {
		decade = "1980s"
	}
	return fmt.Sprintf(
		"Recreate this photo as if it was taken in the %s: period-accurate clothing, hairstyle, background and photographic character (film grain, color response) of that era. The person must remain clearly recognizable.",
		decade,
	)
}

// BuildGenerationPrompt phrases a text-to-image request, optionally pinning
// an aspect ratio.
func BuildGenerationPrompt(prompt, aspectRatio string) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(prompt))
	if aspect := strings.TrimSpace(aspectRatio); aspect != "" {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString("Aspect ratio: ")
		b.WriteString(aspect)
	}
	if b.Len() == 0 {
		b.WriteString("Create a photorealistic image")
	}
	return b.String()
}
