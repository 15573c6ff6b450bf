package openai

import (
	"fmt"
	"strings"

	"github.com/kirillkom/legal-intel/internal/taxonomy"
)

const systemPrompt = "You are a legal document analyst. You respond with strict JSON only."

func buildExtractionPrompt(text, filename string, suggestions *taxonomy.Suggestions) string {
	var hints strings.Builder
	if suggestions != nil {
		hints.WriteString("Common agreement types: " + strings.Join(suggestions.AgreementTypes, ", ") + "\n")
		hints.WriteString("Common governing laws: " + strings.Join(suggestions.GoverningLaws, ", ") + "\n")
		hints.WriteString("Common geographies: " + strings.Join(suggestions.Geographies, ", ") + "\n")
		hints.WriteString("Common industry sectors: " + strings.Join(suggestions.IndustrySectors, ", ") + "\n")
	}

	return fmt.Sprintf(`Extract metadata from the legal document below.
Return a strict JSON object with exactly these keys:
agreement_type (string), governing_law (string), jurisdiction (string), geography (string), industry_sector (string), confidence (number from 0 to 1).
Use an empty string for any field the document does not state. Do not guess.
%s
No markdown, no extra keys, no commentary.

Filename: %s

Document:
%s`, hints.String(), filename, text)
}
