// Package gridarea parses CSS grid-template-areas declarations and reconciles
// the detected areas against a view's section list.
package gridarea

import (
	"strings"

	"github.com/tbuckley/gridkit/internal/config"
)

// DetectAllAreas parses a grid-template-areas string and returns all named
// areas, deduplicated in first-seen order. The "." placeholder cell and empty
// tokens are excluded. Row shape is not validated: malformed templates pass
// through silently, matching CSS's own tolerance.
func DetectAllAreas(areasString string) []string {
	if areasString == "" {
		return nil
	}

	seen := make(map[string]struct{})
	var areas []string
	for _, line := range strings.Split(areasString, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		line = strings.NewReplacer(`'`, "", `"`, "").Replace(line)
		for _, area := range strings.Fields(line) {
			if area == "." {
				continue
			}
			if _, dup := seen[area]; dup {
				continue
			}
			seen[area] = struct{}{}
			areas = append(areas, area)
		}
	}
	return areas
}

// FormatAreaName converts a kebab-case or snake_case area name to Title Case,
// e.g. "footer-right" becomes "Footer Right". ASCII-biased; no locale
// handling.
func FormatAreaName(area string) string {
	words := strings.FieldsFunc(area, func(r rune) bool {
		return r == '-' || r == '_'
	})
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}

// EnsureSections returns the section list extended with a synthesized
// placeholder for every detected area lacking one. Existing sections keep
// their positions; synthesized sections are appended in discovery order.
// Idempotent: a second call with the same areas adds nothing.
func EnsureSections(areas []string, sections []config.Section) []config.Section {
	if len(areas) == 0 {
		return sections
	}

	result := make([]config.Section, len(sections), len(sections)+len(areas))
	copy(result, sections)

	existing := make(map[string]struct{}, len(sections))
	for _, section := range sections {
		if section.GridArea != "" {
			existing[section.GridArea] = struct{}{}
		}
	}

	for _, area := range areas {
		if _, ok := existing[area]; ok {
			continue
		}
		result = append(result, PlaceholderSection(area))
	}
	return result
}

// PlaceholderSection synthesizes the backing section for a grid area that has
// none yet.
func PlaceholderSection(area string) config.Section {
	return config.Section{
		Type:     "grid",
		Title:    FormatAreaName(area),
		GridArea: area,
		Cards:    []any{},
	}
}
