package sections

import (
	"gopkg.in/yaml.v3"

	"github.com/tbuckley/gridkit/internal/config"
	gridkiterrors "github.com/tbuckley/gridkit/pkg/errors"
)

// EditableFields returns the section's fields as a generic map with the
// host-managed cards removed, ready for the YAML editor.
func EditableFields(section config.Section) (map[string]any, error) {
	data, err := yaml.Marshal(section)
	if err != nil {
		return nil, err
	}
	var fields map[string]any
	if err := yaml.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	delete(fields, "cards")
	return fields, nil
}

// MergeEditedSection rebuilds a section from edited YAML fields. Cards are
// restored from the prior section, and grid_area and type are backfilled
// when the edit dropped them. A malformed edit aborts before persistence
// with a validation error.
func MergeEditedSection(parsed map[string]any, prior config.Section, gridArea string) (config.Section, error) {
	if parsed == nil {
		return config.Section{}, gridkiterrors.NewValidationError("section", "edited YAML is empty", nil)
	}

	data, err := yaml.Marshal(parsed)
	if err != nil {
		return config.Section{}, gridkiterrors.NewValidationError("section", "edited YAML is not serializable", err)
	}

	var section config.Section
	if err := yaml.Unmarshal(data, &section); err != nil {
		return config.Section{}, gridkiterrors.NewValidationError("section", "edited YAML does not describe a section", err)
	}

	section.Cards = prior.Cards
	if section.Cards == nil {
		section.Cards = []any{}
	}
	if section.GridArea == "" {
		section.GridArea = gridArea
	}
	if section.Type == "" {
		section.Type = prior.Type
	}
	if section.Type == "" {
		section.Type = "grid"
	}
	return section, nil
}
