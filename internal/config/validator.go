package config

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	gridkiterrors "github.com/tbuckley/gridkit/pkg/errors"
)

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate

	// Entity identifiers follow the <domain>.<object_id> shape, e.g.
	// binary_sensor.front_door.
	entityIDPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*\.[A-Za-z0-9_]+$`)
)

func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()

		_ = v.RegisterValidation("entity_id", func(fl validator.FieldLevel) bool {
			return entityIDPattern.MatchString(fl.Field().String())
		})

		validateInst = v
	})

	return validateInst
}

// ValidateDocument performs schema validation plus the grid_area uniqueness
// invariant: at most one section per grid_area value within a view.
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return gridkiterrors.NewValidationError("document", "configuration is nil", nil)
	}

	v := validatorInstance()
	if err := v.Struct(doc); err != nil {
		return convertValidationError(err)
	}

	for vi, view := range doc.Views {
		seen := make(map[string]int, len(view.Sections))
		for si, section := range view.Sections {
			if section.GridArea == "" {
				continue
			}
			if prev, dup := seen[section.GridArea]; dup {
				field := fmt.Sprintf("views[%d].sections[%d].grid_area", vi, si)
				return gridkiterrors.NewValidationError(field,
					fmt.Sprintf("duplicate grid_area %q (first used by sections[%d])", section.GridArea, prev), nil)
			}
			seen[section.GridArea] = si
		}
	}

	return nil
}

func convertValidationError(err error) error {
	var verrs validator.ValidationErrors
	if ok := asValidationErrors(err, &verrs); !ok || len(verrs) == 0 {
		return gridkiterrors.NewValidationError("", err.Error(), err)
	}

	first := verrs[0]
	field := normalizeFieldPath(first.Namespace())
	message := fmt.Sprintf("failed %q constraint", first.Tag())
	if first.Param() != "" {
		message = fmt.Sprintf("failed %q=%s constraint", first.Tag(), first.Param())
	}
	return gridkiterrors.NewValidationError(field, message, err)
}

func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return false
	}
	*target = verrs
	return true
}

// normalizeFieldPath rewrites validator namespaces like
// "Document.Views[0].Layout.Overlays[1].Entity" into the YAML-facing
// "views[0].layout.overlays[1].entity".
func normalizeFieldPath(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	for i, part := range parts {
		parts[i] = strings.ToLower(part[:1]) + part[1:]
	}
	return strings.Join(parts, ".")
}
