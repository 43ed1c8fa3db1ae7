package config

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	gridkiterrors "github.com/tbuckley/gridkit/pkg/errors"
)

var yamlLineRegex = regexp.MustCompile(`line (\d+)`)

// ParseDocument loads a configuration document from disk, validates it, and
// assigns stable overlay IDs.
func ParseDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, gridkiterrors.NewParseError(path, 0, err)
	}
	return DecodeDocument(data, path)
}

// DecodeDocument parses a configuration document from raw YAML bytes. The
// path is only used for error reporting.
func DecodeDocument(data []byte, path string) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, gridkiterrors.NewParseError(path, extractLine(err), err)
	}

	if err := ValidateDocument(&doc); err != nil {
		return nil, err
	}

	AssignOverlayIDs(&doc)
	return &doc, nil
}

func extractLine(err error) int {
	if err == nil {
		return 0
	}

	matches := yamlLineRegex.FindStringSubmatch(err.Error())
	if len(matches) != 2 {
		return 0
	}

	var line int
	_, scanErr := fmt.Sscanf(matches[1], "%d", &line)
	if scanErr != nil {
		return 0
	}

	return line
}
