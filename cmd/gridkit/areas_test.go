package main

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAreasCommandListsDetectedAreas(t *testing.T) {
	path := writeTestConfig(t)

	output, err := execute(t, "areas", path)

	require.NoError(t, err)
	assert.Contains(t, output, "main\tMain")
	assert.Contains(t, output, "sidebar\tSidebar")
}

func TestAreasCommandJSONOutput(t *testing.T) {
	path := writeTestConfig(t)

	output, err := execute(t, "areas", path, "--json")

	require.NoError(t, err)
	var areas []string
	require.NoError(t, json.Unmarshal([]byte(output), &areas))
	assert.Equal(t, []string{"main", "sidebar"}, areas)
}

func TestSectionsCommandShowsReconciledList(t *testing.T) {
	path := writeTestConfig(t)

	output, err := execute(t, "sections", path)

	require.NoError(t, err)
	// The synthesized sidebar placeholder appears alongside the configured
	// main section.
	assert.Contains(t, output, "main\tMain\t0 cards")
	assert.Contains(t, output, "sidebar\tSidebar\t0 cards")
}

func TestValidateCommandAcceptsValidConfig(t *testing.T) {
	path := writeTestConfig(t)

	output, err := execute(t, "validate", path)

	require.NoError(t, err)
	assert.Contains(t, output, "is valid: 1 views, 1 sections, 0 overlays")
}

func TestValidateCommandRejectsBadEntity(t *testing.T) {
	path := writeTestConfigWith(t, `views:
  - layout:
      overlays:
        - entity: NotAnEntity
`)

	_, err := execute(t, "validate", path)

	require.Error(t, err)
}
