package gridarea

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tbuckley/gridkit/internal/config"
)

func TestDetectAllAreas(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		template string
		want     []string
	}{
		{
			name:     "quoted rows",
			template: "\"header header\"\n\"main sidebar\"\n\"footer footer\"",
			want:     []string{"header", "main", "sidebar", "footer"},
		},
		{
			name:     "single quotes and placeholder cells",
			template: "'header .'\n'. main'",
			want:     []string{"header", "main"},
		},
		{
			name:     "blank lines and surrounding whitespace",
			template: "\n   \"a b\"  \n\n  \"b c\"\n",
			want:     []string{"a", "b", "c"},
		},
		{
			name:     "empty input",
			template: "",
			want:     nil,
		},
		{
			name:     "only placeholders",
			template: "\". .\"\n\". .\"",
			want:     nil,
		},
		{
			name:     "ragged rows pass through",
			template: "\"a b c\"\n\"a\"",
			want:     []string{"a", "b", "c"},
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := DetectAllAreas(tc.template)
			assert.Equal(t, tc.want, got)
			assert.NotContains(t, got, ".")
			assert.NotContains(t, got, "")
		})
	}
}

func TestFormatAreaName(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"footer-right": "Footer Right",
		"main_content": "Main Content",
		"header":       "Header",
		"a-b_c":        "A B C",
	}
	for input, want := range cases {
		assert.Equal(t, want, FormatAreaName(input))
	}
}

func TestEnsureSections(t *testing.T) {
	t.Parallel()

	existing := []config.Section{
		{Type: "grid", Title: "Main", GridArea: "main", Cards: []any{}},
	}
	areas := []string{"header", "main", "sidebar"}

	result := EnsureSections(areas, existing)
	require.Len(t, result, 3)

	// Existing sections keep their position, synthesized ones are appended
	// in discovery order.
	assert.Equal(t, "main", result[0].GridArea)
	assert.Equal(t, "header", result[1].GridArea)
	assert.Equal(t, "sidebar", result[2].GridArea)

	assert.Equal(t, "Header", result[1].Title)
	assert.Equal(t, "grid", result[1].Type)
	assert.Empty(t, result[1].Cards)
	assert.NotNil(t, result[1].Cards)
}

func TestEnsureSectionsEmptyAreas(t *testing.T) {
	t.Parallel()

	existing := []config.Section{{GridArea: "main"}}
	assert.Equal(t, existing, EnsureSections(nil, existing))
}

func TestEnsureSectionsIdempotent(t *testing.T) {
	t.Parallel()

	areas := []string{"header", "main"}
	sections := []config.Section{{Type: "grid", GridArea: "main", Cards: []any{}}}

	once := EnsureSections(areas, sections)
	twice := EnsureSections(areas, once)
	assert.Equal(t, once, twice)
}

func TestEnsureSectionsDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	sections := []config.Section{{GridArea: "main"}}
	_ = EnsureSections([]string{"header"}, sections)
	require.Len(t, sections, 1)
}
