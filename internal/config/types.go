package config

import (
	"fmt"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Document is the unit of persistence: the full dashboard configuration.
type Document struct {
	Views []View         `yaml:"views" validate:"dive"`
	Extra map[string]any `yaml:",inline"`
}

// View is one dashboard view: a layout plus the sections placed in it.
type View struct {
	Title    string         `yaml:"title,omitempty"`
	Layout   *Layout        `yaml:"layout,omitempty"`
	Sections []Section      `yaml:"sections,omitempty" validate:"dive"`
	Extra    map[string]any `yaml:",inline"`
}

// Layout holds the user-authored settings for one view.
type Layout struct {
	Margin        string            `yaml:"margin,omitempty"`
	Padding       string            `yaml:"padding,omitempty"`
	Height        *string           `yaml:"height,omitempty"`
	Kiosk         bool              `yaml:"kiosk,omitempty"`
	Zoom          Scalar            `yaml:"zoom,omitempty"`
	Tint          string            `yaml:"tint,omitempty"`
	BackdropBlur  string            `yaml:"backdrop_blur,omitempty"`
	Variables     map[string]string `yaml:"variables,omitempty"`
	Breakpoints   map[string]string `yaml:"breakpoints,omitempty"`
	MediaQuery    MediaQueries      `yaml:"mediaquery,omitempty"`
	CustomCSS     string            `yaml:"custom_css,omitempty"`
	Overlays      []Overlay         `yaml:"overlays,omitempty" validate:"dive"`
	TemplateAreas string            `yaml:"grid-template-areas,omitempty"`

	BackgroundImage   string   `yaml:"background_image,omitempty"`
	BackgroundBlur    string   `yaml:"background_blur,omitempty"`
	BackgroundOpacity *float64 `yaml:"background_opacity,omitempty" validate:"omitempty,min=0,max=1"`

	Extra map[string]any `yaml:",inline"`
}

// Section is one rectangular region of the grid. GridArea is its identity:
// at most one section per grid_area value within a view.
type Section struct {
	Type         string       `yaml:"type,omitempty"`
	Title        string       `yaml:"title,omitempty"`
	Cards        []any        `yaml:"cards"`
	GridArea     string       `yaml:"grid_area,omitempty"`
	Scrollable   bool         `yaml:"scrollable,omitempty"`
	Background   string       `yaml:"background,omitempty"`
	BackdropBlur string       `yaml:"backdrop_blur,omitempty"`
	Zoom         Scalar       `yaml:"zoom,omitempty"`
	Overflow     string       `yaml:"overflow,omitempty"`
	Padding      *Scalar      `yaml:"padding,omitempty"`
	Tint         string       `yaml:"tint,omitempty"`
	MediaQuery   MediaQueries `yaml:"mediaquery,omitempty"`

	Extra map[string]any `yaml:",inline"`
}

// Overlay binds one entity to a full-screen transient visual.
//
// ID is assigned at config-load time so runtime state survives reordering of
// the overlays array. It never round-trips through YAML.
type Overlay struct {
	ID           string `yaml:"-"`
	Entity       string `yaml:"entity" validate:"required,entity_id"`
	State        string `yaml:"state,omitempty"`
	Content      string `yaml:"content,omitempty"`
	Color        string `yaml:"color,omitempty"`
	Background   string `yaml:"background,omitempty"`
	Animation    string `yaml:"animation,omitempty"`
	Duration     string `yaml:"duration,omitempty"`
	BackdropBlur string `yaml:"backdrop_blur,omitempty"`
	FontSize     string `yaml:"font_size,omitempty"`
	TextShadow   string `yaml:"text_shadow,omitempty"`
	CustomCSS    string `yaml:"custom_css,omitempty"`
	ZIndex       *int   `yaml:"z_index,omitempty"`

	Extra map[string]any `yaml:",inline"`
}

// Override is the shape shared by layout-level and section-level mediaquery
// entries. Fields that do not apply at a given level are simply ignored there.
type Override struct {
	Kiosk        *bool             `yaml:"kiosk,omitempty"`
	Zoom         Scalar            `yaml:"zoom,omitempty"`
	Tint         string            `yaml:"tint,omitempty"`
	BackdropBlur string            `yaml:"backdrop_blur,omitempty"`
	Variables    map[string]string `yaml:"variables,omitempty"`
	CustomCSS    string            `yaml:"custom_css,omitempty"`
	Padding      *Scalar           `yaml:"padding,omitempty"`
	Background   string            `yaml:"background,omitempty"`
	Overflow     string            `yaml:"overflow,omitempty"`
	Display      string            `yaml:"display,omitempty"`

	Extra map[string]any `yaml:",inline"`
}

// MediaQueryOverride pairs one media query key with its override block.
type MediaQueryOverride struct {
	Query    string
	Override Override
}

// MediaQueries preserves the authored order of mediaquery entries; a plain
// map would shuffle the emitted @media blocks between runs.
type MediaQueries []MediaQueryOverride

// UnmarshalYAML decodes a YAML mapping while keeping key order.
func (m *MediaQueries) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("mediaquery must be a mapping, got %v", value.Tag)
	}
	out := make(MediaQueries, 0, len(value.Content)/2)
	for i := 0; i+1 < len(value.Content); i += 2 {
		var override Override
		if err := value.Content[i+1].Decode(&override); err != nil {
			return err
		}
		out = append(out, MediaQueryOverride{Query: value.Content[i].Value, Override: override})
	}
	*m = out
	return nil
}

// MarshalYAML re-emits the entries as a mapping in authored order.
func (m MediaQueries) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, entry := range m {
		key := &yaml.Node{Kind: yaml.ScalarNode, Value: entry.Query}
		val := &yaml.Node{}
		if err := val.Encode(entry.Override); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, key, val)
	}
	return node, nil
}

// Scalar holds a YAML scalar that may be authored as a number or a string,
// e.g. zoom: 0.9 and zoom: "90%" are both accepted.
type Scalar string

// UnmarshalYAML accepts any scalar and stores its string form.
func (s *Scalar) UnmarshalYAML(value *yaml.Node) error {
	var v any
	if err := value.Decode(&v); err != nil {
		return err
	}
	switch t := v.(type) {
	case nil:
		*s = ""
	case string:
		*s = Scalar(t)
	default:
		*s = Scalar(fmt.Sprint(t))
	}
	return nil
}

// String returns the scalar's string form.
func (s Scalar) String() string { return string(s) }

// IsSet reports whether the scalar carries a value.
func (s Scalar) IsSet() bool { return s != "" }

// AssignOverlayIDs gives every overlay in the document a stable identity.
// Existing IDs are preserved so a reload does not reset runtime state for
// overlays the caller recognizes.
func AssignOverlayIDs(doc *Document) {
	if doc == nil {
		return
	}
	for vi := range doc.Views {
		layout := doc.Views[vi].Layout
		if layout == nil {
			continue
		}
		for oi := range layout.Overlays {
			if layout.Overlays[oi].ID == "" {
				layout.Overlays[oi].ID = uuid.NewString()
			}
		}
	}
}

// SectionIndex returns the position of the section with the given grid_area,
// or -1 when absent.
func SectionIndex(sections []Section, gridArea string) int {
	for i, section := range sections {
		if section.GridArea == gridArea {
			return i
		}
	}
	return -1
}
