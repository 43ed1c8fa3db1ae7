// Package styles maps structured layout, section, and overlay configuration
// to CSS text fragments. Every function is pure: config in, string out, no
// hidden state, so each fragment can be golden-tested on its own.
package styles

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tbuckley/gridkit/internal/config"
)

// Class names shared with the host stylesheet.
const (
	ClassSectionContainer = "section-container"
	ClassEditMode         = "edit-mode"
	ClassScrollable       = "scrollable"
	SectionClassPrefix    = "section-"
)

// Default host variable fallbacks.
const (
	defaultMargin  = "0px 4px 0px 4px"
	defaultPadding = "4px 0px 4px 0px"
)

// ResolveMediaQuery resolves a named breakpoint to its media query string.
// Raw queries and unresolvable names pass through unchanged; an unresolvable
// name is almost certainly an authoring error, but CSS tolerates it and so
// do we.
func ResolveMediaQuery(key string, breakpoints map[string]string) string {
	if resolved, ok := breakpoints[key]; ok && resolved != "" {
		return resolved
	}
	return key
}

// ExtractGridProperties filters grid placement properties from a raw layout
// bag: keys starting with "grid" plus place-items and place-content.
func ExtractGridProperties(layout map[string]any) map[string]string {
	result := make(map[string]string)
	for key, value := range layout {
		if strings.HasPrefix(key, "grid") || key == "place-items" || key == "place-content" {
			result[key] = fmt.Sprint(value)
		}
	}
	return result
}

// HostVariables generates the :host custom properties block. Overflow is
// "auto" only when a height was explicitly set, else "visible".
func HostVariables(layout *config.Layout) string {
	margin := defaultMargin
	padding := defaultPadding
	height := "auto"
	overflow := "visible"
	if layout != nil {
		if layout.Margin != "" {
			margin = layout.Margin
		}
		if layout.Padding != "" {
			padding = layout.Padding
		}
		if layout.Height != nil {
			height = *layout.Height
			overflow = "auto"
		}
	}
	return fmt.Sprintf(`:host {
        --layout-margin: %s;
        --layout-padding: %s;
        --layout-height: %s;
        --layout-overflow: %s;
      }`, margin, padding, height, overflow)
}

// TintCSS generates the view-level tint rule.
func TintCSS(tint string) string {
	if tint == "" {
		return ""
	}
	return fmt.Sprintf("#root { background-color: %s; }", tint)
}

// BackdropBlurCSS generates the view-level backdrop blur rule with its
// webkit-prefixed twin.
func BackdropBlurCSS(blur string) string {
	if blur == "" {
		return ""
	}
	return fmt.Sprintf("#root { backdrop-filter: blur(%s); -webkit-backdrop-filter: blur(%s); }", blur, blur)
}

// ZoomCSS generates the view-level zoom rule.
func ZoomCSS(zoom config.Scalar) string {
	if !zoom.IsSet() {
		return ""
	}
	return fmt.Sprintf("#root { zoom: %s; }", zoom)
}

// VariablesCSS generates :host custom property declarations from a variables
// map, in sorted name order for stable output.
func VariablesCSS(variables map[string]string) string {
	if len(variables) == 0 {
		return ""
	}
	decls := make([]string, 0, len(variables))
	for _, name := range sortedKeys(variables) {
		decls = append(decls, fmt.Sprintf("--%s: %s;", name, variables[name]))
	}
	return fmt.Sprintf(":host { %s }", strings.Join(decls, " "))
}

// KioskCSS generates the kiosk-mode block: fixed positioning anchored to the
// host chrome's header/drawer variables, margin suppression in edit mode,
// and scrollbar hiding for section containers.
func KioskCSS(enabled bool) string {
	if !enabled {
		return ""
	}
	return `
        #root {
          position: fixed !important;
          bottom: 0;
          right: 0;
          left: var(--mdc-drawer-width, 0px);
          top: var(--kiosk-header-height, calc(var(--header-height, 56px) + var(--safe-area-inset-top, 0px) + var(--view-container-padding-top, 0px)));
          margin: 0 !important;
          padding: 0 !important;
        }
        #root.edit-mode {
          top: calc(var(--header-height, 56px) + var(--tab-bar-height, 56px) - 2px + var(--safe-area-inset-top, 0px));
        }
        .section-container {
          overflow-y: scroll;
          scrollbar-width: none;
          -webkit-overflow-scrolling: touch;
          margin: 0 !important;
        }
        .section-container::-webkit-scrollbar {
          display: none;
        }`
}

// KioskDisableCSS generates the block that reverses kiosk positioning inside
// a media query whose override turns kiosk off.
func KioskDisableCSS() string {
	return `
          #root {
            position: relative !important;
            top: 0;
            bottom: auto;
            left: auto;
            right: auto;
            height: auto;
            min-height: 100vh;
            overflow: visible;
            margin: var(--layout-margin) !important;
            padding: var(--layout-padding, 12px) !important;
            gap: 8px;
            grid-template-rows: auto;
            grid-auto-rows: max-content;
          }
          #root.edit-mode {
            top: 0;
          }
          .section-container {
            height: auto;
          }`
}

// LayoutMediaCSS assembles one @media block per layout-level mediaquery
// entry, in authored order. Entries whose override yields no rules emit
// nothing.
func LayoutMediaCSS(layout *config.Layout, evaluate func(string) string) string {
	if layout == nil || len(layout.MediaQuery) == 0 {
		return ""
	}

	var mediaCSS strings.Builder
	for _, entry := range layout.MediaQuery {
		resolved := ResolveMediaQuery(entry.Query, layout.Breakpoints)
		override := entry.Override

		var rules []string
		if layout.Kiosk && override.Kiosk != nil && !*override.Kiosk {
			rules = append(rules, KioskDisableCSS())
		}
		if override.Zoom.IsSet() {
			rules = append(rules, fmt.Sprintf("#root { zoom: %s; }", override.Zoom))
		}
		if override.Tint != "" {
			rules = append(rules, fmt.Sprintf("#root { background-color: %s; }", override.Tint))
		}
		if override.BackdropBlur != "" {
			rules = append(rules, fmt.Sprintf("#root { backdrop-filter: blur(%s); -webkit-backdrop-filter: blur(%s); }", override.BackdropBlur, override.BackdropBlur))
		}
		if len(override.Variables) > 0 {
			rules = append(rules, VariablesCSS(override.Variables))
		}
		if override.CustomCSS != "" {
			rules = append(rules, evaluate(override.CustomCSS))
		}

		if len(rules) > 0 {
			fmt.Fprintf(&mediaCSS, "@media %s { %s }\n", resolved, strings.Join(rules, "\n"))
		}
	}
	return mediaCSS.String()
}

// SectionMediaCSS assembles per-section @media override blocks scoped to the
// section's class hook. Sections lacking grid_area or mediaquery are skipped
// entirely: without a stable class there is nothing to target.
func SectionMediaCSS(sections []config.Section, breakpoints map[string]string, evaluate func(string) string) string {
	if len(sections) == 0 {
		return ""
	}

	var mediaCSS strings.Builder
	for _, section := range sections {
		if len(section.MediaQuery) == 0 || section.GridArea == "" {
			continue
		}
		for _, entry := range section.MediaQuery {
			resolved := ResolveMediaQuery(entry.Query, breakpoints)
			override := entry.Override

			var props []string
			if override.Tint != "" {
				props = append(props, fmt.Sprintf("background-color: %s !important;", override.Tint))
			}
			if override.Padding != nil {
				props = append(props, fmt.Sprintf("padding: %s !important;", *override.Padding))
			}
			if override.Background != "" {
				props = append(props, fmt.Sprintf("background: %s !important;", override.Background))
			}
			if override.BackdropBlur != "" {
				props = append(props,
					fmt.Sprintf("backdrop-filter: blur(%s) !important;", override.BackdropBlur),
					fmt.Sprintf("-webkit-backdrop-filter: blur(%s) !important;", override.BackdropBlur))
			}
			if override.Zoom.IsSet() {
				props = append(props, fmt.Sprintf("zoom: %s !important;", override.Zoom))
			}
			if override.Overflow != "" {
				props = append(props, fmt.Sprintf("overflow: %s !important;", override.Overflow))
			}
			if override.Display != "" {
				props = append(props, fmt.Sprintf("display: %s !important;", override.Display))
			}
			for _, name := range sortedKeys(override.Variables) {
				props = append(props, fmt.Sprintf("--%s: %s !important;", name, override.Variables[name]))
			}

			var sectionRules string
			if len(props) > 0 {
				sectionRules = fmt.Sprintf(".%s%s { %s }", SectionClassPrefix, section.GridArea, strings.Join(props, " "))
			}
			if override.CustomCSS != "" {
				sectionRules += "\n" + evaluate(override.CustomCSS)
			}
			if sectionRules != "" {
				fmt.Fprintf(&mediaCSS, "@media %s { %s }\n", resolved, sectionRules)
			}
		}
	}
	return mediaCSS.String()
}

// SectionStyles computes the inline style map for a section container.
func SectionStyles(section config.Section) map[string]string {
	out := make(map[string]string)
	if section.GridArea != "" {
		out["grid-area"] = section.GridArea
	}
	if section.Background != "" {
		out["background"] = section.Background
	}
	if section.BackdropBlur != "" {
		out["backdrop-filter"] = fmt.Sprintf("blur(%s)", section.BackdropBlur)
		out["-webkit-backdrop-filter"] = fmt.Sprintf("blur(%s)", section.BackdropBlur)
	}
	if section.Zoom.IsSet() {
		out["zoom"] = section.Zoom.String()
	}
	if section.Overflow != "" {
		out["overflow"] = section.Overflow
	}
	if section.Padding != nil {
		out["padding"] = section.Padding.String()
	}
	if section.Tint != "" {
		out["background-color"] = section.Tint
	}
	return out
}

// SectionVariables computes --name custom properties from a section's
// variables map.
func SectionVariables(variables map[string]string) map[string]string {
	out := make(map[string]string, len(variables))
	for name, value := range variables {
		out["--"+name] = value
	}
	return out
}

// SectionClasses computes the ordered class list for a section container.
func SectionClasses(section config.Section, editMode bool) []string {
	classes := []string{ClassSectionContainer}
	if editMode {
		classes = append(classes, ClassEditMode)
	}
	if section.GridArea != "" {
		classes = append(classes, SectionClassPrefix+section.GridArea)
	}
	if section.Scrollable {
		classes = append(classes, ClassScrollable)
	}
	return classes
}

// OverlayStyles computes the CSS variable map for an overlay element. Keys
// absent from config are omitted; defaults live in the stylesheet via
// var(..., fallback).
func OverlayStyles(cfg config.Overlay) map[string]string {
	out := make(map[string]string)
	if cfg.Color != "" {
		out["--gk-overlay-color"] = cfg.Color
	}
	if cfg.Duration != "" {
		out["--gk-overlay-duration"] = cfg.Duration
	}
	if cfg.BackdropBlur != "" {
		out["--gk-overlay-blur"] = cfg.BackdropBlur
	}
	if cfg.FontSize != "" {
		out["--gk-overlay-font-size"] = cfg.FontSize
	}
	if cfg.ZIndex != nil {
		out["--gk-overlay-z-index"] = fmt.Sprint(*cfg.ZIndex)
	}
	if cfg.Background != "" {
		out["background"] = cfg.Background
	}
	return out
}

// OverlayAnimation returns the overlay's animation name, defaulting to
// "pulse". Arbitrary names pass through for stylesheet-defined animations.
func OverlayAnimation(cfg config.Overlay) string {
	if cfg.Animation == "" {
		return "pulse"
	}
	return cfg.Animation
}

// IsOverlayActive reports whether the overlay's target state matches the
// entity's current state. The target defaults to "on"; an unknown entity is
// never active.
func IsOverlayActive(cfg config.Overlay, current string, known bool) bool {
	if !known {
		return false
	}
	target := cfg.State
	if target == "" {
		target = "on"
	}
	return current == target
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
