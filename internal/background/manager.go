// Package background resolves a view's templated background image.
//
// A background carries at most one dynamic source: the first states() or
// state_attr() call found in the configured image string. This is a
// deliberate restriction, backgrounds are a single URL, not a composed
// template, so the general multi-substitution evaluator never runs here.
package background

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tbuckley/gridkit/internal/template"
)

// Config is the background slice of a view layout.
type Config struct {
	Image   string
	Blur    string
	Opacity *float64
}

// Surface receives the resolved background. Implementations own the actual
// presentation (a DOM element, a preview page, a test recorder).
type Surface interface {
	// Apply sets the background image with its blur and opacity.
	Apply(image, blur string, opacity float64)
	// Clear removes the background entirely.
	Clear()
}

// Entity-state sentinels that must never be applied as image URLs.
const (
	stateUnknown     = "unknown"
	stateUnavailable = "unavailable"
)

const defaultBlur = "0px"

var (
	bgStatesRe    = regexp.MustCompile(`states\(['"]([^'"]+)['"]\)`)
	bgStateAttrRe = regexp.MustCompile(`state_attr\(['"]([^'"]+)['"],\s*['"]([^'"]+)['"]\)`)
)

// Manager owns one background surface for the lifetime of a view instance.
// Instantiable so independent views (and tests) never share state.
type Manager struct {
	surface   Surface
	lastImage string
}

// NewManager constructs a Manager rendering onto the given surface.
func NewManager(surface Surface) *Manager {
	return &Manager{surface: surface}
}

// Setup applies the configured background. Static URLs apply immediately;
// templated ones are resolved against the snapshot.
func (m *Manager) Setup(cfg Config, snap template.Snapshot) {
	if cfg.Image == "" {
		return
	}
	if !strings.Contains(cfg.Image, "{{") && !strings.Contains(cfg.Image, "{%") {
		m.apply(cfg.Image, cfg)
		return
	}
	m.Evaluate(cfg, snap)
}

// Evaluate re-resolves a templated background against the current snapshot.
// Only the first states() or state_attr() call is honored; a template with
// neither is applied as literal text.
func (m *Manager) Evaluate(cfg Config, snap template.Snapshot) {
	if cfg.Image == "" || snap == nil {
		return
	}

	if match := bgStatesRe.FindStringSubmatch(cfg.Image); match != nil {
		state, known := snap.StateOf(match[1])
		if known && state != "" && state != stateUnknown && state != stateUnavailable {
			m.apply(state, cfg)
		}
		return
	}

	if match := bgStateAttrRe.FindStringSubmatch(cfg.Image); match != nil {
		if val, ok := snap.Attribute(match[1], match[2]); ok && val != nil {
			if image := fmt.Sprintf("%v", val); image != "" {
				m.apply(image, cfg)
			}
		}
		return
	}

	m.apply(cfg.Image, cfg)
}

// Destroy clears the surface and forgets the last applied image. Idempotent.
func (m *Manager) Destroy() {
	m.surface.Clear()
	m.lastImage = ""
}

// apply writes the image through to the surface unless it is a known junk
// value or identical to the last applied image.
func (m *Manager) apply(image string, cfg Config) {
	if image == "" || image == "null" || image == "undefined" {
		return
	}
	if image == m.lastImage {
		return
	}
	m.lastImage = image

	blur := cfg.Blur
	if blur == "" {
		blur = defaultBlur
	}
	opacity := 1.0
	if cfg.Opacity != nil {
		opacity = *cfg.Opacity
	}
	m.surface.Apply(image, blur, opacity)
}
