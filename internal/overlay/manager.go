// Package overlay drives entity-state-triggered full-screen overlays.
//
// Each overlay is a small state machine over consecutive snapshot ticks:
// inactive to active on the rising edge of its entity-state match, back on
// the falling edge, and no surface churn at all while the evaluation is
// unchanged. The edge discipline is what makes the CSS animation restart on
// a fresh trigger instead of replaying while a sensor stays "on".
package overlay

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/tbuckley/gridkit/internal/config"
	"github.com/tbuckley/gridkit/internal/styles"
	"github.com/tbuckley/gridkit/internal/template"
)

// Surface is the render target for overlays. Implementations own whatever
// display mechanism applies; the manager only decides what should happen.
type Surface interface {
	// CreateOverlay builds one overlay element in inactive state.
	CreateOverlay(id string, cfg config.Overlay, style map[string]string, animation string)
	// CreateTester builds the edit-mode test panel with one row per overlay.
	CreateTester(rows []TesterRow)
	// RemoveAll tears down every overlay element and the tester.
	RemoveAll()
	// SetContent replaces an overlay's display text.
	SetContent(id, text string)
	// Activate shows an overlay, restarting its animation when already shown.
	Activate(id string)
	// Deactivate hides an overlay.
	Deactivate(id string)
}

// TesterRow describes one manual trigger row in the edit-mode test panel.
type TesterRow struct {
	ID    string
	Label string
}

const (
	defaultTestSeconds = 3
	testGrace          = 100 * time.Millisecond
)

// Manager owns the per-overlay runtime state for one view instance.
type Manager struct {
	surface Surface

	mu       sync.Mutex
	overlays []config.Overlay
	active   map[string]bool
	timers   map[string]*time.Timer
}

// NewManager constructs a Manager rendering onto the given surface.
func NewManager(surface Surface) *Manager {
	return &Manager{
		surface: surface,
		active:  make(map[string]bool),
		timers:  make(map[string]*time.Timer),
	}
}

// CreateOverlays tears down and rebuilds every overlay element and resets
// all runtime state. Always call this after a configuration replacement:
// rebuild is the only safe reaction to a new overlay list, never an
// incremental diff against the old one.
func (m *Manager) CreateOverlays(overlays []config.Overlay, editMode bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.surface.RemoveAll()
	m.stopTimersLocked()
	m.active = make(map[string]bool)
	m.overlays = make([]config.Overlay, len(overlays))
	copy(m.overlays, overlays)

	if len(overlays) == 0 {
		return
	}

	for _, cfg := range m.overlays {
		m.surface.CreateOverlay(cfg.ID, cfg, styles.OverlayStyles(cfg), styles.OverlayAnimation(cfg))
	}

	if editMode {
		rows := make([]TesterRow, 0, len(m.overlays))
		for _, cfg := range m.overlays {
			label := cfg.Content
			if label == "" {
				label = "overlay"
			}
			rows = append(rows, TesterRow{ID: cfg.ID, Label: fmt.Sprintf("%s (%s)", label, cfg.Entity)})
		}
		m.surface.CreateTester(rows)
	}
}

// UpdateStates evaluates every overlay against the snapshot and applies edge
// transitions. Content text is refreshed on every tick regardless of edges,
// so templated text follows the snapshot even while active. No-ops entirely
// on an empty overlay list or a nil snapshot.
func (m *Manager) UpdateStates(snap template.Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.overlays) == 0 || snap == nil {
		return
	}

	for _, cfg := range m.overlays {
		current, known := snap.StateOf(cfg.Entity)
		active := styles.IsOverlayActive(cfg, current, known)
		wasActive := m.active[cfg.ID]

		if cfg.Content != "" {
			m.surface.SetContent(cfg.ID, template.EvaluateOverlayContent(cfg.Content, snap))
		}

		switch {
		case active && !wasActive:
			m.surface.Activate(cfg.ID)
		case !active && wasActive:
			m.surface.Deactivate(cfg.ID)
		}

		m.active[cfg.ID] = active
	}
}

// TriggerTest forces an overlay active, bypassing the edge check, and
// schedules its deactivation after the configured duration plus a small
// grace so the overlay always recovers even without a state transition.
func (m *Manager) TriggerTest(id string, snap template.Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cfg, ok := m.findLocked(id)
	if !ok {
		return
	}

	if cfg.Content != "" {
		text := cfg.Content
		if snap != nil {
			text = template.EvaluateOverlayContent(cfg.Content, snap)
		}
		m.surface.SetContent(id, text)
	}

	m.surface.Activate(id)

	if timer := m.timers[id]; timer != nil {
		timer.Stop()
	}
	m.timers[id] = time.AfterFunc(testDuration(cfg), func() {
		m.surface.Deactivate(id)
	})
}

// Destroy clears runtime state and stops pending test timers. Safe to call
// multiple times.
func (m *Manager) Destroy() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stopTimersLocked()
	m.active = make(map[string]bool)
	m.overlays = nil
}

func (m *Manager) stopTimersLocked() {
	for _, timer := range m.timers {
		timer.Stop()
	}
	m.timers = make(map[string]*time.Timer)
}

func (m *Manager) findLocked(id string) (config.Overlay, bool) {
	for _, cfg := range m.overlays {
		if cfg.ID == id {
			return cfg, true
		}
	}
	return config.Overlay{}, false
}

// testDuration parses the overlay's duration ("3", "2.5s") with a 3 second
// default.
func testDuration(cfg config.Overlay) time.Duration {
	seconds := float64(defaultTestSeconds)
	raw := strings.TrimSuffix(strings.TrimSpace(cfg.Duration), "s")
	if raw != "" {
		if parsed, err := strconv.ParseFloat(raw, 64); err == nil && parsed >= 0 {
			seconds = parsed
		}
	}
	return time.Duration(seconds*float64(time.Second)) + testGrace
}
