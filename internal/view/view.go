// Package view ties the per-view pieces together: the tracked-entities gate
// that decides whether a snapshot tick matters at all, and the full
// stylesheet assembly for one view's layout.
package view

import (
	"reflect"
	"strings"

	"github.com/tbuckley/gridkit/internal/config"
	"github.com/tbuckley/gridkit/internal/styles"
	"github.com/tbuckley/gridkit/internal/template"
)

// Tracker holds the set of entity ids referenced by any template in a view's
// configuration. Rebuild it whenever the configuration is replaced.
type Tracker struct {
	entities map[string]struct{}
	order    []string
}

// NewTracker scans every template-bearing field of the view and collects the
// entities those templates reference.
func NewTracker(v *config.View) *Tracker {
	t := &Tracker{entities: make(map[string]struct{})}
	if v == nil {
		return t
	}

	layout := v.Layout
	if layout != nil {
		t.add(layout.CustomCSS)
		t.add(layout.BackgroundImage)
		for _, mq := range layout.MediaQuery {
			t.add(mq.Override.CustomCSS)
		}
		for _, ov := range layout.Overlays {
			if ov.Entity != "" {
				t.record(ov.Entity)
			}
			t.add(ov.Content)
			t.add(ov.CustomCSS)
		}
	}
	for _, section := range v.Sections {
		for _, mq := range section.MediaQuery {
			t.add(mq.Override.CustomCSS)
		}
	}
	return t
}

func (t *Tracker) add(s string) {
	for _, entity := range template.ExtractEntities(s) {
		t.record(entity)
	}
}

func (t *Tracker) record(entity string) {
	if _, ok := t.entities[entity]; ok {
		return
	}
	t.entities[entity] = struct{}{}
	t.order = append(t.order, entity)
}

// Entities returns the tracked entity ids in first-seen order.
func (t *Tracker) Entities() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Tracks reports whether the given entity is referenced by any template.
func (t *Tracker) Tracks(entity string) bool {
	_, ok := t.entities[entity]
	return ok
}

// Changed reports whether any tracked entity differs between two snapshots.
// This is a filter gate, not a correctness mechanism: a false negative only
// costs a missed visual refresh. With nothing tracked, no tick matters.
func (t *Tracker) Changed(prev, next template.Snapshot) bool {
	if len(t.order) == 0 {
		return false
	}
	if prev == nil || next == nil {
		return true
	}
	for _, entity := range t.order {
		before, beforeOK := prev[entity]
		after, afterOK := next[entity]
		if beforeOK != afterOK {
			return true
		}
		if before.State != after.State {
			return true
		}
		if !reflect.DeepEqual(before.Attributes, after.Attributes) {
			return true
		}
	}
	return false
}

// BuildStylesheet assembles the complete CSS for one view: the host variable
// block and evaluated custom_css first, then the static fragments, then the
// media-query blocks last so overrides win by source order.
func BuildStylesheet(layout *config.Layout, sections []config.Section, eval *template.Evaluator, snap template.Snapshot) string {
	evaluate := func(css string) string {
		return eval.EvaluateCSS(css, snap)
	}

	var b strings.Builder
	b.WriteString(styles.HostVariables(layout))

	if layout == nil {
		return b.String()
	}

	if layout.CustomCSS != "" {
		b.WriteString("\n")
		b.WriteString(evaluate(layout.CustomCSS))
	}
	b.WriteString(styles.TintCSS(layout.Tint))
	b.WriteString(styles.BackdropBlurCSS(layout.BackdropBlur))
	b.WriteString(styles.ZoomCSS(layout.Zoom))
	b.WriteString(styles.VariablesCSS(layout.Variables))
	b.WriteString(styles.KioskCSS(layout.Kiosk))
	b.WriteString(styles.LayoutMediaCSS(layout, evaluate))
	b.WriteString(styles.SectionMediaCSS(sections, layout.Breakpoints, evaluate))
	return b.String()
}
