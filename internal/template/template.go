// Package template evaluates the restricted Jinja-like mini-language used in
// custom_css, overlay content, and background_image fields against a live
// state snapshot.
//
// Four call forms are recognized: states(id), state_attr(id, attr), and
// is_state(id, value) inside positive or negated {% if %} blocks. There is no
// general expression evaluation, no loops, and no nested conditionals: the
// engine is four regular substitution passes applied in a fixed order.
package template

import (
	"fmt"
	"regexp"
	"strings"
)

// State is one entity's current state and attributes.
type State struct {
	State      string         `json:"state"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// Snapshot maps entity identifiers to their current state. It is supplied
// wholesale by the host on every update tick and never mutated here.
type Snapshot map[string]State

// StateOf returns the entity's state string and whether the entity exists.
func (s Snapshot) StateOf(entity string) (string, bool) {
	st, ok := s[entity]
	if !ok {
		return "", false
	}
	return st.State, true
}

// Attribute returns the named attribute of an entity, if defined.
func (s Snapshot) Attribute(entity, attr string) (any, bool) {
	st, ok := s[entity]
	if !ok || st.Attributes == nil {
		return nil, false
	}
	val, ok := st.Attributes[attr]
	return val, ok
}

var (
	ifStateRe    = regexp.MustCompile(`\{%\s*if\s+is_state\(['"]([^'"]+)['"],\s*['"]([^'"]+)['"]\)\s*%\}([\s\S]*?)\{%\s*endif\s*%\}`)
	ifNotStateRe = regexp.MustCompile(`\{%\s*if\s+not\s+is_state\(['"]([^'"]+)['"],\s*['"]([^'"]+)['"]\)\s*%\}([\s\S]*?)\{%\s*endif\s*%\}`)
	statesRe     = regexp.MustCompile(`\{\{\s*states\(['"]([^'"]+)['"]\)\s*\}\}`)
	stateAttrRe  = regexp.MustCompile(`\{\{\s*state_attr\(['"]([^'"]+)['"],\s*['"]([^'"]+)['"]\)\s*\}\}`)

	extractRes = []*regexp.Regexp{
		regexp.MustCompile(`is_state\(['"]([^'"]+)['"]`),
		regexp.MustCompile(`states\(['"]([^'"]+)['"]`),
		regexp.MustCompile(`state_attr\(['"]([^'"]+)['"]`),
	}
)

// Result carries the outcome of a template evaluation. When OK is false the
// evaluation failed and Output is the unmodified input, so a malformed
// template degrades to literal text instead of crashing the render path.
type Result struct {
	Output string
	OK     bool
}

// Evaluate runs the four substitution passes over css. Entity ids referenced
// by any recognized call form are reported through track (which may be nil).
// Conditional blocks report their entity regardless of outcome; value
// interpolations report only when a value was found, and unresolved
// references are left as literal {{ ... }} text.
func Evaluate(css string, snap Snapshot, track func(entity string)) (result Result) {
	if !strings.Contains(css, "{{") && !strings.Contains(css, "{%") {
		return Result{Output: css, OK: true}
	}

	defer func() {
		if r := recover(); r != nil {
			result = Result{Output: css, OK: false}
		}
	}()

	out := replaceSubmatch3(ifStateRe, css, func(entity, expected, content string) string {
		if track != nil {
			track(entity)
		}
		if current, _ := snap.StateOf(entity); current == expected {
			return content
		}
		return ""
	})
	out = replaceSubmatch3(ifNotStateRe, out, func(entity, expected, content string) string {
		if track != nil {
			track(entity)
		}
		if current, ok := snap.StateOf(entity); !ok || current != expected {
			return content
		}
		return ""
	})
	out = statesRe.ReplaceAllStringFunc(out, func(m string) string {
		entity := statesRe.FindStringSubmatch(m)[1]
		current, ok := snap.StateOf(entity)
		if !ok {
			return m
		}
		if track != nil {
			track(entity)
		}
		return current
	})
	out = stateAttrRe.ReplaceAllStringFunc(out, func(m string) string {
		groups := stateAttrRe.FindStringSubmatch(m)
		val, ok := snap.Attribute(groups[1], groups[2])
		if !ok {
			return m
		}
		if track != nil {
			track(groups[1])
		}
		return fmt.Sprint(val)
	})

	return Result{Output: out, OK: true}
}

func replaceSubmatch3(re *regexp.Regexp, s string, repl func(a, b, c string) string) string {
	return re.ReplaceAllStringFunc(s, func(m string) string {
		groups := re.FindStringSubmatch(m)
		return repl(groups[1], groups[2], groups[3])
	})
}

// EvaluateOverlayContent runs the two value-interpolation passes used for
// overlay display text. Conditional blocks are not supported here.
func EvaluateOverlayContent(content string, snap Snapshot) string {
	if !strings.Contains(content, "{{") {
		return content
	}
	out := statesRe.ReplaceAllStringFunc(content, func(m string) string {
		entity := statesRe.FindStringSubmatch(m)[1]
		if current, ok := snap.StateOf(entity); ok {
			return current
		}
		return m
	})
	out = stateAttrRe.ReplaceAllStringFunc(out, func(m string) string {
		groups := stateAttrRe.FindStringSubmatch(m)
		if val, ok := snap.Attribute(groups[1], groups[2]); ok {
			return fmt.Sprint(val)
		}
		return m
	})
	return out
}

// ExtractEntities scans for is_state(, states(, and state_attr( call forms
// and returns the distinct entity ids in first-seen order per call form.
func ExtractEntities(s string) []string {
	if s == "" {
		return nil
	}
	seen := make(map[string]struct{})
	var entities []string
	for _, re := range extractRes {
		for _, m := range re.FindAllStringSubmatch(s, -1) {
			if _, dup := seen[m[1]]; dup {
				continue
			}
			seen[m[1]] = struct{}{}
			entities = append(entities, m[1])
		}
	}
	return entities
}

// memoLimit bounds the evaluator's memo so a churning custom_css cannot grow
// it without bound.
const memoLimit = 256

// Evaluator adds tracked-entity accumulation and per-input memoization on top
// of Evaluate. The memo is change-suppression, not correctness: it must be
// invalidated (Reset) whenever a relevant snapshot change occurs.
type Evaluator struct {
	tracked map[string]struct{}
	order   []string
	memo    map[string]string
}

// NewEvaluator returns an empty evaluator.
func NewEvaluator() *Evaluator {
	return &Evaluator{
		tracked: make(map[string]struct{}),
		memo:    make(map[string]string),
	}
}

// EvaluateCSS evaluates css against snap, recording referenced entities.
func (e *Evaluator) EvaluateCSS(css string, snap Snapshot) string {
	if cached, ok := e.memo[css]; ok {
		return cached
	}

	result := Evaluate(css, snap, e.track)
	if len(e.memo) >= memoLimit {
		e.memo = make(map[string]string)
	}
	e.memo[css] = result.Output
	return result.Output
}

// Tracked returns the entity ids referenced so far, in first-seen order.
func (e *Evaluator) Tracked() []string {
	out := make([]string, len(e.order))
	copy(out, e.order)
	return out
}

// Reset clears the memo. Call on every snapshot tick that touches a tracked
// entity; the accumulated tracked set is preserved.
func (e *Evaluator) Reset() {
	e.memo = make(map[string]string)
}

func (e *Evaluator) track(entity string) {
	if _, ok := e.tracked[entity]; ok {
		return
	}
	e.tracked[entity] = struct{}{}
	e.order = append(e.order, entity)
}
