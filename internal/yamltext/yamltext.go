// Package yamltext produces and consumes the user-facing textual form of a
// section's non-card fields. Serialization is hand-rolled so the editor text
// stays stable and predictable (key order, block literals, quoting); parsing
// goes through yaml.v3 first with a line-based fallback for flat documents.
package yamltext

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// skippedKeys are excluded from the editor text. Cards are host-managed and
// never round-trip through the section editor.
var skippedKeys = map[string]struct{}{"cards": {}}

// Scalar renders a value as a YAML scalar. Strings that a YAML parser could
// misread (booleans, null forms, numeric-looking text, structural
// characters, anchors/aliases) are quoted; typed numbers and bools are not.
func Scalar(value any) string {
	s, isString := value.(string)
	if !isString {
		return fmt.Sprint(value)
	}
	if needsQuoting(s) {
		escaped := strings.ReplaceAll(s, `\`, `\\`)
		escaped = strings.ReplaceAll(escaped, `"`, `\"`)
		return `"` + escaped + `"`
	}
	return s
}

func needsQuoting(s string) bool {
	switch s {
	case "", "true", "false", "null", "~":
		return true
	}
	if numericLike(s) {
		return true
	}
	if strings.ContainsAny(s, ":#{[") {
		return true
	}
	switch s[0] {
	case '\'', '"', '&', '*':
		return true
	}
	return false
}

// numericLike reports whether s consists entirely of digits and dots, the
// forms YAML would read as a number.
func numericLike(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < '0' || r > '9') && r != '.' {
			return false
		}
	}
	return true
}

// SectionToYAML serializes a section's editable fields, skipping cards,
// rendering arrays as indented "- item" lists and multiline strings in block
// literal style. Round-trip fidelity is guaranteed for flat scalar maps;
// deeper structures are best-effort.
func SectionToYAML(section map[string]any) string {
	return serialize(section, 0)
}

func serialize(obj map[string]any, indent int) string {
	pad := strings.Repeat("  ", indent)
	var lines []string
	for _, key := range sortedMapKeys(obj) {
		if indent == 0 {
			if _, skip := skippedKeys[key]; skip {
				continue
			}
		}
		value := obj[key]
		if value == nil {
			continue
		}
		switch v := value.(type) {
		case []any:
			lines = append(lines, pad+key+":")
			for _, item := range v {
				if inner, ok := toStringMap(item); ok {
					body := strings.TrimLeft(serialize(inner, indent+2), " ")
					lines = append(lines, pad+"  - "+body)
				} else {
					lines = append(lines, pad+"  - "+Scalar(item))
				}
			}
		case map[string]any:
			lines = append(lines, pad+key+":")
			lines = append(lines, serialize(v, indent+1))
		case string:
			if strings.Contains(v, "\n") {
				innerPad := strings.Repeat("  ", indent+1)
				lines = append(lines, pad+key+": |")
				for _, sline := range strings.Split(v, "\n") {
					if sline == "" {
						lines = append(lines, "")
					} else {
						lines = append(lines, innerPad+sline)
					}
				}
			} else {
				lines = append(lines, pad+key+": "+Scalar(v))
			}
		default:
			lines = append(lines, pad+key+": "+Scalar(v))
		}
	}
	return strings.Join(lines, "\n")
}

func toStringMap(value any) (map[string]any, bool) {
	switch v := value.(type) {
	case map[string]any:
		return v, true
	case map[any]any:
		out := make(map[string]any, len(v))
		for key, val := range v {
			out[fmt.Sprint(key)] = val
		}
		return out, true
	default:
		return nil, false
	}
}

func sortedMapKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Parse decodes editor text into a map. yaml.v3 handles the general case; a
// simple line-based parser for flat key-value documents covers input that
// yaml.v3 rejects outright (the editor must stay usable on sloppy text).
func Parse(text string) (map[string]any, error) {
	var out map[string]any
	if err := yaml.Unmarshal([]byte(text), &out); err == nil {
		if out == nil {
			out = map[string]any{}
		}
		return out, nil
	}

	flat, ok := parseFlat(text)
	if !ok {
		return nil, fmt.Errorf("yamltext: not parseable as YAML")
	}
	return flat, nil
}

// parseFlat handles flat "key: value" lines only.
func parseFlat(text string) (map[string]any, bool) {
	result := map[string]any{}
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		colon := strings.Index(trimmed, ":")
		if colon < 0 {
			continue
		}
		key := strings.TrimSpace(trimmed[:colon])
		raw := strings.TrimSpace(trimmed[colon+1:])
		if raw == "" {
			continue
		}
		result[key] = coerceScalar(raw)
	}
	return result, len(result) > 0
}

func coerceScalar(raw string) any {
	if len(raw) >= 2 {
		if (raw[0] == '"' && raw[len(raw)-1] == '"') || (raw[0] == '\'' && raw[len(raw)-1] == '\'') {
			return raw[1 : len(raw)-1]
		}
	}
	switch raw {
	case "true":
		return true
	case "false":
		return false
	}
	if n, err := strconv.ParseFloat(raw, 64); err == nil {
		if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return int(i)
		}
		return n
	}
	return raw
}
