package protocol

import (
	"regexp"
	"strings"
)

// Slack wraps addresses as <mailto:addr|addr>, so '|' is not allowed in the local part.
var emailPattern = regexp.MustCompile(
	`(?i)[a-z0-9!#$%&'*+/=?^_` + "`" + `{}.~-]+@(?:[a-z0-9](?:[a-z0-9-]*[a-z0-9])?\.)+[a-z0-9](?:[a-z0-9-]*[a-z0-9])?`,
)

// ExtractEmail returns the first email address found anywhere in s.
func ExtractEmail(s string) (string, bool) {
	m := emailPattern.FindString(s)
	if m == "" {
		return "", false
	}
	return m, true
}

// Assignments holds field=value pairs in the order fields were first seen.
type Assignments struct {
	fields []string
	values map[string]string
}

func (a Assignments) Len() int { return len(a.fields) }

func (a Assignments) Fields() []string {
	out := make([]string, len(a.fields))
	copy(out, a.fields)
	return out
}

func (a Assignments) Get(field string) (string, bool) {
	v, ok := a.values[field]
	return v, ok
}

// Each calls fn for every field in first-seen order.
func (a Assignments) Each(fn func(field, value string)) {
	for _, f := range a.fields {
		fn(f, a.values[f])
	}
}

// Map returns a copy of the assignments as a plain map.
func (a Assignments) Map() map[string]string {
	out := make(map[string]string, len(a.values))
	for k, v := range a.values {
		out[k] = v
	}
	return out
}

func (a *Assignments) set(field, value string) {
	if a.values == nil {
		a.values = make(map[string]string)
	}
	if _, ok := a.values[field]; !ok {
		a.fields = append(a.fields, field)
	}
	a.values[field] = value
}

// ExtractAssignments folds tokens into field assignments. A token with '='
// starts a field (split on the first '='); a token without one is appended,
// space separated, to the current field, or dropped if no field started yet.
// A value can't carry '=' across tokens: such a token starts a new field.
func ExtractAssignments(tokens []string) Assignments {
	var (
		out     Assignments
		current string
		active  bool
	)

	for _, tok := range tokens {
		if field, value, ok := strings.Cut(tok, "="); ok {
			out.set(field, value)
			current, active = field, true
			continue
		}

		if !active {
			continue
		}

		out.values[current] += " " + tok
	}

	return out
}
