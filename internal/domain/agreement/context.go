package agreement

import "strings"

// RenderContext is the ephemeral variables/flags/lists bundle supplied to the
// template renderer for one document assembly. It is built fresh per render
// call and never mutated concurrently.
type RenderContext struct {
	// Variables holds scalar substitution values, pre-formatted as display
	// strings (names, addresses, amounts, dates).
	Variables map[string]string `json:"variables"`
	// Flags holds named boolean predicates, including the tenancy-type and
	// term-type discriminators (room_only, whole_house, fixed_term,
	// rolling_monthly).
	Flags map[string]bool `json:"flags"`
	// Lists holds named record collections for {{#each}} iteration.
	Lists map[string][]map[string]string `json:"lists"`
}

// NewRenderContext returns an empty context with all three namespaces allocated.
func NewRenderContext() *RenderContext {
	return &RenderContext{
		Variables: map[string]string{},
		Flags:     map[string]bool{},
		Lists:     map[string][]map[string]string{},
	}
}

// Truthy reports whether a scalar string counts as true for generic
// conditionals: non-empty and neither "0" nor "false".
func Truthy(s string) bool {
	if s == "" || s == "0" {
		return false
	}
	return !strings.EqualFold(s, "false")
}
