package service

import (
	"sort"

	"github.com/lettora/lettora/internal/domain/agreement"
)

// MergeSections resolves agency defaults against landlord-scoped sections
// into the final ordered clause list. A landlord section sharing a default's
// key replaces that default entirely (override); a landlord section with no
// matching default is appended at its own order (custom). Defaults and
// landlord rows are independent rows merged here; there is no inheritance.
//
// Callers are expected to pass only active rows for production resolution.
// Inactive rows, when passed (editor review), merge by the same rules.
func MergeSections(defaults, landlord []agreement.SectionRow) []agreement.ResolvedSection {
	byKey := make(map[string]agreement.SectionRow, len(landlord))
	for _, s := range landlord {
		byKey[s.Key] = s
	}

	resolved := make([]agreement.ResolvedSection, 0, len(defaults)+len(landlord))
	seen := make(map[string]bool, len(defaults))

	for _, d := range defaults {
		seen[d.Key] = true
		if o, ok := byKey[d.Key]; ok {
			resolved = append(resolved, agreement.ResolvedSection{
				Key:        o.Key,
				Title:      o.Title,
				Content:    o.Content,
				Order:      o.Order,
				Provenance: agreement.ProvenanceOverride,
				Active:     o.Active,
			})
			continue
		}
		resolved = append(resolved, agreement.ResolvedSection{
			Key:        d.Key,
			Title:      d.Title,
			Content:    d.Content,
			Order:      d.Order,
			Provenance: agreement.ProvenanceDefault,
			Active:     d.Active,
		})
	}

	for _, s := range landlord {
		if seen[s.Key] {
			continue
		}
		resolved = append(resolved, agreement.ResolvedSection{
			Key:        s.Key,
			Title:      s.Title,
			Content:    s.Content,
			Order:      s.Order,
			Provenance: agreement.ProvenanceCustom,
			Active:     s.Active,
		})
	}

	// Stable document order: section_order ascending, key as tie-break.
	sort.Slice(resolved, func(i, j int) bool {
		if resolved[i].Order != resolved[j].Order {
			return resolved[i].Order < resolved[j].Order
		}
		return resolved[i].Key < resolved[j].Key
	})

	return resolved
}
