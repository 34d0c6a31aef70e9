// Package agreement defines the domain model for agreement document
// generation: stored clause sections, resolved sections, render contexts
// and rendered documents.
package agreement

// Type identifies the kind of agreement a section belongs to.
type Type string

const (
	// TypeTenancy is the standard assured-shorthold tenancy agreement.
	TypeTenancy Type = "tenancy_agreement"
	// TypeGuarantor is the guarantor agreement signed alongside a tenancy.
	TypeGuarantor Type = "guarantor_agreement"
)

// Valid reports whether t is a known agreement type.
func (t Type) Valid() bool {
	return t == TypeTenancy || t == TypeGuarantor
}

// SectionRow represents an agreement section stored in the database.
// A row with an empty LandlordID is an agency-wide default; a non-empty
// LandlordID scopes the section to one landlord.
type SectionRow struct {
	ID         string  `json:"id"`
	AgencyID   string  `json:"agency_id"`
	LandlordID string  `json:"landlord_id,omitempty"`
	Type       Type    `json:"agreement_type"`
	Key        string  `json:"section_key"`
	Title      string  `json:"section_title"`
	Content    string  `json:"section_content"`
	Order      float64 `json:"section_order"`
	Active     bool    `json:"is_active"`
}

// Provenance records how a resolved section was selected.
type Provenance string

const (
	// ProvenanceDefault marks an agency-wide section with no landlord override.
	ProvenanceDefault Provenance = "default"
	// ProvenanceOverride marks a landlord section replacing a default with the same key.
	ProvenanceOverride Provenance = "override"
	// ProvenanceCustom marks a landlord section with no corresponding default key.
	ProvenanceCustom Provenance = "custom"
)

// ResolvedSection is one entry of the merged default/override/custom section
// list, in final document order. Title and Content are still unrendered
// template strings at this stage.
type ResolvedSection struct {
	Key        string     `json:"section_key"`
	Title      string     `json:"section_title"`
	Content    string     `json:"section_content"`
	Order      float64    `json:"section_order"`
	Provenance Provenance `json:"provenance"`
	Active     bool       `json:"is_active"`
}

// UpsertRequest holds the fields for creating or updating a section.
type UpsertRequest struct {
	LandlordID string  `json:"landlord_id,omitempty"`
	Type       Type    `json:"agreement_type"`
	Key        string  `json:"section_key"`
	Title      string  `json:"section_title"`
	Content    string  `json:"section_content"`
	Order      float64 `json:"section_order"`
	Active     *bool   `json:"is_active,omitempty"`
}
