package agreement

// Warning is a non-blocking content-authoring anomaly detected while
// rendering a section (malformed nesting, unterminated blocks). It degrades
// output rather than aborting generation and is surfaced to the editor.
type Warning struct {
	SectionKey string `json:"section_key,omitempty"`
	Message    string `json:"message"`
}

// RenderedSection is one fully rendered clause of an assembled document.
type RenderedSection struct {
	Key        string     `json:"section_key"`
	Title      string     `json:"title"`
	HTML       string     `json:"html"`
	Provenance Provenance `json:"provenance"`
}

// Document is the ordered, fully rendered agreement returned to the caller.
type Document struct {
	Type     Type              `json:"agreement_type"`
	Sections []RenderedSection `json:"sections"`
	Warnings []Warning         `json:"warnings,omitempty"`
}
