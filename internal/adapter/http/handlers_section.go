package http

import (
	"net/http"

	"github.com/lettora/lettora/internal/domain/agreement"
)

// sectionQuery reads the shared scope parameters for section endpoints.
func sectionQuery(r *http.Request) (landlordID string, typ agreement.Type, includeInactive bool) {
	q := r.URL.Query()
	landlordID = q.Get("landlord_id")
	typ = agreement.Type(q.Get("type"))
	if typ == "" {
		typ = agreement.TypeTenancy
	}
	includeInactive = q.Get("include_inactive") == "true"
	return landlordID, typ, includeInactive
}

// ListSections handles GET /api/v1/agreement-sections.
// An empty landlord_id lists the agency-wide defaults.
func (h *Handlers) ListSections(w http.ResponseWriter, r *http.Request) {
	landlordID, typ, includeInactive := sectionQuery(r)
	if !typ.Valid() {
		writeError(w, http.StatusBadRequest, "unknown agreement type")
		return
	}

	rows, err := h.Sections.List(r.Context(), landlordID, typ, includeInactive)
	if err != nil {
		writeDomainError(w, err, "failed to list sections")
		return
	}
	if rows == nil {
		rows = []agreement.SectionRow{}
	}
	writeJSON(w, http.StatusOK, rows)
}

// GetSection handles GET /api/v1/agreement-sections/{id}.
func (h *Handlers) GetSection(w http.ResponseWriter, r *http.Request) {
	row, err := h.Sections.Get(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "section not found")
		return
	}
	writeJSON(w, http.StatusOK, row)
}

// CreateSection handles POST /api/v1/agreement-sections. A duplicate key
// within the same scope returns 409.
func (h *Handlers) CreateSection(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[agreement.UpsertRequest](w, r)
	if !ok {
		return
	}
	created, err := h.Sections.Create(r.Context(), &req)
	if err != nil {
		writeDomainError(w, err, "failed to create section")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// UpdateSection handles PUT /api/v1/agreement-sections/{id}.
func (h *Handlers) UpdateSection(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[agreement.UpsertRequest](w, r)
	if !ok {
		return
	}
	updated, err := h.Sections.Update(r.Context(), urlParam(r, "id"), &req)
	if err != nil {
		writeDomainError(w, err, "section not found")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// DeleteSection handles DELETE /api/v1/agreement-sections/{id}. Deleting an
// override reverts resolution to the agency default for that key.
func (h *Handlers) DeleteSection(w http.ResponseWriter, r *http.Request) {
	if err := h.Sections.Delete(r.Context(), urlParam(r, "id")); err != nil {
		writeDomainError(w, err, "section not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ResolveSections handles GET /api/v1/agreement-sections/resolve. It returns
// the merged default/override/custom list the document assembler would use,
// for the authoring UI.
func (h *Handlers) ResolveSections(w http.ResponseWriter, r *http.Request) {
	landlordID, typ, includeInactive := sectionQuery(r)

	resolved, err := h.Sections.Resolve(r.Context(), landlordID, typ, includeInactive)
	if err != nil {
		writeDomainError(w, err, "failed to resolve sections")
		return
	}
	if resolved == nil {
		resolved = []agreement.ResolvedSection{}
	}
	writeJSON(w, http.StatusOK, resolved)
}
