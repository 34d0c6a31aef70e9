package http

import (
	"net/http"

	"github.com/lettora/lettora/internal/domain/agreement"
	"github.com/lettora/lettora/internal/service"
)

// GenerateAgreement handles POST /api/v1/tenancies/{id}/agreement. It loads
// the stored tenancy records, builds the render context and assembles the
// document of the requested type (tenancy agreement by default).
func (h *Handlers) GenerateAgreement(w http.ResponseWriter, r *http.Request) {
	typ := agreement.Type(r.URL.Query().Get("type"))
	if typ == "" {
		typ = agreement.TypeTenancy
	}
	if !typ.Valid() {
		writeError(w, http.StatusBadRequest, "unknown agreement type")
		return
	}

	doc, err := h.Documents.GenerateForTenancy(r.Context(), urlParam(r, "id"), typ)
	if err != nil {
		writeDomainError(w, err, "tenancy not found")
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// PreviewAgreement handles POST /api/v1/agreement-preview. The body carries
// synthetic letting data plus optional variable/flag overrides; the response
// is byte-identical to what production would render from the same data.
func (h *Handlers) PreviewAgreement(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[service.PreviewRequest](w, r)
	if !ok {
		return
	}
	if req.Type != "" && !req.Type.Valid() {
		writeError(w, http.StatusBadRequest, "unknown agreement type")
		return
	}

	doc, err := h.Documents.Preview(r.Context(), &req)
	if err != nil {
		writeDomainError(w, err, "failed to render preview")
		return
	}
	writeJSON(w, http.StatusOK, doc)
}
