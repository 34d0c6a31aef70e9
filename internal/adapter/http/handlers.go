package http

import (
	"net/http"

	"github.com/lettora/lettora/internal/service"
)

// Handlers bundles the services the HTTP surface exposes.
type Handlers struct {
	Sections  *service.SectionService
	Documents *service.DocumentService
}

// NewHandlers creates the handler set.
func NewHandlers(sections *service.SectionService, documents *service.DocumentService) *Handlers {
	return &Handlers{Sections: sections, Documents: documents}
}

// Health handles GET /health.
func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
