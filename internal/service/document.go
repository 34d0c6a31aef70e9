package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	lotel "github.com/lettora/lettora/internal/adapter/otel"
	"github.com/lettora/lettora/internal/domain/agreement"
	"github.com/lettora/lettora/internal/middleware"
	"github.com/lettora/lettora/internal/port/database"
	"github.com/lettora/lettora/internal/port/messagequeue"
)

// renderParallelism bounds concurrent section renders during one assembly.
// Rendering is CPU-bound string work; results are written by index so the
// output order never depends on scheduling.
const renderParallelism = 4

// DocumentService assembles agreement documents: it resolves the section
// list, builds or accepts a render context, and renders every section's
// title and content through the template renderer.
type DocumentService struct {
	store    database.Store
	sections *SectionService
	queue    messagequeue.Queue
	metrics  *lotel.Metrics
}

// NewDocumentService creates a new document service. queue and metrics may
// be nil.
func NewDocumentService(store database.Store, sections *SectionService, q messagequeue.Queue, m *lotel.Metrics) *DocumentService {
	return &DocumentService{store: store, sections: sections, queue: q, metrics: m}
}

// AssembleOptions controls one document assembly.
type AssembleOptions struct {
	LandlordID      string
	Type            agreement.Type
	IncludeInactive bool // editor review: render inactive sections too
	TenancyID       string
	Preview         bool
}

// GenerateForTenancy produces the agreement for a stored tenancy: it loads
// the tenancy, its members, property and landlord, builds the render context
// and assembles the document. This is the production signing path.
func (s *DocumentService) GenerateForTenancy(ctx context.Context, tenancyID string, typ agreement.Type) (*agreement.Document, error) {
	tn, err := s.store.GetTenancy(ctx, tenancyID)
	if err != nil {
		return nil, fmt.Errorf("load tenancy: %w", err)
	}
	members, err := s.store.ListTenancyMembers(ctx, tenancyID)
	if err != nil {
		return nil, fmt.Errorf("load members: %w", err)
	}
	prop, err := s.store.GetProperty(ctx, tn.PropertyID)
	if err != nil {
		return nil, fmt.Errorf("load property: %w", err)
	}
	ll, err := s.store.GetLandlord(ctx, tn.LandlordID)
	if err != nil {
		return nil, fmt.Errorf("load landlord: %w", err)
	}
	profile, err := s.store.GetAgencyProfile(ctx)
	if err != nil {
		return nil, fmt.Errorf("load agency profile: %w", err)
	}

	rctx := BuildRenderContext(ContextInput{
		Tenancy:  *tn,
		Members:  members,
		Property: *prop,
		Landlord: *ll,
		Agency:   *profile,
	})

	return s.Assemble(ctx, rctx, AssembleOptions{
		LandlordID: tn.LandlordID,
		Type:       typ,
		TenancyID:  tenancyID,
	})
}

// PreviewRequest drives a preview assembly from caller-supplied synthetic
// data. The extra maps let an editor force individual variables or flags on
// top of the built context.
type PreviewRequest struct {
	LandlordID      string            `json:"landlord_id,omitempty"`
	Type            agreement.Type    `json:"agreement_type"`
	IncludeInactive bool              `json:"include_inactive,omitempty"`
	Input           ContextInput      `json:"input"`
	ExtraVariables  map[string]string `json:"extra_variables,omitempty"`
	ExtraFlags      map[string]bool   `json:"extra_flags,omitempty"`
}

// Preview assembles a document from synthetic data. It shares the resolver,
// context builder and renderer with GenerateForTenancy; only the input
// source differs, so what the editor sees is what production will produce.
func (s *DocumentService) Preview(ctx context.Context, req *PreviewRequest) (*agreement.Document, error) {
	rctx := BuildRenderContext(req.Input)
	for k, v := range req.ExtraVariables {
		rctx.Variables[k] = v
	}
	for k, v := range req.ExtraFlags {
		rctx.Flags[k] = v
	}

	typ := req.Type
	if typ == "" {
		typ = agreement.TypeTenancy
	}
	return s.Assemble(ctx, rctx, AssembleOptions{
		LandlordID:      req.LandlordID,
		Type:            typ,
		IncludeInactive: req.IncludeInactive,
		Preview:         true,
	})
}

// Assemble resolves the section list and renders every section's title and
// content with the given context. A section's render never fails the whole
// document: malformed templates degrade to literal text and their warnings
// ride along in the result.
func (s *DocumentService) Assemble(ctx context.Context, rctx *agreement.RenderContext, opts AssembleOptions) (*agreement.Document, error) {
	ctx, span := lotel.StartAssembleSpan(ctx, string(opts.Type), opts.LandlordID, opts.Preview)
	defer span.End()

	resolved, err := s.sections.Resolve(ctx, opts.LandlordID, opts.Type, opts.IncludeInactive)
	if err != nil {
		return nil, fmt.Errorf("resolve sections: %w", err)
	}

	doc := &agreement.Document{
		Type:     opts.Type,
		Sections: make([]agreement.RenderedSection, len(resolved)),
	}
	warnings := make([][]agreement.Warning, len(resolved))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(renderParallelism)
	for i, sec := range resolved {
		g.Go(func() error {
			_, rspan := lotel.StartRenderSpan(gctx, sec.Key)
			defer rspan.End()

			title, titleWarns := RenderTemplate(sec.Title, rctx)
			body, bodyWarns := RenderTemplate(sec.Content, rctx)

			doc.Sections[i] = agreement.RenderedSection{
				Key:        sec.Key,
				Title:      title,
				HTML:       body,
				Provenance: sec.Provenance,
			}
			for _, w := range append(titleWarns, bodyWarns...) {
				w.SectionKey = sec.Key
				warnings[i] = append(warnings[i], w)
			}
			return nil
		})
	}
	_ = g.Wait() // renders never return errors; fail-open by design of the grammar

	for i, ws := range warnings {
		if len(ws) > 0 {
			slog.Warn("section rendered with authoring warnings",
				"section_key", resolved[i].Key,
				"count", len(ws),
			)
			doc.Warnings = append(doc.Warnings, ws...)
		}
	}

	s.record(ctx, doc, opts)
	return doc, nil
}

// record emits metrics and the generated event.
func (s *DocumentService) record(ctx context.Context, doc *agreement.Document, opts AssembleOptions) {
	if s.metrics != nil {
		s.metrics.DocumentsGenerated.Add(ctx, 1)
		if n := len(doc.Warnings); n > 0 {
			s.metrics.RenderWarnings.Add(ctx, int64(n))
		}
	}

	if s.queue == nil {
		return
	}
	evt := messagequeue.DocumentGeneratedEvent{
		AgencyID:   middleware.AgencyIDFromContext(ctx),
		LandlordID: opts.LandlordID,
		TenancyID:  opts.TenancyID,
		Type:       string(opts.Type),
		Sections:   len(doc.Sections),
		Warnings:   len(doc.Warnings),
		Preview:    opts.Preview,
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return
	}
	if err := s.queue.Publish(ctx, messagequeue.SubjectDocumentGenerated, data); err != nil {
		slog.Warn("failed to publish document-generated event", "error", err)
	}
}
