package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/lettora/lettora/internal/domain"
	"github.com/lettora/lettora/internal/domain/agreement"
	"github.com/lettora/lettora/internal/middleware"
	"github.com/lettora/lettora/internal/port/cache"
	"github.com/lettora/lettora/internal/port/database"
	"github.com/lettora/lettora/internal/port/messagequeue"
)

// resolveCacheTTL bounds how long a cached resolution may outlive its
// generation key after an invalidation raced it.
const resolveCacheTTL = 10 * time.Minute

// SectionService manages agreement section CRUD and three-tier resolution.
// Resolutions are cached per (agency, landlord, agreement type) behind a
// per-agency generation key, so any section write invalidates every cached
// resolution of that agency and type in one delete.
type SectionService struct {
	store database.Store
	cache cache.Cache
	queue messagequeue.Queue
}

// NewSectionService creates a new section service. cache and queue may be
// nil; caching and cross-instance invalidation are then disabled.
func NewSectionService(store database.Store, c cache.Cache, q messagequeue.Queue) *SectionService {
	return &SectionService{store: store, cache: c, queue: q}
}

// List returns the stored sections for one scope: the agency defaults when
// landlordID is empty, otherwise that landlord's overrides and customs.
func (s *SectionService) List(ctx context.Context, landlordID string, typ agreement.Type, includeInactive bool) ([]agreement.SectionRow, error) {
	return s.store.ListSections(ctx, landlordID, typ, includeInactive)
}

// Get returns a single stored section by ID.
func (s *SectionService) Get(ctx context.Context, id string) (*agreement.SectionRow, error) {
	return s.store.GetSection(ctx, id)
}

// Create inserts a new section. A duplicate key within the same
// (agency, landlord, agreement type) scope is rejected at write time so
// resolution never has to pick between ambiguous rows.
func (s *SectionService) Create(ctx context.Context, req *agreement.UpsertRequest) (*agreement.SectionRow, error) {
	row, err := rowFromRequest(req)
	if err != nil {
		return nil, err
	}
	created, err := s.store.CreateSection(ctx, row)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, created.LandlordID, created.Type)
	return created, nil
}

// Update replaces an existing section's editable fields. The key may be
// renamed; renaming into an occupied key fails with a conflict, like Create.
// The scope itself (landlord, agreement type) is fixed at creation: a request
// that tries to move the section to another scope is rejected.
func (s *SectionService) Update(ctx context.Context, id string, req *agreement.UpsertRequest) (*agreement.SectionRow, error) {
	row, err := rowFromRequest(req)
	if err != nil {
		return nil, err
	}
	existing, err := s.store.GetSection(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.LandlordID != "" && req.LandlordID != existing.LandlordID {
		return nil, fmt.Errorf("landlord_id cannot be changed after creation: %w", domain.ErrValidation)
	}
	if req.Type != "" && req.Type != existing.Type {
		return nil, fmt.Errorf("agreement_type cannot be changed after creation: %w", domain.ErrValidation)
	}
	row.ID = id
	row.LandlordID = existing.LandlordID
	row.Type = existing.Type
	updated, err := s.store.UpdateSection(ctx, row)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, updated.LandlordID, updated.Type)
	return updated, nil
}

// Delete removes a section. Deleting an override is non-destructive to the
// underlying default: the next resolution surfaces the default again simply
// because the override is gone.
func (s *SectionService) Delete(ctx context.Context, id string) error {
	row, err := s.store.GetSection(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteSection(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, row.LandlordID, row.Type)
	return nil
}

// Resolve merges agency defaults with the landlord's sections into the final
// ordered clause list. An empty landlordID resolves pure defaults (e.g. a
// pre-publish preview of the agency baseline). includeInactive is for editor
// review only and bypasses the cache.
func (s *SectionService) Resolve(ctx context.Context, landlordID string, typ agreement.Type, includeInactive bool) ([]agreement.ResolvedSection, error) {
	if !typ.Valid() {
		return nil, fmt.Errorf("unknown agreement type %q: %w", typ, domain.ErrValidation)
	}

	var key string
	if !includeInactive && s.cache != nil {
		key = s.resolveKey(ctx, landlordID, typ)
		if data, ok, err := s.cache.Get(ctx, key); err == nil && ok {
			var cached []agreement.ResolvedSection
			if err := json.Unmarshal(data, &cached); err == nil {
				return cached, nil
			}
		}
	}

	defaults, err := s.store.ListSections(ctx, "", typ, includeInactive)
	if err != nil {
		return nil, err
	}
	var landlord []agreement.SectionRow
	if landlordID != "" {
		landlord, err = s.store.ListSections(ctx, landlordID, typ, includeInactive)
		if err != nil {
			return nil, err
		}
	}

	resolved := MergeSections(defaults, landlord)

	if key != "" {
		if data, err := json.Marshal(resolved); err == nil {
			_ = s.cache.Set(ctx, key, data, resolveCacheTTL)
		}
	}
	return resolved, nil
}

// InvalidateScope drops the local cache generation for an agency/type pair.
// Wired to the sections-changed queue subject so writes on one instance
// invalidate resolutions cached on every other instance.
func (s *SectionService) InvalidateScope(agencyID string, typ agreement.Type) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Delete(context.Background(), genKey(agencyID, typ))
}

// resolveKey builds a cache key carrying the current generation, so a single
// generation delete orphans every cached resolution for the agency and type.
func (s *SectionService) resolveKey(ctx context.Context, landlordID string, typ agreement.Type) string {
	agencyID := middleware.AgencyIDFromContext(ctx)
	gk := genKey(agencyID, typ)

	gen, ok, err := s.cache.Get(ctx, gk)
	if err != nil || !ok {
		gen = []byte(uuid.NewString())
		_ = s.cache.Set(ctx, gk, gen, 0)
	}
	return fmt.Sprintf("resolve:%s:%s:%s:%s", agencyID, typ, landlordID, gen)
}

func genKey(agencyID string, typ agreement.Type) string {
	return fmt.Sprintf("gen:%s:%s", agencyID, typ)
}

// invalidate drops the local generation and announces the write to peers.
func (s *SectionService) invalidate(ctx context.Context, landlordID string, typ agreement.Type) {
	agencyID := middleware.AgencyIDFromContext(ctx)
	s.InvalidateScope(agencyID, typ)

	if s.queue == nil {
		return
	}
	evt := messagequeue.SectionsChangedEvent{
		AgencyID:   agencyID,
		LandlordID: landlordID,
		Type:       string(typ),
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return
	}
	if err := s.queue.Publish(ctx, messagequeue.SubjectSectionsChanged, data); err != nil {
		slog.Warn("failed to publish sections-changed event", "agency_id", agencyID, "error", err)
	}
}

// rowFromRequest validates an upsert request and shapes it into a row.
func rowFromRequest(req *agreement.UpsertRequest) (*agreement.SectionRow, error) {
	if req.Key == "" {
		return nil, fmt.Errorf("section_key is required: %w", domain.ErrValidation)
	}
	if req.Title == "" {
		return nil, fmt.Errorf("section_title is required: %w", domain.ErrValidation)
	}
	typ := req.Type
	if typ == "" {
		typ = agreement.TypeTenancy
	}
	if !typ.Valid() {
		return nil, fmt.Errorf("unknown agreement type %q: %w", req.Type, domain.ErrValidation)
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	return &agreement.SectionRow{
		LandlordID: req.LandlordID,
		Type:       typ,
		Key:        req.Key,
		Title:      req.Title,
		Content:    req.Content,
		Order:      req.Order,
		Active:     active,
	}, nil
}
