package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/lettora/lettora/internal/domain"
	"github.com/lettora/lettora/internal/domain/agreement"
	"github.com/lettora/lettora/internal/domain/letting"
	"github.com/lettora/lettora/internal/service"
)

// fakeStore is an in-memory database.Store for handler tests.
type fakeStore struct {
	sections map[string]*agreement.SectionRow
	tenancy  *letting.Tenancy
	members  []letting.Member
	property *letting.Property
	landlord *letting.Landlord
	profile  *letting.AgencyProfile
}

func newFakeStore() *fakeStore {
	return &fakeStore{sections: make(map[string]*agreement.SectionRow)}
}

func (f *fakeStore) ListSections(_ context.Context, landlordID string, typ agreement.Type, includeInactive bool) ([]agreement.SectionRow, error) {
	var out []agreement.SectionRow
	for _, r := range f.sections {
		if r.LandlordID != landlordID || r.Type != typ {
			continue
		}
		if !r.Active && !includeInactive {
			continue
		}
		out = append(out, *r)
	}
	return out, nil
}

func (f *fakeStore) GetSection(_ context.Context, id string) (*agreement.SectionRow, error) {
	r, ok := f.sections[id]
	if !ok {
		return nil, fmt.Errorf("get section %s: %w", id, domain.ErrNotFound)
	}
	cp := *r
	return &cp, nil
}

func (f *fakeStore) CreateSection(_ context.Context, row *agreement.SectionRow) (*agreement.SectionRow, error) {
	for _, existing := range f.sections {
		if existing.LandlordID == row.LandlordID && existing.Type == row.Type && existing.Key == row.Key {
			return nil, fmt.Errorf("create section %s: %w", row.Key, domain.ErrConflict)
		}
	}
	cp := *row
	cp.ID = uuid.NewString()
	f.sections[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (f *fakeStore) UpdateSection(_ context.Context, row *agreement.SectionRow) (*agreement.SectionRow, error) {
	existing, ok := f.sections[row.ID]
	if !ok {
		return nil, fmt.Errorf("update section %s: %w", row.ID, domain.ErrNotFound)
	}
	for id, other := range f.sections {
		if id != row.ID && other.LandlordID == existing.LandlordID && other.Type == existing.Type && other.Key == row.Key {
			return nil, fmt.Errorf("update section %s: %w", row.ID, domain.ErrConflict)
		}
	}
	existing.Key = row.Key
	existing.Title = row.Title
	existing.Content = row.Content
	existing.Order = row.Order
	existing.Active = row.Active
	cp := *existing
	return &cp, nil
}

func (f *fakeStore) DeleteSection(_ context.Context, id string) error {
	if _, ok := f.sections[id]; !ok {
		return fmt.Errorf("delete section %s: %w", id, domain.ErrNotFound)
	}
	delete(f.sections, id)
	return nil
}

func (f *fakeStore) GetTenancy(_ context.Context, id string) (*letting.Tenancy, error) {
	if f.tenancy == nil || f.tenancy.ID != id {
		return nil, fmt.Errorf("get tenancy %s: %w", id, domain.ErrNotFound)
	}
	return f.tenancy, nil
}

func (f *fakeStore) ListTenancyMembers(_ context.Context, _ string) ([]letting.Member, error) {
	return f.members, nil
}

func (f *fakeStore) GetProperty(_ context.Context, _ string) (*letting.Property, error) {
	return f.property, nil
}

func (f *fakeStore) GetLandlord(_ context.Context, _ string) (*letting.Landlord, error) {
	return f.landlord, nil
}

func (f *fakeStore) GetAgencyProfile(_ context.Context) (*letting.AgencyProfile, error) {
	return f.profile, nil
}

// newTestRouter wires the full handler stack over a fake store.
func newTestRouter(store *fakeStore) *chi.Mux {
	sections := service.NewSectionService(store, nil, nil)
	documents := service.NewDocumentService(store, sections, nil, nil)
	r := chi.NewRouter()
	MountRoutes(r, NewHandlers(sections, documents))
	return r
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	router := newTestRouter(newFakeStore())
	rec := doJSON(t, router, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestListSectionsEmpty(t *testing.T) {
	router := newTestRouter(newFakeStore())

	rec := doJSON(t, router, http.MethodGet, "/api/v1/agreement-sections", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Errorf("empty list should encode as [], got %s", got)
	}
}

func TestCreateSection(t *testing.T) {
	router := newTestRouter(newFakeStore())

	rec := doJSON(t, router, http.MethodPost, "/api/v1/agreement-sections", agreement.UpsertRequest{
		Key: "deposit", Title: "Deposit", Content: "The deposit is {{deposit_amount}}.", Order: 2,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	var created agreement.SectionRow
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.ID == "" || created.Type != agreement.TypeTenancy || !created.Active {
		t.Errorf("unexpected created row: %+v", created)
	}
}

func TestCreateSectionDuplicateKey(t *testing.T) {
	router := newTestRouter(newFakeStore())

	body := agreement.UpsertRequest{Key: "deposit", Title: "Deposit"}
	if rec := doJSON(t, router, http.MethodPost, "/api/v1/agreement-sections", body); rec.Code != http.StatusCreated {
		t.Fatalf("first create: %d", rec.Code)
	}
	rec := doJSON(t, router, http.MethodPost, "/api/v1/agreement-sections", body)
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate key status = %d, want 409", rec.Code)
	}
}

func TestCreateSectionValidation(t *testing.T) {
	router := newTestRouter(newFakeStore())

	rec := doJSON(t, router, http.MethodPost, "/api/v1/agreement-sections", agreement.UpsertRequest{Title: "No key"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing key status = %d, want 400", rec.Code)
	}
}

func TestGetSectionNotFound(t *testing.T) {
	router := newTestRouter(newFakeStore())

	rec := doJSON(t, router, http.MethodGet, "/api/v1/agreement-sections/"+uuid.NewString(), nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestSectionUpdateAndDelete(t *testing.T) {
	router := newTestRouter(newFakeStore())

	rec := doJSON(t, router, http.MethodPost, "/api/v1/agreement-sections", agreement.UpsertRequest{
		Key: "rent", Title: "Rent", Order: 1,
	})
	var created agreement.SectionRow
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	rec = doJSON(t, router, http.MethodPut, "/api/v1/agreement-sections/"+created.ID, agreement.UpsertRequest{
		Key: "rent", Title: "Rent (revised)", Order: 1.5,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d: %s", rec.Code, rec.Body.String())
	}
	var updated agreement.SectionRow
	if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if updated.Title != "Rent (revised)" || updated.Order != 1.5 {
		t.Errorf("unexpected updated row: %+v", updated)
	}

	if rec := doJSON(t, router, http.MethodDelete, "/api/v1/agreement-sections/"+created.ID, nil); rec.Code != http.StatusNoContent {
		t.Errorf("delete status = %d, want 204", rec.Code)
	}
	if rec := doJSON(t, router, http.MethodGet, "/api/v1/agreement-sections/"+created.ID, nil); rec.Code != http.StatusNotFound {
		t.Errorf("get after delete = %d, want 404", rec.Code)
	}
}

func TestSectionUpdateRenamesKey(t *testing.T) {
	router := newTestRouter(newFakeStore())

	rec := doJSON(t, router, http.MethodPost, "/api/v1/agreement-sections", agreement.UpsertRequest{
		Key: "rent", Title: "Rent",
	})
	var created agreement.SectionRow
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec := doJSON(t, router, http.MethodPost, "/api/v1/agreement-sections", agreement.UpsertRequest{
		Key: "deposit", Title: "Deposit",
	}); rec.Code != http.StatusCreated {
		t.Fatalf("seed: %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPut, "/api/v1/agreement-sections/"+created.ID, agreement.UpsertRequest{
		Key: "rent_v2", Title: "Rent",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("rename status = %d: %s", rec.Code, rec.Body.String())
	}
	var renamed agreement.SectionRow
	if err := json.Unmarshal(rec.Body.Bytes(), &renamed); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if renamed.Key != "rent_v2" {
		t.Errorf("key = %q, want rent_v2", renamed.Key)
	}

	rec = doJSON(t, router, http.MethodPut, "/api/v1/agreement-sections/"+created.ID, agreement.UpsertRequest{
		Key: "deposit", Title: "Rent",
	})
	if rec.Code != http.StatusConflict {
		t.Errorf("rename into occupied key status = %d, want 409", rec.Code)
	}
}

func TestResolveSectionsProvenance(t *testing.T) {
	store := newFakeStore()
	router := newTestRouter(store)
	landlordID := uuid.NewString()

	seed := []agreement.UpsertRequest{
		{Key: "intro", Title: "Introduction", Order: 1},
		{Key: "rent", Title: "Rent", Order: 2},
		{LandlordID: landlordID, Key: "rent", Title: "Rent (special terms)", Order: 2},
		{LandlordID: landlordID, Key: "parking", Title: "Parking", Order: 1.5},
	}
	for _, s := range seed {
		if rec := doJSON(t, router, http.MethodPost, "/api/v1/agreement-sections", s); rec.Code != http.StatusCreated {
			t.Fatalf("seed %s: %d", s.Key, rec.Code)
		}
	}

	rec := doJSON(t, router, http.MethodGet, "/api/v1/agreement-sections/resolve?landlord_id="+landlordID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var resolved []agreement.ResolvedSection
	if err := json.Unmarshal(rec.Body.Bytes(), &resolved); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resolved) != 3 {
		t.Fatalf("expected 3 resolved sections, got %d", len(resolved))
	}

	wantOrder := []struct {
		key        string
		provenance agreement.Provenance
	}{
		{"intro", agreement.ProvenanceDefault},
		{"parking", agreement.ProvenanceCustom},
		{"rent", agreement.ProvenanceOverride},
	}
	for i, want := range wantOrder {
		if resolved[i].Key != want.key || resolved[i].Provenance != want.provenance {
			t.Errorf("position %d: got (%s, %s), want (%s, %s)",
				i, resolved[i].Key, resolved[i].Provenance, want.key, want.provenance)
		}
	}
}

func TestResolveUnknownType(t *testing.T) {
	router := newTestRouter(newFakeStore())

	rec := doJSON(t, router, http.MethodGet, "/api/v1/agreement-sections/resolve?type=licence_agreement", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestPreviewAgreement(t *testing.T) {
	store := newFakeStore()
	router := newTestRouter(store)

	if rec := doJSON(t, router, http.MethodPost, "/api/v1/agreement-sections", agreement.UpsertRequest{
		Key: "rent", Title: "Rent", Content: "Monthly rent: {{rent_pcm}}.", Order: 1,
	}); rec.Code != http.StatusCreated {
		t.Fatalf("seed: %d", rec.Code)
	}

	rec := doJSON(t, router, http.MethodPost, "/api/v1/agreement-preview", service.PreviewRequest{
		Input: service.ContextInput{
			Tenancy: letting.Tenancy{
				Type:         letting.TenancyWholeHouse,
				StartDate:    time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
				RentPCMPence: 95000,
			},
			Property: letting.Property{Address1: "12 Test Street", Postcode: "LS1 1AA"},
			Landlord: letting.Landlord{Name: "Test Landlord"},
			Agency:   letting.AgencyProfile{CompanyName: "Test Lettings"},
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var doc agreement.Document
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(doc.Sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(doc.Sections))
	}
	if doc.Sections[0].HTML != "Monthly rent: £950.00." {
		t.Errorf("rendered HTML = %q", doc.Sections[0].HTML)
	}
	if len(doc.Warnings) != 0 {
		t.Errorf("unexpected warnings: %+v", doc.Warnings)
	}
}

func TestGenerateAgreementFromTenancy(t *testing.T) {
	store := newFakeStore()
	tenancyID := uuid.NewString()
	store.tenancy = &letting.Tenancy{
		ID:           tenancyID,
		PropertyID:   uuid.NewString(),
		LandlordID:   uuid.NewString(),
		Type:         letting.TenancyRoomOnly,
		StartDate:    time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		RentPCMPence: 52000,
	}
	store.members = []letting.Member{{Name: "Alice Example", Room: "Room 2", IsPrimary: true}}
	store.property = &letting.Property{Address1: "5 Hill Road", City: "Leeds", Postcode: "LS6 2AB"}
	store.landlord = &letting.Landlord{Name: "Test Landlord"}
	store.profile = &letting.AgencyProfile{CompanyName: "Test Lettings"}
	router := newTestRouter(store)

	if rec := doJSON(t, router, http.MethodPost, "/api/v1/agreement-sections", agreement.UpsertRequest{
		Key: "parties", Title: "Parties", Content: "{{primary_tenant_name}} lets {{#if_room_only}}{{primary_tenant_room}} at {{/if_room_only}}{{property_address}}.", Order: 1,
	}); rec.Code != http.StatusCreated {
		t.Fatalf("seed: %d", rec.Code)
	}

	rec := doJSON(t, router, http.MethodPost, "/api/v1/tenancies/"+tenancyID+"/agreement", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var doc agreement.Document
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := "Alice Example lets Room 2 at 5 Hill Road, Leeds, LS6 2AB."
	if doc.Sections[0].HTML != want {
		t.Errorf("rendered HTML = %q, want %q", doc.Sections[0].HTML, want)
	}
}

func TestGenerateAgreementUnknownTenancy(t *testing.T) {
	router := newTestRouter(newFakeStore())

	rec := doJSON(t, router, http.MethodPost, "/api/v1/tenancies/"+uuid.NewString()+"/agreement", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
