package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lettora/lettora/internal/domain/agreement"
)

// Store implements database.Store using PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new Store backed by the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const sectionColumns = `id, agency_id, COALESCE(landlord_id::text, ''), agreement_type, section_key, section_title, section_content, section_order, is_active`

// ListSections returns the section rows for one scope. An empty landlordID
// selects the agency-wide default rows. Inactive rows are excluded unless
// includeInactive is set.
func (s *Store) ListSections(ctx context.Context, landlordID string, typ agreement.Type, includeInactive bool) ([]agreement.SectionRow, error) {
	query := `SELECT ` + sectionColumns + `
		 FROM agreement_sections
		 WHERE agency_id = $1 AND agreement_type = $2
		   AND ($3 = '' AND landlord_id IS NULL OR landlord_id::text = $3)
		   AND (is_active OR $4)
		 ORDER BY section_order ASC, section_key ASC`

	rows, err := s.pool.Query(ctx, query, agencyFromCtx(ctx), string(typ), landlordID, includeInactive)
	if err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}
	defer rows.Close()

	var sections []agreement.SectionRow
	for rows.Next() {
		r, err := scanSection(rows)
		if err != nil {
			return nil, fmt.Errorf("scan section: %w", err)
		}
		sections = append(sections, r)
	}
	return sections, rows.Err()
}

// GetSection returns one section row by ID.
func (s *Store) GetSection(ctx context.Context, id string) (*agreement.SectionRow, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+sectionColumns+`
		 FROM agreement_sections WHERE id = $1 AND agency_id = $2`, id, agencyFromCtx(ctx))

	r, err := scanSection(row)
	if err != nil {
		return nil, notFoundWrap(err, "get section %s", id)
	}
	return &r, nil
}

// CreateSection inserts a new section row. A duplicate key within the same
// scope maps to domain.ErrConflict.
func (s *Store) CreateSection(ctx context.Context, req *agreement.SectionRow) (*agreement.SectionRow, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO agreement_sections (agency_id, landlord_id, agreement_type, section_key, section_title, section_content, section_order, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING `+sectionColumns,
		agencyFromCtx(ctx), nullIfEmpty(req.LandlordID), string(req.Type), req.Key, req.Title, req.Content, req.Order, req.Active)

	r, err := scanSection(row)
	if err != nil {
		return nil, conflictWrap(err, "create section %s", req.Key)
	}
	return &r, nil
}

// UpdateSection rewrites the editable fields of an existing section,
// including its key. Renaming into a key already taken in the same scope
// maps to domain.ErrConflict via the unique index.
func (s *Store) UpdateSection(ctx context.Context, req *agreement.SectionRow) (*agreement.SectionRow, error) {
	row := s.pool.QueryRow(ctx,
		`UPDATE agreement_sections
		 SET section_key = $3, section_title = $4, section_content = $5, section_order = $6, is_active = $7, updated_at = now()
		 WHERE id = $1 AND agency_id = $2
		 RETURNING `+sectionColumns,
		req.ID, agencyFromCtx(ctx), req.Key, req.Title, req.Content, req.Order, req.Active)

	r, err := scanSection(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFoundWrap(err, "update section %s", req.ID)
		}
		return nil, conflictWrap(err, "update section %s", req.ID)
	}
	return &r, nil
}

// DeleteSection removes a section row by ID.
func (s *Store) DeleteSection(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM agreement_sections WHERE id = $1 AND agency_id = $2`, id, agencyFromCtx(ctx))
	return execExpectOne(tag, err, "delete section %s", id)
}

func scanSection(row scannable) (agreement.SectionRow, error) {
	var r agreement.SectionRow
	err := row.Scan(&r.ID, &r.AgencyID, &r.LandlordID, &r.Type, &r.Key, &r.Title, &r.Content, &r.Order, &r.Active)
	return r, err
}
