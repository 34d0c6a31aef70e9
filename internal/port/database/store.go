// Package database defines the database store port (interface).
package database

import (
	"context"

	"github.com/lettora/lettora/internal/domain/agreement"
	"github.com/lettora/lettora/internal/domain/letting"
)

// Store is the port interface for database operations. Agreement sections
// are the only rows this subsystem writes; the letting records are read
// models owned by the rest of the platform.
type Store interface {
	// Agreement sections. An empty landlordID selects the agency-wide
	// default rows.
	ListSections(ctx context.Context, landlordID string, typ agreement.Type, includeInactive bool) ([]agreement.SectionRow, error)
	GetSection(ctx context.Context, id string) (*agreement.SectionRow, error)
	CreateSection(ctx context.Context, row *agreement.SectionRow) (*agreement.SectionRow, error)
	UpdateSection(ctx context.Context, row *agreement.SectionRow) (*agreement.SectionRow, error)
	DeleteSection(ctx context.Context, id string) error

	// Letting read models
	GetTenancy(ctx context.Context, id string) (*letting.Tenancy, error)
	ListTenancyMembers(ctx context.Context, tenancyID string) ([]letting.Member, error)
	GetProperty(ctx context.Context, id string) (*letting.Property, error)
	GetLandlord(ctx context.Context, id string) (*letting.Landlord, error)
	GetAgencyProfile(ctx context.Context) (*letting.AgencyProfile, error)
}
