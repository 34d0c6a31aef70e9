package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/lettora/lettora/internal/domain/letting"
)

// GetTenancy returns one tenancy by ID. A NULL end_date becomes the zero
// time, which the context builder reads as a rolling arrangement.
func (s *Store) GetTenancy(ctx context.Context, id string) (*letting.Tenancy, error) {
	var t letting.Tenancy
	var endDate *time.Time
	err := s.pool.QueryRow(ctx,
		`SELECT id, agency_id, property_id, landlord_id, tenancy_type, start_date, end_date,
		        rent_pcm_pence, deposit_pence, deposit_scheme
		 FROM tenancies WHERE id = $1 AND agency_id = $2`, id, agencyFromCtx(ctx),
	).Scan(&t.ID, &t.AgencyID, &t.PropertyID, &t.LandlordID, &t.Type, &t.StartDate,
		&endDate, &t.RentPCMPence, &t.DepositPence, &t.DepositScheme)
	if err != nil {
		return nil, notFoundWrap(err, "get tenancy %s", id)
	}
	if endDate != nil {
		t.EndDate = *endDate
	}
	return &t, nil
}

// ListTenancyMembers returns the tenants on a tenancy, primary first.
func (s *Store) ListTenancyMembers(ctx context.Context, tenancyID string) ([]letting.Member, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT m.id, m.tenancy_id, m.name, m.email, m.phone, m.room,
		        m.rent_pppw_pence, m.deposit_pence, m.is_primary
		 FROM tenancy_members m
		 JOIN tenancies t ON t.id = m.tenancy_id
		 WHERE m.tenancy_id = $1 AND t.agency_id = $2
		 ORDER BY m.is_primary DESC, m.name ASC`, tenancyID, agencyFromCtx(ctx))
	if err != nil {
		return nil, fmt.Errorf("list tenancy members: %w", err)
	}
	defer rows.Close()

	var members []letting.Member
	for rows.Next() {
		var m letting.Member
		if err := rows.Scan(&m.ID, &m.TenancyID, &m.Name, &m.Email, &m.Phone, &m.Room,
			&m.RentPPPWPence, &m.DepositPence, &m.IsPrimary); err != nil {
			return nil, fmt.Errorf("scan tenancy member: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// GetProperty returns one property by ID.
func (s *Store) GetProperty(ctx context.Context, id string) (*letting.Property, error) {
	var p letting.Property
	err := s.pool.QueryRow(ctx,
		`SELECT id, agency_id, landlord_id, address1, address2, city, postcode
		 FROM properties WHERE id = $1 AND agency_id = $2`, id, agencyFromCtx(ctx),
	).Scan(&p.ID, &p.AgencyID, &p.LandlordID, &p.Address1, &p.Address2, &p.City, &p.Postcode)
	if err != nil {
		return nil, notFoundWrap(err, "get property %s", id)
	}
	return &p, nil
}

// GetLandlord returns one landlord by ID.
func (s *Store) GetLandlord(ctx context.Context, id string) (*letting.Landlord, error) {
	var l letting.Landlord
	err := s.pool.QueryRow(ctx,
		`SELECT id, agency_id, name, address, email, phone,
		        utilities_cap, council_tax_included,
		        bank_account_name, bank_account_number, bank_sort_code, payment_reference_tag
		 FROM landlords WHERE id = $1 AND agency_id = $2`, id, agencyFromCtx(ctx),
	).Scan(&l.ID, &l.AgencyID, &l.Name, &l.Address, &l.Email, &l.Phone,
		&l.UtilitiesCap, &l.CouncilTaxIncluded,
		&l.BankAccountName, &l.BankAccountNumber, &l.BankSortCode, &l.PaymentReferenceTag)
	if err != nil {
		return nil, notFoundWrap(err, "get landlord %s", id)
	}
	return &l, nil
}

// GetAgencyProfile returns the company profile for the agency in context.
func (s *Store) GetAgencyProfile(ctx context.Context) (*letting.AgencyProfile, error) {
	aid := agencyFromCtx(ctx)
	var p letting.AgencyProfile
	err := s.pool.QueryRow(ctx,
		`SELECT agency_id, company_name, company_reg_no, address, phone, email, website
		 FROM agency_profiles WHERE agency_id = $1`, aid,
	).Scan(&p.AgencyID, &p.CompanyName, &p.CompanyRegNo, &p.Address, &p.Phone, &p.Email, &p.Website)
	if err != nil {
		return nil, notFoundWrap(err, "get agency profile %s", aid)
	}
	return &p, nil
}
