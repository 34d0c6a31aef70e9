// Package letting defines the read-only data models the agreement engine
// consumes: landlords, properties, tenancies and their members, plus the
// per-agency company profile. These records are owned by other parts of the
// platform; the engine only reads them.
package letting

import "time"

// TenancyType distinguishes a whole-property let from a room-only let.
type TenancyType string

const (
	TenancyWholeHouse TenancyType = "whole_house"
	TenancyRoomOnly   TenancyType = "room_only"
)

// Tenancy is one letting of a property. A zero EndDate means the tenancy is
// a rolling monthly arrangement rather than a fixed term.
type Tenancy struct {
	ID            string      `json:"id"`
	AgencyID      string      `json:"agency_id"`
	PropertyID    string      `json:"property_id"`
	LandlordID    string      `json:"landlord_id"`
	Type          TenancyType `json:"tenancy_type"`
	StartDate     time.Time   `json:"start_date"`
	EndDate       time.Time   `json:"end_date,omitzero"`
	RentPCMPence  int64       `json:"rent_pcm_pence"`
	DepositPence  int64       `json:"deposit_pence"`
	DepositScheme string      `json:"deposit_scheme"`
}

// Member is one tenant on a tenancy. RentPPPWPence and DepositPence are the
// member's individual amounts; they may differ between members of the same
// tenancy.
type Member struct {
	ID            string `json:"id"`
	TenancyID     string `json:"tenancy_id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Room          string `json:"room"`
	RentPPPWPence int64  `json:"rent_pppw_pence"`
	DepositPence  int64  `json:"deposit_pence"`
	IsPrimary     bool   `json:"is_primary"`
}

// Property is the let dwelling.
type Property struct {
	ID         string `json:"id"`
	AgencyID   string `json:"agency_id"`
	LandlordID string `json:"landlord_id"`
	Address1   string `json:"address1"`
	Address2   string `json:"address2"`
	City       string `json:"city"`
	Postcode   string `json:"postcode"`
}

// Landlord owns one or more properties managed by the agency. The boolean
// settings feed the generic template flags.
type Landlord struct {
	ID                  string `json:"id"`
	AgencyID            string `json:"agency_id"`
	Name                string `json:"name"`
	Address             string `json:"address"`
	Email               string `json:"email"`
	Phone               string `json:"phone"`
	UtilitiesCap        bool   `json:"utilities_cap"`
	CouncilTaxIncluded  bool   `json:"council_tax_included"`
	BankAccountName     string `json:"bank_account_name"`
	BankAccountNumber   string `json:"bank_account_number"`
	BankSortCode        string `json:"bank_sort_code"`
	PaymentReferenceTag string `json:"payment_reference_tag"`
}

// AgencyProfile carries the agency's own company and contact details for
// interpolation into agreement text.
type AgencyProfile struct {
	AgencyID     string `json:"agency_id"`
	CompanyName  string `json:"company_name"`
	CompanyRegNo string `json:"company_reg_no"`
	Address      string `json:"address"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	Website      string `json:"website"`
}
