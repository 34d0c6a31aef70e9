package service

import (
	"strconv"
	"strings"
	"time"

	"github.com/lettora/lettora/internal/domain/agreement"
	"github.com/lettora/lettora/internal/domain/letting"
)

// ContextInput bundles the records a render context is derived from. The
// same struct is used for real tenancy data and for synthetic preview data,
// so preview and production share one code path by construction.
type ContextInput struct {
	Tenancy  letting.Tenancy       `json:"tenancy"`
	Members  []letting.Member      `json:"members"`
	Property letting.Property      `json:"property"`
	Landlord letting.Landlord      `json:"landlord"`
	Agency   letting.AgencyProfile `json:"agency"`
}

// BuildRenderContext shapes tenancy, member, property, landlord and agency
// data into the variables/flags/lists bundle consumed by the renderer. It
// does no rendering and no I/O; all display formatting (dates, currency) is
// frozen into the context here so the render phase stays deterministic.
func BuildRenderContext(in ContextInput) *agreement.RenderContext {
	rctx := agreement.NewRenderContext()
	v := rctx.Variables

	v["property_address"] = joinAddress(in.Property.Address1, in.Property.Address2, in.Property.City, in.Property.Postcode)
	v["property_postcode"] = in.Property.Postcode
	v["property_city"] = in.Property.City

	v["landlord_name"] = in.Landlord.Name
	v["landlord_address"] = in.Landlord.Address
	v["landlord_email"] = in.Landlord.Email
	v["landlord_phone"] = in.Landlord.Phone

	v["agency_name"] = in.Agency.CompanyName
	v["agency_reg_no"] = in.Agency.CompanyRegNo
	v["agency_address"] = in.Agency.Address
	v["agency_phone"] = in.Agency.Phone
	v["agency_email"] = in.Agency.Email
	v["agency_website"] = in.Agency.Website

	v["bank_account_name"] = in.Landlord.BankAccountName
	v["bank_account_number"] = in.Landlord.BankAccountNumber
	v["bank_sort_code"] = in.Landlord.BankSortCode
	v["payment_reference"] = in.Landlord.PaymentReferenceTag

	v["start_date"] = formatDate(in.Tenancy.StartDate)
	v["end_date"] = formatDate(in.Tenancy.EndDate)
	v["rent_pcm"] = formatPence(in.Tenancy.RentPCMPence)
	v["deposit_amount"] = formatPence(in.Tenancy.DepositPence)
	v["deposit_scheme"] = in.Tenancy.DepositScheme
	v["tenant_count"] = strconv.Itoa(len(in.Members))

	rctx.Flags["room_only"] = in.Tenancy.Type == letting.TenancyRoomOnly
	rctx.Flags["whole_house"] = in.Tenancy.Type != letting.TenancyRoomOnly
	rctx.Flags["fixed_term"] = !in.Tenancy.EndDate.IsZero()
	rctx.Flags["rolling_monthly"] = in.Tenancy.EndDate.IsZero()
	rctx.Flags["utilities_cap"] = in.Landlord.UtilitiesCap
	rctx.Flags["council_tax_included"] = in.Landlord.CouncilTaxIncluded
	rctx.Flags["individual_rents"] = hasDifferingAmounts(in.Members, func(m letting.Member) int64 { return m.RentPPPWPence })
	rctx.Flags["individual_deposits"] = hasDifferingAmounts(in.Members, func(m letting.Member) int64 { return m.DepositPence })

	tenants := make([]map[string]string, 0, len(in.Members))
	for _, m := range in.Members {
		rec := map[string]string{
			"name":           m.Name,
			"email":          m.Email,
			"phone":          m.Phone,
			"room":           m.Room,
			"rent_pppw":      formatPence(m.RentPPPWPence),
			"deposit_amount": formatPence(m.DepositPence),
			"is_primary":     strconv.FormatBool(m.IsPrimary),
		}
		if m.IsPrimary {
			v["primary_tenant_name"] = m.Name
			v["primary_tenant_email"] = m.Email
			v["primary_tenant_phone"] = m.Phone
			v["primary_tenant_room"] = m.Room
		}
		tenants = append(tenants, rec)
	}
	rctx.Lists["tenants"] = tenants

	return rctx
}

// joinAddress joins the non-empty address parts with commas.
func joinAddress(parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}

// formatDate renders a date as "2 January 2006". Zero times render empty so
// a rolling tenancy never shows a bogus end date.
func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2 January 2006")
}

// formatPence renders a pence amount as a pound display string with
// thousands separators, e.g. 123456 -> "£1,234.56". Zero renders empty so
// unset amounts degrade to blank fields rather than "£0.00".
func formatPence(p int64) string {
	if p == 0 {
		return ""
	}
	neg := p < 0
	if neg {
		p = -p
	}
	pounds := p / 100
	pence := p % 100

	digits := strconv.FormatInt(pounds, 10)
	var sb strings.Builder
	if neg {
		sb.WriteByte('-')
	}
	sb.WriteString("£")
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			sb.WriteByte(',')
		}
		sb.WriteRune(d)
	}
	sb.WriteByte('.')
	if pence < 10 {
		sb.WriteByte('0')
	}
	sb.WriteString(strconv.FormatInt(pence, 10))
	return sb.String()
}

// hasDifferingAmounts reports whether members carry more than one distinct
// value for the given amount, i.e. the agreement needs per-tenant figures.
func hasDifferingAmounts(members []letting.Member, amount func(letting.Member) int64) bool {
	if len(members) < 2 {
		return false
	}
	first := amount(members[0])
	for _, m := range members[1:] {
		if amount(m) != first {
			return true
		}
	}
	return false
}
