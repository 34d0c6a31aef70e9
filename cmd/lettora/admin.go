package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/lettora/lettora/internal/adapter/postgres"
	"github.com/lettora/lettora/internal/config"
	"github.com/lettora/lettora/internal/domain/agreement"
	"github.com/lettora/lettora/internal/middleware"
	"github.com/lettora/lettora/internal/service"
)

// runAdmin dispatches admin subcommands (list-sections, seed-sections).
func runAdmin(cfg *config.Config, args []string) error {
	if len(args) == 0 || args[0] == "help" || args[0] == "--help" {
		printAdminHelp()
		return nil
	}

	switch args[0] {
	case "list-sections":
		return runAdminListSections(cfg, args[1:])
	case "seed-sections":
		return runAdminSeedSections(cfg, args[1:])
	default:
		printAdminHelp()
		return fmt.Errorf("unknown admin command: %s", args[0])
	}
}

func printAdminHelp() {
	fmt.Fprintf(os.Stderr, `Usage: lettora admin <command> [options]

Commands:
  list-sections   List stored agreement sections for a scope
  seed-sections   Install the starter set of agency-default clauses
  help            Show this help message

Examples:
  lettora admin list-sections
  lettora admin list-sections --landlord 4f6c... --type guarantor_agreement
  lettora admin seed-sections --agency 9a1b...
`)
}

func loadAdminDeps(cfg *config.Config) (*service.SectionService, func(), error) {
	ctx := context.Background()
	if err := postgres.RunMigrations(ctx, cfg.Postgres.DSN); err != nil {
		return nil, nil, fmt.Errorf("run migrations: %w", err)
	}
	pool, err := postgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}

	store := postgres.NewStore(pool)
	sectionSvc := service.NewSectionService(store, nil, nil)

	cleanup := func() {
		pool.Close()
	}
	return sectionSvc, cleanup, nil
}

func runAdminListSections(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("list-sections", flag.ContinueOnError)
	agency := fs.String("agency", middleware.DefaultAgencyID, "agency ID")
	landlord := fs.String("landlord", "", "landlord ID (empty lists agency defaults)")
	typ := fs.String("type", string(agreement.TypeTenancy), "agreement type")
	all := fs.Bool("all", false, "include inactive sections")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if !agreement.Type(*typ).Valid() {
		return fmt.Errorf("unknown agreement type %q", *typ)
	}

	sectionSvc, cleanup, err := loadAdminDeps(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := middleware.WithAgencyID(context.Background(), *agency)
	rows, err := sectionSvc.List(ctx, *landlord, agreement.Type(*typ), *all)
	if err != nil {
		return fmt.Errorf("list sections: %w", err)
	}

	if len(rows) == 0 {
		fmt.Println("No sections found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tKEY\tTITLE\tORDER\tACTIVE\tLANDLORD")
	for i := range rows {
		scope := rows[i].LandlordID
		if scope == "" {
			scope = "(default)"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%g\t%t\t%s\n",
			rows[i].ID, rows[i].Key, rows[i].Title, rows[i].Order, rows[i].Active, scope)
	}
	return w.Flush()
}

// starterSections is the baseline clause set installed for a new agency.
// Content uses the template grammar; editors refine it from there.
var starterSections = []agreement.UpsertRequest{
	{Key: "parties", Title: "The Parties", Order: 1, Content: "<p>This agreement is between {{landlord_name}} (the Landlord) and {{primary_tenant_name}}{{#if tenants}} and the tenants listed below{{/if}}, managed by {{agency_name}}.</p>"},
	{Key: "property", Title: "The Property", Order: 2, Content: "<p>The dwelling at {{property_address}}{{#if_room_only}}, room {{primary_tenant_room}}{{/if_room_only}}.</p>"},
	{Key: "term", Title: "Term", Order: 3, Content: "<p>The tenancy starts on {{start_date}}{{#if fixed_term}} and ends on {{end_date}}{{/if}}{{#if rolling_monthly}} and continues monthly until ended by notice{{/if}}.</p>"},
	{Key: "rent", Title: "Rent", Order: 4, Content: "<p>The rent is {{rent_pcm}} per calendar month, payable to {{bank_account_name}}, account {{bank_account_number}}, sort code {{bank_sort_code}}, reference {{payment_reference}}.</p>"},
	{Key: "deposit", Title: "Deposit", Order: 5, Content: "<p>A deposit of {{deposit_amount}} is held under the {{deposit_scheme}} scheme.</p>"},
	{Key: "utilities", Title: "Utilities", Order: 6, Content: "<p>{{#if utilities_cap}}Utility bills are included subject to a fair-use cap.{{/if}}{{#if council_tax_included}}Council tax is included in the rent.{{/if}}</p>"},
	{Key: "tenants", Title: "Tenants", Order: 7, Content: "<ul>{{#each tenants}}<li>{{name}}{{#if room}} ({{room}}){{/if}}</li>{{/each}}</ul>"},
}

func runAdminSeedSections(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("seed-sections", flag.ContinueOnError)
	agency := fs.String("agency", middleware.DefaultAgencyID, "agency ID to seed")
	typ := fs.String("type", string(agreement.TypeTenancy), "agreement type")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if !agreement.Type(*typ).Valid() {
		return fmt.Errorf("unknown agreement type %q", *typ)
	}

	sectionSvc, cleanup, err := loadAdminDeps(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := middleware.WithAgencyID(context.Background(), *agency)
	seeded := 0
	for _, req := range starterSections {
		req.Type = agreement.Type(*typ)
		if _, err := sectionSvc.Create(ctx, &req); err != nil {
			fmt.Fprintf(os.Stderr, "skip %s: %v\n", req.Key, err)
			continue
		}
		seeded++
	}

	fmt.Fprintf(os.Stderr, "Seeded %d of %d sections for agency %s\n", seeded, len(starterSections), *agency)
	return nil
}
