// ABOUTME: Contact and company CLI commands
// ABOUTME: Search the filed masters and apply partial edits
package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"sheetcrm/store"
)

// ListContactsCommand searches filed contacts with company names joined in.
func ListContactsCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("contacts", flag.ExitOnError)
	query := fs.String("query", "", "Match against contact or company name")
	page := fs.Int("page", 1, "Page number")
	_ = fs.Parse(args)

	result, err := app.Contacts.SearchFiled(ctx, *query, *page)
	if err != nil {
		return fmt.Errorf("failed to search contacts: %w", err)
	}

	if len(result.Data) == 0 {
		fmt.Println("No contacts found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tCOMPANY\tPOSITION\tMOBILE\tEMAIL")
	_, _ = fmt.Fprintln(w, "--\t----\t-------\t--------\t------\t-----")
	for _, c := range result.Data {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			c.ContactID, c.Name, c.CompanyName, c.Position, c.Mobile, c.Email)
	}
	_ = w.Flush()

	p := result.Pagination
	fmt.Printf("\nPage %d/%d (%d total)\n", p.Current, p.Total, p.TotalItems)
	return nil
}

// UpdateContactCommand applies a partial edit to a filed contact.
func UpdateContactCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("update-contact", flag.ExitOnError)
	id := fs.String("id", "", "Contact ID (required)")
	modifier := fs.String("modifier", "", "Your name (required)")
	department := fs.String("department", "", "New department")
	position := fs.String("position", "", "New position")
	mobile := fs.String("mobile", "", "New mobile")
	phone := fs.String("phone", "", "New phone")
	email := fs.String("email", "", "New email")
	_ = fs.Parse(args)

	if *id == "" || *modifier == "" {
		return fmt.Errorf("--id and --modifier are required")
	}

	var upd store.ContactUpdate
	set := func(dst **string, v *string) {
		if *v != "" {
			*dst = v
		}
	}
	set(&upd.Department, department)
	set(&upd.Position, position)
	set(&upd.Mobile, mobile)
	set(&upd.Phone, phone)
	set(&upd.Email, email)

	if err := app.ContactWrite.Update(ctx, *id, upd, *modifier); err != nil {
		return err
	}
	fmt.Printf("✓ Contact %s updated\n", *id)
	return nil
}

// ShowCompanyCommand prints a company with its contacts and opportunities.
func ShowCompanyCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("company", flag.ExitOnError)
	name := fs.String("name", "", "Company name (required)")
	_ = fs.Parse(args)

	if *name == "" {
		return fmt.Errorf("--name is required")
	}

	det, err := app.Dashboard.CompanyDetails(ctx, *name)
	if err != nil {
		return err
	}

	c := det.Company
	fmt.Printf("%s  %s\n", c.CompanyID, c.CompanyName)
	if c.Phone != "" {
		fmt.Printf("  Phone:   %s\n", c.Phone)
	}
	if c.Address != "" {
		fmt.Printf("  Address: %s\n", c.Address)
	}
	if c.County != "" {
		fmt.Printf("  County:  %s\n", c.County)
	}
	if c.Introduction != "" {
		fmt.Printf("  About:   %s\n", c.Introduction)
	}

	if len(det.Contacts) > 0 {
		fmt.Println("\nContacts:")
		for _, con := range det.Contacts {
			fmt.Printf("  %s  %s (%s)\n", con.ContactID, con.Name, con.Position)
		}
	}
	if len(det.Opportunities) > 0 {
		fmt.Println("\nOpportunities:")
		for _, o := range det.Opportunities {
			fmt.Printf("  %s  %s [%s]\n", o.OpportunityID, o.OpportunityName, o.CurrentStage)
		}
	}
	return nil
}

// UpdateCompanyCommand applies a partial edit to a company.
func UpdateCompanyCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("update-company", flag.ExitOnError)
	name := fs.String("name", "", "Company name (required)")
	modifier := fs.String("modifier", "", "Your name (required)")
	phone := fs.String("phone", "", "New phone")
	address := fs.String("address", "", "New address")
	county := fs.String("county", "", "New county")
	intro := fs.String("intro", "", "New introduction")
	_ = fs.Parse(args)

	if *name == "" || *modifier == "" {
		return fmt.Errorf("--name and --modifier are required")
	}

	var upd store.CompanyUpdate
	set := func(dst **string, v *string) {
		if *v != "" {
			*dst = v
		}
	}
	set(&upd.Phone, phone)
	set(&upd.Address, address)
	set(&upd.County, county)
	set(&upd.Introduction, intro)

	if err := app.CompanyWrite.Update(ctx, *name, upd, *modifier); err != nil {
		return err
	}
	fmt.Printf("✓ Company %s updated\n", *name)
	return nil
}
