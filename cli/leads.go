// ABOUTME: Lead CLI commands
// ABOUTME: List scanned business cards and promote them into opportunities
package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"sheetcrm/store"
	"sheetcrm/workflow"
)

// ListLeadsCommand lists unfiled leads.
func ListLeadsCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("leads", flag.ExitOnError)
	query := fs.String("query", "", "Match against name or company")
	page := fs.Int("page", 1, "Page number")
	_ = fs.Parse(args)

	result, err := app.Contacts.SearchLeads(ctx, *query, *page)
	if err != nil {
		return fmt.Errorf("failed to search leads: %w", err)
	}

	if len(result.Data) == 0 {
		fmt.Println("No leads found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ROW\tNAME\tCOMPANY\tPOSITION\tMOBILE\tEMAIL")
	_, _ = fmt.Fprintln(w, "---\t----\t-------\t--------\t------\t-----")
	for _, l := range result.Data {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			l.RowIndex, l.Name, l.Company, l.Position, l.Mobile, l.Email)
	}
	_ = w.Flush()

	p := result.Pagination
	fmt.Printf("\nPage %d/%d (%d total)\n", p.Current, p.Total, p.TotalItems)
	return nil
}

// PromoteLeadCommand runs the promote workflow on one lead row.
func PromoteLeadCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("promote", flag.ExitOnError)
	row := fs.Int("row", 0, "Lead row index (required)")
	modifier := fs.String("modifier", "", "Your name (required)")
	name := fs.String("name", "", "Opportunity name (default: derived from company)")
	assignee := fs.String("assignee", "", "Assignee")
	oppType := fs.String("type", "", "Opportunity type")
	source := fs.String("source", "", "Opportunity source")
	stage := fs.String("stage", "", "Initial stage (default: first stage)")
	value := fs.String("value", "", "Opportunity value")
	closeDate := fs.String("close-date", "", "Expected close date")
	county := fs.String("county", "", "Company county, used only when the company is new")
	notes := fs.String("notes", "", "Notes")
	_ = fs.Parse(args)

	if *row == 0 {
		return fmt.Errorf("--row is required")
	}
	if *modifier == "" {
		return fmt.Errorf("--modifier is required")
	}

	res, err := app.Workflow.PromoteLead(ctx, *row, workflow.OpportunityInput{
		OpportunityName:   *name,
		Assignee:          *assignee,
		OpportunityType:   *oppType,
		OpportunitySource: *source,
		CurrentStage:      *stage,
		ExpectedCloseDate: *closeDate,
		OpportunityValue:  *value,
		Notes:             *notes,
		County:            *county,
	}, *modifier)
	if err != nil {
		return err
	}

	fmt.Printf("✓ Lead promoted: %s\n", res.Opportunity.OpportunityName)
	fmt.Printf("  Opportunity: %s\n", res.Opportunity.OpportunityID)
	fmt.Printf("  Company:     %s (%s)\n", res.Company.Name, res.Company.ID)
	fmt.Printf("  Contact:     %s (%s)\n", res.Contact.Name, res.Contact.ID)
	fmt.Printf("  Link:        %s\n", res.LinkID)
	return nil
}

// CreateOpportunityCommand runs the manual-input variant of the promote
// workflow, with contact details supplied on the command line.
func CreateOpportunityCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("create", flag.ExitOnError)
	contactName := fs.String("contact-name", "", "Contact name (required)")
	company := fs.String("company", "", "Company name (required)")
	modifier := fs.String("modifier", "", "Your name (required)")
	position := fs.String("position", "", "Contact position")
	department := fs.String("department", "", "Contact department")
	phone := fs.String("phone", "", "Contact phone")
	mobile := fs.String("mobile", "", "Contact mobile")
	email := fs.String("email", "", "Contact email")
	address := fs.String("address", "", "Company address")
	name := fs.String("name", "", "Opportunity name (default: derived from company)")
	assignee := fs.String("assignee", "", "Assignee")
	oppType := fs.String("type", "", "Opportunity type")
	source := fs.String("source", "", "Opportunity source")
	stage := fs.String("stage", "", "Initial stage (default: first stage)")
	value := fs.String("value", "", "Opportunity value")
	closeDate := fs.String("close-date", "", "Expected close date")
	county := fs.String("county", "", "Company county, used only when the company is new")
	notes := fs.String("notes", "", "Notes")
	_ = fs.Parse(args)

	if *contactName == "" || *company == "" {
		return fmt.Errorf("--contact-name and --company are required")
	}
	if *modifier == "" {
		return fmt.Errorf("--modifier is required")
	}

	src := store.ContactSource{
		Name:       *contactName,
		Company:    *company,
		Position:   *position,
		Department: *department,
		Phone:      *phone,
		Mobile:     *mobile,
		Email:      *email,
		Address:    *address,
	}
	res, err := app.Workflow.CreateOpportunity(ctx, src, workflow.OpportunityInput{
		OpportunityName:   *name,
		Assignee:          *assignee,
		OpportunityType:   *oppType,
		OpportunitySource: *source,
		CurrentStage:      *stage,
		ExpectedCloseDate: *closeDate,
		OpportunityValue:  *value,
		Notes:             *notes,
		County:            *county,
	}, *modifier)
	if err != nil {
		return err
	}

	fmt.Printf("✓ Opportunity created: %s (%s)\n", res.Opportunity.OpportunityName, res.Opportunity.OpportunityID)
	fmt.Printf("  Company: %s (%s)\n", res.Company.Name, res.Company.ID)
	fmt.Printf("  Contact: %s (%s)\n", res.Contact.Name, res.Contact.ID)
	return nil
}
