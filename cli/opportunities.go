// ABOUTME: Opportunity CLI commands
// ABOUTME: List, inspect, edit, stage moves, delete, and contact links
package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"sheetcrm/store"
)

// ListOpportunitiesCommand searches and lists opportunities.
func ListOpportunitiesCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	query := fs.String("query", "", "Match against opportunity name, company, or ID")
	assignee := fs.String("assignee", "", "Filter by assignee")
	oppType := fs.String("type", "", "Filter by opportunity type")
	stage := fs.String("stage", "", "Filter by stage")
	page := fs.Int("page", 1, "Page number")
	_ = fs.Parse(args)

	result, err := app.Opportunities.Search(ctx, *query, *page, store.OpportunityFilters{
		Assignee: *assignee,
		Type:     *oppType,
		Stage:    *stage,
	})
	if err != nil {
		return fmt.Errorf("failed to search opportunities: %w", err)
	}

	if len(result.Data) == 0 {
		fmt.Println("No opportunities found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tCOMPANY\tSTAGE\tASSIGNEE\tSTATUS\tROW")
	_, _ = fmt.Fprintln(w, "--\t----\t-------\t-----\t--------\t------\t---")
	for _, o := range result.Data {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%d\n",
			o.OpportunityID, o.OpportunityName, o.CustomerCompany,
			o.CurrentStage, o.Assignee, o.CurrentStatus, o.RowIndex)
	}
	_ = w.Flush()

	p := result.Pagination
	fmt.Printf("\nPage %d/%d (%d total)\n", p.Current, p.Total, p.TotalItems)
	return nil
}

// ShowOpportunityCommand prints the full drill-down of one opportunity.
func ShowOpportunityCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	id := fs.String("id", "", "Opportunity ID (required)")
	_ = fs.Parse(args)

	if *id == "" {
		return fmt.Errorf("--id is required")
	}

	det, err := app.Dashboard.OpportunityDetails(ctx, *id)
	if err != nil {
		return err
	}

	o := det.Opportunity
	fmt.Printf("%s  %s\n", o.OpportunityID, o.OpportunityName)
	fmt.Printf("  Company:  %s\n", o.CustomerCompany)
	fmt.Printf("  Contact:  %s (%s)\n", o.MainContact, o.ContactPhone)
	fmt.Printf("  Assignee: %s\n", o.Assignee)
	fmt.Printf("  Stage:    %s\n", o.CurrentStage)
	fmt.Printf("  Status:   %s\n", o.CurrentStatus)
	if o.OpportunityValue != "" {
		fmt.Printf("  Value:    %s\n", o.OpportunityValue)
	}
	if det.Parent != nil {
		fmt.Printf("  Parent:   %s %s\n", det.Parent.OpportunityID, det.Parent.OpportunityName)
	}
	for _, c := range det.Children {
		fmt.Printf("  Child:    %s %s\n", c.OpportunityID, c.OpportunityName)
	}

	if len(det.Contacts) > 0 {
		fmt.Println("\nLinked contacts:")
		for _, c := range det.Contacts {
			fmt.Printf("  %s  %s (%s)\n", c.ContactID, c.Name, c.CompanyName)
		}
	}
	if len(det.Interactions) > 0 {
		fmt.Println("\nRecent interactions:")
		for i, it := range det.Interactions {
			if i >= 5 {
				break
			}
			fmt.Printf("  %s  [%s] %s\n", it.InteractionTime, it.EventType, it.EventTitle)
		}
	}
	if len(det.EventLogs) > 0 {
		fmt.Printf("\nEvent logs: %d\n", len(det.EventLogs))
	}
	return nil
}

// UpdateOpportunityCommand applies a partial edit, auditing stage changes.
func UpdateOpportunityCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("update", flag.ExitOnError)
	row := fs.Int("row", 0, "Row index of the opportunity (required)")
	modifier := fs.String("modifier", "", "Your name (required)")
	name := fs.String("name", "", "New opportunity name")
	stage := fs.String("stage", "", "New stage")
	status := fs.String("status", "", "New status")
	assignee := fs.String("assignee", "", "New assignee")
	value := fs.String("value", "", "New value")
	closeDate := fs.String("close-date", "", "New expected close date")
	notes := fs.String("notes", "", "New notes")
	_ = fs.Parse(args)

	if *row == 0 {
		return fmt.Errorf("--row is required")
	}
	if *modifier == "" {
		return fmt.Errorf("--modifier is required")
	}

	var upd store.OpportunityUpdate
	set := func(dst **string, v *string) {
		if *v != "" {
			*dst = v
		}
	}
	set(&upd.OpportunityName, name)
	set(&upd.CurrentStage, stage)
	set(&upd.CurrentStatus, status)
	set(&upd.Assignee, assignee)
	set(&upd.OpportunityValue, value)
	set(&upd.ExpectedCloseDate, closeDate)
	set(&upd.Notes, notes)

	updated, err := app.Workflow.UpdateOpportunity(ctx, *row, upd, *modifier)
	if err != nil {
		return err
	}

	fmt.Printf("✓ Opportunity updated: %s (%s)\n", updated.OpportunityName, updated.OpportunityID)
	return nil
}

// MoveStageCommand moves several opportunities to new stages in one batch.
// Each positional argument is row:stage.
func MoveStageCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("move-stage", flag.ExitOnError)
	modifier := fs.String("modifier", "", "Your name (required)")
	_ = fs.Parse(args)

	if *modifier == "" {
		return fmt.Errorf("--modifier is required")
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("usage: move-stage --modifier NAME row:stage [row:stage ...]")
	}

	var updates []store.StageUpdate
	for _, arg := range fs.Args() {
		var row int
		var stage string
		if _, err := fmt.Sscanf(arg, "%d:%s", &row, &stage); err != nil {
			return fmt.Errorf("bad argument %q, want row:stage", arg)
		}
		updates = append(updates, store.StageUpdate{RowIndex: row, Stage: stage, Modifier: *modifier})
	}

	succeeded, failed, err := app.OpportunityWrite.UpdateStages(ctx, updates)
	if err != nil {
		return err
	}
	fmt.Printf("✓ Stages moved: %d succeeded, %d failed\n", succeeded, failed)
	return nil
}

// DeleteOpportunityCommand removes an opportunity row.
func DeleteOpportunityCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	row := fs.Int("row", 0, "Row index of the opportunity (required)")
	modifier := fs.String("modifier", "", "Your name (required)")
	_ = fs.Parse(args)

	if *row == 0 {
		return fmt.Errorf("--row is required")
	}
	if *modifier == "" {
		return fmt.Errorf("--modifier is required")
	}

	if err := app.OpportunityWrite.Delete(ctx, *row, *modifier); err != nil {
		return err
	}
	fmt.Printf("✓ Opportunity at row %d deleted (subsequent row indexes have shifted)\n", *row)
	return nil
}

// LinkContactCommand links an existing contact to an opportunity.
func LinkContactCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("link-contact", flag.ExitOnError)
	oppID := fs.String("opportunity", "", "Opportunity ID (required)")
	contactID := fs.String("contact", "", "Contact ID (required)")
	modifier := fs.String("modifier", "", "Your name (required)")
	_ = fs.Parse(args)

	if *oppID == "" || *contactID == "" || *modifier == "" {
		return fmt.Errorf("--opportunity, --contact, and --modifier are required")
	}

	linkID, err := app.OpportunityWrite.LinkContact(ctx, *oppID, *contactID, *modifier)
	if err != nil {
		return err
	}
	fmt.Printf("✓ Contact linked (link ID: %s)\n", linkID)
	return nil
}

// UnlinkContactCommand removes the link between a contact and an opportunity.
func UnlinkContactCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("unlink-contact", flag.ExitOnError)
	oppID := fs.String("opportunity", "", "Opportunity ID (required)")
	contactID := fs.String("contact", "", "Contact ID (required)")
	_ = fs.Parse(args)

	if *oppID == "" || *contactID == "" {
		return fmt.Errorf("--opportunity and --contact are required")
	}

	if err := app.OpportunityWrite.UnlinkContact(ctx, *oppID, *contactID); err != nil {
		return err
	}
	fmt.Println("✓ Contact unlinked")
	return nil
}
