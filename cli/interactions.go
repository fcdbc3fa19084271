// ABOUTME: Interaction and event-log CLI commands
// ABOUTME: Record and search activity against opportunities
package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"sheetcrm/models"
	"sheetcrm/store"
)

// ListInteractionsCommand searches interactions.
func ListInteractionsCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("interactions", flag.ExitOnError)
	query := fs.String("query", "", "Match against title, summary, or opportunity name")
	page := fs.Int("page", 1, "Page number")
	_ = fs.Parse(args)

	result, err := app.Interactions.Search(ctx, *query, *page)
	if err != nil {
		return fmt.Errorf("failed to search interactions: %w", err)
	}

	if len(result.Data) == 0 {
		fmt.Println("No interactions found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "TIME\tTYPE\tTITLE\tOPPORTUNITY\tRECORDER\tROW")
	_, _ = fmt.Fprintln(w, "----\t----\t-----\t-----------\t--------\t---")
	for _, it := range result.Data {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\n",
			it.InteractionTime, it.EventType, it.EventTitle, it.OpportunityName, it.Recorder, it.RowIndex)
	}
	_ = w.Flush()

	p := result.Pagination
	fmt.Printf("\nPage %d/%d (%d total)\n", p.Current, p.Total, p.TotalItems)
	return nil
}

// AddInteractionCommand records a manual interaction.
func AddInteractionCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("add-interaction", flag.ExitOnError)
	oppID := fs.String("opportunity", "", "Opportunity ID (required)")
	title := fs.String("title", "", "Event title (required)")
	modifier := fs.String("modifier", "", "Your name (required)")
	eventType := fs.String("type", "", "Event type")
	summary := fs.String("summary", "", "Content summary")
	participants := fs.String("participants", "", "Participants")
	nextAction := fs.String("next", "", "Next action")
	when := fs.String("time", "", "Interaction time (default: now)")
	_ = fs.Parse(args)

	if *oppID == "" || *title == "" || *modifier == "" {
		return fmt.Errorf("--opportunity, --title, and --modifier are required")
	}

	id, err := app.InteractionWrite.Create(ctx, models.Interaction{
		OpportunityID:   *oppID,
		InteractionTime: *when,
		EventType:       *eventType,
		EventTitle:      *title,
		ContentSummary:  *summary,
		Participants:    *participants,
		NextAction:      *nextAction,
		Recorder:        *modifier,
	})
	if err != nil {
		return err
	}
	fmt.Printf("✓ Interaction recorded: %s\n", id)
	return nil
}

// AddEventLogCommand records a visit report and its auxiliary interaction.
func AddEventLogCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("add-event", flag.ExitOnError)
	name := fs.String("name", "", "Event name (required)")
	oppID := fs.String("opportunity", "", "Opportunity ID (required)")
	modifier := fs.String("modifier", "", "Your name (required)")
	probability := fs.String("probability", "", "Order probability")
	quantity := fs.String("quantity", "", "Potential quantity")
	channel := fs.String("channel", "", "Sales channel")
	ours := fs.String("ours", "", "Our participants")
	clients := fs.String("clients", "", "Client participants")
	place := fs.String("place", "", "Visit place")
	lineFeatures := fs.String("line-features", "", "Comma-separated line features")
	painPoints := fs.String("pain-points", "", "Comma-separated pain points")
	summary := fs.String("summary", "", "Summary notes")
	_ = fs.Parse(args)

	if *name == "" || *oppID == "" || *modifier == "" {
		return fmt.Errorf("--name, --opportunity, and --modifier are required")
	}

	in := store.EventLogInput{
		EventName:          *name,
		OpportunityID:      *oppID,
		OrderProbability:   *probability,
		PotentialQuantity:  *quantity,
		SalesChannel:       *channel,
		OurParticipants:    *ours,
		ClientParticipants: *clients,
		VisitPlace:         *place,
		LineFeatures:       splitList(*lineFeatures),
		PainPoints:         splitList(*painPoints),
		SummaryNotes:       *summary,
	}
	id, err := app.EventLogWrite.Create(ctx, in, *modifier)
	if err != nil {
		return err
	}

	// Auxiliary audit entry, best-effort like the workflow's.
	if _, auditErr := app.InteractionWrite.Create(ctx, models.Interaction{
		OpportunityID:  *oppID,
		EventType:      "事件紀錄",
		EventTitle:     *name,
		ContentSummary: fmt.Sprintf("事件紀錄「%s」已建立", *name),
		Recorder:       *modifier,
	}); auditErr != nil {
		fmt.Printf("  Warning: audit interaction not recorded: %v\n", auditErr)
	}

	fmt.Printf("✓ Event log recorded: %s\n", id)
	return nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
