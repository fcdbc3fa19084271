// ABOUTME: Dashboard and reporting CLI commands
// ABOUTME: Overview, kanban board, follow-ups, and distribution charts
package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
)

// DashboardCommand prints the aggregated overview.
func DashboardCommand(ctx context.Context, app *App, args []string) error {
	overview, err := app.Dashboard.Overview(ctx)
	if err != nil {
		return fmt.Errorf("failed to build dashboard: %w", err)
	}

	st := overview.Stats
	fmt.Println("Overview")
	fmt.Printf("  Opportunities: %d (%d active)\n", st.TotalOpportunities, st.ActiveOpportunities)
	fmt.Printf("  Pending leads: %d\n", st.PendingLeads)
	fmt.Printf("  Companies:     %d\n", st.TotalCompanies)
	fmt.Printf("  Total value:   %s\n", st.TotalValue)

	fmt.Println("\nPipeline")
	for _, col := range overview.Kanban {
		fmt.Printf("  %-20s %d\n", col.StageName, len(col.Opportunities))
	}

	if len(overview.FollowUps) > 0 {
		fmt.Println("\nNeeds follow-up")
		for _, o := range overview.FollowUps {
			fmt.Printf("  %s  %s (%s, last activity %s)\n",
				o.OpportunityID, o.OpportunityName, o.Assignee, lastSeen(o.LastUpdateTime, o.CreatedTime))
		}
	}

	if len(overview.RecentActivity) > 0 {
		fmt.Println("\nRecent activity")
		for _, it := range overview.RecentActivity {
			fmt.Printf("  %s  [%s] %s — %s\n", it.InteractionTime, it.EventType, it.EventTitle, it.OpportunityName)
		}
	}

	if len(overview.ThisWeek) > 0 {
		fmt.Println("\nThis week")
		for _, e := range overview.ThisWeek {
			fmt.Printf("  %s  %s: %s\n", e.Date, e.Category, e.Topic)
		}
	}
	return nil
}

func lastSeen(updated, created string) string {
	if updated != "" {
		return updated
	}
	return created
}

// ChartsCommand prints the stage/type/assignee distributions.
func ChartsCommand(ctx context.Context, app *App, args []string) error {
	charts, err := app.Dashboard.Charts(ctx)
	if err != nil {
		return fmt.Errorf("failed to build charts: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Println("By stage")
	for _, p := range charts.ByStage {
		_, _ = fmt.Fprintf(w, "  %s\t%s\n", p.Label, strings.Repeat("█", p.Count))
	}
	_ = w.Flush()

	fmt.Println("\nBy type")
	for _, p := range charts.ByType {
		fmt.Printf("  %-20s %d\n", p.Label, p.Count)
	}

	fmt.Println("\nBy assignee")
	for _, p := range charts.ByAssignee {
		fmt.Printf("  %-20s %d\n", p.Label, p.Count)
	}

	fmt.Println("\nBy source")
	for _, p := range charts.BySource {
		fmt.Printf("  %-20s %d\n", p.Label, p.Count)
	}

	fmt.Println("\nCreated per month")
	for _, p := range charts.MonthlyTrend {
		fmt.Printf("  %-20s %d\n", p.Label, p.Count)
	}
	return nil
}
