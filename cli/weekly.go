// ABOUTME: Weekly business and announcement CLI commands
// ABOUTME: Week board, record CRUD, and the bulletin list
package cli

import (
	"context"
	"flag"
	"fmt"
	"time"

	"sheetcrm/models"
	"sheetcrm/store"
)

var weekdayNames = map[int]string{1: "Mon", 2: "Tue", 3: "Wed", 4: "Thu", 5: "Fri"}

// WeekCommand prints the Monday-to-Friday board of one ISO week.
func WeekCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("week", flag.ExitOnError)
	weekID := fs.String("week", "", "ISO week ID like 2026-W35 (default: current week)")
	listOptions := fs.Bool("options", false, "List selectable weeks instead of the board")
	_ = fs.Parse(args)

	if *listOptions {
		opts, err := app.Weekly.WeekOptions(ctx, time.Now())
		if err != nil {
			return fmt.Errorf("failed to load week options: %w", err)
		}
		for _, o := range opts {
			mark := " "
			if o.HasEntries {
				mark = "*"
			}
			fmt.Printf("%s %s  %s to %s\n", mark, o.WeekID, o.Start, o.End)
		}
		return nil
	}

	id := *weekID
	if id == "" {
		id = store.WeekID(time.Now())
	}

	byDay, err := app.Weekly.ByWeek(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load week %s: %w", id, err)
	}

	fmt.Printf("Week %s\n", id)
	for day := 1; day <= 5; day++ {
		fmt.Printf("\n%s\n", weekdayNames[day])
		entries := byDay[day]
		if len(entries) == 0 {
			fmt.Println("  (no entries)")
			continue
		}
		for _, e := range entries {
			fmt.Printf("  [%s] %s — %s\n", e.Category, e.Topic, e.Participants)
		}
	}
	return nil
}

// AddWeeklyCommand records a weekly business entry.
func AddWeeklyCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("add-weekly", flag.ExitOnError)
	date := fs.String("date", "", "Entry date YYYY-MM-DD (required)")
	topic := fs.String("topic", "", "Topic (required)")
	modifier := fs.String("modifier", "", "Your name (required)")
	category := fs.String("category", "", "Category")
	participants := fs.String("participants", "", "Participants")
	summary := fs.String("summary", "", "Summary")
	actions := fs.String("actions", "", "Action items")
	_ = fs.Parse(args)

	if *date == "" || *topic == "" || *modifier == "" {
		return fmt.Errorf("--date, --topic, and --modifier are required")
	}

	id, err := app.WeeklyWrite.Create(ctx, models.WeeklyEntry{
		Date:         *date,
		Category:     *category,
		Topic:        *topic,
		Participants: *participants,
		Summary:      *summary,
		ActionItems:  *actions,
		Creator:      *modifier,
	})
	if err != nil {
		return err
	}
	fmt.Printf("✓ Weekly entry recorded: %s\n", id)
	return nil
}

// AnnouncementsCommand lists published announcements, pinned first.
func AnnouncementsCommand(ctx context.Context, app *App, args []string) error {
	published, err := app.Announcements.Published(ctx)
	if err != nil {
		return fmt.Errorf("failed to load announcements: %w", err)
	}
	if len(published) == 0 {
		fmt.Println("No announcements")
		return nil
	}
	for _, a := range published {
		pin := " "
		if a.IsPinned {
			pin = "📌"
		}
		fmt.Printf("%s %s  %s (%s, %s)\n", pin, a.ID, a.Title, a.Creator, a.CreatedTime)
		fmt.Printf("   %s\n", a.Content)
	}
	return nil
}

// PostAnnouncementCommand publishes an announcement.
func PostAnnouncementCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("post", flag.ExitOnError)
	title := fs.String("title", "", "Title (required)")
	content := fs.String("content", "", "Body text (required)")
	modifier := fs.String("modifier", "", "Your name (required)")
	pinned := fs.Bool("pinned", false, "Pin to the top of the board")
	_ = fs.Parse(args)

	if *title == "" || *content == "" || *modifier == "" {
		return fmt.Errorf("--title, --content, and --modifier are required")
	}

	id, err := app.AnnouncementWr.Create(ctx, *title, *content, *modifier, *pinned)
	if err != nil {
		return err
	}
	fmt.Printf("✓ Announcement posted: %s\n", id)
	return nil
}

// DeleteAnnouncementCommand removes an announcement.
func DeleteAnnouncementCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("delete-announcement", flag.ExitOnError)
	id := fs.String("id", "", "Announcement ID (required)")
	_ = fs.Parse(args)

	if *id == "" {
		return fmt.Errorf("--id is required")
	}
	if err := app.AnnouncementWr.Delete(ctx, *id); err != nil {
		return err
	}
	fmt.Printf("✓ Announcement %s deleted\n", *id)
	return nil
}
