// ABOUTME: Entry point for the spreadsheet-backed CRM CLI
// ABOUTME: Builds the app container and routes subcommands
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"sheetcrm/cli"
	"sheetcrm/config"
	"sheetcrm/sheets"
	"sheetcrm/workflow"
)

const version = "0.2.0"

func main() {
	showVersion := flag.Bool("version", false, "Show version and exit")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	_ = flag.CommandLine.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("sheetcrm version %s\n", version)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(0)
	}

	// .env is optional; the environment wins when both are set.
	_ = godotenv.Load()

	logger := newLogger(*verbose)
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	command := args[0]
	commandArgs := args[1:]

	// Login needs no spreadsheet access.
	if command == "login" {
		if err := cli.LoginCommand(ctx, commandArgs); err != nil {
			log.Fatalf("login failed: %v", err)
		}
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	token, err := sheets.LoadToken()
	if err != nil {
		log.Fatalf("no stored credentials (run 'sheetcrm login' first): %v", err)
	}
	svc, err := sheets.NewSheetsService(ctx, token)
	if err != nil {
		log.Fatalf("failed to create sheets service: %v", err)
	}
	rangeStore := sheets.NewClient(svc, cfg.SpreadsheetID)

	journal, err := workflow.OpenJournal(cfg.JournalPath)
	if err != nil {
		log.Fatalf("failed to open workflow journal: %v", err)
	}
	defer func() { _ = journal.Close() }()

	app := cli.BuildApp(rangeStore, cfg, journal, logger)

	if err := route(ctx, app, command, commandArgs); err != nil {
		log.Fatalf("%s failed: %v", command, err)
	}
}

func route(ctx context.Context, app *cli.App, command string, args []string) error {
	switch command {
	case "dashboard":
		return cli.DashboardCommand(ctx, app, args)
	case "charts":
		return cli.ChartsCommand(ctx, app, args)
	case "list":
		return cli.ListOpportunitiesCommand(ctx, app, args)
	case "show":
		return cli.ShowOpportunityCommand(ctx, app, args)
	case "update":
		return cli.UpdateOpportunityCommand(ctx, app, args)
	case "move-stage":
		return cli.MoveStageCommand(ctx, app, args)
	case "delete":
		return cli.DeleteOpportunityCommand(ctx, app, args)
	case "link-contact":
		return cli.LinkContactCommand(ctx, app, args)
	case "unlink-contact":
		return cli.UnlinkContactCommand(ctx, app, args)
	case "leads":
		return cli.ListLeadsCommand(ctx, app, args)
	case "promote":
		return cli.PromoteLeadCommand(ctx, app, args)
	case "create":
		return cli.CreateOpportunityCommand(ctx, app, args)
	case "contacts":
		return cli.ListContactsCommand(ctx, app, args)
	case "update-contact":
		return cli.UpdateContactCommand(ctx, app, args)
	case "company":
		return cli.ShowCompanyCommand(ctx, app, args)
	case "update-company":
		return cli.UpdateCompanyCommand(ctx, app, args)
	case "interactions":
		return cli.ListInteractionsCommand(ctx, app, args)
	case "add-interaction":
		return cli.AddInteractionCommand(ctx, app, args)
	case "add-event":
		return cli.AddEventLogCommand(ctx, app, args)
	case "week":
		return cli.WeekCommand(ctx, app, args)
	case "add-weekly":
		return cli.AddWeeklyCommand(ctx, app, args)
	case "announcements":
		return cli.AnnouncementsCommand(ctx, app, args)
	case "post":
		return cli.PostAnnouncementCommand(ctx, app, args)
	case "delete-announcement":
		return cli.DeleteAnnouncementCommand(ctx, app, args)
	case "cache-bust":
		return cli.CacheBustCommand(ctx, app, args)
	case "journal":
		return cli.JournalCommand(ctx, app, args)
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		return nil
	}
}

func newLogger(verbose bool) *zap.Logger {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	return logger
}

func printUsage() {
	fmt.Println(`sheetcrm - spreadsheet-backed CRM

Usage:
  sheetcrm [flags] <command> [command flags]

Setup:
  login                  Authorize access to the spreadsheet

Views:
  dashboard              Aggregated overview (pipeline, follow-ups, activity)
  charts                 Stage/type/assignee distributions
  week                   Weekly business board

Opportunities:
  list, show, update, move-stage, delete
  link-contact, unlink-contact

Leads and contacts:
  leads                  List unfiled business cards
  promote                Promote a lead into an opportunity
  create                 Create an opportunity from manual input
  contacts, update-contact
  company, update-company

Activity:
  interactions, add-interaction, add-event
  add-weekly

Bulletin board:
  announcements, post, delete-announcement

Operations:
  cache-bust             Invalidate all cached collections
  journal                Inspect failed workflow runs

Flags:
  -version               Show version
  -verbose               Debug logging`)
}
