// ABOUTME: Operator CLI commands
// ABOUTME: OAuth login, cache bust, and workflow journal inspection
package cli

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"golang.org/x/oauth2"

	"sheetcrm/sheets"
)

// LoginCommand runs the manual OAuth flow and stores the token.
func LoginCommand(ctx context.Context, args []string) error {
	config := sheets.NewOAuthConfig()
	if config.ClientID == "" || config.ClientSecret == "" {
		return fmt.Errorf("GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET must be set")
	}

	authURL := config.AuthCodeURL("state", oauth2.AccessTypeOffline)
	fmt.Println("Open this URL in your browser and authorize access:")
	fmt.Printf("\n  %s\n\n", authURL)
	fmt.Print("Paste the authorization code: ")

	reader := bufio.NewReader(os.Stdin)
	code, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("failed to read authorization code: %w", err)
	}
	code = strings.TrimSpace(code)

	token, err := config.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	if err := sheets.SaveToken(token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	fmt.Printf("✓ Token saved to %s\n", sheets.TokenPath())
	return nil
}

// CacheBustCommand clears every cached collection so the next reads hit the
// backing store.
func CacheBustCommand(_ context.Context, app *App, _ []string) error {
	app.Cache.InvalidateAll()
	fmt.Println("✓ All cached collections invalidated")
	return nil
}

// JournalCommand lists failed workflow runs and their step outcomes, the
// record an operator reconciles partial runs from.
func JournalCommand(_ context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("journal", flag.ExitOnError)
	runID := fs.String("run", "", "Show the steps of one run")
	_ = fs.Parse(args)

	if *runID != "" {
		steps, err := app.Journal.Steps(*runID)
		if err != nil {
			return err
		}
		if len(steps) == 0 {
			fmt.Println("No steps recorded for that run")
			return nil
		}
		for _, s := range steps {
			fmt.Printf("  %d. %-22s %-8s %s\n", s.Seq, s.Name, s.Status, s.Detail)
		}
		return nil
	}

	failed, err := app.Journal.FailedRuns()
	if err != nil {
		return err
	}
	if len(failed) == 0 {
		fmt.Println("No failed workflow runs")
		return nil
	}
	fmt.Println("Failed workflow runs (inspect with --run ID):")
	for _, id := range failed {
		fmt.Printf("  %s\n", id)
	}
	return nil
}
