package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	gsheets "google.golang.org/api/sheets/v4"

	"github.com/CamiloRubio/FinPer-Chatbot/pkg/client"
	"github.com/CamiloRubio/FinPer-Chatbot/pkg/config"
)

// runSetup handles the Google OAuth setup flow for the sheets backend.
func runSetup(logger *slog.Logger, force bool) error {
	fmt.Println("=== FinPer Setup ===")
	fmt.Println()

	if _, err := os.Stat(config.ClientSecretFile); os.IsNotExist(err) {
		return fmt.Errorf("credentials file not found: %s\n\nTo get your credentials:\n"+
			"1. Go to https://console.cloud.google.com/apis/credentials\n"+
			"2. Create an OAuth 2.0 Client ID (Desktop application)\n"+
			"3. Download the JSON file and save it as '%s'", config.ClientSecretFile, config.ClientSecretFile)
	}

	if !force {
		if _, err := os.Stat(config.TokenFile); err == nil {
			fmt.Printf("Already authenticated! Token file exists: %s\n", config.TokenFile)
			fmt.Println()
			fmt.Println("To re-authenticate, run: finper setup -force")
			return nil
		}
	}

	if force {
		if err := os.Remove(config.TokenFile); err != nil && !os.IsNotExist(err) {
			logger.Warn("failed to remove existing token", "error", err)
		}
		fmt.Println("Forcing re-authentication...")
		fmt.Println()
	}

	fmt.Println("This will set up OAuth authentication with Google.")
	fmt.Println()
	fmt.Println("Required permissions:")
	fmt.Println("  - Sheets: Read and write spreadsheets (the transaction ledger)")
	fmt.Println()
	fmt.Println("Starting authentication...")
	fmt.Println()

	if err := client.Authorize(context.Background(), config.ClientSecretFile, config.TokenFile, gsheets.SpreadsheetsScope); err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	fmt.Println()
	fmt.Println("=== Setup Complete ===")
	fmt.Println()
	fmt.Printf("Token saved to: %s\n", config.TokenFile)
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println("  1. Set VERIFY_TOKEN, WHATSAPP_TOKEN and PHONE_NUMBER_ID")
	fmt.Println("  2. Run 'finper run' to start the webhook server")
	fmt.Println()

	return nil
}
