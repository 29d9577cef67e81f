package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"github.com/CamiloRubio/FinPer-Chatbot/pkg/client"
	"github.com/CamiloRubio/FinPer-Chatbot/pkg/config"
)

// runStatus checks the configuration and authentication status.
func runStatus(configPath string) error {
	fmt.Println("=== FinPer Status ===")
	fmt.Println()

	allGood := true

	cfg := checkConfig(configPath, &allGood)
	checkWhatsAppConfig(cfg, &allGood)

	if cfg != nil && cfg.LedgerStore == "sheets" {
		checkGoogleCredentials(cfg, &allGood)
	}

	fmt.Println()
	if allGood {
		fmt.Println("Everything looks good. Run 'finper run' to start the server.")
	} else {
		fmt.Println("Some checks failed. Fix the items marked with ✗ above.")
	}

	return nil
}

func checkConfig(configPath string, allGood *bool) *config.Config {
	fmt.Printf("Config (%s + environment): ", configPath)
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Printf("✗ %v\n", err)
		*allGood = false
		return nil
	}
	fmt.Println("✓ Loaded")
	fmt.Printf("Ledger store: %s\n", cfg.LedgerStore)
	return &cfg
}

func checkWhatsAppConfig(cfg *config.Config, allGood *bool) {
	if cfg == nil {
		return
	}
	for name, value := range map[string]string{
		"VERIFY_TOKEN":    cfg.VerifyToken,
		"WHATSAPP_TOKEN":  cfg.WhatsAppToken,
		"PHONE_NUMBER_ID": cfg.PhoneNumberID,
	} {
		fmt.Printf("%s: ", name)
		if value == "" {
			fmt.Println("✗ Not set")
			*allGood = false
		} else {
			fmt.Println("✓ Set")
		}
	}
}

func checkGoogleCredentials(cfg *config.Config, allGood *bool) {
	fmt.Printf("Credentials file (%s): ", config.ClientSecretFile)
	if _, err := os.Stat(config.ClientSecretFile); os.IsNotExist(err) {
		fmt.Println("✗ Not found (run 'finper setup')")
		*allGood = false
		return
	}
	fmt.Println("✓ Found")

	fmt.Printf("Token file (%s): ", config.TokenFile)
	if _, err := os.Stat(config.TokenFile); os.IsNotExist(err) {
		fmt.Println("✗ Not found (run 'finper setup')")
		*allGood = false
		return
	}
	fmt.Println("✓ Found")

	fmt.Print("Sheets API connectivity: ")
	httpClient, err := client.New(config.ClientSecretFile, config.TokenFile, gsheets.SpreadsheetsScope)
	if err != nil {
		fmt.Printf("✗ %v\n", err)
		*allGood = false
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	svc, err := gsheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		fmt.Printf("✗ %v\n", err)
		*allGood = false
		return
	}

	if cfg.GSheetsID == "" {
		fmt.Println("- Skipped (no GSHEETS_ID configured)")
		return
	}

	spreadsheet, err := svc.Spreadsheets.Get(cfg.GSheetsID).Context(ctx).Do()
	if err != nil {
		fmt.Printf("✗ %v\n", err)
		*allGood = false
		return
	}
	fmt.Printf("✓ Connected (%s)\n", spreadsheet.Properties.Title)
}
