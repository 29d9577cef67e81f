// Package config loads service configuration from an optional JSON file
// and environment variables, environment taking precedence.
package config

import (
	"fmt"
	"os"

	kjson "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Default file paths for Google credentials.
const (
	ClientSecretFile = "data/client_secret.json"
	TokenFile        = "data/token.json"
)

// Defaults applied when neither file nor environment sets a value.
const (
	DefaultPort         = 5000
	DefaultUSDCOPRate   = 3900
	DefaultBudgetsFile  = "data/budgets.json"
	DefaultLedgerFile   = "data/ledger.csv"
	DefaultSheetName    = "Transacciones"
	DefaultLedgerStore  = "sheets"
	DefaultConfigFile   = "config.json"
)

// Config holds the application configuration.
type Config struct {
	// VerifyToken is the shared secret for the Meta webhook handshake.
	// Environment variable: VERIFY_TOKEN
	VerifyToken string `koanf:"VERIFY_TOKEN"`

	// WhatsAppToken is the bearer token for the Graph API.
	// Environment variable: WHATSAPP_TOKEN
	WhatsAppToken string `koanf:"WHATSAPP_TOKEN"`

	// PhoneNumberID is the sending phone number's Meta ID.
	// Environment variable: PHONE_NUMBER_ID
	PhoneNumberID string `koanf:"PHONE_NUMBER_ID"`

	// Port is the HTTP listen port.
	// Environment variable: PORT
	Port int `koanf:"PORT"`

	// LedgerStore selects the ledger backend: sheets, postgres, csv
	// or memory. Environment variable: LEDGER_STORE
	LedgerStore string `koanf:"LEDGER_STORE"`

	// GSheetsID is the ID of an existing Google Sheet to use.
	// Environment variable: GSHEETS_ID
	GSheetsID string `koanf:"GSHEETS_ID"`

	// GSheetsTitle is the title for a new Google Sheet (used when creating).
	// Environment variable: GSHEETS_TITLE
	GSheetsTitle string `koanf:"GSHEETS_TITLE"`

	// GSheetsName is the name of the sheet/tab within the spreadsheet.
	// Environment variable: GSHEETS_NAME
	GSheetsName string `koanf:"GSHEETS_NAME"`

	// BudgetsFile is the path of the JSON budget store.
	// Environment variable: BUDGETS_FILE
	BudgetsFile string `koanf:"BUDGETS_FILE"`

	// LedgerFile is the path of the CSV ledger (csv backend only).
	// Environment variable: LEDGER_FILE
	LedgerFile string `koanf:"LEDGER_FILE"`

	// USDCOPRate is the fixed USD->COP exchange rate captured on new
	// transactions. Environment variable: USD_COP_RATE
	USDCOPRate int64 `koanf:"USD_COP_RATE"`

	// Postgres configuration (postgres backend only).
	Postgres PostgresConfig
}

// PostgresConfig holds PostgreSQL connection configuration.
type PostgresConfig struct {
	Host     string `koanf:"POSTGRES_HOST"`
	Port     int    `koanf:"POSTGRES_PORT"`
	Database string `koanf:"POSTGRES_DB"`
	User     string `koanf:"POSTGRES_USER"`
	Password string `koanf:"POSTGRES_PASSWORD"`
	SSLMode  string `koanf:"POSTGRES_SSLMODE"`
}

// Load reads configuration from configFile (when it exists) and the
// environment, then applies defaults.
func Load(configFile string) (Config, error) {
	k := koanf.New(".")

	if configFile != "" {
		if _, err := os.Stat(configFile); err == nil {
			if err := k.Load(file.Provider(configFile), kjson.Parser()); err != nil {
				return Config{}, fmt.Errorf("loading config file: %w", err)
			}
		}
	}

	if err := k.Load(env.Provider("", ".", nil), nil); err != nil {
		return Config{}, fmt.Errorf("loading config from environment: %w", err)
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf", FlatPaths: true}); err != nil {
		return Config{}, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.LedgerStore == "" {
		c.LedgerStore = DefaultLedgerStore
	}
	if c.GSheetsName == "" {
		c.GSheetsName = DefaultSheetName
	}
	if c.BudgetsFile == "" {
		c.BudgetsFile = DefaultBudgetsFile
	}
	if c.LedgerFile == "" {
		c.LedgerFile = DefaultLedgerFile
	}
	if c.USDCOPRate == 0 {
		c.USDCOPRate = DefaultUSDCOPRate
	}
}

// Validate checks the fields required to serve webhook traffic.
func (c *Config) Validate() error {
	if c.VerifyToken == "" {
		return fmt.Errorf("VERIFY_TOKEN is required")
	}
	if c.WhatsAppToken == "" {
		return fmt.Errorf("WHATSAPP_TOKEN is required")
	}
	if c.PhoneNumberID == "" {
		return fmt.Errorf("PHONE_NUMBER_ID is required")
	}

	switch c.LedgerStore {
	case "sheets":
		if c.GSheetsID == "" && c.GSheetsTitle == "" {
			return fmt.Errorf("either GSHEETS_ID or GSHEETS_TITLE is required for the sheets backend")
		}
	case "postgres":
		if c.Postgres.Host == "" {
			return fmt.Errorf("POSTGRES_HOST is required for the postgres backend")
		}
	case "csv", "memory":
	default:
		return fmt.Errorf("unknown ledger store %q", c.LedgerStore)
	}
	return nil
}
