// Command finper runs the WhatsApp personal finance chatbot.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/CamiloRubio/FinPer-Chatbot/pkg/config"
	"github.com/CamiloRubio/FinPer-Chatbot/pkg/logging"
)

func main() {
	logger := logging.Setup(logging.FromEnv())

	cmd := "run"
	args := os.Args[1:]
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd = args[0]
		args = args[1:]
	}

	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	configPath := fs.String("config", config.DefaultConfigFile, "path to the JSON config file")
	force := fs.Bool("force", false, "force re-authentication (setup only)")
	if err := fs.Parse(args); err != nil {
		os.Exit(2)
	}

	var err error
	switch cmd {
	case "run":
		err = runServer(logger, *configPath)
	case "setup":
		err = runSetup(logger, *force)
	case "status":
		err = runStatus(*configPath)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", cmd)
		printUsage()
		os.Exit(2)
	}

	if err != nil {
		logger.Error("command failed", "command", cmd, "error", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Usage: finper [command] [flags]

Commands:
  run     Start the webhook server (default)
  setup   Run the Google OAuth flow for the sheets backend
  status  Check configuration and credentials
  help    Show this message

Flags:
  -config path   JSON config file (default "config.json")
  -force         Force re-authentication during setup`)
}
