// Command prompt sends a prompt from standard input to a conversational
// model and prints the reply to standard output.
//
// Credentials and defaults come from the environment (a local .env file is
// loaded automatically): ANTHROPIC_API_KEY for the direct API,
// AWS_BEARER_TOKEN_BEDROCK / AWS_REGION / AWS_ACCOUNT_ID for the managed
// gateway, and MODELBRIDGE_* variables for any flag.
package main

import (
	"os"

	"github.com/charmbracelet/log"
	_ "github.com/joho/godotenv/autoload"
)

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: false})

	if err := newPromptCmd().Execute(); err != nil {
		logger.Error("prompt failed", "error", err)
		os.Exit(1)
	}
}
