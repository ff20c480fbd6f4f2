package main

import (
	"os"

	"github.com/joho/godotenv"
)

func main() {
	// Secrets may come from a local .env during development; a missing
	// file is fine, the environment still applies.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
