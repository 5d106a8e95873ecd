package main

import (
	"os"

	"github.com/joho/godotenv"

	"calpersonal/internal/cli"
)

func main() {
	// A .env in the working directory is optional.
	_ = godotenv.Load()

	cmd := cli.NewRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
