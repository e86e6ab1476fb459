package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/zeu5/doomgym/commands"
)

// main entry point to all the commands
func main() {
	// DOOMGYM_* settings may come from a .env file
	for _, envFile := range []string{
		".env",
		"../.env",
	} {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}

	rootCommand := commands.GetRootCommand()
	if err := rootCommand.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
