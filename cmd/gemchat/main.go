package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
)

// CLI represents the main CLI structure
type CLI struct {
	APIKey   string `env:"GEMINI_API_KEY" help:"Gemini API key"`
	Model    string `help:"Model name override"`
	BaseURL  string `help:"Custom API base URL"`
	Config   string `help:"Path to config file"`
	LogLevel string `default:"warn" help:"Log level"`

	Chat    ChatCmd    `cmd:"" default:"1" help:"Interactive chat (default)"`
	History HistoryCmd `cmd:"" help:"List stored conversations"`
	Clear   ClearCmd   `cmd:"" help:"Delete all stored conversations"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("gemchat"),
		kong.Description("Chat client for the Gemini API with persistent conversations"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)

	err := ctx.Run(&cli)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
