package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// ClearCmd deletes every stored conversation and the persisted slot
type ClearCmd struct {
	Force bool `short:"f" help:"Skip confirmation"`
}

func (c *ClearCmd) Run(cli *CLI) error {
	logger := createCLILogger(cli.LogLevel)

	instance, err := buildApp(cli, logger)
	if err != nil {
		return err
	}
	defer instance.Close()

	if !c.Force {
		fmt.Print("Delete all conversations? [y/N] ")
		scanner := bufio.NewScanner(os.Stdin)
		if !scanner.Scan() || strings.ToLower(strings.TrimSpace(scanner.Text())) != "y" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	instance.Store.Clear()
	fmt.Println("History cleared.")
	return nil
}
