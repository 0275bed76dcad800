package main

import (
	"fmt"

	"github.com/gemchat/gemchat/src/chatstore"
)

// HistoryCmd lists stored conversations in most-recently-touched order
type HistoryCmd struct{}

func (h *HistoryCmd) Run(cli *CLI) error {
	logger := createCLILogger(cli.LogLevel)

	instance, err := buildApp(cli, logger)
	if err != nil {
		return err
	}
	defer instance.Close()

	index := instance.Store.Index()
	if len(index) == 0 {
		fmt.Println(faintStyle.Render("No conversations yet"))
		return nil
	}

	printIndex(index)
	return nil
}

func printIndex(index []chatstore.Summary) {
	for _, s := range index {
		fmt.Printf("%s  %s\n", s.ID, s.Title)
		fmt.Printf("    %s\n", faintStyle.Render(s.Preview))
	}
}
