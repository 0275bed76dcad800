package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/gemchat/gemchat/src/chatstore"
)

var (
	userLabel  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Render("you")
	modelLabel = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10")).Render("gemini")
	faintStyle = lipgloss.NewStyle().Faint(true)
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// ChatCmd is the interactive chat REPL
type ChatCmd struct {
	New bool `help:"Start a fresh conversation instead of resuming the current one"`
}

func (c *ChatCmd) Run(cli *CLI) error {
	logger := createCLILogger(cli.LogLevel)

	instance, err := buildApp(cli, logger)
	if err != nil {
		return err
	}
	defer instance.Close()

	if c.New {
		instance.Store.CreateConversation()
	} else {
		instance.Store.EnsureConversation()
	}

	printTranscript(instance.Store.Messages())
	fmt.Println(faintStyle.Render("Type a message, /new, /reset, /history, or /quit."))

	ctx := context.Background()
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Printf("%s > ", userLabel)
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())

		switch {
		case line == "/quit", line == "/exit":
			return nil
		case line == "/new":
			instance.Store.CreateConversation()
			fmt.Println(faintStyle.Render("Started a new conversation."))
			continue
		case line == "/reset":
			instance.Controller.Reset()
			fmt.Println(faintStyle.Render("Conversation cleared."))
			continue
		case line == "/history":
			printIndex(instance.Store.Index())
			continue
		case strings.HasPrefix(line, "/switch "):
			instance.Store.SwitchConversation(strings.TrimSpace(strings.TrimPrefix(line, "/switch ")))
			printTranscript(instance.Store.Messages())
			continue
		case line == "":
			continue
		}

		if err := instance.Controller.Send(ctx, line); err != nil {
			fmt.Println(errStyle.Render(instance.Controller.LastError()))
			continue
		}
		msgs := instance.Store.Messages()
		if len(msgs) > 0 {
			printMessage(msgs[len(msgs)-1])
		}
	}

	return scanner.Err()
}

func printTranscript(msgs []chatstore.Message) {
	for _, m := range msgs {
		printMessage(m)
	}
}

func printMessage(m chatstore.Message) {
	label := modelLabel
	if m.Role == chatstore.RoleUser {
		label = userLabel
	}
	fmt.Printf("%s: %s\n", label, m.Content)
}
