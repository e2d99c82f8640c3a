package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"visionboard/internal/config"
	"visionboard/internal/types"
)

// initCmd writes a starter config file.
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a starter .visionboard/config.json in the workspace",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := filepath.Join(workspace, config.DefaultUserConfigPath())
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists at %s", path)
		}
		cfg := &config.UserConfig{
			GeminiModel: "gemini-2.5-flash",
			OpenAIModel: "gpt-4o",
			ImageModel:  "imagen-3.0-generate-002",
		}
		if err := cfg.Save(path); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", path)
		fmt.Println("Set GEMINI_API_KEY (and optionally OPENAI_API_KEY) or add the keys to the config file.")
		return nil
	},
}

// familyCmd prints the persona catalog.
var familyCmd = &cobra.Command{
	Use:   "family",
	Short: "List the agent family",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		family := a.registry.Family()
		fmt.Printf("%s - %s\n", family.Organization, family.Creed)
		fmt.Printf("HQ: %s | Motto: %q\n\n", family.Headquarters, family.Motto)
		for _, m := range a.registry.Members() {
			fmt.Printf("  @%-8s %-45s [%s]\n", m.Name, m.Role, m.Engine)
			fmt.Printf("           skills: %s\n", strings.Join(m.Skills, ", "))
		}
		return nil
	},
}

// runInteractiveChat is the default command: a REPL over the persona
// chats. @mentions inside a message delegate to another agent.
func runInteractiveChat(ctx context.Context) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	members := a.registry.Members()
	if len(members) == 0 {
		return fmt.Errorf("no personas configured")
	}
	active := members[0]

	fmt.Printf("%s\n", a.registry.Family().Organization)
	fmt.Println("Commands: /switch <name>, /members, /log, /history, /quit")
	printMessages(a.chat.History(active))

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Printf("[%s] > ", active.Name)
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			fields := strings.Fields(line)
			switch fields[0] {
			case "/quit", "/exit":
				return nil
			case "/members":
				for _, m := range members {
					marker := " "
					if m.Name == active.Name {
						marker = "*"
					}
					fmt.Printf(" %s @%s (%s)\n", marker, m.Name, m.Role)
				}
			case "/switch":
				if len(fields) < 2 {
					fmt.Println("Usage: /switch <name>")
					continue
				}
				persona, err := a.registry.Resolve(fields[1])
				if err != nil {
					fmt.Printf("Couldn't find an agent named @%s.\n", fields[1])
					continue
				}
				active = persona
				printMessages(a.chat.History(active))
			case "/log":
				printLog(a)
			case "/history":
				printMessages(a.chat.History(active))
			default:
				fmt.Printf("Unknown command %s\n", fields[0])
			}
			continue
		}

		printMessages(a.chat.Send(ctx, active, line))
	}
	return scanner.Err()
}

func printMessages(messages []types.ChatMessage) {
	for _, msg := range messages {
		prefix := "agent"
		if msg.Role == types.RoleUser {
			prefix = "you"
		}
		fmt.Printf("%s: %s\n", prefix, msg.Text)
	}
}

func printLog(a *app) {
	entries := a.delegator.Log().Entries()
	if len(entries) == 0 {
		fmt.Println("No delegations yet.")
		return
	}
	for _, e := range entries {
		fmt.Printf("%s  %s -> %s  [%s]  %s\n",
			e.Timestamp.Format("15:04:05"), e.SourceAgent, e.TargetAgent, e.Status, e.Details)
	}
}
