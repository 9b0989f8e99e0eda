package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/Om-Varma12/CarePoint/internal/chat"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat [hash]",
	Short: "Chat with the assistant",
	Long: `Start an interactive chat session. With a conversation hash, the existing
conversation is resumed; without one, the first message starts a new
conversation.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := requireSession()
		if err != nil {
			return err
		}

		if len(args) == 1 {
			hash := args[0]
			if _, ok := app.store.Get(hash); !ok {
				if err := app.store.LoadConversation(cmd.Context(), hash); err != nil {
					return fmt.Errorf("no such conversation: %s", hash)
				}
			}
			app.sender.SetCurrentConversation(hash)
			if conv, ok := app.store.Get(hash); ok {
				fmt.Print(renderConversation(conv))
			}
		} else {
			app.sender.SetCurrentConversation("")
			fmt.Println(renderWelcome(session.UserName))
		}

		scanner := bufio.NewScanner(os.Stdin)
		for {
			fmt.Print("> ")
			if !scanner.Scan() {
				break
			}
			content := strings.TrimSpace(scanner.Text())
			if content == "" {
				continue
			}
			if content == "/quit" || content == "/exit" {
				break
			}

			done, err := app.sender.Send(cmd.Context(), session, content)
			if err != nil {
				switch {
				case errors.Is(err, chat.ErrMessageLimit):
					fmt.Println("This conversation has reached the 20-message limit. Please start a new conversation to continue chatting.")
				case errors.Is(err, chat.ErrSendInFlight):
					fmt.Println("Still working on the previous message, one moment...")
				default:
					fmt.Printf("An error occurred. Please try again. (%v)\n", err)
				}
				continue
			}

			// Block until the reply (or the fallback) has landed so the
			// rendered transcript is complete.
			<-done

			if conv, ok := app.store.Get(app.sender.CurrentConversation()); ok {
				fmt.Print(renderLatestExchange(conv))
			}
		}
		return scanner.Err()
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
