package main

import (
	"errors"
	"fmt"

	"github.com/Om-Varma12/CarePoint/internal/domain"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List your conversations",
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := requireSession()
		if err != nil {
			return err
		}

		if err := app.store.LoadAllForUser(cmd.Context(), session.UserID); err != nil {
			return fmt.Errorf("failed to load conversations: %w", err)
		}

		conversations := app.store.Conversations()
		if len(conversations) == 0 {
			fmt.Println("No conversations yet. Start one with `carepoint chat`.")
			return nil
		}

		for _, conv := range conversations {
			fmt.Println(renderConversationLine(conv))
		}
		return nil
	},
}

var openCmd = &cobra.Command{
	Use:   "open <hash>",
	Short: "Show a conversation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := requireSession(); err != nil {
			return err
		}

		hash := args[0]
		if _, ok := app.store.Get(hash); !ok {
			if err := app.store.LoadConversation(cmd.Context(), hash); err != nil {
				return fmt.Errorf("no such conversation: %s", hash)
			}
		}

		conv, ok := app.store.Get(hash)
		if !ok {
			return fmt.Errorf("no such conversation: %s", hash)
		}

		app.sender.SetCurrentConversation(hash)
		fmt.Print(renderConversation(conv))
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <hash>",
	Short: "End a conversation and remove it from your history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := requireSession(); err != nil {
			return err
		}

		if err := app.store.DeleteConversation(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("failed to delete conversation: %w", err)
		}

		if app.sender.CurrentConversation() == args[0] {
			app.sender.SetCurrentConversation("")
		}
		fmt.Println("Conversation deleted.")
		return nil
	},
}

func requireSession() (*domain.UserSession, error) {
	session, err := app.auth.CurrentSession()
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, errors.New("please login first: carepoint login --email you@example.com --password ...")
	}
	return session, nil
}

func init() {
	rootCmd.AddCommand(listCmd, openCmd, deleteCmd)
}
