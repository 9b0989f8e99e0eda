package main

import (
	"fmt"

	"github.com/Om-Varma12/CarePoint/internal/auth"
	"github.com/Om-Varma12/CarePoint/internal/backend"
	"github.com/Om-Varma12/CarePoint/internal/chat"
	"github.com/Om-Varma12/CarePoint/internal/config"
	"github.com/Om-Varma12/CarePoint/internal/identity"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	verbose bool

	app *appContext
)

// appContext wires the client stack together once per invocation.
type appContext struct {
	cfg    *config.Config
	client backend.Client
	store  *chat.Store
	sender *chat.Sender
	auth   *auth.Service
}

var rootCmd = &cobra.Command{
	Use:   "carepoint",
	Short: "Chat with the CarePoint wellbeing assistant from your terminal",
	Long: `CarePoint terminal client.

Talks to a CarePoint backend over HTTP: sign up, log in, browse your
conversation history, and chat with the wellbeing assistant.

Quick Start:
  carepoint signup --name "Jo" --email jo@example.com --password secret123
  carepoint chat                  # Start a new conversation
  carepoint list                  # List your conversations
  carepoint open <hash>           # Show one conversation
  carepoint delete <hash>         # End and remove a conversation`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		} else {
			zerolog.SetGlobalLevel(zerolog.WarnLevel)
		}
		return initApp()
	},
}

func initApp() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	jar, err := identity.NewFileJar(cfg.Cookie.JarPath)
	if err != nil {
		return fmt.Errorf("failed to open cookie jar: %w", err)
	}

	sessions := identity.NewStore(jar, identity.Codec{Secure: cfg.Cookie.Secure})
	client := backend.NewHTTPClient(cfg.API.BaseURL, cfg.API.Timeout)
	store := chat.NewStore(client)
	sender := chat.NewSender(store, client, chat.NavigatorFunc(func(hash string) {
		fmt.Printf("Conversation: %s\n", hash)
	}), chat.SenderConfig{
		ReplyDelay:     cfg.Chat.ReplyDelay,
		MedicinePacing: cfg.Chat.MedicinePacing,
	})

	app = &appContext{
		cfg:    cfg,
		client: client,
		store:  store,
		sender: sender,
		auth:   auth.NewService(client, sessions),
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
}
