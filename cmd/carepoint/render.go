package main

import (
	"fmt"
	"strings"

	"github.com/Om-Varma12/CarePoint/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	hashStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	userStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	botStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	timeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)
)

func renderWelcome(name string) string {
	return titleStyle.Render(fmt.Sprintf("Hi %s! What can I help you with today?", name)) +
		"\n" + timeStyle.Render("Type a message to start a new conversation, /quit to leave.")
}

func renderConversationLine(conv domain.Conversation) string {
	return fmt.Sprintf("%s  %s  %s",
		hashStyle.Render(conv.ID),
		titleStyle.Render(conv.Title),
		timeStyle.Render(conv.UpdatedAt.Format("2006-01-02 15:04")),
	)
}

func renderConversation(conv domain.Conversation) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(conv.Title))
	b.WriteString("  ")
	b.WriteString(hashStyle.Render(conv.ID))
	b.WriteString("\n\n")
	for _, msg := range conv.Messages {
		b.WriteString(renderMessage(msg))
	}
	return b.String()
}

// renderLatestExchange shows the tail of the conversation after a send: the
// last user message and every bot message that followed it.
func renderLatestExchange(conv domain.Conversation) string {
	start := 0
	for i := len(conv.Messages) - 1; i >= 0; i-- {
		if conv.Messages[i].Role == domain.RoleUser {
			start = i + 1
			break
		}
	}

	var b strings.Builder
	for _, msg := range conv.Messages[start:] {
		b.WriteString(renderMessage(msg))
	}
	return b.String()
}

func renderMessage(msg domain.Message) string {
	label := botStyle.Render("CarePoint")
	if msg.Role == domain.RoleUser {
		label = userStyle.Render("You")
	}
	return fmt.Sprintf("%s %s\n%s\n\n", label, timeStyle.Render(msg.Timestamp.Format("15:04")), msg.Content)
}
