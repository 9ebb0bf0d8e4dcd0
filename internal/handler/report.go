package handler

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// handleReport handles /report [recent N | user ID | stats]
func (h *Handler) handleReport(c tele.Context) error {
	chatID := c.Chat().ID
	args := c.Args()

	h.logger.Info("Report requested",
		zap.Int64("chat_id", chatID),
		zap.Int64("user_id", c.Sender().ID),
		zap.Strings("args", args),
	)

	if len(args) == 0 {
		return c.Send(
			"Usage: /report recent [N] | user <id> | stats",
		)
	}

	switch args[0] {
	case "recent":
		limit := 10
		if len(args) > 1 {
			if n, err := strconv.Atoi(args[1]); err == nil {
				limit = n
			}
		}
		return c.Send(h.formatRecent(chatID, limit))
	case "user":
		if len(args) < 2 {
			return c.Send("Usage: /report user <id>")
		}
		userID, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return c.Send("Invalid user id.")
		}
		return c.Send(h.formatHistory(userID))
	case "stats":
		return c.Send(h.formatStats(chatID))
	default:
		return c.Send("Unknown report type. Use: recent, user, or stats.")
	}
}

func (h *Handler) formatRecent(chatID int64, limit int) string {
	provocations := h.reports.RecentProvocations(chatID, limit)
	if len(provocations) == 0 {
		return "No provocations recorded for this chat."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Recent provocations (%d):\n", len(provocations))
	for _, p := range provocations {
		fmt.Fprintf(&b, "#%d user %d - %s (created %s)\n",
			p.ID, p.UserID, p.Status, p.CreatedAt.UTC().Format("2006-01-02 15:04"))
	}
	return b.String()
}

func (h *Handler) formatHistory(userID int64) string {
	provocations := h.reports.UserHistory(userID)
	if len(provocations) == 0 {
		return fmt.Sprintf("No provocations recorded for user %d.", userID)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Provocation history for user %d:\n", userID)
	for _, p := range provocations {
		fmt.Fprintf(&b, "#%d chat %d - %s (created %s)\n",
			p.ID, p.ChatID, p.Status, p.CreatedAt.UTC().Format("2006-01-02 15:04"))
	}
	return b.String()
}

func (h *Handler) formatStats(chatID int64) string {
	stats := h.reports.Stats(context.Background(), chatID)
	global := h.reports.BacklogStats()

	return fmt.Sprintf(
		"Chat stats:\n"+
			"Backlog: %d users\n"+
			"Pending challenges: %d\n"+
			"Remaining allowance: %d/hour, %d/day\n"+
			"Global backlog: %d users across %d chats",
		stats.BacklogSize,
		stats.PendingChallenges,
		stats.RemainingHourly,
		stats.RemainingDaily,
		global.TotalUsers,
		global.TotalChats,
	)
}
