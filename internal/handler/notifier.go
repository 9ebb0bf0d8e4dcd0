package handler

import (
	"context"
	"fmt"
	"math/rand"

	"antilurk/internal/domain"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// TelegramNotifier implements service.Notifier over the bot transport
type TelegramNotifier struct {
	bot    *tele.Bot
	logger *zap.Logger
}

// NewTelegramNotifier creates a notifier bound to the bot
func NewTelegramNotifier(bot *tele.Bot, logger *zap.Logger) *TelegramNotifier {
	return &TelegramNotifier{bot: bot, logger: logger}
}

// DeliverChallenge posts the challenge message with a randomized
// inline-choice keyboard and returns the message id. Button callback
// data carries the original choice index regardless of display order.
func (n *TelegramNotifier) DeliverChallenge(
	_ context.Context,
	chatID int64,
	puzzle domain.Puzzle,
	user domain.User,
	provocationID int64,
) (int, error) {
	text := fmt.Sprintf(
		"🧩 *Challenge for %s*\n\n%s\n\n⏰ You have 30 minutes to respond.",
		user.Mention(), puzzle.Question,
	)

	order := rand.Perm(len(puzzle.Choices))
	keyboard := make([][]tele.InlineButton, 0, len(puzzle.Choices))
	for _, i := range order {
		keyboard = append(keyboard, []tele.InlineButton{{
			Text: puzzle.Choices[i].Text,
			Data: fmt.Sprintf("provocation_%d_choice_%d", provocationID, i),
		}})
	}

	msg, err := n.bot.Send(
		tele.ChatID(chatID),
		text,
		&tele.ReplyMarkup{InlineKeyboard: keyboard},
		tele.ModeMarkdown,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to post challenge: %w", err)
	}

	n.logger.Info("Challenge posted",
		zap.Int64("chat_id", chatID),
		zap.Int64("user_id", user.ID),
		zap.String("puzzle_id", puzzle.ID),
		zap.Int("message_id", msg.ID),
		zap.Int64("provocation_id", provocationID),
	)

	return msg.ID, nil
}

// DeliverEscalation posts a moderator notice with confirm/dismiss buttons
func (n *TelegramNotifier) DeliverEscalation(
	_ context.Context,
	modlogChatID int64,
	text string,
	provocationID int64,
) error {
	keyboard := [][]tele.InlineButton{
		{
			{Text: "✅ Confirm Kick", Data: fmt.Sprintf("kick_confirm_%d", provocationID)},
			{Text: "❌ Dismiss", Data: fmt.Sprintf("kick_dismiss_%d", provocationID)},
		},
	}

	_, err := n.bot.Send(
		tele.ChatID(modlogChatID),
		text,
		&tele.ReplyMarkup{InlineKeyboard: keyboard},
		tele.ModeMarkdown,
	)
	if err != nil {
		return fmt.Errorf("failed to send escalation: %w", err)
	}
	return nil
}
