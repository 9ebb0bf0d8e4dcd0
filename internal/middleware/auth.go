package middleware

import (
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// AdminOnly restricts a handler to chat administrators. Non-admin
// attempts are logged and answered with a refusal.
func AdminOnly(bot *tele.Bot, logger *zap.Logger) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			userID := c.Sender().ID

			member, err := bot.ChatMemberOf(c.Chat(), c.Sender())
			if err != nil {
				logger.Error("Failed to resolve chat member",
					zap.Int64("chat_id", c.Chat().ID),
					zap.Int64("user_id", userID),
					zap.Error(err),
				)
				return c.Send("Could not verify permissions. Try again later.")
			}

			if member.Role != tele.Administrator && member.Role != tele.Creator {
				logger.Warn("Non-admin attempted admin command",
					zap.Int64("chat_id", c.Chat().ID),
					zap.Int64("user_id", userID),
					zap.String("command", c.Text()),
				)
				return c.Send("This command is restricted to chat administrators.")
			}

			return next(c)
		}
	}
}
