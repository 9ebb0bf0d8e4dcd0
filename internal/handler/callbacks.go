package handler

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

var (
	challengeCallbackRe = regexp.MustCompile(`^provocation_(\d+)_choice_(\d+)$`)
	kickCallbackRe      = regexp.MustCompile(`^kick_(confirm|dismiss)_(\d+)$`)
)

// cleanCallbackData removes all non-printable characters from callback data
func cleanCallbackData(data string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) {
			return r
		}
		return -1
	}, strings.TrimSpace(data))
}

// handleCallback routes all inline button callbacks
func (h *Handler) handleCallback(c tele.Context) error {
	callback := c.Callback()
	if callback == nil {
		h.logger.Warn("handleCallback: callback is nil")
		return nil
	}

	data := cleanCallbackData(callback.Data)
	h.logger.Debug("Processing callback",
		zap.String("data", data),
		zap.String("id", callback.ID),
		zap.Int64("user_id", c.Sender().ID),
	)

	if m := challengeCallbackRe.FindStringSubmatch(data); m != nil {
		return h.handleChallengeAnswer(c, m)
	}
	if m := kickCallbackRe.FindStringSubmatch(data); m != nil {
		return h.handleKickAction(c, m)
	}

	h.logger.Warn("Unhandled callback",
		zap.String("data", data),
	)
	return c.Respond()
}

// handleChallengeAnswer processes a provocation_{id}_choice_{i} button press
func (h *Handler) handleChallengeAnswer(c tele.Context, match []string) error {
	provocationID, _ := strconv.ParseInt(match[1], 10, 64)
	choiceIndex, _ := strconv.Atoi(match[2])
	userID := c.Sender().ID

	if !h.tracker.ValidateCallback(provocationID, userID, choiceIndex) {
		return c.Respond(&tele.CallbackResponse{Text: "❌ Invalid response."})
	}

	correct := h.tracker.IsCorrectChoice(provocationID, choiceIndex)

	if err := h.challenges.HandleResponse(context.Background(), provocationID, userID, correct); err != nil {
		h.logger.Error("Failed to apply challenge response",
			zap.Int64("provocation_id", provocationID),
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		return c.Respond(&tele.CallbackResponse{Text: "❌ Something went wrong."})
	}

	if correct {
		if err := c.Edit("✅ Challenge completed successfully!"); err != nil {
			h.logger.Warn("Failed to edit challenge message",
				zap.Int64("provocation_id", provocationID),
				zap.Error(err),
			)
		}
		return c.Respond(&tele.CallbackResponse{Text: "✅ Correct! Welcome to the community."})
	}

	if err := c.Edit("❌ Challenge failed. Administrators have been notified."); err != nil {
		h.logger.Warn("Failed to edit challenge message",
			zap.Int64("provocation_id", provocationID),
			zap.Error(err),
		)
	}
	return c.Respond(&tele.CallbackResponse{Text: "❌ Incorrect answer."})
}

// handleKickAction processes modlog kick_{confirm|dismiss}_{id} buttons
func (h *Handler) handleKickAction(c tele.Context, match []string) error {
	action := match[1]
	provocationID, _ := strconv.ParseInt(match[2], 10, 64)
	adminID := c.Sender().ID

	var err error
	var confirmation string
	switch action {
	case "confirm":
		err = h.challenges.ConfirmKick(provocationID, adminID)
		confirmation = "✅ Kick confirmed."
	case "dismiss":
		err = h.challenges.Dismiss(provocationID, adminID)
		confirmation = "Dismissed."
	}

	if err != nil {
		h.logger.Warn("Moderator action rejected",
			zap.Int64("provocation_id", provocationID),
			zap.Int64("admin_user_id", adminID),
			zap.String("action", action),
			zap.Error(err),
		)
		return c.Respond(&tele.CallbackResponse{Text: "❌ Action no longer applicable."})
	}

	if editErr := c.Edit(confirmation); editErr != nil {
		h.logger.Warn("Failed to edit modlog message",
			zap.Int64("provocation_id", provocationID),
			zap.Error(editErr),
		)
	}
	return c.Respond(&tele.CallbackResponse{Text: confirmation})
}
