package handler

import (
	"antilurk/internal/service"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// Handler manages all bot interactions
type Handler struct {
	bot        *tele.Bot
	challenges *service.ChallengeEngine
	tracker    *service.ProvocationTracker
	reports    *service.ReportService
	logger     *zap.Logger
}

// NewHandler creates a new handler instance
func NewHandler(
	bot *tele.Bot,
	challenges *service.ChallengeEngine,
	tracker *service.ProvocationTracker,
	reports *service.ReportService,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		bot:        bot,
		challenges: challenges,
		tracker:    tracker,
		reports:    reports,
		logger:     logger,
	}
}

// RegisterHandlers registers all bot handlers
func (h *Handler) RegisterHandlers(adminOnly tele.MiddlewareFunc) {
	// Commands
	h.bot.Handle("/report", h.handleReport, adminOnly)

	// Callback queries (challenge answers, modlog confirmations)
	h.bot.Handle(tele.OnCallback, h.handleCallback)
}
