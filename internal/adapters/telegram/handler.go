package telegram

import (
	"context"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"mmradar/internal/report"
	"mmradar/internal/services/analysis"
	"mmradar/pkg/errors"
	"mmradar/pkg/logger"
	"mmradar/pkg/telegram"
	"mmradar/pkg/templates"
)

const commandTimeout = 90 * time.Second

// Handler routes incoming bot commands to the analysis service
type Handler struct {
	bot       telegram.Bot
	service   *analysis.Service
	assembler *report.Assembler
	templates templates.Renderer
	log       *logger.Logger
}

// NewHandler creates a command handler
func NewHandler(
	bot telegram.Bot,
	service *analysis.Service,
	assembler *report.Assembler,
	renderer templates.Renderer,
) *Handler {
	return &Handler{
		bot:       bot,
		service:   service,
		assembler: assembler,
		templates: renderer,
		log:       logger.Get().With("component", "telegram_handler"),
	}
}

// HandleUpdate processes one incoming Telegram update
func (h *Handler) HandleUpdate(update tgbotapi.Update) {
	if update.Message == nil || !update.Message.IsCommand() {
		return
	}

	chatID := update.Message.Chat.ID
	command := update.Message.Command()
	args := strings.TrimSpace(update.Message.CommandArguments())

	h.log.Infow("Command received", "command", command, "chat_id", chatID)

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	switch command {
	case "start":
		h.sendTemplate(ctx, chatID, "commands/start")
	case "help":
		h.sendTemplate(ctx, chatID, "commands/help")
	case "stock":
		h.handleStock(ctx, chatID, args)
	default:
		h.sendTemplate(ctx, chatID, "commands/unknown")
	}
}

func (h *Handler) handleStock(ctx context.Context, chatID int64, args string) {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		h.send(ctx, chatID, "Usage: /stock SYMBOL, e.g. /stock TSLA")
		return
	}
	symbol := strings.ToUpper(fields[0])

	view, err := h.service.Run(ctx, symbol, "command")
	if err != nil {
		h.log.Warnw("Command cycle failed", "symbol", symbol, "error", err)
		h.send(ctx, chatID, h.assembler.RenderError(symbol, failureReason(err)))
		return
	}

	text, err := h.assembler.Render(view)
	if err != nil {
		h.send(ctx, chatID, h.assembler.RenderError(symbol, "Report rendering failed"))
		return
	}

	h.send(ctx, chatID, text)
}

func (h *Handler) sendTemplate(ctx context.Context, chatID int64, name string) {
	text, err := h.templates.Render(name, nil)
	if err != nil {
		h.log.Errorw("Failed to render command template", "template", name, "error", err)
		return
	}
	h.send(ctx, chatID, text)
}

func (h *Handler) send(ctx context.Context, chatID int64, text string) {
	if err := h.bot.SendMessage(ctx, chatID, text); err != nil {
		h.log.Errorw("Failed to send reply", "chat_id", chatID, "error", err)
	}
}

// failureReason maps cycle errors onto user-facing text
func failureReason(err error) string {
	switch {
	case errors.Is(err, errors.ErrNoData):
		return "No market data available for this symbol right now."
	case errors.Is(err, errors.ErrInsufficientData):
		return "Not enough data to produce a meaningful analysis."
	case errors.Is(err, context.DeadlineExceeded):
		return "Data sources are responding too slowly."
	default:
		return "Something went wrong while running the analysis."
	}
}
