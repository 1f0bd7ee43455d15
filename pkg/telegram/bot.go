package telegram

import (
	"context"
	"net/http"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"

	"mmradar/pkg/errors"
	"mmradar/pkg/logger"
)

// Bot is the outbound messaging surface consumed by notification code.
// Kept narrow so services can be tested against a fake.
type Bot interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// Config contains Telegram client configuration
type Config struct {
	Token          string
	Debug          bool
	UpdateTimeout  int // seconds
	HTTPTimeout    time.Duration
	RateLimitRate  int // messages per second
	RateLimitBurst int
}

// Client wraps the Telegram Bot API with polling, rate limiting and a
// pluggable update handler
type Client struct {
	api         *tgbotapi.BotAPI
	log         *logger.Logger
	rateLimiter *rate.Limiter

	mu         sync.RWMutex
	running    bool
	msgHandler func(tgbotapi.Update)

	updateTimeout int
}

// NewClient creates a Telegram client
func NewClient(cfg Config, log *logger.Logger) (*Client, error) {
	if cfg.Token == "" {
		return nil, errors.Wrap(errors.ErrInvalidInput, "telegram bot token is required")
	}
	if cfg.UpdateTimeout == 0 {
		cfg.UpdateTimeout = 60
	}
	if cfg.HTTPTimeout == 0 {
		cfg.HTTPTimeout = 30 * time.Second
	}
	if cfg.RateLimitRate == 0 {
		cfg.RateLimitRate = 20 // Telegram caps at 30 msg/sec
	}
	if cfg.RateLimitBurst == 0 {
		cfg.RateLimitBurst = 30
	}

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	api, err := tgbotapi.NewBotAPIWithClient(cfg.Token, tgbotapi.APIEndpoint, httpClient)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create telegram bot")
	}
	api.Debug = cfg.Debug

	log.Infof("Authorized on account %s", api.Self.UserName)

	return &Client{
		api:           api,
		log:           log.With("component", "telegram_bot"),
		rateLimiter:   rate.NewLimiter(rate.Limit(cfg.RateLimitRate), cfg.RateLimitBurst),
		updateTimeout: cfg.UpdateTimeout,
	}, nil
}

// SetMessageHandler registers a handler for incoming updates
func (c *Client) SetMessageHandler(handler func(tgbotapi.Update)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgHandler = handler
}

// Start begins polling for updates until the context is cancelled
func (c *Client) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return errors.New("bot is already running")
	}
	c.running = true
	c.mu.Unlock()

	c.log.Infow("Starting Telegram bot in polling mode")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = c.updateTimeout
	updates := c.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			c.log.Infow("Telegram bot stopping (context cancelled)")
			c.Stop()
			return nil
		case update := <-updates:
			// Handle in a goroutine so a slow cycle never blocks polling
			go c.handleUpdate(update)
		}
	}
}

// Stop gracefully stops the bot
func (c *Client) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return
	}
	c.api.StopReceivingUpdates()
	c.running = false
	c.log.Infow("Telegram bot stopped")
}

func (c *Client) handleUpdate(update tgbotapi.Update) {
	c.mu.RLock()
	handler := c.msgHandler
	c.mu.RUnlock()

	if handler != nil {
		handler(update)
		return
	}

	if update.Message != nil {
		c.log.Debugw("Received message (no handler registered)",
			"update_id", update.UpdateID,
			"from_id", update.Message.From.ID,
			"text", update.Message.Text,
		)
	}
}

// SendMessage sends a Markdown text message to a chat
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return errors.Wrap(err, "rate limiter wait failed")
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown

	if _, err := c.api.Send(msg); err != nil {
		return errors.Wrap(errors.ErrDeliveryFailed, err.Error())
	}
	return nil
}
