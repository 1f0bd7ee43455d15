package telegram

import (
	"context"
	"time"

	"mmradar/internal/metrics"
	"mmradar/pkg/errors"
	"mmradar/pkg/logger"
	"mmradar/pkg/telegram"
)

// Notifier delivers rendered reports to the configured chats. Failed
// deliveries are retried a fixed number of times with a short delay,
// then dropped with a logged failure.
type Notifier struct {
	bot        telegram.Bot
	chatIDs    []int64
	retries    int
	retryDelay time.Duration
	log        *logger.Logger
}

// NewNotifier creates a notifier targeting the given chats
func NewNotifier(bot telegram.Bot, chatIDs []int64, retries int, retryDelay time.Duration) *Notifier {
	if retries <= 0 {
		retries = 3
	}
	if retryDelay <= 0 {
		retryDelay = 2 * time.Second
	}

	return &Notifier{
		bot:        bot,
		chatIDs:    chatIDs,
		retries:    retries,
		retryDelay: retryDelay,
		log:        logger.Get().With("component", "notifier"),
	}
}

// Broadcast sends the text to every configured chat. Per-chat failures
// are isolated; the returned error aggregates the chats that were
// dropped after exhausting retries.
func (n *Notifier) Broadcast(ctx context.Context, text string) error {
	var failures errors.MultiError

	for _, chatID := range n.chatIDs {
		if err := n.deliver(ctx, chatID, text); err != nil {
			failures.Add(errors.Wrapf(err, "chat %d", chatID))
		}
	}

	return failures.ToError()
}

func (n *Notifier) deliver(ctx context.Context, chatID int64, text string) error {
	var lastErr error

	for attempt := 1; attempt <= n.retries; attempt++ {
		err := n.bot.SendMessage(ctx, chatID, text)
		if err == nil {
			metrics.NotificationsSent.WithLabelValues("sent").Inc()
			return nil
		}
		lastErr = err

		n.log.Warnw("Notification delivery failed",
			"chat_id", chatID, "attempt", attempt, "error", err)

		if attempt == n.retries {
			break
		}

		select {
		case <-ctx.Done():
			metrics.NotificationsSent.WithLabelValues("dropped").Inc()
			return errors.Wrap(ctx.Err(), "delivery cancelled")
		case <-time.After(n.retryDelay):
		}
	}

	metrics.NotificationsSent.WithLabelValues("dropped").Inc()
	n.log.Errorw("Notification dropped after retries",
		"chat_id", chatID, "retries", n.retries, "error", lastErr)
	return errors.Wrap(errors.ErrDeliveryFailed, lastErr.Error())
}
