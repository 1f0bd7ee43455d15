package workers

import (
	"context"
	"fmt"
	"time"

	"mmradar/internal/adapters/telegram"
	"mmradar/internal/domain/session"
	"mmradar/internal/report"
	"mmradar/internal/services/analysis"
	"mmradar/pkg/errors"
)

// SessionWorker runs one analysis cycle per symbol whenever a new market
// session window opens. It ticks frequently but fires at most once per
// (day, window) pair, so a restart inside a window re-sends at most one
// report.
type SessionWorker struct {
	*BaseWorker

	service   *analysis.Service
	assembler *report.Assembler
	notifier  *telegram.Notifier
	symbols   []string

	location *time.Location
	now      func() time.Time

	lastFired string // "2006-01-02/window"
}

// NewSessionWorker creates the session-schedule worker
func NewSessionWorker(
	service *analysis.Service,
	assembler *report.Assembler,
	notifier *telegram.Notifier,
	symbols []string,
	tick time.Duration,
	timezone string,
) (*SessionWorker, error) {
	location, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid market timezone %s", timezone)
	}
	if tick <= 0 {
		tick = time.Minute
	}

	return &SessionWorker{
		BaseWorker: NewBaseWorker("session_analysis", tick, len(symbols) > 0),
		service:    service,
		assembler:  assembler,
		notifier:   notifier,
		symbols:    symbols,
		location:   location,
		now:        time.Now,
	}, nil
}

// Run fires the session cycle when a window opens that has not been
// served yet today
func (w *SessionWorker) Run(ctx context.Context) error {
	localNow := w.now().In(w.location)
	window := session.Current(localNow)
	key := fmt.Sprintf("%s/%s", localNow.Format("2006-01-02"), window)

	if key == w.lastFired {
		return nil
	}
	w.lastFired = key

	w.Log().Infow("Session window opened", "window", window, "symbols", len(w.symbols))

	var failures errors.MultiError
	for _, symbol := range w.symbols {
		if err := w.analyzeAndNotify(ctx, symbol); err != nil {
			failures.Add(errors.Wrapf(err, "symbol %s", symbol))
		}
	}

	return failures.ToError()
}

func (w *SessionWorker) analyzeAndNotify(ctx context.Context, symbol string) error {
	view, err := w.service.Run(ctx, symbol, "session")
	if err != nil {
		return err
	}

	text, err := w.assembler.Render(view)
	if err != nil {
		return err
	}

	return w.notifier.Broadcast(ctx, text)
}
