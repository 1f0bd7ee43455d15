package report

import (
	"mmradar/pkg/errors"
	"mmradar/pkg/logger"
	"mmradar/pkg/templates"
)

// Assembler renders cycle views into notification text
type Assembler struct {
	templates templates.Renderer
	log       *logger.Logger
}

// NewAssembler creates a report assembler
func NewAssembler(renderer templates.Renderer) *Assembler {
	return &Assembler{
		templates: renderer,
		log:       logger.Get().With("component", "report_assembler"),
	}
}

// Render produces the full advisory report text for one cycle
func (a *Assembler) Render(view *View) (string, error) {
	if view == nil || view.Quote == nil {
		return "", errors.Wrap(errors.ErrInvalidInput, "report view missing quote")
	}

	text, err := a.templates.Render("report/advisory", view)
	if err != nil {
		a.log.Errorw("Failed to render advisory report",
			"symbol", view.Symbol, "error", err)
		return "", err
	}
	return text, nil
}

// RenderError produces the user-facing failure message for a symbol
func (a *Assembler) RenderError(symbol string, reason string) string {
	text, err := a.templates.Render("report/error", map[string]string{
		"Symbol": symbol,
		"Reason": reason,
	})
	if err != nil {
		a.log.Errorw("Failed to render error report", "error", err)
		return "Analysis failed for " + symbol
	}
	return text
}
