package render

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/webuildworld/webuild/internal/domain"
	"github.com/webuildworld/webuild/internal/domain/models"
)

// EventsRenderer prints registry events as they arrive
type EventsRenderer struct {
	out io.Writer
}

// NewEventsRenderer creates a new events renderer
func NewEventsRenderer(out io.Writer) *EventsRenderer {
	return &EventsRenderer{out: out}
}

// RenderEvent prints one event line
func (r *EventsRenderer) RenderEvent(ev *models.ContractEvent) error {
	block := timestampStyle.Sprintf("#%-8d", ev.BlockNumber)
	name := color.New(color.Bold).Sprintf("%-16s", ev.Name)

	var detail string
	switch ev.Name {
	case models.EventBrickAdded:
		detail = fmt.Sprintf("brick #%d by %s for %s ETH", ev.BrickID, shortAddress(ev.Account), valueStyle.Sprint(domain.FormatEther(ev.Value)))
	case models.EventWorkStarted:
		detail = fmt.Sprintf("brick #%d builder %s", ev.BrickID, shortAddress(ev.Account))
	case models.EventWorkAccepted:
		detail = fmt.Sprintf("brick #%d paid %s ETH to %s", ev.BrickID, valueStyle.Sprint(domain.FormatEther(ev.Value)), shortAddress(ev.Account))
	case models.EventBrickCancelled:
		detail = fmt.Sprintf("brick #%d refunded to %s", ev.BrickID, shortAddress(ev.Account))
	case models.EventProviderUpgraded:
		detail = fmt.Sprintf("provider %s (was %s)", ev.Account.Hex(), shortAddress(ev.Previous))
	case models.EventMainUpdated:
		detail = fmt.Sprintf("main %s", ev.Account.Hex())
	}

	_, err := fmt.Fprintf(r.out, "%s %s %s %s\n", block, name, detail, txStyle.Sprint(ev.TxHash.Hex()[:10]))
	return err
}
