package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/webuildworld/webuild/internal/domain"
	"github.com/webuildworld/webuild/internal/usecase"
)

// ComposeRenderer renders the result of a compose run
type ComposeRenderer struct {
	out    io.Writer
	dryRun bool
}

// NewComposeRenderer creates a new compose renderer
func NewComposeRenderer(out io.Writer, dryRun bool) *ComposeRenderer {
	return &ComposeRenderer{out: out, dryRun: dryRun}
}

// RenderComposeResult renders every step followed by a summary
func (r *ComposeRenderer) RenderComposeResult(result *usecase.ComposeResult) error {
	header := "🧱 Composing " + result.Group
	if r.dryRun {
		header += " (dry run)"
	}
	color.New(color.Bold).Fprintln(r.out, header)
	fmt.Fprintf(r.out, "%s %s\n", labelStyle.Sprint("registry:"), result.Main.Address)
	fmt.Fprintln(r.out, strings.Repeat("─", 50))

	for i, step := range result.Steps {
		prefix := fmt.Sprintf("%d. ", i+1)
		name := color.New(color.FgCyan).Sprint(step.Name)
		switch {
		case step.Skipped:
			fmt.Fprintf(r.out, "%s%s %s\n", prefix, name, labelStyle.Sprintf("skipped, brick #%d", step.BrickID))
		case step.Error != nil:
			fmt.Fprintf(r.out, "%s%s %s\n", prefix, name, missingStyle.Sprintf("✗ %v", step.Error))
		case r.dryRun:
			fmt.Fprintf(r.out, "%s%s %s ETH from %s\n", prefix, name,
				valueStyle.Sprint(domain.FormatEther(step.Brick.Value)), step.Sender)
		default:
			fmt.Fprintf(r.out, "%s%s %s\n", prefix, name, existsStyle.Sprintf("✓ brick #%d", step.BrickID))
			renderTransaction(r.out, step.Transaction)
		}
	}

	fmt.Fprintln(r.out, strings.Repeat("─", 50))
	summary := fmt.Sprintf("%d added, %d skipped, %d failed", result.Added, result.Skipped, result.Failed)
	if result.Success() {
		fmt.Fprintln(r.out, FormatSuccess(summary))
	} else {
		fmt.Fprintln(r.out, FormatError(summary))
		fmt.Fprintln(r.out, labelStyle.Sprint("   rerun with --resume to continue after the failed brick"))
	}
	return nil
}
