package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/webuildworld/webuild/internal/cli/render"
	"github.com/webuildworld/webuild/internal/domain/models"
)

// outputJSON writes v to the command output as indented JSON
func outputJSON(cmd *cobra.Command, v any) error {
	return render.RenderJSON(cmd.OutOrStdout(), v)
}

// parseBrickID parses a brick id argument; 0 is never a valid id
func parseBrickID(arg string) (uint64, error) {
	id, err := strconv.ParseUint(strings.TrimPrefix(strings.TrimSpace(arg), "#"), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid brick id %q", arg)
	}
	return id, nil
}

// parseBrickStatus parses a status filter; empty means no filter
func parseBrickStatus(s string) (*models.BrickStatus, error) {
	if s == "" {
		return nil, nil
	}
	for _, st := range []models.BrickStatus{models.BrickOpen, models.BrickStarted, models.BrickCompleted, models.BrickCancelled} {
		if strings.EqualFold(s, st.String()) {
			return &st, nil
		}
	}
	return nil, fmt.Errorf("invalid status %q (valid: open, started, completed, cancelled)", s)
}

// confirmPrompt asks the user a yes/no question and returns their choice.
func confirmPrompt(label string) bool {
	prompt := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
	}

	_, err := prompt.Run()
	return err == nil
}
