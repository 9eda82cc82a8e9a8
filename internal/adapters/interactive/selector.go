package interactive

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/manifoldco/promptui"
	"github.com/sahilm/fuzzy"

	"github.com/webuildworld/webuild/internal/domain"
	"github.com/webuildworld/webuild/internal/domain/config"
	"github.com/webuildworld/webuild/internal/domain/models"
	"github.com/webuildworld/webuild/internal/usecase"
)

// SelectorAdapter handles interactive selection
type SelectorAdapter struct {
	config *config.RuntimeConfig
	// run shows the prompt; replaced in tests
	run func(promptui.Select) (int, error)
}

// NewSelectorAdapter creates a new selector adapter
func NewSelectorAdapter(cfg *config.RuntimeConfig) *SelectorAdapter {
	return &SelectorAdapter{
		config: cfg,
		run: func(p promptui.Select) (int, error) {
			i, _, err := p.Run()
			return i, err
		},
	}
}

// SelectBrick selects a brick from a list
func (s *SelectorAdapter) SelectBrick(ctx context.Context, bricks []*models.Brick, prompt string) (*models.Brick, error) {
	if len(bricks) == 0 {
		return nil, fmt.Errorf("no bricks provided for selection")
	}
	if len(bricks) == 1 {
		return bricks[0], nil
	}
	keys := make([]string, len(bricks))
	for i, b := range bricks {
		keys[i] = fmt.Sprintf("#%d %s %s", b.ID, b.Title, strings.Join(b.Tags, " "))
	}
	index, err := s.choose(prompt, formatBrickOptions(bricks), keys)
	if err != nil {
		return nil, err
	}
	return bricks[index], nil
}

// SelectDeployment selects a deployment from a list
func (s *SelectorAdapter) SelectDeployment(ctx context.Context, deployments []*models.Deployment, prompt string) (*models.Deployment, error) {
	if len(deployments) == 0 {
		return nil, fmt.Errorf("no deployments provided for selection")
	}
	if len(deployments) == 1 {
		return deployments[0], nil
	}
	keys := make([]string, len(deployments))
	for i, d := range deployments {
		keys[i] = d.GetShortID() + " " + d.Address
	}
	index, err := s.choose(prompt, formatDeploymentOptions(deployments), keys)
	if err != nil {
		return nil, err
	}
	return deployments[index], nil
}

// choose shows options and matches searches against the uncolored keys
func (s *SelectorAdapter) choose(prompt string, options, keys []string) (int, error) {
	// In non-interactive mode, we can't select
	if s.config.NonInteractive {
		return 0, fmt.Errorf("interactive selection not available in non-interactive mode")
	}

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "▸ {{ . | cyan }}",
		Inactive: "  {{ . | faint }}",
		Selected: "✓ {{ . | green }}",
		Help:     color.New(color.FgYellow).Sprint("Use arrow keys to navigate, / to search, Enter to select"),
	}

	index, err := s.run(promptui.Select{
		Label:     prompt,
		Items:     options,
		Templates: templates,
		Size:      10,
		Searcher:  createFuzzySearchFunc(keys),
	})
	if err != nil {
		return 0, fmt.Errorf("selection cancelled: %w", err)
	}
	return index, nil
}

// formatBrickOptions renders "#id title (value ETH, status) [tags]"
func formatBrickOptions(bricks []*models.Brick) []string {
	options := make([]string, len(bricks))
	for i, b := range bricks {
		id := color.New(color.FgWhite, color.Bold).Sprintf("#%d", b.ID)
		value := color.New(color.FgGreen).Sprintf("%s ETH", domain.FormatEther(b.Value))
		options[i] = fmt.Sprintf("%s %s (%s, %s)", id, b.Title, value, b.Status)
		if len(b.Tags) > 0 {
			options[i] += " " + color.New(color.FgBlue).Sprintf("[%s]", strings.Join(b.Tags, ", "))
		}
	}
	return options
}

// formatDeploymentOptions renders "Name:label (address)"
func formatDeploymentOptions(deployments []*models.Deployment) []string {
	options := make([]string, len(deployments))
	for i, d := range deployments {
		name := color.New(color.FgWhite, color.Bold).Sprint(d.GetShortID())
		options[i] = fmt.Sprintf("%s (%s)", name, color.New(color.FgBlue).Sprint(d.Address))
	}
	return options
}

// createFuzzySearchFunc creates a fuzzy search function for promptui
func createFuzzySearchFunc(items []string) func(input string, index int) bool {
	return func(input string, index int) bool {
		// Empty search shows all items
		if input == "" {
			return true
		}

		input = strings.ToLower(input)
		item := strings.ToLower(items[index])

		// First try simple substring match
		if strings.Contains(item, input) {
			return true
		}

		// Then try fuzzy match
		return len(fuzzy.Find(input, []string{item})) > 0
	}
}

// Ensure the adapter implements the interfaces
var (
	_ usecase.BrickSelector      = (*SelectorAdapter)(nil)
	_ usecase.DeploymentSelector = (*SelectorAdapter)(nil)
)
