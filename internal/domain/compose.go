package domain

import (
	"fmt"
	"regexp"

	"github.com/webuildworld/webuild/internal/domain/models"
)

var stepNamePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_.-]*$`)

// ComposeManifest is a YAML file of bricks to add in order
type ComposeManifest struct {
	Group  string          `yaml:"group"`
	From   string          `yaml:"from,omitempty"`
	Bricks []*ComposeBrick `yaml:"bricks"`
}

// ComposeBrick is a single manifest entry. Name identifies the step when a run is resumed.
type ComposeBrick struct {
	Name        string   `yaml:"name"`
	Title       string   `yaml:"title"`
	URL         string   `yaml:"url,omitempty"`
	Description string   `yaml:"description,omitempty"`
	Tags        []string `yaml:"tags,omitempty"`
	Value       string   `yaml:"value"`
	Timestamp   uint64   `yaml:"timestamp,omitempty"`
	From        string   `yaml:"from,omitempty"`
}

// Validate checks names are unique and every brick would be accepted by the contract
func (m *ComposeManifest) Validate() error {
	if len(m.Bricks) == 0 {
		return fmt.Errorf("%w: manifest has no bricks", ErrInvalidBrick)
	}
	seen := make(map[string]bool, len(m.Bricks))
	for i, b := range m.Bricks {
		if b.Name == "" {
			return fmt.Errorf("brick %d: name is required", i+1)
		}
		if !stepNamePattern.MatchString(b.Name) {
			return fmt.Errorf("brick %d: invalid name %q", i+1, b.Name)
		}
		if seen[b.Name] {
			return fmt.Errorf("brick %q: %w", b.Name, ErrAlreadyExists)
		}
		seen[b.Name] = true

		if _, err := b.NewBrick(0); err != nil {
			return fmt.Errorf("brick %q: %w", b.Name, err)
		}
	}
	return nil
}

// Sender returns the account that adds b
func (m *ComposeManifest) Sender(b *ComposeBrick) string {
	if b.From != "" {
		return b.From
	}
	return m.From
}

// NewBrick converts the entry to addBrick input; a zero timestamp becomes defaultTimestamp
func (b *ComposeBrick) NewBrick(defaultTimestamp uint64) (*models.NewBrick, error) {
	value, err := ParseValue(b.Value)
	if err != nil {
		return nil, &ValidationError{Field: "value", Reason: err.Error()}
	}
	tags := NormalizeTags(b.Tags)
	if err := ValidateNewBrick(b.Title, value, tags); err != nil {
		return nil, err
	}
	ts := b.Timestamp
	if ts == 0 {
		ts = defaultTimestamp
	}
	return &models.NewBrick{
		Title:       b.Title,
		URL:         b.URL,
		Timestamp:   ts,
		Description: b.Description,
		Tags:        tags,
		Value:       value,
	}, nil
}
