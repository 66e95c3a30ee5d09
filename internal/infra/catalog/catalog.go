// Package catalog holds the salon's bookable services and redeemable
// rewards. The default catalog is embedded; a YAML file may replace it.
package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/beautyboost/beautyboost/internal/domain"
)

//go:embed catalog.yaml
var defaultYAML []byte

// Catalog is an immutable set of services and rewards.
type Catalog struct {
	services []domain.ServiceOffering
	rewards  []domain.RewardOffering
}

type document struct {
	Services []domain.ServiceOffering `yaml:"services"`
	Rewards  []domain.RewardOffering  `yaml:"rewards"`
}

// Default returns the embedded catalog.
func Default() *Catalog {
	c, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog: %v", err))
	}
	return c
}

// Load reads a catalog file. An empty path returns Default().
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes and validates a YAML catalog document.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if err := validate(doc); err != nil {
		return nil, err
	}
	return &Catalog{services: doc.Services, rewards: doc.Rewards}, nil
}

func validate(doc document) error {
	seen := make(map[string]bool)
	for _, s := range doc.Services {
		switch {
		case s.ID == "" || s.Name == "":
			return fmt.Errorf("service %q: id and name are required: %w", s.ID, domain.ErrInvalidInput)
		case s.Points <= 0 || s.Points > domain.MaxAward:
			return fmt.Errorf("service %q: points must be in 1..%d: %w", s.ID, domain.MaxAward, domain.ErrInvalidInput)
		case seen[s.ID]:
			return fmt.Errorf("duplicate id %q: %w", s.ID, domain.ErrAlreadyExists)
		}
		seen[s.ID] = true
	}
	for _, r := range doc.Rewards {
		switch {
		case r.ID == "" || r.Name == "":
			return fmt.Errorf("reward %q: id and name are required: %w", r.ID, domain.ErrInvalidInput)
		case r.Points <= 0 || r.Points > domain.MaxAward:
			return fmt.Errorf("reward %q: points must be in 1..%d: %w", r.ID, domain.MaxAward, domain.ErrInvalidInput)
		case r.Tier != "" && !r.Tier.Valid():
			return fmt.Errorf("reward %q: unknown tier %q: %w", r.ID, r.Tier, domain.ErrInvalidInput)
		case seen[r.ID]:
			return fmt.Errorf("duplicate id %q: %w", r.ID, domain.ErrAlreadyExists)
		}
		seen[r.ID] = true
	}
	return nil
}

// Services returns a copy of the service list in catalog order.
func (c *Catalog) Services() []domain.ServiceOffering {
	return append([]domain.ServiceOffering(nil), c.services...)
}

// Rewards returns a copy of the reward list in catalog order.
func (c *Catalog) Rewards() []domain.RewardOffering {
	return append([]domain.RewardOffering(nil), c.rewards...)
}

// LookupService finds a service by id.
func (c *Catalog) LookupService(id string) (domain.ServiceOffering, error) {
	for _, s := range c.services {
		if s.ID == id {
			return s, nil
		}
	}
	return domain.ServiceOffering{}, fmt.Errorf("service %q: %w", id, domain.ErrNotFound)
}

// LookupReward finds a reward by id.
func (c *Catalog) LookupReward(id string) (domain.RewardOffering, error) {
	for _, r := range c.rewards {
		if r.ID == id {
			return r, nil
		}
	}
	return domain.RewardOffering{}, fmt.Errorf("reward %q: %w", id, domain.ErrNotFound)
}
