// Package content loads the static services and tournaments catalog.
package content

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/momentumgaming/backend/internal/model"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// ErrNotFound is returned when a tournament id is unknown.
var ErrNotFound = errors.New("content not found")

// Load reads the catalog at path, or the embedded catalog when path is empty.
func Load(path string) (*model.Catalog, error) {
	data := defaultCatalog
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read catalog: %w", err)
		}
		data = b
	}
	return Parse(data)
}

// Parse decodes a YAML catalog and checks it.
func Parse(data []byte) (*model.Catalog, error) {
	var c model.Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if err := validate(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

func validate(c *model.Catalog) error {
	seen := make(map[string]bool)
	for _, s := range c.Services {
		if strings.TrimSpace(s.ID) == "" || strings.TrimSpace(s.Title) == "" {
			return fmt.Errorf("catalog: service needs id and title")
		}
	}
	for _, t := range c.Tournaments {
		if strings.TrimSpace(t.ID) == "" {
			return fmt.Errorf("catalog: tournament %q has no id", t.Title)
		}
		if seen[t.ID] {
			return fmt.Errorf("catalog: duplicate tournament id %q", t.ID)
		}
		seen[t.ID] = true
		switch t.Status {
		case model.TournamentLive, model.TournamentUpcoming, model.TournamentCompleted:
		default:
			return fmt.Errorf("catalog: tournament %q has unknown status %q", t.ID, t.Status)
		}
	}
	return nil
}

// Service serves the catalog.
type Service struct {
	catalog *model.Catalog
}

// NewService wraps a loaded catalog.
func NewService(c *model.Catalog) *Service {
	if c == nil {
		c = &model.Catalog{}
	}
	return &Service{catalog: c}
}

// Services returns the offered services.
func (s *Service) Services() []model.Service {
	if s.catalog.Services == nil {
		return []model.Service{}
	}
	return s.catalog.Services
}

// Tournaments returns the tournaments, optionally narrowed to one status.
func (s *Service) Tournaments(status string) []model.Tournament {
	out := make([]model.Tournament, 0, len(s.catalog.Tournaments))
	for _, t := range s.catalog.Tournaments {
		if status == "" || strings.EqualFold(t.Status, status) {
			out = append(out, t)
		}
	}
	return out
}

// Tournament returns one tournament by id.
func (s *Service) Tournament(id string) (*model.Tournament, error) {
	for i := range s.catalog.Tournaments {
		if s.catalog.Tournaments[i].ID == id {
			t := s.catalog.Tournaments[i]
			return &t, nil
		}
	}
	return nil, ErrNotFound
}
