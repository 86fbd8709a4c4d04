package typeconfig

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"fieldlens/internal/domain"
)

// Store holds the loaded document type configurations. Immutable after
// construction and safe for concurrent reads.
type Store struct {
	byID    map[domain.TypeID]*DocumentTypeConfig
	ordered []*DocumentTypeConfig
}

// NewStore builds a store from configs in priority order, compiling all
// pattern rules up front.
func NewStore(configs ...*DocumentTypeConfig) (*Store, error) {
	s := &Store{byID: make(map[domain.TypeID]*DocumentTypeConfig, len(configs))}
	for _, tc := range configs {
		if err := tc.compile(); err != nil {
			return nil, err
		}
		if _, dup := s.byID[tc.ID]; dup {
			return nil, fmt.Errorf("duplicate type config %q", tc.ID)
		}
		s.byID[tc.ID] = tc
		s.ordered = append(s.ordered, tc)
	}
	return s, nil
}

// LoadStore builds a store from the built-in configs, overlaid with any
// *.yaml files found in overlayDir. An overlay with a known id replaces the
// built-in in place (keeping its priority); new ids are appended after the
// built-ins. An empty overlayDir loads the built-ins alone.
func LoadStore(overlayDir string) (*Store, error) {
	configs := Builtins()

	if overlayDir != "" {
		entries, err := os.ReadDir(overlayDir)
		if err != nil {
			return nil, fmt.Errorf("reading type config dir %s: %w", overlayDir, err)
		}
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
				continue
			}
			path := filepath.Join(overlayDir, e.Name())
			tc, err := loadFile(path)
			if err != nil {
				return nil, err
			}
			replaced := false
			for i, existing := range configs {
				if existing.ID == tc.ID {
					configs[i] = tc
					replaced = true
					break
				}
			}
			if !replaced {
				configs = append(configs, tc)
			}
			log.Printf("typeconfig.Store: loaded %s from %s (replaced=%v)", tc.ID, path, replaced)
		}
	}

	return NewStore(configs...)
}

func loadFile(path string) (*DocumentTypeConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var tc DocumentTypeConfig
	if err := yaml.Unmarshal(b, &tc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &tc, nil
}

// Get returns the configuration for a type, or nil when not registered.
func (s *Store) Get(id domain.TypeID) *DocumentTypeConfig {
	return s.byID[id]
}

// All returns every configuration in declared priority order.
func (s *Store) All() []*DocumentTypeConfig {
	return s.ordered
}
