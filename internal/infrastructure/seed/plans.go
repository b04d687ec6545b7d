// Package seed loads reference data files.
package seed

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pecal-inc/pecal/internal/application/plan/dto"
)

type planFile struct {
	Plans []dto.PlanRequest `yaml:"plans"`
}

// LoadPlansFile reads a plans YAML file from disk.
func LoadPlansFile(path string) ([]dto.PlanRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plans file: %w", err)
	}
	return ParsePlans(bytes.NewReader(data))
}

// ParsePlans decodes a plans document. Unknown keys and duplicate names
// are rejected.
func ParsePlans(r io.Reader) ([]dto.PlanRequest, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f planFile
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("plans file is empty")
		}
		return nil, fmt.Errorf("failed to parse plans file: %w", err)
	}

	seen := make(map[string]struct{}, len(f.Plans))
	for i, p := range f.Plans {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			return nil, fmt.Errorf("plan #%d has no name", i+1)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("duplicate plan name %q", name)
		}
		seen[name] = struct{}{}
		f.Plans[i].Name = name
	}

	return f.Plans, nil
}
