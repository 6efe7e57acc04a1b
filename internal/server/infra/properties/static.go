package properties

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"hitbuilder/internal/server/core/model"
)

// Static список ресурсов из YAML файла. Токен не проверяется.
//
//	properties:
//	  - id: UA-12345-1
//	    name: Example site
//	    group: Example account
type Static struct {
	properties []model.Property
}

type staticFile struct {
	Properties []model.Property `yaml:"properties"`
}

func LoadStatic(path string) (*Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("can't read properties file: %w", err)
	}

	var f staticFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("can't parse properties file: %w", err)
	}

	for i, p := range f.Properties {
		if p.ID == "" {
			return nil, fmt.Errorf("property %d has no id", i)
		}
	}

	return &Static{properties: f.Properties}, nil
}

func (s *Static) List(_ context.Context, _ string) ([]model.Property, error) {
	properties := make([]model.Property, len(s.properties))
	copy(properties, s.properties)

	return properties, nil
}
