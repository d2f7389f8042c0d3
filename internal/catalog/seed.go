package catalog

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// LoadSeed decodes a YAML list of records. Records are bridged through JSON
// so entity types only need json tags.
func LoadSeed[T any](data []byte) ([]T, error) {
	var docs []map[string]any
	if err := yaml.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}

	raw, err := json.Marshal(docs)
	if err != nil {
		return nil, fmt.Errorf("bridge seed: %w", err)
	}
	var out []T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	return out, nil
}

// MustLoadSeed is LoadSeed for fixtures embedded at build time.
func MustLoadSeed[T any](data []byte) []T {
	out, err := LoadSeed[T](data)
	if err != nil {
		panic(err)
	}
	return out
}
