package config

import (
	"fmt"
	"os"
	"sort"

	"poputka/internal/models"

	"gopkg.in/yaml.v2"
)

// LoadCities читает справочник городов для кнопок-подсказок в диалогах.
func LoadCities(path string) ([]models.City, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read cities file: %w", err)
	}

	var parsed struct {
		Cities []models.City `yaml:"cities"`
	}
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parse cities file: %w", err)
	}

	if err := ValidateCities(parsed.Cities); err != nil {
		return nil, err
	}

	sort.SliceStable(parsed.Cities, func(i, j int) bool {
		return parsed.Cities[i].SortOrder < parsed.Cities[j].SortOrder
	})
	return parsed.Cities, nil
}

func ValidateCities(cities []models.City) error {
	seen := make(map[string]bool)
	for _, city := range cities {
		if city.Name == "" {
			return fmt.Errorf("city with empty name in cities file")
		}
		if seen[city.Name] {
			return fmt.Errorf("duplicate city found: %s", city.Name)
		}
		seen[city.Name] = true
	}
	return nil
}
