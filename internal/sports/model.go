package sports

import (
	"strconv"

	"SportHub/internal/catalog"
)

type Level string

const (
	Beginner     Level = "beginner"
	Intermediate Level = "intermediate"
	Advanced     Level = "advanced"
)

type Sport struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Selected bool   `json:"selected"`
	Level    Level  `json:"level,omitempty"`
}

var Schema = catalog.Schema[Sport]{
	Kind:     "sport",
	ID:       func(s Sport) string { return s.ID },
	SetID:    func(s Sport, id string) Sport { s.ID = id; return s },
	Validate: validate,
	Fields: map[string]func(Sport) string{
		"name":     func(s Sport) string { return s.Name },
		"category": func(s Sport) string { return s.Category },
		"selected": func(s Sport) string { return strconv.FormatBool(s.Selected) },
		"level":    func(s Sport) string { return string(s.Level) },
	},
	Search: []string{"name", "category"},
}

func validate(s Sport) error {
	if err := catalog.Require("name", s.Name); err != nil {
		return err
	}
	if err := catalog.Require("category", s.Category); err != nil {
		return err
	}
	if s.Level == "" {
		return nil
	}
	return catalog.OneOf("level", s.Level, Beginner, Intermediate, Advanced)
}
