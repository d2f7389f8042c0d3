package activities

import (
	"cmp"
	"slices"
	"time"

	"SportHub/internal/catalog"
)

type Status string

const (
	Upcoming  Status = "upcoming"
	Completed Status = "completed"
	Cancelled Status = "cancelled"
)

type Activity struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Sport           string    `json:"sport"`
	Location        string    `json:"location"`
	StartsAt        time.Time `json:"startsAt"`
	DurationMinutes int       `json:"durationMinutes"`
	DistanceKm      float64   `json:"distanceKm,omitempty"`
	Calories        int       `json:"calories,omitempty"`
	Participants    []string  `json:"participants"`
	Status          Status    `json:"status"`
}

var Schema = catalog.Schema[Activity]{
	Kind:  "activity",
	ID:    func(a Activity) string { return a.ID },
	SetID: func(a Activity, id string) Activity { a.ID = id; return a },
	Clone: func(a Activity) Activity {
		a.Participants = slices.Clone(a.Participants)
		return a
	},
	Validate: validate,
	Fields: map[string]func(Activity) string{
		"title":    func(a Activity) string { return a.Title },
		"sport":    func(a Activity) string { return a.Sport },
		"location": func(a Activity) string { return a.Location },
		"status":   func(a Activity) string { return string(a.Status) },
	},
	Search: []string{"title", "sport", "location"},
	Compare: map[string]func(a, b Activity) int{
		"startsAt":        func(a, b Activity) int { return a.StartsAt.Compare(b.StartsAt) },
		"durationMinutes": func(a, b Activity) int { return cmp.Compare(a.DurationMinutes, b.DurationMinutes) },
		"distanceKm":      func(a, b Activity) int { return cmp.Compare(a.DistanceKm, b.DistanceKm) },
	},
}

func validate(a Activity) error {
	if err := catalog.Require("title", a.Title); err != nil {
		return err
	}
	if err := catalog.Require("sport", a.Sport); err != nil {
		return err
	}
	if a.StartsAt.IsZero() {
		return catalog.Invalid("startsAt", "is required")
	}
	if a.DurationMinutes <= 0 {
		return catalog.Invalid("durationMinutes", "must be positive")
	}
	if a.DistanceKm < 0 {
		return catalog.Invalid("distanceKm", "must not be negative")
	}
	if a.Calories < 0 {
		return catalog.Invalid("calories", "must not be negative")
	}
	return catalog.OneOf("status", a.Status, Upcoming, Completed, Cancelled)
}
