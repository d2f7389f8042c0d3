package cities

import (
	"cmp"

	"SportHub/internal/catalog"
)

type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type City struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	State       string      `json:"state"`
	Country     string      `json:"country"`
	Coordinates Coordinates `json:"coordinates"`
	Population  int         `json:"population"`
}

// Schema describes City to the catalog engine. City has no reference fields,
// so the engine's value copy is a deep copy.
var Schema = catalog.Schema[City]{
	Kind:     "city",
	ID:       func(c City) string { return c.ID },
	SetID:    func(c City, id string) City { c.ID = id; return c },
	Validate: validate,
	Fields: map[string]func(City) string{
		"name":    func(c City) string { return c.Name },
		"state":   func(c City) string { return c.State },
		"country": func(c City) string { return c.Country },
	},
	Search: []string{"name", "state"},
	Compare: map[string]func(a, b City) int{
		"population": func(a, b City) int { return cmp.Compare(a.Population, b.Population) },
	},
}

func validate(c City) error {
	if err := catalog.Require("name", c.Name); err != nil {
		return err
	}
	if err := catalog.Require("country", c.Country); err != nil {
		return err
	}
	if c.Coordinates.Latitude < -90 || c.Coordinates.Latitude > 90 {
		return catalog.Invalid("coordinates.latitude", "must be within [-90, 90]")
	}
	if c.Coordinates.Longitude < -180 || c.Coordinates.Longitude > 180 {
		return catalog.Invalid("coordinates.longitude", "must be within [-180, 180]")
	}
	if c.Population < 0 {
		return catalog.Invalid("population", "must not be negative")
	}
	return nil
}
