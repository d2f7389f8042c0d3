package profile

import (
	"net/mail"
	"time"

	"SportHub/internal/catalog"
)

type Profile struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Bio      string    `json:"bio,omitempty"`
	City     string    `json:"city"`
	Avatar   string    `json:"avatar,omitempty"`
	JoinedAt time.Time `json:"joinedAt"`
}

var Schema = catalog.Schema[Profile]{
	Kind:     "profile",
	ID:       func(p Profile) string { return p.ID },
	SetID:    func(p Profile, id string) Profile { p.ID = id; return p },
	Validate: validate,
	Fields: map[string]func(Profile) string{
		"name":     func(p Profile) string { return p.Name },
		"username": func(p Profile) string { return p.Username },
		"city":     func(p Profile) string { return p.City },
	},
	Search: []string{"name", "username"},
}

const maxBio = 280

func validate(p Profile) error {
	if err := catalog.Require("name", p.Name); err != nil {
		return err
	}
	if err := catalog.Require("username", p.Username); err != nil {
		return err
	}
	if err := catalog.Require("email", p.Email); err != nil {
		return err
	}
	if a, err := mail.ParseAddress(p.Email); err != nil || a.Address != p.Email {
		return catalog.Invalid("email", "is not a valid address")
	}
	if len([]rune(p.Bio)) > maxBio {
		return catalog.Invalid("bio", "is too long")
	}
	return nil
}
