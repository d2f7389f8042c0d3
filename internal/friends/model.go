package friends

import (
	"cmp"
	"slices"
	"strings"

	"SportHub/internal/catalog"
)

type Presence string

const (
	Online   Presence = "online"
	Offline  Presence = "offline"
	Training Presence = "training"
)

// Connection is the viewer's relationship with a person.
type Connection string

const (
	Connected Connection = "connected"
	Pending   Connection = "pending"
	Suggested Connection = "suggested"
)

type Friend struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Username      string     `json:"username"`
	Avatar        string     `json:"avatar,omitempty"`
	City          string     `json:"city"`
	Sports        []string   `json:"sports"`
	MutualFriends int        `json:"mutualFriends"`
	Presence      Presence   `json:"presence"`
	Connection    Connection `json:"connection"`
}

var Schema = catalog.Schema[Friend]{
	Kind:  "friend",
	ID:    func(f Friend) string { return f.ID },
	SetID: func(f Friend, id string) Friend { f.ID = id; return f },
	Clone: func(f Friend) Friend {
		f.Sports = slices.Clone(f.Sports)
		return f
	},
	Validate: validate,
	Fields: map[string]func(Friend) string{
		"name":       func(f Friend) string { return f.Name },
		"username":   func(f Friend) string { return f.Username },
		"city":       func(f Friend) string { return f.City },
		"presence":   func(f Friend) string { return string(f.Presence) },
		"connection": func(f Friend) string { return string(f.Connection) },
	},
	Search: []string{"name", "username"},
	Compare: map[string]func(a, b Friend) int{
		"mutualFriends": func(a, b Friend) int { return cmp.Compare(a.MutualFriends, b.MutualFriends) },
	},
}

func validate(f Friend) error {
	if err := catalog.Require("name", f.Name); err != nil {
		return err
	}
	if err := catalog.Require("username", f.Username); err != nil {
		return err
	}
	if strings.ContainsAny(f.Username, " @") {
		return catalog.Invalid("username", "must not contain spaces or @")
	}
	if f.MutualFriends < 0 {
		return catalog.Invalid("mutualFriends", "must not be negative")
	}
	if err := catalog.OneOf("presence", f.Presence, Online, Offline, Training); err != nil {
		return err
	}
	return catalog.OneOf("connection", f.Connection, Connected, Pending, Suggested)
}
