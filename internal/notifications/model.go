package notifications

import (
	"strconv"
	"time"

	"SportHub/internal/catalog"
)

type Type string

const (
	TypeFriendRequest  Type = "friend_request"
	TypeActivityInvite Type = "activity_invite"
	TypeAchievement    Type = "achievement"
	TypeReminder       Type = "reminder"
	TypeComment        Type = "comment"
)

type Notification struct {
	ID        string    `json:"id"`
	Type      Type      `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	ActorName string    `json:"actorName,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	IsRead    bool      `json:"isRead"`
}

var Schema = catalog.Schema[Notification]{
	Kind:     "notification",
	ID:       func(n Notification) string { return n.ID },
	SetID:    func(n Notification, id string) Notification { n.ID = id; return n },
	Validate: validate,
	Fields: map[string]func(Notification) string{
		"type":      func(n Notification) string { return string(n.Type) },
		"isRead":    func(n Notification) string { return strconv.FormatBool(n.IsRead) },
		"title":     func(n Notification) string { return n.Title },
		"message":   func(n Notification) string { return n.Message },
		"actorName": func(n Notification) string { return n.ActorName },
	},
	Search: []string{"title", "message", "actorName"},
	Compare: map[string]func(a, b Notification) int{
		"createdAt": func(a, b Notification) int { return a.CreatedAt.Compare(b.CreatedAt) },
	},
}

func validate(n Notification) error {
	if err := catalog.OneOf("type", n.Type,
		TypeFriendRequest, TypeActivityInvite, TypeAchievement, TypeReminder, TypeComment); err != nil {
		return err
	}
	if err := catalog.Require("title", n.Title); err != nil {
		return err
	}
	if n.CreatedAt.IsZero() {
		return catalog.Invalid("createdAt", "is required")
	}
	return nil
}
