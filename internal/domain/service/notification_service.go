package service

import "context"

type PushNotification struct {
	RecipientID string
	Title       string
	Body        string
	Data        map[string]string
}

type PushNotifier interface {
	Notify(ctx context.Context, n PushNotification) error
}

// EventBroadcaster pushes state changes to connected clients.
type EventBroadcaster interface {
	PublishToUser(userID string, eventType string, payload interface{})
	PublishToAll(eventType string, payload interface{})
}

const (
	EventProfileUpdate   = "profile_update"
	EventCatalogUpdate   = "catalog_update"
	EventWatchlistUpdate = "watchlist_update"
	EventChatUpdate      = "chat_update"
)
