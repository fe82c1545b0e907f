package firebase

import (
	"context"
	"regexp"

	"firebase.google.com/go/v4/messaging"
	"github.com/pkg/errors"

	"petadopt/internal/domain/service"
	"petadopt/pkg/logger"
)

var topicUnsafe = regexp.MustCompile(`[^a-zA-Z0-9\-_.~%]`)

// TopicFor maps a user identifier to the FCM topic its devices subscribe to.
func TopicFor(recipientID string) string {
	return "user_" + topicUnsafe.ReplaceAllString(recipientID, "_")
}

type messagingNotifier struct {
	client *messaging.Client
}

func NewMessagingNotifier(client *messaging.Client) service.PushNotifier {
	return &messagingNotifier{client: client}
}

func (n *messagingNotifier) Notify(ctx context.Context, note service.PushNotification) error {
	message := &messaging.Message{
		Topic: TopicFor(note.RecipientID),
		Notification: &messaging.Notification{
			Title: note.Title,
			Body:  note.Body,
		},
		Data: note.Data,
	}

	id, err := n.client.Send(ctx, message)
	if err != nil {
		return errors.Wrap(err, "failed to send notification")
	}

	logger.Debug("Push notification %s sent to %s", id, message.Topic)
	return nil
}

type noopNotifier struct{}

func NewNoopNotifier() service.PushNotifier {
	return noopNotifier{}
}

func (noopNotifier) Notify(ctx context.Context, note service.PushNotification) error {
	logger.Debug("Push notifications disabled, dropping message for %s", note.RecipientID)
	return nil
}
